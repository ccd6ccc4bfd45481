package model

// Master is the party leasing a slave.
type Master struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	VIP  bool   `json:"vip"`
}

// OutranksHolder reports whether m may take an hour already held by holder.
// Only a VIP master outranks a non-VIP holder; VIP holders are never displaced.
func (m Master) OutranksHolder(holder Master) bool {
	return m.VIP && !holder.VIP
}
