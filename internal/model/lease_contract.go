package model

import "time"

// LeaseContract is a priced agreement covering a master, a slave and a set of hours.
type LeaseContract struct {
	ID        string      `json:"id,omitempty"`
	Master    Master      `json:"master"`
	Slave     Slave       `json:"slave"`
	Price     float64     `json:"price"`
	Hours     []LeaseHour `json:"hours"`
	CreatedAt time.Time   `json:"created_at,omitempty"`
}

// NewLeaseContract copies hours so later changes to the caller's slice do not leak in.
func NewLeaseContract(master Master, slave Slave, price float64, hours []LeaseHour) *LeaseContract {
	return &LeaseContract{
		Master: master,
		Slave:  slave,
		Price:  price,
		Hours:  append([]LeaseHour(nil), hours...),
	}
}

// HoursBetween counts the contract hours dated within [from, to] inclusive.
func (c *LeaseContract) HoursBetween(from, to string) int {
	n := 0
	for _, h := range c.Hours {
		if d := h.Date(); d >= from && d <= to {
			n++
		}
	}
	return n
}

// FirstHour returns the earliest hour in insertion order, or the zero hour.
func (c *LeaseContract) FirstHour() LeaseHour {
	if len(c.Hours) == 0 {
		return LeaseHour{}
	}
	return c.Hours[0]
}

// LastHour returns the last hour in insertion order, or the zero hour.
func (c *LeaseContract) LastHour() LeaseHour {
	if len(c.Hours) == 0 {
		return LeaseHour{}
	}
	return c.Hours[len(c.Hours)-1]
}
