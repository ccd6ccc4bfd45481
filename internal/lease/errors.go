package lease

import (
	"errors"

	"slavemarket/internal/model"
)

// Kind classifies lease errors.
type Kind string

const (
	KindInvalidRange          Kind = "invalid_range"
	KindInvalidTime           Kind = "invalid_time"
	KindWorkHourLimitExceeded Kind = "work_hour_limit_exceeded"
	KindSlaveBusy             Kind = "slave_busy"
	KindNotFound              Kind = "not_found"
)

// Error is a domain error reported in a Response. Only the fields relevant
// to its Kind are set; Format turns it into user-facing text.
type Error struct {
	Kind      Kind
	SlaveID   int64
	SlaveName string
	Limit     int               // KindWorkHourLimitExceeded
	Hours     []model.LeaseHour // KindSlaveBusy, in order of detection
	Entity    string            // KindNotFound: "master" or "slave"
	EntityID  int64
	Value     string // KindInvalidTime: the raw timestamp
	Err       error
}

func (e *Error) Error() string {
	return Format(e)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a lease *Error of kind k.
func IsKind(err error, k Kind) bool {
	var le *Error
	return errors.As(err, &le) && le.Kind == k
}

func invalidRange() *Error {
	return &Error{Kind: KindInvalidRange}
}

func invalidTime(value string, err error) *Error {
	return &Error{Kind: KindInvalidTime, Value: value, Err: err}
}

func notFound(entity string, id int64, err error) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, EntityID: id, Err: err}
}

func workHourLimitExceeded(slave *model.Slave, limit int) *Error {
	return &Error{Kind: KindWorkHourLimitExceeded, SlaveID: slave.ID, SlaveName: slave.Name, Limit: limit}
}

func slaveBusy(slave *model.Slave, hours []model.LeaseHour) *Error {
	return &Error{Kind: KindSlaveBusy, SlaveID: slave.ID, SlaveName: slave.Name, Hours: hours}
}
