package model

import (
	"errors"
	"fmt"
	"time"
)

// HourLayout is the canonical key of a leased hour: date plus hour of day.
const HourLayout = "2006-01-02 15"

// ErrInvalidHourFormat is returned when a canonical hour key cannot be parsed.
var ErrInvalidHourFormat = errors.New("invalid hour format")

// LeaseHour identifies one calendar hour. The zero value is not a valid hour.
type LeaseHour struct {
	key string
	t   time.Time
}

// ParseLeaseHour builds a LeaseHour from a "YYYY-MM-DD HH" key.
func ParseLeaseHour(key string) (LeaseHour, error) {
	t, err := time.Parse(HourLayout, key)
	if err != nil {
		return LeaseHour{}, fmt.Errorf("%w: %q", ErrInvalidHourFormat, key)
	}
	return LeaseHour{key: t.Format(HourLayout), t: t}, nil
}

// MustLeaseHour is like ParseLeaseHour but panics on malformed keys.
func MustLeaseHour(key string) LeaseHour {
	h, err := ParseLeaseHour(key)
	if err != nil {
		panic(err)
	}
	return h
}

// NewLeaseHour truncates t to the start of its hour.
func NewLeaseHour(t time.Time) LeaseHour {
	start := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	return LeaseHour{key: start.Format(HourLayout), t: start}
}

// String returns the canonical key.
func (h LeaseHour) String() string {
	return h.key
}

// Date returns the calendar date part ("2006-01-02").
func (h LeaseHour) Date() string {
	return h.t.Format("2006-01-02")
}

// Hour returns the two-digit hour of day ("15").
func (h LeaseHour) Hour() string {
	return h.t.Format("15")
}

// HourOfDay returns the hour of day as a number.
func (h LeaseHour) HourOfDay() int {
	return h.t.Hour()
}

// Time returns the start of the hour.
func (h LeaseHour) Time() time.Time {
	return h.t
}

// IsZero reports whether h was never initialised.
func (h LeaseHour) IsZero() bool {
	return h.key == ""
}

// Equal compares canonical keys only.
func (h LeaseHour) Equal(other LeaseHour) bool {
	return h.key == other.key
}

func (h LeaseHour) MarshalText() ([]byte, error) {
	return []byte(h.key), nil
}

func (h *LeaseHour) UnmarshalText(text []byte) error {
	parsed, err := ParseLeaseHour(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
