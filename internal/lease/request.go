package lease

import (
	"fmt"
	"strings"
	"time"
)

// Request asks to lease a slave between two raw timestamps.
type Request struct {
	MasterID int64  `json:"master_id"`
	SlaveID  int64  `json:"slave_id"`
	TimeFrom string `json:"time_from"`
	TimeTo   string `json:"time_to"`
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	DateLayout,
}

// ParseTime parses a raw request timestamp in loc. RFC3339 values carrying
// an offset are converted into loc.
func ParseTime(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", value)
}
