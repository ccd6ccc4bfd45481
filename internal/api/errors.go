package api

import "errors"

var (
	errInvalidFrom  = errors.New("invalid from format; expected YYYY-MM-DD")
	errInvalidTo    = errors.New("invalid to format; expected YYYY-MM-DD")
	errRangeOrder   = errors.New("from must be before or equal to to")
	errRangeTooWide = errors.New("date range exceeds maximum of 366 days")
)
