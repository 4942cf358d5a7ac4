package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the accepted format for date bounds.
const DateLayout = "2006-01-02"

// DateRange is an inclusive calendar-date window. Either bound may be nil.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ParseDateRange parses optional YYYY-MM-DD bounds. Empty strings leave the
// corresponding bound open.
func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange

	parse := func(field, value string) (*time.Time, error) {
		value = strings.TrimSpace(value)
		if value == "" {
			return nil, nil
		}
		d, err := time.Parse(DateLayout, value)
		if err != nil {
			return nil, NewValidationError(ErrCodeInvalidDate,
				fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field))
		}
		return &d, nil
	}

	var err error
	if r.From, err = parse("dateFrom", from); err != nil {
		return DateRange{}, err
	}
	if r.To, err = parse("dateTo", to); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// IsOpen reports whether neither bound is set.
func (r DateRange) IsOpen() bool {
	return r.From == nil && r.To == nil
}

// Start returns the inclusive lower timestamp bound, or nil.
func (r DateRange) Start() *time.Time {
	if r.From == nil {
		return nil
	}
	start := truncateDay(*r.From)
	return &start
}

// End returns the exclusive upper timestamp bound (the day after To), or nil.
func (r DateRange) End() *time.Time {
	if r.To == nil {
		return nil
	}
	end := truncateDay(*r.To).AddDate(0, 0, 1)
	return &end
}

// truncateDay returns local midnight of t's calendar date. The process time
// zone (TZ) defines the business day.
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
