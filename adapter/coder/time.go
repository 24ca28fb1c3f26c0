package coder

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Timestamp converts values to UTC instants with millisecond precision.
type Timestamp struct {
	location *time.Location
}

// NewTimestamp returns a [Timestamp] configured by the given options.
func NewTimestamp(opts ...TimestampOption) Timestamp {
	var t Timestamp
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// TypeName implements [domain.TypeNamer].
func (Timestamp) TypeName() string { return TagTime }

// ToWire implements [domain.Coder].
func (Timestamp) ToWire(v any) any {
	switch t := v.(type) {
	case nil, bool:
		return nil
	case time.Time:
		return normalizeTime(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return normalizeTime(*t)
	case CalendarDate:
		return t.Time()
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
	}
	parsed, err := cast.ToTimeE(v)
	if err != nil {
		return nil
	}
	return normalizeTime(parsed)
}

// FromWire implements [domain.Coder].
func (t Timestamp) FromWire(v any) any {
	if tm, ok := v.(time.Time); ok && t.location != nil {
		return tm.In(t.location)
	}
	return v
}

func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// CalendarDate is the application value of date keys.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in its own location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// Time returns midnight of the date in UTC.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Valid reports whether the date exists in the calendar.
func (d CalendarDate) Valid() bool {
	return DateOf(d.Time()) == d
}

// String implements [fmt.Stringer].
func (d CalendarDate) String() string {
	return d.Time().Format(time.DateOnly)
}

// Date converts values to calendar dates, stored as midnight UTC.
type Date struct{}

// TypeName implements [domain.TypeNamer].
func (Date) TypeName() string { return TagDate }

// ToWire implements [domain.Coder].
func (Date) ToWire(v any) any {
	switch t := v.(type) {
	case CalendarDate:
		if !t.Valid() {
			return nil
		}
		return t.Time()
	case time.Time:
		return DateOf(t).Time()
	case *time.Time:
		if t == nil {
			return nil
		}
		return DateOf(*t).Time()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		if parsed, err := time.Parse(time.DateOnly, s); err == nil {
			return parsed
		}
		if parsed, err := cast.ToTimeE(s); err == nil {
			return DateOf(parsed).Time()
		}
	}
	return nil
}

// FromWire implements [domain.Coder].
func (d Date) FromWire(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case CalendarDate:
		return t
	case time.Time:
		return DateOf(t.UTC())
	}
	if tm, ok := d.ToWire(v).(time.Time); ok {
		return DateOf(tm)
	}
	return nil
}
