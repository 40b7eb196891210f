package models

import "strings"

// Weekday enumerates the seven days a session can fall on.
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
)

// AllWeekdays lists days in calendar order, Monday first.
var AllWeekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday normalises a day name. The zero value is returned for unknown input.
func ParseWeekday(raw string) Weekday {
	day := Weekday(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range AllWeekdays {
		if day == known {
			return day
		}
	}
	return ""
}

// Valid reports whether the weekday is one of the seven known values.
func (d Weekday) Valid() bool {
	return ParseWeekday(string(d)) != ""
}

// Label returns a human readable day name ("Monday").
func (d Weekday) Label() string {
	s := string(d)
	if len(s) < 2 {
		return s
	}
	return s[:1] + strings.ToLower(s[1:])
}
