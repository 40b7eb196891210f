// Package planner implements the schedule generation engine: conflict-free
// enumeration of section combinations, declarative filtering, pairwise
// schedule comparison and summary tagging. Everything in this package is a
// pure computation over in-memory inputs; callers own all returned data.
package planner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tintin4303/uniplanner-sub000/internal/models"
	appErrors "github.com/tintin4303/uniplanner-sub000/pkg/errors"
)

// MinutesPerDay bounds the linear minute offset range [0, 1439].
const MinutesPerDay = 24 * 60

// ParseClock converts an HH:MM wall-clock string into minutes since midnight.
// Malformed input surfaces ErrInvalidTimeFormat; it indicates corrupt data and
// is never recovered from.
func ParseClock(raw string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("invalid time %q, expected HH:MM", raw))
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInvalidTimeFormat.Code, appErrors.ErrInvalidTimeFormat.Status, fmt.Sprintf("invalid hour in %q", raw))
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInvalidTimeFormat.Code, appErrors.ErrInvalidTimeFormat.Status, fmt.Sprintf("invalid minute in %q", raw))
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("time %q out of range", raw))
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as zero-padded HH:MM. Values are
// expected in [0, MinutesPerDay); out-of-range input is the caller's bug and
// is not validated here.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlaps reports whether two sessions collide. Sessions on different days
// never overlap. Intervals are half-open, so a session ending exactly when
// another starts is a legal back-to-back pair.
func Overlaps(a, b models.ClassSession) bool {
	if a.Day != b.Day {
		return false
	}
	start := a.Start
	if b.Start > start {
		start = b.Start
	}
	end := a.End
	if b.End < end {
		end = b.End
	}
	return start < end
}

// overlapMinutes returns the shared duration of two sessions, zero when disjoint.
func overlapMinutes(a, b models.ClassSession) int {
	if a.Day != b.Day {
		return 0
	}
	start := a.Start
	if b.Start > start {
		start = b.Start
	}
	end := a.End
	if b.End < end {
		end = b.End
	}
	if end <= start {
		return 0
	}
	return end - start
}
