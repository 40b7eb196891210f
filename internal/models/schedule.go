package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Schedule is one complete conflict-free selection of exactly one section per
// active subject. Generated fresh on every invocation and never mutated.
type Schedule struct {
	Sections []Section `json:"sections"`
}

// TotalCredits sums credits across the schedule's sections.
func (s Schedule) TotalCredits() int {
	total := 0
	for _, sec := range s.Sections {
		total += sec.Credits
	}
	return total
}

// SavedSchedule is a persisted snapshot of a generated schedule a user chose
// to keep. Payload holds the JSON-encoded Schedule.
type SavedSchedule struct {
	ID        string         `db:"id" json:"id"`
	OwnerID   string         `db:"owner_id" json:"owner_id"`
	Label     string         `db:"label" json:"label"`
	Payload   types.JSONText `db:"payload" json:"-"`
	Schedule  *Schedule      `db:"-" json:"schedule,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// PairKind classifies the relationship between two sessions on the same day.
type PairKind string

const (
	// PairMatch marks two sessions that belong to the same class in both schedules.
	PairMatch PairKind = "MATCH"
	// PairConflict marks overlapping sessions from different classes.
	PairConflict PairKind = "CONFLICT"
	// PairDisjoint marks an other-schedule session with no time relation.
	PairDisjoint PairKind = "DISJOINT"
)

// SessionRef identifies one session inside a schedule for comparison output.
type SessionRef struct {
	SubjectName  string  `json:"subject_name"`
	SectionLabel string  `json:"section_label"`
	Day          Weekday `json:"day"`
	Start        int     `json:"start"`
	End          int     `json:"end"`
}

// SessionPair is one classified relationship between a primary and an other
// session. Primary is nil for PairDisjoint rows.
type SessionPair struct {
	Kind    PairKind    `json:"kind"`
	Primary *SessionRef `json:"primary,omitempty"`
	Other   SessionRef  `json:"other"`
	Comment string      `json:"comment,omitempty"`
}

// DayComparison groups classified pairs for a single weekday.
type DayComparison struct {
	Day   Weekday       `json:"day"`
	Pairs []SessionPair `json:"pairs"`
}

// TagSeverity drives presentation styling of summary tags.
type TagSeverity string

const (
	TagPositive TagSeverity = "positive"
	TagNeutral  TagSeverity = "neutral"
)

// ScheduleTag is a derived read-only annotation over one schedule.
type ScheduleTag struct {
	Icon     string      `json:"icon"`
	Label    string      `json:"label"`
	Severity TagSeverity `json:"severity"`
}
