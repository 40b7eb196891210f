package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ClassSession is one weekly occurrence of a section. Start and End are
// minutes since midnight with Start < End; sessions never wrap past midnight.
type ClassSession struct {
	Day   Weekday `json:"day"`
	Start int     `json:"start"`
	End   int     `json:"end"`
}

// Section is one selectable offering of a subject. Sections sharing a Name are
// mutually exclusive alternatives; exactly one of them appears in a generated
// schedule. A NoTime section carries no sessions and can never conflict.
type Section struct {
	ID           string         `db:"id" json:"id"`
	OwnerID      string         `db:"owner_id" json:"owner_id"`
	Name         string         `db:"name" json:"name"`
	SectionLabel string         `db:"section_label" json:"section_label"`
	Credits      int            `db:"credits" json:"credits"`
	NoTime       bool           `db:"no_time" json:"no_time"`
	Active       bool           `db:"active" json:"active"`
	SessionsRaw  types.JSONText `db:"sessions" json:"-"`
	Sessions     []ClassSession `db:"-" json:"sessions"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// SectionFilter captures supported filters for listing sections.
type SectionFilter struct {
	OwnerID    string
	Search     string
	ActiveOnly bool
	Page       int
	PageSize   int
}

// FilterSpec is a declarative post-generation constraint. A nil/absent field
// leaves that axis unconstrained.
type FilterSpec struct {
	DaysOff        []Weekday `json:"days_off,omitempty"`
	StartNotBefore *int      `json:"start_not_before,omitempty"`
	EndNotAfter    *int      `json:"end_not_after,omitempty"`
	MustShareDay   []string  `json:"must_share_day,omitempty"`
}

// Empty reports whether no constraint axis is set.
func (f *FilterSpec) Empty() bool {
	if f == nil {
		return true
	}
	return len(f.DaysOff) == 0 && f.StartNotBefore == nil && f.EndNotAfter == nil && len(f.MustShareDay) == 0
}
