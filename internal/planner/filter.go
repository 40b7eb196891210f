package planner

import (
	"strings"

	"github.com/tintin4303/uniplanner-sub000/internal/models"
)

// MatchesFilter evaluates a schedule against a declarative constraint. Every
// present axis must pass; absent axes are skipped. Untimed sections carry no
// sessions and therefore never fail a time axis.
func MatchesFilter(schedule models.Schedule, filter *models.FilterSpec) bool {
	if filter.Empty() {
		return true
	}
	if len(filter.DaysOff) > 0 && !passesDaysOff(schedule, filter.DaysOff) {
		return false
	}
	if filter.StartNotBefore != nil && !passesEarliestStart(schedule, *filter.StartNotBefore) {
		return false
	}
	if filter.EndNotAfter != nil && !passesLatestEnd(schedule, *filter.EndNotAfter) {
		return false
	}
	if len(filter.MustShareDay) > 0 && !passesSharedDay(schedule, filter.MustShareDay) {
		return false
	}
	return true
}

func passesDaysOff(schedule models.Schedule, daysOff []models.Weekday) bool {
	excluded := make(map[models.Weekday]bool, len(daysOff))
	for _, day := range daysOff {
		excluded[day] = true
	}
	for _, section := range schedule.Sections {
		for _, session := range section.Sessions {
			if excluded[session.Day] {
				return false
			}
		}
	}
	return true
}

func passesEarliestStart(schedule models.Schedule, bound int) bool {
	for _, section := range schedule.Sections {
		for _, session := range section.Sessions {
			if session.Start < bound {
				return false
			}
		}
	}
	return true
}

func passesLatestEnd(schedule models.Schedule, bound int) bool {
	for _, section := range schedule.Sections {
		for _, session := range section.Sessions {
			if session.End > bound {
				return false
			}
		}
	}
	return true
}

// passesSharedDay enforces the co-scheduling constraint: when every name
// fragment matched a distinct subject in the schedule, those subjects must
// share at least one common session day. With fewer matches than fragments
// the constraint is vacuously satisfied.
func passesSharedDay(schedule models.Schedule, fragments []string) bool {
	matched := make([]models.Section, 0, len(fragments))
	for _, section := range schedule.Sections {
		name := strings.ToLower(section.Name)
		for _, fragment := range fragments {
			if fragment != "" && strings.Contains(name, strings.ToLower(fragment)) {
				matched = append(matched, section)
				break
			}
		}
	}
	if len(matched) != len(fragments) {
		return true
	}

	shared := sessionDays(matched[0])
	for _, section := range matched[1:] {
		days := sessionDays(section)
		for day := range shared {
			if !days[day] {
				delete(shared, day)
			}
		}
	}
	return len(shared) > 0
}

func sessionDays(section models.Section) map[models.Weekday]bool {
	days := make(map[models.Weekday]bool, len(section.Sessions))
	for _, session := range section.Sessions {
		days[session.Day] = true
	}
	return days
}
