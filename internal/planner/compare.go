package planner

import (
	"strings"

	"github.com/tintin4303/uniplanner-sub000/internal/models"
)

// Conflict comments, picked by the first matching rule in commentRules.
const (
	CommentEarlyClass   = "Both of you start painfully early, at least you suffer together."
	CommentBriefOverlap = "Just a brief overlap, barely counts."
	CommentFullClash    = "A full-on clash, these two really collide."
	CommentStuckLonger  = "You're stuck in class after your friend gets out."
	CommentLeavesFirst  = "You get out before your friend does."
	CommentGeneric      = "These two classes conflict."
)

const (
	earlyClassCutoff   = 8 * 60
	briefOverlapLimit  = 15
	fullClashThreshold = 60
)

type commentRule struct {
	applies func(primary, other models.ClassSession) bool
	comment string
}

// commentRules is order-sensitive; keep it as an explicit list so the exact
// selection per rule stays pinnable by tests.
var commentRules = []commentRule{
	{
		applies: func(p, o models.ClassSession) bool { return p.Start <= earlyClassCutoff && o.Start <= earlyClassCutoff },
		comment: CommentEarlyClass,
	},
	{
		applies: func(p, o models.ClassSession) bool { return overlapMinutes(p, o) <= briefOverlapLimit },
		comment: CommentBriefOverlap,
	},
	{
		applies: func(p, o models.ClassSession) bool { return overlapMinutes(p, o) >= fullClashThreshold },
		comment: CommentFullClash,
	},
	{
		applies: func(p, o models.ClassSession) bool { return p.End > o.End },
		comment: CommentStuckLonger,
	},
	{
		applies: func(p, o models.ClassSession) bool { return o.End > p.End },
		comment: CommentLeavesFirst,
	},
}

// ConflictComment derives the qualitative comment for an overlapping pair.
func ConflictComment(primary, other models.ClassSession) string {
	for _, rule := range commentRules {
		if rule.applies(primary, other) {
			return rule.comment
		}
	}
	return CommentGeneric
}

type daySession struct {
	section models.Section
	session models.ClassSession
}

// Compare classifies every session-pair relationship between two schedules
// for all seven weekdays. Overlapping pairs from the same class (equal
// subject name and normalised section label) are matches; other overlaps are
// conflicts carrying a derived comment; other-schedule sessions that touch
// nothing are reported as disjoint.
func Compare(primary, other models.Schedule) []models.DayComparison {
	result := make([]models.DayComparison, 0, len(models.AllWeekdays))
	for _, day := range models.AllWeekdays {
		mine := sessionsOn(primary, day)
		theirs := sessionsOn(other, day)

		pairs := make([]models.SessionPair, 0)
		for _, their := range theirs {
			touched := false
			for _, my := range mine {
				if !Overlaps(my.session, their.session) {
					continue
				}
				touched = true
				pair := models.SessionPair{
					Kind:    models.PairConflict,
					Primary: refOf(my),
					Other:   *refOf(their),
					Comment: ConflictComment(my.session, their.session),
				}
				if sameClass(my.section, their.section) {
					pair.Kind = models.PairMatch
					pair.Comment = ""
				}
				pairs = append(pairs, pair)
			}
			if !touched {
				pairs = append(pairs, models.SessionPair{
					Kind:  models.PairDisjoint,
					Other: *refOf(their),
				})
			}
		}
		result = append(result, models.DayComparison{Day: day, Pairs: pairs})
	}
	return result
}

func sessionsOn(schedule models.Schedule, day models.Weekday) []daySession {
	out := make([]daySession, 0)
	for _, section := range schedule.Sections {
		if section.NoTime {
			continue
		}
		for _, session := range section.Sessions {
			if session.Day == day {
				out = append(out, daySession{section: section, session: session})
			}
		}
	}
	return out
}

func refOf(ds daySession) *models.SessionRef {
	return &models.SessionRef{
		SubjectName:  ds.section.Name,
		SectionLabel: ds.section.SectionLabel,
		Day:          ds.session.Day,
		Start:        ds.session.Start,
		End:          ds.session.End,
	}
}

// sameClass matches subject identity plus section label after stripping a
// leading "sec"/"section" prefix, both case-insensitive.
func sameClass(a, b models.Section) bool {
	if !strings.EqualFold(strings.TrimSpace(a.Name), strings.TrimSpace(b.Name)) {
		return false
	}
	return normalizeSectionLabel(a.SectionLabel) == normalizeSectionLabel(b.SectionLabel)
}

func normalizeSectionLabel(label string) string {
	normalized := strings.ToLower(strings.TrimSpace(label))
	for _, prefix := range []string{"section", "sec"} {
		if strings.HasPrefix(normalized, prefix) {
			normalized = strings.TrimSpace(strings.TrimPrefix(normalized, prefix))
			break
		}
	}
	return normalized
}
