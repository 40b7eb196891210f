package planner

import (
	"fmt"

	"github.com/tintin4303/uniplanner-sub000/internal/models"
)

// Shared fixture helpers for the planner tests.

func ses(day models.Weekday, start, end string) models.ClassSession {
	s, err := ParseClock(start)
	if err != nil {
		panic(fmt.Sprintf("bad fixture start %q: %v", start, err))
	}
	e, err := ParseClock(end)
	if err != nil {
		panic(fmt.Sprintf("bad fixture end %q: %v", end, err))
	}
	return models.ClassSession{Day: day, Start: s, End: e}
}

func timed(name, label string, sessions ...models.ClassSession) models.Section {
	return models.Section{
		ID:           name + "-" + label,
		Name:         name,
		SectionLabel: label,
		Credits:      3,
		Active:       true,
		Sessions:     sessions,
	}
}

func untimed(name, label string) models.Section {
	return models.Section{
		ID:           name + "-" + label,
		Name:         name,
		SectionLabel: label,
		Credits:      1,
		NoTime:       true,
		Active:       true,
	}
}

func scheduleOf(sections ...models.Section) models.Schedule {
	return models.Schedule{Sections: sections}
}
