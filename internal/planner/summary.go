package planner

import (
	"fmt"
	"strings"

	"github.com/tintin4303/uniplanner-sub000/internal/models"
)

const (
	lateStartBound    = 10 * 60
	earlyEndBound     = 14 * 60
	lunchStart        = 12 * 60
	lunchEnd          = 13 * 60
	maxListedFreeDays = 2
)

// Summarize derives presentation tags for one generated schedule: free days,
// late starts, early ends and a protected lunch block. Tags annotate results,
// they never filter them.
func Summarize(schedule models.Schedule) []models.ScheduleTag {
	busy := make(map[models.Weekday]bool)
	earliest := -1
	latest := -1
	lunchBlocked := false

	for _, section := range schedule.Sections {
		for _, session := range section.Sessions {
			busy[session.Day] = true
			if earliest < 0 || session.Start < earliest {
				earliest = session.Start
			}
			if session.End > latest {
				latest = session.End
			}
			if session.Start < lunchEnd && session.End > lunchStart {
				lunchBlocked = true
			}
		}
	}

	tags := make([]models.ScheduleTag, 0, 4)

	freeDays := make([]models.Weekday, 0)
	for _, day := range models.AllWeekdays {
		if !busy[day] {
			freeDays = append(freeDays, day)
		}
	}
	if len(freeDays) > 0 && len(freeDays) <= maxListedFreeDays {
		labels := make([]string, 0, len(freeDays))
		for _, day := range freeDays {
			labels = append(labels, day.Label())
		}
		tags = append(tags, models.ScheduleTag{
			Icon:     "calendar-off",
			Label:    fmt.Sprintf("%s off", strings.Join(labels, ", ")),
			Severity: models.TagPositive,
		})
	} else if len(freeDays) > maxListedFreeDays {
		tags = append(tags, models.ScheduleTag{
			Icon:     "calendar-off",
			Label:    fmt.Sprintf("%d free days", len(freeDays)),
			Severity: models.TagPositive,
		})
	}

	if earliest >= lateStartBound {
		tags = append(tags, models.ScheduleTag{
			Icon:     "sunrise",
			Label:    fmt.Sprintf("Starts late (%s)", FormatClock(earliest)),
			Severity: models.TagPositive,
		})
	}
	if latest >= 0 && latest <= earlyEndBound {
		tags = append(tags, models.ScheduleTag{
			Icon:     "sunset",
			Label:    fmt.Sprintf("Ends early (%s)", FormatClock(latest)),
			Severity: models.TagPositive,
		})
	}
	if len(busy) > 0 && !lunchBlocked {
		tags = append(tags, models.ScheduleTag{
			Icon:     "utensils",
			Label:    "Lunch free",
			Severity: models.TagNeutral,
		})
	}
	return tags
}
