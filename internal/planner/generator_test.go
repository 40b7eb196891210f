package planner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tintin4303/uniplanner-sub000/internal/models"
)

func TestGenerateExcludesConflictingCombination(t *testing.T) {
	sections := []models.Section{
		timed("Math", "1", ses(models.Monday, "09:00", "10:00")),
		timed("Math", "2", ses(models.Monday, "10:00", "11:00")),
		timed("Art", "1", ses(models.Monday, "09:30", "10:30")),
	}

	schedules := Generate(sections, nil)

	require.Len(t, schedules, 1)
	require.Len(t, schedules[0].Sections, 2)
	assert.Equal(t, "Math-2", schedules[0].Sections[0].ID)
	assert.Equal(t, "Art-1", schedules[0].Sections[1].ID)
}

func TestGenerateUntimedSectionNeverPruned(t *testing.T) {
	sections := []models.Section{
		timed("Math", "1", ses(models.Monday, "09:00", "10:00")),
		timed("Math", "2", ses(models.Monday, "10:00", "11:00")),
		untimed("Seminar", "1"),
	}

	schedules := Generate(sections, nil)

	require.Len(t, schedules, 2)
	for _, schedule := range schedules {
		found := false
		for _, section := range schedule.Sections {
			if section.Name == "Seminar" {
				found = true
			}
		}
		assert.True(t, found, "untimed section must appear in every schedule")
	}
}

func TestGenerateCountsFullCartesianProductWhenNoConflicts(t *testing.T) {
	// 2 x 2 x 3 sections on disjoint days: all 12 combinations are legal.
	sections := []models.Section{
		timed("Math", "1", ses(models.Monday, "08:00", "09:00")),
		timed("Math", "2", ses(models.Monday, "09:00", "10:00")),
		timed("Physics", "1", ses(models.Tuesday, "08:00", "09:00")),
		timed("Physics", "2", ses(models.Tuesday, "09:00", "10:00")),
		timed("Art", "1", ses(models.Wednesday, "08:00", "09:00")),
		timed("Art", "2", ses(models.Wednesday, "09:00", "10:00")),
		timed("Art", "3", ses(models.Wednesday, "10:00", "11:00")),
	}

	schedules := Generate(sections, nil)
	assert.Len(t, schedules, 12)
}

func TestGenerateNoConflictInvariant(t *testing.T) {
	sections := []models.Section{
		timed("Math", "1", ses(models.Monday, "09:00", "11:00"), ses(models.Wednesday, "09:00", "11:00")),
		timed("Math", "2", ses(models.Tuesday, "09:00", "11:00")),
		timed("Physics", "1", ses(models.Monday, "10:00", "12:00")),
		timed("Physics", "2", ses(models.Wednesday, "10:30", "12:00")),
		timed("Chem", "1", ses(models.Tuesday, "10:00", "12:00")),
		untimed("Seminar", "1"),
	}

	schedules := Generate(sections, nil)
	require.NotEmpty(t, schedules)

	for _, schedule := range schedules {
		for i, a := range schedule.Sections {
			for _, b := range schedule.Sections[i+1:] {
				if a.NoTime || b.NoTime {
					continue
				}
				for _, sa := range a.Sessions {
					for _, sb := range b.Sessions {
						assert.False(t, Overlaps(sa, sb), "%s vs %s", a.ID, b.ID)
					}
				}
			}
		}
	}
}

func TestGenerateCapsResults(t *testing.T) {
	// 4 subjects x 3 non-conflicting sections each = 81 legal combinations.
	sections := make([]models.Section, 0, 12)
	days := []models.Weekday{models.Monday, models.Tuesday, models.Wednesday, models.Thursday}
	for i, day := range days {
		for j := 0; j < 3; j++ {
			sections = append(sections, timed(
				fmt.Sprintf("Subject%d", i),
				fmt.Sprintf("%d", j+1),
				models.ClassSession{Day: day, Start: 480 + j*60, End: 540 + j*60},
			))
		}
	}

	schedules := Generate(sections, nil)
	assert.Len(t, schedules, MaxSchedules)
}

func TestGenerateDeterministicOrdering(t *testing.T) {
	sections := []models.Section{
		timed("Math", "1", ses(models.Monday, "08:00", "09:00")),
		timed("Math", "2", ses(models.Monday, "09:00", "10:00")),
		timed("Art", "1", ses(models.Tuesday, "08:00", "09:00")),
		timed("Art", "2", ses(models.Tuesday, "09:00", "10:00")),
	}

	first := Generate(sections, nil)
	second := Generate(sections, nil)
	require.Equal(t, first, second)

	// Lexicographic over (group order, section order): Math varies slowest.
	require.Len(t, first, 4)
	assert.Equal(t, "Math-1", first[0].Sections[0].ID)
	assert.Equal(t, "Art-1", first[0].Sections[1].ID)
	assert.Equal(t, "Art-2", first[1].Sections[1].ID)
	assert.Equal(t, "Math-2", first[2].Sections[0].ID)
}

func TestGenerateSkipsInactiveAndEmptySubjects(t *testing.T) {
	inactive := timed("Dropped", "1", ses(models.Friday, "08:00", "09:00"))
	inactive.Active = false

	sections := []models.Section{
		timed("Math", "1", ses(models.Monday, "08:00", "09:00")),
		inactive,
	}

	schedules := Generate(sections, nil)
	require.Len(t, schedules, 1)
	require.Len(t, schedules[0].Sections, 1)
	assert.Equal(t, "Math", schedules[0].Sections[0].Name)
}

func TestGenerateNoActiveSubjectsYieldsEmptyList(t *testing.T) {
	schedules := Generate(nil, nil)
	assert.Empty(t, schedules)

	inactive := timed("Math", "1", ses(models.Monday, "08:00", "09:00"))
	inactive.Active = false
	schedules = Generate([]models.Section{inactive}, nil)
	assert.Empty(t, schedules)
}

func TestGenerateFilterMonotonicity(t *testing.T) {
	sections := []models.Section{
		timed("Math", "1", ses(models.Monday, "08:00", "09:00")),
		timed("Math", "2", ses(models.Friday, "09:00", "10:00")),
		timed("Art", "1", ses(models.Tuesday, "08:00", "09:00")),
	}
	filter := &models.FilterSpec{DaysOff: []models.Weekday{models.Friday}}

	unfiltered := Generate(sections, nil)
	filtered := Generate(sections, filter)

	require.Len(t, unfiltered, 2)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Math-1", filtered[0].Sections[0].ID)

	// Every filtered schedule appears in the unfiltered output, same order.
	assert.Equal(t, unfiltered[0], filtered[0])
}
