package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tintin4303/uniplanner-sub000/internal/models"
)

func tagLabels(tags []models.ScheduleTag) []string {
	labels := make([]string, 0, len(tags))
	for _, tag := range tags {
		labels = append(labels, tag.Label)
	}
	return labels
}

func TestSummarizeFreeDaysListedWhenFew(t *testing.T) {
	schedule := scheduleOf(
		timed("Math", "1", ses(models.Monday, "09:00", "10:00")),
		timed("Art", "1", ses(models.Tuesday, "09:00", "10:00")),
		timed("Chem", "1", ses(models.Wednesday, "09:00", "10:00")),
		timed("Bio", "1", ses(models.Thursday, "09:00", "10:00")),
		timed("Lit", "1", ses(models.Friday, "09:00", "10:00")),
	)

	labels := tagLabels(Summarize(schedule))
	assert.Contains(t, labels, "Saturday, Sunday off")
}

func TestSummarizeFreeDaysCountedWhenMany(t *testing.T) {
	schedule := scheduleOf(timed("Math", "1", ses(models.Monday, "09:00", "10:00")))

	labels := tagLabels(Summarize(schedule))
	assert.Contains(t, labels, "6 free days")
}

func TestSummarizeStartsLateAndEndsEarly(t *testing.T) {
	schedule := scheduleOf(
		timed("Math", "1", ses(models.Monday, "10:00", "11:00")),
		timed("Art", "1", ses(models.Tuesday, "11:00", "14:00")),
	)

	labels := tagLabels(Summarize(schedule))
	assert.Contains(t, labels, "Starts late (10:00)")
	assert.Contains(t, labels, "Ends early (14:00)")
}

func TestSummarizeLunchFree(t *testing.T) {
	free := scheduleOf(
		timed("Math", "1", ses(models.Monday, "09:00", "12:00")),
		timed("Art", "1", ses(models.Monday, "13:00", "14:00")),
	)
	blocked := scheduleOf(
		timed("Math", "1", ses(models.Monday, "11:30", "12:30")),
	)

	assert.Contains(t, tagLabels(Summarize(free)), "Lunch free")
	assert.NotContains(t, tagLabels(Summarize(blocked)), "Lunch free")
}

func TestSummarizeUntimedOnlyScheduleHasNoTimeTags(t *testing.T) {
	schedule := scheduleOf(untimed("Seminar", "1"))

	tags := Summarize(schedule)
	require.Len(t, tags, 1)
	assert.Equal(t, "7 free days", tags[0].Label)

	// No busy day means no lunch-free, starts-late or ends-early tags.
	assert.NotContains(t, tagLabels(tags), "Lunch free")
}
