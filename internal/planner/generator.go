package planner

import "github.com/tintin4303/uniplanner-sub000/internal/models"

// MaxSchedules caps the number of generated combinations. The cap is checked
// only when a complete assignment is reached, so branches already entered may
// still finish their descent; combinations past the cap are silently never
// produced. Hitting the cap is not an error and is indistinguishable from
// finding exactly MaxSchedules results.
const MaxSchedules = 50

// subjectGroup is the derived set of mutually exclusive sections sharing a
// subject name, one axis of the cartesian product. Rebuilt on every call;
// grouping a flat list is cheap enough that no index is kept.
type subjectGroup struct {
	name     string
	sections []models.Section
}

// Generate enumerates every combination of one active section per subject with
// no overlapping timed sessions, in the lexicographic order induced by input
// order, capped at MaxSchedules. When a filter is given, only schedules
// passing it are returned, relative order preserved. Zero active subjects
// yield an empty, non-error result. Deterministic for identical input order.
func Generate(sections []models.Section, filter *models.FilterSpec) []models.Schedule {
	groups := groupBySubject(sections)
	if len(groups) == 0 {
		return []models.Schedule{}
	}

	results := make([]models.Schedule, 0)
	partial := make([]models.Section, 0, len(groups))
	backtrack(groups, 0, partial, &results)

	if filter.Empty() {
		return results
	}
	kept := make([]models.Schedule, 0, len(results))
	for _, schedule := range results {
		if MatchesFilter(schedule, filter) {
			kept = append(kept, schedule)
		}
	}
	return kept
}

// groupBySubject partitions active sections by subject name, preserving the
// order of first appearance and within-group input order. Subjects whose
// sections are all inactive drop out entirely.
func groupBySubject(sections []models.Section) []subjectGroup {
	index := make(map[string]int)
	groups := make([]subjectGroup, 0)
	for _, section := range sections {
		if !section.Active {
			continue
		}
		at, ok := index[section.Name]
		if !ok {
			index[section.Name] = len(groups)
			groups = append(groups, subjectGroup{name: section.Name})
			at = len(groups) - 1
		}
		groups[at].sections = append(groups[at].sections, section)
	}
	return groups
}

// backtrack walks the cartesian product depth-first. A conflicting section
// abandons only its own subtree; sibling options are still tried.
func backtrack(groups []subjectGroup, depth int, partial []models.Section, results *[]models.Schedule) {
	if len(*results) >= MaxSchedules {
		return
	}
	if depth == len(groups) {
		picked := make([]models.Section, len(partial))
		copy(picked, partial)
		*results = append(*results, models.Schedule{Sections: picked})
		return
	}
	for _, candidate := range groups[depth].sections {
		if ConflictsWith(partial, candidate) {
			continue
		}
		backtrack(groups, depth+1, append(partial, candidate), results)
		if len(*results) >= MaxSchedules {
			return
		}
	}
}
