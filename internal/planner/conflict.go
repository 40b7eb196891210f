package planner

import "github.com/tintin4303/uniplanner-sub000/internal/models"

// ConflictsWith reports whether the candidate section collides with any
// section already placed in the partial schedule. Untimed sections never
// conflict in either direction. The first overlapping session pair decides;
// session lists are single-digit small so the quadratic scan is fine.
func ConflictsWith(partial []models.Section, candidate models.Section) bool {
	if candidate.NoTime {
		return false
	}
	for _, placed := range partial {
		if placed.NoTime {
			continue
		}
		for _, have := range placed.Sessions {
			for _, want := range candidate.Sessions {
				if Overlaps(have, want) {
					return true
				}
			}
		}
	}
	return false
}
