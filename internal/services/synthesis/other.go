package synthesis

import (
	"sort"

	"asclepius/internal/domain/opinion"
)

// surfaceOtherDepartments filters the scorer output down to verdict-worthy
// entries, sorted by descending relevance. Purely informational: these never
// touch risk, routing or alerts.
func surfaceOtherDepartments(scores []opinion.OtherDepartmentScore) []opinion.OtherDepartmentScore {
	surfaced := make([]opinion.OtherDepartmentScore, 0)
	for _, s := range scores {
		if s.Relevance >= opinion.SurfaceThreshold {
			surfaced = append(surfaced, s)
		}
	}

	sort.SliceStable(surfaced, func(i, j int) bool {
		return surfaced[i].Relevance > surfaced[j].Relevance
	})

	return surfaced
}
