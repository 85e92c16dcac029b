package synthesis

import (
	"sort"
	"strings"

	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/verdict"
)

// DefaultDepartment receives every patient no specialist claims
const DefaultDepartment = "General Medicine"

// secondaryRelevanceThreshold gates secondary department assignment
const secondaryRelevanceThreshold = 5

// materialRelevanceThreshold gates which opinions feed the confidence bonus.
// Consensus itself is graded over claimants and dissents: an opinion that
// names no department has nothing to agree or disagree with.
const materialRelevanceThreshold = 5

type routing struct {
	primary   string
	secondary string
	consensus verdict.Consensus
	dissents  []verdict.Dissent
}

// resolveRouting computes department assignment, consensus classification
// and dissent from the council. Opinions must already be in canonical order;
// all tie-breaks fall back to that order, keeping the result deterministic.
func resolveRouting(opinions []opinion.Opinion) routing {
	claimants := make([]opinion.Opinion, 0, len(opinions))
	for _, op := range opinions {
		if op.ClaimsPrimary {
			claimants = append(claimants, op)
		}
	}

	// Highest weighted score wins; canonical order breaks ties
	ranked := make([]opinion.Opinion, len(claimants))
	copy(ranked, claimants)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].WeightedScore() > ranked[j].WeightedScore()
	})

	r := routing{}
	var primaryWinner *opinion.Opinion
	if len(ranked) == 0 {
		r.primary = DefaultDepartment
	} else {
		r.primary = ranked[0].RecommendedDepartment
		primaryWinner = &ranked[0]
	}

	// Runner-up claim takes secondary when relevant enough
	if len(ranked) > 1 && ranked[1].RelevanceScore >= secondaryRelevanceThreshold {
		r.secondary = ranked[1].RecommendedDepartment
	}

	// Otherwise any sufficiently relevant non-primary opinion may surface
	// as secondary, highest relevance first
	if r.secondary == "" {
		best := -1
		for i, op := range opinions {
			if primaryWinner != nil && op.Specialty == primaryWinner.Specialty {
				continue
			}
			if op.RelevanceScore < secondaryRelevanceThreshold {
				continue
			}
			dept := secondaryName(op)
			if departmentsMatch(dept, r.primary) {
				continue
			}
			if best == -1 || op.RelevanceScore > opinions[best].RelevanceScore {
				best = i
			}
		}
		if best >= 0 {
			r.secondary = secondaryName(opinions[best])
		}
	}
	if departmentsMatch(r.secondary, r.primary) {
		r.secondary = ""
	}

	// A claim that lost to a different department is a dissent
	for _, op := range claimants {
		if !departmentsMatch(op.RecommendedDepartment, r.primary) {
			r.dissents = append(r.dissents, verdict.Dissent{
				Specialty:             op.Specialty,
				RecommendedDepartment: op.RecommendedDepartment,
				RelevanceScore:        op.RelevanceScore,
			})
		}
	}

	r.consensus = classifyConsensus(claimants, r.dissents)

	return r
}

// classifyConsensus grades council agreement. Zero claims is its own state:
// the General Medicine fallback is a default, not an agreement.
func classifyConsensus(claimants []opinion.Opinion, dissents []verdict.Dissent) verdict.Consensus {
	switch {
	case len(claimants) == 0:
		return verdict.ConsensusNoClaim
	case len(claimants) == 1:
		return verdict.ConsensusSingleClaim
	}

	agree := len(claimants) - len(dissents)
	switch {
	case len(dissents) == 0:
		return verdict.ConsensusUnanimous
	case len(dissents) <= 2 && agree > len(dissents):
		return verdict.ConsensusMajority
	default:
		return verdict.ConsensusSplit
	}
}

// departmentsMatch does a case-insensitive substring match in either
// direction, so "Cardiology" matches "Cardiology Department".
func departmentsMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	la, lb := strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

// secondaryName is the department a non-claiming opinion stands for
func secondaryName(op opinion.Opinion) string {
	if op.RecommendedDepartment != "" {
		return op.RecommendedDepartment
	}
	return string(op.Specialty)
}
