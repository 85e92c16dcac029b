package synthesis

import (
	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/verdict"
	"asclepius/pkg/errors"
)

// checkInvariants asserts the cross-field guarantees every verdict must
// satisfy before it may leave the engine. Failures here are programming
// defects and abort emission.
func checkInvariants(v *verdict.Verdict, ops []opinion.Opinion) error {
	if v.PrimaryDepartment == "" {
		return errors.Wrap(errors.ErrSynthesisInvariant, "empty primary department")
	}

	if v.PriorityScore < 1 || v.PriorityScore > 100 {
		return errors.Wrapf(errors.ErrSynthesisInvariant, "priority score %d out of range", v.PriorityScore)
	}
	if verdict.ActionForScore(v.PriorityScore) != v.RecommendedAction {
		return errors.Wrapf(errors.ErrSynthesisInvariant,
			"action %q does not match score %d", v.RecommendedAction, v.PriorityScore)
	}

	// Every red flag must surface as a CRITICAL alert from its specialist
	for _, op := range ops {
		if !op.HasRedFlag() {
			continue
		}
		found := false
		for _, a := range v.SafetyAlerts {
			if a.Severity == verdict.AlertCritical && a.SourceSpecialty == op.Specialty {
				found = true
				break
			}
		}
		if !found {
			return errors.Wrapf(errors.ErrSynthesisInvariant,
				"red flag from %s produced no critical alert", op.Specialty)
		}
	}

	if v.FinalRiskLevel.Rank() == 0 {
		return errors.Wrapf(errors.ErrSynthesisInvariant, "unknown final risk level %q", v.FinalRiskLevel)
	}

	return nil
}
