package synthesis

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/triage"
	"asclepius/internal/domain/verdict"
	"asclepius/pkg/logger"
)

const maxKeyFactors = 10

// Engine is the deterministic merge core: it folds the classification and
// all surviving specialist opinions into one verdict. It only aggregates;
// it never fabricates facts beyond what its inputs contain.
type Engine struct {
	log *logger.Logger
}

// NewEngine creates the synthesis engine
func NewEngine() *Engine {
	return &Engine{
		log: logger.Get().With("component", "synthesis"),
	}
}

// Synthesize merges the council into a verdict. Opinions may be fewer than
// the full council; consensus and routing degrade to the available subset.
// Fan-in order does not matter: opinions are re-sorted canonically first.
func (e *Engine) Synthesize(
	co *triage.ClassifierOutput,
	opinions []opinion.Opinion,
	otherDepartments []opinion.OtherDepartmentScore,
) (*verdict.Verdict, error) {
	ops := make([]opinion.Opinion, len(opinions))
	copy(ops, opinions)
	sort.SliceStable(ops, func(i, j int) bool {
		return opinion.CouncilRank(ops[i].Specialty) < opinion.CouncilRank(ops[j].Specialty)
	})

	r := resolveRouting(ops)
	risk := adjustRisk(co.Prediction.RiskLabel, ops)
	alerts := extractAlerts(ops)
	workup := consolidateWorkup(ops)
	surfaced := surfaceOtherDepartments(otherDepartments)
	confidence := computeConfidence(r.consensus, ops)

	referral, referralDetails := resolveReferral(risk.final, r.primary)

	highestUrgency := 0
	for _, op := range ops {
		if op.UrgencyScore > highestUrgency {
			highestUrgency = op.UrgencyScore
		}
	}
	criticalAlerts := 0
	for _, a := range alerts {
		if a.Severity == verdict.AlertCritical {
			criticalAlerts++
		}
	}
	score, action := computePriority(risk.final, highestUrgency, criticalAlerts, referral)

	v := &verdict.Verdict{
		ID:          uuid.NewString(),
		PatientID:   co.PatientID,
		PatientName: co.PatientName,

		FinalRiskLevel:       risk.final,
		MLRiskLevel:          co.Prediction.RiskLabel,
		RiskAdjusted:         risk.adjusted,
		RiskAdjustmentReason: risk.reason,
		Confidence:           confidence,

		PrimaryDepartment:   r.primary,
		SecondaryDepartment: r.secondary,
		ReferralNeeded:      referral,
		ReferralDetails:     referralDetails,

		SpecialistSummaries: summarize(ops, r.dissents),
		CouncilConsensus:    r.consensus,
		DissentingOpinions:  r.dissents,
		OtherDepartments:    surfaced,

		SafetyAlerts:       alerts,
		Explanation:        explain(co, r, risk, criticalAlerts),
		KeyFactors:         keyFactors(co, ops, risk),
		PriorityScore:      score,
		RecommendedAction:  action,
		ConsolidatedWorkup: workup,

		CreatedAt: time.Now().UTC(),
	}

	if err := checkInvariants(v, ops); err != nil {
		// A failing invariant is a defect, never a user-facing condition
		e.log.Errorf("synthesis invariant violation for patient %s: %v", co.PatientID, err)
		return nil, err
	}

	e.log.Infow("Verdict synthesized",
		"patient_id", co.PatientID,
		"final_risk", v.FinalRiskLevel,
		"primary_department", v.PrimaryDepartment,
		"consensus", v.CouncilConsensus,
		"priority_score", v.PriorityScore,
	)

	return v, nil
}

// resolveReferral flags patients whose final risk demands care beyond a
// general ward
func resolveReferral(final triage.RiskLevel, primary string) (bool, string) {
	if final != triage.RiskHigh && final != triage.RiskCritical {
		return false, ""
	}
	if departmentsMatch(primary, DefaultDepartment) {
		return false, ""
	}
	return true, fmt.Sprintf("%s risk patient requires specialist care in %s", final, primary)
}

// summarize builds the per-specialist digest. A specialist agreed with the
// final routing unless it is on the dissent list.
func summarize(ops []opinion.Opinion, dissents []verdict.Dissent) []verdict.SpecialistSummary {
	dissenting := make(map[opinion.Specialty]bool, len(dissents))
	for _, d := range dissents {
		dissenting[d.Specialty] = true
	}

	summaries := make([]verdict.SpecialistSummary, 0, len(ops))
	for _, op := range ops {
		summaries = append(summaries, verdict.SpecialistSummary{
			Specialty:       op.Specialty,
			RelevanceScore:  op.RelevanceScore,
			UrgencyScore:    op.UrgencyScore,
			Confidence:      op.Confidence,
			OneLiner:        op.OneLiner,
			ClaimsPrimary:   op.ClaimsPrimary,
			AgreedWithFinal: !dissenting[op.Specialty],
		})
	}
	return summaries
}

func explain(co *triage.ClassifierOutput, r routing, risk riskAdjustment, criticalAlerts int) string {
	s := fmt.Sprintf("Model classified %s risk at %.1f%% confidence.",
		co.Prediction.RiskLabel, co.Prediction.MaxConfidence)
	if risk.adjusted {
		s += fmt.Sprintf(" Council adjusted risk to %s: %s.", risk.final, risk.reason)
	}
	s += fmt.Sprintf(" Routed to %s (%s consensus).", r.primary, r.consensus)
	if r.secondary != "" {
		s += fmt.Sprintf(" Secondary: %s.", r.secondary)
	}
	if criticalAlerts > 0 {
		s += fmt.Sprintf(" %d critical safety alert(s) raised.", criticalAlerts)
	}
	return s
}

// keyFactors lists the drivers behind the verdict, capped at 10
func keyFactors(co *triage.ClassifierOutput, ops []opinion.Opinion, risk riskAdjustment) []string {
	factors := make([]string, 0, maxKeyFactors)
	add := func(f string) {
		if len(factors) < maxKeyFactors {
			factors = append(factors, f)
		}
	}

	add(fmt.Sprintf("ML risk: %s (%.1f%%)", co.Prediction.RiskLabel, co.Prediction.MaxConfidence))
	if co.Derived.VitalSeverityLevel != triage.VitalLevelNormal {
		add(fmt.Sprintf("Vital severity %s (score %d)", co.Derived.VitalSeverityLevel, co.Derived.VitalSeverityScore))
	}
	if co.Derived.ComorbidityLevel != triage.ComorbidityLevelNone {
		add(fmt.Sprintf("Comorbidity risk %s (score %d)", co.Derived.ComorbidityLevel, co.Derived.ComorbidityScore))
	}
	for _, op := range ops {
		for _, f := range op.Flags {
			if f.Severity == opinion.RedFlag {
				add(fmt.Sprintf("Red flag (%s): %s", op.Specialty, f.Label))
			}
		}
	}
	for _, op := range ops {
		if op.UrgencyScore >= escalateUrgencyThreshold {
			add(fmt.Sprintf("%s urgency %d/10", op.Specialty, op.UrgencyScore))
		}
	}
	if risk.adjusted {
		add(fmt.Sprintf("Risk adjusted %s -> %s", co.Prediction.RiskLabel, risk.final))
	}

	return factors
}
