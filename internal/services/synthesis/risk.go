package synthesis

import (
	"fmt"
	"strings"

	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/triage"
)

const (
	escalateUrgencyThreshold   = 7
	escalateUrgencyCount       = 2
	deescalateRelevanceFloor   = 3
	deescalateUrgencyCeiling   = 3
	criticalUrgencyThreshold   = 8
	criticalRedFlagOpinionsMin = 2
)

type riskAdjustment struct {
	final    triage.RiskLevel
	adjusted bool
	reason   string
}

// adjustRisk applies the council's view on top of the model's label.
// Escalation beats de-escalation; the Critical override runs last and can
// only raise the level.
func adjustRisk(ml triage.RiskLevel, opinions []opinion.Opinion) riskAdjustment {
	adj := riskAdjustment{final: ml}

	redFlagged := make([]opinion.Opinion, 0)
	urgent := make([]opinion.Opinion, 0)
	for _, op := range opinions {
		if op.HasRedFlag() {
			redFlagged = append(redFlagged, op)
		}
		if op.UrgencyScore >= escalateUrgencyThreshold {
			urgent = append(urgent, op)
		}
	}

	switch {
	case len(redFlagged) > 0:
		adj.final = ml.Escalate()
		adj.adjusted = adj.final != ml
		adj.reason = fmt.Sprintf("red flag raised by %s", specialtyList(redFlagged))
	case len(urgent) >= escalateUrgencyCount:
		adj.final = ml.Escalate()
		adj.adjusted = adj.final != ml
		adj.reason = fmt.Sprintf("high urgency from %s", urgencyList(urgent))
	case ml == triage.RiskHigh && allCalm(opinions):
		adj.final = ml.DeEscalate()
		adj.adjusted = true
		adj.reason = "all relevant specialists report low urgency with no red flags"
	}

	// Critical override, deliberately narrow
	critical := len(redFlagged) >= criticalRedFlagOpinionsMin
	if !critical {
		for _, op := range redFlagged {
			if op.Confidence == opinion.ConfidenceHigh && op.UrgencyScore >= criticalUrgencyThreshold {
				critical = true
				break
			}
		}
	}
	if critical && adj.final != triage.RiskCritical {
		adj.final = triage.RiskCritical
		adj.adjusted = true
		adj.reason = fmt.Sprintf("critical override: red flags from %s", specialtyList(redFlagged))
	}

	return adj
}

// allCalm holds when every materially relevant opinion reports low urgency
// and no red flag exists anywhere
func allCalm(opinions []opinion.Opinion) bool {
	for _, op := range opinions {
		if op.HasRedFlag() {
			return false
		}
		if op.RelevanceScore > deescalateRelevanceFloor && op.UrgencyScore >= deescalateUrgencyCeiling {
			return false
		}
	}
	return true
}

func specialtyList(ops []opinion.Opinion) string {
	names := make([]string, 0, len(ops))
	for _, op := range ops {
		names = append(names, string(op.Specialty))
	}
	return strings.Join(names, ", ")
}

func urgencyList(ops []opinion.Opinion) string {
	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		parts = append(parts, fmt.Sprintf("%s (urgency %d)", op.Specialty, op.UrgencyScore))
	}
	return strings.Join(parts, ", ")
}
