package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/triage"
)

func withRedFlag(op opinion.Opinion, label string) opinion.Opinion {
	op.Flags = append(op.Flags, opinion.Flag{Severity: opinion.RedFlag, Label: label})
	return op
}

func TestAdjustRiskDefaultPassthrough(t *testing.T) {
	ops := []opinion.Opinion{
		deferring(opinion.Cardiology, 4, 4),
		deferring(opinion.Neurology, 3, 2),
	}

	adj := adjustRisk(triage.RiskMedium, ops)
	assert.Equal(t, triage.RiskMedium, adj.final)
	assert.False(t, adj.adjusted)
	assert.Empty(t, adj.reason)
}

func TestAdjustRiskEscalatesOnRedFlag(t *testing.T) {
	ops := []opinion.Opinion{
		withRedFlag(deferring(opinion.Cardiology, 8, 5), "possible ACS"),
	}

	adj := adjustRisk(triage.RiskMedium, ops)
	assert.Equal(t, triage.RiskHigh, adj.final)
	assert.True(t, adj.adjusted)
	assert.Contains(t, adj.reason, "Cardiology")
}

func TestAdjustRiskEscalatesOnTwoUrgentOpinions(t *testing.T) {
	ops := []opinion.Opinion{
		deferring(opinion.Cardiology, 6, 7),
		deferring(opinion.EmergencyMedicine, 7, 8),
	}

	adj := adjustRisk(triage.RiskLow, ops)
	assert.Equal(t, triage.RiskMedium, adj.final)
	assert.True(t, adj.adjusted)
	assert.Contains(t, adj.reason, "urgency")
}

func TestAdjustRiskSingleUrgentOpinionDoesNotEscalate(t *testing.T) {
	ops := []opinion.Opinion{
		deferring(opinion.Cardiology, 6, 8),
		deferring(opinion.Neurology, 2, 1),
	}

	adj := adjustRisk(triage.RiskLow, ops)
	assert.Equal(t, triage.RiskLow, adj.final)
	assert.False(t, adj.adjusted)
}

func TestAdjustRiskDeEscalatesCalmHigh(t *testing.T) {
	ops := []opinion.Opinion{
		deferring(opinion.Cardiology, 5, 2),
		deferring(opinion.Neurology, 4, 1),
		deferring(opinion.GeneralMedicine, 6, 2),
	}

	adj := adjustRisk(triage.RiskHigh, ops)
	assert.Equal(t, triage.RiskMedium, adj.final)
	assert.True(t, adj.adjusted)
}

func TestAdjustRiskNoDeEscalationBelowHigh(t *testing.T) {
	ops := []opinion.Opinion{
		deferring(opinion.Cardiology, 5, 2),
	}

	adj := adjustRisk(triage.RiskMedium, ops)
	assert.Equal(t, triage.RiskMedium, adj.final)
	assert.False(t, adj.adjusted)
}

func TestAdjustRiskNoDeEscalationWithUrgentRelevantOpinion(t *testing.T) {
	ops := []opinion.Opinion{
		deferring(opinion.Cardiology, 5, 4),
	}

	adj := adjustRisk(triage.RiskHigh, ops)
	assert.Equal(t, triage.RiskHigh, adj.final)
	assert.False(t, adj.adjusted)
}

func TestAdjustRiskCriticalOverrideHighConfidenceRedFlag(t *testing.T) {
	op := withRedFlag(deferring(opinion.Cardiology, 9, 9), "STEMI pattern")
	op.Confidence = opinion.ConfidenceHigh

	adj := adjustRisk(triage.RiskMedium, []opinion.Opinion{op})
	assert.Equal(t, triage.RiskCritical, adj.final)
	assert.True(t, adj.adjusted)
	assert.Contains(t, adj.reason, "critical override")
}

func TestAdjustRiskCriticalOverrideTwoRedFlaggedOpinions(t *testing.T) {
	ops := []opinion.Opinion{
		withRedFlag(deferring(opinion.Cardiology, 7, 5), "arrhythmia"),
		withRedFlag(deferring(opinion.Pulmonology, 6, 5), "severe hypoxia"),
	}

	adj := adjustRisk(triage.RiskLow, ops)
	assert.Equal(t, triage.RiskCritical, adj.final)
}

func TestAdjustRiskNoCriticalForLowConfidenceRedFlag(t *testing.T) {
	// Single red flag, MEDIUM confidence, urgency 9: escalates but no override
	op := withRedFlag(deferring(opinion.Cardiology, 9, 9), "suspicious pattern")
	op.Confidence = opinion.ConfidenceMedium

	adj := adjustRisk(triage.RiskMedium, []opinion.Opinion{op})
	assert.Equal(t, triage.RiskHigh, adj.final)
}

func TestAdjustRiskCriticalStaysCritical(t *testing.T) {
	op := withRedFlag(deferring(opinion.EmergencyMedicine, 10, 10), "shock")
	op.Confidence = opinion.ConfidenceHigh

	adj := adjustRisk(triage.RiskHigh, []opinion.Opinion{op})
	assert.Equal(t, triage.RiskCritical, adj.final)
}
