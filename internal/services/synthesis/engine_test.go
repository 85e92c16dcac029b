package synthesis

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/triage"
	"asclepius/internal/domain/verdict"
)

func classified(risk triage.RiskLevel) *triage.ClassifierOutput {
	return &triage.ClassifierOutput{
		PatientID:   "P-2001",
		PatientName: "Asha Verma",
		Age:         61,
		Gender:      "Female",
		Symptoms:    []string{"chest_pain", "sweating"},
		Conditions:  []string{"diabetes"},
		Prediction: triage.Prediction{
			RiskLabel: risk,
			PerClassConfidence: map[triage.RiskLevel]float64{
				triage.RiskLow: 5.0, triage.RiskMedium: 20.0, triage.RiskHigh: 75.0,
			},
			MaxConfidence: 75.0,
		},
		Derived: triage.DerivedMetrics{
			VitalSeverityScore: 5,
			VitalSeverityLevel: triage.VitalLevelElevated,
			ComorbidityScore:   1,
			ComorbidityLevel:   triage.ComorbidityLevelModerate,
		},
	}
}

// Scenario: one dominant red-flagged claim must yield an immediate verdict
func TestSynthesizeDominantRedFlagClaim(t *testing.T) {
	cardiology := claiming(opinion.Cardiology, 8, 8, opinion.ConfidenceHigh, "Cardiology")
	cardiology.Flags = []opinion.Flag{{Severity: opinion.RedFlag, Label: "possible STEMI"}}
	ops := []opinion.Opinion{
		cardiology,
		deferring(opinion.Neurology, 2, 1),
		deferring(opinion.Pulmonology, 2, 2),
		deferring(opinion.GeneralMedicine, 2, 1),
	}

	v, err := NewEngine().Synthesize(classified(triage.RiskMedium), ops, nil)
	require.NoError(t, err)

	assert.Equal(t, "Cardiology", v.PrimaryDepartment)
	assert.Equal(t, triage.RiskCritical, v.FinalRiskLevel, "HIGH-confidence red flag with urgency 8 overrides")
	assert.True(t, v.RiskAdjusted)
	require.GreaterOrEqual(t, v.CriticalAlertCount(), 1)
	assert.GreaterOrEqual(t, v.PriorityScore, 85)
	assert.Equal(t, verdict.ActionImmediate, v.RecommendedAction)
}

// Scenario: competing claims resolve by weighted score with runner-up secondary
func TestSynthesizeCompetingClaims(t *testing.T) {
	ops := []opinion.Opinion{
		claiming(opinion.Cardiology, 7, 6, opinion.ConfidenceHigh, "Cardiology"),
		claiming(opinion.EmergencyMedicine, 6, 7, opinion.ConfidenceMedium, "Emergency Medicine"),
	}

	v, err := NewEngine().Synthesize(classified(triage.RiskMedium), ops, nil)
	require.NoError(t, err)

	assert.Equal(t, "Cardiology", v.PrimaryDepartment)
	assert.Equal(t, "Emergency Medicine", v.SecondaryDepartment)
	require.Len(t, v.DissentingOpinions, 1)
	assert.Equal(t, opinion.EmergencyMedicine, v.DissentingOpinions[0].Specialty)
}

// Scenario: a quiet council leaves the low-risk verdict untouched
func TestSynthesizeQuietCouncil(t *testing.T) {
	ops := []opinion.Opinion{
		deferring(opinion.Cardiology, 2, 1),
		deferring(opinion.Neurology, 1, 1),
		deferring(opinion.Pulmonology, 2, 2),
		deferring(opinion.EmergencyMedicine, 1, 0),
		deferring(opinion.GeneralMedicine, 2, 1),
	}

	v, err := NewEngine().Synthesize(classified(triage.RiskLow), ops, nil)
	require.NoError(t, err)

	assert.False(t, v.RiskAdjusted)
	assert.Equal(t, triage.RiskLow, v.FinalRiskLevel)
	assert.Equal(t, DefaultDepartment, v.PrimaryDepartment)
	assert.Equal(t, verdict.ConsensusNoClaim, v.CouncilConsensus)
	assert.GreaterOrEqual(t, v.PriorityScore, 1)
	assert.LessOrEqual(t, v.PriorityScore, 34)
	assert.Equal(t, verdict.ActionCanWait, v.RecommendedAction)
	assert.False(t, v.ReferralNeeded)
}

func TestSynthesizeDeterministicUnderShuffledFanIn(t *testing.T) {
	cardiology := claiming(opinion.Cardiology, 8, 7, opinion.ConfidenceHigh, "Cardiology")
	cardiology.RecommendedWorkup = []opinion.WorkupItem{
		{Test: "ECG", Priority: opinion.PrioritySTAT, Rationale: "r/o STEMI"},
	}
	ops := []opinion.Opinion{
		cardiology,
		claiming(opinion.EmergencyMedicine, 6, 7, opinion.ConfidenceMedium, "Emergency Medicine"),
		deferring(opinion.Neurology, 3, 2),
		deferring(opinion.Pulmonology, 5, 4),
		deferring(opinion.GeneralMedicine, 4, 2),
	}

	engine := NewEngine()
	co := classified(triage.RiskMedium)

	base, err := engine.Synthesize(co, ops, nil)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := make([]opinion.Opinion, len(ops))
		copy(shuffled, ops)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		v, err := engine.Synthesize(co, shuffled, nil)
		require.NoError(t, err)

		// Identity and timestamps are per-run; everything else must match
		v.ID, v.CreatedAt = base.ID, base.CreatedAt
		assert.Equal(t, base, v)
	}
}

func TestSynthesizePartialCouncil(t *testing.T) {
	// Three of five specialists dropped out; synthesis degrades gracefully
	ops := []opinion.Opinion{
		claiming(opinion.Pulmonology, 7, 6, opinion.ConfidenceMedium, "Pulmonology"),
		deferring(opinion.GeneralMedicine, 4, 2),
	}

	v, err := NewEngine().Synthesize(classified(triage.RiskMedium), ops, nil)
	require.NoError(t, err)

	assert.Equal(t, "Pulmonology", v.PrimaryDepartment)
	assert.Equal(t, verdict.ConsensusSingleClaim, v.CouncilConsensus)
	assert.Len(t, v.SpecialistSummaries, 2)
}

func TestSynthesizeOtherDepartmentsSurfacing(t *testing.T) {
	scores := []opinion.OtherDepartmentScore{
		{Department: opinion.Nephrology, Relevance: 6, Reason: "kidney involvement"},
		{Department: opinion.Endocrinology, Relevance: 4, Reason: "diabetic history"},
		{Department: opinion.ENT, Relevance: 3, Reason: "minor"},
		{Department: opinion.Dermatology, Relevance: 1},
	}
	ops := []opinion.Opinion{deferring(opinion.GeneralMedicine, 4, 2)}

	v, err := NewEngine().Synthesize(classified(triage.RiskLow), ops, scores)
	require.NoError(t, err)

	require.Len(t, v.OtherDepartments, 2, "only relevance >= 4 surfaces")
	assert.Equal(t, opinion.Nephrology, v.OtherDepartments[0].Department)
	assert.Equal(t, opinion.Endocrinology, v.OtherDepartments[1].Department)
}

func TestSynthesizeReferral(t *testing.T) {
	ops := []opinion.Opinion{
		claiming(opinion.Cardiology, 8, 7, opinion.ConfidenceHigh, "Cardiology"),
	}

	v, err := NewEngine().Synthesize(classified(triage.RiskHigh), ops, nil)
	require.NoError(t, err)
	assert.True(t, v.ReferralNeeded)
	assert.Contains(t, v.ReferralDetails, "Cardiology")

	// General Medicine routing never refers
	v, err = NewEngine().Synthesize(classified(triage.RiskHigh), []opinion.Opinion{
		deferring(opinion.Cardiology, 2, 5),
		deferring(opinion.GeneralMedicine, 6, 5),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDepartment, v.PrimaryDepartment)
	assert.False(t, v.ReferralNeeded)
}

func TestSynthesizeSummariesMarkDissenters(t *testing.T) {
	ops := []opinion.Opinion{
		claiming(opinion.Cardiology, 8, 8, opinion.ConfidenceHigh, "Cardiology"),
		claiming(opinion.Neurology, 6, 5, opinion.ConfidenceMedium, "Neurology"),
		deferring(opinion.GeneralMedicine, 3, 2),
	}

	v, err := NewEngine().Synthesize(classified(triage.RiskMedium), ops, nil)
	require.NoError(t, err)

	require.Len(t, v.SpecialistSummaries, 3)
	bySpecialty := map[opinion.Specialty]verdict.SpecialistSummary{}
	for _, s := range v.SpecialistSummaries {
		bySpecialty[s.Specialty] = s
	}
	assert.True(t, bySpecialty[opinion.Cardiology].AgreedWithFinal)
	assert.False(t, bySpecialty[opinion.Neurology].AgreedWithFinal)
	assert.True(t, bySpecialty[opinion.GeneralMedicine].AgreedWithFinal)
}

func TestSynthesizeConfidenceInRange(t *testing.T) {
	ops := []opinion.Opinion{
		claiming(opinion.Cardiology, 8, 8, opinion.ConfidenceHigh, "Cardiology"),
		deferring(opinion.Neurology, 7, 2),
	}

	v, err := NewEngine().Synthesize(classified(triage.RiskMedium), ops, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v.Confidence, 0.0)
	assert.LessOrEqual(t, v.Confidence, 1.0)
}

func TestSynthesizeKeyFactorsCapped(t *testing.T) {
	ops := make([]opinion.Opinion, 0, 5)
	for _, s := range opinion.CouncilOrder {
		op := deferring(s, 8, 9)
		op.Flags = []opinion.Flag{
			{Severity: opinion.RedFlag, Label: "finding one"},
			{Severity: opinion.RedFlag, Label: "finding two"},
			{Severity: opinion.RedFlag, Label: "finding three"},
		}
		ops = append(ops, op)
	}

	v, err := NewEngine().Synthesize(classified(triage.RiskHigh), ops, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(v.KeyFactors), 10)
	assert.NotEmpty(t, v.Explanation)
}
