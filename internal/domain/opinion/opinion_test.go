package opinion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOpinion() Opinion {
	return Opinion{
		Specialty:      Cardiology,
		RelevanceScore: 8,
		UrgencyScore:   7,
		Confidence:     ConfidenceHigh,
		Assessment:     "Likely acute coronary syndrome given exertional chest pain",
		OneLiner:       "Exertional chest pain with elevated HR, rule out ACS",
		ClaimsPrimary:  true,
		RecommendedDepartment: "Cardiology",
		RecommendedWorkup: []WorkupItem{
			{Test: "ECG", Priority: PrioritySTAT, Rationale: "rule out STEMI"},
		},
	}
}

func TestOpinionValidate(t *testing.T) {
	op := validOpinion()
	require.NoError(t, op.Validate())
}

func TestOpinionValidateRejectsOutOfRangeScores(t *testing.T) {
	op := validOpinion()
	op.RelevanceScore = 11
	assert.Error(t, op.Validate())

	op = validOpinion()
	op.UrgencyScore = -1
	assert.Error(t, op.Validate())
}

func TestOpinionValidateRejectsUnknownConfidence(t *testing.T) {
	op := validOpinion()
	op.Confidence = "VERY_HIGH"
	assert.Error(t, op.Validate())
}

func TestOpinionValidateDepartmentClaimPairing(t *testing.T) {
	op := validOpinion()
	op.ClaimsPrimary = true
	op.RecommendedDepartment = ""
	assert.Error(t, op.Validate(), "primary claim requires a department")

	op = validOpinion()
	op.ClaimsPrimary = false
	op.RecommendedDepartment = "Cardiology"
	assert.Error(t, op.Validate(), "department without a claim is malformed")

	op = validOpinion()
	op.ClaimsPrimary = false
	op.RecommendedDepartment = ""
	assert.NoError(t, op.Validate())
}

func TestOpinionValidateOneLinerLength(t *testing.T) {
	op := validOpinion()
	op.OneLiner = strings.Repeat("x", MaxOneLinerLen+1)
	assert.Error(t, op.Validate())

	op.OneLiner = strings.Repeat("x", MaxOneLinerLen)
	assert.NoError(t, op.Validate())
}

func TestOpinionValidateFlagSeverity(t *testing.T) {
	op := validOpinion()
	op.Flags = []Flag{{Severity: "ORANGE_FLAG", Label: "weird"}}
	assert.Error(t, op.Validate())

	op.Flags = []Flag{{Severity: RedFlag, Label: "ST elevation"}}
	assert.NoError(t, op.Validate())
}

func TestConfidenceWeight(t *testing.T) {
	assert.Equal(t, 1.0, ConfidenceHigh.Weight())
	assert.Equal(t, 0.7, ConfidenceMedium.Weight())
	assert.Equal(t, 0.4, ConfidenceLow.Weight())
	assert.Equal(t, 0.0, Confidence("").Weight())
}

func TestWeightedScore(t *testing.T) {
	op := validOpinion()
	op.RelevanceScore = 7
	op.UrgencyScore = 6
	op.Confidence = ConfidenceHigh
	assert.InDelta(t, 42.0, op.WeightedScore(), 1e-9)

	op.Confidence = ConfidenceMedium
	assert.InDelta(t, 29.4, op.WeightedScore(), 1e-9)
}

func TestCouncilRank(t *testing.T) {
	assert.Equal(t, 0, CouncilRank(Cardiology))
	assert.Equal(t, 3, CouncilRank(EmergencyMedicine))
	assert.Equal(t, len(CouncilOrder), CouncilRank("Podiatry"))
}

func TestOtherDepartmentScoreValidate(t *testing.T) {
	s := OtherDepartmentScore{Department: Nephrology, Relevance: 5, Reason: "elevated creatinine history"}
	require.NoError(t, s.Validate())

	s = OtherDepartmentScore{Department: Nephrology, Relevance: 5}
	assert.Error(t, s.Validate(), "relevance above threshold requires a reason")

	s = OtherDepartmentScore{Department: Nephrology, Relevance: 2}
	assert.NoError(t, s.Validate(), "low relevance needs no reason")

	s = OtherDepartmentScore{Department: "Astrology", Relevance: 5, Reason: "n/a"}
	assert.Error(t, s.Validate())
}
