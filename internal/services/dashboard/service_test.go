package dashboard

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/triage"
	"asclepius/internal/domain/verdict"
	"asclepius/internal/repository/memory"
	"asclepius/pkg/errors"
)

func seedVerdict(t *testing.T, repo verdict.Repository, patientID string, risk triage.RiskLevel, dept string, score int, referred bool) {
	t.Helper()
	v := &verdict.Verdict{
		ID:                fmt.Sprintf("v-%s", patientID),
		PatientID:         patientID,
		FinalRiskLevel:    risk,
		MLRiskLevel:       risk,
		PrimaryDepartment: dept,
		CouncilConsensus:  verdict.ConsensusMajority,
		PriorityScore:     score,
		RecommendedAction: verdict.ActionForScore(score),
		ReferralNeeded:    referred,
	}
	if risk == triage.RiskCritical {
		v.SafetyAlerts = []verdict.SafetyAlert{
			{Severity: verdict.AlertCritical, SourceSpecialty: opinion.Cardiology, Label: "possible ACS"},
		}
		v.RiskAdjusted = true
		v.MLRiskLevel = triage.RiskHigh
	}
	require.NoError(t, repo.Save(context.Background(), &verdict.Record{
		Verdict:        v,
		Classification: &triage.ClassifierOutput{PatientID: patientID},
	}))
}

func TestStatsAggregates(t *testing.T) {
	repo := memory.NewVerdictRepository()
	seedVerdict(t, repo, "p-1", triage.RiskCritical, "Cardiology", 92, true)
	seedVerdict(t, repo, "p-2", triage.RiskHigh, "Cardiology", 70, true)
	seedVerdict(t, repo, "p-3", triage.RiskLow, "General Medicine", 18, false)

	stats, err := NewService(repo).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalVerdicts)
	assert.Equal(t, 1, stats.ByRiskLevel[triage.RiskCritical])
	assert.Equal(t, 1, stats.ByRiskLevel[triage.RiskHigh])
	assert.Equal(t, 2, stats.ByDepartment["Cardiology"])
	assert.Equal(t, 1, stats.ByDepartment["General Medicine"])
	assert.Equal(t, 1, stats.ByAlertSeverity["CRITICAL"])
	assert.Equal(t, 2, stats.ReferralCount)
	assert.Equal(t, 1, stats.AdjustedCount)
	assert.Equal(t, 60.0, stats.AvgPriorityScore)
}

func TestStatsEmptyRepository(t *testing.T) {
	stats, err := NewService(memory.NewVerdictRepository()).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalVerdicts)
	assert.Equal(t, 0.0, stats.AvgPriorityScore)
	assert.Empty(t, stats.ByRiskLevel)
}

func TestRecentLimitsAndOrders(t *testing.T) {
	repo := memory.NewVerdictRepository()
	for i := 0; i < 5; i++ {
		seedVerdict(t, repo, fmt.Sprintf("p-%d", i), triage.RiskLow, "General Medicine", 20, false)
	}
	svc := NewService(repo)

	records, err := svc.Recent(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "p-4", records[0].Verdict.PatientID)

	records, err = svc.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, records, 5, "non-positive limit falls back to default")
}

func TestPatientNotFound(t *testing.T) {
	_, err := NewService(memory.NewVerdictRepository()).Patient(context.Background(), "missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
