package clickhouse

import (
	"context"
	"time"

	"asclepius/internal/adapters/clickhouse"
	"asclepius/internal/domain/verdict"
	"asclepius/pkg/errors"
)

// TriageEvent is one analytics row per finalized verdict
type TriageEvent struct {
	VerdictID         string    `ch:"verdict_id"`
	PatientID         string    `ch:"patient_id"`
	MLRiskLevel       string    `ch:"ml_risk_level"`
	FinalRiskLevel    string    `ch:"final_risk_level"`
	RiskAdjusted      bool      `ch:"risk_adjusted"`
	PrimaryDepartment string    `ch:"primary_department"`
	CouncilConsensus  string    `ch:"council_consensus"`
	PriorityScore     int32     `ch:"priority_score"`
	CriticalAlerts    int32     `ch:"critical_alerts"`
	WarningAlerts     int32     `ch:"warning_alerts"`
	ReferralNeeded    bool      `ch:"referral_needed"`
	OpinionCount      int32     `ch:"opinion_count"`
	CreatedAt         time.Time `ch:"created_at"`
}

// TriageEventRepository writes verdict analytics to ClickHouse
type TriageEventRepository struct {
	client *clickhouse.Client
}

// NewTriageEventRepository creates the repository
func NewTriageEventRepository(client *clickhouse.Client) *TriageEventRepository {
	return &TriageEventRepository{client: client}
}

// Insert writes one analytics row for a finalized verdict
func (r *TriageEventRepository) Insert(ctx context.Context, v *verdict.Verdict) error {
	warnings := 0
	for _, a := range v.SafetyAlerts {
		if a.Severity == verdict.AlertWarning {
			warnings++
		}
	}

	event := TriageEvent{
		VerdictID:         v.ID,
		PatientID:         v.PatientID,
		MLRiskLevel:       string(v.MLRiskLevel),
		FinalRiskLevel:    string(v.FinalRiskLevel),
		RiskAdjusted:      v.RiskAdjusted,
		PrimaryDepartment: v.PrimaryDepartment,
		CouncilConsensus:  string(v.CouncilConsensus),
		PriorityScore:     int32(v.PriorityScore),
		CriticalAlerts:    int32(v.CriticalAlertCount()),
		WarningAlerts:     int32(warnings),
		ReferralNeeded:    v.ReferralNeeded,
		OpinionCount:      int32(len(v.SpecialistSummaries)),
		CreatedAt:         v.CreatedAt,
	}

	err := r.client.BatchInsert(ctx, "triage_events", []interface{}{&event})
	if err != nil {
		return errors.Wrap(err, "failed to insert triage event")
	}
	return nil
}
