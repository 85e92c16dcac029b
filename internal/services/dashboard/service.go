package dashboard

import (
	"context"
	"math"

	"asclepius/internal/domain/triage"
	"asclepius/internal/domain/verdict"
	"asclepius/pkg/errors"
	"asclepius/pkg/logger"
)

// Stats aggregates verdict history for the operational dashboard
type Stats struct {
	TotalVerdicts    int                      `json:"total_verdicts"`
	ByRiskLevel      map[triage.RiskLevel]int `json:"by_risk_level"`
	ByDepartment     map[string]int           `json:"by_department"`
	ByAlertSeverity  map[string]int           `json:"by_alert_severity"`
	ByConsensus      map[string]int           `json:"by_consensus"`
	AvgPriorityScore float64                  `json:"avg_priority_score"`
	ReferralCount    int                      `json:"referral_count"`
	AdjustedCount    int                      `json:"adjusted_count"`
}

// statsWindow caps how much history one stats call folds over
const statsWindow = 1000

// Service computes dashboard aggregates over the verdict repository
type Service struct {
	repo verdict.Repository
	log  *logger.Logger
}

// NewService creates the dashboard service
func NewService(repo verdict.Repository) *Service {
	return &Service{
		repo: repo,
		log:  logger.Get().With("component", "dashboard"),
	}
}

// Stats folds the recent verdict history into dashboard aggregates
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	records, err := s.repo.List(ctx, statsWindow)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list verdicts")
	}

	stats := &Stats{
		ByRiskLevel:     make(map[triage.RiskLevel]int),
		ByDepartment:    make(map[string]int),
		ByAlertSeverity: make(map[string]int),
		ByConsensus:     make(map[string]int),
	}

	prioritySum := 0
	for _, rec := range records {
		v := rec.Verdict
		stats.TotalVerdicts++
		stats.ByRiskLevel[v.FinalRiskLevel]++
		stats.ByDepartment[v.PrimaryDepartment]++
		stats.ByConsensus[string(v.CouncilConsensus)]++
		for _, a := range v.SafetyAlerts {
			stats.ByAlertSeverity[string(a.Severity)]++
		}
		if v.ReferralNeeded {
			stats.ReferralCount++
		}
		if v.RiskAdjusted {
			stats.AdjustedCount++
		}
		prioritySum += v.PriorityScore
	}

	if stats.TotalVerdicts > 0 {
		avg := float64(prioritySum) / float64(stats.TotalVerdicts)
		stats.AvgPriorityScore = math.Round(avg*10) / 10
	}

	return stats, nil
}

// Recent returns the newest verdicts, most recent first
func (s *Service) Recent(ctx context.Context, limit int) ([]*verdict.Record, error) {
	if limit <= 0 || limit > statsWindow {
		limit = 20
	}
	records, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list verdicts")
	}
	return records, nil
}

// Patient returns the full triage history record for one patient
func (s *Service) Patient(ctx context.Context, patientID string) (*verdict.Record, error) {
	rec, err := s.repo.GetByPatientID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
