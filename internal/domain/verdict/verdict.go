package verdict

import (
	"context"
	"time"

	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/triage"
)

// Consensus classifies the council's level of agreement
type Consensus string

const (
	ConsensusUnanimous   Consensus = "Unanimous"
	ConsensusMajority    Consensus = "Majority"
	ConsensusSplit       Consensus = "Split"
	ConsensusSingleClaim Consensus = "Single Claim"
	// ConsensusNoClaim covers the zero-claims council that fell back to
	// General Medicine. Distinct from Single Claim, which needs exactly one.
	ConsensusNoClaim Consensus = "No Claim"
)

// AlertSeverity classifies a verdict-level safety alert
type AlertSeverity string

const (
	AlertCritical AlertSeverity = "CRITICAL"
	AlertWarning  AlertSeverity = "WARNING"
)

// SafetyAlert is one de-duplicated escalation surfaced to operators
type SafetyAlert struct {
	Severity        AlertSeverity     `json:"severity"`
	SourceSpecialty opinion.Specialty `json:"source_specialty"`
	Label           string            `json:"label"`
	ActionRequired  string            `json:"action_required,omitempty"`
	Pattern         string            `json:"pattern,omitempty"`
}

// ConsolidatedWorkupItem is one merged test recommendation
type ConsolidatedWorkupItem struct {
	Test      string                 `json:"test"`
	Priority  opinion.WorkupPriority `json:"priority"`
	OrderedBy []opinion.Specialty    `json:"ordered_by"`
	Rationale string                 `json:"rationale"`
}

// SpecialistSummary is the per-specialist digest carried on the verdict
type SpecialistSummary struct {
	Specialty       opinion.Specialty  `json:"specialty"`
	RelevanceScore  int                `json:"relevance_score"`
	UrgencyScore    int                `json:"urgency_score"`
	Confidence      opinion.Confidence `json:"confidence"`
	OneLiner        string             `json:"one_liner"`
	ClaimsPrimary   bool               `json:"claims_primary"`
	AgreedWithFinal bool               `json:"agreed_with_final"`
}

// Dissent records a council member whose department claim lost
type Dissent struct {
	Specialty             opinion.Specialty `json:"specialty"`
	RecommendedDepartment string            `json:"recommended_department"`
	RelevanceScore        int               `json:"relevance_score"`
}

// Action is the operational bracket derived from the priority score
type Action string

const (
	ActionImmediate Action = "Immediate"
	ActionUrgent    Action = "Urgent"
	ActionStandard  Action = "Standard"
	ActionCanWait   Action = "Can Wait"
)

// ActionForScore maps a priority score to its action bracket
func ActionForScore(score int) Action {
	switch {
	case score >= 85:
		return ActionImmediate
	case score >= 60:
		return ActionUrgent
	case score >= 35:
		return ActionStandard
	default:
		return ActionCanWait
	}
}

// Verdict is the single synthesized output for one patient. Immutable
// once created; the only entity handed to external consumers.
type Verdict struct {
	ID          string `json:"id"`
	PatientID   string `json:"patient_id"`
	PatientName string `json:"patient_name"`

	FinalRiskLevel       triage.RiskLevel `json:"final_risk_level"`
	MLRiskLevel          triage.RiskLevel `json:"ml_risk_level"`
	RiskAdjusted         bool             `json:"risk_adjusted"`
	RiskAdjustmentReason string           `json:"risk_adjustment_reason,omitempty"`
	Confidence           float64          `json:"confidence"`

	PrimaryDepartment   string `json:"primary_department"`
	SecondaryDepartment string `json:"secondary_department,omitempty"`
	ReferralNeeded      bool   `json:"referral_needed"`
	ReferralDetails     string `json:"referral_details,omitempty"`

	SpecialistSummaries []SpecialistSummary            `json:"specialist_summaries"`
	CouncilConsensus    Consensus                      `json:"council_consensus"`
	DissentingOpinions  []Dissent                      `json:"dissenting_opinions"`
	OtherDepartments    []opinion.OtherDepartmentScore `json:"other_departments_flagged"`

	SafetyAlerts       []SafetyAlert            `json:"safety_alerts"`
	Explanation        string                   `json:"explanation"`
	KeyFactors         []string                 `json:"key_factors"`
	PriorityScore      int                      `json:"priority_score"`
	RecommendedAction  Action                   `json:"recommended_action"`
	ConsolidatedWorkup []ConsolidatedWorkupItem `json:"consolidated_workup"`

	CreatedAt time.Time `json:"created_at"`
}

// CriticalAlertCount returns the number of CRITICAL safety alerts
func (v *Verdict) CriticalAlertCount() int {
	n := 0
	for _, a := range v.SafetyAlerts {
		if a.Severity == AlertCritical {
			n++
		}
	}
	return n
}

// Record pairs a verdict with the classification it was synthesized from,
// as stored for the dashboard.
type Record struct {
	Verdict        *Verdict                 `json:"verdict"`
	Classification *triage.ClassifierOutput `json:"classification"`
}

// Repository stores finalized verdicts. Append-only; one writer per verdict.
type Repository interface {
	Save(ctx context.Context, rec *Record) error
	GetByPatientID(ctx context.Context, patientID string) (*Record, error)
	List(ctx context.Context, limit int) ([]*Record, error)
	Count(ctx context.Context) (int, error)
}
