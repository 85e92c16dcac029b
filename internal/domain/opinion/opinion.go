package opinion

import (
	"strings"

	"asclepius/pkg/errors"
)

// Specialty identifies a council specialist. The value is fixed per producer
// at construction time, never inferred from producer output.
type Specialty string

const (
	Cardiology        Specialty = "Cardiology"
	Neurology         Specialty = "Neurology"
	Pulmonology       Specialty = "Pulmonology"
	EmergencyMedicine Specialty = "Emergency Medicine"
	GeneralMedicine   Specialty = "General Medicine"
)

// CouncilOrder is the canonical specialist ordering used for deterministic
// tie-breaks and stable output ordering.
var CouncilOrder = []Specialty{
	Cardiology,
	Neurology,
	Pulmonology,
	EmergencyMedicine,
	GeneralMedicine,
}

// CouncilRank returns the position of a specialty in the canonical order,
// or len(CouncilOrder) for unknown values.
func CouncilRank(s Specialty) int {
	for i, sp := range CouncilOrder {
		if sp == s {
			return i
		}
	}
	return len(CouncilOrder)
}

// Confidence is a specialist's stated confidence in its own assessment
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Weight maps confidence to the multiplier used in department scoring
func (c Confidence) Weight() float64 {
	switch c {
	case ConfidenceHigh:
		return 1.0
	case ConfidenceMedium:
		return 0.7
	case ConfidenceLow:
		return 0.4
	default:
		return 0
	}
}

// FlagSeverity classifies a specialist-raised flag
type FlagSeverity string

const (
	RedFlag    FlagSeverity = "RED_FLAG"
	YellowFlag FlagSeverity = "YELLOW_FLAG"
	InfoFlag   FlagSeverity = "INFO"
)

// Flag is a clinical warning raised by a specialist
type Flag struct {
	Severity FlagSeverity `json:"severity"`
	Label    string       `json:"label"`
	Pattern  string       `json:"pattern,omitempty"`
}

// WorkupPriority orders recommended tests
type WorkupPriority string

const (
	PrioritySTAT    WorkupPriority = "STAT"
	PriorityUrgent  WorkupPriority = "URGENT"
	PriorityRoutine WorkupPriority = "ROUTINE"
)

// Rank orders workup priorities, STAT highest
func (p WorkupPriority) Rank() int {
	switch p {
	case PrioritySTAT:
		return 3
	case PriorityUrgent:
		return 2
	case PriorityRoutine:
		return 1
	default:
		return 0
	}
}

// WorkupItem is one recommended test
type WorkupItem struct {
	Test      string         `json:"test"`
	Priority  WorkupPriority `json:"priority"`
	Rationale string         `json:"rationale"`
}

// DifferentialItem is one differential consideration
type DifferentialItem struct {
	Condition  string `json:"condition"`
	Likelihood string `json:"likelihood"`
	Reasoning  string `json:"reasoning"`
}

// MaxOneLinerLen caps the one-line summary a specialist may emit
const MaxOneLinerLen = 120

// Opinion is one specialist's complete assessment of a patient.
// Exactly one Opinion exists per (specialty, patient).
type Opinion struct {
	Specialty                  Specialty          `json:"specialty"`
	RelevanceScore             int                `json:"relevance_score"`
	UrgencyScore               int                `json:"urgency_score"`
	Confidence                 Confidence         `json:"confidence"`
	Assessment                 string             `json:"assessment"`
	OneLiner                   string             `json:"one_liner"`
	Flags                      []Flag             `json:"flags"`
	ClaimsPrimary              bool               `json:"claims_primary"`
	RecommendedDepartment      string             `json:"recommended_department,omitempty"`
	DifferentialConsiderations []DifferentialItem `json:"differential_considerations"`
	RecommendedWorkup          []WorkupItem       `json:"recommended_workup"`
}

// WeightedScore is the department-claim strength used by routing resolution
func (o *Opinion) WeightedScore() float64 {
	return float64(o.RelevanceScore) * float64(o.UrgencyScore) * o.Confidence.Weight()
}

// HasRedFlag reports whether any flag is a RED_FLAG
func (o *Opinion) HasRedFlag() bool {
	for _, f := range o.Flags {
		if f.Severity == RedFlag {
			return true
		}
	}
	return false
}

// Validate enforces the producer output contract. A failing opinion is a
// producer failure and must be dropped, never partially consumed.
func (o *Opinion) Validate() error {
	if CouncilRank(o.Specialty) >= len(CouncilOrder) {
		return errors.NewValidationError("specialty", "unknown council specialty", o.Specialty)
	}
	if o.RelevanceScore < 0 || o.RelevanceScore > 10 {
		return errors.NewValidationError("relevance_score", "must be in [0,10]", o.RelevanceScore)
	}
	if o.UrgencyScore < 0 || o.UrgencyScore > 10 {
		return errors.NewValidationError("urgency_score", "must be in [0,10]", o.UrgencyScore)
	}
	if o.Confidence.Weight() == 0 {
		return errors.NewValidationError("confidence", "must be HIGH, MEDIUM or LOW", o.Confidence)
	}
	if len(o.OneLiner) > MaxOneLinerLen {
		return errors.NewValidationError("one_liner", "exceeds 120 characters", len(o.OneLiner))
	}
	if o.ClaimsPrimary && strings.TrimSpace(o.RecommendedDepartment) == "" {
		return errors.NewValidationError("recommended_department", "required when claims_primary is set", o.RecommendedDepartment)
	}
	if !o.ClaimsPrimary && strings.TrimSpace(o.RecommendedDepartment) != "" {
		return errors.NewValidationError("recommended_department", "must be empty unless claims_primary is set", o.RecommendedDepartment)
	}
	for i, f := range o.Flags {
		switch f.Severity {
		case RedFlag, YellowFlag, InfoFlag:
		default:
			return errors.NewValidationError("flags.severity", "unknown flag severity", f.Severity)
		}
		if strings.TrimSpace(f.Label) == "" {
			return errors.NewValidationError("flags.label", "is required", i)
		}
	}
	for i, w := range o.RecommendedWorkup {
		if w.Priority.Rank() == 0 {
			return errors.NewValidationError("recommended_workup.priority", "must be STAT, URGENT or ROUTINE", w.Priority)
		}
		if strings.TrimSpace(w.Test) == "" {
			return errors.NewValidationError("recommended_workup.test", "is required", i)
		}
	}
	return nil
}
