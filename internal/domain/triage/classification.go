package triage

import (
	"asclepius/internal/domain/patient"
)

// RiskLevel is a patient risk band. The model emits Low, Medium or High;
// Critical exists only as a synthesis-time escalation.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// Rank orders risk levels for comparisons and single-step escalation
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskCritical:
		return 4
	default:
		return 0
	}
}

// Escalate returns the next risk level up, capped at Critical
func (r RiskLevel) Escalate() RiskLevel {
	switch r {
	case RiskLow:
		return RiskMedium
	case RiskMedium:
		return RiskHigh
	case RiskHigh, RiskCritical:
		return RiskCritical
	default:
		return r
	}
}

// DeEscalate returns the next risk level down, floored at Low
func (r RiskLevel) DeEscalate() RiskLevel {
	switch r {
	case RiskCritical:
		return RiskHigh
	case RiskHigh:
		return RiskMedium
	case RiskMedium, RiskLow:
		return RiskLow
	default:
		return r
	}
}

// Prediction is the model's classification for one patient
type Prediction struct {
	RiskLabel          RiskLevel            `json:"risk_label"`
	PerClassConfidence map[RiskLevel]float64 `json:"per_class_confidence"`
	MaxConfidence      float64              `json:"max_confidence"`
}

// DerivedMetrics are threshold-rule scores computed alongside the model call
type DerivedMetrics struct {
	VitalSeverityScore int    `json:"vital_severity_score"`
	VitalSeverityLevel string `json:"vital_severity_level"`
	ComorbidityScore   int    `json:"comorbidity_score"`
	ComorbidityLevel   string `json:"comorbidity_level"`
}

// Severity level bands
const (
	VitalLevelCritical = "critical"
	VitalLevelElevated = "elevated"
	VitalLevelNormal   = "normal"

	ComorbidityLevelHigh     = "high"
	ComorbidityLevelModerate = "moderate"
	ComorbidityLevelNone     = "none"
)

// ClassifierOutput is the immutable classification result every downstream
// specialist reads. Created once per patient, never mutated.
type ClassifierOutput struct {
	PatientID   string         `json:"patient_id"`
	PatientName string         `json:"patient_name"`
	Age         int            `json:"age"`
	Gender      string         `json:"gender"`
	Symptoms    []string       `json:"symptoms"`
	Conditions  []string       `json:"conditions"`
	Vitals      patient.Vitals `json:"vitals"`
	Prediction  Prediction     `json:"prediction"`
	Derived     DerivedMetrics `json:"derived_metrics"`
}
