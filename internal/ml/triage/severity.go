package triage

import (
	"asclepius/internal/domain/patient"
	"asclepius/internal/domain/triage"
)

var (
	severeConditions   = map[string]bool{"heart_disease": true, "cancer": true, "kidney_disease": true, "hiv": true}
	moderateConditions = map[string]bool{"diabetes": true, "hypertension": true, "copd": true, "liver_disease": true}
)

// ComputeDerivedMetrics applies the fixed threshold rules on vitals and
// comorbidities. These run alongside the model, not inside it, and their
// thresholds match the training pipeline exactly.
func ComputeDerivedMetrics(in *patient.Intake) triage.DerivedMetrics {
	score := vitalSeverityScore(in.Vitals)

	comorbidity := 0
	for _, c := range in.Conditions {
		switch {
		case severeConditions[patient.Normalize(c)]:
			comorbidity += 2
		case moderateConditions[patient.Normalize(c)]:
			comorbidity++
		}
	}

	return triage.DerivedMetrics{
		VitalSeverityScore: score,
		VitalSeverityLevel: vitalLevel(score),
		ComorbidityScore:   comorbidity,
		ComorbidityLevel:   comorbidityLevel(comorbidity),
	}
}

func vitalSeverityScore(v patient.Vitals) int {
	score := 0

	switch {
	case v.Systolic >= 180 || v.Diastolic >= 120:
		score += 3
	case v.Systolic >= 160 || v.Diastolic >= 100:
		score += 2
	case v.Systolic >= 140 || v.Diastolic >= 90:
		score++
	case v.Systolic < 90:
		score += 3
	}

	switch {
	case v.HeartRate > 130 || v.HeartRate < 50:
		score += 3
	case v.HeartRate > 110 || v.HeartRate < 55:
		score += 2
	case v.HeartRate > 100:
		score++
	}

	switch {
	case v.Temperature >= 104.0:
		score += 3
	case v.Temperature >= 102.0:
		score += 2
	case v.Temperature >= 100.4:
		score++
	}

	switch {
	case v.SpO2 < 85:
		score += 4
	case v.SpO2 < 90:
		score += 3
	case v.SpO2 < 94:
		score += 2
	case v.SpO2 < 96:
		score++
	}

	return score
}

func vitalLevel(score int) string {
	switch {
	case score >= 8:
		return triage.VitalLevelCritical
	case score >= 4:
		return triage.VitalLevelElevated
	default:
		return triage.VitalLevelNormal
	}
}

func comorbidityLevel(score int) string {
	switch {
	case score >= 3:
		return triage.ComorbidityLevelHigh
	case score >= 1:
		return triage.ComorbidityLevelModerate
	default:
		return triage.ComorbidityLevelNone
	}
}
