package triage

import (
	"asclepius/internal/domain/patient"
)

// FeatureCount is the width of the model input vector:
// age, gender, 30 symptoms, 5 vitals, 13 conditions,
// has_pre_existing, num_symptoms, num_conditions.
const FeatureCount = 2 + 30 + 5 + 13 + 3

// BuildFeatures converts an intake into the flat vector the model was
// trained on. Order must match the training pipeline exactly.
func BuildFeatures(in *patient.Intake) []float64 {
	features := make([]float64, 0, FeatureCount)

	features = append(features, float64(in.Age))

	gender := 0.0
	if patient.Normalize(in.Gender) != "male" {
		gender = 1.0
	}
	features = append(features, gender)

	for _, s := range patient.Symptoms {
		features = append(features, boolFeature(in.HasSymptom(s)))
	}

	features = append(features,
		in.Vitals.Systolic,
		in.Vitals.Diastolic,
		in.Vitals.HeartRate,
		in.Vitals.Temperature,
		in.Vitals.SpO2,
	)

	for _, c := range patient.Conditions {
		features = append(features, boolFeature(in.HasCondition(c)))
	}

	features = append(features, boolFeature(len(in.Conditions) > 0))
	features = append(features, float64(len(in.Symptoms)))
	features = append(features, float64(len(in.Conditions)))

	return features
}

func boolFeature(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
