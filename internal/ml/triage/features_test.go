package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asclepius/internal/domain/patient"
)

func sampleIntake() *patient.Intake {
	return &patient.Intake{
		ID:         "P-1001",
		Name:       "Ramesh Kumar",
		Age:        58,
		Gender:     "Male",
		Symptoms:   []string{"chest_pain", "breathlessness", "sweating"},
		Conditions: []string{"diabetes", "hypertension"},
		Vitals: patient.Vitals{
			Systolic:    150,
			Diastolic:   95,
			HeartRate:   112,
			Temperature: 98.6,
			SpO2:        93,
		},
	}
}

func TestBuildFeaturesWidth(t *testing.T) {
	features := BuildFeatures(sampleIntake())
	require.Len(t, features, FeatureCount)
}

func TestBuildFeaturesLayout(t *testing.T) {
	in := sampleIntake()
	features := BuildFeatures(in)

	assert.Equal(t, 58.0, features[0], "age")
	assert.Equal(t, 0.0, features[1], "male encodes as 0")

	// chest_pain is the first symptom slot
	assert.Equal(t, 1.0, features[2])
	// headache (third slot) is absent
	assert.Equal(t, 0.0, features[4])

	// vitals follow the 30 symptom slots
	vitalsStart := 2 + len(patient.Symptoms)
	assert.Equal(t, 150.0, features[vitalsStart])
	assert.Equal(t, 95.0, features[vitalsStart+1])
	assert.Equal(t, 112.0, features[vitalsStart+2])
	assert.Equal(t, 98.6, features[vitalsStart+3])
	assert.Equal(t, 93.0, features[vitalsStart+4])

	// diabetes is the first condition slot
	condStart := vitalsStart + 5
	assert.Equal(t, 1.0, features[condStart])
	// asthma (third slot) is absent
	assert.Equal(t, 0.0, features[condStart+2])

	// trailing aggregates
	n := len(features)
	assert.Equal(t, 1.0, features[n-3], "has_pre_existing")
	assert.Equal(t, 3.0, features[n-2], "num_symptoms")
	assert.Equal(t, 2.0, features[n-1], "num_conditions")
}

func TestBuildFeaturesFemaleGender(t *testing.T) {
	in := sampleIntake()
	in.Gender = "Female"
	features := BuildFeatures(in)
	assert.Equal(t, 1.0, features[1])
}
