package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"asclepius/internal/domain/patient"
	"asclepius/internal/domain/triage"
)

func TestVitalSeverityScore(t *testing.T) {
	cases := []struct {
		name   string
		vitals patient.Vitals
		want   int
	}{
		{
			name:   "all normal",
			vitals: patient.Vitals{Systolic: 120, Diastolic: 80, HeartRate: 75, Temperature: 98.6, SpO2: 98},
			want:   0,
		},
		{
			name:   "hypertensive crisis",
			vitals: patient.Vitals{Systolic: 185, Diastolic: 95, HeartRate: 75, Temperature: 98.6, SpO2: 98},
			want:   3,
		},
		{
			name:   "hypotension",
			vitals: patient.Vitals{Systolic: 85, Diastolic: 60, HeartRate: 75, Temperature: 98.6, SpO2: 98},
			want:   3,
		},
		{
			name:   "tachycardia with fever",
			vitals: patient.Vitals{Systolic: 120, Diastolic: 80, HeartRate: 135, Temperature: 102.5, SpO2: 98},
			want:   5,
		},
		{
			name:   "severe hypoxia",
			vitals: patient.Vitals{Systolic: 120, Diastolic: 80, HeartRate: 75, Temperature: 98.6, SpO2: 84},
			want:   4,
		},
		{
			name:   "stacked critical",
			vitals: patient.Vitals{Systolic: 185, Diastolic: 125, HeartRate: 140, Temperature: 104.2, SpO2: 82},
			want:   13,
		},
		{
			name:   "mild elevation boundaries",
			vitals: patient.Vitals{Systolic: 140, Diastolic: 80, HeartRate: 101, Temperature: 100.4, SpO2: 95},
			want:   4,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, vitalSeverityScore(tc.vitals))
		})
	}
}

func TestComputeDerivedMetricsLevels(t *testing.T) {
	in := sampleIntake()
	in.Vitals = patient.Vitals{Systolic: 120, Diastolic: 80, HeartRate: 75, Temperature: 98.6, SpO2: 98}
	in.Conditions = nil

	m := ComputeDerivedMetrics(in)
	assert.Equal(t, 0, m.VitalSeverityScore)
	assert.Equal(t, triage.VitalLevelNormal, m.VitalSeverityLevel)
	assert.Equal(t, 0, m.ComorbidityScore)
	assert.Equal(t, triage.ComorbidityLevelNone, m.ComorbidityLevel)
}

func TestComorbidityWeighting(t *testing.T) {
	in := sampleIntake()
	in.Conditions = []string{"heart_disease", "diabetes"}

	m := ComputeDerivedMetrics(in)
	assert.Equal(t, 3, m.ComorbidityScore, "severe counts 2, moderate counts 1")
	assert.Equal(t, triage.ComorbidityLevelHigh, m.ComorbidityLevel)

	in.Conditions = []string{"asthma", "thyroid"}
	m = ComputeDerivedMetrics(in)
	assert.Equal(t, 0, m.ComorbidityScore, "unweighted conditions do not score")
}

func TestComorbidityModerateBand(t *testing.T) {
	in := sampleIntake()
	in.Conditions = []string{"hypertension"}

	m := ComputeDerivedMetrics(in)
	assert.Equal(t, 1, m.ComorbidityScore)
	assert.Equal(t, triage.ComorbidityLevelModerate, m.ComorbidityLevel)
}

func TestVitalLevelBands(t *testing.T) {
	assert.Equal(t, triage.VitalLevelCritical, vitalLevel(8))
	assert.Equal(t, triage.VitalLevelElevated, vitalLevel(4))
	assert.Equal(t, triage.VitalLevelNormal, vitalLevel(3))
}
