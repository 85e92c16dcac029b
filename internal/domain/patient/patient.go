package patient

import (
	"strings"

	"asclepius/pkg/errors"
)

// Vitals holds the five measured vital signs
type Vitals struct {
	Systolic    float64 `json:"systolic" db:"systolic"`
	Diastolic   float64 `json:"diastolic" db:"diastolic"`
	HeartRate   float64 `json:"heart_rate" db:"heart_rate"`
	Temperature float64 `json:"temperature" db:"temperature"`
	SpO2        float64 `json:"spo2" db:"spo2"`
}

// Intake is the raw patient record submitted for triage
type Intake struct {
	ID         string   `json:"patient_id"`
	Name       string   `json:"patient_name"`
	Age        int      `json:"age"`
	Gender     string   `json:"gender"`
	Symptoms   []string `json:"symptoms"`
	Conditions []string `json:"conditions"`
	Vitals     Vitals   `json:"vitals"`
}

// Symptoms recognized by the risk model feature vector, in feature order
var Symptoms = []string{
	"chest_pain", "breathlessness", "headache", "fever", "cough",
	"abdominal_pain", "nausea", "vomiting", "dizziness", "fatigue",
	"palpitations", "back_pain", "joint_pain", "diarrhea", "sore_throat",
	"body_ache", "weakness", "blurred_vision", "numbness", "confusion",
	"seizures", "blood_in_stool", "weight_loss", "sweating", "swelling",
	"burning_urination", "rash", "cold", "wheezing", "loss_of_appetite",
}

// Conditions recognized by the risk model feature vector, in feature order
var Conditions = []string{
	"diabetes", "hypertension", "asthma", "copd", "heart_disease",
	"kidney_disease", "liver_disease", "thyroid", "tuberculosis",
	"cancer", "hiv", "anemia", "obesity",
}

// Normalize lowercases and trims a symptom or condition term
func Normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Normalize canonicalizes the free-text fields in place so validation and
// feature building see the vocabulary terms exactly
func (i *Intake) Normalize() {
	i.ID = strings.TrimSpace(i.ID)
	i.Name = strings.TrimSpace(i.Name)
	i.Gender = Normalize(i.Gender)
	for idx, s := range i.Symptoms {
		i.Symptoms[idx] = Normalize(s)
	}
	for idx, c := range i.Conditions {
		i.Conditions[idx] = Normalize(c)
	}
}

// Validate checks that the intake carries everything classification needs
func (i *Intake) Validate() error {
	if i.ID == "" {
		return errors.NewValidationError("patient_id", "is required", i.ID)
	}
	if i.Name == "" {
		return errors.NewValidationError("patient_name", "is required", i.Name)
	}
	if i.Age < 0 || i.Age > 130 {
		return errors.NewValidationError("age", "must be between 0 and 130", i.Age)
	}
	gender := Normalize(i.Gender)
	if gender != "male" && gender != "female" {
		return errors.NewValidationError("gender", "must be male or female", i.Gender)
	}
	if i.Vitals.Systolic <= 0 || i.Vitals.Diastolic <= 0 {
		return errors.NewValidationError("vitals", "blood pressure is required", i.Vitals)
	}
	if i.Vitals.HeartRate <= 0 {
		return errors.NewValidationError("vitals.heart_rate", "is required", i.Vitals.HeartRate)
	}
	if i.Vitals.Temperature <= 0 {
		return errors.NewValidationError("vitals.temperature", "is required", i.Vitals.Temperature)
	}
	if i.Vitals.SpO2 <= 0 || i.Vitals.SpO2 > 100 {
		return errors.NewValidationError("vitals.spo2", "must be in (0,100]", i.Vitals.SpO2)
	}
	return nil
}

// HasSymptom reports whether the intake lists the given symptom
func (i *Intake) HasSymptom(symptom string) bool {
	for _, s := range i.Symptoms {
		if Normalize(s) == symptom {
			return true
		}
	}
	return false
}

// HasCondition reports whether the intake lists the given pre-existing condition
func (i *Intake) HasCondition(condition string) bool {
	for _, c := range i.Conditions {
		if Normalize(c) == condition {
			return true
		}
	}
	return false
}
