package triage

import (
	"context"
	"math"
	"sort"

	"asclepius/internal/domain/patient"
	"asclepius/internal/domain/triage"
	"asclepius/internal/ml"
	"asclepius/pkg/errors"
	"asclepius/pkg/logger"
)

// classLabels maps model class indices to risk levels
var classLabels = []string{
	string(triage.RiskLow),
	string(triage.RiskMedium),
	string(triage.RiskHigh),
}

// Classifier runs the risk model and assembles the ClassifierOutput every
// specialist reads. Classification is fatal-on-error: a failed model call
// never substitutes a guessed label.
type Classifier struct {
	model  *ml.ONNXModel
	logger *logger.Logger
}

// NewClassifier loads the risk model from modelPath
func NewClassifier(modelPath string) (*Classifier, error) {
	model, err := ml.LoadONNXModel(modelPath, classLabels)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrClassifierUnavailable.Error())
	}

	return &Classifier{
		model:  model,
		logger: logger.Get().With("component", "classifier"),
	}, nil
}

// Classify validates the intake, runs inference and computes derived metrics
func (c *Classifier) Classify(ctx context.Context, in *patient.Intake) (*triage.ClassifierOutput, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	features := BuildFeatures(in)

	label, probs, err := c.model.Predict(features)
	if err != nil {
		return nil, errors.Wrap(errors.ErrClassifierUnavailable, err.Error())
	}

	prediction := buildPrediction(label, probs)

	c.logger.Infow("Patient classified",
		"patient_id", in.ID,
		"risk_label", prediction.RiskLabel,
		"max_confidence", prediction.MaxConfidence,
	)

	return &triage.ClassifierOutput{
		PatientID:   in.ID,
		PatientName: in.Name,
		Age:         in.Age,
		Gender:      in.Gender,
		Symptoms:    normalizeTerms(in.Symptoms),
		Conditions:  normalizeTerms(in.Conditions),
		Vitals:      in.Vitals,
		Prediction:  prediction,
		Derived:     ComputeDerivedMetrics(in),
	}, nil
}

// Close releases the model session
func (c *Classifier) Close() {
	c.model.Destroy()
}

func buildPrediction(label string, probs map[string]float64) triage.Prediction {
	perClass := make(map[triage.RiskLevel]float64, len(probs))
	maxConf := 0.0
	for class, p := range probs {
		pct := roundPercent(p * 100)
		perClass[triage.RiskLevel(class)] = pct
		if pct > maxConf {
			maxConf = pct
		}
	}

	return triage.Prediction{
		RiskLabel:          triage.RiskLevel(label),
		PerClassConfidence: perClass,
		MaxConfidence:      maxConf,
	}
}

// roundPercent rounds to one decimal place, matching the training pipeline
func roundPercent(v float64) float64 {
	return math.Round(v*10) / 10
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, patient.Normalize(t))
	}
	sort.Strings(out)
	return out
}
