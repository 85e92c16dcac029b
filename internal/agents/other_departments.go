package agents

import (
	"context"
	"encoding/json"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"asclepius/internal/agents/schemas"
	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/triage"
	"asclepius/pkg/errors"
	"asclepius/pkg/logger"
)

// GeminiDepartmentScorer rates the 13 non-council departments in a single
// structured-output call.
type GeminiDepartmentScorer struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewGeminiDepartmentScorer creates the scorer
func NewGeminiDepartmentScorer(client *genai.Client, model string, limiter *rate.Limiter) *GeminiDepartmentScorer {
	return &GeminiDepartmentScorer{
		client:  client,
		model:   model,
		limiter: limiter,
		log:     logger.Get().With("component", "department_scorer"),
	}
}

// Score returns one validated entry per known department. Entries for
// unknown departments or with invalid fields drop the whole result, since
// a partially valid scorer output is a producer failure.
func (s *GeminiDepartmentScorer) Score(ctx context.Context, co *triage.ClassifierOutput) ([]opinion.OtherDepartmentScore, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter wait")
	}

	temperature := float32(0.1)
	resp, err := s.client.Models.GenerateContent(ctx, s.model,
		genai.Text(patientPrompt(co)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(scorerSystemPrompt(), genai.RoleUser),
			Temperature:       &temperature,
			ResponseMIMEType:  "application/json",
			ResponseSchema:    schemas.OtherDepartmentsSchema,
		},
	)
	if err != nil {
		return nil, errors.Wrap(errors.ErrProducerFailed, err.Error())
	}

	var out struct {
		Scores []opinion.OtherDepartmentScore `json:"scores"`
	}
	if err := json.Unmarshal([]byte(resp.Text()), &out); err != nil {
		return nil, errors.Wrap(errors.ErrSchemaViolation, err.Error())
	}

	for i := range out.Scores {
		// Reasons below the visibility threshold are dropped, not rejected
		if out.Scores[i].Relevance < opinion.ReasonThreshold {
			out.Scores[i].Reason = ""
		}
		if err := out.Scores[i].Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrSchemaViolation, err.Error())
		}
	}

	s.log.Debugw("Departments scored", "patient_id", co.PatientID, "count", len(out.Scores))

	return out.Scores, nil
}
