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

// GeminiProducer generates a specialist opinion via the Gemini API with
// structured output. One instance per council seat; the specialty is fixed
// at construction and overrides whatever the model emits.
type GeminiProducer struct {
	client    *genai.Client
	model     string
	specialty opinion.Specialty
	limiter   *rate.Limiter
	log       *logger.Logger
}

// NewGeminiClient creates the shared Gemini API client
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gemini client")
	}
	return client, nil
}

// NewGeminiProducer creates a producer for one council specialty.
// The limiter is shared across producers to respect the provider quota.
func NewGeminiProducer(client *genai.Client, model string, specialty opinion.Specialty, limiter *rate.Limiter) *GeminiProducer {
	return &GeminiProducer{
		client:    client,
		model:     model,
		specialty: specialty,
		limiter:   limiter,
		log:       logger.Get().With("component", "gemini_producer", "specialty", string(specialty)),
	}
}

// Specialty returns the fixed council identity
func (p *GeminiProducer) Specialty() opinion.Specialty {
	return p.specialty
}

// Produce runs one structured-output completion and validates the result
func (p *GeminiProducer) Produce(ctx context.Context, co *triage.ClassifierOutput) (*opinion.Opinion, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter wait")
	}

	temperature := float32(0.2)
	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		genai.Text(patientPrompt(co)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(specialistSystemPrompt(p.specialty), genai.RoleUser),
			Temperature:       &temperature,
			ResponseMIMEType:  "application/json",
			ResponseSchema:    schemas.SpecialistOpinionSchema,
		},
	)
	if err != nil {
		return nil, errors.Wrap(errors.ErrProducerFailed, err.Error())
	}

	var op opinion.Opinion
	if err := json.Unmarshal([]byte(resp.Text()), &op); err != nil {
		return nil, errors.Wrap(errors.ErrSchemaViolation, err.Error())
	}

	// Identity is locked by configuration, never model-chosen
	op.Specialty = p.specialty

	if err := op.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrSchemaViolation, err.Error())
	}

	p.log.Debugw("Opinion produced",
		"patient_id", co.PatientID,
		"relevance", op.RelevanceScore,
		"urgency", op.UrgencyScore,
		"claims_primary", op.ClaimsPrimary,
	)

	return &op, nil
}
