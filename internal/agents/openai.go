package agents

import (
	"context"
	"encoding/json"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/time/rate"

	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/triage"
	"asclepius/pkg/errors"
	"asclepius/pkg/logger"
)

// OpenAIProducer is the alternate specialist backend using the official
// OpenAI SDK in JSON mode. Interchangeable with GeminiProducer per seat.
type OpenAIProducer struct {
	client    openai.Client
	model     string
	specialty opinion.Specialty
	limiter   *rate.Limiter
	log       *logger.Logger
}

// NewOpenAIProducer creates a producer for one council specialty
func NewOpenAIProducer(apiKey, model string, specialty opinion.Specialty, limiter *rate.Limiter) (*OpenAIProducer, error) {
	if apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "openai API key is required")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &OpenAIProducer{
		client:    client,
		model:     model,
		specialty: specialty,
		limiter:   limiter,
		log:       logger.Get().With("component", "openai_producer", "specialty", string(specialty)),
	}, nil
}

// Specialty returns the fixed council identity
func (p *OpenAIProducer) Specialty() opinion.Specialty {
	return p.specialty
}

// Produce runs one JSON-mode completion and validates the result
func (p *OpenAIProducer) Produce(ctx context.Context, co *triage.ClassifierOutput) (*opinion.Opinion, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter wait")
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(specialistSystemPrompt(p.specialty) + "\nRespond with a single JSON object matching the opinion contract."),
			openai.UserMessage(patientPrompt(co)),
		},
		Temperature: openai.Float(0.2),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrProducerFailed, err.Error())
	}
	if len(resp.Choices) == 0 {
		return nil, errors.Wrap(errors.ErrProducerFailed, "no choices in response")
	}

	var op opinion.Opinion
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &op); err != nil {
		return nil, errors.Wrap(errors.ErrSchemaViolation, err.Error())
	}

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
