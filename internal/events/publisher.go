package events

import (
	"context"
	"time"

	"asclepius/internal/adapters/kafka"
	"asclepius/internal/domain/verdict"
	"asclepius/internal/metrics"
	"asclepius/pkg/errors"
	"asclepius/pkg/logger"
)

// VerdictEvent is the JSON payload published when a verdict is finalized
type VerdictEvent struct {
	Verdict   *verdict.Verdict `json:"verdict"`
	Timestamp time.Time        `json:"timestamp"`
}

// SafetyAlertEvent is one alert published for operational consumers
type SafetyAlertEvent struct {
	PatientID   string              `json:"patient_id"`
	PatientName string              `json:"patient_name"`
	Alert       verdict.SafetyAlert `json:"alert"`
	Timestamp   time.Time           `json:"timestamp"`
}

// PipelineEvent reports a pipeline stage transition
type PipelineEvent struct {
	PatientID string    `json:"patient_id"`
	Stage     string    `json:"stage"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher publishes triage events to Kafka as JSON
type Publisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(producer *kafka.Producer) *Publisher {
	return &Publisher{
		producer: producer,
		log:      logger.Get().With("component", "events"),
	}
}

// PublishVerdict publishes a finalized verdict, keyed by patient
func (p *Publisher) PublishVerdict(ctx context.Context, v *verdict.Verdict) error {
	event := VerdictEvent{Verdict: v, Timestamp: time.Now().UTC()}
	return p.publish(ctx, kafka.TopicVerdicts, v.PatientID, event)
}

// PublishSafetyAlerts publishes each of a verdict's alerts individually so
// consumers can filter by severity without unpacking the verdict
func (p *Publisher) PublishSafetyAlerts(ctx context.Context, v *verdict.Verdict) error {
	for _, alert := range v.SafetyAlerts {
		event := SafetyAlertEvent{
			PatientID:   v.PatientID,
			PatientName: v.PatientName,
			Alert:       alert,
			Timestamp:   time.Now().UTC(),
		}
		if err := p.publish(ctx, kafka.TopicSafetyAlerts, v.PatientID, event); err != nil {
			return err
		}
	}
	return nil
}

// PublishStage publishes a pipeline stage transition
func (p *Publisher) PublishStage(ctx context.Context, patientID, stage, detail string) error {
	event := PipelineEvent{
		PatientID: patientID,
		Stage:     stage,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	}
	return p.publish(ctx, kafka.TopicPipeline, patientID, event)
}

func (p *Publisher) publish(ctx context.Context, topic, key string, event interface{}) error {
	if err := p.producer.Publish(ctx, topic, key, event); err != nil {
		metrics.KafkaMessages.WithLabelValues(topic, "error").Inc()
		p.log.Errorw("Failed to publish event", "topic", topic, "error", err)
		return errors.Wrap(err, "send to kafka")
	}

	metrics.KafkaMessages.WithLabelValues(topic, "success").Inc()
	p.log.Debugw("Event published", "topic", topic, "key", key)
	return nil
}
