package pipeline

import (
	"time"
)

// Stream event types, in emission order per run
const (
	EventStatus           = "status"
	EventClassification   = "classification"
	EventOpinion          = "opinion"
	EventProducerFailure  = "producer_failure"
	EventOtherDepartments = "other_departments"
	EventVerdict          = "verdict"
	EventError            = "error"
)

// Pipeline stages reported via status events
const (
	StageClassification = "classification"
	StageCouncil        = "council"
	StageSynthesis      = "synthesis"
	StageComplete       = "complete"
)

// StreamEvent is one typed progress or data event. The final verdict is
// always the last data event before the stream closes.
type StreamEvent struct {
	Type      string      `json:"type"`
	Stage     string      `json:"stage,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// EventSink receives stream events as the pipeline progresses. May be nil.
type EventSink func(StreamEvent)

func event(eventType, stage string, payload interface{}) StreamEvent {
	return StreamEvent{
		Type:      eventType,
		Stage:     stage,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}
