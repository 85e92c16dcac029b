package agents

import (
	"context"

	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/triage"
)

// Producer generates one specialist opinion from a classification.
// Implementations are opaque and may fail or time out; the council treats
// a failed producer as a missing opinion, never as a pipeline abort.
type Producer interface {
	// Specialty returns the fixed identity assigned at construction time
	Specialty() opinion.Specialty

	// Produce emits one schema-valid opinion for the classified patient
	Produce(ctx context.Context, co *triage.ClassifierOutput) (*opinion.Opinion, error)
}

// DepartmentScorer rates the non-council departments for a patient.
// Purely informational; never contributes to risk, routing or alerts.
type DepartmentScorer interface {
	Score(ctx context.Context, co *triage.ClassifierOutput) ([]opinion.OtherDepartmentScore, error)
}

// ProducerFailure records a specialist that dropped out of the council
type ProducerFailure struct {
	Specialty opinion.Specialty `json:"specialty"`
	Err       error             `json:"-"`
	Reason    string            `json:"reason"`
}
