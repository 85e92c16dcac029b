package memory

import (
	"context"
	"sync"

	"asclepius/internal/domain/verdict"
	"asclepius/pkg/errors"
)

// VerdictRepository is the in-process append-only verdict store backing the
// dashboard. Injected and lifecycle-scoped so tests get isolated instances.
type VerdictRepository struct {
	mu      sync.RWMutex
	records []*verdict.Record
	byID    map[string]*verdict.Record
}

// NewVerdictRepository creates an empty store
func NewVerdictRepository() *VerdictRepository {
	return &VerdictRepository{
		byID: make(map[string]*verdict.Record),
	}
}

// Save appends a finalized verdict. Concurrent patients append
// independently; one writer per verdict.
func (r *VerdictRepository) Save(ctx context.Context, rec *verdict.Record) error {
	if rec == nil || rec.Verdict == nil {
		return errors.Wrap(errors.ErrInvalidInput, "nil verdict record")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, rec)
	r.byID[rec.Verdict.PatientID] = rec
	return nil
}

// GetByPatientID returns the latest record for a patient
func (r *VerdictRepository) GetByPatientID(ctx context.Context, patientID string) (*verdict.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[patientID]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return rec, nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (r *VerdictRepository) List(ctx context.Context, limit int) ([]*verdict.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.records)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]*verdict.Record, 0, limit)
	for i := n - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}

// Count returns the number of stored verdicts
func (r *VerdictRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}

var _ verdict.Repository = (*VerdictRepository)(nil)
