package redis

import (
	"context"
	"fmt"
	"time"

	"asclepius/internal/adapters/redis"
	"asclepius/internal/domain/verdict"
)

// VerdictCache keeps the latest verdict per patient in Redis for fast
// dashboard and delivery reads.
type VerdictCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVerdictCache creates the cache
func NewVerdictCache(client *redis.Client, ttl time.Duration) *VerdictCache {
	return &VerdictCache{client: client, ttl: ttl}
}

func verdictKey(patientID string) string {
	return fmt.Sprintf("triage:verdict:%s", patientID)
}

// SetLatest stores the verdict under the patient key
func (c *VerdictCache) SetLatest(ctx context.Context, v *verdict.Verdict) error {
	return c.client.Set(ctx, verdictKey(v.PatientID), v, c.ttl)
}

// GetLatest returns the cached verdict, or errors.ErrNotFound
func (c *VerdictCache) GetLatest(ctx context.Context, patientID string) (*verdict.Verdict, error) {
	var v verdict.Verdict
	if err := c.client.Get(ctx, verdictKey(patientID), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Invalidate drops the cached verdict for a patient
func (c *VerdictCache) Invalidate(ctx context.Context, patientID string) error {
	return c.client.Delete(ctx, verdictKey(patientID))
}
