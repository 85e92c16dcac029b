package redis

import (
	"context"
	"fmt"
	"time"

	"asclepius/internal/adapters/redis"
)

// RunLock guards one triage run per patient at a time. The TTL bounds lock
// leakage if a run dies without releasing.
type RunLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRunLock creates the lock
func NewRunLock(client *redis.Client, ttl time.Duration) *RunLock {
	return &RunLock{client: client, ttl: ttl}
}

func lockKey(patientID string) string {
	return fmt.Sprintf("triage:run:%s", patientID)
}

// Acquire returns true if this process now holds the patient's run lock
func (l *RunLock) Acquire(ctx context.Context, patientID string) (bool, error) {
	return l.client.AcquireLock(ctx, lockKey(patientID), l.ttl)
}

// Release frees the patient's run lock
func (l *RunLock) Release(ctx context.Context, patientID string) error {
	return l.client.ReleaseLock(ctx, lockKey(patientID))
}
