package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"asclepius/internal/domain/triage"
	"asclepius/internal/domain/verdict"
)

func TestComputePriorityFormula(t *testing.T) {
	// Critical base 80 + urgency 10*2 capped at 20 = 100
	score, action := computePriority(triage.RiskCritical, 10, 0, false)
	assert.Equal(t, 100, score)
	assert.Equal(t, verdict.ActionImmediate, action)

	// High base 60 + 8*2=16 + 1 alert*5 + referral 5 = 86
	score, action = computePriority(triage.RiskHigh, 8, 1, true)
	assert.Equal(t, 86, score)
	assert.Equal(t, verdict.ActionImmediate, action)

	// Medium base 35 + 4*2=8 = 43
	score, action = computePriority(triage.RiskMedium, 4, 0, false)
	assert.Equal(t, 43, score)
	assert.Equal(t, verdict.ActionStandard, action)

	// Low base 10 + 2*2=4 = 14
	score, action = computePriority(triage.RiskLow, 2, 0, false)
	assert.Equal(t, 14, score)
	assert.Equal(t, verdict.ActionCanWait, action)
}

func TestComputePriorityCaps(t *testing.T) {
	// Urgency contribution capped at 20, alerts at 15
	score, _ := computePriority(triage.RiskLow, 10, 10, false)
	assert.Equal(t, 10+20+15, score)
}

func TestComputePriorityClamped(t *testing.T) {
	score, action := computePriority(triage.RiskCritical, 10, 10, true)
	assert.Equal(t, 100, score)
	assert.Equal(t, verdict.ActionImmediate, action)

	score, action = computePriority(triage.RiskLow, 0, 0, false)
	assert.Equal(t, 10, score)
	assert.Equal(t, verdict.ActionCanWait, action)
}

func TestComputePriorityActionAlwaysMatchesBracket(t *testing.T) {
	levels := []triage.RiskLevel{triage.RiskLow, triage.RiskMedium, triage.RiskHigh, triage.RiskCritical}
	for _, level := range levels {
		for urgency := 0; urgency <= 10; urgency++ {
			for alerts := 0; alerts <= 4; alerts++ {
				score, action := computePriority(level, urgency, alerts, urgency%2 == 0)
				assert.GreaterOrEqual(t, score, 1)
				assert.LessOrEqual(t, score, 100)
				assert.Equal(t, verdict.ActionForScore(score), action,
					"level=%s urgency=%d alerts=%d", level, urgency, alerts)
			}
		}
	}
}
