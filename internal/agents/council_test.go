package agents

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/triage"
	"asclepius/pkg/errors"
)

type fakeProducer struct {
	specialty opinion.Specialty
	op        *opinion.Opinion
	err       error
	delay     time.Duration
	calls     int32
	failFirst bool
}

func (f *fakeProducer) Specialty() opinion.Specialty { return f.specialty }

func (f *fakeProducer) Produce(ctx context.Context, co *triage.ClassifierOutput) (*opinion.Opinion, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.failFirst && n == 1 {
		return nil, errors.ErrProducerFailed
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.op, nil
}

type fakeScorer struct {
	scores []opinion.OtherDepartmentScore
	err    error
}

func (f *fakeScorer) Score(ctx context.Context, co *triage.ClassifierOutput) ([]opinion.OtherDepartmentScore, error) {
	return f.scores, f.err
}

func fakeOpinion(s opinion.Specialty, relevance int) *opinion.Opinion {
	return &opinion.Opinion{
		Specialty:      s,
		RelevanceScore: relevance,
		UrgencyScore:   4,
		Confidence:     opinion.ConfidenceMedium,
		OneLiner:       "ok",
	}
}

func classification() *triage.ClassifierOutput {
	return &triage.ClassifierOutput{
		PatientID:   "P-1",
		PatientName: "Test Patient",
		Prediction:  triage.Prediction{RiskLabel: triage.RiskMedium},
	}
}

func TestCouncilRunCollectsAllOpinions(t *testing.T) {
	producers := []Producer{
		&fakeProducer{specialty: opinion.GeneralMedicine, op: fakeOpinion(opinion.GeneralMedicine, 5)},
		&fakeProducer{specialty: opinion.Cardiology, op: fakeOpinion(opinion.Cardiology, 8)},
		&fakeProducer{specialty: opinion.Neurology, op: fakeOpinion(opinion.Neurology, 2)},
	}
	council := NewCouncil(producers, &fakeScorer{}, time.Second, 0)

	result, err := council.Run(context.Background(), classification())
	require.NoError(t, err)
	require.Len(t, result.Opinions, 3)

	// Canonical order regardless of completion order
	assert.Equal(t, opinion.Cardiology, result.Opinions[0].Specialty)
	assert.Equal(t, opinion.Neurology, result.Opinions[1].Specialty)
	assert.Equal(t, opinion.GeneralMedicine, result.Opinions[2].Specialty)
	assert.Empty(t, result.Failures)
}

func TestCouncilRunAbsorbsProducerFailure(t *testing.T) {
	producers := []Producer{
		&fakeProducer{specialty: opinion.Cardiology, op: fakeOpinion(opinion.Cardiology, 8)},
		&fakeProducer{specialty: opinion.Neurology, err: errors.ErrSchemaViolation},
	}
	council := NewCouncil(producers, &fakeScorer{}, time.Second, 0)

	result, err := council.Run(context.Background(), classification())
	require.NoError(t, err)
	require.Len(t, result.Opinions, 1)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, opinion.Neurology, result.Failures[0].Specialty)
}

func TestCouncilRunTimesOutHungProducer(t *testing.T) {
	producers := []Producer{
		&fakeProducer{specialty: opinion.Cardiology, op: fakeOpinion(opinion.Cardiology, 8)},
		&fakeProducer{specialty: opinion.Pulmonology, op: fakeOpinion(opinion.Pulmonology, 5), delay: time.Minute},
	}
	council := NewCouncil(producers, &fakeScorer{}, 50*time.Millisecond, 0)

	result, err := council.Run(context.Background(), classification())
	require.NoError(t, err)
	require.Len(t, result.Opinions, 1)
	assert.Equal(t, opinion.Cardiology, result.Opinions[0].Specialty)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, opinion.Pulmonology, result.Failures[0].Specialty)
}

func TestCouncilRunRetriesFailedProducer(t *testing.T) {
	p := &fakeProducer{specialty: opinion.Cardiology, op: fakeOpinion(opinion.Cardiology, 8), failFirst: true}
	council := NewCouncil([]Producer{p}, &fakeScorer{}, time.Second, 1)

	result, err := council.Run(context.Background(), classification())
	require.NoError(t, err)
	require.Len(t, result.Opinions, 1)
	assert.EqualValues(t, 2, atomic.LoadInt32(&p.calls))
}

func TestCouncilRunEmptyCouncilIsError(t *testing.T) {
	producers := []Producer{
		&fakeProducer{specialty: opinion.Cardiology, err: errors.ErrProducerFailed},
		&fakeProducer{specialty: opinion.Neurology, err: errors.ErrProducerFailed},
	}
	council := NewCouncil(producers, &fakeScorer{}, time.Second, 0)

	_, err := council.Run(context.Background(), classification())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyCouncil))
}

func TestCouncilRunScorerFailureIsNonFatal(t *testing.T) {
	producers := []Producer{
		&fakeProducer{specialty: opinion.Cardiology, op: fakeOpinion(opinion.Cardiology, 8)},
	}
	council := NewCouncil(producers, &fakeScorer{err: errors.ErrProducerFailed}, time.Second, 0)

	result, err := council.Run(context.Background(), classification())
	require.NoError(t, err)
	assert.Empty(t, result.OtherDepartments)
	assert.Len(t, result.Opinions, 1)
}

func TestCouncilRunCarriesDepartmentScores(t *testing.T) {
	scores := []opinion.OtherDepartmentScore{
		{Department: opinion.Nephrology, Relevance: 6, Reason: "kidney history"},
		{Department: opinion.ENT, Relevance: 1},
	}
	producers := []Producer{
		&fakeProducer{specialty: opinion.Cardiology, op: fakeOpinion(opinion.Cardiology, 8)},
	}
	council := NewCouncil(producers, &fakeScorer{scores: scores}, time.Second, 0)

	result, err := council.Run(context.Background(), classification())
	require.NoError(t, err)
	assert.Equal(t, scores, result.OtherDepartments)
}
