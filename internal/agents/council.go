package agents

import (
	"context"
	"sort"
	"sync"
	"time"

	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/triage"
	"asclepius/pkg/errors"
	"asclepius/pkg/logger"
)

// CouncilResult is the fully materialized fan-out output handed to synthesis.
// Opinions are sorted by the canonical specialty order so downstream
// processing is independent of producer completion order.
type CouncilResult struct {
	Opinions         []opinion.Opinion
	OtherDepartments []opinion.OtherDepartmentScore
	Failures         []ProducerFailure
	Elapsed          time.Duration
}

// Council runs the fixed specialist set plus the department scorer
// concurrently against one immutable classification. Producer failures are
// absorbed as missing opinions; only an empty council is an error.
type Council struct {
	producers []Producer
	scorer    DepartmentScorer
	timeout   time.Duration
	retries   int
	log       *logger.Logger
}

// NewCouncil assembles the council. Producer order defines nothing; results
// are re-sorted canonically after the join.
func NewCouncil(producers []Producer, scorer DepartmentScorer, timeout time.Duration, retries int) *Council {
	return &Council{
		producers: producers,
		scorer:    scorer,
		timeout:   timeout,
		retries:   retries,
		log:       logger.Get().With("component", "council"),
	}
}

type producerOutcome struct {
	specialty opinion.Specialty
	op        *opinion.Opinion
	err       error
}

// Run fans out all producers, waits for the barrier join, and returns the
// complete council output. The deadline bounds the whole fan-out; a producer
// still running at expiry is treated as a missing opinion.
func (c *Council) Run(ctx context.Context, co *triage.ClassifierOutput) (*CouncilResult, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	outcomes := make(chan producerOutcome, len(c.producers))
	var wg sync.WaitGroup

	for _, p := range c.producers {
		wg.Add(1)
		go func(p Producer) {
			defer wg.Done()
			op, err := c.produceWithRetry(ctx, p, co)
			outcomes <- producerOutcome{specialty: p.Specialty(), op: op, err: err}
		}(p)
	}

	var (
		scores    []opinion.OtherDepartmentScore
		scorerErr error
	)
	if c.scorer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scores, scorerErr = c.scorer.Score(ctx, co)
		}()
	}

	wg.Wait()
	close(outcomes)

	result := &CouncilResult{}
	for outcome := range outcomes {
		if outcome.err != nil {
			c.log.Warnw("Specialist dropped from council",
				"patient_id", co.PatientID,
				"specialty", outcome.specialty,
				"error", outcome.err,
			)
			result.Failures = append(result.Failures, ProducerFailure{
				Specialty: outcome.specialty,
				Err:       outcome.err,
				Reason:    outcome.err.Error(),
			})
			continue
		}
		result.Opinions = append(result.Opinions, *outcome.op)
	}

	if scorerErr != nil {
		// Informational only; a failed scorer never blocks the verdict
		c.log.Warnw("Department scorer failed", "patient_id", co.PatientID, "error", scorerErr)
	} else {
		result.OtherDepartments = scores
	}

	sort.Slice(result.Opinions, func(i, j int) bool {
		return opinion.CouncilRank(result.Opinions[i].Specialty) < opinion.CouncilRank(result.Opinions[j].Specialty)
	})
	sort.Slice(result.Failures, func(i, j int) bool {
		return opinion.CouncilRank(result.Failures[i].Specialty) < opinion.CouncilRank(result.Failures[j].Specialty)
	})

	result.Elapsed = time.Since(start)

	if len(result.Opinions) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyCouncil, "all %d producers failed", len(c.producers))
	}

	c.log.Infow("Council complete",
		"patient_id", co.PatientID,
		"opinions", len(result.Opinions),
		"failures", len(result.Failures),
		"elapsed", result.Elapsed,
	)

	return result, nil
}

func (c *Council) produceWithRetry(ctx context.Context, p Producer, co *triage.ClassifierOutput) (*opinion.Opinion, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrTimeout, ctx.Err().Error())
		}
		op, err := p.Produce(ctx, co)
		if err == nil {
			return op, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
