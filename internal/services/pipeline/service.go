package pipeline

import (
	"context"
	"time"

	"asclepius/internal/agents"
	"asclepius/internal/domain/patient"
	"asclepius/internal/domain/triage"
	"asclepius/internal/domain/verdict"
	"asclepius/internal/events"
	"asclepius/internal/metrics"
	"asclepius/internal/repository/clickhouse"
	"asclepius/internal/repository/redis"
	"asclepius/internal/services/synthesis"
	"asclepius/pkg/errors"
	"asclepius/pkg/logger"
)

// Classifier runs the risk model on a validated intake
type Classifier interface {
	Classify(ctx context.Context, in *patient.Intake) (*triage.ClassifierOutput, error)
}

// CouncilRunner fans out the specialist producers and joins their results
type CouncilRunner interface {
	Run(ctx context.Context, co *triage.ClassifierOutput) (*agents.CouncilResult, error)
}

// Notifier delivers finalized verdicts to on-call staff
type Notifier interface {
	NotifyVerdict(ctx context.Context, v *verdict.Verdict) error
	NotifyCriticalAlerts(ctx context.Context, v *verdict.Verdict) error
}

// Service orchestrates the full triage run: classification, council
// fan-out, synthesis, persistence and event delivery.
type Service struct {
	classifier Classifier
	council    CouncilRunner
	engine     *synthesis.Engine
	repo       verdict.Repository
	cache      *redis.VerdictCache
	analytics  *clickhouse.TriageEventRepository
	publisher  *events.Publisher
	notifier   Notifier
	runLock    *redis.RunLock
	log        *logger.Logger
}

// Option configures optional side-channels on the service
type Option func(*Service)

// WithCache enables latest-verdict caching
func WithCache(cache *redis.VerdictCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithAnalytics enables ClickHouse verdict analytics
func WithAnalytics(analytics *clickhouse.TriageEventRepository) Option {
	return func(s *Service) { s.analytics = analytics }
}

// WithPublisher enables Kafka event publishing
func WithPublisher(publisher *events.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

// WithNotifier enables Telegram verdict delivery
func WithNotifier(notifier Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

// WithRunLock enforces one concurrent run per patient across processes
func WithRunLock(lock *redis.RunLock) Option {
	return func(s *Service) { s.runLock = lock }
}

// NewService wires the pipeline
func NewService(classifier Classifier, council CouncilRunner, engine *synthesis.Engine, repo verdict.Repository, opts ...Option) *Service {
	s := &Service{
		classifier: classifier,
		council:    council,
		engine:     engine,
		repo:       repo,
		log:        logger.Get().With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Triage runs the whole pipeline for one patient, emitting progress and
// data events along the way. Classification errors are fatal; producer
// failures degrade to a smaller council.
func (s *Service) Triage(ctx context.Context, in *patient.Intake, emit EventSink) (*verdict.Verdict, error) {
	if emit == nil {
		emit = func(StreamEvent) {}
	}
	start := time.Now()

	if s.runLock != nil {
		acquired, err := s.runLock.Acquire(ctx, in.ID)
		if err != nil {
			s.log.Warnw("Run lock unavailable, proceeding without it", "patient_id", in.ID, "error", err)
		} else if !acquired {
			err := errors.Wrapf(errors.ErrAlreadyExists, "triage already running for patient %s", in.ID)
			s.failed(ctx, in.ID, StageClassification, err, emit)
			return nil, err
		} else {
			defer func() {
				if err := s.runLock.Release(context.WithoutCancel(ctx), in.ID); err != nil {
					s.log.Warnw("Failed to release run lock", "patient_id", in.ID, "error", err)
				}
			}()
		}
	}

	emit(event(EventStatus, StageClassification, "classifying patient"))

	classStart := time.Now()
	co, err := s.classifier.Classify(ctx, in)
	if err != nil {
		s.failed(ctx, in.ID, StageClassification, err, emit)
		return nil, err
	}
	metrics.RecordStage(StageClassification, time.Since(classStart))
	s.publishStage(ctx, in.ID, StageClassification)
	emit(event(EventClassification, StageClassification, co))

	emit(event(EventStatus, StageCouncil, "consulting specialist council"))

	councilStart := time.Now()
	result, err := s.council.Run(ctx, co)
	if err != nil {
		s.failed(ctx, in.ID, StageCouncil, err, emit)
		return nil, err
	}
	metrics.RecordStage(StageCouncil, time.Since(councilStart))
	metrics.CouncilSize.Observe(float64(len(result.Opinions)))
	s.publishStage(ctx, in.ID, StageCouncil)

	for i := range result.Opinions {
		emit(event(EventOpinion, StageCouncil, &result.Opinions[i]))
	}
	for i := range result.Failures {
		metrics.OpinionFailures.WithLabelValues(string(result.Failures[i].Specialty)).Inc()
		emit(event(EventProducerFailure, StageCouncil, &result.Failures[i]))
	}
	if len(result.OtherDepartments) > 0 {
		emit(event(EventOtherDepartments, StageCouncil, result.OtherDepartments))
	}

	emit(event(EventStatus, StageSynthesis, "synthesizing verdict"))

	synthStart := time.Now()
	v, err := s.engine.Synthesize(co, result.Opinions, result.OtherDepartments)
	if err != nil {
		s.failed(ctx, in.ID, StageSynthesis, err, emit)
		return nil, err
	}
	metrics.RecordStage(StageSynthesis, time.Since(synthStart))

	if err := s.repo.Save(ctx, &verdict.Record{Verdict: v, Classification: co}); err != nil {
		s.failed(ctx, in.ID, StageSynthesis, err, emit)
		return nil, errors.Wrap(err, "failed to store verdict")
	}

	s.recordVerdict(ctx, co, v)

	emit(event(EventVerdict, StageComplete, v))
	emit(event(EventStatus, StageComplete, "triage complete"))

	metrics.TriageRequests.WithLabelValues("success").Inc()
	metrics.RecordStage("total", time.Since(start))

	s.log.Infow("Triage complete",
		"patient_id", in.ID,
		"final_risk", v.FinalRiskLevel,
		"primary_department", v.PrimaryDepartment,
		"elapsed", time.Since(start),
	)

	return v, nil
}

// LatestVerdict serves the cached verdict, falling back to the repository
func (s *Service) LatestVerdict(ctx context.Context, patientID string) (*verdict.Verdict, error) {
	if s.cache != nil {
		if v, err := s.cache.GetLatest(ctx, patientID); err == nil {
			return v, nil
		}
	}

	rec, err := s.repo.GetByPatientID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return rec.Verdict, nil
}

// recordVerdict fans the finalized verdict out to the side-channels.
// All of these are best-effort; the verdict is already durable.
func (s *Service) recordVerdict(ctx context.Context, co *triage.ClassifierOutput, v *verdict.Verdict) {
	metrics.Verdicts.WithLabelValues(string(v.FinalRiskLevel), string(v.CouncilConsensus)).Inc()
	if v.RiskAdjusted {
		metrics.RiskAdjustments.WithLabelValues(string(v.MLRiskLevel), string(v.FinalRiskLevel)).Inc()
	}
	for _, a := range v.SafetyAlerts {
		metrics.SafetyAlerts.WithLabelValues(string(a.Severity), string(a.SourceSpecialty)).Inc()
	}

	if s.cache != nil {
		if err := s.cache.SetLatest(ctx, v); err != nil {
			s.log.Warnw("Failed to cache verdict", "patient_id", v.PatientID, "error", err)
		}
	}
	if s.analytics != nil {
		if err := s.analytics.Insert(ctx, v); err != nil {
			s.log.Warnw("Failed to record verdict analytics", "patient_id", v.PatientID, "error", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishVerdict(ctx, v); err != nil {
			s.log.Warnw("Failed to publish verdict", "patient_id", v.PatientID, "error", err)
		}
		if err := s.publisher.PublishSafetyAlerts(ctx, v); err != nil {
			s.log.Warnw("Failed to publish safety alerts", "patient_id", v.PatientID, "error", err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyVerdict(ctx, v); err != nil {
			s.log.Warnw("Failed to deliver verdict notification", "patient_id", v.PatientID, "error", err)
		}
		if v.CriticalAlertCount() > 0 {
			if err := s.notifier.NotifyCriticalAlerts(ctx, v); err != nil {
				s.log.Warnw("Failed to deliver alert notifications", "patient_id", v.PatientID, "error", err)
			}
		}
	}
}

func (s *Service) publishStage(ctx context.Context, patientID, stage string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishStage(ctx, patientID, stage, ""); err != nil {
		s.log.Warnw("Failed to publish stage event", "patient_id", patientID, "stage", stage, "error", err)
	}
}

func (s *Service) failed(ctx context.Context, patientID, stage string, err error, emit EventSink) {
	metrics.TriageRequests.WithLabelValues(stage + "_error").Inc()
	s.log.Errorw("Triage failed", "patient_id", patientID, "stage", stage, "error", err)
	emit(event(EventError, stage, err.Error()))
}
