package analysis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bryanwahyu/resume-analyzer/internal/application"
	domain "github.com/bryanwahyu/resume-analyzer/internal/domain/analysis"
)

// MaxRecent is the largest history page the service will return.
const MaxRecent = 10

// Outcome labels reported to the OutcomeRecorder.
const (
	OutcomeSuccess       = "success"
	OutcomeValidation    = "validation_error"
	OutcomeTransport     = "transport_error"
	OutcomeNormalization = "normalization_error"
	OutcomeStorage       = "storage_error"
)

// OutcomeRecorder receives one outcome per Analyze/Record call.
type OutcomeRecorder interface {
	AnalysisOutcome(outcome string)
}

// Service implements the analysis use cases. All fields are shared process
// singletons and safe for concurrent use.
type Service struct {
	AI       domain.Client
	Repo     domain.Repository
	Clock    application.Clock
	Logger   *slog.Logger
	Outcomes OutcomeRecorder
}

// Analyze validates req, asks the model once and normalizes the reply.
// Validation failures never reach the model.
// It does not persist anything; callers use Record for that.
func (s *Service) Analyze(ctx context.Context, req domain.Request) (domain.Result, error) {
	if err := req.Validate(); err != nil {
		s.observe(OutcomeValidation)
		return domain.Result{}, err
	}

	reply, err := s.AI.Analyze(ctx, req.ResumeText, req.JobDescription)
	if err != nil {
		s.observe(OutcomeTransport)
		var te *domain.TransportError
		if !errors.As(err, &te) {
			err = &domain.TransportError{Err: err}
		}
		s.logger().Error("ai request failed", "err", err)
		return domain.Result{}, err
	}

	result, err := domain.Normalize(reply)
	if err != nil {
		s.observe(OutcomeNormalization)
		s.logger().Warn("ai reply could not be normalized", "err", err, "reply_bytes", len(reply))
		return domain.Result{}, err
	}

	s.observe(OutcomeSuccess)
	return result, nil
}

// Record persists a completed analysis stamped with the current UTC time.
func (s *Service) Record(ctx context.Context, req domain.Request, result domain.Result) (domain.Record, error) {
	rec := domain.Record{
		ResumeText:     req.ResumeText,
		JobDescription: req.JobDescription,
		Analysis:       result,
		CreatedAt:      s.Clock.Now().UTC(),
	}
	if err := s.Repo.Save(ctx, &rec); err != nil {
		s.observe(OutcomeStorage)
		return rec, &domain.StorageError{Op: "save", Err: err}
	}
	return rec, nil
}

// Recent returns up to limit records, newest first. limit is clamped to [1, MaxRecent].
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	if limit <= 0 || limit > MaxRecent {
		limit = MaxRecent
	}
	list, err := s.Repo.Recent(ctx, limit)
	if err != nil {
		return nil, &domain.StorageError{Op: "recent", Err: err}
	}
	if list == nil {
		list = []domain.Record{}
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *Service) observe(outcome string) {
	if s.Outcomes != nil {
		s.Outcomes.AnalysisOutcome(outcome)
	}
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
