package explorer

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/voicemap/clustering"
	"github.com/kbukum/voicemap/diarization"
	"github.com/kbukum/voicemap/embedding"
	apperrors "github.com/kbukum/voicemap/errors"
	"github.com/kbukum/voicemap/logger"
	"github.com/kbukum/voicemap/media"
	"github.com/kbukum/voicemap/observability"
	"github.com/kbukum/voicemap/projection"
	"github.com/kbukum/voicemap/session"
	"github.com/kbukum/voicemap/storage"
)

// Option customizes a Service.
type Option func(*Service)

// WithMetrics records operation and job metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger replaces the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// Service implements the voicemap operations.
type Service struct {
	sessions *session.Registry
	store    storage.Storage
	gateway  diarization.Provider
	clipper  Clipper
	cfg      Config
	metrics  *observability.Metrics
	log      *logger.Logger
}

// New creates a Service.
func New(sessions *session.Registry, store storage.Storage, gateway diarization.Provider, clipper Clipper, cfg Config, opts ...Option) *Service {
	cfg.ApplyDefaults()
	s := &Service{
		sessions: sessions,
		store:    store,
		gateway:  gateway,
		clipper:  clipper,
		cfg:      cfg,
		log:      logger.Get("explorer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// run executes fn as the named operation: traced, timed, logged, panic-safe,
// and with every error converted to an AppError.
func (s *Service) run(ctx context.Context, op, sessionID string, fn func(ctx context.Context) error) (err error) {
	ctx, span := observability.StartSpan(ctx, "explorer."+op, trace.WithAttributes(
		attribute.String(observability.AttrOperation, op),
		attribute.String(observability.AttrSessionID, sessionID),
	))
	start := time.Now()
	log := s.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldOperation, op, logger.FieldSessionID, sessionID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("operation panicked", logger.Fields("panic", fmt.Sprint(r), "stack", string(debug.Stack())))
			err = apperrors.Internal(fmt.Errorf("%v", r))
		}

		status := "ok"
		if err != nil {
			appErr := classify(err, sessionID)
			err = appErr
			status = string(appErr.Code)
			span.SetAttributes(attribute.String(observability.AttrErrorCode, status))
			observability.SetSpanError(ctx, appErr)

			fields := logger.Fields(logger.FieldStatus, appErr.HTTPStatus, logger.FieldError, appErr.Message, "code", status)
			if appErr.HTTPStatus >= 500 {
				if appErr.Cause != nil {
					log = log.WithError(appErr.Cause)
				}
				log.Error("operation failed", fields)
			} else {
				log.Warn("operation rejected", fields)
			}
		} else {
			log.Debug("operation completed", logger.DurationFields(op, time.Since(start)))
		}

		s.metrics.RecordOperation(ctx, op, status, time.Since(start))
		span.End()
	}()

	return fn(ctx)
}

// classify maps domain errors onto the AppError taxonomy.
func classify(err error, sessionID string) *apperrors.AppError {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrNoUpload):
		return apperrors.SessionExpired(sessionID)
	case errors.Is(err, embedding.ErrDimensionMismatch):
		return apperrors.InvalidInput("vector", err.Error()).WithCause(err)
	case errors.Is(err, clustering.ErrInvalidClusterCount):
		return apperrors.InvalidInput("num_clusters", err.Error()).WithCause(err)
	case errors.Is(err, projection.ErrInsufficientData):
		return apperrors.InsufficientData(projectionShortage, 0, projection.MinPoints).WithCause(err)
	case errors.Is(err, clustering.ErrInsufficientData):
		return apperrors.InsufficientData(clusteringShortage, 0, 0).WithCause(err)
	case errors.Is(err, media.ErrEmptyClip):
		return apperrors.NoSpeech("").WithCause(err)
	}
	return apperrors.Internal(err)
}

// session resolves a session that has completed its upload.
func (s *Service) session(id string) (*session.Session, session.Audio, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, session.Audio{}, err
	}
	audio, err := sess.Audio()
	if err != nil {
		return nil, session.Audio{}, err
	}
	return sess, audio, nil
}

// recordJob counts a finished remote job by outcome.
func (s *Service) recordJob(ctx context.Context, kind string, err error) {
	outcome := "succeeded"
	if err != nil {
		outcome = "error"
		if appErr, ok := apperrors.AsAppError(err); ok {
			switch appErr.Code {
			case apperrors.ErrCodeRemoteJobFailed, apperrors.ErrCodeNoSpeech:
				outcome = "failed"
			case apperrors.ErrCodeRemoteJobTimedOut:
				outcome = "timed_out"
			}
		}
	}
	s.metrics.RecordJobOutcome(ctx, kind, outcome)
}
