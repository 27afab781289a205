package applications

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/devops863/kaizen-sourcing/internal/common/errors"
	"github.com/devops863/kaizen-sourcing/internal/common/logger"
	"github.com/devops863/kaizen-sourcing/internal/common/metrics"
	"github.com/devops863/kaizen-sourcing/internal/common/observability"
	"github.com/devops863/kaizen-sourcing/internal/common/validation"
	"github.com/devops863/kaizen-sourcing/internal/models"
	"github.com/devops863/kaizen-sourcing/internal/notifications"
)

// Notifier sends a confirmation for a stored application.
type Notifier interface {
	Notify(ctx context.Context, app *models.Application) (*notifications.Result, error)
}

// Recorder receives the outcome of every submission.
type Recorder interface {
	RecordSubmission(ctx context.Context, status string, duration time.Duration)
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithContract(c *validation.Contract) Option {
	return func(s *Service) { s.contract = c }
}

// Service validates submissions against the shared application contract and
// persists the ones that pass.
type Service struct {
	store    Store
	contract *validation.Contract
	notifier Notifier
	recorder Recorder
	logger   logger.Logger
}

func NewService(store Store, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		contract: validation.Application(),
		recorder: (*observability.Observability)(nil),
		logger:   log.WithFields(map[string]interface{}{"component": "application-service"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateApplication validates raw JSON with the same rules the form uses and, on
// success, stores exactly one row. An invalid payload never reaches the store.
func (s *Service) CreateApplication(ctx context.Context, payload []byte) (*models.Application, error) {
	start := time.Now()

	result := s.contract.ValidateJSON(payload)
	if !result.Valid {
		for _, e := range result.Errors {
			field := e.Field
			if !s.contract.Declares(field) {
				field = "other"
			}
			metrics.ApplicationValidationFailures.WithLabelValues(field, e.Code).Inc()
		}
		s.recorder.RecordSubmission(ctx, observability.StatusRejected, time.Since(start))
		s.logger.Info("application rejected", map[string]interface{}{
			"errorCount": len(result.Errors),
			"fields":     fieldNames(result),
		})
		return nil, apperrors.NewApplicationValidationFailedError(result)
	}

	var in models.InsertApplication
	if err := json.Unmarshal(payload, &in); err != nil {
		s.recorder.RecordSubmission(ctx, observability.StatusRejected, time.Since(start))
		return nil, apperrors.NewInvalidRequestBodyError(err)
	}
	if in.Documents == nil {
		in.Documents = []string{}
	}

	app, err := s.store.Create(ctx, &in)
	if err != nil {
		s.recorder.RecordSubmission(ctx, observability.StatusFailed, time.Since(start))
		s.logger.Error("failed to store application", map[string]interface{}{"error": err})
		return nil, err
	}

	metrics.ApplicationsCreated.Inc()
	s.recorder.RecordSubmission(ctx, observability.StatusCreated, time.Since(start))
	s.logger.Info("application created", map[string]interface{}{
		"applicationId": app.ID,
		"jobTitle":      app.JobTitle,
	})

	s.confirm(context.WithoutCancel(ctx), app)

	return app, nil
}

// ListApplications returns every stored application in insertion order.
func (s *Service) ListApplications(ctx context.Context) ([]models.Application, error) {
	apps, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("failed to list applications", map[string]interface{}{"error": err})
		return nil, err
	}
	return apps, nil
}

// confirm never fails the submission; the row is already committed.
func (s *Service) confirm(ctx context.Context, app *models.Application) {
	if s.notifier == nil {
		return
	}

	result, err := s.notifier.Notify(ctx, app)
	if err == nil {
		return
	}

	if result != nil {
		for _, channel := range result.Failed {
			metrics.NotificationsFailed.WithLabelValues(channel).Inc()
		}
	}
	stdErr := apperrors.NewNotificationSendFailedError("confirmation", err)
	s.logger.Warn("confirmation not delivered", map[string]interface{}{
		"applicationId": app.ID,
		"code":          string(stdErr.Code),
		"error":         err,
	})
}

func fieldNames(result *validation.ValidationResult) []string {
	seen := make(map[string]bool, len(result.Errors))
	names := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		if !seen[e.Field] {
			seen[e.Field] = true
			names = append(names, e.Field)
		}
	}
	return names
}
