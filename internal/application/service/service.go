// Package service orchestrates the application workflow. Every operation
// runs as one unit of work through StoreTx; status rules come from the
// workflow table and eligibility engine, never from here.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"homestay/internal/application/metrics"
	"homestay/internal/application/models"
	"homestay/internal/notify"
	"homestay/internal/numbering"
	"homestay/internal/policy"
	"homestay/pkg/domain"
	dErrors "homestay/pkg/domain-errors"
	"homestay/pkg/platform/sentinel"
	"homestay/pkg/requestcontext"
)

const tracerName = "homestay/application"

// Service is the entry point for owner, officer, admin and gateway calls.
type Service struct {
	tx       StoreTx
	numberer *numbering.Numberer
	policies *policy.Holder
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithNotifier sets the receiver of post-commit events.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(tx StoreTx, numberer *numbering.Numberer, policies *policy.Holder, opts ...Option) *Service {
	s := &Service{
		tx:       tx,
		numberer: numberer,
		policies: policies,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the policy currently in force.
func (s *Service) Policy() *policy.Policy {
	return s.policies.Get()
}

// begin opens a span for operation. The returned func closes it, records
// the outcome and must be deferred with the operation's final error.
func (s *Service) begin(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "application."+operation, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if s.metrics != nil && dErrors.HasCode(err, dErrors.CodeConflict) {
				s.metrics.IncrementConflict(operation)
			}
		}
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveOperation(operation, start)
		}
	}
}

// storeError converts store sentinels into domain errors. Domain errors
// raised inside the unit of work pass through unchanged.
func storeError(err error, what string) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "application status changed concurrently")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeConflict, "a conflicting record already exists")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to process "+what)
}

// canRead hides applications the actor may not see behind not-found.
func canRead(actor domain.Actor, app *models.Application) error {
	switch {
	case actor.Role == domain.RoleOwner && app.UserID != actor.ID:
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	case actor.Role.IsOfficer() && !actor.InDistrict(app.District):
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	case !actor.Role.IsValid():
		return dErrors.New(dErrors.CodeForbidden, "unknown role")
	}
	return nil
}

// canAct scopes a workflow move. Officers outside the district are refused
// outright; owners never learn about applications they do not own.
func canAct(actor domain.Actor, app *models.Application) error {
	switch {
	case actor.Role == domain.RoleOwner && app.UserID != actor.ID:
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	case actor.Role.IsOfficer() && !actor.InDistrict(app.District):
		return dErrors.New(dErrors.CodeForbidden, "application is outside the officer's district").
			WithField("district", actor.District, app.District)
	case !actor.Role.IsValid():
		return dErrors.New(dErrors.CodeForbidden, "unknown role")
	}
	return nil
}

// requireOwner restricts owner-only edits.
func requireOwner(actor domain.Actor, app *models.Application) error {
	if actor.Role != domain.RoleOwner {
		return dErrors.New(dErrors.CodeForbidden, "only the property owner may do this")
	}
	if app.UserID != actor.ID {
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	return nil
}

func (s *Service) appendAction(ctx context.Context, st Store, action *models.ApplicationAction) error {
	if err := st.AppendAction(ctx, action); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record application action")
	}
	return nil
}

// publish hands committed events to the notifier. Failures are logged only.
func (s *Service) publish(ctx context.Context, events []notify.Event) {
	if s.notifier == nil {
		return
	}
	for _, ev := range events {
		if err := s.notifier.Notify(ctx, ev); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "notification failed",
				"error", err,
				"event_type", string(ev.Type),
				"application_id", ev.ApplicationID.String(),
			)
		}
	}
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, event, args...)
	}
}

func statusEvent(app *models.Application, actor domain.Actor, from models.Status, feedback string, now time.Time) notify.Event {
	typ := notify.EventStatusChanged
	if app.Status == models.StatusCorrectionRequired {
		typ = notify.EventCorrectionRequested
	}
	return notify.Event{
		Type:              typ,
		ApplicationID:     app.ID,
		ApplicationNumber: app.ApplicationNumber,
		OwnerID:           app.UserID,
		ActorID:           actor.ID,
		PreviousStatus:    string(from),
		NewStatus:         string(app.Status),
		Feedback:          feedback,
		OccurredAt:        now,
	}
}
