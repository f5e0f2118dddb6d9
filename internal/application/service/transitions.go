package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"homestay/internal/application/models"
	"homestay/internal/application/workflow"
	"homestay/internal/notify"
	"homestay/internal/policy"
	"homestay/pkg/domain"
	dErrors "homestay/pkg/domain-errors"
	"homestay/pkg/platform/sentinel"
	"homestay/pkg/requestcontext"
)

// Transition moves an application to status to on behalf of actor. The
// status precondition, the action row and any approval side effects commit
// together; a concurrent move on the same application yields Conflict.
func (s *Service) Transition(ctx context.Context, actor domain.Actor, id domain.ApplicationID, to models.Status, feedback string) (app *models.Application, err error) {
	ctx, finish := s.begin(ctx, "transition",
		attribute.String("application_id", id.String()),
		attribute.String("to", string(to)),
	)
	defer func() { finish(err) }()

	p := s.Policy()
	now := requestcontext.Now(ctx)
	var events []notify.Event
	var from models.Status

	err = retryOnCertificateClash(func() error {
		return s.tx.RunInTx(ctx, func(txCtx context.Context, st Store) error {
			current, err := st.FindApplicationForUpdate(txCtx, id)
			if err != nil {
				return err
			}
			if err := canAct(actor, current); err != nil {
				return err
			}
			decision, err := workflow.Check(current, to, actor, p)
			if err != nil {
				return err
			}
			switch to {
			case models.StatusSubmitted:
				if err := s.checkSubmittable(current, p); err != nil {
					return err
				}
			case models.StatusLegacyRCReview:
				if err := s.prepareLegacySubmission(txCtx, st, current, p, now); err != nil {
					return err
				}
			}
			from = current.Status
			events, err = s.apply(txCtx, st, current, decision, actor, feedback, p, now)
			if err != nil {
				return err
			}
			app = current
			return nil
		})
	})
	if err != nil {
		return nil, storeError(err, "application")
	}

	s.recordTransition(ctx, app, actor, from)
	s.publish(ctx, events)
	return app, nil
}

// Submit is the owner's draft -> submitted (or resubmission) move.
func (s *Service) Submit(ctx context.Context, actor domain.Actor, id domain.ApplicationID) (*models.Application, error) {
	return s.Transition(ctx, actor, id, models.StatusSubmitted, "")
}

// AvailableTransitions lists the statuses actor may move the application to.
func (s *Service) AvailableTransitions(actor domain.Actor, app *models.Application) []models.Status {
	if canAct(actor, app) != nil {
		return nil
	}
	return workflow.Available(app, actor, s.Policy())
}

// checkSubmittable re-validates capacity at submission because the policy
// may have tightened since the draft was saved.
func (s *Service) checkSubmittable(app *models.Application, p *policy.Policy) error {
	if err := app.CheckCapacity(p.MaxRoomsAllowed); err != nil {
		return err
	}
	if app.Kind.ChoosesValidity() && !p.ValidValidity(app.CertificateValidityYears) {
		return dErrors.New(dErrors.CodeValidation, "certificate validity is not an offered tier").
			WithField("certificateValidityYears", p.ValidityTiers, app.CertificateValidityYears)
	}
	return nil
}

// errCertificateTaken marks an approval that lost its random certificate
// number to a concurrent approval after the in-use check passed.
var errCertificateTaken = errors.New("certificate number taken")

const certificateAttempts = 5

// retryOnCertificateClash reruns a unit of work with a fresh certificate
// draw. The failed transaction has already rolled back.
func retryOnCertificateClash(run func() error) error {
	var err error
	for attempt := 0; attempt < certificateAttempts; attempt++ {
		if err = run(); !errors.Is(err, errCertificateTaken) {
			return err
		}
	}
	return err
}

// apply writes an approved decision: the status change and its action row,
// plus certificate issuance and parent supersession when it approves.
func (s *Service) apply(
	ctx context.Context,
	st Store,
	app *models.Application,
	decision workflow.Decision,
	actor domain.Actor,
	feedback string,
	p *policy.Policy,
	now time.Time,
) ([]notify.Event, error) {
	if decision.Approves {
		return s.approve(ctx, st, app, decision, actor, feedback, p, now)
	}

	app.ApplyStatus(decision.To, now)
	if err := st.UpdateApplication(ctx, app, decision.From); err != nil {
		return nil, err
	}
	if err := s.appendAction(ctx, st, models.NewAction(app.ID, actor.ID, decision.Action, decision.From, decision.To, feedback, now)); err != nil {
		return nil, err
	}
	return []notify.Event{statusEvent(app, actor, decision.From, feedback, now)}, nil
}

// approve runs the approval side effects in the caller's transaction so the
// status and the certificate fields never exist apart.
func (s *Service) approve(
	ctx context.Context,
	st Store,
	app *models.Application,
	decision workflow.Decision,
	actor domain.Actor,
	feedback string,
	p *policy.Policy,
	now time.Time,
) ([]notify.Event, error) {
	if app.Kind.IsLegacy() {
		inUse, err := st.RCNumberInUse(ctx, app.RCNumber, app.ID)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, dErrors.New(dErrors.CodeConflict, "rc number is already registered").
				WithField("rcNumber", nil, app.RCNumber)
		}
		app.ApplyLegacyCertificate(now)
	} else {
		number, err := s.numberer.CertificateNumber(ctx, p, now, st.CertificateNumberInUse)
		if err != nil {
			if _, ok := dErrors.As(err); ok {
				return nil, err
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate certificate number")
		}
		if app.Kind == models.KindCancelCertificate {
			app.CertificateValidityYears = 0
		}
		app.ApplyCertificate(number, now)
	}

	if err := st.UpdateApplication(ctx, app, decision.From); err != nil {
		if !app.Kind.IsLegacy() && errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, fmt.Errorf("%w: %w", errCertificateTaken, err)
		}
		return nil, err
	}
	if err := s.appendAction(ctx, st, models.NewAction(app.ID, actor.ID, decision.Action, decision.From, models.StatusApproved, feedback, now)); err != nil {
		return nil, err
	}
	issued := models.NewAction(app.ID, actor.ID, models.ActionCertificateIssued, models.StatusApproved, models.StatusApproved,
		certificateFeedback(app), now)
	if err := s.appendAction(ctx, st, issued); err != nil {
		return nil, err
	}

	events := []notify.Event{
		statusEvent(app, actor, decision.From, feedback, now),
		{
			Type:              notify.EventCertificateIssued,
			ApplicationID:     app.ID,
			ApplicationNumber: app.ApplicationNumber,
			OwnerID:           app.UserID,
			ActorID:           actor.ID,
			NewStatus:         string(app.Status),
			CertificateNumber: app.CertificateNumber,
			OccurredAt:        now,
		},
	}

	if app.ParentID != nil {
		parentEvent, err := s.supersede(ctx, st, app, actor, now)
		if err != nil {
			return nil, err
		}
		events = append(events, parentEvent)
	}
	return events, nil
}

// supersede closes the parent of an approved service request, writing the
// request's room or category change onto it first.
func (s *Service) supersede(ctx context.Context, st Store, child *models.Application, actor domain.Actor, now time.Time) (notify.Event, error) {
	parent, err := st.FindApplicationForUpdate(ctx, *child.ParentID)
	if err != nil {
		return notify.Event{}, err
	}
	if err := parent.CanSupersede(); err != nil {
		return notify.Event{}, err
	}
	parent.ApplySupersession(child, now)
	if err := st.UpdateApplication(ctx, parent, models.StatusApproved); err != nil {
		return notify.Event{}, err
	}
	feedback := fmt.Sprintf("superseded by %s (%s)", child.ApplicationNumber, child.Kind)
	if err := s.appendAction(ctx, st, models.NewAction(parent.ID, actor.ID, models.ActionSuperseded,
		models.StatusApproved, models.StatusSuperseded, feedback, now)); err != nil {
		return notify.Event{}, err
	}
	return notify.Event{
		Type:              notify.EventParentSuperseded,
		ApplicationID:     parent.ID,
		ApplicationNumber: parent.ApplicationNumber,
		OwnerID:           parent.UserID,
		ActorID:           actor.ID,
		PreviousStatus:    string(models.StatusApproved),
		NewStatus:         string(models.StatusSuperseded),
		Feedback:          feedback,
		OccurredAt:        now,
	}, nil
}

func certificateFeedback(app *models.Application) string {
	return fmt.Sprintf("certificate %s issued, valid %s to %s",
		app.CertificateNumber,
		app.CertificateIssuedDate.Format(time.DateOnly),
		app.CertificateExpiryDate.Format(time.DateOnly),
	)
}

func (s *Service) recordTransition(ctx context.Context, app *models.Application, actor domain.Actor, from models.Status) {
	if s.metrics != nil {
		s.metrics.IncrementTransition(string(from), string(app.Status))
		if app.Status == models.StatusApproved {
			s.metrics.IncrementCertificateIssued(string(app.Kind))
		}
	}
	s.logAudit(ctx, "application_transitioned",
		"user_id", actor.ID.String(),
		"role", string(actor.Role),
		"application_id", app.ID.String(),
		"previous_status", string(from),
		"new_status", string(app.Status),
	)
}
