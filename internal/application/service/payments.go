package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"homestay/internal/application/models"
	"homestay/internal/application/workflow"
	"homestay/internal/notify"
	"homestay/pkg/domain"
	dErrors "homestay/pkg/domain-errors"
	"homestay/pkg/platform/sentinel"
	"homestay/pkg/requestcontext"
)

// InitiatePayment opens a pending payment for an application awaiting
// payment. An existing pending payment is returned instead of a second one.
func (s *Service) InitiatePayment(ctx context.Context, actor domain.Actor, appID domain.ApplicationID) (payment *models.Payment, err error) {
	ctx, finish := s.begin(ctx, "initiate_payment", attribute.String("application_id", appID.String()))
	defer func() { finish(err) }()

	p := s.Policy()
	now := requestcontext.Now(ctx)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context, st Store) error {
		app, err := st.FindApplicationForUpdate(txCtx, appID)
		if err != nil {
			return err
		}
		if err := requireOwner(actor, app); err != nil {
			return err
		}
		if app.Status != models.StatusPaymentPending {
			return dErrors.New(dErrors.CodeConflict, "application is not awaiting payment").
				WithField("status", app.Status, models.StatusPaymentPending)
		}

		existing, err := st.ListPayments(txCtx, appID)
		if err != nil {
			return err
		}
		for _, pay := range existing {
			if pay.PaymentStatus == models.PaymentPending {
				payment = pay
				return nil
			}
		}

		roomsAdded := 0
		if rd, ok := app.ServiceContext.(*models.RoomDeltaContext); ok {
			roomsAdded = rd.Delta.Total()
		}
		amount := p.FeeFor(app.Kind, app.Category, app.CertificateValidityYears, roomsAdded)
		payment, err = models.NewPayment(domain.NewPaymentID(), appID, amount, now)
		if err != nil {
			return err
		}
		return st.CreatePayment(txCtx, payment)
	})
	if err != nil {
		return nil, storeError(err, "application")
	}
	return payment, nil
}

// ConfirmPayment settles a payment reported by the gateway callback and
// approves its application in one transaction: certificate issuance, parent
// supersession and the payment_confirmed and certificate_issued actions all
// commit together. A payment previously marked failed can still be confirmed.
func (s *Service) ConfirmPayment(ctx context.Context, paymentID domain.PaymentID, gatewayRef string) (*models.Application, error) {
	return s.settle(ctx, domain.PaymentGatewayActor(), paymentID, gatewayRef, func(domain.Actor, *models.Application) error {
		return nil
	})
}

// ConfirmPaymentAsOfficer is the district officer's manual settlement, used
// when the gateway callback never arrives. The officer is recorded on the
// timeline.
func (s *Service) ConfirmPaymentAsOfficer(ctx context.Context, actor domain.Actor, paymentID domain.PaymentID, gatewayRef string) (*models.Application, error) {
	if actor.Role != domain.RoleDistrictOfficer {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the district tourism officer may confirm payments").
			WithField("role", actor.Role, domain.RoleDistrictOfficer)
	}
	return s.settle(ctx, actor, paymentID, gatewayRef, canAct)
}

func (s *Service) settle(
	ctx context.Context,
	actor domain.Actor,
	paymentID domain.PaymentID,
	gatewayRef string,
	authorize func(domain.Actor, *models.Application) error,
) (app *models.Application, err error) {
	ctx, finish := s.begin(ctx, "confirm_payment",
		attribute.String("payment_id", paymentID.String()),
		attribute.String("role", string(actor.Role)),
	)
	defer func() { finish(err) }()

	p := s.Policy()
	now := requestcontext.Now(ctx)
	var events []notify.Event

	err = retryOnCertificateClash(func() error {
		return s.tx.RunInTx(ctx, func(txCtx context.Context, st Store) error {
			payment, err := st.FindPaymentForUpdate(txCtx, paymentID)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return dErrors.New(dErrors.CodeNotFound, "payment not found")
				}
				return err
			}
			if err := payment.CanConfirm(); err != nil {
				return err
			}
			current, err := st.FindApplicationForUpdate(txCtx, payment.ApplicationID)
			if err != nil {
				return err
			}
			if err := authorize(actor, current); err != nil {
				return err
			}
			decision, err := workflow.CheckSettlement(current)
			if err != nil {
				return err
			}

			payment.ApplySuccess(gatewayRef, now)
			if err := st.UpdatePayment(txCtx, payment); err != nil {
				return err
			}
			events, err = s.approve(txCtx, st, current, decision, actor, "payment reference "+payment.GatewayReference, p, now)
			if err != nil {
				return err
			}
			app = current
			return nil
		})
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementPaymentSettled("error")
		}
		return nil, storeError(err, "application")
	}

	if s.metrics != nil {
		s.metrics.IncrementPaymentSettled(string(models.PaymentSuccess))
	}
	s.recordTransition(ctx, app, actor, models.StatusPaymentPending)
	s.publish(ctx, events)
	return app, nil
}

// FailPayment records a declined settlement. The application stays in
// payment_pending so the owner can try again.
func (s *Service) FailPayment(ctx context.Context, paymentID domain.PaymentID, gatewayRef string) (payment *models.Payment, err error) {
	ctx, finish := s.begin(ctx, "fail_payment", attribute.String("payment_id", paymentID.String()))
	defer func() { finish(err) }()

	now := requestcontext.Now(ctx)
	var event notify.Event

	err = s.tx.RunInTx(ctx, func(txCtx context.Context, st Store) error {
		found, err := st.FindPaymentForUpdate(txCtx, paymentID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "payment not found")
			}
			return err
		}
		if err := found.CanFail(); err != nil {
			return err
		}
		app, err := st.FindApplication(txCtx, found.ApplicationID)
		if err != nil {
			return err
		}
		found.ApplyFailure(gatewayRef)
		if err := st.UpdatePayment(txCtx, found); err != nil {
			return err
		}
		payment = found
		event = notify.Event{
			Type:              notify.EventPaymentFailed,
			ApplicationID:     app.ID,
			ApplicationNumber: app.ApplicationNumber,
			OwnerID:           app.UserID,
			NewStatus:         string(app.Status),
			Feedback:          "payment reference " + found.GatewayReference,
			OccurredAt:        now,
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "payment")
	}

	if s.metrics != nil {
		s.metrics.IncrementPaymentSettled(string(models.PaymentFailed))
	}
	s.logAudit(ctx, "payment_failed",
		"payment_id", paymentID.String(),
		"application_id", payment.ApplicationID.String(),
	)
	s.publish(ctx, []notify.Event{event})
	return payment, nil
}
