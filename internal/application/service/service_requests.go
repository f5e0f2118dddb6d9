package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"homestay/internal/application/eligibility"
	"homestay/internal/application/models"
	"homestay/internal/policy"
	"homestay/pkg/domain"
	dErrors "homestay/pkg/domain-errors"
	"homestay/pkg/platform/sentinel"
	"homestay/pkg/requestcontext"
)

// CreateServiceRequest opens a draft amendment against an approved parent.
// The parent row is locked first so a concurrent creator waits and then sees
// the winner's open request; the one-open-request index backs this up.
func (s *Service) CreateServiceRequest(ctx context.Context, actor domain.Actor, parentID domain.ApplicationID, in models.ServiceRequestInput) (app *models.Application, err error) {
	ctx, finish := s.begin(ctx, "create_service_request",
		attribute.String("parent_id", parentID.String()),
		attribute.String("kind", string(in.Kind)),
	)
	defer func() { finish(err) }()

	if !in.Kind.IsServiceRequest() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "kind is not a service request").
			WithField("applicationKind", nil, in.Kind)
	}
	p := s.Policy()
	now := requestcontext.Now(ctx)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context, st Store) error {
		parent, err := st.FindApplicationForUpdate(txCtx, parentID)
		if err != nil {
			return err
		}
		if err := requireOwner(actor, parent); err != nil {
			return err
		}
		if parent.Status != models.StatusApproved {
			return dErrors.New(dErrors.CodeConflict, "parent application must be approved").
				WithField("parentStatus", parent.Status, models.StatusApproved)
		}
		if parent.Kind == models.KindCancelCertificate {
			return dErrors.New(dErrors.CodeConflict, "certificate has been cancelled").
				WithField("applicationKind", parent.Kind, in.Kind)
		}

		open, err := st.FindOpenByParent(txCtx, parentID)
		switch {
		case err == nil:
			return dErrors.New(dErrors.CodeConflict, "an active service request already exists: "+open.ApplicationNumber).
				WithField("activeServiceRequest", open.ApplicationNumber, in.Kind)
		case !errors.Is(err, sentinel.ErrNotFound):
			return err
		}

		child, err := buildServiceRequest(parent, in, p, now)
		if err != nil {
			return err
		}
		number, err := s.numberer.ApplicationNumber(txCtx, p, child.Kind, child.District, now)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate application number")
		}
		child.ApplicationNumber = number

		if err := st.CreateApplication(txCtx, child); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.Wrap(err, dErrors.CodeConflict, "an active service request already exists")
			}
			return err
		}
		if err := s.appendAction(txCtx, st, models.NewAction(child.ID, actor.ID, models.ActionCreated, "", models.StatusDraft,
			"service request against "+parent.ApplicationNumber, now)); err != nil {
			return err
		}
		app = child
		return nil
	})
	if err != nil {
		return nil, storeError(err, "parent application")
	}

	if s.metrics != nil {
		s.metrics.IncrementServiceRequest(string(app.Kind))
	}
	s.logAudit(ctx, "service_request_created",
		"user_id", actor.ID.String(),
		"application_id", app.ID.String(),
		"parent_id", parentID.String(),
		"kind", string(app.Kind),
	)
	return app, nil
}

// buildServiceRequest copies the parent's property attributes and attaches
// the kind's typed context after checking eligibility.
func buildServiceRequest(parent *models.Application, in models.ServiceRequestInput, p *policy.Policy, now time.Time) (*models.Application, error) {
	summary := eligibility.Evaluate(parent, nil, p, now)

	rooms := parent.Rooms()
	category := parent.Category
	validity := parent.CertificateValidityYears
	var sc models.ServiceContext

	switch in.Kind {
	case models.KindAddRooms, models.KindDeleteRooms:
		target, err := eligibility.CheckRoomDelta(rooms, in.Delta, in.Kind, p)
		if err != nil {
			return nil, err
		}
		sc = &models.RoomDeltaContext{
			Kind:    in.Kind,
			Delta:   in.Delta,
			Before:  rooms,
			Target:  target,
			Payable: in.Kind == models.KindAddRooms,
		}
		rooms = target

	case models.KindChangeCategory:
		if !in.Category.IsValid() {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown category").
				WithField("category", parent.Category, in.Category)
		}
		if in.Category == parent.Category {
			return nil, dErrors.New(dErrors.CodeValidation, "category is unchanged").
				WithField("category", parent.Category, in.Category)
		}
		sc = &models.CategoryChangeContext{From: parent.Category, To: in.Category, Payable: true}
		category = in.Category

	case models.KindCancelCertificate:
		if in.Reason == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "a cancellation reason is required").
				WithField("reason", nil, in.Reason)
		}
		sc = &models.CancellationContext{Reason: in.Reason, CertificateNumber: parent.CertificateNumber}

	case models.KindRenewal:
		if !summary.CanRenew {
			return nil, dErrors.New(dErrors.CodeConflict, "renewal window is not open").
				WithField("certificateExpiryDate", parent.CertificateExpiryDate, now)
		}
		validity = in.ValidityYears
		if validity == 0 {
			validity = parent.CertificateValidityYears
		}
		if !p.ValidValidity(validity) {
			return nil, dErrors.New(dErrors.CodeValidation, "certificate validity is not an offered tier").
				WithField("certificateValidityYears", p.ValidityTiers, validity)
		}
		sc = &models.RenewalContext{
			PreviousCertificateNumber: parent.CertificateNumber,
			PreviousExpiry:            parent.CertificateExpiryDate,
			ValidityYears:             validity,
		}
	}

	child, err := models.NewApplication(domain.NewApplicationID(), parent.UserID, in.Kind,
		parent.District, parent.PropertyName, category, rooms, validity, now)
	if err != nil {
		return nil, err
	}
	parentID := parent.ID
	child.ParentID = &parentID
	child.ParentApplicationNumber = parent.ApplicationNumber
	child.ServiceContext = sc
	if err := child.CheckCapacity(p.MaxRoomsAllowed); err != nil {
		return nil, err
	}
	return child, nil
}
