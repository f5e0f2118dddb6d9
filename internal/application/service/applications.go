package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"homestay/internal/application/eligibility"
	"homestay/internal/application/models"
	"homestay/internal/policy"
	"homestay/pkg/domain"
	dErrors "homestay/pkg/domain-errors"
	"homestay/pkg/platform/sentinel"
	"homestay/pkg/requestcontext"
)

// CreateApplication opens a new_registration draft for the owner and assigns
// its application number.
func (s *Service) CreateApplication(ctx context.Context, actor domain.Actor, details models.ApplicationDetails) (app *models.Application, err error) {
	ctx, finish := s.begin(ctx, "create_application")
	defer func() { finish(err) }()

	if actor.Role != domain.RoleOwner {
		return nil, dErrors.New(dErrors.CodeForbidden, "only property owners may register a homestay")
	}
	p := s.Policy()
	now := requestcontext.Now(ctx)

	app, err = models.NewApplication(domain.NewApplicationID(), actor.ID, models.KindNewRegistration,
		details.District, details.PropertyName, details.Category, details.Rooms(), details.CertificateValidityYears, now)
	if err != nil {
		return nil, err
	}
	if err := validateDetails(app, p); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context, st Store) error {
		number, err := s.numberer.ApplicationNumber(txCtx, p, app.Kind, app.District, now)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate application number")
		}
		app.ApplicationNumber = number
		if err := st.CreateApplication(txCtx, app); err != nil {
			return err
		}
		return s.appendAction(txCtx, st, models.NewAction(app.ID, actor.ID, models.ActionCreated, "", models.StatusDraft, "", now))
	})
	if err != nil {
		return nil, storeError(err, "application")
	}

	s.logAudit(ctx, "application_created",
		"user_id", actor.ID.String(),
		"application_id", app.ID.String(),
		"application_number", app.ApplicationNumber,
	)
	return app, nil
}

// UpdateDraft replaces the editable details of a draft or an application
// returned for correction.
func (s *Service) UpdateDraft(ctx context.Context, actor domain.Actor, id domain.ApplicationID, details models.ApplicationDetails) (app *models.Application, err error) {
	ctx, finish := s.begin(ctx, "update_draft", attribute.String("application_id", id.String()))
	defer func() { finish(err) }()

	p := s.Policy()
	now := requestcontext.Now(ctx)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context, st Store) error {
		current, err := st.FindApplicationForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if err := requireOwner(actor, current); err != nil {
			return err
		}
		if !current.IsEditable() {
			return dErrors.New(dErrors.CodeConflict, "application can no longer be edited").
				WithField("status", current.Status, models.StatusDraft)
		}
		if current.IsServiceRequest() {
			return dErrors.New(dErrors.CodeConflict, "service requests are edited by opening a new request").
				WithField("applicationKind", current.Kind, models.KindNewRegistration)
		}

		candidate, err := models.NewApplication(current.ID, current.UserID, current.Kind,
			details.District, details.PropertyName, details.Category, details.Rooms(), details.CertificateValidityYears, now)
		if err != nil {
			return err
		}
		if err := validateDetails(candidate, p); err != nil {
			return err
		}

		current.ApplyDetails(details, now)
		if err := st.UpdateApplication(txCtx, current, current.Status); err != nil {
			return err
		}
		app = current
		return nil
	})
	if err != nil {
		return nil, storeError(err, "application")
	}
	return app, nil
}

// GetApplication returns one application visible to actor.
func (s *Service) GetApplication(ctx context.Context, actor domain.Actor, id domain.ApplicationID) (*models.Application, error) {
	var app *models.Application
	err := s.tx.RunInTx(ctx, func(txCtx context.Context, st Store) error {
		found, err := st.FindApplication(txCtx, id)
		if err != nil {
			return err
		}
		if err := canRead(actor, found); err != nil {
			return err
		}
		app = found
		return nil
	})
	if err != nil {
		return nil, storeError(err, "application")
	}
	return app, nil
}

// ListForOwner returns the owner's applications, newest first.
func (s *Service) ListForOwner(ctx context.Context, actor domain.Actor) ([]*models.Application, error) {
	if actor.Role != domain.RoleOwner {
		return nil, dErrors.New(dErrors.CodeForbidden, "only property owners have applications")
	}
	var apps []*models.Application
	err := s.tx.RunInTx(ctx, func(txCtx context.Context, st Store) error {
		var err error
		apps, err = st.ListApplicationsByOwner(txCtx, actor.ID)
		return err
	})
	if err != nil {
		return nil, storeError(err, "applications")
	}
	return apps, nil
}

// ListForDistrict is the officer work queue. Officers always see their own
// district; admins must name one. An empty status filter lists everything.
func (s *Service) ListForDistrict(ctx context.Context, actor domain.Actor, district string, statuses []models.Status) ([]*models.Application, error) {
	switch {
	case actor.Role.IsOfficer():
		if district != "" && district != actor.District {
			return nil, dErrors.New(dErrors.CodeForbidden, "officers may only list their own district").
				WithField("district", actor.District, district)
		}
		district = actor.District
	case actor.Role.IsAdmin():
		if district == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "district is required").
				WithField("district", nil, district)
		}
	default:
		return nil, dErrors.New(dErrors.CodeForbidden, "only officers and admins may list a district queue")
	}
	for _, st := range statuses {
		if !st.IsValid() {
			return nil, dErrors.New(dErrors.CodeBadRequest, "unknown status filter").
				WithField("status", nil, st)
		}
	}

	var apps []*models.Application
	err := s.tx.RunInTx(ctx, func(txCtx context.Context, st Store) error {
		var err error
		apps, err = st.ListApplicationsByDistrict(txCtx, district, statuses)
		return err
	})
	if err != nil {
		return nil, storeError(err, "applications")
	}
	return apps, nil
}

// ListActions returns the application's timeline in order.
func (s *Service) ListActions(ctx context.Context, actor domain.Actor, id domain.ApplicationID) ([]*models.ApplicationAction, error) {
	var actions []*models.ApplicationAction
	err := s.tx.RunInTx(ctx, func(txCtx context.Context, st Store) error {
		app, err := st.FindApplication(txCtx, id)
		if err != nil {
			return err
		}
		if err := canRead(actor, app); err != nil {
			return err
		}
		actions, err = st.ListActions(txCtx, id)
		return err
	})
	if err != nil {
		return nil, storeError(err, "application")
	}
	return actions, nil
}

// DiscardDraft hard-deletes a draft together with its documents.
func (s *Service) DiscardDraft(ctx context.Context, actor domain.Actor, id domain.ApplicationID) (err error) {
	ctx, finish := s.begin(ctx, "discard_draft", attribute.String("application_id", id.String()))
	defer func() { finish(err) }()

	err = s.tx.RunInTx(ctx, func(txCtx context.Context, st Store) error {
		app, err := st.FindApplicationForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if err := requireOwner(actor, app); err != nil {
			return err
		}
		if err := app.CanDiscard(); err != nil {
			return err
		}
		return st.DeleteApplication(txCtx, id)
	})
	if err != nil {
		return storeError(err, "application")
	}
	s.logAudit(ctx, "application_discarded",
		"user_id", actor.ID.String(),
		"application_id", id.String(),
	)
	return nil
}

// ServiceCenter evaluates which amendments the owner may request now.
func (s *Service) ServiceCenter(ctx context.Context, actor domain.Actor, id domain.ApplicationID) (*eligibility.Summary, error) {
	p := s.Policy()
	now := requestcontext.Now(ctx)

	var summary eligibility.Summary
	err := s.tx.RunInTx(ctx, func(txCtx context.Context, st Store) error {
		app, err := st.FindApplication(txCtx, id)
		if err != nil {
			return err
		}
		if err := canRead(actor, app); err != nil {
			return err
		}
		active, err := st.FindOpenByParent(txCtx, id)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		summary = eligibility.Evaluate(app, active, p, now)
		return nil
	})
	if err != nil {
		return nil, storeError(err, "application")
	}
	return &summary, nil
}

// validateDetails applies the policy-dependent checks NewApplication cannot.
func validateDetails(app *models.Application, p *policy.Policy) error {
	if err := app.CheckCapacity(p.MaxRoomsAllowed); err != nil {
		return err
	}
	if !p.ValidValidity(app.CertificateValidityYears) {
		return dErrors.New(dErrors.CodeValidation, "certificate validity is not an offered tier").
			WithField("certificateValidityYears", p.ValidityTiers, app.CertificateValidityYears)
	}
	return nil
}
