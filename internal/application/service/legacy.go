package service

import (
	"context"
	"errors"
	"time"

	"homestay/internal/application/models"
	"homestay/internal/policy"
	"homestay/pkg/domain"
	dErrors "homestay/pkg/domain-errors"
	"homestay/pkg/platform/sentinel"
	"homestay/pkg/requestcontext"
)

// SaveLegacyDraft creates the owner's legacy onboarding draft or overwrites
// the existing one in place. A draft may coexist with an onboarding under
// review; only submission is limited to one active request.
func (s *Service) SaveLegacyDraft(ctx context.Context, actor domain.Actor, draft models.LegacyDraft) (app *models.Application, err error) {
	ctx, finish := s.begin(ctx, "save_legacy_draft")
	defer func() { finish(err) }()

	if actor.Role != domain.RoleOwner {
		return nil, dErrors.New(dErrors.CodeForbidden, "only property owners may onboard a certificate")
	}
	p := s.Policy()
	now := requestcontext.Now(ctx)
	details := draft.ApplicationDetails
	details.CertificateValidityYears = legacyValidityYears(draft.RCIssueDate, draft.RCExpiryDate)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context, st Store) error {
		existing, err := st.FindLegacyDraft(txCtx, actor.ID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}

		candidate, err := models.NewApplication(domain.NewApplicationID(), actor.ID, models.KindExistingRCOnboarding,
			details.District, details.PropertyName, details.Category, details.Rooms(), details.CertificateValidityYears, now)
		if err != nil {
			return err
		}
		if err := candidate.CheckCapacity(p.MaxRoomsAllowed); err != nil {
			return err
		}

		exclude := candidate.ID
		if existing != nil {
			exclude = existing.ID
		}
		if draft.RCNumber != "" {
			inUse, err := st.RCNumberInUse(txCtx, draft.RCNumber, exclude)
			if err != nil {
				return err
			}
			if inUse {
				return dErrors.New(dErrors.CodeConflict, "rc number is already registered").
					WithField("rcNumber", nil, draft.RCNumber)
			}
		}

		if existing != nil {
			existing.ApplyDetails(details, now)
			applyLegacyFields(existing, draft)
			if err := st.UpdateApplication(txCtx, existing, models.StatusDraft); err != nil {
				return err
			}
			app = existing
			return nil
		}

		applyLegacyFields(candidate, draft)
		if err := st.CreateApplication(txCtx, candidate); err != nil {
			return err
		}
		app = candidate
		return s.appendAction(txCtx, st, models.NewAction(candidate.ID, actor.ID, models.ActionCreated, "", models.StatusDraft, "", now))
	})
	if err != nil {
		return nil, storeError(err, "legacy draft")
	}
	return app, nil
}

// SubmitLegacy sends the owner's draft for administrative review.
func (s *Service) SubmitLegacy(ctx context.Context, actor domain.Actor, id domain.ApplicationID) (*models.Application, error) {
	return s.Transition(ctx, actor, id, models.StatusLegacyRCReview, "")
}

// ReviewLegacy approves or rejects an onboarding under review. Approval makes
// the RC number the certificate number with the RC dates.
func (s *Service) ReviewLegacy(ctx context.Context, actor domain.Actor, id domain.ApplicationID, approve bool, feedback string) (*models.Application, error) {
	to := models.StatusRejected
	if approve {
		to = models.StatusApproved
	}
	return s.Transition(ctx, actor, id, to, feedback)
}

// prepareLegacySubmission validates the attested certificate and assigns the
// legacy application number. It runs inside the submitting transaction.
func (s *Service) prepareLegacySubmission(ctx context.Context, st Store, app *models.Application, p *policy.Policy, now time.Time) error {
	if app.RCNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "rc number is required").
			WithField("rcNumber", nil, app.RCNumber)
	}
	if app.RCIssueDate == nil || app.RCExpiryDate == nil {
		return dErrors.New(dErrors.CodeValidation, "rc issue and expiry dates are required").
			WithField("rcIssueDate", nil, app.RCIssueDate)
	}
	if app.RCIssueDate.Before(p.LegacyIssueCutoff) {
		return dErrors.New(dErrors.CodeValidation, "rc issue date is before the onboarding cutoff "+p.LegacyIssueCutoff.Format(time.DateOnly)).
			WithField("rcIssueDate", p.LegacyIssueCutoff.Format(time.DateOnly), app.RCIssueDate.Format(time.DateOnly))
	}
	if !app.RCExpiryDate.After(*app.RCIssueDate) {
		return dErrors.New(dErrors.CodeValidation, "rc expiry date must be after the issue date").
			WithField("rcExpiryDate", app.RCIssueDate.Format(time.DateOnly), app.RCExpiryDate.Format(time.DateOnly))
	}
	if err := app.CheckCapacity(p.MaxRoomsAllowed); err != nil {
		return err
	}

	inUse, err := st.RCNumberInUse(ctx, app.RCNumber, app.ID)
	if err != nil {
		return err
	}
	if inUse {
		return dErrors.New(dErrors.CodeConflict, "rc number is already registered").
			WithField("rcNumber", nil, app.RCNumber)
	}
	if other, err := st.FindLegacyInReview(ctx, app.UserID); err == nil {
		return dErrors.New(dErrors.CodeConflict, "a legacy onboarding is already under review").
			WithField("applicationNumber", other.ApplicationNumber, nil)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}

	if app.ApplicationNumber == "" {
		number, err := s.numberer.LegacyNumber(ctx, p, app.District, now)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate legacy application number")
		}
		app.ApplicationNumber = number
	}
	return nil
}

func applyLegacyFields(app *models.Application, draft models.LegacyDraft) {
	app.RCNumber = draft.RCNumber
	app.RCIssueDate = draft.RCIssueDate
	app.RCExpiryDate = draft.RCExpiryDate
	app.ServiceContext = &models.LegacyContext{GuardianName: draft.GuardianName, Notes: draft.Notes}
}

// legacyValidityYears rounds the attested validity down to whole years.
func legacyValidityYears(issued, expiry *time.Time) int {
	if issued == nil || expiry == nil || !expiry.After(*issued) {
		return 0
	}
	years := 0
	for !issued.AddDate(years+1, 0, 0).After(*expiry) {
		years++
	}
	return years
}
