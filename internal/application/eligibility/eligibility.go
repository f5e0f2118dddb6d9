// Package eligibility derives the service-center summary for an approved
// application. Everything here is pure and recomputed on every read because
// renewal-window membership depends on the clock.
package eligibility

import (
	"time"

	"homestay/internal/application/models"
	"homestay/internal/policy"
	"homestay/pkg/domain"
	dErrors "homestay/pkg/domain-errors"
)

// ActiveRequest identifies the open service request blocking new actions.
type ActiveRequest struct {
	ID                domain.ApplicationID `json:"id"`
	ApplicationNumber string               `json:"applicationNumber,omitempty"`
	Kind              models.Kind          `json:"applicationKind"`
	Status            models.Status        `json:"status"`
}

// Summary is the derived, read-only view behind the owner's service center.
type Summary struct {
	ApplicationID        domain.ApplicationID `json:"applicationId"`
	CanRenew             bool                 `json:"canRenew"`
	CanAddRooms          bool                 `json:"canAddRooms"`
	CanDeleteRooms       bool                 `json:"canDeleteRooms"`
	CanChangeCategory    bool                 `json:"canChangeCategory"`
	CanCancel            bool                 `json:"canCancel"`
	RenewalWindowOpensAt *time.Time           `json:"renewalWindowOpensAt,omitempty"`
	DaysUntilExpiry      *int                 `json:"daysUntilExpiry,omitempty"`
	MaxRoomsAllowed      int                  `json:"maxRoomsAllowed"`
	ActiveServiceRequest *ActiveRequest       `json:"activeServiceRequest,omitempty"`
	CanDiscardDraft      bool                 `json:"canDiscardDraft"`
}

// Evaluate computes the summary for app. active is the open service request
// on app, if any.
func Evaluate(app *models.Application, active *models.Application, p *policy.Policy, now time.Time) Summary {
	s := Summary{
		ApplicationID:   app.ID,
		MaxRoomsAllowed: p.MaxRoomsAllowed,
	}

	if exp := app.CertificateExpiryDate; exp != nil {
		opens := exp.Add(-p.RenewalWindow)
		days := int(exp.Sub(now).Hours() / 24)
		s.RenewalWindowOpensAt = &opens
		s.DaysUntilExpiry = &days
	}

	if active != nil {
		s.ActiveServiceRequest = &ActiveRequest{
			ID:                active.ID,
			ApplicationNumber: active.ApplicationNumber,
			Kind:              active.Kind,
			Status:            active.Status,
		}
		s.CanDiscardDraft = active.Status == models.StatusDraft
		return s
	}

	if app.Status != models.StatusApproved || app.Kind == models.KindCancelCertificate {
		return s
	}

	s.CanRenew = InRenewalWindow(app.CertificateExpiryDate, p.RenewalWindow, now)
	s.CanAddRooms = app.TotalRooms < p.MaxRoomsAllowed
	s.CanDeleteRooms = app.TotalRooms > p.MinRoomsAfterDelete
	s.CanChangeCategory = true
	s.CanCancel = true
	return s
}

// InRenewalWindow reports whether now lies in [expiry-window, expiry].
func InRenewalWindow(expiry *time.Time, window time.Duration, now time.Time) bool {
	if expiry == nil {
		return false
	}
	opens := expiry.Add(-window)
	return !now.Before(opens) && !now.After(*expiry)
}

// CheckRoomDelta validates a room-delta request against the current counts
// and returns the target counts.
func CheckRoomDelta(current, delta models.Rooms, kind models.Kind, p *policy.Policy) (models.Rooms, error) {
	if !kind.ChangesRooms() {
		return models.Rooms{}, dErrors.New(dErrors.CodeBadRequest, "room delta only applies to add_rooms and delete_rooms").
			WithField("applicationKind", nil, kind)
	}
	if delta.HasNegative() {
		return models.Rooms{}, dErrors.New(dErrors.CodeValidation, "room delta must not be negative").
			WithField("delta", nil, delta)
	}
	if delta.Total() == 0 {
		return models.Rooms{}, dErrors.New(dErrors.CodeValidation, "room delta must change at least one room").
			WithField("delta", nil, delta)
	}

	if kind == models.KindAddRooms {
		target := current.Add(delta)
		if target.Total() > p.MaxRoomsAllowed {
			return models.Rooms{}, dErrors.New(dErrors.CodeValidation, "total rooms exceeds maximum").
				WithField("totalRooms", p.MaxRoomsAllowed, target.Total())
		}
		return target, nil
	}

	if err := checkRemovable("singleBedRooms", current.Single, delta.Single); err != nil {
		return models.Rooms{}, err
	}
	if err := checkRemovable("doubleBedRooms", current.Double, delta.Double); err != nil {
		return models.Rooms{}, err
	}
	if err := checkRemovable("familySuites", current.FamilySuites, delta.FamilySuites); err != nil {
		return models.Rooms{}, err
	}
	target := current.Sub(delta)
	if target.Total() < p.MinRoomsAfterDelete {
		return models.Rooms{}, dErrors.New(dErrors.CodeValidation, "total rooms below minimum").
			WithField("totalRooms", p.MinRoomsAfterDelete, target.Total())
	}
	return target, nil
}

func checkRemovable(field string, have, remove int) error {
	if remove > have {
		return dErrors.New(dErrors.CodeValidation, "cannot remove more rooms than exist").
			WithField(field, have, remove)
	}
	return nil
}
