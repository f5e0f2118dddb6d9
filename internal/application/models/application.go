package models

import (
	"time"

	"homestay/pkg/domain"
	dErrors "homestay/pkg/domain-errors"
)

// Rooms is the per-category capacity breakdown. The total is always derived.
type Rooms struct {
	Single       int `json:"singleBedRooms"`
	Double       int `json:"doubleBedRooms"`
	FamilySuites int `json:"familySuites"`
}

func (r Rooms) Total() int {
	return r.Single + r.Double + r.FamilySuites
}

func (r Rooms) Add(d Rooms) Rooms {
	return Rooms{Single: r.Single + d.Single, Double: r.Double + d.Double, FamilySuites: r.FamilySuites + d.FamilySuites}
}

func (r Rooms) Sub(d Rooms) Rooms {
	return Rooms{Single: r.Single - d.Single, Double: r.Double - d.Double, FamilySuites: r.FamilySuites - d.FamilySuites}
}

func (r Rooms) HasNegative() bool {
	return r.Single < 0 || r.Double < 0 || r.FamilySuites < 0
}

// Application is the aggregate root of the workflow.
//
// Invariants:
//   - TotalRooms == SingleBedRooms + DoubleBedRooms + FamilySuites
//   - 1 <= TotalRooms <= the configured room cap
//   - Status == approved iff CertificateNumber != "" (for kinds that issue)
//   - ParentID is set iff Kind is a service-request kind
//   - CertificateNumber is assigned once and never changes
type Application struct {
	ID                       domain.ApplicationID  `json:"id"`
	ApplicationNumber        string                `json:"applicationNumber,omitempty"`
	UserID                   domain.UserID         `json:"userId"`
	Kind                     Kind                  `json:"applicationKind"`
	ParentID                 *domain.ApplicationID `json:"parentApplicationId,omitempty"`
	ParentApplicationNumber  string                `json:"parentApplicationNumber,omitempty"`
	Status                   Status                `json:"status"`
	District                 string                `json:"district"`
	PropertyName             string                `json:"propertyName"`
	Category                 Category              `json:"category"`
	TotalRooms               int                   `json:"totalRooms"`
	SingleBedRooms           int                   `json:"singleBedRooms"`
	DoubleBedRooms           int                   `json:"doubleBedRooms"`
	FamilySuites             int                   `json:"familySuites"`
	CertificateValidityYears int                   `json:"certificateValidityYears"`
	CertificateNumber        string                `json:"certificateNumber,omitempty"`
	CertificateIssuedDate    *time.Time            `json:"certificateIssuedDate,omitempty"`
	CertificateExpiryDate    *time.Time            `json:"certificateExpiryDate,omitempty"`
	ServiceContext           ServiceContext        `json:"-"`
	RCNumber                 string                `json:"rcNumber,omitempty"`
	RCIssueDate              *time.Time            `json:"rcIssueDate,omitempty"`
	RCExpiryDate             *time.Time            `json:"rcExpiryDate,omitempty"`
	CreatedAt                time.Time             `json:"createdAt"`
	UpdatedAt                time.Time             `json:"updatedAt"`
	SubmittedAt              *time.Time            `json:"submittedAt,omitempty"`
}

// NewApplication builds a draft origin or service-request application.
// Capacity against the policy cap is checked separately by CheckCapacity.
func NewApplication(
	appID domain.ApplicationID,
	userID domain.UserID,
	kind Kind,
	district string,
	propertyName string,
	category Category,
	rooms Rooms,
	validityYears int,
	now time.Time,
) (*Application, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "application owner is required")
	}
	if !kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown application kind").
			WithField("applicationKind", nil, kind)
	}
	if district == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "district is required").
			WithField("district", nil, district)
	}
	if propertyName == "" || len(propertyName) > 200 {
		return nil, dErrors.New(dErrors.CodeValidation, "propertyName must be 1-200 characters").
			WithField("propertyName", nil, propertyName)
	}
	if !category.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown category").
			WithField("category", nil, category)
	}
	app := &Application{
		ID:                       appID,
		UserID:                   userID,
		Kind:                     kind,
		Status:                   StatusDraft,
		District:                 district,
		PropertyName:             propertyName,
		Category:                 category,
		CertificateValidityYears: validityYears,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	app.SetRooms(rooms)
	return app, nil
}

// Rooms returns the capacity breakdown.
func (a *Application) Rooms() Rooms {
	return Rooms{Single: a.SingleBedRooms, Double: a.DoubleBedRooms, FamilySuites: a.FamilySuites}
}

// SetRooms overwrites the breakdown and recomputes the total.
func (a *Application) SetRooms(r Rooms) {
	a.SingleBedRooms = r.Single
	a.DoubleBedRooms = r.Double
	a.FamilySuites = r.FamilySuites
	a.TotalRooms = r.Total()
}

// Stage is the derived dashboard label.
func (a *Application) Stage() string {
	return a.Status.Stage()
}

func (a *Application) IsServiceRequest() bool {
	return a.ParentID != nil
}

// RequiresPayment reports whether verification leads to payment_pending.
// Origin applications always pay; service requests follow their context.
func (a *Application) RequiresPayment() bool {
	switch {
	case a.Kind.IsLegacy():
		return false
	case a.ServiceContext != nil:
		return a.ServiceContext.RequiresPayment()
	default:
		return true
	}
}

// CheckCapacity enforces the room-count invariants against the cap.
func (a *Application) CheckCapacity(maxRooms int) error {
	r := a.Rooms()
	if r.HasNegative() {
		return dErrors.New(dErrors.CodeValidation, "room counts must not be negative").
			WithField("rooms", nil, r)
	}
	if a.TotalRooms != r.Total() {
		return dErrors.New(dErrors.CodeValidation, "totalRooms must equal the sum of room categories").
			WithField("totalRooms", r.Total(), a.TotalRooms)
	}
	if a.TotalRooms < 1 {
		return dErrors.New(dErrors.CodeValidation, "at least one room is required").
			WithField("totalRooms", nil, a.TotalRooms)
	}
	if a.TotalRooms > maxRooms {
		return dErrors.New(dErrors.CodeValidation, "total rooms exceeds maximum").
			WithField("totalRooms", maxRooms, a.TotalRooms)
	}
	return nil
}

// IsEditable reports whether the owner may still change details and documents.
func (a *Application) IsEditable() bool {
	return a.Status == StatusDraft || a.Status == StatusCorrectionRequired
}

// CanDiscard checks that the application is a draft that may be hard-deleted.
func (a *Application) CanDiscard() error {
	if a.Status != StatusDraft {
		return dErrors.New(dErrors.CodeConflict, "only drafts can be discarded").
			WithField("status", a.Status, StatusDraft)
	}
	return nil
}

// ApplyStatus moves the application to status. Callers validate the move
// with the workflow machine first.
func (a *Application) ApplyStatus(to Status, now time.Time) {
	if to == StatusSubmitted || to == StatusLegacyRCReview {
		submitted := now
		a.SubmittedAt = &submitted
	}
	a.Status = to
	a.UpdatedAt = now
}

// ApplyCertificate approves the application and stamps certificate fields
// together so neither can exist without the other.
func (a *Application) ApplyCertificate(number string, issued time.Time) {
	expiry := issued.AddDate(a.CertificateValidityYears, 0, 0)
	a.CertificateNumber = number
	a.CertificateIssuedDate = &issued
	a.CertificateExpiryDate = &expiry
	a.Status = StatusApproved
	a.UpdatedAt = issued
}

// ApplyLegacyCertificate approves a legacy onboarding using the attested RC.
func (a *Application) ApplyLegacyCertificate(now time.Time) {
	issued := *a.RCIssueDate
	expiry := *a.RCExpiryDate
	a.CertificateNumber = a.RCNumber
	a.CertificateIssuedDate = &issued
	a.CertificateExpiryDate = &expiry
	a.Status = StatusApproved
	a.UpdatedAt = now
}

// CanSupersede checks the parent side of a completed service request.
func (a *Application) CanSupersede() error {
	if a.Status != StatusApproved {
		return dErrors.New(dErrors.CodeConflict, "parent application is no longer approved").
			WithField("parentStatus", a.Status, StatusApproved)
	}
	return nil
}

// ApplySupersession closes out a parent whose service request completed.
// Room and category changes carried by the request are written first.
func (a *Application) ApplySupersession(child *Application, now time.Time) {
	switch child.Kind {
	case KindAddRooms, KindDeleteRooms:
		a.SetRooms(child.Rooms())
	case KindChangeCategory:
		a.Category = child.Category
	}
	a.Status = StatusSuperseded
	a.UpdatedAt = now
}
