package models

import "time"

// ApplicationDetails is the owner-editable part of an origin application.
type ApplicationDetails struct {
	PropertyName             string   `json:"propertyName"`
	District                 string   `json:"district"`
	Category                 Category `json:"category"`
	SingleBedRooms           int      `json:"singleBedRooms"`
	DoubleBedRooms           int      `json:"doubleBedRooms"`
	FamilySuites             int      `json:"familySuites"`
	CertificateValidityYears int      `json:"certificateValidityYears"`
}

func (d ApplicationDetails) Rooms() Rooms {
	return Rooms{Single: d.SingleBedRooms, Double: d.DoubleBedRooms, FamilySuites: d.FamilySuites}
}

// ServiceRequestInput describes an amendment to an approved application.
// Only the fields relevant to Kind are read.
type ServiceRequestInput struct {
	Kind          Kind     `json:"applicationKind"`
	Delta         Rooms    `json:"delta"`
	Category      Category `json:"category,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	ValidityYears int      `json:"certificateValidityYears,omitempty"`
}

// LegacyDraft is the owner's attestation of an existing registration
// certificate. Dates may be missing until submission.
type LegacyDraft struct {
	ApplicationDetails
	RCNumber     string
	RCIssueDate  *time.Time
	RCExpiryDate *time.Time
	GuardianName string
	Notes        string
}

// ApplyDetails overwrites the editable fields of a draft.
func (a *Application) ApplyDetails(d ApplicationDetails, now time.Time) {
	a.PropertyName = d.PropertyName
	a.District = d.District
	a.Category = d.Category
	a.CertificateValidityYears = d.CertificateValidityYears
	a.SetRooms(d.Rooms())
	a.UpdatedAt = now
}
