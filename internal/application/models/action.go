package models

import (
	"time"

	"homestay/pkg/domain"
)

// ActionName labels a timeline entry.
type ActionName string

const (
	ActionCreated            ActionName = "created"
	ActionSubmitted          ActionName = "submitted"
	ActionResubmitted        ActionName = "resubmitted"
	ActionScrutinyStarted    ActionName = "scrutiny_started"
	ActionForwarded          ActionName = "forwarded_to_dtdo"
	ActionReviewStarted      ActionName = "dtdo_review_started"
	ActionInspectionSchedule ActionName = "inspection_scheduled"
	ActionInspectionReview   ActionName = "inspection_under_review"
	ActionVerified           ActionName = "verified_for_payment"
	ActionPaymentRequested   ActionName = "payment_requested"
	ActionCorrectionRequest  ActionName = "correction_requested"
	ActionRejected           ActionName = "rejected"
	ActionApproved           ActionName = "approved"
	ActionPaymentConfirmed   ActionName = "payment_confirmed"
	ActionCertificateIssued  ActionName = "certificate_issued"
	ActionSuperseded         ActionName = "superseded"
	ActionLegacySubmitted    ActionName = "legacy_submitted"
	ActionLegacyApproved     ActionName = "legacy_approved"
	ActionLegacyRejected     ActionName = "legacy_rejected"
	ActionDocumentReplaced   ActionName = "document_replaced"
)

// ApplicationAction is an append-only timeline row. PreviousStatus and
// NewStatus are equal for non-transition entries such as certificate_issued.
type ApplicationAction struct {
	ID             domain.ActionID      `json:"id"`
	ApplicationID  domain.ApplicationID `json:"applicationId"`
	ActorID        domain.UserID        `json:"actorId"`
	Action         ActionName           `json:"action"`
	PreviousStatus Status               `json:"previousStatus"`
	NewStatus      Status               `json:"newStatus"`
	Feedback       string               `json:"feedback,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
}

func NewAction(appID domain.ApplicationID, actor domain.UserID, action ActionName, from, to Status, feedback string, now time.Time) *ApplicationAction {
	return &ApplicationAction{
		ID:             domain.NewActionID(),
		ApplicationID:  appID,
		ActorID:        actor,
		Action:         action,
		PreviousStatus: from,
		NewStatus:      to,
		Feedback:       feedback,
		CreatedAt:      now,
	}
}

// IsTransition reports whether the row records a status change.
func (a *ApplicationAction) IsTransition() bool {
	return a.PreviousStatus != a.NewStatus
}
