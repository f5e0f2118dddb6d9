package models

// Status is the single source of truth for where an application sits in the
// workflow. The dashboard stage label is derived from it, never stored.
type Status string

const (
	StatusDraft                 Status = "draft"
	StatusSubmitted             Status = "submitted"
	StatusUnderScrutiny         Status = "under_scrutiny"
	StatusForwardedToDTDO       Status = "forwarded_to_dtdo"
	StatusDTDOReview            Status = "dtdo_review"
	StatusInspectionScheduled   Status = "inspection_scheduled"
	StatusInspectionUnderReview Status = "inspection_under_review"
	StatusVerifiedForPayment    Status = "verified_for_payment"
	StatusPaymentPending        Status = "payment_pending"
	StatusApproved              Status = "approved"
	StatusRejected              Status = "rejected"
	StatusCorrectionRequired    Status = "correction_required"
	StatusSuperseded            Status = "superseded"
	StatusLegacyRCReview        Status = "legacy_rc_review"
)

var allStatuses = []Status{
	StatusDraft, StatusSubmitted, StatusUnderScrutiny, StatusForwardedToDTDO,
	StatusDTDOReview, StatusInspectionScheduled, StatusInspectionUnderReview,
	StatusVerifiedForPayment, StatusPaymentPending, StatusApproved,
	StatusRejected, StatusCorrectionRequired, StatusSuperseded, StatusLegacyRCReview,
}

// AllStatuses returns the closed status vocabulary.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func (s Status) IsValid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports states no transition ever leaves.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusSuperseded
}

// IsOpen reports whether an application in this state still blocks a new
// request on the same lineage. Drafts count; approved and terminal rows don't.
func (s Status) IsOpen() bool {
	return !s.IsTerminal() && s != StatusApproved
}

// ClosedStatuses lists the statuses excluded from the one-open-request rule.
func ClosedStatuses() []Status {
	return []Status{StatusApproved, StatusRejected, StatusSuperseded}
}

// Stage is the dashboard grouping shown to users.
func (s Status) Stage() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusSubmitted, StatusCorrectionRequired:
		return "with_applicant"
	case StatusUnderScrutiny:
		return "scrutiny"
	case StatusForwardedToDTDO, StatusDTDOReview:
		return "district_review"
	case StatusInspectionScheduled, StatusInspectionUnderReview:
		return "inspection"
	case StatusVerifiedForPayment, StatusPaymentPending:
		return "payment"
	case StatusApproved:
		return "approved"
	case StatusLegacyRCReview:
		return "rc_verification"
	case StatusRejected, StatusSuperseded:
		return "closed"
	}
	return "unknown"
}
