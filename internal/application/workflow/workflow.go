// Package workflow is the transition table for applications. It knows which
// role may move an application from one status to another and which guards
// apply; it never touches storage.
package workflow

import (
	"homestay/internal/application/models"
	"homestay/internal/policy"
	"homestay/pkg/domain"
	dErrors "homestay/pkg/domain-errors"
)

type guard func(app *models.Application, p *policy.Policy) error

type edge struct {
	from   models.Status
	to     models.Status
	roles  []domain.Role
	action models.ActionName
	guards []guard
}

// Decision is the outcome of a successful check.
type Decision struct {
	From   models.Status
	To     models.Status
	Action models.ActionName
	// Approves is true when the move lands on approved and the caller must
	// run the approval side effects.
	Approves bool
}

var (
	owner     = []domain.Role{domain.RoleOwner}
	assistant = []domain.Role{domain.RoleDealingAssistant}
	officer   = []domain.Role{domain.RoleDistrictOfficer}
	admins    = []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}
)

var edges = []edge{
	{models.StatusDraft, models.StatusSubmitted, owner, models.ActionSubmitted, []guard{notLegacy}},
	{models.StatusCorrectionRequired, models.StatusSubmitted, owner, models.ActionResubmitted, []guard{notLegacy}},

	{models.StatusSubmitted, models.StatusUnderScrutiny, assistant, models.ActionScrutinyStarted, nil},
	{models.StatusUnderScrutiny, models.StatusForwardedToDTDO, assistant, models.ActionForwarded, nil},
	{models.StatusUnderScrutiny, models.StatusCorrectionRequired, assistant, models.ActionCorrectionRequest, []guard{correctionAllowed(models.StatusUnderScrutiny)}},
	{models.StatusUnderScrutiny, models.StatusRejected, assistant, models.ActionRejected, nil},

	{models.StatusForwardedToDTDO, models.StatusDTDOReview, officer, models.ActionReviewStarted, nil},
	{models.StatusDTDOReview, models.StatusInspectionScheduled, officer, models.ActionInspectionSchedule, []guard{inspectionRequired}},
	{models.StatusDTDOReview, models.StatusVerifiedForPayment, officer, models.ActionVerified, []guard{inspectionSkippable}},
	{models.StatusDTDOReview, models.StatusCorrectionRequired, officer, models.ActionCorrectionRequest, []guard{correctionAllowed(models.StatusDTDOReview)}},
	{models.StatusDTDOReview, models.StatusRejected, officer, models.ActionRejected, nil},

	{models.StatusInspectionScheduled, models.StatusInspectionUnderReview, officer, models.ActionInspectionReview, nil},
	{models.StatusInspectionUnderReview, models.StatusVerifiedForPayment, officer, models.ActionVerified, nil},
	{models.StatusInspectionUnderReview, models.StatusRejected, officer, models.ActionRejected, nil},
	{models.StatusInspectionUnderReview, models.StatusCorrectionRequired, officer, models.ActionCorrectionRequest, []guard{correctionAllowed(models.StatusInspectionUnderReview)}},

	{models.StatusVerifiedForPayment, models.StatusPaymentPending, officer, models.ActionPaymentRequested, []guard{paymentRequired}},
	{models.StatusVerifiedForPayment, models.StatusApproved, officer, models.ActionApproved, []guard{paymentNotRequired}},

	{models.StatusDraft, models.StatusLegacyRCReview, owner, models.ActionLegacySubmitted, []guard{legacyOnly}},
	{models.StatusLegacyRCReview, models.StatusApproved, admins, models.ActionLegacyApproved, []guard{legacyOnly}},
	{models.StatusLegacyRCReview, models.StatusRejected, admins, models.ActionLegacyRejected, []guard{legacyOnly}},
}

// Check validates moving app to status to on behalf of actor. District and
// ownership scoping are the caller's concern.
//
// Errors:
//   - CodeBadRequest when to is not a known status
//   - CodeForbidden for payment_pending -> approved (settlement only) or a role mismatch
//   - CodeConflict when no edge leaves the current status for to, or a guard fails
func Check(app *models.Application, to models.Status, actor domain.Actor, p *policy.Policy) (Decision, error) {
	if !to.IsValid() {
		return Decision{}, dErrors.New(dErrors.CodeBadRequest, "unknown target status").
			WithField("status", app.Status, to)
	}
	if app.Status == models.StatusPaymentPending && to == models.StatusApproved {
		return Decision{}, dErrors.New(dErrors.CodeForbidden, "approval after payment happens only through payment confirmation")
	}

	e, ok := find(app.Status, to)
	if !ok {
		return Decision{}, illegal(app.Status, to)
	}
	if !roleAllowed(e.roles, actor.Role) {
		return Decision{}, dErrors.New(dErrors.CodeForbidden, "role may not perform this transition").
			WithField("role", actor.Role, to)
	}
	for _, g := range e.guards {
		if err := g(app, p); err != nil {
			return Decision{}, err
		}
	}
	return Decision{From: e.from, To: e.to, Action: e.action, Approves: e.to == models.StatusApproved}, nil
}

// CheckSettlement validates the payment_pending -> approved move reserved for
// payment confirmation.
func CheckSettlement(app *models.Application) (Decision, error) {
	if app.Status != models.StatusPaymentPending {
		return Decision{}, illegal(app.Status, models.StatusApproved)
	}
	return Decision{
		From:     models.StatusPaymentPending,
		To:       models.StatusApproved,
		Action:   models.ActionPaymentConfirmed,
		Approves: true,
	}, nil
}

// Available lists the statuses actor could move app to right now.
func Available(app *models.Application, actor domain.Actor, p *policy.Policy) []models.Status {
	var out []models.Status
	for _, e := range edges {
		if e.from != app.Status {
			continue
		}
		if _, err := Check(app, e.to, actor, p); err == nil {
			out = append(out, e.to)
		}
	}
	return out
}

func find(from, to models.Status) (edge, bool) {
	for _, e := range edges {
		if e.from == from && e.to == to {
			return e, true
		}
	}
	return edge{}, false
}

func roleAllowed(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func illegal(from, to models.Status) error {
	return dErrors.New(dErrors.CodeConflict, "transition not allowed from current status").
		WithField("status", from, to)
}

func notLegacy(app *models.Application, _ *policy.Policy) error {
	if app.Kind.IsLegacy() {
		return illegal(app.Status, models.StatusSubmitted)
	}
	return nil
}

func legacyOnly(app *models.Application, _ *policy.Policy) error {
	if !app.Kind.IsLegacy() {
		return dErrors.New(dErrors.CodeConflict, "transition is reserved for legacy onboarding").
			WithField("applicationKind", app.Kind, models.KindExistingRCOnboarding)
	}
	return nil
}

func correctionAllowed(from models.Status) guard {
	return func(app *models.Application, p *policy.Policy) error {
		if !p.CorrectionAllowedFrom(app.Kind, from) {
			return dErrors.New(dErrors.CodeConflict, "corrections cannot be requested at this stage").
				WithField("status", from, models.StatusCorrectionRequired)
		}
		return nil
	}
}

func inspectionSkippable(app *models.Application, p *policy.Policy) error {
	if !p.InspectionSkippable(app.Kind) {
		return dErrors.New(dErrors.CodeConflict, "inspection is required for this application kind").
			WithField("status", app.Status, models.StatusVerifiedForPayment)
	}
	return nil
}

func inspectionRequired(app *models.Application, p *policy.Policy) error {
	if p.InspectionSkippable(app.Kind) {
		return dErrors.New(dErrors.CodeConflict, "inspection is disabled for this application kind").
			WithField("status", app.Status, models.StatusInspectionScheduled)
	}
	return nil
}

func paymentRequired(app *models.Application, _ *policy.Policy) error {
	if !app.RequiresPayment() {
		return dErrors.New(dErrors.CodeConflict, "application does not require payment").
			WithField("status", app.Status, models.StatusPaymentPending)
	}
	return nil
}

func paymentNotRequired(app *models.Application, _ *policy.Policy) error {
	if app.RequiresPayment() {
		return dErrors.New(dErrors.CodeConflict, "application requires payment before approval").
			WithField("status", app.Status, models.StatusApproved)
	}
	return nil
}
