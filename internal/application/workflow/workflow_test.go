package workflow

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/application/models"
	"homestay/internal/policy"
	"homestay/pkg/domain"
	dErrors "homestay/pkg/domain-errors"
)

var (
	ownerActor     = domain.Actor{ID: domain.UserID(uuid.New()), Role: domain.RoleOwner}
	assistantActor = domain.Actor{ID: domain.UserID(uuid.New()), Role: domain.RoleDealingAssistant, District: "Shimla"}
	officerActor   = domain.Actor{ID: domain.UserID(uuid.New()), Role: domain.RoleDistrictOfficer, District: "Shimla"}
	adminActor     = domain.Actor{ID: domain.UserID(uuid.New()), Role: domain.RoleAdmin}
)

func appIn(status models.Status, kind models.Kind) *models.Application {
	return &models.Application{ID: domain.NewApplicationID(), Kind: kind, Status: status, District: "Shimla"}
}

func TestHappyPathThroughPayment(t *testing.T) {
	p := policy.Default()
	app := appIn(models.StatusDraft, models.KindNewRegistration)

	steps := []struct {
		actor  domain.Actor
		to     models.Status
		action models.ActionName
	}{
		{ownerActor, models.StatusSubmitted, models.ActionSubmitted},
		{assistantActor, models.StatusUnderScrutiny, models.ActionScrutinyStarted},
		{assistantActor, models.StatusForwardedToDTDO, models.ActionForwarded},
		{officerActor, models.StatusDTDOReview, models.ActionReviewStarted},
		{officerActor, models.StatusInspectionScheduled, models.ActionInspectionSchedule},
		{officerActor, models.StatusInspectionUnderReview, models.ActionInspectionReview},
		{officerActor, models.StatusVerifiedForPayment, models.ActionVerified},
		{officerActor, models.StatusPaymentPending, models.ActionPaymentRequested},
	}
	for _, step := range steps {
		d, err := Check(app, step.to, step.actor, p)
		require.NoError(t, err, "%s -> %s", app.Status, step.to)
		assert.Equal(t, step.action, d.Action)
		assert.Equal(t, app.Status, d.From)
		assert.False(t, d.Approves)
		app.Status = step.to
	}

	_, err := Check(app, models.StatusApproved, officerActor, p)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden), "officers cannot approve a payment_pending application")

	d, err := CheckSettlement(app)
	require.NoError(t, err)
	assert.True(t, d.Approves)
	assert.Equal(t, models.ActionPaymentConfirmed, d.Action)
}

func TestIllegalTransitionReportsCurrentAndAttempted(t *testing.T) {
	app := appIn(models.StatusSubmitted, models.KindNewRegistration)
	_, err := Check(app, models.StatusDTDOReview, officerActor, policy.Default())
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, dErrors.CodeConflict, de.Code)
	assert.Equal(t, models.StatusSubmitted, de.Current)
	assert.Equal(t, models.StatusDTDOReview, de.Attempted)
}

func TestRoleMismatchIsForbidden(t *testing.T) {
	p := policy.Default()
	tests := []struct {
		name  string
		from  models.Status
		to    models.Status
		actor domain.Actor
	}{
		{"owner starts scrutiny", models.StatusSubmitted, models.StatusUnderScrutiny, ownerActor},
		{"officer submits", models.StatusDraft, models.StatusSubmitted, officerActor},
		{"assistant schedules inspection", models.StatusDTDOReview, models.StatusInspectionScheduled, assistantActor},
		{"officer forwards own queue", models.StatusUnderScrutiny, models.StatusForwardedToDTDO, officerActor},
		{"admin starts scrutiny", models.StatusSubmitted, models.StatusUnderScrutiny, adminActor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Check(appIn(tt.from, models.KindNewRegistration), tt.to, tt.actor, p)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
		})
	}
}

func TestCorrectionEntryFollowsPolicy(t *testing.T) {
	p := policy.Default()

	_, err := Check(appIn(models.StatusUnderScrutiny, models.KindNewRegistration), models.StatusCorrectionRequired, assistantActor, p)
	assert.NoError(t, err)
	_, err = Check(appIn(models.StatusDTDOReview, models.KindNewRegistration), models.StatusCorrectionRequired, officerActor, p)
	assert.NoError(t, err)
	_, err = Check(appIn(models.StatusInspectionUnderReview, models.KindNewRegistration), models.StatusCorrectionRequired, officerActor, p)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	p.CorrectionEntry[models.KindNewRegistration] = []models.Status{models.StatusInspectionUnderReview}
	_, err = Check(appIn(models.StatusInspectionUnderReview, models.KindNewRegistration), models.StatusCorrectionRequired, officerActor, p)
	assert.NoError(t, err)
	_, err = Check(appIn(models.StatusUnderScrutiny, models.KindNewRegistration), models.StatusCorrectionRequired, assistantActor, p)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestResubmissionLoop(t *testing.T) {
	d, err := Check(appIn(models.StatusCorrectionRequired, models.KindNewRegistration), models.StatusSubmitted, ownerActor, policy.Default())
	require.NoError(t, err)
	assert.Equal(t, models.ActionResubmitted, d.Action)
}

func TestInspectionSkip(t *testing.T) {
	p := policy.Default()
	app := appIn(models.StatusDTDOReview, models.KindRenewal)

	_, err := Check(app, models.StatusVerifiedForPayment, officerActor, p)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict), "optional but not disabled")

	h := policy.NewHolder(p)
	require.NoError(t, h.SetInspectionDisabled(models.KindRenewal, true))

	_, err = Check(app, models.StatusVerifiedForPayment, officerActor, h.Get())
	assert.NoError(t, err)
	_, err = Check(app, models.StatusInspectionScheduled, officerActor, h.Get())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = Check(appIn(models.StatusDTDOReview, models.KindNewRegistration), models.StatusVerifiedForPayment, officerActor, h.Get())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict), "mandatory inspection cannot be skipped")
}

func TestNoPaymentApproval(t *testing.T) {
	p := policy.Default()
	cancel := appIn(models.StatusVerifiedForPayment, models.KindCancelCertificate)
	cancel.ServiceContext = &models.CancellationContext{Reason: "closing"}

	d, err := Check(cancel, models.StatusApproved, officerActor, p)
	require.NoError(t, err)
	assert.True(t, d.Approves)
	assert.Equal(t, models.ActionApproved, d.Action)

	_, err = Check(cancel, models.StatusPaymentPending, officerActor, p)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	paying := appIn(models.StatusVerifiedForPayment, models.KindNewRegistration)
	_, err = Check(paying, models.StatusApproved, officerActor, p)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestLegacyTrack(t *testing.T) {
	p := policy.Default()
	legacy := appIn(models.StatusDraft, models.KindExistingRCOnboarding)

	_, err := Check(legacy, models.StatusSubmitted, ownerActor, p)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict), "legacy drafts do not enter the primary track")

	d, err := Check(legacy, models.StatusLegacyRCReview, ownerActor, p)
	require.NoError(t, err)
	assert.Equal(t, models.ActionLegacySubmitted, d.Action)

	legacy.Status = models.StatusLegacyRCReview
	d, err = Check(legacy, models.StatusApproved, adminActor, p)
	require.NoError(t, err)
	assert.True(t, d.Approves)

	_, err = Check(legacy, models.StatusApproved, officerActor, p)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = Check(appIn(models.StatusDraft, models.KindNewRegistration), models.StatusLegacyRCReview, ownerActor, p)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	p := policy.Default()
	for _, from := range []models.Status{models.StatusRejected, models.StatusSuperseded, models.StatusApproved} {
		for _, actor := range []domain.Actor{ownerActor, assistantActor, officerActor, adminActor} {
			assert.Empty(t, Available(appIn(from, models.KindNewRegistration), actor, p), "%s by %s", from, actor.Role)
		}
	}
}

func TestEdgesOnlyMoveForward(t *testing.T) {
	order := map[models.Status]int{}
	for i, s := range []models.Status{
		models.StatusDraft, models.StatusSubmitted, models.StatusUnderScrutiny, models.StatusForwardedToDTDO,
		models.StatusDTDOReview, models.StatusInspectionScheduled, models.StatusInspectionUnderReview,
		models.StatusVerifiedForPayment, models.StatusPaymentPending, models.StatusApproved,
	} {
		order[s] = i
	}
	for _, e := range edges {
		from, fromOK := order[e.from]
		to, toOK := order[e.to]
		if !fromOK || !toOK {
			continue
		}
		assert.Greater(t, to, from, "%s -> %s moves backward", e.from, e.to)
	}
}

func TestUnknownTargetIsBadRequest(t *testing.T) {
	_, err := Check(appIn(models.StatusDraft, models.KindNewRegistration), models.Status("teleported"), ownerActor, policy.Default())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestAvailableForOfficer(t *testing.T) {
	got := Available(appIn(models.StatusDTDOReview, models.KindNewRegistration), officerActor, policy.Default())
	assert.ElementsMatch(t, []models.Status{
		models.StatusInspectionScheduled,
		models.StatusCorrectionRequired,
		models.StatusRejected,
	}, got)
}
