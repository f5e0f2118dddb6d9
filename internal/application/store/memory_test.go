package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/application/models"
	"homestay/pkg/domain"
	"homestay/pkg/platform/sentinel"
)

var fixedNow = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

func newApp(t *testing.T, owner domain.UserID, kind models.Kind, number string) *models.Application {
	t.Helper()
	app, err := models.NewApplication(domain.NewApplicationID(), owner, kind, "Shimla", "Apple Orchard Stay",
		models.CategorySilver, models.Rooms{Single: 2}, 1, fixedNow)
	require.NoError(t, err)
	app.ApplicationNumber = number
	return app
}

func TestInMemoryUpdateRequiresExpectedStatus(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	app := newApp(t, domain.UserID(uuid.New()), models.KindNewRegistration, "HP-NR-2025-SHI-00001")
	require.NoError(t, s.CreateApplication(ctx, app))

	app.ApplyStatus(models.StatusSubmitted, fixedNow)
	require.NoError(t, s.UpdateApplication(ctx, app, models.StatusDraft))

	app.ApplyStatus(models.StatusUnderScrutiny, fixedNow)
	err := s.UpdateApplication(ctx, app, models.StatusDraft)
	assert.True(t, errors.Is(err, sentinel.ErrConflict), "stale expected status")

	missing := newApp(t, app.UserID, models.KindNewRegistration, "HP-NR-2025-SHI-00002")
	err = s.UpdateApplication(ctx, missing, models.StatusDraft)
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
}

func TestInMemoryReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	app := newApp(t, domain.UserID(uuid.New()), models.KindNewRegistration, "HP-NR-2025-SHI-00001")
	require.NoError(t, s.CreateApplication(ctx, app))

	got, err := s.FindApplication(ctx, app.ID)
	require.NoError(t, err)
	got.Status = models.StatusApproved

	again, err := s.FindApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, again.Status)
}

func TestInMemoryUniqueness(t *testing.T) {
	ctx := context.Background()
	owner := domain.UserID(uuid.New())

	t.Run("application number", func(t *testing.T) {
		s := NewInMemory()
		require.NoError(t, s.CreateApplication(ctx, newApp(t, owner, models.KindNewRegistration, "HP-NR-2025-SHI-00001")))
		err := s.CreateApplication(ctx, newApp(t, owner, models.KindNewRegistration, "HP-NR-2025-SHI-00001"))
		assert.True(t, errors.Is(err, sentinel.ErrAlreadyUsed))
	})

	t.Run("one open request per parent", func(t *testing.T) {
		s := NewInMemory()
		parent := newApp(t, owner, models.KindNewRegistration, "P-1")
		require.NoError(t, s.CreateApplication(ctx, parent))

		first := newApp(t, owner, models.KindAddRooms, "C-1")
		first.ParentID = &parent.ID
		require.NoError(t, s.CreateApplication(ctx, first))

		second := newApp(t, owner, models.KindDeleteRooms, "C-2")
		second.ParentID = &parent.ID
		err := s.CreateApplication(ctx, second)
		assert.True(t, errors.Is(err, sentinel.ErrAlreadyUsed))

		open, err := s.FindOpenByParent(ctx, parent.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, open.ID)

		first.ApplyStatus(models.StatusRejected, fixedNow)
		require.NoError(t, s.UpdateApplication(ctx, first, models.StatusDraft))
		require.NoError(t, s.CreateApplication(ctx, second), "closed requests free the parent")
	})

	t.Run("one legacy draft per user", func(t *testing.T) {
		s := NewInMemory()
		require.NoError(t, s.CreateApplication(ctx, newApp(t, owner, models.KindExistingRCOnboarding, "")))
		err := s.CreateApplication(ctx, newApp(t, owner, models.KindExistingRCOnboarding, ""))
		assert.True(t, errors.Is(err, sentinel.ErrAlreadyUsed))
	})

	t.Run("rc numbers share the certificate namespace", func(t *testing.T) {
		s := NewInMemory()
		approved := newApp(t, owner, models.KindNewRegistration, "P-9")
		approved.ApplyCertificate("HP-HST-2025-00042", fixedNow)
		require.NoError(t, s.CreateApplication(ctx, approved))

		inUse, err := s.RCNumberInUse(ctx, "HP-HST-2025-00042", domain.NewApplicationID())
		require.NoError(t, err)
		assert.True(t, inUse)

		inUse, err = s.CertificateNumberInUse(ctx, "HP-HST-2025-00043")
		require.NoError(t, err)
		assert.False(t, inUse)
	})
}

func TestInMemorySnapshotRestore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	app := newApp(t, domain.UserID(uuid.New()), models.KindNewRegistration, "HP-NR-2025-SHI-00001")
	require.NoError(t, s.CreateApplication(ctx, app))

	restore := s.Snapshot()
	app.ApplyStatus(models.StatusSubmitted, fixedNow)
	require.NoError(t, s.UpdateApplication(ctx, app, models.StatusDraft))
	require.NoError(t, s.AppendAction(ctx, models.NewAction(app.ID, app.UserID, models.ActionSubmitted,
		models.StatusDraft, models.StatusSubmitted, "", fixedNow)))
	restore()

	got, err := s.FindApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, got.Status)
	actions, err := s.ListActions(ctx, app.ID)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestInMemoryDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	app := newApp(t, domain.UserID(uuid.New()), models.KindNewRegistration, "HP-NR-2025-SHI-00001")
	require.NoError(t, s.CreateApplication(ctx, app))
	doc, err := models.NewDocument(domain.NewDocumentID(), app.ID, models.DocumentFireNOC, "noc.pdf", "k/noc.pdf", fixedNow)
	require.NoError(t, err)
	require.NoError(t, s.CreateDocument(ctx, doc))

	require.NoError(t, s.DeleteApplication(ctx, app.ID))

	_, err = s.FindDocument(ctx, doc.ID)
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	assert.True(t, errors.Is(s.DeleteApplication(ctx, app.ID), sentinel.ErrNotFound))
}
