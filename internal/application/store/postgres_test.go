package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/application/models"
	"homestay/pkg/domain"
	"homestay/pkg/platform/sentinel"
)

var applicationColumnNames = []string{
	"id", "application_number", "user_id", "application_kind", "parent_application_id",
	"parent_application_number", "status", "district", "property_name", "category",
	"total_rooms", "single_bed_rooms", "double_bed_rooms", "family_suites",
	"certificate_validity_years", "certificate_number", "certificate_issued_date",
	"certificate_expiry_date", "service_context", "rc_number", "rc_issue_date",
	"rc_expiry_date", "created_at", "updated_at", "submitted_at",
}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgres(db), mock
}

func applicationRow(app *models.Application) *sqlmock.Rows {
	return sqlmock.NewRows(applicationColumnNames).AddRow(
		uuid.UUID(app.ID).String(), app.ApplicationNumber, uuid.UUID(app.UserID).String(), string(app.Kind), nil,
		nil, string(app.Status), app.District, app.PropertyName, string(app.Category),
		app.TotalRooms, app.SingleBedRooms, app.DoubleBedRooms, app.FamilySuites,
		app.CertificateValidityYears, nil, nil,
		nil, nil, nil, nil,
		nil, app.CreatedAt, app.UpdatedAt, nil,
	)
}

func TestPostgresFindApplication(t *testing.T) {
	ctx := context.Background()
	app := newApp(t, domain.UserID(uuid.New()), models.KindNewRegistration, "HP-NR-2025-SHI-00001")

	t.Run("scans row", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT .* FROM applications WHERE id = \$1`).
			WithArgs(uuid.UUID(app.ID)).
			WillReturnRows(applicationRow(app))

		got, err := s.FindApplication(ctx, app.ID)
		require.NoError(t, err)
		assert.Equal(t, app.ID, got.ID)
		assert.Equal(t, app.ApplicationNumber, got.ApplicationNumber)
		assert.Equal(t, models.StatusDraft, got.Status)
		assert.Equal(t, 2, got.TotalRooms)
		assert.Nil(t, got.ParentID)
		assert.Nil(t, got.ServiceContext)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT .* FROM applications WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(applicationColumnNames))

		_, err := s.FindApplication(ctx, app.ID)
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUpdateApplication(t *testing.T) {
	ctx := context.Background()
	app := newApp(t, domain.UserID(uuid.New()), models.KindNewRegistration, "HP-NR-2025-SHI-00001")

	t.Run("guards on expected status", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE applications SET .* AND status = \$26`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.UpdateApplication(ctx, app, models.StatusDraft))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status moved underneath is a conflict", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE applications SET`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT .* FROM applications WHERE id = \$1`).WillReturnRows(applicationRow(app))

		err := s.UpdateApplication(ctx, app, models.StatusSubmitted)
		assert.True(t, errors.Is(err, sentinel.ErrConflict))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("vanished row is not found", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE applications SET`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT .* FROM applications WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(applicationColumnNames))

		err := s.UpdateApplication(ctx, app, models.StatusDraft)
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresCreateApplicationUniqueViolation(t *testing.T) {
	s, mock := newMockStore(t)
	app := newApp(t, domain.UserID(uuid.New()), models.KindNewRegistration, "HP-NR-2025-SHI-00001")
	mock.ExpectExec(`INSERT INTO applications`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "applications_application_number_key"})

	err := s.CreateApplication(context.Background(), app)
	assert.True(t, errors.Is(err, sentinel.ErrAlreadyUsed))
	assert.Contains(t, err.Error(), "applications_application_number_key")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAppendActionWritesOutbox(t *testing.T) {
	s, mock := newMockStore(t)
	action := models.NewAction(domain.NewApplicationID(), domain.UserID(uuid.New()), models.ActionSubmitted,
		models.StatusDraft, models.StatusSubmitted, "", fixedNow)

	mock.ExpectExec(`INSERT INTO application_actions`).
		WithArgs(uuid.UUID(action.ID), uuid.UUID(action.ApplicationID), uuid.UUID(action.ActorID),
			action.Action, action.PreviousStatus, action.NewStatus, "", fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO outbox .* VALUES \(\$1, 'application', \$2, \$3, \$4, \$5\)`).
		WithArgs(sqlmock.AnyArg(), action.ApplicationID.String(), action.Action, sqlmock.AnyArg(), fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.AppendAction(context.Background(), action))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAppendActionStopsOnTimelineFailure(t *testing.T) {
	s, mock := newMockStore(t)
	action := models.NewAction(domain.NewApplicationID(), domain.UserID(uuid.New()), models.ActionApproved,
		models.StatusPaymentPending, models.StatusApproved, "", fixedNow)
	mock.ExpectExec(`INSERT INTO application_actions`).WillReturnError(errors.New("connection reset"))

	err := s.AppendAction(context.Background(), action)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet(), "outbox insert must not run")
}

func TestPostgresRCNumberInUse(t *testing.T) {
	s, mock := newMockStore(t)
	exclude := domain.NewApplicationID()
	mock.ExpectQuery(`SELECT EXISTS .*rc_number = \$1 OR certificate_number = \$1\) AND id <> \$2`).
		WithArgs("RC/2019/77", uuid.UUID(exclude)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	inUse, err := s.RCNumberInUse(context.Background(), "RC/2019/77", exclude)
	require.NoError(t, err)
	assert.True(t, inUse)
	require.NoError(t, mock.ExpectationsWereMet())
}
