package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"homestay/internal/application/models"
	"homestay/internal/platform/postgres"
	"homestay/pkg/domain"
	"homestay/pkg/platform/sentinel"
	txcontext "homestay/pkg/platform/tx"
)

// PostgresStore persists the application aggregate. It is pure I/O: status
// rules live in the workflow. Every call joins the transaction carried by
// ctx when there is one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) exec(ctx context.Context) txcontext.Executor {
	return txcontext.ExecutorFrom(ctx, s.db)
}

const applicationColumns = `
	id, application_number, user_id, application_kind, parent_application_id,
	parent_application_number, status, district, property_name, category,
	total_rooms, single_bed_rooms, double_bed_rooms, family_suites,
	certificate_validity_years, certificate_number, certificate_issued_date,
	certificate_expiry_date, service_context, rc_number, rc_issue_date,
	rc_expiry_date, created_at, updated_at, submitted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app               models.Application
		id, userID        uuid.UUID
		parentID          uuid.NullUUID
		number, parentNum sql.NullString
		certNumber, rcNum sql.NullString
		issued, expiry    sql.NullTime
		rcIssue, rcExpiry sql.NullTime
		submitted         sql.NullTime
		serviceContext    []byte
	)
	err := row.Scan(
		&id, &number, &userID, &app.Kind, &parentID,
		&parentNum, &app.Status, &app.District, &app.PropertyName, &app.Category,
		&app.TotalRooms, &app.SingleBedRooms, &app.DoubleBedRooms, &app.FamilySuites,
		&app.CertificateValidityYears, &certNumber, &issued,
		&expiry, &serviceContext, &rcNum, &rcIssue,
		&rcExpiry, &app.CreatedAt, &app.UpdatedAt, &submitted,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}

	app.ID = domain.ApplicationID(id)
	app.UserID = domain.UserID(userID)
	app.ApplicationNumber = number.String
	app.ParentApplicationNumber = parentNum.String
	app.CertificateNumber = certNumber.String
	app.RCNumber = rcNum.String
	if parentID.Valid {
		pid := domain.ApplicationID(parentID.UUID)
		app.ParentID = &pid
	}
	app.CertificateIssuedDate = timePtr(issued)
	app.CertificateExpiryDate = timePtr(expiry)
	app.RCIssueDate = timePtr(rcIssue)
	app.RCExpiryDate = timePtr(rcExpiry)
	app.SubmittedAt = timePtr(submitted)

	sc, err := models.DecodeServiceContext(serviceContext)
	if err != nil {
		return nil, fmt.Errorf("application %s: %w", app.ID, err)
	}
	app.ServiceContext = sc
	return &app, nil
}

func applicationArgs(app *models.Application) ([]any, error) {
	sc, err := models.EncodeServiceContext(app.ServiceContext)
	if err != nil {
		return nil, err
	}
	var parentID uuid.NullUUID
	if app.ParentID != nil {
		parentID = uuid.NullUUID{UUID: uuid.UUID(*app.ParentID), Valid: true}
	}
	return []any{
		uuid.UUID(app.ID), nullString(app.ApplicationNumber), uuid.UUID(app.UserID), app.Kind, parentID,
		nullString(app.ParentApplicationNumber), app.Status, app.District, app.PropertyName, app.Category,
		app.TotalRooms, app.SingleBedRooms, app.DoubleBedRooms, app.FamilySuites,
		app.CertificateValidityYears, nullString(app.CertificateNumber), app.CertificateIssuedDate,
		app.CertificateExpiryDate, sc, nullString(app.RCNumber), app.RCIssueDate,
		app.RCExpiryDate, app.CreatedAt, app.UpdatedAt, app.SubmittedAt,
	}, nil
}

func (s *PostgresStore) CreateApplication(ctx context.Context, app *models.Application) error {
	args, err := applicationArgs(app)
	if err != nil {
		return err
	}
	query := `INSERT INTO applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`
	if _, err := s.exec(ctx).ExecContext(ctx, query, args...); err != nil {
		return mapWriteError("create application", err)
	}
	return nil
}

func (s *PostgresStore) FindApplication(ctx context.Context, id domain.ApplicationID) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return scanApplication(s.exec(ctx).QueryRowContext(ctx, query, uuid.UUID(id)))
}

func (s *PostgresStore) FindApplicationForUpdate(ctx context.Context, id domain.ApplicationID) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1 FOR UPDATE`
	return scanApplication(s.exec(ctx).QueryRowContext(ctx, query, uuid.UUID(id)))
}

func (s *PostgresStore) UpdateApplication(ctx context.Context, app *models.Application, expected models.Status) error {
	args, err := applicationArgs(app)
	if err != nil {
		return err
	}
	query := `
		UPDATE applications SET
			application_number = $2, application_kind = $4, parent_application_id = $5,
			parent_application_number = $6, status = $7, district = $8, property_name = $9,
			category = $10, total_rooms = $11, single_bed_rooms = $12, double_bed_rooms = $13,
			family_suites = $14, certificate_validity_years = $15, certificate_number = $16,
			certificate_issued_date = $17, certificate_expiry_date = $18, service_context = $19,
			rc_number = $20, rc_issue_date = $21, rc_expiry_date = $22, updated_at = $24,
			submitted_at = $25
		WHERE id = $1 AND user_id = $3 AND created_at = $23 AND status = $26`
	res, err := s.exec(ctx).ExecContext(ctx, query, append(args, expected)...)
	if err != nil {
		return mapWriteError("update application", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application rows affected: %w", err)
	}
	if n == 0 {
		if _, findErr := s.FindApplication(ctx, app.ID); errors.Is(findErr, sentinel.ErrNotFound) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("application %s no longer %s: %w", app.ID, expected, sentinel.ErrConflict)
	}
	return nil
}

func (s *PostgresStore) DeleteApplication(ctx context.Context, id domain.ApplicationID) error {
	res, err := s.exec(ctx).ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete application rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListApplicationsByOwner(ctx context.Context, userID domain.UserID) ([]*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = $1 ORDER BY created_at DESC`
	return s.queryApplications(ctx, query, uuid.UUID(userID))
}

func (s *PostgresStore) ListApplicationsByDistrict(ctx context.Context, district string, statuses []models.Status) ([]*models.Application, error) {
	if len(statuses) == 0 {
		query := `SELECT ` + applicationColumns + ` FROM applications WHERE district = $1 ORDER BY created_at DESC`
		return s.queryApplications(ctx, query, district)
	}
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	query := `SELECT ` + applicationColumns + ` FROM applications
		WHERE district = $1 AND status = ANY($2) ORDER BY created_at DESC`
	return s.queryApplications(ctx, query, district, pq.Array(names))
}

func (s *PostgresStore) FindOpenByParent(ctx context.Context, parentID domain.ApplicationID) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
		WHERE parent_application_id = $1 AND NOT (status = ANY($2))
		ORDER BY created_at DESC LIMIT 1`
	return scanApplication(s.exec(ctx).QueryRowContext(ctx, query, uuid.UUID(parentID), pq.Array(closedStatusNames())))
}

func (s *PostgresStore) FindLegacyInReview(ctx context.Context, userID domain.UserID) (*models.Application, error) {
	return s.findLegacy(ctx, userID, models.StatusLegacyRCReview)
}

func (s *PostgresStore) FindLegacyDraft(ctx context.Context, userID domain.UserID) (*models.Application, error) {
	return s.findLegacy(ctx, userID, models.StatusDraft)
}

func (s *PostgresStore) findLegacy(ctx context.Context, userID domain.UserID, status models.Status) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
		WHERE user_id = $1 AND application_kind = $2 AND status = $3`
	return scanApplication(s.exec(ctx).QueryRowContext(ctx, query, uuid.UUID(userID), models.KindExistingRCOnboarding, status))
}

func (s *PostgresStore) RCNumberInUse(ctx context.Context, number string, exclude domain.ApplicationID) (bool, error) {
	var inUse bool
	err := s.exec(ctx).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM applications
			WHERE (rc_number = $1 OR certificate_number = $1) AND id <> $2
		)`, number, uuid.UUID(exclude)).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("check rc number: %w", err)
	}
	return inUse, nil
}

func (s *PostgresStore) CertificateNumberInUse(ctx context.Context, number string) (bool, error) {
	var inUse bool
	err := s.exec(ctx).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM applications WHERE certificate_number = $1 OR rc_number = $1
		)`, number).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("check certificate number: %w", err)
	}
	return inUse, nil
}

// AppendAction writes the timeline row and its outbox entry together.
func (s *PostgresStore) AppendAction(ctx context.Context, action *models.ApplicationAction) error {
	_, err := s.exec(ctx).ExecContext(ctx, `
		INSERT INTO application_actions
			(id, application_id, actor_id, action, previous_status, new_status, feedback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(action.ID), uuid.UUID(action.ApplicationID), uuid.UUID(action.ActorID),
		action.Action, action.PreviousStatus, action.NewStatus, action.Feedback, action.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application action: %w", err)
	}

	payload, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}
	_, err = s.exec(ctx).ExecContext(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, 'application', $2, $3, $4, $5)`,
		uuid.New(), action.ApplicationID.String(), action.Action, payload, action.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListActions(ctx context.Context, appID domain.ApplicationID) ([]*models.ApplicationAction, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, `
		SELECT id, application_id, actor_id, action, previous_status, new_status, feedback, created_at
		FROM application_actions WHERE application_id = $1 ORDER BY created_at, id`, uuid.UUID(appID))
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var out []*models.ApplicationAction
	for rows.Next() {
		var (
			a                   models.ApplicationAction
			id, appUUID, author uuid.UUID
		)
		if err := rows.Scan(&id, &appUUID, &author, &a.Action, &a.PreviousStatus, &a.NewStatus, &a.Feedback, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a.ID = domain.ActionID(id)
		a.ApplicationID = domain.ApplicationID(appUUID)
		a.ActorID = domain.UserID(author)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateDocument(ctx context.Context, doc *models.Document) error {
	_, err := s.exec(ctx).ExecContext(ctx, `
		INSERT INTO documents (id, application_id, document_type, file_name, storage_key, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(doc.ID), uuid.UUID(doc.ApplicationID), doc.DocumentType, doc.FileName, doc.StorageKey, doc.UploadedAt,
	)
	if err != nil {
		return mapWriteError("create document", err)
	}
	return nil
}

const documentColumns = `id, application_id, document_type, file_name, storage_key, uploaded_at`

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		d         models.Document
		id, appID uuid.UUID
	)
	if err := row.Scan(&id, &appID, &d.DocumentType, &d.FileName, &d.StorageKey, &d.UploadedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	d.ID = domain.DocumentID(id)
	d.ApplicationID = domain.ApplicationID(appID)
	return &d, nil
}

func (s *PostgresStore) FindDocument(ctx context.Context, id domain.DocumentID) (*models.Document, error) {
	return scanDocument(s.exec(ctx).QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, uuid.UUID(id)))
}

func (s *PostgresStore) DeleteDocument(ctx context.Context, id domain.DocumentID) error {
	res, err := s.exec(ctx).ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, appID domain.ApplicationID) ([]*models.Document, error) {
	rows, err := s.exec(ctx).QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE application_id = $1 ORDER BY uploaded_at`, uuid.UUID(appID))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []*models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	_, err := s.exec(ctx).ExecContext(ctx, `
		INSERT INTO payments (id, application_id, amount, payment_status, gateway_reference, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(p.ID), uuid.UUID(p.ApplicationID), p.Amount, p.PaymentStatus, p.GatewayReference, p.CreatedAt, p.CompletedAt,
	)
	if err != nil {
		return mapWriteError("create payment", err)
	}
	return nil
}

const paymentColumns = `id, application_id, amount, payment_status, gateway_reference, created_at, completed_at`

func scanPayment(row rowScanner) (*models.Payment, error) {
	var (
		p         models.Payment
		id, appID uuid.UUID
		completed sql.NullTime
	)
	if err := row.Scan(&id, &appID, &p.Amount, &p.PaymentStatus, &p.GatewayReference, &p.CreatedAt, &completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	p.ID = domain.PaymentID(id)
	p.ApplicationID = domain.ApplicationID(appID)
	p.CompletedAt = timePtr(completed)
	return &p, nil
}

func (s *PostgresStore) FindPaymentForUpdate(ctx context.Context, id domain.PaymentID) (*models.Payment, error) {
	return scanPayment(s.exec(ctx).QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, uuid.UUID(id)))
}

func (s *PostgresStore) UpdatePayment(ctx context.Context, p *models.Payment) error {
	res, err := s.exec(ctx).ExecContext(ctx, `
		UPDATE payments SET payment_status = $2, gateway_reference = $3, completed_at = $4
		WHERE id = $1`,
		uuid.UUID(p.ID), p.PaymentStatus, p.GatewayReference, p.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListPayments(ctx context.Context, appID domain.ApplicationID) ([]*models.Payment, error) {
	rows, err := s.exec(ctx).QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE application_id = $1 ORDER BY created_at`, uuid.UUID(appID))
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) queryApplications(ctx context.Context, query string, args ...any) ([]*models.Application, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return out, nil
}

func mapWriteError(op string, err error) error {
	if constraint, ok := postgres.UniqueViolation(err); ok {
		return fmt.Errorf("%s: %s: %w", op, constraint, sentinel.ErrAlreadyUsed)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func closedStatusNames() []string {
	closed := models.ClosedStatuses()
	out := make([]string, len(closed))
	for i, st := range closed {
		out[i] = string(st)
	}
	return out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
