package service

import (
	"context"

	"homestay/internal/application/models"
	"homestay/internal/notify"
	"homestay/pkg/domain"
)

// Store is the record store used inside a transaction. Implementations
// return sentinel errors: ErrNotFound for missing rows, ErrConflict when an
// optimistic status precondition fails, and ErrAlreadyUsed when a unique
// number or a one-open-request index is already taken.
type Store interface {
	CreateApplication(ctx context.Context, app *models.Application) error
	FindApplication(ctx context.Context, id domain.ApplicationID) (*models.Application, error)
	// FindApplicationForUpdate locks the row until the transaction ends.
	FindApplicationForUpdate(ctx context.Context, id domain.ApplicationID) (*models.Application, error)
	// UpdateApplication writes app only while the stored status still equals
	// expected.
	UpdateApplication(ctx context.Context, app *models.Application, expected models.Status) error
	DeleteApplication(ctx context.Context, id domain.ApplicationID) error
	ListApplicationsByOwner(ctx context.Context, userID domain.UserID) ([]*models.Application, error)
	ListApplicationsByDistrict(ctx context.Context, district string, statuses []models.Status) ([]*models.Application, error)

	FindOpenByParent(ctx context.Context, parentID domain.ApplicationID) (*models.Application, error)
	FindLegacyInReview(ctx context.Context, userID domain.UserID) (*models.Application, error)
	FindLegacyDraft(ctx context.Context, userID domain.UserID) (*models.Application, error)
	RCNumberInUse(ctx context.Context, number string, exclude domain.ApplicationID) (bool, error)
	CertificateNumberInUse(ctx context.Context, number string) (bool, error)

	AppendAction(ctx context.Context, action *models.ApplicationAction) error
	ListActions(ctx context.Context, appID domain.ApplicationID) ([]*models.ApplicationAction, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	FindDocument(ctx context.Context, id domain.DocumentID) (*models.Document, error)
	DeleteDocument(ctx context.Context, id domain.DocumentID) error
	ListDocuments(ctx context.Context, appID domain.ApplicationID) ([]*models.Document, error)

	CreatePayment(ctx context.Context, payment *models.Payment) error
	FindPaymentForUpdate(ctx context.Context, id domain.PaymentID) (*models.Payment, error)
	UpdatePayment(ctx context.Context, payment *models.Payment) error
	ListPayments(ctx context.Context, appID domain.ApplicationID) ([]*models.Payment, error)
}

// StoreTx runs fn inside one transaction. The context handed to fn carries
// the transaction and must be used for every store call and serial draw.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context, store Store) error) error
}

// Notifier receives notable events after their transaction commits.
// Delivery is best effort; failures are logged and never undo the change.
type Notifier interface {
	Notify(ctx context.Context, event notify.Event) error
}
