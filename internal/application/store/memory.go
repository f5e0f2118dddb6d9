// Package store persists applications, documents, payments and the action
// timeline. Both implementations enforce the same uniqueness rules; the
// Postgres one through partial unique indexes.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"homestay/internal/application/models"
	"homestay/pkg/domain"
	"homestay/pkg/platform/sentinel"
)

// InMemoryStore keeps every record in maps guarded by one RWMutex. Reads
// return copies so callers only change stored state through Update calls.
type InMemoryStore struct {
	mu           sync.RWMutex
	applications map[domain.ApplicationID]*models.Application
	actions      []*models.ApplicationAction
	documents    map[domain.DocumentID]*models.Document
	payments     map[domain.PaymentID]*models.Payment
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		applications: make(map[domain.ApplicationID]*models.Application),
		documents:    make(map[domain.DocumentID]*models.Document),
		payments:     make(map[domain.PaymentID]*models.Payment),
	}
}

// Snapshot captures the current state and returns a func that restores it.
// The in-memory transaction uses it to roll back a failed unit of work.
func (s *InMemoryStore) Snapshot() (restore func()) {
	s.mu.RLock()
	apps := make(map[domain.ApplicationID]*models.Application, len(s.applications))
	for k, v := range s.applications {
		apps[k] = cloneApp(v)
	}
	actions := append([]*models.ApplicationAction(nil), s.actions...)
	docs := make(map[domain.DocumentID]*models.Document, len(s.documents))
	for k, v := range s.documents {
		docs[k] = v
	}
	payments := make(map[domain.PaymentID]*models.Payment, len(s.payments))
	for k, v := range s.payments {
		cp := *v
		payments[k] = &cp
	}
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.applications = apps
		s.actions = actions
		s.documents = docs
		s.payments = payments
	}
}

func cloneApp(a *models.Application) *models.Application {
	cp := *a
	return &cp
}

func (s *InMemoryStore) CreateApplication(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.applications[app.ID]; exists {
		return fmt.Errorf("application %s: %w", app.ID, sentinel.ErrAlreadyUsed)
	}
	if err := s.checkUniqueLocked(app); err != nil {
		return err
	}
	s.applications[app.ID] = cloneApp(app)
	return nil
}

func (s *InMemoryStore) FindApplication(_ context.Context, id domain.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.applications[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneApp(app), nil
}

// FindApplicationForUpdate is FindApplication; the in-memory transaction
// already serializes writers.
func (s *InMemoryStore) FindApplicationForUpdate(ctx context.Context, id domain.ApplicationID) (*models.Application, error) {
	return s.FindApplication(ctx, id)
}

func (s *InMemoryStore) UpdateApplication(_ context.Context, app *models.Application, expected models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.applications[app.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != expected {
		return fmt.Errorf("application %s is %s, expected %s: %w", app.ID, current.Status, expected, sentinel.ErrConflict)
	}
	if err := s.checkUniqueLocked(app); err != nil {
		return err
	}
	s.applications[app.ID] = cloneApp(app)
	return nil
}

func (s *InMemoryStore) DeleteApplication(_ context.Context, id domain.ApplicationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.applications, id)
	for docID, doc := range s.documents {
		if doc.ApplicationID == id {
			delete(s.documents, docID)
		}
	}
	for payID, p := range s.payments {
		if p.ApplicationID == id {
			delete(s.payments, payID)
		}
	}
	return nil
}

func (s *InMemoryStore) ListApplicationsByOwner(_ context.Context, userID domain.UserID) ([]*models.Application, error) {
	return s.filter(func(a *models.Application) bool { return a.UserID == userID }), nil
}

func (s *InMemoryStore) ListApplicationsByDistrict(_ context.Context, district string, statuses []models.Status) ([]*models.Application, error) {
	wanted := make(map[models.Status]bool, len(statuses))
	for _, st := range statuses {
		wanted[st] = true
	}
	return s.filter(func(a *models.Application) bool {
		return a.District == district && (len(wanted) == 0 || wanted[a.Status])
	}), nil
}

func (s *InMemoryStore) FindOpenByParent(_ context.Context, parentID domain.ApplicationID) (*models.Application, error) {
	return s.first(func(a *models.Application) bool {
		return a.ParentID != nil && *a.ParentID == parentID && a.Status.IsOpen()
	})
}

func (s *InMemoryStore) FindLegacyInReview(_ context.Context, userID domain.UserID) (*models.Application, error) {
	return s.first(func(a *models.Application) bool {
		return a.UserID == userID && a.Kind.IsLegacy() && a.Status == models.StatusLegacyRCReview
	})
}

func (s *InMemoryStore) FindLegacyDraft(_ context.Context, userID domain.UserID) (*models.Application, error) {
	return s.first(func(a *models.Application) bool {
		return a.UserID == userID && a.Kind.IsLegacy() && a.Status == models.StatusDraft
	})
}

func (s *InMemoryStore) RCNumberInUse(_ context.Context, number string, exclude domain.ApplicationID) (bool, error) {
	_, err := s.first(func(a *models.Application) bool {
		return a.ID != exclude && (a.RCNumber == number || a.CertificateNumber == number)
	})
	return err == nil, nil
}

func (s *InMemoryStore) CertificateNumberInUse(_ context.Context, number string) (bool, error) {
	_, err := s.first(func(a *models.Application) bool {
		return a.CertificateNumber == number || a.RCNumber == number
	})
	return err == nil, nil
}

func (s *InMemoryStore) AppendAction(_ context.Context, action *models.ApplicationAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *action
	s.actions = append(s.actions, &cp)
	return nil
}

func (s *InMemoryStore) ListActions(_ context.Context, appID domain.ApplicationID) ([]*models.ApplicationAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.ApplicationAction
	for _, a := range s.actions {
		if a.ApplicationID == appID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemoryStore) CreateDocument(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[doc.ApplicationID]; !ok {
		return fmt.Errorf("document owner %s: %w", doc.ApplicationID, sentinel.ErrNotFound)
	}
	cp := *doc
	s.documents[doc.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindDocument(_ context.Context, id domain.DocumentID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (s *InMemoryStore) DeleteDocument(_ context.Context, id domain.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.documents, id)
	return nil
}

func (s *InMemoryStore) ListDocuments(_ context.Context, appID domain.ApplicationID) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Document
	for _, d := range s.documents {
		if d.ApplicationID == appID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}

func (s *InMemoryStore) CreatePayment(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[payment.ApplicationID]; !ok {
		return fmt.Errorf("payment owner %s: %w", payment.ApplicationID, sentinel.ErrNotFound)
	}
	cp := *payment
	s.payments[payment.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindPaymentForUpdate(_ context.Context, id domain.PaymentID) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryStore) UpdatePayment(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[payment.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *payment
	s.payments[payment.ID] = &cp
	return nil
}

func (s *InMemoryStore) ListPayments(_ context.Context, appID domain.ApplicationID) ([]*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Payment
	for _, p := range s.payments {
		if p.ApplicationID == appID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) filter(keep func(*models.Application) bool) []*models.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Application
	for _, a := range s.applications {
		if keep(a) {
			out = append(out, cloneApp(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *InMemoryStore) first(match func(*models.Application) bool) (*models.Application, error) {
	matches := s.filter(match)
	if len(matches) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return matches[0], nil
}

// checkUniqueLocked mirrors the unique and partial unique indexes of the
// Postgres schema. Callers hold s.mu.
func (s *InMemoryStore) checkUniqueLocked(app *models.Application) error {
	for id, other := range s.applications {
		if id == app.ID {
			continue
		}
		switch {
		case app.ApplicationNumber != "" && other.ApplicationNumber == app.ApplicationNumber:
			return fmt.Errorf("application number %s: %w", app.ApplicationNumber, sentinel.ErrAlreadyUsed)
		case app.CertificateNumber != "" && other.CertificateNumber == app.CertificateNumber:
			return fmt.Errorf("certificate number %s: %w", app.CertificateNumber, sentinel.ErrAlreadyUsed)
		case app.RCNumber != "" && other.RCNumber == app.RCNumber:
			return fmt.Errorf("rc number %s: %w", app.RCNumber, sentinel.ErrAlreadyUsed)
		case app.ParentID != nil && app.Status.IsOpen() &&
			other.ParentID != nil && *other.ParentID == *app.ParentID && other.Status.IsOpen():
			return fmt.Errorf("open request on parent %s: %w", *app.ParentID, sentinel.ErrAlreadyUsed)
		case app.Kind.IsLegacy() && other.Kind.IsLegacy() && other.UserID == app.UserID &&
			(app.Status == models.StatusDraft || app.Status == models.StatusLegacyRCReview) &&
			other.Status == app.Status:
			return fmt.Errorf("legacy %s for user %s: %w", app.Status, app.UserID, sentinel.ErrAlreadyUsed)
		}
	}
	return nil
}
