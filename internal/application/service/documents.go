package service

import (
	"context"

	"homestay/internal/application/models"
	"homestay/pkg/domain"
	dErrors "homestay/pkg/domain-errors"
	"homestay/pkg/requestcontext"
)

// DocumentUpload references a file already placed in object storage.
type DocumentUpload struct {
	DocumentType models.DocumentType `json:"documentType"`
	FileName     string              `json:"fileName"`
	StorageKey   string              `json:"storageKey"`
}

// AddDocument attaches an uploaded file while the application is editable.
func (s *Service) AddDocument(ctx context.Context, actor domain.Actor, appID domain.ApplicationID, upload DocumentUpload) (*models.Document, error) {
	now := requestcontext.Now(ctx)
	doc, err := models.NewDocument(domain.NewDocumentID(), appID, upload.DocumentType, upload.FileName, upload.StorageKey, now)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context, st Store) error {
		if _, err := s.editableForOwner(txCtx, st, actor, appID); err != nil {
			return err
		}
		return st.CreateDocument(txCtx, doc)
	})
	if err != nil {
		return nil, storeError(err, "application")
	}
	return doc, nil
}

// ReplaceDocument swaps a document for a new upload of the same type.
func (s *Service) ReplaceDocument(ctx context.Context, actor domain.Actor, appID domain.ApplicationID, docID domain.DocumentID, upload DocumentUpload) (*models.Document, error) {
	now := requestcontext.Now(ctx)
	var replacement *models.Document

	err := s.tx.RunInTx(ctx, func(txCtx context.Context, st Store) error {
		app, err := s.editableForOwner(txCtx, st, actor, appID)
		if err != nil {
			return err
		}
		old, err := st.FindDocument(txCtx, docID)
		if err != nil {
			return err
		}
		if old.ApplicationID != appID {
			return dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		replacement, err = models.NewDocument(domain.NewDocumentID(), appID, old.DocumentType, upload.FileName, upload.StorageKey, now)
		if err != nil {
			return err
		}
		if err := st.DeleteDocument(txCtx, docID); err != nil {
			return err
		}
		if err := st.CreateDocument(txCtx, replacement); err != nil {
			return err
		}
		return s.appendAction(txCtx, st, models.NewAction(appID, actor.ID, models.ActionDocumentReplaced,
			app.Status, app.Status, string(old.DocumentType)+": "+old.FileName+" -> "+replacement.FileName, now))
	})
	if err != nil {
		return nil, storeError(err, "document")
	}
	return replacement, nil
}

// ListDocuments returns the documents attached to an application.
func (s *Service) ListDocuments(ctx context.Context, actor domain.Actor, appID domain.ApplicationID) ([]*models.Document, error) {
	var docs []*models.Document
	err := s.tx.RunInTx(ctx, func(txCtx context.Context, st Store) error {
		app, err := st.FindApplication(txCtx, appID)
		if err != nil {
			return err
		}
		if err := canRead(actor, app); err != nil {
			return err
		}
		docs, err = st.ListDocuments(txCtx, appID)
		return err
	})
	if err != nil {
		return nil, storeError(err, "application")
	}
	return docs, nil
}

func (s *Service) editableForOwner(ctx context.Context, st Store, actor domain.Actor, appID domain.ApplicationID) (*models.Application, error) {
	app, err := st.FindApplicationForUpdate(ctx, appID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actor, app); err != nil {
		return nil, err
	}
	if !app.IsEditable() {
		return nil, dErrors.New(dErrors.CodeConflict, "documents can only change while the application is editable").
			WithField("status", app.Status, models.StatusDraft)
	}
	return app, nil
}
