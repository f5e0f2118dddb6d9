package models

import (
	"time"

	"homestay/pkg/domain"
	dErrors "homestay/pkg/domain-errors"
)

// DocumentType is the closed vocabulary of upload tags.
type DocumentType string

const (
	DocumentOwnershipProof     DocumentType = "ownership_proof"
	DocumentLegacyCertificate  DocumentType = "legacy_certificate"
	DocumentOwnerIdentityProof DocumentType = "owner_identity_proof"
	DocumentPropertyPhoto      DocumentType = "property_photo"
	DocumentFireNOC            DocumentType = "fire_noc"
	DocumentRevenuePapers      DocumentType = "revenue_papers"
	DocumentOther              DocumentType = "other"
)

func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentOwnershipProof, DocumentLegacyCertificate, DocumentOwnerIdentityProof,
		DocumentPropertyPhoto, DocumentFireNOC, DocumentRevenuePapers, DocumentOther:
		return true
	}
	return false
}

// Document is an uploaded file reference. Documents are never mutated;
// replacing one deletes the row and creates another.
type Document struct {
	ID            domain.DocumentID    `json:"id"`
	ApplicationID domain.ApplicationID `json:"applicationId"`
	DocumentType  DocumentType         `json:"documentType"`
	FileName      string               `json:"fileName"`
	StorageKey    string               `json:"storageKey"`
	UploadedAt    time.Time            `json:"uploadedAt"`
}

func NewDocument(
	docID domain.DocumentID,
	appID domain.ApplicationID,
	docType DocumentType,
	fileName string,
	storageKey string,
	now time.Time,
) (*Document, error) {
	if !docType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown document type").
			WithField("documentType", nil, docType)
	}
	if fileName == "" || len(fileName) > 255 {
		return nil, dErrors.New(dErrors.CodeValidation, "fileName must be 1-255 characters").
			WithField("fileName", nil, fileName)
	}
	if storageKey == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "storageKey is required").
			WithField("storageKey", nil, storageKey)
	}
	return &Document{
		ID:            docID,
		ApplicationID: appID,
		DocumentType:  docType,
		FileName:      fileName,
		StorageKey:    storageKey,
		UploadedAt:    now,
	}, nil
}
