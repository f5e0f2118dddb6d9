// Package domain holds identifiers and actor types shared by every layer.
package domain

import (
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "homestay/pkg/domain-errors"
)

// Typed identifiers keep application, payment and user ids from being
// passed where another kind is expected.
type (
	UserID        uuid.UUID
	ApplicationID uuid.UUID
	DocumentID    uuid.UUID
	PaymentID     uuid.UUID
	ActionID      uuid.UUID
)

const maxIDLength = 64

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, kind+" is required")
	}
	if len(s) > maxIDLength || !utf8.ValidString(s) {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid "+kind)
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, kind+" must not be nil")
	}
	return parsed, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user id", s)
	return UserID(u), err
}

func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseUUID("application id", s)
	return ApplicationID(u), err
}

func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID("document id", s)
	return DocumentID(u), err
}

func ParsePaymentID(s string) (PaymentID, error) {
	u, err := parseUUID("payment id", s)
	return PaymentID(u), err
}

func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }
func NewDocumentID() DocumentID       { return DocumentID(uuid.New()) }
func NewPaymentID() PaymentID         { return PaymentID(uuid.New()) }
func NewActionID() ActionID           { return ActionID(uuid.New()) }

func (id UserID) String() string { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id ApplicationID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id ApplicationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *ApplicationID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id DocumentID) String() string { return uuid.UUID(id).String() }

func (id DocumentID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *DocumentID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id PaymentID) String() string { return uuid.UUID(id).String() }

func (id PaymentID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *PaymentID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id ActionID) String() string { return uuid.UUID(id).String() }

func (id ActionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *ActionID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
