package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ServiceContext is the typed snapshot attached to service requests and
// legacy onboardings. Each kind has its own variant; the workflow only reads
// RequiresPayment.
type ServiceContext interface {
	ContextKind() Kind
	RequiresPayment() bool
}

// RoomDeltaContext records an add_rooms or delete_rooms request.
type RoomDeltaContext struct {
	Kind    Kind  `json:"kind"`
	Delta   Rooms `json:"delta"`
	Before  Rooms `json:"before"`
	Target  Rooms `json:"target"`
	Payable bool  `json:"requiresPayment"`
}

func (c *RoomDeltaContext) ContextKind() Kind     { return c.Kind }
func (c *RoomDeltaContext) RequiresPayment() bool { return c.Payable }

// CategoryChangeContext records a change_category request.
type CategoryChangeContext struct {
	From    Category `json:"from"`
	To      Category `json:"to"`
	Payable bool     `json:"requiresPayment"`
}

func (c *CategoryChangeContext) ContextKind() Kind     { return KindChangeCategory }
func (c *CategoryChangeContext) RequiresPayment() bool { return c.Payable }

// CancellationContext records a cancel_certificate request.
type CancellationContext struct {
	Reason            string `json:"reason"`
	CertificateNumber string `json:"certificateNumber"`
}

func (c *CancellationContext) ContextKind() Kind     { return KindCancelCertificate }
func (c *CancellationContext) RequiresPayment() bool { return false }

// RenewalContext records a renewal request.
type RenewalContext struct {
	PreviousCertificateNumber string     `json:"previousCertificateNumber"`
	PreviousExpiry            *time.Time `json:"previousExpiry,omitempty"`
	ValidityYears             int        `json:"validityYears"`
}

func (c *RenewalContext) ContextKind() Kind     { return KindRenewal }
func (c *RenewalContext) RequiresPayment() bool { return true }

// LegacyContext carries details captured during RC onboarding.
type LegacyContext struct {
	GuardianName string `json:"guardianName,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

func (c *LegacyContext) ContextKind() Kind     { return KindExistingRCOnboarding }
func (c *LegacyContext) RequiresPayment() bool { return false }

type contextEnvelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeServiceContext serializes a context with its kind discriminator.
// A nil context encodes to nil.
func EncodeServiceContext(c ServiceContext) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal service context: %w", err)
	}
	return json.Marshal(contextEnvelope{Kind: c.ContextKind(), Payload: payload})
}

// DecodeServiceContext parses the envelope written by EncodeServiceContext.
// Unknown kinds and payloads that don't match the kind's schema are errors.
func DecodeServiceContext(raw []byte) (ServiceContext, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var env contextEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal service context envelope: %w", err)
	}

	var target ServiceContext
	switch env.Kind {
	case KindAddRooms, KindDeleteRooms:
		target = &RoomDeltaContext{}
	case KindChangeCategory:
		target = &CategoryChangeContext{}
	case KindCancelCertificate:
		target = &CancellationContext{}
	case KindRenewal:
		target = &RenewalContext{}
	case KindExistingRCOnboarding:
		target = &LegacyContext{}
	default:
		return nil, fmt.Errorf("unknown service context kind %q", env.Kind)
	}

	dec := json.NewDecoder(bytes.NewReader(env.Payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return nil, fmt.Errorf("unmarshal %s service context: %w", env.Kind, err)
	}
	if rd, ok := target.(*RoomDeltaContext); ok && rd.Kind != env.Kind {
		return nil, fmt.Errorf("room delta context kind %q does not match envelope %q", rd.Kind, env.Kind)
	}
	return target, nil
}
