package models

import (
	"time"

	"github.com/shopspring/decimal"

	"homestay/pkg/domain"
	dErrors "homestay/pkg/domain-errors"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) IsValid() bool {
	return s == PaymentPending || s == PaymentSuccess || s == PaymentFailed
}

// Payment is the settlement record that triggers certificate issuance.
//
// Invariants:
//   - CompletedAt is set iff PaymentStatus == success
//   - success is terminal; a failed payment may still be confirmed when the
//     gateway reports a late success
type Payment struct {
	ID               domain.PaymentID     `json:"id"`
	ApplicationID    domain.ApplicationID `json:"applicationId"`
	Amount           decimal.Decimal      `json:"amount"`
	PaymentStatus    PaymentStatus        `json:"paymentStatus"`
	GatewayReference string               `json:"gatewayReference,omitempty"`
	CreatedAt        time.Time            `json:"createdAt"`
	CompletedAt      *time.Time           `json:"completedAt,omitempty"`
}

func NewPayment(id domain.PaymentID, appID domain.ApplicationID, amount decimal.Decimal, now time.Time) (*Payment, error) {
	if amount.IsNegative() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "payment amount cannot be negative")
	}
	return &Payment{
		ID:            id,
		ApplicationID: appID,
		Amount:        amount,
		PaymentStatus: PaymentPending,
		CreatedAt:     now,
	}, nil
}

// CanConfirm refuses only payments that already succeeded.
func (p *Payment) CanConfirm() error {
	if p.PaymentStatus == PaymentSuccess {
		return dErrors.New(dErrors.CodeConflict, "payment is already settled").
			WithField("paymentStatus", p.PaymentStatus, PaymentSuccess)
	}
	return nil
}

// CanFail checks that the payment is still pending.
func (p *Payment) CanFail() error {
	if p.PaymentStatus != PaymentPending {
		return dErrors.New(dErrors.CodeConflict, "payment is already settled").
			WithField("paymentStatus", p.PaymentStatus, PaymentFailed)
	}
	return nil
}

// ApplySuccess marks the payment settled. Must only be called after CanConfirm.
func (p *Payment) ApplySuccess(gatewayRef string, now time.Time) {
	p.PaymentStatus = PaymentSuccess
	if gatewayRef != "" {
		p.GatewayReference = gatewayRef
	}
	p.CompletedAt = &now
}

// ApplyFailure marks the payment failed. Must only be called after CanFail.
func (p *Payment) ApplyFailure(gatewayRef string) {
	p.PaymentStatus = PaymentFailed
	if gatewayRef != "" {
		p.GatewayReference = gatewayRef
	}
}
