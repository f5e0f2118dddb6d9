// Package numbering formats application and certificate numbers on top of a
// Sequencer.
package numbering

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"

	"homestay/internal/application/models"
	"homestay/internal/policy"
	dErrors "homestay/pkg/domain-errors"
)

const (
	primaryPrefix     = "HP"
	legacyPrefix      = "LG-HS"
	certificatePrefix = "HP-HST"

	certificateSpace    = 100000
	maxRandomAttempts   = 5
	serialDigitsPadding = 5
)

// InUseFunc reports whether a certificate number is already taken.
type InUseFunc func(ctx context.Context, number string) (bool, error)

// Numberer produces human-readable identifiers.
type Numberer struct {
	seq     Sequencer
	entropy io.Reader
}

type Option func(*Numberer)

// WithEntropy overrides the random source for certificate suffixes.
func WithEntropy(r io.Reader) Option {
	return func(n *Numberer) {
		n.entropy = r
	}
}

func New(seq Sequencer, opts ...Option) *Numberer {
	n := &Numberer{seq: seq, entropy: rand.Reader}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ApplicationNumber returns HP-<KIND>-<YEAR>-<DISTRICT>-<SERIAL>. All primary
// kinds share one serial per district and year.
func (n *Numberer) ApplicationNumber(ctx context.Context, p *policy.Policy, kind models.Kind, district string, now time.Time) (string, error) {
	code := p.DistrictCode(district)
	year := now.Year()
	serial, err := n.seq.Next(ctx, fmt.Sprintf("primary:%s:%d", code, year), 0)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%d-%s-%0*d", primaryPrefix, kind.Code(), year, code, serialDigitsPadding, serial), nil
}

// LegacyNumber returns LG-HS-<YEAR>-<DISTRICT>-<SERIAL> from the independently
// seeded legacy sequence.
func (n *Numberer) LegacyNumber(ctx context.Context, p *policy.Policy, district string, now time.Time) (string, error) {
	code := p.DistrictCode(district)
	year := now.Year()
	serial, err := n.seq.Next(ctx, fmt.Sprintf("legacy:%s:%d", code, year), p.LegacySerialSeed)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%s-%0*d", legacyPrefix, year, code, serialDigitsPadding, serial), nil
}

// CertificateNumber returns HP-HST-<YEAR>-<SUFFIX> using the policy's
// strategy. Random suffixes are checked against inUse and redrawn.
func (n *Numberer) CertificateNumber(ctx context.Context, p *policy.Policy, now time.Time, inUse InUseFunc) (string, error) {
	year := now.Year()
	if p.CertificateNumbering == policy.NumberingSequential {
		serial, err := n.seq.Next(ctx, fmt.Sprintf("certificate:%d", year), 0)
		if err != nil {
			return "", err
		}
		return formatCertificate(year, serial), nil
	}

	for attempt := 0; attempt < maxRandomAttempts; attempt++ {
		suffix, err := rand.Int(n.entropy, big.NewInt(certificateSpace))
		if err != nil {
			return "", fmt.Errorf("draw certificate suffix: %w", err)
		}
		candidate := formatCertificate(year, suffix.Int64())
		taken, err := inUse(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", dErrors.New(dErrors.CodeConflict, "could not allocate a unique certificate number")
}

func formatCertificate(year int, suffix int64) string {
	return fmt.Sprintf("%s-%d-%0*d", certificatePrefix, year, serialDigitsPadding, suffix)
}
