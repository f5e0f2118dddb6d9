package policy

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"homestay/internal/application/models"
)

// NumberingStrategy selects how certificate number suffixes are produced.
type NumberingStrategy string

const (
	NumberingRandom     NumberingStrategy = "random"
	NumberingSequential NumberingStrategy = "sequential"
)

func (s NumberingStrategy) IsValid() bool {
	return s == NumberingRandom || s == NumberingSequential
}

// InspectionRule says whether a kind may skip inspection. Skipping requires
// both flags: the kind is optional and an administrator disabled it.
type InspectionRule struct {
	Optional bool `yaml:"optional"`
	Disabled bool `yaml:"disabled"`
}

// Fees is the fee table in rupees.
type Fees struct {
	RegistrationPerYear map[models.Category]decimal.Decimal
	AddRoomsPerRoom     decimal.Decimal
	ChangeCategory      decimal.Decimal
}

// Policy is the reference data consumed by the workflow and eligibility
// engine. Values are immutable once loaded; runtime toggles go through Holder.
type Policy struct {
	MaxRoomsAllowed      int
	MinRoomsAfterDelete  int
	RenewalWindow        time.Duration
	Inspection           map[models.Kind]InspectionRule
	CorrectionEntry      map[models.Kind][]models.Status
	LegacyIssueCutoff    time.Time
	ValidityTiers        []int
	CertificateNumbering NumberingStrategy
	LegacySerialSeed     int64
	DistrictCodes        map[string]string
	Fees                 Fees
}

var defaultCorrectionEntry = []models.Status{models.StatusUnderScrutiny, models.StatusDTDOReview}

// Default returns the built-in policy used when no file is configured.
func Default() *Policy {
	return &Policy{
		MaxRoomsAllowed:     12,
		MinRoomsAfterDelete: 1,
		RenewalWindow:       90 * 24 * time.Hour,
		Inspection: map[models.Kind]InspectionRule{
			models.KindDeleteRooms:       {Optional: true},
			models.KindCancelCertificate: {Optional: true, Disabled: true},
			models.KindRenewal:           {Optional: true},
		},
		CorrectionEntry:      map[models.Kind][]models.Status{},
		LegacyIssueCutoff:    time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidityTiers:        []int{1, 3},
		CertificateNumbering: NumberingRandom,
		LegacySerialSeed:     0,
		DistrictCodes:        map[string]string{},
		Fees: Fees{
			RegistrationPerYear: map[models.Category]decimal.Decimal{
				models.CategoryDiamond: decimal.NewFromInt(10000),
				models.CategoryGold:    decimal.NewFromInt(5000),
				models.CategorySilver:  decimal.NewFromInt(3000),
			},
			AddRoomsPerRoom: decimal.NewFromInt(500),
			ChangeCategory:  decimal.NewFromInt(2000),
		},
	}
}

// InspectionSkippable reports whether dtdo_review may go straight to
// verified_for_payment for kind.
func (p *Policy) InspectionSkippable(kind models.Kind) bool {
	rule := p.Inspection[kind]
	return rule.Optional && rule.Disabled
}

// CorrectionAllowedFrom reports whether a correction may be requested while
// an application of kind sits in status.
func (p *Policy) CorrectionAllowedFrom(kind models.Kind, status models.Status) bool {
	entry, ok := p.CorrectionEntry[kind]
	if !ok {
		entry = defaultCorrectionEntry
	}
	for _, s := range entry {
		if s == status {
			return true
		}
	}
	return false
}

func (p *Policy) ValidValidity(years int) bool {
	for _, tier := range p.ValidityTiers {
		if tier == years {
			return true
		}
	}
	return false
}

// DistrictCode returns the short code for district, falling back to its
// first three letters upper-cased.
func (p *Policy) DistrictCode(district string) string {
	if code, ok := p.DistrictCodes[strings.ToLower(district)]; ok {
		return code
	}
	letters := make([]rune, 0, 3)
	for _, r := range strings.ToUpper(district) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, r)
		}
		if len(letters) == 3 {
			break
		}
	}
	if len(letters) == 0 {
		return "XXX"
	}
	return string(letters)
}

// FeeFor returns the amount due for an application. roomsAdded is only read
// for add_rooms.
func (p *Policy) FeeFor(kind models.Kind, category models.Category, validityYears, roomsAdded int) decimal.Decimal {
	switch kind {
	case models.KindNewRegistration, models.KindRenewal:
		perYear := p.Fees.RegistrationPerYear[category]
		return perYear.Mul(decimal.NewFromInt(int64(validityYears)))
	case models.KindAddRooms:
		return p.Fees.AddRoomsPerRoom.Mul(decimal.NewFromInt(int64(roomsAdded)))
	case models.KindChangeCategory:
		return p.Fees.ChangeCategory
	}
	return decimal.Zero
}

// Validate checks internal consistency.
func (p *Policy) Validate() error {
	if p.MaxRoomsAllowed < 1 {
		return fmt.Errorf("max_rooms_allowed must be positive, got %d", p.MaxRoomsAllowed)
	}
	if p.MinRoomsAfterDelete < 1 || p.MinRoomsAfterDelete > p.MaxRoomsAllowed {
		return fmt.Errorf("min_rooms_after_delete must be within [1, %d], got %d", p.MaxRoomsAllowed, p.MinRoomsAfterDelete)
	}
	if p.RenewalWindow <= 0 {
		return fmt.Errorf("renewal_window_days must be positive")
	}
	if len(p.ValidityTiers) == 0 {
		return fmt.Errorf("validity_tiers must not be empty")
	}
	if !p.CertificateNumbering.IsValid() {
		return fmt.Errorf("unknown certificate_numbering %q", p.CertificateNumbering)
	}
	if p.LegacySerialSeed < 0 {
		return fmt.Errorf("legacy_serial_seed must not be negative")
	}
	for kind := range p.Inspection {
		if !kind.IsValid() {
			return fmt.Errorf("inspection: unknown kind %q", kind)
		}
	}
	for kind, entry := range p.CorrectionEntry {
		if !kind.IsValid() {
			return fmt.Errorf("correction_entry: unknown kind %q", kind)
		}
		for _, s := range entry {
			if !s.IsValid() || s.IsTerminal() || s == models.StatusDraft {
				return fmt.Errorf("correction_entry[%s]: status %q cannot request a correction", kind, s)
			}
		}
	}
	return nil
}

// clone returns a copy whose maps can be modified without touching p.
func (p *Policy) clone() *Policy {
	cp := *p
	cp.Inspection = make(map[models.Kind]InspectionRule, len(p.Inspection))
	for k, v := range p.Inspection {
		cp.Inspection[k] = v
	}
	return &cp
}

type fileFormat struct {
	MaxRoomsAllowed      *int                            `yaml:"max_rooms_allowed"`
	MinRoomsAfterDelete  *int                            `yaml:"min_rooms_after_delete"`
	RenewalWindowDays    *int                            `yaml:"renewal_window_days"`
	Inspection           map[models.Kind]InspectionRule  `yaml:"inspection"`
	CorrectionEntry      map[models.Kind][]models.Status `yaml:"correction_entry"`
	LegacyIssueCutoff    string                          `yaml:"legacy_issue_cutoff"`
	ValidityTiers        []int                           `yaml:"validity_tiers"`
	CertificateNumbering string                          `yaml:"certificate_numbering"`
	LegacySerialSeed     *int64                          `yaml:"legacy_serial_seed"`
	DistrictCodes        map[string]string               `yaml:"district_codes"`
	Fees                 *feesFormat                     `yaml:"fees"`
}

type feesFormat struct {
	RegistrationPerYear map[models.Category]string `yaml:"registration_per_year"`
	AddRoomsPerRoom     string                     `yaml:"add_rooms_per_room"`
	ChangeCategory      string                     `yaml:"change_category"`
}

// Parse overlays YAML onto the defaults. Keys absent from the document keep
// their default values.
func Parse(raw []byte) (*Policy, error) {
	var f fileFormat
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse policy yaml: %w", err)
	}

	p := Default()
	if f.MaxRoomsAllowed != nil {
		p.MaxRoomsAllowed = *f.MaxRoomsAllowed
	}
	if f.MinRoomsAfterDelete != nil {
		p.MinRoomsAfterDelete = *f.MinRoomsAfterDelete
	}
	if f.RenewalWindowDays != nil {
		p.RenewalWindow = time.Duration(*f.RenewalWindowDays) * 24 * time.Hour
	}
	if f.Inspection != nil {
		p.Inspection = f.Inspection
	}
	if f.CorrectionEntry != nil {
		p.CorrectionEntry = f.CorrectionEntry
	}
	if f.LegacyIssueCutoff != "" {
		cutoff, err := time.Parse(time.DateOnly, f.LegacyIssueCutoff)
		if err != nil {
			return nil, fmt.Errorf("legacy_issue_cutoff: %w", err)
		}
		p.LegacyIssueCutoff = cutoff
	}
	if len(f.ValidityTiers) > 0 {
		p.ValidityTiers = f.ValidityTiers
	}
	if f.CertificateNumbering != "" {
		p.CertificateNumbering = NumberingStrategy(f.CertificateNumbering)
	}
	if f.LegacySerialSeed != nil {
		p.LegacySerialSeed = *f.LegacySerialSeed
	}
	for district, code := range f.DistrictCodes {
		p.DistrictCodes[strings.ToLower(district)] = strings.ToUpper(code)
	}
	if f.Fees != nil {
		if err := f.Fees.apply(&p.Fees); err != nil {
			return nil, err
		}
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return p, nil
}

func (f *feesFormat) apply(fees *Fees) error {
	for category, amount := range f.RegistrationPerYear {
		if !category.IsValid() {
			return fmt.Errorf("fees.registration_per_year: unknown category %q", category)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("fees.registration_per_year[%s]: %w", category, err)
		}
		fees.RegistrationPerYear[category] = d
	}
	if f.AddRoomsPerRoom != "" {
		d, err := decimal.NewFromString(f.AddRoomsPerRoom)
		if err != nil {
			return fmt.Errorf("fees.add_rooms_per_room: %w", err)
		}
		fees.AddRoomsPerRoom = d
	}
	if f.ChangeCategory != "" {
		d, err := decimal.NewFromString(f.ChangeCategory)
		if err != nil {
			return fmt.Errorf("fees.change_category: %w", err)
		}
		fees.ChangeCategory = d
	}
	return nil
}

// Load reads the policy file at path. An empty path yields Default().
func Load(path string) (*Policy, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return Parse(raw)
}

// Holder publishes the current policy to concurrent readers and applies
// administrative toggles copy-on-write.
type Holder struct {
	current atomic.Pointer[Policy]
}

func NewHolder(p *Policy) *Holder {
	h := &Holder{}
	h.current.Store(p)
	return h
}

func (h *Holder) Get() *Policy {
	return h.current.Load()
}

// SetInspectionDisabled toggles the administrator switch for kind. Only
// kinds marked optional can be disabled.
func (h *Holder) SetInspectionDisabled(kind models.Kind, disabled bool) error {
	for {
		old := h.current.Load()
		rule, ok := old.Inspection[kind]
		if !ok || !rule.Optional {
			return fmt.Errorf("inspection for %q is not optional", kind)
		}
		next := old.clone()
		rule.Disabled = disabled
		next.Inspection[kind] = rule
		if h.current.CompareAndSwap(old, next) {
			return nil
		}
	}
}
