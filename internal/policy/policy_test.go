package policy

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/application/models"
)

const samplePolicy = `
max_rooms_allowed: 20
min_rooms_after_delete: 2
renewal_window_days: 60
legacy_issue_cutoff: "2023-04-01"
validity_tiers: [1, 3]
certificate_numbering: sequential
legacy_serial_seed: 5000
inspection:
  add_rooms: {optional: true, disabled: true}
correction_entry:
  new_registration: [under_scrutiny, dtdo_review, inspection_under_review]
district_codes:
  Kullu: KLU
fees:
  registration_per_year:
    gold: "4500.50"
  change_category: "1500"
`

func TestParseOverlaysDefaults(t *testing.T) {
	p, err := Parse([]byte(samplePolicy))
	require.NoError(t, err)

	assert.Equal(t, 20, p.MaxRoomsAllowed)
	assert.Equal(t, 2, p.MinRoomsAfterDelete)
	assert.Equal(t, 60*24*time.Hour, p.RenewalWindow)
	assert.Equal(t, time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), p.LegacyIssueCutoff)
	assert.Equal(t, NumberingSequential, p.CertificateNumbering)
	assert.Equal(t, int64(5000), p.LegacySerialSeed)
	assert.True(t, p.InspectionSkippable(models.KindAddRooms))
	assert.False(t, p.InspectionSkippable(models.KindNewRegistration))
	assert.Equal(t, "KLU", p.DistrictCode("Kullu"))
	assert.True(t, decimal.RequireFromString("4500.50").Equal(p.Fees.RegistrationPerYear[models.CategoryGold]))
	assert.True(t, decimal.NewFromInt(10000).Equal(p.Fees.RegistrationPerYear[models.CategoryDiamond]), "untouched keys keep defaults")
}

func TestParseRejectsInconsistentPolicy(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"zero cap", "max_rooms_allowed: 0"},
		{"min above cap", "max_rooms_allowed: 3\nmin_rooms_after_delete: 4"},
		{"unknown strategy", "certificate_numbering: lottery"},
		{"bad cutoff", "legacy_issue_cutoff: yesterday"},
		{"bad fee", "fees:\n  change_category: lots"},
		{"unknown kind", "inspection:\n  teleport: {optional: true}"},
		{"terminal correction entry", "correction_entry:\n  renewal: [rejected]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path yields defaults", func(t *testing.T) {
		p, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default().MaxRoomsAllowed, p.MaxRoomsAllowed)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		require.NoError(t, os.WriteFile(path, []byte(samplePolicy), 0o600))
		p, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 20, p.MaxRoomsAllowed)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestCorrectionEntry(t *testing.T) {
	p := Default()
	assert.True(t, p.CorrectionAllowedFrom(models.KindNewRegistration, models.StatusUnderScrutiny))
	assert.True(t, p.CorrectionAllowedFrom(models.KindNewRegistration, models.StatusDTDOReview))
	assert.False(t, p.CorrectionAllowedFrom(models.KindNewRegistration, models.StatusInspectionUnderReview))

	p.CorrectionEntry[models.KindNewRegistration] = []models.Status{models.StatusInspectionUnderReview}
	assert.True(t, p.CorrectionAllowedFrom(models.KindNewRegistration, models.StatusInspectionUnderReview))
	assert.False(t, p.CorrectionAllowedFrom(models.KindNewRegistration, models.StatusUnderScrutiny))
}

func TestDistrictCodeFallback(t *testing.T) {
	p := Default()
	assert.Equal(t, "SHI", p.DistrictCode("Shimla"))
	assert.Equal(t, "LAH", p.DistrictCode("Lahaul & Spiti"))
	assert.Equal(t, "XXX", p.DistrictCode("42"))
}

func TestFeeFor(t *testing.T) {
	p := Default()
	assert.True(t, decimal.NewFromInt(15000).Equal(p.FeeFor(models.KindNewRegistration, models.CategoryGold, 3, 0)))
	assert.True(t, decimal.NewFromInt(10000).Equal(p.FeeFor(models.KindRenewal, models.CategoryDiamond, 1, 0)))
	assert.True(t, decimal.NewFromInt(1500).Equal(p.FeeFor(models.KindAddRooms, models.CategoryGold, 3, 3)))
	assert.True(t, decimal.NewFromInt(2000).Equal(p.FeeFor(models.KindChangeCategory, models.CategorySilver, 1, 0)))
	assert.True(t, p.FeeFor(models.KindCancelCertificate, models.CategoryGold, 1, 0).IsZero())
}

func TestHolderInspectionToggle(t *testing.T) {
	base := Default()
	h := NewHolder(base)

	require.NoError(t, h.SetInspectionDisabled(models.KindRenewal, true))
	assert.True(t, h.Get().InspectionSkippable(models.KindRenewal))
	assert.False(t, base.InspectionSkippable(models.KindRenewal), "published policy must not be mutated")

	err := h.SetInspectionDisabled(models.KindNewRegistration, true)
	assert.Error(t, err, "mandatory inspection cannot be disabled")
}

func TestHolderConcurrentToggles(t *testing.T) {
	h := NewHolder(Default())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = h.SetInspectionDisabled(models.KindRenewal, true)
		}()
		go func() {
			defer wg.Done()
			_ = h.SetInspectionDisabled(models.KindDeleteRooms, true)
		}()
	}
	wg.Wait()
	assert.True(t, h.Get().InspectionSkippable(models.KindRenewal))
	assert.True(t, h.Get().InspectionSkippable(models.KindDeleteRooms))
}
