package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/trainerdesk/backend/internal/models"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func TestResolveRate(t *testing.T) {
	withClientGroup := &models.ClientProfile{SessionRate: dec("60"), GroupSessionRate: decPtr("40")}
	individualOnly := &models.ClientProfile{SessionRate: dec("60")}
	trainerDefault := &models.TrainerSettings{DefaultGroupSessionRate: decPtr("50")}
	noDefault := &models.TrainerSettings{}

	tests := []struct {
		name     string
		profile  *models.ClientProfile
		settings *models.TrainerSettings
		group    bool
		want     string
	}{
		{"client group rate beats trainer default", withClientGroup, trainerDefault, true, "40"},
		{"client group rate without trainer default", withClientGroup, noDefault, true, "40"},
		{"trainer default when client has none", individualOnly, trainerDefault, true, "50"},
		{"individual rate as group fallback", individualOnly, noDefault, true, "60"},
		{"nil settings fall back to individual", individualOnly, nil, true, "60"},
		{"individual session ignores group rates", withClientGroup, trainerDefault, false, "60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRate(tt.profile, tt.settings, tt.group)
			assert.True(t, dec(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestResolveRate_Deterministic(t *testing.T) {
	profile := &models.ClientProfile{SessionRate: dec("60"), GroupSessionRate: decPtr("40")}
	settings := &models.TrainerSettings{DefaultGroupSessionRate: decPtr("50")}

	first := ResolveRate(profile, settings, true)
	for i := 0; i < 10; i++ {
		assert.True(t, first.Equal(ResolveRate(profile, settings, true)))
	}
}
