package billing

import (
	"github.com/shopspring/decimal"
	"github.com/trainerdesk/backend/internal/models"
)

// ResolveRate picks the per-session price. First match wins:
// the client's group rate, the trainer's default group rate, then the
// client's individual rate. Individual sessions always use the latter.
func ResolveRate(profile *models.ClientProfile, settings *models.TrainerSettings, isGroupSession bool) decimal.Decimal {
	if isGroupSession {
		if profile.GroupSessionRate != nil {
			return *profile.GroupSessionRate
		}
		if settings != nil && settings.DefaultGroupSessionRate != nil {
			return *settings.DefaultGroupSessionRate
		}
	}
	return profile.SessionRate
}
