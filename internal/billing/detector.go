package billing

import (
	"github.com/samber/lo"
	"github.com/trainerdesk/backend/internal/models"
)

// GroupSession is the derived group classification of one appointment.
// It is never stored: a policy change reclassifies every unbilled session.
type GroupSession struct {
	IsGroupSession   bool `json:"isGroupSession"`
	ParticipantCount int  `json:"participantCount"`
}

// NormalizePolicy maps an empty or unknown policy to EXACT_MATCH.
func NormalizePolicy(policy models.GroupMatchingLogic) models.GroupMatchingLogic {
	switch policy {
	case models.MatchExact, models.MatchStart, models.MatchEnd, models.MatchAnyOverlap:
		return policy
	default:
		return models.MatchExact
	}
}

// Overlaps applies the policy's time predicate to two appointments.
func Overlaps(policy models.GroupMatchingLogic, a, b *models.Appointment) bool {
	switch NormalizePolicy(policy) {
	case models.MatchStart:
		return a.StartTime.Equal(b.StartTime)
	case models.MatchEnd:
		return a.EndTime.Equal(b.EndTime)
	case models.MatchAnyOverlap:
		return b.StartTime.Before(a.EndTime) && b.EndTime.After(a.StartTime)
	default:
		return a.StartTime.Equal(b.StartTime) && a.EndTime.Equal(b.EndTime)
	}
}

// DetectGroupSession counts the trainer's other appointments that share the
// appointment's slot under policy. Candidates from another trainer or
// workspace, the appointment itself, and cancelled or rescheduled bookings
// never count.
func DetectGroupSession(appt *models.Appointment, policy models.GroupMatchingLogic, candidates []models.Appointment) GroupSession {
	matches := lo.CountBy(candidates, func(other models.Appointment) bool {
		if other.ID == appt.ID {
			return false
		}
		if other.TrainerID != appt.TrainerID || other.WorkspaceID != appt.WorkspaceID {
			return false
		}
		if !other.CountsTowardGroup() {
			return false
		}
		return Overlaps(policy, appt, &other)
	})

	participants := matches + 1
	return GroupSession{
		IsGroupSession:   participants > 1,
		ParticipantCount: participants,
	}
}
