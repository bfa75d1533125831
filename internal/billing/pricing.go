package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trainerdesk/backend/internal/models"
)

// PricedSession is an appointment after group detection and rate resolution.
type PricedSession struct {
	AppointmentID    string          `json:"appointmentId"`
	StartTime        time.Time       `json:"startTime"`
	EndTime          time.Time       `json:"endTime"`
	Status           string          `json:"status"`
	IsGroupSession   bool            `json:"isGroupSession"`
	ParticipantCount int             `json:"participantCount"`
	Rate             decimal.Decimal `json:"rate"`
}

// Pricer classifies and prices a client's appointments against the
// trainer's current settings and appointment set.
type Pricer struct {
	Settings   *models.TrainerSettings
	Candidates []models.Appointment
}

func (p *Pricer) policy() models.GroupMatchingLogic {
	if p.Settings == nil {
		return models.MatchExact
	}
	return NormalizePolicy(p.Settings.GroupSessionMatchingLogic)
}

func (p *Pricer) Price(profile *models.ClientProfile, appt *models.Appointment) PricedSession {
	group := DetectGroupSession(appt, p.policy(), p.Candidates)
	return PricedSession{
		AppointmentID:    appt.ID,
		StartTime:        appt.StartTime,
		EndTime:          appt.EndTime,
		Status:           string(appt.Status),
		IsGroupSession:   group.IsGroupSession,
		ParticipantCount: group.ParticipantCount,
		Rate:             ResolveRate(profile, p.Settings, group.IsGroupSession),
	}
}

func (p *Pricer) PriceAll(profile *models.ClientProfile, appts []models.Appointment) []PricedSession {
	sessions := make([]PricedSession, 0, len(appts))
	for i := range appts {
		sessions = append(sessions, p.Price(profile, &appts[i]))
	}
	return sessions
}

// LineItems turns priced sessions into invoice lines, one per appointment,
// and returns their sum.
func LineItems(sessions []PricedSession) ([]models.InvoiceLineItem, decimal.Decimal) {
	items := make([]models.InvoiceLineItem, 0, len(sessions))
	total := decimal.Zero
	for _, s := range sessions {
		items = append(items, models.InvoiceLineItem{
			AppointmentID: s.AppointmentID,
			Description:   describeSession(s),
			Quantity:      1,
			UnitPrice:     s.Rate,
			Total:         s.Rate,
		})
		total = total.Add(s.Rate)
	}
	return items, total
}

func describeSession(s PricedSession) string {
	when := s.StartTime.Format("Jan 2, 2006 15:04")
	if s.IsGroupSession {
		return fmt.Sprintf("Group session (%d participants) - %s", s.ParticipantCount, when)
	}
	return fmt.Sprintf("Personal training session - %s", when)
}
