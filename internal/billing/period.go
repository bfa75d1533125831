package billing

import "time"

// Period is a closed billing window. End is the last millisecond of the
// final day (23:59:59.999).
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// MonthPeriod returns the calendar month containing now, in now's location.
// Callers pass server-local time; there is no per-trainer timezone.
func MonthPeriod(now time.Time) Period {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Period{
		Start: start,
		End:   start.AddDate(0, 1, 0).Add(-time.Millisecond),
	}
}

// PreviousMonthPeriod returns the calendar month before the one containing now.
func PreviousMonthPeriod(now time.Time) Period {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return MonthPeriod(firstOfMonth.AddDate(0, -1, 0))
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Key identifies the period for locks and invoice numbers, e.g. "2025-06".
func (p Period) Key() string {
	return p.Start.Format("2006-01")
}

// IsInvoiceDay reports whether now falls on the trainer's monthly invoice
// day. Days past the end of a short month clamp to its last day.
func IsInvoiceDay(now time.Time, invoiceDay int) bool {
	if invoiceDay < 1 {
		invoiceDay = 1
	}
	lastDay := MonthPeriod(now).End.Day()
	if invoiceDay > lastDay {
		invoiceDay = lastDay
	}
	return now.Day() == invoiceDay
}

// CandidateWindow widens the period so appointments straddling its edges
// are still considered as group participants.
func (p Period) CandidateWindow() (time.Time, time.Time) {
	return p.Start.Add(-24 * time.Hour), p.End.Add(24 * time.Hour)
}

// WithLookback moves Start back by whole months, keeping End.
func (p Period) WithLookback(months int) Period {
	if months <= 0 {
		return p
	}
	return Period{Start: p.Start.AddDate(0, -months, 0), End: p.End}
}
