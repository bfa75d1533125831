// Package notify delivers email and SMS messages through third-party
// providers.
package notify

import (
	"context"

	"github.com/trainerdesk/backend/internal/logger"
)

type Message struct {
	Subject string
	Text    string
	HTML    string
}

// SendResult is the outcome of one delivery attempt. Err is marked
// ErrTransientProvider when the attempt may be retried.
type SendResult struct {
	Success    bool
	ExternalID string
	Err        error
}

type Sender interface {
	Send(ctx context.Context, recipient string, msg Message) SendResult
}

// LogSender writes messages to the log instead of delivering them. It is
// used when no provider credentials are configured.
type LogSender struct {
	channel string
	logger  *logger.Logger
}

func NewLogSender(channel string, log *logger.Logger) *LogSender {
	return &LogSender{channel: channel, logger: log}
}

func (s *LogSender) Send(ctx context.Context, recipient string, msg Message) SendResult {
	s.logger.Warnw("[NOTIFY] provider not configured, message logged only",
		"channel", s.channel,
		"recipient", recipient,
		"subject", msg.Subject,
	)
	return SendResult{Success: true}
}
