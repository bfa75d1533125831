package notify

import (
	"context"

	"github.com/resend/resend-go/v2"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/logger"
)

// ResendSender sends email through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	logger *logger.Logger
}

func NewResendSender(apiKey, from string, log *logger.Logger) *ResendSender {
	return NewResendSenderWithClient(resend.NewClient(apiKey), from, log)
}

func NewResendSenderWithClient(client *resend.Client, from string, log *logger.Logger) *ResendSender {
	return &ResendSender{client: client, from: from, logger: log}
}

func (s *ResendSender) Send(ctx context.Context, recipient string, msg Message) SendResult {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{recipient},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.logger.Errorw("[NOTIFY] resend send failed", "recipient", recipient, "subject", msg.Subject, "error", err)
		return SendResult{
			Err: ierr.WithError(err).
				WithHint("Email provider unavailable").
				Mark(ierr.ErrTransientProvider),
		}
	}

	s.logger.Infow("[NOTIFY] resend sent", "message_id", sent.Id, "recipient", recipient)
	return SendResult{Success: true, ExternalID: sent.Id}
}
