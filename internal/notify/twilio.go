package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/trainerdesk/backend/internal/config"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/logger"
)

// TwilioSender sends SMS through Twilio's Messages REST resource. 5xx and
// connection failures are retried by the HTTP client before reporting.
type TwilioSender struct {
	client     *retryablehttp.Client
	baseURL    string
	accountSID string
	authToken  string
	from       string
	logger     *logger.Logger
}

type twilioMessage struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	Message      string `json:"message"`
}

func NewTwilioSender(cfg config.TwilioConfig, log *logger.Logger) *TwilioSender {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = retryLogger{log}

	return &TwilioSender{
		client:     client,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.From,
		logger:     log,
	}
}

func (s *TwilioSender) Send(ctx context.Context, recipient string, msg Message) SendResult {
	form := url.Values{}
	form.Set("To", recipient)
	form.Set("From", s.from)
	form.Set("Body", msg.Text)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return SendResult{Err: ierr.WithError(err).Mark(ierr.ErrSystem)}
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Errorw("[NOTIFY] twilio request failed", "recipient", recipient, "error", err)
		return SendResult{
			Err: ierr.WithError(err).
				WithHint("SMS provider unavailable").
				Mark(ierr.ErrTransientProvider),
		}
	}
	defer resp.Body.Close()

	var body twilioMessage
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)

	if resp.StatusCode >= 300 {
		detail := body.Message
		if detail == "" {
			detail = body.ErrorMessage
		}
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		if decodeErr != nil {
			s.logger.Warnw("[NOTIFY] unreadable twilio error body", "status", resp.StatusCode, "error", decodeErr)
		}
		s.logger.Errorw("[NOTIFY] twilio rejected message",
			"recipient", recipient,
			"status", resp.StatusCode,
			"detail", detail,
		)
		builder := ierr.NewError(fmt.Sprintf("twilio returned %d: %s", resp.StatusCode, detail)).
			WithReportableDetails(map[string]any{"status": resp.StatusCode})
		// 429 is throttling; any other 4xx is a bad request that will not
		// succeed on retry.
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return SendResult{Err: builder.Mark(ierr.ErrTransientProvider)}
		}
		return SendResult{Err: builder.Mark(ierr.ErrValidation)}
	}

	if decodeErr != nil {
		s.logger.Warnw("[NOTIFY] twilio accepted message with unreadable body", "status", resp.StatusCode, "error", decodeErr)
	}
	s.logger.Infow("[NOTIFY] twilio accepted message", "sid", body.SID, "recipient", recipient)
	return SendResult{Success: true, ExternalID: body.SID}
}

// retryLogger adapts the zap logger to retryablehttp.LeveledLogger.
type retryLogger struct {
	l *logger.Logger
}

func (r retryLogger) Error(msg string, kv ...any) { r.l.Errorw("[NOTIFY] "+msg, kv...) }
func (r retryLogger) Warn(msg string, kv ...any)  { r.l.Warnw("[NOTIFY] "+msg, kv...) }
func (r retryLogger) Info(msg string, kv ...any)  { r.l.Debugw("[NOTIFY] "+msg, kv...) }
func (r retryLogger) Debug(msg string, kv ...any) { r.l.Debugw("[NOTIFY] "+msg, kv...) }
