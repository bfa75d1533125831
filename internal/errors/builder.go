package errors

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

const jsonDetailPrefix = "__json__:"

// ErrorBuilder chains context onto an error. Mark must be the last call.
type ErrorBuilder struct {
	err error
}

func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.New(msg)}
}

func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// WithMessage adds internal context.
func (b *ErrorBuilder) WithMessage(msg string) *ErrorBuilder {
	b.err = errors.WithMessage(b.err, msg)
	return b
}

// WithHint adds a message that is safe to show to API callers.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err = errors.WithHint(b.err, hint)
	return b
}

func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.err = errors.WithHintf(b.err, format, args...)
	return b
}

func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	marshaled, err := json.Marshal(details)
	if err != nil {
		return b
	}
	b.err = errors.WithSafeDetails(b.err, jsonDetailPrefix+"%s", errors.Safe(string(marshaled)))
	return b
}

func (b *ErrorBuilder) Mark(reference error) error {
	b.err = errors.Mark(b.err, reference)
	return b.err
}

// ReportableDetails collects every map attached with WithReportableDetails.
func ReportableDetails(err error) map[string]any {
	var details map[string]any
	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			if !strings.HasPrefix(payload, jsonDetailPrefix) {
				continue
			}
			var m map[string]any
			if json.Unmarshal([]byte(payload[len(jsonDetailPrefix):]), &m) != nil {
				continue
			}
			if details == nil {
				details = make(map[string]any, len(m))
			}
			for k, v := range m {
				details[k] = v
			}
		}
	}
	return details
}
