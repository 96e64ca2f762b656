package sms

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// MaxMessageLength is the single-segment limit enforced on message bodies.
// Longer content must be truncated by the caller before it reaches a sender.
const MaxMessageLength = 160

// SMSSender represents an interface for sending text messages.
// SendSMS returns the provider's message ID for the accepted message.
type SMSSender interface {
	SendSMS(ctx context.Context, params SendSMSParams) (string, error)
}

// SendSMSParams represents the parameters for sending a text message.
type SendSMSParams struct {
	SendTo  string `json:"send_to"` // Destination phone number in E.164 format
	Message string `json:"message"` // Message body, at most MaxMessageLength characters
}

// phoneRegex accepts E.164-style numbers with an optional leading plus.
var phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// Validate checks the parameters required for any provider to accept the message.
func (p SendSMSParams) Validate() error {
	if p.SendTo == "" {
		return fmt.Errorf("%w: SendTo is required", ErrInvalidParams)
	}
	if !phoneRegex.MatchString(p.SendTo) {
		return fmt.Errorf("%w: SendTo must be an E.164 phone number", ErrInvalidParams)
	}
	if p.Message == "" {
		return fmt.Errorf("%w: Message is required", ErrInvalidParams)
	}
	if utf8.RuneCountInString(p.Message) > MaxMessageLength {
		return fmt.Errorf("%w: Message exceeds %d characters", ErrInvalidParams, MaxMessageLength)
	}
	return nil
}

// ValidPhone reports whether the given destination passes the same check
// used by Validate. Exposed so dispatch-time validation can reject bad
// destinations before anything is queued.
func ValidPhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}
