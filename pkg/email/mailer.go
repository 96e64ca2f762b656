package email

import (
	"context"
	"fmt"
	"regexp"
)

// EmailSender represents an interface for sending emails.
// SendEmail returns the provider's message ID for the accepted message.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) (string, error)
}

// SendEmailParams represents the parameters for sending an email.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`        // Email address of the recipient
	Subject  string `json:"subject"`        // Subject of the email
	BodyHTML string `json:"body_html"`      // HTML body of the email
	BodyText string `json:"body_text"`      // Optional plain-text fallback body
	Tag      string `json:"tag,omitempty"`  // Optional categorization tag for analytics
}

// emailRegex is intentionally permissive; providers do the authoritative
// validation, this only rejects obviously broken addresses before a network call.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks the parameters required for any provider to accept the message.
func (p SendEmailParams) Validate() error {
	if p.SendTo == "" {
		return fmt.Errorf("%w: SendTo is required", ErrInvalidParams)
	}
	if !emailRegex.MatchString(p.SendTo) {
		return fmt.Errorf("%w: SendTo must be a valid email address", ErrInvalidParams)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: Subject is required", ErrInvalidParams)
	}
	if p.BodyHTML == "" && p.BodyText == "" {
		return fmt.Errorf("%w: a BodyHTML or BodyText is required", ErrInvalidParams)
	}
	return nil
}
