package notification

import (
	"context"

	"github.com/meridianvault/backoffice/pkg/email"
	"github.com/meridianvault/backoffice/pkg/sms"
)

// EmailEntrySender delivers one email queue entry through a transport.
// Implementations report the provider message ID on success; any error is
// consumed by the processor's retry state machine, whether it came from
// parameter validation or the wire.
type EmailEntrySender interface {
	SendEmailEntry(ctx context.Context, e *EmailQueueEntry) (string, error)
}

// SMSEntrySender delivers one SMS queue entry through a transport.
type SMSEntrySender interface {
	SendSMSEntry(ctx context.Context, e *SMSQueueEntry) (string, error)
}

// emailEntrySender adapts pkg/email transports to queue entries.
type emailEntrySender struct {
	transport email.EmailSender
}

// NewEmailEntrySender wraps an email transport (Postmark in production,
// DevSender locally) for use by the Processor.
func NewEmailEntrySender(transport email.EmailSender) EmailEntrySender {
	return &emailEntrySender{transport: transport}
}

func (s *emailEntrySender) SendEmailEntry(ctx context.Context, e *EmailQueueEntry) (string, error) {
	return s.transport.SendEmail(ctx, email.SendEmailParams{
		SendTo:   e.Destination,
		Subject:  e.Subject,
		BodyHTML: e.BodyHTML,
		BodyText: e.BodyText,
	})
}

// smsEntrySender adapts pkg/sms transports to queue entries. Destination and
// body validation happens inside the transport; a validation reject surfaces
// as a failed attempt exactly like a downstream error.
type smsEntrySender struct {
	transport sms.SMSSender
}

// NewSMSEntrySender wraps an SMS transport (Twilio in production, DevSender
// locally) for use by the Processor.
func NewSMSEntrySender(transport sms.SMSSender) SMSEntrySender {
	return &smsEntrySender{transport: transport}
}

func (s *smsEntrySender) SendSMSEntry(ctx context.Context, e *SMSQueueEntry) (string, error) {
	return s.transport.SendSMS(ctx, sms.SendSMSParams{
		SendTo:  e.Destination,
		Message: e.Message,
	})
}
