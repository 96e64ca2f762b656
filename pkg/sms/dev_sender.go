package sms

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// DevSender implements SMSSender for local development.
// It logs messages instead of sending them through an SMS provider.
type DevSender struct {
	log *slog.Logger
}

// NewDevSender creates a development SMS sender that logs outbound messages.
// A nil logger falls back to slog.Default().
func NewDevSender(log *slog.Logger) SMSSender {
	if log == nil {
		log = slog.Default()
	}
	return &DevSender{log: log}
}

// SendSMS validates the message and logs it, returning a synthetic message ID.
func (d *DevSender) SendSMS(ctx context.Context, params SendSMSParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	msgID := "dev-" + uuid.NewString()
	d.log.InfoContext(ctx, "sms send (dev)",
		slog.String("to", params.SendTo),
		slog.String("message", params.Message),
		slog.String("message_id", msgID),
	)
	return msgID, nil
}
