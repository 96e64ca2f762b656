package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type twilioClient struct {
	client *twilio.RestClient
	config Config
}

// NewTwilioClient creates a Twilio-backed SMS sender.
// Credentials and sender number are required for runtime operation - this
// enforces explicit configuration rather than silent failures in production.
func NewTwilioClient(cfg Config) (SMSSender, error) {
	if cfg.TwilioAccountSID == "" {
		return nil, fmt.Errorf("%w: TwilioAccountSID is required", ErrInvalidConfig)
	}
	if cfg.TwilioAuthToken == "" {
		return nil, fmt.Errorf("%w: TwilioAuthToken is required", ErrInvalidConfig)
	}
	if cfg.SenderNumber == "" {
		return nil, fmt.Errorf("%w: SenderNumber is required", ErrInvalidConfig)
	}
	if !phoneRegex.MatchString(cfg.SenderNumber) {
		return nil, fmt.Errorf("%w: SenderNumber must be an E.164 phone number", ErrInvalidConfig)
	}

	return &twilioClient{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		}),
		config: cfg,
	}, nil
}

// MustNewTwilioClient creates a Twilio client that panics on invalid config.
func MustNewTwilioClient(cfg Config) SMSSender {
	client, err := NewTwilioClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// SendSMS implements SMSSender using Twilio's Messages API.
// The Twilio SDK does not accept a context, so cancellation is honored only
// between the validation step and the network call.
func (c *twilioClient) SendSMS(ctx context.Context, params SendSMSParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", errors.Join(ErrFailedToSendSMS, err)
	}

	msgParams := &twilioapi.CreateMessageParams{}
	msgParams.SetTo(params.SendTo)
	msgParams.SetFrom(c.config.SenderNumber)
	msgParams.SetBody(params.Message)

	resp, err := c.client.Api.CreateMessage(msgParams)
	if err != nil {
		return "", errors.Join(ErrFailedToSendSMS, err)
	}
	if resp.Sid == nil {
		return "", errors.Join(ErrFailedToSendSMS, errors.New("twilio response missing message sid"))
	}
	return *resp.Sid, nil
}
