// Package sms provides a provider-agnostic interface for sending the text
// messages produced by the notification subsystem, with built-in support for
// Twilio.
//
// The package mirrors pkg/email: the delivery pipeline depends only on the
// SMSSender interface, parameters are validated before any network call, and
// failures surface through sentinel errors. Two implementations ship:
//   - TwilioClient for production delivery
//   - DevSender for local development (logs messages instead of sending)
//
// # Usage
//
//	cfg := sms.Config{
//	    TwilioAccountSID: "ACxxxx",
//	    TwilioAuthToken:  "token",
//	    SenderNumber:     "+15005550006",
//	}
//
//	sender, err := sms.NewTwilioClient(cfg)
//	if err != nil {
//	    return err
//	}
//
//	msgID, err := sender.SendSMS(ctx, sms.SendSMSParams{
//	    SendTo:  "+15551234567",
//	    Message: "Your SKR-0001 has been issued.",
//	})
//
// # Validation
//
// Destinations must match an E.164-style pattern and bodies must fit a single
// 160-character segment. Both checks fail before the provider is contacted:
//
//	if errors.Is(err, sms.ErrInvalidParams) { ... } // caller bug, not retryable
//	if errors.Is(err, sms.ErrFailedToSendSMS) { ... } // transport failure
package sms
