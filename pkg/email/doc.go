// Package email provides a provider-agnostic interface for sending the
// transactional emails produced by the notification subsystem, with built-in
// support for Postmark.
//
// The package is built around the EmailSender interface so the delivery
// pipeline never depends on a concrete provider. Two implementations ship:
//   - PostmarkClient for production delivery with open tracking
//   - DevSender for local development (saves emails to disk)
//
// Both validate parameters before sending and report failures through
// sentinel errors, so the queue processor can treat any transport uniformly.
//
// # Usage
//
//	cfg := email.Config{
//	    PostmarkServerToken:  "server-token",
//	    PostmarkAccountToken: "account-token",
//	    SenderEmail:          "noreply@example.com",
//	    SupportEmail:         "support@example.com",
//	}
//
//	sender, err := email.NewPostmarkClient(cfg)
//	if err != nil {
//	    return err
//	}
//
//	msgID, err := sender.SendEmail(ctx, email.SendEmailParams{
//	    SendTo:   "user@example.com",
//	    Subject:  "SKR Issued - SKR-0001",
//	    BodyHTML: htmlBody,
//	    BodyText: textBody, // optional plain-text fallback
//	    Tag:      "skr_issued",
//	})
//
// The returned message ID is the provider's identifier for the accepted
// message and is persisted by callers for delivery bookkeeping.
//
// # Error Handling
//
//	if errors.Is(err, email.ErrInvalidParams) { ... } // caller bug, not retryable
//	if errors.Is(err, email.ErrFailedToSendEmail) { ... } // transport failure
package email
