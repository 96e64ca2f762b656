package sms

// Config holds SMS service configuration.
// The Twilio credentials are optional to support development environments
// where SMS sending is disabled; SenderNumber establishes the sender identity
// for all outbound messages.
type Config struct {
	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	SenderNumber     string `env:"SMS_SENDER_NUMBER,required"`
}
