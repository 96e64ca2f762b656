package email

// Config carries the outbound email settings. The Postmark tokens may be left
// empty when a DevSender stands in for the real transport; SenderEmail is the
// From address on every delivery and SupportEmail receives replies, so both
// are always required.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
}
