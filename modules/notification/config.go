package notification

import "time"

// Config holds the tunables of the queue processor and scheduler.
type Config struct {
	PollInterval time.Duration `env:"NOTIFY_POLL_INTERVAL" envDefault:"30s"` // PollInterval is the period between processing passes.
	BatchSize    int           `env:"NOTIFY_BATCH_SIZE" envDefault:"10"`     // BatchSize is the maximum number of entries processed per channel per pass.
}

// withDefaults backfills zero values so a hand-built Config behaves like an
// env-loaded one.
func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 30 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	return c
}
