// Package config loads application configuration from the environment into
// plain Go structs.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11`: the
// default `.env` file (if any) is loaded exactly once per process, then the
// environment is parsed into the target struct based on `env` field tags.
//
// # Usage
//
//	type WorkerConfig struct {
//	    PollInterval time.Duration `env:"NOTIFY_POLL_INTERVAL" envDefault:"30s"`
//	    BatchSize    int           `env:"NOTIFY_BATCH_SIZE" envDefault:"10"`
//	}
//
//	var cfg WorkerConfig
//	if err := config.Load(&cfg); err != nil {
//	    // handle error
//	}
//
// MustLoad panics on failure and is intended for process startup where a
// missing required variable should stop the service immediately.
package config
