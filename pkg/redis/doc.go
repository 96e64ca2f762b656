// Package redis provides Redis connectivity for the backoffice services.
//
// Connect opens a go-redis client from an env-driven Config with bounded
// startup retries; Healthcheck exposes a func(context.Context) error probe for
// health endpoints. The notification subsystem uses Redis for the SMS opt-out
// list, which must answer lookups quickly on every dispatch.
package redis
