// Package pg provides the PostgreSQL layer used by the backoffice services:
// connection pooling on pgx/v5, embedded goose migrations, health checks, and
// error classification helpers.
//
// The API surface is deliberately small. Config is populated from environment
// variables, Connect retries until the database is reachable (or gives up),
// and Migrate applies schema migrations from an embedded filesystem before the
// service starts serving traffic.
//
// # Usage
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, notification.Migrations, "migrations", logger); err != nil {
//	    return err
//	}
//
// Error helpers such as IsNotFoundError and IsDuplicateKeyError keep query
// code free of driver-specific error inspection.
package pg
