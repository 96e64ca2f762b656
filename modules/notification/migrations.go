package notification

import "embed"

// Migrations holds the goose schema migrations for the notification tables,
// embedded so the deployable stays self-contained. Apply them with
// pg.Migrate(ctx, pool, cfg, notification.Migrations, "migrations", log).
//
//go:embed migrations/*.sql
var Migrations embed.FS
