// Package pg bootstraps the PostgreSQL backend on top of pgx/v5.
//
// Config is read from PG_* environment variables. Connect opens a pool and
// retries with a growing pause until the server answers a ping. Migrate runs
// goose migrations from an fs.FS, so schema files can be embedded next to the
// code that queries them. Healthcheck returns a probe for /healthz.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//	if err := pg.Migrate(ctx, pool, users.Migrations, cfg, log); err != nil {
//		return err
//	}
package pg
