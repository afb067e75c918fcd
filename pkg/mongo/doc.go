// Package mongo connects to MongoDB through mongo-driver/v2.
//
// Config is read from MONGODB_* environment variables. New retries until the
// deployment answers a ping; NewWithDatabase also selects cfg.Database.
// Healthcheck returns a probe for /healthz.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(context.Background())
package mongo
