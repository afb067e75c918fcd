// Package httpserver runs an HTTP server with graceful shutdown.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// Run listens before returning control to start hooks, serves until ctx is
// done or the process gets SIGINT or SIGTERM, and then shuts down within the
// configured timeout. HealthCheckHandler serves liveness and readiness probes
// backed by named checks.
package httpserver
