// Package logger builds *slog.Logger instances with functional options and
// provides attribute helpers that keep key names consistent across workflows,
// services and the web adapter.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "useradmin"),
//	    logger.WithLevelName(cfg.LogLevel),
//	    logger.WithContextValue("request_id", middleware.RequestIDKey),
//	)
//	logger.SetAsDefault(log)
//
//	log.Debug("state transition",
//	    logger.Workflow("user-form"),
//	    logger.Transition("edit-valid", "loading"),
//	)
//
// Helpers such as Error and UserID return an empty slog.Attr for zero input, so
// they can be passed unconditionally.
package logger
