package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Workflow records the workflow (state store) name under the key "workflow".
func Workflow(name string) slog.Attr {
	return slog.String("workflow", name)
}

// Phase records the current phase of a workflow under the key "phase".
func Phase(name string) slog.Attr {
	return slog.String("phase", name)
}

// Transition groups the source and target phase of a transition.
func Transition(from, to string) slog.Attr {
	return slog.Group("transition",
		slog.String("from", from),
		slog.String("to", to),
	)
}

// Event records the event or action name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// UserID records the managed user identifier under the key "user_id".
// If id is empty, it returns an empty Attr.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// SessionID records the screen session identifier under the key "session_id".
func SessionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("session_id", id)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
