package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/useradmin/pkg/logger"
)

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestTransition(t *testing.T) {
	attr := logger.Transition("loading", "edit-pristine")
	require.Equal(t, "transition", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "from", g[0].Key)
	assert.Equal(t, "loading", g[0].Value.String())
	assert.Equal(t, "to", g[1].Key)
	assert.Equal(t, "edit-pristine", g[1].Value.String())
}

func TestSimpleAttrs(t *testing.T) {
	tests := []struct {
		attr slog.Attr
		key  string
		want any
	}{
		{logger.Component("web"), "component", "web"},
		{logger.Workflow("user-list"), "workflow", "user-list"},
		{logger.Phase("loading"), "phase", "loading"},
		{logger.Event("submit"), "event", "submit"},
		{logger.UserID("doctor-01"), "user_id", "doctor-01"},
		{logger.SessionID("s1"), "session_id", "s1"},
		{logger.RequestID("r1"), "request_id", "r1"},
		{logger.Duration(time.Second), "duration", time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.key, tt.attr.Key)
		assert.Equal(t, tt.want, tt.attr.Value.Any())
	}

	assert.True(t, logger.UserID("").Equal(slog.Attr{}))
	assert.True(t, logger.SessionID("").Equal(slog.Attr{}))
	assert.True(t, logger.RequestID("").Equal(slog.Attr{}))
}
