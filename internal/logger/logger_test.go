package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithAddsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("session_id", "abc").Info("review recorded", "item_id", int64(7))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "review recorded", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "abc", fields["session_id"])
	assert.Equal(t, int64(7), fields["item_id"])
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "PRODUCTION", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		assert.NotNil(t, l.SugaredLogger)
	}
}

func TestNopDoesNotPanic(t *testing.T) {
	l := NewNop()
	l.Debug("x")
	l.Warn("y", "k", 1)
	l.Error("z")
	l.Sync()
}
