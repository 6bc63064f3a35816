package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactsSecretsAndHashesIdentities(t *testing.T) {
	t.Setenv("LOG_REDACTION_ENABLED", "")
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core)

	log.Info("attempt", "gateway_token", "abc", "player_id", "p-1", "score", 60)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, redacted, fields["gateway_token"])
	assert.Contains(t, fields["player_id"], "hash:")
	assert.NotEqual(t, "p-1", fields["player_id"])
	assert.EqualValues(t, 60, fields["score"])
}

func TestRedactionCanBeDisabled(t *testing.T) {
	t.Setenv("LOG_REDACTION_ENABLED", "off")
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core).With("service", "test")

	log.Warn("raw", "user_id", "u-1")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "u-1", fields["user_id"])
	assert.Equal(t, "test", fields["service"])
}
