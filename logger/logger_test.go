package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel(Debug))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(Info))
	assert.Equal(t, zapcore.WarnLevel, parseLevel(Warning))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel(Error))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestLogger_Fields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{Zap: zap.New(core)}

	l.Error("insert failed", errors.New("boom"),
		map[string]interface{}{"database_id": "alpha", "chunks": 3},
		map[string]interface{}{"chunks": 4},
	)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "insert failed", entries[0].Message)
		assert.Equal(t, "boom", ctx["error"])
		assert.Equal(t, "alpha", ctx["database_id"])
		assert.EqualValues(t, 4, ctx["chunks"])
	}
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(Config{Level: Debug})
	assert.NoError(t, err)
	assert.True(t, l.Zap.Core().Enabled(zapcore.DebugLevel))
}
