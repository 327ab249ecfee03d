package xlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Aatch/dynalist/lib/infra"
)

type memAsOutWriter struct {
	buf bytes.Buffer
}

func (w *memAsOutWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memAsOutWriter) Sync() error { return nil }

func (w *memAsOutWriter) String() string { return w.buf.String() }

func TestXLoggerJSONOut(t *testing.T) {
	mem := &memAsOutWriter{}
	writerMap[testMemAsOut] = mem
	defer delete(writerMap, testMemAsOut)

	logger := NewXLogger(
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerEncoder(JSON),
		WithXLoggerWriter(testMemAsOut),
	)
	logger.Debug("node slab grown", zap.Uint32("pages", 2))
	logger.Info("arena ready")
	logger.Warn("close with live nodes", zap.Int64("live", 3))
	logger.Error(infra.NewErrorStack("slab exhausted"), "push back failed")
	logger.Logf(zapcore.InfoLevel, "recycled %d slots", 7)
	require.NoError(t, logger.Sync())

	out := mem.String()
	require.Contains(t, out, "node slab grown")
	require.Contains(t, out, "\"pages\":2")
	require.Contains(t, out, "arena ready")
	require.Contains(t, out, "\"live\":3")
	require.Contains(t, out, "push back failed")
	require.Contains(t, out, "slab exhausted")
	require.Contains(t, out, "recycled 7 slots")
}

func TestXLoggerErrorStackFrames(t *testing.T) {
	mem := &memAsOutWriter{}
	writerMap[testMemAsOut] = mem
	defer delete(writerMap, testMemAsOut)

	logger := NewXLogger(
		WithXLoggerLevel(LogLevelError),
		WithXLoggerEncoder(JSON),
		WithXLoggerWriter(testMemAsOut),
	)
	err := infra.WrapErrorStackWithMessage(infra.NewErrorStack("no free slot"), "insert after")
	logger.ErrorStack(err, "op aborted")
	require.NoError(t, logger.Sync())

	out := mem.String()
	require.Contains(t, out, "op aborted")
	require.Contains(t, out, "insert after: no free slot")
	require.Contains(t, out, "errorStack")
	require.Contains(t, out, "zap_test.go")
}

func TestXLoggerIncreaseLogLevel(t *testing.T) {
	mem := &memAsOutWriter{}
	writerMap[testMemAsOut] = mem
	defer delete(writerMap, testMemAsOut)

	logger := NewXLogger(
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerEncoder(JSON),
		WithXLoggerWriter(testMemAsOut),
	)
	logger.IncreaseLogLevel(zapcore.WarnLevel)
	logger.Debug("invisible")
	logger.Info("invisible")
	logger.Warn("visible")
	require.NoError(t, logger.Sync())

	out := mem.String()
	assert.False(t, strings.Contains(out, "invisible"))
	assert.True(t, strings.Contains(out, "visible"))
}

func TestXLoggerBadOptions(t *testing.T) {
	require.Panics(t, func() {
		_ = NewXLogger(WithXLoggerWriter(_writerMax))
	})
	require.Panics(t, func() {
		_ = NewXLogger(WithXLoggerEncoder(_encMax))
	})
}

func TestLogLevelMapping(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, LogLevelDebug.zapLevel())
	assert.Equal(t, zapcore.InfoLevel, LogLevelInfo.zapLevel())
	assert.Equal(t, zapcore.WarnLevel, LogLevelWarn.zapLevel())
	assert.Equal(t, zapcore.ErrorLevel, LogLevelError.zapLevel())
	assert.Equal(t, zapcore.DebugLevel, LogLevel("TRACE").zapLevel())

	assert.Equal(t, zapcore.InfoLevel, getLogLevelOrDefault("info"))
	assert.Equal(t, zapcore.WarnLevel, getLogLevelOrDefault("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, getLogLevelOrDefault("Error"))
	assert.Equal(t, zapcore.DebugLevel, getLogLevelOrDefault(""))
	assert.Equal(t, zapcore.DebugLevel, getLogLevelOrDefault("whatever"))
}
