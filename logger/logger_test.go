package logger

import (
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		LOG_LEVEL_DEBUG: zerolog.DebugLevel,
		"warn":          zerolog.WarnLevel,
		LOG_LEVEL_ERROR: zerolog.ErrorLevel,
		LOG_LEVEL_FATAL: zerolog.FatalLevel,
		LOG_LEVEL_PANIC: zerolog.PanicLevel,
		LOG_LEVEL_INFO:  zerolog.InfoLevel,
		"unknown":       zerolog.InfoLevel,
	}
	for level, expected := range cases {
		assert.Equal(t, expected, ParseLevel(level), level)
	}
}

func TestHandleLogLine(t *testing.T) {
	wrapperLogger := zerolog.Nop()
	builder := strings.Builder{}

	foundPanic := handleLogLine([]byte(`{"level_name":"info"}`), false, &builder, wrapperLogger)
	assert.False(t, foundPanic)
	assert.Empty(t, builder.String())

	foundPanic = handleLogLine([]byte("panic: runtime error"), false, &builder, wrapperLogger)
	assert.True(t, foundPanic)
	foundPanic = handleLogLine([]byte("goroutine 1 [running]:"), foundPanic, &builder, wrapperLogger)
	assert.True(t, foundPanic)
	assert.Equal(t, "panic: runtime error\ngoroutine 1 [running]:\n", builder.String())
}
