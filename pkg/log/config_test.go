package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"fatal":   zerolog.FatalLevel,
		"info":    zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}

	for in, want := range tests {
		require.Equal(t, want, parseLevel(in), in)
	}
}

func TestCtx(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Str(FieldNodeID, "node-a").Logger()

	ctx := WithLogger(context.Background(), logger)
	l := Ctx(ctx)
	l.Info().Msg("hello")

	req.Contains(buf.String(), `"node_id":"node-a"`)
	req.Contains(buf.String(), `"message":"hello"`)
}

func TestNewWithWriter(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer

	logger := NewWithWriter(Config{Level: "warn", ServiceName: "chat-relay", NodeID: "node-a"}, &buf)
	logger.Info().Msg("dropped")
	logger.Warn().Msg("kept")

	out := buf.String()
	req.NotContains(out, "dropped")
	req.Contains(out, `"service":"chat-relay"`)
	req.Contains(out, `"node_id":"node-a"`)
}

func TestWithClient(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	parent, cancel := context.WithCancel(WithLogger(context.Background(), zerolog.New(&buf)))
	cancel()

	ctx, l := WithClient(parent, "c-1", "alice")
	req.NoError(ctx.Err())
	l.Info().Msg("joined")

	req.Contains(buf.String(), `"client_id":"c-1"`)
	req.Contains(buf.String(), `"username":"alice"`)
}
