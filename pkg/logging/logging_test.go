package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", RequestID(ctx))

	ctx = context.WithValue(ctx, ReqIDKey, "abc-123")
	assert.Equal(t, "abc-123", RequestID(ctx))
}

func TestCallerHook(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Hook(CallerHook{})

	logger.Info().Msg("where")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Contains(t, line, zerolog.CallerFieldName)
}
