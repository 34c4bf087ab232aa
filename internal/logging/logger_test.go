package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "tabletop", "production", "debug")
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	log.Info().Str("game_id", "g1").Msg("created")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "tabletop", line["service"])
	assert.Equal(t, "g1", line["game_id"])
	assert.Equal(t, "created", line["message"])
}

func TestFromContext_FallsBackToGlobal(t *testing.T) {
	assert.Equal(t, &log.Logger, FromContext(context.Background()))

	l := zerolog.New(&bytes.Buffer{}).With().Str("request_id", "r1").Logger()
	ctx := l.WithContext(context.Background())
	assert.NotEqual(t, &log.Logger, FromContext(ctx))
}
