package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmanager-api/pkg/logger"
)

func TestNew_JSONConNivel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "warn", Output: &buf})

	l.Info().Msg("descartado")
	l.WithComponent("gateway").Warn().Str("product_id", "p1").Msg("rechazado")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "gateway", entry["component"])
	assert.Equal(t, "p1", entry["product_id"])
}

func TestNilLogger_NoEntraEnPanico(t *testing.T) {
	var l *logger.Logger
	assert.NotPanics(t, func() {
		l.Info().Msg("nada")
		l.WithComponent("x").Error().Msg("nada")
	})
	assert.NotPanics(t, func() { logger.Nop().Warn().Msg("nada") })
}
