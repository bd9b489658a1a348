package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{AppEnv: "staging", LogFormat: "json"}, &buf)
	logger.Debug("quotation created", "quotation_number", "QT-2026-0001")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "packquote", entry["service"])
	assert.Equal(t, "staging", entry["env"])
	assert.Equal(t, "QT-2026-0001", entry["quotation_number"])
}

func TestNewLoggerProductionSuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{AppEnv: "production"}, &buf)
	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.Info("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "env=production")
}
