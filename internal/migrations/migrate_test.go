package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	names, err := Files()
	require.NoError(t, err)
	require.Equal(t, []string{"00001_system_settings.sql", "00002_quotations.sql"}, names)

	for _, name := range names {
		body, err := files.ReadFile("sql/" + name)
		require.NoError(t, err)
		text := string(body)
		assert.Contains(t, text, "-- +goose Up", name)
		assert.Contains(t, text, "-- +goose Down", name)
		assert.Less(t, strings.Index(text, "-- +goose Up"), strings.Index(text, "-- +goose Down"), name)
	}
}
