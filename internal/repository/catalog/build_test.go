package catalog

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/loan-match/backend/internal/config"
)

func TestBuildMemoryCatalog(t *testing.T) {
	store, closer, err := Build(context.Background(), config.CatalogConfig{Driver: config.DriverMemory}, config.RedisConfig{}, zerolog.New(io.Discard))
	require.NoError(t, err)
	defer closer()

	items, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestBuildRejectsUnknownDriver(t *testing.T) {
	_, _, err := Build(context.Background(), config.CatalogConfig{Driver: "oracle", DSN: "x"}, config.RedisConfig{}, zerolog.New(io.Discard))
	assert.Error(t, err)
}
