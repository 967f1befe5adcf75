package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ridetrace/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stationsJSON = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"name":"W 21 St & 6 Ave"},"geometry":{"type":"Point","coordinates":[-73.9936,40.7418]}},
{"type":"Feature","properties":{"name":"W 52 St & 6 Ave"},"geometry":{"type":"Point","coordinates":[-73.9802,40.7616]}}
]}`

func TestNewWithoutStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.json")
	require.NoError(t, os.WriteFile(path, []byte(stationsJSON), 0o644))

	cfg := config.Default()
	cfg.StationsPath = path
	a, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Redis)
	assert.Nil(t, a.DB)
	assert.Equal(t, 2, a.Service.Gazetteer().Len())
}

func TestNewMissingStations(t *testing.T) {
	cfg := config.Default()
	cfg.StationsPath = filepath.Join(t.TempDir(), "missing.json")
	_, err := New(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewBadRedisURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.json")
	require.NoError(t, os.WriteFile(path, []byte(stationsJSON), 0o644))

	cfg := config.Default()
	cfg.StationsPath = path
	cfg.RedisUrl = "not-a-url"
	_, err := New(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestConfigEcho(t *testing.T) {
	cfg := config.Default()
	cfg.DBUrl = "postgres://secret@localhost/db"
	echo := ConfigEcho(cfg)
	assert.Equal(t, "enabled", echo["db"])
	assert.Equal(t, "disabled", echo["redis"])
	assert.NotContains(t, echo["db"], "secret")
}
