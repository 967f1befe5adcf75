package gazetteer

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ridetrace/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stationsJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-73.99744, 40.74238]}, "properties": {"name": "W 21 St & 6 Ave"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-73.98658, 40.76269]}, "properties": {"name": "W 52 St & 6 Ave"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-74.00315, 40.73265]}, "properties": {"name": "Bleecker St & 7 Ave S"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-74.0, 40.7]}, "properties": {"id": 7}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[-74.0, 40.7], [-74.1, 40.8]]}, "properties": {"name": "Not a dock"}}
  ]
}`

func TestLoadGeoJSON(t *testing.T) {
	g, err := LoadGeoJSON(strings.NewReader(stationsJSON))
	require.NoError(t, err)

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []string{"Bleecker St & 7 Ave S", "W 21 St & 6 Ave", "W 52 St & 6 Ave"}, g.Names())

	p, ok := g.Lookup("W 21 St & 6 Ave")
	require.True(t, ok)
	assert.Equal(t, model.GeoPoint{Lat: 40.74238, Lon: -73.99744}, p)

	_, ok = g.Lookup("w 21 st & 6 ave")
	assert.False(t, ok, "lookups are case-significant")
}

func TestLoadGeoJSONEmpty(t *testing.T) {
	_, err := LoadGeoJSON(strings.NewReader(`{"type":"FeatureCollection","features":[]}`))
	assert.Error(t, err)

	_, err = LoadGeoJSON(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestNewCopiesEntries(t *testing.T) {
	entries := map[string]model.GeoPoint{"A": {Lat: 1, Lon: 2}}
	g := New(entries)
	entries["B"] = model.GeoPoint{}
	entries["A"] = model.GeoPoint{Lat: 9, Lon: 9}

	assert.Equal(t, 1, g.Len())
	p, _ := g.Lookup("A")
	assert.Equal(t, model.GeoPoint{Lat: 1, Lon: 2}, p)
}

func TestNearest(t *testing.T) {
	g, err := LoadGeoJSON(strings.NewReader(stationsJSON))
	require.NoError(t, err)

	s, ok := g.Nearest(model.GeoPoint{Lat: 40.7625, Lon: -73.9866})
	require.True(t, ok)
	assert.Equal(t, "W 52 St & 6 Ave", s.Name)

	_, ok = New(nil).Nearest(model.GeoPoint{})
	assert.False(t, ok)
}

func TestNearestManyStations(t *testing.T) {
	// enough entries to force the bulk-loaded tree
	entries := make(map[string]model.GeoPoint)
	for i := 0; i < 200; i++ {
		entries[string(rune('A'+i%26))+string(rune('a'+i/26))] = model.GeoPoint{Lat: 40 + float64(i)*0.001, Lon: -74}
	}
	g := New(entries)
	s, ok := g.Nearest(model.GeoPoint{Lat: 40.1201, Lon: -74})
	require.True(t, ok)
	assert.InDelta(t, 40.120, s.Geo.Lat, 1e-9)
}

func TestFeatureCollectionRoundTrip(t *testing.T) {
	g, err := LoadGeoJSON(strings.NewReader(stationsJSON))
	require.NoError(t, err)

	data, err := json.Marshal(g.FeatureCollection())
	require.NoError(t, err)

	again, err := LoadGeoJSON(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, g.Names(), again.Names())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.json")
	require.NoError(t, os.WriteFile(path, []byte(stationsJSON), 0o644))

	g, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestIsDock(t *testing.T) {
	assert.True(t, isDock(map[string]string{"amenity": "bicycle_rental", "name": "Pier 40"}))
	assert.False(t, isDock(map[string]string{"amenity": "bicycle_rental"}))
	assert.False(t, isDock(map[string]string{"amenity": "cafe", "name": "Joe"}))
}
