// Package gazetteer holds the immutable station name to coordinate table.
package gazetteer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ridetrace/internal/model"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Gazetteer maps station display names to coordinates. It is never mutated
// after construction and is safe to share between goroutines.
type Gazetteer struct {
	points map[string]model.GeoPoint
	names  []string
	index  *rtreego.Rtree
}

// New builds a gazetteer from a name to coordinate map. The map is copied.
func New(entries map[string]model.GeoPoint) *Gazetteer {
	g := &Gazetteer{
		points: make(map[string]model.GeoPoint, len(entries)),
		names:  make([]string, 0, len(entries)),
	}
	spatials := make([]rtreego.Spatial, 0, len(entries))
	for name, p := range entries {
		g.points[name] = p
		g.names = append(g.names, name)
	}
	sort.Strings(g.names)
	for _, name := range g.names {
		spatials = append(spatials, &model.StationSpatial{Station: model.Station{Name: name, Geo: g.points[name]}})
	}
	g.index = rtreego.NewTree(2, 25, 50, spatials...)
	return g
}

// Len returns the number of stations.
func (g *Gazetteer) Len() int {
	return len(g.names)
}

// Names returns the station names in sorted order. The slice must not be modified.
func (g *Gazetteer) Names() []string {
	return g.names
}

// Lookup returns the coordinate stored under the exact name.
func (g *Gazetteer) Lookup(name string) (model.GeoPoint, bool) {
	p, ok := g.points[name]
	return p, ok
}

// Nearest returns the station closest to p in degree space.
func (g *Gazetteer) Nearest(p model.GeoPoint) (model.Station, bool) {
	if g.Len() == 0 {
		return model.Station{}, false
	}
	s, ok := g.index.NearestNeighbor(rtreego.Point{p.Lon, p.Lat}).(*model.StationSpatial)
	if !ok || s == nil {
		return model.Station{}, false
	}
	return s.Station, true
}

// LoadFile loads a gazetteer from GeoJSON (.json, .geojson) or OSM PBF (.pbf).
func LoadFile(path string) (*Gazetteer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open gazetteer %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pbf":
		return LoadOSM(f)
	default:
		return LoadGeoJSON(f)
	}
}

// LoadGeoJSON reads a FeatureCollection of Point features carrying a "name"
// property. Features without a name or a Point geometry are skipped; on
// duplicate names the last feature wins.
func LoadGeoJSON(r io.Reader) (*Gazetteer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read gazetteer: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gazetteer GeoJSON: %w", err)
	}

	entries := make(map[string]model.GeoPoint, len(fc.Features))
	for _, f := range fc.Features {
		name, _ := f.Properties["name"].(string)
		if name == "" {
			continue
		}
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		entries[name] = model.GeoPointFromOrb(pt)
	}
	if len(entries) == 0 {
		return nil, errors.New("gazetteer contains no named point features")
	}
	return New(entries), nil
}

// FeatureCollection exports the gazetteer as GeoJSON points, sorted by name.
func (g *Gazetteer) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, name := range g.names {
		f := geojson.NewFeature(g.points[name].Point())
		f.Properties["name"] = name
		fc.Append(f)
	}
	return fc
}
