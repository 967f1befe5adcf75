package gazetteer

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"ridetrace/internal/model"

	"github.com/qedus/osmpbf"
)

// isDock reports whether the OSM tags describe a bike-share dock.
func isDock(tags map[string]string) bool {
	return tags["amenity"] == "bicycle_rental" && tags["name"] != ""
}

// LoadOSM builds a gazetteer from the named bicycle_rental nodes of an OSM PBF extract.
func LoadOSM(r io.Reader) (*Gazetteer, error) {
	entries, err := ExtractDocks(r)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.New("no bicycle_rental nodes found in OSM extract")
	}
	return New(entries), nil
}

// ExtractDocks scans a PBF stream for named bicycle_rental nodes.
func ExtractDocks(r io.Reader) (map[string]model.GeoPoint, error) {
	decoder := osmpbf.NewDecoder(r)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)

	if err := decoder.Start(runtime.GOMAXPROCS(-1)); err != nil {
		return nil, fmt.Errorf("failed to start PBF decoder: %w", err)
	}

	entries := make(map[string]model.GeoPoint)
	for {
		object, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode PBF: %w", err)
		}
		node, ok := object.(*osmpbf.Node)
		if !ok || !isDock(node.Tags) {
			continue
		}
		entries[node.Tags["name"]] = model.GeoPoint{Lat: node.Lat, Lon: node.Lon}
	}
	return entries, nil
}
