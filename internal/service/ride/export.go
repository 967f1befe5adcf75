package ride

import (
	"ridetrace/internal/model"
	"ridetrace/internal/service/diagnostics"

	"github.com/paulmach/orb/geojson"
)

// FeatureCollection gathers the routes of rides into one GeoJSON collection.
// Rides without a geo route are skipped.
func FeatureCollection(rides []*model.Ride) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range rides {
		if r == nil || len(r.GeoRoute) == 0 {
			continue
		}
		fc.Append(r.Feature())
	}
	return fc
}

// BatchCollection is FeatureCollection over the successful items of a batch.
func BatchCollection(items []BatchItem) *geojson.FeatureCollection {
	rides := make([]*model.Ride, 0, len(items))
	for _, it := range items {
		if it.Err == nil {
			rides = append(rides, it.Ride)
		}
	}
	return FeatureCollection(rides)
}

// Center is the mean of every route point of rides, used to centre a heat map.
func Center(rides []*model.Ride) (model.GeoPoint, bool) {
	var all model.GeoRoute
	for _, r := range rides {
		if r != nil {
			all = append(all, r.GeoRoute...)
		}
	}
	if len(all) == 0 {
		return model.GeoPoint{}, false
	}
	return diagnostics.Centroid(all), true
}
