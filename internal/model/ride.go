package model

import (
	"encoding/json"
	"time"

	"ridetrace/internal/util"

	"github.com/paulmach/orb/geojson"
	"gorm.io/gorm"
)

// Charge is one line item of a receipt.
type Charge struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// Ride is a receipt together with its reconstructed route.
type Ride struct {
	ID            string   `json:"id"`
	ReceiptNumber string   `json:"receipt_number,omitempty"`
	Date          string   `json:"date,omitempty"`
	Time          string   `json:"time,omitempty"`
	StartTime     string   `json:"start_time,omitempty"`
	EndTime       string   `json:"end_time,omitempty"`
	StartStation  string   `json:"start_station"`
	EndStation    string   `json:"end_station"`
	Charges       []Charge `json:"charges,omitempty"`
	PaymentMethod string   `json:"payment_method,omitempty"`
	Total         string   `json:"total,omitempty"`
	Savings       string   `json:"savings,omitempty"`
	ImageRef      string   `json:"image_ref,omitempty"`

	// Gazetteer keys the station strings resolved to.
	StartMatch string   `json:"start_match,omitempty"`
	EndMatch   string   `json:"end_match,omitempty"`
	StartGeo   GeoPoint `json:"start_geo"`
	EndGeo     GeoPoint `json:"end_geo"`

	Route        *Route   `json:"route,omitempty"`
	GeoRoute     GeoRoute `json:"geo_route,omitempty"`
	LengthMeters float64  `json:"length_meters"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Feature returns the route as a GeoJSON LineString feature with ride properties.
func (r *Ride) Feature() *geojson.Feature {
	f := geojson.NewFeature(r.GeoRoute.LineString())
	f.ID = r.ID
	f.Properties["start_station"] = r.StartStation
	f.Properties["end_station"] = r.EndStation
	f.Properties["length_m"] = r.LengthMeters
	if r.ReceiptNumber != "" {
		f.Properties["receipt_number"] = r.ReceiptNumber
	}
	if r.Date != "" {
		f.Properties["date"] = r.Date
	}
	return f
}

// Polyline returns the route encoded with the Google polyline algorithm.
func (r *Ride) Polyline() string {
	coords := make([][2]float64, len(r.GeoRoute))
	for i, p := range r.GeoRoute {
		coords[i] = [2]float64{p.Lat, p.Lon}
	}
	return util.EncodePolyline(coords)
}

// RidePG is the GORM model for a persisted ride
type RidePG struct {
	ID            string  `gorm:"primaryKey"`
	ReceiptNumber string  `gorm:"size:64;index"`
	RideDate      string  `gorm:"size:64"`
	StartStation  string  `gorm:"size:255;not null"`
	EndStation    string  `gorm:"size:255;not null"`
	StartLat      float64 `gorm:"not null"`
	StartLng      float64 `gorm:"not null"`
	EndLat        float64 `gorm:"not null"`
	EndLng        float64 `gorm:"not null"`
	Total         string  `gorm:"size:32"`
	Route         string  `gorm:"type:text"`
	Charges       string  `gorm:"type:jsonb"`
	LengthMeters  float64

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName overrides the table name
func (RidePG) TableName() string {
	return "rides"
}

// ToPG converts a ride into its PostgreSQL row. The route is stored as an encoded polyline.
func (r *Ride) ToPG() *RidePG {
	charges, _ := json.Marshal(r.Charges)
	return &RidePG{
		ID:            r.ID,
		ReceiptNumber: r.ReceiptNumber,
		RideDate:      r.Date,
		StartStation:  r.StartStation,
		EndStation:    r.EndStation,
		StartLat:      r.StartGeo.Lat,
		StartLng:      r.StartGeo.Lon,
		EndLat:        r.EndGeo.Lat,
		EndLng:        r.EndGeo.Lon,
		Total:         r.Total,
		Route:         r.Polyline(),
		Charges:       string(charges),
		LengthMeters:  r.LengthMeters,
		UpdatedAt:     r.UpdatedAt,
	}
}

// RideFromPG creates a Ride from RidePG. Pixel-space data is not persisted.
func RideFromPG(pg *RidePG) *Ride {
	ride := &Ride{
		ID:            pg.ID,
		ReceiptNumber: pg.ReceiptNumber,
		Date:          pg.RideDate,
		StartStation:  pg.StartStation,
		EndStation:    pg.EndStation,
		StartGeo:      GeoPoint{Lat: pg.StartLat, Lon: pg.StartLng},
		EndGeo:        GeoPoint{Lat: pg.EndLat, Lon: pg.EndLng},
		Total:         pg.Total,
		LengthMeters:  pg.LengthMeters,
		UpdatedAt:     pg.UpdatedAt,
	}
	if pg.Charges != "" {
		_ = json.Unmarshal([]byte(pg.Charges), &ride.Charges)
	}
	for _, c := range util.DecodePolyline(pg.Route) {
		ride.GeoRoute = append(ride.GeoRoute, GeoPoint{Lat: c[0], Lon: c[1]})
	}
	return ride
}
