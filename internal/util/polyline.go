package util

import (
	"math"
	"strings"
)

// DefaultPolylinePrecision is the Google Maps standard precision factor.
const DefaultPolylinePrecision = 1e-5

// DecodePolyline converts an encoded polyline string to a slice of lat/lng coordinates
// Implementation based on Google's Encoded Polyline Algorithm Format
func DecodePolyline(encoded string) [][2]float64 {
	return DecodePolylineWithPrecision(encoded, DefaultPolylinePrecision)
}

// DecodePolylineWithPrecision decodes a polyline with a custom precision factor
func DecodePolylineWithPrecision(encoded string, precision float64) [][2]float64 {
	var points [][2]float64
	index, lat, lng := 0, 0, 0

	for index < len(encoded) {
		dlat, next, ok := decodeValue(encoded, index)
		if !ok {
			return points
		}
		dlng, next, ok := decodeValue(encoded, next)
		if !ok {
			return points
		}
		index = next
		lat += dlat
		lng += dlng

		// [latitude, longitude], Google order
		points = append(points, [2]float64{float64(lat) * precision, float64(lng) * precision})
	}

	return points
}

func decodeValue(encoded string, index int) (int, int, bool) {
	shift, result := 0, 0
	for {
		if index >= len(encoded) {
			return 0, index, false
		}
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return -(result >> 1) - 1, index, true
	}
	return result >> 1, index, true
}

// EncodePolyline encodes lat/lng coordinates with the default precision.
func EncodePolyline(points [][2]float64) string {
	return EncodePolylineWithPrecision(points, DefaultPolylinePrecision)
}

// EncodePolylineWithPrecision is the inverse of DecodePolylineWithPrecision.
func EncodePolylineWithPrecision(points [][2]float64, precision float64) string {
	var sb strings.Builder
	prevLat, prevLng := 0, 0
	for _, p := range points {
		lat := int(math.Round(p[0] / precision))
		lng := int(math.Round(p[1] / precision))
		encodeValue(&sb, lat-prevLat)
		encodeValue(&sb, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return sb.String()
}

func encodeValue(sb *strings.Builder, v int) {
	v <<= 1
	if v < 0 {
		v = ^v
	}
	for v >= 0x20 {
		sb.WriteByte(byte((0x20 | (v & 0x1f)) + 63))
		v >>= 5
	}
	sb.WriteByte(byte(v + 63))
}
