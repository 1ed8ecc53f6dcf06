package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves a hotspot name to coordinates.
type Geocoder interface {
	// ForwardGeocode converts a place name, optionally qualified by a state or
	// province code such as "US-TN", to coordinates.
	ForwardGeocode(ctx context.Context, name, state string) (GeocodingResult, error)
}
