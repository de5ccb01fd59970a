package images

import (
	"fmt"
	"net/url"
)

const placesPhotoEndpoint = "https://maps.googleapis.com/maps/api/place/photo"

// GooglePlaces builds Google Places photo URLs from stored photo references.
type GooglePlaces struct {
	apiKey string
}

// NewGooglePlaces creates a builder for the given API key.
func NewGooglePlaces(apiKey string) *GooglePlaces {
	return &GooglePlaces{apiKey: apiKey}
}

// PhotoURL returns the Places photo URL for a reference, capped at maxWidth
// pixels. Returns "" when no reference is available.
func (g *GooglePlaces) PhotoURL(reference string, maxWidth int) string {
	if reference == "" {
		return ""
	}
	if maxWidth <= 0 {
		maxWidth = 800
	}
	return fmt.Sprintf("%s?maxwidth=%d&photo_reference=%s&key=%s",
		placesPhotoEndpoint, maxWidth, url.QueryEscape(reference), url.QueryEscape(g.apiKey))
}
