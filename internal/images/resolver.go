// Package images selects and resolves display images for a farm from its
// approved photos.
package images

import (
	"sort"

	"farmshops/internal/models"
)

// sourceRank maps photo sources to their display priority, highest first.
// Unranked sources sort last.
var sourceRank = map[string]int{
	models.SourceOwner:   0,
	models.SourceUser:    1,
	models.SourceGoogle:  2,
	models.SourceRunware: 3,
	models.SourceUpload:  4,
}

func rankOf(source string) int {
	if r, ok := sourceRank[source]; ok {
		return r
	}
	return len(sourceRank)
}

// HeroImage selects the single primary display image. Pass 1: the first
// hero-flagged image in source priority order. Pass 2: the first image of the
// highest-priority source regardless of hero flag. Pass 3: the first input
// element. Returns nil for empty input.
func HeroImage(photos []models.Photo) *models.Photo {
	if len(photos) == 0 {
		return nil
	}

	var hero, best *models.Photo
	for i := range photos {
		p := &photos[i]
		if p.IsHero && (hero == nil || rankOf(p.Source) < rankOf(hero.Source)) {
			hero = p
		}
		if best == nil || rankOf(p.Source) < rankOf(best.Source) {
			best = p
		}
	}
	if hero != nil {
		return hero
	}
	return best
}

// SortByPriority returns the photos ordered for display: hero images before
// non-hero, then by source priority with unranked sources last. The sort is
// stable, so ties preserve input order and the function is idempotent.
func SortByPriority(photos []models.Photo) []models.Photo {
	sorted := append([]models.Photo(nil), photos...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsHero != sorted[j].IsHero {
			return sorted[i].IsHero
		}
		return rankOf(sorted[i].Source) < rankOf(sorted[j].Source)
	})
	return sorted
}

// URLBuilder constructs a display URL for externally referenced photos.
type URLBuilder interface {
	PhotoURL(reference string, maxWidth int) string
}

// Resolver resolves the display URL for a photo. Google-sourced photos
// delegate to the URL builder; every other source serves its stored URL.
type Resolver struct {
	google URLBuilder
}

// NewResolver creates a resolver using the given builder for google photos.
func NewResolver(google URLBuilder) *Resolver {
	return &Resolver{google: google}
}

// ResolveURL returns the display URL for a photo, or "" when no usable
// reference or URL exists.
func (r *Resolver) ResolveURL(photo *models.Photo, maxWidth int) string {
	if photo == nil {
		return ""
	}
	if photo.Source == models.SourceGoogle {
		if photo.PhotoReference == "" || r.google == nil {
			// Some google-sourced records carry a direct URL instead of
			// a photo reference.
			return photo.URL
		}
		return r.google.PhotoURL(photo.PhotoReference, maxWidth)
	}
	return photo.URL
}
