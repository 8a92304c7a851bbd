package store

import (
	"fmt"
	"net/url"
	"strings"
)

// Every persisted key lives here; nothing else builds key strings.
const (
	// KeyRecentPlaces holds the most-recently-viewed list
	KeyRecentPlaces = "nearby:recent_views"
	// KeyFavorites holds the saved places
	KeyFavorites = "nearby:favorites"
	// KeyMerchants holds the merchant directory
	KeyMerchants = "nearby:merchants"
	// KeyReports holds integrity reports
	KeyReports = "nearby:reports"
	// KeyInsights holds the platform usage counters
	KeyInsights = "nearby:insights"
	// KeyLanguage holds the language preference
	KeyLanguage = "nearby:pref:language"
	// KeyTheme holds the theme preference
	KeyTheme = "nearby:pref:theme"

	// KeyPrefixReviews is the prefix for per-place review lists
	KeyPrefixReviews = "nearby:reviews:"
)

// ReviewsKey returns the key for a place's reviews. The place URI is
// escaped so that any URI yields a single flat key.
func ReviewsKey(placeURI string) string {
	return KeyPrefixReviews + url.QueryEscape(placeURI)
}

// PlaceURIFromReviewsKey reverses ReviewsKey.
func PlaceURIFromReviewsKey(key string) (string, error) {
	if !strings.HasPrefix(key, KeyPrefixReviews) || len(key) == len(KeyPrefixReviews) {
		return "", fmt.Errorf("invalid reviews key: %s", key)
	}
	return url.QueryUnescape(key[len(KeyPrefixReviews):])
}
