package domain

import "strings"

// PlaceType classifies a discovered place.
type PlaceType string

const (
	PlaceMarket    PlaceType = "market"
	PlaceService   PlaceType = "service"
	PlaceEmergency PlaceType = "emergency"
	PlaceLifestyle PlaceType = "lifestyle"
)

// ParsePlaceType maps free text onto a known type. Anything unknown
// (including the empty string) becomes PlaceMarket.
func ParsePlaceType(s string) PlaceType {
	switch PlaceType(strings.ToLower(strings.TrimSpace(s))) {
	case PlaceService:
		return PlaceService
	case PlaceEmergency:
		return PlaceEmergency
	case PlaceLifestyle:
		return PlaceLifestyle
	default:
		return PlaceMarket
	}
}

// Location is a WGS84 coordinate pair in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PlaceResult is a single discoverable entity shown to the user.
//
// Lat and Lng are either both set or both nil. Use SetCoords / Coords
// instead of touching the pointers directly.
type PlaceResult struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// Title is the display name. It is also the weak join key against
	// grounding chunks.
	Title string `json:"title"`

	// URI is the outbound link. "#" is a valid placeholder.
	URI string `json:"uri"`

	Description string `json:"description,omitempty"`

	// ─────────────────────────────
	// Enrichment
	// ─────────────────────────────

	Lat  *float64  `json:"lat,omitempty"`
	Lng  *float64  `json:"lng,omitempty"`
	Type PlaceType `json:"type"`

	// Distance is pre-formatted ("1.2 km") or a fixed label for sponsored
	// entries. Empty when unknown.
	Distance string `json:"distance,omitempty"`

	// ─────────────────────────────
	// Display flags
	// ─────────────────────────────

	IsPromoted bool `json:"isPromoted,omitempty"`
	IsVerified bool `json:"isVerified,omitempty"`
}

// SetCoords sets both coordinates at once.
func (p *PlaceResult) SetCoords(lat, lng float64) {
	p.Lat = &lat
	p.Lng = &lng
}

// ClearCoords removes both coordinates.
func (p *PlaceResult) ClearCoords() {
	p.Lat = nil
	p.Lng = nil
}

// Coords returns the coordinates and whether both are known.
func (p PlaceResult) Coords() (Location, bool) {
	if p.Lat == nil || p.Lng == nil {
		return Location{}, false
	}
	return Location{Latitude: *p.Lat, Longitude: *p.Lng}, true
}

// Normalize enforces the both-or-neither coordinate rule and the default type.
func (p *PlaceResult) Normalize() {
	if (p.Lat == nil) != (p.Lng == nil) {
		p.ClearCoords()
	}
	if p.Type == "" {
		p.Type = PlaceMarket
	} else {
		p.Type = ParsePlaceType(string(p.Type))
	}
}

// RecentPlace is a PlaceResult the user opened, stamped in epoch milliseconds.
type RecentPlace struct {
	PlaceResult
	ViewedAt int64 `json:"viewedAt"`
}

// NormalizeTitle is the join key used between metadata and grounding chunks.
func NormalizeTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
