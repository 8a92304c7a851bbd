// Package mapview computes what the client map should show for a result
// set: markers, the viewport, and the minimal change against the markers
// already on screen.
package mapview

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/MrSnakeDoc/nearby/internal/domain"
)

const (
	UserMarkerID = "user"

	FitPadding  = 60
	FitMaxZoom  = 16
	DefaultZoom = 14

	iconUser     = "●"
	iconPlace    = "📍"
	iconPromoted = "⭐"
)

type MarkerKind string

const (
	KindUser     MarkerKind = "user"
	KindPlace    MarkerKind = "place"
	KindPromoted MarkerKind = "promoted"
)

type Marker struct {
	ID    string     `json:"id"`
	Kind  MarkerKind `json:"kind"`
	Lat   float64    `json:"lat"`
	Lng   float64    `json:"lng"`
	Icon  string     `json:"icon"`
	Title string     `json:"title"`
	Popup string     `json:"popup"`
}

type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

func (b *Bounds) extend(lat, lng float64) {
	b.South = math.Min(b.South, lat)
	b.North = math.Max(b.North, lat)
	b.West = math.Min(b.West, lng)
	b.East = math.Max(b.East, lng)
}

// Viewport is either a bounds fit or a fixed center/zoom. It is empty
// when there is nothing to show.
type Viewport struct {
	Fit     *Bounds          `json:"fit,omitempty"`
	Padding int              `json:"padding,omitempty"`
	MaxZoom int              `json:"maxZoom,omitempty"`
	Center  *domain.Location `json:"center,omitempty"`
	Zoom    int              `json:"zoom,omitempty"`
}

type Render struct {
	Markers  []Marker `json:"markers"`
	Viewport Viewport `json:"viewport"`
}

// Build lays out markers for places with both coordinates, plus the user
// marker when the position is known.
func Build(places []domain.PlaceResult, user *domain.Location) Render {
	markers := make([]Marker, 0, len(places)+1)
	if user != nil {
		markers = append(markers, Marker{
			ID:    UserMarkerID,
			Kind:  KindUser,
			Lat:   user.Latitude,
			Lng:   user.Longitude,
			Icon:  iconUser,
			Title: "You are here",
			Popup: "<div>You are here</div>",
		})
	}

	seen := make(map[string]int, len(places))
	for _, p := range places {
		loc, ok := p.Coords()
		if !ok {
			continue
		}
		m := Marker{
			ID:    markerID(p, seen),
			Kind:  KindPlace,
			Lat:   loc.Latitude,
			Lng:   loc.Longitude,
			Icon:  iconPlace,
			Title: p.Title,
			Popup: popup(p),
		}
		if p.IsPromoted {
			m.Kind = KindPromoted
			m.Icon = iconPromoted
		}
		markers = append(markers, m)
	}

	return Render{Markers: markers, Viewport: viewport(markers, user)}
}

func viewport(markers []Marker, user *domain.Location) Viewport {
	if len(markers) == 0 {
		return Viewport{}
	}
	// Nothing to fit around but the user.
	if len(markers) == 1 && user != nil {
		c := *user
		return Viewport{Center: &c, Zoom: DefaultZoom}
	}

	b := Bounds{South: markers[0].Lat, North: markers[0].Lat, West: markers[0].Lng, East: markers[0].Lng}
	for _, m := range markers[1:] {
		b.extend(m.Lat, m.Lng)
	}
	return Viewport{Fit: &b, Padding: FitPadding, MaxZoom: FitMaxZoom}
}

// markerID is stable across renders for the same place. Placeholder URIs
// fall back to the title; repeats get a numeric suffix.
func markerID(p domain.PlaceResult, seen map[string]int) string {
	id := "place:" + p.URI
	if p.URI == "" || p.URI == "#" {
		id = "title:" + domain.NormalizeTitle(p.Title)
	}
	seen[id]++
	if n := seen[id]; n > 1 {
		id = fmt.Sprintf("%s#%d", id, n)
	}
	return id
}

func popup(p domain.PlaceResult) string {
	var b strings.Builder
	b.WriteString("<div><h4>")
	b.WriteString(html.EscapeString(p.Title))
	b.WriteString("</h4>")
	if p.IsPromoted {
		b.WriteString(`<span class="promoted">Promoted</span>`)
	}
	if p.URI != "" && p.URI != "#" {
		fmt.Fprintf(&b, `<a href="%s" target="_blank" rel="noopener noreferrer">Visit Business</a>`, html.EscapeString(p.URI))
	}
	b.WriteString("</div>")
	return b.String()
}
