package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/nearby/internal/domain"
)

// MetaMarker is the token the model is asked to put before its JSON block.
const MetaMarker = "JSON_META:"

var markerRe = regexp.MustCompile(regexp.QuoteMeta(MetaMarker) + `\s*`)

// placeMeta is what the metadata block tells us about one place.
type placeMeta struct {
	lat, lng  float64
	hasCoords bool
	kind      domain.PlaceType
}

// metaEntry is the wire shape of one element of the block. Coordinates are
// decoded leniently because the model sometimes quotes numbers.
type metaEntry struct {
	Title string     `json:"title"`
	Lat   coordinate `json:"lat"`
	Lng   coordinate `json:"lng"`
	Type  string     `json:"type"`
}

// coordinate never fails to decode; ok reports whether a usable number
// was present.
type coordinate struct {
	v  float64
	ok bool
}

func (c *coordinate) UnmarshalJSON(data []byte) error {
	*c = coordinate{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return nil
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*c = coordinate{v: f, ok: true}
	return nil
}

func validLatLng(lat, lng coordinate) bool {
	return lat.ok && lng.ok &&
		lat.v >= -90 && lat.v <= 90 &&
		lng.v >= -180 && lng.v <= 180
}

// extraction is the result of splitting the model output in two.
type extraction struct {
	prose string
	meta  map[string]placeMeta
	// parseErr is set when a marker was present but its payload was unusable.
	parseErr error
}

// extractMetadata finds the metadata block anywhere in text, parses it and
// returns the prose with everything from the marker onward removed. A bad
// block never fails the call: meta is simply empty.
func extractMetadata(text string) extraction {
	loc := markerRe.FindStringIndex(text)
	if loc == nil {
		return extraction{prose: strings.TrimSpace(text), meta: map[string]placeMeta{}}
	}

	out := extraction{
		prose: cleanProse(text[:loc[0]]),
		meta:  map[string]placeMeta{},
	}

	entries, err := decodeBlock(text[loc[1]:])
	if err != nil {
		out.parseErr = err
		return out
	}

	for _, raw := range entries {
		var e metaEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		key := domain.NormalizeTitle(e.Title)
		if key == "" {
			continue
		}
		if _, dup := out.meta[key]; dup {
			continue
		}
		m := placeMeta{kind: domain.ParsePlaceType(e.Type)}
		// Both or neither.
		if validLatLng(e.Lat, e.Lng) {
			m.lat, m.lng, m.hasCoords = e.Lat.v, e.Lng.v, true
		}
		out.meta[key] = m
	}
	return out
}

// decodeBlock reads exactly one JSON array from the start of s, tolerating
// a markdown code fence in front of it. Trailing text is ignored.
func decodeBlock(s string) ([]json.RawMessage, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSpace(s)

	if !strings.HasPrefix(s, "[") {
		return nil, fmt.Errorf("metadata block: expected '[' after marker")
	}

	var entries []json.RawMessage
	dec := json.NewDecoder(strings.NewReader(s))
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("metadata block: %w", err)
	}
	return entries, nil
}

// cleanProse trims the visible summary and drops a dangling code fence
// opener that belonged to the metadata block.
func cleanProse(s string) string {
	s = strings.TrimSpace(s)
	for _, fence := range []string{"```json", "```"} {
		if strings.HasSuffix(s, fence) {
			s = strings.TrimSpace(strings.TrimSuffix(s, fence))
		}
	}
	return s
}
