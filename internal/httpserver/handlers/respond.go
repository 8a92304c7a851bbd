package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/nearby/internal/admin"
	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/geo"
	"github.com/MrSnakeDoc/nearby/internal/httpserver/deps"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/persist"
	"github.com/MrSnakeDoc/nearby/internal/search"
	"github.com/MrSnakeDoc/nearby/internal/store"
	"github.com/MrSnakeDoc/nearby/internal/voice"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail maps a domain error onto a status code and logs server-side faults.
func fail(w http.ResponseWriter, d deps.Deps, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		d.Logger.Error("request failed", logger.Error(err))
		writeError(w, status, http.StatusText(status))
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, search.ErrEmptyQuery),
		errors.Is(err, persist.ErrInvalidRating),
		errors.Is(err, persist.ErrMissingPlace),
		errors.Is(err, persist.ErrUnsupportedLanguage),
		errors.Is(err, persist.ErrInvalidTheme),
		errors.Is(err, admin.ErrInvalidMerchant),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, search.ErrUnknownCategory),
		errors.Is(err, admin.ErrMerchantNotFound),
		errors.Is(err, persist.ErrReportNotFound),
		errors.Is(err, voice.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, voice.ErrNotActive),
		errors.Is(err, voice.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %w", errBadRequest, err)
	}
	return nil
}

// coords is the optional position carried by JSON bodies.
type coords struct {
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`
}

func (c coords) reported() geo.Reported {
	var rp geo.Reported
	if c.Lat != nil {
		rp.Lat = strconv.FormatFloat(*c.Lat, 'f', -1, 64)
	}
	if c.Lng != nil {
		rp.Lng = strconv.FormatFloat(*c.Lng, 'f', -1, 64)
	}
	return rp
}

// locate resolves the client's position. Location is nil unless granted.
func locate(r *http.Request, d deps.Deps, rp geo.Reported) geo.Position {
	return geo.New(rp, d.GeoOptions, d.Logger).RequestCurrentPosition(r.Context())
}

func queryLocation(r *http.Request) geo.Reported {
	q := r.URL.Query()
	return geo.Reported{Lat: q.Get("lat"), Lng: q.Get("lng")}
}

// SessionHeader carries the client's search session.
const SessionHeader = "X-Session-ID"

func sessionOf(r *http.Request) string {
	if s := strings.TrimSpace(r.URL.Query().Get("session")); s != "" {
		return s
	}
	return strings.TrimSpace(r.Header.Get(SessionHeader))
}

// searchSession returns the client's session, issuing a new one when the
// request carries none so anonymous clients never share sequence numbers.
func searchSession(w http.ResponseWriter, r *http.Request) string {
	s := sessionOf(r)
	if s == "" {
		s = uuid.NewString()
	}
	w.Header().Set(SessionHeader, s)
	return s
}

func seqOf(r *http.Request) uint64 {
	n, err := strconv.ParseUint(r.URL.Query().Get("seq"), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func placeOf(p domain.PlaceResult) (domain.PlaceResult, error) {
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.URI) == "" {
		return p, fmt.Errorf("%w: place title and uri are required", errBadRequest)
	}
	return p, nil
}
