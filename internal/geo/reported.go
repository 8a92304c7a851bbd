package geo

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/nearby/internal/domain"
)

// Reported is a Provider backed by coordinates the client sent with its
// request. Missing coordinates mean the user never granted access.
type Reported struct {
	Lat string
	Lng string
}

func (r Reported) CurrentPosition(_ context.Context, _ Options) (domain.Location, error) {
	lat, lng := strings.TrimSpace(r.Lat), strings.TrimSpace(r.Lng)
	if lat == "" && lng == "" {
		return domain.Location{}, ErrPermissionDenied
	}
	if lat == "" || lng == "" {
		return domain.Location{}, fmt.Errorf("%w: only one coordinate supplied", ErrPositionUnavailable)
	}

	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return domain.Location{}, fmt.Errorf("%w: latitude: %w", ErrPositionUnavailable, err)
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return domain.Location{}, fmt.Errorf("%w: longitude: %w", ErrPositionUnavailable, err)
	}

	loc := domain.Location{Latitude: la, Longitude: ln}
	if err := Validate(loc); err != nil {
		return domain.Location{}, err
	}
	return loc, nil
}

// Validate rejects non-finite or out-of-range coordinates.
func Validate(loc domain.Location) error {
	for _, v := range []float64{loc.Latitude, loc.Longitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite coordinate", ErrPositionUnavailable)
		}
	}
	if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
		return fmt.Errorf("%w: coordinate out of range", ErrPositionUnavailable)
	}
	return nil
}
