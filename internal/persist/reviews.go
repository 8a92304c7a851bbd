package persist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/store"
)

var (
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrMissingPlace   = errors.New("place uri is required")
	ErrReportNotFound = errors.New("report not found")
)

// Reviews stores one review list per place.
type Reviews struct{ base }

func NewReviews(st store.Store, log logger.Logger) *Reviews {
	return &Reviews{newBase(st, log)}
}

// List returns the reviews of a place, newest first.
func (r *Reviews) List(ctx context.Context, placeURI string) ([]domain.Review, error) {
	return load(ctx, r.base, store.ReviewsKey(placeURI), reviewsSchema, emptySlice[domain.Review]())
}

// Add validates and prepends a review. ID, PlaceURI and CreatedAt are
// assigned here.
func (r *Reviews) Add(ctx context.Context, placeURI string, rv domain.Review) (domain.Review, error) {
	if strings.TrimSpace(placeURI) == "" {
		return domain.Review{}, ErrMissingPlace
	}
	if rv.Rating < 1 || rv.Rating > 5 {
		return domain.Review{}, fmt.Errorf("%w: got %d", ErrInvalidRating, rv.Rating)
	}

	current, err := r.List(ctx, placeURI)
	if err != nil {
		return domain.Review{}, err
	}

	rv.ID = uuid.NewString()
	rv.PlaceURI = placeURI
	rv.CreatedAt = r.now().UnixMilli()
	rv.Author = strings.TrimSpace(rv.Author)
	if rv.Author == "" {
		rv.Author = "Anonymous"
	}

	next := append([]domain.Review{rv}, current...)
	if err := r.store.Set(ctx, store.ReviewsKey(placeURI), next); err != nil {
		return domain.Review{}, fmt.Errorf("save reviews: %w", err)
	}
	return rv, nil
}

// Average returns the mean rating and the review count of a place.
func (r *Reviews) Average(ctx context.Context, placeURI string) (float64, int, error) {
	list, err := r.List(ctx, placeURI)
	if err != nil || len(list) == 0 {
		return 0, 0, err
	}
	sum := 0
	for _, rv := range list {
		sum += rv.Rating
	}
	return float64(sum) / float64(len(list)), len(list), nil
}

// ReviewedPlaces lists the URIs of every place with stored reviews.
func (r *Reviews) ReviewedPlaces(ctx context.Context) ([]string, error) {
	keys, err := r.store.Keys(ctx, store.KeyPrefixReviews)
	if err != nil {
		return nil, err
	}
	uris := make([]string, 0, len(keys))
	for _, k := range keys {
		uri, err := store.PlaceURIFromReviewsKey(k)
		if err != nil {
			r.logger.Debug("skipping foreign reviews key", logger.String("key", k))
			continue
		}
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris, nil
}

// Reports holds integrity reports raised against listings.
type Reports struct{ base }

func NewReports(st store.Store, log logger.Logger) *Reports {
	return &Reports{newBase(st, log)}
}

// List returns every report, newest first.
func (r *Reports) List(ctx context.Context) ([]domain.Report, error) {
	return load(ctx, r.base, store.KeyReports, reportsSchema, emptySlice[domain.Report]())
}

// Open returns the unresolved reports.
func (r *Reports) Open(ctx context.Context) ([]domain.Report, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	open := make([]domain.Report, 0, len(all))
	for _, rp := range all {
		if !rp.Resolved {
			open = append(open, rp)
		}
	}
	return open, nil
}

func (r *Reports) Add(ctx context.Context, rp domain.Report) (domain.Report, error) {
	if strings.TrimSpace(rp.PlaceURI) == "" {
		return domain.Report{}, ErrMissingPlace
	}
	rp.Reason = strings.TrimSpace(rp.Reason)
	if rp.Reason == "" {
		rp.Reason = "other"
	}

	current, err := r.List(ctx)
	if err != nil {
		return domain.Report{}, err
	}

	rp.ID = uuid.NewString()
	rp.CreatedAt = r.now().UnixMilli()
	rp.Resolved = false

	next := append([]domain.Report{rp}, current...)
	if err := r.store.Set(ctx, store.KeyReports, next); err != nil {
		return domain.Report{}, fmt.Errorf("save reports: %w", err)
	}
	return rp, nil
}

// Resolve marks a report as handled.
func (r *Reports) Resolve(ctx context.Context, id string) (domain.Report, error) {
	current, err := r.List(ctx)
	if err != nil {
		return domain.Report{}, err
	}

	for i := range current {
		if current[i].ID != id {
			continue
		}
		current[i].Resolved = true
		if err := r.store.Set(ctx, store.KeyReports, current); err != nil {
			return domain.Report{}, fmt.Errorf("save reports: %w", err)
		}
		return current[i], nil
	}
	return domain.Report{}, fmt.Errorf("%w: %s", ErrReportNotFound, id)
}
