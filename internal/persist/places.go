package persist

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/store"
)

// MaxRecentPlaces bounds the recently-viewed list.
const MaxRecentPlaces = 6

// RecentPlaces is the most-recently-viewed list, newest first.
type RecentPlaces struct{ base }

func NewRecentPlaces(st store.Store, log logger.Logger) *RecentPlaces {
	return &RecentPlaces{newBase(st, log)}
}

func (r *RecentPlaces) List(ctx context.Context) ([]domain.RecentPlace, error) {
	return load(ctx, r.base, store.KeyRecentPlaces, recentSchema, emptySlice[domain.RecentPlace]())
}

// View records that the user opened p. An earlier entry with the same URI
// is moved to the front; the oldest entries fall off past the limit.
func (r *RecentPlaces) View(ctx context.Context, p domain.PlaceResult) ([]domain.RecentPlace, error) {
	current, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	p.Normalize()
	next := make([]domain.RecentPlace, 0, MaxRecentPlaces)
	next = append(next, domain.RecentPlace{PlaceResult: p, ViewedAt: r.now().UnixMilli()})
	for _, rp := range current {
		if len(next) == MaxRecentPlaces {
			break
		}
		if rp.URI == p.URI {
			continue
		}
		next = append(next, rp)
	}

	if err := r.store.Set(ctx, store.KeyRecentPlaces, next); err != nil {
		return nil, fmt.Errorf("save recent places: %w", err)
	}
	return next, nil
}

func (r *RecentPlaces) Clear(ctx context.Context) error {
	if err := r.store.Remove(ctx, store.KeyRecentPlaces); err != nil {
		return fmt.Errorf("clear recent places: %w", err)
	}
	return nil
}

// Favorites are the places the user saved, in the order they were saved.
type Favorites struct{ base }

func NewFavorites(st store.Store, log logger.Logger) *Favorites {
	return &Favorites{newBase(st, log)}
}

func (f *Favorites) List(ctx context.Context) ([]domain.PlaceResult, error) {
	return load(ctx, f.base, store.KeyFavorites, favoritesSchema, emptySlice[domain.PlaceResult]())
}

// Toggle saves p, or unsaves it when a favorite with the same URI exists.
// saved reports the resulting state.
func (f *Favorites) Toggle(ctx context.Context, p domain.PlaceResult) (saved bool, list []domain.PlaceResult, err error) {
	current, err := f.List(ctx)
	if err != nil {
		return false, nil, err
	}

	next := make([]domain.PlaceResult, 0, len(current)+1)
	for _, fav := range current {
		if fav.URI == p.URI {
			continue
		}
		next = append(next, fav)
	}

	saved = len(next) == len(current)
	if saved {
		p.Normalize()
		next = append(next, p)
	}

	if err := f.store.Set(ctx, store.KeyFavorites, next); err != nil {
		return false, nil, fmt.Errorf("save favorites: %w", err)
	}
	return saved, next, nil
}

// Remove drops the favorite with the given URI, if any.
func (f *Favorites) Remove(ctx context.Context, uri string) ([]domain.PlaceResult, error) {
	current, err := f.List(ctx)
	if err != nil {
		return nil, err
	}

	next := make([]domain.PlaceResult, 0, len(current))
	for _, fav := range current {
		if fav.URI != uri {
			next = append(next, fav)
		}
	}
	if len(next) == len(current) {
		return current, nil
	}

	if err := f.store.Set(ctx, store.KeyFavorites, next); err != nil {
		return nil, fmt.Errorf("save favorites: %w", err)
	}
	return next, nil
}
