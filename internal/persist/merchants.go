package persist

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/store"
)

// Merchants is the merchant directory. It is written by the admin surface
// and read by every search; writes are last-writer-wins.
type Merchants struct {
	base
	defaults func() []domain.MerchantRequest
}

// NewMerchants builds the repository. defaults supplies the seed dataset
// used whenever nothing usable is stored; it may be nil.
func NewMerchants(st store.Store, log logger.Logger, defaults func() []domain.MerchantRequest) *Merchants {
	if defaults == nil {
		defaults = emptySlice[domain.MerchantRequest]()
	}
	return &Merchants{base: newBase(st, log), defaults: defaults}
}

func (m *Merchants) List(ctx context.Context) ([]domain.MerchantRequest, error) {
	return load(ctx, m.base, store.KeyMerchants, merchantsSchema, m.defaults)
}

// Active returns the merchants eligible for injection into results.
func (m *Merchants) Active(ctx context.Context) ([]domain.MerchantRequest, error) {
	all, err := m.List(ctx)
	active := make([]domain.MerchantRequest, 0, len(all))
	for _, mr := range all {
		if mr.IsActive() {
			active = append(active, mr)
		}
	}
	return active, err
}

// Stored reports whether a usable directory is persisted.
func (m *Merchants) Stored(ctx context.Context) (bool, error) {
	raw, ok, err := m.store.Get(ctx, store.KeyMerchants)
	if err != nil || !ok {
		return false, err
	}
	var probe []domain.MerchantRequest
	return decodeValidated(raw, merchantsSchema, &probe) == nil, nil
}

func (m *Merchants) Save(ctx context.Context, list []domain.MerchantRequest) error {
	if list == nil {
		list = []domain.MerchantRequest{}
	}
	if err := m.store.Set(ctx, store.KeyMerchants, list); err != nil {
		return fmt.Errorf("save merchants: %w", err)
	}
	return nil
}
