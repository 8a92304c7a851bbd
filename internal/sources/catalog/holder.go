package catalog

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/nearby/internal/domain"
)

// Holder publishes the current catalog to concurrent readers. Readers get
// copies; a reload swaps the whole catalog at once.
type Holder struct {
	mu         sync.RWMutex
	current    *Catalog
	lastReload time.Time
}

// NewHolder starts out with the built-in catalog.
func NewHolder() *Holder {
	return &Holder{current: Builtin()}
}

func (h *Holder) Set(c *Catalog) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = c
	h.lastReload = time.Now()
}

func (h *Holder) snapshot() *Catalog {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.current
}

// LastReload is zero until a file has been loaded.
func (h *Holder) LastReload() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastReload
}

func (h *Holder) Categories() []domain.Category {
	return append([]domain.Category(nil), h.snapshot().Categories...)
}

func (h *Holder) Category(id string) (domain.Category, bool) {
	return h.snapshot().Category(id)
}

func (h *Holder) Suggestions() []string {
	return append([]string(nil), h.snapshot().Suggestions...)
}

func (h *Holder) Languages() []string {
	return append([]string(nil), h.snapshot().Languages...)
}

func (h *Holder) TrustedSources() []string {
	return append([]string(nil), h.snapshot().TrustedSources...)
}

func (h *Holder) DefaultMerchants() []domain.MerchantRequest {
	return append([]domain.MerchantRequest(nil), h.snapshot().Merchants...)
}

// Builtin is used until catalog.yaml is loaded, and when it cannot be.
func Builtin() *Catalog {
	return &Catalog{
		Categories: []domain.Category{
			{ID: "food", Label: "Food & Drink", Icon: "🍔"},
			{ID: "services", Label: "Pro Services", Icon: "🛠️"},
			{ID: "shopping", Label: "Local Markets", Icon: "🛍️"},
			{ID: "health", Label: "Medical", Icon: "🏥"},
			{ID: "emergency", Label: "Emergency", Icon: "🚨"},
			{ID: "tech", Label: "Electronics", Icon: "💻"},
		},
		Suggestions: []string{
			"Farmers markets", "Reliable plumbers", "24/7 Pharmacies",
			"Auto repair shops", "Tailors near me", "Fresh produce",
		},
		Languages:      []string{"en", "es", "fr", "de", "ar", "zh", "hi", "pt"},
		TrustedSources: []string{"google.com", "maps.google.com"},
		Merchants:      []domain.MerchantRequest{},
	}
}
