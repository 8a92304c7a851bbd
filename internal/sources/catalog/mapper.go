package catalog

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/nearby/internal/domain"
)

// Catalog is the validated, domain-typed view of the catalog file.
type Catalog struct {
	Categories     []domain.Category
	Suggestions    []string
	Languages      []string
	TrustedSources []string
	Merchants      []domain.MerchantRequest
}

// Category returns the category with the given id.
func (c *Catalog) Category(id string) (domain.Category, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return domain.Category{}, false
}

// Map validates f and converts it. Blank entries are skipped; duplicate or
// malformed identifiers are errors.
func Map(f File) (*Catalog, error) {
	c := &Catalog{
		Categories:     make([]domain.Category, 0, len(f.Categories)),
		Suggestions:    nonEmpty(f.Suggestions),
		Languages:      lowerAll(nonEmpty(f.Languages)),
		TrustedSources: lowerAll(nonEmpty(f.TrustedSources)),
		Merchants:      make([]domain.MerchantRequest, 0, len(f.Merchants)),
	}

	seen := map[string]bool{}
	for i, cp := range f.Categories {
		id := strings.ToLower(strings.TrimSpace(cp.ID))
		if id == "" {
			return nil, fmt.Errorf("category #%d: id is required", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("category %q: duplicate id", id)
		}
		seen[id] = true
		label := strings.TrimSpace(cp.Label)
		if label == "" {
			label = id
		}
		c.Categories = append(c.Categories, domain.Category{ID: id, Label: label, Icon: cp.Icon})
	}

	seen = map[string]bool{}
	for i, mp := range f.Merchants {
		m, err := mapMerchant(mp)
		if err != nil {
			return nil, fmt.Errorf("merchant #%d: %w", i, err)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("merchant %q: duplicate id", m.ID)
		}
		seen[m.ID] = true
		c.Merchants = append(c.Merchants, m)
	}

	if len(c.Languages) == 0 {
		c.Languages = []string{"en"}
	}
	return c, nil
}

func mapMerchant(mp MerchantProps) (domain.MerchantRequest, error) {
	m := domain.MerchantRequest{
		ID:           strings.TrimSpace(mp.ID),
		BusinessName: strings.TrimSpace(mp.BusinessName),
		Category:     strings.TrimSpace(mp.Category),
		AppliedDate:  mp.AppliedDate,
		BidAmount:    domain.Bid(mp.BidAmount).Finite(),
	}
	if m.ID == "" || m.BusinessName == "" {
		return m, fmt.Errorf("id and name are required")
	}

	switch domain.MerchantStatus(mp.Status) {
	case "", domain.MerchantPending:
		m.Status = domain.MerchantPending
	case domain.MerchantActive:
		m.Status = domain.MerchantActive
	default:
		return m, fmt.Errorf("%s: unknown status %q", m.ID, mp.Status)
	}

	switch domain.BillingStatus(mp.BillingStatus) {
	case "", domain.BillingPaid, domain.BillingOverdue, domain.BillingTrial:
		m.BillingStatus = domain.BillingStatus(mp.BillingStatus)
	default:
		return m, fmt.Errorf("%s: unknown billing status %q", m.ID, mp.BillingStatus)
	}
	return m, nil
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	for i := range in {
		in[i] = strings.ToLower(in[i])
	}
	return in
}
