package pipeline

import (
	"net/url"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/nearby/internal/domain"
)

const (
	// SponsoredLabel replaces the distance of injected entries.
	SponsoredLabel = "Sponsored"

	mapsSearchURL = "https://www.google.com/maps/search/?api=1&query="
)

// SponsorURI builds the external map-search link for a business.
func SponsorURI(businessName string) string {
	return mapsSearchURL + url.QueryEscape(strings.TrimSpace(businessName))
}

// matchesQuery is true when either field contains the query or is
// contained by it, case-insensitively. Empty fields never match.
func matchesQuery(m domain.MerchantRequest, q string) bool {
	for _, field := range []string{m.Category, m.BusinessName} {
		f := strings.ToLower(strings.TrimSpace(field))
		if f == "" {
			continue
		}
		if strings.Contains(f, q) || strings.Contains(q, f) {
			return true
		}
	}
	return false
}

// sponsored selects the active merchants relevant to query and renders
// them as promoted places, highest bid first. Ties keep directory order.
func sponsored(merchants []domain.MerchantRequest, query string) []domain.PlaceResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	matched := make([]domain.MerchantRequest, 0, len(merchants))
	for _, m := range merchants {
		if !m.IsActive() {
			continue
		}
		if matchesQuery(m, q) {
			matched = append(matched, m)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].BidAmount.Finite() > matched[j].BidAmount.Finite()
	})

	places := make([]domain.PlaceResult, 0, len(matched))
	for _, m := range matched {
		places = append(places, domain.PlaceResult{
			Title:       m.BusinessName,
			URI:         SponsorURI(m.BusinessName),
			Description: m.Category,
			Type:        domain.PlaceMarket,
			Distance:    SponsoredLabel,
			IsPromoted:  true,
			IsVerified:  m.BillingStatus == domain.BillingPaid,
		})
	}
	return places
}
