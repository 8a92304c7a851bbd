package pipeline

import (
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/nearby/internal/domain"
)

const (
	UnknownPlaceTitle = "Unknown Place"
	PlaceholderURI    = "#"
)

// TrustPolicy decides whether an organic result's link comes from a
// trusted source. A nil policy verifies nothing.
type TrustPolicy func(uri string) bool

// DomainAllowlist returns a TrustPolicy matching the uri host against
// domains, including their subdomains.
func DomainAllowlist(domains []string) TrustPolicy {
	allowed := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			allowed = append(allowed, d)
		}
	}
	return func(uri string) bool {
		u, err := url.Parse(uri)
		if err != nil || u.Host == "" {
			return false
		}
		host := strings.ToLower(u.Hostname())
		for _, d := range allowed {
			if host == d || strings.HasSuffix(host, "."+d) {
				return true
			}
		}
		return false
	}
}

// correlate turns the cited chunks into organic places, joining each with
// the metadata by normalised title. Unmatched chunks stay in with partial
// data.
func correlate(chunks []domain.GroundingChunk, meta map[string]placeMeta, user *domain.Location, trusted TrustPolicy) []domain.PlaceResult {
	places := make([]domain.PlaceResult, 0, len(chunks))
	seen := make(map[string]struct{}, len(chunks))

	for _, c := range chunks {
		if c.Maps == nil && c.Web == nil {
			continue
		}

		p := domain.PlaceResult{
			Title: pick(UnknownPlaceTitle, refTitle(c.Maps), refTitle(c.Web)),
			URI:   pick(PlaceholderURI, refURI(c.Maps), refURI(c.Web)),
			Type:  domain.PlaceMarket,
		}

		key := dedupKey(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if m, ok := meta[domain.NormalizeTitle(p.Title)]; ok {
			p.Type = m.kind
			if m.hasCoords {
				p.SetCoords(m.lat, m.lng)
			}
		}

		if loc, ok := p.Coords(); ok && user != nil {
			p.Distance = FormatDistance(ApproxDistanceKm(*user, loc))
		}

		if trusted != nil && p.URI != PlaceholderURI {
			p.IsVerified = trusted(p.URI)
		}

		places = append(places, p)
	}
	return places
}

// dedupKey identifies repeated citations of the same place.
func dedupKey(p domain.PlaceResult) string {
	if p.URI != PlaceholderURI {
		return "u:" + p.URI
	}
	return "t:" + domain.NormalizeTitle(p.Title)
}

func refTitle(r *domain.SourceRef) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.Title)
}

func refURI(r *domain.SourceRef) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.URI)
}

// pick returns the first non-empty candidate, or def.
func pick(def string, candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return def
}
