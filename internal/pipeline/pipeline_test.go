package pipeline

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/logger"
)

func newTestReconciler() *Reconciler {
	return NewReconciler(logger.New("error", false), nil)
}

func mapChunk(title, uri string) domain.GroundingChunk {
	return domain.GroundingChunk{Maps: &domain.SourceRef{Title: title, URI: uri}}
}

func assertSymmetricCoords(t *testing.T, places []domain.PlaceResult) {
	t.Helper()
	for _, p := range places {
		assert.Equal(t, p.Lat == nil, p.Lng == nil, "place %q has exactly one coordinate", p.Title)
	}
}

func TestScenarioA(t *testing.T) {
	r := newTestReconciler()
	resp := r.Reconcile(Input{
		RawText: `Great area! JSON_META: [{"title":"Acme","lat":1.0,"lng":2.0,"type":"market"}]`,
		Chunks:  []domain.GroundingChunk{mapChunk("Acme", "http://x")},
		User:    &domain.Location{Latitude: 1.0, Longitude: 2.0},
		Query:   "acme",
	})

	assert.Empty(t, resp.Error)
	assert.Equal(t, "Great area!", resp.Text)
	require.Len(t, resp.Places, 1)

	p := resp.Places[0]
	assert.Equal(t, "Acme", p.Title)
	assert.Equal(t, "http://x", p.URI)
	require.NotNil(t, p.Lat)
	require.NotNil(t, p.Lng)
	assert.Equal(t, 1.0, *p.Lat)
	assert.Equal(t, 2.0, *p.Lng)
	assert.Equal(t, domain.PlaceMarket, p.Type)
	assert.Equal(t, "0.0 km", p.Distance)
	assert.False(t, p.IsPromoted)
}

func TestScenarioB(t *testing.T) {
	r := newTestReconciler()
	resp := r.Reconcile(Input{
		RawText: `Great area! JSON_META: [{"title":"Acme","lat":1.0,"lng":2.0,"type":"market"}]`,
		Chunks:  []domain.GroundingChunk{mapChunk("Acme", "http://x")},
		User:    &domain.Location{Latitude: 1.0, Longitude: 2.0},
		Merchants: []domain.MerchantRequest{
			{ID: "m1", BusinessName: "Acme Bakery", Category: "Food", Status: domain.MerchantActive, BidAmount: 10},
		},
		Query: "acme",
	})

	require.Len(t, resp.Places, 2)
	assert.Equal(t, "Acme Bakery", resp.Places[0].Title)
	assert.True(t, resp.Places[0].IsPromoted)
	assert.Equal(t, SponsoredLabel, resp.Places[0].Distance)
	assert.Equal(t, "Acme", resp.Places[1].Title)
}

func TestFailedResponse(t *testing.T) {
	resp := Failed(errors.New("dial tcp: connection refused"))

	assert.Equal(t, ConnectivityErrorText, resp.Text)
	assert.NotNil(t, resp.Places)
	assert.Empty(t, resp.Places)
	assert.NotEmpty(t, resp.Error)

	assert.NotEmpty(t, Failed(nil).Error)
}

func TestMetadataStripped(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "trailing block",
			raw:  `Here you go. JSON_META: [{"title":"A","lat":1,"lng":1}]`,
			want: "Here you go.",
		},
		{
			name: "block followed by more prose",
			raw:  "Intro.\nJSON_META: [{\"title\":\"A\"}]\nHope that helps!",
			want: "Intro.",
		},
		{
			name: "fenced block",
			raw:  "Intro.\n```json\nJSON_META: [{\"title\":\"A\"}]\n```",
			want: "Intro.",
		},
		{
			name: "no marker",
			raw:  "  Just prose.  ",
			want: "Just prose.",
		},
	}

	r := newTestReconciler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := r.Reconcile(Input{RawText: tt.raw})
			assert.Equal(t, tt.want, resp.Text)
			assert.NotContains(t, resp.Text, MetaMarker)
			assert.NotContains(t, resp.Text, `"title"`)
		})
	}
}

func TestBadMetadataDegradesToProse(t *testing.T) {
	raws := []string{
		`Nice spots nearby. JSON_META: [{"title":"Acme","lat":1.0,`,
		`Nice spots nearby. JSON_META: not json at all`,
		`Nice spots nearby. JSON_META: {"title":"Acme"}`,
	}

	r := newTestReconciler()
	for _, raw := range raws {
		resp := r.Reconcile(Input{
			RawText: raw,
			Chunks:  []domain.GroundingChunk{mapChunk("Acme", "http://x")},
			User:    &domain.Location{Latitude: 1, Longitude: 2},
		})

		assert.Empty(t, resp.Error)
		assert.Equal(t, "Nice spots nearby.", resp.Text)
		require.Len(t, resp.Places, 1)
		for _, p := range resp.Places {
			assert.Nil(t, p.Lat)
			assert.Nil(t, p.Lng)
			assert.Empty(t, p.Distance)
		}
	}
}

func TestSponsorOrdering(t *testing.T) {
	merchants := []domain.MerchantRequest{
		{BusinessName: "Five", Category: "bakery", Status: domain.MerchantActive, BidAmount: 5},
		{BusinessName: "Twenty", Category: "bakery", Status: domain.MerchantActive, BidAmount: 20},
		{BusinessName: "One", Category: "bakery", Status: domain.MerchantActive, BidAmount: 1},
	}

	resp := newTestReconciler().Reconcile(Input{
		RawText:   "Bakeries.",
		Chunks:    []domain.GroundingChunk{mapChunk("Organic Bakery", "http://o")},
		Merchants: merchants,
		Query:     "bakery",
	})

	require.Len(t, resp.Places, 4)
	for i, want := range []string{"Twenty", "Five", "One"} {
		assert.Equal(t, want, resp.Places[i].Title)
		assert.True(t, resp.Places[i].IsPromoted)
	}
	assert.Equal(t, "Organic Bakery", resp.Places[3].Title)
	assert.False(t, resp.Places[3].IsPromoted)
}

func TestSponsorOrderingWithUnusableBids(t *testing.T) {
	raw := `[
		{"id":"a","businessName":"Acme A","category":"acme","status":"active","bidAmount":5},
		{"id":"n","businessName":"Acme N","category":"acme","status":"active","bidAmount":"NaN"},
		{"id":"b","businessName":"Acme B","category":"acme","status":"active","bidAmount":20},
		{"id":"i","businessName":"Acme I","category":"acme","status":"active","bidAmount":"Infinity"},
		{"id":"c","businessName":"Acme C","category":"acme","status":"active","bidAmount":1}
	]`
	var merchants []domain.MerchantRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &merchants))

	var titles []string
	for _, p := range sponsored(merchants, "acme") {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"Acme B", "Acme A", "Acme C", "Acme N", "Acme I"}, titles)

	// In-memory NaN (never from JSON) still sorts as zero.
	merchants[0].BidAmount = domain.Bid(math.NaN())
	first := sponsored(merchants, "acme")[0]
	assert.Equal(t, "Acme B", first.Title)

	_, err := json.Marshal(merchants[1:])
	assert.NoError(t, err, "decoded directory must stay re-encodable")
}

func TestPendingMerchantsNeverInjected(t *testing.T) {
	merchants := []domain.MerchantRequest{
		{BusinessName: "Big Spender Bakery", Category: "bakery", Status: domain.MerchantPending, BidAmount: 9999},
		{BusinessName: "Tiny Bakery", Category: "bakery", Status: domain.MerchantActive, BidAmount: 0.5},
	}

	resp := newTestReconciler().Reconcile(Input{RawText: "x", Merchants: merchants, Query: "bakery"})

	require.Len(t, resp.Places, 1)
	assert.Equal(t, "Tiny Bakery", resp.Places[0].Title)
	for _, p := range resp.Places {
		assert.NotEqual(t, "Big Spender Bakery", p.Title)
	}
}

func TestNoDistanceWithoutUserLocation(t *testing.T) {
	resp := newTestReconciler().Reconcile(Input{
		RawText: `Shops. JSON_META: [{"title":"A","lat":48.85,"lng":2.35},{"title":"B","lat":48.86,"lng":2.34}]`,
		Chunks:  []domain.GroundingChunk{mapChunk("A", "http://a"), mapChunk("B", "http://b")},
		Merchants: []domain.MerchantRequest{
			{BusinessName: "Shop Co", Category: "shops", Status: domain.MerchantActive, BidAmount: 2},
		},
		Query: "shops",
	})

	require.Len(t, resp.Places, 3)
	for _, p := range resp.Places {
		if p.IsPromoted {
			assert.Equal(t, SponsoredLabel, p.Distance)
			continue
		}
		assert.Empty(t, p.Distance, "organic place %q", p.Title)
		assert.NotNil(t, p.Lat)
	}
}

func TestCoordinateSymmetry(t *testing.T) {
	raw := `Results JSON_META: [
		{"title":"OnlyLat","lat":1.5},
		{"title":"OnlyLng","lng":2.5},
		{"title":"Both","lat":"1.5","lng":"2.5"},
		{"title":"BadLat","lat":"north","lng":2.5},
		{"title":"NullLng","lat":1.5,"lng":null},
		{"title":"OutOfRange","lat":123,"lng":2.5}
	]`
	chunks := []domain.GroundingChunk{
		mapChunk("OnlyLat", "http://1"),
		mapChunk("OnlyLng", "http://2"),
		mapChunk("Both", "http://3"),
		mapChunk("BadLat", "http://4"),
		mapChunk("NullLng", "http://5"),
		mapChunk("OutOfRange", "http://6"),
	}

	resp := newTestReconciler().Reconcile(Input{
		RawText: raw,
		Chunks:  chunks,
		User:    &domain.Location{Latitude: 1.5, Longitude: 2.5},
	})

	require.Len(t, resp.Places, 6)
	assertSymmetricCoords(t, resp.Places)

	for _, p := range resp.Places {
		if p.Title == "Both" {
			require.NotNil(t, p.Lat)
			assert.Equal(t, 1.5, *p.Lat)
			assert.Equal(t, "0.0 km", p.Distance)
			continue
		}
		assert.Nil(t, p.Lat, p.Title)
		assert.Empty(t, p.Distance, p.Title)
	}
}

func TestTitleJoinIsCaseAndSpaceInsensitive(t *testing.T) {
	resp := newTestReconciler().Reconcile(Input{
		RawText: `Coffee! JSON_META: [{"title":"joe's cafe ","lat":40.7,"lng":-74.0,"type":"lifestyle"}]`,
		Chunks:  []domain.GroundingChunk{mapChunk("Joe's Cafe", "http://joe")},
	})

	require.Len(t, resp.Places, 1)
	p := resp.Places[0]
	require.NotNil(t, p.Lat)
	require.NotNil(t, p.Lng)
	assert.Equal(t, 40.7, *p.Lat)
	assert.Equal(t, -74.0, *p.Lng)
	assert.Equal(t, domain.PlaceLifestyle, p.Type)
}

func TestChunkFallbacks(t *testing.T) {
	chunks := []domain.GroundingChunk{
		{},
		{Web: &domain.SourceRef{Title: "Web Only", URI: "https://web.example"}},
		{Maps: &domain.SourceRef{}, Web: &domain.SourceRef{URI: "https://w"}},
		{Maps: &domain.SourceRef{Title: "No Link"}},
	}

	resp := newTestReconciler().Reconcile(Input{RawText: "x", Chunks: chunks})

	require.Len(t, resp.Places, 3)
	assert.Equal(t, "Web Only", resp.Places[0].Title)
	assert.Equal(t, "https://web.example", resp.Places[0].URI)
	assert.Equal(t, UnknownPlaceTitle, resp.Places[1].Title)
	assert.Equal(t, "https://w", resp.Places[1].URI)
	assert.Equal(t, "No Link", resp.Places[2].Title)
	assert.Equal(t, PlaceholderURI, resp.Places[2].URI)
	for _, p := range resp.Places {
		assert.Equal(t, domain.PlaceMarket, p.Type)
	}
}

func TestDuplicateCitationsCollapsed(t *testing.T) {
	chunks := []domain.GroundingChunk{
		mapChunk("Acme", "http://x"),
		{Web: &domain.SourceRef{Title: "Acme", URI: "http://x"}},
	}
	resp := newTestReconciler().Reconcile(Input{RawText: "x", Chunks: chunks})
	assert.Len(t, resp.Places, 1)
}

func TestVerifiedFromTrustedDomains(t *testing.T) {
	r := NewReconciler(logger.New("error", false), DomainAllowlist([]string{"maps.google.com", "Yelp.com"}))
	resp := r.Reconcile(Input{
		RawText: "x",
		Chunks: []domain.GroundingChunk{
			mapChunk("A", "https://maps.google.com/?cid=1"),
			mapChunk("B", "https://www.yelp.com/biz/b"),
			mapChunk("C", "https://notyelp.com/c"),
			mapChunk("D", "#"),
		},
	})

	require.Len(t, resp.Places, 4)
	assert.True(t, resp.Places[0].IsVerified)
	assert.True(t, resp.Places[1].IsVerified)
	assert.False(t, resp.Places[2].IsVerified)
	assert.False(t, resp.Places[3].IsVerified)
	for _, p := range resp.Places {
		assert.False(t, p.IsPromoted)
	}
}

func TestSponsorMatching(t *testing.T) {
	tests := []struct {
		name     string
		merchant domain.MerchantRequest
		query    string
		want     bool
	}{
		{name: "category contains query", merchant: domain.MerchantRequest{Category: "Food & Drink"}, query: "food", want: true},
		{name: "query contains category", merchant: domain.MerchantRequest{Category: "Food & Drink"}, query: "Find the best Food & Drink shops and services", want: true},
		{name: "name match ignores case", merchant: domain.MerchantRequest{BusinessName: "ACME Hardware"}, query: "acme", want: true},
		{name: "no overlap", merchant: domain.MerchantRequest{BusinessName: "Acme", Category: "Tools"}, query: "pharmacy", want: false},
		{name: "empty fields never match", merchant: domain.MerchantRequest{}, query: "anything", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := strings.ToLower(strings.TrimSpace(tt.query))
			assert.Equal(t, tt.want, matchesQuery(tt.merchant, q))
		})
	}
}

func TestSponsorFields(t *testing.T) {
	places := sponsored([]domain.MerchantRequest{
		{BusinessName: "Paid Shop", Category: "tools", Status: domain.MerchantActive, BidAmount: 2, BillingStatus: domain.BillingPaid},
		{BusinessName: "Trial Shop", Category: "tools", Status: domain.MerchantActive, BidAmount: 2, BillingStatus: domain.BillingTrial},
	}, "  TOOLS ")

	require.Len(t, places, 2)
	assert.Equal(t, "Paid Shop", places[0].Title, "equal bids keep directory order")
	assert.True(t, places[0].IsVerified)
	assert.False(t, places[1].IsVerified)
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=Paid+Shop", places[0].URI)
	assert.Equal(t, domain.PlaceMarket, places[0].Type)

	assert.Empty(t, sponsored([]domain.MerchantRequest{{BusinessName: "x", Status: domain.MerchantActive}}, "  "))
}

func TestApproxDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.Location
		want string
	}{
		{name: "same point", a: domain.Location{Latitude: 1, Longitude: 2}, b: domain.Location{Latitude: 1, Longitude: 2}, want: "0.0 km"},
		{name: "one degree north", a: domain.Location{}, b: domain.Location{Latitude: 1}, want: "111.0 km"},
		{name: "short hop", a: domain.Location{Latitude: 48.8566, Longitude: 2.3522}, b: domain.Location{Latitude: 48.8606, Longitude: 2.3376}, want: "1.7 km"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDistance(ApproxDistanceKm(tt.a, tt.b)))
		})
	}
}
