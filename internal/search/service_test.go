package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/MrSnakeDoc/nearby/internal/ai"
	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/pipeline"
	"github.com/MrSnakeDoc/nearby/internal/sources/catalog"
)

type backendFunc func(ctx context.Context, req ai.Request) (ai.Answer, error)

func (f backendFunc) Search(ctx context.Context, req ai.Request) (ai.Answer, error) { return f(ctx, req) }

type staticMerchants struct {
	list []domain.MerchantRequest
	err  error
}

func (m staticMerchants) Active(context.Context) ([]domain.MerchantRequest, error) { return m.list, m.err }

type usageSpy struct {
	searches   int
	categories []string
}

func (u *usageSpy) RecordSearch(context.Context) error { u.searches++; return nil }
func (u *usageSpy) RecordCategory(_ context.Context, id string) error {
	u.categories = append(u.categories, id)
	return nil
}

func newService(b Backend, m MerchantSource, u UsageRecorder) *Service {
	return NewService(b, m, u, catalog.NewHolder(), NewSequencer(0), logger.New("error", false))
}

func TestSearchReconcilesAnswer(t *testing.T) {
	var got ai.Request
	b := backendFunc(func(_ context.Context, req ai.Request) (ai.Answer, error) {
		got = req
		return ai.Answer{
			Text: `Great area! JSON_META: [{"title":"Acme","lat":1.0,"lng":2.0,"type":"market"}]`,
			Chunks: []domain.GroundingChunk{
				{Maps: &domain.SourceRef{Title: "Acme", URI: "https://maps.google.com/?cid=7"}},
			},
		}, nil
	})
	merchants := staticMerchants{list: []domain.MerchantRequest{
		{ID: "m1", BusinessName: "Acme Bakery", Category: "Food", Status: domain.MerchantActive, BidAmount: 10},
	}}
	usage := &usageSpy{}
	user := &domain.Location{Latitude: 1, Longitude: 2}

	res, err := newService(b, merchants, usage).Search(context.Background(), Query{Text: " acme ", User: user, Session: "s"})
	require.NoError(t, err)

	assert.Equal(t, "Great area!", res.Text)
	require.Len(t, res.Places, 2)
	assert.Equal(t, "Acme Bakery", res.Places[0].Title)
	assert.True(t, res.Places[0].IsPromoted)
	assert.Equal(t, "Acme", res.Places[1].Title)
	assert.Equal(t, "0.0 km", res.Places[1].Distance)
	assert.True(t, res.Places[1].IsVerified, "maps.google.com is a trusted source")

	assert.Equal(t, user, got.Bias)
	assert.Contains(t, got.Prompt, `Find "acme"`)
	assert.Equal(t, 1, usage.searches)
	assert.Equal(t, uint64(1), res.Seq)
	assert.False(t, res.Stale)
}

func TestSearchBackendFailure(t *testing.T) {
	b := backendFunc(func(context.Context, ai.Request) (ai.Answer, error) {
		return ai.Answer{}, ai.ErrBackendUnavailable
	})

	res, err := newService(b, staticMerchants{}, &usageSpy{}).Search(context.Background(), Query{Text: "pharmacy"})
	require.NoError(t, err)
	assert.Equal(t, pipeline.ConnectivityErrorText, res.Text)
	assert.Empty(t, res.Places)
	assert.NotNil(t, res.Places)
	assert.NotEmpty(t, res.Error)
}

func TestEmptyQueryNeverReachesBackend(t *testing.T) {
	called := false
	b := backendFunc(func(context.Context, ai.Request) (ai.Answer, error) {
		called = true
		return ai.Answer{}, nil
	})
	usage := &usageSpy{}

	_, err := newService(b, staticMerchants{}, usage).Search(context.Background(), Query{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.False(t, called)
	assert.Zero(t, usage.searches)
}

func TestMerchantFailureKeepsOrganicResults(t *testing.T) {
	b := backendFunc(func(context.Context, ai.Request) (ai.Answer, error) {
		return ai.Answer{Text: "ok", Chunks: []domain.GroundingChunk{{Web: &domain.SourceRef{Title: "Site", URI: "https://x.example"}}}}, nil
	})

	res, err := newService(b, staticMerchants{err: errors.New("redis down")}, &usageSpy{}).Search(context.Background(), Query{Text: "site"})
	require.NoError(t, err)
	require.Len(t, res.Places, 1)
	assert.False(t, res.Places[0].IsVerified)
}

func TestOvertakenSearchIsStale(t *testing.T) {
	seq := NewSequencer(0)
	var svc *Service
	b := backendFunc(func(_ context.Context, req ai.Request) (ai.Answer, error) {
		// A newer search from the same session arrives mid-flight.
		seq.Next("tab")
		return ai.Answer{Text: "late"}, nil
	})
	svc = NewService(b, staticMerchants{}, &usageSpy{}, catalog.NewHolder(), seq, logger.New("error", false))

	res, err := svc.Search(context.Background(), Query{Text: "bakery", Session: "tab"})
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.Equal(t, uint64(1), res.Seq)
}

func TestCategorySearch(t *testing.T) {
	var prompt string
	b := backendFunc(func(_ context.Context, req ai.Request) (ai.Answer, error) {
		prompt = req.Prompt
		return ai.Answer{Text: "ok"}, nil
	})
	merchants := staticMerchants{list: []domain.MerchantRequest{
		{BusinessName: "Bistro", Category: "Food & Drink", Status: domain.MerchantActive, BidAmount: 3},
	}}
	usage := &usageSpy{}
	svc := newService(b, merchants, usage)

	res, err := svc.Category(context.Background(), "food", Query{})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Find the best Food & Drink shops and services")
	assert.Equal(t, []string{"food"}, usage.categories)
	require.Len(t, res.Places, 1)
	assert.Equal(t, "Bistro", res.Places[0].Title)

	_, err = svc.Category(context.Background(), "spaceships", Query{})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestSequencer(t *testing.T) {
	s := NewSequencer(0)

	a := s.Next("one")
	b := s.Next("one")
	other := s.Next("two")

	assert.Equal(t, uint64(1), a)
	assert.Equal(t, uint64(2), b)
	assert.Equal(t, uint64(1), other)
	assert.False(t, s.IsLatest("one", a))
	assert.True(t, s.IsLatest("one", b))
	assert.True(t, s.IsLatest("two", other))

	// Client-chosen numbers only ever move the session forward.
	assert.Equal(t, uint64(10), s.Observe("one", 10))
	assert.Equal(t, uint64(4), s.Observe("one", 4))
	assert.False(t, s.IsLatest("one", 4))
	assert.True(t, s.IsLatest("one", 10))
	assert.Equal(t, uint64(11), s.Next("one"))
}

func TestSequencerWithoutSession(t *testing.T) {
	s := NewSequencer(0)

	a := s.Next("")
	b := s.Next("")
	assert.True(t, s.IsLatest("", a), "anonymous searches must not overtake each other")
	assert.True(t, s.IsLatest("", b))
	assert.Equal(t, uint64(7), s.Observe("", 7))
	assert.True(t, s.IsLatest("", 1))
}

func TestSequencerRejectsHugeNumbers(t *testing.T) {
	s := NewSequencer(0)

	tests := []uint64{MaxSeq + 1, ^uint64(0)}
	for _, n := range tests {
		got := s.Observe("tab", n)
		assert.LessOrEqual(t, got, MaxSeq, "Observe(%d)", n)
	}
	next := s.Next("tab")
	assert.Equal(t, uint64(3), next)
	assert.True(t, s.IsLatest("tab", next))

	// The largest accepted number still increments without wrapping.
	assert.Equal(t, MaxSeq, s.Observe("tab", MaxSeq))
	assert.Equal(t, MaxSeq+1, s.Next("tab"))
}

func TestAnonymousSearchesNeverStale(t *testing.T) {
	seq := NewSequencer(0)
	b := backendFunc(func(context.Context, ai.Request) (ai.Answer, error) {
		// Another client without a session searches mid-flight.
		seq.Next("")
		return ai.Answer{Text: "ok"}, nil
	})
	svc := NewService(b, staticMerchants{}, &usageSpy{}, catalog.NewHolder(), seq, logger.New("error", false))

	res, err := svc.Search(context.Background(), Query{Text: "bakery"})
	require.NoError(t, err)
	assert.False(t, res.Stale)
}

func TestSpanQueryIsTruncated(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	b := backendFunc(func(context.Context, ai.Request) (ai.Answer, error) {
		return ai.Answer{Text: "ok"}, nil
	})
	query := strings.Repeat("croissant ", 40)
	_, err := newService(b, staticMerchants{}, &usageSpy{}).Search(context.Background(), Query{Text: query})
	require.NoError(t, err)

	var found bool
	for _, span := range rec.Ended() {
		if span.Name() != "search.Search" {
			continue
		}
		for _, kv := range span.Attributes() {
			if kv.Key == "search.query" {
				found = true
				got := kv.Value.AsString()
				assert.Equal(t, 81, utf8.RuneCountInString(got))
				assert.True(t, strings.HasSuffix(got, "…"))
			}
		}
	}
	assert.True(t, found, "search span should carry the query attribute")
}
