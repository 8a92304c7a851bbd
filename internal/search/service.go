// Package search runs one user search end to end: grounded AI call,
// reconciliation against the merchant directory, usage counters and
// staleness tagging.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrSnakeDoc/nearby/internal/ai"
	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/metrics"
	"github.com/MrSnakeDoc/nearby/internal/pipeline"
)

var (
	// ErrEmptyQuery is returned before any backend call.
	ErrEmptyQuery      = errors.New("empty search query")
	ErrUnknownCategory = errors.New("unknown category")
)

// Backend is the grounded model call.
type Backend interface {
	Search(ctx context.Context, req ai.Request) (ai.Answer, error)
}

type MerchantSource interface {
	Active(ctx context.Context) ([]domain.MerchantRequest, error)
}

type UsageRecorder interface {
	RecordSearch(ctx context.Context) error
	RecordCategory(ctx context.Context, categoryID string) error
}

type Catalog interface {
	Category(id string) (domain.Category, bool)
	TrustedSources() []string
}

// Query is one search as the client asked for it.
type Query struct {
	Text    string
	User    *domain.Location
	Session string
	// Seq is the client's own sequence number; zero lets the server pick.
	Seq uint64
}

// Result is the reconciled response tagged with its sequence number.
type Result struct {
	domain.SearchResponse
	Session string `json:"session,omitempty"`
	Seq     uint64 `json:"seq"`
	Stale   bool   `json:"stale"`
}

type Service struct {
	backend   Backend
	merchants MerchantSource
	usage     UsageRecorder
	catalog   Catalog
	seq       *Sequencer
	logger    logger.Logger
	tracer    trace.Tracer
}

func NewService(backend Backend, merchants MerchantSource, usage UsageRecorder, cat Catalog, seq *Sequencer, log logger.Logger) *Service {
	if seq == nil {
		seq = NewSequencer(0)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		backend:   backend,
		merchants: merchants,
		usage:     usage,
		catalog:   cat,
		seq:       seq,
		logger:    log,
		tracer:    otel.Tracer("github.com/MrSnakeDoc/nearby/internal/search"),
	}
}

// Search returns a well-formed result for any non-empty query. Backend
// failures become the connectivity apology with Error set.
func (s *Service) Search(ctx context.Context, q Query) (Result, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return Result{}, ErrEmptyQuery
	}

	var n uint64
	if q.Seq > 0 {
		n = s.seq.Observe(q.Session, q.Seq)
	} else {
		n = s.seq.Next(q.Session)
	}

	ctx, span := s.tracer.Start(ctx, "search.Search")
	defer span.End()
	span.SetAttributes(
		attribute.String("search.query", logger.Truncate(text)),
		attribute.Bool("search.located", q.User != nil),
		attribute.Int64("search.seq", int64(n)),
	)

	if err := s.usage.RecordSearch(ctx); err != nil {
		s.logger.Warn("failed to record search", logger.Error(err))
	}

	resp := s.run(ctx, text, q.User)
	if resp.Error != "" {
		span.SetStatus(codes.Error, resp.Error)
		metrics.SearchesTotal.WithLabelValues("backend_error").Inc()
	} else {
		span.SetStatus(codes.Ok, "")
	}

	res := Result{SearchResponse: resp, Session: q.Session, Seq: n, Stale: !s.seq.IsLatest(q.Session, n)}
	if res.Stale {
		metrics.SearchesTotal.WithLabelValues("stale").Inc()
		s.logger.Debug("search overtaken by a newer request",
			logger.String("session", q.Session),
			logger.Uint64("seq", n))
	} else if resp.Error == "" {
		metrics.SearchesTotal.WithLabelValues("ok").Inc()
	}
	return res, nil
}

// Category runs the shortcut search for a catalog category.
func (s *Service) Category(ctx context.Context, id string, q Query) (Result, error) {
	cat, ok := s.catalog.Category(id)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownCategory, id)
	}
	if err := s.usage.RecordCategory(ctx, cat.ID); err != nil {
		s.logger.Warn("failed to record category click", logger.String("category", cat.ID), logger.Error(err))
	}

	q.Text = ai.CategoryPrompt(cat.Label)
	return s.Search(ctx, q)
}

func (s *Service) run(ctx context.Context, query string, user *domain.Location) domain.SearchResponse {
	ans, err := s.backend.Search(ctx, ai.Request{
		Prompt: ai.SearchPrompt(query, user),
		Bias:   user,
	})
	if err != nil {
		s.logger.Warn("search backend failed", logger.Text("query", query), logger.Error(err))
		return pipeline.Failed(err)
	}

	merchants, err := s.merchants.Active(ctx)
	if err != nil {
		// Sponsors are optional; organic results still go out.
		s.logger.Warn("merchant directory unavailable", logger.Error(err))
		merchants = nil
	}

	rec := pipeline.NewReconciler(s.logger, pipeline.DomainAllowlist(s.catalog.TrustedSources()))
	resp := rec.Reconcile(pipeline.Input{
		RawText:   ans.Text,
		Chunks:    ans.Chunks,
		User:      user,
		Merchants: merchants,
		Query:     query,
	})

	var sponsored int
	for _, p := range resp.Places {
		if p.IsPromoted {
			sponsored++
		}
	}
	metrics.PlacesReturned.WithLabelValues("sponsored").Observe(float64(sponsored))
	metrics.PlacesReturned.WithLabelValues("organic").Observe(float64(len(resp.Places) - sponsored))
	return resp
}
