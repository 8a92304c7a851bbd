// Package ai talks to the Gemini backend: grounded place search, the
// weather widget and the concierge chat.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/metrics"
)

var (
	// ErrBackendUnavailable wraps every transport or API failure.
	ErrBackendUnavailable = errors.New("ai backend unavailable")
	// ErrEmptyPrompt is returned before any network call.
	ErrEmptyPrompt = errors.New("empty prompt")
)

// generator is the subset of *genai.Models the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// chatSession is the subset of *genai.Chat the client uses.
type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatFactory func(ctx context.Context, model string, config *genai.GenerateContentConfig) (chatSession, error)

type Options struct {
	APIKey          string
	Model           string
	Timeout         time.Duration
	WeatherCacheTTL time.Duration
	ChatSessionTTL  time.Duration
}

// Client is safe for concurrent use.
type Client struct {
	models   generator
	newChat  chatFactory
	genai    *genai.Client
	opts     Options
	logger   logger.Logger
	tracer   trace.Tracer
	weather  *cache.Cache
	sessions *cache.Cache
}

// New connects to the Gemini API.
func New(ctx context.Context, opts Options, log logger.Logger) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	c := newClient(gc.Models, func(ctx context.Context, model string, cfg *genai.GenerateContentConfig) (chatSession, error) {
		return gc.Chats.Create(ctx, model, cfg, nil)
	}, opts, log)
	c.genai = gc
	return c, nil
}

func newClient(models generator, newChat chatFactory, opts Options, log logger.Logger) *Client {
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.WeatherCacheTTL <= 0 {
		opts.WeatherCacheTTL = 30 * time.Minute
	}
	if opts.ChatSessionTTL <= 0 {
		opts.ChatSessionTTL = time.Hour
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		models:   models,
		newChat:  newChat,
		opts:     opts,
		logger:   log,
		tracer:   otel.Tracer("github.com/MrSnakeDoc/nearby/internal/ai"),
		weather:  cache.New(opts.WeatherCacheTTL, 2*opts.WeatherCacheTTL),
		sessions: cache.New(opts.ChatSessionTTL, opts.ChatSessionTTL),
	}
}

// GenAI exposes the underlying SDK client (nil in tests).
func (c *Client) GenAI() *genai.Client { return c.genai }

// generate runs one model call with the client timeout, recording latency
// and wrapping failures in ErrBackendUnavailable.
func (c *Client) generate(ctx context.Context, op string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.opts.Model, contents, cfg)
	metrics.AIRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AIRequestsFailed.WithLabelValues(op).Inc()
		return nil, fmt.Errorf("%s: %w: %w", op, ErrBackendUnavailable, err)
	}
	if resp == nil {
		metrics.AIRequestsFailed.WithLabelValues(op).Inc()
		return nil, fmt.Errorf("%s: %w: empty response", op, ErrBackendUnavailable)
	}
	return resp, nil
}
