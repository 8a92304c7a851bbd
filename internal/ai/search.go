package ai

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/logger"
)

// placeholderText stands in for an answer with no text at all.
const placeholderText = "Searching local area..."

// Request is one grounded search.
type Request struct {
	Prompt string
	// Bias steers map grounding towards a position. Optional.
	Bias *domain.Location
}

// Answer is the raw model output before reconciliation.
type Answer struct {
	Text   string
	Chunks []domain.GroundingChunk
}

// Search sends a prompt with Maps and Search grounding enabled.
func (c *Client) Search(ctx context.Context, req Request) (Answer, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return Answer{}, ErrEmptyPrompt
	}

	ctx, span := c.tracer.Start(ctx, "ai.Search")
	defer span.End()
	span.SetAttributes(attribute.Bool("search.biased", req.Bias != nil))

	cfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleMaps: &genai.GoogleMaps{}},
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}
	if req.Bias != nil {
		cfg.ToolConfig = &genai.ToolConfig{
			RetrievalConfig: &genai.RetrievalConfig{
				LatLng: &genai.LatLng{
					Latitude:  genai.Ptr(req.Bias.Latitude),
					Longitude: genai.Ptr(req.Bias.Longitude),
				},
			},
		}
	}

	resp, err := c.generate(ctx, "search", genai.Text(req.Prompt), cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		c.logger.Warn("grounded search failed", logger.Error(err))
		return Answer{}, err
	}

	ans := Answer{Text: resp.Text(), Chunks: groundingChunks(resp)}
	if strings.TrimSpace(ans.Text) == "" {
		ans.Text = placeholderText
	}

	span.SetAttributes(attribute.Int("search.chunks", len(ans.Chunks)))
	span.SetStatus(codes.Ok, "")
	return ans, nil
}

// groundingChunks flattens the first candidate's citations.
func groundingChunks(resp *genai.GenerateContentResponse) []domain.GroundingChunk {
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	gm := resp.Candidates[0].GroundingMetadata
	if gm == nil {
		return nil
	}

	out := make([]domain.GroundingChunk, 0, len(gm.GroundingChunks))
	for _, ch := range gm.GroundingChunks {
		if ch == nil {
			continue
		}
		var gc domain.GroundingChunk
		if ch.Maps != nil {
			gc.Maps = &domain.SourceRef{Title: ch.Maps.Title, URI: ch.Maps.URI}
		}
		if ch.Web != nil {
			gc.Web = &domain.SourceRef{Title: ch.Web.Title, URI: ch.Web.URI}
		}
		out = append(out, gc)
	}
	return out
}
