package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"
	"google.golang.org/genai"

	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/metrics"
)

// weatherKey buckets positions to ~1 km so nearby users share an entry.
func weatherKey(loc domain.Location) string {
	return fmt.Sprintf("%.2f,%.2f", loc.Latitude, loc.Longitude)
}

// FetchWeather returns current conditions near loc, or nil when the
// backend fails or answers with something unparsable.
func (c *Client) FetchWeather(ctx context.Context, loc domain.Location) *domain.Weather {
	key := weatherKey(loc)
	if v, ok := c.weather.Get(key); ok {
		metrics.WeatherCacheHits.Inc()
		w := v.(domain.Weather)
		return &w
	}

	ctx, span := c.tracer.Start(ctx, "ai.FetchWeather")
	defer span.End()

	resp, err := c.generate(ctx, "weather", genai.Text(weatherPrompt(loc)), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		span.RecordError(err)
		c.logger.Warn("weather fetch failed", logger.Error(err))
		return nil
	}

	w, err := parseWeather(resp.Text())
	if err != nil {
		c.logger.Debug("weather answer unusable", logger.Error(err))
		return nil
	}

	c.weather.Set(key, *w, cache.DefaultExpiration)
	return w
}

// parseWeather decodes the first {...} span of text.
func parseWeather(text string) (*domain.Weather, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in weather answer")
	}

	var w domain.Weather
	if err := json.Unmarshal([]byte(text[start:end+1]), &w); err != nil {
		return nil, fmt.Errorf("decode weather: %w", err)
	}
	if w.Temp == "" && w.Condition == "" {
		return nil, fmt.Errorf("weather answer has no temp or condition")
	}
	return &w, nil
}
