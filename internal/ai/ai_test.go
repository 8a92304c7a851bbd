package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/logger"
)

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	lastCfg *genai.GenerateContentConfig
	prompt  string
	resp    *genai.GenerateContentResponse
	err     error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastCfg = cfg
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

type fakeChat struct {
	replies []string
	err     error
	got     []string
}

func (f *fakeChat) SendMessage(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	for _, p := range parts {
		f.got = append(f.got, p.Text)
	}
	if f.err != nil {
		return nil, f.err
	}
	reply := ""
	if len(f.replies) > 0 {
		reply, f.replies = f.replies[0], f.replies[1:]
	}
	return textResponse(reply, nil), nil
}

func textResponse(text string, chunks []*genai.GroundingChunk) *genai.GenerateContentResponse {
	cand := &genai.Candidate{Content: genai.NewContentFromText(text, genai.RoleModel)}
	if chunks != nil {
		cand.GroundingMetadata = &genai.GroundingMetadata{GroundingChunks: chunks}
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{cand}}
}

func newTestClient(gen generator, chats chatFactory) *Client {
	return newClient(gen, chats, Options{Model: "test-model", Timeout: time.Second}, logger.New("error", false))
}

func TestSearchBuildsGroundedRequest(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse("Nice area. JSON_META: []", []*genai.GroundingChunk{
		{Maps: &genai.GroundingChunkMaps{Title: "Acme", URI: "https://maps.google.com/?cid=1"}},
		{Web: &genai.GroundingChunkWeb{Title: "Blog", URI: "https://blog.example"}},
		nil,
	})}
	c := newTestClient(gen, nil)

	ans, err := c.Search(context.Background(), Request{
		Prompt: SearchPrompt("bakery", &domain.Location{Latitude: 48.85, Longitude: 2.35}),
		Bias:   &domain.Location{Latitude: 48.85, Longitude: 2.35},
	})
	require.NoError(t, err)

	assert.Equal(t, "Nice area. JSON_META: []", ans.Text)
	require.Len(t, ans.Chunks, 2)
	assert.Equal(t, "Acme", ans.Chunks[0].Maps.Title)
	assert.Nil(t, ans.Chunks[0].Web)
	assert.Equal(t, "https://blog.example", ans.Chunks[1].Web.URI)

	require.NotNil(t, gen.lastCfg)
	require.Len(t, gen.lastCfg.Tools, 2)
	assert.NotNil(t, gen.lastCfg.Tools[0].GoogleMaps)
	assert.NotNil(t, gen.lastCfg.Tools[1].GoogleSearch)
	require.NotNil(t, gen.lastCfg.ToolConfig)
	assert.Equal(t, 48.85, *gen.lastCfg.ToolConfig.RetrievalConfig.LatLng.Latitude)
	assert.Contains(t, gen.prompt, `Find "bakery" near the user at (48.85, 2.35)`)
	assert.Contains(t, gen.prompt, "JSON_META:")
}

func TestSearchWithoutBias(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse("", nil)}
	c := newTestClient(gen, nil)

	ans, err := c.Search(context.Background(), Request{Prompt: SearchPrompt("plumbers", nil)})
	require.NoError(t, err)
	assert.Nil(t, gen.lastCfg.ToolConfig)
	assert.Equal(t, placeholderText, ans.Text)
	assert.Empty(t, ans.Chunks)
	assert.Contains(t, gen.prompt, "near me")
}

func TestSearchErrors(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("dial tcp: i/o timeout")}
	c := newTestClient(gen, nil)

	_, err := c.Search(context.Background(), Request{Prompt: "   "})
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Equal(t, 0, gen.calls, "empty prompts never reach the backend")

	_, err = c.Search(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrBackendUnavailable)

	gen.err = nil
	gen.resp = nil
	_, err = c.Search(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestFetchWeatherParsesAndCaches(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse("Sure! ```json\n{\"temp\":\"22°C\",\"condition\":\"Sunny\",\"emoji\":\"☀️\",\"locationName\":\"Paris\"}\n```", nil)}
	c := newTestClient(gen, nil)
	loc := domain.Location{Latitude: 48.8566, Longitude: 2.3522}

	w := c.FetchWeather(context.Background(), loc)
	require.NotNil(t, w)
	assert.Equal(t, "22°C", w.Temp)
	assert.Equal(t, "Paris", w.LocationName)

	// A position in the same bucket is served from cache.
	w2 := c.FetchWeather(context.Background(), domain.Location{Latitude: 48.8571, Longitude: 2.3519})
	require.NotNil(t, w2)
	assert.Equal(t, 1, gen.calls)
}

func TestFetchWeatherFailures(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"backend error", &fakeGenerator{err: errors.New("boom")}},
		{"no json", &fakeGenerator{resp: textResponse("It is sunny.", nil)}},
		{"bad json", &fakeGenerator{resp: textResponse("{temp: 22}", nil)}},
		{"empty object", &fakeGenerator{resp: textResponse("{}", nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(tt.gen, nil)
			assert.Nil(t, c.FetchWeather(context.Background(), domain.Location{Latitude: 1, Longitude: 1}))
		})
	}
}

func TestChatKeepsOneConversationPerSession(t *testing.T) {
	var created int
	var instruction string
	fc := &fakeChat{replies: []string{"Bonjour!", "Voici."}}
	c := newTestClient(&fakeGenerator{}, func(_ context.Context, _ string, cfg *genai.GenerateContentConfig) (chatSession, error) {
		created++
		instruction = cfg.SystemInstruction.Parts[0].Text
		return fc, nil
	})

	loc := &domain.Location{Latitude: 45.5, Longitude: -73.56}
	reply, err := c.Chat(context.Background(), "s1", "Salut", loc)
	require.NoError(t, err)
	assert.Equal(t, "Bonjour!", reply)

	reply, err = c.Chat(context.Background(), "s1", "Des marchés?", loc)
	require.NoError(t, err)
	assert.Equal(t, "Voici.", reply)

	assert.Equal(t, 1, created)
	assert.Equal(t, []string{"Salut", "Des marchés?"}, fc.got)
	assert.Contains(t, instruction, "Lat: 45.5, Lng: -73.56")

	c.EndChat("s1")
	_, _ = c.Chat(context.Background(), "s1", "again", nil)
	assert.Equal(t, 2, created)
	assert.Contains(t, instruction, "User Location Context: Unknown")
}

func TestChatFailuresApologise(t *testing.T) {
	c := newTestClient(&fakeGenerator{}, func(context.Context, string, *genai.GenerateContentConfig) (chatSession, error) {
		return &fakeChat{err: errors.New("503")}, nil
	})

	reply, err := c.Chat(context.Background(), "s", "hi", nil)
	assert.Equal(t, ChatApology, reply)
	assert.ErrorIs(t, err, ErrBackendUnavailable)

	_, err = c.Chat(context.Background(), "s", "  ", nil)
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	broken := newTestClient(&fakeGenerator{}, func(context.Context, string, *genai.GenerateContentConfig) (chatSession, error) {
		return nil, errors.New("quota")
	})
	reply, err = broken.Chat(context.Background(), "s", "hi", nil)
	assert.Equal(t, ChatApology, reply)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestPrompts(t *testing.T) {
	assert.Equal(t, "Find the best Food & Drink shops and services", CategoryPrompt("Food & Drink"))
	assert.True(t, strings.HasSuffix(SearchPrompt("x", nil), `"type": "market/service/emergency/lifestyle"}]`))
}
