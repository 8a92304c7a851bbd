package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/nearby/internal/httpserver/deps"
	"github.com/MrSnakeDoc/nearby/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/nearby/internal/httpserver/mw"
)

func init() { Register(registerAssistant) }

func registerAssistant(r chi.Router, d deps.Deps) {
	r.Get("/api/weather", handlers.Weather(d))

	r.Route("/api/chat", func(r chi.Router) {
		r.Get("/greeting", handlers.ChatGreeting(d))
		r.With(mw.RateLimit(mw.RateLimitConfig{
			Name:              "chat",
			Burst:             d.RateLimitBurst,
			RefillPerIPPerMin: d.RateLimitPerMin,
			MaxEntries:        10000,
			TrustProxy:        d.TrustProxy,
		})).Post("/", handlers.Chat(d))
		r.Delete("/{session}", handlers.EndChat(d))
	})

	r.Route("/api/voice/sessions", func(r chi.Router) {
		r.Post("/", handlers.VoiceStart(d))
		r.Get("/{id}", handlers.VoiceStatus(d))
		r.Post("/{id}/audio", handlers.VoiceAudio(d))
		r.Get("/{id}/playback", handlers.VoicePlayback(d))
		r.Delete("/{id}", handlers.VoiceStop(d))
	})
}
