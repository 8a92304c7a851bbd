package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrSnakeDoc/nearby/internal/ai"
	"github.com/MrSnakeDoc/nearby/internal/geo"
	"github.com/MrSnakeDoc/nearby/internal/httpserver/deps"
	"github.com/MrSnakeDoc/nearby/internal/logger"
)

type weatherResponse struct {
	LocationStatus geo.Status `json:"locationStatus"`
	Weather        any        `json:"weather"`
}

// Weather answers GET /api/weather. Without a position, or when the
// lookup fails, weather is null.
func Weather(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pos := locate(r, d, queryLocation(r))
		resp := weatherResponse{LocationStatus: pos.Status}
		if pos.Granted() {
			if wx := d.Weather.FetchWeather(r.Context(), *pos.Location); wx != nil {
				resp.Weather = wx
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type chatRequest struct {
	coords
	Session string `json:"session"`
	Message string `json:"message"`
}

type chatResponse struct {
	Session string `json:"session"`
	Reply   string `json:"reply"`
	Error   string `json:"error,omitempty"`
}

// Chat answers POST /api/chat. A backend failure still yields a reply
// (the apology) with error set.
func Chat(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := decodeJSON(w, r, &req); err != nil {
			fail(w, d, err)
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			writeError(w, http.StatusBadRequest, ai.ErrEmptyPrompt.Error())
			return
		}
		if req.Session == "" {
			req.Session = uuid.NewString()
		}

		pos := locate(r, d, req.coords.reported())
		reply, err := d.Concierge.Chat(r.Context(), req.Session, req.Message, pos.Location)

		resp := chatResponse{Session: req.Session, Reply: reply}
		if err != nil {
			d.Logger.Warn("chat failed", logger.String("session", req.Session), logger.Error(err))
			resp.Error = err.Error()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ChatGreeting answers GET /api/chat/greeting.
func ChatGreeting(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, chatResponse{Reply: ai.ChatGreeting})
	}
}

// EndChat answers DELETE /api/chat/{session}.
func EndChat(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Concierge.EndChat(chi.URLParam(r, "session"))
		w.WriteHeader(http.StatusNoContent)
	}
}
