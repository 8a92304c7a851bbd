package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/nearby/internal/httpserver/deps"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/voice"
)

const maxAudioBytes = 1 << 20

// VoiceStart answers POST /api/voice/sessions. A failed connection still
// returns the session snapshot (state "error") with 502.
func VoiceStart(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := d.Voice.Start(r.Context())
		if err != nil {
			d.Logger.Warn("voice session failed to start", logger.Error(err))
			writeJSON(w, http.StatusBadGateway, s.Snapshot())
			return
		}
		writeJSON(w, http.StatusCreated, s.Snapshot())
	}
}

func VoiceStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := d.Voice.Get(chi.URLParam(r, "id"))
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot())
	}
}

// VoiceAudio forwards one raw PCM frame (16 kHz, 16-bit, mono).
func VoiceAudio(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := d.Voice.Get(chi.URLParam(r, "id"))
		if err != nil {
			fail(w, d, err)
			return
		}

		pcm, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAudioBytes))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "audio frame too large")
			return
		}
		if len(pcm) == 0 {
			writeError(w, http.StatusBadRequest, "empty audio frame")
			return
		}

		if err := s.SendAudio(r.Context(), pcm); err != nil {
			if errors.Is(err, voice.ErrNotActive) {
				fail(w, d, err)
				return
			}
			writeJSON(w, http.StatusBadGateway, s.Snapshot())
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

type playbackResponse struct {
	State  voice.State `json:"state"`
	Chunks [][]byte    `json:"chunks"`
}

// VoicePlayback drains buffered model audio (base64 in JSON).
func VoicePlayback(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := d.Voice.Get(chi.URLParam(r, "id"))
		if err != nil {
			fail(w, d, err)
			return
		}
		chunks := s.Playback()
		if chunks == nil {
			chunks = [][]byte{}
		}
		writeJSON(w, http.StatusOK, playbackResponse{State: s.State(), Chunks: chunks})
	}
}

// VoiceStop closes the session and drops any unplayed audio.
func VoiceStop(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Voice.Close(chi.URLParam(r, "id")); err != nil {
			if errors.Is(err, voice.ErrSessionNotFound) {
				fail(w, d, err)
				return
			}
			d.Logger.Debug("voice stream close error", logger.Error(err))
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
