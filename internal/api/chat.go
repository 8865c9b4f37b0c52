package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/clovis-labs/rhassist/internal/agent"
	"github.com/clovis-labs/rhassist/internal/knowledge"
)

// maxBodyBytes bounds chat request bodies.
const maxBodyBytes = 64 * 1024

// ChatFunc processes one conversation turn. The app wires the genkit chat
// flow's Run method here; tests supply plain functions.
type ChatFunc func(ctx context.Context, in agent.Input) (agent.Output, error)

type chatHandler struct {
	chat   ChatFunc
	logger *slog.Logger
}

func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var in agent.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large", h.logger)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return
	}

	if utf8.RuneCountInString(strings.TrimSpace(in.Message)) < 3 {
		writeError(w, http.StatusBadRequest, "message_too_short", "message must be at least 3 characters", h.logger)
		return
	}
	if in.Profile != "" {
		if _, err := knowledge.ParseProfile(in.Profile); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_profile", "unknown profile: "+in.Profile, h.logger)
			return
		}
	}
	if in.Domaine != "" {
		if _, err := knowledge.ParseDomain(in.Domaine); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_domaine", "unknown domaine: "+in.Domaine, h.logger)
			return
		}
	}

	out, err := h.chat(r.Context(), in)
	if err != nil {
		if errors.Is(err, agent.ErrQueryTooShort) {
			writeError(w, http.StatusBadRequest, "message_too_short", "message must be at least 3 characters", h.logger)
			return
		}
		h.logger.Error("chat turn failed", "error", err)
		writeError(w, http.StatusInternalServerError, "chat_failed", "failed to process message", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, out, h.logger)
}

type metaHandler struct {
	model  string
	topK   int
	logger *slog.Logger
}

func (h *metaHandler) profiles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"profiles": knowledge.ProfileNames(),
	}, h.logger)
}

func (h *metaHandler) domains(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"domains": knowledge.DomainNames(),
	}, h.logger)
}

func (h *metaHandler) config(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"model_name": h.model,
		"top_k":      h.topK,
		"profiles":   knowledge.ProfileNames(),
		"domains":    knowledge.DomainNames(),
	}, h.logger)
}
