package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"bible-reader/internal/provider"
)

const askSystemPrompt = "You are a helpful assistant answering questions about Bible passages. " +
	"The user's question is preceded by the passage they are reading."

type askRequest struct {
	Query    string `json:"query"`
	Password string `json:"password"`
}

// handleAskQuery gates the upstream model behind the shared secret. The
// comparison is a plain string check; everything past it is request
// shaping and error translation.
func (s *Server) handleAskQuery(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Empty query")
		return
	}

	if s.cfg.Password == "" || s.prov == nil {
		s.log.Warn("ask-query rejected: endpoint not configured")
		writeError(w, http.StatusServiceUnavailable, "Query endpoint is not configured on this server")
		return
	}

	if req.Password != s.cfg.Password {
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.QueryTimeout)
	defer cancel()

	reply, err := s.prov.Prompt(ctx, askSystemPrompt, req.Query)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrOverloaded):
			s.log.Warn("ask-query upstream overloaded")
			writeError(w, http.StatusServiceUnavailable,
				"Claude AI is currently experiencing high demand. Please try again in a few minutes.")
		case errors.Is(err, context.DeadlineExceeded):
			s.log.Warn("ask-query upstream timeout")
			writeError(w, http.StatusGatewayTimeout, "Request to the AI service timed out")
		default:
			s.log.Error("ask-query upstream failure", "err", err)
			writeError(w, http.StatusBadGateway, "Failed to get response from the AI service")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
