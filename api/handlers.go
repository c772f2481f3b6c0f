package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/CreativeUnicorns/cogbot"
)

type categoryResponse struct {
	Category string       `json:"category"`
	Default  cogbot.State `json:"default"`
}

type scopeResponse struct {
	ScopeID  int64                   `json:"scope_id,string"`
	Settings map[string]cogbot.State `json:"settings"`
}

type writeResponse struct {
	ScopeID  int64  `json:"scope_id,string"`
	Category string `json:"category"`
	Mode     string `json:"mode"`
	Result   string `json:"result"`
}

type resolveResponse struct {
	ChannelID int64                 `json:"channel_id,string"`
	GuildID   int64                 `json:"guild_id,string"`
	Category  string                `json:"category,omitempty"`
	State     *cogbot.State         `json:"state,omitempty"`
	Views     []cogbot.CategoryView `json:"views,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListCategories lists the configured categories with their defaults.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats := s.manager.Categories()
	out := make([]categoryResponse, 0, len(cats))
	for _, cat := range cats {
		def, _ := s.manager.Default(cat)
		out = append(out, categoryResponse{Category: cat, Default: def})
	}
	s.respondWithJSON(w, r, http.StatusOK, out)
}

// handleGetScope returns the explicit values set for one channel or guild.
func (s *Server) handleGetScope(w http.ResponseWriter, r *http.Request) {
	scopeID, err := parseSnowflake(chi.URLParam(r, "scopeID"))
	if err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid scope id", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, scopeResponse{
		ScopeID:  scopeID,
		Settings: s.manager.Scope(scopeID),
	})
}

// handleWriteSetting applies on, off or reset to one category at one scope.
// The change is persisted by the next checkpoint.
func (s *Server) handleWriteSetting(w http.ResponseWriter, r *http.Request) {
	scopeID, err := parseSnowflake(chi.URLParam(r, "scopeID"))
	if err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid scope id", err)
		return
	}

	category, mode, err := s.manager.ParseWriteArgs([]string{
		chi.URLParam(r, "category"),
		chi.URLParam(r, "mode"),
	})
	if err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid setting", err)
		return
	}

	result, err := s.manager.Write(scopeID, category, mode)
	if err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid setting", err)
		return
	}
	s.logger.Info("Settings changed via API", "scope_id", scopeID, "category", category, "result", result.String())

	s.respondWithJSON(w, r, http.StatusOK, writeResponse{
		ScopeID:  scopeID,
		Category: category,
		Mode:     string(mode),
		Result:   result.String(),
	})
}

// handleResolve resolves one category, or every category when none is given.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	channelID, err := parseSnowflake(q.Get("channel"))
	if err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid channel id", err)
		return
	}
	guildID, err := parseSnowflake(q.Get("guild"))
	if err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid guild id", err)
		return
	}

	resp := resolveResponse{ChannelID: channelID, GuildID: guildID}
	category := strings.ToLower(strings.TrimSpace(q.Get("category")))
	if category == "" {
		views, err := s.manager.Effective(channelID, guildID)
		if err != nil {
			s.respondWithError(w, r, http.StatusInternalServerError, "Failed to resolve settings", err)
			return
		}
		resp.Views = views
		s.respondWithJSON(w, r, http.StatusOK, resp)
		return
	}

	state, err := s.manager.Resolve(channelID, guildID, category)
	if err != nil {
		if errors.Is(err, cogbot.ErrMissingDefault) {
			s.respondWithError(w, r, http.StatusNotFound, "Unknown category", err)
			return
		}
		s.respondWithError(w, r, http.StatusInternalServerError, "Failed to resolve setting", err)
		return
	}
	resp.Category = category
	resp.State = &state
	s.respondWithJSON(w, r, http.StatusOK, resp)
}

// handleCheckpoint saves the settings table now.
func (s *Server) handleCheckpoint(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Save(r.Context()); err != nil {
		s.respondWithError(w, r, http.StatusInternalServerError, "Checkpoint failed", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, map[string]string{"status": "saved"})
}

// parseSnowflake parses a Discord id. Missing ids are 0.
func parseSnowflake(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: id %q", cogbot.ErrInvalidInput, v)
	}
	return id, nil
}

// respondWithError is a helper to send JSON error responses. Validation
// failures also list the valid categories and modes.
func (s *Server) respondWithError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	body := map[string]any{"message": message}
	if err != nil {
		body["details"] = err.Error()
	}
	var verr *cogbot.ValidationError
	if errors.As(err, &verr) {
		body["categories"] = verr.Categories
		body["modes"] = verr.Modes
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("API Error", "status", status, "message", message, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("API request rejected", "status", status, "message", message, "path", r.URL.Path, "error", err)
	}
	respondWithJSONRaw(w, status, map[string]any{"error": body})
}

// respondWithJSON is a helper to send JSON responses.
func (s *Server) respondWithJSON(w http.ResponseWriter, _ *http.Request, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Failed to marshal response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// respondWithJSONRaw is a lower-level helper for error responses.
func respondWithJSONRaw(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Critical: Failed to marshal error response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
