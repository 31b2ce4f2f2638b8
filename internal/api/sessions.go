package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/proposal-review/advisor/internal/agent/session"
	errx "github.com/proposal-review/advisor/internal/core/error"
)

type CreateSessionRequest struct {
	Open bool `json:"open"`
}

type VisibilityRequest struct {
	Open *bool `json:"open"`
}

type MessageRequest struct {
	Text string `json:"text"`
}

type TriggerRequest struct {
	Prompt string `json:"prompt"`
}

type TriggerResponse struct {
	Fired   bool             `json:"fired"`
	Session session.Snapshot `json:"session"`
}

func handleCreateSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := CreateSessionRequest{Open: true}
		if r.ContentLength != 0 {
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, err)
				return
			}
		}
		s := deps.Sessions.Create(req.Open)
		writeJSON(w, http.StatusCreated, s.Snapshot())
	}
}

func handleListSessions(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"sessions": deps.Sessions.List()})
	}
}

func handleGetSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := deps.Sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot())
	}
}

func handleDeleteSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Sessions.Delete(chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSetVisibility(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := deps.Sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		var req VisibilityRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.Open == nil {
			writeError(w, errx.InvalidInput("open is required"))
			return
		}
		s.SetOpen(*req.Open)
		writeJSON(w, http.StatusOK, s.Snapshot())
	}
}

// handleDispatch accepts one user question. With ?wait=true the response is
// delayed until the reply has been appended.
func handleDispatch(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := deps.Sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		var req MessageRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			writeError(w, errx.InvalidInput("text is required"))
			return
		}
		if !s.Dispatch(req.Text) {
			if s.Snapshot().Closed {
				writeError(w, errx.NotFound("session %q is closed", s.ID()))
				return
			}
			httpError(w, http.StatusConflict, "conflict_error", "a reply is still pending")
			return
		}
		if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
			if err := s.Wait(r.Context()); err != nil {
				httpError(w, http.StatusGatewayTimeout, "api_error", "waiting for reply: %v", err)
				return
			}
			writeJSON(w, http.StatusOK, s.Snapshot())
			return
		}
		writeJSON(w, http.StatusAccepted, s.Snapshot())
	}
}

func handleTrigger(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := deps.Sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		var req TriggerRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		fired := s.TriggerExternal(req.Prompt)
		status := http.StatusOK
		if fired {
			status = http.StatusAccepted
		}
		writeJSON(w, status, TriggerResponse{Fired: fired, Session: s.Snapshot()})
	}
}
