package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/proposal-review/advisor/internal/agent/dataset"
	"github.com/proposal-review/advisor/internal/agent/session"
	errx "github.com/proposal-review/advisor/internal/core/error"
	logx "github.com/proposal-review/advisor/pkg/logger"
)

const maxBodySize = 1 << 20 // 1MB

type AppDeps struct {
	Dataset  *dataset.Dataset
	Sessions *session.Registry
}

func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dataset", handleGetDataset(deps))
		r.Put("/dataset/budget", handleSetBudget(deps))
		r.Put("/dataset/records/{id}", handleReplaceRecord(deps))
		r.Post("/dataset/records/{id}/images", handleAppendImages(deps))
		r.Delete("/dataset/records/{id}/images/{index}", handleRemoveImage(deps))
		r.Post("/dataset/records/{id}/images/move", handleMoveImage(deps))
		r.Put("/dataset/records/{id}/document", handleSetDocument(deps))
		r.Put("/dataset/schedule/{id}", handleReplaceSchedule(deps))
		r.Get("/briefing", handleBriefing(deps))

		r.Post("/sessions", handleCreateSession(deps))
		r.Get("/sessions", handleListSessions(deps))
		r.Get("/sessions/{id}", handleGetSession(deps))
		r.Delete("/sessions/{id}", handleDeleteSession(deps))
		r.Put("/sessions/{id}/visibility", handleSetVisibility(deps))
		r.Post("/sessions/{id}/messages", handleDispatch(deps))
		r.Post("/sessions/{id}/trigger", handleTrigger(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logx.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("HTTP request")
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errx.InvalidInput("request body is empty")
		}
		return errx.InvalidInput("invalid request body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Warn().Err(err).Msg("Failed to encode response")
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}

// writeError maps an errx error to its status and error type.
func writeError(w http.ResponseWriter, err error) {
	status := errx.StatusOf(err)
	errType := "api_error"
	switch {
	case errors.Is(err, errx.ErrNotFound):
		errType = "not_found_error"
	case errors.Is(err, errx.ErrInvalidInput):
		errType = "invalid_request_error"
	case errors.Is(err, errx.ErrAssistantUnavailable):
		errType = "assistant_unavailable"
	}

	var appErr *errx.AppError
	if errors.As(err, &appErr) && appErr.Err != nil && status < http.StatusInternalServerError {
		httpError(w, status, errType, "%s", appErr.Err.Error())
		return
	}
	if status >= http.StatusInternalServerError {
		logx.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	httpError(w, status, errType, "%s", errx.MessageOf(err))
}
