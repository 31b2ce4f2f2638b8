package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/proposal-review/advisor/internal/agent/briefing"
	"github.com/proposal-review/advisor/internal/agent/dataset"
	"github.com/proposal-review/advisor/internal/agent/model"
	errx "github.com/proposal-review/advisor/internal/core/error"
)

type DatasetResponse struct {
	Records     []model.CandidateRecord `json:"records"`
	TotalBudget float64                 `json:"totalBudget"`
	Shares      dataset.Shares          `json:"shares"`
	Schedule    []model.ScheduleEntry   `json:"schedule"`
}

type BudgetRequest struct {
	Total *float64 `json:"total"`
}

type BudgetResponse struct {
	TotalBudget float64        `json:"totalBudget"`
	Shares      dataset.Shares `json:"shares"`
}

type ImagesRequest struct {
	Images []model.ImageAsset `json:"images"`
}

type MoveImageRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

func handleGetDataset(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := deps.Dataset.Snapshot()
		writeJSON(w, http.StatusOK, DatasetResponse{
			Records:     snap.Records,
			TotalBudget: snap.TotalBudget,
			Shares:      dataset.SharesOf(snap.TotalBudget),
			Schedule:    snap.Schedule,
		})
	}
}

func handleSetBudget(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BudgetRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.Total == nil {
			writeError(w, errx.InvalidInput("total is required"))
			return
		}
		deps.Dataset.SetTotalBudget(*req.Total)
		total := deps.Dataset.TotalBudget()
		writeJSON(w, http.StatusOK, BudgetResponse{
			TotalBudget: total,
			Shares:      dataset.SharesOf(total),
		})
	}
}

// handleReplaceRecord swaps in the full record. The path id wins over the
// body, and an unknown id is accepted without effect.
func handleReplaceRecord(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec model.CandidateRecord
		if err := decodeJSON(w, r, &rec); err != nil {
			writeError(w, err)
			return
		}
		rec.ID = chi.URLParam(r, "id")
		deps.Dataset.ReplaceRecord(rec)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleAppendImages(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ImagesRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		if len(req.Images) == 0 {
			writeError(w, errx.InvalidInput("images is required"))
			return
		}
		updateRecord(w, r, deps, func(rec model.CandidateRecord) model.CandidateRecord {
			return rec.WithImagesAppended(req.Images...)
		})
	}
}

func handleRemoveImage(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			writeError(w, errx.InvalidInput("index must be an integer"))
			return
		}
		updateRecord(w, r, deps, func(rec model.CandidateRecord) model.CandidateRecord {
			return rec.WithoutImage(idx)
		})
	}
}

func handleMoveImage(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MoveImageRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.From == nil || req.To == nil {
			writeError(w, errx.InvalidInput("from and to are required"))
			return
		}
		updateRecord(w, r, deps, func(rec model.CandidateRecord) model.CandidateRecord {
			return rec.WithImageMoved(*req.From, *req.To)
		})
	}
}

func handleSetDocument(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc model.DocumentAsset
		if err := decodeJSON(w, r, &doc); err != nil {
			writeError(w, err)
			return
		}
		if strings.TrimSpace(doc.Name) == "" {
			writeError(w, errx.InvalidInput("name is required"))
			return
		}
		updateRecord(w, r, deps, func(rec model.CandidateRecord) model.CandidateRecord {
			return rec.WithDocument(doc)
		})
	}
}

// updateRecord builds the replacement from the latest copy of the record.
func updateRecord(w http.ResponseWriter, r *http.Request, deps AppDeps, edit func(model.CandidateRecord) model.CandidateRecord) {
	id := chi.URLParam(r, "id")
	rec, ok := deps.Dataset.Record(id)
	if !ok {
		writeError(w, errx.NotFound("record %q not found", id))
		return
	}
	updated := edit(rec)
	deps.Dataset.ReplaceRecord(updated)
	writeJSON(w, http.StatusOK, updated)
}

func handleReplaceSchedule(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var entry model.ScheduleEntry
		if err := decodeJSON(w, r, &entry); err != nil {
			writeError(w, err)
			return
		}
		entry.ID = chi.URLParam(r, "id")
		deps.Dataset.ReplaceScheduleEntry(entry)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleBriefing(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(briefing.Serialize(deps.Dataset.Records())))
	}
}
