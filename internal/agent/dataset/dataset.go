package dataset

import (
	"context"
	"sync"

	"github.com/proposal-review/advisor/internal/agent/model"
	"github.com/proposal-review/advisor/internal/agent/store"
	logx "github.com/proposal-review/advisor/pkg/logger"
)

// Saver receives the full snapshot after every accepted mutation. It is called
// with the dataset lock held so snapshots arrive in mutation order, and must
// not block beyond copying the snapshot.
type Saver interface {
	Save(snapshot model.DatasetSnapshot)
}

type nopSaver struct{}

func (nopSaver) Save(model.DatasetSnapshot) {}

// Dataset is the in-memory source of truth for record content, budget and
// schedule. Readers always get copies.
type Dataset struct {
	mu       sync.RWMutex
	records  []model.CandidateRecord
	budget   float64
	schedule []model.ScheduleEntry
	saver    Saver
}

// New builds a dataset from snapshot. A nil saver disables persistence.
func New(snapshot model.DatasetSnapshot, saver Saver) *Dataset {
	if saver == nil {
		saver = nopSaver{}
	}
	return &Dataset{
		records:  model.CloneRecords(snapshot.Records),
		budget:   snapshot.TotalBudget,
		schedule: model.CloneSchedule(snapshot.Schedule),
		saver:    saver,
	}
}

// Load reads the persisted dataset once. Absent values fall back to the seed
// individually; a failed read falls back to the whole seed.
func Load(ctx context.Context, st store.Store, saver Saver) *Dataset {
	return New(Restore(ctx, st), saver)
}

// Restore resolves the startup snapshot from st and the seed.
func Restore(ctx context.Context, st store.Store) model.DatasetSnapshot {
	seed := Seed()
	if st == nil {
		return seed
	}

	stored, err := st.Load(ctx)
	if err != nil {
		logx.Warn().Err(err).Msg("Failed to load persisted dataset - using seed")
		return seed
	}
	if stored.Empty() {
		logx.Debug().Msg("No persisted dataset - using seed")
		return seed
	}

	out := seed
	if stored.Records != nil {
		out.Records = stored.Records
	}
	if stored.TotalBudget != nil {
		out.TotalBudget = *stored.TotalBudget
	}
	if stored.Schedule != nil {
		out.Schedule = stored.Schedule
	}
	logx.Debug().
		Int("records", len(out.Records)).
		Float64("total_budget", out.TotalBudget).
		Int("schedule_entries", len(out.Schedule)).
		Msg("Restored persisted dataset")
	return out
}

// ReplaceRecord swaps in updated for the record with the same id. An unknown
// id is ignored and reported as false.
func (d *Dataset) ReplaceRecord(updated model.CandidateRecord) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := -1
	for i := range d.records {
		if d.records[i].ID == updated.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		logx.Debug().Str("record_id", updated.ID).Msg("Ignoring replacement of unknown record")
		return false
	}
	d.records[idx] = updated.Clone()
	d.saver.Save(d.snapshotLocked())
	return true
}

// SetTotalBudget accepts any value, including zero and negatives.
func (d *Dataset) SetTotalBudget(value float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.budget = value
	d.saver.Save(d.snapshotLocked())
}

// ReplaceScheduleEntry swaps in entry for the one with the same id.
func (d *Dataset) ReplaceScheduleEntry(entry model.ScheduleEntry) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := -1
	for i := range d.schedule {
		if d.schedule[i].ID == entry.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		logx.Debug().Str("schedule_id", entry.ID).Msg("Ignoring replacement of unknown schedule entry")
		return false
	}
	d.schedule[idx] = entry
	d.saver.Save(d.snapshotLocked())
	return true
}

func (d *Dataset) Records() []model.CandidateRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return model.CloneRecords(d.records)
}

func (d *Dataset) Record(id string) (model.CandidateRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, r := range d.records {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return model.CandidateRecord{}, false
}

func (d *Dataset) TotalBudget() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.budget
}

// Shares splits the current total budget by the fixed percentages.
func (d *Dataset) Shares() Shares {
	return SharesOf(d.TotalBudget())
}

func (d *Dataset) Schedule() []model.ScheduleEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return model.CloneSchedule(d.schedule)
}

func (d *Dataset) Snapshot() model.DatasetSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshotLocked()
}

func (d *Dataset) snapshotLocked() model.DatasetSnapshot {
	return model.DatasetSnapshot{
		Records:     model.CloneRecords(d.records),
		TotalBudget: d.budget,
		Schedule:    model.CloneSchedule(d.schedule),
	}
}
