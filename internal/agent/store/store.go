package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/proposal-review/advisor/internal/agent/model"
	errx "github.com/proposal-review/advisor/internal/core/error"
)

// Store persists the mutable dataset.
type Store interface {
	// Load returns whatever was persisted; absent values are nil.
	Load(ctx context.Context) (model.StoredDataset, error)

	// Save overwrites all persisted values with the snapshot.
	Save(ctx context.Context, snapshot model.DatasetSnapshot) error
}

// Keys are the stable storage keys of the three persisted values.
type Keys struct {
	Records  string
	Budget   string
	Schedule string
}

func NewKeys(prefix string) Keys {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "review"
	}
	return Keys{
		Records:  prefix + ":candidates",
		Budget:   prefix + ":budget",
		Schedule: prefix + ":schedule",
	}
}

func (k Keys) all() []string {
	return []string{k.Records, k.Budget, k.Schedule}
}

// encode renders the snapshot into key -> stored string form. The budget is
// kept as its decimal string.
func (k Keys) encode(snapshot model.DatasetSnapshot) (map[string]string, error) {
	records := snapshot.Records
	if records == nil {
		records = []model.CandidateRecord{}
	}
	schedule := snapshot.Schedule
	if schedule == nil {
		schedule = []model.ScheduleEntry{}
	}

	rb, err := json.Marshal(records)
	if err != nil {
		return nil, errx.WrapStore(fmt.Errorf("marshal records: %w", err))
	}
	sb, err := json.Marshal(schedule)
	if err != nil {
		return nil, errx.WrapStore(fmt.Errorf("marshal schedule: %w", err))
	}
	return map[string]string{
		k.Records:  string(rb),
		k.Budget:   strconv.FormatFloat(snapshot.TotalBudget, 'f', -1, 64),
		k.Schedule: string(sb),
	}, nil
}

// decode parses found values; keys missing from values stay nil.
func (k Keys) decode(values map[string]string) (model.StoredDataset, error) {
	var out model.StoredDataset

	if s, ok := values[k.Records]; ok {
		var records []model.CandidateRecord
		if err := json.Unmarshal([]byte(s), &records); err != nil {
			return model.StoredDataset{}, errx.WrapStore(fmt.Errorf("unmarshal %s: %w", k.Records, err))
		}
		if records == nil {
			records = []model.CandidateRecord{}
		}
		out.Records = records
	}

	if s, ok := values[k.Budget]; ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return model.StoredDataset{}, errx.WrapStore(fmt.Errorf("parse %s: %w", k.Budget, err))
		}
		out.TotalBudget = &v
	}

	if s, ok := values[k.Schedule]; ok {
		var entries []model.ScheduleEntry
		if err := json.Unmarshal([]byte(s), &entries); err != nil {
			return model.StoredDataset{}, errx.WrapStore(fmt.Errorf("unmarshal %s: %w", k.Schedule, err))
		}
		if entries == nil {
			entries = []model.ScheduleEntry{}
		}
		out.Schedule = entries
	}

	return out, nil
}
