package store

import (
	"context"

	"github.com/patrickmn/go-cache"

	"github.com/proposal-review/advisor/internal/agent/model"
)

// MemoryStore keeps encoded values in process. Used for local runs and tests.
type MemoryStore struct {
	cache *cache.Cache
	keys  Keys
}

func NewMemoryStore(keys Keys) *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 0),
		keys:  keys,
	}
}

func (m *MemoryStore) Load(ctx context.Context) (model.StoredDataset, error) {
	found := map[string]string{}
	for _, k := range m.keys.all() {
		if v, ok := m.cache.Get(k); ok {
			found[k] = v.(string)
		}
	}
	return m.keys.decode(found)
}

func (m *MemoryStore) Save(ctx context.Context, snapshot model.DatasetSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	values, err := m.keys.encode(snapshot)
	if err != nil {
		return err
	}
	for k, v := range values {
		m.cache.Set(k, v, cache.NoExpiration)
	}
	return nil
}

// SetRaw stores an already encoded value, e.g. to simulate a corrupt entry.
func (m *MemoryStore) SetRaw(key, value string) {
	m.cache.Set(key, value, cache.NoExpiration)
}

var _ Store = (*MemoryStore)(nil)
