package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/proposal-review/advisor/internal/agent/model"
	errx "github.com/proposal-review/advisor/internal/core/error"
	logx "github.com/proposal-review/advisor/pkg/logger"
)

type RedisStore struct {
	rdb  redis.Cmdable
	keys Keys
}

func NewRedisStore(rdb redis.Cmdable, keys Keys) *RedisStore {
	return &RedisStore{rdb: rdb, keys: keys}
}

func (r *RedisStore) Load(ctx context.Context) (model.StoredDataset, error) {
	keys := r.keys.all()
	vals, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		logx.Error().Err(err).Strs("keys", keys).Msg("failed to load dataset from redis")
		return model.StoredDataset{}, errx.WrapRedis(err)
	}

	found := make(map[string]string, len(keys))
	for i, v := range vals {
		// MGET yields nil for missing keys
		if s, ok := v.(string); ok {
			found[keys[i]] = s
		}
	}

	out, err := r.keys.decode(found)
	if err != nil {
		logx.Error().Err(err).Msg("failed to decode dataset from redis")
		return model.StoredDataset{}, err
	}
	return out, nil
}

func (r *RedisStore) Save(ctx context.Context, snapshot model.DatasetSnapshot) error {
	values, err := r.keys.encode(snapshot)
	if err != nil {
		logx.Error().Err(err).Msg("failed to encode dataset")
		return err
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, v := range values {
			pipe.Set(ctx, key, v, 0)
		}
		return nil
	})
	if err != nil {
		logx.Error().Err(err).Msg("failed to save dataset to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
