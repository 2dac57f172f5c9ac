package persist

import (
	"context"
	"encoding/json"
	"sort"

	redis "github.com/redis/go-redis/v9"

	"github.com/l1jgo/gridworld/internal/errors"
)

// RedisClient is the subset of go-redis the store needs. *redis.Client
// and cluster clients satisfy it.
type RedisClient interface {
	redis.UniversalClient
}

// RedisStore keeps each character as one JSON value under
// "<prefix>:character:<user id>" and factions in the hash
// "<prefix>:factions".
type RedisStore struct {
	client RedisClient
	prefix string
}

func NewRedisStore(client RedisClient, prefix string) (*RedisStore, error) {
	if client == nil {
		return nil, errors.Validation("redis client cannot be nil")
	}
	if prefix == "" {
		prefix = "gridworld"
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) characterKey(userID string) string {
	return s.prefix + ":character:" + userID
}

func (s *RedisStore) factionsKey() string {
	return s.prefix + ":factions"
}

func (s *RedisStore) Load(ctx context.Context, userID string) (*Record, error) {
	if userID == "" {
		return nil, errors.Validation("user id cannot be empty")
	}
	result, err := s.client.Get(ctx, s.characterKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("no character for user %s", userID)
		}
		return nil, errors.Persistencef(err, "load character %s", userID)
	}

	var rec Record
	if err := json.Unmarshal([]byte(result), &rec); err != nil {
		return nil, errors.Persistencef(err, "decode character %s", userID)
	}
	return &rec, nil
}

// Save writes the whole record with a single SET, which is atomic.
func (s *RedisStore) Save(ctx context.Context, rec *Record) error {
	if rec.UserID == "" {
		return errors.Validation("user id cannot be empty")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Persistencef(err, "encode character %s", rec.UserID)
	}
	if err := s.client.Set(ctx, s.characterKey(rec.UserID), data, 0).Err(); err != nil {
		return errors.Persistencef(err, "save character %s", rec.UserID)
	}
	return nil
}

func (s *RedisStore) LoadFactions(ctx context.Context) ([]FactionRecord, error) {
	all, err := s.client.HGetAll(ctx, s.factionsKey()).Result()
	if err != nil {
		return nil, errors.Persistence(err, "load factions")
	}
	out := make([]FactionRecord, 0, len(all))
	for id, raw := range all {
		var f FactionRecord
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return nil, errors.Persistencef(err, "decode faction %s", id)
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *RedisStore) SaveFaction(ctx context.Context, f FactionRecord) error {
	data, err := json.Marshal(f)
	if err != nil {
		return errors.Persistencef(err, "encode faction %s", f.ID)
	}
	if err := s.client.HSet(ctx, s.factionsKey(), f.ID, data).Err(); err != nil {
		return errors.Persistencef(err, "save faction %s", f.ID)
	}
	return nil
}

func (s *RedisStore) DeleteFaction(ctx context.Context, id string) error {
	if err := s.client.HDel(ctx, s.factionsKey(), id).Err(); err != nil {
		return errors.Persistencef(err, "delete faction %s", id)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
