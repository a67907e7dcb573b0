package flags

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/redis/go-redis/v9"
)

const (
	indexKey    = "dlmm:flags:index"
	valuePrefix = "dlmm:flags:"
)

var keyRe = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,128}$`)

// Store keeps boolean runtime switches in Redis. Each flag is a JSON value
// under dlmm:flags:<key>; a set indexes the known keys.
type Store struct {
	client redis.Cmdable
}

func NewStore(client redis.Cmdable) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &Store{client: client}, nil
}

// ValidateKey reports ErrInvalidKey for keys outside [a-zA-Z0-9._-]{1,128}
func ValidateKey(key string) error {
	if !keyRe.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Upsert sets key to value
func (s *Store) Upsert(ctx context.Context, key string, value bool) (*Flag, error) {
	f, b, err := encode(key, value)
	if err != nil {
		return nil, err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, flagKey(key), b, 0)
	pipe.SAdd(ctx, indexKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("upsert flag: %w", err)
	}
	return f, nil
}

// EnsureDefault sets key to value unless it already exists and reports
// whether it wrote. Concurrent callers never overwrite each other.
func (s *Store) EnsureDefault(ctx context.Context, key string, value bool) (bool, error) {
	_, b, err := encode(key, value)
	if err != nil {
		return false, err
	}

	pipe := s.client.TxPipeline()
	set := pipe.SetNX(ctx, flagKey(key), b, 0)
	pipe.SAdd(ctx, indexKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ensure flag: %w", err)
	}
	return set.Val(), nil
}

func (s *Store) Get(ctx context.Context, key string) (*Flag, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	raw, err := s.client.Get(ctx, flagKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get flag: %w", err)
	}

	var f Flag
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode flag %s: %w", key, err)
	}
	return &f, nil
}

// Enabled reports the flag's value, or def when the flag was never set
func (s *Store) Enabled(ctx context.Context, key string, def bool) (bool, error) {
	f, err := s.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		return def, nil
	case err != nil:
		return def, err
	}
	return f.Value, nil
}

// List returns every flag ordered by key. Index entries whose value is
// missing or unreadable are skipped.
func (s *Store) List(ctx context.Context) ([]*Flag, error) {
	keys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list flags index: %w", err)
	}

	redisKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		if ValidateKey(k) == nil {
			redisKeys = append(redisKeys, flagKey(k))
		}
	}
	out := make([]*Flag, 0, len(redisKeys))
	if len(redisKeys) == 0 {
		return out, nil
	}

	vals, err := s.client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget flags: %w", err)
	}
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var f Flag
		if json.Unmarshal([]byte(raw), &f) == nil {
			out = append(out, &f)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Delete removes key. It returns ErrNotFound when there was nothing to remove.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, flagKey(key))
	pipe.SRem(ctx, indexKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete flag: %w", err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func encode(key string, value bool) (*Flag, []byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, nil, err
	}
	f := newFlag(key, value)
	b, err := json.Marshal(f)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal flag: %w", err)
	}
	return f, b, nil
}

func flagKey(key string) string {
	return valuePrefix + key
}
