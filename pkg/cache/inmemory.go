package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/segmentio/encoding/json"
)

// defaultInMemorySize is 32MB
const defaultInMemorySize = 32 * 1048576

type InMemory struct {
	DB  *fastcache.Cache
	now func() time.Time
}

var _ Cache = (*InMemory)(nil)

// entry wraps the value with expiry, since fastcache does not support it natively.
type entry struct {
	ExpireAt int64           `json:"e"` // unix nano, 0 means never expire
	Value    json.RawMessage `json:"v"`
}

func NewInMemory() (*InMemory, error) {
	return &InMemory{
		DB:  fastcache.New(defaultInMemorySize),
		now: time.Now,
	}, nil
}

func (i *InMemory) GetAs(_ context.Context, key string, out interface{}) error {
	result := i.DB.Get(nil, []byte(key))
	if result == nil {
		return ErrKeyNotExist
	}

	var e entry
	if err := json.Unmarshal(result, &e); err != nil {
		return fmt.Errorf("corrupted cache value: %w", err)
	}

	if e.ExpireAt > 0 && i.now().UnixNano() >= e.ExpireAt {
		i.DB.Del([]byte(key))
		return ErrKeyNotExist
	}

	return json.Unmarshal(e.Value, out)
}

func (i *InMemory) SetExp(_ context.Context, key string, inValue interface{}, expireDur time.Duration) error {
	val, err := json.Marshal(inValue)
	if err != nil {
		return fmt.Errorf("cannot marshal json value: %w", err)
	}

	e := entry{Value: val}
	if expireDur > 0 {
		e.ExpireAt = i.now().Add(expireDur).UnixNano()
	}

	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("cannot marshal cache entry: %w", err)
	}

	i.DB.Set([]byte(key), b)
	return nil
}

func (i *InMemory) Delete(_ context.Context, key string) error {
	i.DB.Del([]byte(key))
	return nil
}
