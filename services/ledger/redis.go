package ledger

import (
	"context"
	"fmt"
	"net/url"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash used when the location names none
const DefaultRedisKey = "gramrelay:ledger"

// RedisStore keeps the ledger in a single Redis hash
type RedisStore struct {
	client *redis.Client
	key    string
	addr   string
}

// NewRedisStore creates a Redis store writing to the hash key
func NewRedisStore(addr string, db int, key string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	return &RedisStore{client: client, key: key, addr: addr}
}

// NewRedisStoreFromURL parses redis://host:port/db?key=name
func NewRedisStoreFromURL(location string) (*RedisStore, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	key := q.Get("key")
	if key == "" {
		key = DefaultRedisKey
	}
	// go-redis rejects options it does not know
	q.Del("key")
	u.RawQuery = q.Encode()

	opts, err := redis.ParseURL(u.String())
	if err != nil {
		return nil, fmt.Errorf("parse redis ledger location: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opts), key: key, addr: opts.Addr}, nil
}

// Ping checks that the server is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Load reads the whole hash. A missing key is an empty ledger.
func (s *RedisStore) Load(ctx context.Context) (map[string]string, error) {
	return s.client.HGetAll(ctx, s.key).Result()
}

// Save replaces the hash in one transaction
func (s *RedisStore) Save(ctx context.Context, entries map[string]string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(entries) > 0 {
			pipe.HSet(ctx, s.key, entries)
		}
		return nil
	})
	return err
}

func (s *RedisStore) String() string {
	return fmt.Sprintf("redis://%s/%s", s.addr, s.key)
}

// Close closes the client connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
