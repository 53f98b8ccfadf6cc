// Package redis stores connection history in Redis. Each record is a JSON
// string under prefix+ip; the set prefix+"ips" indexes the stored addresses.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/haxroom/internal/config"
	"github.com/cory-johannsen/haxroom/internal/history"
)

// HistoryStore is a Redis-backed history.Store.
type HistoryStore struct {
	client *redis.Client
	prefix string
}

var _ history.Store = (*HistoryStore)(nil)

// New connects to the server in cfg.URL.
//
// Postcondition: Returns a store whose server answered PING, or an error.
func New(ctx context.Context, cfg config.RedisConfig) (*HistoryStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return NewWithClient(client, cfg.KeyPrefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string) *HistoryStore {
	return &HistoryStore{client: client, prefix: prefix}
}

// Ping reports whether the server answers.
func (s *HistoryStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

var _ history.Pinger = (*HistoryStore)(nil)

// Close closes the Redis connection.
func (s *HistoryStore) Close() error {
	return s.client.Close()
}

func (s *HistoryStore) recordKey(ip string) string { return s.prefix + "conn:" + ip }
func (s *HistoryStore) indexKey() string { return s.prefix + "ips" }

func (s *HistoryStore) Get(ctx context.Context, ip string) (history.Record, error) {
	data, err := s.client.Get(ctx, s.recordKey(ip)).Bytes()
	if errors.Is(err, redis.Nil) {
		return history.Record{}, history.ErrNotFound
	}
	if err != nil {
		return history.Record{}, fmt.Errorf("reading %s: %w", ip, err)
	}
	var rec history.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return history.Record{}, fmt.Errorf("decoding %s: %w", ip, err)
	}
	return rec, nil
}

// Set writes rec and indexes its ip in one transaction.
func (s *HistoryStore) Set(ctx context.Context, rec history.Record) error {
	if rec.IP == "" {
		return errors.New("history record has no ip")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", rec.IP, err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.recordKey(rec.IP), data, 0)
	pipe.SAdd(ctx, s.indexKey(), rec.IP)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing %s: %w", rec.IP, err)
	}
	return nil
}

func (s *HistoryStore) Remove(ctx context.Context, ip string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.recordKey(ip))
	pipe.SRem(ctx, s.indexKey(), ip)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("removing %s: %w", ip, err)
	}
	return nil
}

// Clear removes every indexed record and the index itself.
func (s *HistoryStore) Clear(ctx context.Context) error {
	ips, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return fmt.Errorf("listing ips: %w", err)
	}
	keys := make([]string, 0, len(ips)+1)
	for _, ip := range ips {
		keys = append(keys, s.recordKey(ip))
	}
	keys = append(keys, s.indexKey())
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// Keys returns the indexed ips, sorted.
func (s *HistoryStore) Keys(ctx context.Context) ([]string, error) {
	ips, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("listing ips: %w", err)
	}
	slices.Sort(ips)
	return ips, nil
}
