// Package redis provides a Redis-backed report store.
//
// Each report is a JSON string under {prefix}report:{id}; a sorted set
// {prefix}reports scores ids by creation time so listing is one range read.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mahmoud-mohsen97/Chat-Agents/store"
)

// RedisReportStore implements store.ReportStore using Redis
type RedisReportStore struct {
	client *redis.Client
	prefix string
}

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // Key prefix, default "chatagents:"
}

// NewRedisReportStore creates a new Redis report store
func NewRedisReportStore(opts RedisOptions) *RedisReportStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "chatagents:"
	}

	return &RedisReportStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisReportStore) reportKey(id string) string {
	return fmt.Sprintf("%sreport:%s", s.prefix, id)
}

func (s *RedisReportStore) indexKey() string {
	return s.prefix + "reports"
}

// Close closes the client.
func (s *RedisReportStore) Close() error {
	return s.client.Close()
}

// Save stores a report if its id is free
func (s *RedisReportStore) Save(ctx context.Context, report *store.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.reportKey(report.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to save report to redis: %w", err)
	}
	if !ok {
		return store.ErrExists
	}

	err = s.client.ZAdd(ctx, s.indexKey(), redis.Z{
		Score:  float64(report.CreatedAt.UnixMilli()),
		Member: report.ID,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to index report: %w", err)
	}
	return nil
}

// Load retrieves a report by id
func (s *RedisReportStore) Load(ctx context.Context, id string) (*store.Report, error) {
	data, err := s.client.Get(ctx, s.reportKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load report from redis: %w", err)
	}

	var report store.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

// List returns all reports, newest first
func (s *RedisReportStore) List(ctx context.Context) ([]*store.Report, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := []*store.Report{}
	if len(ids) == 0 {
		return reports, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.reportKey(id)
	}

	// MGet returns nil for ids whose key has gone missing.
	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}

	for _, result := range results {
		raw, ok := result.(string)
		if !ok {
			continue
		}
		var report store.Report
		if err := json.Unmarshal([]byte(raw), &report); err != nil {
			continue
		}
		reports = append(reports, &report)
	}

	store.SortNewestFirst(reports)
	return reports, nil
}

// Delete removes a report
func (s *RedisReportStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, s.reportKey(id))
	pipe.ZRem(ctx, s.indexKey(), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if del.Val() == 0 {
		return store.ErrNotFound
	}
	return nil
}
