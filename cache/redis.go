package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/go-redis/redis/v8"

	"geohash-service/config"
	"geohash-service/geohash"
	"geohash-service/models"
)

const (
	recordsKey = "location:records"
	nextIDKey  = "location:next_id"
)

var ErrMissingGeohash = errors.New("location has no geohash")

// NewClient connects to Redis and checks the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Println("Connected to Redis successfully.")
	return rdb, nil
}

// CellStore keeps one Redis set of location IDs per geohash cell and the
// location records in a single hash.
type CellStore struct {
	rdb *redis.Client
}

func NewCellStore(rdb *redis.Client) *CellStore {
	return &CellStore{rdb: rdb}
}

func cellKey(hash string) string {
	return fmt.Sprintf("locations:%s", hash)
}

// NextID allocates a location ID that is unique across every process sharing
// the Redis database.
func (s *CellStore) NextID(ctx context.Context) (int64, error) {
	id, err := s.rdb.Incr(ctx, nextIDKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate location ID: %w", err)
	}
	return id, nil
}

// Add stores loc and files it under its cell, replacing any earlier record
// with the same ID.
func (s *CellStore) Add(ctx context.Context, loc models.Location) error {
	if loc.Geohash == "" {
		return ErrMissingGeohash
	}
	data, err := json.Marshal(loc)
	if err != nil {
		return err
	}

	id := strconv.FormatInt(loc.ID, 10)
	prev, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if prev != nil && prev.Geohash != loc.Geohash {
			pipe.SRem(ctx, cellKey(prev.Geohash), id)
		}
		pipe.HSet(ctx, recordsKey, id, data)
		pipe.SAdd(ctx, cellKey(loc.Geohash), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add location %s: %w", id, err)
	}
	return nil
}

// Remove deletes the location with the given ID. It reports whether the
// location existed.
func (s *CellStore) Remove(ctx context.Context, locID int64) (bool, error) {
	id := strconv.FormatInt(locID, 10)
	prev, err := s.get(ctx, id)
	if err != nil || prev == nil {
		return false, err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, cellKey(prev.Geohash), id)
		pipe.HDel(ctx, recordsKey, id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to remove location %s: %w", id, err)
	}
	return true, nil
}

// Members returns the locations filed under exactly hash.
func (s *CellStore) Members(ctx context.Context, hash string) ([]models.Location, error) {
	ids, err := s.rdb.SMembers(ctx, cellKey(hash)).Result()
	if err != nil {
		return nil, err
	}
	return s.load(ctx, ids)
}

// Nearby returns the locations in hash and its eight neighbors.
func (s *CellStore) Nearby(ctx context.Context, hash string) ([]models.Location, error) {
	cells := append([]string{hash}, geohash.GetNeighbors(hash).Cells()...)
	keys := make([]string, len(cells))
	for i, cell := range cells {
		keys[i] = cellKey(cell)
	}

	ids, err := s.rdb.SUnion(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	return s.load(ctx, ids)
}

func (s *CellStore) get(ctx context.Context, id string) (*models.Location, error) {
	data, err := s.rdb.HGet(ctx, recordsKey, id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var loc models.Location
	if err := json.Unmarshal([]byte(data), &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

func (s *CellStore) load(ctx context.Context, ids []string) ([]models.Location, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	values, err := s.rdb.HMGet(ctx, recordsKey, ids...).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]models.Location, 0, len(values))
	for i, v := range values {
		data, ok := v.(string)
		if !ok {
			// Set member without a record; skip it.
			continue
		}
		var loc models.Location
		if err := json.Unmarshal([]byte(data), &loc); err != nil {
			return nil, fmt.Errorf("failed to decode location %s: %w", ids[i], err)
		}
		locations = append(locations, loc)
	}
	return locations, nil
}
