package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geohash-service/cache"
	"geohash-service/geohash"
	"geohash-service/models"
)

type failingSource struct{}

func (failingSource) Nearby(context.Context, string) ([]models.Location, error) {
	return nil, errors.New("boom")
}

func TestFindNearest(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	store := cache.NewCellStore(rdb)

	add := func(id int64, name string, lat, lon float64) {
		hash, err := geohash.Encode(lat, lon, 6)
		require.NoError(t, err)
		require.NoError(t, store.Add(ctx, models.Location{ID: id, Name: name, Latitude: lat, Longitude: lon, Geohash: hash}))
	}
	add(1, "close", 25.8140, -80.1338)
	add(2, "closer", 25.8137, -80.1337)
	add(3, "far", 17.385, 78.486)

	m, err := FindNearest(ctx, store, 25.813646, -80.133761, 6)
	require.NoError(t, err)
	assert.Equal(t, "closer", m.Location.Name)
	assert.InDelta(t, 8, m.Distance, 5)

	_, err = FindNearest(ctx, store, -33.86, 151.2, 6)
	assert.ErrorIs(t, err, ErrNoCandidates)

	_, err = FindNearest(ctx, store, 95, 0, 6)
	assert.ErrorIs(t, err, geohash.ErrOutOfRange)

	_, err = FindNearest(ctx, failingSource{}, 0, 0, 6)
	assert.Error(t, err)
}

func TestHaversineDistance(t *testing.T) {
	assert.Equal(t, 0.0, HaversineDistance(10, 10, 10, 10))
	// One degree of latitude.
	assert.InDelta(t, 111195, HaversineDistance(0, 0, 1, 0), 1)
}
