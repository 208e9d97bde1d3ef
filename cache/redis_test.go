package cache

import (
	"context"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geohash-service/config"
	"geohash-service/models"
)

func newStore(t *testing.T) (*CellStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return NewCellStore(rdb), mr
}

func names(locs []models.Location) []string {
	out := make([]string, 0, len(locs))
	for _, l := range locs {
		out = append(out, l.Name)
	}
	sort.Strings(out)
	return out
}

func TestNewClientUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewClient(context.Background(), config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}

func TestCellStore(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t)

	home := models.Location{ID: 1, Name: "home", Latitude: 25.813646, Longitude: -80.133761, Geohash: "dhx4be0"}
	north := models.Location{ID: 2, Name: "north", Geohash: "dhx4be2"}
	far := models.Location{ID: 3, Name: "far", Geohash: "tepffhb"}

	for _, loc := range []models.Location{home, north, far} {
		require.NoError(t, store.Add(ctx, loc))
	}
	assert.True(t, mr.Exists("locations:dhx4be0"))

	got, err := store.Members(ctx, "dhx4be0")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, home, got[0])

	got, err = store.Nearby(ctx, "dhx4be0")
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "north"}, names(got))

	// Moving a location drops it from its old cell.
	far.Geohash = "dhx4bdb"
	require.NoError(t, store.Add(ctx, far))
	got, err = store.Members(ctx, "tepffhb")
	require.NoError(t, err)
	assert.Empty(t, got)
	got, err = store.Nearby(ctx, "dhx4be0")
	require.NoError(t, err)
	assert.Equal(t, []string{"far", "home", "north"}, names(got))

	removed, err := store.Remove(ctx, 2)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = store.Remove(ctx, 2)
	require.NoError(t, err)
	assert.False(t, removed)

	got, err = store.Nearby(ctx, "dhx4be0")
	require.NoError(t, err)
	assert.Equal(t, []string{"far", "home"}, names(got))
}

func TestCellStoreRequiresGeohash(t *testing.T) {
	store, _ := newStore(t)
	err := store.Add(context.Background(), models.Location{ID: 1, Name: "nowhere"})
	assert.ErrorIs(t, err, ErrMissingGeohash)
}

func TestCellStoreSkipsDanglingMembers(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t)
	require.NoError(t, store.Add(ctx, models.Location{ID: 1, Name: "kept", Geohash: "u4pru"}))
	_, err := mr.SAdd("locations:u4pru", "99")
	require.NoError(t, err)

	got, err := store.Members(ctx, "u4pru")
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, names(got))
}

func TestCellStoreNextID(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t)

	first, err := store.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	// A second store on the same database continues the sequence.
	other := NewCellStore(store.rdb)
	second, err := other.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)

	mr.Close()
	_, err = store.NextID(ctx)
	assert.Error(t, err)
}

func TestCellStoreKeysDoNotCollide(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	require.NoError(t, store.Add(ctx, models.Location{ID: 1, Name: "home", Geohash: "dhx4be0"}))
	_, err := store.NextID(ctx)
	require.NoError(t, err)

	for _, cell := range []string{"data", "records", "next_id"} {
		got, err := store.Members(ctx, cell)
		require.NoError(t, err, cell)
		assert.Empty(t, got, cell)
	}
}
