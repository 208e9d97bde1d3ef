package database_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geohash-service/config"
	"geohash-service/database"
	"geohash-service/migration"
	"geohash-service/models"
)

// Runs against a real Postgres described by the GEOHASH_DB_* variables.
func TestLocationRepository(t *testing.T) {
	if os.Getenv("GEOHASH_TEST_POSTGRES") == "" {
		t.Skip("GEOHASH_TEST_POSTGRES not set")
	}

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Migrations.Path = "file://migrations"
	cfg.Migrations.Retries = 1
	require.NoError(t, migration.Run(cfg))

	db, err := database.Open(cfg.DB)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	repo := &database.LocationRepository{DB: db}
	suffix := time.Now().UnixNano()

	home := &models.Location{Name: fmt.Sprintf("home-%d", suffix), Latitude: 25.813646, Longitude: -80.133761, Geohash: "dhx4be0"}
	north := &models.Location{Name: fmt.Sprintf("north-%d", suffix), Latitude: 25.8149, Longitude: -80.1337, Geohash: "dhx4be2"}
	require.NoError(t, repo.Create(ctx, home))
	require.NoError(t, repo.Create(ctx, north))
	assert.NotZero(t, home.ID)

	assert.ErrorIs(t, repo.Create(ctx, &models.Location{Name: home.Name, Geohash: "dhx4be0"}), database.ErrDuplicate)

	got, err := repo.Get(ctx, home.ID)
	require.NoError(t, err)
	assert.Equal(t, home, got)

	_, err = repo.Get(ctx, -1)
	assert.ErrorIs(t, err, database.ErrNotFound)

	found, err := repo.FindByCells(ctx, []string{"dhx4be0", "dhx4be2"})
	require.NoError(t, err)
	var names []string
	for _, loc := range found {
		names = append(names, loc.Name)
	}
	assert.Contains(t, names, home.Name)
	assert.Contains(t, names, north.Name)

	// A failing follow-up step leaves no row behind, so a retry succeeds.
	cacheDown := errors.New("cache down")
	park := &models.Location{Name: fmt.Sprintf("park-%d", suffix), Latitude: 17.38503202, Longitude: 78.48672057, Geohash: "tepffhb"}
	err = repo.CreateWith(ctx, park, func(models.Location) error { return cacheDown })
	assert.ErrorIs(t, err, cacheDown)
	_, err = repo.Get(ctx, park.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	var seen models.Location
	require.NoError(t, repo.CreateWith(ctx, park, func(loc models.Location) error {
		seen = loc
		return nil
	}))
	assert.Equal(t, *park, seen)
	got, err = repo.Get(ctx, park.ID)
	require.NoError(t, err)
	assert.Equal(t, park, got)
}
