package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	"geohash-service/models"
)

var (
	ErrNotFound  = errors.New("location not found")
	ErrDuplicate = errors.New("location already exists")
)

type LocationRepository struct {
	DB *sql.DB
}

// Create inserts loc and sets its ID.
func (r *LocationRepository) Create(ctx context.Context, loc *models.Location) error {
	return r.CreateWith(ctx, loc, nil)
}

// CreateWith inserts loc inside a transaction and sets its ID, then calls
// then with the stored location. The row is committed only when then returns
// nil; otherwise the insert is rolled back and then's error returned.
func (r *LocationRepository) CreateWith(ctx context.Context, loc *models.Location, then func(models.Location) error) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO locations (name, latitude, longitude, geohash) VALUES ($1, $2, $3, $4) RETURNING id`,
		loc.Name, loc.Latitude, loc.Longitude, loc.Geohash,
	).Scan(&loc.ID)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code.Name() == "unique_violation" {
			return ErrDuplicate
		}
		return err
	}

	if then != nil {
		if err = then(*loc); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *LocationRepository) Get(ctx context.Context, id int64) (*models.Location, error) {
	var loc models.Location
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, latitude, longitude, geohash FROM locations WHERE id=$1`,
		id,
	).Scan(&loc.ID, &loc.Name, &loc.Latitude, &loc.Longitude, &loc.Geohash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// FindByCells returns locations whose geohash starts with any of cells.
func (r *LocationRepository) FindByCells(ctx context.Context, cells []string) ([]models.Location, error) {
	if len(cells) == 0 {
		return nil, nil
	}
	patterns := make([]string, len(cells))
	for i, cell := range cells {
		patterns[i] = escapeLike(cell) + "%"
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, latitude, longitude, geohash FROM locations WHERE geohash LIKE ANY($1) ORDER BY id`,
		pq.Array(patterns),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Latitude, &loc.Longitude, &loc.Geohash); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
