package matching

import (
	"context"
	"errors"
	"fmt"
	"math"

	"geohash-service/geohash"
	"geohash-service/models"
)

const earthRadius = 6371e3 // meters

var ErrNoCandidates = errors.New("no locations nearby")

// CandidateSource returns the locations filed in a cell and its neighbors.
type CandidateSource interface {
	Nearby(ctx context.Context, hash string) ([]models.Location, error)
}

// Match is a location and its distance from the query point.
type Match struct {
	Location models.Location `json:"location"`
	Distance float64         `json:"distance_meters"`
}

// FindNearest encodes the query point at precision and returns the closest
// location in its cell or the eight around it.
func FindNearest(ctx context.Context, src CandidateSource, lat, lon float64, precision uint) (*Match, error) {
	hash, err := geohash.Encode(lat, lon, precision)
	if err != nil {
		return nil, err
	}

	candidates, err := src.Nearby(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates for %s: %w", hash, err)
	}

	var best *Match
	for _, loc := range candidates {
		d := HaversineDistance(lat, lon, loc.Latitude, loc.Longitude)
		if best == nil || d < best.Distance {
			best = &Match{Location: loc, Distance: d}
		}
	}
	if best == nil {
		return nil, ErrNoCandidates
	}
	return best, nil
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}
