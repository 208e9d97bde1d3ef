package geoindex

import (
	"errors"
	"fmt"
	"math"
)

type Technique string

const (
	GeohashingTechnique Technique = "geohashing"
	RTreeTechnique      Technique = "rtree"
	QuadtreeTechnique   Technique = "quadtree"
)

// Techniques lists every supported technique.
var Techniques = []Technique{GeohashingTechnique, RTreeTechnique, QuadtreeTechnique}

var (
	ErrUnsupportedTechnique = errors.New("unsupported geo-indexing technique")
	ErrNoResults            = errors.New("no nearby points found after maximum retries")
	ErrInvalidRetries       = errors.New("max retries must be at least 1")
	ErrOutOfBounds          = errors.New("point outside index bounds")
)

// Point is an indexed location. X/Y style math treats Lon as x and Lat as y.
type Point struct {
	ID  string  `json:"id"`
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Index is a spatial index over points. Radii are in degrees.
type Index interface {
	Insert(p Point) error
	Remove(p Point) bool
	Search(center Point, radius float64) []Point
	Len() int
}

// New builds an empty index for the technique. precision is the geohash
// length used by the geohashing technique and ignored by the others.
func New(technique Technique, precision uint) (Index, error) {
	switch technique {
	case GeohashingTechnique:
		return NewGeohashIndex(precision), nil
	case RTreeTechnique:
		return NewRTreeIndex(), nil
	case QuadtreeTechnique:
		return NewQuadtree(WorldBounds), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTechnique, technique)
	}
}

// SearchNearbyWithRetries searches around center, doubling the radius after
// every empty round.
func SearchNearbyWithRetries(idx Index, center Point, radius float64, maxRetries int) ([]Point, error) {
	if maxRetries < 1 {
		return nil, ErrInvalidRetries
	}

	for i := 0; i < maxRetries; i++ {
		if results := idx.Search(center, radius); len(results) > 0 {
			return results, nil
		}
		radius *= 2
	}

	return nil, ErrNoResults
}

func validate(p Point) error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) ||
		p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: (%v, %v)", ErrOutOfBounds, p.Lat, p.Lon)
	}
	return nil
}

// distance is the planar distance in degrees.
func distance(a, b Point) float64 {
	dx := a.Lon - b.Lon
	dy := a.Lat - b.Lat
	return math.Sqrt(dx*dx + dy*dy)
}

func within(points []Point, center Point, radius float64) []Point {
	var result []Point
	for _, p := range points {
		if distance(p, center) <= radius {
			result = append(result, p)
		}
	}
	return result
}
