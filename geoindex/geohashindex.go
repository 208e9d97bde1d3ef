package geoindex

import (
	"strings"
	"sync"

	"geohash-service/geohash"
)

const maxPrecision = 12

// GeohashIndex buckets points by their geohash at a fixed precision.
type GeohashIndex struct {
	mu        sync.RWMutex
	precision uint
	cells     map[string][]Point
	size      int
}

func NewGeohashIndex(precision uint) *GeohashIndex {
	if precision == 0 {
		precision = geohash.DefaultLength
	}
	if precision > maxPrecision {
		precision = maxPrecision
	}
	return &GeohashIndex{
		precision: precision,
		cells:     make(map[string][]Point),
	}
}

func (g *GeohashIndex) Insert(p Point) error {
	hash, err := geohash.Encode(p.Lat, p.Lon, g.precision)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cells[hash] = append(g.cells[hash], p)
	g.size++
	return nil
}

func (g *GeohashIndex) Remove(p Point) bool {
	hash, err := geohash.Encode(p.Lat, p.Lon, g.precision)
	if err != nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	points := g.cells[hash]
	for i, existing := range points {
		if existing == p {
			points = append(points[:i], points[i+1:]...)
			if len(points) == 0 {
				delete(g.cells, hash)
			} else {
				g.cells[hash] = points
			}
			g.size--
			return true
		}
	}
	return false
}

func (g *GeohashIndex) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.size
}

// Search scans the cell containing center and its eight neighbors. The cell
// length is shortened until a cell is at least radius wide and tall, so the
// 3x3 block always covers the search circle.
func (g *GeohashIndex) Search(center Point, radius float64) []Point {
	prefixes := g.searchPrefixes(center, radius)
	if prefixes == nil {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	var candidates []Point
	if len(prefixes) == 1 && prefixes[0] == "" {
		for _, points := range g.cells {
			candidates = append(candidates, points...)
		}
		return within(candidates, center, radius)
	}

	if uint(len(prefixes[0])) == g.precision {
		for _, cell := range prefixes {
			candidates = append(candidates, g.cells[cell]...)
		}
		return within(candidates, center, radius)
	}

	for cell, points := range g.cells {
		for _, prefix := range prefixes {
			if strings.HasPrefix(cell, prefix) {
				candidates = append(candidates, points...)
				break
			}
		}
	}
	return within(candidates, center, radius)
}

// searchPrefixes returns the cell hashes to scan, or [""] when the whole
// index has to be scanned.
func (g *GeohashIndex) searchPrefixes(center Point, radius float64) []string {
	length := g.precision
	for length > 1 {
		h, w := cellSize(length)
		if h >= radius && w >= radius {
			break
		}
		length--
	}
	// Single characters have no neighbors.
	if length <= 1 {
		return []string{""}
	}

	hash, err := geohash.Encode(center.Lat, center.Lon, length)
	if err != nil {
		return nil
	}
	neighbors := geohash.GetNeighbors(hash).Cells()
	// A carry that ran off the first character leaves a gap in the block.
	if len(neighbors) < 8 {
		return []string{""}
	}
	return append([]string{hash}, neighbors...)
}

// cellSize returns the height and width in degrees of a cell of the given length.
func cellSize(length uint) (height, width float64) {
	bits := length * 5
	lonBits := (bits + 1) / 2
	latBits := bits / 2
	return 180 / float64(uint64(1)<<latBits), 360 / float64(uint64(1)<<lonBits)
}
