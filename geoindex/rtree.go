package geoindex

import (
	"sync"

	"github.com/dhconnelly/rtreego"
)

// A very small distance to give a point a bounding box
const pointTolerance = 0.0001

// spatialPoint wraps a point to satisfy the rtreego.Spatial interface
type spatialPoint struct {
	Point
}

func (p spatialPoint) Bounds() rtreego.Rect {
	return rtreego.Point{p.Lon, p.Lat}.ToRect(pointTolerance)
}

// RTreeIndex indexes points in an R-tree.
type RTreeIndex struct {
	mu   sync.RWMutex
	tree *rtreego.Rtree
}

func NewRTreeIndex() *RTreeIndex {
	return &RTreeIndex{tree: rtreego.NewTree(2, 25, 50)}
}

func (r *RTreeIndex) Insert(p Point) error {
	if err := validate(p); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tree.Insert(spatialPoint{p})
	return nil
}

func (r *RTreeIndex) Remove(p Point) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tree.Delete(spatialPoint{p})
}

func (r *RTreeIndex) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tree.Size()
}

// Search intersects the square around center and keeps points inside the circle.
func (r *RTreeIndex) Search(center Point, radius float64) []Point {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hits := r.tree.SearchIntersect(rtreego.Point{center.Lon, center.Lat}.ToRect(radius))
	points := make([]Point, 0, len(hits))
	for _, hit := range hits {
		points = append(points, hit.(spatialPoint).Point)
	}
	return within(points, center, radius)
}
