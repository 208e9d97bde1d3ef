package geoindex

import (
	"math"
	"sync"
)

const (
	nodeCapacity = 4
	// Nodes this deep keep every point they get.
	maxDepth = 24
)

// Bounds represents the boundaries of a region
type Bounds struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// WorldBounds covers every valid coordinate.
var WorldBounds = Bounds{MinLon: -180, MinLat: -90, MaxLon: 180, MaxLat: 90}

// QuadtreeNode represents a node in the quadtree
type QuadtreeNode struct {
	Bounds   Bounds
	Points   []Point
	Children [4]*QuadtreeNode
}

// Quadtree represents the quadtree structure
type Quadtree struct {
	Root *QuadtreeNode
	mu   sync.RWMutex
	size int
}

// NewQuadtree initializes a new Quadtree with given bounds
func NewQuadtree(bounds Bounds) *Quadtree {
	return &Quadtree{
		Root: &QuadtreeNode{Bounds: bounds},
	}
}

// Insert adds a point to the Quadtree
func (qt *Quadtree) Insert(p Point) error {
	if err := validate(p); err != nil {
		return err
	}
	qt.mu.Lock()
	defer qt.mu.Unlock()
	if !qt.Root.insert(p, 0) {
		return ErrOutOfBounds
	}
	qt.size++
	return nil
}

// Remove deletes the first point equal to p.
func (qt *Quadtree) Remove(p Point) bool {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	if !qt.Root.remove(p) {
		return false
	}
	qt.size--
	return true
}

func (qt *Quadtree) Len() int {
	qt.mu.RLock()
	defer qt.mu.RUnlock()
	return qt.size
}

// Search returns the points within radius of center
func (qt *Quadtree) Search(center Point, radius float64) []Point {
	qt.mu.RLock()
	defer qt.mu.RUnlock()
	return qt.Root.searchNearby(center, radius)
}

// insert adds a point to a QuadtreeNode, creating children nodes if necessary
func (node *QuadtreeNode) insert(p Point, depth int) bool {
	if !node.contains(p) {
		return false
	}
	if node.Children[0] == nil {
		if len(node.Points) < nodeCapacity || depth >= maxDepth {
			node.Points = append(node.Points, p)
			return true
		}
		node.subdivide(depth)
	}
	for _, child := range node.Children {
		if child.insert(p, depth+1) {
			return true
		}
	}
	return false
}

func (node *QuadtreeNode) remove(p Point) bool {
	if !node.contains(p) {
		return false
	}
	for i, existing := range node.Points {
		if existing == p {
			node.Points = append(node.Points[:i], node.Points[i+1:]...)
			return true
		}
	}
	if node.Children[0] == nil {
		return false
	}
	for _, child := range node.Children {
		if child.remove(p) {
			return true
		}
	}
	return false
}

// contains checks if the point is within the node's bounds
func (node *QuadtreeNode) contains(p Point) bool {
	return p.Lon >= node.Bounds.MinLon && p.Lon <= node.Bounds.MaxLon &&
		p.Lat >= node.Bounds.MinLat && p.Lat <= node.Bounds.MaxLat
}

// subdivide splits the node into four child nodes and pushes its points down
func (node *QuadtreeNode) subdivide(depth int) {
	b := node.Bounds
	midLon := (b.MinLon + b.MaxLon) / 2
	midLat := (b.MinLat + b.MaxLat) / 2
	node.Children[0] = &QuadtreeNode{Bounds: Bounds{b.MinLon, b.MinLat, midLon, midLat}}
	node.Children[1] = &QuadtreeNode{Bounds: Bounds{midLon, b.MinLat, b.MaxLon, midLat}}
	node.Children[2] = &QuadtreeNode{Bounds: Bounds{b.MinLon, midLat, midLon, b.MaxLat}}
	node.Children[3] = &QuadtreeNode{Bounds: Bounds{midLon, midLat, b.MaxLon, b.MaxLat}}

	points := node.Points
	node.Points = nil
	for _, p := range points {
		for _, child := range node.Children {
			if child.insert(p, depth+1) {
				break
			}
		}
	}
}

// searchNearby finds points within a radius in a QuadtreeNode
func (node *QuadtreeNode) searchNearby(center Point, radius float64) []Point {
	if !node.intersectsCircle(center, radius) {
		return nil
	}
	result := within(node.Points, center, radius)
	if node.Children[0] != nil {
		for _, child := range node.Children {
			result = append(result, child.searchNearby(center, radius)...)
		}
	}
	return result
}

// intersectsCircle checks if a circle intersects with the node's bounds
func (node *QuadtreeNode) intersectsCircle(center Point, radius float64) bool {
	closestLon := math.Max(node.Bounds.MinLon, math.Min(center.Lon, node.Bounds.MaxLon))
	closestLat := math.Max(node.Bounds.MinLat, math.Min(center.Lat, node.Bounds.MaxLat))
	dx := closestLon - center.Lon
	dy := closestLat - center.Lat
	return (dx*dx + dy*dy) <= (radius * radius)
}
