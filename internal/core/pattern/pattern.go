package pattern

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrUnknownPattern indicates no formula is registered for an identifier.
var ErrUnknownPattern = errors.New("unknown pattern")

// ID identifies a motion pattern.
type ID string

const (
	Circle     ID = "circle"
	Figure8    ID = "figure8"
	Vertical   ID = "vertical"
	Diamond    ID = "diamond"
	Horizontal ID = "horizontal"
)

// Viewport is the drawable area positions are computed in.
type Viewport struct {
	Width  float64
	Height float64
}

// Center returns the midpoint of the viewport. Degenerate sizes count as zero.
func (viewport Viewport) Center() Point {
	return Point{
		X: nonNegative(viewport.Width) / 2,
		Y: nonNegative(viewport.Height) / 2,
	}
}

// Point is a position in viewport coordinates (y grows downward).
type Point struct {
	X float64
	Y float64
}

// Func maps a normalized progress and a viewport to an on-screen point.
type Func func(progress float64, viewport Viewport) Point

// Registry holds pattern formulas keyed by identifier.
type Registry struct {
	mu      sync.RWMutex
	entries map[ID]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[ID]Func)}
}

// Register adds or replaces the formula for id.
func (registry *Registry) Register(id ID, fn Func) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.entries[id] = fn
}

// Lookup returns the formula for id.
func (registry *Registry) Lookup(id ID) (Func, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	fn, ok := registry.entries[id]
	return fn, ok
}

// Position evaluates the formula for id.
func (registry *Registry) Position(id ID, progress float64, viewport Viewport) (Point, error) {
	fn, ok := registry.Lookup(id)
	if !ok {
		return viewport.Center(), fmt.Errorf("position %q: %w", id, ErrUnknownPattern)
	}
	return fn(progress, viewport), nil
}

// Sample returns steps+1 points covering one traversal of fn, for drawing guide paths.
func Sample(fn Func, viewport Viewport, steps int) []Point {
	if steps < 1 {
		steps = 1
	}
	points := make([]Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		progress := float64(i) / float64(steps)
		if i == steps {
			// Close the loop on the starting point instead of wrapping exactly at 1.
			progress = 0
		}
		points = append(points, fn(progress, viewport))
	}
	return points
}

func nonNegative(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}
