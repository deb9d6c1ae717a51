// SPDX-License-Identifier: Unlicense OR MIT

// Package geom implements the geometry primitives shared by the scene,
// output and render packages: integer rectangles, disjoint-rectangle
// regions and row-major 4x4 float32 matrices.
//
// Regions are kept normalized (no overlapping rectangles) so that damage
// arithmetic across repaint ticks is deterministic: the same sequence of
// union/subtract calls always produces the same rectangle list.
package geom

// Point is an integer screen-space or surface-local point.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned integer rectangle, Min inclusive, Max exclusive.
type Rect struct {
	Min, Max Point
}

// Rectangle returns the rectangle at (x,y) with the given width and height.
func Rectangle(x, y, w, h int) Rect {
	return Rect{Point{x, y}, Point{x + w, y + h}}
}

// Dx returns the width of r.
func (r Rect) Dx() int { return r.Max.X - r.Min.X }

// Dy returns the height of r.
func (r Rect) Dy() int { return r.Max.Y - r.Min.Y }

// Empty reports whether r contains no pixels.
func (r Rect) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

// Add offsets r by (dx, dy).
func (r Rect) Add(dx, dy int) Rect {
	return Rect{
		Point{r.Min.X + dx, r.Min.Y + dy},
		Point{r.Max.X + dx, r.Max.Y + dy},
	}
}

// Intersect returns the largest rectangle contained in both r and s.
// The result is empty (and not normalized) if r and s don't overlap.
func (r Rect) Intersect(s Rect) Rect {
	if r.Min.X < s.Min.X {
		r.Min.X = s.Min.X
	}
	if r.Min.Y < s.Min.Y {
		r.Min.Y = s.Min.Y
	}
	if r.Max.X > s.Max.X {
		r.Max.X = s.Max.X
	}
	if r.Max.Y > s.Max.Y {
		r.Max.Y = s.Max.Y
	}
	return r
}

// Union returns the smallest rectangle containing both r and s.
func (r Rect) Union(s Rect) Rect {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	if r.Min.X > s.Min.X {
		r.Min.X = s.Min.X
	}
	if r.Min.Y > s.Min.Y {
		r.Min.Y = s.Min.Y
	}
	if r.Max.X < s.Max.X {
		r.Max.X = s.Max.X
	}
	if r.Max.Y < s.Max.Y {
		r.Max.Y = s.Max.Y
	}
	return r
}

// Overlaps reports whether r and s share any pixel.
func (r Rect) Overlaps(s Rect) bool {
	return !r.Empty() && !s.Empty() &&
		r.Min.X < s.Max.X && s.Min.X < r.Max.X &&
		r.Min.Y < s.Max.Y && s.Min.Y < r.Max.Y
}

// In reports whether p lies within [Min, Max).
func (r Rect) In(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}
