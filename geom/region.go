// SPDX-License-Identifier: Unlicense OR MIT

package geom

import "golang.org/x/exp/slices"

// Region is a set of pixels represented as a list of non-overlapping
// rectangles. All exported operations return a normalized Region: no two
// rectangles in the returned list overlap or touch along a mergeable edge
// on the same row, so repeated identical damage arithmetic always produces
// byte-identical rectangle lists (spec.md §1 "round-trip / idempotence").
type Region struct {
	rects []Rect
}

// RegionOf builds a normalized Region out of the given rectangles.
func RegionOf(rects ...Rect) Region {
	var out Region
	for _, r := range rects {
		out = out.UnionRect(r)
	}
	return out
}

// IsEmpty reports whether the region contains no pixels.
func (r Region) IsEmpty() bool {
	return len(r.rects) == 0
}

// Rects returns the region's normalized rectangle list. The caller must
// not mutate the returned slice.
func (r Region) Rects() []Rect {
	return r.rects
}

// ForEach calls f for every rectangle in the region, topmost row first.
func (r Region) ForEach(f func(Rect)) {
	for _, rect := range r.rects {
		f(rect)
	}
}

// UnionRect returns r ∪ rect.
func (r Region) UnionRect(rect Rect) Region {
	if rect.Empty() {
		return r
	}
	return Region{rects: normalize(append(append([]Rect{}, r.rects...), rect))}
}

// Union returns r ∪ s.
func (r Region) Union(s Region) Region {
	if len(s.rects) == 0 {
		return r
	}
	combined := append(append([]Rect{}, r.rects...), s.rects...)
	return Region{rects: normalize(combined)}
}

// IntersectRect returns r ∩ rect.
func (r Region) IntersectRect(rect Rect) Region {
	var out []Rect
	for _, rr := range r.rects {
		if ix := rr.Intersect(rect); !ix.Empty() {
			out = append(out, ix)
		}
	}
	return Region{rects: normalize(out)}
}

// Intersect returns r ∩ s.
func (r Region) Intersect(s Region) Region {
	var out []Rect
	for _, a := range r.rects {
		for _, b := range s.rects {
			if ix := a.Intersect(b); !ix.Empty() {
				out = append(out, ix)
			}
		}
	}
	return Region{rects: normalize(out)}
}

// SubtractRect returns r − rect.
func (r Region) SubtractRect(rect Rect) Region {
	if rect.Empty() {
		return r
	}
	var out []Rect
	for _, rr := range r.rects {
		out = append(out, subtractRect(rr, rect)...)
	}
	return Region{rects: normalize(out)}
}

// Subtract returns r − s.
func (r Region) Subtract(s Region) Region {
	out := r
	for _, rect := range s.rects {
		out = out.SubtractRect(rect)
	}
	return out
}

// subtractRect splits rect a into up to four pieces that cover a minus b.
func subtractRect(a, b Rect) []Rect {
	if !a.Overlaps(b) {
		return []Rect{a}
	}
	var pieces []Rect
	// Top strip.
	if b.Min.Y > a.Min.Y {
		pieces = append(pieces, Rect{a.Min, Point{a.Max.X, b.Min.Y}})
	}
	// Bottom strip.
	if b.Max.Y < a.Max.Y {
		pieces = append(pieces, Rect{Point{a.Min.X, b.Max.Y}, a.Max})
	}
	midMinY, midMaxY := a.Min.Y, a.Max.Y
	if b.Min.Y > midMinY {
		midMinY = b.Min.Y
	}
	if b.Max.Y < midMaxY {
		midMaxY = b.Max.Y
	}
	// Left strip of the middle band.
	if b.Min.X > a.Min.X {
		pieces = append(pieces, Rect{Point{a.Min.X, midMinY}, Point{b.Min.X, midMaxY}})
	}
	// Right strip of the middle band.
	if b.Max.X < a.Max.X {
		pieces = append(pieces, Rect{Point{b.Max.X, midMinY}, Point{a.Max.X, midMaxY}})
	}
	nonEmpty := pieces[:0]
	for _, p := range pieces {
		if !p.Empty() {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return nonEmpty
}

// normalize sorts rects, merges pairs that tryMerge can combine (one
// containing the other, or tiling exactly along a shared edge) and splits
// partially overlapping pairs into non-overlapping pieces via
// trySplitOverlap, repeating until nothing changes. It is not a full optimal-rectangle-count algorithm; it is good
// enough to keep the damage lists produced by this package small and
// deterministic, which is all the testable properties in spec.md §8 need.
func normalize(rects []Rect) []Rect {
	rects = dropEmpty(rects)
	if len(rects) == 0 {
		return nil
	}
	changed := true
	for changed {
		changed = false
		slices.SortFunc(rects, func(a, b Rect) int {
			if a.Min.Y != b.Min.Y {
				return a.Min.Y - b.Min.Y
			}
			return a.Min.X - b.Min.X
		})
		for i := 0; i < len(rects); i++ {
			for j := i + 1; j < len(rects); j++ {
				if merged, ok := tryMerge(rects[i], rects[j]); ok {
					rects[i] = merged
					rects = append(rects[:j], rects[j+1:]...)
					changed = true
					break
				}
				if pieces, ok := trySplitOverlap(rects[i], rects[j]); ok {
					rects = append(rects[:j], rects[j+1:]...)
					rects = append(rects, pieces...)
					changed = true
					break
				}
			}
			if changed {
				break
			}
		}
	}
	return rects
}

func dropEmpty(rects []Rect) []Rect {
	out := rects[:0]
	for _, r := range rects {
		if !r.Empty() {
			out = append(out, r)
		}
	}
	return out
}

// tryMerge combines a and b into one rectangle if one contains the other, or
// they tile exactly along a full shared edge. a.Union(b) is only the true
// pixel union in these two cases; a mere partial overlap is handled by
// trySplitOverlap instead, since bbox-merging it would claim phantom pixels
// neither rectangle ever covered.
func tryMerge(a, b Rect) (Rect, bool) {
	if containsRect(a, b) {
		return a, true
	}
	if containsRect(b, a) {
		return b, true
	}
	if a.Min.Y == b.Min.Y && a.Max.Y == b.Max.Y {
		if a.Max.X == b.Min.X || b.Max.X == a.Min.X {
			return a.Union(b), true
		}
	}
	if a.Min.X == b.Min.X && a.Max.X == b.Max.X {
		if a.Max.Y == b.Min.Y || b.Max.Y == a.Min.Y {
			return a.Union(b), true
		}
	}
	return Rect{}, false
}

// containsRect reports whether a fully contains b.
func containsRect(a, b Rect) bool {
	return b.Min.X >= a.Min.X && b.Min.Y >= a.Min.Y && b.Max.X <= a.Max.X && b.Max.Y <= a.Max.Y
}

// trySplitOverlap handles a genuine partial overlap (neither containment nor
// edge tiling, already ruled out by tryMerge): a stays as-is and b is cut
// down to subtractRect(b, a), the pieces of b not already covered by a. a ∪ b
// then equals a ∪ these pieces exactly, with no phantom area.
func trySplitOverlap(a, b Rect) ([]Rect, bool) {
	if !a.Overlaps(b) {
		return nil, false
	}
	return subtractRect(b, a), true
}
