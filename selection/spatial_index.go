package selection

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
)

// windowPad widens the XY query window so points exactly at the search
// radius are not lost to rounding.
const windowPad = 1e-9

// indexedPosition stores a 3D position in the XY quadtree
type indexedPosition struct {
	Position
}

func (p indexedPosition) Point() orb.Point {
	return orb.Point{p.X, p.Y}
}

// positionIndex holds the positions accepted so far by the distance
// strategy. The quadtree narrows candidates in the XY plane and the exact
// 3D distance decides.
type positionIndex struct {
	tree     *quadtree.Quadtree
	overflow []Position // positions outside the tree's bound
	buf      []orb.Pointer
	count    int
}

// newPositionIndex creates an index covering bound
func newPositionIndex(bound orb.Bound) *positionIndex {
	return &positionIndex{tree: quadtree.New(bound)}
}

// positionBound returns the XY bound of the given positions
func positionBound(positions []Position) orb.Bound {
	mp := make(orb.MultiPoint, len(positions))
	for i, p := range positions {
		mp[i] = orb.Point{p.X, p.Y}
	}
	return mp.Bound()
}

// Add records an accepted position
func (ix *positionIndex) Add(p Position) {
	if err := ix.tree.Add(indexedPosition{p}); err != nil {
		ix.overflow = append(ix.overflow, p)
	}
	ix.count++
}

// Len returns the number of accepted positions
func (ix *positionIndex) Len() int {
	return ix.count
}

// FartherThan reports whether p is strictly farther than minDist from
// every indexed position
func (ix *positionIndex) FartherThan(p Position, minDist float64) bool {
	if minDist < 0 || ix.count == 0 {
		return true
	}

	window := orb.Bound{
		Min: orb.Point{p.X - minDist, p.Y - minDist},
		Max: orb.Point{p.X + minDist, p.Y + minDist},
	}.Pad(windowPad)

	ix.buf = ix.tree.InBound(ix.buf[:0], window)
	for _, hit := range ix.buf {
		if !(hit.(indexedPosition).Distance(p) > minDist) {
			return false
		}
	}
	for _, q := range ix.overflow {
		if !(q.Distance(p) > minDist) {
			return false
		}
	}
	return true
}
