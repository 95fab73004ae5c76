// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package tiler

// subdivision organizes a point cloud into a forest of cells by the
// direction of each point from the origin. Points are projected onto
// the faces of an origin-centered cubemap and organized by a uniform
// quadtree within each face, so there are six roots.

import (
	"fmt"
	"math"

	"github.com/gazed/tiler/geometry"
	"github.com/gazed/tiler/math/lin"
)

// Rails are the four corner ray directions bounding a cell's frustum.
// The vectors are unit length and in counter-clockwise order when
// looking away from the origin.
type Rails [4]lin.V3

// Subdivision is a fixed tree-like recursive partitioning of a point
// set by direction. Cells are identified by integer ids.
type Subdivision interface {

	// Roots returns the ids of all root cells.
	Roots() []int

	// Children returns the ids of all child cells of the given cell,
	// or nil for leaves.
	Children(cell int) []int

	// PointsInCell returns the indices of points in the cell's
	// subtree. The returned slice is owned by the subdivision.
	PointsInCell(cell int) []int

	// CellRails returns the cell's bounding frustum corner rays.
	CellRails(cell int) Rails

	// Init rebuilds the space partitioning if necessary. PointsInCell
	// is undefined before this is called. Init is idempotent per
	// PointSet ID: reinitializing with the same id does not rebuild.
	Init(ps *PointSet)
}

// maxSubdivisionDepth bounds the quadtree depth so cell ranges stay
// well above the float epsilon.
const maxSubdivisionDepth = 14

// subdivisionNode is one cell of the cubemap quadtree.
type subdivisionNode struct {
	start, count  int    // span of point indices within points.
	min, max      lin.V2 // the cube-face range of the node's points.
	cubeFace      int    // the cube face containing this node.
	childrenBegin int    // node id of the first of four children.
	childrenCount int    // 0 for leaves, otherwise 4.
}

// CubemapSubdivision partitions points by projecting them onto the
// faces of an origin-centered cube and splitting each face with a
// uniform quadtree of the given depth.
type CubemapSubdivision struct {
	depth      int
	pointSetID int

	// All point indices, partitioned according to the structure of the
	// quadtree. Each node holds a non-overlapping subrange.
	points []int

	// All cells. The first six are the roots of each cube face.
	nodes []subdivisionNode
}

// NewCubemapSubdivision creates a subdivision of the given quadtree
// depth. Depths beyond 14 panic.
func NewCubemapSubdivision(depth int) *CubemapSubdivision {
	if depth < 0 || depth > maxSubdivisionDepth {
		panic(fmt.Sprintf("tiler.NewCubemapSubdivision: depth %d out of range 0-%d",
			depth, maxSubdivisionDepth))
	}
	return &CubemapSubdivision{depth: depth, pointSetID: InvalidPointSetID}
}

// cubeFaceFromPoint returns the face id 0-5 for the given point:
// the dominant axis plus three when that component is non-negative.
func cubeFaceFromPoint(p *lin.V3) int {
	axis := p.MajorAxis()
	if p.Comp(axis) >= 0 {
		return axis + 3
	}
	return axis
}

func majorAxisFromCubeFace(face int) int { return face % 3 }

func signFromCubeFace(face int) float64 {
	if face/3 > 0 {
		return 1
	}
	return -1
}

// Roots implements Subdivision.
func (s *CubemapSubdivision) Roots() []int { return []int{0, 1, 2, 3, 4, 5} }

// Children implements Subdivision.
func (s *CubemapSubdivision) Children(cell int) []int {
	n := &s.nodes[cell]
	if n.childrenCount == 0 {
		return nil
	}
	children := make([]int, n.childrenCount)
	for i := range children {
		children[i] = n.childrenBegin + i
	}
	return children
}

// PointsInCell implements Subdivision.
func (s *CubemapSubdivision) PointsInCell(cell int) []int {
	n := &s.nodes[cell]
	return s.points[n.start : n.start+n.count]
}

// partitionIndices reorders the slice so that indices satisfying pred
// come first, returning the count of satisfying indices.
func partitionIndices(indices []int, pred func(i int) bool) int {
	first := 0
	for first < len(indices) && pred(indices[first]) {
		first++
	}
	for i := first + 1; i < len(indices); i++ {
		if pred(indices[i]) {
			indices[first], indices[i] = indices[i], indices[first]
			first++
		}
	}
	return first
}

// partitionQuadrants splits a set of point indices, assumed to be
// within the same cube face, into the four quadrants relative to the
// pivot point. The returned slice offsets follow the fixed quadrant
// order (+x +y), (-x +y), (-x -y), (+x -y).
func (s *CubemapSubdivision) partitionQuadrants(ps *PointSet, pivot lin.V2,
	majorAxis int, indices []int) (quadrants [4][2]int) {

	xAxis := (majorAxis + 1) % 3
	yAxis := (majorAxis + 2) % 3

	// First partition by projected x, then partition both halves by
	// projected y:
	//   | lowXlowY  lowXhighY | highXlowY  highXhighY |
	middleX := partitionIndices(indices, func(i int) bool {
		p := &ps.Positions[i]
		return p.Comp(xAxis)/math.Abs(p.Comp(majorAxis)) < pivot.X
	})
	lowXMiddleY := partitionIndices(indices[:middleX], func(i int) bool {
		p := &ps.Positions[i]
		return p.Comp(yAxis)/math.Abs(p.Comp(majorAxis)) < pivot.Y
	})
	highXMiddleY := middleX + partitionIndices(indices[middleX:], func(i int) bool {
		p := &ps.Positions[i]
		return p.Comp(yAxis)/math.Abs(p.Comp(majorAxis)) < pivot.Y
	})

	quadrants[0] = [2]int{highXMiddleY, len(indices)} // +x +y
	quadrants[1] = [2]int{lowXMiddleY, middleX}       // -x +y
	quadrants[2] = [2]int{0, lowXMiddleY}             // -x -y
	quadrants[3] = [2]int{middleX, highXMiddleY}      // +x -y
	return quadrants
}

// Init implements Subdivision.
func (s *CubemapSubdivision) Init(ps *PointSet) {
	if ps.ID == s.pointSetID {
		return
	}
	ps.validate()
	s.pointSetID = ps.ID

	pointCount := len(ps.Positions)
	s.nodes = s.nodes[:0]
	s.points = s.points[:0]

	// Stable-bucket point indices by cube face so the six roots hold
	// contiguous spans in face order.
	var faceCounts [6]int
	for i := 0; i < pointCount; i++ {
		faceCounts[cubeFaceFromPoint(&ps.Positions[i])]++
	}
	var faceStart [6]int
	start := 0
	for face := 0; face < 6; face++ {
		faceStart[face] = start
		start += faceCounts[face]
	}
	s.points = append(s.points, make([]int, pointCount)...)
	cursor := faceStart
	for i := 0; i < pointCount; i++ {
		face := cubeFaceFromPoint(&ps.Positions[i])
		s.points[cursor[face]] = i
		cursor[face]++
	}
	for face := 0; face < 6; face++ {
		s.nodes = append(s.nodes, subdivisionNode{
			start:    faceStart[face],
			count:    faceCounts[face],
			min:      lin.V2{X: -1, Y: -1},
			max:      lin.V2{X: 1, Y: 1},
			cubeFace: face,
		})
	}

	// Split cells breadth-last from a worklist until the target depth.
	type splitCandidate struct {
		node  int     // the node to split.
		depth int     // depth of the node, roots are 0.
		pivot lin.V2  // center of the node to split.
		size  float64 // side length of the node's cube-face range.
	}
	worklist := make([]splitCandidate, 0, 64)
	for face := 0; face < 6; face++ {
		worklist = append(worklist, splitCandidate{node: face, size: 2})
	}

	for len(worklist) > 0 {
		toSplit := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if toSplit.depth >= s.depth {
			continue
		}

		parent := s.nodes[toSplit.node]
		majorAxis := majorAxisFromCubeFace(parent.cubeFace)
		indices := s.points[parent.start : parent.start+parent.count]
		quadrants := s.partitionQuadrants(ps, toSplit.pivot, majorAxis, indices)

		pivotDelta := toSplit.size / 4
		deltas := [4]lin.V2{
			{X: pivotDelta, Y: pivotDelta},
			{X: -pivotDelta, Y: pivotDelta},
			{X: -pivotDelta, Y: -pivotDelta},
			{X: pivotDelta, Y: -pivotDelta},
		}
		half := toSplit.size / 2
		center := lin.V2{X: (parent.min.X + parent.max.X) / 2, Y: (parent.min.Y + parent.max.Y) / 2}
		mins := [4]lin.V2{
			center,
			{X: parent.min.X, Y: center.Y},
			parent.min,
			{X: center.X, Y: parent.min.Y},
		}

		childBegin := len(s.nodes)
		for q := 0; q < 4; q++ {
			s.nodes = append(s.nodes, subdivisionNode{
				start:    parent.start + quadrants[q][0],
				count:    quadrants[q][1] - quadrants[q][0],
				min:      mins[q],
				max:      lin.V2{X: mins[q].X + half, Y: mins[q].Y + half},
				cubeFace: parent.cubeFace,
			})
			var pivot lin.V2
			pivot.Add(&toSplit.pivot, &deltas[q])
			worklist = append(worklist, splitCandidate{
				node:  childBegin + q,
				depth: toSplit.depth + 1,
				pivot: pivot,
				size:  half,
			})
		}
		s.nodes[toSplit.node].childrenBegin = childBegin
		s.nodes[toSplit.node].childrenCount = 4
	}
}

// CellRails implements Subdivision. The rails pass through the corners
// of the cell's cube-face range. A cross-product test fixes the
// counter-clockwise order for the three positive faces.
func (s *CubemapSubdivision) CellRails(cell int) Rails {
	n := &s.nodes[cell]
	majorAxis := majorAxisFromCubeFace(n.cubeFace)
	sign := signFromCubeFace(n.cubeFace)
	xAxis := (majorAxis + 1) % 3
	yAxis := (majorAxis + 2) % 3

	var rails Rails
	corners := [4]lin.V2{
		n.min,
		{X: n.max.X, Y: n.min.Y},
		n.max,
		{X: n.min.X, Y: n.max.Y},
	}
	for i := range rails {
		rails[i].SetComp(majorAxis, sign)
		rails[i].SetComp(xAxis, corners[i].X)
		rails[i].SetComp(yAxis, corners[i].Y)
		rails[i].Unit()
	}

	// Reverse when the winding faces the wrong way.
	var inside lin.V3
	inside.Cross(&rails[1], &rails[0])
	plane := geometry.PlaneFromPoint(&lin.V3{}, &inside)
	if plane.Distance(&rails[2]) < 0 {
		rails[0], rails[3] = rails[3], rails[0]
		rails[1], rails[2] = rails[2], rails[1]
	}
	return rails
}

// ============================================================================

// BoundsDilatingSubdivision wraps another Subdivision to widen the
// angular footprint of every cell by a fixed small angle. Neighbouring
// cells then overlap slightly, which lets the resolved tiles cover
// seams that would otherwise open between them.
type BoundsDilatingSubdivision struct {
	dilation float64 // radians to dilate each cell boundary.
	delegate Subdivision
}

// NewBoundsDilatingSubdivision wraps the delegate with the given
// dilation in radians.
func NewBoundsDilatingSubdivision(dilationRadians float64, delegate Subdivision) *BoundsDilatingSubdivision {
	return &BoundsDilatingSubdivision{dilation: dilationRadians, delegate: delegate}
}

// Roots implements Subdivision.
func (s *BoundsDilatingSubdivision) Roots() []int { return s.delegate.Roots() }

// Children implements Subdivision.
func (s *BoundsDilatingSubdivision) Children(cell int) []int { return s.delegate.Children(cell) }

// PointsInCell implements Subdivision.
func (s *BoundsDilatingSubdivision) PointsInCell(cell int) []int {
	return s.delegate.PointsInCell(cell)
}

// Init implements Subdivision.
func (s *BoundsDilatingSubdivision) Init(ps *PointSet) { s.delegate.Init(ps) }

// CellRails implements Subdivision. Each corner is pushed away from its
// two neighbouring corners. This relies on a small-angle approximation:
// subtracting the normalized edge directions scaled by the dilation
// angle moves the corner by approximately that angle.
func (s *BoundsDilatingSubdivision) CellRails(cell int) Rails {
	original := s.delegate.CellRails(cell)
	var dilated Rails
	for i := 0; i < 4; i++ {
		prev := original[(i+3)%4]
		cur := original[i]
		next := original[(i+1)%4]

		var prevDir, nextDir lin.V3
		prevDir.Sub(&prev, &cur).Unit()
		nextDir.Sub(&next, &cur).Unit()

		d := &dilated[i]
		d.Set(&cur)
		d.X -= (prevDir.X + nextDir.X) * s.dilation
		d.Y -= (prevDir.Y + nextDir.Y) * s.dilation
		d.Z -= (prevDir.Z + nextDir.Z) * s.dilation
		d.Unit()
	}
	return dilated
}

// ============================================================================

// CellsInDepthRange returns all cells of the subdivision with
//
//	minDepth <= depth <= maxDepth
//
// ordered according to a topological sort from the roots down.
func CellsInDepthRange(s Subdivision, minDepth, maxDepth int) []int {
	var cells []int
	type workItem struct {
		node  int
		depth int
	}
	var toVisit []workItem
	for _, root := range s.Roots() {
		toVisit = append(toVisit, workItem{node: root})
	}
	for len(toVisit) > 0 {
		item := toVisit[len(toVisit)-1]
		toVisit = toVisit[:len(toVisit)-1]
		if item.depth >= minDepth {
			cells = append(cells, item.node)
		}
		if item.depth < maxDepth {
			for _, child := range s.Children(item.node) {
				toVisit = append(toVisit, workItem{node: child, depth: item.depth + 1})
			}
		}
	}
	return cells
}
