// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package tiler

// weights model the rendering resources a tile consumes. The term
// "weight" distinguishes these from the geometric reconstruction cost
// associated with a set of tiles: weights are budgeted, costs are
// minimized.

import (
	"fmt"
	"math"

	"github.com/gazed/tiler/geometry"
	"github.com/gazed/tiler/math/lin"
)

// TileWeightModel maps a tile to a multi-dimensional weight. The total
// weight of a selection is the sum over its tiles, bounded
// per-dimension by a budget.
type TileWeightModel interface {

	// Dimension returns the number of components of the weight.
	Dimension() int

	// TileWeight computes the weight of the tile into the given slice,
	// which must have length Dimension. It returns false when the tile
	// is ill-formed and should be discarded.
	TileWeight(tile *Tile, weight []float64) bool
}

// checkDimension panics when a weight slice does not match the model.
func checkDimension(model TileWeightModel, weight []float64) {
	if len(weight) != model.Dimension() {
		panic(fmt.Sprintf("tiler: weight slice length %d does not match model dimension %d",
			len(weight), model.Dimension()))
	}
}

// ============================================================================

// TriangleCountTileWeightModel weighs tiles by the triangle count
// required to render them.
type TriangleCountTileWeightModel struct{}

// Dimension implements TileWeightModel.
func (m TriangleCountTileWeightModel) Dimension() int { return 1 }

// TileWeight implements TileWeightModel: two triangles per tile.
func (m TriangleCountTileWeightModel) TileWeight(tile *Tile, weight []float64) bool {
	checkDimension(m, weight)
	weight[0] = 2
	return true
}

// ============================================================================

// ProjectedAreaTileWeightModel weighs tiles by their area when
// projected onto the unit sphere. A weight of 1 indicates a tile
// covering the whole sphere of directions.
type ProjectedAreaTileWeightModel struct{}

// Dimension implements TileWeightModel.
func (m ProjectedAreaTileWeightModel) Dimension() int { return 1 }

// TileWeight implements TileWeightModel. The corners are normalized
// onto the unit sphere and the quad area is estimated from the
// diagonals; the small-angle approximation holds for the small quads
// the tiler produces.
func (m ProjectedAreaTileWeightModel) TileWeight(tile *Tile, weight []float64) bool {
	checkDimension(m, weight)
	var projected geometry.Quad
	for i := range tile.Quad {
		projected[i] = tile.Quad[i]
		projected[i].Unit()
	}
	area := quadArea(&projected)
	if !lin.IsFinite(area) {
		return false
	}
	weight[0] = area / (4 * lin.PI)
	return true
}

// quadArea estimates the area of a planar quad as half the cross
// product of its diagonals.
func quadArea(q *geometry.Quad) float64 {
	var d1, d2, cross lin.V3
	d1.Sub(&q[2], &q[0])
	d2.Sub(&q[3], &q[1])
	return 0.5 * cross.Cross(&d1, &d2).Len()
}

// ============================================================================

// CombinedTileWeightModel concatenates the weights of several models.
type CombinedTileWeightModel struct {
	models []TileWeightModel
}

// NewCombinedTileWeightModel concatenates the given models in order.
func NewCombinedTileWeightModel(models ...TileWeightModel) *CombinedTileWeightModel {
	return &CombinedTileWeightModel{models: models}
}

// Dimension implements TileWeightModel.
func (m *CombinedTileWeightModel) Dimension() int {
	dim := 0
	for _, sub := range m.models {
		dim += sub.Dimension()
	}
	return dim
}

// TileWeight implements TileWeightModel.
func (m *CombinedTileWeightModel) TileWeight(tile *Tile, weight []float64) bool {
	checkDimension(m, weight)
	offset := 0
	for _, sub := range m.models {
		dim := sub.Dimension()
		if !sub.TileWeight(tile, weight[offset:offset+dim]) {
			return false
		}
		offset += dim
	}
	return true
}

// ============================================================================

// DirectionalOverdrawTileWeightModel models the overdraw/fillrate
// required to render tiles from different poses: one weight component
// per sampled view direction.
type DirectionalOverdrawTileWeightModel struct {
	directions    []lin.V3
	cosHalfFov    float64
	headboxRadius float64
}

// subdivisionsPerRevolution controls how finely tiles are split into
// patches when integrating projected area.
const subdivisionsPerRevolution = 100

// NewDirectionalOverdrawTileWeightModel uses the given number of
// Fibonacci-sphere view directions, each modeling the overdraw as
// measured by a camera with the given field of view whose eye roams an
// origin-centered sphere of headboxRadius.
func NewDirectionalOverdrawTileWeightModel(samples int, fovRadians,
	headboxRadius float64) *DirectionalOverdrawTileWeightModel {
	directions := make([]lin.V3, samples)
	for s := range directions {
		directions[s] = geometry.FibonacciSpherePoint(samples, 0, s)
	}
	return &DirectionalOverdrawTileWeightModel{
		directions:    directions,
		cosHalfFov:    math.Cos(fovRadians / 2),
		headboxRadius: headboxRadius,
	}
}

// Dimension implements TileWeightModel.
func (m *DirectionalOverdrawTileWeightModel) Dimension() int { return len(m.directions) }

// subdivisionFactor determines how much to subdivide the quad in each
// direction to reach the target subdivisions per revolution.
func subdivisionFactor(q *geometry.Quad) (nx, ny int) {
	angle := func(a, b *lin.V3) float64 {
		var ua, ub lin.V3
		ua.Set(a).Unit()
		ub.Set(b).Unit()
		return math.Acos(lin.Clamp(ua.Dot(&ub), -1, 1))
	}
	angleX := math.Max(angle(&q[0], &q[1]), angle(&q[2], &q[3]))
	angleY := math.Max(angle(&q[0], &q[3]), angle(&q[1], &q[2]))
	nx = int(angleX * subdivisionsPerRevolution / lin.PIx2)
	ny = int(angleY * subdivisionsPerRevolution / lin.PIx2)
	if nx < 1 {
		nx = 1
	}
	if ny < 1 {
		ny = 1
	}
	return nx, ny
}

// closestPointInSphere returns the point within an origin-centered
// sphere which is closest to the given ray. Ray starts inside the
// sphere return the start itself.
func closestPointInSphere(rayStart, rayDir *lin.V3, radius float64) lin.V3 {
	if rayStart.LenSqr() < radius*radius {
		return *rayStart
	}
	if t, hit := geometry.IntersectRaySphere(radius, rayStart, rayDir); hit {
		var p lin.V3
		p.Scale(rayDir, t)
		return *p.Add(&p, rayStart)
	}

	// The ray misses: take the point along the ray closest to the
	// origin and scale it back onto the sphere.
	var closest lin.V3
	closest.Scale(rayDir, -rayStart.Dot(rayDir))
	closest.Add(&closest, rayStart)
	return *closest.Unit().Scale(&closest, radius)
}

// TileWeight implements TileWeightModel:
//   - Subdivide the tile's quad into small patches; the weight samples
//     an integral over the quad.
//   - For each patch find the eye point within the viewing volume with
//     the worst-case, most head-on view.
//   - Project the patch onto the unit sphere from that eye and
//     estimate its area.
//   - Add the area, normalized by the solid angle of the viewing cone,
//     to every direction whose cone sees the patch center.
func (m *DirectionalOverdrawTileWeightModel) TileWeight(tile *Tile, weight []float64) bool {
	checkDimension(m, weight)
	for i := range weight {
		weight[i] = 0
	}

	// The surface area of the spherical cap of the circular field of
	// view. Based on Wikipedia/Steradian.
	steradians := 2 * lin.PI * (1 - m.cosHalfFov)

	nx, ny := subdivisionFactor(&tile.Quad)
	sx, sy := 1/float64(nx), 1/float64(ny)

	tri := geometry.Triangle{tile.Quad[0], tile.Quad[1], tile.Quad[2]}
	normal := tri.Normal()

	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			patch := geometry.Quad{
				tile.Quad.Bilerp(float64(x)*sx, float64(y)*sy),
				tile.Quad.Bilerp(float64(x+1)*sx, float64(y)*sy),
				tile.Quad.Bilerp(float64(x+1)*sx, float64(y+1)*sy),
				tile.Quad.Bilerp(float64(x)*sx, float64(y+1)*sy),
			}
			average := tile.Quad.Bilerp((float64(x)+0.5)*sx, (float64(y)+0.5)*sy)
			averageDir := average
			averageDir.Unit()

			// Worst-case eye position within the headbox.
			eye := closestPointInSphere(&average, &normal, m.headboxRadius)
			var projected geometry.Quad
			for i := range patch {
				projected[i].Sub(&patch[i], &eye).Unit()
			}
			areaNormalized := quadArea(&projected) / steradians

			for s := range m.directions {
				if averageDir.Dot(&m.directions[s]) > m.cosHalfFov {
					weight[s] += areaNormalized
				}
			}
		}
	}
	return true
}
