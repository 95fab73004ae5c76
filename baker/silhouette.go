// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package baker

import (
	"github.com/gazed/tiler/geometry"
	"github.com/gazed/tiler/math/lin"
)

// ImplicitSilhouette is a 2D silhouette implied by nearest neighbours
// from a set of solid and freespace samples: a point is a solid part
// of the silhouette iff it is at least as close to a solid sample as
// to a freespace sample. Samples are typically in [0,1]².
type ImplicitSilhouette struct {
	solid     []lin.V2
	freespace []lin.V2
	solidTree *geometry.KdTree2
	freeTree  *geometry.KdTree2
}

// NewImplicitSilhouette resolves the given samples. The sample slices
// are retained.
func NewImplicitSilhouette(solid, freespace []lin.V2) *ImplicitSilhouette {
	return &ImplicitSilhouette{
		solid:     solid,
		freespace: freespace,
		solidTree: geometry.NewKdTree2(solid),
		freeTree:  geometry.NewKdTree2(freespace),
	}
}

// IsSolid returns whether the silhouette is solid at the given point.
// Points equidistant from the nearest solid and freespace samples are
// solid: freespace only wins with strictly smaller distance. That is a
// convention, not a necessity, but it must stay put for deterministic
// carving.
func (s *ImplicitSilhouette) IsSolid(point *lin.V2) bool {
	nearestSolid, ok := s.solidTree.Nearest(point)
	if !ok {
		// No solid samples: err on the side of an empty region.
		return false
	}
	nearestFree, ok := s.freeTree.Nearest(point)
	if !ok {
		// Solid samples but no freespace samples: completely solid.
		return true
	}
	return point.DistSqr(&s.solid[nearestSolid]) <= point.DistSqr(&s.freespace[nearestFree])
}

// SilhouetteBuffer accumulates samples and builds an
// ImplicitSilhouette. Implementations trade memory for fidelity by
// merging or discarding samples.
type SilhouetteBuffer interface {

	// AddSolidSample adds a solid sample to the buffer.
	AddSolidSample(sample *lin.V2)

	// AddFreespaceSample adds a freespace sample to the buffer.
	AddFreespaceSample(sample *lin.V2)

	// Resolve returns the silhouette of all samples added so far,
	// including those added before a previous Resolve.
	Resolve() *ImplicitSilhouette
}

// ============================================================================

// SimpleSilhouetteBuffer retains every sample.
type SimpleSilhouetteBuffer struct {
	solid     []lin.V2
	freespace []lin.V2
}

// NewSimpleSilhouetteBuffer returns an empty buffer.
func NewSimpleSilhouetteBuffer() *SimpleSilhouetteBuffer {
	return &SimpleSilhouetteBuffer{}
}

// AddSolidSample implements SilhouetteBuffer.
func (b *SimpleSilhouetteBuffer) AddSolidSample(sample *lin.V2) {
	b.solid = append(b.solid, *sample)
}

// AddFreespaceSample implements SilhouetteBuffer.
func (b *SimpleSilhouetteBuffer) AddFreespaceSample(sample *lin.V2) {
	b.freespace = append(b.freespace, *sample)
}

// Resolve implements SilhouetteBuffer.
func (b *SimpleSilhouetteBuffer) Resolve() *ImplicitSilhouette {
	solid := append([]lin.V2(nil), b.solid...)
	freespace := append([]lin.V2(nil), b.freespace...)
	return NewImplicitSilhouette(solid, freespace)
}

// ============================================================================

// CompactSilhouetteBuffer retains at most one quantized solid and
// freespace sample per pixel of a fixed resolution grid. Only samples
// within [0,1)² are retained. Grid cells holding both sample kinds
// cancel out and contribute nothing.
type CompactSilhouetteBuffer struct {
	width, height int
	solid         []bool
	freespace     []bool
}

// NewCompactSilhouetteBuffer creates a buffer over a width x height
// quantization grid.
func NewCompactSilhouetteBuffer(width, height int) *CompactSilhouetteBuffer {
	return &CompactSilhouetteBuffer{
		width:     width,
		height:    height,
		solid:     make([]bool, width*height),
		freespace: make([]bool, width*height),
	}
}

// inUnitSquare returns true if p is in [0,1)².
func inUnitSquare(p *lin.V2) bool {
	return p.X >= 0 && p.X < 1 && p.Y >= 0 && p.Y < 1
}

// quantize truncates the sample into a grid index.
func (b *CompactSilhouetteBuffer) quantize(sample *lin.V2) int {
	x := int(sample.X * float64(b.width))
	y := int(sample.Y * float64(b.height))
	return y*b.width + x
}

// dequantize returns the center of the grid cell. Inverse of quantize.
func (b *CompactSilhouetteBuffer) dequantize(index int) lin.V2 {
	x := index % b.width
	y := index / b.width
	return lin.V2{
		X: (float64(x) + 0.5) / float64(b.width),
		Y: (float64(y) + 0.5) / float64(b.height),
	}
}

// AddSolidSample implements SilhouetteBuffer.
func (b *CompactSilhouetteBuffer) AddSolidSample(sample *lin.V2) {
	if !inUnitSquare(sample) {
		return
	}
	b.solid[b.quantize(sample)] = true
}

// AddFreespaceSample implements SilhouetteBuffer.
func (b *CompactSilhouetteBuffer) AddFreespaceSample(sample *lin.V2) {
	if !inUnitSquare(sample) {
		return
	}
	b.freespace[b.quantize(sample)] = true
}

// Resolve implements SilhouetteBuffer.
func (b *CompactSilhouetteBuffer) Resolve() *ImplicitSilhouette {
	var solid, freespace []lin.V2
	for i := range b.solid {
		switch {
		case b.solid[i] && !b.freespace[i]:
			solid = append(solid, b.dequantize(i))
		case !b.solid[i] && b.freespace[i]:
			freespace = append(freespace, b.dequantize(i))
		}
	}
	return NewImplicitSilhouette(solid, freespace)
}
