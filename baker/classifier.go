// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package baker

// classifier assigns the rays of a sampled scene to the frames they
// texture. Solid samples stick to the frames their generating rays
// pass close to; freespace rays carve silhouettes through frames that
// would otherwise occlude them.

import (
	"math"
	"sort"

	"github.com/gazed/tiler/geometry"
	"github.com/gazed/tiler/math/lin"
	"github.com/gazed/tiler/parallel"
)

// RayBundle exposes the rays of a captured scene: one ray per source
// pixel with zero or more depth intersections along it.
type RayBundle interface {

	// RayCount returns the total number of rays.
	RayCount() int

	// Origin returns the start point of the ray.
	Origin(ray int) lin.V3

	// Direction returns the direction of the ray.
	Direction(ray int) lin.V3

	// IntersectionCount returns the number of scene intersections
	// recorded along the ray.
	IntersectionCount(ray int) int

	// IntersectionPoint returns the world point of the given
	// intersection of the ray.
	IntersectionPoint(ray, intersection int) lin.V3
}

// RayIntersectionIndex identifies one intersection of one ray of a
// bundle.
type RayIntersectionIndex struct {
	Ray          int
	Intersection int
}

// ClassifiedRays holds the classification results for a single frame.
type ClassifiedRays struct {

	// SolidSamples are the ray intersections texturing the frame.
	SolidSamples []RayIntersectionIndex

	// FreespaceRays are the rays carving silhouettes into the frame.
	FreespaceRays []int
}

// RayClassifier assigns rays to frames.
type RayClassifier interface {

	// Init prepares the classifier for the given frames. The frame
	// slice is retained until the next Init.
	Init(frames []Frame)

	// ClassifyRays classifies all rays of the bundle, returning one
	// result per frame.
	ClassifyRays(bundle RayBundle) []ClassifiedRays
}

// RenderingMode selects how freespace carving decides occlusion.
type RenderingMode int

const (

	// RenderZBuffer assumes the baked result renders with a depth
	// buffer: rays carve frames they hit before their primary frame.
	RenderZBuffer RenderingMode = iota

	// RenderDrawOrder assumes back-to-front quad compositing: rays
	// carve frames drawing after their primary frame.
	RenderDrawOrder
)

// ProjectingRayClassifier classifies rays by projecting them through
// the origin onto the frame set.
type ProjectingRayClassifier struct {
	workers int
	mode    RenderingMode

	// secondaryThreshold is the normalized ray distance below which an
	// intersection also textures frames other than its primary frame.
	secondaryThreshold float64

	frames    []Frame
	raytracer *geometry.Raytracer
}

// NewProjectingRayClassifier returns a classifier. The secondary
// threshold is the normalized hit distance below which samples stick
// to non-primary frames.
func NewProjectingRayClassifier(workers int, mode RenderingMode,
	secondaryThreshold float64) *ProjectingRayClassifier {
	return &ProjectingRayClassifier{
		workers:            workers,
		mode:               mode,
		secondaryThreshold: secondaryThreshold,
	}
}

// Init implements RayClassifier by building a raytracer over the
// frame quads, two triangles per frame.
func (rc *ProjectingRayClassifier) Init(frames []Frame) {
	rc.frames = frames
	var verts []lin.V3
	var indices []int
	for fi := range frames {
		base := len(verts)
		verts = append(verts, frames[fi].Quad[0], frames[fi].Quad[1],
			frames[fi].Quad[2], frames[fi].Quad[3])
		indices = append(indices,
			base, base+1, base+2,
			base, base+2, base+3)
	}
	rc.raytracer = geometry.NewRaytracer(verts, indices)
}

// normalizedRayDistance is the distance of a hit from the ray's
// endpoint, scaled so 1 equals the endpoint-origin distance.
func normalizedRayDistance(tHit float64) float64 { return math.Abs(tHit - 1) }

// collectSolidSamples assigns every ray intersection to its primary
// frame (nearest hit by normalized distance) and to any secondary
// frames hit within the threshold. It also records the primary frames
// per ray for the freespace pass. Results per frame are sorted.
func (rc *ProjectingRayClassifier) collectSolidSamples(bundle RayBundle,
	solidPerFrame [][]RayIntersectionIndex, primaryPerRay [][]int) {

	rayCount := bundle.RayCount()
	frameCount := len(rc.frames)

	// Accumulate per worker, then merge deterministically.
	perThread := make([][][]RayIntersectionIndex, rc.workers)
	parallel.For(rc.workers, rc.workers, func(tid int) error {
		local := make([][]RayIntersectionIndex, frameCount)
		var hits []geometry.Hit
		var origin lin.V3
		for r := tid; r < rayCount; r += rc.workers {
			intersections := bundle.IntersectionCount(r)
			for i := 0; i < intersections; i++ {
				endpoint := bundle.IntersectionPoint(r, i)
				rc.raytracer.AllHits(&origin, &endpoint, &hits)
				if len(hits) == 0 {
					continue
				}

				primary := hits[0]
				for _, hit := range hits[1:] {
					if normalizedRayDistance(hit.T) < normalizedRayDistance(primary.T) {
						primary = hit
					}
				}
				primaryFrame := primary.Triangle / 2
				primaryPerRay[r] = append(primaryPerRay[r], primaryFrame)
				local[primaryFrame] = append(local[primaryFrame],
					RayIntersectionIndex{Ray: r, Intersection: i})

				for _, hit := range hits {
					frame := hit.Triangle / 2
					if frame == primaryFrame {
						continue
					}
					if normalizedRayDistance(hit.T) < rc.secondaryThreshold {
						local[frame] = append(local[frame],
							RayIntersectionIndex{Ray: r, Intersection: i})
					}
				}
			}
		}
		perThread[tid] = local
		return nil
	})

	parallel.For(rc.workers, frameCount, func(frame int) error {
		for _, local := range perThread {
			solidPerFrame[frame] = append(solidPerFrame[frame], local[frame]...)
		}
		samples := solidPerFrame[frame]
		sort.Slice(samples, func(a, b int) bool {
			if samples[a].Ray != samples[b].Ray {
				return samples[a].Ray < samples[b].Ray
			}
			return samples[a].Intersection < samples[b].Intersection
		})
		return nil
	})

	parallel.For(rc.workers, rayCount, func(r int) error {
		sort.Ints(primaryPerRay[r])
		return nil
	})
}

// collectFreespaceRays finds, for every ray, the frames its first
// intersection passes through on the way to the primary frame and
// marks the ray as carving freespace into them. Rays without samples
// carve through everything they hit, which supports partial scenes
// where masked-out pixels must carve silhouettes. Results per frame
// are sorted.
func (rc *ProjectingRayClassifier) collectFreespaceRays(bundle RayBundle,
	primaryPerRay [][]int, freespacePerFrame [][]int) {

	rayCount := bundle.RayCount()
	frameCount := len(rc.frames)

	perThread := make([][][]int, rc.workers)
	parallel.For(rc.workers, rc.workers, func(tid int) error {
		local := make([][]int, frameCount)
		var hits []geometry.Hit
		for r := tid; r < rayCount; r += rc.workers {
			origin := bundle.Origin(r)
			if bundle.IntersectionCount(r) == 0 {
				direction := bundle.Direction(r)
				rc.raytracer.AllHits(&origin, &direction, &hits)
				for _, hit := range hits {
					local[hit.Triangle/2] = append(local[hit.Triangle/2], r)
				}
				continue
			}

			endpoint := bundle.IntersectionPoint(r, 0)
			var toEndpoint lin.V3
			toEndpoint.Sub(&endpoint, &origin)
			rc.raytracer.AllHits(&origin, &toEndpoint, &hits)
			if len(hits) == 0 {
				continue
			}

			primaries := primaryPerRay[r]
			for _, hit := range hits {
				frame := hit.Triangle / 2

				// Skip grazing hits: checking here, rather than only
				// while collecting solid samples, lets grazing-angle
				// samples remove fins that would otherwise protrude
				// from geometry. Also skip the ray's own primary
				// frames.
				if normalizedRayDistance(hit.T) < rc.secondaryThreshold {
					continue
				}
				if containsSorted(primaries, frame) {
					continue
				}
				for _, primaryFrame := range primaries {
					if rc.carves(&hit, frame, primaryFrame, &origin, &toEndpoint) {
						local[frame] = append(local[frame], r)
						break
					}
				}
			}
		}
		perThread[tid] = local
		return nil
	})

	parallel.For(rc.workers, frameCount, func(frame int) error {
		for _, local := range perThread {
			freespacePerFrame[frame] = append(freespacePerFrame[frame], local[frame]...)
		}
		sort.Ints(freespacePerFrame[frame])
		return nil
	})
}

// carves decides whether an intersection on frame carves a silhouette,
// given one of the ray's primary frames.
func (rc *ProjectingRayClassifier) carves(hit *geometry.Hit, frame, primaryFrame int,
	origin, toEndpoint *lin.V3) bool {
	if rc.mode == RenderZBuffer {
		// With a depth buffer the ray carves iff it hits this frame
		// before its primary intersection.
		plane := PlaneFromFrame(&rc.frames[primaryFrame])
		tPrimary, ok := plane.IntersectRay(origin, toEndpoint)
		return ok && hit.T < tPrimary
	}
	// Without a depth buffer the ray carves iff this frame renders
	// after the primary frame.
	return rc.frames[frame].DrawOrder > rc.frames[primaryFrame].DrawOrder
}

// containsSorted reports whether the sorted slice contains the value.
func containsSorted(sorted []int, value int) bool {
	i := sort.SearchInts(sorted, value)
	return i < len(sorted) && sorted[i] == value
}

// ClassifyRays implements RayClassifier.
func (rc *ProjectingRayClassifier) ClassifyRays(bundle RayBundle) []ClassifiedRays {
	rayCount := bundle.RayCount()
	frameCount := len(rc.frames)

	primaryPerRay := make([][]int, rayCount)
	solidPerFrame := make([][]RayIntersectionIndex, frameCount)
	rc.collectSolidSamples(bundle, solidPerFrame, primaryPerRay)

	freespacePerFrame := make([][]int, frameCount)
	rc.collectFreespaceRays(bundle, primaryPerRay, freespacePerFrame)

	classified := make([]ClassifiedRays, frameCount)
	parallel.BalancedFor(rc.workers, frameCount, func(frame int) error {
		solid := solidPerFrame[frame]
		freespace := freespacePerFrame[frame]

		// A ray carving freespace into a frame cannot also texture it.
		kept := solid[:0]
		for _, sample := range solid {
			if !containsSorted(freespace, sample.Ray) {
				kept = append(kept, sample)
			}
		}
		classified[frame] = ClassifiedRays{SolidSamples: kept, FreespaceRays: freespace}
		return nil
	})
	return classified
}

// ============================================================================

// TextureSizer supplies the texture resolution of each frame. Texture
// sizing itself belongs to the baking pipeline; only the resulting
// sizes matter here.
type TextureSizer interface {
	// TextureSizes fills sizes with the (width, height) texture
	// resolution per frame. The slices are parallel.
	TextureSizes(frames []Frame, sizes [][2]int)
}

// DilatingRayClassifier expands each frame by a texture-filter radius
// before delegating classification, so filtering near quad edges finds
// valid samples.
type DilatingRayClassifier struct {
	filterRadius float64
	sizer        TextureSizer
	delegate     RayClassifier
	dilated      []Frame
}

// NewDilatingRayClassifier wraps the delegate classifier.
func NewDilatingRayClassifier(filterRadius float64, sizer TextureSizer,
	delegate RayClassifier) *DilatingRayClassifier {
	return &DilatingRayClassifier{
		filterRadius: filterRadius,
		sizer:        sizer,
		delegate:     delegate,
	}
}

// Init implements RayClassifier. Texture pixels lie on frame vertices,
// so the per-axis scale compensates by one; 1x1 textures are special
// cased.
func (dc *DilatingRayClassifier) Init(frames []Frame) {
	sizes := make([][2]int, len(frames))
	dc.sizer.TextureSizes(frames, sizes)
	dc.dilated = append(dc.dilated[:0], frames...)
	for i := range dc.dilated {
		scaleX := dc.filterRadius / float64(max(1, sizes[i][0]-1))
		scaleY := dc.filterRadius / float64(max(1, sizes[i][1]-1))
		// Each corner moves away from its x neighbour and its y
		// neighbour.
		xPartner := [4]int{1, 0, 3, 2}
		yPartner := [4]int{3, 2, 1, 0}
		frame := dc.dilated[i]
		next := frame
		for corner := 0; corner < 4; corner++ {
			var dx, dy lin.V3
			dx.Sub(&frame.Quad[corner], &frame.Quad[xPartner[corner]]).Scale(&dx, scaleX)
			dy.Sub(&frame.Quad[corner], &frame.Quad[yPartner[corner]]).Scale(&dy, scaleY)
			next.Quad[corner].Add(&next.Quad[corner], &dx)
			next.Quad[corner].Add(&next.Quad[corner], &dy)
		}
		dc.dilated[i] = next
	}
	dc.delegate.Init(dc.dilated)
}

// ClassifyRays implements RayClassifier.
func (dc *DilatingRayClassifier) ClassifyRays(bundle RayBundle) []ClassifiedRays {
	return dc.delegate.ClassifyRays(bundle)
}
