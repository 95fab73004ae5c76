// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package baker

import (
	"testing"

	"github.com/gazed/tiler/math/lin"
)

// testBundle is a fixed set of rays from the origin with explicit
// intersection points.
type testBundle struct {
	origins    []lin.V3
	directions []lin.V3
	points     [][]lin.V3
}

func (b *testBundle) RayCount() int                { return len(b.directions) }
func (b *testBundle) Origin(r int) lin.V3          { return b.origins[r] }
func (b *testBundle) Direction(r int) lin.V3       { return b.directions[r] }
func (b *testBundle) IntersectionCount(r int) int  { return len(b.points[r]) }
func (b *testBundle) IntersectionPoint(r, i int) lin.V3 {
	return b.points[r][i]
}

func TestClassifySolidSamples(t *testing.T) {
	frames := []Frame{unitFrame(2), unitFrame(6)}
	InitializeApproximateDrawOrder(frames)

	bundle := &testBundle{
		origins:    []lin.V3{{}, {}},
		directions: []lin.V3{{Z: 1}, {Z: 1}},
		points: [][]lin.V3{
			{{X: 0.5, Y: 0.25, Z: 2}}, // on the near frame.
			{{X: 0.5, Y: 0.25, Z: 6}}, // on the far frame.
		},
	}

	rc := NewProjectingRayClassifier(2, RenderZBuffer, 0.05)
	rc.Init(frames)
	classified := rc.ClassifyRays(bundle)
	if len(classified) != 2 {
		t.Fatalf("classified %d frames, not 2", len(classified))
	}

	// Ray 0's sample lands on frame 0; ray 1's on frame 1.
	if len(classified[0].SolidSamples) != 1 || classified[0].SolidSamples[0].Ray != 0 {
		t.Errorf("near frame solid samples were %v", classified[0].SolidSamples)
	}
	found := false
	for _, sample := range classified[1].SolidSamples {
		if sample.Ray == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("far frame should hold ray 1's sample, had %v", classified[1].SolidSamples)
	}
}

func TestClassifyFreespaceCarving(t *testing.T) {
	frames := []Frame{unitFrame(2), unitFrame(6)}
	InitializeApproximateDrawOrder(frames)

	// The ray's only sample sits on the far frame, so the near frame
	// occludes it and must be carved.
	bundle := &testBundle{
		origins:    []lin.V3{{}},
		directions: []lin.V3{{Z: 1}},
		points:     [][]lin.V3{{{X: 0.5, Y: 0.25, Z: 6}}},
	}

	rc := NewProjectingRayClassifier(1, RenderZBuffer, 0.05)
	rc.Init(frames)
	classified := rc.ClassifyRays(bundle)

	if len(classified[0].FreespaceRays) != 1 || classified[0].FreespaceRays[0] != 0 {
		t.Errorf("near frame freespace rays were %v", classified[0].FreespaceRays)
	}
	if len(classified[1].FreespaceRays) != 0 {
		t.Errorf("far frame should not be carved, had %v", classified[1].FreespaceRays)
	}
	if len(classified[1].SolidSamples) != 1 {
		t.Errorf("far frame should keep its solid sample, had %v", classified[1].SolidSamples)
	}
}

func TestClassifyEmptyRaysCarveEverything(t *testing.T) {
	frames := []Frame{unitFrame(2), unitFrame(6)}
	InitializeApproximateDrawOrder(frames)

	// A ray with no samples represents masked-out input and carves
	// silhouettes through every frame it passes.
	bundle := &testBundle{
		origins:    []lin.V3{{}},
		directions: []lin.V3{{X: 0.05, Y: 0.025, Z: 1}},
		points:     [][]lin.V3{{}},
	}

	rc := NewProjectingRayClassifier(1, RenderZBuffer, 0.05)
	rc.Init(frames)
	classified := rc.ClassifyRays(bundle)
	for frame := range classified {
		if len(classified[frame].FreespaceRays) != 1 {
			t.Errorf("frame %d freespace rays were %v", frame, classified[frame].FreespaceRays)
		}
	}
}
