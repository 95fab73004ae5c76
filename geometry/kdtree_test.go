// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package geometry

import (
	"sort"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/gazed/tiler/math/lin"
)

// randomPoints3 returns a deterministic cloud of points in [-1,1]³.
func randomPoints3(count int, seed uint64) []lin.V3 {
	random := rand.New(rand.NewSource(seed))
	points := make([]lin.V3, count)
	for i := range points {
		points[i].SetS(
			random.Float64()*2-1,
			random.Float64()*2-1,
			random.Float64()*2-1)
	}
	return points
}

func TestKdTreeEmpty(t *testing.T) {
	tree := NewKdTree3(nil)
	if _, ok := tree.Nearest(&lin.V3{}); ok {
		t.Errorf("nearest on an empty tree should return false")
	}
	var result []int
	tree.Knn(&lin.V3{}, 4, &result)
	if len(result) != 0 {
		t.Errorf("knn on an empty tree returned %d results", len(result))
	}
	tree.InRadius(&lin.V3{}, 1, true, &result)
	if len(result) != 0 {
		t.Errorf("radius search on an empty tree returned %d results", len(result))
	}
}

func TestKdTreeNearest(t *testing.T) {
	points := randomPoints3(500, 1)
	tree := NewKdTree3(points)
	queries := randomPoints3(50, 2)
	for qi := range queries {
		q := &queries[qi]
		got, ok := tree.Nearest(q)
		if !ok {
			t.Fatalf("query %d found nothing", qi)
		}
		best, bestDist := -1, 1e30
		for i := range points {
			if d := q.DistSqr(&points[i]); d < bestDist {
				best, bestDist = i, d
			}
		}
		if got != best {
			t.Errorf("query %d found %d, closest is %d", qi, got, best)
		}
	}
}

func TestKdTreeKnn(t *testing.T) {
	points := randomPoints3(300, 3)
	tree := NewKdTree3(points)
	queries := randomPoints3(20, 4)
	const k = 7
	var result []int
	for qi := range queries {
		q := &queries[qi]
		tree.Knn(q, k, &result)
		if len(result) != k {
			t.Fatalf("query %d returned %d neighbours, not %d", qi, len(result), k)
		}

		// Brute force the k nearest and compare as sets.
		order := make([]int, len(points))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			return q.DistSqr(&points[order[a]]) < q.DistSqr(&points[order[b]])
		})
		want := map[int]bool{}
		for _, i := range order[:k] {
			want[i] = true
		}
		for _, i := range result {
			if !want[i] {
				t.Errorf("query %d neighbour %d is not among the %d nearest", qi, i, k)
			}
		}
	}
}

func TestKdTreeKnnMoreThanPoints(t *testing.T) {
	points := randomPoints3(5, 5)
	tree := NewKdTree3(points)
	var result []int
	tree.Knn(&lin.V3{}, 10, &result)
	if len(result) != len(points) {
		t.Errorf("requesting more neighbours than points returned %d, not %d",
			len(result), len(points))
	}
}

func TestKdTreeRadius(t *testing.T) {
	points := randomPoints3(400, 6)
	tree := NewKdTree3(points)
	q := &lin.V3{X: 0.1, Y: -0.2, Z: 0.3}
	const radiusSqr = 0.25
	var result []int
	tree.InRadius(q, radiusSqr, true, &result)

	want := 0
	for i := range points {
		if q.DistSqr(&points[i]) < radiusSqr {
			want++
		}
	}
	if len(result) != want {
		t.Fatalf("radius search returned %d points, not %d", len(result), want)
	}
	for i := 1; i < len(result); i++ {
		if q.DistSqr(&points[result[i-1]]) > q.DistSqr(&points[result[i]]) {
			t.Errorf("sorted radius results out of order at %d", i)
		}
	}
}

func TestKdTree2Nearest(t *testing.T) {
	points := []lin.V2{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: -1, Y: 0.5}}
	tree := NewKdTree2(points)
	got, ok := tree.Nearest(&lin.V2{X: 1.9, Y: 2.2})
	if !ok || got != 1 {
		t.Errorf("nearest was %d %t, not 1 true", got, ok)
	}
}
