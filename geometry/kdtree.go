// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package geometry

// kdtree implements K-nearest neighbour and radius queries over point
// clouds. Trees are immutable once built and safe for concurrent
// queries from multiple goroutines.
//     http://en.wikipedia.org/wiki/K-d_tree

import (
	"sort"

	"github.com/gazed/tiler/math/lin"
)

// KdTree2 answers nearest-neighbour queries over a set of 2D points.
type KdTree2 struct{ kd kdtree }

// KdTree3 answers nearest-neighbour queries over a set of 3D points.
type KdTree3 struct{ kd kdtree }

// NewKdTree2 builds a tree over the given points. The points are copied
// so the input slice may be reused afterwards.
func NewKdTree2(points []lin.V2) *KdTree2 {
	coords := make([]float64, 0, len(points)*2)
	for i := range points {
		coords = append(coords, points[i].X, points[i].Y)
	}
	return &KdTree2{kd: newKdtree(2, coords)}
}

// NewKdTree3 builds a tree over the given points. The points are copied
// so the input slice may be reused afterwards.
func NewKdTree3(points []lin.V3) *KdTree3 {
	coords := make([]float64, 0, len(points)*3)
	for i := range points {
		coords = append(coords, points[i].X, points[i].Y, points[i].Z)
	}
	return &KdTree3{kd: newKdtree(3, coords)}
}

// Nearest returns the index of the point closest to the query point.
// It returns false if the tree is empty.
func (t *KdTree2) Nearest(q *lin.V2) (index int, ok bool) {
	return t.kd.nearest([3]float64{q.X, q.Y})
}

// Nearest returns the index of the point closest to the query point.
// It returns false if the tree is empty.
func (t *KdTree3) Nearest(q *lin.V3) (index int, ok bool) {
	return t.kd.nearest([3]float64{q.X, q.Y, q.Z})
}

// Knn resets result to the indices of at most k points nearest to the
// query point. The returned neighbours are not sorted by distance.
func (t *KdTree2) Knn(q *lin.V2, k int, result *[]int) {
	t.kd.knn([3]float64{q.X, q.Y}, k, result)
}

// Knn resets result to the indices of at most k points nearest to the
// query point. The returned neighbours are not sorted by distance.
func (t *KdTree3) Knn(q *lin.V3, k int, result *[]int) {
	t.kd.knn([3]float64{q.X, q.Y, q.Z}, k, result)
}

// InRadius resets result to the indices of all points with a squared
// distance to the query point less than radiusSqr. The results are
// sorted by distance when sorted is true.
func (t *KdTree2) InRadius(q *lin.V2, radiusSqr float64, sorted bool, result *[]int) {
	t.kd.inRadius([3]float64{q.X, q.Y}, radiusSqr, sorted, result)
}

// InRadius resets result to the indices of all points with a squared
// distance to the query point less than radiusSqr. The results are
// sorted by distance when sorted is true.
func (t *KdTree3) InRadius(q *lin.V3, radiusSqr float64, sorted bool, result *[]int) {
	t.kd.inRadius([3]float64{q.X, q.Y, q.Z}, radiusSqr, sorted, result)
}

// ============================================================================
// dimension independent tree internals.

// kdnode is one tree node. Nodes are stored in a flat slice with child
// links by slice index.
type kdnode struct {
	point       int32 // index of the splitting point.
	left, right int32 // child node slice indices, -1 when absent.
	axis        int8  // splitting axis.
}

// kdtree holds the flattened point coordinates and the node slice.
type kdtree struct {
	dim    int
	coords []float64 // dim values per point.
	nodes  []kdnode
	root   int32
}

func newKdtree(dim int, coords []float64) kdtree {
	count := len(coords) / dim
	t := kdtree{dim: dim, coords: coords, root: -1}
	if count == 0 {
		return t
	}
	indices := make([]int32, count)
	for i := range indices {
		indices[i] = int32(i)
	}
	t.nodes = make([]kdnode, 0, count)
	t.root = t.build(indices, 0)
	return t
}

// at returns coordinate c of point p.
func (t *kdtree) at(p int32, c int) float64 { return t.coords[int(p)*t.dim+c] }

// build recursively splits the index slice at the median of the cycling
// split axis, returning the slice index of the created node.
func (t *kdtree) build(indices []int32, depth int) int32 {
	if len(indices) == 0 {
		return -1
	}
	axis := depth % t.dim
	median := len(indices) / 2
	t.selectNth(indices, median, axis)

	node := int32(len(t.nodes))
	t.nodes = append(t.nodes, kdnode{point: indices[median], left: -1, right: -1, axis: int8(axis)})
	left := t.build(indices[:median], depth+1)
	right := t.build(indices[median+1:], depth+1)
	t.nodes[node].left = left
	t.nodes[node].right = right
	return node
}

// selectNth partially sorts indices such that the element at position
// nth is the one that would be there in a full sort by the given axis.
func (t *kdtree) selectNth(indices []int32, nth, axis int) {
	lo, hi := 0, len(indices)-1
	for lo < hi {
		pivot := t.at(indices[(lo+hi)/2], axis)
		i, j := lo, hi
		for i <= j {
			for t.at(indices[i], axis) < pivot {
				i++
			}
			for t.at(indices[j], axis) > pivot {
				j--
			}
			if i <= j {
				indices[i], indices[j] = indices[j], indices[i]
				i++
				j--
			}
		}
		if nth <= j {
			hi = j
		} else if nth >= i {
			lo = i
		} else {
			return
		}
	}
}

func (t *kdtree) distSqr(q [3]float64, p int32) float64 {
	total := 0.0
	for c := 0; c < t.dim; c++ {
		d := q[c] - t.at(p, c)
		total += d * d
	}
	return total
}

func (t *kdtree) nearest(q [3]float64) (int, bool) {
	if t.root < 0 {
		return 0, false
	}
	best := int32(-1)
	bestDist := 0.0
	t.searchNearest(t.root, q, &best, &bestDist)
	return int(best), true
}

func (t *kdtree) searchNearest(node int32, q [3]float64, best *int32, bestDist *float64) {
	if node < 0 {
		return
	}
	n := &t.nodes[node]
	dist := t.distSqr(q, n.point)
	if *best < 0 || dist < *bestDist {
		*best = n.point
		*bestDist = dist
	}
	delta := q[n.axis] - t.at(n.point, int(n.axis))
	near, far := n.left, n.right
	if delta > 0 {
		near, far = far, near
	}
	t.searchNearest(near, q, best, bestDist)
	if delta*delta < *bestDist {
		t.searchNearest(far, q, best, bestDist)
	}
}

// knnHeap is a fixed-capacity max-heap on distance so the worst
// candidate is evicted first.
type knnHeap struct {
	idx  []int32
	dist []float64
	cap  int
}

func (h *knnHeap) push(idx int32, dist float64) {
	if len(h.idx) < h.cap {
		h.idx = append(h.idx, idx)
		h.dist = append(h.dist, dist)
		h.up(len(h.idx) - 1)
		return
	}
	if dist >= h.dist[0] {
		return
	}
	h.idx[0], h.dist[0] = idx, dist
	h.down(0)
}

func (h *knnHeap) worst() float64 {
	if len(h.idx) < h.cap {
		return 0
	}
	return h.dist[0]
}

func (h *knnHeap) full() bool { return len(h.idx) == h.cap }

func (h *knnHeap) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.dist[parent] >= h.dist[i] {
			break
		}
		h.idx[parent], h.idx[i] = h.idx[i], h.idx[parent]
		h.dist[parent], h.dist[i] = h.dist[i], h.dist[parent]
		i = parent
	}
}

func (h *knnHeap) down(i int) {
	for {
		largest := i
		if l := 2*i + 1; l < len(h.idx) && h.dist[l] > h.dist[largest] {
			largest = l
		}
		if r := 2*i + 2; r < len(h.idx) && h.dist[r] > h.dist[largest] {
			largest = r
		}
		if largest == i {
			return
		}
		h.idx[largest], h.idx[i] = h.idx[i], h.idx[largest]
		h.dist[largest], h.dist[i] = h.dist[i], h.dist[largest]
		i = largest
	}
}

func (t *kdtree) knn(q [3]float64, k int, result *[]int) {
	*result = (*result)[:0]
	if t.root < 0 || k <= 0 {
		return
	}
	heap := knnHeap{cap: k}
	t.searchKnn(t.root, q, &heap)
	for _, idx := range heap.idx {
		*result = append(*result, int(idx))
	}
}

func (t *kdtree) searchKnn(node int32, q [3]float64, heap *knnHeap) {
	if node < 0 {
		return
	}
	n := &t.nodes[node]
	heap.push(n.point, t.distSqr(q, n.point))
	delta := q[n.axis] - t.at(n.point, int(n.axis))
	near, far := n.left, n.right
	if delta > 0 {
		near, far = far, near
	}
	t.searchKnn(near, q, heap)
	if !heap.full() || delta*delta < heap.worst() {
		t.searchKnn(far, q, heap)
	}
}

func (t *kdtree) inRadius(q [3]float64, radiusSqr float64, sorted bool, result *[]int) {
	*result = (*result)[:0]
	if t.root < 0 {
		return
	}
	var dists []float64
	t.searchRadius(t.root, q, radiusSqr, result, &dists)
	if sorted {
		order := make([]int, len(*result))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool { return dists[order[a]] < dists[order[b]] })
		out := make([]int, len(*result))
		for i, o := range order {
			out[i] = (*result)[o]
		}
		copy(*result, out)
	}
}

func (t *kdtree) searchRadius(node int32, q [3]float64, radiusSqr float64, result *[]int, dists *[]float64) {
	if node < 0 {
		return
	}
	n := &t.nodes[node]
	if dist := t.distSqr(q, n.point); dist < radiusSqr {
		*result = append(*result, int(n.point))
		*dists = append(*dists, dist)
	}
	delta := q[n.axis] - t.at(n.point, int(n.axis))
	near, far := n.left, n.right
	if delta > 0 {
		near, far = far, near
	}
	t.searchRadius(near, q, radiusSqr, result, dists)
	if delta*delta < radiusSqr {
		t.searchRadius(far, q, radiusSqr, result, dists)
	}
}
