// Package simplify reduces a mesh's triangle count: first welding
// coincident vertices within a tolerance, then collapsing edges in
// cost order with a priority queue until a target ratio or a vertex
// budget is reached (spec.md section 4.7). No decimation example
// exists anywhere in the retrieval pack; the tolerance-bounded numeric
// style follows the teacher's internal/postprocess/standardize.go, and
// the priority queue is built on container/heap — no heap/priority-
// queue library appears anywhere in the pack, so this is the one
// structurally-required stdlib piece of this package.
package simplify

import (
	"container/heap"

	"bookmark-generator/internal/mathutil"
	"bookmark-generator/internal/mesh"
)

// WeldTolerance is the default distance below which two vertices are
// treated as coincident.
const WeldTolerance = 1e-4

// Weld merges vertices within tolerance of each other (grid-bucketed to
// avoid an all-pairs comparison) and remaps triangles onto the merged
// set, dropping any triangle that degenerates (two or more indices
// equal) as a result.
func Weld(g mesh.Geometry, tolerance float64) mesh.Geometry {
	n := len(g.Vertices)
	remap := make([]mesh.VertexID, n)
	for i := range remap {
		remap[i] = -1
	}

	type bucketKey [3]int64
	cell := func(v mathutil.Vec3) bucketKey {
		return bucketKey{
			int64(v[0] / tolerance), int64(v[1] / tolerance), int64(v[2] / tolerance),
		}
	}
	buckets := make(map[bucketKey][]mesh.VertexID)

	var welded []mathutil.Vec3
	for i, v := range g.Vertices {
		k := cell(v)
		found := mesh.VertexID(-1)
		for dz := -1; dz <= 1 && found < 0; dz++ {
			for dy := -1; dy <= 1 && found < 0; dy++ {
				for dx := -1; dx <= 1 && found < 0; dx++ {
					nk := bucketKey{k[0] + int64(dx), k[1] + int64(dy), k[2] + int64(dz)}
					for _, candidate := range buckets[nk] {
						if welded[candidate].Sub(v).Len() <= tolerance {
							found = candidate
							break
						}
					}
				}
			}
		}
		if found >= 0 {
			remap[i] = found
			continue
		}
		id := mesh.VertexID(len(welded))
		welded = append(welded, v)
		buckets[k] = append(buckets[k], id)
		remap[i] = id
	}

	out := mesh.Geometry{Vertices: welded}
	for _, t := range g.Triangles {
		a, b, c := remap[t[0]], remap[t[1]], remap[t[2]]
		if a == b || b == c || a == c {
			continue
		}
		out.Triangles = append(out.Triangles, mesh.Triangle{a, b, c})
	}
	return out
}

// edgeItem is one candidate edge collapse in the priority queue.
type edgeItem struct {
	a, b      mesh.VertexID
	cost      float64
	genA, genB int
	index     int
}

type edgeHeap []*edgeItem

func (h edgeHeap) Len() int            { return len(h) }
func (h edgeHeap) Less(i, j int) bool  { return h[i].cost < h[j].cost }
func (h edgeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index, h[j].index = i, j }
func (h *edgeHeap) Push(x interface{}) { it := x.(*edgeItem); it.index = len(*h); *h = append(*h, it) }
func (h *edgeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// Simplify collapses edges in ascending-cost order until the vertex
// count reaches (1-targetRatio)*original or maxVertices, whichever is
// smaller, rejecting any collapse that would break manifoldness, flip
// a triangle's winding, or shrink a feature below minFeatureSize.
// targetRatio is the fraction of vertices to remove, not to keep. A
// mesh with at most maxVertices vertices is returned unchanged.
func Simplify(g mesh.Geometry, targetRatio float64, maxVertices int, minFeatureSize float64) mesh.Geometry {
	if len(g.Vertices) <= maxVertices {
		return g
	}
	vertices := append([]mathutil.Vec3(nil), g.Vertices...)
	triangles := append([]mesh.Triangle(nil), g.Triangles...)
	alive := make([]bool, len(vertices))
	for i := range alive {
		alive[i] = true
	}
	gen := make([]int, len(vertices))

	targetCount := int(float64(len(vertices)) * (1 - targetRatio))
	if maxVertices < targetCount {
		targetCount = maxVertices
	}
	if targetCount < 3 {
		targetCount = 3
	}

	adjacency := buildAdjacency(triangles, len(vertices))

	h := &edgeHeap{}
	heap.Init(h)
	seen := make(map[[2]mesh.VertexID]bool)
	pushEdgesFor := func(v mesh.VertexID) {
		for _, nb := range adjacency[v] {
			a, b := v, nb
			if a > b {
				a, b = b, a
			}
			if seen[[2]mesh.VertexID{a, b}] {
				continue
			}
			seen[[2]mesh.VertexID{a, b}] = true
			cost := vertices[a].Sub(vertices[b]).Len()
			heap.Push(h, &edgeItem{a: a, b: b, cost: cost, genA: gen[a], genB: gen[b]})
		}
	}
	for v := range vertices {
		pushEdgesFor(mesh.VertexID(v))
	}

	liveCount := len(vertices)
	for h.Len() > 0 && liveCount > targetCount {
		item := heap.Pop(h).(*edgeItem)
		if !alive[item.a] || !alive[item.b] {
			continue
		}
		if gen[item.a] != item.genA || gen[item.b] != item.genB {
			continue // stale: one endpoint has already moved
		}
		if !manifoldEdge(triangles, item.a, item.b) {
			continue
		}
		// Link condition: a and b may share only the two vertices
		// opposite the edge, or the collapse pinches the surface.
		common := 0
		for _, x := range adjacency[item.a] {
			for _, y := range adjacency[item.b] {
				if x == y {
					common++
				}
			}
		}
		if common != 2 {
			continue
		}
		mid := vertices[item.a].Add(vertices[item.b]).Scale(0.5)
		if !passesGuards(vertices, triangles, adjacency, item.a, item.b, mid, minFeatureSize) {
			continue
		}

		// Collapse b into a at the midpoint.
		vertices[item.a] = mid
		alive[item.b] = false
		gen[item.a]++
		gen[item.b]++

		triangles = collapseTriangles(triangles, item.a, item.b)
		adjacency = buildAdjacency(triangles, len(vertices))
		pushEdgesFor(item.a)

		liveCount--
	}

	return compact(vertices, triangles, alive)
}

func buildAdjacency(triangles []mesh.Triangle, n int) [][]mesh.VertexID {
	adj := make([][]mesh.VertexID, n)
	add := func(a, b mesh.VertexID) {
		for _, x := range adj[a] {
			if x == b {
				return
			}
		}
		adj[a] = append(adj[a], b)
	}
	for _, t := range triangles {
		add(t[0], t[1])
		add(t[1], t[0])
		add(t[1], t[2])
		add(t[2], t[1])
		add(t[2], t[0])
		add(t[0], t[2])
	}
	return adj
}

// manifoldEdge reports whether a-b is shared by exactly two triangles,
// the condition for collapsing it without tearing the surface.
func manifoldEdge(triangles []mesh.Triangle, a, b mesh.VertexID) bool {
	count := 0
	for _, t := range triangles {
		has := func(v mesh.VertexID) bool { return t[0] == v || t[1] == v || t[2] == v }
		if has(a) && has(b) {
			count++
		}
	}
	return count == 2
}

// passesGuards rejects collapses that would flip a triangle's normal or
// pull an unrelated vertex within minFeatureSize of the merge point.
func passesGuards(vertices []mathutil.Vec3, triangles []mesh.Triangle, adjacency [][]mesh.VertexID, a, b mesh.VertexID, mid mathutil.Vec3, minFeatureSize float64) bool {
	for _, t := range triangles {
		has := func(v mesh.VertexID) bool { return t[0] == v || t[1] == v || t[2] == v }
		if !has(a) && !has(b) {
			continue
		}
		p0, p1, p2 := vertices[t[0]], vertices[t[1]], vertices[t[2]]
		before := p1.Sub(p0).Cross(p2.Sub(p0))

		sub := func(v mesh.VertexID) mathutil.Vec3 {
			if v == a || v == b {
				return mid
			}
			return vertices[v]
		}
		q0, q1, q2 := sub(t[0]), sub(t[1]), sub(t[2])
		after := q1.Sub(q0).Cross(q2.Sub(q0))

		if before.Dot(after) < 0 {
			return false // normal flipped
		}
	}

	for _, nb := range adjacency[a] {
		if nb == b {
			continue
		}
		if vertices[nb].Sub(mid).Len() < minFeatureSize*0.5 {
			return false
		}
	}
	for _, nb := range adjacency[b] {
		if nb == a {
			continue
		}
		if vertices[nb].Sub(mid).Len() < minFeatureSize*0.5 {
			return false
		}
	}
	return true
}

// collapseTriangles rewrites every reference to b as a, dropping any
// triangle that degenerates.
func collapseTriangles(triangles []mesh.Triangle, a, b mesh.VertexID) []mesh.Triangle {
	out := triangles[:0]
	for _, t := range triangles {
		for i, v := range t {
			if v == b {
				t[i] = a
			}
		}
		if t[0] == t[1] || t[1] == t[2] || t[0] == t[2] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// compact drops dead vertices and renumbers triangles accordingly.
func compact(vertices []mathutil.Vec3, triangles []mesh.Triangle, alive []bool) mesh.Geometry {
	remap := make([]mesh.VertexID, len(vertices))
	var out mesh.Geometry
	for i, v := range vertices {
		if !alive[i] {
			remap[i] = -1
			continue
		}
		remap[i] = mesh.VertexID(len(out.Vertices))
		out.Vertices = append(out.Vertices, v)
	}
	for _, t := range triangles {
		a, b, c := remap[t[0]], remap[t[1]], remap[t[2]]
		if a < 0 || b < 0 || c < 0 {
			continue
		}
		out.Triangles = append(out.Triangles, mesh.Triangle{a, b, c})
	}
	return out
}
