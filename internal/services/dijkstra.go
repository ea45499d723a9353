package services

import (
	"container/heap"
	"delivery-tour-service/internal/domain"
	"slices"
)

type queueItem struct {
	vertex int64
	dist   float64
}

// distQueue is a min-heap on distance, ties broken by vertex ID.
type distQueue []queueItem

func (q distQueue) Len() int { return len(q) }

func (q distQueue) Less(i, j int) bool {
	if q[i].dist == q[j].dist {
		return q[i].vertex < q[j].vertex
	}
	return q[i].dist < q[j].dist
}

func (q distQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *distQueue) Push(x any) { *q = append(*q, x.(queueItem)) }

func (q *distQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// shortestPathTree holds single-source shortest paths over a road map.
type shortestPathTree struct {
	source int64
	dist   map[int64]float64
	via    map[int64]domain.Segment
}

// shortestPaths runs Dijkstra from source. Segment lengths are never
// negative (RoadMap rejects them). Stale heap entries are skipped lazily.
func shortestPaths(m *domain.RoadMap, source int64) *shortestPathTree {
	t := &shortestPathTree{
		source: source,
		dist:   map[int64]float64{source: 0},
		via:    make(map[int64]domain.Segment),
	}
	settled := make(map[int64]bool)

	q := &distQueue{{vertex: source, dist: 0}}
	for q.Len() > 0 {
		cur := heap.Pop(q).(queueItem)
		if settled[cur.vertex] {
			continue
		}
		settled[cur.vertex] = true

		for _, seg := range m.Outgoing(cur.vertex) {
			if settled[seg.Destination] {
				continue
			}
			nd := cur.dist + seg.LengthMeters
			if d, ok := t.dist[seg.Destination]; ok && nd >= d {
				continue
			}
			t.dist[seg.Destination] = nd
			t.via[seg.Destination] = seg
			heap.Push(q, queueItem{vertex: seg.Destination, dist: nd})
		}
	}

	return t
}

// pathTo returns the vertices and segments from the source to target.
func (t *shortestPathTree) pathTo(target int64) ([]int64, []domain.Segment, bool) {
	if _, ok := t.dist[target]; !ok {
		return nil, nil, false
	}

	vertices := []int64{target}
	var segments []domain.Segment
	for v := target; v != t.source; {
		seg := t.via[v]
		segments = append(segments, seg)
		v = seg.Origin
		vertices = append(vertices, v)
	}

	slices.Reverse(vertices)
	slices.Reverse(segments)
	return vertices, segments, true
}
