package spf

import "github.com/ospf6mdr/ospf6d/internal/router6"

// vertexID identifies an SPF vertex: a router (by router-id) or a
// transit network (by advertising-router/interface-id pair).
type vertexID struct {
	kind        VertexKind
	routerID    router6.ID
	advRouter   router6.ID
	interfaceID uint32
}

type queueItem struct {
	id       vertexID
	cost     uint32
	hops     int
	nexthops []Nexthop
	// via is the predecessor vertex this item was relaxed from, used to
	// build the settled-tree's parent/child edges for same-pass nexthop
	// propagation (spec.md §4.E). Zero-value for the root; seeded MDR
	// neighbors carry the root as their predecessor.
	via   vertexID
	index int
}

// priorityQueue orders by (cost, hops) ascending, the tie-break rule
// spec.md §4.E names explicitly.
type priorityQueue []*queueItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}
	return pq[i].hops < pq[j].hops
}
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index, pq[j].index = i, j
}
func (pq *priorityQueue) Push(x any) {
	item := x.(*queueItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}
