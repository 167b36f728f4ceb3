package solver

import "github.com/domino14/npuzzle/board"

// nodeHeap is a binary min-heap of boards ordered lexicographically by
// (f, h): lowest priority first, and among equal priorities the node
// closer to the goal. Remaining ties break arbitrarily.
//
// This is a hand-rolled heap rather than container/heap so that pops in
// the worker inner loop do not go through interface boxing.
type nodeHeap struct {
	nodes []*board.Board
}

func less(a, b *board.Board) bool {
	if a.FCost() != b.FCost() {
		return a.FCost() < b.FCost()
	}
	return a.HCost() < b.HCost()
}

func (h *nodeHeap) Len() int { return len(h.nodes) }

func (h *nodeHeap) Push(b *board.Board) {
	h.nodes = append(h.nodes, b)
	h.up(len(h.nodes) - 1)
}

// Pop removes and returns the lowest-priority node, or nil when empty.
func (h *nodeHeap) Pop() *board.Board {
	if len(h.nodes) == 0 {
		return nil
	}
	top := h.nodes[0]
	last := len(h.nodes) - 1
	h.nodes[0] = h.nodes[last]
	h.nodes[last] = nil
	h.nodes = h.nodes[:last]
	if last > 0 {
		h.down(0)
	}
	return top
}

// Peek returns the lowest-priority node without removing it.
func (h *nodeHeap) Peek() *board.Board {
	if len(h.nodes) == 0 {
		return nil
	}
	return h.nodes[0]
}

func (h *nodeHeap) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !less(h.nodes[i], h.nodes[parent]) {
			break
		}
		h.nodes[i], h.nodes[parent] = h.nodes[parent], h.nodes[i]
		i = parent
	}
}

func (h *nodeHeap) down(i int) {
	n := len(h.nodes)
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		smallest := left
		if right := left + 1; right < n && less(h.nodes[right], h.nodes[left]) {
			smallest = right
		}
		if !less(h.nodes[smallest], h.nodes[i]) {
			return
		}
		h.nodes[i], h.nodes[smallest] = h.nodes[smallest], h.nodes[i]
		i = smallest
	}
}
