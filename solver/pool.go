package solver

import (
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/npuzzle/board"
)

const (
	minPoolChunk = 1 << 10
	maxPoolChunk = 1 << 16
	// poolMemoryFraction bounds how much of physical memory the per-worker
	// chunk sizing assumes the whole engine may reasonably touch.
	poolMemoryFraction = 0.25
)

// poolChunkSize picks the slab chunk length for a worker pool from the
// machine's physical memory, the way the transposition-table style caches
// size themselves. dim shapes the per-node footprint; workers splits the
// memory budget.
func poolChunkSize(dim, workers int) int {
	nodeBytes := dim*dim + 96 // tiles plus struct overhead, approximately
	budget := poolMemoryFraction * float64(memory.TotalMemory()) / float64(workers)
	chunk := int(budget / float64(nodeBytes) / 1024)
	if chunk < minPoolChunk {
		chunk = minPoolChunk
	}
	if chunk > maxPoolChunk {
		chunk = maxPoolChunk
	}
	return chunk
}

// nodePool is a free-listed slab allocator for search nodes. Each worker
// owns one pool; every mutation (get, put, growth) happens under the
// owner's queue mutex, so the pool itself needs no locking. Releasing a
// node only recycles the handle; slab bytes live until the engine is torn
// down, after the path has been cloned out.
type nodePool struct {
	owner     int32
	dim       int
	chunkSize int

	free   []*board.Board
	chunks [][]board.Board
	next   int // index of the first unused node in the newest chunk
}

func newNodePool(owner int32, dim, chunkSize int) *nodePool {
	p := &nodePool{
		owner:     owner,
		dim:       dim,
		chunkSize: chunkSize,
	}
	p.grow()
	return p
}

func (p *nodePool) grow() {
	chunk := make([]board.Board, p.chunkSize)
	dd := p.dim * p.dim
	arena := make([]uint8, p.chunkSize*dd)
	for i := range chunk {
		chunk[i].InitStorage(p.dim, arena[i*dd:(i+1)*dd:(i+1)*dd])
	}
	p.chunks = append(p.chunks, chunk)
	p.next = 0
	log.Debug().
		Int32("pool", p.owner).
		Int("chunks", len(p.chunks)).
		Int("chunk-size", p.chunkSize).
		Msg("pool-grow")
}

// get returns a node owned by this pool, recycled or freshly carved.
func (p *nodePool) get() *board.Board {
	if n := len(p.free); n > 0 {
		b := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		return b
	}
	cur := p.chunks[len(p.chunks)-1]
	if p.next == len(cur) {
		p.grow()
		cur = p.chunks[len(p.chunks)-1]
	}
	b := &cur[p.next]
	p.next++
	b.SetPoolIndex(p.owner)
	return b
}

// put recycles a node's handle. The caller must hold the owning worker's
// queue mutex.
func (p *nodePool) put(b *board.Board) {
	b.SetParent(nil)
	p.free = append(p.free, b)
}
