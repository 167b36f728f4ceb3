package solver

import (
	"context"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/npuzzle/board"
)

const (
	// stealBatchSize caps how many nodes a stealer drains from a victim's
	// heap in one raid. It keeps the best one and requeues the rest
	// locally; the bound and relaxation clean up any resulting
	// out-of-order expansions.
	stealBatchSize = 16

	// infFCost marks an idle worker's min-f slot.
	infFCost = uint64(math.MaxUint64)

	// infBound is the open solution bound before any goal has been found.
	infBound = uint32(math.MaxUint32)
)

// pworker is one search thread's private state. The queue mutex guards
// both the heap and the node pool; openCount mirrors the heap size as a
// non-authoritative hint for stealers.
type pworker struct {
	id        int32
	mu        sync.Mutex
	open      nodeHeap
	openCount atomic.Int64
	pool      *nodePool
	scratch   *board.Board
}

// engine is the shared state of a parallel search.
type engine struct {
	solver  *Solver
	workers []*pworker

	closed *closedShards
	bestG  *bestGShards

	// bestCost is the lowest goal cost found so far; it only ever
	// decreases. bestNode is the goal node realizing it; the two are kept
	// in step under goalMu while bestCost stays readable lock-free.
	bestCost atomic.Uint32
	goalMu   sync.Mutex
	bestNode atomic.Pointer[board.Board]

	// minF[i] is the f-cost of the node worker i most recently committed
	// to processing, or infFCost while it is idle.
	minF []atomic.Uint64

	statesSelected atomic.Uint64
	maxStates      atomic.Uint64
	closedCount    atomic.Int64

	stop atomic.Bool
}

func (s *Solver) solveParallel(ctx context.Context) (*Solution, error) {
	dim := s.initial.Dim()
	chunk := poolChunkSize(dim, s.threads)

	e := &engine{
		solver:  s,
		workers: make([]*pworker, s.threads),
		closed:  newClosedShards(),
		bestG:   newBestGShards(),
		minF:    make([]atomic.Uint64, s.threads),
	}
	e.bestCost.Store(infBound)
	for i := range e.workers {
		e.workers[i] = &pworker{
			id:      int32(i),
			pool:    newNodePool(int32(i), dim, chunk),
			scratch: board.New(dim),
		}
		e.minF[i].Store(infFCost)
	}

	// Seed worker 0 with the initial node.
	w0 := e.workers[0]
	root := w0.pool.get()
	root.CopyFrom(s.initial)
	h0 := s.heuristicFor(root)
	root.SetCosts(0, h0, s.mode.priority(0, h0))
	root.SetParent(nil)
	w0.mu.Lock()
	w0.open.Push(root)
	w0.mu.Unlock()
	w0.openCount.Store(1)
	e.bestG.seed(root.Hash(), root.Key(), 0)
	// Publish the seed's f before any worker starts, so an early
	// termination sniff cannot mistake the fresh engine for a drained one.
	e.minF[0].Store(uint64(root.FCost()))

	log.Debug().
		Int("threads", s.threads).
		Int("pool-chunk", chunk).
		Int("gomaxprocs", runtime.GOMAXPROCS(0)).
		Msg("parallel-solve-config")

	start := time.Now()
	g := errgroup.Group{}
	for i := 0; i < s.threads; i++ {
		w := e.workers[i]
		g.Go(func() error {
			e.runWorker(ctx, w)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	goalNode := e.bestNode.Load()
	if goalNode == nil {
		log.Debug().
			Uint64("states-selected", e.statesSelected.Load()).
			Float64("elapsed-sec", time.Since(start).Seconds()).
			Msg("parallel-no-solution")
		return nil, nil
	}

	// The path nodes live inside worker pools; clone them out before the
	// pools go away with the engine.
	path := extractPath(goalNode)
	stats := Statistics{
		StatesSelected:    e.statesSelected.Load(),
		MaxStatesInMemory: e.maxStates.Load(),
		SolutionLength:    len(path) - 1,
	}
	log.Debug().
		Uint64("states-selected", stats.StatesSelected).
		Uint64("max-states", stats.MaxStatesInMemory).
		Int("solution-length", stats.SolutionLength).
		Int64("closed", e.closedCount.Load()).
		Float64("elapsed-sec", time.Since(start).Seconds()).
		Msg("parallel-solve-done")
	return &Solution{Path: path, Stats: stats}, nil
}

// runWorker is the worker loop: pop, steal, sniff for quiescence, then
// process.
func (e *engine) runWorker(ctx context.Context, w *pworker) {
	self := int(w.id)
	for !e.stop.Load() {
		if ctx.Err() != nil {
			// Make sure nobody waits on our min-f forever.
			e.minF[self].Store(infFCost)
			e.stop.Store(true)
			return
		}

		n := e.popOwn(w)
		if n == nil {
			n = e.steal(w)
		}
		if n == nil {
			// Both the own pop and every steal attempt came up empty. If
			// every worker is idle too, no node with f below the bound can
			// exist anywhere: quiesce.
			if e.allIdle() {
				return
			}
			runtime.Gosched()
			continue
		}

		e.process(w, n)
	}
}

// popOwn pops the worker's own queue, updating the min-f slot under the
// queue mutex so the published value always refers to a node this worker
// is actually committed to.
func (e *engine) popOwn(w *pworker) *board.Board {
	w.mu.Lock()
	n := w.open.Pop()
	if n != nil {
		e.minF[w.id].Store(uint64(n.FCost()))
		w.openCount.Add(-1)
	} else {
		e.minF[w.id].Store(infFCost)
	}
	w.mu.Unlock()
	return n
}

// steal raids the other workers in round-robin order starting after self.
// From the first victim whose queue yields anything it takes up to
// stealBatchSize nodes, keeps the best for immediate processing, and
// requeues the rest locally. A failed trylock skips to the next victim.
func (e *engine) steal(w *pworker) *board.Board {
	nworkers := len(e.workers)
	for off := 1; off < nworkers; off++ {
		victim := e.workers[(int(w.id)+off)%nworkers]
		if victim.openCount.Load() <= 0 {
			continue
		}
		if !victim.mu.TryLock() {
			continue
		}
		var batch []*board.Board
		for len(batch) < stealBatchSize {
			n := victim.open.Pop()
			if n == nil {
				break
			}
			batch = append(batch, n)
		}
		victim.openCount.Add(int64(-len(batch)))
		if len(batch) > 0 {
			// Publish our min-f before the victim's queue is released:
			// until then the victim cannot raise its own slot past the
			// stolen nodes, so they are never invisible to the stop rule.
			e.minF[w.id].Store(uint64(batch[0].FCost()))
		}
		victim.mu.Unlock()

		if len(batch) == 0 {
			continue
		}
		// The victim's heap handed the nodes over best-first.
		best := batch[0]
		if len(batch) > 1 {
			w.mu.Lock()
			for _, n := range batch[1:] {
				w.open.Push(n)
			}
			w.mu.Unlock()
			w.openCount.Add(int64(len(batch) - 1))
		}
		e.noteMemory()
		return best
	}
	return nil
}

// allIdle reports whether every worker's min-f slot is at infinity.
func (e *engine) allIdle() bool {
	for i := range e.minF {
		if e.minF[i].Load() != infFCost {
			return false
		}
	}
	return true
}

// process handles one popped node: count, bound-prune, relax, close, test
// for the goal, and expand.
func (e *engine) process(w *pworker, n *board.Board) {
	s := e.solver
	e.statesSelected.Add(1)

	// Bound prune: nothing at or above the best known solution cost can
	// lead to an improvement.
	if bound := e.bestCost.Load(); bound != infBound && n.FCost() >= bound {
		e.release(n)
		return
	}

	hash := n.Hash()
	key := n.Key()

	// Relaxation: some worker has queued a strictly better path here.
	if e.bestG.supersededBy(hash, key, n.GCost()) {
		e.release(n)
		return
	}

	// Close. A node whose content is already closed is dropped, even when
	// its g is smaller than that of the path that closed it.
	if !e.closed.add(hash, key) {
		e.release(n)
		return
	}
	e.closedCount.Add(1)
	e.noteMemory()

	if n.Equals(s.gt.Goal()) {
		e.recordGoal(n)
		return
	}

	// Expansion: build each successor in scratch, gate it, then promote
	// the survivors into the worker's own pool and queue.
	for _, d := range board.Directions {
		if !n.ApplyMove(d, w.scratch) {
			continue
		}
		succ := w.scratch
		g := succ.GCost()
		h := s.heuristicFor(succ)
		succ.SetCosts(g, h, s.mode.priority(g, h))

		if bound := e.bestCost.Load(); bound != infBound && succ.FCost() >= bound {
			continue
		}
		if !e.bestG.relax(succ.Hash(), succ.Key(), g) {
			continue
		}

		w.mu.Lock()
		promoted := w.pool.get()
		promoted.CopyFrom(succ) // carries the parent pointer to n
		w.open.Push(promoted)
		w.mu.Unlock()
		w.openCount.Add(1)
	}
	e.noteMemory()
}

// recordGoal applies the winner rule: fetch-min on the bound, and the node
// achieving the minimum becomes the best node. If no worker anywhere is
// committed to a node cheaper than the bound, the search is over.
func (e *engine) recordGoal(n *board.Board) {
	e.goalMu.Lock()
	prev := e.bestCost.Load()
	if n.GCost() <= prev {
		e.bestCost.Store(n.GCost())
		e.bestNode.Store(n)
		log.Debug().
			Uint32("cost", n.GCost()).
			Uint32("previous", prev).
			Msg("goal-found")
	}
	e.goalMu.Unlock()

	bound := e.bestCost.Load()
	lowest := infFCost
	for i := range e.minF {
		if v := e.minF[i].Load(); v < lowest {
			lowest = v
		}
	}
	if uint64(bound) <= lowest {
		e.stop.Store(true)
	}
}

// release hands a consumed node back to the pool that owns it. Pool
// mutation serializes on the owner's queue mutex.
func (e *engine) release(n *board.Board) {
	owner := e.workers[n.PoolIndex()]
	owner.mu.Lock()
	owner.pool.put(n)
	owner.mu.Unlock()
}

// noteMemory refreshes the max-states high-water mark with a fetch-max.
func (e *engine) noteMemory() {
	var live int64
	for _, w := range e.workers {
		live += w.openCount.Load()
	}
	live += e.closedCount.Load()
	if live < 0 {
		return
	}
	cur := uint64(live)
	for {
		old := e.maxStates.Load()
		if cur <= old || e.maxStates.CompareAndSwap(old, cur) {
			return
		}
	}
}
