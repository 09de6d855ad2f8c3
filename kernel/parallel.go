package kernel

import (
	"sync"

	"github.com/xdevs-go/kernel/model"
)

// pool is a bounded goroutine pool: submit blocks only once every
// worker slot is busy, and wait blocks until every task submitted
// since the last wait has returned. It stands in for the teacher's
// dependency-free concurrency primitives (packages/core/node,
// packages/network/transport both hand-roll goroutines/channels rather
// than reach for a worker-pool library), generalized here to a fixed
// worker count matching the original's
// ThreadPoolExecutor(max_workers=8).
type pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

func newPool(workers int) *pool {
	if workers <= 0 {
		workers = defaultThreadPoolWorkers
	}
	return &pool{sem: make(chan struct{}, workers)}
}

func (p *pool) submit(task func()) {
	p.wg.Add(1)
	p.sem <- struct{}{}
	go func() {
		defer p.wg.Done()
		defer func() { <-p.sem }()
		task()
	}()
}

func (p *pool) wait() {
	p.wg.Wait()
}

// defaultThreadPoolWorkers matches the original's
// ParallelCoordinator(executor=ThreadPoolExecutor(max_workers=8)).
const defaultThreadPoolWorkers = 8

// ThreadParallelCoordinator is the thread-parallel execution strategy of
// spec.md §4.4: child coordinators recurse inline on the caller's
// goroutine, while each child simulator's Lambdaf/Deltfcn is submitted
// to a worker pool shared by the whole tree. Only the root constructs
// the pool; every nested ThreadParallelCoordinator reuses it.
type ThreadParallelCoordinator struct {
	*Coordinator
	pool *pool
}

// NewThreadParallelCoordinator builds a root thread-parallel coordinator
// with the given worker count (0 selects the default of 8, matching the
// original).
func NewThreadParallelCoordinator(root model.Coupled, opts Options, workers int) *ThreadParallelCoordinator {
	clock := opts.Clock
	if clock == nil {
		clock = NewClock(0)
	}
	applyTransforms(root, opts)
	return buildThreadParallel(root, clock, opts, newPool(workers))
}

func buildThreadParallel(m model.Coupled, clock *Clock, opts Options, p *pool) *ThreadParallelCoordinator {
	inner := newBareCoordinator(m, clock, opts)
	tc := &ThreadParallelCoordinator{Coordinator: inner, pool: p}
	inner.self = tc
	inner.buildChild = func(coupled model.Coupled, clk *Clock, o Options) nodeProcessor {
		return buildThreadParallel(coupled, clk, o, p)
	}
	return tc
}

// Lambdaf recurses into child coordinators on the caller's goroutine,
// submits each child simulator's Lambdaf to the shared pool, waits for
// all of them, then propagates output (spec.md §4.4).
func (tc *ThreadParallelCoordinator) Lambdaf() {
	for _, child := range tc.coordinators {
		child.Lambdaf()
	}
	for _, sim := range tc.simulators {
		sim := sim
		tc.pool.submit(sim.Lambdaf)
	}
	tc.pool.wait()
	tc.PropagateOutput()
}

// Deltfcn mirrors Lambdaf's split: propagate input, recurse into child
// coordinators inline, submit simulators to the pool, wait, then update
// times (spec.md §4.4).
func (tc *ThreadParallelCoordinator) Deltfcn() {
	tc.PropagateInput()
	for _, child := range tc.coordinators {
		child.Deltfcn()
	}
	for _, sim := range tc.simulators {
		sim := sim
		tc.pool.submit(sim.Deltfcn)
	}
	tc.pool.wait()
	tc.timeLast = tc.clock.Time
	tc.timeNext = tc.timeLast + tc.TA()
}
