package kernel

import (
	"bytes"
	"encoding/gob"
	"sync"

	"github.com/google/uuid"

	"github.com/xdevs-go/kernel/model"
)

// remoteTask runs on a pool worker against a deserialized copy of sim
// and returns the copy after the transition has been applied.
type remoteTask func(sim *Simulator) *Simulator

// processFuture pairs a submitted simulator with the channel its
// worker result arrives on, mirroring the original's future-handle ->
// (coordinator, simulator) futures map (spec.md §5).
type processFuture struct {
	target *Simulator
	result chan *Simulator
}

// processPool is the shared, process-wide futures table of spec.md
// §4.4/§5: workers execute remoteTask against a serialized copy of a
// simulator's atomic state, and only the master coordinator drains the
// result set and clears it at the end of a phase. Built on the same
// bounded-goroutine pool as the thread-parallel strategy (true
// multi-process workers would need an RPC transport per simulator,
// which the transport package already targets for remote injection,
// not for internal cycle work), so "process" here names the isolation
// contract — a state round trip through serialization — rather than an
// OS process boundary.
type processPool struct {
	workers *pool
	mu      sync.Mutex
	futures map[string]*processFuture
}

func newProcessPool(workers int) *processPool {
	return &processPool{workers: newPool(workers), futures: make(map[string]*processFuture)}
}

func (pp *processPool) submit(sim *Simulator, task remoteTask) {
	fut := &processFuture{target: sim, result: make(chan *Simulator, 1)}
	handle := uuid.NewString()

	pp.mu.Lock()
	pp.futures[handle] = fut
	pp.mu.Unlock()

	pp.workers.submit(func() {
		fut.result <- task(sim)
	})
}

// join waits for every future submitted since the last join, merges
// each worker's result back into its target simulator, and clears the
// futures map so the next phase starts empty.
func (pp *processPool) join() {
	pp.mu.Lock()
	futures := pp.futures
	pp.futures = make(map[string]*processFuture)
	pp.mu.Unlock()

	pp.workers.wait()
	for _, fut := range futures {
		mergeSimulatorState(fut.target, <-fut.result)
	}
}

// mergeSimulatorState copies the worker's updated model and times back
// onto target. The worker wrote any emitted output onto its own
// (decoded-from-gob) output ports, so those values are copied onto
// target's original output ports by position before the original ports
// are restored, preserving the port object identities couplings hold
// direct references to (spec.md §4.4).
func mergeSimulatorState(target, remote *Simulator) {
	origOut := target.Model.OutPorts()
	remoteOut := remote.Model.OutPorts()
	for i, p := range origOut {
		if i < len(remoteOut) {
			p.Extend(remoteOut[i].Values())
		}
	}

	remote.Model.SetPorts(target.Model.InPorts(), target.Model.OutPorts())
	target.Model = remote.Model
	target.timeLast = remote.timeLast
	target.timeNext = remote.timeNext
}

// cloneSimulator serializes sim's atomic model through gob and decodes
// it into a fresh value, standing in for the state handoff to a worker
// process. Concrete Atomic implementations used with the
// process-parallel strategy must be registered with gob.Register.
func cloneSimulator(sim *Simulator) (*Simulator, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&sim.Model); err != nil {
		return nil, err
	}
	var decoded model.Atomic
	if err := gob.NewDecoder(&buf).Decode(&decoded); err != nil {
		return nil, err
	}
	return &Simulator{Model: decoded, clock: sim.clock, timeLast: sim.timeLast, timeNext: sim.timeNext}, nil
}

// ParallelProcessCoordinator is the process-parallel execution strategy
// of spec.md §4.4: coordinators at every level submit their simulators'
// work to a futures table shared by the whole tree without waiting;
// only the root (isMaster) drains it, then the resulting propagation
// and time updates run recursively.
type ParallelProcessCoordinator struct {
	*Coordinator
	procPool *processPool
	isMaster bool
}

// NewParallelProcessCoordinator builds a root process-parallel
// coordinator with the given worker count (0 selects the default).
func NewParallelProcessCoordinator(root model.Coupled, opts Options, workers int) *ParallelProcessCoordinator {
	clock := opts.Clock
	if clock == nil {
		clock = NewClock(0)
	}
	applyTransforms(root, opts)
	return buildParallelProcess(root, clock, opts, newProcessPool(workers), true)
}

func buildParallelProcess(m model.Coupled, clock *Clock, opts Options, pp *processPool, isMaster bool) *ParallelProcessCoordinator {
	inner := newBareCoordinator(m, clock, opts)
	pc := &ParallelProcessCoordinator{Coordinator: inner, procPool: pp, isMaster: isMaster}
	inner.self = pc
	inner.buildChild = func(coupled model.Coupled, clk *Clock, o Options) nodeProcessor {
		return buildParallelProcess(coupled, clk, o, pp, false)
	}
	return pc
}

// Lambdaf submits every simulator in the subtree to the shared pool
// without waiting; the master then joins, merges results, and
// propagates output top-down (spec.md §4.4).
func (pc *ParallelProcessCoordinator) Lambdaf() {
	pc.submitLambdaf()
	if pc.isMaster {
		pc.procPool.join()
		pc.propagateOutputTopDown()
	}
}

func (pc *ParallelProcessCoordinator) submitLambdaf() {
	for _, child := range pc.coordinators {
		child.Lambdaf()
	}
	for _, sim := range pc.simulators {
		pc.procPool.submit(sim, pc.roundTripLambdaf)
	}
}

func (pc *ParallelProcessCoordinator) propagateOutputTopDown() {
	pc.PropagateOutput()
	for _, child := range pc.coordinators {
		child.(*ParallelProcessCoordinator).propagateOutputTopDown()
	}
}

// Deltfcn propagates input top-down, submits every simulator's
// transition to the pool without waiting, then (master only) joins and
// recomputes times bottom-up (spec.md §4.4).
func (pc *ParallelProcessCoordinator) Deltfcn() {
	if pc.isMaster {
		pc.propagateInputTopDown()
	}
	pc.submitDeltfcn()
	if pc.isMaster {
		pc.procPool.join()
		pc.updateTimesBottomUp()
	}
}

func (pc *ParallelProcessCoordinator) propagateInputTopDown() {
	pc.PropagateInput()
	for _, child := range pc.coordinators {
		child.(*ParallelProcessCoordinator).propagateInputTopDown()
	}
}

func (pc *ParallelProcessCoordinator) submitDeltfcn() {
	for _, child := range pc.coordinators {
		child.Deltfcn()
	}
	for _, sim := range pc.simulators {
		pc.procPool.submit(sim, pc.roundTripDeltfcn)
	}
}

func (pc *ParallelProcessCoordinator) updateTimesBottomUp() {
	for _, child := range pc.coordinators {
		child.(*ParallelProcessCoordinator).updateTimesBottomUp()
	}
	pc.timeLast = pc.clock.Time
	pc.timeNext = pc.timeLast + pc.TA()
}

func (pc *ParallelProcessCoordinator) roundTripLambdaf(sim *Simulator) *Simulator {
	clone, err := cloneSimulator(sim)
	if err != nil {
		pc.errorf("process-parallel: serialize %s: %v", sim.Model.Name(), err)
		clone = sim
	}
	clone.Lambdaf()
	return clone
}

func (pc *ParallelProcessCoordinator) roundTripDeltfcn(sim *Simulator) *Simulator {
	clone, err := cloneSimulator(sim)
	if err != nil {
		pc.errorf("process-parallel: serialize %s: %v", sim.Model.Name(), err)
		clone = sim
	}
	clone.Deltfcn()
	return clone
}
