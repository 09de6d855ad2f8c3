package kernel

import (
	"fmt"

	"github.com/xdevs-go/kernel/model"
)

// Options configures a Coordinator (spec.md §6 "Programmatic API").
type Options struct {
	// Flatten, if true, calls model.Flatten() before the processor tree
	// is built (spec.md §4.2).
	Flatten bool
	// Chain, if true, calls model.ToChain() and flips the root's input
	// ports to Out for injection (spec.md §4.2). Named Chain rather
	// than the original test harness's "force_chain" — see SPEC_FULL.md
	// §4 for why no forwarding alias is provided.
	Chain bool
	// Clock lets callers share a clock across multiple coordinators
	// (e.g. a coordinator built for testing against a pre-seeded
	// clock). Nil creates a fresh clock at time 0.
	Clock *Clock
	// LegacyInjectSemantics reproduces the original kernel's two
	// flagged-as-buggy behaviors (spec.md §9): unknown ports and NaN
	// elapsed times are silently accepted. Default false surfaces them
	// as distinct errors instead.
	LegacyInjectSemantics bool
	// Events, if set, receives debug/error notifications for the cycle
	// and injection events described in spec.md §7. Nil disables
	// observability.
	Events *EventBus
}

// nodeProcessor is the view a Coordinator needs of a child coordinator:
// the uniform Processor capability plus its aggregated injection
// table. Parallel variants (parallel.go, processpool.go) satisfy this
// by embedding *Coordinator and overriding Lambdaf/Deltfcn, so a
// parent's coordinators slice holds the correct dynamic type and
// dispatches to the override automatically.
type nodeProcessor interface {
	Processor
	PortsToServe() map[string]*model.Port
}

// childBuilder constructs the nodeProcessor for a nested Coupled
// component, already wired to the right concurrency strategy. The
// sequential default builds plain *Coordinator; ThreadParallelCoordinator
// and ParallelProcessCoordinator install their own builder so nested
// coordinators share the parent's pool (spec.md §4.4).
type childBuilder func(coupled model.Coupled, clock *Clock, opts Options) nodeProcessor

// Coordinator is the coupled processor (spec.md §4.2): it owns child
// processors built from model.Components(), and drives them through
// lambdaf/propagate/deltfcn/clear cycles. Children are split into
// coordinators and simulators (rather than a single uniform slice) so
// that parallel variants can recurse into nested coordinators inline
// while only pooling simulator work, per spec.md §4.4.
type Coordinator struct {
	Model model.Coupled
	clock *Clock
	opts  Options

	coordinators []nodeProcessor
	simulators   []*Simulator

	// portsToServe aggregates "parent.port" -> *model.Port transitively
	// from descendants (spec.md §3, §4.2); last write wins on name
	// collision.
	portsToServe map[string]*model.Port

	timeLast float64
	timeNext float64

	// self lets the sequential driver loop (step, inject) call through
	// to an overriding wrapper's Lambdaf/Deltfcn instead of always
	// invoking the base Coordinator's own — Go has no virtual dispatch
	// through embedding, so this is the standard workaround. Defaults
	// to the Coordinator itself.
	self Processor
	// buildChild constructs nested coordinators; defaults to plain
	// sequential Coordinators.
	buildChild childBuilder
}

// NewCoordinator builds a Coordinator over root, applying Flatten/Chain
// per opts before the processor tree is constructed. Call Initialize
// before driving it.
func NewCoordinator(root model.Coupled, opts Options) *Coordinator {
	clock := opts.Clock
	if clock == nil {
		clock = NewClock(0)
	}
	applyTransforms(root, opts)
	return newBareCoordinator(root, clock, opts)
}

func applyTransforms(root model.Coupled, opts Options) {
	if opts.Flatten {
		root.Flatten()
	}
	if opts.Chain {
		root.ToChain()
		for _, p := range root.InPorts() {
			p.Direction = model.Out
		}
	}
}

func newBareCoordinator(m model.Coupled, clock *Clock, opts Options) *Coordinator {
	c := &Coordinator{
		Model:        m,
		clock:        clock,
		opts:         opts,
		portsToServe: make(map[string]*model.Port),
	}
	c.self = c
	c.buildChild = func(coupled model.Coupled, clk *Clock, o Options) nodeProcessor {
		return newBareCoordinator(coupled, clk, o)
	}
	return c
}

func (c *Coordinator) TimeLast() float64 { return c.timeLast }
func (c *Coordinator) TimeNext() float64 { return c.timeNext }

// PortsToServe returns the aggregated injection table.
func (c *Coordinator) PortsToServe() map[string]*model.Port {
	return c.portsToServe
}

// Clock returns the shared simulation clock.
func (c *Coordinator) Clock() *Clock { return c.clock }

// Processors iterates coordinators then simulators, mirroring the
// teacher/original's combined "processors" view used by TA/Clear/Exit.
func (c *Coordinator) Processors() []Processor {
	procs := make([]Processor, 0, len(c.coordinators)+len(c.simulators))
	for _, child := range c.coordinators {
		procs = append(procs, child)
	}
	for _, sim := range c.simulators {
		procs = append(procs, sim)
	}
	return procs
}

// Initialize builds the child processor list by walking
// model.Components() once, initializes every child, merges each child
// coordinator's ports_to_serve (complete only once that child has been
// initialized) into its own, then computes this coordinator's own
// time_last/time_next (spec.md §4.2).
func (c *Coordinator) Initialize() error {
	if err := c.buildHierarchy(); err != nil {
		return err
	}
	for _, proc := range c.Processors() {
		if err := proc.Initialize(); err != nil {
			return err
		}
	}
	for _, child := range c.coordinators {
		for name, port := range child.PortsToServe() {
			c.portsToServe[name] = port
		}
	}
	c.timeLast = c.clock.Time
	c.timeNext = c.timeLast + c.TA()
	c.logf("initialize %s: tl=%v tn=%v", c.Model.Name(), c.timeLast, c.timeNext)
	return nil
}

func (c *Coordinator) buildHierarchy() error {
	childOpts := Options{Events: c.opts.Events, LegacyInjectSemantics: c.opts.LegacyInjectSemantics}
	for _, comp := range c.Model.Components() {
		switch v := comp.(type) {
		case model.Coupled:
			child := c.buildChild(v, c.clock, childOpts)
			c.coordinators = append(c.coordinators, child)
		case model.Atomic:
			sim := NewSimulator(v, c.clock)
			c.simulators = append(c.simulators, sim)
			for _, p := range v.InPorts() {
				if p.Serve {
					c.portsToServe[p.QualifiedName()] = p
				}
			}
		default:
			return &model.ErrStructural{Component: comp}
		}
	}
	return nil
}

// TA returns min(child.time_next) - clock.time, or 0 if there are no
// children (spec.md §4.2).
func (c *Coordinator) TA() float64 {
	procs := c.Processors()
	if len(procs) == 0 {
		return 0
	}
	min := Infinity
	for _, proc := range procs {
		if proc.TimeNext() < min {
			min = proc.TimeNext()
		}
	}
	return min - c.clock.Time
}

// Lambdaf invokes Lambdaf on every child, in any order, then propagates
// outputs along IC/EOC couplings (spec.md §4.2).
func (c *Coordinator) Lambdaf() {
	for _, proc := range c.Processors() {
		proc.Lambdaf()
	}
	c.PropagateOutput()
}

// PropagateOutput applies every IC coupling then every EOC coupling,
// unless the model is in chain mode (spec.md §4.2, §3).
func (c *Coordinator) PropagateOutput() {
	if c.Model.Chain() {
		return
	}
	for _, coups := range c.Model.IC() {
		for _, coup := range coups {
			coup.Propagate()
		}
	}
	for _, coups := range c.Model.EOC() {
		for _, coup := range coups {
			coup.Propagate()
		}
	}
}

// PropagateInput applies every EIC coupling, unless the model is in
// chain mode (spec.md §4.2, §3).
func (c *Coordinator) PropagateInput() {
	if c.Model.Chain() {
		return
	}
	for _, coups := range c.Model.EIC() {
		for _, coup := range coups {
			coup.Propagate()
		}
	}
}

// Deltfcn propagates input, applies Deltfcn on every child, then
// recomputes time_last/time_next (spec.md §4.2).
func (c *Coordinator) Deltfcn() {
	c.PropagateInput()
	for _, proc := range c.Processors() {
		proc.Deltfcn()
	}
	c.timeLast = c.clock.Time
	c.timeNext = c.timeLast + c.TA()
}

// Clear clears every child, then this model's own input and output
// ports (spec.md §4.2).
func (c *Coordinator) Clear() {
	for _, proc := range c.Processors() {
		proc.Clear()
	}
	for _, p := range c.Model.InPorts() {
		p.Clear()
	}
	for _, p := range c.Model.OutPorts() {
		p.Clear()
	}
}

// Exit invokes Exit on every child (spec.md §4.2).
func (c *Coordinator) Exit() {
	for _, proc := range c.Processors() {
		proc.Exit()
	}
}

// Simulate runs up to numIters cycles, stopping early once
// clock.time == Infinity (spec.md §4.2, root-only driver operation).
func (c *Coordinator) Simulate(numIters int) {
	c.logf("starting simulation...")
	c.clock.Time = c.timeNext

	for i := 0; i < numIters && c.clock.Time < Infinity; i++ {
		c.step()
	}
}

// SimulateTime runs cycles until clock.time reaches time_start + delta
// (spec.md §4.2).
func (c *Coordinator) SimulateTime(delta float64) {
	c.logf("starting simulation...")
	c.clock.Time = c.timeNext
	tf := c.clock.Time + delta

	for c.clock.Time < tf {
		c.step()
	}
}

// SimulateInf runs cycles until clock.time == Infinity (spec.md §4.2).
func (c *Coordinator) SimulateInf() {
	for c.clock.Time != Infinity {
		c.step()
	}
}

func (c *Coordinator) step() {
	c.self.Lambdaf()
	c.self.Deltfcn()
	c.Clear()
	c.clock.Time = c.timeNext
}

func (c *Coordinator) logf(format string, args ...interface{}) {
	if c.opts.Events == nil {
		return
	}
	c.opts.Events.Emit(Event{Level: LevelDebug, Message: fmt.Sprintf(format, args...)})
}

func (c *Coordinator) errorf(format string, args ...interface{}) {
	if c.opts.Events == nil {
		return
	}
	c.opts.Events.Emit(Event{Level: LevelError, Message: fmt.Sprintf(format, args...)})
}
