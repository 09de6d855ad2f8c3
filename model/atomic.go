package model

import (
	"bytes"
	"encoding/gob"
	"math"
)

// Infinity is the sentinel time advance meaning "no further internal
// event is scheduled" (spec.md §6). It compares as greater than any
// finite time, matching the usual total order.
const Infinity = math.MaxFloat64

// Atomic is the external contract for a leaf DEVS model (spec.md §6).
// The kernel never inspects transition bodies; it only drives them
// through this interface in the order the three-way transition rule
// dictates (spec.md §4.1).
type Atomic interface {
	Name() string

	InPorts() []*Port
	OutPorts() []*Port

	// Sigma is the residual time until the atomic's next internal
	// event. TA derives from it (spec.md §3: "ta = sigma").
	Sigma() float64
	SetSigma(v float64)
	TA() float64

	IntCount() int
	ExtCount() int

	Initialize()
	Exit()

	// DeltInt applies the internal transition. Called when the clock
	// reaches time_next and all input ports are empty.
	DeltInt()
	// DeltExt applies the external transition for elapsed time e.
	// Called when input has arrived strictly before time_next.
	DeltExt(e float64)
	// DeltCon applies the confluent transition for elapsed time e.
	// Called when input arrives exactly at time_next (spec.md §4.1
	// tie-break rule: deltcon, never deltint followed by deltext).
	DeltCon(e float64)

	// Lambdaf computes the atomic's output function, placing values on
	// its output ports. Only invoked by the kernel when clock.time ==
	// time_next (spec.md §4.1).
	Lambdaf()

	// InEmpty reports whether every input port is currently empty.
	InEmpty() bool

	// SetPorts rebinds this atomic's port slices. Only the
	// process-parallel execution strategy calls this, to restore the
	// original ports' object identity onto a model that came back from
	// a serialize/deserialize round trip through a worker (spec.md
	// §4.4: "preserve the original model's in_ports and out_ports
	// object identities").
	SetPorts(in, out []*Port)
}

// BaseAtomic provides the bookkeeping every concrete Atomic needs
// (sigma/ta, counters, port lists, name) so implementations only have
// to supply DeltInt/DeltExt/DeltCon/Lambdaf. This mirrors the
// teacher's pattern of a BaseNode carrying identity/state bookkeeping
// behind an interface (packages/core/node/node.go) generalized from
// distributed nodes to DEVS atomics.
type BaseAtomic struct {
	name     string
	inPorts  []*Port
	outPorts []*Port

	sigma float64

	intCount int
	extCount int
}

// NewBaseAtomic creates a base atomic named name with sigma initialized
// to Infinity (no internal event scheduled until the embedding type
// says otherwise).
func NewBaseAtomic(name string) *BaseAtomic {
	return &BaseAtomic{name: name, sigma: Infinity}
}

func (a *BaseAtomic) Name() string { return a.name }

func (a *BaseAtomic) InPorts() []*Port  { return a.inPorts }
func (a *BaseAtomic) OutPorts() []*Port { return a.outPorts }

// AddInPort creates and registers a new input port under this atomic.
func (a *BaseAtomic) AddInPort(name string, serve bool) *Port {
	p := NewPort(name, a.name, In)
	p.Serve = serve
	a.inPorts = append(a.inPorts, p)
	return p
}

// AddOutPort creates and registers a new output port under this atomic.
func (a *BaseAtomic) AddOutPort(name string) *Port {
	p := NewPort(name, a.name, Out)
	a.outPorts = append(a.outPorts, p)
	return p
}

func (a *BaseAtomic) Sigma() float64     { return a.sigma }
func (a *BaseAtomic) SetSigma(v float64) { a.sigma = v }
func (a *BaseAtomic) TA() float64        { return a.sigma }

func (a *BaseAtomic) IntCount() int { return a.intCount }
func (a *BaseAtomic) ExtCount() int { return a.extCount }

// CountInt increments the internal-transition counter; embedding types
// call this from their DeltInt/DeltCon bodies.
func (a *BaseAtomic) CountInt() { a.intCount++ }

// CountExt increments the external-transition counter; embedding types
// call this from their DeltExt/DeltCon bodies.
func (a *BaseAtomic) CountExt() { a.extCount++ }

// SetPorts rebinds in and out as this atomic's port slices.
func (a *BaseAtomic) SetPorts(in, out []*Port) {
	a.inPorts = in
	a.outPorts = out
}

func (a *BaseAtomic) InEmpty() bool {
	for _, p := range a.inPorts {
		if !p.Empty() {
			return false
		}
	}
	return true
}

// Initialize and Exit default to no-ops; embedding types override when
// they have setup/teardown work.
func (a *BaseAtomic) Initialize() {}
func (a *BaseAtomic) Exit()       {}

// atomicSnapshot is BaseAtomic's wire form. gob only reaches exported
// struct fields, so a plain field-by-field encoding of BaseAtomic
// itself would silently lose everything; GobEncode/GobDecode below
// give it one explicitly.
type atomicSnapshot struct {
	Name     string
	Sigma    float64
	IntCount int
	ExtCount int
	InPorts  []portSnapshot
	OutPorts []portSnapshot
}

type portSnapshot struct {
	Name      string
	Parent    string
	Direction Direction
	Serve     bool
	Values    []interface{}
}

func snapshotPorts(ports []*Port) []portSnapshot {
	snaps := make([]portSnapshot, len(ports))
	for i, p := range ports {
		snaps[i] = portSnapshot{Name: p.Name, Parent: p.Parent, Direction: p.Direction, Serve: p.Serve, Values: p.Values()}
	}
	return snaps
}

func restorePorts(snaps []portSnapshot) []*Port {
	ports := make([]*Port, len(snaps))
	for i, s := range snaps {
		p := NewPort(s.Name, s.Parent, s.Direction)
		p.Serve = s.Serve
		p.Extend(s.Values)
		ports[i] = p
	}
	return ports
}

// GobEncode implements gob.GobEncoder so the process-parallel execution
// strategy (kernel.cloneSimulator) can hand a worker a usable copy of an
// atomic's state despite BaseAtomic's fields being unexported. Port
// buffers round-trip by value so a worker's deltext/deltcon logic sees
// the same input the original model held; the merge step back in the
// owning coordinator discards these decoded ports in favor of the
// original's via SetPorts once the transition result lands (spec.md
// §4.4: "preserve the original model's in_ports and out_ports object
// identities").
func (a *BaseAtomic) GobEncode() ([]byte, error) {
	snap := atomicSnapshot{
		Name:     a.name,
		Sigma:    a.sigma,
		IntCount: a.intCount,
		ExtCount: a.extCount,
		InPorts:  snapshotPorts(a.inPorts),
		OutPorts: snapshotPorts(a.outPorts),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder, the inverse of GobEncode.
func (a *BaseAtomic) GobDecode(data []byte) error {
	var snap atomicSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	a.name = snap.Name
	a.sigma = snap.Sigma
	a.intCount = snap.IntCount
	a.extCount = snap.ExtCount
	a.inPorts = restorePorts(snap.InPorts)
	a.outPorts = restorePorts(snap.OutPorts)
	return nil
}
