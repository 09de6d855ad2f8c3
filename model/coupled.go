package model

import "fmt"

// Component is either an Atomic or a Coupled; the kernel walks
// model.Components() and type-switches on this (spec.md §7 item 1:
// any other concrete type is a structural error).
type Component interface {
	Name() string
}

// Coupling is a directed edge between two ports. Propagate copies every
// buffered value from Source onto Dest, appending in arrival order
// (spec.md §3).
type Coupling struct {
	Source *Port
	Dest   *Port
}

// NewCoupling creates a coupling from source to dest.
func NewCoupling(source, dest *Port) *Coupling {
	return &Coupling{Source: source, Dest: dest}
}

// Propagate appends every value currently on Source to Dest.
func (c *Coupling) Propagate() {
	c.Dest.Extend(c.Source.Values())
}

// Coupled is the external contract for a coupled (container) DEVS model
// (spec.md §6). EIC/IC/EOC map a source port to the couplings leaving
// it, matching the teacher's map-of-slices shape used for routing
// tables elsewhere in the pack (packages/network/transport partitions).
type Coupled interface {
	Name() string

	Components() []Component

	InPorts() []*Port
	OutPorts() []*Port

	EIC() map[*Port][]*Coupling
	IC() map[*Port][]*Coupling
	EOC() map[*Port][]*Coupling

	Chain() bool

	// Flatten hoists descendants into the root model and rewires
	// couplings accordingly (spec.md §4.2, structural transform).
	Flatten()
	// ToChain linearizes the model into a pipeline; the kernel flips
	// the root's input ports to Out afterwards (spec.md §4.2).
	ToChain()
}

// BaseCoupled is a concrete, embeddable Coupled. Benchmark families
// (bench/devstone) and tests build trees out of it directly; a richer
// modeling layer could embed it the way BaseAtomic is embedded by leaf
// models.
type BaseCoupled struct {
	name       string
	components []Component

	inPorts  []*Port
	outPorts []*Port

	eic map[*Port][]*Coupling
	ic  map[*Port][]*Coupling
	eoc map[*Port][]*Coupling

	chain bool
}

// NewBaseCoupled creates an empty coupled model named name.
func NewBaseCoupled(name string) *BaseCoupled {
	return &BaseCoupled{
		name: name,
		eic:  make(map[*Port][]*Coupling),
		ic:   make(map[*Port][]*Coupling),
		eoc:  make(map[*Port][]*Coupling),
	}
}

func (c *BaseCoupled) Name() string                { return c.name }
func (c *BaseCoupled) Components() []Component      { return c.components }
func (c *BaseCoupled) InPorts() []*Port             { return c.inPorts }
func (c *BaseCoupled) OutPorts() []*Port            { return c.outPorts }
func (c *BaseCoupled) EIC() map[*Port][]*Coupling   { return c.eic }
func (c *BaseCoupled) IC() map[*Port][]*Coupling    { return c.ic }
func (c *BaseCoupled) EOC() map[*Port][]*Coupling   { return c.eoc }
func (c *BaseCoupled) Chain() bool                  { return c.chain }

// AddComponent registers a child atomic or coupled model.
func (c *BaseCoupled) AddComponent(comp Component) {
	c.components = append(c.components, comp)
}

// AddInPort creates and registers a new input port on this coupled
// model (eligible as an EIC/chain-output source).
func (c *BaseCoupled) AddInPort(name string, serve bool) *Port {
	p := NewPort(name, c.name, In)
	p.Serve = serve
	c.inPorts = append(c.inPorts, p)
	return p
}

// AddOutPort creates and registers a new output port on this coupled
// model (an EOC destination).
func (c *BaseCoupled) AddOutPort(name string) *Port {
	p := NewPort(name, c.name, Out)
	c.outPorts = append(c.outPorts, p)
	return p
}

// AddEIC wires parent input `from` to child input `to`.
func (c *BaseCoupled) AddEIC(from, to *Port) {
	c.eic[from] = append(c.eic[from], NewCoupling(from, to))
}

// AddIC wires child output `from` to sibling input `to`.
func (c *BaseCoupled) AddIC(from, to *Port) {
	c.ic[from] = append(c.ic[from], NewCoupling(from, to))
}

// AddEOC wires child output `from` to parent output `to`.
func (c *BaseCoupled) AddEOC(from, to *Port) {
	c.eoc[from] = append(c.eoc[from], NewCoupling(from, to))
}

// Flatten hoists every descendant atomic directly into this model's
// component list and rewires couplings transitively, collapsing
// intermediate coupled layers. Ports and top-level EIC/EOC endpoints
// are preserved; couplings that used to cross an intermediate coupled
// boundary are re-pointed directly at the hoisted atomic's ports.
func (c *BaseCoupled) Flatten() {
	var atomics []Component
	eic := make(map[*Port][]*Coupling)
	ic := make(map[*Port][]*Coupling)
	eoc := make(map[*Port][]*Coupling)

	var walk func(comp Component, inboundRewrite map[*Port]*Port, outboundRewrite map[*Port]*Port)
	walk = func(comp Component, inboundRewrite, outboundRewrite map[*Port]*Port) {
		switch v := comp.(type) {
		case Coupled:
			childIn := make(map[*Port]*Port)
			childOut := make(map[*Port]*Port)
			for _, child := range v.Components() {
				walk(child, childIn, childOut)
			}
			for src, coups := range v.EIC() {
				for _, coup := range coups {
					resolvedDst := coup.Dest
					if r, ok := childIn[coup.Dest]; ok {
						resolvedDst = r
					}
					resolvedSrc := src
					if r, ok := inboundRewrite[src]; ok {
						resolvedSrc = r
					}
					eic[resolvedSrc] = append(eic[resolvedSrc], NewCoupling(resolvedSrc, resolvedDst))
				}
			}
			for src, coups := range v.IC() {
				for _, coup := range coups {
					resolvedSrc := src
					if r, ok := childOut[src]; ok {
						resolvedSrc = r
					}
					resolvedDst := coup.Dest
					if r, ok := childIn[coup.Dest]; ok {
						resolvedDst = r
					}
					ic[resolvedSrc] = append(ic[resolvedSrc], NewCoupling(resolvedSrc, resolvedDst))
				}
			}
			for src, coups := range v.EOC() {
				for _, coup := range coups {
					resolvedSrc := src
					if r, ok := childOut[src]; ok {
						resolvedSrc = r
					}
					resolvedDst := coup.Dest
					if r, ok := outboundRewrite[coup.Dest]; ok {
						resolvedDst = r
					}
					eoc[resolvedSrc] = append(eoc[resolvedSrc], NewCoupling(resolvedSrc, resolvedDst))
				}
			}
		default:
			atomics = append(atomics, comp)
		}
	}

	identity := map[*Port]*Port{}
	for _, p := range c.inPorts {
		identity[p] = p
	}
	identityOut := map[*Port]*Port{}
	for _, p := range c.outPorts {
		identityOut[p] = p
	}

	for _, comp := range c.components {
		walk(comp, identity, identityOut)
	}

	c.components = atomics
	c.eic = eic
	c.ic = ic
	c.eoc = eoc
}

// ToChain linearizes the model's direct atomic children into a single
// pipeline: component i's sole output port feeds component i+1's sole
// input port via an IC coupling, the first component's input ports
// become the model's EIC targets, and the last component's output
// ports become the model's EOC sources. In chain mode the coordinator
// never iterates EIC/IC/EOC (spec.md §3, §4.2) — ToChain still builds
// them for introspection/testing, but they go unused at simulation
// time once Chain() is true.
func (c *BaseCoupled) ToChain() {
	c.chain = true

	var atomics []Component
	for _, comp := range c.components {
		if _, ok := comp.(Coupled); ok {
			continue // a pre-flattened model has no nested coupled children
		}
		atomics = append(atomics, comp)
	}
	c.components = atomics

	c.eic = make(map[*Port][]*Coupling)
	c.ic = make(map[*Port][]*Coupling)
	c.eoc = make(map[*Port][]*Coupling)

	ports := func(comp Component, dir Direction) []*Port {
		a, ok := comp.(interface {
			InPorts() []*Port
			OutPorts() []*Port
		})
		if !ok {
			return nil
		}
		if dir == In {
			return a.InPorts()
		}
		return a.OutPorts()
	}

	for i, comp := range atomics {
		if i == 0 {
			for _, parentIn := range c.inPorts {
				for _, childIn := range ports(comp, In) {
					c.eic[parentIn] = append(c.eic[parentIn], NewCoupling(parentIn, childIn))
				}
			}
		} else {
			prev := atomics[i-1]
			for _, outP := range ports(prev, Out) {
				for _, inP := range ports(comp, In) {
					c.ic[outP] = append(c.ic[outP], NewCoupling(outP, inP))
				}
			}
		}
		if i == len(atomics)-1 {
			for _, outP := range ports(comp, Out) {
				for _, parentOut := range c.outPorts {
					c.eoc[outP] = append(c.eoc[outP], NewCoupling(outP, parentOut))
				}
			}
		}
	}
}

// ErrStructural reports a component that is neither Atomic nor Coupled
// (spec.md §7 item 1), a fatal, caller-surfaced condition.
type ErrStructural struct {
	Component Component
}

func (e *ErrStructural) Error() string {
	return fmt.Sprintf("model: component %q is neither an atomic nor a coupled model", e.Component.Name())
}
