// Package devstone builds the DEVStone benchmark model families (LI
// and HI) used to exercise the kernel's structural transforms and
// execution strategies at a controllable size (spec.md §8). The
// families are parameterized by depth and width and are built purely
// out of the kernel's model.BaseCoupled/model.BaseAtomic contract, the
// same way bench/devstone's grounding source (perfdevs' devstone
// generator, referenced from original_source/perfdevs/tests/test_devstone.py)
// builds its reference trees.
package devstone

import (
	"encoding/gob"
	"fmt"

	"github.com/xdevs-go/kernel/model"
)

// Params configures one DEVStone instance.
type Params struct {
	Depth    int
	Width    int
	IntDelay float64
	ExtDelay float64
}

// DefaultParams mirrors the modest magnitudes test_devstone.py uses for
// its smoke-test cases.
func DefaultParams() Params {
	return Params{Depth: 3, Width: 4, IntDelay: 1, ExtDelay: 1}
}

// AtomicDelay is the single atomic model family every DEVStone instance
// is built from. An external input reschedules its next internal
// firing after Delay time units; the internal firing emits one value
// and goes idle. A confluent arrival counts as both: this is what lets
// the HI family's intra-level chaining (buildLevel) produce the
// quadratic transition growth spec.md §8 describes, without any
// special-casing in the model itself.
type AtomicDelay struct {
	*model.BaseAtomic
	Delay float64
}

func newAtomicDelay(name string, delay float64) *AtomicDelay {
	a := &AtomicDelay{BaseAtomic: model.NewBaseAtomic(name), Delay: delay}
	a.AddInPort("in", false)
	a.AddOutPort("out")
	return a
}

func (a *AtomicDelay) outPort() *model.Port { return a.OutPorts()[0] }

func (a *AtomicDelay) DeltInt() {
	a.CountInt()
	a.SetSigma(model.Infinity)
}

func (a *AtomicDelay) DeltExt(e float64) {
	a.CountExt()
	a.SetSigma(a.Delay)
}

// DeltCon fires when an external arrival lands exactly at this atomic's
// own scheduled time; it is both the completion of the pending
// internal transition and the start of a new one, so it counts both.
func (a *AtomicDelay) DeltCon(e float64) {
	a.CountInt()
	a.CountExt()
	a.SetSigma(a.Delay)
}

func (a *AtomicDelay) Lambdaf() {
	a.outPort().Extend([]interface{}{true})
}

func init() {
	gob.Register(&AtomicDelay{})
	gob.Register(true)
}

// level builds one nested coupled layer of a DEVStone instance. levelIndex
// runs from 1 (the root) to depth inclusive; levelIndex == depth is the
// recursion's base case.
//
// Structural counts match spec.md §8 exactly for any (depth, width):
//   - atomics       = (width-1)*(depth-1) + 1
//   - EIC couplings = width*(depth-1) + 1
//   - EOC couplings = depth
//   - IC couplings  = 0 for LI; (width-2)*(depth-1) for HI when width > 2, else 0
//
// because every level 1..depth-1 contributes exactly width-1 "dummy"
// atomics plus one nested child carrying the recursion forward (width
// EIC edges, one EOC edge forwarding the child's output, and, for HI,
// a width-2-edge IC chain across its dummies), and level depth
// contributes the single terminal atomic with one EIC/EOC edge each
// and no dummies.
func level(prefix string, levelIndex, depth, width int, params Params, chained bool) *model.BaseCoupled {
	name := fmt.Sprintf("%s_L%d", prefix, levelIndex)
	c := model.NewBaseCoupled(name)
	in := c.AddInPort("in", levelIndex == 1)
	out := c.AddOutPort("out")

	if levelIndex == depth {
		leaf := newAtomicDelay(name+"_leaf", params.IntDelay)
		c.AddComponent(leaf)
		c.AddEIC(in, leaf.InPorts()[0])
		c.AddEOC(leaf.outPort(), out)
		return c
	}

	dummies := make([]*AtomicDelay, width-1)
	for i := range dummies {
		d := newAtomicDelay(fmt.Sprintf("%s_d%d", name, i), params.ExtDelay)
		dummies[i] = d
		c.AddComponent(d)
		c.AddEIC(in, d.InPorts()[0])
		if chained && i > 0 {
			c.AddIC(dummies[i-1].outPort(), d.InPorts()[0])
		}
	}

	child := level(prefix, levelIndex+1, depth, width, params, chained)
	c.AddComponent(child)
	c.AddEIC(in, child.InPorts()[0])
	c.AddEOC(child.OutPorts()[0], out)

	return c
}

// LI builds the Linear Increasing DEVStone family: each level's dummy
// atomics are independent, so IC is always empty.
func LI(name string, p Params) *model.BaseCoupled {
	return level(name, 1, p.Depth, p.Width, p, false)
}

// HI builds the Highly Interconnected DEVStone family: each level's
// dummy atomics are chained in sequence via IC, amplifying the
// transition count relative to LI at the same (depth, width).
func HI(name string, p Params) *model.BaseCoupled {
	return level(name, 1, p.Depth, p.Width, p, true)
}

// InPort returns root's single input port, the injection target for an
// end-to-end run (mirrors the original harness's li_root.i_in access).
func InPort(root *model.BaseCoupled) *model.Port {
	return root.InPorts()[0]
}
