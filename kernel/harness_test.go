package kernel_test

import (
	"encoding/gob"

	"github.com/xdevs-go/kernel/model"
)

// pulseAtomic is the shared fixture for kernel tests: it goes idle
// (sigma = Infinity) until an external input arrives, then fires once
// after delay time units and goes idle again.
type pulseAtomic struct {
	*model.BaseAtomic
	Delay float64
}

func newPulseAtomic(name string, delay float64) *pulseAtomic {
	a := &pulseAtomic{BaseAtomic: model.NewBaseAtomic(name), Delay: delay}
	a.AddInPort("in", false)
	a.AddOutPort("out")
	return a
}

func (a *pulseAtomic) DeltInt() {
	a.CountInt()
	a.SetSigma(model.Infinity)
}

func (a *pulseAtomic) DeltExt(e float64) {
	a.CountExt()
	a.SetSigma(a.Delay)
}

func (a *pulseAtomic) DeltCon(e float64) {
	a.CountInt()
	a.CountExt()
	a.SetSigma(a.Delay)
}

func (a *pulseAtomic) Lambdaf() {
	a.OutPorts()[0].Extend([]interface{}{"tick"})
}

func init() {
	gob.Register(&pulseAtomic{})
	gob.Register("")
}

// buildPipeline builds root(start) -EIC-> A -IC-> B -EOC-> root(done),
// a two-stage pipeline used to exercise a full cascade through the
// coordinator hierarchy (spec.md §4.1/§4.2).
func buildPipeline() (*model.BaseCoupled, *pulseAtomic, *pulseAtomic) {
	root := model.NewBaseCoupled("root")
	start := root.AddInPort("start", true)
	done := root.AddOutPort("done")

	a := newPulseAtomic("a", 0)
	b := newPulseAtomic("b", 0)
	root.AddComponent(a)
	root.AddComponent(b)

	root.AddEIC(start, a.InPorts()[0])
	root.AddIC(a.OutPorts()[0], b.InPorts()[0])
	root.AddEOC(b.OutPorts()[0], done)

	return root, a, b
}
