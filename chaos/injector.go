// Package chaos provides test-harness fault injection for atomic
// models, adapted from the teacher's packages/failure/injector package
// (crash/partition/delay/byzantine injection for distributed-systems
// demos) from node-level failures to DEVS transition-level ones
// (SPEC_FULL.md §5).
package chaos

import "github.com/xdevs-go/kernel/model"

// Transition names the transition function an Injector can arm a
// fault against.
type Transition int

const (
	DeltInt Transition = iota
	DeltExt
	DeltCon
)

func (t Transition) String() string {
	switch t {
	case DeltInt:
		return "deltint"
	case DeltExt:
		return "deltext"
	case DeltCon:
		return "deltcon"
	default:
		return "unknown"
	}
}

type fault struct {
	panicValue interface{}
	sigmaBump  float64
}

// Injector wraps a model.Atomic so a test can arm a deterministic
// fault on its next matching transition: a panic (exercising spec.md
// §7 item 5, "the kernel does not catch; a failing atomic aborts the
// current cycle") or an inflated sigma (simulating an unexpectedly
// slow transition without raising an error).
type Injector struct {
	model.Atomic

	armed map[Transition]*fault
}

// Wrap returns an Injector delegating to atomic until a fault is
// armed.
func Wrap(atomic model.Atomic) *Injector {
	return &Injector{Atomic: atomic, armed: make(map[Transition]*fault)}
}

// ArmPanic arms t so the next matching transition panics with value
// instead of running the wrapped atomic's transition body.
func (inj *Injector) ArmPanic(t Transition, value interface{}) {
	inj.armed[t] = &fault{panicValue: value}
}

// ArmDelay arms t so the next matching transition inflates sigma by
// delta instead of running the wrapped atomic's transition body.
func (inj *Injector) ArmDelay(t Transition, delta float64) {
	inj.armed[t] = &fault{sigmaBump: delta}
}

// Disarm clears any fault armed against t.
func (inj *Injector) Disarm(t Transition) {
	delete(inj.armed, t)
}

func (inj *Injector) take(t Transition) *fault {
	f, ok := inj.armed[t]
	if !ok {
		return nil
	}
	delete(inj.armed, t)
	return f
}

// DeltInt runs the armed fault for DeltInt if one is set, else
// delegates to the wrapped atomic.
func (inj *Injector) DeltInt() {
	if f := inj.take(DeltInt); f != nil {
		inj.fire(f)
		return
	}
	inj.Atomic.DeltInt()
}

// DeltExt runs the armed fault for DeltExt if one is set, else
// delegates to the wrapped atomic.
func (inj *Injector) DeltExt(e float64) {
	if f := inj.take(DeltExt); f != nil {
		inj.fire(f)
		return
	}
	inj.Atomic.DeltExt(e)
}

// DeltCon runs the armed fault for DeltCon if one is set, else
// delegates to the wrapped atomic.
func (inj *Injector) DeltCon(e float64) {
	if f := inj.take(DeltCon); f != nil {
		inj.fire(f)
		return
	}
	inj.Atomic.DeltCon(e)
}

func (inj *Injector) fire(f *fault) {
	if f.panicValue != nil {
		panic(f.panicValue)
	}
	inj.SetSigma(inj.Sigma() + f.sigmaBump)
}
