package kernel

import "github.com/xdevs-go/kernel/model"

// Simulator is the atomic processor: it owns a model.Atomic and drives
// it through the three-way DEVS transition rule (spec.md §4.1).
type Simulator struct {
	Model model.Atomic
	clock *Clock

	timeLast float64
	timeNext float64
}

// NewSimulator wraps atomic in a Simulator sharing clock with the rest
// of the processor tree.
func NewSimulator(atomic model.Atomic, clock *Clock) *Simulator {
	return &Simulator{Model: atomic, clock: clock}
}

func (s *Simulator) TA() float64 { return s.Model.TA() }

func (s *Simulator) TimeLast() float64 { return s.timeLast }
func (s *Simulator) TimeNext() float64 { return s.timeNext }

// Initialize invokes model.Initialize(), then sets time_last/time_next
// from the shared clock (spec.md §4.1).
func (s *Simulator) Initialize() error {
	s.Model.Initialize()
	s.timeLast = s.clock.Time
	s.timeNext = s.timeLast + s.Model.TA()
	return nil
}

func (s *Simulator) Exit() { s.Model.Exit() }

// Lambdaf invokes the atomic's output function only when the clock has
// reached this simulator's scheduled time_next (spec.md §4.1).
func (s *Simulator) Lambdaf() {
	if s.clock.Time == s.timeNext {
		s.Model.Lambdaf()
	}
}

// Deltfcn evaluates the three-way transition rule at the current clock
// time and advances time_last/time_next (spec.md §4.1).
func (s *Simulator) Deltfcn() {
	t := s.clock.Time
	inEmpty := s.Model.InEmpty()

	if inEmpty {
		if t != s.timeNext {
			return
		}
		s.Model.DeltInt()
	} else {
		e := t - s.timeLast
		s.Model.SetSigma(s.Model.Sigma() - e)

		if t == s.timeNext {
			s.Model.DeltCon(e)
		} else {
			s.Model.DeltExt(e)
		}
	}

	s.timeLast = t
	s.timeNext = s.timeLast + s.Model.TA()
}

// Clear empties every input and output port of the wrapped atomic.
func (s *Simulator) Clear() {
	for _, p := range s.Model.InPorts() {
		p.Clear()
	}
	for _, p := range s.Model.OutPorts() {
		p.Clear()
	}
}
