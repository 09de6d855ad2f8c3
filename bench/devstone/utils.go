package devstone

import "github.com/xdevs-go/kernel/model"

// CountAtomics returns the number of atomic models in comp's subtree,
// ported from test_devstone.py's Utils.count_atomics.
func CountAtomics(comp model.Component) int {
	switch v := comp.(type) {
	case model.Atomic:
		return 1
	case model.Coupled:
		n := 0
		for _, child := range v.Components() {
			n += CountAtomics(child)
		}
		return n
	default:
		panic("devstone: component is neither atomic nor coupled")
	}
}

// CountEIC sums the EIC coupling count across comp's subtree, ported
// from test_devstone.py's Utils.count_eic.
func CountEIC(comp model.Component) int {
	v, ok := comp.(model.Coupled)
	if !ok {
		return 0
	}
	n := 0
	for _, coups := range v.EIC() {
		n += len(coups)
	}
	for _, child := range v.Components() {
		n += CountEIC(child)
	}
	return n
}

// CountIC sums the IC coupling count across comp's subtree, ported
// from test_devstone.py's Utils.count_ic.
func CountIC(comp model.Component) int {
	v, ok := comp.(model.Coupled)
	if !ok {
		return 0
	}
	n := 0
	for _, coups := range v.IC() {
		n += len(coups)
	}
	for _, child := range v.Components() {
		n += CountIC(child)
	}
	return n
}

// CountEOC sums the EOC coupling count across comp's subtree, ported
// from test_devstone.py's Utils.count_eoc.
func CountEOC(comp model.Component) int {
	v, ok := comp.(model.Coupled)
	if !ok {
		return 0
	}
	n := 0
	for _, coups := range v.EOC() {
		n += len(coups)
	}
	for _, child := range v.Components() {
		n += CountEOC(child)
	}
	return n
}

// CountTransitions sums int and ext transition counts separately
// across every atomic in comp's subtree, ported from test_devstone.py's
// Utils.count_transitions (which returns the same pair rather than
// their sum, so an int/ext asymmetry bug can't cancel out). Call after
// a full simulate() run.
func CountTransitions(comp model.Component) (intCount, extCount int) {
	switch v := comp.(type) {
	case model.Atomic:
		return v.IntCount(), v.ExtCount()
	case model.Coupled:
		for _, child := range v.Components() {
			ic, ec := CountTransitions(child)
			intCount += ic
			extCount += ec
		}
		return intCount, extCount
	default:
		panic("devstone: component is neither atomic nor coupled")
	}
}
