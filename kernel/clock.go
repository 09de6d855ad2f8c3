// Package kernel implements the DEVS simulation kernel: the abstract
// Simulator/Coordinator processor hierarchy, its sequential, thread-
// parallel and process-parallel execution strategies, and the inject
// boundary (spec.md §2–§5).
package kernel

import "github.com/xdevs-go/kernel/model"

// Clock is a shared mutable holder of the current virtual time
// (spec.md §3: "exactly one instance per simulation; every processor
// in the tree references the same clock"). It is not safe for
// concurrent writers — spec.md §5 guarantees only the root driver (and
// Inject) ever writes it, while parallel-strategy workers only read.
type Clock struct {
	Time float64
}

// NewClock creates a clock starting at t, defaulting to 0.
func NewClock(t float64) *Clock {
	return &Clock{Time: t}
}

// Infinity re-exports model.Infinity for convenience within the kernel
// package.
const Infinity = model.Infinity
