package kernel

import "fmt"

// ErrUnknownPort is returned (non-legacy mode) when a remote injection
// names a port not present in ports_to_serve (spec.md §7 item 3, §9
// open question: the original silently accepted these).
type ErrUnknownPort struct {
	Port string
}

func (e *ErrUnknownPort) Error() string {
	return fmt.Sprintf("kernel: port %q not found in ports_to_serve", e.Port)
}

// ErrRejectedInjection is returned when an injection's elapsed time
// falls outside [0, time_next - time_last] (spec.md §7 item 2).
type ErrRejectedInjection struct {
	TimeLast, TimeNext, E float64
}

func (e *ErrRejectedInjection) Error() string {
	return fmt.Sprintf("kernel: input rejected: elapsed time %v from time_last=%v is not within time_next=%v",
		e.E, e.TimeLast, e.TimeNext)
}
