package kernel

import (
	"fmt"
	"math"

	"github.com/xdevs-go/kernel/model"
)

// Deserializer decodes an opaque value blob received over the remote
// injection boundary (spec.md §6 "opaque-blob", §4.3 "opaque
// deserializer provided by the environment"). The kernel never
// constructs one itself; transport.Codec supplies a concrete
// implementation.
type Deserializer interface {
	Decode(blob []byte) (interface{}, error)
}

// Inject pushes values directly (in-process) onto port at elapsed
// offset e from time_last (spec.md §4.3). It is the entry point used
// by callers that already hold a *model.Port reference; remote,
// string-keyed injection goes through InjectRemote.
func (c *Coordinator) Inject(port *model.Port, values []interface{}, e float64) (bool, error) {
	return c.inject(port, values, e)
}

// InjectRemote resolves portName through ports_to_serve, decodes each
// blob via deserializer, and injects the result (spec.md §4.3, §6
// "Remote injection wire contract"). blobs may represent either a
// single scalar wrapped by the caller or a list; both arrive here
// already split into one blob per value.
func (c *Coordinator) InjectRemote(portName string, blobs [][]byte, e float64, deserializer Deserializer) (bool, error) {
	values := make([]interface{}, 0, len(blobs))
	for _, b := range blobs {
		v, err := deserializer.Decode(b)
		if err != nil {
			return false, fmt.Errorf("kernel: deserialize injection payload for %q: %w", portName, err)
		}
		values = append(values, v)
	}

	port, ok := c.portsToServe[portName]
	if !ok {
		c.errorf("port '%s' not found", portName)
		if c.opts.LegacyInjectSemantics {
			return true, nil
		}
		return false, &ErrUnknownPort{Port: portName}
	}

	return c.inject(port, values, e)
}

func (c *Coordinator) inject(port *model.Port, values []interface{}, e float64) (bool, error) {
	c.logf("injecting")
	time := c.timeLast + e

	// spec.md §4.3 and §9: the original always treats a NaN elapsed
	// time as in-bounds ("time != time"). That is preserved only under
	// LegacyInjectSemantics; the corrected default rejects it like any
	// other out-of-bounds time. A negative elapsed time is rejected in
	// both modes.
	inBounds := (e >= 0 && time <= c.timeNext) || (c.opts.LegacyInjectSemantics && math.IsNaN(time))
	if inBounds {
		port.Extend(values)
		c.clock.Time = time
		c.self.Lambdaf()
		c.self.Deltfcn()
		c.Clear()
		c.clock.Time = c.timeNext
		return true, nil
	}

	c.errorf("time %v - input rejected: elapsed time %v is not in bounds", c.timeLast, e)
	if c.opts.LegacyInjectSemantics {
		return false, nil
	}
	return false, &ErrRejectedInjection{TimeLast: c.timeLast, TimeNext: c.timeNext, E: e}
}
