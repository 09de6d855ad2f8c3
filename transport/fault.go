package transport

import (
	"errors"
	"math/rand"
	"time"

	"github.com/xdevs-go/kernel/kernel"
)

// ErrDropped is returned by FaultyDialer.Inject when the configured
// packet-loss probability fires.
var ErrDropped = errors.New("transport: injection request dropped")

// FaultyDialer decorates an Injector with the teacher's latency/packet-
// loss network model (packages/network/transport/transport.go),
// repurposed from a general node-to-node message transport into a
// test-only fault layer in front of the injection boundary
// (SPEC_FULL.md §5): it can delay or drop an InjectRemote call before
// it ever reaches the coordinator, for exercising the out-of-bounds
// rejection path under adverse conditions.
type FaultyDialer struct {
	next Injector

	minLatency time.Duration
	maxLatency time.Duration
	packetLoss float64
}

// NewFaultyDialer wraps next with no induced latency or loss; call
// SetLatency/SetPacketLoss to arm a fault.
func NewFaultyDialer(next Injector) *FaultyDialer {
	return &FaultyDialer{next: next}
}

// SetLatency configures the delay window applied before every call
// reaches next.
func (f *FaultyDialer) SetLatency(min, max time.Duration) {
	f.minLatency = min
	f.maxLatency = max
}

// SetPacketLoss configures the probability (0..1) that a call is
// dropped (returns ErrDropped) instead of reaching next.
func (f *FaultyDialer) SetPacketLoss(probability float64) {
	if probability < 0 {
		probability = 0
	}
	if probability > 1 {
		probability = 1
	}
	f.packetLoss = probability
}

// InjectRemote implements Injector, applying the configured loss/delay
// before delegating to the wrapped coordinator.
func (f *FaultyDialer) InjectRemote(portName string, blobs [][]byte, e float64, deserializer kernel.Deserializer) (bool, error) {
	if f.packetLoss > 0 && rand.Float64() < f.packetLoss {
		return false, ErrDropped
	}

	if f.maxLatency > f.minLatency {
		delay := f.minLatency + time.Duration(rand.Int63n(int64(f.maxLatency-f.minLatency)))
		time.Sleep(delay)
	} else if f.minLatency > 0 {
		time.Sleep(f.minLatency)
	}

	return f.next.InjectRemote(portName, blobs, e, deserializer)
}
