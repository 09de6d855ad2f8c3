package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xdevs-go/kernel/kernel"
	"github.com/xdevs-go/kernel/model"
)

func TestCoordinatorCascadeThroughPipeline(t *testing.T) {
	root, a, b := buildPipeline()
	coord := kernel.NewCoordinator(root, kernel.Options{})
	require.NoError(t, coord.Initialize())

	accepted, err := coord.Inject(root.InPorts()[0], []interface{}{true}, 0)
	require.NoError(t, err)
	require.True(t, accepted)

	coord.SimulateInf()

	require.Equal(t, 1, a.IntCount())
	require.Equal(t, 1, a.ExtCount())
	require.Equal(t, 1, b.IntCount())
	require.Equal(t, 1, b.ExtCount())
}

func TestCoordinatorRejectsOutOfBoundsInjection(t *testing.T) {
	root, _, _ := buildPipeline()
	coord := kernel.NewCoordinator(root, kernel.Options{})
	require.NoError(t, coord.Initialize())

	_, err := coord.Inject(root.InPorts()[0], []interface{}{true}, 0)
	require.NoError(t, err)

	accepted, err := coord.Inject(root.InPorts()[0], []interface{}{true}, -1)
	require.False(t, accepted)
	require.Error(t, err)
	require.IsType(t, &kernel.ErrRejectedInjection{}, err)
}

func TestCoordinatorLegacyInjectSemantics(t *testing.T) {
	root, _, _ := buildPipeline()
	coord := kernel.NewCoordinator(root, kernel.Options{LegacyInjectSemantics: true})
	require.NoError(t, coord.Initialize())

	accepted, err := coord.Inject(root.InPorts()[0], []interface{}{true}, 0)
	require.NoError(t, err)
	require.True(t, accepted)

	accepted, err = coord.Inject(root.InPorts()[0], []interface{}{true}, -1)
	require.NoError(t, err)
	require.False(t, accepted)
}

func TestInjectRemoteUnknownPort(t *testing.T) {
	root, _, _ := buildPipeline()
	coord := kernel.NewCoordinator(root, kernel.Options{})
	require.NoError(t, coord.Initialize())

	_, err := coord.InjectRemote("root.nope", nil, 0, nil)
	require.Error(t, err)
	require.IsType(t, &kernel.ErrUnknownPort{}, err)
}

func TestInjectRemoteLegacyUnknownPortAccepted(t *testing.T) {
	root, _, _ := buildPipeline()
	coord := kernel.NewCoordinator(root, kernel.Options{LegacyInjectSemantics: true})
	require.NoError(t, coord.Initialize())

	accepted, err := coord.InjectRemote("root.nope", nil, 0, nil)
	require.NoError(t, err)
	require.True(t, accepted)
}

func TestCoordinatorFlatten(t *testing.T) {
	root, a, b := buildPipeline()
	coord := kernel.NewCoordinator(root, kernel.Options{Flatten: true})
	require.NoError(t, coord.Initialize())

	accepted, err := coord.Inject(root.InPorts()[0], []interface{}{true}, 0)
	require.NoError(t, err)
	require.True(t, accepted)

	coord.SimulateInf()

	require.Equal(t, 1, a.IntCount())
	require.Equal(t, 1, b.IntCount())
}

// TestCoordinatorFlattenCollapsesNesting exercises Flatten against a
// genuinely nested model: root's single child is itself a coupled
// model wrapping the two pulse atomics. Flatten hoists both atomics
// into root before the coordinator tree is built, so root's
// coordinator drives them directly with no intermediate child
// coordinator, and the simulated result must match the unflattened
// nested run.
func buildNestedPipeline() (*model.BaseCoupled, *pulseAtomic, *pulseAtomic) {
	root := model.NewBaseCoupled("root")
	start := root.AddInPort("start", true)
	done := root.AddOutPort("done")

	mid := model.NewBaseCoupled("mid")
	midIn := mid.AddInPort("in", false)
	midOut := mid.AddOutPort("out")

	a := newPulseAtomic("a", 0)
	b := newPulseAtomic("b", 0)
	mid.AddComponent(a)
	mid.AddComponent(b)
	mid.AddEIC(midIn, a.InPorts()[0])
	mid.AddIC(a.OutPorts()[0], b.InPorts()[0])
	mid.AddEOC(b.OutPorts()[0], midOut)

	root.AddComponent(mid)
	root.AddEIC(start, midIn)
	root.AddEOC(midOut, done)

	return root, a, b
}

func TestCoordinatorFlattenCollapsesNesting(t *testing.T) {
	root, a, b := buildNestedPipeline()
	coord := kernel.NewCoordinator(root, kernel.Options{Flatten: true})
	require.NoError(t, coord.Initialize())
	require.Len(t, root.Components(), 2, "flatten should hoist both atomics into root")

	accepted, err := coord.Inject(root.InPorts()[0], []interface{}{true}, 0)
	require.NoError(t, err)
	require.True(t, accepted)

	coord.SimulateInf()

	require.Equal(t, 1, a.IntCount())
	require.Equal(t, 1, a.ExtCount())
	require.Equal(t, 1, b.IntCount())
	require.Equal(t, 1, b.ExtCount())
}
