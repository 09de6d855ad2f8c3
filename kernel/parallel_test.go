package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xdevs-go/kernel/kernel"
)

func TestThreadParallelCoordinatorMatchesSequential(t *testing.T) {
	root, a, b := buildPipeline()
	coord := kernel.NewThreadParallelCoordinator(root, kernel.Options{}, 4)
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

func TestThreadParallelCoordinatorDefaultWorkerCount(t *testing.T) {
	root, a, b := buildPipeline()
	coord := kernel.NewThreadParallelCoordinator(root, kernel.Options{}, 0)
	require.NoError(t, coord.Initialize())

	_, err := coord.Inject(root.InPorts()[0], []interface{}{true}, 0)
	require.NoError(t, err)
	coord.SimulateInf()

	require.Equal(t, 1, a.IntCount())
	require.Equal(t, 1, b.IntCount())
}
