package chaos_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xdevs-go/kernel/chaos"
	"github.com/xdevs-go/kernel/model"
)

type stubAtomic struct {
	*model.BaseAtomic
}

func newStubAtomic() *stubAtomic {
	a := &stubAtomic{BaseAtomic: model.NewBaseAtomic("stub")}
	a.SetSigma(5)
	return a
}

func (a *stubAtomic) DeltInt()          { a.CountInt(); a.SetSigma(1) }
func (a *stubAtomic) DeltExt(e float64) { a.CountExt(); a.SetSigma(2) }
func (a *stubAtomic) DeltCon(e float64) { a.CountInt(); a.CountExt(); a.SetSigma(3) }
func (a *stubAtomic) Lambdaf()          {}

func TestInjectorDelegatesWhenNothingArmed(t *testing.T) {
	inj := chaos.Wrap(newStubAtomic())

	inj.DeltInt()
	require.Equal(t, 1, inj.IntCount())
	require.Equal(t, float64(1), inj.Sigma())

	inj.DeltExt(0)
	require.Equal(t, 1, inj.ExtCount())
	require.Equal(t, float64(2), inj.Sigma())

	inj.DeltCon(0)
	require.Equal(t, 2, inj.IntCount())
	require.Equal(t, 2, inj.ExtCount())
	require.Equal(t, float64(3), inj.Sigma())
}

func TestInjectorArmPanicOnDeltInt(t *testing.T) {
	stub := newStubAtomic()
	inj := chaos.Wrap(stub)
	inj.ArmPanic(chaos.DeltInt, "boom")

	require.PanicsWithValue(t, "boom", func() { inj.DeltInt() })
	require.Equal(t, 0, stub.IntCount())
}

func TestInjectorArmPanicOnlyFiresOnce(t *testing.T) {
	stub := newStubAtomic()
	inj := chaos.Wrap(stub)
	inj.ArmPanic(chaos.DeltExt, "boom")

	require.PanicsWithValue(t, "boom", func() { inj.DeltExt(0) })

	inj.DeltExt(0)
	require.Equal(t, 1, stub.ExtCount())
}

func TestInjectorArmDelayInflatesSigma(t *testing.T) {
	stub := newStubAtomic()
	inj := chaos.Wrap(stub)
	before := inj.Sigma()
	inj.ArmDelay(chaos.DeltCon, 10)

	inj.DeltCon(0)

	require.Equal(t, before+10, inj.Sigma())
	require.Equal(t, 0, stub.IntCount())
	require.Equal(t, 0, stub.ExtCount())
}

func TestInjectorDisarmClearsFault(t *testing.T) {
	inj := chaos.Wrap(newStubAtomic())
	inj.ArmPanic(chaos.DeltInt, "boom")
	inj.Disarm(chaos.DeltInt)

	require.NotPanics(t, func() { inj.DeltInt() })
	require.Equal(t, 1, inj.IntCount())
}

func TestTransitionString(t *testing.T) {
	require.Equal(t, "deltint", chaos.DeltInt.String())
	require.Equal(t, "deltext", chaos.DeltExt.String())
	require.Equal(t, "deltcon", chaos.DeltCon.String())
	require.Equal(t, "unknown", chaos.Transition(99).String())
}
