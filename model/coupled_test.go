package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xdevs-go/kernel/model"
)

func newLeaf(name string) *countingAtomic {
	a := newCountingAtomic(name, model.Infinity)
	return a
}

// buildNested builds root -EIC-> mid -EIC-> leaf1, leaf1 -IC-> leaf2
// (inside mid), mid -EOC-> root: a two-level nesting Flatten must
// collapse into a single level with couplings re-pointed directly at
// the hoisted atomics.
func buildNested() (root *model.BaseCoupled, leaf1, leaf2 *countingAtomic) {
	root = model.NewBaseCoupled("root")
	rootIn := root.AddInPort("in", true)
	rootOut := root.AddOutPort("out")

	mid := model.NewBaseCoupled("mid")
	midIn := mid.AddInPort("in", false)
	midOut := mid.AddOutPort("out")

	leaf1 = newLeaf("leaf1")
	leaf2 = newLeaf("leaf2")
	mid.AddComponent(leaf1)
	mid.AddComponent(leaf2)
	mid.AddEIC(midIn, leaf1.InPorts()[0])
	mid.AddIC(leaf1.OutPorts()[0], leaf2.InPorts()[0])
	mid.AddEOC(leaf2.OutPorts()[0], midOut)

	root.AddComponent(mid)
	root.AddEIC(rootIn, midIn)
	root.AddEOC(midOut, rootOut)

	return root, leaf1, leaf2
}

func TestFlattenHoistsNestedAtomicsAndRewritesCouplings(t *testing.T) {
	root, leaf1, leaf2 := buildNested()
	root.Flatten()

	require.ElementsMatch(t, []model.Component{leaf1, leaf2}, root.Components())

	require.Len(t, root.EIC()[root.InPorts()[0]], 1)
	require.Same(t, leaf1.InPorts()[0], root.EIC()[root.InPorts()[0]][0].Dest)

	require.Len(t, root.IC()[leaf1.OutPorts()[0]], 1)
	require.Same(t, leaf2.InPorts()[0], root.IC()[leaf1.OutPorts()[0]][0].Dest)

	require.Len(t, root.EOC()[leaf2.OutPorts()[0]], 1)
	require.Same(t, root.OutPorts()[0], root.EOC()[leaf2.OutPorts()[0]][0].Dest)
}

func TestToChainLinearizesFlatComponents(t *testing.T) {
	root := model.NewBaseCoupled("root")
	in := root.AddInPort("in", true)
	out := root.AddOutPort("out")

	a := newLeaf("a")
	b := newLeaf("b")
	root.AddComponent(a)
	root.AddComponent(b)
	root.AddEIC(in, a.InPorts()[0])
	root.AddIC(a.OutPorts()[0], b.InPorts()[0])
	root.AddEOC(b.OutPorts()[0], out)

	root.ToChain()

	require.True(t, root.Chain())
	require.Len(t, root.Components(), 2)
	require.Len(t, root.EIC()[in], 1)
	require.Same(t, a.InPorts()[0], root.EIC()[in][0].Dest)
	require.Len(t, root.IC()[a.OutPorts()[0]], 1)
	require.Same(t, b.InPorts()[0], root.IC()[a.OutPorts()[0]][0].Dest)
	require.Len(t, root.EOC()[b.OutPorts()[0]], 1)
	require.Same(t, out, root.EOC()[b.OutPorts()[0]][0].Dest)
}

func TestErrStructuralMessage(t *testing.T) {
	err := &model.ErrStructural{Component: newLeaf("bad")}
	require.Contains(t, err.Error(), "bad")
	require.Contains(t, err.Error(), "neither")
}
