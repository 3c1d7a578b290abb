package treehash_test

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"github.com/prooflab/treehash"
	"github.com/prooflab/treehash/domain"
)

// leafEquivalenceCircuit constrains the gadget output of LeafCircuit to the
// natively computed digest passed in as the public Want.
type leafEquivalenceCircuit struct {
	Data []frontend.Variable
	Want frontend.Variable `gnark:",public"`

	hasher treehash.Hasher
}

func (c *leafEquivalenceCircuit) Define(api frontend.API) error {
	got, err := c.hasher.LeafCircuit(api, c.Data)
	if err != nil {
		return err
	}
	api.AssertIsEqual(got, c.Want)
	return nil
}

type nodeEquivalenceCircuit struct {
	Left  frontend.Variable
	Right frontend.Variable
	Want  frontend.Variable `gnark:",public"`

	hasher treehash.Hasher
	height uint64
}

func (c *nodeEquivalenceCircuit) Define(api frontend.API) error {
	got, err := c.hasher.NodeCircuit(api, c.Left, c.Right, c.height)
	if err != nil {
		return err
	}
	api.AssertIsEqual(got, c.Want)
	return nil
}

func elementValue(t *testing.T, d domain.Domain) *big.Int {
	t.Helper()
	e, err := d.Element()
	require.NoError(t, err)
	return e.BigInt(new(big.Int))
}

// randomBlocks draws n in-field data blocks from the fuzzer, returning both
// the native byte form and the per-block field values.
func randomBlocks(f *fuzz.Fuzzer, n int) ([]byte, []*big.Int) {
	data := make([]byte, 0, n*treehash.BlockSize)
	values := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		var raw uint64
		f.Fuzz(&raw)
		var e fr.Element
		e.SetUint64(raw)
		e.Square(&e) // spread across the whole field
		d := domain.FromElement(&e)
		data = append(data, d.Bytes()...)
		values[i] = e.BigInt(new(big.Int))
	}
	return data, values
}

func allHashers() []treehash.Hasher {
	return []treehash.Hasher{treehash.Poseidon{}, treehash.Sha256{}, treehash.Blake2s{}}
}

func TestLeafCircuitEquivalence(t *testing.T) {
	if testing.Short() {
		t.Skip("circuit evaluation skipped in short mode")
	}
	f := fuzz.NewWithSeed(1)

	for _, h := range allHashers() {
		h := h
		t.Run(h.Name(), func(t *testing.T) {
			for _, blocks := range []int{1, 2} {
				for sample := 0; sample < 3; sample++ {
					data, values := randomBlocks(f, blocks)
					want, err := h.HashLeaf(data)
					require.NoError(t, err)

					circuit := &leafEquivalenceCircuit{
						Data:   make([]frontend.Variable, blocks),
						hasher: h,
					}
					assignment := &leafEquivalenceCircuit{
						Data:   make([]frontend.Variable, blocks),
						Want:   elementValue(t, want),
						hasher: h,
					}
					for i, v := range values {
						assignment.Data[i] = v
					}

					err = test.IsSolved(circuit, assignment, ecc.BLS12_381.ScalarField())
					require.NoError(t, err, "%s: %d blocks, sample %d", h.Name(), blocks, sample)
				}
			}
		})
	}
}

func TestNodeCircuitEquivalence(t *testing.T) {
	if testing.Short() {
		t.Skip("circuit evaluation skipped in short mode")
	}
	f := fuzz.NewWithSeed(2)

	for _, h := range allHashers() {
		h := h
		t.Run(h.Name(), func(t *testing.T) {
			for _, height := range []uint64{0, 1, 5} {
				leftData, _ := randomBlocks(f, 1)
				rightData, _ := randomBlocks(f, 1)
				left, err := h.HashLeaf(leftData)
				require.NoError(t, err)
				right, err := h.HashLeaf(rightData)
				require.NoError(t, err)

				want, err := h.HashNode(left, right, height)
				require.NoError(t, err)

				circuit := &nodeEquivalenceCircuit{hasher: h, height: height}
				assignment := &nodeEquivalenceCircuit{
					Left:   elementValue(t, left),
					Right:  elementValue(t, right),
					Want:   elementValue(t, want),
					hasher: h,
					height: height,
				}
				err = test.IsSolved(circuit, assignment, ecc.BLS12_381.ScalarField())
				require.NoError(t, err, "%s: height %d", h.Name(), height)
			}
		})
	}
}

// TestNodeCircuitRejectsWrongDigest checks the gadget actually constrains
// its output: a wrong Want must not be satisfiable.
func TestNodeCircuitRejectsWrongDigest(t *testing.T) {
	if testing.Short() {
		t.Skip("circuit evaluation skipped in short mode")
	}
	h := treehash.Poseidon{}
	left, err := h.HashLeaf(make([]byte, 32))
	require.NoError(t, err)
	right, err := h.HashLeaf(make([]byte, 32))
	require.NoError(t, err)

	circuit := &nodeEquivalenceCircuit{hasher: h, height: 0}
	assignment := &nodeEquivalenceCircuit{
		Left:   elementValue(t, left),
		Right:  elementValue(t, right),
		Want:   big.NewInt(42),
		hasher: h,
		height: 0,
	}
	err = test.IsSolved(circuit, assignment, ecc.BLS12_381.ScalarField())
	require.Error(t, err)
}

func TestCircuitGadgetErrors(t *testing.T) {
	cases := []struct {
		name       string
		overHeight bool
	}{
		{name: "empty leaf", overHeight: false},
		{name: "over-height node", overHeight: true},
	}
	for _, h := range allHashers() {
		h := h
		t.Run(h.Name(), func(t *testing.T) {
			for _, tc := range cases {
				circuit := &badGadgetCircuit{hasher: h, overHeight: tc.overHeight}
				assignment := &badGadgetCircuit{X: 1, hasher: h, overHeight: tc.overHeight}
				err := test.IsSolved(circuit, assignment, ecc.BLS12_381.ScalarField())
				require.Error(t, err, tc.name)
				require.ErrorContains(t, err, "rejected gadget", tc.name)
			}
		})
	}
}

// badGadgetCircuit asks for one gadget the binding must refuse: an empty
// leaf, or a node beyond MaxHeight.
type badGadgetCircuit struct {
	X frontend.Variable

	hasher     treehash.Hasher
	overHeight bool
}

func (c *badGadgetCircuit) Define(api frontend.API) error {
	if c.overHeight {
		_, err := c.hasher.NodeCircuit(api, c.X, c.X, treehash.MaxHeight+1)
		return err
	}
	_, err := c.hasher.LeafCircuit(api, nil)
	return err
}
