package treehash

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// LeafCircuit allocates the constraints computing the Poseidon leaf hash of
// the given data blocks. It mirrors HashLeaf exactly: same fold, same tags,
// same closing block count, so the output variable evaluates to the native
// digest's field value for every witness.
func (Poseidon) LeafCircuit(api frontend.API, data []frontend.Variable) (frontend.Variable, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty leaf", ErrConstraint)
	}
	acc := frontend.Variable(0)
	for _, block := range data {
		acc = poseidonCompressGadget(api, tagLeaf, acc, block)
	}
	return poseidonCompressGadget(api, tagLeaf, acc, len(data)), nil
}

// NodeCircuit is the in-circuit twin of NodeHash. The height is a circuit
// constant, folded into the capacity tag exactly as in the native path.
func (Poseidon) NodeCircuit(api frontend.API, left, right frontend.Variable, height uint64) (frontend.Variable, error) {
	if height > MaxHeight {
		return nil, fmt.Errorf("%w: height %d", ErrConstraint, height)
	}
	return poseidonCompressGadget(api, tagNode+height, left, right), nil
}

func poseidonCompressGadget(api frontend.API, tag uint64, a, b frontend.Variable) frontend.Variable {
	state := [poseidonWidth]frontend.Variable{tag, a, b}
	poseidonPermuteGadget(api, &state)
	return state[1]
}

func poseidonPermuteGadget(api frontend.API, state *[poseidonWidth]frontend.Variable) {
	c := PoseidonParams()
	half := poseidonFullRounds / 2
	round := 0
	for i := 0; i < half; i++ {
		poseidonRoundGadget(api, c, state, round, true)
		round++
	}
	for i := 0; i < poseidonPartialRounds; i++ {
		poseidonRoundGadget(api, c, state, round, false)
		round++
	}
	for i := 0; i < half; i++ {
		poseidonRoundGadget(api, c, state, round, true)
		round++
	}
}

func poseidonRoundGadget(api frontend.API, c *PoseidonConstants, state *[poseidonWidth]frontend.Variable, round int, full bool) {
	for j := 0; j < poseidonWidth; j++ {
		rc := c.RoundConstants[round*poseidonWidth+j].BigInt(new(big.Int))
		state[j] = api.Add(state[j], rc)
	}
	if full {
		for j := 0; j < poseidonWidth; j++ {
			state[j] = sboxGadget(api, state[j])
		}
	} else {
		state[0] = sboxGadget(api, state[0])
	}

	var mixed [poseidonWidth]frontend.Variable
	for i := 0; i < poseidonWidth; i++ {
		terms := make([]frontend.Variable, poseidonWidth)
		for j := 0; j < poseidonWidth; j++ {
			m := c.MDS[i][j].BigInt(new(big.Int))
			terms[j] = api.Mul(m, state[j])
		}
		mixed[i] = api.Add(terms[0], terms[1], terms[2:]...)
	}
	*state = mixed
}

// sboxGadget computes x^5 with three multiplications.
func sboxGadget(api frontend.API, x frontend.Variable) frontend.Variable {
	x2 := api.Mul(x, x)
	x4 := api.Mul(x2, x2)
	return api.Mul(x4, x)
}
