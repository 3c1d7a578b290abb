package treehash

import (
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/prooflab/treehash/domain"
)

// Proof is a Merkle inclusion proof: the sibling digests along the path from
// one leaf to the root, lowest level first.
type Proof struct {
	Index    int
	Siblings []domain.Domain
}

// Prove builds the inclusion proof for the leaf at index. Odd layers
// duplicate their last node, so a rightmost leaf can be its own sibling.
func (t *Tree[H]) Prove(index int) (Proof, error) {
	if err := t.build(); err != nil {
		return Proof{}, err
	}
	if index < 0 || index >= len(t.leafHashes) {
		return Proof{}, fmt.Errorf("%w: %d of %d", ErrIndexRange, index, len(t.leafHashes))
	}

	proof := Proof{Index: index}
	pos := index
	for _, layer := range t.layers[:len(t.layers)-1] {
		sibling := pos ^ 1
		if sibling >= len(layer) {
			sibling = pos
		}
		proof.Siblings = append(proof.Siblings, layer[sibling])
		pos /= 2
	}
	return proof, nil
}

// Verify recomputes the root from the leaf content and the sibling path and
// compares it against the expected root.
func (p Proof) Verify(h Hasher, leafData []byte, root domain.Domain) bool {
	engine := h.New()
	current, err := engine.LeafHash(leafData)
	if err != nil {
		return false
	}
	pos := p.Index
	for height, sibling := range p.Siblings {
		var left, right domain.Domain
		if pos%2 == 0 {
			left, right = current, sibling
		} else {
			left, right = sibling, current
		}
		current, err = engine.NodeHash(left, right, uint64(height))
		if err != nil {
			return false
		}
		pos /= 2
	}
	return current.Equal(root)
}

// VerifyCircuit allocates the constraints recomputing a Merkle root from a
// leaf block, its sibling path and the path direction bits, and returns the
// root variable. pathBits[i] is 1 when the current node is the right child
// at level i. The caller constrains the result against its root variable.
func VerifyCircuit(api frontend.API, h Hasher, leaf frontend.Variable, siblings, pathBits []frontend.Variable) (frontend.Variable, error) {
	if len(siblings) != len(pathBits) {
		return nil, fmt.Errorf("%w: %d siblings, %d path bits", ErrConstraint, len(siblings), len(pathBits))
	}
	current, err := h.LeafCircuit(api, []frontend.Variable{leaf})
	if err != nil {
		return nil, err
	}
	for i, sibling := range siblings {
		api.AssertIsBoolean(pathBits[i])
		left := api.Select(pathBits[i], sibling, current)
		right := api.Select(pathBits[i], current, sibling)
		current, err = h.NodeCircuit(api, left, right, uint64(i))
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}
