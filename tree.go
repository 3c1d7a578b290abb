package treehash

import (
	"errors"
	"fmt"

	"github.com/prooflab/treehash/domain"
)

var (
	ErrEmptyTree   = errors.New("tree has no leaves")
	ErrIndexRange  = errors.New("leaf index out of range")
	ErrTreeTooDeep = errors.New("tree exceeds maximum height")
)

// Tree is a binary Merkle tree over one hasher binding, the reference
// consumer of the Hasher contract. Leaves are hashed as they are pushed;
// layers are built bottom-up on demand, duplicating the last node of an odd
// layer, with each layer's parents hashed at that layer's height.
//
// The concrete algorithm is fixed at compile time by the type argument:
//
//	t := NewTree(Poseidon{})
type Tree[H Hasher] struct {
	hasher H
	engine Engine

	leafHashes []domain.Domain
	// layers[0] is the leaf-hash layer; filled by build, reset on Push.
	layers [][]domain.Domain
}

func NewTree[H Hasher](h H) *Tree[H] {
	return &Tree[H]{
		hasher: h,
		engine: h.New(),
	}
}

// Push hashes one leaf's content into the tree. A malformed leaf (for the
// algebraic binding: not block-aligned or out of field range) rejects the
// push and leaves the tree unchanged.
func (t *Tree[H]) Push(data []byte) error {
	lh, err := t.engine.LeafHash(data)
	if err != nil {
		return fmt.Errorf("push leaf %d: %w", len(t.leafHashes), err)
	}
	t.leafHashes = append(t.leafHashes, lh)
	t.layers = nil
	return nil
}

// Leaves returns the number of pushed leaves.
func (t *Tree[H]) Leaves() int {
	return len(t.leafHashes)
}

// Root returns the tree's root digest.
func (t *Tree[H]) Root() (domain.Domain, error) {
	if err := t.build(); err != nil {
		return domain.Domain{}, err
	}
	top := t.layers[len(t.layers)-1]
	return top[0], nil
}

func (t *Tree[H]) build() error {
	if len(t.leafHashes) == 0 {
		return ErrEmptyTree
	}
	if t.layers != nil {
		return nil
	}

	layers := [][]domain.Domain{t.leafHashes}
	current := t.leafHashes
	for height := uint64(0); len(current) > 1; height++ {
		if height > MaxHeight {
			return ErrTreeTooDeep
		}
		next := make([]domain.Domain, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			right := current[min(i+1, len(current)-1)]
			parent, err := t.engine.NodeHash(current[i], right, height)
			if err != nil {
				return err
			}
			next = append(next, parent)
		}
		layers = append(layers, next)
		current = next
	}
	t.layers = layers
	return nil
}
