package treehash

import (
	"errors"
	"io"

	"github.com/consensys/gnark/frontend"

	"github.com/prooflab/treehash/domain"
)

const (
	// LeafPrefix and NodePrefix are the domain separation tags the byte
	// hashes mix into every preimage, so that a leaf hash and an inner-node
	// hash can never collide even over identical raw bytes.
	LeafPrefix = 0x00
	NodePrefix = 0x01

	// MaxHeight bounds the tree heights NodeHash accepts.
	MaxHeight = 64

	// BlockSize is the width of one leaf data block: the canonical
	// big-endian encoding of one field element.
	BlockSize = domain.Size
)

var (
	ErrFinalized     = errors.New("engine is finalized; Reset before writing")
	ErrHeightRange   = errors.New("tree height out of range")
	ErrLeafBlockSize = errors.New("leaf data is not a whole number of blocks")
	ErrEmptyLeaf     = errors.New("leaf data is empty")
	ErrConstraint    = errors.New("constraint system rejected gadget")
)

// Engine is the stateful accumulator behind one hash algorithm. An engine is
// a single-computation value: create one (or Reset a used one), absorb input
// with Write, then extract the digest. Engines hold no synchronization;
// concurrent hashing means one engine per goroutine.
//
// After Sum or Digest the engine is finalized: further Writes fail with
// ErrFinalized and repeated digest queries return the same value. Write may
// also reject invalid input outright (the algebraic engine refuses blocks
// outside the field), so finalization itself never fails. Reset returns the
// engine to its initial state without reallocation.
type Engine interface {
	io.Writer

	Reset()

	// Size returns the number of bytes of a digest, BlockSize the
	// algorithm's underlying block size, as in hash.Hash.
	Size() int
	BlockSize() int

	// Sum finalizes the engine and appends the raw digest of everything
	// written so far to b. For the byte hashes this is the conventional,
	// untrimmed digest; Digest is the field-safe form.
	Sum(b []byte) []byte

	// Digest finalizes the engine and returns the written data's digest as
	// a Domain, guaranteed to be a valid field element.
	Digest() (domain.Domain, error)

	// LeafHash resets the engine and computes the domain-separated hash of
	// one leaf's content.
	LeafHash(data []byte) (domain.Domain, error)

	// NodeHash resets the engine and computes the domain-separated hash of
	// two child digests at the given tree height. Identical children at
	// different heights produce different parents.
	NodeHash(left, right domain.Domain, height uint64) (domain.Domain, error)
}

// Hasher binds one digest domain and one engine together with the in-circuit
// equivalents of leaf and node hashing. Bindings are stateless; tree and
// circuit code is written generically over Hasher and instantiated with one
// concrete binding per build.
//
// The circuit entry points receive inputs as allocated circuit variables:
// one variable per 32-byte big-endian leaf data block, and the field-element
// view of each child digest. For every concrete input, the value assigned to
// the returned variable equals the corresponding native hash converted with
// Domain.Element. That equivalence is the contract the gadgets exist to
// uphold; gadget construction failures surface as ErrConstraint.
type Hasher interface {
	// Name identifies the algorithm, e.g. for test output.
	Name() string

	// New returns a fresh engine for one hash computation.
	New() Engine

	HashLeaf(data []byte) (domain.Domain, error)
	HashNode(left, right domain.Domain, height uint64) (domain.Domain, error)

	LeafCircuit(api frontend.API, data []frontend.Variable) (frontend.Variable, error)
	NodeCircuit(api frontend.API, left, right frontend.Variable, height uint64) (frontend.Variable, error)
}
