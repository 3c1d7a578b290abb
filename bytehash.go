package treehash

import (
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/prooflab/treehash/domain"
)

// trimMask clears the top two bits of the leading byte, capping digests at
// 2^254 - 1, strictly below the BLS12-381 scalar field modulus. Byte-hash
// digests are trimmed this way so that every Domain they produce has a valid
// field view; the two dropped bits are the price of interoperating with the
// arithmetic circuits.
const trimMask = 0x3f

func trimToField(sum []byte) domain.Domain {
	var d domain.Domain
	copy(d[:], sum)
	d[0] &= trimMask
	return d
}

// byteEngine adapts a conventional hash.Hash to the Engine contract: tagged
// leaf/node preimages, fr-trimmed Domain digests, and explicit finalization.
type byteEngine struct {
	inner     hash.Hash
	finalized bool
	raw       []byte
}

var _ Engine = (*byteEngine)(nil)

func (e *byteEngine) Reset() {
	e.inner.Reset()
	e.finalized = false
	e.raw = nil
}

func (e *byteEngine) Size() int      { return e.inner.Size() }
func (e *byteEngine) BlockSize() int { return e.inner.BlockSize() }

func (e *byteEngine) Write(p []byte) (int, error) {
	if e.finalized {
		return 0, ErrFinalized
	}
	return e.inner.Write(p)
}

func (e *byteEngine) finalize() []byte {
	if !e.finalized {
		e.raw = e.inner.Sum(nil)
		e.finalized = true
	}
	return e.raw
}

// Sum returns the conventional, untrimmed digest of the written data.
func (e *byteEngine) Sum(b []byte) []byte {
	return append(b, e.finalize()...)
}

func (e *byteEngine) Digest() (domain.Domain, error) {
	return trimToField(e.finalize()), nil
}

// LeafHash hashes LeafPrefix || data. Unlike the algebraic engine, any byte
// string is a valid leaf here.
func (e *byteEngine) LeafHash(data []byte) (domain.Domain, error) {
	e.Reset()
	e.inner.Write([]byte{LeafPrefix})
	e.inner.Write(data)
	return e.Digest()
}

// NodeHash hashes NodePrefix || height || left || right, the height as eight
// big-endian bytes.
func (e *byteEngine) NodeHash(left, right domain.Domain, height uint64) (domain.Domain, error) {
	e.Reset()
	if height > MaxHeight {
		return domain.Domain{}, fmt.Errorf("%w: %d", ErrHeightRange, height)
	}
	var h [8]byte
	binary.BigEndian.PutUint64(h[:], height)
	e.inner.Write([]byte{NodePrefix})
	e.inner.Write(h[:])
	e.inner.Write(left[:])
	e.inner.Write(right[:])
	return e.Digest()
}

// nodePreimage mirrors NodeHash's preimage layout; the circuit gadgets build
// the identical byte sequence from circuit variables.
const nodePreimageLen = 1 + 8 + 2*domain.Size
