package treehash

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prooflab/treehash/domain"
)

func poseidonBlock(v uint64) []byte {
	var e fr.Element
	e.SetUint64(v)
	d := domain.FromElement(&e)
	return d.Bytes()
}

func TestPoseidonLeafDeterministic(t *testing.T) {
	h := Poseidon{}
	data := poseidonBlock(7)

	a, err := h.HashLeaf(data)
	require.NoError(t, err)
	b, err := h.HashLeaf(data)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.True(t, a.InField())
}

func TestPoseidonLeafValidation(t *testing.T) {
	h := Poseidon{}

	_, err := h.HashLeaf(nil)
	assert.ErrorIs(t, err, ErrEmptyLeaf)

	_, err = h.HashLeaf(make([]byte, 33))
	assert.ErrorIs(t, err, ErrLeafBlockSize)

	// a block at the modulus is rejected, not reduced
	outOfRange := fr.Modulus().FillBytes(make([]byte, 32))
	_, err = h.HashLeaf(outOfRange)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
}

func TestPoseidonLeafNodeSeparation(t *testing.T) {
	h := Poseidon{}

	// a leaf whose two blocks equal two child digests must still hash
	// differently from the node over those digests
	left, err := h.HashLeaf(poseidonBlock(1))
	require.NoError(t, err)
	right, err := h.HashLeaf(poseidonBlock(2))
	require.NoError(t, err)

	leaf, err := h.HashLeaf(append(left.Bytes(), right.Bytes()...))
	require.NoError(t, err)
	for height := uint64(0); height <= 4; height++ {
		node, err := h.HashNode(left, right, height)
		require.NoError(t, err)
		assert.False(t, leaf.Equal(node), "height %d", height)
	}
}

func TestPoseidonHeightSeparation(t *testing.T) {
	h := Poseidon{}
	left, err := h.HashLeaf(poseidonBlock(1))
	require.NoError(t, err)
	right, err := h.HashLeaf(poseidonBlock(2))
	require.NoError(t, err)

	seen := make(map[domain.Domain]uint64)
	for height := uint64(0); height <= MaxHeight; height++ {
		node, err := h.HashNode(left, right, height)
		require.NoError(t, err)
		if prev, ok := seen[node]; ok {
			t.Fatalf("node hash collision between heights %d and %d", prev, height)
		}
		seen[node] = height
	}

	_, err = h.HashNode(left, right, MaxHeight+1)
	assert.ErrorIs(t, err, ErrHeightRange)
}

func TestPoseidonBlockOrderMatters(t *testing.T) {
	h := Poseidon{}
	ab, err := h.HashLeaf(append(poseidonBlock(1), poseidonBlock(2)...))
	require.NoError(t, err)
	ba, err := h.HashLeaf(append(poseidonBlock(2), poseidonBlock(1)...))
	require.NoError(t, err)
	assert.False(t, ab.Equal(ba))
}

func TestPoseidonPaddingSeparation(t *testing.T) {
	// zero-padded one-block leaf vs two-block all-zero leaf: the closing
	// block count keeps them apart
	h := Poseidon{}
	one, err := h.HashLeaf(make([]byte, 32))
	require.NoError(t, err)
	two, err := h.HashLeaf(make([]byte, 64))
	require.NoError(t, err)
	assert.False(t, one.Equal(two))
}

func TestPoseidonEngineLifecycle(t *testing.T) {
	e := Poseidon{}.New()

	_, err := e.Write(poseidonBlock(3))
	require.NoError(t, err)

	first, err := e.Digest()
	require.NoError(t, err)
	again, err := e.Digest()
	require.NoError(t, err)
	assert.True(t, first.Equal(again))

	_, err = e.Write([]byte{1})
	assert.ErrorIs(t, err, ErrFinalized)

	// Reset makes the engine reusable and the result reproducible
	e.Reset()
	_, err = e.Write(poseidonBlock(3))
	require.NoError(t, err)
	second, err := e.Digest()
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestPoseidonEngineRejectsOutOfRangeBlock(t *testing.T) {
	outOfRange := fr.Modulus().FillBytes(make([]byte, 32))

	e := Poseidon{}.New()
	n, err := e.Write(outOfRange)
	require.ErrorIs(t, err, domain.ErrOutOfRange)
	assert.Zero(t, n)
	require.NotPanics(t, func() { e.Sum(nil) })

	// the rejected block was never absorbed: a fresh engine fed only the
	// valid data agrees with one that saw the rejected write first
	e.Reset()
	_, err = e.Write(outOfRange)
	require.ErrorIs(t, err, domain.ErrOutOfRange)
	_, err = e.Write(poseidonBlock(3))
	require.NoError(t, err)
	got, err := e.Digest()
	require.NoError(t, err)

	clean := Poseidon{}.New()
	_, err = clean.Write(poseidonBlock(3))
	require.NoError(t, err)
	want, err := clean.Digest()
	require.NoError(t, err)
	assert.True(t, got.Equal(want))
}

func TestPoseidonEngineRejectsBlockCompletedAcrossWrites(t *testing.T) {
	outOfRange := fr.Modulus().FillBytes(make([]byte, 32))

	e := Poseidon{}.New()
	_, err := e.Write(outOfRange[:31])
	require.NoError(t, err)

	// the byte completing the out-of-range block is refused, the buffered
	// prefix stays absorbed
	n, err := e.Write(outOfRange[31:])
	require.ErrorIs(t, err, domain.ErrOutOfRange)
	assert.Zero(t, n)

	got, err := e.Digest()
	require.NoError(t, err)

	clean := Poseidon{}.New()
	_, err = clean.Write(outOfRange[:31])
	require.NoError(t, err)
	want, err := clean.Digest()
	require.NoError(t, err)
	assert.True(t, got.Equal(want))
}

func TestPoseidonEngineRawTailPadding(t *testing.T) {
	e := Poseidon{}.New()
	_, err := e.Write([]byte{0xff, 0xee, 0xdd})
	require.NoError(t, err)
	short, err := e.Digest()
	require.NoError(t, err)

	// same bytes split across writes give the same digest
	e.Reset()
	_, err = e.Write([]byte{0xff})
	require.NoError(t, err)
	_, err = e.Write([]byte{0xee, 0xdd})
	require.NoError(t, err)
	joined, err := e.Digest()
	require.NoError(t, err)
	assert.True(t, short.Equal(joined))
}

func TestPoseidonRawVsLeafSeparation(t *testing.T) {
	data := poseidonBlock(9)

	e := Poseidon{}.New()
	_, err := e.Write(data)
	require.NoError(t, err)
	raw, err := e.Digest()
	require.NoError(t, err)

	leaf, err := Poseidon{}.HashLeaf(data)
	require.NoError(t, err)
	assert.False(t, raw.Equal(leaf))
}

func TestPoseidonSumMatchesDigest(t *testing.T) {
	e := Poseidon{}.New()
	_, err := e.Write(poseidonBlock(5))
	require.NoError(t, err)
	d, err := e.Digest()
	require.NoError(t, err)
	assert.Equal(t, d.Bytes(), e.Sum(nil))
	assert.Equal(t, domain.Size, e.Size())
}
