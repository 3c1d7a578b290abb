package treehash

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/prooflab/treehash/domain"
)

// Separation tags occupy disjoint ranges: node tags carry the tree height in
// their low bits and MaxHeight keeps them well away from the other tags.
const (
	tagLeaf = uint64(1) << 16
	tagNode = uint64(2) << 16
	tagRaw  = uint64(3) << 16
)

// Poseidon is the algebraic hasher binding. Inputs are interpreted as field
// elements and digests are field elements, so leaf and node hashing cost a
// couple of permutations in-circuit instead of the thousands of constraints
// a bit-oriented hash needs. This is the binding proof pipelines use unless
// they must match an external byte-hash commitment.
type Poseidon struct{}

var _ Hasher = Poseidon{}

func (Poseidon) Name() string { return "poseidon" }

func (Poseidon) New() Engine {
	return &poseidonEngine{}
}

func (p Poseidon) HashLeaf(data []byte) (domain.Domain, error) {
	return p.New().LeafHash(data)
}

func (p Poseidon) HashNode(left, right domain.Domain, height uint64) (domain.Domain, error) {
	return p.New().NodeHash(left, right, height)
}

// permute applies the full Poseidon round schedule in place: per round, add
// constants, apply the S-box (all lanes in full rounds, lane 0 only in
// partial rounds), then mix through the MDS matrix.
func (c *PoseidonConstants) permute(state *[poseidonWidth]fr.Element) {
	half := poseidonFullRounds / 2
	round := 0
	for i := 0; i < half; i++ {
		c.applyRound(state, round, true)
		round++
	}
	for i := 0; i < poseidonPartialRounds; i++ {
		c.applyRound(state, round, false)
		round++
	}
	for i := 0; i < half; i++ {
		c.applyRound(state, round, true)
		round++
	}
}

func (c *PoseidonConstants) applyRound(state *[poseidonWidth]fr.Element, round int, full bool) {
	for j := 0; j < poseidonWidth; j++ {
		state[j].Add(&state[j], &c.RoundConstants[round*poseidonWidth+j])
	}
	if full {
		for j := 0; j < poseidonWidth; j++ {
			sbox(&state[j])
		}
	} else {
		sbox(&state[0])
	}

	var mixed [poseidonWidth]fr.Element
	for i := 0; i < poseidonWidth; i++ {
		var term fr.Element
		for j := 0; j < poseidonWidth; j++ {
			term.Mul(&c.MDS[i][j], &state[j])
			mixed[i].Add(&mixed[i], &term)
		}
	}
	*state = mixed
}

// sbox computes x^5.
func sbox(x *fr.Element) {
	var x4 fr.Element
	x4.Square(x)
	x4.Square(&x4)
	x.Mul(&x4, x)
}

// compress is the 2-to-1 primitive every Poseidon operation is built from:
// the separation tag seeds the capacity lane, the operands fill the rate,
// and one permutation later lane 1 is the digest.
func poseidonCompress(tag uint64, a, b *fr.Element) fr.Element {
	c := PoseidonParams()
	var state [poseidonWidth]fr.Element
	state[0].SetUint64(tag)
	state[1].Set(a)
	state[2].Set(b)
	c.permute(&state)
	return state[1]
}

// poseidonFold chains compress over a block sequence and closes with the
// block count, so that zero-padded and genuinely-zero inputs stay distinct.
func poseidonFold(tag uint64, blocks []fr.Element) fr.Element {
	var acc fr.Element
	for i := range blocks {
		acc = poseidonCompress(tag, &acc, &blocks[i])
	}
	var count fr.Element
	count.SetUint64(uint64(len(blocks)))
	return poseidonCompress(tag, &acc, &count)
}

// leafBlocks splits strict leaf data into field elements: the data must be a
// whole number of 32-byte big-endian blocks, each below the field modulus.
func leafBlocks(data []byte) ([]fr.Element, error) {
	if len(data) == 0 {
		return nil, ErrEmptyLeaf
	}
	if len(data)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrLeafBlockSize, len(data))
	}
	blocks := make([]fr.Element, len(data)/BlockSize)
	for i := range blocks {
		d, err := domain.FromBytes(data[i*BlockSize : (i+1)*BlockSize])
		if err != nil {
			return nil, err
		}
		blocks[i], err = d.Element()
		if err != nil {
			return nil, fmt.Errorf("leaf block %d: %w", i, err)
		}
	}
	return blocks, nil
}

// poseidonEngine absorbs raw bytes for the arbitrary-length Sum/Digest path
// and serves LeafHash/NodeHash directly on field elements. Whole 32-byte
// blocks are validated as they complete, so by the time anything finalizes
// every absorbed block is a field element and Digest cannot fail.
type poseidonEngine struct {
	blocks    []fr.Element
	tail      []byte
	finalized bool
	digest    domain.Domain
}

var _ Engine = (*poseidonEngine)(nil)

func (e *poseidonEngine) Reset() {
	e.blocks = e.blocks[:0]
	e.tail = e.tail[:0]
	e.finalized = false
	e.digest = domain.Domain{}
}

func (e *poseidonEngine) Size() int { return domain.Size }

// BlockSize is the rate of the sponge in bytes: two field elements.
func (e *poseidonEngine) BlockSize() int { return 2 * BlockSize }

// Write absorbs p. Each completed 32-byte block is checked against the field
// modulus immediately; an out-of-range block is rejected here, with the bytes
// that would have completed it left unconsumed, and never reaches Digest.
func (e *poseidonEngine) Write(p []byte) (int, error) {
	if e.finalized {
		return 0, ErrFinalized
	}
	written := 0
	for len(p) > 0 {
		n := min(BlockSize-len(e.tail), len(p))
		e.tail = append(e.tail, p[:n]...)
		p = p[n:]
		if len(e.tail) < BlockSize {
			written += n
			continue
		}
		d, _ := domain.FromBytes(e.tail)
		el, err := d.Element()
		if err != nil {
			e.tail = e.tail[:BlockSize-n]
			return written, fmt.Errorf("input block %d: %w", len(e.blocks), err)
		}
		e.blocks = append(e.blocks, el)
		e.tail = e.tail[:0]
		written += n
	}
	return written, nil
}

// Digest folds everything written so far under the raw tag. A trailing
// partial block is interpreted as a big-endian integer, which keeps it below
// the modulus; whole blocks were already validated by Write.
func (e *poseidonEngine) Digest() (domain.Domain, error) {
	if !e.finalized {
		blocks := e.blocks
		if len(e.tail) > 0 {
			var el fr.Element
			el.SetBigInt(new(big.Int).SetBytes(e.tail))
			blocks = append(blocks, el)
		}
		out := poseidonFold(tagRaw, blocks)
		e.digest = domain.FromElement(&out)
		e.finalized = true
	}
	return e.digest, nil
}

func (e *poseidonEngine) Sum(b []byte) []byte {
	d, _ := e.Digest()
	return append(b, d[:]...)
}

func (e *poseidonEngine) LeafHash(data []byte) (domain.Domain, error) {
	e.Reset()
	blocks, err := leafBlocks(data)
	if err != nil {
		return domain.Domain{}, err
	}
	out := poseidonFold(tagLeaf, blocks)
	e.finalized = true
	e.digest = domain.FromElement(&out)
	return e.digest, nil
}

func (e *poseidonEngine) NodeHash(left, right domain.Domain, height uint64) (domain.Domain, error) {
	e.Reset()
	if height > MaxHeight {
		return domain.Domain{}, fmt.Errorf("%w: %d", ErrHeightRange, height)
	}
	l, err := left.Element()
	if err != nil {
		return domain.Domain{}, fmt.Errorf("left child: %w", err)
	}
	r, err := right.Element()
	if err != nil {
		return domain.Domain{}, fmt.Errorf("right child: %w", err)
	}
	out := poseidonCompress(tagNode+height, &l, &r)
	e.finalized = true
	e.digest = domain.FromElement(&out)
	return e.digest, nil
}
