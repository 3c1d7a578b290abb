package treehash

import (
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/prooflab/treehash/internal/u32"
)

// BLAKE2s parameters, RFC 7693. The IV is shared with SHA-256; the first
// state word is xored with the parameter block for an unkeyed, sequential
// 32-byte digest (digest length 32, fanout 1, depth 1).
const blake2sParam = 0x01010020

var blake2sSigma = [10][16]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{14, 10, 4, 8, 9, 15, 13, 6, 1, 12, 0, 2, 11, 7, 5, 3},
	{11, 8, 12, 0, 5, 2, 15, 13, 10, 14, 3, 6, 7, 1, 9, 4},
	{7, 9, 3, 1, 13, 12, 11, 14, 2, 6, 5, 10, 4, 0, 15, 8},
	{9, 0, 5, 7, 2, 4, 10, 15, 14, 1, 11, 12, 6, 8, 3, 13},
	{2, 12, 6, 10, 0, 11, 8, 3, 4, 13, 7, 5, 15, 14, 1, 9},
	{12, 5, 1, 15, 14, 13, 4, 10, 0, 7, 6, 3, 9, 2, 8, 11},
	{13, 11, 7, 14, 12, 1, 3, 9, 5, 0, 15, 4, 8, 6, 2, 10},
	{6, 15, 14, 9, 11, 3, 0, 8, 12, 2, 13, 7, 1, 4, 10, 5},
	{10, 2, 8, 4, 7, 6, 1, 5, 15, 11, 9, 14, 3, 12, 13, 0},
}

// LeafCircuit computes the BLAKE2s leaf hash in-circuit, over the identical
// tagged preimage the native engine hashes.
func (Blake2s) LeafCircuit(api frontend.API, data []frontend.Variable) (frontend.Variable, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty leaf", ErrConstraint)
	}
	return blake2sGadget(api, leafPreimageBytes(api, data)), nil
}

// NodeCircuit computes the BLAKE2s node hash in-circuit.
func (Blake2s) NodeCircuit(api frontend.API, left, right frontend.Variable, height uint64) (frontend.Variable, error) {
	if height > MaxHeight {
		return nil, fmt.Errorf("%w: height %d", ErrConstraint, height)
	}
	return blake2sGadget(api, nodePreimageBytes(api, left, right, height)), nil
}

// blake2sGadget hashes the message bytes and returns the trimmed digest as a
// field variable. The message length is a circuit-compile-time constant;
// block layout, counters and the final flag are fixed accordingly.
func blake2sGadget(api frontend.API, msg []circByte) frontend.Variable {
	h := make([]u32.Word, 8)
	for i, v := range sha256Init {
		h[i] = u32.Constant(v)
	}
	h[0] = u32.Xor(api, h[0], u32.Constant(blake2sParam))

	msgLen := len(msg)
	blocks := (msgLen + 63) / 64
	if blocks == 0 {
		blocks = 1
	}
	for i := 0; i < blocks; i++ {
		final := i == blocks-1
		start := i * 64
		end := start + 64
		var t uint64
		block := make([]circByte, 0, 64)
		if final {
			t = uint64(msgLen)
			block = append(block, msg[start:]...)
			for len(block) < 64 {
				block = append(block, constByte(0))
			}
		} else {
			t = uint64(end)
			block = append(block, msg[start:end]...)
		}
		blake2sBlock(api, h, bytesToWordsLE(block), t, final)
	}

	return bytesToField(api, wordsToBytesLE(h))
}

// blake2sBlock is the F compression function over one 16-word block.
func blake2sBlock(api frontend.API, h []u32.Word, m []u32.Word, t uint64, final bool) {
	v := make([]u32.Word, 16)
	copy(v, h)
	for i := 0; i < 8; i++ {
		v[8+i] = u32.Constant(sha256Init[i])
	}
	v[12] = u32.Xor(api, v[12], u32.Constant(uint32(t)))
	v[13] = u32.Xor(api, v[13], u32.Constant(uint32(t>>32)))
	if final {
		v[14] = u32.Xor(api, v[14], u32.Constant(0xffffffff))
	}

	for r := 0; r < 10; r++ {
		s := &blake2sSigma[r]
		blake2sG(api, v, 0, 4, 8, 12, m[s[0]], m[s[1]])
		blake2sG(api, v, 1, 5, 9, 13, m[s[2]], m[s[3]])
		blake2sG(api, v, 2, 6, 10, 14, m[s[4]], m[s[5]])
		blake2sG(api, v, 3, 7, 11, 15, m[s[6]], m[s[7]])
		blake2sG(api, v, 0, 5, 10, 15, m[s[8]], m[s[9]])
		blake2sG(api, v, 1, 6, 11, 12, m[s[10]], m[s[11]])
		blake2sG(api, v, 2, 7, 8, 13, m[s[12]], m[s[13]])
		blake2sG(api, v, 3, 4, 9, 14, m[s[14]], m[s[15]])
	}

	for i := 0; i < 8; i++ {
		h[i] = u32.Xor(api, h[i], v[i], v[8+i])
	}
}

func blake2sG(api frontend.API, v []u32.Word, a, b, c, d int, x, y u32.Word) {
	v[a] = u32.Add(api, v[a], v[b], x)
	v[d] = u32.RotR(u32.Xor(api, v[d], v[a]), 16)
	v[c] = u32.Add(api, v[c], v[d])
	v[b] = u32.RotR(u32.Xor(api, v[b], v[c]), 12)
	v[a] = u32.Add(api, v[a], v[b], y)
	v[d] = u32.RotR(u32.Xor(api, v[d], v[a]), 8)
	v[c] = u32.Add(api, v[c], v[d])
	v[b] = u32.RotR(u32.Xor(api, v[b], v[c]), 7)
}
