package treehash

import (
	"encoding/binary"
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/prooflab/treehash/internal/u32"
)

// SHA-256 constants, FIPS 180-4: fractional parts of the square roots
// (initial state) and cube roots (round constants) of the first primes.
var sha256Init = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

var sha256K = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5,
	0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3,
	0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc,
	0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7,
	0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13,
	0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3,
	0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5,
	0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208,
	0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// LeafCircuit computes the SHA-256 leaf hash in-circuit: the preimage bytes
// are reassembled from the data block variables, padded and compressed with
// the full round schedule, and the digest is trimmed exactly like the native
// path. Costly by construction; the Poseidon binding exists so circuits
// rarely have to pay this.
func (Sha256) LeafCircuit(api frontend.API, data []frontend.Variable) (frontend.Variable, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty leaf", ErrConstraint)
	}
	return sha256Gadget(api, leafPreimageBytes(api, data)), nil
}

// NodeCircuit computes the SHA-256 node hash in-circuit over the same
// tagged, height-stamped preimage NodeHash builds natively.
func (Sha256) NodeCircuit(api frontend.API, left, right frontend.Variable, height uint64) (frontend.Variable, error) {
	if height > MaxHeight {
		return nil, fmt.Errorf("%w: height %d", ErrConstraint, height)
	}
	return sha256Gadget(api, nodePreimageBytes(api, left, right, height)), nil
}

// sha256Gadget hashes the message bytes and returns the trimmed digest as a
// field variable. The message length is a circuit-compile-time constant, so
// the Merkle-Damgard padding is emitted as constant bytes.
func sha256Gadget(api frontend.API, msg []circByte) frontend.Variable {
	msgLen := len(msg)

	zeros := (56 - (msgLen+1)%64 + 64) % 64
	padded := make([]circByte, 0, msgLen+1+zeros+8)
	padded = append(padded, msg...)
	padded = append(padded, constByte(0x80))
	for i := 0; i < zeros; i++ {
		padded = append(padded, constByte(0))
	}
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(msgLen)*8)
	padded = append(padded, constBytes(length[:])...)

	words := bytesToWordsBE(padded)

	h := make([]u32.Word, 8)
	for i, v := range sha256Init {
		h[i] = u32.Constant(v)
	}
	for block := 0; block < len(words)/16; block++ {
		sha256Block(api, h, words[block*16:block*16+16])
	}
	return bytesToField(api, wordsToBytesBE(h))
}

// sha256Block runs the 64-round compression over one 16-word block, adding
// the result into the running state in place.
func sha256Block(api frontend.API, h []u32.Word, m []u32.Word) {
	w := make([]u32.Word, 64)
	copy(w, m)
	for i := 16; i < 64; i++ {
		s0 := u32.Xor(api, u32.RotR(w[i-15], 7), u32.RotR(w[i-15], 18), u32.ShR(w[i-15], 3))
		s1 := u32.Xor(api, u32.RotR(w[i-2], 17), u32.RotR(w[i-2], 19), u32.ShR(w[i-2], 10))
		w[i] = u32.Add(api, w[i-16], s0, w[i-7], s1)
	}

	a, b, c, d := h[0], h[1], h[2], h[3]
	e, f, g, hh := h[4], h[5], h[6], h[7]
	for i := 0; i < 64; i++ {
		S1 := u32.Xor(api, u32.RotR(e, 6), u32.RotR(e, 11), u32.RotR(e, 25))
		t1 := u32.Add(api, hh, S1, u32.Ch(api, e, f, g), u32.Constant(sha256K[i]), w[i])
		S0 := u32.Xor(api, u32.RotR(a, 2), u32.RotR(a, 13), u32.RotR(a, 22))
		t2 := u32.Add(api, S0, u32.Maj(api, a, b, c))

		hh, g, f = g, f, e
		e = u32.Add(api, d, t1)
		d, c, b = c, b, a
		a = u32.Add(api, t1, t2)
	}

	h[0] = u32.Add(api, h[0], a)
	h[1] = u32.Add(api, h[1], b)
	h[2] = u32.Add(api, h[2], c)
	h[3] = u32.Add(api, h[3], d)
	h[4] = u32.Add(api, h[4], e)
	h[5] = u32.Add(api, h[5], f)
	h[6] = u32.Add(api, h[6], g)
	h[7] = u32.Add(api, h[7], hh)
}
