// Package u32 implements 32-bit word arithmetic over circuit variables for
// the bit-level hash gadgets. A word is 32 boolean variables, least
// significant bit first; rotations and shifts are free rewirings, xor and
// selection cost one constraint per bit, and modular addition packs the bits
// into a field element, adds, and decomposes again.
package u32

import "github.com/consensys/gnark/frontend"

// Bits is the number of bits in a word.
const Bits = 32

// Word is one 32-bit value, bit 0 the least significant.
type Word []frontend.Variable

// Constant builds a word from a compile-time value.
func Constant(v uint32) Word {
	w := make(Word, Bits)
	for i := 0; i < Bits; i++ {
		w[i] = int((v >> uint(i)) & 1)
	}
	return w
}

// FromBits wraps an existing bit slice; it must have exactly Bits entries.
func FromBits(bits []frontend.Variable) Word {
	if len(bits) != Bits {
		panic("u32: word needs exactly 32 bits")
	}
	return Word(bits)
}

// Pack recomposes the word into one field variable.
func Pack(api frontend.API, w Word) frontend.Variable {
	return api.FromBinary(w...)
}

// Xor computes the bitwise xor of two or more words.
func Xor(api frontend.API, a, b Word, more ...Word) Word {
	out := make(Word, Bits)
	for i := 0; i < Bits; i++ {
		out[i] = api.Xor(a[i], b[i])
		for _, m := range more {
			out[i] = api.Xor(out[i], m[i])
		}
	}
	return out
}

// Not flips every bit.
func Not(api frontend.API, a Word) Word {
	out := make(Word, Bits)
	for i := 0; i < Bits; i++ {
		out[i] = api.Sub(1, a[i])
	}
	return out
}

// RotR rotates right by n bit positions. Pure rewiring, no constraints.
func RotR(a Word, n int) Word {
	out := make(Word, Bits)
	for i := 0; i < Bits; i++ {
		out[i] = a[(i+n)%Bits]
	}
	return out
}

// ShR shifts right by n, filling with zeros.
func ShR(a Word, n int) Word {
	out := make(Word, Bits)
	for i := 0; i < Bits; i++ {
		if i+n < Bits {
			out[i] = a[i+n]
		} else {
			out[i] = 0
		}
	}
	return out
}

// Add sums the words modulo 2^32: pack, add in the field, decompose wide
// enough to hold every carry, keep the low 32 bits.
func Add(api frontend.API, ws ...Word) Word {
	if len(ws) == 1 {
		return ws[0]
	}
	packed := make([]frontend.Variable, len(ws))
	for i, w := range ws {
		packed[i] = Pack(api, w)
	}
	sum := api.Add(packed[0], packed[1], packed[2:]...)

	carry := 0
	for n := len(ws) - 1; n > 0; n >>= 1 {
		carry++
	}
	bits := api.ToBinary(sum, Bits+carry)
	return Word(bits[:Bits])
}

// Ch is the SHA-256 choice function: per bit, e selects f or g.
func Ch(api frontend.API, e, f, g Word) Word {
	out := make(Word, Bits)
	for i := 0; i < Bits; i++ {
		out[i] = api.Select(e[i], f[i], g[i])
	}
	return out
}

// Maj is the SHA-256 majority function: per bit, a selects b|c or b&c.
func Maj(api frontend.API, a, b, c Word) Word {
	out := make(Word, Bits)
	for i := 0; i < Bits; i++ {
		out[i] = api.Select(a[i], api.Or(b[i], c[i]), api.And(b[i], c[i]))
	}
	return out
}
