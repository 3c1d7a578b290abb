package treehash

import (
	"encoding/binary"

	"github.com/consensys/gnark/frontend"

	"github.com/prooflab/treehash/domain"
	"github.com/prooflab/treehash/internal/u32"
)

// The byte-hash gadgets work on circuit bytes: 8 boolean variables each,
// least significant bit first. Field-element inputs are decomposed into
// their canonical big-endian 32-byte encoding, the same preimage bytes the
// native engines hash, and digests are recomposed after the field trim.

type circByte []frontend.Variable

func constByte(b byte) circByte {
	out := make(circByte, 8)
	for i := 0; i < 8; i++ {
		out[i] = int((b >> uint(i)) & 1)
	}
	return out
}

func constBytes(bs []byte) []circByte {
	out := make([]circByte, len(bs))
	for i, b := range bs {
		out[i] = constByte(b)
	}
	return out
}

// fieldToBytes decomposes a field variable into its 32 canonical big-endian
// bytes. 255 bits cover every scalar-field value; bit 255 is always zero.
func fieldToBytes(api frontend.API, v frontend.Variable) []circByte {
	bits := api.ToBinary(v, 255)
	bits = append(bits, frontend.Variable(0))
	out := make([]circByte, domain.Size)
	for j := 0; j < domain.Size; j++ {
		b := make(circByte, 8)
		for k := 0; k < 8; k++ {
			b[k] = bits[(domain.Size-1-j)*8+k]
		}
		out[j] = b
	}
	return out
}

// bytesToField recomposes a 32-byte digest into its field value, applying
// the same 254-bit trim as trimToField: the top two bits of the leading byte
// are dropped.
func bytesToField(api frontend.API, bs []circByte) frontend.Variable {
	bits := make([]frontend.Variable, 254)
	for j := 0; j < domain.Size; j++ {
		for k := 0; k < 8; k++ {
			idx := (domain.Size-1-j)*8 + k
			if idx < 254 {
				bits[idx] = bs[j][k]
			}
		}
	}
	return api.FromBinary(bits...)
}

// bytesToWordsBE packs bytes into 32-bit words big-endian, as SHA-256 reads
// its message.
func bytesToWordsBE(bs []circByte) []u32.Word {
	words := make([]u32.Word, len(bs)/4)
	for m := range words {
		w := make(u32.Word, u32.Bits)
		for i := 0; i < u32.Bits; i++ {
			w[i] = bs[4*m+3-i/8][i%8]
		}
		words[m] = w
	}
	return words
}

// bytesToWordsLE packs bytes into 32-bit words little-endian, as BLAKE2s
// reads its message.
func bytesToWordsLE(bs []circByte) []u32.Word {
	words := make([]u32.Word, len(bs)/4)
	for m := range words {
		w := make(u32.Word, u32.Bits)
		for i := 0; i < u32.Bits; i++ {
			w[i] = bs[4*m+i/8][i%8]
		}
		words[m] = w
	}
	return words
}

// wordsToBytesBE is the inverse of bytesToWordsBE, used to lay out the
// SHA-256 state words as digest bytes.
func wordsToBytesBE(words []u32.Word) []circByte {
	out := make([]circByte, 4*len(words))
	for m, w := range words {
		for j := 0; j < 4; j++ {
			b := make(circByte, 8)
			for k := 0; k < 8; k++ {
				b[k] = w[(3-j)*8+k]
			}
			out[4*m+j] = b
		}
	}
	return out
}

// wordsToBytesLE lays out BLAKE2s state words as digest bytes.
func wordsToBytesLE(words []u32.Word) []circByte {
	out := make([]circByte, 4*len(words))
	for m, w := range words {
		for j := 0; j < 4; j++ {
			b := make(circByte, 8)
			for k := 0; k < 8; k++ {
				b[k] = w[j*8+k]
			}
			out[4*m+j] = b
		}
	}
	return out
}

// nodePreimageBytes assembles the circuit-side NodeHash preimage:
// NodePrefix || height_be64 || left || right, byte for byte what the native
// byteEngine writes.
func nodePreimageBytes(api frontend.API, left, right frontend.Variable, height uint64) []circByte {
	var h [8]byte
	binary.BigEndian.PutUint64(h[:], height)

	pre := make([]circByte, 0, nodePreimageLen)
	pre = append(pre, constByte(NodePrefix))
	pre = append(pre, constBytes(h[:])...)
	pre = append(pre, fieldToBytes(api, left)...)
	pre = append(pre, fieldToBytes(api, right)...)
	return pre
}

// leafPreimageBytes assembles LeafPrefix || blocks.
func leafPreimageBytes(api frontend.API, data []frontend.Variable) []circByte {
	pre := make([]circByte, 0, 1+len(data)*domain.Size)
	pre = append(pre, constByte(LeafPrefix))
	for _, block := range data {
		pre = append(pre, fieldToBytes(api, block)...)
	}
	return pre
}
