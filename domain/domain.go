package domain

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Size is the fixed byte width of every digest, independent of the
// algorithm that produced it.
const Size = 32

var (
	ErrInvalidLength = errors.New("invalid digest length")
	ErrOutOfRange    = errors.New("digest exceeds field modulus")
)

// modulus is read once; fr.Modulus allocates a fresh big.Int per call.
var modulus = fr.Modulus()

// Domain is a single hash digest. The canonical form is a fixed-width
// big-endian byte array; the same value can be viewed as an element of the
// BLS12-381 scalar field via Element, provided it lies below the field
// modulus. Both views always describe the same underlying digest.
//
// Domain is a plain value type: it is comparable with ==, safe to copy and
// to use as a map key, and ordered by Cmp over the canonical bytes.
type Domain [Size]byte

// FromBytes decodes a digest from its canonical fixed-width encoding.
func FromBytes(buf []byte) (Domain, error) {
	var d Domain
	if len(buf) != Size {
		return d, fmt.Errorf("%w: got %d, want %d", ErrInvalidLength, len(buf), Size)
	}
	copy(d[:], buf)
	return d, nil
}

// FromElement builds the digest whose canonical bytes are the regular-form
// big-endian encoding of e. The conversion is total: every field element is
// a valid digest.
func FromElement(e *fr.Element) Domain {
	return Domain(e.Bytes())
}

// Bytes returns the canonical fixed-width encoding.
func (d Domain) Bytes() []byte {
	return append([]byte(nil), d[:]...)
}

// Array returns the canonical encoding as a fixed-width array.
func (d Domain) Array() [Size]byte {
	return d
}

// Element interprets the canonical bytes as a big-endian integer and returns
// the corresponding field element. It fails with ErrOutOfRange if the value
// is not below the field modulus; it never reduces silently, since a wrapped
// value would no longer match the in-circuit view of the same digest.
func (d Domain) Element() (fr.Element, error) {
	var e fr.Element
	v := new(big.Int).SetBytes(d[:])
	if v.Cmp(modulus) >= 0 {
		return e, fmt.Errorf("%w: %s", ErrOutOfRange, d)
	}
	e.SetBigInt(v)
	return e, nil
}

// BigInt returns the canonical bytes interpreted as a big-endian integer.
func (d Domain) BigInt() *big.Int {
	return new(big.Int).SetBytes(d[:])
}

// InField reports whether the digest is a valid field element.
func (d Domain) InField() bool {
	return d.BigInt().Cmp(modulus) < 0
}

func (d Domain) Equal(other Domain) bool {
	return d == other
}

// Cmp orders digests by their canonical bytes, which coincides with the
// numeric order of their big-endian integer values.
func (d Domain) Cmp(other Domain) int {
	return bytes.Compare(d[:], other[:])
}

func (d Domain) String() string {
	return hex.EncodeToString(d[:])
}
