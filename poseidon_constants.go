package treehash

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/crypto/blake2b"
)

// Poseidon parameters over the BLS12-381 scalar field: width 3 (one capacity
// element, two rate elements), x^5 S-box, 8 full and 56 partial rounds.
const (
	poseidonWidth         = 3
	poseidonFullRounds    = 8
	poseidonPartialRounds = 56
	poseidonRounds        = poseidonFullRounds + poseidonPartialRounds

	// poseidonSeed is the public seed all round constants are derived from.
	// Changing it changes every Poseidon digest.
	poseidonSeed = "treehash/poseidon/bls12-381/v1"
)

// PoseidonConstants is the immutable parameter table of the Poseidon
// permutation: the per-round additive constants and the MDS mixing matrix.
// It is derived once per process and shared read-only by all engines and
// gadgets; see PoseidonParams.
type PoseidonConstants struct {
	// RoundConstants holds poseidonWidth constants per round, round-major.
	RoundConstants []fr.Element
	// MDS is a 3x3 Cauchy matrix, invertible by construction.
	MDS [poseidonWidth][poseidonWidth]fr.Element
}

var (
	poseidonOnce  sync.Once
	poseidonTable *PoseidonConstants
)

// PoseidonParams returns the process-wide Poseidon parameter table. The
// first call derives it; every later call, from any goroutine, returns the
// same cached table. A derivation failure panics: there is no degraded mode,
// since a wrong constant set yields a hash with no guarantees at all.
func PoseidonParams() *PoseidonConstants {
	poseidonOnce.Do(func() {
		tbl, err := derivePoseidonConstants(poseidonSeed)
		if err != nil {
			panic(fmt.Sprintf("treehash: poseidon constants derivation: %v", err))
		}
		poseidonTable = tbl
	})
	return poseidonTable
}

// derivePoseidonConstants expands the seed into the full parameter table.
// Round constants come from counter-mode BLAKE2b with rejection sampling:
// candidate i is the first 32 bytes of BLAKE2b-512(seed || be32(counter)),
// read as a big-endian integer and rejected unless below the field modulus.
// The MDS matrix is the Cauchy matrix m[i][j] = 1/(x_i + y_j) with x_i = i
// and y_j = width + j.
func derivePoseidonConstants(seed string) (*PoseidonConstants, error) {
	c := &PoseidonConstants{
		RoundConstants: make([]fr.Element, poseidonWidth*poseidonRounds),
	}

	mod := fr.Modulus()
	var counter uint32
	for i := range c.RoundConstants {
		for {
			v, err := drawCandidate(seed, counter)
			counter++
			if err != nil {
				return nil, err
			}
			if v.Cmp(mod) < 0 {
				c.RoundConstants[i].SetBigInt(v)
				break
			}
			// out of range, redraw
		}
	}

	for i := 0; i < poseidonWidth; i++ {
		for j := 0; j < poseidonWidth; j++ {
			var sum fr.Element
			sum.SetUint64(uint64(i + poseidonWidth + j))
			c.MDS[i][j].Inverse(&sum)
		}
	}
	return c, nil
}

func drawCandidate(seed string, counter uint32) (*big.Int, error) {
	h, err := blake2b.New512(nil)
	if err != nil {
		return nil, err
	}
	var ctr [4]byte
	binary.BigEndian.PutUint32(ctr[:], counter)
	h.Write([]byte(seed))
	h.Write(ctr[:])
	sum := h.Sum(nil)
	return new(big.Int).SetBytes(sum[:32]), nil
}
