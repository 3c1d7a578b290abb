package treehash

import (
	"crypto/sha256"

	"github.com/prooflab/treehash/domain"
)

// Sha256 is the SHA-256 hasher binding. It exists for domains that must
// match external SHA-256 commitments; inside proof circuits it is by far the
// most expensive of the bindings, since every compression round turns into
// boolean constraints (see sha256_circuit.go).
type Sha256 struct{}

var _ Hasher = Sha256{}

func (Sha256) Name() string { return "sha256" }

func (Sha256) New() Engine {
	return &byteEngine{inner: sha256.New()}
}

func (s Sha256) HashLeaf(data []byte) (domain.Domain, error) {
	return s.New().LeafHash(data)
}

func (s Sha256) HashNode(left, right domain.Domain, height uint64) (domain.Domain, error) {
	return s.New().NodeHash(left, right, height)
}
