// Package treehash provides interchangeable hash algorithms for
// zero-knowledge Merkle proof pipelines. Every algorithm produces the same
// digest type, a 32-byte value that is simultaneously usable as raw bytes
// and as a BLS12-381 scalar field element, and every native leaf/node
// hashing operation has an in-circuit gadget twin that provably computes the
// same value over gnark circuit variables.
//
// Three bindings are provided: Poseidon, an algebraic hash that is cheap
// inside circuits and is the default choice; and Sha256 and Blake2s, byte
// hashes for domains that must match conventional commitments, whose gadgets
// pay the full bit-decomposition cost. Consumers pick exactly one binding at
// compile time and stay generic over the Hasher interface.
package treehash
