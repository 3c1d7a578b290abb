// Package domain contains the digest value type shared by every hash
// algorithm in this module: a fixed-width byte digest that doubles as an
// element of the BLS12-381 scalar field. The byte view is what Merkle trees
// store and compare; the field view is what arithmetic circuits compute on.
// Conversions between the two are explicit and fallible so that a digest can
// never silently wrap around the field modulus.
package domain
