package oram

import (
	"crypto/rand"
	"math/big"
)

// randomLeaf returns a cryptographically random leaf index in [0, numLeaves),
// the source of the remap step's access-pattern randomization (spec.md
// §4.G step 1). Uses crypto/rand rather than math/rand because the leaf
// assignment is security-relevant: a predictable PRNG would leak the access
// pattern the rest of the engine works to hide.
func randomLeaf(numLeaves int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(numLeaves)))
	if err != nil {
		panic("oram: crypto/rand failed: " + err.Error())
	}
	return int(n.Int64())
}
