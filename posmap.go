package oram

// PositionMap is the total mapping block_index -> leaf_id, held entirely by
// the client (spec.md §4.E). Every entry in [0, N) is populated at
// construction with an i.i.d. uniform leaf, matching the reference
// implementation's `{i: random.randint(...) for i in range(N)}` — blocks
// that have never been written still point at a valid leaf.
type PositionMap struct {
	numLeaves int
	leaves    []int
}

// newPositionMap builds a fully-populated position map for numBlocks
// entries over a tree with numLeaves leaves.
func newPositionMap(numBlocks, numLeaves int) *PositionMap {
	leaves := make([]int, numBlocks)
	for i := range leaves {
		leaves[i] = randomLeaf(numLeaves)
	}
	return &PositionMap{numLeaves: numLeaves, leaves: leaves}
}

// Get returns the leaf currently assigned to blockID.
func (p *PositionMap) Get(blockID int) int {
	return p.leaves[blockID]
}

// Set reassigns blockID to leaf.
func (p *PositionMap) Set(blockID, leaf int) {
	p.leaves[blockID] = leaf
}

// snapshot returns a copy of the map suitable for persistence.
func (p *PositionMap) snapshot() []int {
	out := make([]int, len(p.leaves))
	copy(out, p.leaves)
	return out
}

// restorePositionMap rebuilds a PositionMap from a persisted snapshot.
func restorePositionMap(leaves []int, numLeaves int) *PositionMap {
	out := make([]int, len(leaves))
	copy(out, leaves)
	return &PositionMap{numLeaves: numLeaves, leaves: out}
}
