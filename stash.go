package oram

// stash is the client's in-memory buffer of blocks awaiting reinsertion
// into the tree (spec.md §4.F). It has set semantics keyed by block index;
// order is irrelevant except that the eviction loop must iterate a
// deterministic snapshot at the start of each level, so entries are also
// tracked in insertion order to give ties a documented resolution
// (spec.md §4.G / §9: insertion order, oldest first).
type stash struct {
	byIndex map[int]Block
	order   []int // insertion order of currently-present indices
}

func newStash() *stash {
	return &stash{byIndex: make(map[int]Block)}
}

// put inserts or overwrites the entry for b.ID. Overwriting an existing
// entry does not change its position in insertion order.
func (s *stash) put(b Block) {
	if _, exists := s.byIndex[b.ID]; !exists {
		s.order = append(s.order, b.ID)
	}
	s.byIndex[b.ID] = b
}

// get looks up the block with the given index.
func (s *stash) get(blockID int) (Block, bool) {
	b, ok := s.byIndex[blockID]
	return b, ok
}

// setData overwrites the data field of an existing entry in place.
func (s *stash) setData(blockID int, data []byte) {
	b := s.byIndex[blockID]
	b.Data = data
	s.byIndex[blockID] = b
}

// remove deletes the entry for blockID, if present.
func (s *stash) remove(blockID int) {
	if _, ok := s.byIndex[blockID]; !ok {
		return
	}
	delete(s.byIndex, blockID)
	for i, id := range s.order {
		if id == blockID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// snapshotEntries materializes the stash's entries in insertion order. The
// eviction loop takes this snapshot once per level before mutating the
// stash, avoiding the "mutate a map/list while iterating it" hazard present
// in the reference implementation's Python eviction loop (spec.md §9).
func (s *stash) snapshotEntries() []Block {
	out := make([]Block, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byIndex[id])
	}
	return out
}

// size returns the number of blocks currently held in the stash.
func (s *stash) size() int {
	return len(s.order)
}

// all returns every block currently in the stash, for persistence.
func (s *stash) all() []Block {
	return s.snapshotEntries()
}

// loadStash builds a new stash holding copies of entries, used when
// restoring a snapshot. Order is the order blocks appear in entries.
func loadStash(entries []Block) *stash {
	s := newStash()
	for _, b := range entries {
		s.put(cloneBlock(b))
	}
	return s
}
