// Package oram implements a client-side Path ORAM (Stefanov et al., 2013):
// an oblivious storage engine that hides the access pattern of a client
// reading and writing logical blocks from an untrusted remote backend.
package oram

import (
	"context"
	"sync"

	"github.com/etclab/oram/backend"
	"github.com/google/uuid"
)

// OpType distinguishes a read access from a write access.
type OpType int

const (
	OpRead OpType = iota
	OpWrite
)

// Engine is the Path ORAM access engine (spec.md §4.G): it owns the
// position map, stash, and node store, and exposes the single Access
// operation every read or write goes through.
//
// Engine is single-writer, single-access-at-a-time by design (spec.md §5):
// Access takes an internal mutex for its duration, so concurrent callers
// serialize rather than interleave paths. This is a deliberate limitation,
// not an oversight — Path ORAM's privacy guarantee assumes one in-flight
// path per access.
type Engine struct {
	mu sync.Mutex

	// id uniquely identifies this Engine instance for log correlation; it
	// has no cryptographic role and never touches the backend.
	id string

	cfg       Config
	height    int
	numLeaves int

	store  *nodeStore
	posMap *PositionMap
	stash  *stash

	// degraded is set when a snapshot save fails; subsequent restarts may
	// observe stale state (spec.md §7).
	degraded bool
}

// New constructs an Engine from explicit dependencies: configuration,
// backend, and (optionally nil) encryption hook. If cfg.Persist is true, it
// attempts to load prior state from cfg.SnapshotPath; on any load failure
// (missing file, torn snapshot, metadata mismatch) it logs a warning
// in-band (via the returned bool) and starts fresh, per spec.md §4.H.
func New(cfg Config, be backend.Backend, enc Encryptor) (*Engine, bool, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, false, err
	}

	height, numLeaves, _ := treeParams(cfg.NumBlocks)
	store := newNodeStore(be, enc, cfg.BucketSize, cfg.BlockSize)

	e := &Engine{
		id:        uuid.New().String(),
		cfg:       cfg,
		height:    height,
		numLeaves: numLeaves,
		store:     store,
	}

	startedFresh := true
	if cfg.Persist {
		snap, err := loadSnapshot(cfg.SnapshotPath)
		if err == nil && snap.Metadata == cfg.snapshotMetadata(height, numLeaves) {
			e.posMap = restorePositionMap(snap.Positions, numLeaves)
			e.stash = loadStash(snap.Stash)
			startedFresh = false
		}
	}
	if startedFresh {
		e.posMap = newPositionMap(cfg.NumBlocks, numLeaves)
		e.stash = newStash()
	}

	return e, startedFresh, nil
}

// NewInMemory builds an Engine backed by an in-memory backend with no
// encryption and no snapshot persistence — the simplest configuration for
// tests and library use.
func NewInMemory(cfg Config) (*Engine, error) {
	cfg.Persist = false
	e, _, err := New(cfg, backend.NewMemory(), NoOpEncryptor{})
	return e, err
}

// Capacity returns the number of blocks this engine can address.
func (e *Engine) Capacity() int { return e.cfg.NumBlocks }

// Height returns the height L of the binary tree.
func (e *Engine) Height() int { return e.height }

// NumLeaves returns the number of leaves in the binary tree (2^L).
func (e *Engine) NumLeaves() int { return e.numLeaves }

// StashSize returns the number of blocks currently buffered in the stash.
func (e *Engine) StashSize() int { return e.stash.size() }

// Degraded reports whether a prior snapshot save failed; if so, a restart
// may observe state older than the engine's actual in-memory view.
func (e *Engine) Degraded() bool { return e.degraded }

// ID returns the engine instance's log-correlation identifier, generated
// once at construction. It is not derived from or related to any block,
// key, or backend content.
func (e *Engine) ID() string { return e.id }

// Read performs an oblivious read of blockID, returning its current value
// (or an empty slice if the block has never been written).
func (e *Engine) Read(ctx context.Context, blockID int) ([]byte, []backend.Log, error) {
	return e.Access(ctx, OpRead, blockID, nil)
}

// Write stores data at blockID, returning the value the block held before
// this write (or an empty slice on first write).
func (e *Engine) Write(ctx context.Context, blockID int, data []byte) ([]byte, []backend.Log, error) {
	return e.Access(ctx, OpWrite, blockID, data)
}

// Access performs one oblivious read or write (spec.md §4.G). newData must
// be exactly cfg.BlockSize bytes for a write, and is ignored for a read.
func (e *Engine) Access(ctx context.Context, op OpType, blockID int, newData []byte) ([]byte, []backend.Log, error) {
	if blockID < 0 || blockID >= e.cfg.NumBlocks {
		return nil, nil, ErrOutOfRange
	}
	if op == OpWrite && len(newData) != e.cfg.BlockSize {
		return nil, nil, ErrInvalidDataSize
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var logs []backend.Log

	// Step 1: remap. The *old* leaf is used for this access's path read
	// and write; the new leaf takes effect starting with the block's next
	// access (spec.md §9's resolved Open Question).
	oldLeaf := e.posMap.Get(blockID)
	newLeaf := randomLeaf(e.numLeaves)
	e.posMap.Set(blockID, newLeaf)

	pathNodes := path(e.height, oldLeaf)

	// Step 2: path read.
	buckets, readLogs, err := e.store.readBuckets(ctx, pathNodes)
	if err != nil {
		return nil, logs, err
	}
	logs = append(logs, readLogs...)
	for _, bucket := range buckets {
		for _, blk := range bucket.Blocks {
			if !blk.IsDummy() {
				e.stash.put(cloneBlock(blk))
			}
		}
	}

	// Step 3: service the request.
	var dataReturn []byte
	if existing, ok := e.stash.get(blockID); ok {
		dataReturn = existing.Data
		if op == OpWrite {
			e.stash.setData(blockID, append([]byte(nil), newData...))
		}
	} else {
		dataReturn = nil
		if op == OpWrite {
			e.stash.put(Block{ID: blockID, Data: append([]byte(nil), newData...)})
		}
	}
	if dataReturn == nil {
		dataReturn = []byte{}
	}

	// Step 4: eviction, building buckets leaf-to-root.
	newBuckets, evictErr := e.evict(pathNodes)
	if evictErr != nil {
		return nil, logs, evictErr
	}

	// Step 5: commit the path write.
	writeLogs, err := e.store.writeBuckets(ctx, pathNodes, newBuckets)
	if err != nil {
		// Undo the remap and return every evicted block to the stash, so
		// the next access of blockID reads this same path again and no
		// block is lost to the failed write.
		e.posMap.Set(blockID, oldLeaf)
		for _, bucket := range newBuckets {
			for _, blk := range bucket.Blocks {
				if !blk.IsDummy() {
					e.stash.put(blk)
				}
			}
		}
		return nil, logs, ErrBackendWriteFailed(err)
	}
	logs = append(logs, writeLogs...)

	// Step 6: persist client state. A save failure is logged (by the
	// caller inspecting Degraded) but does not fail the access: the
	// in-memory view is still correct, it's only the on-disk copy that's
	// now stale. This runs before the stash-overflow check below so the
	// snapshot reflects the backend's just-committed path state even on
	// the overflow path — the backend is never left ahead of the last
	// persisted snapshot.
	if e.cfg.Persist {
		snap := snapshot{
			Positions: e.posMap.snapshot(),
			Stash:     e.stash.all(),
			Metadata:  e.cfg.snapshotMetadata(e.height, e.numLeaves),
		}
		if err := saveSnapshot(e.cfg.SnapshotPath, snap); err != nil {
			e.degraded = true
		}
	}

	if e.stash.size() > e.cfg.StashLimit {
		return nil, logs, ErrStashOverflow
	}

	return dataReturn, logs, nil
}

// evict builds the Z*(L+1) slots along pathNodes, greedily packing
// evictable stash blocks from leaf (index e.height) to root (index 0).
// Ties among more than Z evictable blocks at a level are broken by
// insertion order — the oldest-inserted evictable block wins a slot first
// — per the resolved Open Question in spec.md §9.
func (e *Engine) evict(pathNodes []int) ([]Bucket, error) {
	buckets := make([]Bucket, len(pathNodes))

	for level := e.height; level >= 0; level-- {
		bucketIdx := pathNodes[level]

		entries := e.stash.snapshotEntries()
		chosen := make([]Block, 0, e.cfg.BucketSize)
		for _, b := range entries {
			if len(chosen) >= e.cfg.BucketSize {
				break
			}
			leaf := e.posMap.Get(b.ID)
			if onPath(e.height, leaf, bucketIdx) {
				chosen = append(chosen, b)
				e.stash.remove(b.ID)
			}
		}
		for len(chosen) < e.cfg.BucketSize {
			chosen = append(chosen, dummyBlock(e.cfg.BlockSize))
		}
		buckets[level] = Bucket{Blocks: chosen}
	}

	return buckets, nil
}

// ErrBackendWriteFailed wraps a backend write failure as the engine's
// fatal "backend write failure" outcome (spec.md §7): the access aborts
// without persisting, so the next access retries the same path and
// recovers any blocks still held in the stash.
func ErrBackendWriteFailed(cause error) error {
	return &backendWriteError{cause: cause}
}

type backendWriteError struct{ cause error }

func (e *backendWriteError) Error() string { return "oram: backend write failed: " + e.cause.Error() }
func (e *backendWriteError) Unwrap() error { return e.cause }
