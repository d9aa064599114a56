package oram

import "errors"

var (
	ErrInvalidConfig    = errors.New("oram: invalid configuration")
	ErrOutOfRange       = errors.New("oram: block index out of range")
	ErrInvalidDataSize  = errors.New("oram: data size doesn't match block size")
	ErrStashOverflow    = errors.New("oram: stash overflow")
	ErrEncryptionFailed = errors.New("oram: block encryption failed")
	ErrDecryptionFailed = errors.New("oram: block decryption failed")
	ErrCodecWrite       = errors.New("oram: bucket encoding failed")
	ErrMetadataMismatch = errors.New("oram: snapshot metadata does not match configuration")
	ErrDegradedSnapshot = errors.New("oram: snapshot save failed, engine running in degraded mode")
)

// Config holds the engine's configuration options (spec.md §6). One Engine
// owns one Config for its lifetime; there is no process-wide global state.
type Config struct {
	// NumBlocks is the logical capacity in blocks (valid IDs: 0..NumBlocks-1).
	NumBlocks int
	// BlockSize is the size in bytes of a block's data payload.
	BlockSize int
	// BucketSize is Z, the number of blocks per tree node. Path ORAM
	// recommends Z = 4. Zero selects the default.
	BucketSize int
	// StashLimit is the maximum stash size tolerated before an access fails
	// with ErrStashOverflow. Zero selects a generous default.
	StashLimit int
	// Persist controls whether the engine reads/writes a snapshot file
	// after every access. The stash-size simulator sets this to false.
	Persist bool
	// SnapshotPath is where (P, S, metadata) is persisted, required when
	// Persist is true.
	SnapshotPath string
}

// Validate checks the configuration for errors and applies defaults.
// Returns a copy of the config with defaults applied.
func (c Config) Validate() (Config, error) {
	if c.NumBlocks <= 0 || c.BlockSize <= 0 {
		return c, ErrInvalidConfig
	}
	if c.BucketSize <= 0 {
		c.BucketSize = 4
	}
	if c.StashLimit <= 0 {
		c.StashLimit = 100
	}
	if c.Persist && c.SnapshotPath == "" {
		return c, ErrInvalidConfig
	}
	return c, nil
}

// treeParams calculates tree dimensions from config: height L, number of
// leaves, and total node count.
func (c Config) treeParams() (height, numLeaves, numNodes int) {
	return treeParams(c.NumBlocks)
}

// snapshotMetadata is the fixed shape persisted alongside the position map and
// stash, used to detect a configuration change on reload (spec.md §4.H).
type snapshotMetadata struct {
	NumBlocks int `json:"num_blocks"`
	Bucket    int `json:"bucket_size"`
	Height    int `json:"tree_height"`
	NumLeaves int `json:"num_leaves"`
}

func (c Config) snapshotMetadata(height, numLeaves int) snapshotMetadata {
	return snapshotMetadata{NumBlocks: c.NumBlocks, Bucket: c.BucketSize, Height: height, NumLeaves: numLeaves}
}
