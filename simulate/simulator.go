// Package simulate drives an in-memory Engine through a long access
// sequence to measure the empirical distribution of stash size, for
// validating (N, Z) parameter choices offline (spec.md §4.I).
package simulate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etclab/oram"
)

// simBlockSize is the fixed block payload size used throughout a
// simulation run; its value is arbitrary since the simulator never reads
// the payload back, only the stash size.
const simBlockSize = 64

// Config configures a simulation run.
type Config struct {
	NumBlocks      int
	BucketSize     int
	NumAccesses    int // measured accesses (after warm-up)
	WarmupAccesses int // zero selects the default of 3000
	SimNumber      int // used only to name the output file
}

// Result holds the post-processed distribution of stash sizes observed
// during the measured phase.
type Result struct {
	// PMF[k] is the number of measured accesses at which the stash held
	// exactly k blocks.
	PMF []int
	// CCDF[k] is the number of measured accesses at which the stash held
	// k or more blocks: CCDF[k] = sum(PMF[j] for j >= k).
	CCDF []int
}

// Run executes the simulation: a warm-up phase of sequential writes to
// populate the tree, followed by a measured phase of sequential reads
// that sample the stash size after each access.
func Run(ctx context.Context, cfg Config) (Result, error) {
	warmup := cfg.WarmupAccesses
	if warmup <= 0 {
		warmup = 3_000
	}

	engine, err := oram.NewInMemory(oram.Config{
		NumBlocks:  cfg.NumBlocks,
		BlockSize:  simBlockSize,
		BucketSize: cfg.BucketSize,
		StashLimit: cfg.NumBlocks, // simulation must never hard-fail on overflow
	})
	if err != nil {
		return Result{}, err
	}

	for i := 0; i < warmup; i++ {
		blockID := i % cfg.NumBlocks
		data := sampleData(i)
		if _, _, err := engine.Write(ctx, blockID, data); err != nil {
			return Result{}, fmt.Errorf("simulate: warm-up write %d: %w", i, err)
		}
	}

	pmf := make([]int, cfg.NumBlocks+1)
	for i := 0; i < cfg.NumAccesses; i++ {
		blockID := i % cfg.NumBlocks
		if _, _, err := engine.Read(ctx, blockID); err != nil {
			return Result{}, fmt.Errorf("simulate: measured read %d: %w", i, err)
		}
		size := engine.StashSize()
		if size < len(pmf) {
			pmf[size]++
		}
	}

	ccdf := make([]int, len(pmf))
	if len(pmf) > 0 {
		ccdf[len(pmf)-1] = pmf[len(pmf)-1]
		for i := len(pmf) - 2; i >= 0; i-- {
			ccdf[i] = pmf[i] + ccdf[i+1]
		}
	}

	return Result{PMF: pmf, CCDF: ccdf}, nil
}

func sampleData(i int) []byte {
	data := make([]byte, simBlockSize)
	copy(data, fmt.Sprintf("block_data_%d", i))
	return data
}

// WriteCCDF writes result's CCDF as "k,count" lines into dir, named
// simulation<simNumber>.txt, stopping at the first zero count past index
// zero (mirroring the reference implementation's truncation rule).
func WriteCCDF(dir string, simNumber int, result Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("simulation%d.txt", simNumber))

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	for k, count := range result.CCDF {
		if _, err := fmt.Fprintf(f, "%d,%d\n", k, count); err != nil {
			return "", err
		}
		if count == 0 && k > 0 {
			break
		}
	}
	return path, nil
}
