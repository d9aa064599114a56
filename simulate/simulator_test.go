package simulate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunProducesPMFAndCCDF(t *testing.T) {
	result, err := Run(context.Background(), Config{
		NumBlocks:      16,
		BucketSize:     4,
		NumAccesses:    200,
		WarmupAccesses: 100,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	total := 0
	for _, c := range result.PMF {
		total += c
	}
	if total != 200 {
		t.Errorf("PMF sums to %d, want 200 (one sample per measured access)", total)
	}

	// CCDF must be non-increasing.
	for i := 1; i < len(result.CCDF); i++ {
		if result.CCDF[i] > result.CCDF[i-1] {
			t.Errorf("CCDF not non-increasing at index %d: %d > %d", i, result.CCDF[i], result.CCDF[i-1])
		}
	}
	if result.CCDF[0] != 200 {
		t.Errorf("CCDF[0] = %d, want 200 (every access has stash size >= 0)", result.CCDF[0])
	}
}

func TestWriteCCDFTruncatesAtFirstZero(t *testing.T) {
	dir := t.TempDir()
	result := Result{CCDF: []int{5, 3, 0, 0, 7}}

	path, err := WriteCCDF(dir, 1, result)
	if err != nil {
		t.Fatalf("WriteCCDF failed: %v", err)
	}
	if filepath.Base(path) != "simulation1.txt" {
		t.Errorf("output path = %s, want simulation1.txt", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("wrote %d lines, want 3 (stop at first zero past index 0): %q", len(lines), data)
	}
	if lines[0] != "0,5" || lines[1] != "1,3" || lines[2] != "2,0" {
		t.Errorf("unexpected CCDF lines: %v", lines)
	}
}
