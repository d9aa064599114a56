package oram

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/etclab/oram/backend"
)

func pad(s string, size int) []byte {
	out := make([]byte, size)
	copy(out, s)
	return out
}

func TestEngineReadAfterWrite(t *testing.T) {
	ctx := context.Background()
	e, err := NewInMemory(Config{NumBlocks: 8, BlockSize: 8, BucketSize: 4})
	if err != nil {
		t.Fatalf("NewInMemory failed: %v", err)
	}

	if _, _, err := e.Write(ctx, 3, pad("hello", 8)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, _, err := e.Read(ctx, 3)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(got, pad("hello", 8)) {
		t.Errorf("Read(3) = %q, want %q", got, "hello")
	}

	got, _, err = e.Read(ctx, 5)
	if err != nil {
		t.Fatalf("Read(5) failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Read of never-written block = %q, want empty", got)
	}
}

func TestEngineBucketCardinalityAfterAccesses(t *testing.T) {
	ctx := context.Background()
	mem := backend.NewMemory()
	e, _, err := New(Config{NumBlocks: 8, BlockSize: 4, BucketSize: 4}, mem, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ops := []struct {
		id   int
		data string
	}{
		{0, "a"}, {1, "b"},
	}
	for _, op := range ops {
		if _, _, err := e.Write(ctx, op.id, pad(op.data, 4)); err != nil {
			t.Fatalf("Write(%d) failed: %v", op.id, err)
		}
	}
	if _, _, err := e.Read(ctx, 0); err != nil {
		t.Fatalf("Read(0) failed: %v", err)
	}
	if _, _, err := e.Read(ctx, 1); err != nil {
		t.Fatalf("Read(1) failed: %v", err)
	}

	names, err := mem.ListNames(ctx)
	if err != nil {
		t.Fatalf("ListNames failed: %v", err)
	}
	for _, name := range names {
		raw, _, err := mem.Read(ctx, name)
		if err != nil {
			t.Fatalf("Read(%s) failed: %v", name, err)
		}
		bucket := decodeBucket(raw, 4, 4)
		if len(bucket.Blocks) != 4 {
			t.Errorf("node %s has %d blocks, want 4", name, len(bucket.Blocks))
		}
	}
}

func TestEngineWriteAllThenReadAll(t *testing.T) {
	ctx := context.Background()
	e, err := NewInMemory(Config{NumBlocks: 16, BlockSize: 8, BucketSize: 4})
	if err != nil {
		t.Fatalf("NewInMemory failed: %v", err)
	}

	for i := 0; i < 16; i++ {
		data := pad(string(rune('a'+i)), 8)
		if _, _, err := e.Write(ctx, i, data); err != nil {
			t.Fatalf("Write(%d) failed: %v", i, err)
		}
	}
	for i := 0; i < 16; i++ {
		want := pad(string(rune('a'+i)), 8)
		got, _, err := e.Read(ctx, i)
		if err != nil {
			t.Fatalf("Read(%d) failed: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("Read(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestEngineCrashRecoveryViaSnapshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "stash.json")
	mem := backend.NewMemory()

	cfg := Config{NumBlocks: 8, BlockSize: 4, BucketSize: 4, Persist: true, SnapshotPath: snapPath}
	e1, _, err := New(cfg, mem, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, _, err := e1.Write(ctx, 2, pad("x", 4)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Simulate a restart: a fresh Engine loads the same backend and snapshot.
	e2, startedFresh, err := New(cfg, mem, nil)
	if err != nil {
		t.Fatalf("restart New failed: %v", err)
	}
	if startedFresh {
		t.Fatalf("restart should have loaded the snapshot, not started fresh")
	}

	got, _, err := e2.Read(ctx, 2)
	if err != nil {
		t.Fatalf("Read after restart failed: %v", err)
	}
	if !bytes.Equal(got, pad("x", 4)) {
		t.Errorf("Read(2) after restart = %q, want %q", got, "x")
	}
}

func TestEngineSnapshotMetadataMismatchStartsFresh(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "stash.json")
	mem := backend.NewMemory()

	cfg := Config{NumBlocks: 8, BlockSize: 4, BucketSize: 4, Persist: true, SnapshotPath: snapPath}
	e1, _, err := New(cfg, mem, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, _, err := e1.Write(ctx, 2, pad("x", 4)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Changing NumBlocks changes the metadata fingerprint.
	cfg2 := cfg
	cfg2.NumBlocks = 16
	e2, startedFresh, err := New(cfg2, backend.NewMemory(), nil)
	if err != nil {
		t.Fatalf("New with changed config failed: %v", err)
	}
	if !startedFresh {
		t.Errorf("changed configuration should not adopt the old snapshot")
	}
	_ = e2
}

func TestEngineOutOfRangeBlockID(t *testing.T) {
	ctx := context.Background()
	e, _ := NewInMemory(Config{NumBlocks: 4, BlockSize: 4, BucketSize: 4})

	if _, _, err := e.Read(ctx, -1); err != ErrOutOfRange {
		t.Errorf("Read(-1) error = %v, want ErrOutOfRange", err)
	}
	if _, _, err := e.Read(ctx, 4); err != ErrOutOfRange {
		t.Errorf("Read(4) error = %v, want ErrOutOfRange", err)
	}
}

func TestEngineWrongDataSize(t *testing.T) {
	ctx := context.Background()
	e, _ := NewInMemory(Config{NumBlocks: 4, BlockSize: 4, BucketSize: 4})

	if _, _, err := e.Write(ctx, 0, []byte("too long data")); err != ErrInvalidDataSize {
		t.Errorf("Write with wrong size error = %v, want ErrInvalidDataSize", err)
	}
}

func TestEngineOverwriteReturnsPreviousValue(t *testing.T) {
	ctx := context.Background()
	e, _ := NewInMemory(Config{NumBlocks: 4, BlockSize: 4, BucketSize: 4})

	old, err := firstReturn(e.Write(ctx, 0, pad("aa", 4)))
	if err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	if len(old) != 0 {
		t.Errorf("first write should return empty, got %q", old)
	}

	old, err = firstReturn(e.Write(ctx, 0, pad("bb", 4)))
	if err != nil {
		t.Fatalf("second Write failed: %v", err)
	}
	if !bytes.Equal(old, pad("aa", 4)) {
		t.Errorf("second write should return previous value, got %q", old)
	}
}

func firstReturn(data []byte, logs []backend.Log, err error) ([]byte, error) {
	return data, err
}

// flakyNodeBackend fails Read for exactly one node name with a genuine
// error (not not-found), then heals on the next call — simulating a
// transient network/permission fault partway through a path read.
type flakyNodeBackend struct {
	*backend.Memory
	failName string
	failed   bool
}

func (f *flakyNodeBackend) Read(ctx context.Context, name string) ([]byte, backend.Log, error) {
	if name == f.failName && !f.failed {
		f.failed = true
		return nil, backend.Log{Verb: backend.VerbError, Name: name, Detail: "simulated fault"}, errFaultInjected
	}
	return f.Memory.Read(ctx, name)
}

// ReadMultiple routes every name through the overriding Read above (the
// embedded Memory.ReadMultiple would call Memory.Read directly), degrading
// a failed read to an empty result the way the backend package does.
func (f *flakyNodeBackend) ReadMultiple(ctx context.Context, names []string) ([]backend.ReadResult, error) {
	out := make([]backend.ReadResult, 0, len(names))
	for _, name := range names {
		data, log, _ := f.Read(ctx, name)
		out = append(out, backend.ReadResult{Name: name, Data: data, Log: log})
	}
	return out, nil
}

var errFaultInjected = errors.New("simulated backend fault")

func TestEngineContinuesPastSingleNodeReadFailure(t *testing.T) {
	ctx := context.Background()
	mem := &flakyNodeBackend{Memory: backend.NewMemory(), failName: "0"}
	e, _, err := New(Config{NumBlocks: 8, BlockSize: 4, BucketSize: 4}, mem, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// The root node ("0") is on every path, so this access will hit the
	// injected fault. It must still complete: service the request, evict,
	// and commit, rather than aborting with a fatal error.
	if _, logs, err := e.Write(ctx, 3, pad("hi", 4)); err != nil {
		t.Fatalf("Write failed despite a single degraded node read: %v, logs=%v", err, logs)
	}

	got, _, err := e.Read(ctx, 3)
	if err != nil {
		t.Fatalf("Read after degraded write failed: %v", err)
	}
	if !bytes.Equal(got, pad("hi", 4)) {
		t.Errorf("Read(3) = %q, want %q", got, "hi")
	}
}
