package oram

import (
	"context"
	"errors"
	"testing"

	"github.com/etclab/oram/backend"
)

func TestNodeStoreReadUnwrittenIsEmptyBucket(t *testing.T) {
	ns := newNodeStore(backend.NewMemory(), nil, 4, 8)
	bucket, _, err := ns.readBucket(context.Background(), 5)
	if err != nil {
		t.Fatalf("readBucket failed: %v", err)
	}
	if len(bucket.Blocks) != 4 {
		t.Fatalf("bucket has %d blocks, want 4", len(bucket.Blocks))
	}
	for _, b := range bucket.Blocks {
		if !b.IsDummy() {
			t.Errorf("unwritten node should decode to all dummies")
		}
	}
}

func TestNodeStoreWriteReadRoundTrip(t *testing.T) {
	ns := newNodeStore(backend.NewMemory(), nil, 2, 4)
	ctx := context.Background()

	bucket := Bucket{Blocks: []Block{
		{ID: 1, Data: []byte("abcd")},
		{ID: EmptyBlockID, Data: make([]byte, 4)},
	}}

	if _, err := ns.writeBuckets(ctx, []int{0}, []Bucket{bucket}); err != nil {
		t.Fatalf("writeBuckets failed: %v", err)
	}

	got, _, err := ns.readBucket(ctx, 0)
	if err != nil {
		t.Fatalf("readBucket failed: %v", err)
	}
	if got.Blocks[0].ID != 1 || string(got.Blocks[0].Data) != "abcd" {
		t.Errorf("readBucket = %+v, want block 1 with data abcd", got)
	}
}

func TestNodeStoreReadBucketsPreservesOrder(t *testing.T) {
	ns := newNodeStore(backend.NewMemory(), nil, 1, 4)
	ctx := context.Background()

	for _, id := range []int{0, 1, 2} {
		b := Bucket{Blocks: []Block{{ID: id + 100, Data: []byte{byte(id)}}}}
		if _, err := ns.writeBuckets(ctx, []int{id}, []Bucket{b}); err != nil {
			t.Fatalf("writeBuckets(%d) failed: %v", id, err)
		}
	}

	nodeIDs := []int{2, 0, 1}
	buckets, _, err := ns.readBuckets(ctx, nodeIDs)
	if err != nil {
		t.Fatalf("readBuckets failed: %v", err)
	}
	for i, id := range nodeIDs {
		want := id + 100
		if buckets[i].Blocks[0].ID != want {
			t.Errorf("readBuckets()[%d] (node %d) = block %d, want %d", i, id, buckets[i].Blocks[0].ID, want)
		}
	}
}

// faultyBackend fails Read for one configured node name with a genuine
// error (not not-found), so readBuckets must degrade that single node to a
// dummy bucket rather than failing the whole path read.
type faultyBackend struct {
	*backend.Memory
	failName string
}

func (f *faultyBackend) Read(ctx context.Context, name string) ([]byte, backend.Log, error) {
	if name == f.failName {
		return nil, backend.Log{Verb: backend.VerbError, Name: name, Detail: "connection reset"}, errors.New("connection reset")
	}
	return f.Memory.Read(ctx, name)
}

// ReadMultiple routes every name through the overriding Read above (the
// embedded Memory.ReadMultiple would call Memory.Read directly), degrading
// a failed read to an empty result the way the backend package does.
func (f *faultyBackend) ReadMultiple(ctx context.Context, names []string) ([]backend.ReadResult, error) {
	out := make([]backend.ReadResult, 0, len(names))
	for _, name := range names {
		data, log, _ := f.Read(ctx, name)
		out = append(out, backend.ReadResult{Name: name, Data: data, Log: log})
	}
	return out, nil
}

func TestNodeStoreReadBucketsDegradesSingleBackendFailure(t *testing.T) {
	mem := backend.NewMemory()
	fb := &faultyBackend{Memory: mem, failName: "1"}
	ns := newNodeStore(fb, nil, 1, 4)
	ctx := context.Background()

	for _, id := range []int{0, 1, 2} {
		b := Bucket{Blocks: []Block{{ID: id + 100, Data: []byte{byte(id)}}}}
		if _, err := ns.writeBuckets(ctx, []int{id}, []Bucket{b}); err != nil {
			t.Fatalf("writeBuckets(%d) failed: %v", id, err)
		}
	}

	buckets, logs, err := ns.readBuckets(ctx, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("readBuckets failed: %v, want access to continue past a single node failure", err)
	}
	if !buckets[1].Blocks[0].IsDummy() {
		t.Errorf("node 1 (backend read failure) = %+v, want a dummy bucket", buckets[1])
	}
	if logs[1].Verb != backend.VerbError {
		t.Errorf("node 1 log verb = %v, want VerbError", logs[1].Verb)
	}
	if buckets[0].Blocks[0].ID != 100 || buckets[2].Blocks[0].ID != 102 {
		t.Errorf("surrounding nodes must still read correctly: %+v, %+v", buckets[0], buckets[2])
	}
}

func TestNodeStoreWriteBucketsRejectsWrongCardinality(t *testing.T) {
	ns := newNodeStore(backend.NewMemory(), nil, 4, 8)
	bad := Bucket{Blocks: []Block{{ID: EmptyBlockID, Data: make([]byte, 8)}}} // only 1, want 4
	_, err := ns.writeBuckets(context.Background(), []int{0}, []Bucket{bad})
	if err != ErrCodecWrite {
		t.Errorf("writeBuckets with wrong bucket size error = %v, want ErrCodecWrite", err)
	}
}
