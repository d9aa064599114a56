// Package backend defines the storage-engine abstraction (spec.md §4.A): a
// small contract for reading and writing opaque named blobs, with two
// concrete variants — a local directory and a remote S3-compatible object
// store. The ORAM engine addresses nodes only by decimal node id; it never
// reads, writes, or lists by logical block index.
package backend

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// Verb identifies the kind of operation a Log entry records.
type Verb string

const (
	VerbGet   Verb = "GET"
	VerbPut   Verb = "PUT"
	VerbError Verb = "ERROR"
)

// Log is a short structured record of one backend operation, returned to
// the caller for observability. Logs never carry secrets.
type Log struct {
	Verb   Verb
	Name   string
	Detail string
}

func getLog(name string) Log      { return Log{Verb: VerbGet, Name: name} }
func putLog(name string) Log      { return Log{Verb: VerbPut, Name: name} }
func notFoundLog(name string) Log { return Log{Verb: VerbGet, Name: name, Detail: "not-found"} }
func errLog(name, detail string) Log {
	return Log{Verb: VerbError, Name: name, Detail: detail}
}

// Backend is the minimal 5-operation contract a storage-engine driver must
// satisfy. Names are opaque ASCII strings — the ORAM engine only ever
// passes decimal node ids.
type Backend interface {
	// Read fetches the object at name. Absence is not an error: it returns
	// an empty byte slice and a not-found log, indistinguishable from a
	// never-written node.
	Read(ctx context.Context, name string) ([]byte, Log, error)
	// Write overwrites or creates the object at name.
	Write(ctx context.Context, name string, data []byte) (Log, error)
	// ReadMultiple fetches every name, possibly concurrently. The returned
	// slice's order is not required to match names' order.
	ReadMultiple(ctx context.Context, names []string) ([]ReadResult, error)
	// WriteMultiple writes every entry in writes, possibly concurrently.
	WriteMultiple(ctx context.Context, writes map[string][]byte) ([]Log, error)
	// ListNames returns every object name currently stored. Unused by the
	// ORAM engine itself; kept for collaborators (e.g. a higher-level
	// catalog) built on the same backend.
	ListNames(ctx context.Context) ([]string, error)
}

// ReadResult pairs one name's bytes with the log entry for that read.
type ReadResult struct {
	Name string
	Data []byte
	Log  Log
}

// maxWorkers bounds how many names fan out to goroutines at once for the
// default ReadMultiple/WriteMultiple dispatch, per spec.md §5's "worker
// pool of at most L+1 tasks" guidance — there is no ecosystem worker-pool
// library actually imported anywhere in the reference corpus (golang.org/
// x/sync appears only as an indirect, never-imported transitive
// dependency), so this is a small hand-rolled bounded fan-out using
// sync.WaitGroup and a semaphore channel.
func maxWorkers(n int) int {
	w := runtime.NumCPU()
	if n < w {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// readMultipleSequentialOrParallel is the default ReadMultiple
// implementation: variants only need to provide Read. It's a package-level
// function (not a method with a default body, Go has no such thing) so
// Local, Remote and Memory can all call it from their ReadMultiple.
func readMultipleSequentialOrParallel(ctx context.Context, b Backend, names []string) ([]ReadResult, error) {
	out := make([]ReadResult, len(names))
	sem := make(chan struct{}, maxWorkers(len(names)))
	var wg sync.WaitGroup

	for i, name := range names {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, name string) {
			defer wg.Done()
			defer func() { <-sem }()

			data, log, err := b.Read(ctx, name)
			if err != nil {
				// A read failure (network, permission) degrades to an
				// absent node rather than failing the whole path read: the
				// caller cannot distinguish a never-written node from one
				// it failed to reach, and a single bad node must not abort
				// an otherwise-servable access.
				out[i] = ReadResult{Name: name, Log: log}
				return
			}
			out[i] = ReadResult{Name: name, Data: data, Log: log}
		}(i, name)
	}
	wg.Wait()
	return out, nil
}

func writeMultipleSequentialOrParallel(ctx context.Context, b Backend, writes map[string][]byte) ([]Log, error) {
	names := make([]string, 0, len(writes))
	for name := range writes {
		names = append(names, name)
	}

	out := make([]Log, len(names))
	sem := make(chan struct{}, maxWorkers(len(names)))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, name := range names {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, name string) {
			defer wg.Done()
			defer func() { <-sem }()

			log, err := b.Write(ctx, name, writes[name])
			mu.Lock()
			defer mu.Unlock()
			if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("oram/backend: write %q: %w", name, err)
				return
			}
			out[i] = log
		}(i, name)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
