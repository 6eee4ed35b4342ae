package coverimage

import (
	"context"
	"sync"

	"github.com/Black-And-White-Club/clubhouse/internal/objectstore"
)

type FakeStore struct {
	mu    sync.Mutex
	trace []string

	PutFunc    func(ctx context.Context, path string, data []byte, contentType string) (string, error)
	DeleteFunc func(ctx context.Context, path string) error
	Prefix     string
}

func NewFakeStore() *FakeStore {
	return &FakeStore{Prefix: "https://cdn.test/"}
}

func (f *FakeStore) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeStore) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	f.record("Put " + path)
	if f.PutFunc != nil {
		return f.PutFunc(ctx, path, data, contentType)
	}
	return f.Prefix + path, nil
}

func (f *FakeStore) Delete(ctx context.Context, path string) error {
	f.record("Delete " + path)
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, path)
	}
	return nil
}

func (f *FakeStore) URLPrefix() string { return f.Prefix }

func (f *FakeStore) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

type FakeCleanupScheduler struct {
	Paths []string
	Err   error
}

func (f *FakeCleanupScheduler) ScheduleCoverCleanup(ctx context.Context, objectPath string) error {
	f.Paths = append(f.Paths, objectPath)
	return f.Err
}

var (
	_ objectstore.Store = (*FakeStore)(nil)
	_ CleanupScheduler  = (*FakeCleanupScheduler)(nil)
)
