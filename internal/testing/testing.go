// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/flix/internal/models"
)

// FakeFavorites is an in-memory test double for [services.Favorites].
//
// Details holds the fields the "server" fills in on list, keyed by canonical id.
// After [FakeFavorites.Hold], add and remove calls block until [FakeFavorites.Release].
type FakeFavorites struct {
	ListErr   error
	AddErr    error
	RemoveErr error
	Details   map[models.MovieID]models.FavoriteEntry

	mu      sync.Mutex
	entries []models.FavoriteEntry
	calls   map[string]int
	gate    chan struct{}
	entered chan struct{}
}

// NewFakeFavorites seeds the remote set with ids.
func NewFakeFavorites(ids ...models.MovieID) *FakeFavorites {
	f := &FakeFavorites{Details: map[models.MovieID]models.FavoriteEntry{}, calls: map[string]int{}}
	for _, id := range ids {
		f.entries = append(f.entries, models.FavoriteEntry{ID: id})
	}
	return f
}

func (f *FakeFavorites) ListFavorites(ctx context.Context) ([]models.FavoriteEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list")
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	out := make([]models.FavoriteEntry, 0, len(f.entries))
	for _, e := range f.entries {
		if d, ok := f.Details[e.ID]; ok {
			d.ID = e.ID
			e = d
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *FakeFavorites) AddFavorite(ctx context.Context, id models.MovieID) error {
	if err := f.wait(ctx, "add"); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AddErr != nil {
		return f.AddErr
	}
	if f.index(id) < 0 {
		f.entries = append(f.entries, models.FavoriteEntry{ID: id})
	}
	return nil
}

func (f *FakeFavorites) RemoveFavorite(ctx context.Context, id models.MovieID) error {
	if err := f.wait(ctx, "remove"); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	if i := f.index(id); i >= 0 {
		f.entries = slices.Delete(f.entries, i, i+1)
	}
	return nil
}

// Calls returns how many times op ("list", "add" or "remove") was invoked.
func (f *FakeFavorites) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Hold makes later add and remove calls block. Each blocked call signals [FakeFavorites.Entered] once.
func (f *FakeFavorites) Hold() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	f.entered = make(chan struct{}, 16)
}

// Entered is signalled when a held call starts waiting.
func (f *FakeFavorites) Entered() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entered
}

// Release unblocks every held call.
func (f *FakeFavorites) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate != nil {
		close(f.gate)
		f.gate = nil
	}
}

// IDs returns the ids currently stored remotely.
func (f *FakeFavorites) IDs() []models.MovieID {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]models.MovieID, 0, len(f.entries))
	for _, e := range f.entries {
		ids = append(ids, e.ID)
	}
	return ids
}

func (f *FakeFavorites) wait(ctx context.Context, op string) error {
	f.mu.Lock()
	f.record(op)
	gate, entered := f.gate, f.entered
	f.mu.Unlock()

	if gate == nil {
		return nil
	}
	entered <- struct{}{}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *FakeFavorites) record(op string) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
}

func (f *FakeFavorites) index(id models.MovieID) int {
	return slices.IndexFunc(f.entries, func(e models.FavoriteEntry) bool { return e.ID.Equal(id) })
}

// FakeAuth is a switchable authentication state with change notifications.
type FakeAuth struct {
	mu        sync.Mutex
	authed    bool
	next      int
	listeners map[int]func(bool)
	redirects int
}

func NewFakeAuth(authenticated bool) *FakeAuth {
	return &FakeAuth{authed: authenticated, listeners: map[int]func(bool){}}
}

func (a *FakeAuth) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.authed
}

func (a *FakeAuth) Subscribe(fn func(bool)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.next
	a.next++
	a.listeners[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.listeners, id)
	}
}

// Set changes the state and notifies subscribers when it differs from the current one.
func (a *FakeAuth) Set(authenticated bool) {
	a.mu.Lock()
	if a.authed == authenticated {
		a.mu.Unlock()
		return
	}
	a.authed = authenticated
	fns := make([]func(bool), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(authenticated)
	}
}

// RedirectToLogin counts redirects.
// Expire signs the user out without notifying subscribers, like a token passing its expiry.
func (a *FakeAuth) Expire() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.authed = false
}

func (a *FakeAuth) RedirectToLogin() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.redirects++
}

func (a *FakeAuth) Redirects() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.redirects
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
