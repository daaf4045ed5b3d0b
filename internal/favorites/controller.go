package favorites

import (
	"context"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
)

// API is the remote favorites set.
type API interface {
	ListFavorites(ctx context.Context) ([]models.FavoriteEntry, error)
	AddFavorite(ctx context.Context, id models.MovieID) error
	RemoveFavorite(ctx context.Context, id models.MovieID) error
}

// AuthState reports whether a user is signed in and announces changes.
type AuthState interface {
	IsAuthenticated() bool
	Subscribe(fn func(authenticated bool)) (cancel func())
}

// Redirector sends the user to the login entry point.
type Redirector interface {
	RedirectToLogin()
}

// Options configures a [Controller].
type Options struct {
	AutoLoad bool // fetch on Start and on every sign-in
	Logger   *log.Logger
}

// Snapshot is an immutable view of the controller state.
//
// Favorites is never nil. Consumers must not modify it.
type Snapshot struct {
	Favorites []models.FavoriteEntry
	Loading   bool
	Err       error
}

type phase int

const (
	idle phase = iota
	mutating
)

// Controller mirrors the user's favorites set. It is safe for concurrent use.
type Controller struct {
	api      API
	auth     AuthState
	redirect Redirector
	autoLoad bool
	logger   *log.Logger

	mu        sync.Mutex
	favorites []models.FavoriteEntry
	fetching  int
	err       error
	phase     phase
	epoch     uint64
	closed    bool
	snapshot  *Snapshot

	ctx    context.Context
	cancel context.CancelFunc
	unsub  func()
	wg     sync.WaitGroup

	lmu       sync.Mutex
	nextID    int
	listeners map[int]func(*Snapshot)
}

// New creates a controller with an empty set. Call [Controller.Start] to begin
// following the auth state and [Controller.Close] when the consumer goes away.
func New(api API, auth AuthState, redirect Redirector, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		api:       api,
		auth:      auth,
		redirect:  redirect,
		autoLoad:  opts.AutoLoad,
		logger:    opts.Logger,
		favorites: []models.FavoriteEntry{},
		ctx:       ctx,
		cancel:    cancel,
		listeners: map[int]func(*Snapshot){},
	}
}

// Start subscribes to auth transitions. With AutoLoad set and a user already
// signed in, it also starts the first fetch in the background.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.closed || c.unsub != nil {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	unsub := c.auth.Subscribe(c.onAuthChange)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		unsub()
		return
	}
	c.unsub = unsub
	c.mu.Unlock()

	if c.autoLoad && c.auth.IsAuthenticated() {
		c.background()
	}
}

// Close stops background work and ignores every later result. It is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.epoch++
	unsub := c.unsub
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	c.cancel()
	c.wg.Wait()
}

// Subscribe registers fn to receive the new snapshot after every change.
// fn runs on the goroutine that made the change.
func (c *Controller) Subscribe(fn func(*Snapshot)) (cancel func()) {
	c.lmu.Lock()
	defer c.lmu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.lmu.Lock()
		defer c.lmu.Unlock()
		delete(c.listeners, id)
	}
}

// State returns the current snapshot. The same pointer is returned until something changes.
func (c *Controller) State() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() *Snapshot {
	if c.snapshot == nil {
		c.snapshot = &Snapshot{
			Favorites: slices.Clone(c.favorites),
			Loading:   c.fetching > 0,
			Err:       c.err,
		}
	}
	return c.snapshot
}

// IsFavorite reports whether id is in the set. It is always false while signed out.
func (c *Controller) IsFavorite(id models.MovieID) bool {
	if id.IsZero() || !c.auth.IsAuthenticated() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return indexOf(c.favorites, id) >= 0
}

// Refetch replaces the set with the server's. Failures are kept in [Snapshot.Err]
// and leave the set unchanged. Signed out, it empties the set without a request.
func (c *Controller) Refetch(ctx context.Context) {
	if !c.auth.IsAuthenticated() {
		c.update(func() bool {
			c.epoch++
			changed := len(c.favorites) > 0 || c.fetching > 0
			c.favorites = []models.FavoriteEntry{}
			c.fetching = 0
			return changed
		})
		return
	}

	var epoch uint64
	ok := c.update(func() bool {
		if c.closed {
			return false
		}
		epoch = c.epoch
		c.fetching++
		c.err = nil
		return true
	})
	if !ok {
		return
	}

	items, err := c.api.ListFavorites(ctx)

	c.update(func() bool {
		if c.closed || c.epoch != epoch {
			return false
		}
		c.fetching--
		if err != nil {
			c.err = err
			return true
		}
		c.favorites = dedupe(items)
		return true
	})

	if err != nil {
		c.logger.Warn("failed to load favorites", "error", err)
	}
}

// Add puts id in the set, first locally and then on the server.
//
// It returns nil without doing anything when id is empty or another mutation is
// pending. Signed out, it redirects to login and returns nil. On failure the local
// insert is undone and the API error is returned.
func (c *Controller) Add(ctx context.Context, id models.MovieID) error {
	m, ok := c.begin(id)
	if !ok {
		return nil
	}
	defer m.release()

	m.apply(func(set []models.FavoriteEntry) ([]models.FavoriteEntry, bool) {
		if indexOf(set, id) >= 0 {
			return set, false
		}
		return append(set, models.FavoriteEntry{ID: id}), true
	})

	if err := c.api.AddFavorite(ctx, id); err != nil {
		m.revert(func(set []models.FavoriteEntry) []models.FavoriteEntry {
			return without(set, id)
		})
		c.logger.Warn("failed to add favorite", "id", id, "error", err)
		return err
	}

	m.release()
	c.Refetch(ctx)
	return nil
}

// Remove takes id out of the set, first locally and then on the server.
//
// The guards are the same as for [Controller.Add]. On failure the set is restored
// to exactly what it was before the call and the API error is returned.
func (c *Controller) Remove(ctx context.Context, id models.MovieID) error {
	m, ok := c.begin(id)
	if !ok {
		return nil
	}
	defer m.release()

	m.apply(func(set []models.FavoriteEntry) ([]models.FavoriteEntry, bool) {
		return without(set, id), true
	})

	if err := c.api.RemoveFavorite(ctx, id); err != nil {
		m.revert(func([]models.FavoriteEntry) []models.FavoriteEntry {
			return m.before
		})
		c.logger.Warn("failed to remove favorite", "id", id, "error", err)
		return err
	}

	m.release()
	c.Refetch(ctx)
	return nil
}

// Toggle removes id when it is a favorite and adds it otherwise.
func (c *Controller) Toggle(ctx context.Context, id models.MovieID) error {
	if id.IsZero() {
		return nil
	}
	if c.IsFavorite(id) {
		return c.Remove(ctx, id)
	}
	return c.Add(ctx, id)
}

// Pending reports whether an add or remove is in flight.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == mutating
}

func (c *Controller) onAuthChange(authenticated bool) {
	if !authenticated {
		c.update(func() bool {
			c.epoch++
			c.favorites = []models.FavoriteEntry{}
			c.fetching = 0
			c.err = nil
			return true
		})
		return
	}
	if c.autoLoad {
		c.background()
	}
}

// background runs Refetch on the controller's own context.
func (c *Controller) background() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		c.Refetch(c.ctx)
	}()
}

// update applies fn under the lock and, when fn reports a change, drops the cached
// snapshot and notifies subscribers. It returns fn's result.
func (c *Controller) update(fn func() bool) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	changed := fn()
	if !changed {
		c.mu.Unlock()
		return false
	}
	c.snapshot = nil
	c.mu.Unlock()

	c.emit()
	return true
}

// emit hands subscribers the latest snapshot, which may already include later changes.
func (c *Controller) emit() {
	snap := c.State()

	c.lmu.Lock()
	fns := make([]func(*Snapshot), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.lmu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func indexOf(set []models.FavoriteEntry, id models.MovieID) int {
	return slices.IndexFunc(set, func(e models.FavoriteEntry) bool { return e.ID.Equal(id) })
}

func without(set []models.FavoriteEntry, id models.MovieID) []models.FavoriteEntry {
	out := make([]models.FavoriteEntry, 0, len(set))
	for _, e := range set {
		if !e.ID.Equal(id) {
			out = append(out, e)
		}
	}
	return out
}

// dedupe keeps the first entry per id and never returns nil.
func dedupe(items []models.FavoriteEntry) []models.FavoriteEntry {
	out := make([]models.FavoriteEntry, 0, len(items))
	for _, e := range items {
		if e.ID.IsZero() || indexOf(out, e.ID) >= 0 {
			continue
		}
		out = append(out, e)
	}
	return out
}
