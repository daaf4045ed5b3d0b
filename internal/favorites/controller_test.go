package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	tu "github.com/desertthunder/flix/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(s *Snapshot) []models.MovieID {
	out := make([]models.MovieID, 0, len(s.Favorites))
	for _, e := range s.Favorites {
		out = append(out, e.ID)
	}
	return out
}

func newController(t *testing.T, api API, auth *tu.FakeAuth, opts Options) *Controller {
	t.Helper()
	c := New(api, auth, auth, opts)
	c.Start()
	t.Cleanup(c.Close)
	return c
}

// loaded returns a signed-in controller whose set mirrors the fake server.
func loaded(t *testing.T, seed ...models.MovieID) (*Controller, *tu.FakeFavorites, *tu.FakeAuth) {
	t.Helper()
	api := tu.NewFakeFavorites(seed...)
	auth := tu.NewFakeAuth(true)
	c := newController(t, api, auth, Options{})
	c.Refetch(context.Background())
	require.NoError(t, c.State().Err)
	return c, api, auth
}

// pending starts fn in a goroutine and waits until it is blocked inside the fake API.
func pending(t *testing.T, api *tu.FakeFavorites, fn func() error) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case <-api.Entered():
	case err := <-done:
		t.Fatalf("call finished before reaching the API: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("call never reached the API")
	}
	return done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("call did not finish")
		return nil
	}
}

func TestRefetch(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the set with the server's", func(t *testing.T) {
		api := tu.NewFakeFavorites("m1", "m2")
		api.Details["m1"] = models.FavoriteEntry{Title: "Inception"}
		c := newController(t, api, tu.NewFakeAuth(true), Options{})

		c.Refetch(ctx)

		s := c.State()
		assert.Equal(t, []models.MovieID{"m1", "m2"}, ids(s))
		assert.Equal(t, "Inception", s.Favorites[0].Title)
		assert.False(t, s.Loading)
		assert.NoError(t, s.Err)
	})

	t.Run("signed out clears without a request", func(t *testing.T) {
		c, api, auth := loaded(t, "m1")
		auth.Set(false)
		before := api.Calls("list")

		c.Refetch(ctx)

		assert.Empty(t, c.State().Favorites)
		assert.NotNil(t, c.State().Favorites)
		assert.False(t, c.State().Loading)
		assert.Equal(t, before, api.Calls("list"))
	})

	t.Run("failure keeps previous set", func(t *testing.T) {
		c, api, _ := loaded(t, "m1")
		api.ListErr = &shared.APIError{Status: http.StatusInternalServerError}

		c.Refetch(ctx)

		s := c.State()
		assert.Equal(t, []models.MovieID{"m1"}, ids(s))
		assert.False(t, s.Loading)
		assert.Equal(t, http.StatusInternalServerError, shared.StatusCode(s.Err))
	})

	t.Run("next success clears the error", func(t *testing.T) {
		c, api, _ := loaded(t, "m1")
		api.ListErr = errors.New("offline")
		c.Refetch(ctx)
		require.Error(t, c.State().Err)

		api.ListErr = nil
		c.Refetch(ctx)
		assert.NoError(t, c.State().Err)
	})

	t.Run("nil list becomes empty", func(t *testing.T) {
		c := newController(t, nilList{}, tu.NewFakeAuth(true), Options{})
		c.Refetch(ctx)

		assert.NotNil(t, c.State().Favorites)
		assert.Empty(t, c.State().Favorites)
	})

	t.Run("duplicate ids from the server collapse", func(t *testing.T) {
		c, _, _ := loaded(t, models.ParseMovieID(42), "42", "m1")
		assert.Equal(t, []models.MovieID{"42", "m1"}, ids(c.State()))
	})

	t.Run("distinct long ids are kept apart", func(t *testing.T) {
		c, _, _ := loaded(t, models.ParseMovieID("12345678901234567890"), models.ParseMovieID("12345678901234567891"))
		assert.Len(t, c.State().Favorites, 2)
		assert.False(t, c.IsFavorite(models.ParseMovieID("12345678901234567892")))
	})

	t.Run("signed out while loading drops the late result", func(t *testing.T) {
		api := newBlockingList(models.FavoriteEntry{ID: "m1"})
		auth := tu.NewFakeAuth(true)
		c := newController(t, api, auth, Options{})

		done := make(chan struct{})
		go func() {
			c.Refetch(ctx)
			close(done)
		}()
		<-api.entered

		auth.Expire()
		c.Refetch(ctx)
		close(api.release)
		<-done

		assert.Empty(t, c.State().Favorites)
		assert.False(t, c.State().Loading)
	})

	t.Run("loading while the request is out", func(t *testing.T) {
		api := newBlockingList()
		c := newController(t, api, tu.NewFakeAuth(true), Options{})

		done := make(chan struct{})
		go func() {
			c.Refetch(ctx)
			close(done)
		}()
		<-api.entered

		assert.True(t, c.State().Loading)
		close(api.release)
		<-done
		assert.False(t, c.State().Loading)
	})
}

func TestIsFavorite(t *testing.T) {
	t.Run("id type agnostic", func(t *testing.T) {
		var numeric, text models.FavoriteEntry
		require.NoError(t, json.Unmarshal([]byte(`{"id":42}`), &numeric))
		require.NoError(t, json.Unmarshal([]byte(`{"id":"42"}`), &text))

		for _, seed := range []models.MovieID{numeric.ID, text.ID} {
			c, _, _ := loaded(t, seed)
			assert.True(t, c.IsFavorite(models.ParseMovieID(42)))
			assert.True(t, c.IsFavorite(models.ParseMovieID("42")))
			assert.True(t, c.IsFavorite(models.ParseMovieID(42.0)))
			assert.False(t, c.IsFavorite(models.ParseMovieID(43)))
		}
	})

	t.Run("false when signed out", func(t *testing.T) {
		c, _, auth := loaded(t, "m1")
		require.True(t, c.IsFavorite("m1"))

		auth.Set(false)
		assert.False(t, c.IsFavorite("m1"))
	})

	t.Run("false for empty id", func(t *testing.T) {
		c, _, _ := loaded(t, "m1")
		assert.False(t, c.IsFavorite(""))
		assert.False(t, c.IsFavorite("   "))
	})
}

func TestAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("optimistic then reconciled", func(t *testing.T) {
		c, api, _ := loaded(t)
		api.Details["m1"] = models.FavoriteEntry{Title: "Inception"}
		api.Hold()

		done := pending(t, api, func() error { return c.Add(ctx, "m1") })

		assert.True(t, c.IsFavorite("m1"))
		assert.Equal(t, []models.FavoriteEntry{{ID: "m1"}}, c.State().Favorites)

		api.Release()
		require.NoError(t, wait(t, done))

		assert.Equal(t, []models.FavoriteEntry{{ID: "m1", Title: "Inception"}}, c.State().Favorites)
	})

	t.Run("failure rolls back and returns the error", func(t *testing.T) {
		c, api, auth := loaded(t, "m0")
		api.AddErr = &shared.APIError{Status: http.StatusInternalServerError, Message: "boom"}
		api.Hold()

		done := pending(t, api, func() error { return c.Add(ctx, "m1") })
		assert.True(t, c.IsFavorite("m1"))

		api.Release()
		err := wait(t, done)

		var apiErr *shared.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
		assert.False(t, c.IsFavorite("m1"))
		assert.Equal(t, []models.MovieID{"m0"}, ids(c.State()))
		assert.Zero(t, auth.Redirects())
	})

	t.Run("401 is returned without redirect", func(t *testing.T) {
		c, api, auth := loaded(t)
		api.AddErr = &shared.APIError{Status: http.StatusUnauthorized}

		err := c.Add(ctx, "m1")

		assert.True(t, shared.IsUnauthorized(err))
		assert.Zero(t, auth.Redirects())
		assert.False(t, c.IsFavorite("m1"))
	})

	t.Run("existing id is not inserted twice", func(t *testing.T) {
		c, api, _ := loaded(t, "m1")
		api.Hold()

		done := pending(t, api, func() error { return c.Add(ctx, models.ParseMovieID("m1")) })
		assert.Len(t, c.State().Favorites, 1)

		api.AddErr = errors.New("conflict")
		api.Release()
		require.Error(t, wait(t, done))

		assert.True(t, c.IsFavorite("m1"))
	})

	t.Run("signed out redirects", func(t *testing.T) {
		api := tu.NewFakeFavorites()
		auth := tu.NewFakeAuth(false)
		c := newController(t, api, auth, Options{})

		require.NoError(t, c.Add(ctx, "m1"))

		assert.Equal(t, 1, auth.Redirects())
		assert.Zero(t, api.Calls("add"))
		assert.Empty(t, c.State().Favorites)
		assert.False(t, c.Pending())
	})

	t.Run("empty id is a no-op", func(t *testing.T) {
		c, api, auth := loaded(t)
		require.NoError(t, c.Add(ctx, ""))
		assert.Zero(t, api.Calls("add"))
		assert.Zero(t, auth.Redirects())
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("optimistic removal", func(t *testing.T) {
		c, api, _ := loaded(t, "m1", "m2")
		api.Hold()

		done := pending(t, api, func() error { return c.Remove(ctx, "m1") })
		assert.False(t, c.IsFavorite("m1"))
		assert.Equal(t, []models.MovieID{"m2"}, ids(c.State()))

		api.Release()
		require.NoError(t, wait(t, done))
		assert.Equal(t, []models.MovieID{"m2"}, ids(c.State()))
	})

	t.Run("failure restores the exact snapshot", func(t *testing.T) {
		c, api, _ := loaded(t, "m1")
		before := c.State().Favorites
		api.RemoveErr = &shared.APIError{Status: http.StatusInternalServerError}
		api.Hold()

		done := pending(t, api, func() error { return c.Remove(ctx, "m1") })
		assert.Empty(t, c.State().Favorites)

		api.Release()
		err := wait(t, done)

		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, shared.StatusCode(err))
		assert.Equal(t, before, c.State().Favorites)
		assert.True(t, c.IsFavorite("m1"))
	})

	t.Run("numeric id removes string entry", func(t *testing.T) {
		c, api, _ := loaded(t, "42")
		require.NoError(t, c.Remove(ctx, models.ParseMovieID(42)))

		assert.False(t, c.IsFavorite("42"))
		assert.Empty(t, api.IDs())
	})

	t.Run("signed out redirects", func(t *testing.T) {
		api := tu.NewFakeFavorites("m1")
		auth := tu.NewFakeAuth(false)
		c := newController(t, api, auth, Options{})

		require.NoError(t, c.Remove(ctx, "m1"))
		assert.Equal(t, 1, auth.Redirects())
		assert.Zero(t, api.Calls("remove"))
	})
}

func TestSingleFlight(t *testing.T) {
	ctx := context.Background()
	c, api, auth := loaded(t)
	api.Hold()

	done := pending(t, api, func() error { return c.Add(ctx, "m1") })
	assert.True(t, c.Pending())

	assert.NoError(t, c.Add(ctx, "m2"))
	assert.NoError(t, c.Remove(ctx, "m1"))
	assert.NoError(t, c.Toggle(ctx, "m3"))

	assert.Equal(t, 1, api.Calls("add"))
	assert.Zero(t, api.Calls("remove"))
	assert.Equal(t, []models.MovieID{"m1"}, ids(c.State()))
	assert.Zero(t, auth.Redirects())

	api.Release()
	require.NoError(t, wait(t, done))
	assert.False(t, c.Pending())

	require.NoError(t, c.Add(ctx, "m2"))
	assert.Equal(t, 2, api.Calls("add"))
}

func TestToggle(t *testing.T) {
	ctx := context.Background()

	t.Run("twice is identity", func(t *testing.T) {
		for _, seed := range [][]models.MovieID{nil, {"m1"}} {
			c, _, _ := loaded(t, seed...)
			was := c.IsFavorite("m1")

			require.NoError(t, c.Toggle(ctx, "m1"))
			assert.Equal(t, !was, c.IsFavorite("m1"))

			require.NoError(t, c.Toggle(ctx, "m1"))
			assert.Equal(t, was, c.IsFavorite("m1"))
		}
	})

	t.Run("empty id is a no-op", func(t *testing.T) {
		c, api, _ := loaded(t)
		require.NoError(t, c.Toggle(ctx, ""))
		assert.Zero(t, api.Calls("add"))
		assert.Zero(t, api.Calls("remove"))
	})
}

func TestAuthTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("logout clears immediately", func(t *testing.T) {
		c, api, auth := loaded(t, "m1")
		api.Hold()
		done := pending(t, api, func() error { return c.Add(ctx, "m2") })

		auth.Set(false)
		assert.Equal(t, []models.FavoriteEntry{}, c.State().Favorites)
		assert.False(t, c.State().Loading)

		api.Release()
		require.NoError(t, wait(t, done))
		assert.Empty(t, c.State().Favorites)
	})

	t.Run("failed mutation after logout does not resurrect entries", func(t *testing.T) {
		c, api, auth := loaded(t, "m1")
		api.RemoveErr = errors.New("offline")
		api.Hold()
		done := pending(t, api, func() error { return c.Remove(ctx, "m1") })

		auth.Set(false)
		api.Release()
		require.Error(t, wait(t, done))

		assert.Empty(t, c.State().Favorites)
	})

	t.Run("stale list response is dropped", func(t *testing.T) {
		api := newBlockingList(models.FavoriteEntry{ID: "m1"})
		auth := tu.NewFakeAuth(true)
		c := newController(t, api, auth, Options{})

		done := make(chan struct{})
		go func() {
			c.Refetch(ctx)
			close(done)
		}()
		<-api.entered

		auth.Set(false)
		close(api.release)
		<-done

		assert.Empty(t, c.State().Favorites)
		assert.False(t, c.State().Loading)
	})

	t.Run("auto load on start", func(t *testing.T) {
		api := tu.NewFakeFavorites("m1")
		c := newController(t, api, tu.NewFakeAuth(true), Options{AutoLoad: true})

		assert.Eventually(t, func() bool { return len(c.State().Favorites) == 1 }, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("auto load on login", func(t *testing.T) {
		api := tu.NewFakeFavorites("m1")
		auth := tu.NewFakeAuth(false)
		c := newController(t, api, auth, Options{AutoLoad: true})
		assert.Zero(t, api.Calls("list"))

		auth.Set(true)

		assert.Eventually(t, func() bool { return c.IsFavorite("m1") }, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("no auto load when disabled", func(t *testing.T) {
		api := tu.NewFakeFavorites("m1")
		auth := tu.NewFakeAuth(false)
		newController(t, api, auth, Options{})

		auth.Set(true)
		time.Sleep(20 * time.Millisecond)
		assert.Zero(t, api.Calls("list"))
	})
}

func TestClose(t *testing.T) {
	ctx := context.Background()

	t.Run("suppresses later writes", func(t *testing.T) {
		c, api, _ := loaded(t, "m1")
		api.Hold()
		done := pending(t, api, func() error { return c.Remove(ctx, "m1") })
		frozen := c.State()
		lists := api.Calls("list")

		c.Close()
		api.Release()
		require.NoError(t, wait(t, done))

		assert.Same(t, frozen, c.State())
		assert.Equal(t, lists, api.Calls("list"))
	})

	t.Run("stops following auth", func(t *testing.T) {
		c, _, auth := loaded(t, "m1")
		c.Close()
		frozen := c.State()

		auth.Set(false)
		assert.Same(t, frozen, c.State())
	})

	t.Run("idempotent", func(t *testing.T) {
		c, _, _ := loaded(t)
		c.Close()
		assert.NotPanics(t, c.Close)
	})
}

func TestState(t *testing.T) {
	ctx := context.Background()

	t.Run("stable until something changes", func(t *testing.T) {
		c, _, _ := loaded(t, "m1")
		first := c.State()
		assert.Same(t, first, c.State())

		require.NoError(t, c.Add(ctx, "m2"))
		assert.NotSame(t, first, c.State())
	})

	t.Run("signed-out refetch on empty set keeps the snapshot", func(t *testing.T) {
		c := newController(t, tu.NewFakeFavorites(), tu.NewFakeAuth(false), Options{})
		first := c.State()
		c.Refetch(ctx)
		assert.Same(t, first, c.State())
	})

	t.Run("subscribers see every change", func(t *testing.T) {
		c, _, _ := loaded(t)

		var mu sync.Mutex
		var seen [][]models.MovieID
		cancel := c.Subscribe(func(s *Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, ids(s))
		})

		require.NoError(t, c.Add(ctx, "m1"))
		cancel()
		require.NoError(t, c.Remove(ctx, "m1"))

		mu.Lock()
		defer mu.Unlock()
		require.NotEmpty(t, seen)
		assert.Equal(t, []models.MovieID{"m1"}, seen[0])
		assert.Equal(t, []models.MovieID{"m1"}, seen[len(seen)-1])
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		c, _, _ := loaded(t, "m1")
		s := c.State()
		s.Favorites[0].ID = "changed"

		assert.True(t, c.IsFavorite("m1"))
	})
}

type nilList struct{}

func (nilList) ListFavorites(context.Context) ([]models.FavoriteEntry, error) { return nil, nil }
func (nilList) AddFavorite(context.Context, models.MovieID) error             { return nil }
func (nilList) RemoveFavorite(context.Context, models.MovieID) error          { return nil }

// blockingList answers the first list call only after release is closed.
type blockingList struct {
	nilList
	items   []models.FavoriteEntry
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingList(items ...models.FavoriteEntry) *blockingList {
	return &blockingList{items: items, entered: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingList) ListFavorites(ctx context.Context) ([]models.FavoriteEntry, error) {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return b.items, nil
}
