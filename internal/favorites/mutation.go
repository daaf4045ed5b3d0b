package favorites

import (
	"slices"

	"github.com/desertthunder/flix/internal/models"
)

// mutation is one optimistic change: snapshot the set, apply the change, then
// either keep it (release, then refetch) or revert it.
//
// A mutation holds the controller's single-flight guard from begin until release.
type mutation struct {
	c        *Controller
	epoch    uint64
	before   []models.FavoriteEntry
	applied  bool
	released bool
}

// begin takes the guard for a mutation on id.
//
// It reports false when id is empty, the controller is closed, another mutation
// holds the guard, or nobody is signed in. The last case redirects to login.
func (c *Controller) begin(id models.MovieID) (*mutation, bool) {
	if id.IsZero() {
		return nil, false
	}

	c.mu.Lock()
	if c.closed || c.phase == mutating {
		c.mu.Unlock()
		return nil, false
	}
	c.phase = mutating
	m := &mutation{c: c, epoch: c.epoch}
	c.mu.Unlock()

	if !c.auth.IsAuthenticated() {
		m.release()
		if c.redirect != nil {
			c.redirect.RedirectToLogin()
		}
		return nil, false
	}
	return m, true
}

// apply snapshots the set and replaces it with fn's result when fn reports a change.
func (m *mutation) apply(fn func(set []models.FavoriteEntry) ([]models.FavoriteEntry, bool)) {
	c := m.c
	c.update(func() bool {
		if c.epoch != m.epoch {
			return false
		}
		m.before = slices.Clone(c.favorites)
		next, changed := fn(slices.Clone(c.favorites))
		if !changed {
			return false
		}
		m.applied = true
		c.favorites = next
		return true
	})
}

// revert undoes an applied change and releases the guard. Nothing is written when the
// controller has been closed or the user signed out since begin.
func (m *mutation) revert(fn func(set []models.FavoriteEntry) []models.FavoriteEntry) {
	c := m.c
	c.update(func() bool {
		if !m.applied || c.epoch != m.epoch {
			return false
		}
		c.favorites = fn(slices.Clone(c.favorites))
		return true
	})
	m.release()
}

// release gives the guard back. Only the first call has an effect.
func (m *mutation) release() {
	if m.released {
		return
	}
	m.released = true

	m.c.mu.Lock()
	m.c.phase = idle
	m.c.mu.Unlock()
}
