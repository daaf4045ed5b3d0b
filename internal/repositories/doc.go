// Package repositories implements SQLite persistence for the client's local state.
//
// The movie data itself always comes from the API; the only thing kept on disk is
// the login, so the next run starts signed in.
//
// Key Implementations:
//   - [SessionRepository] : session rows with soft deletes, implements [models.Repository]
//   - [SessionStore] : adapts the repository to [auth.Store]
//
// Sequence numbers provide stable, human-readable ordering (session #3) independent of
// UUIDs and creation timestamps. [NextSequence] atomically increments per-table counters
// kept in dedicated sequence tables.
package repositories
