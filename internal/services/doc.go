// Package services implements the HTTP client for the movie API.
//
// # Interfaces
//
// Consumers depend on the narrow interface they need rather than on [MovieClient]:
//   - [Catalog] : listings, search, movie details, reviews and people (no auth)
//   - [Accounts] : login, registration, logout and profile
//   - [Favorites] : the signed-in user's favorites set
//
// # Authentication
//
// Every request carries the application token in the x-app-token header.
// User endpoints are sent through an [oauth2.Transport] whose token source is the
// caller's session, so the Authorization header always reflects the current login.
// When no one is signed in the token source fails with [shared.ErrNotAuthenticated]
// and no request leaves the process.
//
// # Error Handling
//
// Non-2xx responses and transport failures become a [shared.APIError]; the status is
// zero when no response was received. The message is taken from the "message",
// "error" or "detail" field of a JSON error body when present.
//
// # List Envelopes
//
// List endpoints answer {"data": [...], "pagination": {...}}. A data field that is
// not an array decodes as an empty list instead of failing.
package services
