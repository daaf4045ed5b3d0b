// Package models defines domain entities and persistence interfaces for the flix movie client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): structs decoded from the movie API
//   - [Movie], [MovieDetail], [Credit] : listing and detail payloads
//   - [Review], [Person] : review and person payloads
//   - [Page] with [Pagination] : the paginated list envelope
//   - [FavoriteEntry] : one favorited movie, keyed by [MovieID]
//   - [Credentials], [Registration], [Profile], [ProfileUpdate], [AuthResult] : account payloads
//
// 2. Persistent Entities: database-backed models with full lifecycle management
//   - [Session] : the signed-in user's bearer token
//
// [MovieID] accepts JSON strings and numbers alike and compares in trimmed string form,
// so an entry decoded from {"id": 42} matches one decoded from {"id": "42"}.
package models
