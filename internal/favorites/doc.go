// Package favorites keeps a client-side mirror of the signed-in user's favorite movies.
//
// # Controller
//
// A [Controller] owns one copy of the favorites set and keeps it in step with the
// server. Add and Remove change the local set before the request is sent, so a UI
// reading [Controller.State] sees the change at once. When the request fails the
// change is undone and the error is returned; when it succeeds the whole list is
// fetched again to pick up the fields only the server knows (title, image, rating).
//
// Only one add or remove runs at a time. A call made while another is pending
// returns nil without doing anything.
//
// # Authentication
//
// The controller asks its [AuthState] before every operation. Signed-out callers are
// sent to the login entry point and nothing changes. Signing out empties the set
// immediately; responses that arrive afterwards are dropped.
//
// # Errors
//
// [Controller.Refetch] never returns an error; the failure is kept in
// [Snapshot.Err] and the previous set is left alone. Add and Remove return the
// API failure, a [shared.APIError], after rolling back. Status 401 gets no special
// treatment here.
package favorites
