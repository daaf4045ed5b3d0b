// Package auth holds the signed-in user's session.
//
// A [Session] is created once at start-up and passed to everything that needs to
// know who is signed in: the API client reads bearer tokens from it through the
// [oauth2.TokenSource] interface and the favorites controller subscribes to its
// login and logout transitions. Nothing reads authentication state from a global.
//
// Sessions survive restarts through a [Store]; [Session.Load] restores the last
// login and [Session.Logout] removes it.
package auth
