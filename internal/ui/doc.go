// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a small movie browser built around the favorites controller:
//  1. [PopularView] : Browse the most popular movies
//  2. [FavoritesView] : The signed-in user's favorites
//  3. [DetailView] : Details for the selected movie
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Mutations run as commands off the event loop. The controller's optimistic changes and rollbacks reach the
// model through [Run], which subscribes to the controller and forwards every snapshot with Program.Send.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, f, tab, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
