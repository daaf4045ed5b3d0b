// Package tasks runs the multi-request operations of the client with real-time progress reporting.
//
// # Core Operations
//
//  1. [Feed.Home] : the home screen
//     - Fetches the top five, most popular and top rated lists in parallel
//     - A failed list records its error without failing the others
//
//  2. [Feed.ExportFavorites] : export the user's favorites
//     - Fetches the full record of each favorite through a rate-limited worker pool
//     - Writes one file (or directory, for Markdown) per movie via the formatter
//     - Writes export_manifest.json summarizing successes and failures
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
