// Package cli provides the interactive QA issue dashboard.
//
// It wires configuration, the API client, the background syncer and the
// dashboard services, then runs a REPL over stdin. The issue list refreshes
// on its own every sync interval; commands act on the synced view.
//
// Key features:
//   - list / show issues from the synced view
//   - report new issues with image attachments
//   - edit status, severity, assignee and notes
//   - delete issues
//   - export the view as CSV, Markdown or HTML
//   - status: counters, last sync time and connectivity
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
