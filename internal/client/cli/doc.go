// Package cli provides the interactive mediahub command-line client.
//
// It wires configuration, the local session database, the HTTP transport,
// the query cache and the services, then runs a REPL over them. Typical
// flow: restore the persisted session, sign in if needed, browse and manage
// media.
//
// Key features:
//   - Sign in / sign up / sign out
//   - List, page and search media; show a single item
//   - Upload, update, delete and download files
//   - Backup to an S3-compatible bucket
//
// While signed in the App keeps the media list subscribed, so mutations
// refresh it in the background. The REPL is started via App.Run(ctx), which
// blocks until the user exits. See runREPL for the command set.
package cli
