// Package cli provides the interactive PhotoVault command-line client.
//
// It wires configuration, the entity store, the photo services and a gateway
// to remote object storage behind a REPL. Typical flow: restore the saved
// session, start a background connectivity watcher, and execute user commands.
//
// Key features:
//   - Signup / Login / Logout, temporary passwords and password reset
//   - Folder tree navigation: ls, tree, cd, mkdir, rename, rmdir
//   - Photos: upload (batched, quota checked), mv, rm, url, usage
//   - Customer administration for admin accounts
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
