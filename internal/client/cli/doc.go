// Package cli provides the interactive datamarket command-line client.
//
// It wires configuration, the marketd client, the signing agent and the
// three session managers (wallet, upload, payment) into a REPL. A background
// watcher probes marketd and flips the prompt between online and offline.
//
// Key features:
//   - Connect / Disconnect a wallet account
//   - Upload a dataset and publish it to the catalog
//   - Browse the catalog, buy a dataset, inspect and cancel payments
//   - Seller dashboard and analytics
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
