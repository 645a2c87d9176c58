// Package rpc serves the Market JSON-RPC API over HTTP.
package rpc
