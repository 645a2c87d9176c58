// Package client contains the client-side transport for datamarket.
//
// # Overview
//
// The package provides:
//  1. MarketClient, a go-jsonrpc client for the "Market" namespace served by
//     marketd. It adapts the remote API to the storage and payment network
//     contracts of the session managers and exposes the catalog calls used by
//     the CLI.
//  2. A liveness probe over the standard gRPC health service.
//  3. DialAgent, a websocket JSON-RPC client for the signing agent's
//     "Wallet" namespace.
//
// # Error Handling
//
// Transport failures are reported as ErrUnavailable, rejected tokens and
// missing permissions as ErrUnauthorized. Typed marketd errors are mapped
// onto the sentinels in internal/common, so callers match everything with
// errors.Is.
package client
