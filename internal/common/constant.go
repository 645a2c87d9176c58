// Package common contains shared constants and sentinel errors used across
// datamarket components.
package common

// RPCNamespace is the JSON-RPC namespace the market network API is served under.
const RPCNamespace = "Market"

// WalletNamespace is the JSON-RPC namespace of the signing agent API.
const WalletNamespace = "Wallet"

// TransferIDPrefix prefixes identifiers generated for payment transfers.
const TransferIDPrefix = "pay_"
