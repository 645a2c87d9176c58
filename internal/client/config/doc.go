// Package config loads runtime configuration for the datamarket CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c or --config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a, --rpc string        marketd JSON-RPC endpoint
//	    --health string     marketd gRPC health endpoint
//	    --agent string      signing agent endpoint (ws://)
//	-t, --token string      API token
//	-i, --interval int      online status check interval (seconds)
//	    --log-level string  log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds. Missing keys keep their defaults:
//
//	{
//	  "rpc_addr": "http://127.0.0.1:8090/rpc/v0",
//	  "health_addr": "127.0.0.1:8091",
//	  "agent_addr": "ws://127.0.0.1:8095/rpc/v0",
//	  "token": "eyJ...",
//	  "online_check_interval": "3s",
//	  "log_level": "warn"
//	}
package config
