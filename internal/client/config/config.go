package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the datamarket CLI.
//
// Fields:
//   - RPCAddr: marketd JSON-RPC endpoint (http URL).
//   - HealthAddr: host:port of marketd's gRPC health service.
//   - AgentAddr: signing agent JSON-RPC endpoint (ws URL).
//   - Token: bearer token presented to marketd; empty means read-only.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - LogLevel: debug, info, warn or error.
//   - LocalDB: path of the SQLite file holding the local upload ledger.
type Config struct {
	RPCAddr             string
	HealthAddr          string
	AgentAddr           string
	Token               string
	OnlineCheckInterval time.Duration
	LogLevel            string
	LocalDB             string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.RPCAddr = "http://127.0.0.1:8090/rpc/v0"
	c.HealthAddr = "127.0.0.1:8091"
	c.AgentAddr = "ws://127.0.0.1:8095/rpc/v0"
	c.Token = ""
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "warn"
	c.LocalDB = "datamarket.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
