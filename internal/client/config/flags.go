package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/datamarket/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. Flags this
// function does not know (such as -c) are ignored. The interval is only
// replaced when -i is given and must be positive. Panics on malformed
// values.
func parseFlags(cfg *Config, args []string) {
	fs := flagx.NewFlagSet("client")

	fs.StringVarP(&cfg.RPCAddr, "rpc", "a", cfg.RPCAddr, "marketd JSON-RPC endpoint")
	fs.StringVar(&cfg.HealthAddr, "health", cfg.HealthAddr, "marketd gRPC health endpoint")
	fs.StringVar(&cfg.AgentAddr, "agent", cfg.AgentAddr, "signing agent endpoint")
	fs.StringVarP(&cfg.Token, "token", "t", cfg.Token, "API token")
	interval := fs.IntP("interval", "i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVarP(&cfg.LocalDB, "db", "d", cfg.LocalDB, "local database file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if fs.Changed("interval") {
		if *interval <= 0 {
			panic(fmt.Sprintf("--interval must be positive, got %d", *interval))
		}
		cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
	}
}
