package wallet

import (
	"os"

	"github.com/dmitrijs2005/datamarket/internal/flagx"
)

// Config holds the agent's settings.
type Config struct {
	Addr        string
	Seed        string
	Accounts    int
	AutoApprove bool
	// Preauthorized starts the agent as if the user had connected before.
	Preauthorized bool
	LogLevel      string
}

func (c *Config) LoadDefaults() {
	c.Addr = "127.0.0.1:8095"
	c.Seed = "datamarket-dev"
	c.Accounts = 3
	c.AutoApprove = true
	c.Preauthorized = false
	c.LogLevel = "info"
}

// LoadConfig applies defaults and then command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg, os.Args[1:])
	return cfg
}

func parseFlags(cfg *Config, args []string) {
	fs := flagx.NewFlagSet("agent")

	fs.StringVarP(&cfg.Addr, "addr", "a", cfg.Addr, "listen address")
	fs.StringVar(&cfg.Seed, "seed", cfg.Seed, "seed the accounts are derived from")
	fs.IntVarP(&cfg.Accounts, "accounts", "n", cfg.Accounts, "number of accounts")
	fs.BoolVar(&cfg.AutoApprove, "approve", cfg.AutoApprove, "approve account requests")
	fs.BoolVar(&cfg.Preauthorized, "preauthorized", cfg.Preauthorized, "start with accounts already authorized")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
	if cfg.Accounts < 1 {
		cfg.Accounts = 1
	}
}
