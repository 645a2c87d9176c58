package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/datamarket/internal/flagx"
	"github.com/dmitrijs2005/datamarket/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	RPCAddr             string         `json:"rpc_addr"`
	HealthAddr          string         `json:"health_addr"`
	AgentAddr           string         `json:"agent_addr"`
	Token               string         `json:"token"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	LogLevel            string         `json:"log_level"`
	LocalDB             string         `json:"local_db"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c/--config in args. Keys absent from the file leave cfg untouched.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.RPCAddr != "" {
		cfg.RPCAddr = jc.RPCAddr
	}
	if jc.HealthAddr != "" {
		cfg.HealthAddr = jc.HealthAddr
	}
	if jc.AgentAddr != "" {
		cfg.AgentAddr = jc.AgentAddr
	}
	if jc.Token != "" {
		cfg.Token = jc.Token
	}
	if jc.OnlineCheckInterval.Duration < 0 {
		panic(fmt.Sprintf("online_check_interval must be positive, got %s", jc.OnlineCheckInterval.Duration))
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LocalDB != "" {
		cfg.LocalDB = jc.LocalDB
	}
}
