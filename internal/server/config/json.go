package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/datamarket/internal/flagx"
	"github.com/dmitrijs2005/datamarket/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. Pointer fields distinguish "absent" from "zero".
type JsonConfig struct {
	RPCAddr               string         `json:"rpc_addr"`
	HealthAddr            string         `json:"health_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	BlobBackend           string         `json:"blob_backend"`
	LedgerBackend         string         `json:"ledger_backend"`
	SettleInterval        timex.Duration `json:"settle_interval"`
	StreamDuration        timex.Duration `json:"stream_duration"`
	RateLimit             *float64       `json:"rate_limit"`
	RateBurst             *int           `json:"rate_burst"`
	PrintToken            *bool          `json:"print_token"`
	LogLevel              string         `json:"log_level"`
}

// parseJson loads configuration values from the JSON file named by -c or
// --config in args. Without that flag nothing is loaded. Keys absent from
// the file leave cfg untouched. If the file cannot be read or contains
// invalid JSON, the function panics.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var c JsonConfig
	if err := json.Unmarshal(data, &c); err != nil {
		panic(err)
	}

	setString(&cfg.RPCAddr, c.RPCAddr)
	setString(&cfg.HealthAddr, c.HealthAddr)
	setString(&cfg.DatabaseDSN, c.DatabaseDSN)
	setString(&cfg.SecretKey, c.SecretKey)
	setString(&cfg.S3RootUser, c.S3RootUser)
	setString(&cfg.S3RootPassword, c.S3RootPassword)
	setString(&cfg.S3Bucket, c.S3Bucket)
	setString(&cfg.S3Region, c.S3Region)
	setString(&cfg.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&cfg.BlobBackend, c.BlobBackend)
	setString(&cfg.LedgerBackend, c.LedgerBackend)
	setString(&cfg.LogLevel, c.LogLevel)

	setDuration(&cfg.TokenValidityDuration, "token_validity_duration", c.TokenValidityDuration.Duration)
	setDuration(&cfg.SettleInterval, "settle_interval", c.SettleInterval.Duration)
	setDuration(&cfg.StreamDuration, "stream_duration", c.StreamDuration.Duration)
	if c.RateLimit != nil {
		cfg.RateLimit = *c.RateLimit
	}
	if c.RateBurst != nil {
		cfg.RateBurst = *c.RateBurst
	}
	if c.PrintToken != nil {
		cfg.PrintToken = *c.PrintToken
	}
}

// setDuration keeps dst for a zero value and panics on a negative one.
func setDuration(dst *time.Duration, key string, v time.Duration) {
	if v < 0 {
		panic(fmt.Sprintf("%s must be positive, got %s", key, v))
	}
	if v != 0 {
		*dst = v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
