package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/datamarket/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a, --rpc string          JSON-RPC bind address (e.g., ":8090")
//	    --health string       gRPC health bind address
//	-d, --dsn string          PostgreSQL DSN
//	-s, --secret string       JWT HMAC secret key
//	-t, --token-ttl int       token validity, minutes
//	-u, --s3-user string      S3 root user
//	-p, --s3-password string  S3 root password
//	-b, --s3-bucket string    S3 bucket name
//	-g, --s3-region string    S3 region
//	-e, --s3-endpoint string  S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	    --blob string         blob backend: s3 or memory
//	    --ledger string       ledger backend: postgres or memory
//	    --settle-interval int settlement interval, seconds
//	    --stream-duration int stream duration, minutes
//	    --rate float          requests per second per token
//	    --burst int           burst size per token
//	    --print-token         print an admin token at startup
//	    --log-level string    log level
//
// Duration flags are accepted as positive integers and converted to
// time.Duration. A duration flag that is not given leaves the current value
// alone, so sub-unit values from JSON survive. Unknown flags such as -c are
// ignored. Panics on malformed values.
func parseFlags(cfg *Config, args []string) {
	fs := flagx.NewFlagSet("server")

	fs.StringVarP(&cfg.RPCAddr, "rpc", "a", cfg.RPCAddr, "address and port of the JSON-RPC endpoint")
	fs.StringVar(&cfg.HealthAddr, "health", cfg.HealthAddr, "address and port of the gRPC health endpoint")
	fs.StringVarP(&cfg.DatabaseDSN, "dsn", "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVarP(&cfg.SecretKey, "secret", "s", cfg.SecretKey, "secret key")
	tokenTTL := fs.IntP("token-ttl", "t", int(cfg.TokenValidityDuration.Minutes()), "token validity (in minutes)")

	fs.StringVarP(&cfg.S3RootUser, "s3-user", "u", cfg.S3RootUser, "S3 root user")
	fs.StringVarP(&cfg.S3RootPassword, "s3-password", "p", cfg.S3RootPassword, "S3 root password")
	fs.StringVarP(&cfg.S3Bucket, "s3-bucket", "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVarP(&cfg.S3Region, "s3-region", "g", cfg.S3Region, "S3 region")
	fs.StringVarP(&cfg.S3BaseEndpoint, "s3-endpoint", "e", cfg.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&cfg.BlobBackend, "blob", cfg.BlobBackend, "blob backend (s3|memory)")
	fs.StringVar(&cfg.LedgerBackend, "ledger", cfg.LedgerBackend, "ledger backend (postgres|memory)")
	settle := fs.Int("settle-interval", int(cfg.SettleInterval.Seconds()), "settlement interval (in seconds)")
	stream := fs.Int("stream-duration", int(cfg.StreamDuration.Minutes()), "stream duration (in minutes)")

	fs.Float64Var(&cfg.RateLimit, "rate", cfg.RateLimit, "requests per second per token")
	fs.IntVar(&cfg.RateBurst, "burst", cfg.RateBurst, "burst size per token")
	fs.BoolVar(&cfg.PrintToken, "print-token", cfg.PrintToken, "print an admin token at startup")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if fs.Changed("token-ttl") {
		cfg.TokenValidityDuration = positive("token-ttl", *tokenTTL, time.Minute)
	}
	if fs.Changed("settle-interval") {
		cfg.SettleInterval = positive("settle-interval", *settle, time.Second)
	}
	if fs.Changed("stream-duration") {
		cfg.StreamDuration = positive("stream-duration", *stream, time.Minute)
	}
}

func positive(name string, n int, unit time.Duration) time.Duration {
	if n <= 0 {
		panic(fmt.Sprintf("--%s must be positive, got %d", name, n))
	}
	return time.Duration(n) * unit
}
