package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "short flags",
			args: []string{"-a", "http://10.0.0.1:9000/rpc/v0", "-i", "10", "-t", "tok"},
			expected: &Config{
				RPCAddr: "http://10.0.0.1:9000/rpc/v0", Token: "tok", OnlineCheckInterval: 10 * time.Second,
			},
		},
		{
			name: "long flags and unknown ones",
			args: []string{"--health", "h:1", "--agent=ws://a:2/rpc/v0", "--log-level", "debug", "-c", "x.json", "--db", "/tmp/dm.db"},
			expected: &Config{
				HealthAddr: "h:1", AgentAddr: "ws://a:2/rpc/v0", LogLevel: "debug", LocalDB: "/tmp/dm.db",
			},
		},
		{name: "incorrect check interval", args: []string{"-i", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config, tt.args) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config, tt.args) })
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}
