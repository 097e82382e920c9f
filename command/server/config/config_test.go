package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	return path
}

func TestReadConfigFile(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		file    string
		content string
		maxTxs  uint64
	}{
		{
			name: "json",
			file: "config.json",
			content: `{
				"data_dir": "/tmp/pool",
				"seal": true,
				"log_level": "DEBUG",
				"tx_pool": {"max_txs": 100, "tx_ttl": "1h"},
				"state": {"backend": "jsonrpc", "endpoint": "http://localhost:9545"}
			}`,
			maxTxs: 100,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `
data_dir: /tmp/pool
seal: true
log_level: DEBUG
tx_pool:
  max_txs: 100
  tx_ttl: 1h
state:
  backend: jsonrpc
  endpoint: http://localhost:9545
`,
			maxTxs: 100,
		},
		{
			name: "hcl",
			file: "config.hcl",
			content: `
data_dir = "/tmp/pool"
seal = true
log_level = "DEBUG"
tx_pool {
  tx_ttl = "1h"
}
state {
  backend = "jsonrpc"
  endpoint = "http://localhost:9545"
}
`,
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			config, err := ReadConfigFile(writeConfig(t, c.file, c.content))
			require.NoError(t, err)

			assert.Equal(t, "/tmp/pool", config.DataDir)
			assert.True(t, config.ShouldSeal)
			assert.Equal(t, "DEBUG", config.LogLevel)

			if c.maxTxs != 0 {
				assert.Equal(t, c.maxTxs, config.TxPool.MaxTxs)
			}

			assert.Equal(t, "1h", config.TxPool.TxTTL)
			assert.Equal(t, "jsonrpc", config.State.Backend)
			assert.Equal(t, "http://localhost:9545", config.State.Endpoint)

			// untouched values keep their defaults
			assert.Equal(t, DefaultStorage, config.Storage)
			assert.Equal(t, DefaultBlockTime, config.BlockBuilder.BlockTime)
		})
	}
}

func TestReadConfigFile_UnknownSuffix(t *testing.T) {
	t.Parallel()

	_, err := ReadConfigFile(writeConfig(t, "config.toml", "seal = true"))
	assert.ErrorContains(t, err, "neither hcl, json, yaml nor yml")
}
