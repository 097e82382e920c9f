package server

import (
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starkedge/mempool/command/server/config"
	"github.com/starkedge/mempool/server"
	"github.com/starkedge/mempool/state/jsonrpc"
	"github.com/starkedge/mempool/types"
)

func newTestParams() *serverParams {
	p := &serverParams{rawConfig: config.DefaultConfig()}
	p.rawConfig.GRPCAddr = "127.0.0.1:9632"

	return p
}

func TestParsePremine(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		raw     string
		addr    types.Address
		balance uint64
		err     bool
	}{
		{"address only", "0x1234", types.StringToAddress("0x1234"), DefaultPremineBalance.Uint64(), false},
		{"decimal balance", "0x1234:500", types.StringToAddress("0x1234"), 500, false},
		{"hex balance", "0xabc:0x10", types.StringToAddress("0xabc"), 16, false},
		{"empty address", ":100", types.Address{}, 0, true},
		{"bad address", "0xzz:100", types.Address{}, 0, true},
		{"bad balance", "0x1:ten", types.Address{}, 0, true},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			account, err := parsePremine(c.raw)
			if c.err {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, c.addr, account.Address)
			assert.Equal(t, c.balance, account.Balance.Uint64())
			assert.Equal(t, DefaultAccountClassHash, account.ClassHash)
		})
	}
}

func TestServerParams_GenerateConfig(t *testing.T) {
	t.Parallel()

	p := newTestParams()
	p.rawConfig.LogLevel = "debug"
	p.rawConfig.Telemetry.PrometheusAddr = ":5001"
	p.rawConfig.State.Premine = []string{"0x1:100", "0x2"}
	p.rawConfig.TxPool.MaxTxs = 10
	p.rawConfig.TxPool.TxTTL = "10m"
	p.rawConfig.BlockBuilder.BlockTime = "500ms"
	p.rawConfig.ShouldSeal = true

	require.NoError(t, p.validateFlags())
	require.NoError(t, p.initRawParams())

	conf := p.generateConfig()

	assert.Equal(t, hclog.Debug, conf.LogLevel)
	assert.Equal(t, 9632, conf.GRPCAddr.Port)
	assert.Equal(t, 5001, conf.Telemetry.PrometheusAddr.Port)
	assert.Equal(t, "127.0.0.1", conf.Telemetry.PrometheusAddr.IP.String())
	assert.Equal(t, server.LevelDBStorage, conf.Storage)
	assert.Equal(t, server.MemoryState, conf.State.Backend)
	assert.Equal(t, jsonrpc.DefaultFeeToken, conf.State.FeeToken)
	assert.Len(t, conf.State.Genesis, 2)
	assert.Equal(t, uint64(10), conf.TxPool.MaxTxs)
	assert.Equal(t, 10*time.Minute, conf.TxPool.TxTTL)
	assert.Equal(t, 500*time.Millisecond, conf.BlockBuilder.BlockTime)
	assert.True(t, conf.Seal)
}

func TestServerParams_Invalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(c *config.Config)
		init   bool
	}{
		{"storage", func(c *config.Config) { c.Storage = "badger" }, false},
		{"state", func(c *config.Config) { c.State.Backend = "archive" }, false},
		{"jsonrpc without endpoint", func(c *config.Config) { c.State.Backend = "jsonrpc" }, false},
		{"log level", func(c *config.Config) { c.LogLevel = "loud" }, true},
		{"tx ttl", func(c *config.Config) { c.TxPool.TxTTL = "forever" }, true},
		{"block time", func(c *config.Config) { c.BlockBuilder.BlockTime = "0s" }, true},
		{"fee token", func(c *config.Config) { c.State.FeeToken = "token" }, true},
		{"grpc address", func(c *config.Config) { c.GRPCAddr = "127.0.0.1:notaport" }, true},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			p := newTestParams()
			c.mutate(p.rawConfig)

			if c.init {
				require.NoError(t, p.validateFlags())
				assert.Error(t, p.initRawParams())
			} else {
				assert.Error(t, p.validateFlags())
			}
		})
	}
}
