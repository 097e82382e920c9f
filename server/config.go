package server

import (
	"net"

	"github.com/hashicorp/go-hclog"

	"github.com/starkedge/mempool/blockbuilder"
	"github.com/starkedge/mempool/state/memory"
	"github.com/starkedge/mempool/txpool"
	"github.com/starkedge/mempool/types"
)

const DefaultGRPCPort int = 9632

// Config is used to parametrize the mempool node
type Config struct {
	GRPCAddr  *net.TCPAddr
	Telemetry *Telemetry

	DataDir string
	Storage StorageType

	State *State

	TxPool       *txpool.Config
	BlockBuilder *blockbuilder.Config

	// Seal runs the dev block builder on top of the memory state
	Seal bool

	LogLevel      hclog.Level
	JSONLogFormat bool
	LogFilePath   string
}

// Telemetry holds the config details for metric services
type Telemetry struct {
	PrometheusAddr *net.TCPAddr
}

// State selects where committed nonces and balances are read from
type State struct {
	Backend StateType

	// Genesis funds and deploys accounts of the memory state
	Genesis []memory.GenesisAccount

	// Endpoint and FeeToken are used by the jsonrpc backend
	Endpoint string
	FeeToken types.Address
}

// DefaultConfig returns the node defaults, a dev node on memory state
func DefaultConfig() *Config {
	return &Config{
		GRPCAddr:     &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: DefaultGRPCPort},
		Telemetry:    &Telemetry{},
		Storage:      LevelDBStorage,
		State:        &State{Backend: MemoryState},
		TxPool:       txpool.DefaultConfig(),
		BlockBuilder: blockbuilder.DefaultConfig(),
		LogLevel:     hclog.Info,
	}
}
