package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config defines the server configuration params
type Config struct {
	DataDir       string        `json:"data_dir" yaml:"data_dir" hcl:"data_dir"`
	Storage       string        `json:"storage" yaml:"storage" hcl:"storage"`
	GRPCAddr      string        `json:"grpc_addr" yaml:"grpc_addr" hcl:"grpc_addr"`
	Telemetry     *Telemetry    `json:"telemetry" yaml:"telemetry" hcl:"telemetry"`
	State         *State        `json:"state" yaml:"state" hcl:"state"`
	TxPool        *TxPool       `json:"tx_pool" yaml:"tx_pool" hcl:"tx_pool"`
	ShouldSeal    bool          `json:"seal" yaml:"seal" hcl:"seal"`
	BlockBuilder  *BlockBuilder `json:"block_builder" yaml:"block_builder" hcl:"block_builder"`
	LogLevel      string        `json:"log_level" yaml:"log_level" hcl:"log_level"`
	LogFilePath   string        `json:"log_to" yaml:"log_to" hcl:"log_to"`
	JSONLogFormat bool          `json:"json_log_format" yaml:"json_log_format" hcl:"json_log_format"`
}

// Telemetry holds the config details for metric services.
type Telemetry struct {
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr" hcl:"prometheus_addr"`
}

// State selects the committed state backend
type State struct {
	Backend  string `json:"backend" yaml:"backend" hcl:"backend"`
	Endpoint string `json:"endpoint" yaml:"endpoint" hcl:"endpoint"`
	FeeToken string `json:"fee_token" yaml:"fee_token" hcl:"fee_token"`

	// Premine lists <address>[:<balance>] accounts of the memory state
	Premine []string `json:"premine" yaml:"premine" hcl:"premine"`
}

// TxPool defines the TxPool configuration params.
// Durations are written as "30s", "3h"
type TxPool struct {
	PriceLimit         uint64 `json:"price_limit" yaml:"price_limit" hcl:"price_limit"`
	PriceBump          uint64 `json:"price_bump" yaml:"price_bump" hcl:"price_bump"`
	MaxTxs             uint64 `json:"max_txs" yaml:"max_txs" hcl:"max_txs"`
	MaxBytes           uint64 `json:"max_bytes" yaml:"max_bytes" hcl:"max_bytes"`
	MaxAccountEnqueued uint64 `json:"max_account_enqueued" yaml:"max_account_enqueued" hcl:"max_account_enqueued"`
	MaxNonceGap        uint64 `json:"max_nonce_gap" yaml:"max_nonce_gap" hcl:"max_nonce_gap"`
	TxTTL              string `json:"tx_ttl" yaml:"tx_ttl" hcl:"tx_ttl"`
	CheckpointInterval string `json:"checkpoint_interval" yaml:"checkpoint_interval" hcl:"checkpoint_interval"`
}

// BlockBuilder defines the dev block builder params
type BlockBuilder struct {
	BlockTime     string `json:"block_time" yaml:"block_time" hcl:"block_time"`
	MaxBlockTxs   uint64 `json:"max_block_txs" yaml:"max_block_txs" hcl:"max_block_txs"`
	MaxBlockBytes uint64 `json:"max_block_bytes" yaml:"max_block_bytes" hcl:"max_block_bytes"`
}

const (
	DefaultDataDir            = "./mempool-data"
	DefaultStorage            = "leveldb"
	DefaultStateBackend       = "memory"
	DefaultTxTTL              = "3h"
	DefaultCheckpointInterval = "30s"
	DefaultBlockTime          = "2s"
)

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:   DefaultDataDir,
		Storage:   DefaultStorage,
		Telemetry: &Telemetry{},
		State: &State{
			Backend: DefaultStateBackend,
		},
		TxPool: &TxPool{
			PriceLimit:         0,
			PriceBump:          10,
			MaxTxs:             4096,
			MaxBytes:           64 * 1024 * 1024,
			MaxAccountEnqueued: 64,
			MaxNonceGap:        4,
			TxTTL:              DefaultTxTTL,
			CheckpointInterval: DefaultCheckpointInterval,
		},
		ShouldSeal: false,
		BlockBuilder: &BlockBuilder{
			BlockTime:     DefaultBlockTime,
			MaxBlockTxs:   512,
			MaxBlockBytes: 1024 * 1024,
		},
		LogLevel:    "INFO",
		LogFilePath: "",
	}
}

// ReadConfigFile reads the config file from the specified path, builds a Config object
// and returns it. Missing values keep their defaults.
//
// Supported file types: .json, .hcl, .yaml, .yml
func ReadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var unmarshalFunc func([]byte, interface{}) error

	switch {
	case strings.HasSuffix(path, ".hcl"):
		unmarshalFunc = hcl.Unmarshal
	case strings.HasSuffix(path, ".json"):
		unmarshalFunc = json.Unmarshal
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		unmarshalFunc = yaml.Unmarshal
	default:
		return nil, fmt.Errorf("suffix of %s is neither hcl, json, yaml nor yml", path)
	}

	config := DefaultConfig()

	if err := unmarshalFunc(data, config); err != nil {
		return nil, err
	}

	return config, nil
}
