package server

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"

	"github.com/starkedge/mempool/blockbuilder"
	"github.com/starkedge/mempool/command/helper"
	"github.com/starkedge/mempool/command/server/config"
	"github.com/starkedge/mempool/server"
	"github.com/starkedge/mempool/state/jsonrpc"
	"github.com/starkedge/mempool/state/memory"
	"github.com/starkedge/mempool/txpool"
	"github.com/starkedge/mempool/types"
)

const (
	configFlag             = "config"
	dataDirFlag            = "data-dir"
	storageFlag            = "storage"
	prometheusAddressFlag  = "prometheus"
	stateFlag              = "state"
	stateEndpointFlag      = "state-endpoint"
	feeTokenFlag           = "fee-token"
	premineFlag            = "premine"
	sealFlag               = "seal"
	priceLimitFlag         = "price-limit"
	priceBumpFlag          = "price-bump"
	maxTxsFlag             = "max-txs"
	maxBytesFlag           = "max-bytes"
	maxAccountEnqueuedFlag = "max-account-enqueued"
	maxNonceGapFlag        = "max-nonce-gap"
	txTTLFlag              = "tx-ttl"
	checkpointFlag         = "checkpoint-interval"
	blockTimeFlag          = "block-time"
	maxBlockTxsFlag        = "max-block-txs"
	logFileLocationFlag    = "log-to"
	jsonLogFormatFlag      = "json-log-format"
)

var (
	// DefaultPremineBalance is the balance of a premined account without one
	DefaultPremineBalance = uint256.NewInt(1_000_000_000_000_000_000)

	// DefaultAccountClassHash is the class premined accounts are deployed with
	DefaultAccountClassHash = types.StringToHash(
		"0x061dac032f228abef9c6626f995015233097ae253a7f72d68552db02f2971b8f",
	)
)

var (
	params = &serverParams{
		rawConfig: config.DefaultConfig(),
	}
)

var (
	errInvalidPremine  = errors.New("premine must be formatted as <address>[:<balance>]")
	errMissingEndpoint = errors.New("the jsonrpc state backend requires a state endpoint")
)

type serverParams struct {
	rawConfig  *config.Config
	configPath string

	grpcAddress       *net.TCPAddr
	prometheusAddress *net.TCPAddr

	logLevel hclog.Level

	genesis  []memory.GenesisAccount
	feeToken types.Address

	txTTL              time.Duration
	checkpointInterval time.Duration
	blockTime          time.Duration
}

func (p *serverParams) validateFlags() error {
	if !server.StorageSupported(p.rawConfig.Storage) {
		return fmt.Errorf("unsupported storage %q", p.rawConfig.Storage)
	}

	if !server.StateSupported(p.rawConfig.State.Backend) {
		return fmt.Errorf("unsupported state backend %q", p.rawConfig.State.Backend)
	}

	if p.rawConfig.State.Backend == string(server.JSONRPCState) && p.rawConfig.State.Endpoint == "" {
		return errMissingEndpoint
	}

	return nil
}

func (p *serverParams) initLogLevel() error {
	p.logLevel = hclog.LevelFromString(p.rawConfig.LogLevel)
	if p.logLevel == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q", p.rawConfig.LogLevel)
	}

	return nil
}

func (p *serverParams) initDurations() error {
	var err error

	if p.txTTL, err = time.ParseDuration(p.rawConfig.TxPool.TxTTL); err != nil {
		return fmt.Errorf("invalid tx ttl: %w", err)
	}

	if p.checkpointInterval, err = time.ParseDuration(p.rawConfig.TxPool.CheckpointInterval); err != nil {
		return fmt.Errorf("invalid checkpoint interval: %w", err)
	}

	if p.blockTime, err = time.ParseDuration(p.rawConfig.BlockBuilder.BlockTime); err != nil {
		return fmt.Errorf("invalid block time: %w", err)
	}

	if p.blockTime <= 0 {
		return fmt.Errorf("block time must be positive, got %s", p.blockTime)
	}

	return nil
}

// parsePremine reads an <address>[:<balance>] premine entry
func parsePremine(raw string) (memory.GenesisAccount, error) {
	var (
		addrRaw    = raw
		balanceRaw = ""
	)

	if delimiter := strings.Index(raw, ":"); delimiter != -1 {
		addrRaw, balanceRaw = raw[:delimiter], raw[delimiter+1:]
	}

	if addrRaw == "" {
		return memory.GenesisAccount{}, errInvalidPremine
	}

	account := memory.GenesisAccount{
		Balance:   new(uint256.Int).Set(DefaultPremineBalance),
		ClassHash: DefaultAccountClassHash,
	}

	if err := account.Address.UnmarshalText([]byte(addrRaw)); err != nil {
		return memory.GenesisAccount{}, fmt.Errorf("invalid premine address %q: %w", addrRaw, err)
	}

	if balanceRaw != "" {
		balance, err := helper.ParseUint256(balanceRaw)
		if err != nil {
			return memory.GenesisAccount{}, fmt.Errorf("invalid premine balance %q: %w", balanceRaw, err)
		}

		account.Balance = balance
	}

	return account, nil
}

func (p *serverParams) initGenesis() error {
	p.genesis = make([]memory.GenesisAccount, 0, len(p.rawConfig.State.Premine))

	for _, raw := range p.rawConfig.State.Premine {
		account, err := parsePremine(raw)
		if err != nil {
			return err
		}

		p.genesis = append(p.genesis, account)
	}

	return nil
}

func (p *serverParams) initFeeToken() error {
	if p.rawConfig.State.FeeToken == "" {
		p.feeToken = jsonrpc.DefaultFeeToken

		return nil
	}

	if err := p.feeToken.UnmarshalText([]byte(p.rawConfig.State.FeeToken)); err != nil {
		return fmt.Errorf("invalid fee token: %w", err)
	}

	return nil
}

func (p *serverParams) isPrometheusAddressSet() bool {
	return p.rawConfig.Telemetry.PrometheusAddr != ""
}

func (p *serverParams) initPrometheusAddress() error {
	if !p.isPrometheusAddressSet() {
		return nil
	}

	var parseErr error

	if p.prometheusAddress, parseErr = helper.ResolveAddr(
		p.rawConfig.Telemetry.PrometheusAddr,
	); parseErr != nil {
		return parseErr
	}

	return nil
}

func (p *serverParams) initGRPCAddress() error {
	var parseErr error

	if p.grpcAddress, parseErr = helper.ResolveAddr(
		p.rawConfig.GRPCAddr,
	); parseErr != nil {
		return parseErr
	}

	return nil
}

func (p *serverParams) setRawGRPCAddress(grpcAddress string) {
	p.rawConfig.GRPCAddr = grpcAddress
}

func (p *serverParams) initAddresses() error {
	if err := p.initPrometheusAddress(); err != nil {
		return err
	}

	return p.initGRPCAddress()
}

func (p *serverParams) initRawParams() error {
	if err := p.initLogLevel(); err != nil {
		return err
	}

	if err := p.initDurations(); err != nil {
		return err
	}

	if err := p.initGenesis(); err != nil {
		return err
	}

	if err := p.initFeeToken(); err != nil {
		return err
	}

	return p.initAddresses()
}

func (p *serverParams) initConfigFromFile() error {
	var parseErr error

	if p.rawConfig, parseErr = config.ReadConfigFile(p.configPath); parseErr != nil {
		return parseErr
	}

	return nil
}

func (p *serverParams) generateConfig() *server.Config {
	poolConfig := txpool.DefaultConfig()
	poolConfig.PriceLimit = p.rawConfig.TxPool.PriceLimit
	poolConfig.PriceBump = p.rawConfig.TxPool.PriceBump
	poolConfig.MaxTxs = p.rawConfig.TxPool.MaxTxs
	poolConfig.MaxBytes = p.rawConfig.TxPool.MaxBytes
	poolConfig.MaxAccountEnqueued = p.rawConfig.TxPool.MaxAccountEnqueued
	poolConfig.MaxNonceGap = p.rawConfig.TxPool.MaxNonceGap
	poolConfig.TxTTL = p.txTTL
	poolConfig.CheckpointInterval = p.checkpointInterval

	return &server.Config{
		GRPCAddr: p.grpcAddress,
		Telemetry: &server.Telemetry{
			PrometheusAddr: p.prometheusAddress,
		},
		DataDir: p.rawConfig.DataDir,
		Storage: server.StorageType(p.rawConfig.Storage),
		State: &server.State{
			Backend:  server.StateType(p.rawConfig.State.Backend),
			Genesis:  p.genesis,
			Endpoint: p.rawConfig.State.Endpoint,
			FeeToken: p.feeToken,
		},
		TxPool: poolConfig,
		BlockBuilder: &blockbuilder.Config{
			BlockTime:     p.blockTime,
			MaxBlockTxs:   p.rawConfig.BlockBuilder.MaxBlockTxs,
			MaxBlockBytes: p.rawConfig.BlockBuilder.MaxBlockBytes,
		},
		Seal:          p.rawConfig.ShouldSeal,
		LogLevel:      p.logLevel,
		JSONLogFormat: p.rawConfig.JSONLogFormat,
		LogFilePath:   p.rawConfig.LogFilePath,
	}
}
