package server

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starkedge/mempool/command"
	"github.com/starkedge/mempool/command/helper"
	"github.com/starkedge/mempool/command/server/config"
	"github.com/starkedge/mempool/server"
)

func GetCommand() *cobra.Command {
	serverCmd := &cobra.Command{
		Use:     "server",
		Short:   "The default command that starts the mempool node, by bootstrapping all modules together",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	helper.RegisterGRPCAddressFlag(serverCmd)

	setFlags(serverCmd)

	return serverCmd
}

func setFlags(cmd *cobra.Command) {
	defaultConfig := config.DefaultConfig()

	cmd.Flags().StringVar(
		&params.rawConfig.LogLevel,
		command.LogLevelFlag,
		defaultConfig.LogLevel,
		"the log level for console output",
	)

	cmd.Flags().StringVar(
		&params.configPath,
		configFlag,
		"",
		"the path to the CLI config. Supports .json, .yaml and .hcl",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.DataDir,
		dataDirFlag,
		defaultConfig.DataDir,
		"the data directory used for storing the pool checkpoint",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.Storage,
		storageFlag,
		defaultConfig.Storage,
		fmt.Sprintf(
			"the checkpoint storage backend (%s, %s or %s)",
			server.LevelDBStorage, server.BoltDBStorage, server.MemoryStorage,
		),
	)

	cmd.Flags().StringVar(
		&params.rawConfig.Telemetry.PrometheusAddr,
		prometheusAddressFlag,
		"",
		"the address and port for the prometheus instrumentation service (address:port)",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.State.Backend,
		stateFlag,
		defaultConfig.State.Backend,
		fmt.Sprintf(
			"the committed state backend (%s or %s)",
			server.MemoryState, server.JSONRPCState,
		),
	)

	cmd.Flags().StringVar(
		&params.rawConfig.State.Endpoint,
		stateEndpointFlag,
		"",
		"the Starknet JSON-RPC endpoint of the jsonrpc state backend",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.State.FeeToken,
		feeTokenFlag,
		"",
		"the fee token contract balances are read from. Defaults to STRK",
	)

	cmd.Flags().StringArrayVar(
		&params.rawConfig.State.Premine,
		premineFlag,
		[]string{},
		fmt.Sprintf(
			"the premined accounts of the memory state (<address>[:<balance>]). Default balance: %s",
			DefaultPremineBalance.Dec(),
		),
	)

	cmd.Flags().BoolVar(
		&params.rawConfig.ShouldSeal,
		sealFlag,
		defaultConfig.ShouldSeal,
		"build blocks from the pool on top of the memory state",
	)

	cmd.Flags().Uint64Var(
		&params.rawConfig.TxPool.PriceLimit,
		priceLimitFlag,
		defaultConfig.TxPool.PriceLimit,
		"the minimum fee to enforce for acceptance into the pool",
	)

	cmd.Flags().Uint64Var(
		&params.rawConfig.TxPool.PriceBump,
		priceBumpFlag,
		defaultConfig.TxPool.PriceBump,
		"the fee increase in percent a replacement must pay",
	)

	cmd.Flags().Uint64Var(
		&params.rawConfig.TxPool.MaxTxs,
		maxTxsFlag,
		defaultConfig.TxPool.MaxTxs,
		"the maximum number of transactions in the pool",
	)

	cmd.Flags().Uint64Var(
		&params.rawConfig.TxPool.MaxBytes,
		maxBytesFlag,
		defaultConfig.TxPool.MaxBytes,
		"the maximum encoded size of all transactions in the pool",
	)

	cmd.Flags().Uint64Var(
		&params.rawConfig.TxPool.MaxAccountEnqueued,
		maxAccountEnqueuedFlag,
		defaultConfig.TxPool.MaxAccountEnqueued,
		"the maximum number of transactions a single account may hold",
	)

	cmd.Flags().Uint64Var(
		&params.rawConfig.TxPool.MaxNonceGap,
		maxNonceGapFlag,
		defaultConfig.TxPool.MaxNonceGap,
		"how far ahead of the account nonce a transaction may be",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.TxPool.TxTTL,
		txTTLFlag,
		defaultConfig.TxPool.TxTTL,
		"how long a transaction may wait in the pool",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.TxPool.CheckpointInterval,
		checkpointFlag,
		defaultConfig.TxPool.CheckpointInterval,
		"how often the pool is written to storage. 0 only writes on shutdown",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.BlockBuilder.BlockTime,
		blockTimeFlag,
		defaultConfig.BlockBuilder.BlockTime,
		"the maximum time between built blocks",
	)

	cmd.Flags().Uint64Var(
		&params.rawConfig.BlockBuilder.MaxBlockTxs,
		maxBlockTxsFlag,
		defaultConfig.BlockBuilder.MaxBlockTxs,
		"the maximum number of transactions in a built block",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.LogFilePath,
		logFileLocationFlag,
		defaultConfig.LogFilePath,
		"write all logs to the file at specified location instead of writing them to console",
	)

	cmd.Flags().BoolVar(
		&params.rawConfig.JSONLogFormat,
		jsonLogFormatFlag,
		defaultConfig.JSONLogFormat,
		"write all logs in json format",
	)
}

func runPreRun(cmd *cobra.Command, _ []string) error {
	// Check if the config file has been specified
	if isConfigFileSpecified(cmd) {
		if err := params.initConfigFromFile(); err != nil {
			return err
		}
	}

	if err := params.validateFlags(); err != nil {
		return err
	}

	// the flag wins over the config file only when set explicitly
	if params.rawConfig.GRPCAddr == "" || cmd.Flags().Changed(command.GRPCAddressFlag) {
		params.setRawGRPCAddress(helper.GetGRPCAddress(cmd))
	}

	return params.initRawParams()
}

func isConfigFileSpecified(cmd *cobra.Command) bool {
	return cmd.Flags().Changed(configFlag)
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)

	if err := runServerLoop(params.generateConfig(), outputter); err != nil {
		outputter.SetError(err)
		outputter.WriteOutput()

		return
	}
}

func runServerLoop(
	config *server.Config,
	outputter command.OutputFormatter,
) error {
	serverInstance, err := server.NewServer(config)
	if err != nil {
		return err
	}

	return helper.HandleSignals(serverInstance.Close, outputter)
}
