package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/starkedge/mempool/blockbuilder"
	"github.com/starkedge/mempool/state"
	"github.com/starkedge/mempool/state/jsonrpc"
	"github.com/starkedge/mempool/state/memory"
	"github.com/starkedge/mempool/storage"
	"github.com/starkedge/mempool/txpool"
	"github.com/starkedge/mempool/txpool/operator"
)

const restoreTimeout = time.Minute

var errSealRequiresMemoryState = errors.New("sealing blocks requires the memory state backend")

// Server is the central manager of the mempool node
type Server struct {
	logger hclog.Logger
	config *Config

	state     state.Reader
	executor  state.Executor
	validator txpool.Validator
	rpcClient *jsonrpc.Client

	storage storage.Storage
	txpool  *txpool.TxPool

	grpcServer   *grpc.Server
	grpcListener net.Listener

	blockBuilder *blockbuilder.BlockBuilder
	cancel       context.CancelFunc
	group        *errgroup.Group

	prometheusServer *http.Server
	profilerEnabled  bool
}

func newFileLogger(config *Config) (hclog.Logger, error) {
	logFileWriter, err := os.Create(config.LogFilePath)
	if err != nil {
		return nil, fmt.Errorf("could not create or open log file, %w", err)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       "mempool",
		Level:      config.LogLevel,
		Output:     logFileWriter,
		JSONFormat: config.JSONLogFormat,
	}), nil
}

func newCLILogger(config *Config) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "mempool",
		Level:      config.LogLevel,
		JSONFormat: config.JSONLogFormat,
	})
}

// newLoggerFromConfig creates a new logger which logs to a specified file.
// If log file is not set it outputs to standard output ( console ).
func newLoggerFromConfig(config *Config) (hclog.Logger, error) {
	if config.LogFilePath != "" {
		fileLoggerInstance, err := newFileLogger(config)
		if err != nil {
			return nil, err
		}

		return fileLoggerInstance, nil
	}

	return newCLILogger(config), nil
}

// NewServer creates a new node server, using the passed in configuration
func NewServer(config *Config) (*Server, error) {
	logger, err := newLoggerFromConfig(config)
	if err != nil {
		return nil, fmt.Errorf("could not setup new logger instance, %w", err)
	}

	return newServer(logger, config)
}

func newServer(logger hclog.Logger, config *Config) (*Server, error) {
	m := &Server{
		logger:     logger.Named("server"),
		config:     config,
		grpcServer: grpc.NewServer(grpc.ForceServerCodec(operator.Codec())),
	}

	m.logger.Info("Data dir", "path", config.DataDir)

	if err := m.enableDataDogProfiler(); err != nil {
		return nil, err
	}

	if config.Telemetry != nil && config.Telemetry.PrometheusAddr != nil {
		// Only setup telemetry if `PrometheusAddr` has been configured.
		if err := m.setupTelemetry(); err != nil {
			return nil, err
		}

		m.prometheusServer = m.startPrometheusServer(config.Telemetry.PrometheusAddr)
	}

	if err := m.setupState(logger); err != nil {
		m.Close()

		return nil, err
	}

	if err := m.setupStorage(logger); err != nil {
		m.Close()

		return nil, err
	}

	if err := m.setupTxPool(logger); err != nil {
		m.Close()

		return nil, err
	}

	if err := m.setupGRPC(); err != nil {
		m.Close()

		return nil, err
	}

	if config.Seal {
		if err := m.setupBlockBuilder(logger); err != nil {
			m.Close()

			return nil, err
		}
	}

	return m, nil
}

// setupState picks the committed state the pool admits transactions against
func (s *Server) setupState(logger hclog.Logger) error {
	conf := s.config.State
	if conf == nil {
		conf = &State{Backend: MemoryState}
	}

	switch conf.Backend {
	case MemoryState, "":
		st := memory.NewStateWithGenesis(conf.Genesis)

		s.state = st
		s.executor = st
		s.validator = memory.NewValidator(st)

	case JSONRPCState:
		client, err := jsonrpc.NewClient(logger, conf.Endpoint, conf.FeeToken)
		if err != nil {
			return err
		}

		s.rpcClient = client
		s.state = client
		s.validator = jsonrpc.NewValidator(client)

	default:
		return fmt.Errorf("state backend '%s' not found", conf.Backend)
	}

	s.logger.Info("state backend", "type", conf.Backend)

	return nil
}

func (s *Server) setupStorage(logger hclog.Logger) error {
	factory, ok := storageBackends[s.config.Storage]
	if !ok {
		return fmt.Errorf("storage '%s' not found", s.config.Storage)
	}

	if s.config.Storage != MemoryStorage {
		if s.config.DataDir == "" {
			return errors.New("data directory not defined")
		}

		if err := os.MkdirAll(s.config.DataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	st, err := factory(map[string]interface{}{
		"path": filepath.Join(s.config.DataDir, "txpool"),
	}, logger)
	if err != nil {
		return err
	}

	s.storage = st

	return nil
}

// setupTxPool creates the pool, replays the last checkpoint and starts it
func (s *Server) setupTxPool(logger hclog.Logger) error {
	pool, err := txpool.NewTxPool(logger, s.state, s.validator, s.config.TxPool)
	if err != nil {
		return err
	}

	pool.SetCheckpointer(s.storage)

	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()

	restored, err := pool.Restore(ctx)
	if err != nil {
		s.logger.Error("failed to restore txpool checkpoint", "err", err)
	} else if restored > 0 {
		s.logger.Info("restored txpool checkpoint", "txs", restored)
	}

	pool.Start()

	s.txpool = pool

	return nil
}

// setupGRPC sets up the grpc server and listens on tcp
func (s *Server) setupGRPC() error {
	operator.RegisterTxnPoolOperatorServer(s.grpcServer, txpool.NewOperatorServer(s.txpool))

	lis, err := net.Listen("tcp", s.config.GRPCAddr.String())
	if err != nil {
		return err
	}

	s.grpcListener = lis

	go func() {
		if err := s.grpcServer.Serve(lis); err != nil {
			s.logger.Error(err.Error())
		}
	}()

	s.logger.Info("GRPC server running", "addr", lis.Addr().String())

	return nil
}

func (s *Server) setupBlockBuilder(logger hclog.Logger) error {
	if s.executor == nil {
		return errSealRequiresMemoryState
	}

	s.blockBuilder = blockbuilder.NewBlockBuilder(
		logger,
		s.config.BlockBuilder,
		s.txpool,
		s.executor,
		s.state,
	)

	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return s.blockBuilder.Run(gctx)
	})

	s.cancel = cancel
	s.group = group

	return nil
}

// TxPool returns the node's pool
func (s *Server) TxPool() *txpool.TxPool {
	return s.txpool
}

// GRPCAddr returns the address the operator service listens on
func (s *Server) GRPCAddr() net.Addr {
	if s.grpcListener == nil {
		return nil
	}

	return s.grpcListener.Addr()
}

// Close stops every service, in reverse setup order. The pool writes its
// last checkpoint before the storage is closed
func (s *Server) Close() {
	if err := s.close(); err != nil {
		s.logger.Error("failed to close server", "err", err)
	}
}

func (s *Server) close() error {
	var result *multierror.Error

	if s.cancel != nil {
		s.cancel()

		if err := s.group.Wait(); err != nil && !errors.Is(err, txpool.ErrTxPoolClosed) {
			result = multierror.Append(result, fmt.Errorf("block builder: %w", err))
		}
	}

	// streaming subscriptions never finish on their own
	s.grpcServer.Stop()

	if s.txpool != nil {
		s.txpool.Close()
	}

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("storage: %w", err))
		}
	}

	if s.rpcClient != nil {
		if err := s.rpcClient.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("state client: %w", err))
		}
	}

	if s.prometheusServer != nil {
		if err := s.prometheusServer.Shutdown(context.Background()); err != nil {
			result = multierror.Append(result, fmt.Errorf("prometheus server: %w", err))
		}
	}

	s.closeDataDogProfiler()

	return result.ErrorOrNil()
}
