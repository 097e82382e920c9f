package helper

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/holiman/uint256"
	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/starkedge/mempool/command"
	"github.com/starkedge/mempool/server"
	"github.com/starkedge/mempool/txpool/operator"
)

const shutdownTimeout = 5 * time.Second

var errShutdownTimeout = errors.New("shutdown timeout reached")

// HandleSignals is a helper method for handling signals sent to the console
// Like stop, error, etc.
func HandleSignals(
	closeFn func(),
	outputter command.OutputFormatter,
) error {
	signalCh := GetTerminationSignalCh()
	sig := <-signalCh

	closeMessage := fmt.Sprintf("\n[SIGNAL] Caught signal: %v\n", sig)
	closeMessage += "Gracefully shutting down client...\n"

	outputter.SetCommandResult(
		&ShutdownResult{Message: closeMessage},
	)
	outputter.WriteOutput()

	// Call the server close callback
	gracefulCh := make(chan struct{})

	go func() {
		if closeFn != nil {
			closeFn()
		}

		close(gracefulCh)
	}()

	select {
	case <-signalCh:
		return errors.New("shutdown by signal channel")
	case <-time.After(shutdownTimeout):
		return errShutdownTimeout
	case <-gracefulCh:
		return nil
	}
}

// GetTerminationSignalCh returns a channel to emit signals by ctrl + c
func GetTerminationSignalCh() <-chan os.Signal {
	// wait for the user to quit with ctrl-c
	signalCh := make(chan os.Signal, 1)
	signal.Notify(
		signalCh,
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)

	return signalCh
}

type ShutdownResult struct {
	Message string `json:"message"`
}

func (r *ShutdownResult) GetOutput() string {
	return r.Message
}

// GetGRPCConnection returns a grpc client connection speaking the
// operator codec
func GetGRPCConnection(address string) (*grpc.ClientConn, error) {
	conn, err := grpc.Dial(
		address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(operator.Codec())),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	return conn, nil
}

// GetTxPoolClientConnection returns the TxPool operator client connection
func GetTxPoolClientConnection(address string) (operator.TxnPoolOperatorClient, func(), error) {
	conn, err := GetGRPCConnection(address)
	if err != nil {
		return nil, nil, err
	}

	return operator.NewTxnPoolOperatorClient(conn), func() { _ = conn.Close() }, nil
}

// RegisterJSONOutputFlag registers the --json output setting for all child commands
func RegisterJSONOutputFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(
		command.JSONOutputFlag,
		false,
		"get all outputs in json format (default false)",
	)
}

// RegisterGRPCAddressFlag registers the base GRPC address flag for all child commands
func RegisterGRPCAddressFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(
		command.GRPCAddressFlag,
		fmt.Sprintf("%s:%d", "127.0.0.1", server.DefaultGRPCPort),
		"the GRPC interface",
	)
}

// GetGRPCAddress extracts the set GRPC address
func GetGRPCAddress(cmd *cobra.Command) string {
	return cmd.Flag(command.GRPCAddressFlag).Value.String()
}

// ResolveAddr resolves the passed in TCP address.
// An address without host is bound to localhost
func ResolveAddr(raw string) (*net.TCPAddr, error) {
	addr, err := net.ResolveTCPAddr("tcp", raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse addr '%s': %w", raw, err)
	}

	if addr.IP == nil {
		addr.IP = net.ParseIP("127.0.0.1")
	}

	return addr, nil
}

// ParseUint256 parses a decimal or 0x prefixed hex amount
func ParseUint256(raw string) (*uint256.Int, error) {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		// uint256 rejects leading zeros
		digits := strings.TrimLeft(strings.ToLower(raw[2:]), "0")
		if digits == "" {
			digits = "0"
		}

		return uint256.FromHex("0x" + digits)
	}

	return uint256.FromDecimal(raw)
}

// FormatList formats a list, using a specific blank value replacement
func FormatList(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"

	return columnize.Format(in, columnConf)
}

// FormatKV formats key value pairs:
//
// Key = Value
//
// Key = <none>
func FormatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " = "

	return columnize.Format(in, columnConf)
}
