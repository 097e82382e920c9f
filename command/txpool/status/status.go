package status

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/starkedge/mempool/command"
	"github.com/starkedge/mempool/command/helper"
	"github.com/starkedge/mempool/txpool/operator"
)

func GetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Returns the number of transactions in the transaction pool",
		Run:   runCommand,
	}
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	statusResponse, err := getTxPoolStatus(helper.GetGRPCAddress(cmd))
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(newTxPoolStatusResult(statusResponse))
}

func getTxPoolStatus(grpcAddress string) (*operator.TxnPoolStatusResp, error) {
	client, closeFn, err := helper.GetTxPoolClientConnection(grpcAddress)
	if err != nil {
		return nil, err
	}

	defer closeFn()

	return client.Status(context.Background(), &operator.Empty{})
}
