package txstatus

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starkedge/mempool/command"
	"github.com/starkedge/mempool/command/helper"
	"github.com/starkedge/mempool/txpool/operator"
)

func GetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tx-status [hash]",
		Short: "Returns where a transaction is in its pool lifecycle",
		Args:  cobra.ExactArgs(1),
		Run:   runCommand,
	}
}

type TxStatusResult struct {
	Hash   string `json:"hash"`
	Status string `json:"status"`
}

func (r *TxStatusResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[TRANSACTION STATUS]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("HASH|%s", r.Hash),
		fmt.Sprintf("STATUS|%s", r.Status),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}

func runCommand(cmd *cobra.Command, args []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	client, closeFn, err := helper.GetTxPoolClientConnection(helper.GetGRPCAddress(cmd))
	if err != nil {
		outputter.SetError(err)

		return
	}

	defer closeFn()

	resp, err := client.TxStatus(context.Background(), &operator.TxStatusReq{TxHash: args[0]})
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(&TxStatusResult{
		Hash:   resp.TxHash,
		Status: resp.Status,
	})
}
