package add

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starkedge/mempool/command"
	"github.com/starkedge/mempool/command/helper"
	"github.com/starkedge/mempool/txpool/operator"
	"github.com/starkedge/mempool/types"
)

func GetCommand() *cobra.Command {
	txPoolAddCmd := &cobra.Command{
		Use:   "add",
		Short: "Adds a transaction to the transaction pool",
		Run:   runCommand,
	}

	setFlags(txPoolAddCmd)

	return txPoolAddCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&params.rawTx,
		rawFlag,
		"",
		"the hex encoded RLP transaction. Overrides every other flag",
	)

	cmd.Flags().StringVar(
		&params.typeRaw,
		typeFlag,
		types.InvokeTx.String(),
		"the transaction type (INVOKE, DECLARE, DEPLOY_ACCOUNT)",
	)

	cmd.Flags().Uint64Var(
		&params.version,
		versionFlag,
		1,
		"the transaction version",
	)

	cmd.Flags().StringVar(
		&params.senderRaw,
		senderFlag,
		"",
		"the sender address",
	)

	cmd.Flags().Uint64Var(
		&params.nonce,
		nonceFlag,
		0,
		"the nonce of the transaction",
	)

	cmd.Flags().StringVar(
		&params.feeRaw,
		feeFlag,
		"0",
		"the maximum fee of the transaction",
	)

	cmd.Flags().StringSliceVar(
		&params.calldataRaw,
		calldataFlag,
		[]string{},
		"the calldata felts, comma separated",
	)

	cmd.Flags().StringSliceVar(
		&params.signatureRaw,
		signatureFlag,
		[]string{},
		"the signature felts, comma separated",
	)

	cmd.Flags().StringVar(
		&params.classHashRaw,
		classHashFlag,
		"",
		"the class hash of a declare or deploy account transaction",
	)

	cmd.Flags().StringVar(
		&params.compiledClassHashRaw,
		compiledClassHashFlag,
		"",
		"the compiled class hash of a declare transaction",
	)

	cmd.Flags().StringVar(
		&params.saltRaw,
		saltFlag,
		"",
		"the contract address salt of a deploy account transaction",
	)
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	if err := params.init(); err != nil {
		outputter.SetError(err)

		return
	}

	resp, err := addTransaction(
		params.constructAddRequest(),
		helper.GetGRPCAddress(cmd),
	)
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(&TxPoolAddResult{
		Hash:   resp.TxHash,
		Type:   params.tx.Type.String(),
		Sender: params.tx.Sender.String(),
		Nonce:  params.tx.Nonce,
		Fee:    params.tx.Fee.Dec(),
	})
}

func addTransaction(
	txnRequest *operator.AddTxnReq,
	grpcAddress string,
) (*operator.AddTxnResp, error) {
	client, closeFn, err := helper.GetTxPoolClientConnection(
		grpcAddress,
	)
	if err != nil {
		return nil, err
	}

	defer closeFn()

	resp, err := client.AddTxn(
		context.Background(),
		txnRequest,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add transaction: %w", err)
	}

	return resp, nil
}
