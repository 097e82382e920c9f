package txpool

import (
	"github.com/spf13/cobra"

	"github.com/starkedge/mempool/command/helper"
	"github.com/starkedge/mempool/command/txpool/add"
	"github.com/starkedge/mempool/command/txpool/status"
	"github.com/starkedge/mempool/command/txpool/subscribe"
	"github.com/starkedge/mempool/command/txpool/txstatus"
)

func GetCommand() *cobra.Command {
	txPoolCmd := &cobra.Command{
		Use:   "txpool",
		Short: "Top level command for interacting with the transaction pool. Only accepts subcommands.",
	}

	helper.RegisterGRPCAddressFlag(txPoolCmd)

	registerSubcommands(txPoolCmd)

	return txPoolCmd
}

func registerSubcommands(baseCmd *cobra.Command) {
	baseCmd.AddCommand(
		// txpool add
		add.GetCommand(),
		// txpool status
		status.GetCommand(),
		// txpool subscribe
		subscribe.GetCommand(),
		// txpool tx-status
		txstatus.GetCommand(),
	)
}
