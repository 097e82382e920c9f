package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/starkedge/mempool/command/helper"
	"github.com/starkedge/mempool/command/server"
	"github.com/starkedge/mempool/command/txpool"
	"github.com/starkedge/mempool/command/version"
)

type RootCommand struct {
	baseCmd *cobra.Command
}

func NewRootCommand() *RootCommand {
	rootCommand := &RootCommand{
		baseCmd: &cobra.Command{
			Use:   "mempool",
			Short: "A Starknet transaction mempool with an operator interface",
		},
	}

	helper.RegisterJSONOutputFlag(rootCommand.baseCmd)

	rootCommand.registerSubCommands()

	return rootCommand
}

func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		version.GetCommand(),
		txpool.GetCommand(),
		server.GetCommand(),
	)
}

func (rc *RootCommand) Execute() {
	if err := rc.baseCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
