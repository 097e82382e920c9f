package subscribe

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/starkedge/mempool/command"
	"github.com/starkedge/mempool/command/helper"
	"github.com/starkedge/mempool/txpool"
	"github.com/starkedge/mempool/txpool/operator"
)

func GetCommand() *cobra.Command {
	txPoolSubscribeCmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Logs specific TxPool events",
		Run:   runCommand,
	}

	setFlags(txPoolSubscribeCmd)

	return txPoolSubscribeCmd
}

func setFlags(cmd *cobra.Command) {
	params.initEventMap()

	for _, eventType := range txpool.AllEventTypes() {
		cmd.Flags().BoolVar(
			params.eventSubscriptionMap[eventType],
			eventFlag(eventType),
			false,
			fmt.Sprintf("should subscribe to %s events", eventFlag(eventType)),
		)
	}

	cmd.Flags().StringSliceVar(
		&params.eventsRaw,
		eventsFlag,
		[]string{},
		"the event types to subscribe to, comma separated. Empty subscribes to all",
	)
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)

	if err := params.init(); err != nil {
		outputter.SetError(err)
		outputter.WriteOutput()

		return
	}

	subscribeToEvents(
		outputter,
		&operator.SubscribeRequest{
			Types: params.supportedEvents,
		},
		helper.GetGRPCAddress(cmd),
	)
}

func subscribeToEvents(
	outputter command.OutputFormatter,
	subscribeRequest *operator.SubscribeRequest,
	grpcAddress string,
) {
	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	client, closeFn, err := helper.GetTxPoolClientConnection(grpcAddress)
	if err != nil {
		outputter.SetError(err)
		outputter.WriteOutput()

		return
	}

	defer closeFn()

	stream, err := client.Subscribe(ctx, subscribeRequest)
	if err != nil {
		outputter.SetError(err)
		outputter.WriteOutput()

		return
	}

	runSubscribeLoop(stream, outputter)
}

func runSubscribeLoop(
	stream operator.TxnPoolOperator_SubscribeClient,
	outputter command.OutputFormatter,
) {
	doneCh := make(chan struct{})

	go func() {
		defer close(doneCh)

		for {
			event, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}

			if err != nil {
				outputter.SetError(fmt.Errorf("failed to read event: %w", err))
				outputter.WriteOutput()

				return
			}

			outputter.SetCommandResult(&TxPoolEventResult{
				EventType: event.Type,
				TxHash:    event.TxHash,
			})
			outputter.WriteOutput()
		}
	}()

	select {
	case <-helper.GetTerminationSignalCh():
	case <-doneCh:
	}
}
