package txpool

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/starkedge/mempool/txpool/operator"
	"github.com/starkedge/mempool/types"
)

// OperatorServer exposes the pool over the gRPC operator service
type OperatorServer struct {
	operator.UnimplementedTxnPoolOperatorServer

	pool *TxPool
}

// NewOperatorServer wraps the pool for the operator service
func NewOperatorServer(pool *TxPool) *OperatorServer {
	return &OperatorServer{pool: pool}
}

// Status implements the GRPC status endpoint. Returns the number of transactions in the pool
func (o *OperatorServer) Status(ctx context.Context, _ *operator.Empty) (*operator.TxnPoolStatusResp, error) {
	stats := o.pool.PoolStats()

	return &operator.TxnPoolStatusResp{
		Length:   stats.Count,
		Bytes:    stats.Bytes,
		Ready:    stats.Ready,
		Reserved: stats.Reserved,
		Accounts: stats.Accounts,
		MaxTxs:   stats.MaxTxs,
		MaxBytes: stats.MaxBytes,
	}, nil
}

// AddTxn adds a local transaction to the pool
func (o *OperatorServer) AddTxn(ctx context.Context, req *operator.AddTxnReq) (*operator.AddTxnResp, error) {
	if len(req.Raw) == 0 {
		return nil, status.Error(codes.InvalidArgument, "transaction's field raw is empty")
	}

	txn := new(types.Transaction)
	if err := txn.UnmarshalRLP(req.Raw); err != nil {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("%v: %v", ErrInvalidFormat, err))
	}

	if err := o.pool.AddTx(ctx, txn); err != nil {
		return nil, toStatusError(err)
	}

	return &operator.AddTxnResp{
		TxHash: txn.Hash.String(),
	}, nil
}

// TxStatus returns the status of a transaction
func (o *OperatorServer) TxStatus(ctx context.Context, req *operator.TxStatusReq) (*operator.TxStatusResp, error) {
	var hash types.Hash
	if err := hash.UnmarshalText([]byte(req.TxHash)); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	return &operator.TxStatusResp{
		TxHash: hash.String(),
		Status: o.pool.TxStatus(hash).String(),
	}, nil
}

// Subscribe implements the operator endpoint. It subscribes to new events in the tx pool
func (o *OperatorServer) Subscribe(
	request *operator.SubscribeRequest,
	stream operator.TxnPoolOperator_SubscribeServer,
) error {
	eventTypes, err := parseEventTypes(request.Types)
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	subscription, cancel := o.pool.TxPoolSubscribe(eventTypes)

	for {
		select {
		case event, more := <-subscription:
			if !more {
				// Subscription is closed from some other place
				return nil
			}

			if sendErr := stream.Send(&operator.TxPoolEvent{
				Type:   event.Type.String(),
				TxHash: event.TxHash.String(),
			}); sendErr != nil {
				cancel()

				return nil
			}
		case <-stream.Context().Done():
			cancel()

			return nil
		}
	}
}

// TxPoolSubscribe subscribes to new events in the tx pool and returns subscription channel and unsubscribe fn
func (p *TxPool) TxPoolSubscribe(eventTypes []EventType) (<-chan *Event, func()) {
	if len(eventTypes) == 0 {
		eventTypes = AllEventTypes()
	}

	subscription := p.eventManager.subscribe(eventTypes)

	cancelSubscription := func() {
		p.eventManager.cancelSubscription(subscription.subscriptionID)
	}

	return subscription.subscriptionChannel, cancelSubscription
}

func parseEventTypes(names []string) ([]EventType, error) {
	eventTypes := make([]EventType, 0, len(names))

	for _, name := range names {
		eventType, err := ParseEventType(name)
		if err != nil {
			return nil, err
		}

		eventTypes = append(eventTypes, eventType)
	}

	return eventTypes, nil
}

// toStatusError maps admission errors to gRPC codes, retryable ones
// become Unavailable
func toStatusError(err error) error {
	switch {
	case IsRetryable(err):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, ErrAlreadyKnown):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, ErrInvalidFormat):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.FailedPrecondition, err.Error())
	}
}
