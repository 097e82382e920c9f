package txpool

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/starkedge/mempool/txpool/operator"
	"github.com/starkedge/mempool/types"
)

// newOperatorClient serves the pool over an in-memory listener
func newOperatorClient(t *testing.T, pool *TxPool) operator.TxnPoolOperatorClient {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)

	srv := grpc.NewServer(grpc.ForceServerCodec(operator.Codec()))
	operator.RegisterTxnPoolOperatorServer(srv, NewOperatorServer(pool))

	go func() {
		_ = srv.Serve(lis)
	}()

	conn, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(operator.Codec())),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()

		srv.Stop()
	})

	return operator.NewTxnPoolOperatorClient(conn)
}

func TestOperator_Status(t *testing.T) {
	t.Parallel()

	pool, _ := newTestPool(t)
	client := newOperatorClient(t, pool)

	addTxs(t, pool, newTx(addr1, 0, 10), newTx(addr1, 2, 10))

	resp, err := client.Status(context.Background(), &operator.Empty{})
	require.NoError(t, err)

	assert.Equal(t, uint64(2), resp.Length)
	assert.Equal(t, uint64(1), resp.Ready)
	assert.Equal(t, uint64(1), resp.Accounts)
	assert.Equal(t, DefaultMaxTxs, resp.MaxTxs)
	assert.NotZero(t, resp.Bytes)
}

func TestOperator_AddTxn(t *testing.T) {
	t.Parallel()

	pool, store := newTestPool(t)
	client := newOperatorClient(t, pool)

	tx := newTx(addr1, 0, 10)
	raw := tx.MarshalRLP()

	resp, err := client.AddTxn(context.Background(), &operator.AddTxnReq{Raw: raw})
	require.NoError(t, err)

	tx.ComputeHash()
	assert.Equal(t, tx.Hash.String(), resp.TxHash)
	assert.Equal(t, TxReady, pool.TxStatus(tx.Hash))

	// same bytes again
	_, err = client.AddTxn(context.Background(), &operator.AddTxnReq{Raw: raw})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = client.AddTxn(context.Background(), &operator.AddTxnReq{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.AddTxn(context.Background(), &operator.AddTxnReq{Raw: []byte{0xc1, 0x01}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	// nonce already consumed on chain
	store.setNonce(addr2, 5)

	_, err = client.AddTxn(context.Background(), &operator.AddTxnReq{Raw: newTx(addr2, 0, 10).MarshalRLP()})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestOperator_TxStatus(t *testing.T) {
	t.Parallel()

	pool, _ := newTestPool(t)
	client := newOperatorClient(t, pool)

	tx := newTx(addr1, 1, 10)
	addTxs(t, pool, tx)

	resp, err := client.TxStatus(context.Background(), &operator.TxStatusReq{TxHash: tx.Hash.String()})
	require.NoError(t, err)
	assert.Equal(t, TxPending.String(), resp.Status)
	assert.Equal(t, tx.Hash.String(), resp.TxHash)

	resp, err = client.TxStatus(context.Background(), &operator.TxStatusReq{TxHash: "0x1234"})
	require.NoError(t, err)
	assert.Equal(t, TxUnknown.String(), resp.Status)

	_, err = client.TxStatus(context.Background(), &operator.TxStatusReq{TxHash: "not a hash"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestOperator_Subscribe(t *testing.T) {
	t.Parallel()

	pool, _ := newTestPool(t)
	client := newOperatorClient(t, pool)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Subscribe(ctx, &operator.SubscribeRequest{
		Types: []string{EventAdded.String()},
	})
	require.NoError(t, err)

	// the subscription is registered once the server handler runs,
	// keep adding until the first event shows up
	go func() {
		for i := uint64(0); i < 50; i++ {
			if ctx.Err() != nil {
				return
			}

			_ = pool.AddTx(ctx, newTx(addr1, i, 10))

			time.Sleep(20 * time.Millisecond)
		}
	}()

	event, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, EventAdded.String(), event.Type)
	assert.NotEqual(t, pool.TxStatus(types.StringToHash(event.TxHash)), TxUnknown)

	invalid, err := client.Subscribe(ctx, &operator.SubscribeRequest{Types: []string{"NOPE"}})
	require.NoError(t, err)

	_, err = invalid.Recv()
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestOperator_ToStatusError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		code codes.Code
	}{
		{fmt.Errorf("%w: node down", ErrStateQueryUnavailable), codes.Unavailable},
		{ErrAlreadyKnown, codes.AlreadyExists},
		{fmt.Errorf("%w: empty signature", ErrInvalidFormat), codes.InvalidArgument},
		{ErrNonceTooLow, codes.FailedPrecondition},
		{errors.New("anything else"), codes.FailedPrecondition},
	}

	for _, c := range cases {
		assert.Equal(t, c.code, status.Code(toStatusError(c.err)), c.err.Error())
	}
}
