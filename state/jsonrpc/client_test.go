package jsonrpc

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starkedge/mempool/state"
	"github.com/starkedge/mempool/txpool"
	"github.com/starkedge/mempool/types"
)

var (
	deployed   = types.StringToAddress("0xd1")
	undeployed = types.StringToAddress("0xd2")
	knownClass = types.StringToHash("0xc1")
	newClass   = types.StringToHash("0xc2")
)

type rpcRequest struct {
	ID     interface{}           `json:"id"`
	Method string                `json:"method"`
	Params []jsoniter.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

// mockNode answers the handful of starknet methods the client uses
func mockNode(t *testing.T) *httptest.Server {
	t.Helper()

	contractNotFound := &rpcError{Code: codeContractNotFound, Message: "Contract not found"}
	classNotFound := &rpcError{Code: codeClassHashNotFound, Message: "Class hash not found"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req rpcRequest
		require.NoError(t, jsoniter.Unmarshal(body, &req))

		param := func(i int) string {
			var s string
			_ = jsoniter.Unmarshal(req.Params[i], &s)

			return s
		}

		resp := &rpcResponse{JSONRPC: "2.0", ID: req.ID}

		switch req.Method {
		case "starknet_getNonce":
			if param(1) == deployed.String() {
				resp.Result = "0x1f"
			} else {
				resp.Error = contractNotFound
			}

		case "starknet_call":
			var call functionCall
			require.NoError(t, jsoniter.Unmarshal(req.Params[0], &call))

			if call.Calldata[0] == deployed.String() {
				// low = 5, high = 1
				resp.Result = []string{"0x5", "0x1"}
			} else {
				resp.Result = []string{"0x0", "0x0"}
			}

		case "starknet_getClassHashAt":
			if param(1) == deployed.String() {
				resp.Result = knownClass.String()
			} else {
				resp.Error = contractNotFound
			}

		case "starknet_getClass":
			if types.StringToHash(param(1)) == knownClass {
				resp.Result = map[string]interface{}{"abi": "[]"}
			} else {
				resp.Error = classNotFound
			}

		default:
			resp.Error = &rpcError{Code: -32601, Message: "method not found"}
		}

		out, err := jsoniter.Marshal(resp)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(out)
	}))

	t.Cleanup(srv.Close)

	return srv
}

func newTestClient(t *testing.T) *Client {
	t.Helper()

	srv := mockNode(t)

	client, err := NewClient(hclog.NewNullLogger(), srv.URL, DefaultFeeToken)
	require.NoError(t, err)

	return client
}

func TestClient_GetNonce(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)

	nonce, err := client.GetNonce(context.Background(), deployed)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1f), nonce)

	nonce, err = client.GetNonce(context.Background(), undeployed)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nonce)
}

func TestClient_GetBalance(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)

	balance, err := client.GetBalance(context.Background(), deployed)
	require.NoError(t, err)

	// 1 << 128 | 5
	assert.Equal(t, "0x100000000000000000000000000000005", balance.Hex())

	balance, err = client.GetBalance(context.Background(), undeployed)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestClient_Unavailable(t *testing.T) {
	t.Parallel()

	srv := mockNode(t)
	srv.Close()

	client, err := NewClient(hclog.NewNullLogger(), srv.URL, DefaultFeeToken)
	require.NoError(t, err)

	_, err = client.GetNonce(context.Background(), deployed)
	assert.ErrorIs(t, err, txpool.ErrStateQueryUnavailable)
	assert.True(t, txpool.IsRetryable(err))
}

func TestClient_ContextDone(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()

	<-ctx.Done()

	_, err := client.GetNonce(ctx, deployed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestValidator(t *testing.T) {
	t.Parallel()

	v := NewValidator(newTestClient(t))

	cases := []struct {
		name string
		tx   *types.Transaction
		err  error
	}{
		{
			"invoke",
			&types.Transaction{Type: types.InvokeTx, Sender: deployed},
			nil,
		},
		{
			"declare new class",
			&types.Transaction{Type: types.DeclareTx, Sender: deployed, ClassHash: newClass},
			nil,
		},
		{
			"redeclare",
			&types.Transaction{Type: types.DeclareTx, Sender: deployed, ClassHash: knownClass},
			state.ErrClassAlreadyDeclared,
		},
		{
			"deploy",
			&types.Transaction{Type: types.DeployAccountTx, Sender: undeployed, ClassHash: knownClass},
			nil,
		},
		{
			"redeploy",
			&types.Transaction{Type: types.DeployAccountTx, Sender: deployed, ClassHash: knownClass},
			state.ErrAccountAlreadyDeployed,
		},
		{
			"deploy undeclared",
			&types.Transaction{Type: types.DeployAccountTx, Sender: undeployed, ClassHash: newClass},
			state.ErrClassNotDeclared,
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			err := v.Validate(context.Background(), c.tx, txpool.StateSnapshot{})
			if c.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, c.err)
			}
		})
	}
}
