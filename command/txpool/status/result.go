package status

import (
	"bytes"
	"fmt"

	"github.com/starkedge/mempool/command/helper"
	"github.com/starkedge/mempool/txpool/operator"
)

type TxPoolStatusResult struct {
	Transactions uint64 `json:"transactions"`
	Bytes        uint64 `json:"bytes"`
	Ready        uint64 `json:"ready"`
	Reserved     uint64 `json:"reserved"`
	Accounts     uint64 `json:"accounts"`
	MaxTxs       uint64 `json:"max_txs"`
	MaxBytes     uint64 `json:"max_bytes"`
}

func newTxPoolStatusResult(resp *operator.TxnPoolStatusResp) *TxPoolStatusResult {
	return &TxPoolStatusResult{
		Transactions: resp.Length,
		Bytes:        resp.Bytes,
		Ready:        resp.Ready,
		Reserved:     resp.Reserved,
		Accounts:     resp.Accounts,
		MaxTxs:       resp.MaxTxs,
		MaxBytes:     resp.MaxBytes,
	}
}

func (r *TxPoolStatusResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[TXPOOL STATUS]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Number of transactions in pool:|%d / %d", r.Transactions, r.MaxTxs),
		fmt.Sprintf("Size of transactions in pool:|%d / %d", r.Bytes, r.MaxBytes),
		fmt.Sprintf("Ready transactions:|%d", r.Ready),
		fmt.Sprintf("Reserved transactions:|%d", r.Reserved),
		fmt.Sprintf("Accounts:|%d", r.Accounts),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
