package add

import (
	"bytes"
	"fmt"

	"github.com/starkedge/mempool/command/helper"
)

type TxPoolAddResult struct {
	Hash   string `json:"hash"`
	Type   string `json:"type"`
	Sender string `json:"sender"`
	Nonce  uint64 `json:"nonce"`
	Fee    string `json:"fee"`
}

func (r *TxPoolAddResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[ADD TRANSACTION]\n")
	buffer.WriteString("Successfully added transaction:\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("HASH|%s", r.Hash),
		fmt.Sprintf("TYPE|%s", r.Type),
		fmt.Sprintf("SENDER|%s", r.Sender),
		fmt.Sprintf("NONCE|%d", r.Nonce),
		fmt.Sprintf("FEE|%s", r.Fee),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
