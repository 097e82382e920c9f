package subscribe

import (
	"bytes"
	"fmt"

	"github.com/starkedge/mempool/command/helper"
)

type TxPoolEventResult struct {
	EventType string `json:"eventType"`
	TxHash    string `json:"txHash"`
}

func (r *TxPoolEventResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[TXPOOL EVENT]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("TYPE|%s", r.EventType),
		fmt.Sprintf("HASH|%s", r.TxHash),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
