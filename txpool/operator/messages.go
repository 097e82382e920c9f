package operator

// Empty is the request of calls without arguments
type Empty struct{}

// TxnPoolStatusResp reports pool occupancy
type TxnPoolStatusResp struct {
	Length   uint64 `json:"length"`
	Bytes    uint64 `json:"bytes"`
	Ready    uint64 `json:"ready"`
	Reserved uint64 `json:"reserved"`
	Accounts uint64 `json:"accounts"`
	MaxTxs   uint64 `json:"max_txs"`
	MaxBytes uint64 `json:"max_bytes"`
}

// AddTxnReq carries an RLP encoded transaction
type AddTxnReq struct {
	Raw []byte `json:"raw"`
}

type AddTxnResp struct {
	TxHash string `json:"tx_hash"`
}

type TxStatusReq struct {
	TxHash string `json:"tx_hash"`
}

type TxStatusResp struct {
	TxHash string `json:"tx_hash"`
	Status string `json:"status"`
}

// SubscribeRequest lists the event types to stream, by name.
// An empty list subscribes to every event
type SubscribeRequest struct {
	Types []string `json:"types"`
}

type TxPoolEvent struct {
	Type   string `json:"type"`
	TxHash string `json:"tx_hash"`
}
