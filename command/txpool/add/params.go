package add

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"github.com/starkedge/mempool/command/helper"
	"github.com/starkedge/mempool/helper/hex"
	"github.com/starkedge/mempool/txpool/operator"
	"github.com/starkedge/mempool/types"
)

const (
	rawFlag               = "raw"
	typeFlag              = "type"
	versionFlag           = "version"
	senderFlag            = "sender"
	nonceFlag             = "nonce"
	feeFlag               = "fee"
	calldataFlag          = "calldata"
	signatureFlag         = "signature"
	classHashFlag         = "class-hash"
	compiledClassHashFlag = "compiled-class-hash"
	saltFlag              = "salt"
)

var (
	params = &addParams{}
)

var errMissingSender = errors.New("either a raw transaction or a sender is required")

type addParams struct {
	rawTx string

	typeRaw              string
	version              uint64
	senderRaw            string
	nonce                uint64
	feeRaw               string
	calldataRaw          []string
	signatureRaw         []string
	classHashRaw         string
	compiledClassHashRaw string
	saltRaw              string

	tx *types.Transaction
}

func (ap *addParams) init() error {
	if ap.rawTx != "" {
		return ap.initRaw()
	}

	if ap.senderRaw == "" {
		return errMissingSender
	}

	return ap.initFields()
}

func (ap *addParams) initRaw() error {
	raw, err := hex.DecodeHex(ap.rawTx)
	if err != nil {
		return fmt.Errorf("failed to decode raw transaction: %w", err)
	}

	tx := &types.Transaction{}
	if err := tx.UnmarshalRLP(raw); err != nil {
		return fmt.Errorf("failed to decode raw transaction: %w", err)
	}

	ap.tx = tx

	return nil
}

func (ap *addParams) initFields() error {
	txType, err := types.ParseTxType(strings.ToUpper(ap.typeRaw))
	if err != nil {
		return err
	}

	tx := &types.Transaction{
		Type:    txType,
		Version: ap.version,
		Nonce:   ap.nonce,
		Fee:     uint256.NewInt(0),
	}

	if err := tx.Sender.UnmarshalText([]byte(ap.senderRaw)); err != nil {
		return fmt.Errorf("failed to decode sender address: %w", err)
	}

	if ap.feeRaw != "" {
		if tx.Fee, err = helper.ParseUint256(ap.feeRaw); err != nil {
			return fmt.Errorf("failed to parse fee: %w", err)
		}
	}

	if tx.Calldata, err = decodeFelts(ap.calldataRaw); err != nil {
		return fmt.Errorf("failed to decode calldata: %w", err)
	}

	if tx.Signature, err = decodeFelts(ap.signatureRaw); err != nil {
		return fmt.Errorf("failed to decode signature: %w", err)
	}

	hashes := []struct {
		raw string
		dst *types.Hash
	}{
		{ap.classHashRaw, &tx.ClassHash},
		{ap.compiledClassHashRaw, &tx.CompiledClassHash},
		{ap.saltRaw, &tx.ContractAddressSalt},
	}

	for _, h := range hashes {
		if h.raw == "" {
			continue
		}

		if err := h.dst.UnmarshalText([]byte(h.raw)); err != nil {
			return fmt.Errorf("failed to decode %q: %w", h.raw, err)
		}
	}

	ap.tx = tx.ComputeHash()

	return nil
}

func decodeFelts(raw []string) ([][]byte, error) {
	felts := make([][]byte, 0, len(raw))

	for _, r := range raw {
		felt, err := hex.DecodeHex(r)
		if err != nil {
			return nil, err
		}

		felts = append(felts, felt)
	}

	return felts, nil
}

func (ap *addParams) constructAddRequest() *operator.AddTxnReq {
	return &operator.AddTxnReq{
		Raw: ap.tx.MarshalRLP(),
	}
}
