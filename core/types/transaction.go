// Package types defines the Scroll execution-layer transaction model (§3,
// C3): the base Ethereum tx fields plus the Scroll extensions needed to
// compute the L1 data-availability fee and to recognize L1-message and
// system transactions.
package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// TxKind mirrors the Call/Create distinction the handler needs for nonce
// bumping (§4.4 PreExecute, L1-message branch).
type TxKind uint8

const (
	Call TxKind = iota
	Create
)

// Transaction is the tx model C3 describes: base fields plus the Scroll
// extensions. RlpBytes, CompressionRatio and CompressedSize are optional
// per-era inputs to the L1 fee formula (package l1cost); which of them a
// given fork's formula requires is enforced there, not here.
type Transaction struct {
	Caller       common.Address
	Kind         TxKind
	To           *common.Address // nil for contract creation
	Value        *uint256.Int
	Data         []byte
	Nonce        uint64
	ChainID      *uint256.Int
	GasLimit     uint64
	GasPrice     *uint256.Int // effective gas price for legacy-shaped txs
	PriorityFee  *uint256.Int // nil when the tx has no separate tip (legacy)
	AccessList   AccessList
	AuthList     []Authorization // EIP-7702 authorization list, empty pre-EUCLID
	BlobHashes   []common.Hash
	BlobFeeCap   *uint256.Int

	// TxType is the EIP-2718 transaction type byte. L1MessageTxType (0x7E)
	// marks an L1 message; other values are base Ethereum tx types and are
	// otherwise opaque to this package.
	TxType byte

	// RlpBytes is the RLP encoding of the transaction as it will be posted
	// to L1. Required whenever an L1 cost is to be charged (i.e. whenever
	// the tx is neither an L1 message nor a system tx).
	RlpBytes []byte

	// CompressionRatio is size(rlp(tx))*1e9/size(zstd(rlp(tx))), required
	// from FEYNMAN onward. Zero means "not set".
	CompressionRatio uint64

	// CompressedSize is the zstd-compressed size of RlpBytes in bytes,
	// required from FEYNMAN onward for the size-based fee formula. Zero
	// means "not set".
	CompressedSize uint64
}

// AccessList is the EIP-2930 access list; kept minimal since RLP
// encoding/decoding is an external collaborator (§1).
type AccessList []AccessTuple

type AccessTuple struct {
	Address     common.Address
	StorageKeys []common.Hash
}

// systemTxSender is the well-known caller address of a system tx (§3, §6).
// It is declared here rather than imported from package params; the two
// values are defined identically.
var systemTxSender = common.HexToAddress("0xfffffffffffffffffffffffffffffffffffffffe")

// IsL1MessageTx reports whether the tx originated on the L1 bridge (§3, §6).
func (tx *Transaction) IsL1MessageTx() bool {
	return tx.TxType == 0x7E
}

// IsSystemTx reports whether the tx's caller is the well-known system
// address (§3). A system tx is charged no L1 fee and does not reward the
// beneficiary for L1 cost (§4.4 Reward).
func (tx *Transaction) IsSystemTx() bool {
	return tx.Caller == systemTxSender
}
