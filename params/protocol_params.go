package params

import "github.com/ethereum/go-ethereum/common"

// Gas accounting constants this overlay actually consults, carried over
// from go-ethereum's protocol_params.go (values unchanged from mainnet;
// intrinsic gas is computed in package handler's intrinsicGas/floorGas).
const (
	TxGas     uint64 = 21000 // Per transaction not creating a contract.
	CreateGas uint64 = 32000 // Once per CREATE operation & contract-creation transaction.

	TxDataZeroGas           uint64 = 4  // Per byte of data attached to a transaction that equals zero.
	TxDataNonZeroGasEIP2028 uint64 = 16 // Per byte of non-zero data attached to a transaction, post EIP-2028 (Istanbul).
	TxTokenPerNonZeroByte   uint64 = 4  // Token cost per non-zero byte as specified by EIP-7623.
	TxCostFloorPerToken     uint64 = 10 // Cost floor per byte of data as specified by EIP-7623.

	TxAccessListAddressGas    uint64 = 2400  // Per address specified in an EIP-2930 access list.
	TxAccessListStorageKeyGas uint64 = 1900  // Per storage key specified in an EIP-2930 access list.
	TxAuthTupleGas            uint64 = 12500 // Per authorization tuple, as specified by EIP-7702.

	WarmStorageReadCostEIP2929 uint64 = 100 // WARM_STORAGE_READ_COST, EIP-2929.

	// HistoryServeWindow is the EIP-2935 history contract's ring buffer
	// size: BLOCKHASH reads slot (requested_number mod HistoryServeWindow).
	HistoryServeWindow = 8191
)

// System contracts (§6).
var (
	// SystemAddress is where a system transaction is sent from,
	// mirroring the address go-ethereum's EIP-4788 code uses. L1 messages
	// are recognized by their type byte, not by this caller.
	SystemAddress = common.HexToAddress("0xfffffffffffffffffffffffffffffffffffffffe")

	// HistoryStorageAddress is the EIP-2935 history-accumulator contract
	// the Feynman-and-later BLOCKHASH override reads from.
	HistoryStorageAddress = common.HexToAddress("0x0000F90827F1C53a10cb7A02335B175320002935")
)
