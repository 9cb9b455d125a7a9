package params

import "github.com/ethereum/go-ethereum/common"

// Well-known addresses (§6).
var (
	// L1GasPriceOracleAddress is the L2 system contract that exposes the
	// L1 base fee, blob base fee, and fee scalars used by the L1 data
	// availability fee formulas in package l1cost.
	L1GasPriceOracleAddress = common.HexToAddress("0x5300000000000000000000000000000000000002")

	// L1SystemTxSender is the caller address carried by system transactions;
	// it is charged no L1 fee and the beneficiary is not rewarded for it.
	// This is the same well-known address go-ethereum uses for EIP-4788's
	// SystemAddress (see params.SystemAddress in protocol_params.go).
	L1SystemTxSender = SystemAddress

	// EIP2935HistoryStorageAddress is the history-accumulator contract
	// BLOCKHASH reads from post-Feynman (see params.HistoryStorageAddress
	// in protocol_params.go, reused here under the Scroll-facing name used
	// by spec.md §4.2/§6).
	EIP2935HistoryStorageAddress = HistoryStorageAddress
)

// L1 gas oracle storage slots (§4.1).
const (
	L1BaseFeeSlot        = 1
	L1FeeOverheadSlot    = 2
	L1BaseFeeScalarSlot  = 3
	L1BlobBaseFeeSlot    = 5
	L1CommitScalarSlot   = 6 // post-Feynman: exec scalar
	L1BlobScalarSlot     = 7
	L1PenaltyThresholdSlot = 9
	L1PenaltyFactorSlot    = 10
)

// L1 message / system transaction type byte (§6).
const L1MessageTxType = 0x7E

// EIP-2935 history window: BLOCKHASH reads slot (requested_number mod
// HistoryServeWindow) of the history contract; HistoryServeWindow (8191)
// is defined alongside the other well-known constants in
// protocol_params.go and reused here unchanged.

// EIP-7702 authorization-list gas accounting (§4.4), named after the
// revm/EIP-7702 terms spec.md uses directly.
const (
	PerEmptyAccountCost uint64 = 25000          // charged per authorization tuple toward InitialAndFloorGas
	PerAuthBaseCost     uint64 = TxAuthTupleGas // 12_500, the part of PerEmptyAccountCost NOT refunded for a non-empty authority
)

// Scroll opcode-table static gas costs (§4.2).
const (
	GasBlockhashScroll   uint64 = 20
	GasBasefeeScroll     uint64 = 2
	GasTLoadScroll       uint64 = 100
	GasTStoreScroll      uint64 = 100
	GasMCopyScroll       uint64 = 0 // dynamic only
	GasSelfdestructScroll uint64 = 0
	GasDifficultyScroll  uint64 = 2
	GasClzScroll         uint64 = 5
)

// BN128_PAIR input size cap removed at FEYNMAN (§4.3).
const Bn128PairMaxPairsPreFeynman = 4

// MODEXP input-length header cap removed at GALILEO (§4.3).
const ModexpLengthHeaderCapPreGalileo = 32
