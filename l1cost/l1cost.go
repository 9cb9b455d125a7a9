// Package l1cost implements the L1 gas price oracle read path and the
// per-hardfork L1 data-availability fee formulas (spec.md §4.1, C2).
//
// Grounded on bobanetwork-erigon's core/types/rollup_l1_cost.go (oracle
// slot read + per-block cache shape) and scroll-revm's src/l1block.rs
// (exact saturating/wrapping semantics, slot layout, and the
// calldata_gas precomputation at fetch time).
package l1cost

import (
	"errors"

	"github.com/scroll-tech/scroll-evm-overlay/database"
	"github.com/scroll-tech/scroll-evm-overlay/params"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ErrMissingRlpBytes is returned when CalculateTxL1Cost is called without
// the pre-encoded tx bytes an L1 cost charge requires (§3 invariant).
var ErrMissingRlpBytes = errors.New("l1cost: rlp bytes required to charge an L1 fee")

// ErrMissingCompressedSize is returned when the Feynman-era formula is
// invoked without compressed_size populated (§4.1).
var ErrMissingCompressedSize = errors.New("l1cost: compressed size required from feynman onward")

// ErrCompressionRatioTooSmall is returned when compression_ratio is below
// 1.0 scaled (1e9); a tx can never expand under compression (§4.1 edge case).
var ErrCompressionRatioTooSmall = errors.New("l1cost: compression ratio must be >= 1e9")

const oneE9 = 1_000_000_000

// BlockInfo is an immutable-per-tx snapshot of the L1 gas oracle contract
// (§3 C2). Curie-and-later fields are nil until the fork that mandates
// them; the invariant that the populated-field set is monotone in the
// hardfork is maintained entirely by Fetch.
type BlockInfo struct {
	L1BaseFee      *uint256.Int
	L1FeeOverhead  *uint256.Int
	L1BaseFeeScalar *uint256.Int

	// Curie and later.
	L1BlobBaseFee    *uint256.Int
	L1CommitScalar   *uint256.Int // post-Feynman: exec scalar
	L1BlobScalar     *uint256.Int
	CalldataGas      *uint256.Int // precomputed L1CommitScalar * L1BaseFee, see scroll-revm's try_fetch

	// Feynman and later.
	PenaltyThreshold *uint256.Int
	PenaltyFactor    *uint256.Int
}

func loadSlot(db database.Database, slot uint64) (*uint256.Int, error) {
	key := common.Hash(uint256.NewInt(slot).Bytes32())
	return db.Storage(params.L1GasPriceOracleAddress, key)
}

// Fetch reads the L1 gas oracle storage slots mandated by spec and returns
// a populated snapshot (§4.1 try_fetch). It fails only on database I/O
// error, surfaced verbatim to the caller (a Database error, per §7).
func Fetch(db database.Database, spec params.ScrollSpecId) (*BlockInfo, error) {
	l1BaseFee, err := loadSlot(db, params.L1BaseFeeSlot)
	if err != nil {
		return nil, err
	}
	l1FeeOverhead, err := loadSlot(db, params.L1FeeOverheadSlot)
	if err != nil {
		return nil, err
	}
	l1BaseFeeScalar, err := loadSlot(db, params.L1BaseFeeScalarSlot)
	if err != nil {
		return nil, err
	}

	info := &BlockInfo{
		L1BaseFee:       l1BaseFee,
		L1FeeOverhead:   l1FeeOverhead,
		L1BaseFeeScalar: l1BaseFeeScalar,
	}

	if !spec.IsEnabledIn(params.CURIE) {
		return info, nil
	}

	l1BlobBaseFee, err := loadSlot(db, params.L1BlobBaseFeeSlot)
	if err != nil {
		return nil, err
	}
	l1CommitScalar, err := loadSlot(db, params.L1CommitScalarSlot)
	if err != nil {
		return nil, err
	}
	l1BlobScalar, err := loadSlot(db, params.L1BlobScalarSlot)
	if err != nil {
		return nil, err
	}

	info.L1BlobBaseFee = l1BlobBaseFee
	info.L1CommitScalar = l1CommitScalar
	info.L1BlobScalar = l1BlobScalar
	info.CalldataGas = saturatingMul(l1CommitScalar, l1BaseFee)

	if !spec.IsEnabledIn(params.FEYNMAN) {
		return info, nil
	}

	penaltyThreshold, err := loadSlot(db, params.L1PenaltyThresholdSlot)
	if err != nil {
		return nil, err
	}
	penaltyFactor, err := loadSlot(db, params.L1PenaltyFactorSlot)
	if err != nil {
		return nil, err
	}
	info.PenaltyThreshold = penaltyThreshold
	info.PenaltyFactor = penaltyFactor

	return info, nil
}

// DataGas computes the L1 posting cost of input, in the per-era units
// CalculateTxL1Cost expects (§4.1).
func (info *BlockInfo) DataGas(input []byte, spec params.ScrollSpecId) *uint256.Int {
	if !spec.IsEnabledIn(params.CURIE) {
		var zero, nonZero uint64
		for _, b := range input {
			if b == 0x00 {
				zero++
			} else {
				nonZero++
			}
		}
		cost := zero*4 + nonZero*16
		gas := new(uint256.Int).SetUint64(cost)
		gas = saturatingAdd(gas, info.L1FeeOverhead)
		gas = saturatingAdd(gas, uint256.NewInt(64))
		return gas
	}

	length := new(uint256.Int).SetUint64(uint64(len(input)))
	return saturatingMul(saturatingMul(length, info.L1BlobBaseFee), info.L1BlobScalar)
}

// CalculateTxL1Cost computes the u256 L1 cost of posting tx to L1,
// clamped to u64::MAX (§4.1). compressionRatio and compressedSize are
// only consulted (and required) from FEYNMAN onward.
func (info *BlockInfo) CalculateTxL1Cost(
	input []byte,
	spec params.ScrollSpecId,
	compressionRatio uint64,
	compressedSize uint64,
) (*uint256.Int, error) {
	if len(input) == 0 {
		return nil, ErrMissingRlpBytes
	}

	var cost *uint256.Int

	switch {
	case !spec.IsEnabledIn(params.CURIE):
		dataGas := info.DataGas(input, spec)
		cost = wrappingDiv(
			saturatingMul(saturatingMul(dataGas, info.L1BaseFee), info.L1BaseFeeScalar),
			uint256.NewInt(oneE9),
		)

	case !spec.IsEnabledIn(params.FEYNMAN):
		// "commitScalar * l1BaseFee + blobScalar * len(data) * l1BlobBaseFee"
		// with calldata_gas precomputed once at Fetch time (Open Question #2).
		blobGas := info.DataGas(input, spec)
		cost = wrappingDiv(saturatingAdd(info.CalldataGas, blobGas), uint256.NewInt(oneE9))

	default: // FEYNMAN and later
		if compressedSize == 0 {
			return nil, ErrMissingCompressedSize
		}
		if compressionRatio < oneE9 {
			return nil, ErrCompressionRatioTooSmall
		}

		s := new(uint256.Int).SetUint64(compressedSize)
		componentExec := saturatingMul(info.L1CommitScalar, info.L1BaseFee)
		componentBlob := saturatingMul(info.L1BlobScalar, info.L1BlobBaseFee)
		sumComponents := saturatingAdd(componentExec, componentBlob)

		var penalty *uint256.Int
		if compressionRatio >= info.PenaltyThreshold.Uint64() {
			penalty = uint256.NewInt(oneE9)
		} else {
			penalty = info.PenaltyFactor
		}

		numerator := saturatingMul(saturatingMul(s, sumComponents), penalty)
		cost = wrappingDiv(wrappingDiv(numerator, uint256.NewInt(oneE9)), uint256.NewInt(oneE9))
	}

	return clampToU64Max(cost), nil
}

func clampToU64Max(v *uint256.Int) *uint256.Int {
	max := uint256.NewInt(^uint64(0))
	if v.Gt(max) {
		return max
	}
	return v
}

func saturatingAdd(a, b *uint256.Int) *uint256.Int {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return sum
}

func saturatingMul(a, b *uint256.Int) *uint256.Int {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return product
}

func wrappingDiv(a, b *uint256.Int) *uint256.Int {
	if b.IsZero() {
		return new(uint256.Int)
	}
	return new(uint256.Int).Div(a, b)
}
