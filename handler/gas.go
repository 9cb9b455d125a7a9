package handler

import (
	"github.com/scroll-tech/scroll-evm-overlay/core/types"
	"github.com/scroll-tech/scroll-evm-overlay/params"
)

// intrinsicGas is the base engine's InitialGas computation (EIP-2028
// calldata pricing, EIP-2930 access lists, EIP-2's CREATE surcharge),
// extended per §4.4 Validate with the EIP-7702 authorization-tuple cost
// when spec is at least EUCLID.
func intrinsicGas(tx *types.Transaction, spec params.ScrollSpecId) uint64 {
	gas := params.TxGas
	if tx.Kind == types.Create {
		gas += params.CreateGas
	}

	var zero, nonZero uint64
	for _, b := range tx.Data {
		if b == 0 {
			zero++
		} else {
			nonZero++
		}
	}
	gas += zero * params.TxDataZeroGas
	gas += nonZero * params.TxDataNonZeroGasEIP2028

	for _, tuple := range tx.AccessList {
		gas += params.TxAccessListAddressGas
		gas += uint64(len(tuple.StorageKeys)) * params.TxAccessListStorageKeyGas
	}

	if spec.IsEnabledIn(params.EUCLID) {
		gas += uint64(len(tx.AuthList)) * params.PerEmptyAccountCost
	}

	return gas
}

// floorGas is EIP-7623's calldata gas floor, active from FEYNMAN onward
// (§4.4 Validate).
func floorGas(tx *types.Transaction) uint64 {
	var zero, nonZero uint64
	for _, b := range tx.Data {
		if b == 0 {
			zero++
		} else {
			nonZero++
		}
	}
	tokens := zero + nonZero*params.TxTokenPerNonZeroByte
	floor := params.TxGas + tokens*params.TxCostFloorPerToken
	if tx.Kind == types.Create {
		floor += params.CreateGas
	}
	return floor
}
