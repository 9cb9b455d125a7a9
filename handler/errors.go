// Package handler implements the transaction state machine (C8, §4.4):
// a fixed sequence of named, independently testable steps —
// Validate, PreExecute, Execute, FinalizeFrameGas, Refund, Reward —
// threading the L1-message and system-tx branches through each one.
package handler

import "errors"

// Transaction errors (§7): rejected before mutating state.
var (
	ErrLackOfFundForMaxFee          = errors.New("handler: insufficient balance for max fee")
	ErrCallGasCostMoreThanGasLimit  = errors.New("handler: call gas cost exceeds gas limit")
	ErrGasFloorMoreThanGasLimit     = errors.New("handler: eip-7623 floor gas exceeds gas limit")
	ErrEip7702NotSupported          = errors.New("handler: eip-7702 not supported at this hardfork")
	ErrInvalidChainId               = errors.New("handler: invalid authorization chain id")
	ErrEmptyAuthorizationList       = errors.New("handler: empty authorization list")
	ErrCallerGasLimitMoreThanBlock  = errors.New("handler: caller gas limit exceeds block gas limit")
	ErrCreateInitCodeSizeLimit      = errors.New("handler: create init code exceeds size limit")
	ErrRejectCallerWithCode         = errors.New("handler: eip-3607 caller has code")
)

// ErrCustom wraps an ad-hoc infrastructure error, e.g. a missing
// required field (§7 "Custom(String)").
type ErrCustom struct{ Msg string }

func (e *ErrCustom) Error() string { return "handler: " + e.Msg }
