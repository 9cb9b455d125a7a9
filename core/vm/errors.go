package vm

import "errors"

// Halt errors returned by the overridden opcodes and precompiles (§4.2,
// §4.3). These mirror the base engine's ErrExecutionReverted-style
// sentinels; the interpreter loop (out of scope, §1) is expected to map
// them onto its own halt/revert machinery.
var (
	// ErrNotActivated is returned by an opcode or precompile gated to a
	// later hardfork than the one currently active.
	ErrNotActivated = errors.New("vm: not activated at this hardfork")

	// ErrOutOfGas is returned when a dynamic or static gas charge cannot
	// be paid out of the remaining frame gas.
	ErrOutOfGas = errors.New("vm: out of gas")

	// ErrOutOfFunds is returned when a value-transferring operation
	// cannot be paid out of the caller's balance.
	ErrOutOfFunds = errors.New("vm: insufficient funds")

	// ErrFatalExternalError is returned when a required external read
	// (e.g. the EIP-2935 history contract account) is unexpectedly
	// absent from the journal.
	ErrFatalExternalError = errors.New("vm: fatal external error")

	// ErrStackUnderflow is returned when an opcode needs more stack
	// items than are present.
	ErrStackUnderflow = errors.New("vm: stack underflow")

	// ErrWriteProtection is returned when TSTORE (or any other
	// state-mutating opcode) runs in a static call context.
	ErrWriteProtection = errors.New("vm: write protection")
)
