package vm

import (
	"github.com/scroll-tech/scroll-evm-overlay/params"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Host is everything the overridden instructions in instructions_scroll.go
// need from the surrounding engine (§4.2). The context/journal collaborator
// (C7/C6) implements this; a fake implementation backs the tests in this
// package.
type Host interface {
	Spec() params.ScrollSpecId
	ChainID() uint64
	BlockNumber() uint64
	Basefee() *uint256.Int

	// TLoad/TStore expose the journal's transient storage (§4.2 TLOAD/TSTORE).
	TLoad(addr common.Address, key common.Hash) *uint256.Int
	TStore(addr common.Address, key common.Hash, value *uint256.Int)

	// HistoryStorageSload reads slot key of the EIP-2935 history contract,
	// reporting whether the account exists in the journal (§4.2 post-Feynman
	// BLOCKHASH; FatalExternalError if absent).
	HistoryStorageSload(key common.Hash) (value *uint256.Int, accountExists bool, err error)

	// CodeSizeByHash is the pre-Feynman EXTCODESIZE side channel (§4.2);
	// ok is false when the side channel has no entry for addr, in which
	// case the caller must fall through to the base table.
	CodeSizeByHash(addr common.Address) (size uint64, ok bool)
}

// ScopeContext carries the per-frame state an instruction touches: its
// stack, memory, own address, and whether it is running in a static
// (read-only) call (go-ethereum's core/vm/instructions.go ScopeContext
// shape, trimmed to what this package's overrides need).
type ScopeContext struct {
	Stack    *Stack
	Memory   *Memory
	Address  common.Address
	ReadOnly bool
}
