package evmcontext

import (
	"github.com/scroll-tech/scroll-evm-overlay/core/vm"
	"github.com/scroll-tech/scroll-evm-overlay/params"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Context implements core/vm.Host, so the jump table built by
// vm.NewScrollJumpTable can be run directly against it (§4.2).
var _ vm.Host = (*Context)(nil)

func (c *Context) ChainID() uint64 {
	if c.Cfg.ChainID == nil {
		return 0
	}
	return *c.Cfg.ChainID
}

func (c *Context) BlockNumber() uint64 { return c.Block.Number }

func (c *Context) Basefee() *uint256.Int {
	if c.Block.BaseFee == nil {
		return new(uint256.Int)
	}
	return c.Block.BaseFee
}

func (c *Context) TLoad(addr common.Address, key common.Hash) *uint256.Int {
	return c.Journal.TLoad(addr, key)
}

func (c *Context) TStore(addr common.Address, key common.Hash, value *uint256.Int) {
	c.Journal.TStore(addr, key, value)
}

// HistoryStorageSload backs the Feynman-and-later BLOCKHASH override by
// reading the EIP-2935 history contract through the journal (§4.2
// BLOCKHASH, Feynman row). The account must already exist in state; an
// absent account is the FatalExternalError case the opcode reports.
func (c *Context) HistoryStorageSload(key common.Hash) (*uint256.Int, bool, error) {
	dbAcc, err := c.DB.Basic(params.EIP2935HistoryStorageAddress)
	if err != nil {
		return nil, false, err
	}
	if dbAcc == nil {
		return nil, false, nil
	}
	value, _, err := c.Journal.SLoad(params.EIP2935HistoryStorageAddress, key)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// CodeSizeByHash is the pre-Feynman EXTCODESIZE side channel (§4.2). This
// overlay has no such side channel wired in, so EXTCODESIZE always falls
// through to the base table's own implementation.
func (c *Context) CodeSizeByHash(common.Address) (uint64, bool) { return 0, false }
