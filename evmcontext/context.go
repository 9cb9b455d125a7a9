// Package evmcontext composes the per-transaction environment the
// handler state machine (package handler) and the EVM façade (package
// scrollevm) drive (§3/§4.4 C7). It is grounded on
// original_source/src/context.rs's ScrollContextFull, which wraps a
// revm Context (block, tx, cfg, db+journal, a generic "chain" slot) and
// keeps the journal's spec id in sync with cfg's. Go has no generic
// Context type to wrap, so this package is a concrete struct playing
// the same role: block/tx/cfg/db/journal plus an L1BlockInfo "chain"
// slot, with typed setters mirroring ContextSetters::set_tx/set_block.
package evmcontext

import (
	"github.com/scroll-tech/scroll-evm-overlay/core/vm"
	"github.com/scroll-tech/scroll-evm-overlay/database"
	"github.com/scroll-tech/scroll-evm-overlay/journal"
	"github.com/scroll-tech/scroll-evm-overlay/l1cost"
	"github.com/scroll-tech/scroll-evm-overlay/params"
	"github.com/scroll-tech/scroll-evm-overlay/core/types"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// BlockEnv is the subset of block header fields the overlay consults
// (§3 Context, §4.2 BLOCKHASH/BASEFEE).
type BlockEnv struct {
	Number    uint64
	Timestamp uint64
	BaseFee   *uint256.Int
	Coinbase  common.Address
}

// Context assembles (block, tx, cfg, db, journal, L1BlockInfo) for a
// single transaction (§3 "Data flow"). It is created fresh per tx by the
// façade (C9) and driven by the handler (C8).
type Context struct {
	Block BlockEnv
	Tx    *types.Transaction
	Cfg   *params.ScrollChainConfig
	DB    database.Database

	Journal *journal.Journal

	// L1BlockInfo is the chain slot original_source/src/context.rs's
	// generic CHAIN parameter plays: populated by PreExecute for
	// non-L1-message, non-system transactions (§4.4 PreExecute), nil
	// otherwise.
	L1BlockInfo *l1cost.BlockInfo

	// JumpTable and Precompiles are the per-spec override instruction
	// table (§4.2) and precompile set (§4.3) the façade (C9) installs
	// before a frame runs. The frame interpreter itself is an external
	// collaborator (§1); this is the seam it reads the overrides through.
	JumpTable   *vm.JumpTable
	Precompiles vm.PrecompiledContracts
}

// New assembles a fresh Context over db for one transaction, mirroring
// ScrollContextFull::new's db+spec wiring (the journal's spec awareness
// here is expressed as Context.Spec(), not a field cached on the
// journal, since nothing in this module mutates spec mid-transaction).
func New(db database.Database, cfg *params.ScrollChainConfig, block BlockEnv, tx *types.Transaction) *Context {
	return &Context{
		Block:   block,
		Tx:      tx,
		Cfg:     cfg,
		DB:      db,
		Journal: journal.New(db),
	}
}

// Spec returns the hardfork active for this context's block timestamp
// (§3 C1).
func (c *Context) Spec() params.ScrollSpecId {
	return c.Cfg.Spec(c.Block.Timestamp)
}

// SetTx replaces the transaction under execution, mirroring
// ContextSetters::set_tx.
func (c *Context) SetTx(tx *types.Transaction) { c.Tx = tx }

// SetBlock replaces the block environment, mirroring
// ContextSetters::set_block.
func (c *Context) SetBlock(block BlockEnv) { c.Block = block }

// SetL1BlockInfo installs the L1 gas oracle snapshot PreExecute fetched
// (§4.4 PreExecute).
func (c *Context) SetL1BlockInfo(info *l1cost.BlockInfo) { c.L1BlockInfo = info }

// SetEngine installs the instruction table and precompile set a frame
// should run against, mirroring ContextSetters wiring the interpreter's
// collaborators before a call (§4.5 "The façade owns ... instruction
// table, precompile provider").
func (c *Context) SetEngine(jt *vm.JumpTable, precompiles vm.PrecompiledContracts) {
	c.JumpTable = jt
	c.Precompiles = precompiles
}
