// Package scrollevm is the EVM façade (C9, §4.5): it owns the context,
// inspector, instruction table and precompile provider, and wires them
// together with the handler state machine (package handler) to expose
// the conventional execute / execute_and_commit / inspect /
// inspect_and_commit / transact_system_call_with_caller entry points.
//
// Grounded on the teacher's core/state_processor_rollup.go
// (ProcessL1OriginBlockInfo's synthetic system-call-via-evm.Call
// pattern, generalized here into TransactSystemCallWithCaller) and
// core/state_transition_rollup.go's StateTransition orchestration shape.
package scrollevm

import (
	"fmt"

	"github.com/scroll-tech/scroll-evm-overlay/core/types"
	"github.com/scroll-tech/scroll-evm-overlay/core/vm"
	"github.com/scroll-tech/scroll-evm-overlay/database"
	"github.com/scroll-tech/scroll-evm-overlay/evmcontext"
	"github.com/scroll-tech/scroll-evm-overlay/handler"
	"github.com/scroll-tech/scroll-evm-overlay/journal"
	"github.com/scroll-tech/scroll-evm-overlay/params"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// Inspector is the pass-through tracing hook surface (§6 "Inspector
// collaborator"), mirroring the shape of go-ethereum's
// core/tracing.Hooks trimmed to what this overlay's frames report.
// Every field is optional; a nil field is simply not called.
type Inspector struct {
	OnOpcode       func(pc uint64, op vm.OpCode, gas, cost uint64, scope *vm.ScopeContext, depth int, err error)
	OnLog          func(l journal.Log)
	OnEnter        func(depth int, kind types.TxKind, from, to common.Address, input []byte, gas uint64, value *uint256.Int)
	OnExit         func(depth int, output []byte, gasUsed uint64, err error, reverted bool)
	OnSelfdestruct func(addr, beneficiary common.Address, balance *uint256.Int)
}

// EVM wires the per-spec instruction table and precompile provider (C4,
// C5) to the handler state machine (C8) over a context built fresh per
// transaction (C7). Base is the mainnet base jump table collaborator
// (§1, out of scope): vm.NewScrollJumpTable clones and overrides it.
type EVM struct {
	Cfg       *params.ScrollChainConfig
	DB        database.Database
	Committer database.Committer
	Runner    handler.FrameRunner
	Base      *vm.JumpTable

	// Inspector holds the hooks installed for the duration of an
	// Inspect/InspectAndCommit call, which sets it to its own argument and
	// restores the previous value afterward (§6). No code in this module
	// invokes its callbacks.
	Inspector *Inspector
}

// New returns a façade wiring db/committer/runner/base together under cfg.
func New(cfg *params.ScrollChainConfig, db database.Database, committer database.Committer, runner handler.FrameRunner, base *vm.JumpTable) *EVM {
	return &EVM{Cfg: cfg, DB: db, Committer: committer, Runner: runner, Base: base}
}

// Result is the outcome of a fully-run transaction, bundling the
// handler's result with the state diff and logs Finalize produced.
type Result struct {
	Tx   *handler.TxResult
	Diff map[common.Address]database.AccountDiff
	Logs []journal.Log
}

func (e *EVM) newContext(block evmcontext.BlockEnv, tx *types.Transaction) *evmcontext.Context {
	ctx := evmcontext.New(e.DB, e.Cfg, block, tx)
	spec := ctx.Spec()
	ctx.SetEngine(vm.NewScrollJumpTable(e.Base, spec), vm.PrecompilesFor(spec))
	return ctx
}

// Execute runs tx against block without committing the resulting state
// diff anywhere (§4.5 "execute").
func (e *EVM) Execute(block evmcontext.BlockEnv, tx *types.Transaction) (*Result, error) {
	ctx := e.newContext(block, tx)
	h := handler.New(e.Runner)

	txResult, err := h.Run(ctx)
	if err != nil {
		log.Error("scrollevm: transaction failed", "caller", tx.Caller, "err", err)
		return nil, err
	}

	diff, logs := ctx.Journal.Finalize()
	return &Result{Tx: txResult, Diff: diff, Logs: logs}, nil
}

// ExecuteAndCommit runs Execute and, on success, hands the resulting
// diff to the Committer collaborator (§4.5 "execute_and_commit").
func (e *EVM) ExecuteAndCommit(block evmcontext.BlockEnv, tx *types.Transaction) (*Result, error) {
	result, err := e.Execute(block, tx)
	if err != nil {
		return nil, err
	}
	if err := e.Committer.Commit(result.Diff); err != nil {
		return nil, fmt.Errorf("scrollevm: commit: %w", err)
	}
	return result, nil
}

// Inspect runs Execute with insp installed for the duration of the call
// (§4.5 "inspect", §6 "Inspector collaborator"). insp may be nil, in
// which case this behaves exactly like Execute.
func (e *EVM) Inspect(block evmcontext.BlockEnv, tx *types.Transaction, insp *Inspector) (*Result, error) {
	prev := e.Inspector
	e.Inspector = insp
	defer func() { e.Inspector = prev }()
	return e.Execute(block, tx)
}

// InspectAndCommit is Inspect followed by a commit on success (§4.5
// "inspect_and_commit").
func (e *EVM) InspectAndCommit(block evmcontext.BlockEnv, tx *types.Transaction, insp *Inspector) (*Result, error) {
	prev := e.Inspector
	e.Inspector = insp
	defer func() { e.Inspector = prev }()
	return e.ExecuteAndCommit(block, tx)
}

// TransactSystemCallWithCaller runs a synthetic, gas-unmetered call from
// caller against to, bypassing the full tx validation pipeline (§4.5,
// supplemented from original_source/src/context.rs's
// transact_system_call_with_caller). Used to invoke a system contract —
// e.g. the L1 gas oracle or a history accumulator — outside of a user
// transaction, the way the teacher's ProcessL1OriginBlockInfo drives a
// synthetic evm.Call from params.SystemAddress.
func (e *EVM) TransactSystemCallWithCaller(block evmcontext.BlockEnv, caller, to common.Address, data []byte, gasLimit uint64) (*handler.FrameResult, map[common.Address]database.AccountDiff, error) {
	tx := &types.Transaction{
		Caller:   caller,
		Kind:     types.Call,
		To:       &to,
		Data:     data,
		GasLimit: gasLimit,
		GasPrice: new(uint256.Int),
		Value:    new(uint256.Int),
	}
	ctx := e.newContext(block, tx)

	if _, _, err := ctx.Journal.LoadAccount(caller); err != nil {
		return nil, nil, err
	}
	if _, _, err := ctx.Journal.LoadAccount(to); err != nil {
		return nil, nil, err
	}

	frame, err := e.Runner.Run(ctx, tx, gasLimit)
	if err != nil {
		log.Error("scrollevm: system call failed", "caller", caller, "to", to, "err", err)
		return nil, nil, err
	}

	diff, _ := ctx.Journal.Finalize()
	return frame, diff, nil
}
