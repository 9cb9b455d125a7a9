package scrollevm

import (
	"errors"
	"testing"

	"github.com/scroll-tech/scroll-evm-overlay/core/types"
	"github.com/scroll-tech/scroll-evm-overlay/core/vm"
	"github.com/scroll-tech/scroll-evm-overlay/database"
	"github.com/scroll-tech/scroll-evm-overlay/evmcontext"
	"github.com/scroll-tech/scroll-evm-overlay/handler"
	"github.com/scroll-tech/scroll-evm-overlay/journal"
	"github.com/scroll-tech/scroll-evm-overlay/params"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type fakeDB struct {
	accounts map[common.Address]*database.Account
}

func newFakeDB() *fakeDB { return &fakeDB{accounts: make(map[common.Address]*database.Account)} }

func (f *fakeDB) Basic(addr common.Address) (*database.Account, error) { return f.accounts[addr], nil }
func (f *fakeDB) Storage(common.Address, common.Hash) (*uint256.Int, error) {
	return new(uint256.Int), nil
}
func (f *fakeDB) CodeByHash(common.Hash) ([]byte, error) { return nil, nil }
func (f *fakeDB) BlockHash(uint64) (common.Hash, error)  { return common.Hash{}, nil }

type fakeCommitter struct {
	committed map[common.Address]database.AccountDiff
	err       error
}

func (c *fakeCommitter) Commit(diff map[common.Address]database.AccountDiff) error {
	if c.err != nil {
		return c.err
	}
	c.committed = diff
	return nil
}

// successRunner reports the whole frame succeeding and using all of
// gasLimit, with no gas left over.
type successRunner struct{}

func (successRunner) Run(ctx *evmcontext.Context, tx *types.Transaction, gasLimit uint64) (*handler.FrameResult, error) {
	return &handler.FrameResult{GasUsed: gasLimit, GasRemaining: 0}, nil
}

type erroringRunner struct{ err error }

func (r erroringRunner) Run(ctx *evmcontext.Context, tx *types.Transaction, gasLimit uint64) (*handler.FrameResult, error) {
	return nil, r.err
}

func cfgThroughEuclid() *params.ScrollChainConfig {
	zero := uint64(0)
	chainID := uint64(534352)
	return &params.ScrollChainConfig{
		ChainID:       &chainID,
		BernoulliTime: &zero,
		CurieTime:     &zero,
		DarwinTime:    &zero,
		EuclidTime:    &zero,
	}
}

func TestExecuteReportsGasUsedAndNonEmptyDiff(t *testing.T) {
	db := newFakeDB()
	caller := common.HexToAddress("0xaaaa")
	db.accounts[caller] = &database.Account{Balance: uint256.NewInt(1_000_000)}

	e := New(cfgThroughEuclid(), db, &fakeCommitter{}, successRunner{}, &vm.JumpTable{})

	tx := &types.Transaction{
		Caller: caller, Kind: types.Call, GasLimit: 21000,
		GasPrice: uint256.NewInt(1), Value: new(uint256.Int), RlpBytes: []byte{0x01},
	}
	block := evmcontext.BlockEnv{Timestamp: 1000, Number: 1, BaseFee: new(uint256.Int)}

	result, err := e.Execute(block, tx)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Tx.GasUsed != 21000 {
		t.Fatalf("gas used = %d, want 21000", result.Tx.GasUsed)
	}
	if len(result.Diff) == 0 {
		t.Fatalf("diff is empty, want at least caller+coinbase entries")
	}
}

func TestExecuteAndCommitPropagatesDiffToCommitter(t *testing.T) {
	db := newFakeDB()
	caller := common.HexToAddress("0xbbbb")
	db.accounts[caller] = &database.Account{Balance: uint256.NewInt(1_000_000)}

	committer := &fakeCommitter{}
	e := New(cfgThroughEuclid(), db, committer, successRunner{}, &vm.JumpTable{})

	tx := &types.Transaction{
		Caller: caller, Kind: types.Call, GasLimit: 21000,
		GasPrice: uint256.NewInt(1), Value: new(uint256.Int), RlpBytes: []byte{0x01},
	}
	block := evmcontext.BlockEnv{Timestamp: 1000, Number: 1, BaseFee: new(uint256.Int)}

	result, err := e.ExecuteAndCommit(block, tx)
	if err != nil {
		t.Fatalf("execute and commit: %v", err)
	}
	if committer.committed == nil {
		t.Fatalf("committer never received a diff")
	}
	if _, ok := committer.committed[caller]; !ok {
		t.Fatalf("committed diff missing caller entry")
	}
	_ = result
}

func TestExecuteAndCommitDoesNotCommitOnHandlerError(t *testing.T) {
	db := newFakeDB()
	committer := &fakeCommitter{}
	e := New(cfgThroughEuclid(), db, committer, erroringRunner{err: errors.New("boom")}, &vm.JumpTable{})

	caller := common.HexToAddress("0xcccc")
	db.accounts[caller] = &database.Account{Balance: uint256.NewInt(1_000_000)}
	tx := &types.Transaction{
		Caller: caller, Kind: types.Call, GasLimit: 21000,
		GasPrice: uint256.NewInt(1), Value: new(uint256.Int), RlpBytes: []byte{0x01},
	}
	block := evmcontext.BlockEnv{Timestamp: 1000, Number: 1, BaseFee: new(uint256.Int)}

	if _, err := e.ExecuteAndCommit(block, tx); err == nil {
		t.Fatalf("want error from runner to propagate")
	}
	if committer.committed != nil {
		t.Fatalf("committer.Commit called despite handler error")
	}
}

func TestInspectRestoresPriorInspector(t *testing.T) {
	db := newFakeDB()
	caller := common.HexToAddress("0xdddd")
	db.accounts[caller] = &database.Account{Balance: uint256.NewInt(1_000_000)}

	e := New(cfgThroughEuclid(), db, &fakeCommitter{}, successRunner{}, &vm.JumpTable{})
	sentinel := &Inspector{}
	e.Inspector = sentinel

	tx := &types.Transaction{
		Caller: caller, Kind: types.Call, GasLimit: 21000,
		GasPrice: uint256.NewInt(1), Value: new(uint256.Int), RlpBytes: []byte{0x01},
	}
	block := evmcontext.BlockEnv{Timestamp: 1000, Number: 1, BaseFee: new(uint256.Int)}

	called := false
	insp := &Inspector{OnLog: func(journal.Log) { called = true }}
	if _, err := e.Inspect(block, tx, insp); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	_ = called // the fake runner never emits a log; this just exercises the swap path

	if e.Inspector != sentinel {
		t.Fatalf("Inspect did not restore the prior inspector")
	}
}

func TestTransactSystemCallWithCallerBypassesValidation(t *testing.T) {
	db := newFakeDB()
	caller := common.HexToAddress("0xfffffffffffffffffffffffffffffffffffffffe")
	to := common.HexToAddress("0x5300000000000000000000000000000000000002")
	// Deliberately no funded account for caller: a system call must not
	// go through Validate/PreExecute's balance checks at all.

	e := New(cfgThroughEuclid(), db, &fakeCommitter{}, successRunner{}, &vm.JumpTable{})
	block := evmcontext.BlockEnv{Timestamp: 1000, Number: 1, BaseFee: new(uint256.Int)}

	frame, diff, err := e.TransactSystemCallWithCaller(block, caller, to, []byte{0x01, 0x02}, 30_000_000)
	if err != nil {
		t.Fatalf("system call: %v", err)
	}
	if frame.GasUsed != 30_000_000 {
		t.Fatalf("gas used = %d, want 30_000_000 (unmetered synthetic call)", frame.GasUsed)
	}
	if diff == nil {
		t.Fatalf("want a finalized diff even for a system call")
	}
}
