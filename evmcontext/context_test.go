package evmcontext

import (
	"testing"

	"github.com/scroll-tech/scroll-evm-overlay/core/types"
	"github.com/scroll-tech/scroll-evm-overlay/database"
	"github.com/scroll-tech/scroll-evm-overlay/params"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type fakeDB struct {
	accounts map[common.Address]*database.Account
	storage  map[common.Address]map[common.Hash]*uint256.Int
}

func newFakeDB() *fakeDB {
	return &fakeDB{accounts: make(map[common.Address]*database.Account), storage: make(map[common.Address]map[common.Hash]*uint256.Int)}
}

func (f *fakeDB) Basic(addr common.Address) (*database.Account, error) { return f.accounts[addr], nil }
func (f *fakeDB) Storage(addr common.Address, key common.Hash) (*uint256.Int, error) {
	if m, ok := f.storage[addr]; ok {
		if v, ok := m[key]; ok {
			return v, nil
		}
	}
	return new(uint256.Int), nil
}
func (f *fakeDB) CodeByHash(common.Hash) ([]byte, error) { return nil, nil }
func (f *fakeDB) BlockHash(uint64) (common.Hash, error)  { return common.Hash{}, nil }

func TestSpecDerivedFromTimestamp(t *testing.T) {
	bernoulli := uint64(100)
	curie := uint64(200)
	cfg := &params.ScrollChainConfig{BernoulliTime: &bernoulli, CurieTime: &curie}
	ctx := New(newFakeDB(), cfg, BlockEnv{Timestamp: 150}, &types.Transaction{})

	if got := ctx.Spec(); got != params.BERNOULLI {
		t.Fatalf("spec at t=150 = %v, want BERNOULLI", got)
	}
	ctx.SetBlock(BlockEnv{Timestamp: 250})
	if got := ctx.Spec(); got != params.CURIE {
		t.Fatalf("spec at t=250 = %v, want CURIE", got)
	}
}

func TestHistoryStorageSloadAbsentAccount(t *testing.T) {
	cfg := &params.ScrollChainConfig{}
	ctx := New(newFakeDB(), cfg, BlockEnv{}, &types.Transaction{})
	_, exists, err := ctx.HistoryStorageSload(common.Hash{1})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if exists {
		t.Fatalf("expected the history contract account to be reported absent")
	}
}

func TestHistoryStorageSloadPresentAccount(t *testing.T) {
	db := newFakeDB()
	db.accounts[params.EIP2935HistoryStorageAddress] = &database.Account{CodeHash: common.Hash{9}}
	db.storage[params.EIP2935HistoryStorageAddress] = map[common.Hash]*uint256.Int{common.Hash{1}: uint256.NewInt(77)}
	cfg := &params.ScrollChainConfig{}
	ctx := New(db, cfg, BlockEnv{}, &types.Transaction{})

	value, exists, err := ctx.HistoryStorageSload(common.Hash{1})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if !exists {
		t.Fatalf("expected the history contract account to be reported present")
	}
	if value.Uint64() != 77 {
		t.Fatalf("value = %d, want 77", value.Uint64())
	}
}
