package vm

import (
	"testing"

	"github.com/scroll-tech/scroll-evm-overlay/params"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// fakeHost is a minimal Host double; it only answers what the tests below
// exercise.
type fakeHost struct {
	spec        params.ScrollSpecId
	chainID     uint64
	blockNumber uint64
	basefee     *uint256.Int

	transient map[common.Hash]*uint256.Int

	historySlots map[common.Hash]*uint256.Int
	historyOk    bool

	codeSizes map[common.Address]uint64
}

func newFakeHost(spec params.ScrollSpecId) *fakeHost {
	return &fakeHost{
		spec:         spec,
		chainID:      534352,
		blockNumber:  1000,
		basefee:      uint256.NewInt(7),
		transient:    make(map[common.Hash]*uint256.Int),
		historySlots: make(map[common.Hash]*uint256.Int),
		historyOk:    true,
		codeSizes:    make(map[common.Address]uint64),
	}
}

func (h *fakeHost) Spec() params.ScrollSpecId { return h.spec }
func (h *fakeHost) ChainID() uint64           { return h.chainID }
func (h *fakeHost) BlockNumber() uint64       { return h.blockNumber }
func (h *fakeHost) Basefee() *uint256.Int     { return h.basefee }

func (h *fakeHost) TLoad(addr common.Address, key common.Hash) *uint256.Int {
	if v, ok := h.transient[key]; ok {
		return v
	}
	return new(uint256.Int)
}

func (h *fakeHost) TStore(addr common.Address, key common.Hash, value *uint256.Int) {
	h.transient[key] = value
}

func (h *fakeHost) HistoryStorageSload(key common.Hash) (*uint256.Int, bool, error) {
	if !h.historyOk {
		return nil, false, nil
	}
	if v, ok := h.historySlots[key]; ok {
		return v, true, nil
	}
	return new(uint256.Int), true, nil
}

func (h *fakeHost) CodeSizeByHash(addr common.Address) (uint64, bool) {
	v, ok := h.codeSizes[addr]
	return v, ok
}

func newScope() *ScopeContext {
	return &ScopeContext{Stack: NewStack(), Memory: NewMemory()}
}

// TestSelfdestructAlwaysHalts covers invariant #5: SELFDESTRUCT never
// executes, at any hardfork.
func TestSelfdestructAlwaysHalts(t *testing.T) {
	for _, spec := range []params.ScrollSpecId{params.SHANGHAI, params.GALILEO} {
		jt := NewScrollJumpTable(baseTableStub(), spec)
		host := newFakeHost(spec)
		scope := newScope()
		scope.Stack.push(uint256.NewInt(0))
		_, err := jt[SELFDESTRUCT].execute(nil, host, scope)
		if err != ErrNotActivated {
			t.Fatalf("spec %v: err = %v, want ErrNotActivated", spec, err)
		}
	}
}

// TestDifficultyAlwaysZero covers invariant #5's other half.
func TestDifficultyAlwaysZero(t *testing.T) {
	jt := NewScrollJumpTable(baseTableStub(), params.SHANGHAI)
	host := newFakeHost(params.SHANGHAI)
	scope := newScope()
	if _, err := jt[DIFFICULTY].execute(nil, host, scope); err != nil {
		t.Fatalf("execute: %v", err)
	}
	v, err := scope.Stack.pop()
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if !v.IsZero() {
		t.Fatalf("difficulty = %s, want 0", v.Dec())
	}
}

// TestBasefeeGatedByCurie covers §4.2's CURIE gate.
func TestBasefeeGatedByCurie(t *testing.T) {
	preCurie := NewScrollJumpTable(baseTableStub(), params.BERNOULLI)
	host := newFakeHost(params.BERNOULLI)
	if _, err := preCurie[BASEFEE].execute(nil, host, newScope()); err != ErrNotActivated {
		t.Fatalf("pre-curie err = %v, want ErrNotActivated", err)
	}

	postCurie := NewScrollJumpTable(baseTableStub(), params.CURIE)
	host2 := newFakeHost(params.CURIE)
	scope := newScope()
	if _, err := postCurie[BASEFEE].execute(nil, host2, scope); err != nil {
		t.Fatalf("execute: %v", err)
	}
	v, _ := scope.Stack.pop()
	if v.Uint64() != 7 {
		t.Fatalf("basefee = %d, want 7", v.Uint64())
	}
}

// TestTloadTstoreRoundTrip exercises transient storage read/write and the
// static-context rejection on TSTORE.
func TestTloadTstoreRoundTrip(t *testing.T) {
	jt := NewScrollJumpTable(baseTableStub(), params.CURIE)
	host := newFakeHost(params.CURIE)
	scope := newScope()

	scope.Stack.push(uint256.NewInt(99)) // value
	scope.Stack.push(uint256.NewInt(1))  // key
	if _, err := jt[TSTORE].execute(nil, host, scope); err != nil {
		t.Fatalf("tstore: %v", err)
	}

	scope.Stack.push(uint256.NewInt(1)) // key
	if _, err := jt[TLOAD].execute(nil, host, scope); err != nil {
		t.Fatalf("tload: %v", err)
	}
	v, _ := scope.Stack.pop()
	if v.Uint64() != 99 {
		t.Fatalf("tload = %d, want 99", v.Uint64())
	}

	scope.ReadOnly = true
	scope.Stack.push(uint256.NewInt(1))
	scope.Stack.push(uint256.NewInt(1))
	if _, err := jt[TSTORE].execute(nil, host, scope); err != ErrWriteProtection {
		t.Fatalf("static tstore err = %v, want ErrWriteProtection", err)
	}
}

// TestMcopy exercises the in-place memory copy (§4.2 MCOPY).
func TestMcopy(t *testing.T) {
	jt := NewScrollJumpTable(baseTableStub(), params.CURIE)
	host := newFakeHost(params.CURIE)
	scope := newScope()
	scope.Memory.Set(0, 4, []byte{1, 2, 3, 4})

	scope.Stack.push(uint256.NewInt(4)) // size
	scope.Stack.push(uint256.NewInt(0)) // src
	scope.Stack.push(uint256.NewInt(8)) // dst
	if _, err := jt[MCOPY].execute(nil, host, scope); err != nil {
		t.Fatalf("mcopy: %v", err)
	}
	got := scope.Memory.GetCopy(8, 4)
	want := []byte{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mcopy result = %v, want %v", got, want)
		}
	}
}

// TestClzGatedByGalileo exercises EIP-7939's CLZ and its GALILEO gate.
func TestClzGatedByGalileo(t *testing.T) {
	preGalileo := NewScrollJumpTable(baseTableStub(), params.FEYNMAN)
	scope := newScope()
	scope.Stack.push(uint256.NewInt(1))
	if _, err := preGalileo[CLZ].execute(nil, newFakeHost(params.FEYNMAN), scope); err != ErrNotActivated {
		t.Fatalf("pre-galileo err = %v, want ErrNotActivated", err)
	}

	postGalileo := NewScrollJumpTable(baseTableStub(), params.GALILEO)
	scope2 := newScope()
	scope2.Stack.push(uint256.NewInt(1))
	if _, err := postGalileo[CLZ].execute(nil, newFakeHost(params.GALILEO), scope2); err != nil {
		t.Fatalf("execute: %v", err)
	}
	v, _ := scope2.Stack.pop()
	if v.Uint64() != 255 {
		t.Fatalf("clz(1) = %d, want 255", v.Uint64())
	}
}

// TestBlockhashOutOfRangePushesZero covers the pre-Feynman BLOCKHASH
// row's guard for a requested block that is not older than the current
// one.
func TestBlockhashOutOfRangePushesZero(t *testing.T) {
	jt := NewScrollJumpTable(baseTableStub(), params.BERNOULLI)
	host := newFakeHost(params.BERNOULLI)
	scope := newScope()
	scope.Stack.push(uint256.NewInt(1000)) // == current, rejected
	if _, err := jt[BLOCKHASH].execute(nil, host, scope); err != nil {
		t.Fatalf("execute: %v", err)
	}
	v, _ := scope.Stack.pop()
	if !v.IsZero() {
		t.Fatalf("blockhash(current) = %s, want 0", v.Dec())
	}
}

// TestBlockhashFeynmanFatalWhenHistoryMissing exercises scenario E6's
// shape: a post-Feynman BLOCKHASH whose history account is absent halts
// with FatalExternalError.
func TestBlockhashFeynmanFatalWhenHistoryMissing(t *testing.T) {
	jt := NewScrollJumpTable(baseTableStub(), params.FEYNMAN)
	host := newFakeHost(params.FEYNMAN)
	host.historyOk = false
	scope := newScope()
	scope.Stack.push(uint256.NewInt(999))
	if _, err := jt[BLOCKHASH].execute(nil, host, scope); err != ErrFatalExternalError {
		t.Fatalf("err = %v, want ErrFatalExternalError", err)
	}
}

// TestExtcodesizeSideChannelPreFeynman covers §4.2's EXTCODESIZE row.
func TestExtcodesizeSideChannelPreFeynman(t *testing.T) {
	jt := NewScrollJumpTable(baseTableStub(), params.DARWIN)
	host := newFakeHost(params.DARWIN)
	addr := common.HexToAddress("0x1234")
	host.codeSizes[addr] = 42
	scope := newScope()
	var word uint256.Int
	word.SetBytes(addr.Bytes())
	scope.Stack.push(&word)

	if _, err := jt[EXTCODESIZE].execute(nil, host, scope); err != nil {
		t.Fatalf("execute: %v", err)
	}
	v, _ := scope.Stack.pop()
	if v.Uint64() != 42 {
		t.Fatalf("extcodesize = %d, want 42", v.Uint64())
	}
}

// baseTableStub stands in for the (out of scope) mainnet jump table this
// package clones from; every entry halts so a test only observes the
// entries NewScrollJumpTable actually overrides.
func baseTableStub() *JumpTable {
	var jt JumpTable
	stub := &operation{execute: func(pc *uint64, host Host, scope *ScopeContext) ([]byte, error) {
		return nil, ErrNotActivated
	}}
	for i := range jt {
		jt[i] = stub
	}
	return &jt
}
