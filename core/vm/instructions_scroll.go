package vm

import (
	"encoding/binary"

	"github.com/scroll-tech/scroll-evm-overlay/params"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// opDifficulty always pushes the literal 0: Scroll has no PoW randomness
// source (§4.2 DIFFICULTY).
func opDifficulty(pc *uint64, host Host, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int))
	return nil, nil
}

// opSelfdestructDisabled always halts: Scroll forbids the instruction
// outright (§4.2 SELFDESTRUCT).
func opSelfdestructDisabled(pc *uint64, host Host, scope *ScopeContext) ([]byte, error) {
	return nil, ErrNotActivated
}

func blockhashInRange(requested, current uint64) bool {
	if requested >= current {
		return false
	}
	return current-requested <= 256
}

// opBlockhashHash is the pre-Feynman BLOCKHASH: a synthetic hash derived
// from chain id and block number rather than a real ancestor hash, since
// pre-Feynman Scroll does not maintain a queryable history of L2 block
// hashes (§4.2 BLOCKHASH, pre-Feynman row).
func opBlockhashHash(pc *uint64, host Host, scope *ScopeContext) ([]byte, error) {
	requested, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	current := host.BlockNumber()
	num := requested.Uint64()
	if !requested.IsUint64() || !blockhashInRange(num, current) {
		scope.Stack.push(new(uint256.Int))
		return nil, nil
	}

	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], host.ChainID())
	binary.BigEndian.PutUint64(buf[8:16], num)
	hash := crypto.Keccak256(buf[:])

	var out uint256.Int
	out.SetBytes(hash)
	scope.Stack.push(&out)
	return nil, nil
}

// opBlockhashHistoryContract is the Feynman-and-later BLOCKHASH: it
// queries the EIP-2935 history contract instead of synthesizing a hash
// (§4.2 BLOCKHASH, Feynman row).
func opBlockhashHistoryContract(pc *uint64, host Host, scope *ScopeContext) ([]byte, error) {
	requested, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	current := host.BlockNumber()
	num := requested.Uint64()
	if !requested.IsUint64() || !blockhashInRange(num, current) {
		scope.Stack.push(new(uint256.Int))
		return nil, nil
	}

	slot := common.Hash(uint256.NewInt(num % params.HistoryServeWindow).Bytes32())
	value, exists, err := host.HistoryStorageSload(slot)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrFatalExternalError
	}
	scope.Stack.push(value)
	return nil, nil
}

// opBasefee pushes the current block's base fee (§4.2 BASEFEE, CURIE+).
func opBasefee(pc *uint64, host Host, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(host.Basefee())
	return nil, nil
}

// opTload reads transient storage keyed by (address, slot) (§4.2 TLOAD).
func opTload(pc *uint64, host Host, scope *ScopeContext) ([]byte, error) {
	loc, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	key := common.Hash(loc.Bytes32())
	value := host.TLoad(scope.Address, key)
	scope.Stack.push(value)
	return nil, nil
}

// opTstore writes transient storage; it rejects a static (read-only)
// calling context (§4.2 TSTORE).
func opTstore(pc *uint64, host Host, scope *ScopeContext) ([]byte, error) {
	if scope.ReadOnly {
		return nil, ErrWriteProtection
	}
	loc, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	val, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	key := common.Hash(loc.Bytes32())
	host.TStore(scope.Address, key, &val)
	return nil, nil
}

// gasMcopy charges 3 gas per 32-byte word copied ("very_low_copy(len)"),
// on top of whatever memory-expansion cost the base engine assesses for
// resizing to max(dst,src)+len (§4.2 MCOPY).
func gasMcopy(host Host, scope *ScopeContext, _ uint64) (uint64, error) {
	size, err := scope.Stack.peek3rd()
	if err != nil {
		return 0, err
	}
	words := (size.Uint64() + 31) / 32
	return 3 * words, nil
}

// opMcopy copies size bytes from src to dst within the same memory
// buffer, growing it to max(dst,src)+size first (§4.2 MCOPY, CURIE+).
func opMcopy(pc *uint64, host Host, scope *ScopeContext) ([]byte, error) {
	dst, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	src, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	size, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	if size.IsZero() {
		return nil, nil
	}
	dstU, srcU, sizeU := dst.Uint64(), src.Uint64(), size.Uint64()
	top := dstU
	if srcU > top {
		top = srcU
	}
	scope.Memory.Resize(top + sizeU)
	scope.Memory.Copy(dstU, srcU, sizeU)
	return nil, nil
}

// opClz pops one value and pushes its count of leading zero bits across
// the full 256-bit width (EIP-7939, §4.2 CLZ, GALILEO+).
func opClz(pc *uint64, host Host, scope *ScopeContext) ([]byte, error) {
	v, err := scope.Stack.pop()
	if err != nil {
		return nil, err
	}
	leading := 256 - v.BitLen()
	scope.Stack.push(uint256.NewInt(uint64(leading)))
	return nil, nil
}

// gasExtcodesizeByHash charges the warm access cost
// (WarmStorageReadCostEIP2929) for the pre-Feynman EXTCODESIZE side
// channel (§4.2 EXTCODESIZE); it does not distinguish cold accounts and
// never charges a cold access cost.
func gasExtcodesizeByHash(host Host, scope *ScopeContext, _ uint64) (uint64, error) {
	return params.WarmStorageReadCostEIP2929, nil
}

// opExtcodesizeByHash serves EXTCODESIZE from the code_size_by_hash side
// channel when available, falling through to the base table's behavior
// otherwise (§4.2 EXTCODESIZE, early forks).
func opExtcodesizeByHash(pc *uint64, host Host, scope *ScopeContext) ([]byte, error) {
	// Peek rather than pop, so the operand is still on the stack when the
	// base table's entry runs after a fall-through.
	addrWord, err := scope.Stack.peek()
	if err != nil {
		return nil, err
	}
	addr := common.Address(addrWord.Bytes20())
	if size, ok := host.CodeSizeByHash(addr); ok {
		addrWord.SetUint64(size)
		return nil, nil
	}
	return nil, errFallThroughToBaseTable
}

// errFallThroughToBaseTable signals the base engine to re-dispatch
// EXTCODESIZE to its own unmodified implementation; it is never surfaced
// to a caller as a transaction failure.
var errFallThroughToBaseTable = errFallThrough{}

type errFallThrough struct{}

func (errFallThrough) Error() string { return "vm: fall through to base jump table entry" }
