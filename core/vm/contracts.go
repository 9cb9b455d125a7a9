package vm

import (
	"errors"
	"math/big"

	"github.com/scroll-tech/scroll-evm-overlay/crypto/secp256r1"
	"github.com/scroll-tech/scroll-evm-overlay/params"

	"github.com/ethereum/go-ethereum/common"
	gethvm "github.com/ethereum/go-ethereum/core/vm"
)

// PrecompiledContract is the standard RequiredGas/Run contract shape; it
// is a type alias for go-ethereum's interface so the real ECDSA/hash/
// BN128/modexp implementations gethvm already ships (out of scope per
// §1) can be reused directly (§4.3).
type PrecompiledContract = gethvm.PrecompiledContract

// PrecompiledContracts is an address-indexed precompile set (§4.3).
type PrecompiledContracts map[common.Address]PrecompiledContract

// ErrPrecompileNotImplemented is returned by the SHA256/RIPEMD160/BLAKE2
// placeholders the SHANGHAI row installs (§4.3).
var ErrPrecompileNotImplemented = errors.New("vm: precompile not implemented")

// ErrModexpHeaderOverflow is MODEXP's pre-Galileo typed "overflow" error
// for base/exponent/modulus length headers wider than 32 bytes (§4.3).
var ErrModexpHeaderOverflow = errors.New("vm: modexp length header exceeds 32 bytes")

// ErrBn128PairTooLarge is BN128_PAIR's pre-Feynman input-size rejection
// (§4.3).
var ErrBn128PairTooLarge = errors.New("vm: bn128 pairing input exceeds 4 pairs")

var (
	ecrecoverAddr  = common.BytesToAddress([]byte{1})
	sha256Addr     = common.BytesToAddress([]byte{2})
	ripemd160Addr  = common.BytesToAddress([]byte{3})
	identityAddr   = common.BytesToAddress([]byte{4})
	modexpAddr     = common.BytesToAddress([]byte{5})
	bn128AddAddr   = common.BytesToAddress([]byte{6})
	bn128MulAddr   = common.BytesToAddress([]byte{7})
	bn128PairAddr  = common.BytesToAddress([]byte{8})
	blake2Addr     = common.BytesToAddress([]byte{9})
	p256VerifyAddr = common.BytesToAddress([]byte{0x01, 0x00}) // RIP-7212's 0x100
)

// notImplementedPrecompile backs the SHA256/RIPEMD160/BLAKE2 placeholders
// installed before their real implementation lands (§4.3 SHANGHAI row).
type notImplementedPrecompile struct{}

func (notImplementedPrecompile) RequiredGas([]byte) uint64 { return 0 }
func (notImplementedPrecompile) Run([]byte) ([]byte, error) {
	return nil, ErrPrecompileNotImplemented
}

// modexpCapped wraps the real MODEXP contract with the pre-Galileo
// 32-byte length-header cap (§4.3).
type modexpCapped struct{ inner PrecompiledContract }

func (m modexpCapped) RequiredGas(input []byte) uint64 { return m.inner.RequiredGas(input) }

func (m modexpCapped) Run(input []byte) ([]byte, error) {
	var headers [3][32]byte
	for i := range headers {
		start := i * 32
		if start < len(input) {
			copy(headers[i][:], input[start:min(start+32, len(input))])
		}
	}
	for _, h := range headers {
		// h is a 32-byte big-endian length; it exceeds 32 iff any of its
		// top 31 bytes are nonzero, or its low byte alone is > 32.
		for _, b := range h[:31] {
			if b != 0 {
				return nil, ErrModexpHeaderOverflow
			}
		}
		if h[31] > 32 {
			return nil, ErrModexpHeaderOverflow
		}
	}
	return m.inner.Run(input)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// bn128PairCapped wraps the real BN128_PAIR contract with the
// pre-Feynman 4-pair (4×192 byte) input cap (§4.3).
type bn128PairCapped struct{ inner PrecompiledContract }

func (b bn128PairCapped) RequiredGas(input []byte) uint64 { return b.inner.RequiredGas(input) }

func (b bn128PairCapped) Run(input []byte) ([]byte, error) {
	if len(input) > params.Bn128PairMaxPairsPreFeynman*192 {
		return nil, ErrBn128PairTooLarge
	}
	return b.inner.Run(input)
}

// p256VerifyPrecompile adapts crypto/secp256r1's raw Verify function to
// the RequiredGas/Run precompile shape (§4.3 EUCLID row), following the
// input layout RIP-7212 defines: 32-byte hash ‖ r ‖ s ‖ x ‖ y.
type p256VerifyPrecompile struct{}

const p256VerifyGas = 3450

func (p256VerifyPrecompile) RequiredGas([]byte) uint64 { return p256VerifyGas }

func (p256VerifyPrecompile) Run(input []byte) ([]byte, error) {
	if len(input) != 160 {
		return nil, nil // malformed input: no revert, empty output, per RIP-7212
	}
	hash := input[0:32]
	r := new(big.Int).SetBytes(input[32:64])
	s := new(big.Int).SetBytes(input[64:96])
	x := new(big.Int).SetBytes(input[96:128])
	y := new(big.Int).SetBytes(input[128:160])

	if secp256r1.Verify(hash, r, s, x, y) {
		out := make([]byte, 32)
		out[31] = 1
		return out, nil
	}
	return nil, nil
}

// baseByAddress returns the real gethvm implementation for addr from its
// most complete precompile set, so this package never reimplements
// ECDSA/hash/BN128/modexp math itself (§1 out of scope).
func baseByAddress(addr common.Address) PrecompiledContract {
	return gethvm.PrecompiledContractsCancun[addr]
}

// PrecompilesFor returns the spec-indexed precompile set for spec (§4.3).
// Sets are monotone: each row only adds or replaces entries relative to
// the previous one. A new map is built on every call; nothing is cached
// or shared between calls.
func PrecompilesFor(spec params.ScrollSpecId) PrecompiledContracts {
	pc := PrecompiledContracts{
		ecrecoverAddr: baseByAddress(ecrecoverAddr),
		sha256Addr:    notImplementedPrecompile{},
		ripemd160Addr: notImplementedPrecompile{},
		identityAddr:  baseByAddress(identityAddr),
		modexpAddr:    modexpCapped{inner: baseByAddress(modexpAddr)},
		bn128AddAddr:  baseByAddress(bn128AddAddr),
		bn128MulAddr:  baseByAddress(bn128MulAddr),
		bn128PairAddr: bn128PairCapped{inner: baseByAddress(bn128PairAddr)},
		blake2Addr:    notImplementedPrecompile{},
	}

	if spec.IsEnabledIn(params.BERNOULLI) {
		pc[sha256Addr] = baseByAddress(sha256Addr)
	}

	if spec.IsEnabledIn(params.EUCLID) {
		pc[p256VerifyAddr] = p256VerifyPrecompile{}
	}

	if spec.IsEnabledIn(params.FEYNMAN) {
		pc[bn128PairAddr] = baseByAddress(bn128PairAddr)
	}

	if spec.IsEnabledIn(params.GALILEO) {
		pc[modexpAddr] = baseByAddress(modexpAddr)
	}

	return pc
}
