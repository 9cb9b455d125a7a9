package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// Authorization is one EIP-7702 authorization-tuple entry from a tx's
// authorization list, processed in §4.4 PreExecute. Address is the
// delegate the authority's code should point to; Address == common.Address{}
// clears the authority's code instead of delegating.
type Authorization struct {
	ChainID uint64
	Address common.Address
	Nonce   uint64

	// Signature values recovered against the authorization-tuple hash.
	V uint8
	R [32]byte
	S [32]byte
}

// eip7702Magic is the domain-separation prefix EIP-7702 prepends before
// RLP-encoding an authorization tuple for signing.
const eip7702Magic = 0x05

// SigningHash returns the digest an authorization's (v, r, s) signs:
// keccak256(MAGIC || rlp([chain_id, address, nonce])).
func (a *Authorization) SigningHash() (common.Hash, error) {
	enc, err := rlp.EncodeToBytes([]interface{}{a.ChainID, a.Address, a.Nonce})
	if err != nil {
		return common.Hash{}, err
	}
	buf := make([]byte, 0, len(enc)+1)
	buf = append(buf, eip7702Magic)
	buf = append(buf, enc...)
	return crypto.Keccak256Hash(buf), nil
}

// Authority recovers the account that signed this authorization tuple
// (§4.4 PreExecute "recover authority").
func (a *Authorization) Authority() (common.Address, error) {
	hash, err := a.SigningHash()
	if err != nil {
		return common.Address{}, err
	}
	sig := make([]byte, 65)
	copy(sig[0:32], a.R[:])
	copy(sig[32:64], a.S[:])
	sig[64] = a.V

	pub, err := crypto.SigToPub(hash[:], sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// NewEip7702Bytecode builds the 23-byte delegation designator
// 0xef0100 ‖ address (§3 GLOSSARY "Delegation designator"), the code an
// authority's account is set to when an authorization tuple is applied.
func NewEip7702Bytecode(addr common.Address) []byte {
	code := make([]byte, 23)
	code[0], code[1], code[2] = 0xef, 0x01, 0x00
	copy(code[3:], addr.Bytes())
	return code
}

