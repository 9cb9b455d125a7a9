// Package database defines the external state-database and commit
// collaborators (§6) that the rest of this module treats as synchronous,
// deterministic dependencies: account/storage reads and a state-diff
// commit sink. Implementations (a trie-backed state DB, an in-memory test
// double, ...) live outside this module's scope.
package database

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Account is the minimal account record the journal (package journal) and
// the L1 fee oracle (package l1cost) need from the database.
type Account struct {
	Balance  *uint256.Int
	Nonce    uint64
	CodeHash common.Hash
	Code     []byte
}

// Database is the read-only state collaborator described in §6: account
// and storage reads, code-by-hash, and historical block hashes.
type Database interface {
	Basic(addr common.Address) (*Account, error)
	Storage(addr common.Address, key common.Hash) (*uint256.Int, error)
	CodeByHash(hash common.Hash) ([]byte, error)
	BlockHash(number uint64) (common.Hash, error)
}

// AccountStatus classifies how an account changed over the lifetime of a
// finalized journal (§3 C6 Lifecycle).
type AccountStatus uint8

const (
	StatusUnchanged AccountStatus = iota
	StatusModified
	StatusNew
	StatusDestroyed
)

// AccountDiff is one entry of the state diff a Committer accepts (§6).
type AccountDiff struct {
	Info    *Account
	Storage map[common.Hash]common.Hash
	Status  AccountStatus
}

// Committer accepts the state diff produced by Journal.Finalize (§6).
type Committer interface {
	Commit(diff map[common.Address]AccountDiff) error
}
