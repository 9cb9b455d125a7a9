// Package journal implements the stacked, checkpointable account/storage
// log described in spec.md §3/§4 C6: every mutation is recorded as an
// undo entry so that Revert restores prior state exactly, including the
// warm/cold status of accessed addresses and slots.
//
// The entry-based undo log mirrors go-ethereum's core/state/journal.go
// shape (a journalEntry interface with a revert method, appended to a
// flat slice, with checkpoints recording slice lengths), generalized here
// to also cover transient storage and EIP-7702 delegation.
package journal

import (
	"github.com/scroll-tech/scroll-evm-overlay/database"
	"github.com/scroll-tech/scroll-evm-overlay/params"

	"github.com/ethereum/go-ethereum/common"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/holiman/uint256"
)

// Account is the journal's in-memory view of one account (§3 C6).
type Account struct {
	Balance  *uint256.Int
	Nonce    uint64
	CodeHash common.Hash
	Code     []byte
	Storage  map[common.Hash]*uint256.Int
	Touched  bool
	Status   database.AccountStatus
}

func newAccountFrom(dbAcc *database.Account) *Account {
	if dbAcc == nil {
		return &Account{Balance: new(uint256.Int), Storage: make(map[common.Hash]*uint256.Int)}
	}
	return &Account{
		Balance:  new(uint256.Int).Set(dbAcc.Balance),
		Nonce:    dbAcc.Nonce,
		CodeHash: dbAcc.CodeHash,
		Code:     dbAcc.Code,
		Storage:  make(map[common.Hash]*uint256.Int),
	}
}

type slotKey struct {
	addr common.Address
	key  common.Hash
}

// journalEntry is one undo record; Revert restores the field it recorded.
type journalEntry interface {
	revert(j *Journal)
}

// Journal is the checkpointable account/storage log (§3/§4 C6). It is
// created empty at tx start and Finalize'd into a state diff + logs at
// tx end (§3 Lifecycle).
type Journal struct {
	db       database.Database
	accounts map[common.Address]*Account

	transient map[common.Address]map[common.Hash]*uint256.Int

	warmAddresses mapset.Set[common.Address]
	warmSlots     mapset.Set[slotKey]

	refund uint64
	logs   []Log

	entries     []journalEntry
	checkpoints []int // lengths of entries at each Checkpoint
}

// Log is a minimal EVM log record; the interpreter collaborator is
// responsible for topic/data encoding, this package only records it.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// New creates an empty journal over db (§3 Lifecycle).
func New(db database.Database) *Journal {
	return &Journal{
		db:            db,
		accounts:      make(map[common.Address]*Account),
		transient:     make(map[common.Address]map[common.Hash]*uint256.Int),
		warmAddresses: mapset.NewThreadUnsafeSet[common.Address](),
		warmSlots:     mapset.NewThreadUnsafeSet[slotKey](),
	}
}

func (j *Journal) account(addr common.Address) (*Account, error) {
	if acc, ok := j.accounts[addr]; ok {
		return acc, nil
	}
	dbAcc, err := j.db.Basic(addr)
	if err != nil {
		return nil, err
	}
	acc := newAccountFrom(dbAcc)
	j.accounts[addr] = acc
	return acc, nil
}

// warmAccountEntry/coldAccountEntry undo the warm-set insertion performed
// by LoadAccount; entries below follow the same one-field-per-entry shape.
type warmAccountEntry struct{ addr common.Address }

func (e warmAccountEntry) revert(j *Journal) { j.warmAddresses.Remove(e.addr) }

type warmSlotEntry struct{ key slotKey }

func (e warmSlotEntry) revert(j *Journal) { j.warmSlots.Remove(e.key) }

type balanceEntry struct {
	addr common.Address
	prev *uint256.Int
}

func (e balanceEntry) revert(j *Journal) { j.accounts[e.addr].Balance = e.prev }

type nonceEntry struct {
	addr common.Address
	prev uint64
}

func (e nonceEntry) revert(j *Journal) { j.accounts[e.addr].Nonce = e.prev }

type storageEntry struct {
	addr common.Address
	key  common.Hash
	prev *uint256.Int
	had  bool
}

func (e storageEntry) revert(j *Journal) {
	if e.had {
		j.accounts[e.addr].Storage[e.key] = e.prev
	} else {
		delete(j.accounts[e.addr].Storage, e.key)
	}
}

type transientEntry struct {
	addr common.Address
	key  common.Hash
	prev *uint256.Int
	had  bool
}

func (e transientEntry) revert(j *Journal) {
	if e.had {
		j.transient[e.addr][e.key] = e.prev
	} else {
		delete(j.transient[e.addr], e.key)
	}
}

type touchEntry struct {
	addr common.Address
	prev bool
}

func (e touchEntry) revert(j *Journal) { j.accounts[e.addr].Touched = e.prev }

type codeEntry struct {
	addr     common.Address
	prevHash common.Hash
	prevCode []byte
}

func (e codeEntry) revert(j *Journal) {
	acc := j.accounts[e.addr]
	acc.CodeHash = e.prevHash
	acc.Code = e.prevCode
}

type selfDestructEntry struct {
	addr     common.Address
	prevStat database.AccountStatus
}

func (e selfDestructEntry) revert(j *Journal) { j.accounts[e.addr].Status = e.prevStat }

type refundEntry struct{ prev uint64 }

func (e refundEntry) revert(j *Journal) { j.refund = e.prev }

func (j *Journal) push(e journalEntry) { j.entries = append(j.entries, e) }

// LoadAccount loads addr, warming it if cold, and returns whether it was
// already warm (§3 C6 load_account).
func (j *Journal) LoadAccount(addr common.Address) (acc *Account, wasWarm bool, err error) {
	acc, err = j.account(addr)
	if err != nil {
		return nil, false, err
	}
	if j.warmAddresses.Contains(addr) {
		return acc, true, nil
	}
	j.warmAddresses.Add(addr)
	j.push(warmAccountEntry{addr: addr})
	return acc, false, nil
}

// LoadAccountCode loads addr's code, warming the account as LoadAccount
// does (§3 C6 load_account_code).
func (j *Journal) LoadAccountCode(addr common.Address) ([]byte, bool, error) {
	acc, wasWarm, err := j.LoadAccount(addr)
	if err != nil {
		return nil, false, err
	}
	if acc.Code == nil && acc.CodeHash != (common.Hash{}) {
		code, err := j.db.CodeByHash(acc.CodeHash)
		if err != nil {
			return nil, false, err
		}
		acc.Code = code
	}
	return acc.Code, wasWarm, nil
}

// delegationPrefix is the first 3 bytes of an EIP-7702 delegation
// designator: 0xef0100 ‖ address (§3 Delegation, §9 GLOSSARY).
var delegationPrefix = [3]byte{0xef, 0x01, 0x00}

// ParseDelegation returns the delegate address and true if code is a valid
// 23-byte EIP-7702 delegation designator.
func ParseDelegation(code []byte) (common.Address, bool) {
	if len(code) != 23 {
		return common.Address{}, false
	}
	if code[0] != delegationPrefix[0] || code[1] != delegationPrefix[1] || code[2] != delegationPrefix[2] {
		return common.Address{}, false
	}
	var addr common.Address
	copy(addr[:], code[3:])
	return addr, true
}

// LoadAccountDelegated loads addr as LoadAccountCode does, and if spec is
// at least EUCLID and the account's code is an EIP-7702 delegation
// designator, also loads the delegate account and reports its own
// cold/warm status alongside the authority's (§3 Delegation). The
// delegation lookup consumes no gas of its own; the caller meters gas at
// the opcode layer (§5 "Journal delegation").
func (j *Journal) LoadAccountDelegated(addr common.Address, spec params.ScrollSpecId) (authority *Account, authorityWasWarm bool, delegate *Account, delegateWasWarm bool, err error) {
	code, authorityWasWarm, err := j.LoadAccountCode(addr)
	if err != nil {
		return nil, false, nil, false, err
	}
	authority = j.accounts[addr]
	if !spec.IsEnabledIn(params.EUCLID) {
		return authority, authorityWasWarm, nil, false, nil
	}
	delegateAddr, ok := ParseDelegation(code)
	if !ok {
		return authority, authorityWasWarm, nil, false, nil
	}
	delegate, delegateWasWarm, err = j.LoadAccount(delegateAddr)
	if err != nil {
		return nil, false, nil, false, err
	}
	return authority, authorityWasWarm, delegate, delegateWasWarm, nil
}

// SLoad reads storage slot key of addr, warming it if cold (§3 C6 sload).
func (j *Journal) SLoad(addr common.Address, key common.Hash) (*uint256.Int, bool, error) {
	acc, err := j.account(addr)
	if err != nil {
		return nil, false, err
	}
	sk := slotKey{addr: addr, key: key}
	wasWarm := j.warmSlots.Contains(sk)
	if !wasWarm {
		j.warmSlots.Add(sk)
		j.push(warmSlotEntry{key: sk})
	}
	if v, ok := acc.Storage[key]; ok {
		return v, wasWarm, nil
	}
	v, err := j.db.Storage(addr, key)
	if err != nil {
		return nil, false, err
	}
	acc.Storage[key] = v
	return v, wasWarm, nil
}

// SStore writes storage slot key of addr to value (§3 C6 sstore).
func (j *Journal) SStore(addr common.Address, key common.Hash, value *uint256.Int) error {
	acc, err := j.account(addr)
	if err != nil {
		return err
	}
	prev, had := acc.Storage[key]
	j.push(storageEntry{addr: addr, key: key, prev: prev, had: had})
	acc.Storage[key] = value
	acc.Status = database.StatusModified
	return nil
}

// TLoad reads transient storage keyed by (address, slot) (§3 C6 tload).
// Transient storage is cleared at the tx boundary by New never persisting
// across Journal instances.
func (j *Journal) TLoad(addr common.Address, key common.Hash) *uint256.Int {
	if m, ok := j.transient[addr]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return new(uint256.Int)
}

// TStore writes transient storage (§3 C6 tstore).
func (j *Journal) TStore(addr common.Address, key common.Hash, value *uint256.Int) {
	m, ok := j.transient[addr]
	if !ok {
		m = make(map[common.Hash]*uint256.Int)
		j.transient[addr] = m
	}
	prev, had := m[key]
	j.push(transientEntry{addr: addr, key: key, prev: prev, had: had})
	m[key] = value
}

// Transfer moves amount from from to to (§3 C6 transfer).
func (j *Journal) Transfer(from, to common.Address, amount *uint256.Int) error {
	fromAcc, err := j.account(from)
	if err != nil {
		return err
	}
	toAcc, err := j.account(to)
	if err != nil {
		return err
	}
	j.push(balanceEntry{addr: from, prev: new(uint256.Int).Set(fromAcc.Balance)})
	j.push(balanceEntry{addr: to, prev: new(uint256.Int).Set(toAcc.Balance)})
	fromAcc.Balance = new(uint256.Int).Sub(fromAcc.Balance, amount)
	toAcc.Balance = new(uint256.Int).Add(toAcc.Balance, amount)
	fromAcc.Status = database.StatusModified
	toAcc.Status = database.StatusModified
	return nil
}

// AddBalance credits amount to addr (used by Reward and by deposits).
func (j *Journal) AddBalance(addr common.Address, amount *uint256.Int) error {
	acc, err := j.account(addr)
	if err != nil {
		return err
	}
	j.push(balanceEntry{addr: addr, prev: new(uint256.Int).Set(acc.Balance)})
	acc.Balance = new(uint256.Int).Add(acc.Balance, amount)
	acc.Status = database.StatusModified
	return nil
}

// SubBalance debits amount from addr (used by fee deduction).
func (j *Journal) SubBalance(addr common.Address, amount *uint256.Int) error {
	acc, err := j.account(addr)
	if err != nil {
		return err
	}
	j.push(balanceEntry{addr: addr, prev: new(uint256.Int).Set(acc.Balance)})
	acc.Balance = new(uint256.Int).Sub(acc.Balance, amount)
	acc.Status = database.StatusModified
	return nil
}

// Balance returns addr's current balance without warming it.
func (j *Journal) Balance(addr common.Address) (*uint256.Int, error) {
	acc, err := j.account(addr)
	if err != nil {
		return nil, err
	}
	return acc.Balance, nil
}

// IncNonce increments addr's nonce by one (§3 C6 inc_nonce).
func (j *Journal) IncNonce(addr common.Address) error {
	acc, err := j.account(addr)
	if err != nil {
		return err
	}
	j.push(nonceEntry{addr: addr, prev: acc.Nonce})
	acc.Nonce++
	acc.Status = database.StatusModified
	return nil
}

// Nonce returns addr's current nonce.
func (j *Journal) Nonce(addr common.Address) (uint64, error) {
	acc, err := j.account(addr)
	if err != nil {
		return 0, err
	}
	return acc.Nonce, nil
}

// Touch marks addr touched (§3 C6).
func (j *Journal) Touch(addr common.Address) error {
	acc, err := j.account(addr)
	if err != nil {
		return err
	}
	if acc.Touched {
		return nil
	}
	j.push(touchEntry{addr: addr, prev: acc.Touched})
	acc.Touched = true
	return nil
}

// SetCodeWithHash sets addr's code and code hash (§3 C6 set_code_with_hash),
// used both for ordinary contract creation and for EIP-7702 delegation
// designators.
func (j *Journal) SetCodeWithHash(addr common.Address, code []byte, codeHash common.Hash) error {
	acc, err := j.account(addr)
	if err != nil {
		return err
	}
	j.push(codeEntry{addr: addr, prevHash: acc.CodeHash, prevCode: acc.Code})
	acc.Code = code
	acc.CodeHash = codeHash
	acc.Status = database.StatusModified
	return nil
}

// SelfDestruct marks addr destroyed (§3 C6 selfdestruct). Note that the
// opcode itself always halts with NotActivated on Scroll (spec.md §4.2);
// this method exists for completeness of the journal's interface and for
// any future fork that re-enables SELFDESTRUCT.
func (j *Journal) SelfDestruct(addr common.Address) error {
	acc, err := j.account(addr)
	if err != nil {
		return err
	}
	j.push(selfDestructEntry{addr: addr, prevStat: acc.Status})
	acc.Status = database.StatusDestroyed
	acc.Balance = new(uint256.Int)
	return nil
}

// AddRefund adds delta to the refund counter (used by the EIP-7702
// authorization-list refund and by opcode-level SSTORE refunds).
func (j *Journal) AddRefund(delta uint64) {
	j.push(refundEntry{prev: j.refund})
	j.refund += delta
}

// Refund returns the current refund counter.
func (j *Journal) Refund() uint64 { return j.refund }

// AddLog appends a log record.
func (j *Journal) AddLog(l Log) { j.logs = append(j.logs, l) }

// Checkpoint pushes a new checkpoint and returns its id (§3 C6 checkpoint).
func (j *Journal) Checkpoint() int {
	id := len(j.checkpoints)
	j.checkpoints = append(j.checkpoints, len(j.entries))
	return id
}

// Commit discards the checkpoint at id without reverting (§3 C6 commit).
// Checkpoints must nest: Commit/Revert always targets the most recent
// outstanding checkpoint.
func (j *Journal) Commit(id int) {
	j.checkpoints = j.checkpoints[:id]
}

// Revert restores the journal to the exact state at checkpoint id,
// including warm/cold status of accounts and slots (§3 C6 revert, §5
// Ordering guarantees).
func (j *Journal) Revert(id int) {
	mark := j.checkpoints[id]
	for i := len(j.entries) - 1; i >= mark; i-- {
		j.entries[i].revert(j)
	}
	j.entries = j.entries[:mark]
	j.checkpoints = j.checkpoints[:id]
}

// Finalize clears transient storage and returns the state diff and logs
// accumulated this tx (§3 C6 Lifecycle, §5 "Transient storage is cleared
// at tx boundary").
func (j *Journal) Finalize() (map[common.Address]database.AccountDiff, []Log) {
	diff := make(map[common.Address]database.AccountDiff, len(j.accounts))
	for addr, acc := range j.accounts {
		storage := make(map[common.Hash]common.Hash, len(acc.Storage))
		for k, v := range acc.Storage {
			storage[k] = common.Hash(v.Bytes32())
		}
		status := acc.Status
		if status == database.StatusUnchanged && acc.Touched {
			status = database.StatusModified
		}
		diff[addr] = database.AccountDiff{
			Info: &database.Account{
				Balance:  acc.Balance,
				Nonce:    acc.Nonce,
				CodeHash: acc.CodeHash,
				Code:     acc.Code,
			},
			Storage: storage,
			Status:  status,
		}
	}
	logs := j.logs
	j.transient = make(map[common.Address]map[common.Hash]*uint256.Int)
	return diff, logs
}
