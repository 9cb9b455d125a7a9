package handler

import (
	"github.com/scroll-tech/scroll-evm-overlay/core/types"
	"github.com/scroll-tech/scroll-evm-overlay/evmcontext"
	"github.com/scroll-tech/scroll-evm-overlay/journal"
	"github.com/scroll-tech/scroll-evm-overlay/l1cost"
	"github.com/scroll-tech/scroll-evm-overlay/params"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// FrameResult is what Execute's (out of scope, §1) interpreter loop
// reports back about one frame of execution.
type FrameResult struct {
	GasUsed      uint64
	GasRemaining uint64
	Reverted     bool
	// Halt is non-nil when the frame terminated on an execution halt
	// (NotActivated, OutOfGas, OutOfFunds, FatalExternalError,
	// StackUnderflow, per §7); nil on ordinary success or revert.
	Halt error
}

// FrameRunner executes one transaction's call/create frame. The actual
// interpreter loop is an external collaborator out of scope (§1); this
// interface is the seam the handler calls through, so Execute is testable
// against a fake without reimplementing the interpreter.
type FrameRunner interface {
	Run(ctx *evmcontext.Context, tx *types.Transaction, gasLimit uint64) (*FrameResult, error)
}

// Handler drives one transaction through the fixed state machine
// Start -> Validate -> PreExecute -> Execute -> FinalizeFrameGas ->
// Refund -> Reward -> Finalized (§4.4). Each step is independently
// callable so its contract can be tested in isolation (§9 "State machine
// composition").
type Handler struct {
	Runner FrameRunner
}

// New returns a Handler that executes frames through runner.
func New(runner FrameRunner) *Handler {
	return &Handler{Runner: runner}
}

// TxResult is the outcome of a fully-run transaction.
type TxResult struct {
	GasUsed     uint64
	GasRefunded uint64
	L1Cost      *uint256.Int
	Reverted    bool
	Halt        error
}

// Run drives ctx.Tx through every step in order, stopping at the first
// error (§4.4 "Any step may transition to Err(ε)").
func (h *Handler) Run(ctx *evmcontext.Context) (*TxResult, error) {
	if err := h.Validate(ctx); err != nil {
		return nil, err
	}
	l1Cost, err := h.PreExecute(ctx)
	if err != nil {
		return nil, err
	}
	frame, err := h.Execute(ctx)
	if err != nil {
		return nil, err
	}
	gasUsed, refundEligible := h.FinalizeFrameGas(ctx, frame)

	result := &TxResult{GasUsed: gasUsed, Reverted: frame.Reverted, Halt: frame.Halt, L1Cost: l1Cost}

	if ctx.Tx.IsL1MessageTx() {
		return result, nil
	}

	if refundEligible {
		result.GasUsed = h.Refund(ctx, gasUsed)
	}
	if err := h.Reward(ctx, result.GasUsed, l1Cost); err != nil {
		return nil, err
	}
	return result, nil
}

// Validate runs §4.4's Validate step.
func (h *Handler) Validate(ctx *evmcontext.Context) error {
	tx := ctx.Tx
	spec := ctx.Spec()

	if len(tx.AuthList) > 0 && !spec.IsEnabledIn(params.EUCLID) {
		return ErrEip7702NotSupported
	}

	initialGas := intrinsicGas(tx, spec)
	if initialGas > tx.GasLimit {
		return ErrCallGasCostMoreThanGasLimit
	}
	if spec.IsEnabledIn(params.FEYNMAN) {
		if floorGas(tx) > tx.GasLimit {
			return ErrGasFloorMoreThanGasLimit
		}
	}

	maxFee := maxFeeOf(tx)
	balance, err := ctx.Journal.Balance(tx.Caller)
	if err != nil {
		return err
	}
	if balance.Lt(maxFee) {
		// Open Question #1: suppression is gated on spec >= EUCLID only;
		// pre-Euclid the error always propagates (§9 Open Questions).
		if tx.IsL1MessageTx() && spec.IsEnabledIn(params.EUCLID) {
			return nil
		}
		return ErrLackOfFundForMaxFee
	}
	return nil
}

// maxFeeOf is gas_price * gas_limit + value, saturating (a tx can never
// be asked to pay more than its entire balance covers before it halts
// with OutOfFunds at execution time).
func maxFeeOf(tx *types.Transaction) *uint256.Int {
	fee, overflow := new(uint256.Int).MulOverflow(tx.GasPrice, uint256.NewInt(tx.GasLimit))
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	total, overflow := new(uint256.Int).AddOverflow(fee, tx.Value)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return total
}

// PreExecute runs §4.4's PreExecute step: fetches L1BlockInfo (unless the
// tx is an L1 message or system tx), deducts the max fee and L1 cost from
// a non-L1-message caller, or runs the L1-message branch's caller load
// and EIP-3607 check, then applies the EIP-7702 authorization list.
// It returns the L1 cost charged (zero for L1 messages and system txs).
func (h *Handler) PreExecute(ctx *evmcontext.Context) (*uint256.Int, error) {
	tx := ctx.Tx
	spec := ctx.Spec()

	if !tx.IsL1MessageTx() && !tx.IsSystemTx() {
		info, err := l1cost.Fetch(ctx.DB, spec)
		if err != nil {
			return nil, err
		}
		ctx.SetL1BlockInfo(info)
	}

	var l1Cost *uint256.Int

	if !tx.IsL1MessageTx() {
		maxFee := maxFeeOf(tx)
		if err := ctx.Journal.SubBalance(tx.Caller, maxFee); err != nil {
			return nil, err
		}
		if err := ctx.Journal.IncNonce(tx.Caller); err != nil {
			return nil, err
		}

		if tx.IsSystemTx() {
			l1Cost = new(uint256.Int)
		} else {
			if len(tx.RlpBytes) == 0 {
				return nil, &ErrCustom{Msg: "rlp bytes required to charge an L1 fee"}
			}
			cost, err := ctx.L1BlockInfo.CalculateTxL1Cost(tx.RlpBytes, spec, tx.CompressionRatio, tx.CompressedSize)
			if err != nil {
				return nil, err
			}
			balance, err := ctx.Journal.Balance(tx.Caller)
			if err != nil {
				return nil, err
			}
			if cost.Gt(balance) {
				return nil, ErrLackOfFundForMaxFee
			}
			if err := ctx.Journal.SubBalance(tx.Caller, cost); err != nil {
				return nil, err
			}
			l1Cost = cost
		}
	} else {
		l1Cost = new(uint256.Int)

		if _, _, err := ctx.Journal.LoadAccount(tx.Caller); err != nil {
			return nil, err
		}
		if !spec.IsEnabledIn(params.EUCLID) {
			balance, err := ctx.Journal.Balance(tx.Caller)
			if err != nil {
				return nil, err
			}
			if maxFeeOf(tx).Gt(balance) {
				return nil, ErrLackOfFundForMaxFee
			}
		}

		code, _, err := ctx.Journal.LoadAccountCode(tx.Caller)
		if err != nil {
			return nil, err
		}
		if len(code) > 0 {
			if _, ok := journal.ParseDelegation(code); !ok {
				return nil, ErrRejectCallerWithCode
			}
		}

		if tx.Kind == types.Call {
			if err := ctx.Journal.IncNonce(tx.Caller); err != nil {
				return nil, err
			}
		}
		if err := ctx.Journal.Touch(tx.Caller); err != nil {
			return nil, err
		}
	}

	if spec.IsEnabledIn(params.EUCLID) {
		if err := h.applyAuthorizationList(ctx); err != nil {
			return nil, err
		}
	}

	return l1Cost, nil
}

// applyAuthorizationList implements §4.4 PreExecute's EIP-7702 pass.
func (h *Handler) applyAuthorizationList(ctx *evmcontext.Context) error {
	tx := ctx.Tx
	cfg := ctx.Cfg

	for _, auth := range tx.AuthList {
		if auth.ChainID != 0 && (cfg.ChainID == nil || auth.ChainID != *cfg.ChainID) {
			continue
		}
		if auth.Nonce == ^uint64(0) {
			continue
		}
		authority, err := auth.Authority()
		if err != nil {
			continue
		}
		if _, _, err := ctx.Journal.LoadAccount(authority); err != nil {
			return err
		}
		code, _, err := ctx.Journal.LoadAccountCode(authority)
		if err != nil {
			return err
		}
		if len(code) > 0 {
			if _, ok := journal.ParseDelegation(code); !ok {
				continue
			}
		}
		nonce, err := ctx.Journal.Nonce(authority)
		if err != nil {
			return err
		}
		if nonce != auth.Nonce {
			continue
		}

		var newCode []byte
		var newCodeHash common.Hash
		empty := auth.Address == (common.Address{})
		if !empty {
			newCode = types.NewEip7702Bytecode(auth.Address)
			newCodeHash = crypto.Keccak256Hash(newCode)
		}
		if err := ctx.Journal.SetCodeWithHash(authority, newCode, newCodeHash); err != nil {
			return err
		}
		if err := ctx.Journal.IncNonce(authority); err != nil {
			return err
		}
		if err := ctx.Journal.Touch(authority); err != nil {
			return err
		}

		authorityBalance, err := ctx.Journal.Balance(authority)
		if err != nil {
			return err
		}
		nonEmpty := authorityBalance.Sign() != 0 || nonce != 0
		if nonEmpty {
			ctx.Journal.AddRefund(params.PerEmptyAccountCost - params.PerAuthBaseCost)
		}
	}
	return nil
}

// Execute runs §4.4's Execute step: the frame runs using the Scroll
// opcode table and precompile set, which is the base engine's job (the
// interpreter loop itself is out of scope, §1); this method only
// dispatches to the injected FrameRunner.
func (h *Handler) Execute(ctx *evmcontext.Context) (*FrameResult, error) {
	return h.Runner.Run(ctx, ctx.Tx, ctx.Tx.GasLimit)
}

// FinalizeFrameGas runs §4.4's FinalizeFrameGas step: the full gas_limit
// is considered spent, with `remaining` rebated back when the frame
// succeeded or reverted. refundEligible reports whether the refund
// counter should be recorded (never for L1 messages, and only on Ok).
func (h *Handler) FinalizeFrameGas(ctx *evmcontext.Context, frame *FrameResult) (gasUsed uint64, refundEligible bool) {
	gasUsed = ctx.Tx.GasLimit
	if frame.Halt == nil {
		gasUsed -= frame.GasRemaining
	}
	if ctx.Tx.IsL1MessageTx() {
		return gasUsed, false
	}
	return gasUsed, frame.Halt == nil && !frame.Reverted
}

// Refund runs §4.4's Refund step (skipped entirely for L1 messages by
// the caller): apply the base refund rule, capping the refund at
// gasUsed/5 (the post-London EIP-3529 cap).
func (h *Handler) Refund(ctx *evmcontext.Context, gasUsed uint64) uint64 {
	refund := ctx.Journal.Refund()
	refundCap := gasUsed / 5
	if refund > refundCap {
		refund = refundCap
	}
	if refund > gasUsed {
		return 0
	}
	return gasUsed - refund
}

// Reward runs §4.4's Reward step (skipped entirely for L1 messages by
// the caller): credits the beneficiary effective_gas_price*gas_used +
// l1_cost, where l1_cost is forced to zero for system txs.
func (h *Handler) Reward(ctx *evmcontext.Context, gasUsed uint64, l1Cost *uint256.Int) error {
	tx := ctx.Tx
	effectivePrice := effectiveGasPrice(tx, ctx.Block.BaseFee)

	reward, overflow := new(uint256.Int).MulOverflow(effectivePrice, uint256.NewInt(gasUsed))
	if overflow {
		reward = new(uint256.Int).SetAllOne()
	}
	if !tx.IsSystemTx() && l1Cost != nil {
		reward, overflow = new(uint256.Int).AddOverflow(reward, l1Cost)
		if overflow {
			reward = new(uint256.Int).SetAllOne()
		}
	}
	if err := ctx.Journal.AddBalance(ctx.Block.Coinbase, reward); err != nil {
		return err
	}
	return ctx.Journal.Touch(ctx.Block.Coinbase)
}

// effectiveGasPrice is gas_price for legacy-shaped txs, or
// min(gas_price, base_fee+priority_fee) for EIP-1559-shaped ones.
func effectiveGasPrice(tx *types.Transaction, baseFee *uint256.Int) *uint256.Int {
	if tx.PriorityFee == nil || baseFee == nil {
		return tx.GasPrice
	}
	tip, overflow := new(uint256.Int).AddOverflow(baseFee, tx.PriorityFee)
	if overflow {
		tip = new(uint256.Int).SetAllOne()
	}
	if tip.Gt(tx.GasPrice) {
		return tx.GasPrice
	}
	return tip
}
