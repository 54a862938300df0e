package engine

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/whisperfi/whisperd/pkg/dispatch"
	"github.com/whisperfi/whisperd/pkg/logger"
	"github.com/whisperfi/whisperd/pkg/metrics"
	"github.com/whisperfi/whisperd/pkg/models"
	"github.com/whisperfi/whisperd/pkg/tokens"
	"github.com/whisperfi/whisperd/pkg/uniswap"
)

// Status is the lifecycle state of a plan run
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// defaultWaitSeconds applies to WAIT steps without a time estimate
const defaultWaitSeconds = 60

// State is a snapshot of the engine. Steps are the engine's working copy;
// the plan that produced them is never mutated.
type State struct {
	Status           Status                 `json:"status"`
	CurrentStepIndex int                    `json:"currentStepIndex"`
	Steps            []models.ExecutionStep `json:"steps"`
	WaitCountdown    *int                   `json:"waitCountdown"`
	Error            string                 `json:"error,omitempty"`
}

// QuoteProvider fetches bridge quotes during BRIDGE_LIFI steps
type QuoteProvider interface {
	GetQuote(ctx context.Context, req models.QuoteRequest) (models.Quote, error)
}

// TxSender dispatches encoded transactions to the network
type TxSender interface {
	Dispatch(ctx context.Context, req dispatch.TxRequest) (common.Hash, error)
}

// Engine runs execution plans step by step: waits in real time, builds and
// dispatches transactions, and publishes a state snapshot after every
// change. One run at a time.
type Engine struct {
	signer   dispatch.Signer
	sender   TxSender
	quotes   QuoteProvider
	logger   logger.Logger
	tick     time.Duration
	listener func(State)

	mu      sync.Mutex
	state   State
	aborted atomic.Bool
}

// Option customizes an Engine
type Option func(*Engine)

// WithListener registers a callback invoked with a snapshot after every
// state change
func WithListener(fn func(State)) Option {
	return func(e *Engine) { e.listener = fn }
}

// WithTickInterval overrides the one-second WAIT countdown tick
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) { e.tick = d }
}

// WithLogger sets the engine's logger
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) { e.logger = log }
}

// New creates an idle engine
func New(signer dispatch.Signer, sender TxSender, quotes QuoteProvider, opts ...Option) *Engine {
	e := &Engine{
		signer: signer,
		sender: sender,
		quotes: quotes,
		logger: &logger.EmptyLogger{},
		tick:   time.Second,
		state: State{
			Status:           StatusIdle,
			CurrentStepIndex: -1,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns a snapshot of the current run
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() State {
	snapshot := e.state
	snapshot.Steps = make([]models.ExecutionStep, len(e.state.Steps))
	copy(snapshot.Steps, e.state.Steps)
	if e.state.WaitCountdown != nil {
		v := *e.state.WaitCountdown
		snapshot.WaitCountdown = &v
	}
	return snapshot
}

// update applies a mutation and publishes the resulting snapshot. The
// listener runs outside the lock.
func (e *Engine) update(mutate func(s *State)) {
	e.mu.Lock()
	mutate(&e.state)
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	if e.listener != nil {
		e.listener(snapshot)
	}
}

func (e *Engine) updateStep(index int, mutate func(step *models.ExecutionStep)) {
	e.update(func(s *State) {
		if index >= 0 && index < len(s.Steps) {
			mutate(&s.Steps[index])
		}
	})
}

func (e *Engine) stepAt(index int) models.ExecutionStep {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Steps[index]
}

func (e *Engine) completeStep(index int, txHash, privacyNote string) {
	e.updateStep(index, func(step *models.ExecutionStep) {
		step.Status = models.StepCompleted
		if txHash != "" {
			step.TxHash = txHash
		}
		if privacyNote != "" {
			step.PrivacyNote = privacyNote
		}
	})
}

// Execute runs a plan to completion. The plan's own steps stay pristine;
// the engine works on a cloned copy. Returns an error when the run fails
// or is cancelled.
func (e *Engine) Execute(ctx context.Context, plan *models.ExecutionPlan) error {
	if e.signer == nil || e.signer.Address() == (common.Address{}) {
		e.update(func(s *State) { s.Error = "Connect your wallet first" })
		return errors.New("wallet not connected")
	}

	e.aborted.Store(false)
	steps := plan.CloneSteps()
	e.update(func(s *State) {
		*s = State{
			Status:           StatusRunning,
			CurrentStepIndex: 0,
			Steps:            steps,
		}
	})

	metrics.ActiveExecutions.Inc()
	defer metrics.ActiveExecutions.Dec()
	e.logger.Info("Executing plan %s (%s, %d steps)", plan.ID, plan.Strategy, len(steps))

	for i := 0; i < len(steps); i++ {
		if e.aborted.Load() {
			e.markCancelled(plan)
			return errors.New("execution cancelled")
		}

		if err := e.executeStep(ctx, i); err != nil {
			msg := err.Error()
			e.updateStep(i, func(step *models.ExecutionStep) {
				step.Status = models.StepFailed
				step.Error = msg
			})
			e.update(func(s *State) {
				s.Status = StatusFailed
				s.Error = msg
			})
			metrics.PlanExecutions.WithLabelValues(string(plan.Strategy), "failed").Inc()
			e.logger.Error("Plan %s failed at step %d: %v", plan.ID, i, err)
			return err
		}

		// A cancel can land while a step is in flight
		if e.aborted.Load() {
			e.markCancelled(plan)
			return errors.New("execution cancelled")
		}
	}

	e.update(func(s *State) {
		s.Status = StatusCompleted
		s.CurrentStepIndex = len(steps)
	})
	metrics.PlanExecutions.WithLabelValues(string(plan.Strategy), "completed").Inc()
	e.logger.Notice("Plan %s completed", plan.ID)
	return nil
}

func (e *Engine) markCancelled(plan *models.ExecutionPlan) {
	e.update(func(s *State) {
		s.Status = StatusFailed
		s.Error = "Execution cancelled by user"
	})
	metrics.PlanExecutions.WithLabelValues(string(plan.Strategy), "cancelled").Inc()
}

// Cancel aborts the current run. The in-flight step notices on its next
// cancellation check.
func (e *Engine) Cancel() {
	e.aborted.Store(true)
	e.update(func(s *State) {
		s.Status = StatusFailed
		s.WaitCountdown = nil
		s.Error = "Execution cancelled by user"
	})
}

// Reset aborts any run and returns the engine to idle
func (e *Engine) Reset() {
	e.aborted.Store(true)
	e.update(func(s *State) {
		*s = State{
			Status:           StatusIdle,
			CurrentStepIndex: -1,
			Steps:            []models.ExecutionStep{},
		}
	})
}

func (e *Engine) executeStep(ctx context.Context, index int) error {
	e.update(func(s *State) { s.CurrentStepIndex = index })
	e.updateStep(index, func(step *models.ExecutionStep) { step.Status = models.StepExecuting })

	step := e.stepAt(index)
	var err error
	switch step.Type {
	case models.StepWait:
		err = e.runWait(ctx, index, step)
	case models.StepApprove:
		err = e.runApprove(ctx, index, step)
	case models.StepSwapUniswap:
		err = e.runSwap(ctx, index, step)
	case models.StepBridgeLiFi:
		err = e.runBridge(ctx, index, step)
	case models.StepAddLiquidity:
		e.completeStep(index, "", "Simulated — LP position would be opened here")
	default:
		e.completeStep(index, "", "Unknown step type — skipped")
	}

	outcome := "completed"
	if err != nil {
		outcome = "failed"
	}
	metrics.StepsExecuted.WithLabelValues(string(step.Type), outcome).Inc()
	return err
}

// runWait counts the delay down second by second so cancellation takes
// effect mid-wait and observers can watch the countdown
func (e *Engine) runWait(ctx context.Context, index int, step models.ExecutionStep) error {
	waitSeconds := step.EstimatedTime
	if waitSeconds <= 0 {
		waitSeconds = defaultWaitSeconds
	}

	for remaining := waitSeconds; remaining > 0; remaining-- {
		if e.aborted.Load() {
			return errors.New("execution cancelled")
		}
		r := remaining
		e.update(func(s *State) { s.WaitCountdown = &r })

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.tick):
		}
	}

	e.update(func(s *State) { s.WaitCountdown = nil })
	e.completeStep(index, "", "")
	return nil
}

func (e *Engine) runApprove(ctx context.Context, index int, step models.ExecutionStep) error {
	tokenAddr, resolved := tokens.ResolveAddress(step.FromToken, step.ChainID)
	if !resolved {
		e.completeStep(index, "", fmt.Sprintf("Skipped — unknown token %s on chain %d", step.FromToken, step.ChainID))
		return nil
	}
	if tokens.IsNative(tokenAddr) {
		e.completeStep(index, "", "Skipped — native ETH needs no approval")
		return nil
	}
	addrs, haveRouter := uniswap.ForChain(step.ChainID)
	if !haveRouter {
		e.completeStep(index, "", fmt.Sprintf("Skipped — no router deployment on chain %d", step.ChainID))
		return nil
	}

	e.switchChain(ctx, step.ChainID)

	tx, err := uniswap.BuildApprove(tokenAddr, addrs.Permit2, step.ChainID)
	if err != nil {
		return err
	}
	hash, err := e.sender.Dispatch(ctx, dispatch.TxRequest{
		ChainID: tx.ChainID,
		To:      tx.To,
		Data:    tx.Data,
		Value:   tx.Value,
	})
	if err != nil {
		return err
	}

	e.completeStep(index, hash.Hex(), "")
	return nil
}

func (e *Engine) runSwap(ctx context.Context, index int, step models.ExecutionStep) error {
	fromToken, okFrom := tokens.Resolve(step.FromToken, step.ChainID)
	toToken, okTo := tokens.Resolve(step.ToToken, step.ChainID)
	if !okFrom || !okTo {
		return fmt.Errorf("token not found: %s or %s", step.FromToken, step.ToToken)
	}

	amountIn, err := tokens.ToBaseUnits(step.Amount, fromToken.Decimals)
	if err != nil {
		return err
	}

	e.switchChain(ctx, step.ChainID)

	tx, err := uniswap.BuildSwap(uniswap.SwapParams{
		ChainID:  step.ChainID,
		TokenIn:  fromToken.Address,
		TokenOut: toToken.Address,
		AmountIn: amountIn,
	})
	if err != nil {
		return err
	}
	hash, err := e.sender.Dispatch(ctx, dispatch.TxRequest{
		ChainID: tx.ChainID,
		To:      tx.To,
		Data:    tx.Data,
		Value:   tx.Value,
	})
	if err != nil {
		return err
	}

	e.completeStep(index, hash.Hex(), "")
	return nil
}

func (e *Engine) runBridge(ctx context.Context, index int, step models.ExecutionStep) error {
	destChainID := step.ToChainID
	if destChainID == 0 {
		destChainID = step.ChainID
	}
	if destChainID == step.ChainID {
		e.completeStep(index, "", "Same chain — no bridge needed")
		return nil
	}

	fromAddr, okFrom := tokens.ResolveAddress(step.FromToken, step.ChainID)
	toAddr, okTo := tokens.ResolveAddress(step.ToToken, destChainID)
	if !okFrom || !okTo {
		e.completeStep(index, "", "Token not resolved — simulated")
		return nil
	}

	amount := step.Amount
	if amount == "" {
		amount = "0"
	}
	decimals := tokens.ResolveDecimals(step.FromToken, step.ChainID)
	amountWei, err := tokens.ToBaseUnits(amount, decimals)
	if err != nil {
		return err
	}

	e.switchChain(ctx, step.ChainID)

	quote, err := e.quotes.GetQuote(ctx, models.QuoteRequest{
		FromChainID: step.ChainID,
		ToChainID:   destChainID,
		FromToken:   fromAddr.Hex(),
		ToToken:     toAddr.Hex(),
		FromAmount:  amountWei.String(),
		FromAddress: e.signer.Address().Hex(),
	})
	if err != nil {
		return err
	}

	if quote.TransactionRequest == nil {
		e.completeStep(index, "", "Quote received — no tx needed yet")
		return nil
	}

	value, err := parseBigInt(quote.TransactionRequest.Value)
	if err != nil {
		return fmt.Errorf("invalid quote transaction value: %v", err)
	}
	hash, err := e.sender.Dispatch(ctx, dispatch.TxRequest{
		ChainID: step.ChainID,
		To:      common.HexToAddress(quote.TransactionRequest.To),
		Data:    common.FromHex(quote.TransactionRequest.Data),
		Value:   value,
	})
	if err != nil {
		return err
	}

	e.completeStep(index, hash.Hex(), "")
	return nil
}

// switchChain asks the signer to move to the step's chain. Failures are
// logged and swallowed; the dispatch itself will surface a real problem.
func (e *Engine) switchChain(ctx context.Context, chainID int) {
	if err := e.signer.SwitchChain(ctx, chainID); err != nil {
		e.logger.DebugWithChain(chainID, "Chain switch failed, continuing: %v", err)
	}
}

func parseBigInt(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}
	value, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("malformed integer %q", s)
	}
	return value, nil
}
