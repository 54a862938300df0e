package models

// StepType identifies the unit of work an execution step performs
type StepType string

const (
	StepApprove      StepType = "APPROVE"
	StepSwapUniswap  StepType = "SWAP_UNISWAP"
	StepBridgeLiFi   StepType = "BRIDGE_LIFI"
	StepAddLiquidity StepType = "ADD_LIQUIDITY"
	StepWait         StepType = "WAIT"
)

// StepStatus is the lifecycle state of a single step.
// Transitions are monotonic: pending -> executing -> completed|failed.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepExecuting StepStatus = "executing"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// StrategyType tags the privacy strategy an execution plan implements
type StrategyType string

const (
	StrategyStandard   StrategyType = "standard"
	StrategySplit      StrategyType = "split"
	StrategyDelayed    StrategyType = "delayed"
	StrategyCrossChain StrategyType = "cross-chain-obfuscated"
)

// ExecutionStep is one ordered unit of work inside an execution plan.
// Steps are owned exclusively by their plan (or its runtime copy) and are
// never shared between plans.
type ExecutionStep struct {
	ID          string     `json:"id"`
	Type        StepType   `json:"type"`
	Description string     `json:"description"`
	Status      StepStatus `json:"status"`
	FromToken   string     `json:"fromToken"`
	ToToken     string     `json:"toToken"`
	Amount      string     `json:"amount"`
	ChainID     int        `json:"chainId"`
	// ToChainID is the destination chain for BRIDGE_LIFI steps only
	ToChainID     int    `json:"toChainId,omitempty"`
	EstimatedGas  string `json:"estimatedGas"`
	EstimatedTime int    `json:"estimatedTime"` // seconds
	PrivacyNote   string `json:"privacyNote,omitempty"`
	TxHash        string `json:"txHash,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ExecutionPlan is the artifact produced by strategy optimization: an
// ordered step sequence plus aggregate estimates. Step order is execution
// order and is never reordered. The plan itself stays untouched during a
// run; the engine executes against a cloned copy of the steps so the plan
// can be inspected and re-run later.
type ExecutionPlan struct {
	ID                 string          `json:"id"`
	Strategy           StrategyType    `json:"strategy"`
	Steps              []ExecutionStep `json:"steps"`
	TotalEstimatedGas  string          `json:"totalEstimatedGas"`
	TotalEstimatedTime int             `json:"totalEstimatedTime"` // seconds
	PrivacyScore       int             `json:"privacyScore"`       // 0-100
	Description        string          `json:"description"`
}

// CloneSteps returns a deep copy of the plan's steps with every status
// forced back to pending, ready for a fresh run
func (p *ExecutionPlan) CloneSteps() []ExecutionStep {
	steps := make([]ExecutionStep, len(p.Steps))
	copy(steps, p.Steps)
	for i := range steps {
		steps[i].Status = StepPending
		steps[i].TxHash = ""
		steps[i].Error = ""
	}
	return steps
}
