package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/whisperfi/whisperd/pkg/logger"
	"github.com/whisperfi/whisperd/pkg/metrics"
	"github.com/whisperfi/whisperd/pkg/models"
	"github.com/whisperfi/whisperd/pkg/ratelimit"
)

const defaultModel = openai.GPT4o

// OpenAIOracle implements the Oracle against the OpenAI chat API with
// forced tool calls so every answer is schema-shaped
type OpenAIOracle struct {
	client  *openai.Client
	model   string
	limiter *ratelimit.Limiter
	logger  logger.Logger
}

var _ Oracle = (*OpenAIOracle)(nil)

// NewOpenAIOracle creates an oracle. An empty model selects the default.
func NewOpenAIOracle(apiKey, model string, limiter *ratelimit.Limiter, log logger.Logger) *OpenAIOracle {
	if model == "" {
		model = defaultModel
	}
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &OpenAIOracle{
		client:  openai.NewClient(apiKey),
		model:   model,
		limiter: limiter,
		logger:  log,
	}
}

// NewOpenAIOracleWithConfig creates an oracle with a custom client
// configuration, e.g. a different base URL
func NewOpenAIOracleWithConfig(config openai.ClientConfig, model string, limiter *ratelimit.Limiter, log logger.Logger) *OpenAIOracle {
	if model == "" {
		model = defaultModel
	}
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &OpenAIOracle{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		limiter: limiter,
		logger:  log,
	}
}

// callTool runs one forced tool call and decodes its arguments into out
func (o *OpenAIOracle) callTool(ctx context.Context, system, user, toolName string, schema json.RawMessage, out interface{}) error {
	if err := o.limiter.Check(); err != nil {
		metrics.RateLimitedRequests.Inc()
		return err
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Tools: []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:       toolName,
				Parameters: schema,
			},
		}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: toolName},
		},
	})
	if err != nil {
		metrics.OracleCalls.WithLabelValues(toolName, "error").Inc()
		return fmt.Errorf("oracle call %s failed: %v", toolName, err)
	}
	o.limiter.Record()

	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		metrics.OracleCalls.WithLabelValues(toolName, "error").Inc()
		return fmt.Errorf("oracle call %s returned no tool use", toolName)
	}

	args := resp.Choices[0].Message.ToolCalls[0].Function.Arguments
	if err := json.Unmarshal([]byte(args), out); err != nil {
		metrics.OracleCalls.WithLabelValues(toolName, "error").Inc()
		return fmt.Errorf("oracle call %s returned malformed arguments: %v", toolName, err)
	}

	metrics.OracleCalls.WithLabelValues(toolName, "success").Inc()
	return nil
}

// Wire types mirroring the tool schemas (snake_case)
type tokenArgs struct {
	Token   string `json:"token"`
	Amount  string `json:"amount"`
	ChainID int    `json:"chain_id"`
}

type intentArgs struct {
	IntentType        string    `json:"intent_type"`
	FromToken         tokenArgs `json:"from_token"`
	ToToken           tokenArgs `json:"to_token"`
	PrivacyLevel      string    `json:"privacy_level"`
	SlippageTolerance float64   `json:"slippage_tolerance"`
	Urgency           string    `json:"urgency"`
	Constraints       []string  `json:"constraints"`
	Confidence        float64   `json:"confidence"`
	Explanation       string    `json:"explanation"`
	Warnings          []string  `json:"warnings"`
}

type riskArgs struct {
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Mitigation  string `json:"mitigation"`
}

type privacyArgs struct {
	OverallScore          int        `json:"overall_score"`
	Risks                 []riskArgs `json:"risks"`
	Recommendations       []string   `json:"recommendations"`
	StandardExposure      string     `json:"standard_exposure"`
	OptimizedExposure     string     `json:"optimized_exposure"`
	ImprovementPercentage int        `json:"improvement_percentage"`
}

type stepArgs struct {
	Type          string `json:"type"`
	Description   string `json:"description"`
	FromToken     string `json:"from_token"`
	ToToken       string `json:"to_token"`
	Amount        string `json:"amount"`
	ChainID       int    `json:"chain_id"`
	ToChainID     int    `json:"to_chain_id"`
	EstimatedGas  string `json:"estimated_gas"`
	EstimatedTime int    `json:"estimated_time"`
	PrivacyNote   string `json:"privacy_note"`
}

type planArgs struct {
	Strategy           string     `json:"strategy"`
	Steps              []stepArgs `json:"steps"`
	TotalEstimatedGas  string     `json:"total_estimated_gas"`
	TotalEstimatedTime int        `json:"total_estimated_time"`
	PrivacyScore       int        `json:"privacy_score"`
	PlanDescription    string     `json:"plan_description"`
}

// ParseIntent turns a natural-language request into a structured intent
func (o *OpenAIOracle) ParseIntent(ctx context.Context, message string, wallet *models.WalletContext) (models.IntentParseResult, error) {
	system := systemPrompt
	if wallet != nil {
		balances, _ := json.Marshal(wallet.Balances)
		ensName := wallet.ENSName
		if ensName == "" {
			ensName = "none"
		}
		system += fmt.Sprintf("\n\nUser wallet context:\n- Address: %s\n- ENS: %s\n- Chain: %d\n- Balances: %s",
			wallet.Address, ensName, wallet.ChainID, string(balances))
	}

	var args intentArgs
	if err := o.callTool(ctx, system, message, toolParseIntent, intentParseSchema, &args); err != nil {
		return models.IntentParseResult{}, err
	}

	result := models.IntentParseResult{
		Intent: models.ParsedIntent{
			Type: models.IntentType(args.IntentType),
			FromToken: models.TokenAmount{
				Token:   args.FromToken.Token,
				Amount:  args.FromToken.Amount,
				ChainID: args.FromToken.ChainID,
			},
			ToToken: models.TokenAmount{
				Token:   args.ToToken.Token,
				Amount:  args.ToToken.Amount,
				ChainID: args.ToToken.ChainID,
			},
			PrivacyLevel:          models.PrivacyLevel(args.PrivacyLevel),
			SlippageTolerance:     args.SlippageTolerance,
			Urgency:               models.Urgency(args.Urgency),
			AdditionalConstraints: args.Constraints,
		},
		Confidence:  args.Confidence,
		Explanation: args.Explanation,
		Warnings:    args.Warnings,
	}
	if result.Intent.AdditionalConstraints == nil {
		result.Intent.AdditionalConstraints = []string{}
	}
	if result.Warnings == nil {
		result.Warnings = []string{}
	}
	return result, nil
}

// AnalyzePrivacy scores the privacy exposure of an intent
func (o *OpenAIOracle) AnalyzePrivacy(ctx context.Context, intent models.ParsedIntent) (models.PrivacyAnalysis, error) {
	user := fmt.Sprintf(`
Analyze the privacy risks of this DeFi operation:
- Type: %s
- From: %s %s on chain %d
- To: %s on chain %d
- Privacy Level Requested: %s
- Urgency: %s
- Slippage: %g%%

Consider MEV exposure, front-running risk, sandwich attack vulnerability, information leakage from on-chain data, and timing analysis risks.`,
		intent.Type,
		intent.FromToken.Amount, intent.FromToken.Token, intent.FromToken.ChainID,
		intent.ToToken.Token, intent.ToToken.ChainID,
		intent.PrivacyLevel, intent.Urgency, intent.SlippageTolerance*100)

	var args privacyArgs
	if err := o.callTool(ctx, systemPrompt, user, toolAnalyzePrivacy, privacyAnalysisSchema, &args); err != nil {
		return models.PrivacyAnalysis{}, err
	}

	analysis := models.PrivacyAnalysis{
		OverallScore:          args.OverallScore,
		Risks:                 make([]models.PrivacyRisk, 0, len(args.Risks)),
		Recommendations:       args.Recommendations,
		StandardExposure:      args.StandardExposure,
		OptimizedExposure:     args.OptimizedExposure,
		ImprovementPercentage: args.ImprovementPercentage,
	}
	for _, r := range args.Risks {
		analysis.Risks = append(analysis.Risks, models.PrivacyRisk{
			Category:    models.RiskCategory(r.Category),
			Severity:    models.RiskSeverity(r.Severity),
			Description: r.Description,
			Mitigation:  r.Mitigation,
		})
	}
	if analysis.Recommendations == nil {
		analysis.Recommendations = []string{}
	}
	return analysis, nil
}

// OptimizeStrategy builds an execution plan for an intent
func (o *OpenAIOracle) OptimizeStrategy(ctx context.Context, intent models.ParsedIntent, analysis models.PrivacyAnalysis) (models.ExecutionPlan, error) {
	risks := make([]string, 0, len(analysis.Risks))
	for _, r := range analysis.Risks {
		risks = append(risks, fmt.Sprintf("%s(%s)", r.Category, r.Severity))
	}

	user := fmt.Sprintf(`
Generate an optimized execution plan for this DeFi intent with privacy protections:

Intent:
- Type: %s
- From: %s %s on chain %d
- To: %s on chain %d
- Privacy Level: %s
- Urgency: %s

Privacy Analysis:
- Overall Score: %d/100
- Top Risks: %s
- Recommendations: %s

Generate a concrete execution plan with specific steps. For enhanced/maximum privacy:
- Split large orders into smaller random-sized chunks
- Add WAIT steps between swaps (30-120 seconds)
- For cross-chain operations, consider routing through an intermediate chain
- Use Uniswap v4 for same-chain swaps and LI.FI for cross-chain bridges

Include realistic gas estimates in USD and time estimates in seconds.`,
		intent.Type,
		intent.FromToken.Amount, intent.FromToken.Token, intent.FromToken.ChainID,
		intent.ToToken.Token, intent.ToToken.ChainID,
		intent.PrivacyLevel, intent.Urgency,
		analysis.OverallScore, strings.Join(risks, ", "), strings.Join(analysis.Recommendations, "; "))

	var args planArgs
	if err := o.callTool(ctx, systemPrompt, user, toolOptimizeStrategy, strategyOptimizerSchema, &args); err != nil {
		return models.ExecutionPlan{}, err
	}

	plan := models.ExecutionPlan{
		ID:                 fmt.Sprintf("plan-%d", time.Now().UnixMilli()),
		Strategy:           models.StrategyType(args.Strategy),
		Steps:              make([]models.ExecutionStep, 0, len(args.Steps)),
		TotalEstimatedGas:  args.TotalEstimatedGas,
		TotalEstimatedTime: args.TotalEstimatedTime,
		PrivacyScore:       args.PrivacyScore,
		Description:        args.PlanDescription,
	}
	for i, s := range args.Steps {
		plan.Steps = append(plan.Steps, models.ExecutionStep{
			ID:            fmt.Sprintf("step-%d", i),
			Type:          models.StepType(s.Type),
			Description:   s.Description,
			Status:        models.StepPending,
			FromToken:     s.FromToken,
			ToToken:       s.ToToken,
			Amount:        s.Amount,
			ChainID:       s.ChainID,
			ToChainID:     s.ToChainID,
			EstimatedGas:  s.EstimatedGas,
			EstimatedTime: s.EstimatedTime,
			PrivacyNote:   s.PrivacyNote,
		})
	}
	return plan, nil
}
