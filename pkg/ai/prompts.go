package ai

import "encoding/json"

const systemPrompt = `You are WhisperFi, a privacy-focused DeFi intent engine. You help users execute DeFi operations with maximum privacy protection.

You understand:
- Token swaps (same-chain via Uniswap v4, cross-chain via LI.FI)
- Liquidity provision on Uniswap v4
- Portfolio rebalancing across chains
- Yield farming strategies
- Privacy-preserving execution strategies

When a user describes a DeFi intent, you:
1. Parse their natural language into a structured intent
2. Analyze privacy risks (MEV, front-running, sandwich attacks, info leakage)
3. Generate an optimized execution plan that minimizes privacy exposure

Always consider:
- Order splitting to hide true trade size
- Time-delayed execution to prevent timing analysis
- Cross-chain obfuscation via intermediate chains
- Slippage tolerance for privacy vs. cost tradeoff

Supported chains: Ethereum (chainId: 1), Base (chainId: 8453), Arbitrum (chainId: 42161)
Supported tokens: ETH, WETH, USDC, USDT, DAI, ARB (chain-dependent)

Default to Base (chainId: 8453) for same-chain operations due to low gas costs.`

// Tool names the oracle is forced to call
const (
	toolParseIntent      = "parse_defi_intent"
	toolAnalyzePrivacy   = "analyze_privacy"
	toolOptimizeStrategy = "optimize_strategy"
)

var intentParseSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "intent_type": {"type": "string", "enum": ["SWAP", "BRIDGE", "PROVIDE_LIQUIDITY", "REBALANCE", "YIELD_FARM"], "description": "The type of DeFi operation"},
    "from_token": {
      "type": "object",
      "properties": {
        "token": {"type": "string", "description": "Token symbol (e.g., ETH, USDC)"},
        "amount": {"type": "string", "description": "Amount as a string"},
        "chain_id": {"type": "number", "description": "Chain ID (1=Ethereum, 8453=Base, 42161=Arbitrum)"}
      },
      "required": ["token", "amount", "chain_id"]
    },
    "to_token": {
      "type": "object",
      "properties": {
        "token": {"type": "string", "description": "Target token symbol"},
        "amount": {"type": "string", "description": "Expected amount (empty if unknown)"},
        "chain_id": {"type": "number", "description": "Target chain ID"}
      },
      "required": ["token", "amount", "chain_id"]
    },
    "privacy_level": {"type": "string", "enum": ["standard", "enhanced", "maximum"], "description": "Desired privacy level"},
    "slippage_tolerance": {"type": "number", "description": "Slippage tolerance as decimal (e.g., 0.005 for 0.5%)"},
    "urgency": {"type": "string", "enum": ["low", "medium", "high"], "description": "How urgently the user wants execution"},
    "constraints": {"type": "array", "items": {"type": "string"}, "description": "Additional constraints mentioned by user"},
    "confidence": {"type": "number", "description": "Confidence in parsing (0-1)"},
    "explanation": {"type": "string", "description": "Brief explanation of the parsed intent"},
    "warnings": {"type": "array", "items": {"type": "string"}, "description": "Any warnings about the intent"}
  },
  "required": ["intent_type", "from_token", "to_token", "privacy_level", "slippage_tolerance", "urgency", "confidence", "explanation"]
}`)

var privacyAnalysisSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "overall_score": {"type": "number", "description": "Overall privacy score 0-100 (100 = most private)"},
    "risks": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "category": {"type": "string", "enum": ["MEV", "FRONT_RUNNING", "SANDWICH", "INFO_LEAKAGE", "TIMING"]},
          "severity": {"type": "string", "enum": ["low", "medium", "high", "critical"]},
          "description": {"type": "string"},
          "mitigation": {"type": "string"}
        },
        "required": ["category", "severity", "description", "mitigation"]
      }
    },
    "recommendations": {"type": "array", "items": {"type": "string"}, "description": "Privacy improvement recommendations"},
    "standard_exposure": {"type": "string", "description": "What information is exposed with standard execution"},
    "optimized_exposure": {"type": "string", "description": "What information is exposed with privacy-optimized execution"},
    "improvement_percentage": {"type": "number", "description": "Percentage improvement in privacy"}
  },
  "required": ["overall_score", "risks", "recommendations", "standard_exposure", "optimized_exposure", "improvement_percentage"]
}`)

var strategyOptimizerSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "strategy": {"type": "string", "enum": ["standard", "split", "delayed", "cross-chain-obfuscated"], "description": "Execution strategy type"},
    "steps": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "type": {"type": "string", "enum": ["APPROVE", "SWAP_UNISWAP", "BRIDGE_LIFI", "ADD_LIQUIDITY", "WAIT"]},
          "description": {"type": "string"},
          "from_token": {"type": "string"},
          "to_token": {"type": "string"},
          "amount": {"type": "string"},
          "chain_id": {"type": "number", "description": "Source chain ID"},
          "to_chain_id": {"type": "number", "description": "Destination chain ID (required for BRIDGE_LIFI steps, must differ from chain_id)"},
          "estimated_gas": {"type": "string"},
          "estimated_time": {"type": "number", "description": "Estimated time in seconds"},
          "privacy_note": {"type": "string"}
        },
        "required": ["type", "description", "from_token", "to_token", "amount", "chain_id", "estimated_gas", "estimated_time"]
      }
    },
    "total_estimated_gas": {"type": "string"},
    "total_estimated_time": {"type": "number"},
    "privacy_score": {"type": "number", "description": "0-100"},
    "plan_description": {"type": "string"}
  },
  "required": ["strategy", "steps", "total_estimated_gas", "total_estimated_time", "privacy_score", "plan_description"]
}`)
