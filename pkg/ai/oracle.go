package ai

import (
	"context"

	"github.com/whisperfi/whisperd/pkg/models"
)

// Oracle is the reasoning boundary of the pipeline: it turns free text
// into intents, intents into risk analyses, and both into execution
// plans. Implementations must produce schema-valid output; callers treat
// anything else as an error.
type Oracle interface {
	// ParseIntent turns a natural-language request into a structured
	// intent. Wallet context is optional.
	ParseIntent(ctx context.Context, message string, wallet *models.WalletContext) (models.IntentParseResult, error)

	// AnalyzePrivacy scores the privacy exposure of an intent
	AnalyzePrivacy(ctx context.Context, intent models.ParsedIntent) (models.PrivacyAnalysis, error)

	// OptimizeStrategy builds an execution plan for an intent given its
	// privacy analysis
	OptimizeStrategy(ctx context.Context, intent models.ParsedIntent, analysis models.PrivacyAnalysis) (models.ExecutionPlan, error)
}
