package models

// RiskCategory classifies a privacy risk identified for an intent
type RiskCategory string

const (
	RiskMEV         RiskCategory = "MEV"
	RiskFrontRun    RiskCategory = "FRONT_RUNNING"
	RiskSandwich    RiskCategory = "SANDWICH"
	RiskInfoLeakage RiskCategory = "INFO_LEAKAGE"
	RiskTiming      RiskCategory = "TIMING"
)

// RiskSeverity grades how serious an identified risk is
type RiskSeverity string

const (
	SeverityLow      RiskSeverity = "low"
	SeverityMedium   RiskSeverity = "medium"
	SeverityHigh     RiskSeverity = "high"
	SeverityCritical RiskSeverity = "critical"
)

// PrivacyRisk is one identified exposure with its suggested mitigation
type PrivacyRisk struct {
	Category    RiskCategory `json:"category"`
	Severity    RiskSeverity `json:"severity"`
	Description string       `json:"description"`
	Mitigation  string       `json:"mitigation"`
}

// PrivacyAnalysis is the read-only risk assessment produced once per intent.
// OverallScore runs 0-100 where 100 is most private.
type PrivacyAnalysis struct {
	OverallScore          int           `json:"overallScore"`
	Risks                 []PrivacyRisk `json:"risks"`
	Recommendations       []string      `json:"recommendations"`
	StandardExposure      string        `json:"standardExposure"`
	OptimizedExposure     string        `json:"optimizedExposure"`
	ImprovementPercentage int           `json:"improvementPercentage"`
}
