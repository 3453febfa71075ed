package entity

import (
	"time"
)

// WalletClass represents the behavioral archetype assigned to a wallet
type WalletClass string

const (
	WalletClassDustSweeper WalletClass = "DUST_SWEEPER" // Consolidates many tiny inputs into few outputs
	WalletClassHodler      WalletClass = "HODLER"       // Long-term accumulation with minimal outflow
	WalletClassMixer       WalletClass = "MIXER"        // Obfuscation via equal outputs and timed hops
	WalletClassTrader      WalletClass = "TRADER"       // High-frequency bidirectional flow
	WalletClassWhale       WalletClass = "WHALE"        // Large holdings and market-moving transfers
	WalletClassUnknown     WalletClass = "UNKNOWN"      // No archetype reached its threshold
)

// RiskLevel represents the operational risk associated with a wallet class
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
	RiskLevelUnknown  RiskLevel = "UNKNOWN"
)

// AllWalletClasses returns the five classifiable archetypes, excluding UNKNOWN.
func AllWalletClasses() []WalletClass {
	return []WalletClass{
		WalletClassDustSweeper,
		WalletClassHodler,
		WalletClassMixer,
		WalletClassTrader,
		WalletClassWhale,
	}
}

// DefaultRiskLevel returns the risk level implied by a wallet class
func (wc WalletClass) DefaultRiskLevel() RiskLevel {
	switch wc {
	case WalletClassMixer:
		return RiskLevelHigh
	case WalletClassDustSweeper, WalletClassWhale:
		return RiskLevelMedium
	case WalletClassTrader, WalletClassHodler:
		return RiskLevelLow
	default:
		return RiskLevelUnknown
	}
}

// IsHighRisk checks if the wallet class is considered high risk
func (wc WalletClass) IsHighRisk() bool {
	level := wc.DefaultRiskLevel()
	return level == RiskLevelHigh || level == RiskLevelCritical
}

// ResolutionPriority orders classes for conflict resolution. Higher values
// take precedence when confidences alone cannot separate candidates:
// MIXER > WHALE > TRADER > DUST_SWEEPER > HODLER.
func (wc WalletClass) ResolutionPriority() int {
	switch wc {
	case WalletClassMixer:
		return 5
	case WalletClassWhale:
		return 4
	case WalletClassTrader:
		return 3
	case WalletClassDustSweeper:
		return 2
	case WalletClassHodler:
		return 1
	default:
		return 0
	}
}

// IsValid checks whether the value is one of the closed set of classes
func (wc WalletClass) IsValid() bool {
	switch wc {
	case WalletClassDustSweeper, WalletClassHodler, WalletClassMixer,
		WalletClassTrader, WalletClassWhale, WalletClassUnknown:
		return true
	default:
		return false
	}
}

// AnalysisStage selects how deep the scoring pipeline reaches
type AnalysisStage string

const (
	StageBasic        AnalysisStage = "BASIC"        // Primary metrics only
	StageIntermediate AnalysisStage = "INTERMEDIATE" // Primary + secondary
	StageAdvanced     AnalysisStage = "ADVANCED"     // Primary + secondary + context
)

// MetricGroup identifies the tier a metric belongs to
type MetricGroup string

const (
	MetricGroupPrimary   MetricGroup = "primary"
	MetricGroupSecondary MetricGroup = "secondary"
	MetricGroupContext   MetricGroup = "context"
)

// Includes reports whether the stage evaluates the given metric group.
// Deeper stages are strict supersets of shallower ones.
func (s AnalysisStage) Includes(group MetricGroup) bool {
	switch group {
	case MetricGroupPrimary:
		return true
	case MetricGroupSecondary:
		return s == StageIntermediate || s == StageAdvanced
	case MetricGroupContext:
		return s == StageAdvanced
	default:
		return false
	}
}

// IsValid checks whether the value is one of the closed set of stages
func (s AnalysisStage) IsValid() bool {
	return s == StageBasic || s == StageIntermediate || s == StageAdvanced
}

// ParseStage maps a free-form stage string to an AnalysisStage, falling back
// to the provided default for empty or unrecognized values.
func ParseStage(value string, fallback AnalysisStage) AnalysisStage {
	stage := AnalysisStage(value)
	if stage.IsValid() {
		return stage
	}
	return fallback
}

// GroupScore aggregates the metric values of one group
type GroupScore struct {
	Avg float64 `json:"avg"`
	Max float64 `json:"max"`
	Min float64 `json:"min"`
}

// ClassificationScore is the outcome of scoring one wallet against one
// archetype at a given stage. Confidence and every metric value are in [0, 1].
type ClassificationScore struct {
	Class      WalletClass                `json:"wallet_class"`
	Confidence float64                    `json:"confidence"`
	Stage      AnalysisStage              `json:"stage"`
	Metrics    map[string]float64         `json:"metrics"`
	SubScores  map[MetricGroup]GroupScore `json:"sub_scores"`
}

// ClassificationResult is the per-archetype input to the hybrid resolver
type ClassificationResult struct {
	Class      WalletClass `json:"wallet_class"`
	Confidence float64     `json:"confidence"`
	Balance    float64     `json:"balance"`
}

// WalletReport is the resolved classification persisted to the graph and
// published downstream
type WalletReport struct {
	Address      string                               `json:"address"`
	Chain        string                               `json:"chain"`
	Class        WalletClass                          `json:"wallet_class"`
	Confidence   float64                              `json:"confidence"`
	RiskLevel    RiskLevel                            `json:"risk_level"`
	Stage        AnalysisStage                        `json:"stage"`
	Scores       map[WalletClass]*ClassificationScore `json:"scores"`
	ClassifiedAt time.Time                            `json:"classified_at"`
}

// AnalysisRequest is the message shape consumed from the analysis subject.
// Wallet carries the raw upstream payload; the validator normalizes it.
type AnalysisRequest struct {
	Stage  string         `json:"stage,omitempty"`
	Wallet map[string]any `json:"wallet"`
}
