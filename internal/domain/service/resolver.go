package service

import (
	"wallet-behavior-engine/internal/domain/entity"
	"wallet-behavior-engine/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// whaleBalanceGate separates a whale from a large trader when both score
// high: above this balance the whale reading wins regardless of confidence.
const whaleBalanceGate = 10_000_000.0

// resolutionConfidenceFloor filters out weak archetype readings before any
// conflict rule applies
const resolutionConfidenceFloor = 0.5

// HybridResolver collapses the per-archetype results into a single label.
// Rules are ordered: the trader/whale balance gate first, then mixer
// precedence, then highest confidence. It never errors; with no credible
// candidate the wallet stays UNKNOWN.
type HybridResolver struct {
	logger *logger.Logger
}

// NewHybridResolver creates a new hybrid resolver
func NewHybridResolver(logger *logger.Logger) *HybridResolver {
	return &HybridResolver{
		logger: logger.WithComponent("resolver"),
	}
}

// Resolve picks the final wallet class from per-archetype results
func (r *HybridResolver) Resolve(results []entity.ClassificationResult) entity.WalletClass {
	candidates := make([]entity.ClassificationResult, 0, len(results))
	for _, result := range results {
		if result.Confidence > resolutionConfidenceFloor {
			candidates = append(candidates, result)
		}
	}
	if len(candidates) == 0 {
		return entity.WalletClassUnknown
	}

	var trader, whale, mixer *entity.ClassificationResult
	for i := range candidates {
		switch candidates[i].Class {
		case entity.WalletClassTrader:
			trader = &candidates[i]
		case entity.WalletClassWhale:
			whale = &candidates[i]
		case entity.WalletClassMixer:
			mixer = &candidates[i]
		}
	}

	if trader != nil && whale != nil {
		if whale.Balance > whaleBalanceGate {
			r.logger.Debug("Trader/whale conflict resolved by balance gate",
				zap.Float64("balance", whale.Balance),
				zap.String("winner", string(entity.WalletClassWhale)))
			return entity.WalletClassWhale
		}
		return entity.WalletClassTrader
	}

	if mixer != nil {
		return entity.WalletClassMixer
	}

	best := candidates[0]
	for _, candidate := range candidates[1:] {
		if candidate.Confidence > best.Confidence {
			best = candidate
		}
	}
	return best.Class
}
