package service

import (
	"wallet-behavior-engine/internal/domain/entity"
	"wallet-behavior-engine/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// Metric is one named behavioral signal, normalized to [0, 1]
type Metric struct {
	Name    string
	Compute func(wallet *entity.WalletData, raw *entity.RawMetrics) float64
}

// GroupWeights blends the metric groups into a confidence. Weights of a
// profile sum to 1 at every stage.
type GroupWeights struct {
	Primary   float64
	Secondary float64
	Context   float64
}

// ArchetypeProfile is the capability set one archetype contributes to the
// engine: its metric definitions per group, and its per-stage thresholds and
// weight mixes.
type ArchetypeProfile interface {
	Class() entity.WalletClass
	Metrics(group entity.MetricGroup) []Metric
	Threshold(stage entity.AnalysisStage) float64
	Weights(stage entity.AnalysisStage) GroupWeights
}

// ClassificationEngine scores wallets against a single archetype. It is
// stateless and deterministic; one engine per archetype is built at startup.
type ClassificationEngine struct {
	profile  ArchetypeProfile
	topology *TopologyService
	logger   *logger.Logger
}

// NewClassificationEngine creates an engine for one archetype profile
func NewClassificationEngine(profile ArchetypeProfile, topology *TopologyService, logger *logger.Logger) *ClassificationEngine {
	return &ClassificationEngine{
		profile:  profile,
		topology: topology,
		logger:   logger.WithComponent("classifier"),
	}
}

// NewArchetypeEngines builds one engine per known archetype
func NewArchetypeEngines(topology *TopologyService, tags *TagDirectory, logger *logger.Logger) []*ClassificationEngine {
	profiles := []ArchetypeProfile{
		NewDustSweeperProfile(tags),
		NewHodlerProfile(tags),
		NewMixerProfile(tags),
		NewTraderProfile(tags),
		NewWhaleProfile(tags),
	}
	engines := make([]*ClassificationEngine, 0, len(profiles))
	for _, profile := range profiles {
		engines = append(engines, NewClassificationEngine(profile, topology, logger))
	}
	return engines
}

// Archetype returns the class this engine scores against
func (e *ClassificationEngine) Archetype() entity.WalletClass {
	return e.profile.Class()
}

// Classify scores a wallet against this engine's archetype at the given
// stage. The class is assigned only when the blended confidence reaches the
// archetype's stage threshold; otherwise it is UNKNOWN.
func (e *ClassificationEngine) Classify(wallet *entity.WalletData, stage entity.AnalysisStage) *entity.ClassificationScore {
	if !stage.IsValid() {
		stage = entity.StageBasic
	}

	raw := e.topology.Extract(wallet)

	score := &entity.ClassificationScore{
		Class:     entity.WalletClassUnknown,
		Stage:     stage,
		Metrics:   make(map[string]float64),
		SubScores: make(map[entity.MetricGroup]entity.GroupScore),
	}

	weights := e.profile.Weights(stage)
	var confidence float64
	for _, group := range []entity.MetricGroup{
		entity.MetricGroupPrimary,
		entity.MetricGroupSecondary,
		entity.MetricGroupContext,
	} {
		if !stage.Includes(group) {
			continue
		}
		groupScore := e.scoreGroup(wallet, raw, group, score.Metrics)
		score.SubScores[group] = groupScore
		confidence += groupScore.Avg * groupWeight(weights, group)
	}

	score.Confidence = clamp01(confidence)
	if score.Confidence >= e.profile.Threshold(stage) {
		score.Class = e.profile.Class()
	}

	e.logger.Debug("Scored wallet",
		zap.String("address", wallet.Address),
		zap.String("archetype", string(e.profile.Class())),
		zap.String("stage", string(stage)),
		zap.Float64("confidence", score.Confidence),
		zap.String("class", string(score.Class)))

	return score
}

// scoreGroup evaluates one metric group and records each metric value. A
// wallet with no transactions scores 0 on every metric by definition.
func (e *ClassificationEngine) scoreGroup(wallet *entity.WalletData, raw *entity.RawMetrics,
	group entity.MetricGroup, out map[string]float64) entity.GroupScore {

	metrics := e.profile.Metrics(group)
	if len(metrics) == 0 {
		return entity.GroupScore{}
	}

	var sum float64
	max, min := 0.0, 1.0
	for _, metric := range metrics {
		value := 0.0
		if raw.TxCount > 0 {
			value = clamp01(metric.Compute(wallet, raw))
		}
		out[metric.Name] = value
		sum += value
		if value > max {
			max = value
		}
		if value < min {
			min = value
		}
	}
	return entity.GroupScore{
		Avg: sum / float64(len(metrics)),
		Max: max,
		Min: min,
	}
}

// profileParams carries the per-stage tuning shared by every concrete
// profile: thresholds rise as stages deepen, and weight mixes shift from
// pure primary toward the blended advanced mix.
type profileParams struct {
	class      entity.WalletClass
	thresholds map[entity.AnalysisStage]float64
	weightMix  map[entity.AnalysisStage]GroupWeights
}

func (p profileParams) Class() entity.WalletClass {
	return p.class
}

func (p profileParams) Threshold(stage entity.AnalysisStage) float64 {
	if t, ok := p.thresholds[stage]; ok {
		return t
	}
	return p.thresholds[entity.StageBasic]
}

func (p profileParams) Weights(stage entity.AnalysisStage) GroupWeights {
	if w, ok := p.weightMix[stage]; ok {
		return w
	}
	return GroupWeights{Primary: 1}
}

func groupWeight(weights GroupWeights, group entity.MetricGroup) float64 {
	switch group {
	case entity.MetricGroupPrimary:
		return weights.Primary
	case entity.MetricGroupSecondary:
		return weights.Secondary
	case entity.MetricGroupContext:
		return weights.Context
	default:
		return 0
	}
}
