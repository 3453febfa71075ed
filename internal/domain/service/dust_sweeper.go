package service

import (
	"wallet-behavior-engine/internal/domain/entity"
)

// Dust sweeping bands. An average input below dustValueCeiling counts toward
// the archetype, with values near dustIdealValue scoring highest; the input
// density band tops out at sweeps gathering 50 sources at once.
const (
	dustInputBandLow   = 1.0
	dustInputBandHigh  = 50.0
	dustValueCeiling   = 100.0
	smallTxThreshold   = 100.0
	sweepCountBandLow  = 10.0
	sweepCountBandHigh = 200.0
)

// DustSweeperProfile detects wallets that gather many tiny inputs into few
// outputs: high input density, dust-sized input values, and strong
// consolidation structure.
type DustSweeperProfile struct {
	profileParams
	tags *TagDirectory
}

// NewDustSweeperProfile creates the dust sweeper archetype profile
func NewDustSweeperProfile(tags *TagDirectory) *DustSweeperProfile {
	return &DustSweeperProfile{
		profileParams: profileParams{
			class: entity.WalletClassDustSweeper,
			thresholds: map[entity.AnalysisStage]float64{
				entity.StageBasic:        0.60,
				entity.StageIntermediate: 0.65,
				entity.StageAdvanced:     0.70,
			},
			weightMix: map[entity.AnalysisStage]GroupWeights{
				entity.StageBasic:        {Primary: 1},
				entity.StageIntermediate: {Primary: 0.75, Secondary: 0.25},
				entity.StageAdvanced:     {Primary: 0.70, Secondary: 0.20, Context: 0.10},
			},
		},
		tags: tags,
	}
}

// Metrics returns the metric set for the given group
func (p *DustSweeperProfile) Metrics(group entity.MetricGroup) []Metric {
	switch group {
	case entity.MetricGroupPrimary:
		return []Metric{
			{Name: "input_density", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return normalize(raw.AvgInputsPerTx, dustInputBandLow, dustInputBandHigh)
			}},
			{Name: "dust_value_affinity", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				avgInput := meanOf(raw.InputValues)
				if avgInput <= 0 {
					return 0
				}
				return 1 - normalize(avgInput, 0, dustValueCeiling)
			}},
			{Name: "consolidation_ratio", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return ConsolidationRatio(w.Transactions)
			}},
			{Name: "small_tx_ratio", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				small := 0
				for _, tx := range w.Transactions {
					if tx.Value < smallTxThreshold {
						small++
					}
				}
				return float64(small) / float64(len(w.Transactions))
			}},
			{Name: "output_reduction", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				if raw.AvgInputsPerTx <= 0 {
					return 0
				}
				return clamp01(1 - raw.AvgOutputsPerTx/raw.AvgInputsPerTx)
			}},
		}
	case entity.MetricGroupSecondary:
		return []Metric{
			{Name: "sweep_regularity", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return intervalRegularity(raw.Timestamps)
			}},
			{Name: "sweep_frequency", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return normalize(float64(raw.TxCount), sweepCountBandLow, sweepCountBandHigh)
			}},
			{Name: "source_diversity", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return NetworkCentrality(w.Address, w.Transactions)
			}},
		}
	case entity.MetricGroupContext:
		return []Metric{
			{Name: "miner_payout_affinity", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return p.tags.InteractionRate(w.Address, w.Transactions, TagMiner)
			}},
			{Name: "address_reuse", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return counterpartyReuse(w.Address, w.Transactions)
			}},
			{Name: "fee_discipline", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				fees := make([]float64, 0, len(w.Transactions))
				for _, tx := range w.Transactions {
					if tx.Fee > 0 {
						fees = append(fees, tx.Fee)
					}
				}
				if len(fees) == 0 {
					return 0
				}
				return clamp01(1 - coefficientOfVariation(fees))
			}},
			{Name: "low_value_network", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				dist := ValueDistribution(w.Transactions)
				return 1 - normalize(dist.Mean, 0, 1000)
			}},
		}
	default:
		return nil
	}
}
