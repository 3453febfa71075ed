package service

import (
	"wallet-behavior-engine/internal/domain/entity"
)

// Mixer throughput band. Mixing analysis is gated behind
// mixerMinTransactions; heavier traffic raises the throughput signal up to
// the high end of the band.
const (
	mixerThroughputBandHigh = 500.0
	mixerBurstWindowDays    = 7
)

// MixerProfile detects obfuscation services: uniform output values, scripted
// timing, pass-through balances, and symmetric in/out flow.
type MixerProfile struct {
	profileParams
	tags *TagDirectory
}

// NewMixerProfile creates the mixer archetype profile
func NewMixerProfile(tags *TagDirectory) *MixerProfile {
	return &MixerProfile{
		profileParams: profileParams{
			class: entity.WalletClassMixer,
			thresholds: map[entity.AnalysisStage]float64{
				entity.StageBasic:        0.45,
				entity.StageIntermediate: 0.50,
				entity.StageAdvanced:     0.55,
			},
			weightMix: map[entity.AnalysisStage]GroupWeights{
				entity.StageBasic:        {Primary: 1},
				entity.StageIntermediate: {Primary: 0.70, Secondary: 0.30},
				entity.StageAdvanced:     {Primary: 0.50, Secondary: 0.20, Context: 0.30},
			},
		},
		tags: tags,
	}
}

// Metrics returns the metric set for the given group. Every primary metric
// is gated on the minimum transaction count: a handful of transfers cannot
// evidence mixing.
func (p *MixerProfile) Metrics(group entity.MetricGroup) []Metric {
	switch group {
	case entity.MetricGroupPrimary:
		return []Metric{
			{Name: "mixing_intensity", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return MixingPatternScore(w.Transactions)
			}},
			{Name: "equal_output_frequency", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				if raw.TxCount < mixerMinTransactions {
					return 0
				}
				return mostFrequentValueShare(w.Transactions)
			}},
			{Name: "timing_regularity", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				if raw.TxCount < mixerMinTransactions {
					return 0
				}
				return intervalRegularity(raw.Timestamps)
			}},
			{Name: "throughput", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				if raw.TxCount < mixerMinTransactions {
					return 0
				}
				return normalize(float64(raw.TxCount), mixerMinTransactions, mixerThroughputBandHigh)
			}},
			{Name: "flow_symmetry", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				if raw.TxCount < mixerMinTransactions {
					return 0
				}
				in, out := float64(raw.IncomingTxCount), float64(raw.OutgoingTxCount)
				if in == 0 || out == 0 {
					return 0
				}
				if in > out {
					return out / in
				}
				return in / out
			}},
		}
	case entity.MetricGroupSecondary:
		return []Metric{
			{Name: "round_amount_ratio", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return roundAmountRatio(w.Transactions)
			}},
			{Name: "retention_inversion", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				if raw.TotalReceived <= 0 {
					return 0
				}
				return clamp01(1 - w.Balance/raw.TotalReceived)
			}},
			{Name: "burst_activity", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return clamp01(TransactionVelocity(w.Transactions, mixerBurstWindowDays) / 10)
			}},
		}
	case entity.MetricGroupContext:
		return []Metric{
			{Name: "mixer_affinity", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return p.tags.InteractionRate(w.Address, w.Transactions, TagMixer)
			}},
			{Name: "counterparty_breadth", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return NetworkCentrality(w.Address, w.Transactions)
			}},
			{Name: "obfuscation_depth", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return clamp01(1 - counterpartyReuse(w.Address, w.Transactions))
			}},
			{Name: "exchange_avoidance", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return 1 - p.tags.InteractionRate(w.Address, w.Transactions, TagExchange)
			}},
		}
	default:
		return nil
	}
}
