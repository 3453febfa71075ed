package service

import (
	"wallet-behavior-engine/internal/domain/entity"
)

// Holding bands in days. Funds held past the upper band score a full 1;
// anything under the lower band does not register as hodling at all.
const (
	holdingBandLowDays  = 180.0
	holdingBandHighDays = 1000.0
	dormancyBandDays    = 365.0
	receiveAgeBandDays  = 1000.0
)

// HodlerProfile detects long-term accumulation: old, retained balances with
// near-zero outflow and long dormant stretches.
type HodlerProfile struct {
	profileParams
	tags *TagDirectory
}

// NewHodlerProfile creates the hodler archetype profile
func NewHodlerProfile(tags *TagDirectory) *HodlerProfile {
	return &HodlerProfile{
		profileParams: profileParams{
			class: entity.WalletClassHodler,
			thresholds: map[entity.AnalysisStage]float64{
				entity.StageBasic:        0.55,
				entity.StageIntermediate: 0.60,
				entity.StageAdvanced:     0.65,
			},
			weightMix: map[entity.AnalysisStage]GroupWeights{
				entity.StageBasic:        {Primary: 1},
				entity.StageIntermediate: {Primary: 0.80, Secondary: 0.20},
				entity.StageAdvanced:     {Primary: 0.80, Secondary: 0.15, Context: 0.05},
			},
		},
		tags: tags,
	}
}

// Metrics returns the metric set for the given group
func (p *HodlerProfile) Metrics(group entity.MetricGroup) []Metric {
	switch group {
	case entity.MetricGroupPrimary:
		return []Metric{
			{Name: "holding_period", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				held := HoldingPeriod(w.Transactions, w.Balance, raw.ObservedAt)
				return normalize(held, holdingBandLowDays, holdingBandHighDays)
			}},
			{Name: "balance_retention", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				if raw.TotalReceived <= 0 {
					return 0
				}
				return clamp01(w.Balance / raw.TotalReceived)
			}},
			{Name: "dormancy", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				idleDays := float64(raw.ObservedAt-raw.LastSeen) / 86400.0
				return normalize(idleDays, 0, dormancyBandDays)
			}},
			{Name: "outflow_restraint", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				if raw.TotalReceived <= 0 {
					return 0
				}
				return clamp01(1 - raw.TotalSent/raw.TotalReceived)
			}},
			{Name: "receive_age", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				var ages []float64
				for _, tx := range w.Transactions {
					if tx.Type == entity.TxReceive {
						ages = append(ages, float64(raw.ObservedAt-tx.Timestamp)/86400.0)
					}
				}
				return normalize(meanOf(ages), 0, receiveAgeBandDays)
			}},
		}
	case entity.MetricGroupSecondary:
		return []Metric{
			{Name: "accumulation_trend", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return float64(raw.IncomingTxCount) / float64(raw.TxCount)
			}},
			{Name: "activity_sparsity", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return clamp01(1 - velocityAsOf(w.Transactions, 90, raw.ObservedAt))
			}},
			{Name: "dca_pattern", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				var receiveTs []int64
				var receiveValues []float64
				for _, tx := range w.Transactions {
					if tx.Type == entity.TxReceive {
						receiveTs = append(receiveTs, tx.Timestamp)
						receiveValues = append(receiveValues, tx.Value)
					}
				}
				if len(receiveTs) < 2 {
					return 0
				}
				timing := intervalRegularity(receiveTs)
				sizing := clamp01(1 - coefficientOfVariation(receiveValues))
				return (timing + sizing) / 2
			}},
		}
	case entity.MetricGroupContext:
		return []Metric{
			{Name: "exchange_distance", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return 1 - p.tags.InteractionRate(w.Address, w.Transactions, TagExchange)
			}},
			{Name: "cold_storage_signal", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				if raw.TotalReceived <= 0 {
					return 0
				}
				retention := clamp01(w.Balance / raw.TotalReceived)
				idleDays := float64(raw.ObservedAt-raw.LastSeen) / 86400.0
				return retention * normalize(idleDays, 0, dormancyBandDays)
			}},
			{Name: "low_fanout", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return clamp01(1 - float64(raw.OutgoingTxCount)/float64(raw.TxCount))
			}},
			{Name: "panic_resistance", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				if w.Balance <= 0 {
					return 0
				}
				large := 0
				sends := 0
				for _, tx := range w.Transactions {
					if tx.Type != entity.TxSend {
						continue
					}
					sends++
					if tx.Value >= 0.25*w.Balance {
						large++
					}
				}
				if sends == 0 {
					return 1
				}
				return clamp01(1 - float64(large)/float64(sends))
			}},
		}
	default:
		return nil
	}
}
