package service

import (
	"wallet-behavior-engine/internal/domain/entity"
)

// Trading bands. One transaction per day over the trailing month saturates
// the frequency signal; turnover tops out at ten times the held balance.
const (
	traderVelocityWindowDays = 30
	traderTurnoverBandHigh   = 10.0
	traderHoldingBandDays    = 365.0
	traderRecencyBandDays    = 30.0
	traderDispersionBandCV   = 2.0
)

// TraderProfile detects high-frequency bidirectional flow: balanced in/out
// volume, dispersed values, rapid turnover and short holding.
type TraderProfile struct {
	profileParams
	tags *TagDirectory
}

// NewTraderProfile creates the trader archetype profile
func NewTraderProfile(tags *TagDirectory) *TraderProfile {
	return &TraderProfile{
		profileParams: profileParams{
			class: entity.WalletClassTrader,
			thresholds: map[entity.AnalysisStage]float64{
				entity.StageBasic:        0.60,
				entity.StageIntermediate: 0.62,
				entity.StageAdvanced:     0.65,
			},
			weightMix: map[entity.AnalysisStage]GroupWeights{
				entity.StageBasic:        {Primary: 1},
				entity.StageIntermediate: {Primary: 0.70, Secondary: 0.30},
				entity.StageAdvanced:     {Primary: 0.65, Secondary: 0.20, Context: 0.15},
			},
		},
		tags: tags,
	}
}

// Metrics returns the metric set for the given group
func (p *TraderProfile) Metrics(group entity.MetricGroup) []Metric {
	switch group {
	case entity.MetricGroupPrimary:
		return []Metric{
			{Name: "trade_frequency", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return clamp01(TransactionVelocity(w.Transactions, traderVelocityWindowDays))
			}},
			{Name: "flow_balance", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				in, out := raw.TotalReceived, raw.TotalSent
				if in <= 0 || out <= 0 {
					return 0
				}
				if in > out {
					return out / in
				}
				return in / out
			}},
			{Name: "value_dispersion", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				dist := ValueDistribution(w.Transactions)
				return normalize(dist.CV, 0, traderDispersionBandCV)
			}},
			{Name: "turnover_rate", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				if w.Balance <= 0 {
					if raw.TotalSent > 0 {
						return 1
					}
					return 0
				}
				return normalize(raw.TotalSent/w.Balance, 0, traderTurnoverBandHigh)
			}},
			{Name: "holding_brevity", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				held := HoldingPeriod(w.Transactions, w.Balance, raw.ObservedAt)
				return clamp01(1 - normalize(held, 0, traderHoldingBandDays))
			}},
		}
	case entity.MetricGroupSecondary:
		return []Metric{
			{Name: "direction_churn", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				if len(w.Transactions) < 2 {
					return 0
				}
				changes := 0
				for i := 1; i < len(w.Transactions); i++ {
					if w.Transactions[i].Type != w.Transactions[i-1].Type {
						changes++
					}
				}
				return float64(changes) / float64(len(w.Transactions)-1)
			}},
			{Name: "counterparty_rotation", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				unique := uniqueCounterparties(w.Address, w.Transactions)
				return clamp01(float64(unique) / float64(raw.TxCount))
			}},
			{Name: "session_clustering", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return shortIntervalRatio(raw.Timestamps)
			}},
		}
	case entity.MetricGroupContext:
		return []Metric{
			{Name: "exchange_affinity", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return p.tags.InteractionRate(w.Address, w.Transactions, TagExchange)
			}},
			{Name: "market_reach", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return NetworkCentrality(w.Address, w.Transactions)
			}},
			{Name: "recency", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				idleDays := float64(raw.ObservedAt-raw.LastSeen) / 86400.0
				return clamp01(1 - normalize(idleDays, 0, traderRecencyBandDays))
			}},
			{Name: "fee_tolerance", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				fees := make([]float64, 0, len(w.Transactions))
				for _, tx := range w.Transactions {
					if tx.Fee > 0 {
						fees = append(fees, tx.Fee)
					}
				}
				return normalize(meanOf(fees), 0, 100)
			}},
		}
	default:
		return nil
	}
}
