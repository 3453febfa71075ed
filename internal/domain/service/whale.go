package service

import (
	"math"

	"wallet-behavior-engine/internal/domain/entity"
)

// Whale tiers in USD. Balances at or above the top tier score a full 1;
// the resolver separately uses whaleBalanceGate when a wallet qualifies as
// both trader and whale.
const (
	whaleTierEntry       = 10_000_000.0
	whaleTierMid         = 50_000_000.0
	whaleTierTop         = 100_000_000.0
	whaleLargeTransfer   = 1_000_000.0
	whaleVolumeLogCeil   = 9.0 // log10 of 1B
	whaleTransferLogCeil = 8.0 // log10 of 100M
)

// WhaleProfile detects large holders: tiered balance magnitude, oversized
// transfers, and market-scale volume.
type WhaleProfile struct {
	profileParams
	tags *TagDirectory
}

// NewWhaleProfile creates the whale archetype profile
func NewWhaleProfile(tags *TagDirectory) *WhaleProfile {
	return &WhaleProfile{
		profileParams: profileParams{
			class: entity.WalletClassWhale,
			thresholds: map[entity.AnalysisStage]float64{
				entity.StageBasic:        0.55,
				entity.StageIntermediate: 0.60,
				entity.StageAdvanced:     0.65,
			},
			weightMix: map[entity.AnalysisStage]GroupWeights{
				entity.StageBasic:        {Primary: 1},
				entity.StageIntermediate: {Primary: 0.75, Secondary: 0.25},
				entity.StageAdvanced:     {Primary: 0.75, Secondary: 0.15, Context: 0.10},
			},
		},
		tags: tags,
	}
}

// Metrics returns the metric set for the given group
func (p *WhaleProfile) Metrics(group entity.MetricGroup) []Metric {
	switch group {
	case entity.MetricGroupPrimary:
		return []Metric{
			{Name: "balance_tier", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				switch {
				case w.Balance >= whaleTierTop:
					return 1
				case w.Balance >= whaleTierMid:
					return 0.9
				case w.Balance >= whaleTierEntry:
					return 0.75
				default:
					return 0.75 * clamp01(w.Balance/whaleTierEntry)
				}
			}},
			{Name: "avg_transfer_size", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				dist := ValueDistribution(w.Transactions)
				if dist.Mean <= 0 {
					return 0
				}
				return clamp01(math.Log10(1+dist.Mean) / whaleTransferLogCeil)
			}},
			{Name: "volume_tier", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				volume := raw.TotalReceived + raw.TotalSent
				if volume <= 0 {
					return 0
				}
				return clamp01(math.Log10(1+volume) / whaleVolumeLogCeil)
			}},
			{Name: "large_transfer_rate", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				large := 0
				for _, tx := range w.Transactions {
					if tx.Value >= whaleLargeTransfer {
						large++
					}
				}
				return float64(large) / float64(len(w.Transactions))
			}},
			{Name: "wealth_rank", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				if w.Balance <= 0 {
					return 0
				}
				return clamp01(math.Log10(1+w.Balance) / whaleVolumeLogCeil)
			}},
		}
	case entity.MetricGroupSecondary:
		return []Metric{
			{Name: "retention_strength", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				if raw.TotalReceived <= 0 {
					return 0
				}
				return clamp01(w.Balance / raw.TotalReceived)
			}},
			{Name: "market_impact", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				dist := ValueDistribution(w.Transactions)
				return clamp01(dist.Max / whaleTierEntry)
			}},
			{Name: "accumulation_bias", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				total := raw.TotalReceived + raw.TotalSent
				if total <= 0 {
					return 0
				}
				return raw.TotalReceived / total
			}},
		}
	case entity.MetricGroupContext:
		return []Metric{
			{Name: "institutional_channels", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return p.tags.InteractionRate(w.Address, w.Transactions, TagExchange)
			}},
			{Name: "network_gravity", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				return NetworkCentrality(w.Address, w.Transactions)
			}},
			{Name: "counterparty_scale", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				unique := uniqueCounterparties(w.Address, w.Transactions)
				if unique == 0 {
					return 0
				}
				perCounterparty := (raw.TotalReceived + raw.TotalSent) / float64(unique)
				return clamp01(math.Log10(1+perCounterparty) / whaleTransferLogCeil)
			}},
			{Name: "dormant_reserves", Compute: func(w *entity.WalletData, raw *entity.RawMetrics) float64 {
				if raw.TotalReceived <= 0 {
					return 0
				}
				retention := clamp01(w.Balance / raw.TotalReceived)
				idleDays := float64(raw.ObservedAt-raw.LastSeen) / 86400.0
				return retention * normalize(idleDays, 0, 365)
			}},
		}
	default:
		return nil
	}
}
