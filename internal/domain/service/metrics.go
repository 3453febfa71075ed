package service

import (
	"math"
	"sort"

	"wallet-behavior-engine/internal/domain/entity"
)

// mixerMinTransactions is the minimum activity before mixing analysis is
// meaningful. Below it every mixing-related metric reports 0.
const mixerMinTransactions = 10

// Distribution summarizes the value distribution of a transaction set
type Distribution struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	CV     float64 `json:"cv"` // coefficient of variation, 0 when mean is 0
}

// TransactionVelocity returns transactions per day over the trailing window
// ending at the newest transaction. Empty input or a non-positive period
// yields 0.
func TransactionVelocity(txs []entity.Transaction, periodDays int) float64 {
	if len(txs) == 0 || periodDays <= 0 {
		return 0
	}
	latest := txs[0].Timestamp
	for _, tx := range txs {
		if tx.Timestamp > latest {
			latest = tx.Timestamp
		}
	}
	return velocityAsOf(txs, periodDays, latest)
}

// velocityAsOf counts transactions inside the trailing window ending at asOf
func velocityAsOf(txs []entity.Transaction, periodDays int, asOf int64) float64 {
	if len(txs) == 0 || periodDays <= 0 {
		return 0
	}
	cutoff := asOf - int64(periodDays)*86400
	count := 0
	for _, tx := range txs {
		if tx.Timestamp >= cutoff && tx.Timestamp <= asOf {
			count++
		}
	}
	return float64(count) / float64(periodDays)
}

// ValueDistribution computes mean, median, population standard deviation,
// min, max and coefficient of variation of transaction values. Empty input
// yields the zero Distribution.
func ValueDistribution(txs []entity.Transaction) Distribution {
	if len(txs) == 0 {
		return Distribution{}
	}

	values := make([]float64, len(txs))
	for i, tx := range txs {
		values[i] = tx.Value
	}
	sort.Float64s(values)

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	stdDev := math.Sqrt(variance)

	var median float64
	mid := len(values) / 2
	if len(values)%2 == 0 {
		median = (values[mid-1] + values[mid]) / 2
	} else {
		median = values[mid]
	}

	cv := 0.0
	if mean != 0 {
		cv = stdDev / mean
	}

	return Distribution{
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		Min:    values[0],
		Max:    values[len(values)-1],
		CV:     cv,
	}
}

// HoldingPeriod estimates the FIFO-weighted average age in days of the
// currently held balance. Receive transactions are consumed newest-first
// until they cover the balance; ages are measured against observedAt.
// A zero balance or no receives yields 0.
func HoldingPeriod(txs []entity.Transaction, balance float64, observedAt int64) float64 {
	if balance <= 0 || len(txs) == 0 {
		return 0
	}

	receives := make([]entity.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == entity.TxReceive && tx.Value > 0 {
			receives = append(receives, tx)
		}
	}
	if len(receives) == 0 {
		return 0
	}
	sort.Slice(receives, func(i, j int) bool {
		return receives[i].Timestamp > receives[j].Timestamp
	})

	remaining := balance
	var weighted, covered float64
	for _, tx := range receives {
		if remaining <= 0 {
			break
		}
		amount := math.Min(tx.Value, remaining)
		age := float64(observedAt-tx.Timestamp) / 86400.0
		if age < 0 {
			age = 0
		}
		weighted += amount * age
		covered += amount
		remaining -= amount
	}
	if covered == 0 {
		return 0
	}
	return weighted / covered
}

// NetworkCentrality is a log-damped proxy for how connected the wallet is:
// log(1 + unique counterparties) / 10, clamped to [0, 1].
func NetworkCentrality(address string, txs []entity.Transaction) float64 {
	unique := uniqueCounterparties(address, txs)
	return clamp01(math.Log(1+float64(unique)) / 10)
}

// MixingPatternScore averages two obfuscation signals: the share of the most
// frequent rounded transaction value, and the regularity of inter-transaction
// intervals. Fewer than mixerMinTransactions transactions yields 0.
func MixingPatternScore(txs []entity.Transaction) float64 {
	if len(txs) < mixerMinTransactions {
		return 0
	}
	valueScore := mostFrequentValueShare(txs)
	timingScore := 1 - normalizedIntervalVariance(transactionTimestamps(txs))
	return (valueScore + clamp01(timingScore)) / 2
}

// ConsolidationRatio is the fraction of transactions that gather many inputs
// into few outputs (more than 3 inputs, at most 2 outputs).
func ConsolidationRatio(txs []entity.Transaction) float64 {
	if len(txs) == 0 {
		return 0
	}
	consolidating := 0
	for _, tx := range txs {
		if tx.InputCount > 3 && tx.OutputCount <= 2 {
			consolidating++
		}
	}
	return float64(consolidating) / float64(len(txs))
}

// normalize maps v onto [0, 1] across the [lo, hi] band
func normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return clamp01((v - lo) / (hi - lo))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// uniqueCounterparties counts distinct non-empty addresses on the other side
// of the wallet's transactions
func uniqueCounterparties(address string, txs []entity.Transaction) int {
	seen := make(map[string]struct{})
	for _, tx := range txs {
		if tx.From != "" && tx.From != address {
			seen[tx.From] = struct{}{}
		}
		if tx.To != "" && tx.To != address {
			seen[tx.To] = struct{}{}
		}
	}
	return len(seen)
}

// counterpartyReuse is the share of counterparty references that repeat an
// already-seen address. 0 when every counterparty is distinct.
func counterpartyReuse(address string, txs []entity.Transaction) float64 {
	total := 0
	for _, tx := range txs {
		if tx.From != "" && tx.From != address {
			total++
		}
		if tx.To != "" && tx.To != address {
			total++
		}
	}
	if total == 0 {
		return 0
	}
	unique := uniqueCounterparties(address, txs)
	return clamp01(1 - float64(unique)/float64(total))
}

// mostFrequentValueShare returns the fraction of transactions sharing the most
// common value after rounding to two decimals
func mostFrequentValueShare(txs []entity.Transaction) float64 {
	if len(txs) == 0 {
		return 0
	}
	counts := make(map[float64]int)
	best := 0
	for _, tx := range txs {
		key := math.Round(tx.Value*100) / 100
		counts[key]++
		if counts[key] > best {
			best = counts[key]
		}
	}
	return float64(best) / float64(len(txs))
}

// roundAmountRatio is the fraction of transactions carrying a round value
// (multiples of 10), a common fingerprint of scripted transfers
func roundAmountRatio(txs []entity.Transaction) float64 {
	if len(txs) == 0 {
		return 0
	}
	round := 0
	for _, tx := range txs {
		if tx.Value > 0 && math.Mod(tx.Value, 10) < 1e-9 {
			round++
		}
	}
	return float64(round) / float64(len(txs))
}

func transactionTimestamps(txs []entity.Transaction) []int64 {
	ts := make([]int64, len(txs))
	for i, tx := range txs {
		ts[i] = tx.Timestamp
	}
	return ts
}

// intervalRegularity is 1 minus the coefficient of variation of the gaps
// between consecutive timestamps, clamped to [0, 1]. Perfectly periodic
// activity scores 1.
func intervalRegularity(timestamps []int64) float64 {
	intervals := sortedIntervals(timestamps)
	if len(intervals) == 0 {
		return 0
	}
	mean, stdDev := meanStdDev(intervals)
	if mean == 0 {
		return 1
	}
	return clamp01(1 - stdDev/mean)
}

// normalizedIntervalVariance scales interval variance by the squared mean gap
// so that the result is comparable across activity levels. Clamped to [0, 1].
func normalizedIntervalVariance(timestamps []int64) float64 {
	intervals := sortedIntervals(timestamps)
	if len(intervals) == 0 {
		return 1
	}
	mean, stdDev := meanStdDev(intervals)
	if mean == 0 {
		return 0
	}
	return clamp01((stdDev * stdDev) / (mean * mean))
}

// shortIntervalRatio is the fraction of consecutive gaps under an hour
func shortIntervalRatio(timestamps []int64) float64 {
	intervals := sortedIntervals(timestamps)
	if len(intervals) == 0 {
		return 0
	}
	short := 0
	for _, gap := range intervals {
		if gap < 3600 {
			short++
		}
	}
	return float64(short) / float64(len(intervals))
}

func sortedIntervals(timestamps []int64) []float64 {
	if len(timestamps) < 2 {
		return nil
	}
	sorted := make([]int64, len(timestamps))
	copy(sorted, timestamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	intervals := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		intervals = append(intervals, float64(sorted[i]-sorted[i-1]))
	}
	return intervals
}

func meanStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func coefficientOfVariation(values []float64) float64 {
	mean, stdDev := meanStdDev(values)
	if mean == 0 {
		return 0
	}
	return stdDev / mean
}
