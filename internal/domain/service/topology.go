package service

import (
	"fmt"
	"time"

	"wallet-behavior-engine/internal/domain/entity"
	"wallet-behavior-engine/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// utxoChains lists chains whose transactions carry explicit input/output
// sets. Everything else is treated as account-based, including chains this
// table has never heard of.
var utxoChains = map[string]struct{}{
	"bitcoin":     {},
	"litecoin":    {},
	"dogecoin":    {},
	"bitcoincash": {},
	"dash":        {},
	"zcash":       {},
}

// TopologyService normalizes wallet activity into RawMetrics regardless of
// the underlying transaction model
type TopologyService struct {
	logger *logger.Logger
	now    func() time.Time
}

// NewTopologyService creates a new topology service
func NewTopologyService(logger *logger.Logger) *TopologyService {
	return &TopologyService{
		logger: logger.WithComponent("topology"),
		now:    time.Now,
	}
}

// Topology returns the transaction model used by the given chain
func (s *TopologyService) Topology(chain string) entity.BlockchainTopology {
	if _, ok := utxoChains[chain]; ok {
		return entity.TopologyUTXO
	}
	return entity.TopologyAccount
}

// Extract builds the chain-agnostic RawMetrics for a wallet. A wallet with
// no transactions produces all-zero metrics, never an error.
func (s *TopologyService) Extract(wallet *entity.WalletData) *entity.RawMetrics {
	topology := s.Topology(wallet.Chain)
	observedAt := s.now().Unix()

	raw := &entity.RawMetrics{
		CurrentBalance: wallet.Balance,
		ObservedAt:     observedAt,
		BlockchainType: topology,
		InputsPerTx:    make(map[string]int),
		OutputsPerTx:   make(map[string]int),
	}
	if len(wallet.Transactions) == 0 {
		return raw
	}

	raw.TxCount = int64(len(wallet.Transactions))
	raw.Timestamps = transactionTimestamps(wallet.Transactions)
	raw.FirstSeen, raw.LastSeen = timestampBounds(raw.Timestamps)
	raw.AgeDays = float64(observedAt-raw.FirstSeen) / 86400.0
	if raw.AgeDays < 0 {
		raw.AgeDays = 0
	}

	if topology == entity.TopologyUTXO {
		s.extractUTXO(wallet, raw)
	} else {
		s.extractAccount(wallet, raw)
	}

	// Every recorded transaction settles somewhere, so each one carries at
	// least one output even when the payload omitted them.
	for hash, outs := range raw.OutputsPerTx {
		if outs < 1 {
			raw.OutputsPerTx[hash] = 1
		}
	}

	var totalIn, totalOut int
	for _, n := range raw.InputsPerTx {
		totalIn += n
	}
	for _, n := range raw.OutputsPerTx {
		totalOut += n
	}
	raw.AvgInputsPerTx = float64(totalIn) / float64(raw.TxCount)
	raw.AvgOutputsPerTx = float64(totalOut) / float64(raw.TxCount)

	s.logger.Debug("Extracted raw metrics",
		zap.String("address", wallet.Address),
		zap.String("topology", string(topology)),
		zap.Int64("tx_count", raw.TxCount))

	return raw
}

// extractUTXO reads explicit input/output sets: received value is the sum of
// input values, sent value the sum of output values
func (s *TopologyService) extractUTXO(wallet *entity.WalletData, raw *entity.RawMetrics) {
	for i, tx := range wallet.Transactions {
		hash := txKey(tx, i)

		ins := tx.InputCount
		if ins == 0 {
			ins = len(tx.Inputs)
		}
		outs := tx.OutputCount
		if outs == 0 {
			outs = len(tx.Outputs)
		}
		raw.InputsPerTx[hash] = ins
		raw.OutputsPerTx[hash] = outs

		if len(tx.Inputs) > 0 {
			raw.InputValues = append(raw.InputValues, tx.Inputs...)
			for _, v := range tx.Inputs {
				raw.TotalReceived += v
			}
		} else if tx.Type == entity.TxReceive {
			raw.InputValues = append(raw.InputValues, tx.Value)
			raw.TotalReceived += tx.Value
		}

		if len(tx.Outputs) > 0 {
			raw.OutputValues = append(raw.OutputValues, tx.Outputs...)
			for _, v := range tx.Outputs {
				raw.TotalSent += v
			}
		} else if tx.Type == entity.TxSend {
			raw.OutputValues = append(raw.OutputValues, tx.Value)
			raw.TotalSent += tx.Value
		}

		if tx.Type == entity.TxReceive {
			raw.IncomingTxCount++
		} else {
			raw.OutgoingTxCount++
		}
	}
}

// extractAccount classifies direction by address match and synthesizes the
// single-input, single-output structure of account-model transfers
func (s *TopologyService) extractAccount(wallet *entity.WalletData, raw *entity.RawMetrics) {
	for i, tx := range wallet.Transactions {
		hash := txKey(tx, i)
		raw.InputsPerTx[hash] = 1
		raw.OutputsPerTx[hash] = 1

		incoming := tx.To == wallet.Address
		if !incoming && tx.From != wallet.Address {
			incoming = tx.Type == entity.TxReceive
		}

		if incoming {
			raw.IncomingTxCount++
			raw.TotalReceived += tx.Value
			raw.InputValues = append(raw.InputValues, tx.Value)
		} else {
			raw.OutgoingTxCount++
			raw.TotalSent += tx.Value
			raw.OutputValues = append(raw.OutputValues, tx.Value)
		}
	}
}

func txKey(tx entity.Transaction, index int) string {
	if tx.Hash != "" {
		return tx.Hash
	}
	return fmt.Sprintf("tx-%d", index)
}

func timestampBounds(timestamps []int64) (int64, int64) {
	first, last := timestamps[0], timestamps[0]
	for _, ts := range timestamps {
		if ts < first {
			first = ts
		}
		if ts > last {
			last = ts
		}
	}
	return first, last
}
