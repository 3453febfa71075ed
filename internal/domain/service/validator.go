package service

import (
	"encoding/json"
	"fmt"

	"wallet-behavior-engine/internal/domain/entity"
	"wallet-behavior-engine/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// defaultChain is assumed when a payload does not name its chain
const defaultChain = "ethereum"

// ValidationError reports a structurally invalid wallet payload
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid wallet data: field %q %s", e.Field, e.Reason)
}

// Validator checks raw wallet payloads and normalizes them into WalletData.
// Upstream producers disagree on field names (hash vs tx_hash, value vs
// amount, from vs sender); the alias mapping here is the single place that
// knowledge lives.
type Validator struct {
	logger *logger.Logger
}

// NewValidator creates a new payload validator
func NewValidator(logger *logger.Logger) *Validator {
	return &Validator{
		logger: logger.WithComponent("validator"),
	}
}

// Validate checks that the payload carries the minimum required structure:
// an address, a balance, and a transactions sequence. It never mutates the
// payload.
func (v *Validator) Validate(payload map[string]any) error {
	if payload == nil {
		return &ValidationError{Field: "wallet", Reason: "is missing"}
	}
	if addr, ok := payload["address"].(string); !ok || addr == "" {
		return &ValidationError{Field: "address", Reason: "is missing"}
	}
	if _, ok := payload["balance"]; !ok {
		return &ValidationError{Field: "balance", Reason: "is missing"}
	}
	raw, ok := payload["transactions"]
	if !ok {
		return &ValidationError{Field: "transactions", Reason: "is missing"}
	}
	if _, ok := raw.([]any); !ok {
		return &ValidationError{Field: "transactions", Reason: "is not a sequence"}
	}
	return nil
}

// Normalize validates the payload and maps it onto the canonical WalletData
// shape. Missing numeric fields default to 0; wallet-level aggregates absent
// from the payload are derived from the transaction list.
func (v *Validator) Normalize(payload map[string]any) (*entity.WalletData, error) {
	if err := v.Validate(payload); err != nil {
		return nil, err
	}

	address, _ := payload["address"].(string)
	chain := firstString(payload, "chain", "network")
	if chain == "" {
		chain = defaultChain
	}

	wallet := &entity.WalletData{
		Address:              address,
		Chain:                chain,
		Balance:              firstFloat(payload, "balance"),
		FirstSeen:            int64(firstFloat(payload, "first_seen")),
		LastSeen:             int64(firstFloat(payload, "last_seen")),
		TotalReceived:        firstFloat(payload, "total_received"),
		TotalSent:            firstFloat(payload, "total_sent"),
		TransactionCount:     int64(firstFloat(payload, "transaction_count", "tx_count")),
		UniqueCounterparties: int64(firstFloat(payload, "unique_counterparties")),
	}

	rawTxs := payload["transactions"].([]any)
	wallet.Transactions = make([]entity.Transaction, 0, len(rawTxs))
	for i, raw := range rawTxs {
		record, ok := raw.(map[string]any)
		if !ok {
			v.logger.Warn("Skipping malformed transaction record",
				zap.String("address", address),
				zap.Int("index", i))
			continue
		}
		wallet.Transactions = append(wallet.Transactions, v.normalizeTransaction(address, record))
	}

	v.deriveAggregates(wallet)
	return wallet, nil
}

// normalizeTransaction resolves field aliases and derives direction. When the
// record references the wallet address directly, direction follows that;
// otherwise a present from-address means a send.
func (v *Validator) normalizeTransaction(address string, record map[string]any) entity.Transaction {
	tx := entity.Transaction{
		Hash:      firstString(record, "hash", "tx_hash"),
		Timestamp: int64(firstFloat(record, "timestamp", "time")),
		Value:     firstFloat(record, "value", "amount"),
		From:      firstString(record, "from", "sender"),
		To:        firstString(record, "to", "recipient"),
		Fee:       firstFloat(record, "fee", "gas_price"),
		Inputs:    floatList(record, "inputs"),
		Outputs:   floatList(record, "outputs"),
	}

	tx.InputCount = len(tx.Inputs)
	if tx.InputCount == 0 {
		tx.InputCount = int(firstFloat(record, "input_count"))
	}
	tx.OutputCount = len(tx.Outputs)
	if tx.OutputCount == 0 {
		tx.OutputCount = int(firstFloat(record, "output_count"))
	}

	switch {
	case tx.From == address:
		tx.Type = entity.TxSend
	case tx.To == address:
		tx.Type = entity.TxReceive
	case tx.From != "":
		tx.Type = entity.TxSend
	default:
		tx.Type = entity.TxReceive
	}
	return tx
}

// deriveAggregates fills wallet-level aggregates from the normalized
// transaction list when the payload did not provide them
func (v *Validator) deriveAggregates(wallet *entity.WalletData) {
	if len(wallet.Transactions) == 0 {
		return
	}

	if wallet.TransactionCount == 0 {
		wallet.TransactionCount = int64(len(wallet.Transactions))
	}

	var received, sent float64
	first, last := wallet.Transactions[0].Timestamp, wallet.Transactions[0].Timestamp
	for _, tx := range wallet.Transactions {
		if tx.Timestamp < first {
			first = tx.Timestamp
		}
		if tx.Timestamp > last {
			last = tx.Timestamp
		}
		if tx.Type == entity.TxReceive {
			received += tx.Value
		} else {
			sent += tx.Value
		}
	}
	if wallet.FirstSeen == 0 {
		wallet.FirstSeen = first
	}
	if wallet.LastSeen == 0 {
		wallet.LastSeen = last
	}
	if wallet.TotalReceived == 0 {
		wallet.TotalReceived = received
	}
	if wallet.TotalSent == 0 {
		wallet.TotalSent = sent
	}
	if wallet.UniqueCounterparties == 0 {
		wallet.UniqueCounterparties = int64(uniqueCounterparties(wallet.Address, wallet.Transactions))
	}
}

// firstString returns the first non-empty string value among the given keys
func firstString(record map[string]any, keys ...string) string {
	for _, key := range keys {
		if val, ok := record[key].(string); ok && val != "" {
			return val
		}
	}
	return ""
}

// firstFloat returns the first numeric value among the given keys, coercing
// the numeric types JSON decoding can produce. Absent keys yield 0.
func firstFloat(record map[string]any, keys ...string) float64 {
	for _, key := range keys {
		val, ok := record[key]
		if !ok || val == nil {
			continue
		}
		switch n := val.(type) {
		case float64:
			return n
		case float32:
			return float64(n)
		case int:
			return float64(n)
		case int64:
			return float64(n)
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f
			}
		}
	}
	return 0
}

func floatList(record map[string]any, key string) []float64 {
	raw, ok := record[key].([]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	values := make([]float64, 0, len(raw))
	for _, item := range raw {
		switch n := item.(type) {
		case float64:
			values = append(values, n)
		case int:
			values = append(values, float64(n))
		case int64:
			values = append(values, float64(n))
		}
	}
	return values
}
