package service

import (
	"errors"
	"testing"

	"wallet-behavior-engine/internal/domain/entity"
	"wallet-behavior-engine/internal/infrastructure/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func validPayload() map[string]any {
	return map[string]any{
		"address": "0xabc",
		"balance": 500.0,
		"transactions": []any{
			map[string]any{
				"hash":      "h1",
				"timestamp": 1000.0,
				"value":     100.0,
				"from":      "0xpeer",
				"to":        "0xabc",
			},
		},
	}
}

func TestValidateMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]any)
		field   string
		wantErr bool
	}{
		{name: "valid", mutate: func(p map[string]any) {}, wantErr: false},
		{name: "missing address", mutate: func(p map[string]any) { delete(p, "address") }, field: "address", wantErr: true},
		{name: "empty address", mutate: func(p map[string]any) { p["address"] = "" }, field: "address", wantErr: true},
		{name: "missing balance", mutate: func(p map[string]any) { delete(p, "balance") }, field: "balance", wantErr: true},
		{name: "missing transactions", mutate: func(p map[string]any) { delete(p, "transactions") }, field: "transactions", wantErr: true},
		{name: "transactions not a sequence", mutate: func(p map[string]any) { p["transactions"] = "oops" }, field: "transactions", wantErr: true},
	}

	v := NewValidator(newTestLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(payload)

			err := v.Validate(payload)
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error is %T, want *ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestNormalizeFieldAliases(t *testing.T) {
	payload := map[string]any{
		"address": "0xabc",
		"balance": 10.0,
		"transactions": []any{
			map[string]any{
				"tx_hash":   "aliased",
				"time":      2000.0,
				"amount":    42.5,
				"sender":    "0xpeer",
				"recipient": "0xabc",
				"gas_price": 3.0,
			},
		},
	}

	wallet, err := NewValidator(newTestLogger(t)).Normalize(payload)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(wallet.Transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(wallet.Transactions))
	}

	tx := wallet.Transactions[0]
	if tx.Hash != "aliased" {
		t.Errorf("Hash = %q, want %q", tx.Hash, "aliased")
	}
	if tx.Timestamp != 2000 {
		t.Errorf("Timestamp = %d, want 2000", tx.Timestamp)
	}
	if tx.Value != 42.5 {
		t.Errorf("Value = %v, want 42.5", tx.Value)
	}
	if tx.From != "0xpeer" || tx.To != "0xabc" {
		t.Errorf("From/To = %q/%q, want 0xpeer/0xabc", tx.From, tx.To)
	}
	if tx.Fee != 3.0 {
		t.Errorf("Fee = %v, want 3.0", tx.Fee)
	}
}

func TestNormalizeDirection(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]any
		want   entity.TransactionType
	}{
		{
			name:   "to wallet is receive",
			record: map[string]any{"from": "0xpeer", "to": "0xabc"},
			want:   entity.TxReceive,
		},
		{
			name:   "from wallet is send",
			record: map[string]any{"from": "0xabc", "to": "0xpeer"},
			want:   entity.TxSend,
		},
		{
			name:   "unlinked with sender is send",
			record: map[string]any{"from": "0xother", "to": "0xelse"},
			want:   entity.TxSend,
		},
		{
			name:   "bare record is receive",
			record: map[string]any{"value": 1.0},
			want:   entity.TxReceive,
		},
	}

	v := NewValidator(newTestLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := map[string]any{
				"address":      "0xabc",
				"balance":      0.0,
				"transactions": []any{tt.record},
			}
			wallet, err := v.Normalize(payload)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got := wallet.Transactions[0].Type; got != tt.want {
				t.Errorf("Type = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeDefaultsAndDerivation(t *testing.T) {
	payload := map[string]any{
		"address": "0xabc",
		"balance": 100.0,
		"transactions": []any{
			map[string]any{"to": "0xabc", "from": "0xp1", "timestamp": 1000.0, "value": 30.0},
			map[string]any{"to": "0xabc", "from": "0xp2", "timestamp": 3000.0, "value": 70.0},
			map[string]any{"from": "0xabc", "to": "0xp1", "timestamp": 2000.0, "value": 25.0},
			map[string]any{"to": "0xabc"}, // all numerics absent
		},
	}

	wallet, err := NewValidator(newTestLogger(t)).Normalize(payload)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if wallet.Chain != "ethereum" {
		t.Errorf("Chain = %q, want default ethereum", wallet.Chain)
	}
	if wallet.Transactions[3].Value != 0 || wallet.Transactions[3].Timestamp != 0 {
		t.Errorf("absent numerics should default to 0, got value=%v ts=%d",
			wallet.Transactions[3].Value, wallet.Transactions[3].Timestamp)
	}
	if wallet.FirstSeen != 0 || wallet.LastSeen != 3000 {
		t.Errorf("FirstSeen/LastSeen = %d/%d, want 0/3000", wallet.FirstSeen, wallet.LastSeen)
	}
	if wallet.TotalReceived != 100 {
		t.Errorf("TotalReceived = %v, want 100", wallet.TotalReceived)
	}
	if wallet.TotalSent != 25 {
		t.Errorf("TotalSent = %v, want 25", wallet.TotalSent)
	}
	if wallet.TransactionCount != 4 {
		t.Errorf("TransactionCount = %d, want 4", wallet.TransactionCount)
	}
	if wallet.UniqueCounterparties != 2 {
		t.Errorf("UniqueCounterparties = %d, want 2", wallet.UniqueCounterparties)
	}
}

func TestNormalizeUTXOStructure(t *testing.T) {
	payload := map[string]any{
		"address": "bc1sweeper",
		"chain":   "bitcoin",
		"balance": 5.0,
		"transactions": []any{
			map[string]any{
				"hash":    "h1",
				"inputs":  []any{1.0, 2.0, 3.0, 4.0},
				"outputs": []any{9.5},
			},
		},
	}

	wallet, err := NewValidator(newTestLogger(t)).Normalize(payload)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	tx := wallet.Transactions[0]
	if tx.InputCount != 4 || tx.OutputCount != 1 {
		t.Errorf("InputCount/OutputCount = %d/%d, want 4/1", tx.InputCount, tx.OutputCount)
	}
	if len(tx.Inputs) != 4 || len(tx.Outputs) != 1 {
		t.Errorf("Inputs/Outputs lengths = %d/%d, want 4/1", len(tx.Inputs), len(tx.Outputs))
	}
	if wallet.Chain != "bitcoin" {
		t.Errorf("Chain = %q, want bitcoin", wallet.Chain)
	}
}
