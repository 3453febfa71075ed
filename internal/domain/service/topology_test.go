package service

import (
	"testing"
	"time"

	"wallet-behavior-engine/internal/domain/entity"
)

func newTestTopology(t *testing.T) *TopologyService {
	t.Helper()
	topo := NewTopologyService(newTestLogger(t))
	topo.now = func() time.Time { return time.Unix(testObservedAt, 0) }
	return topo
}

func TestTopologyDispatch(t *testing.T) {
	tests := []struct {
		chain string
		want  entity.BlockchainTopology
	}{
		{"bitcoin", entity.TopologyUTXO},
		{"litecoin", entity.TopologyUTXO},
		{"dogecoin", entity.TopologyUTXO},
		{"zcash", entity.TopologyUTXO},
		{"ethereum", entity.TopologyAccount},
		{"polygon", entity.TopologyAccount},
		{"", entity.TopologyAccount},
		{"some-future-chain", entity.TopologyAccount},
	}

	topo := newTestTopology(t)
	for _, tt := range tests {
		t.Run(tt.chain, func(t *testing.T) {
			if got := topo.Topology(tt.chain); got != tt.want {
				t.Errorf("Topology(%q) = %q, want %q", tt.chain, got, tt.want)
			}
		})
	}
}

func TestExtractEmptyWallet(t *testing.T) {
	topo := newTestTopology(t)
	wallet := &entity.WalletData{Address: "0xempty", Chain: "ethereum", Balance: 12.5}

	raw := topo.Extract(wallet)

	if raw.TxCount != 0 {
		t.Errorf("TxCount = %d, want 0", raw.TxCount)
	}
	if raw.CurrentBalance != 12.5 {
		t.Errorf("CurrentBalance = %v, want 12.5", raw.CurrentBalance)
	}
	if raw.TotalReceived != 0 || raw.TotalSent != 0 || raw.AgeDays != 0 {
		t.Errorf("empty wallet must produce zero aggregates, got %+v", raw)
	}
	if raw.ObservedAt != testObservedAt {
		t.Errorf("ObservedAt = %d, want %d", raw.ObservedAt, testObservedAt)
	}
}

func TestExtractUTXO(t *testing.T) {
	topo := newTestTopology(t)
	wallet := &entity.WalletData{
		Address: "bc1wallet",
		Chain:   "bitcoin",
		Balance: 4.5,
		Transactions: []entity.Transaction{
			{
				Hash:        "h1",
				Timestamp:   testObservedAt - 10*86400,
				Inputs:      []float64{1, 2, 3},
				Outputs:     []float64{5.5},
				InputCount:  3,
				OutputCount: 1,
				Type:        entity.TxSend,
			},
			{
				Hash:       "h2",
				Timestamp:  testObservedAt - 5*86400,
				Inputs:     []float64{4},
				InputCount: 1,
				Type:       entity.TxReceive,
			},
		},
	}

	raw := topo.Extract(wallet)

	if raw.BlockchainType != entity.TopologyUTXO {
		t.Fatalf("BlockchainType = %q, want %q", raw.BlockchainType, entity.TopologyUTXO)
	}
	if !almostEqual(raw.TotalReceived, 10) {
		t.Errorf("TotalReceived = %v, want 10 (sum of input values)", raw.TotalReceived)
	}
	if !almostEqual(raw.TotalSent, 5.5) {
		t.Errorf("TotalSent = %v, want 5.5 (sum of output values)", raw.TotalSent)
	}
	if !almostEqual(raw.AvgInputsPerTx, 2) {
		t.Errorf("AvgInputsPerTx = %v, want 2", raw.AvgInputsPerTx)
	}
	// h2 has no recorded outputs, so the floor of one output per settled
	// transaction applies: (1 + 1) / 2.
	if !almostEqual(raw.AvgOutputsPerTx, 1) {
		t.Errorf("AvgOutputsPerTx = %v, want 1", raw.AvgOutputsPerTx)
	}
	if raw.OutputsPerTx["h2"] != 1 {
		t.Errorf("OutputsPerTx[h2] = %d, want floored 1", raw.OutputsPerTx["h2"])
	}
	if raw.IncomingTxCount != 1 || raw.OutgoingTxCount != 1 {
		t.Errorf("Incoming/Outgoing = %d/%d, want 1/1", raw.IncomingTxCount, raw.OutgoingTxCount)
	}
	if !almostEqual(raw.AgeDays, 10) {
		t.Errorf("AgeDays = %v, want 10", raw.AgeDays)
	}
}

func TestExtractAccount(t *testing.T) {
	topo := newTestTopology(t)
	wallet := &entity.WalletData{
		Address: "0xme",
		Chain:   "ethereum",
		Balance: 30,
		Transactions: []entity.Transaction{
			{Hash: "h1", Timestamp: testObservedAt - 3*86400, Value: 40, From: "0xa", To: "0xme"},
			{Hash: "h2", Timestamp: testObservedAt - 2*86400, Value: 15, From: "0xme", To: "0xb"},
			// No address match on either side, direction falls back to Type
			{Hash: "h3", Timestamp: testObservedAt - 86400, Value: 5, From: "0xc", To: "0xd", Type: entity.TxReceive},
		},
	}

	raw := topo.Extract(wallet)

	if raw.BlockchainType != entity.TopologyAccount {
		t.Fatalf("BlockchainType = %q, want %q", raw.BlockchainType, entity.TopologyAccount)
	}
	if !almostEqual(raw.TotalReceived, 45) {
		t.Errorf("TotalReceived = %v, want 45", raw.TotalReceived)
	}
	if !almostEqual(raw.TotalSent, 15) {
		t.Errorf("TotalSent = %v, want 15", raw.TotalSent)
	}
	if raw.IncomingTxCount != 2 || raw.OutgoingTxCount != 1 {
		t.Errorf("Incoming/Outgoing = %d/%d, want 2/1", raw.IncomingTxCount, raw.OutgoingTxCount)
	}
	// Account transfers always synthesize one input and one output
	if !almostEqual(raw.AvgInputsPerTx, 1) || !almostEqual(raw.AvgOutputsPerTx, 1) {
		t.Errorf("Avg inputs/outputs = %v/%v, want 1/1", raw.AvgInputsPerTx, raw.AvgOutputsPerTx)
	}
	for hash, outs := range raw.OutputsPerTx {
		if outs < 1 {
			t.Errorf("OutputsPerTx[%s] = %d, every transaction must carry at least one output", hash, outs)
		}
	}
	if raw.FirstSeen != testObservedAt-3*86400 || raw.LastSeen != testObservedAt-86400 {
		t.Errorf("FirstSeen/LastSeen = %d/%d, want bounds of timestamps", raw.FirstSeen, raw.LastSeen)
	}
}

func TestAggregateParityAcrossTopologies(t *testing.T) {
	topo := newTestTopology(t)

	// The same logical history, once in account form and once in UTXO form:
	// two receives of 100 and 50, one send of 30
	account := &entity.WalletData{
		Address: "0xme",
		Chain:   "ethereum",
		Balance: 120,
		Transactions: []entity.Transaction{
			{Hash: "r1", Timestamp: testObservedAt - 3*86400, Value: 100, From: "0xa", To: "0xme", Type: entity.TxReceive},
			{Hash: "r2", Timestamp: testObservedAt - 2*86400, Value: 50, From: "0xb", To: "0xme", Type: entity.TxReceive},
			{Hash: "s1", Timestamp: testObservedAt - 86400, Value: 30, From: "0xme", To: "0xc", Type: entity.TxSend},
		},
	}
	utxo := &entity.WalletData{
		Address: "bc1me",
		Chain:   "bitcoin",
		Balance: 120,
		Transactions: []entity.Transaction{
			{Hash: "r1", Timestamp: testObservedAt - 3*86400, Inputs: []float64{100}, InputCount: 1, Type: entity.TxReceive},
			{Hash: "r2", Timestamp: testObservedAt - 2*86400, Inputs: []float64{50}, InputCount: 1, Type: entity.TxReceive},
			{Hash: "s1", Timestamp: testObservedAt - 86400, Outputs: []float64{30}, OutputCount: 1, Type: entity.TxSend},
		},
	}

	rawAccount := topo.Extract(account)
	rawUTXO := topo.Extract(utxo)

	if !almostEqual(rawAccount.TotalReceived, rawUTXO.TotalReceived) {
		t.Errorf("TotalReceived diverges: account %v vs utxo %v", rawAccount.TotalReceived, rawUTXO.TotalReceived)
	}
	if !almostEqual(rawAccount.TotalSent, rawUTXO.TotalSent) {
		t.Errorf("TotalSent diverges: account %v vs utxo %v", rawAccount.TotalSent, rawUTXO.TotalSent)
	}
	if rawAccount.IncomingTxCount != rawUTXO.IncomingTxCount || rawAccount.OutgoingTxCount != rawUTXO.OutgoingTxCount {
		t.Errorf("direction counts diverge: account %d/%d vs utxo %d/%d",
			rawAccount.IncomingTxCount, rawAccount.OutgoingTxCount,
			rawUTXO.IncomingTxCount, rawUTXO.OutgoingTxCount)
	}
	if !almostEqual(rawAccount.AgeDays, rawUTXO.AgeDays) {
		t.Errorf("AgeDays diverges: account %v vs utxo %v", rawAccount.AgeDays, rawUTXO.AgeDays)
	}
}
