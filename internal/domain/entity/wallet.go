package entity

// TransactionType indicates the direction of a transaction relative to the
// wallet being analyzed.
type TransactionType string

const (
	TxSend    TransactionType = "send"
	TxReceive TransactionType = "receive"
)

// BlockchainTopology identifies the transaction model of a chain.
type BlockchainTopology string

const (
	TopologyUTXO    BlockchainTopology = "utxo"
	TopologyAccount BlockchainTopology = "account"
)

// Transaction is the canonical normalized transaction record. Heterogeneous
// upstream payloads are mapped onto this shape by the validator; all analysis
// code consumes this form only.
type Transaction struct {
	Hash      string          `json:"hash"`
	Timestamp int64           `json:"timestamp"` // unix seconds
	Value     float64         `json:"value"`
	From      string          `json:"from,omitempty"`
	To        string          `json:"to,omitempty"`
	Fee       float64         `json:"fee,omitempty"`
	Type      TransactionType `json:"type"`

	// UTXO chains carry per-transaction input/output value lists. Account
	// chains leave these empty and the topology adapter synthesizes counts.
	Inputs      []float64 `json:"inputs,omitempty"`
	Outputs     []float64 `json:"outputs,omitempty"`
	InputCount  int       `json:"input_count,omitempty"`
	OutputCount int       `json:"output_count,omitempty"`
}

// WalletData is the full picture of a wallet handed to the classification
// engines. It is treated as immutable for the duration of a classification.
type WalletData struct {
	Address              string        `json:"address"`
	Chain                string        `json:"chain"`
	Balance              float64       `json:"balance"`
	Transactions         []Transaction `json:"transactions"`
	FirstSeen            int64         `json:"first_seen,omitempty"`
	LastSeen             int64         `json:"last_seen,omitempty"`
	TotalReceived        float64       `json:"total_received,omitempty"`
	TotalSent            float64       `json:"total_sent,omitempty"`
	TransactionCount     int64         `json:"transaction_count,omitempty"`
	UniqueCounterparties int64         `json:"unique_counterparties,omitempty"`
}

// RawMetrics is the topology-normalized view of a wallet's activity. Both the
// UTXO and the account adapters produce this shape so that every metric above
// them is chain-agnostic.
type RawMetrics struct {
	TxCount         int64   `json:"tx_count"`
	TotalReceived   float64 `json:"total_received"`
	TotalSent       float64 `json:"total_sent"`
	CurrentBalance  float64 `json:"current_balance"`
	FirstSeen       int64   `json:"first_seen"`
	LastSeen        int64   `json:"last_seen"`
	ObservedAt      int64   `json:"observed_at"`
	AgeDays         float64 `json:"age_days"`
	AvgInputsPerTx  float64 `json:"avg_inputs_per_tx"`
	AvgOutputsPerTx float64 `json:"avg_outputs_per_tx"`

	// Per-transaction structural counts keyed by transaction hash. Every key
	// present in InputsPerTx is guaranteed an entry >= 1 in OutputsPerTx.
	InputsPerTx  map[string]int `json:"inputs_per_tx"`
	OutputsPerTx map[string]int `json:"outputs_per_tx"`

	InputValues  []float64 `json:"input_values"`
	OutputValues []float64 `json:"output_values"`
	Timestamps   []int64   `json:"timestamps"`

	IncomingTxCount int64              `json:"incoming_tx_count"`
	OutgoingTxCount int64              `json:"outgoing_tx_count"`
	BlockchainType  BlockchainTopology `json:"blockchain_type"`
}
