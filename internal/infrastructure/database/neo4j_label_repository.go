package database

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"wallet-behavior-engine/internal/domain/entity"
	"wallet-behavior-engine/internal/domain/repository"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jLabelRepository implements BehaviorLabelRepository using Neo4j
type Neo4jLabelRepository struct {
	client *Neo4JClient
}

// NewNeo4jLabelRepository creates a new Neo4j-based behavior label repository
func NewNeo4jLabelRepository(client *Neo4JClient) repository.BehaviorLabelRepository {
	return &Neo4jLabelRepository{
		client: client,
	}
}

// SaveReport creates or updates the behavior label for a wallet
func (r *Neo4jLabelRepository) SaveReport(ctx context.Context, report *entity.WalletReport) error {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	// Per-archetype scores are stored as a JSON string property
	scoresJSON, _ := json.Marshal(report.Scores)

	query := `
		MERGE (w:Wallet {address: $address})
		SET w.behavior_class = $behaviorClass,
			w.confidence = $confidence,
			w.risk_level = $riskLevel,
			w.analysis_stage = $stage,
			w.chain = $chain,
			w.archetype_scores = $scores,
			w.classified_at = $classifiedAt,
			w.classification_count = COALESCE(w.classification_count, 0) + 1,
			w.updated_at = datetime()
		RETURN w.address as address
	`

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return tx.Run(ctx, query, map[string]interface{}{
			"address":       strings.ToLower(report.Address),
			"behaviorClass": string(report.Class),
			"confidence":    report.Confidence,
			"riskLevel":     string(report.RiskLevel),
			"stage":         string(report.Stage),
			"chain":         report.Chain,
			"scores":        string(scoresJSON),
			"classifiedAt":  report.ClassifiedAt,
		})
	})

	return err
}

// GetReport retrieves the stored label for an address, nil when absent
func (r *Neo4jLabelRepository) GetReport(ctx context.Context, address string) (*entity.WalletReport, error) {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (w:Wallet {address: $address})
		WHERE w.behavior_class IS NOT NULL
		RETURN w.address as address,
			   w.behavior_class as behaviorClass,
			   w.confidence as confidence,
			   w.risk_level as riskLevel,
			   w.analysis_stage as stage,
			   w.chain as chain,
			   w.archetype_scores as scores,
			   w.classified_at as classifiedAt
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return tx.Run(ctx, query, map[string]interface{}{
			"address": strings.ToLower(address),
		})
	})
	if err != nil {
		return nil, err
	}

	records := result.(neo4j.ResultWithContext)
	if !records.Next(ctx) {
		return nil, nil // No label stored
	}
	return mapRecordToReport(records.Record()), nil
}

// GetWalletsByClass lists wallets carrying the given behavior class
func (r *Neo4jLabelRepository) GetWalletsByClass(ctx context.Context, class entity.WalletClass, limit int) ([]*entity.WalletReport, error) {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	if limit <= 0 {
		limit = 100
	}

	query := `
		MATCH (w:Wallet)
		WHERE w.behavior_class = $behaviorClass
		RETURN w.address as address,
			   w.behavior_class as behaviorClass,
			   w.confidence as confidence,
			   w.risk_level as riskLevel,
			   w.analysis_stage as stage,
			   w.chain as chain,
			   w.archetype_scores as scores,
			   w.classified_at as classifiedAt
		ORDER BY w.confidence DESC
		LIMIT $limit
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return tx.Run(ctx, query, map[string]interface{}{
			"behaviorClass": string(class),
			"limit":         limit,
		})
	})
	if err != nil {
		return nil, err
	}

	return mapRecordsToReports(ctx, result.(neo4j.ResultWithContext))
}

// GetHighRiskWallets lists wallets whose class implies elevated risk
func (r *Neo4jLabelRepository) GetHighRiskWallets(ctx context.Context, limit int) ([]*entity.WalletReport, error) {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	if limit <= 0 {
		limit = 100
	}

	query := `
		MATCH (w:Wallet)
		WHERE w.risk_level IN ['HIGH', 'CRITICAL']
		RETURN w.address as address,
			   w.behavior_class as behaviorClass,
			   w.confidence as confidence,
			   w.risk_level as riskLevel,
			   w.analysis_stage as stage,
			   w.chain as chain,
			   w.archetype_scores as scores,
			   w.classified_at as classifiedAt
		ORDER BY
			CASE w.risk_level
				WHEN 'CRITICAL' THEN 1
				WHEN 'HIGH' THEN 2
			END,
			w.confidence DESC
		LIMIT $limit
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return tx.Run(ctx, query, map[string]interface{}{
			"limit": limit,
		})
	})
	if err != nil {
		return nil, err
	}

	return mapRecordsToReports(ctx, result.(neo4j.ResultWithContext))
}

// Helper methods for mapping Neo4j records to entities

func mapRecordToReport(record *neo4j.Record) *entity.WalletReport {
	report := &entity.WalletReport{
		Address:      getString(record, "address"),
		Class:        entity.WalletClass(getString(record, "behaviorClass")),
		Confidence:   getFloat64(record, "confidence"),
		RiskLevel:    entity.RiskLevel(getString(record, "riskLevel")),
		Stage:        entity.AnalysisStage(getString(record, "stage")),
		Chain:        getString(record, "chain"),
		ClassifiedAt: getTime(record, "classifiedAt"),
	}

	if scoresStr := getString(record, "scores"); scoresStr != "" {
		json.Unmarshal([]byte(scoresStr), &report.Scores)
	}

	return report
}

func mapRecordsToReports(ctx context.Context, records neo4j.ResultWithContext) ([]*entity.WalletReport, error) {
	reports := []*entity.WalletReport{}
	for records.Next(ctx) {
		reports = append(reports, mapRecordToReport(records.Record()))
	}
	return reports, nil
}

// Helper functions to safely extract values from Neo4j records

func getString(record *neo4j.Record, key string) string {
	if val, ok := record.Get(key); ok && val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getFloat64(record *neo4j.Record, key string) float64 {
	if val, ok := record.Get(key); ok && val != nil {
		if f, ok := val.(float64); ok {
			return f
		}
		if i, ok := val.(int64); ok {
			return float64(i)
		}
	}
	return 0.0
}

func getTime(record *neo4j.Record, key string) time.Time {
	if val, ok := record.Get(key); ok && val != nil {
		if t, ok := val.(time.Time); ok {
			return t
		}
		if str, ok := val.(string); ok {
			if t, err := time.Parse(time.RFC3339, str); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
