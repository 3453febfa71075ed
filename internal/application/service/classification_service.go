package service

import (
	"context"
	"fmt"
	"time"

	"wallet-behavior-engine/internal/domain/entity"
	"wallet-behavior-engine/internal/domain/repository"
	domainService "wallet-behavior-engine/internal/domain/service"
	"wallet-behavior-engine/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// ReportPublisher publishes resolved labels downstream. Nil publishers are
// tolerated so the service runs without a broker in library use.
type ReportPublisher interface {
	PublishReport(ctx context.Context, report *entity.WalletReport) error
}

// ClassificationService orchestrates the full pipeline: validate the raw
// payload, score it against every archetype at the requested stage, resolve
// conflicts, then persist and publish the label.
type ClassificationService struct {
	validator    *domainService.Validator
	engines      []*domainService.ClassificationEngine
	resolver     *domainService.HybridResolver
	labelRepo    repository.BehaviorLabelRepository
	publisher    ReportPublisher
	logger       *logger.Logger
	defaultStage entity.AnalysisStage
}

// NewClassificationService creates the application-level classification service
func NewClassificationService(
	validator *domainService.Validator,
	engines []*domainService.ClassificationEngine,
	resolver *domainService.HybridResolver,
	labelRepo repository.BehaviorLabelRepository,
	publisher ReportPublisher,
	defaultStage entity.AnalysisStage,
	logger *logger.Logger,
) *ClassificationService {
	if !defaultStage.IsValid() {
		defaultStage = entity.StageBasic
	}
	return &ClassificationService{
		validator:    validator,
		engines:      engines,
		resolver:     resolver,
		labelRepo:    labelRepo,
		publisher:    publisher,
		logger:       logger.WithComponent("classification-service"),
		defaultStage: defaultStage,
	}
}

// ClassifyWallet runs the pipeline for one raw wallet payload
func (s *ClassificationService) ClassifyWallet(ctx context.Context, payload map[string]any, stage entity.AnalysisStage) (*entity.WalletReport, error) {
	if !stage.IsValid() {
		stage = s.defaultStage
	}

	wallet, err := s.validator.Normalize(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to validate wallet payload: %w", err)
	}

	report := s.classify(wallet, stage)

	if s.labelRepo != nil {
		if err := s.labelRepo.SaveReport(ctx, report); err != nil {
			return nil, fmt.Errorf("failed to save behavior label for %s: %w", wallet.Address, err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishReport(ctx, report); err != nil {
			s.logger.Warn("Failed to publish behavior label",
				zap.String("address", wallet.Address),
				zap.Error(err))
		}
	}

	s.logger.Info("Classified wallet",
		zap.String("address", wallet.Address),
		zap.String("class", string(report.Class)),
		zap.String("risk_level", string(report.RiskLevel)),
		zap.String("stage", string(stage)),
		zap.Float64("confidence", report.Confidence))

	return report, nil
}

// ClassifyWalletData runs the pipeline for an already-normalized wallet,
// bypassing validation. Useful for callers that build WalletData themselves.
func (s *ClassificationService) ClassifyWalletData(ctx context.Context, wallet *entity.WalletData, stage entity.AnalysisStage) (*entity.WalletReport, error) {
	if !stage.IsValid() {
		stage = s.defaultStage
	}
	report := s.classify(wallet, stage)
	if s.labelRepo != nil {
		if err := s.labelRepo.SaveReport(ctx, report); err != nil {
			return nil, fmt.Errorf("failed to save behavior label for %s: %w", wallet.Address, err)
		}
	}
	return report, nil
}

// classify scores the wallet against every archetype and resolves the label
func (s *ClassificationService) classify(wallet *entity.WalletData, stage entity.AnalysisStage) *entity.WalletReport {
	scores := make(map[entity.WalletClass]*entity.ClassificationScore, len(s.engines))
	results := make([]entity.ClassificationResult, 0, len(s.engines))

	for _, engine := range s.engines {
		score := engine.Classify(wallet, stage)
		scores[engine.Archetype()] = score
		results = append(results, entity.ClassificationResult{
			Class:      engine.Archetype(),
			Confidence: score.Confidence,
			Balance:    wallet.Balance,
		})
	}

	final := s.resolver.Resolve(results)
	confidence := 0.0
	if score, ok := scores[final]; ok {
		confidence = score.Confidence
	}

	return &entity.WalletReport{
		Address:      wallet.Address,
		Chain:        wallet.Chain,
		Class:        final,
		Confidence:   confidence,
		RiskLevel:    final.DefaultRiskLevel(),
		Stage:        stage,
		Scores:       scores,
		ClassifiedAt: time.Now(),
	}
}

// ProcessRequestBatch classifies a batch of analysis requests, continuing
// past per-wallet failures
func (s *ClassificationService) ProcessRequestBatch(ctx context.Context, requests []*entity.AnalysisRequest) error {
	failed := 0
	for _, request := range requests {
		stage := entity.ParseStage(request.Stage, s.defaultStage)
		if _, err := s.ClassifyWallet(ctx, request.Wallet, stage); err != nil {
			failed++
			s.logger.Error("Failed to classify wallet from request",
				zap.Error(err))
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to classify %d of %d wallets", failed, len(requests))
	}
	return nil
}

// ClassifyBatch classifies raw payloads directly, returning the reports that
// succeeded
func (s *ClassificationService) ClassifyBatch(ctx context.Context, payloads []map[string]any, stage entity.AnalysisStage) ([]*entity.WalletReport, error) {
	reports := make([]*entity.WalletReport, 0, len(payloads))
	for i, payload := range payloads {
		report, err := s.ClassifyWallet(ctx, payload, stage)
		if err != nil {
			s.logger.Error("Failed to classify wallet in batch",
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		reports = append(reports, report)
	}
	s.logger.Info("Completed batch classification",
		zap.Int("requested", len(payloads)),
		zap.Int("classified", len(reports)))
	return reports, nil
}
