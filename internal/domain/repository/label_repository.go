package repository

import (
	"context"

	"wallet-behavior-engine/internal/domain/entity"
)

// BehaviorLabelRepository defines the persistence boundary for resolved
// wallet behavior labels
type BehaviorLabelRepository interface {
	// SaveReport creates or updates the behavior label for a wallet
	SaveReport(ctx context.Context, report *entity.WalletReport) error

	// GetReport retrieves the stored label for an address, nil when absent
	GetReport(ctx context.Context, address string) (*entity.WalletReport, error)

	// GetWalletsByClass lists wallets carrying the given behavior class
	GetWalletsByClass(ctx context.Context, class entity.WalletClass, limit int) ([]*entity.WalletReport, error)

	// GetHighRiskWallets lists wallets whose class implies elevated risk
	GetHighRiskWallets(ctx context.Context, limit int) ([]*entity.WalletReport, error)
}
