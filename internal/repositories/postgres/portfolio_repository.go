package postgres

import (
	"context"
	"errors"
	"fmt"

	"stream-service/internal/models"

	"gorm.io/gorm"
)

var ErrPortfolioNotFound = errors.New("portfolio not found")

type PortfolioRepository struct {
	db *gorm.DB
}

func NewPortfolioRepository(db *gorm.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

func (r *PortfolioRepository) FindByID(ctx context.Context, id uint) (*models.Portfolio, error) {
	var p models.Portfolio
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}
	return &p, nil
}

// HasActiveCopy reports whether follower currently copies leader.
func (r *PortfolioRepository) HasActiveCopy(ctx context.Context, followerID, leaderID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CopyRelationship{}).
		Where("follower_id = ? AND leader_id = ? AND active = ?", followerID, leaderID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check copy relationship: %w", err)
	}
	return count > 0, nil
}
