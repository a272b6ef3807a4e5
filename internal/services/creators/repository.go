// Package creators persists the per-creator ingestion record.
package creators

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/killallgit/persona-api/internal/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) CreatorRepository {
	return &Repository{db: db}
}

// SaveCreator inserts the creator or overwrites every column of an existing
// record, zero values included
func (r *Repository) SaveCreator(ctx context.Context, creator *models.Creator) error {
	if creator.ID == "" {
		return fmt.Errorf("saving creator: missing id")
	}
	if err := r.db.WithContext(ctx).Save(creator).Error; err != nil {
		return fmt.Errorf("saving creator %s: %w", creator.ID, err)
	}
	return nil
}

// GetCreator retrieves a creator by ID
func (r *Repository) GetCreator(ctx context.Context, id string) (*models.Creator, error) {
	var creator models.Creator
	if err := r.db.WithContext(ctx).First(&creator, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCreatorNotFound
		}
		return nil, fmt.Errorf("getting creator: %w", err)
	}
	return &creator, nil
}

// GetCreatorByChannel retrieves the creator a team registered for a channel
func (r *Repository) GetCreatorByChannel(ctx context.Context, channelID, teamID string) (*models.Creator, error) {
	var creator models.Creator
	err := r.db.WithContext(ctx).
		Where("channel_id = ? AND team_id = ?", channelID, teamID).
		First(&creator).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCreatorNotFound
		}
		return nil, fmt.Errorf("getting creator by channel: %w", err)
	}
	return &creator, nil
}

// ListCreators returns a team's creators, most recently updated first
func (r *Repository) ListCreators(ctx context.Context, teamID string) ([]models.Creator, error) {
	var creators []models.Creator
	if err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("updated_at DESC").
		Find(&creators).Error; err != nil {
		return nil, fmt.Errorf("listing creators: %w", err)
	}
	return creators, nil
}
