// Package entitlement decides whether a team may ingest a channel.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/killallgit/persona-api/internal/models"
)

// Checker answers entitlement questions for the ingestion pipeline
type Checker interface {
	IsEntitled(ctx context.Context, teamID, channelID string) (bool, error)
}

// Repository reads and writes entitlements in the metadata database
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// Ensure Repository implements Checker interface
var _ Checker = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// IsEntitled reports whether the team holds an active, enabled and unexpired
// entitlement for the channel. A missing record is not an error.
func (r *Repository) IsEntitled(ctx context.Context, teamID, channelID string) (bool, error) {
	var e models.Entitlement
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND channel_id = ?", teamID, channelID).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading entitlement: %w", err)
	}
	return e.IsValid(r.now()), nil
}

// Grant creates or replaces the team's entitlement for the channel
func (r *Repository) Grant(ctx context.Context, e *models.Entitlement) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "team_id"}, {Name: "channel_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"subscription_active", "feature_enabled", "expires_at", "updated_at"}),
		}).
		Create(e).Error
	if err != nil {
		return fmt.Errorf("granting entitlement: %w", err)
	}
	return nil
}

// Revoke disables the feature for the team's channel
func (r *Repository) Revoke(ctx context.Context, teamID, channelID string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Entitlement{}).
		Where("team_id = ? AND channel_id = ?", teamID, channelID).
		Update("feature_enabled", false).Error
	if err != nil {
		return fmt.Errorf("revoking entitlement: %w", err)
	}
	return nil
}

// AllowAll entitles every team. It backs deployments that run with
// entitlement checks switched off.
type AllowAll struct{}

func (AllowAll) IsEntitled(context.Context, string, string) (bool, error) {
	return true, nil
}
