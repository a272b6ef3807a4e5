package creators

import (
	"context"
	"errors"

	"github.com/killallgit/persona-api/internal/models"
)

// ErrCreatorNotFound is returned when no creator has the requested ID
var ErrCreatorNotFound = errors.New("creator not found")

// CreatorRepository defines the data access interface for creators
type CreatorRepository interface {
	// Create/Update
	SaveCreator(ctx context.Context, creator *models.Creator) error

	// Read
	GetCreator(ctx context.Context, id string) (*models.Creator, error)
	GetCreatorByChannel(ctx context.Context, channelID, teamID string) (*models.Creator, error)
	ListCreators(ctx context.Context, teamID string) ([]models.Creator, error)
}
