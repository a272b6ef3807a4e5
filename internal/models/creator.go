package models

import (
	"time"
)

// Creator is the tenant whose transcripts back a persona
type Creator struct {
	ID                string     `json:"id" gorm:"primaryKey"`
	ChannelID         string     `json:"channelId" gorm:"not null;index:idx_creators_channel_team,priority:1"`
	TeamID            string     `json:"teamId" gorm:"not null;index:idx_creators_channel_team,priority:2"`
	Name              string     `json:"name"`
	Description       string     `json:"description" gorm:"type:text"`
	CustomDescription string     `json:"customDescription" gorm:"type:text"`
	BackgroundText    string     `json:"backgroundText" gorm:"type:text"`
	IngestionStatus   JobStatus  `json:"ingestionStatus"`
	LastJobID         string     `json:"lastJobId"`
	ProcessedVideos   int        `json:"processedVideos"`
	FailedVideos      int        `json:"failedVideos"`
	ProcessedChunks   int        `json:"processedChunks"`
	TotalChunks       int        `json:"totalChunks"`
	CanReprocess      bool       `json:"canReprocess"`
	LastError         string     `json:"lastError,omitempty" gorm:"type:text"`
	LastIngestedAt    *time.Time `json:"lastIngestedAt"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Creator) TableName() string {
	return "creators"
}

// Entitlement grants a team access to persona ingestion for a channel
type Entitlement struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	TeamID             string     `json:"teamId" gorm:"not null;uniqueIndex:idx_entitlements_team_channel,priority:1"`
	ChannelID          string     `json:"channelId" gorm:"not null;uniqueIndex:idx_entitlements_team_channel,priority:2"`
	SubscriptionActive bool       `json:"subscriptionActive"`
	FeatureEnabled     bool       `json:"featureEnabled"`
	ExpiresAt          *time.Time `json:"expiresAt"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Entitlement) TableName() string {
	return "entitlements"
}

// IsValid reports whether the entitlement allows ingestion at now
func (e *Entitlement) IsValid(now time.Time) bool {
	if !e.SubscriptionActive || !e.FeatureEnabled {
		return false
	}
	return e.ExpiresAt == nil || now.Before(*e.ExpiresAt)
}
