package types

// IngestionRequest starts ingestion of a channel for a team's creator
type IngestionRequest struct {
	ChannelID         string `json:"channelId" binding:"required" example:"UC_x5XG1OV2P6uZZ5FSM9Ttw"`
	TeamID            string `json:"teamId" binding:"required" example:"team-42"`
	CreatorID         string `json:"creatorId" binding:"required" example:"creator-7"`
	CustomDescription string `json:"customDescription,omitempty" example:"Woodworker who explains joinery for beginners"`
	BackgroundText    string `json:"backgroundText,omitempty"`
}

// SearchRequest represents a hybrid search over one creator's content
type SearchRequest struct {
	CreatorID string `json:"creatorId" binding:"required" example:"creator-7"`
	Query     string `json:"query" binding:"required" example:"what glue do you use"`
	Limit     int    `json:"limit,omitempty" example:"5"`
}
