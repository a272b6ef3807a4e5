package models

// SearchSource records which retrieval path produced a result
type SearchSource string

const (
	SourceSemantic SearchSource = "semantic"
	SourceKeyword  SearchSource = "keyword"
	SourceHybrid   SearchSource = "hybrid"
)

// SearchResult is a query-scoped retrieval hit
type SearchResult struct {
	Text     string                 `json:"text"`
	Score    float64                `json:"score"`
	Source   SearchSource           `json:"source"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ScoredText is what the vector store returns for a query
type ScoredText struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
