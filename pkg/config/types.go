package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment  string             `mapstructure:"environment"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Embedding    EmbeddingConfig    `mapstructure:"embedding"`
	VectorStore  VectorStoreConfig  `mapstructure:"vector_store"`
	KeywordIndex KeywordIndexConfig `mapstructure:"keyword_index"`
	VideoSource  VideoSourceConfig  `mapstructure:"video_source"`
	Ingestion    IngestionConfig    `mapstructure:"ingestion"`
	Search       SearchConfig       `mapstructure:"search"`
	Jobs         JobsConfig         `mapstructure:"jobs"`
	Security     SecurityConfig     `mapstructure:"security"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
}

// DatabaseConfig contains the metadata database settings
type DatabaseConfig struct {
	Path       string `mapstructure:"path"`
	LogQueries bool   `mapstructure:"log_queries"`
}

// RedisConfig contains the key-value store settings. An empty Addr selects
// the in-process store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// EmbeddingConfig contains embedding provider settings
type EmbeddingConfig struct {
	Provider     string        `mapstructure:"provider"` // "openai" or "hash"
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	Dimensions   int           `mapstructure:"dimensions"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
	RateLimit    int           `mapstructure:"rate_limit"` // requests per second
}

// VectorStoreConfig selects and configures the vector index provider
type VectorStoreConfig struct {
	Provider       string        `mapstructure:"provider"` // "local", "qdrant" or "pgvector"
	IndexName      string        `mapstructure:"index_name"`
	QdrantURL      string        `mapstructure:"qdrant_url"`
	QdrantAPIKey   string        `mapstructure:"qdrant_api_key"`
	PostgresDSN    string        `mapstructure:"postgres_dsn"`
	BatchSize      int           `mapstructure:"batch_size"`
	BatchDelay     time.Duration `mapstructure:"batch_delay"`
	MinScore       float64       `mapstructure:"min_score"`
	MaxStoredChars int           `mapstructure:"max_stored_chars"`
}

// KeywordIndexConfig configures the bleve full-text index
type KeywordIndexConfig struct {
	Path string `mapstructure:"path"` // empty keeps the index in memory
}

// VideoSourceConfig configures the video platform client
type VideoSourceConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	CaptionURL  string        `mapstructure:"caption_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxVideos   int           `mapstructure:"max_videos"`
	UserAgent   string        `mapstructure:"user_agent"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

// IngestionConfig contains ingestion pipeline settings
type IngestionConfig struct {
	Timeout            time.Duration `mapstructure:"timeout"`
	MinVideoMinutes    float64       `mapstructure:"min_video_minutes"`
	MaxVideoMinutes    float64       `mapstructure:"max_video_minutes"`
	MinDescriptionLen  int           `mapstructure:"min_description_length"`
	ChunkMaxTokens     int           `mapstructure:"chunk_max_tokens"`
	ChunkMinChars      int           `mapstructure:"chunk_min_chars"`
	ChunkMaxChars      int           `mapstructure:"chunk_max_chars"`
	RequireEntitlement bool          `mapstructure:"require_entitlement"`
}

// SearchConfig contains hybrid search settings
type SearchConfig struct {
	DefaultLimit   int     `mapstructure:"default_limit"`
	SemanticWeight float64 `mapstructure:"semantic_weight"`
	KeywordWeight  float64 `mapstructure:"keyword_weight"`
	OverlapBoost   float64 `mapstructure:"overlap_boost"`
	UseRawQuery    bool    `mapstructure:"use_raw_query"`
	// QueryCacheTTL keeps query vectors in the key-value store; zero disables it
	QueryCacheTTL time.Duration `mapstructure:"query_cache_ttl"`
}

// JobsConfig contains job retention and worker settings
type JobsConfig struct {
	Workers      int           `mapstructure:"workers"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Retention    time.Duration `mapstructure:"retention"`
}

// SecurityConfig contains CORS settings
type SecurityConfig struct {
	EnableCORS  bool     `mapstructure:"enable_cors"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}
