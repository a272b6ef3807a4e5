package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		// A local .env is optional; real environment variables win
		_ = godotenv.Load()

		setDefaults()

		viper.SetEnvPrefix("PERSONA")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		configPath := filepath.Clean("./config/settings.yaml")
		viper.SetConfigFile(configPath)

		if err := viper.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				initErr = fmt.Errorf("error reading config file %s: %w", configPath, err)
				return
			}
		}

		if err := validate(); err != nil {
			initErr = fmt.Errorf("invalid configuration: %w", err)
		}
	})

	return initErr
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// validate validates the configuration using Viper values
func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}

	switch p := viper.GetString("vector_store.provider"); p {
	case "local", "qdrant", "pgvector":
	default:
		return fmt.Errorf("unknown vector store provider: %q", p)
	}

	switch p := viper.GetString("embedding.provider"); p {
	case "openai", "hash":
	default:
		return fmt.Errorf("unknown embedding provider: %q", p)
	}

	if viper.GetInt("embedding.dimensions") <= 0 {
		return fmt.Errorf("embedding dimensions must be positive")
	}

	if err := validateAPIKeys(); err != nil {
		return err
	}

	// Auto-correct invalid worker count
	if viper.GetInt("jobs.workers") <= 0 {
		viper.Set("jobs.workers", 2)
	}

	if viper.GetInt("vector_store.batch_size") <= 0 || viper.GetInt("vector_store.batch_size") > 100 {
		viper.Set("vector_store.batch_size", 100)
	}

	return nil
}

// validateAPIKeys rejects placeholder credentials in production
func validateAPIKeys() error {
	env := viper.GetString("environment")
	isProduction := env == "production" || env == "prod"

	placeholders := map[string]bool{
		"YOUR_KEY_HERE": true,
		"YOUR_API_KEY":  true,
		"changeme":      true,
		"CHANGEME":      true,
		"":              true,
	}

	checks := []struct {
		key  string
		name string
		used bool
	}{
		{"embedding.api_key", "embedding API key", viper.GetString("embedding.provider") == "openai"},
		{"video_source.api_key", "video source API key", true},
	}

	for _, c := range checks {
		if !c.used || !placeholders[viper.GetString(c.key)] {
			continue
		}
		if isProduction {
			return fmt.Errorf("invalid %s: cannot use placeholder values in production", c.name)
		}
		fmt.Printf("Warning: %s is using a placeholder value\n", c.name)
	}

	return nil
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("invalid embedding dimensions: %d", c.Embedding.Dimensions)
	}

	if c.Search.SemanticWeight < 0 || c.Search.KeywordWeight < 0 {
		return fmt.Errorf("search weights must not be negative")
	}

	if c.Ingestion.MinVideoMinutes > c.Ingestion.MaxVideoMinutes && c.Ingestion.MaxVideoMinutes > 0 {
		return fmt.Errorf("invalid video duration band: %.0f-%.0f minutes",
			c.Ingestion.MinVideoMinutes, c.Ingestion.MaxVideoMinutes)
	}

	if c.Jobs.Workers <= 0 {
		c.Jobs.Workers = 2
	}

	if c.VectorStore.BatchSize <= 0 || c.VectorStore.BatchSize > 100 {
		c.VectorStore.BatchSize = 100
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)

	// Database defaults
	viper.SetDefault("database.path", "./data/persona.db")
	viper.SetDefault("database.log_queries", false)

	// Redis defaults (empty addr = in-process store)
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.db", 0)

	// Embedding defaults
	viper.SetDefault("embedding.provider", "hash")
	viper.SetDefault("embedding.base_url", "https://api.openai.com/v1")
	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.dimensions", 1536)
	viper.SetDefault("embedding.timeout", 30*time.Second)
	viper.SetDefault("embedding.max_attempts", 3)
	viper.SetDefault("embedding.initial_delay", 1*time.Second)
	viper.SetDefault("embedding.max_delay", 10*time.Second)
	viper.SetDefault("embedding.rate_limit", 20)

	// Vector store defaults
	viper.SetDefault("vector_store.provider", "local")
	viper.SetDefault("vector_store.index_name", "persona-chunks")
	viper.SetDefault("vector_store.qdrant_url", "http://localhost:6333")
	viper.SetDefault("vector_store.batch_size", 100)
	viper.SetDefault("vector_store.batch_delay", 200*time.Millisecond)
	viper.SetDefault("vector_store.min_score", 0.25)
	viper.SetDefault("vector_store.max_stored_chars", 4000)

	// Keyword index defaults
	viper.SetDefault("keyword_index.path", "./data/keyword.bleve")

	// Video source defaults
	viper.SetDefault("video_source.base_url", "https://www.googleapis.com/youtube/v3")
	viper.SetDefault("video_source.caption_url", "https://video.google.com/timedtext")
	viper.SetDefault("video_source.timeout", 20*time.Second)
	viper.SetDefault("video_source.max_videos", 50)
	viper.SetDefault("video_source.user_agent", "PersonaAPI/1.0")
	viper.SetDefault("video_source.max_attempts", 3)

	// Ingestion defaults
	viper.SetDefault("ingestion.timeout", 30*time.Minute)
	viper.SetDefault("ingestion.min_video_minutes", 2)
	viper.SetDefault("ingestion.max_video_minutes", 25)
	viper.SetDefault("ingestion.min_description_length", 50)
	viper.SetDefault("ingestion.chunk_max_tokens", 400)
	viper.SetDefault("ingestion.chunk_min_chars", 100)
	viper.SetDefault("ingestion.chunk_max_chars", 2500)
	viper.SetDefault("ingestion.require_entitlement", true)

	// Search defaults
	viper.SetDefault("search.default_limit", 5)
	viper.SetDefault("search.semantic_weight", 0.7)
	viper.SetDefault("search.keyword_weight", 0.3)
	viper.SetDefault("search.overlap_boost", 0.1)
	viper.SetDefault("search.use_raw_query", true)
	viper.SetDefault("search.query_cache_ttl", time.Hour)

	// Jobs defaults
	viper.SetDefault("jobs.workers", 2)
	viper.SetDefault("jobs.poll_interval", 1*time.Second)
	viper.SetDefault("jobs.retention", 24*time.Hour)

	// Security defaults
	viper.SetDefault("security.enable_cors", true)
	viper.SetDefault("security.cors_origins", []string{"*"})

	// Logging defaults
	viper.SetDefault("logging.level", "info")
}
