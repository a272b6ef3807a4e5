package config

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetForTest clears viper state and the init guard so Init can run again
func resetForTest() {
	viper.Reset()
	once = sync.Once{}
	initErr = nil
}

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		cleanup func()
		wantErr bool
		check   func(t *testing.T)
	}{
		{
			name:    "defaults without config file",
			setup:   func() {},
			cleanup: func() {},
			check: func(t *testing.T) {
				assert.Equal(t, 8080, GetInt("server.port"))
				assert.Equal(t, 30*time.Minute, GetDuration("ingestion.timeout"))
				assert.Equal(t, 24*time.Hour, GetDuration("jobs.retention"))
				assert.Equal(t, "local", GetString("vector_store.provider"))
				assert.True(t, GetBool("search.use_raw_query"))
			},
		},
		{
			name: "environment variable override",
			setup: func() {
				os.Setenv("PERSONA_SERVER_PORT", "9090")
				os.Setenv("PERSONA_VECTOR_STORE_MIN_SCORE", "0.4")
			},
			cleanup: func() {
				os.Unsetenv("PERSONA_SERVER_PORT")
				os.Unsetenv("PERSONA_VECTOR_STORE_MIN_SCORE")
			},
			check: func(t *testing.T) {
				assert.Equal(t, 9090, GetInt("server.port"))
				assert.InDelta(t, 0.4, viper.GetFloat64("vector_store.min_score"), 1e-9)
			},
		},
		{
			name: "unknown vector store provider",
			setup: func() {
				os.Setenv("PERSONA_VECTOR_STORE_PROVIDER", "faiss")
			},
			cleanup: func() {
				os.Unsetenv("PERSONA_VECTOR_STORE_PROVIDER")
			},
			wantErr: true,
		},
		{
			name: "invalid port",
			setup: func() {
				os.Setenv("PERSONA_SERVER_PORT", "70000")
			},
			cleanup: func() {
				os.Unsetenv("PERSONA_SERVER_PORT")
			},
			wantErr: true,
		},
		{
			name: "placeholder key rejected in production",
			setup: func() {
				os.Setenv("PERSONA_ENVIRONMENT", "production")
				os.Setenv("PERSONA_VIDEO_SOURCE_API_KEY", "changeme")
			},
			cleanup: func() {
				os.Unsetenv("PERSONA_ENVIRONMENT")
				os.Unsetenv("PERSONA_VIDEO_SOURCE_API_KEY")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetForTest()
			tt.setup()
			defer func() {
				tt.cleanup()
				resetForTest()
			}()

			err := Init()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t)
			}
		})
	}
}

func TestGetConfig(t *testing.T) {
	resetForTest()
	defer resetForTest()

	require.NoError(t, Init())

	cfg, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.VectorStore.BatchSize)
	assert.Equal(t, 4000, cfg.VectorStore.MaxStoredChars)
	assert.InDelta(t, 0.7, cfg.Search.SemanticWeight, 1e-9)
	assert.InDelta(t, 0.3, cfg.Search.KeywordWeight, 1e-9)
	assert.Equal(t, 400, cfg.Ingestion.ChunkMaxTokens)
	assert.InDelta(t, 2.0, cfg.Ingestion.MinVideoMinutes, 1e-9)
	assert.InDelta(t, 25.0, cfg.Ingestion.MaxVideoMinutes, 1e-9)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				Server:    ServerConfig{Host: "localhost", Port: 8080},
				Ingestion: IngestionConfig{MinVideoMinutes: 2, MaxVideoMinutes: 25},
			},
		},
		{
			name:    "invalid port",
			config:  &Config{Server: ServerConfig{Port: 0}},
			wantErr: true,
		},
		{
			name: "negative search weight",
			config: &Config{
				Server: ServerConfig{Port: 8080},
				Search: SearchConfig{SemanticWeight: -1},
			},
			wantErr: true,
		},
		{
			name: "inverted duration band",
			config: &Config{
				Server:    ServerConfig{Port: 8080},
				Ingestion: IngestionConfig{MinVideoMinutes: 30, MaxVideoMinutes: 25},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_ValidateCorrectsDefaults(t *testing.T) {
	cfg := &Config{
		Server:      ServerConfig{Port: 8080},
		VectorStore: VectorStoreConfig{BatchSize: 500},
	}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.Jobs.Workers)
	assert.Equal(t, 100, cfg.VectorStore.BatchSize)
}
