package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/killallgit/persona-api/internal/models"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name   string
		dbPath string
	}{
		{"in-memory database", ":memory:"},
		{"file database in nested directory", filepath.Join(t.TempDir(), "nested", "persona.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := Initialize(tt.dbPath, false)
			require.NoError(t, err)
			require.NotNil(t, conn)
			assert.NotNil(t, conn.DB)
			assert.NoError(t, conn.Close())
		})
	}
}

func TestDB_HealthCheck(t *testing.T) {
	tests := []struct {
		name      string
		setupConn func() *DB
		wantErr   bool
	}{
		{
			name: "healthy connection",
			setupConn: func() *DB {
				conn, _ := Initialize(":memory:", false)
				t.Cleanup(func() { conn.Close() })
				return conn
			},
		},
		{
			name: "closed connection",
			setupConn: func() *DB {
				conn, _ := Initialize(":memory:", false)
				conn.Close()
				return conn
			},
			wantErr: true,
		},
		{
			name:      "nil connection",
			setupConn: func() *DB { return nil },
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.setupConn().HealthCheck()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInitializeWithMigrations(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		db, err := InitializeWithMigrations("", false)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "database path is not configured")
		assert.Nil(t, db)
	})

	t.Run("creates owned tables", func(t *testing.T) {
		db, err := InitializeWithMigrations(filepath.Join(t.TempDir(), "persona.db"), false)
		require.NoError(t, err)
		defer db.Close()

		for _, table := range []string{"creators", "entitlements", "chunk_documents"} {
			var count int64
			err := db.DB.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count).Error
			require.NoError(t, err)
			assert.Equal(t, int64(1), count, "%s table should exist", table)
		}
	})
}

func TestDB_MigrationStatus(t *testing.T) {
	db, err := Initialize(":memory:", false)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.AutoMigrate(&models.Creator{}))

	status, err := db.MigrationStatus()
	require.NoError(t, err)
	require.Len(t, status, 3)

	byTable := map[string]bool{}
	for _, s := range status {
		byTable[s.Table] = s.Exists
	}
	assert.True(t, byTable["creators"])
	assert.False(t, byTable["entitlements"])
	assert.False(t, byTable["chunk_documents"])
}

func TestDB_ChunkDocumentUpsertByIdentity(t *testing.T) {
	db, err := InitializeWithMigrations(":memory:", false)
	require.NoError(t, err)
	defer db.Close()

	doc := models.NewChunkDocument("creator-1", models.EmbeddedChunk{
		Chunk: models.Chunk{Text: "first version", VideoID: "vid1", Index: 0},
	})
	require.NoError(t, db.DB.Save(doc).Error)

	doc = models.NewChunkDocument("creator-1", models.EmbeddedChunk{
		Chunk: models.Chunk{Text: "second version", VideoID: "vid1", Index: 0},
	})
	require.NoError(t, db.DB.Save(doc).Error)

	var docs []models.ChunkDocument
	require.NoError(t, db.DB.Find(&docs).Error)
	require.Len(t, docs, 1)
	assert.Equal(t, "second version", docs[0].Text)
}

func TestDB_Transaction(t *testing.T) {
	db, err := InitializeWithMigrations(":memory:", false)
	require.NoError(t, err)
	defer db.Close()

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Creator{ID: "c1", ChannelID: "UC1", TeamID: "t1"}).Error; err != nil {
			return err
		}
		return gorm.ErrInvalidTransaction
	})
	assert.Error(t, err)

	var count int64
	db.DB.Model(&models.Creator{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
