package documents

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/persona-api/internal/database"
	"github.com/killallgit/persona-api/internal/models"
)

func setupService(t *testing.T) (*Service, *Repository, *KeywordIndex) {
	t.Helper()
	db, err := database.InitializeWithMigrations(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	index, err := OpenKeywordIndex("")
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	repo := NewRepository(db.DB)
	return NewService(repo, index), repo, index
}

func chunk(index int, text string) models.EmbeddedChunk {
	return models.EmbeddedChunk{Chunk: models.Chunk{Text: text, Index: index}}
}

func TestService_ReplaceWritesBothStores(t *testing.T) {
	svc, repo, index := setupService(t)
	ctx := context.Background()

	stale, err := svc.Replace(ctx, "creator-1", "vid-1", []models.EmbeddedChunk{
		chunk(0, "we talk about sourdough starters today"),
		chunk(1, "then we bake the loaf in a dutch oven"),
	})
	require.NoError(t, err)
	assert.Empty(t, stale)

	count, err := repo.CountByCreator(ctx, "creator-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	indexed, err := index.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), indexed)
}

func TestService_ReplaceRemovesStaleChunks(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	var long []models.EmbeddedChunk
	for i := 0; i < 4; i++ {
		long = append(long, chunk(i, fmt.Sprintf("original chunk number %d", i)))
	}
	_, err := svc.Replace(ctx, "c", "v", long)
	require.NoError(t, err)

	stale, err := svc.Replace(ctx, "c", "v", []models.EmbeddedChunk{
		chunk(0, "rewritten first chunk"),
		chunk(1, "rewritten second chunk"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{models.ChunkID("c", "v", 2), models.ChunkID("c", "v", 3)}, stale)

	ids, err := repo.ChunkIDs(ctx, "c", "v")
	require.NoError(t, err)
	assert.Equal(t, []string{models.ChunkID("c", "v", 0), models.ChunkID("c", "v", 1)}, ids)

	results, err := svc.KeywordSearch(ctx, "c", "original", 10)
	require.NoError(t, err)
	assert.Empty(t, results, "stale chunks leave the keyword index too")
}

func TestService_ReplaceKeepsCreatedAt(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Replace(ctx, "c", "v", []models.EmbeddedChunk{chunk(0, "first text")})
	require.NoError(t, err)
	before, err := repo.FindByCreator(ctx, "c", "")
	require.NoError(t, err)
	require.Len(t, before, 1)

	_, err = svc.Replace(ctx, "c", "v", []models.EmbeddedChunk{chunk(0, "second text")})
	require.NoError(t, err)
	after, err := repo.FindByCreator(ctx, "c", "")
	require.NoError(t, err)
	require.Len(t, after, 1)

	assert.Equal(t, "second text", after[0].Text)
	assert.True(t, before[0].CreatedAt.Equal(after[0].CreatedAt))
}

func TestKeywordSearch_TenantScopedAndNormalized(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Replace(ctx, "alice", "v1", []models.EmbeddedChunk{
		chunk(0, "kubernetes operators reconcile desired state"),
		chunk(1, "we deploy kubernetes clusters with kubernetes tooling every day"),
		chunk(2, "a recipe for tomato soup"),
	})
	require.NoError(t, err)
	_, err = svc.Replace(ctx, "bob", "v9", []models.EmbeddedChunk{
		chunk(0, "kubernetes is also mentioned by bob"),
	})
	require.NoError(t, err)

	results, err := svc.KeywordSearch(ctx, "alice", "kubernetes", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.InDelta(t, 1.0, results[0].Score, 1e-9, "top hit is normalized to 1")
	assert.LessOrEqual(t, results[1].Score, 1.0)
	assert.Greater(t, results[1].Score, 0.0)
	for _, r := range results {
		assert.Equal(t, "alice", r.Metadata["creatorId"])
		assert.Contains(t, r.Text, "kubernetes")
	}
}

func TestKeywordSearch_TitleMatchesBoost(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	plain := chunk(0, "some words about gardening and compost")
	titled := chunk(0, "some words about gardening and compost")
	titled.VideoTitle = "Compost Masterclass"

	_, err := svc.Replace(ctx, "c", "plain", []models.EmbeddedChunk{plain})
	require.NoError(t, err)
	_, err = svc.Replace(ctx, "c", "titled", []models.EmbeddedChunk{titled})
	require.NoError(t, err)

	results, err := svc.KeywordSearch(ctx, "c", "compost", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "titled", results[0].Metadata["videoId"])
	assert.Equal(t, "Compost Masterclass", results[0].Metadata["videoTitle"])
}

func TestKeywordSearch_EmptyInputs(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	results, err := svc.KeywordSearch(ctx, "c", "   ", 10)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)

	results, err = svc.KeywordSearch(ctx, "", "anything", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestKeywordSearch_StartSecondsMetadata(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	start := 95
	c := chunk(3, "the punchline lands at the end")
	c.StartSeconds = &start
	_, err := svc.Replace(ctx, "c", "v", []models.EmbeddedChunk{chunk(0, "intro"), chunk(1, "a"), chunk(2, "b"), c})
	require.NoError(t, err)

	results, err := svc.KeywordSearch(ctx, "c", "punchline", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 95, results[0].Metadata["startSeconds"])
	assert.Equal(t, 3, results[0].Metadata["chunkIndex"])
}

func TestService_DeleteByVideo(t *testing.T) {
	svc, repo, index := setupService(t)
	ctx := context.Background()

	_, err := svc.Replace(ctx, "c", models.ChannelContextVideoID, []models.EmbeddedChunk{chunk(0, "channel about woodworking")})
	require.NoError(t, err)
	_, err = svc.Replace(ctx, "c", "v", []models.EmbeddedChunk{chunk(0, "woodworking joints")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByVideo(ctx, "c", models.ChannelContextVideoID))

	count, err := repo.CountByCreator(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	indexed, err := index.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), indexed)
}

func TestRepository_Neighbors(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	var chunks []models.EmbeddedChunk
	for i := 0; i < 6; i++ {
		chunks = append(chunks, chunk(i, fmt.Sprintf("chunk %d", i)))
	}
	_, err := svc.Replace(ctx, "c", "v", chunks)
	require.NoError(t, err)

	docs, err := svc.Neighbors(ctx, "c", "v", 2, 1)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, 1, docs[0].ChunkIndex)
	assert.Equal(t, 3, docs[2].ChunkIndex)

	docs, err = svc.Neighbors(ctx, "c", "v", 0, 2)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestRepository_FindByCreatorFiltersContentType(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	ctxChunk := chunk(0, "channel description text")
	ctxChunk.ContentType = models.ContentTypeChannelContext
	_, err := svc.Replace(ctx, "c", models.ChannelContextVideoID, []models.EmbeddedChunk{ctxChunk})
	require.NoError(t, err)
	_, err = svc.Replace(ctx, "c", "v", []models.EmbeddedChunk{chunk(0, "transcript text")})
	require.NoError(t, err)

	docs, err := repo.FindByCreator(ctx, "c", models.ContentTypeChannelContext)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, models.ChannelContextVideoID, docs[0].VideoID)

	docs, err = repo.FindByCreator(ctx, "c", "")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestService_Reindex(t *testing.T) {
	db, err := database.InitializeWithMigrations(":memory:", false)
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db.DB)
	first, err := OpenKeywordIndex("")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = NewService(repo, first).Replace(ctx, "c", "v", []models.EmbeddedChunk{
		chunk(0, "persistent metadata survives restarts"),
		chunk(1, "the keyword index is rebuilt"),
	})
	require.NoError(t, err)
	first.Close()

	fresh, err := OpenKeywordIndex("")
	require.NoError(t, err)
	defer fresh.Close()
	svc := NewService(repo, fresh)

	needs, err := svc.NeedsReindex(ctx)
	require.NoError(t, err)
	assert.True(t, needs)

	n, err := svc.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	results, err := svc.KeywordSearch(ctx, "c", "rebuilt", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	needs, err = svc.NeedsReindex(ctx)
	require.NoError(t, err)
	assert.False(t, needs)
}

func TestOpenKeywordIndex_OnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.bleve")

	index, err := OpenKeywordIndex(path)
	require.NoError(t, err)
	require.NoError(t, index.Index(context.Background(), []*models.ChunkDocument{
		{ID: "c:v:0", CreatorID: "c", VideoID: "v", Text: "durable words"},
	}))
	require.NoError(t, index.Close())

	reopened, err := OpenKeywordIndex(path)
	require.NoError(t, err)
	defer reopened.Close()

	results, err := reopened.Search(context.Background(), "c", "durable", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
