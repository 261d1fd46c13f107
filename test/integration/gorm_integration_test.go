package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"orquix-backend/internal/entity"
	"orquix-backend/internal/repository/specification"
	"orquix-backend/internal/repository/unitofwork"
	"orquix-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()

	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	sqlDB, _ := gormDB.DB()
	require.NoError(t, sqlDB.Ping())

	return unitofwork.NewRepositoryFactory(gormDB)
}

func seedUserAndProject(t *testing.T, uow unitofwork.UnitOfWork) (*entity.User, *entity.Project) {
	t.Helper()
	ctx := context.Background()

	user := &entity.User{
		Id:    uuid.New(),
		Email: "test-integration-" + uuid.New().String() + "@example.com",
		Name:  "Integration Test User",
	}
	require.NoError(t, uow.UserRepository().Create(ctx, user))

	project := &entity.Project{
		Id:                     uuid.New(),
		UserId:                 user.Id,
		Name:                   "Integration Project",
		Description:            "created by integration test",
		ModeratorPersonality:   "Analytical",
		ModeratorTemperature:   0.3,
		ModeratorLengthPenalty: 0.5,
	}
	require.NoError(t, uow.ProjectRepository().Create(ctx, project))

	return user, project
}

func TestGormConnection(t *testing.T) {
	uowFactory := connect(t)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.ProjectRepository())
	assert.NotNil(t, uow.ContextChunkRepository())
	assert.NotNil(t, uow.InteractionEventRepository())
	assert.NotNil(t, uow.ContextSessionRepository())

	t.Run("Check Project Repository", func(t *testing.T) {
		count, err := uow.ProjectRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Project count: %d", count)
	})

	t.Run("Check Context Chunk Repository", func(t *testing.T) {
		count, err := uow.ContextChunkRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("ContextChunk count: %d", count)
	})
}

func TestContextChunkUpsertAndSearch(t *testing.T) {
	uowFactory := connect(t)
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	user, project := seedUserAndProject(t, uow)

	embedding := make([]float32, 1536)
	embedding[0] = 1

	chunk := &entity.ContextChunk{
		ProjectId:        project.Id,
		UserId:           user.Id,
		ContentText:      "las ventas bajan en verano",
		Embedding:        embedding,
		SourceType:       "document",
		SourceIdentifier: "plan.md",
		ChunkIndex:       0,
	}
	require.NoError(t, uow.ContextChunkRepository().Upsert(ctx, chunk))

	// Upserting the same source coordinates must replace, not duplicate.
	chunk2 := &entity.ContextChunk{
		ProjectId:        project.Id,
		UserId:           user.Id,
		ContentText:      "las ventas bajan un 20% en verano",
		Embedding:        embedding,
		SourceType:       "document",
		SourceIdentifier: "plan.md",
		ChunkIndex:       0,
	}
	require.NoError(t, uow.ContextChunkRepository().Upsert(ctx, chunk2))

	count, err := uow.ContextChunkRepository().Count(ctx,
		specification.ByProjectID{ProjectID: project.Id},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	t.Run("Similarity Search", func(t *testing.T) {
		scored, err := uow.ContextChunkRepository().SearchSimilarWithScore(ctx, embedding, 5, project.Id, user.Id, 0.3)
		require.NoError(t, err)
		require.Len(t, scored, 1)
		assert.InDelta(t, 1.0, scored[0].Similarity, 0.001)
		assert.Equal(t, "las ventas bajan un 20% en verano", scored[0].Chunk.ContentText)
	})

	t.Run("Threshold Filters", func(t *testing.T) {
		orthogonal := make([]float32, 1536)
		orthogonal[1] = 1
		scored, err := uow.ContextChunkRepository().SearchSimilarWithScore(ctx, orthogonal, 5, project.Id, user.Id, 0.3)
		require.NoError(t, err)
		assert.Empty(t, scored)
	})

	t.Run("User Scoped", func(t *testing.T) {
		scored, err := uow.ContextChunkRepository().SearchSimilarWithScore(ctx, embedding, 5, project.Id, uuid.New(), 0.3)
		require.NoError(t, err)
		assert.Empty(t, scored)
	})

	t.Run("Delete By Source", func(t *testing.T) {
		require.NoError(t, uow.ContextChunkRepository().DeleteBySource(ctx, project.Id, "document", "plan.md"))
		count, err := uow.ContextChunkRepository().Count(ctx,
			specification.ByProjectID{ProjectID: project.Id},
		)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestTransactionalInteractionWrite(t *testing.T) {
	uowFactory := connect(t)
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	user, project := seedUserAndProject(t, uow)

	// Simulate the recorder: event, prompt, responses and synthesis in one
	// transaction.
	txUow := uowFactory.NewUnitOfWork(ctx)
	require.NoError(t, txUow.Begin(ctx))

	event := &entity.InteractionEvent{
		Id:        uuid.New(),
		ProjectId: project.Id,
		UserId:    user.Id,
		EventType: entity.EventTypeUserPrompt,
		Content:   "¿Cómo compenso la caída de ventas?",
	}
	require.NoError(t, txUow.InteractionEventRepository().Create(ctx, event))

	prompt := &entity.IAPrompt{
		Id:                 uuid.New(),
		InteractionEventId: event.Id,
		ProjectId:          project.Id,
		PromptText:         "packaged prompt",
		Status:             entity.PromptStatusExecuted,
		EstimatedTokens:    4,
	}
	require.NoError(t, txUow.IAPromptRepository().Create(ctx, prompt))

	text := "una respuesta"
	response := &entity.IAResponse{
		Id:                 uuid.New(),
		InteractionEventId: event.Id,
		IaPromptId:         prompt.Id,
		IaProviderName:     "openai",
		ResponseText:       &text,
		LatencyMs:          120,
	}
	require.NoError(t, txUow.IAResponseRepository().Create(ctx, response))

	synthesis := &entity.ModeratedSynthesis{
		Id:                 uuid.New(),
		InteractionEventId: event.Id,
		SynthesisText:      "síntesis",
		Quality:            "low",
	}
	require.NoError(t, txUow.ModeratedSynthesisRepository().Create(ctx, synthesis))

	require.NoError(t, txUow.Commit())

	stored, err := uow.InteractionEventRepository().FindOne(ctx, specification.ByID{ID: event.Id})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.EventTypeUserPrompt, stored.EventType)

	storedSynthesis, err := uow.ModeratedSynthesisRepository().FindOne(ctx,
		specification.ByInteractionEventID{InteractionEventID: event.Id},
	)
	require.NoError(t, err)
	require.NotNil(t, storedSynthesis)
	assert.Equal(t, "síntesis", storedSynthesis.SynthesisText)
}

func TestContextSessionOptimisticUpdate(t *testing.T) {
	uowFactory := connect(t)
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	user, project := seedUserAndProject(t, uow)

	session := &entity.ContextSession{
		Id:                 uuid.New(),
		ProjectId:          project.Id,
		UserId:             user.Id,
		AccumulatedContext: "## negocio\n- panadería en Valencia",
		IsActive:           true,
	}
	require.NoError(t, uow.ContextSessionRepository().Create(ctx, session))

	loaded, err := uow.ContextSessionRepository().FindOne(ctx, specification.ByID{ID: session.Id})
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.NotNil(t, loaded.UpdatedAt)

	loaded.AccumulatedContext += "\n- 3 empleados"
	ok, err := uow.ContextSessionRepository().UpdateIfUnchanged(ctx, loaded, *loaded.UpdatedAt)
	require.NoError(t, err)
	assert.True(t, ok)

	// A second writer holding the stale timestamp must lose.
	stale := *loaded.UpdatedAt
	loaded.AccumulatedContext += "\n- conflicting"
	ok, err = uow.ContextSessionRepository().UpdateIfUnchanged(ctx, loaded, stale.Add(-time.Second))
	require.NoError(t, err)
	assert.False(t, ok)
}
