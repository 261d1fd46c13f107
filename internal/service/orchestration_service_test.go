package service

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"orquix-backend/internal/dto"
	"orquix-backend/internal/entity"
	"orquix-backend/internal/pkg/logger"
	"orquix-backend/internal/repository/contract"
	"orquix-backend/internal/repository/memory"
	"orquix-backend/internal/repository/specification"
	"orquix-backend/internal/repository/unitofwork"
	"orquix-backend/pkg/embedding"
	"orquix-backend/pkg/followup"
	"orquix-backend/pkg/llm"
	"orquix-backend/pkg/llm/registry"
	"orquix-backend/pkg/moderator"
	"orquix-backend/pkg/orchestrator"
	"orquix-backend/pkg/preanalyst"
	"orquix-backend/pkg/prompt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- stubs ---

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

var _ logger.ILogger = nopLogger{}

type stubAdapter struct {
	name string
	text string
	err  *llm.ProviderError
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) Generate(ctx context.Context, prompt string, params llm.Params) (*llm.Result, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &llm.Result{Text: a.text, LatencyMs: 5}, nil
}

func (a *stubAdapter) Health(ctx context.Context) error { return nil }

type stubEmbedder struct{}

var _ embedding.Provider = stubEmbedder{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (s stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (stubEmbedder) Dimension() int    { return 3 }
func (stubEmbedder) ModelName() string { return "stub" }

type capturingRecorder struct {
	orchestrations []RecordOrchestrationInput
	clarifications []*entity.InteractionEvent
}

func (r *capturingRecorder) RecordOrchestration(ctx context.Context, input RecordOrchestrationInput) error {
	r.orchestrations = append(r.orchestrations, input)
	return nil
}

func (r *capturingRecorder) RecordClarification(ctx context.Context, event *entity.InteractionEvent) error {
	event.EventType = entity.EventTypeClarification
	r.clarifications = append(r.clarifications, event)
	return nil
}

// --- in-memory unit of work ---

type fakeState struct {
	project        *entity.Project
	chunks         []*entity.ScoredChunk
	contextSession *entity.ContextSession
}

type fakeUow struct{ state *fakeState }

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository { return nil }
func (u *fakeUow) ProjectRepository() contract.ProjectRepository {
	return &fakeProjectRepo{state: u.state}
}
func (u *fakeUow) ContextChunkRepository() contract.ContextChunkRepository {
	return &fakeChunkRepo{state: u.state}
}
func (u *fakeUow) InteractionEventRepository() contract.InteractionEventRepository {
	return &fakeEventRepo{}
}
func (u *fakeUow) IAPromptRepository() contract.IAPromptRepository         { return nil }
func (u *fakeUow) IAResponseRepository() contract.IAResponseRepository     { return nil }
func (u *fakeUow) ModeratedSynthesisRepository() contract.ModeratedSynthesisRepository {
	return &fakeSynthRepo{}
}
func (u *fakeUow) ChatRepository() contract.ChatRepository       { return &fakeChatRepo{} }
func (u *fakeUow) SessionRepository() contract.SessionRepository { return nil }
func (u *fakeUow) ContextSessionRepository() contract.ContextSessionRepository {
	return &fakeContextSessionRepo{state: u.state}
}

type fakeFactory struct{ state *fakeState }

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{state: f.state}
}

type fakeProjectRepo struct{ state *fakeState }

func (r *fakeProjectRepo) Create(ctx context.Context, p *entity.Project) error { return nil }
func (r *fakeProjectRepo) Update(ctx context.Context, p *entity.Project) error { return nil }
func (r *fakeProjectRepo) Delete(ctx context.Context, id uuid.UUID) error      { return nil }
func (r *fakeProjectRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Project, error) {
	return r.state.project, nil
}
func (r *fakeProjectRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Project, error) {
	return nil, nil
}
func (r *fakeProjectRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeChunkRepo struct{ state *fakeState }

func (r *fakeChunkRepo) Upsert(ctx context.Context, c *entity.ContextChunk) error { return nil }
func (r *fakeChunkRepo) Delete(ctx context.Context, id uuid.UUID) error           { return nil }
func (r *fakeChunkRepo) DeleteBySource(ctx context.Context, projectId uuid.UUID, sourceType, sourceIdentifier string) error {
	return nil
}
func (r *fakeChunkRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContextChunk, error) {
	return nil, nil
}
func (r *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContextChunk, error) {
	return nil, nil
}
func (r *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}
func (r *fakeChunkRepo) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, projectId, userId uuid.UUID, threshold float64) ([]*entity.ScoredChunk, error) {
	return r.state.chunks, nil
}

type fakeEventRepo struct{}

func (r *fakeEventRepo) Create(ctx context.Context, e *entity.InteractionEvent) error { return nil }
func (r *fakeEventRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.InteractionEvent, error) {
	return nil, nil
}
func (r *fakeEventRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.InteractionEvent, error) {
	return nil, nil
}
func (r *fakeEventRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeSynthRepo struct{}

func (r *fakeSynthRepo) Create(ctx context.Context, s *entity.ModeratedSynthesis) error { return nil }
func (r *fakeSynthRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ModeratedSynthesis, error) {
	return nil, nil
}

type fakeChatRepo struct{}

func (r *fakeChatRepo) Create(ctx context.Context, c *entity.Chat) error  { return nil }
func (r *fakeChatRepo) Update(ctx context.Context, c *entity.Chat) error  { return nil }
func (r *fakeChatRepo) Delete(ctx context.Context, id uuid.UUID) error    { return nil }
func (r *fakeChatRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error) {
	return nil, nil
}
func (r *fakeChatRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chat, error) {
	return nil, nil
}

type fakeContextSessionRepo struct{ state *fakeState }

func (r *fakeContextSessionRepo) Create(ctx context.Context, s *entity.ContextSession) error {
	return nil
}
func (r *fakeContextSessionRepo) UpdateIfUnchanged(ctx context.Context, s *entity.ContextSession, expected time.Time) (bool, error) {
	return true, nil
}
func (r *fakeContextSessionRepo) Deactivate(ctx context.Context, id uuid.UUID) error { return nil }
func (r *fakeContextSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContextSession, error) {
	if r.state.contextSession == nil {
		return nil, nil
	}
	copied := *r.state.contextSession
	return &copied, nil
}
func (r *fakeContextSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContextSession, error) {
	return nil, nil
}

// --- assembly ---

const executableAnalysis = `{
	"interpreted_intent": "expand the bakery",
	"clarification_questions": [],
	"refined_prompt_candidate": "¿Cómo puedo compensar la caída de ventas en verano?"
}`

const vagueAnalysis = `{
	"interpreted_intent": "unclear business question",
	"clarification_questions": ["¿Qué tipo de negocio tienes?", "¿Cuál es tu objetivo?"],
	"refined_prompt_candidate": ""
}`

const moderatorSynthesis = `{
	"synthesis_text": "Ambos proveedores recomiendan diversificar la oferta.",
	"key_themes": ["diversificación"],
	"consensus_areas": ["diversificar la oferta"],
	"contradictions": [],
	"source_references": {"diversificar la oferta": ["alpha", "beta"]}
}`

func newTestService(t *testing.T, state *fakeState, analysisJSON string, providers []llm.Adapter, recorder IInteractionRecorder) IOrchestrationService {
	t.Helper()

	testLog := log.New(os.Stdout, "", log.LstdFlags)

	reg := registry.New()
	for _, p := range providers {
		require.NoError(t, reg.Register(p))
	}

	return NewOrchestrationService(
		&fakeFactory{state: state},
		preanalyst.New(&stubAdapter{name: "resolver", text: analysisJSON}, testLog),
		memory.NewClarificationRepository(),
		followup.New(stubEmbedder{}, followup.DefaultSimilarityThreshold, testLog),
		stubEmbedder{},
		prompt.NewPackager(4000, 100, "\n\n---\n\n"),
		reg,
		orchestrator.NewFanOut(2*time.Second, testLog),
		moderator.New(&stubAdapter{name: "resolver", text: moderatorSynthesis}, testLog),
		recorder,
		nil,
		GenerationParams{Temperature: 0.7, MaxTokens: 1000},
		nopLogger{},
	)
}

func testProject() *entity.Project {
	return &entity.Project{
		Id:                     uuid.New(),
		UserId:                 uuid.New(),
		Name:                   "Panadería",
		ModeratorPersonality:   "Analytical",
		ModeratorTemperature:   0.3,
		ModeratorLengthPenalty: 0.5,
	}
}

func TestQueryFullCycle(t *testing.T) {
	project := testProject()
	state := &fakeState{
		project: project,
		chunks: []*entity.ScoredChunk{
			{Chunk: entity.ContextChunk{SourceIdentifier: "plan.md", ContentText: "las ventas bajan en verano"}, Similarity: 0.9},
		},
	}
	recorder := &capturingRecorder{}

	svc := newTestService(t, state, executableAnalysis, []llm.Adapter{
		&stubAdapter{name: "alpha", text: "Diversifica con productos de temporada."},
		&stubAdapter{name: "beta", text: "Ofrece desayunos fríos en verano."},
	}, recorder)

	res, err := svc.Query(context.Background(), project.UserId, &dto.OrchestrationQueryRequest{
		ProjectId:      project.Id,
		UserPromptText: "¿Cómo compenso la caída de ventas en verano?",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ambos proveedores recomiendan diversificar la oferta.", res.SynthesisText)
	assert.Len(t, res.AiResponses, 2)
	for _, r := range res.AiResponses {
		assert.NotNil(t, r.ResponseText)
		assert.Nil(t, r.ErrorMessage)
	}
	assert.Equal(t, []string{"plan.md"}, res.ContextUsed.Documents)
	assert.Empty(t, res.ClarifyingQuestions)

	// Persistence happened before the response was returned.
	require.Len(t, recorder.orchestrations, 1)
	stored := recorder.orchestrations[0]
	assert.Equal(t, entity.EventTypeUserPrompt, stored.Event.EventType)
	assert.Equal(t, res.InteractionEventId, stored.Event.Id)
	assert.Len(t, stored.Responses, 2)
	assert.NotEmpty(t, stored.Prompt.PromptText)
	assert.Equal(t, "¿Cómo compenso la caída de ventas en verano?", stored.Prompt.OriginalQuery)
	assert.False(t, stored.Synthesis.FallbackUsed)
	assert.True(t, stored.Event.ContextUsed)
}

func TestQueryPackagesSidebarContext(t *testing.T) {
	project := testProject()
	session := &entity.ContextSession{
		Id:                 uuid.New(),
		ProjectId:          project.Id,
		UserId:             project.UserId,
		AccumulatedContext: "## negocio\n- panadería artesanal en Valencia\n",
		IsActive:           true,
	}
	state := &fakeState{project: project, contextSession: session}
	recorder := &capturingRecorder{}

	svc := newTestService(t, state, executableAnalysis, []llm.Adapter{
		&stubAdapter{name: "alpha", text: "Diversifica con productos de temporada."},
	}, recorder)

	_, err := svc.Query(context.Background(), project.UserId, &dto.OrchestrationQueryRequest{
		ProjectId:      project.Id,
		UserPromptText: "¿Cómo compenso la caída de ventas en verano?",
	})
	require.NoError(t, err)

	require.Len(t, recorder.orchestrations, 1)
	stored := recorder.orchestrations[0]
	// The accumulated sidebar context travels inside the packaged prompt.
	assert.Contains(t, stored.Prompt.PromptText, "panadería artesanal en Valencia")
	require.NotNil(t, stored.Prompt.ContextSessionId)
	assert.Equal(t, session.Id, *stored.Prompt.ContextSessionId)
	assert.True(t, stored.Event.ContextUsed)
}

func TestQueryClarificationShortCircuit(t *testing.T) {
	project := testProject()
	state := &fakeState{project: project}
	recorder := &capturingRecorder{}

	svc := newTestService(t, state, vagueAnalysis, []llm.Adapter{
		&stubAdapter{name: "alpha", text: "unused"},
	}, recorder)

	res, err := svc.Query(context.Background(), project.UserId, &dto.OrchestrationQueryRequest{
		ProjectId:      project.Id,
		UserPromptText: "ayúdame con mi negocio",
	})
	require.NoError(t, err)

	assert.Len(t, res.ClarifyingQuestions, 2)
	assert.NotEmpty(t, res.ClarificationSession)
	assert.Empty(t, res.SynthesisText)

	// No providers were invoked, only the clarification event was stored.
	assert.Empty(t, recorder.orchestrations)
	require.Len(t, recorder.clarifications, 1)
	assert.Equal(t, entity.EventTypeClarification, recorder.clarifications[0].EventType)
}

func TestQueryAllProvidersFail(t *testing.T) {
	project := testProject()
	state := &fakeState{project: project}
	recorder := &capturingRecorder{}

	svc := newTestService(t, state, executableAnalysis, []llm.Adapter{
		&stubAdapter{name: "alpha", err: &llm.ProviderError{Provider: "alpha", Kind: llm.KindTimeout, Message: "deadline exceeded"}},
		&stubAdapter{name: "beta", err: &llm.ProviderError{Provider: "beta", Kind: llm.KindRateLimited, Message: "429"}},
	}, recorder)

	res, err := svc.Query(context.Background(), project.UserId, &dto.OrchestrationQueryRequest{
		ProjectId:      project.Id,
		UserPromptText: "¿Cómo compenso la caída de ventas?",
	})
	require.NoError(t, err)

	// Total failure still yields a persisted cycle with a failed synthesis.
	assert.NotEmpty(t, res.SynthesisText)
	assert.Equal(t, "failed", res.Synthesis.Quality)
	require.Len(t, res.AiResponses, 2)
	for _, r := range res.AiResponses {
		assert.Nil(t, r.ResponseText)
		assert.NotNil(t, r.ErrorMessage)
	}

	require.Len(t, recorder.orchestrations, 1)
	for _, stored := range recorder.orchestrations[0].Responses {
		assert.Nil(t, stored.ResponseText)
		require.NotNil(t, stored.ErrorMessage)
	}
}

func TestQueryArchivedProjectRejected(t *testing.T) {
	project := testProject()
	now := time.Now()
	project.ArchivedAt = &now
	state := &fakeState{project: project}

	svc := newTestService(t, state, executableAnalysis, []llm.Adapter{
		&stubAdapter{name: "alpha", text: "unused"},
	}, &capturingRecorder{})

	_, err := svc.Query(context.Background(), project.UserId, &dto.OrchestrationQueryRequest{
		ProjectId:      project.Id,
		UserPromptText: "¿algo?",
	})
	require.Error(t, err)
}
