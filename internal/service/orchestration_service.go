package service

import (
	"context"
	"time"

	"orquix-backend/internal/dto"
	"orquix-backend/internal/entity"
	"orquix-backend/internal/pkg/apperrors"
	"orquix-backend/internal/pkg/logger"
	"orquix-backend/internal/repository/memory"
	"orquix-backend/internal/repository/specification"
	"orquix-backend/internal/repository/unitofwork"
	"orquix-backend/pkg/contextbuilder"
	"orquix-backend/pkg/embedding"
	"orquix-backend/pkg/events"
	"orquix-backend/pkg/followup"
	"orquix-backend/pkg/llm"
	"orquix-backend/pkg/llm/registry"
	"orquix-backend/pkg/moderator"
	pktNats "orquix-backend/pkg/nats"
	"orquix-backend/pkg/orchestrator"
	"orquix-backend/pkg/preanalyst"
	"orquix-backend/pkg/prompt"

	"github.com/google/uuid"
)

const (
	topChunks           = 5
	similarityThreshold = 0.3
	synthesisRetries    = 3
)

type IOrchestrationService interface {
	Query(ctx context.Context, userId uuid.UUID, request *dto.OrchestrationQueryRequest) (*dto.OrchestrationQueryResponse, error)
	History(ctx context.Context, userId, projectId uuid.UUID, limit int) ([]*dto.InteractionHistoryItem, error)
}

// GenerationParams carries the provider call settings shared by every
// fan-out.
type GenerationParams struct {
	Temperature float64
	MaxTokens   int
}

type orchestrationService struct {
	uowFactory        unitofwork.RepositoryFactory
	analyst           *preanalyst.Analyst
	clarificationRepo *memory.ClarificationRepository
	interpreter       *followup.Interpreter
	embeddingProvider embedding.Provider
	packager          *prompt.Packager
	registry          *registry.Registry
	fanOut            *orchestrator.FanOut
	moderator         *moderator.Moderator
	recorder          IInteractionRecorder
	eventPublisher    *pktNats.Publisher
	params            GenerationParams
	logger            logger.ILogger
}

func NewOrchestrationService(
	uowFactory unitofwork.RepositoryFactory,
	analyst *preanalyst.Analyst,
	clarificationRepo *memory.ClarificationRepository,
	interpreter *followup.Interpreter,
	embeddingProvider embedding.Provider,
	packager *prompt.Packager,
	reg *registry.Registry,
	fanOut *orchestrator.FanOut,
	mod *moderator.Moderator,
	recorder IInteractionRecorder,
	eventPublisher *pktNats.Publisher,
	params GenerationParams,
	log logger.ILogger,
) IOrchestrationService {
	return &orchestrationService{
		uowFactory:        uowFactory,
		analyst:           analyst,
		clarificationRepo: clarificationRepo,
		interpreter:       interpreter,
		embeddingProvider: embeddingProvider,
		packager:          packager,
		registry:          reg,
		fanOut:            fanOut,
		moderator:         mod,
		recorder:          recorder,
		eventPublisher:    eventPublisher,
		params:            params,
		logger:            log,
	}
}

// Query runs one full orchestration cycle: pre-analysis, continuity
// interpretation, context retrieval, provider fan-out, moderation and
// persistence. The response is returned only after the cycle is stored.
func (s *orchestrationService) Query(ctx context.Context, userId uuid.UUID, request *dto.OrchestrationQueryRequest) (*dto.OrchestrationQueryResponse, error) {
	started := time.Now()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: request.ProjectId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to load project", err)
	}
	if project == nil {
		return nil, apperrors.NotFound("project not found")
	}
	if project.IsArchived() {
		return nil, apperrors.Validation("project is archived and no longer accepts queries")
	}

	// Pre-analysis. A clarification session continues an earlier exchange;
	// otherwise the raw prompt is analyzed fresh.
	analysis := s.analyze(ctx, request)
	if analysis.NeedsClarification() {
		return s.shortCircuitClarification(ctx, userId, project, request, analysis, started)
	}
	refined := analysis.RefinedPromptCandidate

	prior, priorSynthesis := s.loadPriorInteraction(ctx, uow, project.Id)
	decision := s.interpreter.Interpret(ctx, refined, followup.ConversationMode(conversationMode(request)), prior)

	var scored []*entity.ScoredChunk
	var conversationalContext string
	var contextSessionId *uuid.UUID
	if request.IncludeContextOrDefault() {
		if cs := s.loadActiveContextSession(ctx, uow, project.Id, userId); cs != nil && cs.AccumulatedContext != "" {
			conversationalContext = cs.AccumulatedContext
			contextSessionId = &cs.Id
		}
		scored = s.retrieveChunks(ctx, uow, project.Id, userId, refined, decision)
	}

	pkgInput := prompt.Input{Query: refined, ConversationalContext: conversationalContext}
	if decision.IsContinuation() && priorSynthesis != "" {
		pkgInput.PriorSynthesis = priorSynthesis
	}
	for _, sc := range scored {
		pkgInput.Chunks = append(pkgInput.Chunks, prompt.Chunk{
			SourceIdentifier: sc.Chunk.SourceIdentifier,
			Content:          sc.Chunk.ContentText,
			Similarity:       sc.Similarity,
		})
	}
	packaged := s.packager.Build(pkgInput)

	iaPrompt := &entity.IAPrompt{
		Id:               uuid.New(),
		ProjectId:        project.Id,
		ContextSessionId: contextSessionId,
		OriginalQuery:    request.UserPromptText,
		PromptText:       packaged.Text,
		Status:           entity.PromptStatusGenerated,
		EstimatedTokens:  packaged.EstimatedTokens,
	}

	outcomes := s.fanOut.Run(ctx, s.registry.All(), packaged.Text, llm.Params{
		Temperature: s.params.Temperature,
		MaxTokens:   s.params.MaxTokens,
	})

	answers, failures, responses := collectOutcomes(outcomes, iaPrompt.Id)

	synthesis := s.moderator.Synthesize(ctx, refined, answers, failures, moderator.Options{
		Strategy:              moderator.DefaultStrategy,
		Personality:           project.ModeratorPersonality,
		Temperature:           project.ModeratorTemperature,
		LengthPenalty:         project.ModeratorLengthPenalty,
		MaxSynthesisWords:     250,
		IncludeContradictions: true,
		IncludeReferences:     true,
	})

	event := &entity.InteractionEvent{
		Id:               uuid.New(),
		ProjectId:        project.Id,
		UserId:           userId,
		EventType:        entity.EventTypeUserPrompt,
		Content:          request.UserPromptText,
		ContextUsed:      len(scored) > 0 || conversationalContext != "",
		ContextPreview:   packaged.UsedSummary,
		ProcessingTimeMs: time.Since(started).Milliseconds(),
		EventData: map[string]interface{}{
			"refined_prompt": refined,
			"query_type":     string(decision.Type),
			"confidence":     decision.Confidence,
		},
	}
	s.attachChatSession(ctx, uow, userId, project.Id, request, event, refined)

	synthEntity := &entity.ModeratedSynthesis{
		Id:               uuid.New(),
		SynthesisText:    synthesis.SynthesisText,
		Quality:          string(synthesis.Quality),
		KeyThemes:        synthesis.KeyThemes,
		ConsensusAreas:   synthesis.ConsensusAreas,
		Contradictions:   synthesis.Contradictions,
		SourceReferences: synthesis.SourceReferences,
		FallbackUsed:     synthesis.FallbackUsed,
	}

	if err := s.recorder.RecordOrchestration(ctx, RecordOrchestrationInput{
		Event:     event,
		Prompt:    iaPrompt,
		Responses: responses,
		Synthesis: synthEntity,
	}); err != nil {
		return nil, err
	}

	// Side effects after the cycle is durable. They retry or log, never
	// fail the request.
	go s.propagateSynthesis(project.Id, userId, synthesis.SynthesisText)
	s.publishCompleted(event, project.Id, userId, synthesis)

	return s.buildResponse(event, responses, synthesis, decision, scored, started), nil
}

func (s *orchestrationService) analyze(ctx context.Context, request *dto.OrchestrationQueryRequest) *preanalyst.Analysis {
	if request.SessionId != nil {
		if session, ok := s.clarificationRepo.Get(request.SessionId.String()); ok {
			analysis := s.analyst.Continue(ctx, session, request.UserPromptText)
			if analysis.NeedsClarification() {
				s.clarificationRepo.Save(session)
			} else {
				s.clarificationRepo.Delete(session.ID)
			}
			return analysis
		}
		s.logger.Warn("orchestration_service", "clarification session expired, analyzing fresh", map[string]interface{}{
			"session_id": request.SessionId.String(),
		})
	}
	return s.analyst.Analyze(ctx, request.UserPromptText)
}

func (s *orchestrationService) shortCircuitClarification(ctx context.Context, userId uuid.UUID, project *entity.Project, request *dto.OrchestrationQueryRequest, analysis *preanalyst.Analysis, started time.Time) (*dto.OrchestrationQueryResponse, error) {
	sessionID := uuid.New().String()
	if request.SessionId != nil {
		if _, ok := s.clarificationRepo.Get(request.SessionId.String()); ok {
			sessionID = request.SessionId.String()
		}
	}
	if _, ok := s.clarificationRepo.Get(sessionID); !ok {
		s.clarificationRepo.Save(preanalyst.NewSession(
			sessionID, project.Id.String(), userId.String(),
			request.UserPromptText, analysis.ClarificationQuestions,
		))
	}

	event := &entity.InteractionEvent{
		Id:        uuid.New(),
		ProjectId: project.Id,
		UserId:    userId,
		Content:   request.UserPromptText,
		EventData: map[string]interface{}{
			"interpreted_intent":      analysis.InterpretedIntent,
			"clarification_questions": analysis.ClarificationQuestions,
		},
		ProcessingTimeMs: time.Since(started).Milliseconds(),
	}
	if err := s.recorder.RecordClarification(ctx, event); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.InteractionClarification(event.Id.String(), project.Id.String(), userId.String(), analysis.ClarificationQuestions)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("orchestration_service", "failed to publish clarification event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return &dto.OrchestrationQueryResponse{
		InteractionEventId:   event.Id,
		ClarifyingQuestions:  analysis.ClarificationQuestions,
		ClarificationSession: sessionID,
		ProcessingTimeMs:     event.ProcessingTimeMs,
		Timestamp:            time.Now(),
	}, nil
}

// loadPriorInteraction fetches the latest completed prompt interaction and
// its synthesis for continuity analysis. Failures degrade to no prior.
func (s *orchestrationService) loadPriorInteraction(ctx context.Context, uow unitofwork.UnitOfWork, projectId uuid.UUID) (*followup.PriorInteraction, string) {
	eventsFound, err := uow.InteractionEventRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.ByEventType{EventType: entity.EventTypeUserPrompt},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: 1, Offset: 0},
	)
	if err != nil {
		s.logger.Warn("orchestration_service", "failed to load prior interaction", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, ""
	}
	if len(eventsFound) == 0 {
		return nil, ""
	}

	prev := eventsFound[0]
	prior := &followup.PriorInteraction{
		ID:     prev.Id.String(),
		Prompt: prev.Content,
	}

	synth, err := uow.ModeratedSynthesisRepository().FindOne(ctx,
		specification.ByInteractionEventID{InteractionEventID: prev.Id},
	)
	if err == nil && synth != nil {
		prior.SynthesisText = synth.SynthesisText
		return prior, synth.SynthesisText
	}
	return prior, ""
}

// loadActiveContextSession fetches the sidebar context built for the
// (project, user) pair. Failures degrade to no conversational context.
func (s *orchestrationService) loadActiveContextSession(ctx context.Context, uow unitofwork.UnitOfWork, projectId, userId uuid.UUID) *entity.ContextSession {
	session, err := uow.ContextSessionRepository().FindOne(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.ByUserID{UserID: userId},
		specification.ActiveOnly{},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		s.logger.Warn("orchestration_service", "failed to load context session, continuing without sidebar context", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return session
}

// retrieveChunks embeds the refined query and searches the chunk store
// scoped to the (project, user) pair. Retrieval is best effort: on failure
// orchestration continues without knowledge context.
func (s *orchestrationService) retrieveChunks(ctx context.Context, uow unitofwork.UnitOfWork, projectId, userId uuid.UUID, refined string, decision *followup.Decision) []*entity.ScoredChunk {
	queryText := refined
	if decision.IsContinuation() && len(decision.ContextualKeywords) > 0 {
		for _, kw := range decision.ContextualKeywords {
			queryText += " " + kw
		}
	}

	vector, err := s.embeddingProvider.Embed(ctx, queryText)
	if err != nil {
		s.logger.Warn("orchestration_service", "embedding unavailable, skipping context retrieval", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	scored, err := uow.ContextChunkRepository().SearchSimilarWithScore(ctx, vector, topChunks, projectId, userId, similarityThreshold)
	if err != nil {
		s.logger.Warn("orchestration_service", "chunk search failed, continuing without context", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return scored
}

// attachChatSession chains a new session onto the chat when the request
// names one. Session failures never block orchestration.
func (s *orchestrationService) attachChatSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, projectId uuid.UUID, request *dto.OrchestrationQueryRequest, event *entity.InteractionEvent, refined string) {
	if request.ChatId == nil {
		return
	}

	chat, err := uow.ChatRepository().FindOne(ctx,
		specification.ByID{ID: *request.ChatId},
		specification.ByUserID{UserID: userId},
		specification.ByProjectID{ProjectID: projectId},
	)
	if err != nil || chat == nil {
		s.logger.Warn("orchestration_service", "chat not found, recording interaction without session", map[string]interface{}{
			"chat_id": request.ChatId.String(),
		})
		return
	}

	latest, err := uow.SessionRepository().FindLatestByChat(ctx, chat.Id)
	if err != nil {
		s.logger.Warn("orchestration_service", "failed to load latest session", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	session := &entity.Session{
		Id:            uuid.New(),
		ChatId:        chat.Id,
		OrderIndex:    0,
		FinalQuestion: refined,
		Status:        entity.SessionStatusActive,
	}
	if latest != nil {
		session.OrderIndex = latest.OrderIndex + 1
		session.PreviousSessionId = &latest.Id
		session.AccumulatedContext = latest.AccumulatedContext
	}
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		s.logger.Warn("orchestration_service", "failed to create chat session", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	event.SessionId = &session.Id
}

// propagateSynthesis appends the synthesis to the project's active context
// session so future context packages can reference it. Optimistic retries
// handle concurrent sidebar writes.
func (s *orchestrationService) propagateSynthesis(projectId, userId uuid.UUID, synthesisText string) {
	if synthesisText == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for attempt := 1; attempt <= synthesisRetries; attempt++ {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		repo := uow.ContextSessionRepository()

		session, err := repo.FindOne(ctx,
			specification.ByProjectID{ProjectID: projectId},
			specification.ByUserID{UserID: userId},
			specification.ActiveOnly{},
			specification.OrderBy{Field: "created_at", Desc: true},
		)
		if err != nil || session == nil {
			return
		}

		doc := contextbuilder.Parse(session.AccumulatedContext)
		if !doc.AppendSynthesis(synthesisText) {
			return
		}
		session.AccumulatedContext = doc.Render()

		var expected time.Time
		if session.UpdatedAt != nil {
			expected = *session.UpdatedAt
		}
		ok, err := repo.UpdateIfUnchanged(ctx, session, expected)
		if err != nil {
			s.logger.Warn("orchestration_service", "failed to propagate synthesis", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
		if ok {
			return
		}
		// Lost the optimistic race, reload and retry.
	}

	s.logger.Warn("orchestration_service", "synthesis propagation gave up after retries", map[string]interface{}{
		"project_id": projectId.String(),
	})
}

func (s *orchestrationService) publishCompleted(event *entity.InteractionEvent, projectId, userId uuid.UUID, synthesis *moderator.Response) {
	if s.eventPublisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	evt := events.InteractionCompleted(event.Id.String(), projectId.String(), userId.String(), string(synthesis.Quality), event.ProcessingTimeMs)
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("orchestration_service", "failed to publish completion event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *orchestrationService) buildResponse(event *entity.InteractionEvent, responses []*entity.IAResponse, synthesis *moderator.Response, decision *followup.Decision, scored []*entity.ScoredChunk, started time.Time) *dto.OrchestrationQueryResponse {
	aiResponses := make([]dto.ProviderResponseDTO, len(responses))
	for i, r := range responses {
		aiResponses[i] = dto.ProviderResponseDTO{
			Provider:     r.IaProviderName,
			ResponseText: r.ResponseText,
			ErrorMessage: r.ErrorMessage,
			LatencyMs:    r.LatencyMs,
		}
	}

	contextUsed := &dto.ContextUsedDTO{Documents: []string{}, PreviousInteractions: []string{}}
	for _, sc := range scored {
		contextUsed.Documents = append(contextUsed.Documents, sc.Chunk.SourceIdentifier)
	}
	if decision.IsContinuation() && decision.PriorID != "" {
		contextUsed.PreviousInteractions = append(contextUsed.PreviousInteractions, decision.PriorID)
	}

	return &dto.OrchestrationQueryResponse{
		InteractionEventId: event.Id,
		SynthesisText:      synthesis.SynthesisText,
		Synthesis: &dto.SynthesisDTO{
			SynthesisText:    synthesis.SynthesisText,
			Quality:          string(synthesis.Quality),
			KeyThemes:        synthesis.KeyThemes,
			ConsensusAreas:   synthesis.ConsensusAreas,
			Contradictions:   synthesis.Contradictions,
			SourceReferences: synthesis.SourceReferences,
			FallbackUsed:     synthesis.FallbackUsed,
		},
		AiResponses: aiResponses,
		ContinuityAnalysis: &dto.ContinuityAnalysisDTO{
			QueryType:          string(decision.Type),
			Confidence:         decision.Confidence,
			ContextualKeywords: decision.ContextualKeywords,
			PreviousEventId:    decision.PriorID,
		},
		ContextUsed:      contextUsed,
		ProcessingTimeMs: time.Since(started).Milliseconds(),
		Timestamp:        time.Now(),
	}
}

func (s *orchestrationService) History(ctx context.Context, userId, projectId uuid.UUID, limit int) ([]*dto.InteractionHistoryItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	eventsFound, err := uow.InteractionEventRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: 0},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to load interaction history", err)
	}

	items := make([]*dto.InteractionHistoryItem, len(eventsFound))
	for i, ev := range eventsFound {
		item := &dto.InteractionHistoryItem{
			Id:        ev.Id,
			EventType: ev.EventType,
			Content:   ev.Content,
			CreatedAt: ev.CreatedAt,
		}
		synth, err := uow.ModeratedSynthesisRepository().FindOne(ctx,
			specification.ByInteractionEventID{InteractionEventID: ev.Id},
		)
		if err == nil && synth != nil {
			item.SynthesisText = synth.SynthesisText
		}
		items[i] = item
	}
	return items, nil
}

// collectOutcomes converts fan-out outcomes into moderator inputs and
// persistable rows. One of text or error is always set, never both.
func collectOutcomes(outcomes []orchestrator.Outcome, promptId uuid.UUID) ([]moderator.ProviderAnswer, []moderator.FailureNote, []*entity.IAResponse) {
	var answers []moderator.ProviderAnswer
	var failures []moderator.FailureNote
	responses := make([]*entity.IAResponse, 0, len(outcomes))

	for _, out := range outcomes {
		resp := &entity.IAResponse{
			Id:             uuid.New(),
			IaPromptId:     promptId,
			IaProviderName: out.Provider,
			LatencyMs:      out.LatencyMs,
		}
		if out.Succeeded() {
			text := out.Text
			resp.ResponseText = &text
			answers = append(answers, moderator.ProviderAnswer{Provider: out.Provider, Text: out.Text})
		} else if out.Err != nil {
			discriminant := out.Err.Discriminant()
			resp.ErrorMessage = &discriminant
			failures = append(failures, moderator.FailureNote{Provider: out.Provider, Kind: string(out.Err.Kind)})
		} else {
			empty := "unknown: provider returned empty response"
			resp.ErrorMessage = &empty
			failures = append(failures, moderator.FailureNote{Provider: out.Provider, Kind: string(llm.KindUnknown)})
		}
		responses = append(responses, resp)
	}
	return answers, failures, responses
}

func conversationMode(request *dto.OrchestrationQueryRequest) string {
	if request.ConversationMode == "" {
		return string(followup.ModeAuto)
	}
	return request.ConversationMode
}
