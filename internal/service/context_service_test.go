package service

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"orquix-backend/internal/dto"
	"orquix-backend/internal/entity"
	"orquix-backend/internal/repository/contract"
	"orquix-backend/internal/repository/specification"
	"orquix-backend/internal/repository/unitofwork"
	"orquix-backend/pkg/contextbuilder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trackingSessionRepo counts writes so tests can assert which turns touch
// the stored session.
type trackingSessionRepo struct {
	session *entity.ContextSession
	creates int
	updates int
}

func (r *trackingSessionRepo) Create(ctx context.Context, s *entity.ContextSession) error {
	r.creates++
	r.session = s
	return nil
}

func (r *trackingSessionRepo) UpdateIfUnchanged(ctx context.Context, s *entity.ContextSession, expected time.Time) (bool, error) {
	r.updates++
	r.session = s
	return true, nil
}

func (r *trackingSessionRepo) Deactivate(ctx context.Context, id uuid.UUID) error { return nil }

func (r *trackingSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContextSession, error) {
	if r.session == nil {
		return nil, nil
	}
	copied := *r.session
	return &copied, nil
}

func (r *trackingSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContextSession, error) {
	return nil, nil
}

type trackingUow struct {
	*fakeUow
	sessions *trackingSessionRepo
}

func (u *trackingUow) ContextSessionRepository() contract.ContextSessionRepository {
	return u.sessions
}

type trackingFactory struct {
	state    *fakeState
	sessions *trackingSessionRepo
}

func (f *trackingFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &trackingUow{fakeUow: &fakeUow{state: f.state}, sessions: f.sessions}
}

const informationClassification = `{"message_type": "information", "confidence": 0.9, "reply": "Anotado."}`
const questionClassification = `{"message_type": "question", "confidence": 0.9, "reply": "Con lo que sé hasta ahora, diría que sí."}`
const vagueClassification = `{"message_type": "information", "confidence": 0.3, "reply": "¿Puedes darme más detalles?"}`
const bakeryFacts = `{"negocio": ["panadería artesanal en Valencia"]}`

func newTestContextService(t *testing.T, sessions *trackingSessionRepo, classificationJSON, factsJSON string) IContextService {
	t.Helper()

	testLog := log.New(os.Stdout, "", log.LstdFlags)
	return NewContextService(
		&trackingFactory{state: &fakeState{}, sessions: sessions},
		contextbuilder.NewClassifier(&stubAdapter{name: "resolver", text: classificationJSON}, testLog),
		contextbuilder.NewExtractor(&stubAdapter{name: "resolver", text: factsJSON}, testLog),
		nopLogger{},
	)
}

func activeSession(accumulated string) *entity.ContextSession {
	return &entity.ContextSession{
		Id:                 uuid.New(),
		ProjectId:          uuid.New(),
		UserId:             uuid.New(),
		AccumulatedContext: accumulated,
		IsActive:           true,
	}
}

func TestHandleMessageInformationGrowsContext(t *testing.T) {
	sessions := &trackingSessionRepo{}
	svc := newTestContextService(t, sessions, informationClassification, bakeryFacts)

	res, err := svc.HandleMessage(context.Background(), uuid.New(), uuid.New(), &dto.ContextMessageRequest{
		Content: "Tengo una panadería artesanal en Valencia",
	})
	require.NoError(t, err)

	assert.Equal(t, "information", res.MessageType)
	assert.Contains(t, res.ContextPreview, "panadería artesanal en Valencia")
	assert.Equal(t, 1, res.ContextElementsCount)
	assert.Equal(t, 1, sessions.creates)
	assert.Equal(t, 1, sessions.updates)
	require.NotNil(t, sessions.session)
	assert.Len(t, sessions.session.ConversationHistory, 2)
}

func TestHandleMessageLowConfidenceLeavesSessionUntouched(t *testing.T) {
	sessions := &trackingSessionRepo{session: activeSession("## negocio\n- panadería artesanal\n")}
	before := sessions.session.AccumulatedContext
	svc := newTestContextService(t, sessions, vagueClassification, bakeryFacts)

	res, err := svc.HandleMessage(context.Background(), sessions.session.UserId, sessions.session.ProjectId, &dto.ContextMessageRequest{
		Content: "bueno eso",
	})
	require.NoError(t, err)

	assert.Equal(t, "clarification", res.MessageType)
	assert.NotEmpty(t, res.Reply)
	assert.Equal(t, sessions.session.Id, res.SessionId)

	// Below the confidence floor nothing is stored.
	assert.Zero(t, sessions.creates)
	assert.Zero(t, sessions.updates)
	assert.Equal(t, before, sessions.session.AccumulatedContext)
	assert.Empty(t, sessions.session.ConversationHistory)
}

func TestHandleMessageQuestionSuggestsMissingTopics(t *testing.T) {
	sessions := &trackingSessionRepo{session: activeSession("## negocio\n- panadería artesanal\n")}
	svc := newTestContextService(t, sessions, questionClassification, bakeryFacts)

	res, err := svc.HandleMessage(context.Background(), sessions.session.UserId, sessions.session.ProjectId, &dto.ContextMessageRequest{
		Content: "¿Me conviene abrir otra tienda?",
	})
	require.NoError(t, err)

	assert.Equal(t, "question", res.MessageType)
	assert.False(t, res.Ready)
	assert.NotEmpty(t, res.Suggestions)
}

func TestHandleMessageQuestionOverCompleteContextAnswersReady(t *testing.T) {
	doc := contextbuilder.NewDocument()
	doc.Merge(contextbuilder.Facts{
		contextbuilder.TopicBusiness:   {"panadería artesanal en Valencia"},
		contextbuilder.TopicGoal:       {"compensar la caída de ventas en verano"},
		contextbuilder.TopicConstraint: {"presupuesto de 5000 euros"},
		contextbuilder.TopicProblem:    {"las ventas bajan un 40% en julio"},
		contextbuilder.TopicMetric:     {"ticket medio de 8 euros"},
	})
	sessions := &trackingSessionRepo{session: activeSession(doc.Render())}
	svc := newTestContextService(t, sessions, questionClassification, bakeryFacts)

	res, err := svc.HandleMessage(context.Background(), sessions.session.UserId, sessions.session.ProjectId, &dto.ContextMessageRequest{
		Content: "¿Lanzo ya la consulta?",
	})
	require.NoError(t, err)

	assert.Equal(t, string(contextbuilder.MessageTypeReady), res.MessageType)
	assert.True(t, res.Ready)
	assert.Equal(t, 5, res.ContextElementsCount)
	require.Len(t, res.Suggestions, 1)
}
