package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "careerbot/internal/common/errors"
	"careerbot/internal/common/logger"
	"careerbot/internal/dialogue/resolve"
	"careerbot/internal/dialogue/statemachine"
	"careerbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type unknownClassifier struct{}

func (unknownClassifier) Classify(context.Context, string) ([]models.ClassificationResult, error) {
	return []models.ClassificationResult{{Intent: models.UnknownIntent, Probability: 1.0}}, nil
}

type emptyCatalog struct{}

func (emptyCatalog) Lookup(string) (models.Intent, bool) { return models.Intent{}, false }

// failingStore wraps a store and fails saves on demand.
type failingStore struct {
	Store
	failSave bool
}

func (f *failingStore) Save(ctx context.Context, sess *models.Session) error {
	if f.failSave {
		return apperrors.NewSessionStoreFailedError("set", errors.New("connection refused"))
	}
	return f.Store.Save(ctx, sess)
}

func createTestService(t *testing.T, store Store, opts ...Option) *Service {
	machine := statemachine.New(unknownClassifier{}, resolve.New(emptyCatalog{}, resolve.NewLockedRand(1)), logger.NewNoOpLogger())
	return NewService(store, machine, logger.NewTestLogger(t), opts...)
}

func texts(msgs []models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

// ==========================
// Lifecycle Tests
// ==========================

func TestService_Start(t *testing.T) {
	svc := createTestService(t, NewMemoryStore(time.Hour))

	reply, err := svc.Start(context.Background())
	require.NoError(t, err)

	sess := reply.Session
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, models.StateInitial, sess.State)
	assert.Equal(t, models.ControlNone, sess.Control)
	assert.Empty(t, sess.Facts)
	assert.Equal(t, statemachine.Greeting, texts(sess.History))
	assert.Equal(t, statemachine.Greeting, texts(reply.Messages))

	loaded, err := svc.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
}

func TestService_FullConversation(t *testing.T) {
	ctx := context.Background()
	svc := createTestService(t, NewMemoryStore(time.Hour))

	start, err := svc.Start(ctx)
	require.NoError(t, err)
	id := start.Session.ID

	reply, err := svc.Send(ctx, id, "John")
	require.NoError(t, err)
	assert.Equal(t, models.StateAskingEmail, reply.Session.State)
	assert.Equal(t, "John", reply.Session.Facts[models.FactName])

	reply, err = svc.Send(ctx, id, "john@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.StateStageSelection, reply.Session.State)
	assert.Equal(t, models.ControlStageButtons, reply.Session.Control)
	assert.Equal(t, []string{
		"Thanks for sharing, John! Let me check… is this correct: john@example.com?",
		"Thank you, John! Now, please select your educational stage:",
	}, texts(reply.Messages))

	reply, err = svc.SelectStage(ctx, id, models.StageUndergraduate)
	require.NoError(t, err)
	assert.Equal(t, models.ControlUndergraduateForm, reply.Session.Control)

	reply, err = svc.SubmitUndergraduate(ctx, id, "Computer Science", "2nd Year")
	require.NoError(t, err)
	assert.Equal(t, models.StateAwaitingCourseEnjoyment, reply.Session.State)

	reply, err = svc.Send(ctx, id, "yes")
	require.NoError(t, err)
	assert.Equal(t, models.StateUndergraduateOptions, reply.Session.State)

	sess, err := svc.Get(ctx, id)
	require.NoError(t, err)
	// greeting, then one user and one bot line per turn, plus the stage prompt
	assert.Len(t, sess.History, 2+5*2+1)
	last := sess.History[len(sess.History)-2:]
	assert.Equal(t, models.SenderUser, last[0].Sender)
	assert.Equal(t, "user-message", last[0].Class)
	assert.Equal(t, models.SenderBot, last[1].Sender)
	assert.Equal(t, map[string]string{
		models.FactName:  "John",
		models.FactEmail: "john@example.com",
		models.FactStage: "Undergraduate",
		models.FactMajor: "Computer Science",
		models.FactYear:  "2nd Year",
	}, map[string]string(sess.Facts))
}

func TestService_FarewellResets(t *testing.T) {
	ctx := context.Background()
	svc := createTestService(t, NewMemoryStore(time.Hour))

	start, err := svc.Start(ctx)
	require.NoError(t, err)
	id := start.Session.ID
	_, err = svc.Send(ctx, id, "John")
	require.NoError(t, err)

	reply, err := svc.Send(ctx, id, "bye")
	require.NoError(t, err)
	assert.Equal(t, models.StateInitial, reply.Session.State)
	assert.Empty(t, reply.Session.Facts)
	assert.Equal(t, append([]string{"Goodbye! Have a great day!"}, statemachine.Greeting...), texts(reply.Messages))
}

func TestService_HistoryLimit(t *testing.T) {
	ctx := context.Background()
	svc := createTestService(t, NewMemoryStore(time.Hour), WithHistoryLimit(3))

	start, err := svc.Start(ctx)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = svc.Send(ctx, start.Session.ID, "what can you do for me")
		require.NoError(t, err)
	}

	sess, err := svc.Get(ctx, start.Session.ID)
	require.NoError(t, err)
	assert.Len(t, sess.History, 3)
}

func TestService_End(t *testing.T) {
	ctx := context.Background()
	svc := createTestService(t, NewMemoryStore(time.Hour))

	start, err := svc.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.End(ctx, start.Session.ID))

	_, err = svc.Get(ctx, start.Session.ID)
	assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound))
	assert.True(t, errors.Is(svc.End(ctx, start.Session.ID), apperrors.ErrSessionNotFound))
}

// ==========================
// Error Tests
// ==========================

func TestService_UnknownSession(t *testing.T) {
	svc := createTestService(t, NewMemoryStore(time.Hour))

	_, err := svc.Send(context.Background(), "missing", "hi")
	assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound))
}

func TestService_RejectedTurnLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	svc := createTestService(t, NewMemoryStore(time.Hour))

	start, err := svc.Start(ctx)
	require.NoError(t, err)

	_, err = svc.SelectStage(ctx, start.Session.ID, models.StagePost10th)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidControl))

	_, err = svc.Send(ctx, start.Session.ID, "  ")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	sess, err := svc.Get(ctx, start.Session.ID)
	require.NoError(t, err)
	assert.Len(t, sess.History, len(statemachine.Greeting))
	assert.Equal(t, models.StateInitial, sess.State)
}

func TestService_SaveFailure(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: NewMemoryStore(time.Hour)}
	svc := createTestService(t, store)

	start, err := svc.Start(ctx)
	require.NoError(t, err)

	store.failSave = true
	_, err = svc.Send(ctx, start.Session.ID, "John")
	assert.True(t, errors.Is(err, apperrors.ErrSessionStore))

	sess, err := svc.Get(ctx, start.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateInitial, sess.State)
}

// ==========================
// Concurrency Tests
// ==========================

func TestService_ConcurrentTurnsOnOneSession(t *testing.T) {
	ctx := context.Background()
	svc := createTestService(t, NewMemoryStore(time.Hour))

	start, err := svc.Start(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Send(ctx, start.Session.ID, "what can you do for me")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := svc.Get(ctx, start.Session.ID)
	require.NoError(t, err)
	assert.Len(t, sess.History, len(statemachine.Greeting)+20)
	assert.Equal(t, 0, svc.lockCount())
}

func TestService_ReleasesLocksAndExpiredSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(200 * time.Millisecond)
	svc := createTestService(t, store)

	for i := 0; i < 200; i++ {
		start, err := svc.Start(ctx)
		require.NoError(t, err)
		_, err = svc.Send(ctx, start.Session.ID, "Asha")
		require.NoError(t, err)
	}
	assert.Equal(t, 0, svc.lockCount())
	assert.Equal(t, 200, store.Len())

	_, err := svc.Send(ctx, "missing", "hi")
	assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound))
	assert.Equal(t, 0, svc.lockCount())

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 200, store.Sweep())
	assert.Equal(t, 0, store.Len())
}
