package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/careerguider/internal/store"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []store.APIRequestEventData
	err    error
}

func (r *recordingRepo) AppendAPIRequest(_ context.Context, d store.APIRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, d)
	return r.err
}

func (r *recordingRepo) AppendLLMRequest(context.Context, store.LLMRequestEventData) error {
	return nil
}

func (r *recordingRepo) QueryEvents(context.Context, store.QueryOpts) ([]store.Event, error) {
	return nil, nil
}

func (r *recordingRepo) GetEvent(context.Context, int) (*store.Event, error) { return nil, nil }

func TestWithLogging_RecordsSuccess(t *testing.T) {
	ts := newTestServer(t, 200, `{"success":true,"score":20}`)
	repo := &recordingRepo{}
	core, logs := observer.New(zap.DebugLevel)
	c := WithLogging(newTestClient(t, ts, ""), repo, zap.New(core))

	res, err := c.SubmitAnswer(context.Background(), "u1", "q1", "yes")
	require.NoError(t, err)
	assert.Equal(t, 20, res.Score)

	require.Len(t, repo.events, 1)
	ev := repo.events[0]
	assert.Equal(t, OpSubmitAnswer, ev.Op)
	assert.Equal(t, "POST", ev.Method)
	assert.Equal(t, "/submit-answer", ev.Path)
	assert.Equal(t, 200, ev.Status)
	assert.True(t, ev.Success)
	assert.Equal(t, ts.seen().Header.Get("X-Request-ID"), ev.RequestID)

	entries := logs.FilterMessage("api request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, OpSubmitAnswer, entries[0].ContextMap()["op"])
}

func TestWithLogging_RecordsFailure(t *testing.T) {
	ts := newTestServer(t, 404, `{"error":"User not found"}`)
	repo := &recordingRepo{}
	core, logs := observer.New(zap.DebugLevel)
	c := WithLogging(newTestClient(t, ts, ""), repo, zap.New(core))

	_, err := c.GetRecommendations(context.Background(), "nobody")
	require.Error(t, err)
	assert.Equal(t, "User not found", UserMessage(err))

	require.Len(t, repo.events, 1)
	assert.False(t, repo.events[0].Success)
	assert.Equal(t, 404, repo.events[0].Status)
	assert.Contains(t, repo.events[0].ErrorMessage, "User not found")
	assert.Equal(t, 1, logs.FilterMessage("api request failed").Len())
}

func TestWithLogging_RepoFailureDoesNotFailCall(t *testing.T) {
	ts := newTestServer(t, 200, `{"status":"ok"}`)
	repo := &recordingRepo{err: errors.New("database is locked")}
	core, logs := observer.New(zap.DebugLevel)
	c := WithLogging(newTestClient(t, ts, ""), repo, zap.New(core))

	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("record api request").Len())
}

func TestWithLogging_NilDependencies(t *testing.T) {
	ts := newTestServer(t, 200, `[]`)
	c := WithLogging(newTestClient(t, ts, ""), nil, nil)
	qs, err := c.GetQuestions(context.Background(), "hsc")
	require.NoError(t, err)
	assert.Empty(t, qs)
}

func TestWithLogging_SQLiteRepo(t *testing.T) {
	st, err := store.Open(t.TempDir() + "/events.db")
	require.NoError(t, err)
	defer st.Close()

	ts := newTestServer(t, 200, `{"success":true,"user":{"id":"u1","username":"alice","email":"a@x.com"},"session":{"access_token":"tok"}}`)
	c := WithLogging(newTestClient(t, ts, ""), st.EventRepo(), zap.NewNop())

	_, err = c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	events, err := st.EventRepo().QueryEvents(context.Background(), store.QueryOpts{Kind: store.KindAPI})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, OpLogin, events[0].Op)
	assert.Equal(t, "POST /auth/login", events[0].Target)
}
