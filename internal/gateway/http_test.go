package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// received is what the test server saw on its most recent request.
type received struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
	Header http.Header
}

// testServer serves one canned response and records what it received.
type testServer struct {
	*httptest.Server
	calls atomic.Int32

	mu   sync.Mutex
	last received
}

func (ts *testServer) seen() received {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.last
}

func newTestServer(t *testing.T, status int, body string) *testServer {
	t.Helper()
	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.calls.Add(1)
		rec := received{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}
		ts.mu.Lock()
		ts.last = rec
		ts.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestClient(t *testing.T, ts *testServer, token string) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(Config{
		BaseURL: ts.URL + "/api/",
		Token:   func() string { return token },
	})
	require.NoError(t, err)
	return c
}

func TestLogin_Success(t *testing.T) {
	ts := newTestServer(t, 200, `{"success":true,"user":{"id":"u1","username":"alice","email":"a@x.com"},"session":{"access_token":"tok"}}`)
	c := newTestClient(t, ts, "")

	res, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, &AuthResult{
		Success:     true,
		User:        User{ID: "u1", Username: "alice", Email: "a@x.com"},
		AccessToken: "tok",
	}, res)

	assert.Equal(t, http.MethodPost, ts.seen().Method)
	assert.Equal(t, "/api/auth/login", ts.seen().Path)
	assert.Equal(t, "alice", ts.seen().Body["identifier"])
	assert.Equal(t, "alice", ts.seen().Body["username"])
	assert.Equal(t, "secret", ts.seen().Body["password"])
	assert.Empty(t, ts.seen().Header.Get("Authorization"))
	assert.NotEmpty(t, ts.seen().Header.Get("X-Request-ID"))
	assert.EqualValues(t, 1, ts.calls.Load())
}

func TestLogin_LegacyVariant(t *testing.T) {
	ts := newTestServer(t, 200, `{"success":true,"user_id":42,"message":"Welcome, alice!"}`)
	c, err := NewHTTPClient(Config{BaseURL: ts.URL, LoginPath: "login"})
	require.NoError(t, err)

	res, err := c.Login(context.Background(), "alice@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "/login", ts.seen().Path)
	assert.Equal(t, "alice@x.com", ts.seen().Body["email"])
	assert.Equal(t, "42", res.User.ID)
	assert.Equal(t, "alice@x.com", res.User.Username)
}

func TestLogin_ServerMessageSurfaced(t *testing.T) {
	ts := newTestServer(t, 401, `{"success":false,"error":"Invalid username or password"}`)
	c := newTestClient(t, ts, "")

	_, err := c.Login(context.Background(), "alice", "wrong")
	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, OpLogin, re.Op)
	assert.Equal(t, 401, re.Status)
	assert.Equal(t, "Invalid username or password", re.Message)
	assert.Equal(t, "Invalid username or password", UserMessage(err))
}

func TestLogin_UnsuccessfulBody(t *testing.T) {
	ts := newTestServer(t, 200, `{"success":false,"message":"Email not confirmed"}`)
	c := newTestClient(t, ts, "")

	_, err := c.Login(context.Background(), "alice", "secret")
	require.Error(t, err)
	assert.Equal(t, "Email not confirmed", UserMessage(err))
}

func TestServerMessage(t *testing.T) {
	tests := []struct {
		body   string
		status int
		want   string
	}{
		{`{"error":"User not found"}`, 404, "User not found"},
		{`{"message":"bad mode"}`, 400, "bad mode"},
		{`{"error":{"message":"nested"}}`, 500, "nested"},
		{`<html>oops</html>`, 502, "Bad Gateway"},
		{``, 599, "HTTP 599"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, serverMessage([]byte(tt.body), tt.status), tt.body)
	}
}

func TestGetQuestions(t *testing.T) {
	ts := newTestServer(t, 200, `[
		{"id":"name","text":"What's your name?","type":"text"},
		{"id":"age","text":"How old are you?","type":"age_choice","options":["13","14"]},
		{"id":7,"text":"Pick one","type":"choice","options":["A","B"]},
		{"id":"odd","text":"Choice without options","type":"choice"}
	]`)
	c := newTestClient(t, ts, "tok")

	qs, err := c.GetQuestions(context.Background(), "ssc")
	require.NoError(t, err)
	require.Len(t, qs, 4)
	assert.Equal(t, "/api/questions/ssc", ts.seen().Path)
	assert.Equal(t, "Bearer tok", ts.seen().Header.Get("Authorization"))

	assert.Equal(t, Question{ID: "name", Text: "What's your name?", Kind: KindFreeText}, qs[0])
	assert.Equal(t, KindMultipleChoice, qs[1].Kind)
	assert.Equal(t, []string{"13", "14"}, qs[1].Options)
	assert.Equal(t, "7", qs[2].ID)
	assert.Equal(t, KindFreeText, qs[3].Kind)
}

func TestGetQuestions_Empty(t *testing.T) {
	ts := newTestServer(t, 200, `[]`)
	qs, err := newTestClient(t, ts, "").GetQuestions(context.Background(), "ssc")
	require.NoError(t, err)
	assert.Empty(t, qs)
}

func TestGetQuestions_UnknownMode(t *testing.T) {
	ts := newTestServer(t, 400, `{"error":"Invalid mode. Use ssc or hsc"}`)
	_, err := newTestClient(t, ts, "").GetQuestions(context.Background(), "xyz")
	require.Error(t, err)
	assert.Equal(t, "Invalid mode. Use ssc or hsc", UserMessage(err))
}

func TestGetQuestions_NoModeSendsNothing(t *testing.T) {
	ts := newTestServer(t, 200, `[]`)
	_, err := newTestClient(t, ts, "").GetQuestions(context.Background(), " ")
	require.Error(t, err)
	assert.EqualValues(t, 0, ts.calls.Load())
}

func TestGetQuestions_SchemaViolation(t *testing.T) {
	ts := newTestServer(t, 200, `[{"id":"q1"}]`)
	_, err := newTestClient(t, ts, "").GetQuestions(context.Background(), "ssc")
	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "unexpected response from server", re.Message)
	assert.Error(t, re.Unwrap())
}

func TestSubmitAnswer(t *testing.T) {
	ts := newTestServer(t, 200, `{"success":true,"score":40}`)
	res, err := newTestClient(t, ts, "").SubmitAnswer(context.Background(), "u1", "fav_subject", "Mathematics")
	require.NoError(t, err)
	assert.Equal(t, 40, res.Score)
	assert.Equal(t, map[string]any{"user_id": "u1", "question_id": "fav_subject", "answer": "Mathematics"}, ts.seen().Body)
}

func TestSubmitAnswer_NotFound(t *testing.T) {
	ts := newTestServer(t, 404, `{"error":"User not found"}`)
	_, err := newTestClient(t, ts, "").SubmitAnswer(context.Background(), "u9", "q", "a")
	assert.True(t, IsNotFound(err))
}

func TestAnalyzeAnswer(t *testing.T) {
	ts := newTestServer(t, 200, `{"sentiment":0.5,"keywords":["love","math"],"confidence":0.5}`)
	a, err := newTestClient(t, ts, "").AnalyzeAnswer(context.Background(), "I love math")
	require.NoError(t, err)
	assert.Equal(t, &Analysis{Sentiment: 0.5, Keywords: []string{"love", "math"}, Confidence: 0.5}, a)
	assert.Equal(t, "I love math", ts.seen().Body["answer"])
}

func TestGetRecommendations(t *testing.T) {
	ts := newTestServer(t, 200, `{"streams":["Science"],"careers":["Engineer"],"analysis":"Good fit."}`)
	r, err := newTestClient(t, ts, "").GetRecommendations(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, &Recommendation{Streams: []string{"Science"}, Careers: []string{"Engineer"}, Analysis: "Good fit."}, r)
	assert.Equal(t, "/api/recommend", ts.seen().Path)
}

func TestDashboardStats(t *testing.T) {
	ts := newTestServer(t, 200, `{"success":true,"stats":{"total_quizzes":3,"completed_quizzes":2,"incomplete_quizzes":1,"average_score":72.5}}`)
	s, err := newTestClient(t, ts, "").DashboardStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, &DashboardStats{TotalQuizzes: 3, CompletedQuizzes: 2, IncompleteQuizzes: 1, AverageScore: 72.5}, s)
	assert.Equal(t, "user_id=u1", ts.seen().Query)
}

func TestQuizHistory(t *testing.T) {
	ts := newTestServer(t, 200, `{"success":true,"count":1,"history":[
		{"id":9,"mode":"ssc","class_level":"10","is_completed":true,"score":80,
		 "created_at":"2026-01-02T10:00:00.123456+00:00","completed_at":null}]}`)
	h, err := newTestClient(t, ts, "").QuizHistory(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.EqualValues(t, 9, h[0].ID)
	assert.True(t, h[0].IsCompleted)
	assert.Equal(t, 2026, h[0].CreatedAt.Year())
	assert.Nil(t, h[0].CompletedAt)
}

func TestProfile(t *testing.T) {
	ts := newTestServer(t, 200, `{"success":true,"profile":{"phone":"98765","city":"Pune","state":"Maharashtra"}}`)
	c := newTestClient(t, ts, "")

	p, err := c.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Pune", p.City)

	require.NoError(t, c.UpdateProfile(context.Background(), "u1", Profile{City: "Mumbai"}))
	assert.Equal(t, "u1", ts.seen().Body["user_id"])
	assert.Equal(t, "Mumbai", ts.seen().Body["city"])
}

func TestProfile_Missing(t *testing.T) {
	ts := newTestServer(t, 200, `{"success":false,"profile":null}`)
	p, err := newTestClient(t, ts, "").GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, &Profile{}, p)
}

func TestTransportError(t *testing.T) {
	ts := newTestServer(t, 200, `{}`)
	c := newTestClient(t, ts, "")
	ts.Close()

	err := c.Ping(context.Background())
	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Zero(t, re.Status)
	assert.True(t, strings.HasPrefix(re.Message, "could not reach the server"), re.Message)
	assert.NotNil(t, re.Err)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := NewHTTPClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	err = c.Ping(context.Background())
	assert.Equal(t, "the server took too long to respond", UserMessage(err))
}

func TestNewHTTPClient_Validation(t *testing.T) {
	c, err := NewHTTPClient(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	_, err = NewHTTPClient(Config{BaseURL: "localhost:5050"})
	assert.Error(t, err)
}

func TestRequestIDFromContext(t *testing.T) {
	ts := newTestServer(t, 200, `{"status":"ok"}`)
	ctx := WithRequestID(context.Background(), "req-123")
	require.NoError(t, newTestClient(t, ts, "").Ping(ctx))
	assert.Equal(t, "req-123", ts.seen().Header.Get("X-Request-ID"))
}
