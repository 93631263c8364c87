package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:5050/api"

// Login paths accepted by the backend variants.
const (
	LoginPathAuth   = "/auth/login"
	LoginPathLegacy = "/login"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 4 << 20

// TokenFunc returns the bearer token to send, or "".
type TokenFunc func() string

// Config configures an HTTPClient.
type Config struct {
	BaseURL   string
	LoginPath string
	Timeout   time.Duration
	// Token supplies the Authorization bearer token. Optional.
	Token TokenFunc
	// HTTPClient overrides the transport. Optional.
	HTTPClient *http.Client
}

// HTTPClient implements Client over JSON HTTP.
type HTTPClient struct {
	base      string
	loginPath string
	token     TokenFunc
	http      *http.Client
}

// NewHTTPClient validates cfg and returns a client.
func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", cfg.BaseURL)
	}

	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = LoginPathAuth
	}
	if !strings.HasPrefix(loginPath, "/") {
		loginPath = "/" + loginPath
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{base: base, loginPath: loginPath, token: cfg.Token, http: hc}, nil
}

// BaseURL returns the normalized base URL.
func (c *HTTPClient) BaseURL() string { return c.base }

type authWire struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  flexID `json:"user_id"`
	User    *struct {
		ID       flexID `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
	Session *struct {
		AccessToken string `json:"access_token"`
	} `json:"session"`
}

func (w authWire) result() *AuthResult {
	res := &AuthResult{Success: w.Success, Message: w.Message, User: User{ID: string(w.UserID)}}
	if w.User != nil {
		if w.User.ID != "" {
			res.User.ID = string(w.User.ID)
		}
		res.User.Username = w.User.Username
		res.User.Email = w.User.Email
	}
	if w.Session != nil {
		res.AccessToken = w.Session.AccessToken
	}
	return res
}

func (c *HTTPClient) Signup(ctx context.Context, username, email, password string) (*AuthResult, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var w authWire
	if err := c.do(ctx, OpSignup, http.MethodPost, "/auth/signup", nil, body, authSchema, &w); err != nil {
		return nil, err
	}
	if !w.Success {
		return nil, &RequestError{Op: OpSignup, Message: orDefault(w.Message, "signup was not accepted")}
	}
	return w.result(), nil
}

func (c *HTTPClient) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	body := map[string]string{"identifier": identifier, "password": password}
	if strings.Contains(identifier, "@") {
		body["email"] = identifier
	} else {
		body["username"] = identifier
	}

	var w authWire
	if err := c.do(ctx, OpLogin, http.MethodPost, c.loginPath, nil, body, authSchema, &w); err != nil {
		return nil, err
	}
	if !w.Success {
		return nil, &RequestError{Op: OpLogin, Message: orDefault(w.Message, "invalid credentials")}
	}
	res := w.result()
	if res.User.ID == "" {
		return nil, &RequestError{Op: OpLogin, Message: "login response carried no user id"}
	}
	if res.User.Username == "" {
		res.User.Username = identifier
	}
	return res, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, OpLogout, http.MethodPost, "/auth/logout", nil, struct{}{}, nil, nil)
}

type questionWire struct {
	ID      flexID   `json:"id"`
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
}

func (c *HTTPClient) GetQuestions(ctx context.Context, mode string) ([]Question, error) {
	if strings.TrimSpace(mode) == "" {
		return nil, &RequestError{Op: OpQuestions, Message: "no quiz mode selected"}
	}
	var wire []questionWire
	path := "/questions/" + url.PathEscape(mode)
	if err := c.do(ctx, OpQuestions, http.MethodGet, path, nil, nil, questionsSchema, &wire); err != nil {
		return nil, err
	}

	qs := make([]Question, 0, len(wire))
	for _, w := range wire {
		qs = append(qs, Question{
			ID:      string(w.ID),
			Text:    w.Text,
			Kind:    kindOf(w.Options),
			Options: w.Options,
		})
	}
	return qs, nil
}

// kindOf maps a question to its QuestionKind. Anything carrying options is
// multiple choice, including "choice" and "age_choice"; a choice question with
// no options can only be answered freely.
func kindOf(options []string) QuestionKind {
	if len(options) > 0 {
		return KindMultipleChoice
	}
	return KindFreeText
}

func (c *HTTPClient) AnalyzeAnswer(ctx context.Context, text string) (*Analysis, error) {
	var a Analysis
	if err := c.do(ctx, OpAnalyze, http.MethodPost, "/analyze", nil, map[string]string{"answer": text}, analysisSchema, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *HTTPClient) SubmitAnswer(ctx context.Context, userID, questionID, text string) (*SubmitResult, error) {
	body := map[string]string{"user_id": userID, "question_id": questionID, "answer": text}
	var w struct {
		Score float64 `json:"score"`
	}
	if err := c.do(ctx, OpSubmitAnswer, http.MethodPost, "/submit-answer", nil, body, submitSchema, &w); err != nil {
		return nil, err
	}
	return &SubmitResult{Score: int(w.Score)}, nil
}

func (c *HTTPClient) GetRecommendations(ctx context.Context, userID string) (*Recommendation, error) {
	var r Recommendation
	if err := c.do(ctx, OpRecommend, http.MethodPost, "/recommend", nil, map[string]string{"user_id": userID}, recommendationSchema, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var w struct {
		Profile *Profile `json:"profile"`
	}
	q := url.Values{"user_id": {userID}}
	if err := c.do(ctx, OpGetProfile, http.MethodGet, "/profile", q, nil, profileSchema, &w); err != nil {
		return nil, err
	}
	if w.Profile == nil {
		return &Profile{}, nil
	}
	return w.Profile, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, userID string, p Profile) error {
	body := struct {
		UserID string `json:"user_id"`
		Profile
	}{UserID: userID, Profile: p}
	var w struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, OpUpdateProfile, http.MethodPost, "/profile", nil, body, nil, &w); err != nil {
		return err
	}
	if !w.Success {
		return &RequestError{Op: OpUpdateProfile, Message: orDefault(w.Message, "profile was not saved")}
	}
	return nil
}

func (c *HTTPClient) DashboardStats(ctx context.Context, userID string) (*DashboardStats, error) {
	var w struct {
		Stats DashboardStats `json:"stats"`
	}
	q := url.Values{"user_id": {userID}}
	if err := c.do(ctx, OpDashboardStats, http.MethodGet, "/dashboard/stats", q, nil, statsSchema, &w); err != nil {
		return nil, err
	}
	return &w.Stats, nil
}

func (c *HTTPClient) QuizHistory(ctx context.Context, userID string) ([]QuizHistoryEntry, error) {
	var w struct {
		History []QuizHistoryEntry `json:"history"`
	}
	q := url.Values{"user_id": {userID}}
	if err := c.do(ctx, OpQuizHistory, http.MethodGet, "/quiz/history", q, nil, historySchema, &w); err != nil {
		return nil, err
	}
	return w.History, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, OpPing, http.MethodGet, "/test", nil, nil, nil, nil)
}

// do performs one request. body, when non-nil, is sent as JSON; the response
// is validated against schema and decoded into out when both are set.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, query url.Values, body any, schema *responseSchema, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Op: op, Message: "could not encode request", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &RequestError{Op: op, Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", RequestIDFrom(ctx))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestError{Op: op, Message: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &RequestError{Op: op, Status: resp.StatusCode, Message: "could not read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: serverMessage(raw, resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	if err := validateBody(schema, raw); err != nil {
		return &RequestError{Op: op, Status: resp.StatusCode, Message: "unexpected response from server", Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &RequestError{Op: op, Status: resp.StatusCode, Message: "unexpected response from server", Err: err}
	}
	return nil
}

// serverMessage pulls "error" or "message" out of a JSON error body.
func serverMessage(raw []byte, status int) string {
	var body struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		switch e := body.Error.(type) {
		case string:
			if e != "" {
				return e
			}
		case map[string]any:
			if m, ok := e["message"].(string); ok && m != "" {
				return m
			}
		}
		if body.Message != "" {
			return body.Message
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "HTTP " + strconv.Itoa(status)
}

func transportMessage(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) {
		if ue.Timeout() {
			return "the server took too long to respond"
		}
		return "could not reach the server: " + ue.Err.Error()
	}
	return err.Error()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// flexID decodes a JSON string or number into a string.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}
