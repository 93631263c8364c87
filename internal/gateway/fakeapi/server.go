// Package fakeapi is an in-memory stand-in for the career guidance backend,
// used by tests and the fakeapi command for local development.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// PointsPerAnswer is added to the score on every accepted submission.
const PointsPerAnswer = 20

// Seed is an account created at startup.
type Seed struct {
	Username string
	Email    string
	Password string
}

// Options configures a Server.
type Options struct {
	Seeds []Seed
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Logger     *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type user struct {
	ID       string
	Username string
	Email    string
	Hash     []byte
}

type answer struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

type run struct {
	ID          int64      `json:"id"`
	Mode        string     `json:"mode"`
	ClassLevel  string     `json:"class_level"`
	IsCompleted bool       `json:"is_completed"`
	Score       int        `json:"score"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
	answers     []answer
}

type profile struct {
	Phone         string `json:"phone"`
	DateOfBirth   string `json:"date_of_birth"`
	Gender        string `json:"gender"`
	SchoolCollege string `json:"school_college"`
	City          string `json:"city"`
	State         string `json:"state"`
}

type recommendation struct {
	Streams  []string `json:"streams"`
	Careers  []string `json:"careers"`
	Analysis string   `json:"analysis"`
}

// Server holds all state in memory.
type Server struct {
	cost   int
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	users     map[string]*user // by id
	byLogin   map[string]string
	tokens    map[string]string // token -> user id
	modes     map[string]string // user id -> last requested mode
	runs      map[string][]*run // user id -> runs, oldest first
	profiles  map[string]profile
	nextUser  int
	nextRunID int64
}

// New returns a Server with the seed accounts created.
func New(opts Options) (*Server, error) {
	s := &Server{
		cost:     opts.BcryptCost,
		logger:   opts.Logger,
		now:      opts.Now,
		users:    map[string]*user{},
		byLogin:  map[string]string{},
		tokens:   map[string]string{},
		modes:    map[string]string{},
		runs:     map[string][]*run{},
		profiles: map[string]profile{},
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	for _, seed := range opts.Seeds {
		if _, msg := s.createUser(seed.Username, seed.Email, seed.Password); msg != "" {
			return nil, &seedError{seed.Username, msg}
		}
	}
	return s, nil
}

type seedError struct{ user, msg string }

func (e *seedError) Error() string { return "seed " + e.user + ": " + e.msg }

// Handler returns the API routes mounted under /api.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/test", s.handleTest).Methods("GET")
	api.HandleFunc("/auth/signup", s.handleSignup).Methods("POST")
	api.HandleFunc("/auth/login", s.handleLogin).Methods("POST")
	api.HandleFunc("/login", s.handleLogin).Methods("POST")
	api.HandleFunc("/auth/logout", s.handleLogout).Methods("POST")
	api.HandleFunc("/questions/{mode}", s.handleQuestions).Methods("GET")
	api.HandleFunc("/analyze", s.handleAnalyze).Methods("POST")
	api.HandleFunc("/submit-answer", s.handleSubmit).Methods("POST")
	api.HandleFunc("/recommend", s.handleRecommend).Methods("POST")
	api.HandleFunc("/profile", s.handleGetProfile).Methods("GET")
	api.HandleFunc("/profile", s.handleUpdateProfile).Methods("POST")
	api.HandleFunc("/dashboard/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/quiz/history", s.handleHistory).Methods("GET")

	r.Use(s.logRequests)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "Backend is running!"})
}

// createUser must not be called with s.mu held. It returns a message when
// the account cannot be created.
func (s *Server) createUser(username, email, password string) (*user, string) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" || password == "" {
		return nil, "username, email and password are required"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, "could not hash password"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byLogin[strings.ToLower(username)]; ok {
		return nil, "Username already taken"
	}
	if _, ok := s.byLogin[email]; ok {
		return nil, "Email already registered"
	}
	s.nextUser++
	u := &user{ID: "u" + strconv.Itoa(s.nextUser), Username: username, Email: email, Hash: hash}
	s.users[u.ID] = u
	s.byLogin[strings.ToLower(username)] = u.ID
	s.byLogin[email] = u.ID
	return u, ""
}

func userJSON(u *user) map[string]any {
	return map[string]any{"id": u.ID, "username": u.Username, "email": u.Email}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	u, msg := s.createUser(req.Username, req.Email, req.Password)
	switch {
	case msg == "":
	case strings.Contains(msg, "already"):
		writeError(w, http.StatusConflict, msg)
		return
	default:
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"user":    userJSON(u),
		"message": "Signup successful! Please login.",
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Username   string `json:"username"`
		Email      string `json:"email"`
		Password   string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	login := strings.ToLower(strings.TrimSpace(firstNonEmpty(req.Identifier, req.Username, req.Email)))

	s.mu.Lock()
	u := s.users[s.byLogin[login]]
	s.mu.Unlock()

	if u == nil || bcrypt.CompareHashAndPassword(u.Hash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = u.ID
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    userJSON(u),
		"session": map[string]any{"access_token": token},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if tok := bearer(r); tok != "" {
		s.mu.Lock()
		delete(s.tokens, tok)
		s.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(tok)
	}
	return ""
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	mode := strings.ToLower(mux.Vars(r)["mode"])
	qs := questionBank(mode)
	if qs == nil {
		writeError(w, http.StatusBadRequest, "Invalid mode. Use ssc or hsc")
		return
	}
	if tok := bearer(r); tok != "" {
		s.mu.Lock()
		if id, ok := s.tokens[tok]; ok {
			s.modes[id] = mode
		}
		s.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, qs)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answer string `json:"answer"`
	}
	if !decode(w, r, &req) {
		return
	}
	score := sentiment(req.Answer)
	conf := score
	if conf < 0 {
		conf = -conf
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sentiment":  score,
		"keywords":   keywords(req.Answer),
		"confidence": conf,
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID     string `json:"user_id"`
		QuestionID string `json:"question_id"`
		Answer     string `json:"answer"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Answer) == "" || req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "question_id and answer are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[req.UserID]; !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	cur := s.openRun(req.UserID)
	cur.answers = append(cur.answers, answer{QuestionID: req.QuestionID, Answer: req.Answer})
	cur.Score += PointsPerAnswer

	bank := questionBank(cur.Mode)
	if len(bank) > 0 && req.QuestionID == bank[len(bank)-1].ID {
		now := s.now()
		cur.IsCompleted = true
		cur.CompletedAt = &now
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "score": cur.Score})
}

// openRun returns the user's unfinished run, starting one if needed.
// Caller holds s.mu.
func (s *Server) openRun(userID string) *run {
	runs := s.runs[userID]
	if n := len(runs); n > 0 && !runs[n-1].IsCompleted {
		return runs[n-1]
	}
	mode := s.modes[userID]
	if mode == "" {
		mode = "ssc"
	}
	level := "10"
	if mode == "hsc" {
		level = "12"
	}
	s.nextRunID++
	cur := &run{ID: s.nextRunID, Mode: mode, ClassLevel: level, CreatedAt: s.now()}
	s.runs[userID] = append(runs, cur)
	return cur
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	_, known := s.users[req.UserID]
	var latest *run
	if runs := s.runs[req.UserID]; len(runs) > 0 {
		latest = runs[len(runs)-1]
	}
	var answers []answer
	if latest != nil {
		answers = append(answers, latest.answers...)
	}
	s.mu.Unlock()

	switch {
	case !known:
		writeError(w, http.StatusNotFound, "User not found")
	case len(answers) == 0:
		writeError(w, http.StatusNotFound, "No quiz answers found. Take the quiz first.")
	default:
		writeJSON(w, http.StatusOK, recommend(answers))
	}
}

func (s *Server) knownUser(w http.ResponseWriter, id string) bool {
	s.mu.Lock()
	_, ok := s.users[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
	}
	return ok
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("user_id")
	if !s.knownUser(w, id) {
		return
	}
	s.mu.Lock()
	p, ok := s.profiles[id]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "profile": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "profile": p})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		profile
	}
	if !decode(w, r, &req) {
		return
	}
	if !s.knownUser(w, req.UserID) {
		return
	}
	s.mu.Lock()
	s.profiles[req.UserID] = req.profile
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("user_id")
	if !s.knownUser(w, id) {
		return
	}

	s.mu.Lock()
	runs := s.runs[id]
	var completed, scoreSum int
	for _, rn := range runs {
		if rn.IsCompleted {
			completed++
			scoreSum += rn.Score
		}
	}
	s.mu.Unlock()

	avg := 0.0
	if completed > 0 {
		avg = float64(scoreSum) / float64(completed)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats": map[string]any{
			"total_quizzes":      len(runs),
			"completed_quizzes":  completed,
			"incomplete_quizzes": len(runs) - completed,
			"average_score":      avg,
		},
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("user_id")
	if !s.knownUser(w, id) {
		return
	}

	s.mu.Lock()
	runs := s.runs[id]
	history := make([]run, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		history = append(history, *runs[i])
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "history": history, "count": len(history)})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
