package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/careerguider/internal/store"
)

// routes maps each operation to the method and path template it uses, for
// the request log.
var routes = map[string][2]string{
	OpSignup:         {http.MethodPost, "/auth/signup"},
	OpLogin:          {http.MethodPost, LoginPathAuth},
	OpLogout:         {http.MethodPost, "/auth/logout"},
	OpQuestions:      {http.MethodGet, "/questions/{mode}"},
	OpAnalyze:        {http.MethodPost, "/analyze"},
	OpSubmitAnswer:   {http.MethodPost, "/submit-answer"},
	OpRecommend:      {http.MethodPost, "/recommend"},
	OpGetProfile:     {http.MethodGet, "/profile"},
	OpUpdateProfile:  {http.MethodPost, "/profile"},
	OpDashboardStats: {http.MethodGet, "/dashboard/stats"},
	OpQuizHistory:    {http.MethodGet, "/quiz/history"},
	OpPing:           {http.MethodGet, "/test"},
}

// LoggingClient is a decorator that records every call in the request event
// log and the structured log.
type LoggingClient struct {
	inner  Client
	repo   store.EventRepo
	logger *zap.Logger
}

// WithLogging wraps c. repo and logger may be nil.
func WithLogging(c Client, repo store.EventRepo, logger *zap.Logger) Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingClient{inner: c, repo: repo, logger: logger.Named("gateway")}
}

// observe runs call with a fresh request id and records the outcome.
func (l *LoggingClient) observe(ctx context.Context, op string, call func(context.Context) error) error {
	id := uuid.NewString()
	ctx = WithRequestID(ctx, id)
	start := time.Now()

	err := call(ctx)

	latency := time.Since(start)
	route := routes[op]
	status := http.StatusOK
	if err != nil {
		status = StatusOf(err)
	}

	fields := []zap.Field{
		zap.String("op", op),
		zap.String("request_id", id),
		zap.Int("status", status),
		zap.Duration("latency", latency),
	}
	if err != nil {
		l.logger.Warn("api request failed", append(fields, zap.Error(err))...)
	} else {
		l.logger.Debug("api request", fields...)
	}

	if l.repo != nil {
		data := store.APIRequestEventData{
			RequestID: id,
			Op:        op,
			Method:    route[0],
			Path:      route[1],
			Status:    status,
			LatencyMs: latency.Milliseconds(),
			Success:   err == nil,
		}
		if err != nil {
			data.ErrorMessage = err.Error()
		}
		// The request log must not fail the request.
		if logErr := l.repo.AppendAPIRequest(context.WithoutCancel(ctx), data); logErr != nil {
			l.logger.Warn("record api request", zap.String("op", op), zap.Error(logErr))
		}
	}
	return err
}

func (l *LoggingClient) Signup(ctx context.Context, username, email, password string) (res *AuthResult, err error) {
	err = l.observe(ctx, OpSignup, func(ctx context.Context) error {
		res, err = l.inner.Signup(ctx, username, email, password)
		return err
	})
	return res, err
}

func (l *LoggingClient) Login(ctx context.Context, identifier, password string) (res *AuthResult, err error) {
	err = l.observe(ctx, OpLogin, func(ctx context.Context) error {
		res, err = l.inner.Login(ctx, identifier, password)
		return err
	})
	return res, err
}

func (l *LoggingClient) Logout(ctx context.Context) error {
	return l.observe(ctx, OpLogout, l.inner.Logout)
}

func (l *LoggingClient) GetQuestions(ctx context.Context, mode string) (qs []Question, err error) {
	err = l.observe(ctx, OpQuestions, func(ctx context.Context) error {
		qs, err = l.inner.GetQuestions(ctx, mode)
		return err
	})
	return qs, err
}

func (l *LoggingClient) AnalyzeAnswer(ctx context.Context, text string) (a *Analysis, err error) {
	err = l.observe(ctx, OpAnalyze, func(ctx context.Context) error {
		a, err = l.inner.AnalyzeAnswer(ctx, text)
		return err
	})
	return a, err
}

func (l *LoggingClient) SubmitAnswer(ctx context.Context, userID, questionID, text string) (res *SubmitResult, err error) {
	err = l.observe(ctx, OpSubmitAnswer, func(ctx context.Context) error {
		res, err = l.inner.SubmitAnswer(ctx, userID, questionID, text)
		return err
	})
	return res, err
}

func (l *LoggingClient) GetRecommendations(ctx context.Context, userID string) (r *Recommendation, err error) {
	err = l.observe(ctx, OpRecommend, func(ctx context.Context) error {
		r, err = l.inner.GetRecommendations(ctx, userID)
		return err
	})
	return r, err
}

func (l *LoggingClient) GetProfile(ctx context.Context, userID string) (p *Profile, err error) {
	err = l.observe(ctx, OpGetProfile, func(ctx context.Context) error {
		p, err = l.inner.GetProfile(ctx, userID)
		return err
	})
	return p, err
}

func (l *LoggingClient) UpdateProfile(ctx context.Context, userID string, p Profile) error {
	return l.observe(ctx, OpUpdateProfile, func(ctx context.Context) error {
		return l.inner.UpdateProfile(ctx, userID, p)
	})
}

func (l *LoggingClient) DashboardStats(ctx context.Context, userID string) (s *DashboardStats, err error) {
	err = l.observe(ctx, OpDashboardStats, func(ctx context.Context) error {
		s, err = l.inner.DashboardStats(ctx, userID)
		return err
	})
	return s, err
}

func (l *LoggingClient) QuizHistory(ctx context.Context, userID string) (h []QuizHistoryEntry, err error) {
	err = l.observe(ctx, OpQuizHistory, func(ctx context.Context) error {
		h, err = l.inner.QuizHistory(ctx, userID)
		return err
	})
	return h, err
}

func (l *LoggingClient) Ping(ctx context.Context) error {
	return l.observe(ctx, OpPing, l.inner.Ping)
}
