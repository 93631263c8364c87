package quiz

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/careerguider/internal/gateway"
)

// Analyzer is the part of the gateway the Annotator calls.
type Analyzer interface {
	AnalyzeAnswer(ctx context.Context, text string) (*gateway.Analysis, error)
}

// DefaultAnalyzeTimeout bounds one analysis call.
const DefaultAnalyzeTimeout = 10 * time.Second

// annotateQueueSize bounds how many analyses may wait. Extra ones are dropped.
const annotateQueueSize = 32

type annotateJob struct {
	questionID string
	text       string
}

// Annotator runs answer analysis as detached work. A failed or dropped
// analysis is logged and otherwise ignored; it never touches a Flow.
type Annotator struct {
	analyzer Analyzer
	timeout  time.Duration
	logger   *zap.Logger
	onResult func(questionID string, a *gateway.Analysis)

	ctx     context.Context
	cancel  context.CancelFunc
	pending chan annotateJob
	done    chan struct{}

	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
}

// AnnotatorOption configures an Annotator.
type AnnotatorOption func(*Annotator)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) AnnotatorOption {
	return func(a *Annotator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) AnnotatorOption {
	return func(a *Annotator) {
		if l != nil {
			a.logger = l
		}
	}
}

// OnResult registers a callback for successful analyses. It runs on the
// Annotator's goroutine.
func OnResult(fn func(questionID string, a *gateway.Analysis)) AnnotatorOption {
	return func(a *Annotator) { a.onResult = fn }
}

// NewAnnotator starts the background worker. Call Close to stop it.
func NewAnnotator(analyzer Analyzer, opts ...AnnotatorOption) *Annotator {
	a := &Annotator{
		analyzer: analyzer,
		timeout:  DefaultAnalyzeTimeout,
		logger:   zap.NewNop(),
		pending:  make(chan annotateJob, annotateQueueSize),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	go a.processLoop()
	return a
}

// Annotate queues text for analysis and returns immediately.
func (a *Annotator) Annotate(questionID, text string) {
	if a == nil || a.analyzer == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	select {
	case a.pending <- annotateJob{questionID: questionID, text: text}:
	default:
		a.logger.Debug("analysis queue full, dropping", zap.String("question_id", questionID))
	}
}

func (a *Annotator) processLoop() {
	defer close(a.done)
	for job := range a.pending {
		a.run(job)
	}
}

func (a *Annotator) run(job annotateJob) {
	ctx, cancel := context.WithTimeout(a.ctx, a.timeout)
	defer cancel()

	res, err := a.analyzer.AnalyzeAnswer(ctx, job.text)
	if err != nil {
		a.logger.Warn("answer analysis failed",
			zap.String("question_id", job.questionID),
			zap.Error(err))
		return
	}
	a.logger.Debug("answer analyzed",
		zap.String("question_id", job.questionID),
		zap.Float64("sentiment", res.Sentiment),
		zap.Strings("keywords", res.Keywords))
	if a.onResult != nil {
		a.onResult(job.questionID, res)
	}
}

// Close cancels in-flight analysis and waits for the worker to exit.
func (a *Annotator) Close() {
	if a == nil {
		return
	}
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.pending)
		a.mu.Unlock()
		a.cancel()
		<-a.done
	})
}
