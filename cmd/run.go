package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/careerguider/internal/app"
	"github.com/abhisek/careerguider/internal/coach"
	"github.com/abhisek/careerguider/internal/config"
	"github.com/abhisek/careerguider/internal/gateway"
	"github.com/abhisek/careerguider/internal/llm"
	"github.com/abhisek/careerguider/internal/oauth"
	"github.com/abhisek/careerguider/internal/quiz"
	"github.com/abhisek/careerguider/internal/session"
	"github.com/abhisek/careerguider/internal/store"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	st, sess, err := openSession(cmd, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	eventRepo := st.EventRepo()
	api, err := newAPIClient(cfg, sess, eventRepo, logger)
	if err != nil {
		return err
	}

	annotator := quiz.NewAnnotator(api,
		quiz.WithTimeout(cfg.API.AnalyzeTimeout),
		quiz.WithLogger(logger.Named("annotator")),
	)
	defer annotator.Close()

	opts := app.Options{
		Config:  cfg,
		Session: sess,
		API:     api,
		Runner:  quiz.NewRunner(api, annotator),
		Logger:  logger,
	}

	// The coach is optional; the quiz works without it.
	llmCfg := llm.ConfigFromEnv()
	if llmCfg.Enabled() {
		provider, err := llm.NewProvider(ctx, llmCfg, eventRepo, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "Action plans will be unavailable.")
		} else {
			opts.Coach = coach.NewService(provider, coach.DefaultConfig())
		}
	}

	if cfg.OAuthEnabled() {
		client, err := oauth.NewClient(oauth.Config{
			ProviderURL:  cfg.Auth.ProviderURL,
			AnonKey:      cfg.Auth.AnonKey,
			Provider:     cfg.Auth.Provider,
			CallbackAddr: cfg.Auth.CallbackAddr,
			Logger:       logger,
		})
		if err != nil {
			return fmt.Errorf("configure sign-in provider: %w", err)
		}
		opts.OAuth = client
	}

	logger.Info("starting",
		zap.String("api", cfg.API.BaseURL),
		zap.Bool("signed_in", sess.Current().Authenticated()),
		zap.Bool("coach", opts.Coach.Enabled()),
		zap.Bool("oauth", opts.OAuth != nil),
	)
	return app.Run(opts)
}

// newAPIClient builds the gateway client with request logging. The bearer
// token is read from the session on every call.
func newAPIClient(cfg config.Config, sess *session.Store, repo store.EventRepo, logger *zap.Logger) (gateway.Client, error) {
	hc, err := gateway.NewHTTPClient(gateway.Config{
		BaseURL:   cfg.API.BaseURL,
		LoginPath: cfg.API.LoginPath,
		Timeout:   cfg.API.Timeout,
		Token:     sess.Token,
	})
	if err != nil {
		return nil, fmt.Errorf("configure API client: %w", err)
	}
	return gateway.WithLogging(hc, repo, logger), nil
}
