package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/careerguider/internal/config"
	"github.com/abhisek/careerguider/internal/logging"
	"github.com/abhisek/careerguider/internal/session"
	"github.com/abhisek/careerguider/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "careerguider",
	Short: "Career guidance quiz for students",
	Long:  "Career Guider is a terminal client for the career guidance service: sign in, take the SSC or HSC quiz and get stream and career recommendations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CAREER_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (default $XDG_CONFIG_HOME/careerguider/config.yaml)")
	rootCmd.PersistentFlags().String("api-url", "", "Career API base URL (overrides CAREER_API_URL env var)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(fakeapiCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig layers the config file, the environment and the persistent
// flags, in that order, and validates the result.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if u, _ := cmd.Flags().GetString("api-url"); u != "" {
		cfg.API.BaseURL = u
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Storage.DBPath = p
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the database path using the configured path (flag or
// config file) first, then CAREER_DB, then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if p := cfg.Storage.DBPath; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// newLogger opens the file logger. Without a configured file the log goes
// next to the database.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	path := cfg.Logging.File
	if path == "" {
		dir, err := config.DataDir()
		if err != nil {
			return nil, err
		}
		path = logging.DefaultPath(dir)
	}
	return logging.New(path, cfg.Logging.Level)
}

// openSession opens the store and loads the persisted session.
func openSession(cmd *cobra.Command, cfg config.Config) (*store.Store, *session.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	sess := session.NewStore(st.KV())
	if _, err := sess.Load(cmd.Context()); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("load session: %w", err)
	}
	return st, sess, nil
}
