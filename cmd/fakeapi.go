package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/careerguider/internal/gateway/fakeapi"
)

var fakeapiCmd = &cobra.Command{
	Use:   "fakeapi",
	Short: "Serve an in-memory career API for local development",
	Long: "Serve an in-memory stand-in for the career guidance backend under /api. " +
		"State is lost on exit. Point the client at it with --api-url http://<addr>/api.",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		seedSpecs, _ := cmd.Flags().GetStringSlice("seed")

		seeds := make([]fakeapi.Seed, 0, len(seedSpecs))
		for _, spec := range seedSpecs {
			seed, err := parseSeed(spec)
			if err != nil {
				return err
			}
			seeds = append(seeds, seed)
		}

		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer logger.Sync() //nolint:errcheck

		srv, err := fakeapi.New(fakeapi.Options{Seeds: seeds, Logger: logger.Named("fakeapi")})
		if err != nil {
			return err
		}

		httpSrv := &http.Server{
			Addr:              addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			errc <- httpSrv.ListenAndServe()
		}()
		logger.Info("listening", zap.String("addr", addr), zap.Int("seeded_users", len(seeds)))

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	},
}

// parseSeed reads "username:password" or "username:email:password".
func parseSeed(spec string) (fakeapi.Seed, error) {
	parts := strings.Split(spec, ":")
	switch len(parts) {
	case 2:
		return fakeapi.Seed{Username: parts[0], Email: parts[0] + "@example.com", Password: parts[1]}, nil
	case 3:
		return fakeapi.Seed{Username: parts[0], Email: parts[1], Password: parts[2]}, nil
	}
	return fakeapi.Seed{}, fmt.Errorf("invalid seed %q (want user:password or user:email:password)", spec)
}

func init() {
	fakeapiCmd.Flags().String("addr", "127.0.0.1:5050", "Address to listen on")
	fakeapiCmd.Flags().StringSlice("seed", []string{"alice:alice@example.com:secret"}, "Accounts to create, as user:password or user:email:password")
}
