package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/careerguider/internal/guard"
	"github.com/abhisek/careerguider/internal/session"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, sess, err := openSession(cmd, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		var logout func(context.Context) error
		if sess.Current().Authenticated() {
			if api, err := newAPIClient(cfg, sess, st.EventRepo(), nil); err == nil {
				logout = api.Logout
			}
		}

		name, err := signOut(cmd.Context(), sess, logout)
		if err != nil {
			return err
		}
		if name == "" {
			fmt.Println("Not signed in.")
			return nil
		}
		fmt.Printf("Signed out %s.\n", name)
		return nil
	},
}

// signOut tells the server while the token is still available, then clears
// every persisted key whether or not anyone was signed in. It returns the
// name of the user signed out, or "" when there was none.
func signOut(ctx context.Context, sess *session.Store, serverLogout func(context.Context) error) (string, error) {
	cur := sess.Current()
	if cur.Authenticated() && serverLogout != nil {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := serverLogout(ctx); err != nil {
			fmt.Println("Server sign-out failed:", err)
		}
		cancel()
	}

	if _, err := guard.Logout(ctx, sess); err != nil {
		return "", fmt.Errorf("clear session: %w", err)
	}
	if !cur.Authenticated() {
		return "", nil
	}
	return cur.DisplayName(), nil
}
