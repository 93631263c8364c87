package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and selected quiz mode",
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

		cur := sess.Current()
		if !cur.Authenticated() {
			fmt.Println("Not signed in.")
			return nil
		}

		fmt.Printf("User:   %s\n", cur.DisplayName())
		fmt.Printf("ID:     %s\n", cur.UserID)
		if cur.Email != "" {
			fmt.Printf("Email:  %s\n", cur.Email)
		}
		mode := "(none)"
		if cur.Mode != "" {
			mode = cur.Mode
			if cur.ClassLevel != "" {
				mode += " (class " + cur.ClassLevel + ")"
			}
		}
		fmt.Printf("Mode:   %s\n", mode)
		fmt.Printf("API:    %s\n", cfg.API.BaseURL)
		return nil
	},
}
