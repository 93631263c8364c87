package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/careerguider/internal/gateway"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show quiz statistics and history for the signed-in user",
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
			return fmt.Errorf("not signed in; run careerguider to log in")
		}

		api, err := newAPIClient(cfg, sess, st.EventRepo(), nil)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		stats, err := api.DashboardStats(ctx, cur.UserID)
		if err != nil {
			return fmt.Errorf("fetch stats: %s", gateway.UserMessage(err))
		}
		history, err := api.QuizHistory(ctx, cur.UserID)
		if err != nil {
			return fmt.Errorf("fetch history: %s", gateway.UserMessage(err))
		}

		fmt.Printf("Quiz statistics for %s\n", cur.DisplayName())
		fmt.Println(strings.Repeat("─", 40))
		fmt.Printf("%-16s %d\n", "Total quizzes", stats.TotalQuizzes)
		fmt.Printf("%-16s %d\n", "Completed", stats.CompletedQuizzes)
		fmt.Printf("%-16s %d\n", "In progress", stats.IncompleteQuizzes)
		fmt.Printf("%-16s %.0f%%\n", "Average score", stats.AverageScore)

		if len(history) == 0 {
			fmt.Println("\nNo quizzes yet.")
			return nil
		}

		fmt.Println()
		fmt.Printf("%-6s  %-6s  %-12s  %5s  %s\n", "ID", "Mode", "Status", "Score", "Started")
		fmt.Println(strings.Repeat("─", 56))
		for _, h := range history {
			status := "completed"
			if !h.IsCompleted {
				status = "in progress"
			}
			fmt.Printf("%-6d  %-6s  %-12s  %5d  %s\n",
				h.ID, strings.ToUpper(h.Mode), status, h.Score,
				h.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}
