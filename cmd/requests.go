package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/careerguider/internal/store"
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Inspect the local log of API and LLM requests",
}

var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("kind")
		op, _ := cmd.Flags().GetString("op")

		if kind != "" && kind != store.KindAPI && kind != store.KindLLM {
			return fmt.Errorf("unknown kind %q (want %s or %s)", kind, store.KindAPI, store.KindLLM)
		}

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryEvents(cmd.Context(), store.QueryOpts{Kind: kind, Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No requests recorded.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-4s  %-16s  %-32s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Kind", "Op", "Target", "Status", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 104))

		for _, e := range events {
			if op != "" && e.Op != op {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			status := "-"
			if e.Kind == store.KindAPI && e.Status != 0 {
				status = fmt.Sprint(e.Status)
			}
			fmt.Printf("%-5d  %-19s  %-4s  %-16s  %-32s  %-6s  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Kind,
				truncate(e.Op, 16),
				truncate(e.Target, 32),
				status,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var requestsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View one recorded request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		fmt.Printf("ID:        %d\n", e.ID)
		fmt.Printf("Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Kind:      %s\n", e.Kind)
		fmt.Printf("Op:        %s\n", e.Op)
		fmt.Printf("Target:    %s\n", e.Target)
		if e.RequestID != "" {
			fmt.Printf("Request:   %s\n", e.RequestID)
		}
		if e.Kind == store.KindAPI {
			fmt.Printf("Status:    %d\n", e.Status)
		} else {
			fmt.Printf("Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
		}
		fmt.Printf("Latency:   %dms\n", e.LatencyMs)
		fmt.Printf("Success:   %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", e.ErrorMessage)
		}

		if e.Kind != store.KindLLM {
			return nil
		}

		sep := strings.Repeat("─", 60)
		fmt.Println()
		fmt.Println(sep)
		fmt.Println("REQUEST")
		fmt.Println(sep)
		fmt.Println(orNotCaptured(e.RequestBody))
		fmt.Println(sep)
		fmt.Println("RESPONSE")
		fmt.Println(sep)
		fmt.Println(orNotCaptured(e.ResponseBody))
		return nil
	},
}

var requestsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show request counts, failures and latency by operation",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryEvents(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No requests recorded yet.")
			return nil
		}

		stats := summarize(events)

		fmt.Printf("%-4s  %-16s  %6s  %6s  %8s  %10s  %10s\n",
			"Kind", "Op", "Calls", "Failed", "Avg Ms", "Tokens In", "Tokens Out")
		fmt.Println(strings.Repeat("─", 72))
		var calls, failed int
		for _, st := range stats {
			fmt.Printf("%-4s  %-16s  %6d  %6d  %8d  %10d  %10d\n",
				st.Kind, truncate(st.Op, 16), st.Calls, st.Failed, st.AvgLatencyMs(), st.InputTokens, st.OutputTokens)
			calls += st.Calls
			failed += st.Failed
		}
		fmt.Println(strings.Repeat("─", 72))
		fmt.Printf("%-22s  %6d  %6d\n", "TOTAL", calls, failed)
		return nil
	},
}

// opStats aggregates events for one kind and operation.
type opStats struct {
	Kind         string
	Op           string
	Calls        int
	Failed       int
	LatencyMs    int64
	InputTokens  int
	OutputTokens int
}

func (s opStats) AvgLatencyMs() int64 {
	if s.Calls == 0 {
		return 0
	}
	return s.LatencyMs / int64(s.Calls)
}

// summarize groups events by kind and op, sorted by kind then call count.
func summarize(events []store.Event) []opStats {
	byKey := map[[2]string]*opStats{}
	for _, e := range events {
		key := [2]string{e.Kind, e.Op}
		st, ok := byKey[key]
		if !ok {
			st = &opStats{Kind: e.Kind, Op: e.Op}
			byKey[key] = st
		}
		st.Calls++
		if !e.Success {
			st.Failed++
		}
		st.LatencyMs += e.LatencyMs
		st.InputTokens += e.InputTokens
		st.OutputTokens += e.OutputTokens
	}

	out := make([]opStats, 0, len(byKey))
	for _, st := range byKey {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Op < out[j].Op
	})
	return out
}

func openEventStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func orNotCaptured(s string) string {
	if s == "" {
		return "(not captured)"
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func init() {
	requestsListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	requestsListCmd.Flags().StringP("kind", "k", "", "Filter by kind (api or llm)")
	requestsListCmd.Flags().StringP("op", "o", "", "Filter by operation (e.g. login, submit-answer, action-plan)")

	requestsCmd.AddCommand(requestsListCmd)
	requestsCmd.AddCommand(requestsViewCmd)
	requestsCmd.AddCommand(requestsStatsCmd)
}
