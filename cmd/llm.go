package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/chessdrill/internal/course"
	"github.com/abhisek/chessdrill/internal/llm"
	"github.com/abhisek/chessdrill/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM calls made while naming imported lines",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failed, _ := cmd.Flags().GetBool("failed")

		st, err := openLLMStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		// Filters run after the query, so fetch everything when one is set.
		opts := store.QueryOpts{Limit: limit}
		if purpose != "" || failed {
			opts.Limit = 0
		}
		events, err := st.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		shown := 0
		for _, e := range events {
			if (purpose != "" && e.Purpose != purpose) || (failed && e.Success) {
				continue
			}
			if limit > 0 && shown == limit {
				break
			}
			if shown == 0 {
				fmt.Fprintf(out, "%-5s  %-16s  %-18s  %-28s  %6s  %6s  %7s  %s\n",
					"ID", "When", "Purpose", "Model", "In", "Out", "Ms", "OK")
				rule(out, 100)
			}
			mark := "✓"
			if !e.Success {
				mark = "✗"
			}
			fmt.Fprintf(out, "%-5d  %-16s  %-18s  %-28s  %6d  %6d  %7d  %s\n",
				e.ID, e.Timestamp.Local().Format("2006-01-02 15:04"), truncate(e.Purpose, 18),
				truncate(e.Model, 28), e.InputTokens, e.OutputTokens, e.LatencyMs, mark)
			shown++
		}
		if shown == 0 {
			fmt.Fprintln(out, "No LLM calls recorded.")
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and answer of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}

		st, err := openLLMStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		e, err := st.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("no LLM call with ID %d", id)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:        %d\n", e.ID)
		fmt.Fprintf(out, "When:      %s\n", e.Timestamp.Local().Format(time.DateTime))
		fmt.Fprintf(out, "Model:     %s (%s)\n", e.Model, e.Provider)
		fmt.Fprintf(out, "Purpose:   %s\n", e.Purpose)
		fmt.Fprintf(out, "Tokens:    %d in, %d out\n", e.InputTokens, e.OutputTokens)
		fmt.Fprintf(out, "Latency:   %dms\n", e.LatencyMs)
		if e.Success {
			fmt.Fprintln(out, "Result:    ok")
		} else {
			fmt.Fprintf(out, "Result:    %s: %s\n", orDefault(e.ErrorKind, "failed"), e.ErrorMessage)
		}

		for _, part := range []struct{ title, body string }{
			{"PROMPT", e.RequestBody},
			{"ANSWER", e.ResponseBody},
		} {
			fmt.Fprintln(out)
			fmt.Fprintln(out, part.title)
			rule(out, 60)
			if part.body == "" {
				fmt.Fprintln(out, "(not captured)")
			} else {
				fmt.Fprintln(out, part.body)
			}
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openLLMStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		repo := st.EventRepo()
		byPurpose, err := repo.LLMUsageByPurpose(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		byModel, err := repo.LLMUsageByModel(cmd.Context())
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No LLM calls recorded.")
			return nil
		}
		writePurposeUsage(out, byPurpose)
		fmt.Fprintln(out)
		writeModelCost(out, byModel)
		return nil
	},
}

func writePurposeUsage(out io.Writer, stats []store.LLMUsageStats) {
	fmt.Fprintf(out, "%-18s  %6s  %10s  %10s  %8s\n", "Purpose", "Calls", "Input", "Output", "Avg Ms")
	rule(out, 60)
	var calls, in, outTok int
	for _, s := range stats {
		fmt.Fprintf(out, "%-18s  %6d  %10d  %10d  %8d\n",
			truncate(s.Purpose, 18), s.Calls, s.InputTokens, s.OutputTokens, s.AvgLatencyMs)
		calls += s.Calls
		in += s.InputTokens
		outTok += s.OutputTokens
	}
	rule(out, 60)
	fmt.Fprintf(out, "%-18s  %6d  %10d  %10d\n", "total", calls, in, outTok)
}

// writeModelCost prices usage per model. Models missing from the price
// table are listed but left out of the total.
func writeModelCost(out io.Writer, usage []store.LLMModelUsage) {
	fmt.Fprintf(out, "%-32s  %6s  %10s\n", "Model", "Calls", "Cost (USD)")
	rule(out, 52)
	var total float64
	var unpriced []string
	for _, u := range usage {
		price := llm.LookupCost(u.Model)
		if price == nil {
			unpriced = append(unpriced, u.Model)
			fmt.Fprintf(out, "%-32s  %6d  %10s\n", truncate(u.Model, 32), u.Calls, "?")
			continue
		}
		c := price.Cost(u.InputTokens, u.OutputTokens)
		total += c
		fmt.Fprintf(out, "%-32s  %6d  %10s\n", truncate(u.Model, 32), u.Calls, formatCost(c))
	}
	rule(out, 52)
	fmt.Fprintf(out, "%-32s  %6s  %10s\n", "total", "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Fprintf(out, "\nNo price known for %s; the total leaves them out.\n", strings.Join(unpriced, ", "))
	}
}

var llmCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Name one line with the configured provider to test keys and model",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := llm.ConfigFromEnv()
		if err != nil {
			return err
		}
		if !cfg.Enabled() {
			return fmt.Errorf("no LLM provider configured (set CHESSDRILL_LLM_PROVIDER or an API key)")
		}
		provider, err := llm.NewProvider(cmd.Context(), cfg, nil, nil)
		if err != nil {
			return err
		}

		req := llm.Ask("Name this chess opening line. Answer with the requested JSON only.",
			"1. e4 e5 2. Nf3 Nc6 3. Bb5 a6")
		req.Schema = course.NamingSchema
		req.MaxTokens = course.DefaultLLMNamerConfig().MaxTokens

		start := time.Now()
		resp, err := provider.Generate(llm.WithPurpose(cmd.Context(), llm.PurposeVariationNaming), req)
		if err != nil {
			return fmt.Errorf("%s: %w", provider.ModelID(), err)
		}
		var got course.Naming
		if err := resp.Decode(&got); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s answered in %s: %s (%s), %d tokens\n",
			resp.Model, time.Since(start).Round(time.Millisecond), got.Name, got.Category, resp.Usage.TotalTokens)
		return nil
	},
}

func openLLMStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openStore(cfg)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func rule(w io.Writer, n int) {
	fmt.Fprintln(w, strings.Repeat("─", n))
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show calls made for this purpose, e.g. variation-naming")
	llmListCmd.Flags().Bool("failed", false, "Only show failed calls")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd, llmCheckCmd)
}
