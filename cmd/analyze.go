package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/tracelens/internal/analyzer"
	"github.com/sells-group/tracelens/internal/export"
	"github.com/sells-group/tracelens/pkg/langfuse"
)

var (
	analyzeDays   int
	analyzeOutDir string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one analysis batch and print the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runAnalysis(cmd.Context())
		if err != nil {
			return err
		}

		printResult(result)

		if analyzeOutDir != "" {
			if err := export.WriteAll(result, analyzeOutDir); err != nil {
				return eris.Wrap(err, "write csv output")
			}
			fmt.Printf("\nCSV files written to %s\n", analyzeOutDir)
		}

		return nil
	},
}

// runAnalysis builds the Langfuse client from config and executes one full
// batch. Shared by the analyze and serve commands.
func runAnalysis(ctx context.Context) (*analyzer.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := langfuse.NewClient(cfg.Langfuse.PublicKey, cfg.Langfuse.SecretKey, cfg.Langfuse.Host)

	days := analyzeDays
	if days == 0 {
		days = cfg.Analyze.RecentDays
	}
	var fromTimestamp string
	if days > 0 {
		from := time.Now().UTC().AddDate(0, 0, -days)
		fromTimestamp = from.Format("2006-01-02T15:04:05.000000Z")
		zap.L().Info("fetching recent traces", zap.Int("days", days), zap.String("from", fromTimestamp))
	} else {
		zap.L().Info("fetching all available traces")
	}

	result, err := analyzer.Analyze(ctx, client, analyzer.Options{
		FromTimestamp:    fromTimestamp,
		TraceLimit:       cfg.Analyze.TracePageLimit,
		ObservationLimit: cfg.Analyze.ObservationPageLimit,
		TraceProgress: func(page, total int) {
			zap.L().Info("loading traces", zap.Int("page", page), zap.Int("total_pages", total))
		},
		ObservationProgress: func(page, total int) {
			zap.L().Info("loading observations", zap.Int("page", page), zap.Int("total_pages", total))
		},
	})
	if err != nil {
		// A failed fetch is not the same as an empty project; keep the
		// error so the caller can say so.
		return nil, eris.Wrap(err, "analysis failed, no data fetched")
	}

	return result, nil
}

func printResult(result *analyzer.Result) {
	s := result.Summary

	if s.TotalTraces == 0 {
		fmt.Println("No traces found in the selected window. Try a larger --days value or remove the filter.")
		return
	}

	if s.DateFilterDropped {
		fmt.Println("Note: the API rejected every timestamp format; results cover ALL traces, not the requested window.")
	}

	fmt.Printf("Run %s\n", s.RunID)
	fmt.Printf("  Traces:          %d (%d unique names, %d validate-field)\n", s.TotalTraces, s.UniqueTraceNames, s.ValidateFieldTraces)
	fmt.Printf("  Observations:    %d\n", s.Observations)

	fmt.Println("\nTrace names:")
	for _, name := range sortedKeys(result.TraceNames) {
		count := result.TraceNames[name]
		fmt.Printf("  %-30s %6d  (%.1f%%)\n", name, count, float64(count)/float64(s.TotalTraces)*100)
	}

	fields := result.Counters.Fields()
	sort.Strings(fields)
	if len(fields) > 0 {
		fmt.Println("\nField validation:")
		fmt.Printf("  %-20s %7s %7s %7s %11s %8s\n", "field", "total", "valid", "empty", "suggestion", "warning")
		for _, f := range fields {
			fmt.Printf("  %-20s %7d %7d %7d %11d %8d\n",
				f,
				result.Counters.Total[f],
				result.Counters.Valid[f],
				result.Counters.Empty[f],
				result.Counters.Suggestion[f],
				result.Counters.Warning[f],
			)
		}
	}

	if len(result.FieldStats) > 0 {
		fmt.Println("\nCost/usage by field (traces with observations only):")
		fmt.Printf("  %-20s %5s %12s %12s %12s %10s\n", "field", "rows", "cost min", "cost max", "cost mean", "tok mean")
		for _, fs := range result.FieldStats {
			fmt.Printf("  %-20s %5d %12.6f %12.6f %12.6f %10.1f\n",
				fs.Field, fs.Rows, fs.CostTotal.Min, fs.CostTotal.Max, fs.CostTotal.Mean, fs.Tokens.Mean)
		}
	}

	fmt.Printf("\nSuggestions: %d   Warnings: %d\n", len(result.Suggestions), len(result.Warnings))
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeDays, "days", 0, "only analyze traces from the last N days (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeOutDir, "out-dir", "", "write suggestions/warnings/usage CSVs into this directory")
	rootCmd.AddCommand(analyzeCmd)
}
