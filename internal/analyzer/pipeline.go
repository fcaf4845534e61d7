package analyzer

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/tracelens/internal/model"
	"github.com/sells-group/tracelens/pkg/langfuse"
)

// Options configures one analysis run.
type Options struct {
	// FromTimestamp filters traces to those after this instant. Empty
	// fetches everything.
	FromTimestamp string
	// TraceLimit is the per-page size for the trace fetch (0 = server default).
	TraceLimit int
	// ObservationLimit is the per-page size for the observation fetch.
	ObservationLimit int
	// TraceProgress and ObservationProgress receive per-page callbacks.
	// Either may be nil.
	TraceProgress       ProgressFunc
	ObservationProgress ProgressFunc
}

// Result is the complete output of one analysis run: the core's public
// surface consumed by the CLI, the JSON API, and the CSV exporters.
type Result struct {
	Summary     model.Summary            `json:"summary"`
	Counters    model.Counters           `json:"counters"`
	TraceNames  map[string]int           `json:"trace_names"`
	Suggestions []model.SuggestionRecord `json:"suggestions"`
	Warnings    []model.WarningRecord    `json:"warnings"`

	UsageByTraceID map[string]model.TraceUsage `json:"usage_by_trace_id"`
	UsageList      []model.TraceUsage          `json:"usage_list"`

	Joined     []model.JoinedRow  `json:"joined"`
	FieldStats []model.FieldStats `json:"field_stats"`
}

// Analyze performs one full batch run: fetch traces, aggregate validation
// signals, collect observation usage, summarize, and join. Stages run
// strictly in sequence over a single snapshot.
//
// A fetch failure after the timestamp fallback chain is exhausted returns
// an error and no Result, which callers must present distinctly from a
// successful run that found zero traces.
func Analyze(ctx context.Context, client langfuse.Client, opts Options) (*Result, error) {
	run := NewRun()

	fetcher := NewFetcher(client, opts.TraceLimit, opts.TraceProgress)
	fetched, err := fetcher.FetchAllTraces(ctx, opts.FromTimestamp)
	if err != nil {
		return nil, err
	}

	run.AnalyzeTraces(fetched.Traces)

	collector := NewCollector(client, opts.ObservationLimit, opts.ObservationProgress)
	usage, err := collector.Collect(ctx, run.KnownTraceIDs())
	if err != nil {
		// Usage is an enrichment over the validation analysis; a failed
		// observation fetch degrades to validation-only results.
		zap.L().Warn("observation fetch failed, continuing without usage data",
			zap.String("run_id", run.ID),
			zap.Error(err),
		)
		usage = nil
	}

	totalsByID, totalsList := Summarize(GroupByTrace(usage), run.NameByTraceID)
	joined := Join(run.FieldRecords, totalsByID)

	summary := run.Summary()
	summary.Observations = len(usage)
	summary.DateFilterDropped = fetched.DateFilterDropped

	return &Result{
		Summary:        summary,
		Counters:       run.Counters,
		TraceNames:     run.TraceNames,
		Suggestions:    run.Suggestions,
		Warnings:       run.Warnings,
		UsageByTraceID: totalsByID,
		UsageList:      totalsList,
		Joined:         joined,
		FieldStats:     GroupFieldStats(joined),
	}, nil
}
