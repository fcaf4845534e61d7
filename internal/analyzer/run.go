// Package analyzer implements the trace analysis pipeline: paginated
// fetching, field extraction, validation counters, usage aggregation, and
// the field/usage join.
package analyzer

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/tracelens/internal/model"
	"github.com/sells-group/tracelens/pkg/langfuse"
)

// TargetTraceName is the trace category that gets decomposed into
// field-level validation signals. Traces with other names are counted in
// the name distribution but not analyzed further.
const TargetTraceName = "validate-field"

// unnamedTrace is the bucket for traces whose name is absent.
const unnamedTrace = "unnamed"

// Run holds all mutable state for one analysis pass. A Run is constructed
// fresh per invocation and never shared across runs; there is no global
// analysis state.
type Run struct {
	ID string

	Counters     model.Counters
	Suggestions  []model.SuggestionRecord
	Warnings     []model.WarningRecord
	FieldRecords []model.FieldRecord

	// TraceNames counts every trace by name, analyzed or not.
	TraceNames map[string]int
	// NameByTraceID backs the trace-name lookup during usage summarization.
	NameByTraceID map[string]string

	traceCount int
}

// NewRun creates an empty analysis run.
func NewRun() *Run {
	return &Run{
		ID:            uuid.NewString(),
		Counters:      model.NewCounters(),
		TraceNames:    make(map[string]int),
		NameByTraceID: make(map[string]string),
	}
}

// AnalyzeTraces feeds every trace through the name counter and, for
// validate-field traces, through the three aggregation passes.
func (r *Run) AnalyzeTraces(traces []langfuse.Trace) {
	for _, trace := range traces {
		name := trace.Name
		if name == "" {
			name = unnamedTrace
		}
		r.TraceNames[name]++
		r.NameByTraceID[trace.ID] = name
		r.traceCount++

		if name != TargetTraceName {
			continue
		}

		r.RecordBasics(trace)
		r.RecordSuggestion(trace)
		r.RecordWarning(trace)
	}

	zap.L().Info("traces analyzed",
		zap.String("run_id", r.ID),
		zap.Int("traces", r.traceCount),
		zap.Int("unique_names", len(r.TraceNames)),
		zap.Int("target_traces", r.TraceNames[TargetTraceName]),
	)
}

// RecordBasics updates the total, valid, and empty counters for one
// validate-field trace and appends its field record for the later join.
// The three increments are independent: a single trace may touch any
// subset of them.
func (r *Run) RecordBasics(trace langfuse.Trace) {
	in := ExtractInput(trace)
	out := ExtractOutput(trace)

	if in.Name != nil && *in.Name != "" {
		r.Counters.Total[*in.Name]++
		r.FieldRecords = append(r.FieldRecords, model.FieldRecord{
			TraceID:   trace.ID,
			FieldName: in.Name,
			RawValue:  in.Value,
		})
	}

	if out.Valid != "" {
		r.Counters.Valid[derefName(in.Name)]++
	}

	// Empty means the field value is literally null. A present-but-blank
	// value (e.g. "") is a submitted field, not an empty one.
	if in.Name != nil && in.Value == nil {
		r.Counters.Empty[*in.Name]++
	}
}

// RecordSuggestion counts the trace's suggestion signal, if any, and
// appends a detail record.
func (r *Run) RecordSuggestion(trace langfuse.Trace) {
	in := ExtractInput(trace)
	out := ExtractOutput(trace)

	if out.Suggestion == "" {
		return
	}

	r.Counters.Suggestion[derefName(in.Name)]++
	r.Suggestions = append(r.Suggestions, model.SuggestionRecord{
		FieldName:  in.Name,
		RawValue:   in.Value,
		Suggestion: out.Suggestion,
		TraceID:    trace.ID,
	})
}

// RecordWarning counts the trace's warning signal, if any, and appends a
// detail record.
func (r *Run) RecordWarning(trace langfuse.Trace) {
	in := ExtractInput(trace)
	out := ExtractOutput(trace)

	if out.Warning == "" {
		return
	}

	r.Counters.Warning[derefName(in.Name)]++
	r.Warnings = append(r.Warnings, model.WarningRecord{
		FieldName: in.Name,
		RawValue:  in.Value,
		Warning:   out.Warning,
		TraceID:   trace.ID,
	})
}

// KnownTraceIDs returns the set of trace ids seen by this run, used to
// filter the observation fetch.
func (r *Run) KnownTraceIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(r.NameByTraceID))
	for id := range r.NameByTraceID {
		ids[id] = struct{}{}
	}
	return ids
}

// Summary returns the headline metrics for this run.
func (r *Run) Summary() model.Summary {
	return model.Summary{
		RunID:               r.ID,
		TotalTraces:         r.traceCount,
		UniqueTraceNames:    len(r.TraceNames),
		ValidateFieldTraces: r.TraceNames[TargetTraceName],
	}
}

func derefName(name *string) string {
	if name == nil {
		return ""
	}
	return *name
}
