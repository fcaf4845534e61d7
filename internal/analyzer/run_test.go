package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/tracelens/pkg/langfuse"
)

func TestAnalyzeTraces_EndToEnd(t *testing.T) {
	t.Parallel()

	// Trace A: first_name submitted as "Jane", validated ok.
	// Trace B: first_name submitted as null, flagged with a warning.
	traces := []langfuse.Trace{
		validateFieldTrace("tr-a", "first_name", "Jane", map[string]any{"valid": "ok"}),
		validateFieldTrace("tr-b", "first_name", nil, map[string]any{"warning": "missing"}),
	}

	run := NewRun()
	run.AnalyzeTraces(traces)

	assert.Equal(t, 2, run.Counters.Total["first_name"])
	assert.Equal(t, 1, run.Counters.Valid["first_name"])
	assert.Equal(t, 1, run.Counters.Empty["first_name"])
	assert.Equal(t, 1, run.Counters.Warning["first_name"])

	require.Len(t, run.Warnings, 1)
	assert.Equal(t, "tr-b", run.Warnings[0].TraceID)
	assert.Equal(t, "missing", run.Warnings[0].Warning)
	assert.Empty(t, run.Suggestions)

	summary := run.Summary()
	assert.Equal(t, 2, summary.TotalTraces)
	assert.Equal(t, 1, summary.UniqueTraceNames)
	assert.Equal(t, 2, summary.ValidateFieldTraces)
}

func TestAnalyzeTraces_NonTargetTracesOnlyCountName(t *testing.T) {
	t.Parallel()

	traces := []langfuse.Trace{
		{
			ID:   "tr-1",
			Name: "chat-completion",
			Input: map[string]any{
				"args": []any{map[string]any{"field_name": "email", "value": "x@y.com"}},
			},
			Output: map[string]any{"valid": "ok", "suggestion": "s", "warning": "w"},
		},
		{ID: "tr-2", Name: ""},
	}

	run := NewRun()
	run.AnalyzeTraces(traces)

	assert.Equal(t, 1, run.TraceNames["chat-completion"])
	assert.Equal(t, 1, run.TraceNames["unnamed"])

	assert.Empty(t, run.Counters.Total)
	assert.Empty(t, run.Counters.Valid)
	assert.Empty(t, run.Counters.Empty)
	assert.Empty(t, run.Counters.Suggestion)
	assert.Empty(t, run.Counters.Warning)
	assert.Empty(t, run.Suggestions)
	assert.Empty(t, run.Warnings)
	assert.Empty(t, run.FieldRecords)
}

func TestRecordBasics_EmptyStringValueNotEmpty(t *testing.T) {
	t.Parallel()

	// Emptiness is strictly a null field value. A submitted-but-blank
	// value must not count as empty.
	run := NewRun()
	run.RecordBasics(validateFieldTrace("tr-1", "last_name", "", nil))

	assert.Equal(t, 1, run.Counters.Total["last_name"])
	assert.Equal(t, 0, run.Counters.Empty["last_name"])
}

func TestRecordBasics_NullValueCountsEmptyOnce(t *testing.T) {
	t.Parallel()

	run := NewRun()
	run.RecordBasics(validateFieldTrace("tr-1", "last_name", nil, nil))

	assert.Equal(t, 1, run.Counters.Total["last_name"])
	assert.Equal(t, 1, run.Counters.Empty["last_name"])
}

func TestRecordBasics_NoFieldName(t *testing.T) {
	t.Parallel()

	run := NewRun()
	run.RecordBasics(langfuse.Trace{
		ID:     "tr-1",
		Name:   "validate-field",
		Output: map[string]any{"valid": "ok"},
	})

	// No field name: no total/empty increment and no field record, but the
	// valid signal still tallies under the blank key.
	assert.Empty(t, run.Counters.Total)
	assert.Empty(t, run.Counters.Empty)
	assert.Equal(t, 1, run.Counters.Valid[""])
	assert.Empty(t, run.FieldRecords)
}

func TestRecordSuggestion(t *testing.T) {
	t.Parallel()

	run := NewRun()

	// No suggestion key: nothing recorded.
	run.RecordSuggestion(validateFieldTrace("tr-1", "email", "xy.com", map[string]any{"valid": "ok"}))
	assert.Empty(t, run.Counters.Suggestion)
	assert.Empty(t, run.Suggestions)

	// Non-empty suggestion: one increment, one list entry.
	run.RecordSuggestion(validateFieldTrace("tr-2", "email", "xy.com", map[string]any{"suggestion": "did you mean x@y.com?"}))
	assert.Equal(t, 1, run.Counters.Suggestion["email"])
	require.Len(t, run.Suggestions, 1)
	assert.Equal(t, "tr-2", run.Suggestions[0].TraceID)
	assert.Equal(t, "did you mean x@y.com?", run.Suggestions[0].Suggestion)
	require.NotNil(t, run.Suggestions[0].FieldName)
	assert.Equal(t, "email", *run.Suggestions[0].FieldName)
	assert.Equal(t, "xy.com", run.Suggestions[0].RawValue)
}

func TestCounterInvariants(t *testing.T) {
	t.Parallel()

	traces := []langfuse.Trace{
		validateFieldTrace("tr-1", "email", "a@b.com", map[string]any{"valid": "ok"}),
		validateFieldTrace("tr-2", "email", nil, map[string]any{"warning": "missing"}),
		validateFieldTrace("tr-3", "email", "bad", map[string]any{"suggestion": "fix it"}),
		validateFieldTrace("tr-4", "phone", "555", map[string]any{"valid": "ok"}),
		validateFieldTrace("tr-5", "phone", nil, nil),
	}

	run := NewRun()
	run.AnalyzeTraces(traces)

	for field, total := range run.Counters.Total {
		assert.GreaterOrEqual(t, total, run.Counters.Valid[field], "total >= valid for %q", field)
		assert.GreaterOrEqual(t, total, run.Counters.Empty[field], "total >= empty for %q", field)
	}

	assert.Equal(t, 3, run.Counters.Total["email"])
	assert.Equal(t, 2, run.Counters.Total["phone"])
	assert.Len(t, run.FieldRecords, 5)
}

func TestKnownTraceIDs(t *testing.T) {
	t.Parallel()

	run := NewRun()
	run.AnalyzeTraces([]langfuse.Trace{
		{ID: "tr-1", Name: "chat"},
		{ID: "tr-2", Name: "validate-field"},
	})

	ids := run.KnownTraceIDs()
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, "tr-1")
	assert.Contains(t, ids, "tr-2")
}
