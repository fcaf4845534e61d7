package model

// FieldInput is the field name/value pair extracted from a validate-field
// trace's input. Name is nil when the input carries no field name at all;
// Value is nil when the field was submitted empty (a JSON null). The
// nil/empty-string distinction on Value matters: only a nil value counts as
// an empty submission.
type FieldInput struct {
	Name  *string `json:"field_name"`
	Value any     `json:"field_value"`
}

// FieldOutput is the structured validation result extracted from a trace's
// output. Absent keys decode to the empty string; absence and explicit ""
// are not distinguished at this layer.
type FieldOutput struct {
	Valid      string `json:"valid"`
	Empty      string `json:"empty"`
	Suggestion string `json:"suggestion"`
	Warning    string `json:"warning"`
}

// FieldRecord ties an extracted field input to the trace it came from. One
// record is emitted per validate-field trace and later joined against
// per-trace usage totals.
type FieldRecord struct {
	TraceID   string  `json:"trace_id"`
	FieldName *string `json:"field_name"`
	RawValue  any     `json:"raw_value"`
}

// SuggestionRecord captures one trace whose validation output carried a
// suggestion.
type SuggestionRecord struct {
	FieldName  *string `json:"field_name"`
	RawValue   any     `json:"raw_value"`
	Suggestion string  `json:"suggestion"`
	TraceID    string  `json:"trace_id"`
}

// WarningRecord captures one trace whose validation output carried a
// warning.
type WarningRecord struct {
	FieldName *string `json:"field_name"`
	RawValue  any     `json:"raw_value"`
	Warning   string  `json:"warning"`
	TraceID   string  `json:"trace_id"`
}

// Counters holds the five per-field validation tallies. Each map is keyed
// by field name and mutated only by the aggregator within a single run.
type Counters struct {
	Total      map[string]int `json:"total"`
	Valid      map[string]int `json:"valid"`
	Empty      map[string]int `json:"empty"`
	Suggestion map[string]int `json:"suggestion"`
	Warning    map[string]int `json:"warning"`
}

// NewCounters creates an empty counter set.
func NewCounters() Counters {
	return Counters{
		Total:      make(map[string]int),
		Valid:      make(map[string]int),
		Empty:      make(map[string]int),
		Suggestion: make(map[string]int),
		Warning:    make(map[string]int),
	}
}

// Fields returns every field name present in the Total counter.
func (c Counters) Fields() []string {
	fields := make([]string, 0, len(c.Total))
	for f := range c.Total {
		fields = append(fields, f)
	}
	return fields
}
