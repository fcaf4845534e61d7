package model

// ObservationUsage is the per-observation cost/usage record extracted from
// a GENERATION observation. Missing or non-numeric metrics have already
// been coerced to zero by the time this struct exists.
type ObservationUsage struct {
	ObservationID string  `json:"observation_id"`
	TraceID       string  `json:"trace_id"`
	Name          string  `json:"name"`
	CostInput     float64 `json:"cost_input"`
	CostOutput    float64 `json:"cost_output"`
	CostTotal     float64 `json:"cost_total"`
	TokensInput   float64 `json:"tokens_input"`
	TokensOutput  float64 `json:"tokens_output"`
	TokensTotal   float64 `json:"tokens_total"`
}

// TraceUsage is the per-trace sum over all of that trace's observations.
type TraceUsage struct {
	TraceID      string  `json:"trace_id"`
	TraceName    string  `json:"trace_name"`
	Observations int     `json:"observations_count"`
	CostInput    float64 `json:"cost_input"`
	CostOutput   float64 `json:"cost_output"`
	CostTotal    float64 `json:"cost_total"`
	TokensInput  float64 `json:"tokens_input"`
	TokensOutput float64 `json:"tokens_output"`
	TokensTotal  float64 `json:"tokens_total"`
}

// JoinedRow is one row of the outer join between field records and
// per-trace usage totals. HasField is false for trace ids that only appear
// on the usage side; Usage is nil for trace ids with no observations.
type JoinedRow struct {
	TraceID   string      `json:"trace_id"`
	HasField  bool        `json:"has_field"`
	FieldName *string     `json:"field_name"`
	RawValue  any         `json:"raw_value"`
	Usage     *TraceUsage `json:"usage"`
}

// ColumnStats holds min/max/mean over the non-nil values of one numeric
// join column. Count is the number of rows that contributed; rows with
// missing usage are excluded, not zeroed.
type ColumnStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// FieldStats is the grouped cost/usage summary for one field name.
type FieldStats struct {
	Field     string      `json:"field"`
	Rows      int         `json:"rows"`
	CostTotal ColumnStats `json:"cost_total"`
	Tokens    ColumnStats `json:"tokens_total"`
}

// Summary is the headline result of one analysis run.
type Summary struct {
	RunID               string `json:"run_id"`
	TotalTraces         int    `json:"total_traces"`
	UniqueTraceNames    int    `json:"unique_trace_names"`
	ValidateFieldTraces int    `json:"validate_field_traces"`
	Observations        int    `json:"observations"`
	DateFilterDropped   bool   `json:"date_filter_dropped"`
}
