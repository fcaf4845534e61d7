package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/tracelens/internal/model"
)

// The join is deliberately an outer join. An earlier revision of the
// analysis used an inner join and silently dropped traces missing either
// side; the outer behavior is the intended final design, so these tests
// pin it down.

func TestJoin_OuterSemantics(t *testing.T) {
	t.Parallel()

	fieldRecords := []model.FieldRecord{
		{TraceID: "tr-both", FieldName: strPtr("email"), RawValue: "x@y.com"},
		{TraceID: "tr-field-only", FieldName: strPtr("phone"), RawValue: nil},
	}
	usageTotals := map[string]model.TraceUsage{
		"tr-both":       {TraceID: "tr-both", TraceName: "validate-field", Observations: 2, CostTotal: 0.01, TokensTotal: 500},
		"tr-usage-only": {TraceID: "tr-usage-only", TraceName: "chat", Observations: 1, CostTotal: 0.2, TokensTotal: 900},
	}

	rows := Join(fieldRecords, usageTotals)

	// Outer join: len >= max(distinct trace ids on either side).
	require.Len(t, rows, 3)

	assert.Equal(t, "tr-both", rows[0].TraceID)
	assert.True(t, rows[0].HasField)
	require.NotNil(t, rows[0].Usage)
	assert.Equal(t, 0.01, rows[0].Usage.CostTotal)

	// Field side with no usage: usage columns stay nil, not zero.
	assert.Equal(t, "tr-field-only", rows[1].TraceID)
	assert.True(t, rows[1].HasField)
	assert.Nil(t, rows[1].Usage)

	// Usage side with no field record: field columns stay null.
	assert.Equal(t, "tr-usage-only", rows[2].TraceID)
	assert.False(t, rows[2].HasField)
	assert.Nil(t, rows[2].FieldName)
	require.NotNil(t, rows[2].Usage)
	assert.Equal(t, 0.2, rows[2].Usage.CostTotal)
}

func TestJoin_RepeatedFieldTraceSharesUsage(t *testing.T) {
	t.Parallel()

	// Two field records on the same trace id each get their own row,
	// both carrying that trace's usage totals.
	fieldRecords := []model.FieldRecord{
		{TraceID: "tr-1", FieldName: strPtr("email"), RawValue: "a"},
		{TraceID: "tr-1", FieldName: strPtr("phone"), RawValue: "b"},
	}
	usageTotals := map[string]model.TraceUsage{
		"tr-1": {TraceID: "tr-1", Observations: 1, CostTotal: 0.5},
	}

	rows := Join(fieldRecords, usageTotals)

	require.Len(t, rows, 2)
	for _, row := range rows {
		require.NotNil(t, row.Usage)
		assert.Equal(t, 0.5, row.Usage.CostTotal)
	}
}

func TestJoin_EmptyInputs(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Join(nil, nil))

	rows := Join(nil, map[string]model.TraceUsage{
		"tr-1": {TraceID: "tr-1", Observations: 1},
	})
	require.Len(t, rows, 1)
	assert.False(t, rows[0].HasField)
}

func TestGroupFieldStats(t *testing.T) {
	t.Parallel()

	rows := []model.JoinedRow{
		{TraceID: "tr-1", HasField: true, FieldName: strPtr("email"), Usage: &model.TraceUsage{CostTotal: 0.01, TokensTotal: 100}},
		{TraceID: "tr-2", HasField: true, FieldName: strPtr("email"), Usage: &model.TraceUsage{CostTotal: 0.03, TokensTotal: 300}},
		// Missing usage: counted as a row, excluded from numeric stats.
		{TraceID: "tr-3", HasField: true, FieldName: strPtr("email"), Usage: nil},
		{TraceID: "tr-4", HasField: true, FieldName: strPtr("phone"), Usage: &model.TraceUsage{CostTotal: 0.2, TokensTotal: 50}},
		// Usage-only row: not attributable to any field.
		{TraceID: "tr-5", HasField: false, Usage: &model.TraceUsage{CostTotal: 9.9, TokensTotal: 9999}},
	}

	stats := GroupFieldStats(rows)

	require.Len(t, stats, 2)

	email := stats[0]
	assert.Equal(t, "email", email.Field)
	assert.Equal(t, 3, email.Rows)
	assert.Equal(t, 2, email.CostTotal.Count)
	assert.InDelta(t, 0.01, email.CostTotal.Min, 1e-9)
	assert.InDelta(t, 0.03, email.CostTotal.Max, 1e-9)
	assert.InDelta(t, 0.02, email.CostTotal.Mean, 1e-9)
	assert.InDelta(t, 200, email.Tokens.Mean, 1e-9)

	phone := stats[1]
	assert.Equal(t, "phone", phone.Field)
	assert.Equal(t, 1, phone.Rows)
	assert.InDelta(t, 0.2, phone.CostTotal.Min, 1e-9)
	assert.InDelta(t, 0.2, phone.CostTotal.Mean, 1e-9)
}

func TestGroupFieldStats_NoUsageAnywhere(t *testing.T) {
	t.Parallel()

	rows := []model.JoinedRow{
		{TraceID: "tr-1", HasField: true, FieldName: strPtr("email")},
	}

	stats := GroupFieldStats(rows)

	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].Rows)
	assert.Equal(t, 0, stats[0].CostTotal.Count)
	assert.Equal(t, 0.0, stats[0].CostTotal.Mean)
}
