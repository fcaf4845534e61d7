package analyzer

import (
	"sort"

	"github.com/sells-group/tracelens/internal/model"
)

// Join outer-joins field records with per-trace usage totals on trace id.
//
// Every field record yields a row, carrying a nil Usage when the trace had
// no observations. Usage totals for traces with no field record yield rows
// of their own with HasField false. This is deliberately an outer join,
// not an inner one: rows missing either side still appear so that
// downstream statistics can account for them.
func Join(fieldRecords []model.FieldRecord, usageTotals map[string]model.TraceUsage) []model.JoinedRow {
	rows := make([]model.JoinedRow, 0, len(fieldRecords))
	matched := make(map[string]bool, len(fieldRecords))

	for _, rec := range fieldRecords {
		row := model.JoinedRow{
			TraceID:   rec.TraceID,
			HasField:  true,
			FieldName: rec.FieldName,
			RawValue:  rec.RawValue,
		}
		if usage, ok := usageTotals[rec.TraceID]; ok {
			u := usage
			row.Usage = &u
		}
		matched[rec.TraceID] = true
		rows = append(rows, row)
	}

	// Usage-only traces, appended in trace-id order for determinism.
	var unmatched []string
	for traceID := range usageTotals {
		if !matched[traceID] {
			unmatched = append(unmatched, traceID)
		}
	}
	sort.Strings(unmatched)
	for _, traceID := range unmatched {
		u := usageTotals[traceID]
		rows = append(rows, model.JoinedRow{TraceID: traceID, Usage: &u})
	}

	return rows
}

// GroupFieldStats aggregates joined rows by field name, computing
// min/max/mean of the cost and token totals. Rows without a usage side are
// counted in Rows but excluded from the numeric aggregation; missing usage
// is never coerced to zero here.
func GroupFieldStats(rows []model.JoinedRow) []model.FieldStats {
	type acc struct {
		rows   int
		cost   []float64
		tokens []float64
	}
	byField := make(map[string]*acc)

	for _, row := range rows {
		if !row.HasField || row.FieldName == nil {
			continue
		}
		a := byField[*row.FieldName]
		if a == nil {
			a = &acc{}
			byField[*row.FieldName] = a
		}
		a.rows++
		if row.Usage != nil {
			a.cost = append(a.cost, row.Usage.CostTotal)
			a.tokens = append(a.tokens, row.Usage.TokensTotal)
		}
	}

	stats := make([]model.FieldStats, 0, len(byField))
	for field, a := range byField {
		stats = append(stats, model.FieldStats{
			Field:     field,
			Rows:      a.rows,
			CostTotal: columnStats(a.cost),
			Tokens:    columnStats(a.tokens),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Field < stats[j].Field })

	return stats
}

func columnStats(values []float64) model.ColumnStats {
	if len(values) == 0 {
		return model.ColumnStats{}
	}

	s := model.ColumnStats{
		Count: len(values),
		Min:   values[0],
		Max:   values[0],
	}
	sum := 0.0
	for _, v := range values {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += v
	}
	s.Mean = sum / float64(len(values))

	return s
}
