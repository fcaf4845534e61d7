package analyzer

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/tracelens/internal/model"
	"github.com/sells-group/tracelens/pkg/langfuse"
)

// numOrZero coerces a raw JSON value to float64. Missing keys, nulls, and
// values of the wrong type all become zero; a malformed metric must never
// abort aggregation. This is the single coercion point for all cost/usage
// fields.
func numOrZero(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// extractUsage pulls the six numeric metrics out of one observation,
// coercing each independently.
func extractUsage(obs langfuse.Observation) model.ObservationUsage {
	return model.ObservationUsage{
		ObservationID: obs.ID,
		TraceID:       obs.TraceID,
		Name:          obs.Name,
		CostInput:     numOrZero(obs.CostDetails["input"]),
		CostOutput:    numOrZero(obs.CostDetails["output"]),
		CostTotal:     numOrZero(obs.CostDetails["total"]),
		TokensInput:   numOrZero(obs.UsageDetails["input"]),
		TokensOutput:  numOrZero(obs.UsageDetails["output"]),
		TokensTotal:   numOrZero(obs.UsageDetails["total"]),
	}
}

// Collector fetches GENERATION observations and extracts usage records for
// traces belonging to the current run.
type Collector struct {
	client   langfuse.Client
	limit    int
	progress ProgressFunc
}

// NewCollector creates a Collector. limit is the per-page size (0 uses the
// server default). progress may be nil.
func NewCollector(client langfuse.Client, limit int, progress ProgressFunc) *Collector {
	return &Collector{client: client, limit: limit, progress: progress}
}

// Collect retrieves every page of GENERATION observations and returns
// usage records for those whose trace id is in knownTraceIDs, in fetch
// order. Observations for traces outside the current batch are discarded.
func (c *Collector) Collect(ctx context.Context, knownTraceIDs map[string]struct{}) ([]model.ObservationUsage, error) {
	base, err := c.client.ListObservations(ctx, langfuse.ObservationListParams{
		Limit: c.limit,
		Type:  langfuse.ObservationTypeGeneration,
	})
	if err != nil {
		return nil, eris.Wrap(err, "collect usage: discovery request")
	}

	totalPages := base.Meta.TotalPages
	var records []model.ObservationUsage
	skipped := 0

	for page := 1; page <= totalPages; page++ {
		if c.progress != nil {
			c.progress(page, totalPages)
		}

		resp, err := c.client.ListObservations(ctx, langfuse.ObservationListParams{
			Page:  page,
			Limit: c.limit,
			Type:  langfuse.ObservationTypeGeneration,
		})
		if err != nil {
			return nil, eris.Wrapf(err, "collect usage: page %d of %d", page, totalPages)
		}

		for _, obs := range resp.Data {
			if _, ok := knownTraceIDs[obs.TraceID]; !ok {
				skipped++
				continue
			}
			records = append(records, extractUsage(obs))
		}
	}

	zap.L().Info("observations collected",
		zap.Int("pages", totalPages),
		zap.Int("retained", len(records)),
		zap.Int("outside_batch", skipped),
	)

	return records, nil
}

// GroupByTrace buckets usage records by trace id, preserving fetch order
// within each trace.
func GroupByTrace(records []model.ObservationUsage) map[string][]model.ObservationUsage {
	grouped := make(map[string][]model.ObservationUsage)
	for _, rec := range records {
		grouped[rec.TraceID] = append(grouped[rec.TraceID], rec)
	}
	return grouped
}

// Summarize sums each trace's usage records into per-trace totals. The
// trace name is looked up from nameByTraceID. Both returned views carry
// identical data: the map for point lookups, the slice (sorted by trace
// id) for tabular consumption.
func Summarize(usageByTrace map[string][]model.ObservationUsage, nameByTraceID map[string]string) (map[string]model.TraceUsage, []model.TraceUsage) {
	totals := make(map[string]model.TraceUsage, len(usageByTrace))

	for traceID, records := range usageByTrace {
		t := model.TraceUsage{
			TraceID:      traceID,
			TraceName:    nameByTraceID[traceID],
			Observations: len(records),
		}
		for _, rec := range records {
			t.CostInput += rec.CostInput
			t.CostOutput += rec.CostOutput
			t.CostTotal += rec.CostTotal
			t.TokensInput += rec.TokensInput
			t.TokensOutput += rec.TokensOutput
			t.TokensTotal += rec.TokensTotal
		}
		totals[traceID] = t
	}

	list := make([]model.TraceUsage, 0, len(totals))
	for _, t := range totals {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].TraceID < list[j].TraceID })

	return totals, list
}
