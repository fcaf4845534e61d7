package analyzer

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/tracelens/pkg/langfuse"
)

// ProgressFunc reports per-page fetch progress. page is 1-based.
type ProgressFunc func(page, totalPages int)

// FetchResult carries the fetched traces together with how the fetch was
// satisfied, so callers can tell "no traces exist" apart from "the date
// filter had to be dropped".
type FetchResult struct {
	Traces []langfuse.Trace
	// FromTimestamp is the representation the API finally accepted, or ""
	// when no date filter was applied.
	FromTimestamp string
	// DateFilterDropped is true when every timestamp representation was
	// rejected and the fetch fell back to unfiltered data.
	DateFilterDropped bool
}

// Fetcher retrieves all pages of the trace listing endpoint.
type Fetcher struct {
	client   langfuse.Client
	limit    int
	progress ProgressFunc
}

// NewFetcher creates a Fetcher. limit is the per-page size passed to the
// API (0 uses the server default). progress may be nil.
func NewFetcher(client langfuse.Client, limit int, progress ProgressFunc) *Fetcher {
	return &Fetcher{client: client, limit: limit, progress: progress}
}

// timestampCandidates returns the representations of ts to offer the API,
// in fixed priority order: as given, Z replaced with an explicit UTC
// offset, truncated to whole seconds with a literal Z, and date-only.
func timestampCandidates(ts string) []string {
	return []string{
		ts,
		strings.Replace(ts, "Z", "+00:00", 1),
		strings.SplitN(ts, ".", 2)[0] + "Z",
		strings.SplitN(ts, "T", 2)[0],
	}
}

// FetchAllTraces retrieves every page of traces, optionally filtered to
// those after fromTimestamp.
//
// The accepted timestamp format varies between Langfuse deployments, so
// each candidate representation is tried in priority order; once they are
// all rejected the filter is dropped entirely and the full dataset is
// fetched instead. Page order is preserved exactly as the API returns it.
func (f *Fetcher) FetchAllTraces(ctx context.Context, fromTimestamp string) (*FetchResult, error) {
	if fromTimestamp == "" {
		traces, err := f.fetchPages(ctx, "")
		if err != nil {
			return nil, err
		}
		return &FetchResult{Traces: traces}, nil
	}

	var lastErr error
	for _, candidate := range timestampCandidates(fromTimestamp) {
		traces, err := f.fetchPages(ctx, candidate)
		if err == nil {
			return &FetchResult{Traces: traces, FromTimestamp: candidate}, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
		zap.L().Warn("timestamp representation rejected, trying next",
			zap.String("fromTimestamp", candidate),
			zap.Error(err),
		)
	}

	zap.L().Warn("all timestamp formats rejected, refetching without date filter",
		zap.String("fromTimestamp", fromTimestamp),
		zap.Error(lastErr),
	)

	traces, err := f.fetchPages(ctx, "")
	if err != nil {
		return nil, eris.Wrap(err, "fetch traces: exhausted timestamp formats and unfiltered fallback")
	}
	return &FetchResult{Traces: traces, DateFilterDropped: true}, nil
}

// fetchPages issues the discovery request, then pages 1..totalPages in
// order, concatenating each page's data in API order.
func (f *Fetcher) fetchPages(ctx context.Context, fromTimestamp string) ([]langfuse.Trace, error) {
	base, err := f.client.ListTraces(ctx, langfuse.TraceListParams{
		Limit:         f.limit,
		FromTimestamp: fromTimestamp,
	})
	if err != nil {
		return nil, eris.Wrap(err, "fetch traces: discovery request")
	}

	totalPages := base.Meta.TotalPages
	all := make([]langfuse.Trace, 0, len(base.Data)*totalPages)

	for page := 1; page <= totalPages; page++ {
		if f.progress != nil {
			f.progress(page, totalPages)
		}

		resp, err := f.client.ListTraces(ctx, langfuse.TraceListParams{
			Page:          page,
			Limit:         f.limit,
			FromTimestamp: fromTimestamp,
		})
		if err != nil {
			return nil, eris.Wrapf(err, "fetch traces: page %d of %d", page, totalPages)
		}
		all = append(all, resp.Data...)
	}

	return all, nil
}
