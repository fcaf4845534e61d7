package analyzer

import (
	"context"

	"github.com/sells-group/tracelens/pkg/langfuse"
)

// fakeClient implements langfuse.Client with pluggable functions.
type fakeClient struct {
	listTraces       func(ctx context.Context, params langfuse.TraceListParams) (*langfuse.TraceListResponse, error)
	listObservations func(ctx context.Context, params langfuse.ObservationListParams) (*langfuse.ObservationListResponse, error)
}

func (f *fakeClient) ListTraces(ctx context.Context, params langfuse.TraceListParams) (*langfuse.TraceListResponse, error) {
	return f.listTraces(ctx, params)
}

func (f *fakeClient) ListObservations(ctx context.Context, params langfuse.ObservationListParams) (*langfuse.ObservationListResponse, error) {
	return f.listObservations(ctx, params)
}

func strPtr(s string) *string {
	return &s
}

// validateFieldTrace builds a validate-field trace with an args-style input
// and a flat output map.
func validateFieldTrace(id, fieldName string, value any, output map[string]any) langfuse.Trace {
	return langfuse.Trace{
		ID:   id,
		Name: "validate-field",
		Input: map[string]any{
			"args": []any{
				map[string]any{"field_name": fieldName, "value": value},
			},
		},
		Output: output,
	}
}
