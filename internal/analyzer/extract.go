package analyzer

import (
	"github.com/sells-group/tracelens/internal/model"
	"github.com/sells-group/tracelens/pkg/langfuse"
)

// ExtractInput decodes the field name/value pair from a trace's input.
//
// Precedence: a non-empty positional "args" list wins, taking the first
// element's field_name/value; otherwise the keyword path
// input.kwargs.request is consulted. An absent input yields a record with
// nil name and nil value. The function is total: malformed shapes fall
// through to nil fields rather than failing.
func ExtractInput(trace langfuse.Trace) model.FieldInput {
	var in model.FieldInput
	if trace.Input == nil {
		return in
	}

	if args, ok := trace.Input["args"].([]any); ok && len(args) > 0 {
		if first, ok := args[0].(map[string]any); ok {
			in.Name = optString(first, "field_name")
			in.Value = first["value"]
			return in
		}
		return in
	}

	kwargs, _ := trace.Input["kwargs"].(map[string]any)
	request, _ := kwargs["request"].(map[string]any)
	in.Name = optString(request, "field_name")
	in.Value = request["value"]
	return in
}

// ExtractOutput decodes the four validation signals from a trace's output.
//
// An output carrying a "content" key is unwrapped first; otherwise the
// output map itself is read. Missing keys default to the empty string, so
// the result never distinguishes an absent signal from an explicitly empty
// one.
func ExtractOutput(trace langfuse.Trace) model.FieldOutput {
	var out model.FieldOutput
	if trace.Output == nil {
		return out
	}

	row := trace.Output
	if raw, ok := trace.Output["content"]; ok {
		content, ok := raw.(map[string]any)
		if !ok {
			// content present but not a map: all signals default.
			return out
		}
		row = content
	}

	out.Valid = stringOr(row, "valid")
	out.Empty = stringOr(row, "empty")
	out.Suggestion = stringOr(row, "suggestion")
	out.Warning = stringOr(row, "warning")
	return out
}

// optString returns a pointer to the string at key, or nil when the key is
// missing, null, or not a string.
func optString(m map[string]any, key string) *string {
	if m == nil {
		return nil
	}
	if s, ok := m[key].(string); ok {
		return &s
	}
	return nil
}

// stringOr returns the string at key, or "" when missing or non-string.
func stringOr(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
