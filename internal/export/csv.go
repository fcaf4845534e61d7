// Package export writes analysis results as CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/tracelens/internal/analyzer"
	"github.com/sells-group/tracelens/internal/model"
)

var suggestionColumns = []string{"field_name", "raw_value", "suggestion", "trace_id"}

var warningColumns = []string{"field_name", "raw_value", "warning", "trace_id"}

var usageColumns = []string{
	"trace_id",
	"field_name",
	"raw_value",
	"trace_name",
	"observations_count",
	"cost_input",
	"cost_output",
	"cost_total",
	"tokens_input",
	"tokens_output",
	"tokens_total",
}

// WriteSuggestions writes the suggestion detail records to w.
func WriteSuggestions(w io.Writer, records []model.SuggestionRecord) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(suggestionColumns); err != nil {
		return eris.Wrap(err, "export suggestions: write header")
	}
	for _, rec := range records {
		row := []string{optStr(rec.FieldName), anyStr(rec.RawValue), rec.Suggestion, rec.TraceID}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "export suggestions: write row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export suggestions: flush")
}

// WriteWarnings writes the warning detail records to w.
func WriteWarnings(w io.Writer, records []model.WarningRecord) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(warningColumns); err != nil {
		return eris.Wrap(err, "export warnings: write header")
	}
	for _, rec := range records {
		row := []string{optStr(rec.FieldName), anyStr(rec.RawValue), rec.Warning, rec.TraceID}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "export warnings: write row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export warnings: flush")
}

// WriteJoinedUsage writes the joined field/usage table to w. Rows missing
// a usage side get blank usage cells, not zeros, so spreadsheet averages
// stay honest.
func WriteJoinedUsage(w io.Writer, rows []model.JoinedRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(usageColumns); err != nil {
		return eris.Wrap(err, "export usage: write header")
	}
	for _, row := range rows {
		record := []string{row.TraceID, optStr(row.FieldName), anyStr(row.RawValue)}
		if row.Usage != nil {
			record = append(record,
				row.Usage.TraceName,
				strconv.Itoa(row.Usage.Observations),
				floatStr(row.Usage.CostInput),
				floatStr(row.Usage.CostOutput),
				floatStr(row.Usage.CostTotal),
				floatStr(row.Usage.TokensInput),
				floatStr(row.Usage.TokensOutput),
				floatStr(row.Usage.TokensTotal),
			)
		} else {
			record = append(record, "", "", "", "", "", "", "", "")
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "export usage: write row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export usage: flush")
}

// WriteAll writes the three result CSVs into dir.
func WriteAll(result *analyzer.Result, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "export: create output dir")
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"suggestions.csv", func(w io.Writer) error { return WriteSuggestions(w, result.Suggestions) }},
		{"warnings.csv", func(w io.Writer) error { return WriteWarnings(w, result.Warnings) }},
		{"field_usage.csv", func(w io.Writer) error { return WriteJoinedUsage(w, result.Joined) }},
	}

	for _, file := range files {
		if err := writeFile(dir+"/"+file.name, file.write); err != nil {
			return err
		}
	}

	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()

	return write(f)
}

func optStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func anyStr(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func floatStr(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
