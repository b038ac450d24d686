package operations

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/habedi/exactly/client"
)

// Export formats for retrieved records.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// SaveRecords writes the records to path in the given format.
func SaveRecords(path, format string, records []client.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	switch format {
	case FormatJSON:
		return WriteRecordsJSON(file, records)
	case FormatCSV:
		return WriteRecordsCSV(file, records)
	default:
		return fmt.Errorf("unsupported format: %s (must be one of: json, csv)", format)
	}
}

// WriteRecordsJSON writes the records as an indented JSON array, in
// retrieval order.
func WriteRecordsJSON(w io.Writer, records []client.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteRecordsCSV writes the records as CSV. The header is the sorted
// union of all field names, since sparse records may each carry a
// different subset; rows keep retrieval order.
func WriteRecordsCSV(w io.Writer, records []client.Record) error {
	fields := map[string]bool{}
	for _, rec := range records {
		for key := range rec {
			fields[key] = true
		}
	}
	header := make([]string, 0, len(fields))
	for key := range fields {
		header = append(header, key)
	}
	sort.Strings(header)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, rec := range records {
		for i, key := range header {
			row[i] = cellValue(rec[key])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// Avoid scientific notation for amounts and document numbers.
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
