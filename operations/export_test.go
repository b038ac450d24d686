package operations_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/habedi/exactly/client"
	"github.com/habedi/exactly/operations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRecordsCSV_HeaderIsSortedUnionOfFields(t *testing.T) {
	records := []client.Record{
		{"EntryNumber": float64(1), "AccountName": "ACME"},
		{"EntryNumber": float64(2), "Notes": "second record only"},
	}

	var buf bytes.Buffer
	require.NoError(t, operations.WriteRecordsCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"AccountName", "EntryNumber", "Notes"}, rows[0])
	assert.Equal(t, []string{"ACME", "1", ""}, rows[1])
	assert.Equal(t, []string{"", "2", "second record only"}, rows[2])
}

func TestWriteRecordsCSV_FormatsValues(t *testing.T) {
	records := []client.Record{
		{"AmountDC": 12.5, "Quantity": float64(3), "Status": float64(20), "Open": true, "Notes": nil},
	}

	var buf bytes.Buffer
	require.NoError(t, operations.WriteRecordsCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// Header: AmountDC,Notes,Open,Quantity,Status
	assert.Equal(t, []string{"12.5", "", "true", "3", "20"}, rows[1])
}

func TestWriteRecordsJSON_KeepsRetrievalOrder(t *testing.T) {
	records := []client.Record{
		{"EntryNumber": float64(2)},
		{"EntryNumber": float64(1)},
	}

	var buf bytes.Buffer
	require.NoError(t, operations.WriteRecordsJSON(&buf, records))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, float64(2), decoded[0]["EntryNumber"])
	assert.Equal(t, float64(1), decoded[1]["EntryNumber"])
}

func TestSaveRecords(t *testing.T) {
	records := []client.Record{{"EntryNumber": float64(1)}}

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		require.NoError(t, operations.SaveRecords(path, operations.FormatJSON, records))
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"EntryNumber"`)
	})

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		require.NoError(t, operations.SaveRecords(path, operations.FormatCSV, records))
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "EntryNumber")
	})

	t.Run("unsupported format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.xlsx")
		err := operations.SaveRecords(path, "xlsx", records)
		assert.Error(t, err)
	})
}
