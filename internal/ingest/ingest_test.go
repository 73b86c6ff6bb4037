package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadJSON_Array(t *testing.T) {
	path := writeTempFile(t, "clients.json", `[
		{"name": "Acme", "revenue": 5000000, "has_mfa": true},
		{"name": "Globex", "revenue": 20000000}
	]`)

	payloads, err := ReadJSON(path)
	require.NoError(t, err)
	require.Len(t, payloads, 2)
	assert.Equal(t, "Acme", payloads[0]["name"])
	assert.Equal(t, json.Number("5000000"), payloads[0]["revenue"])
	assert.Equal(t, true, payloads[0]["has_mfa"])
}

func TestReadJSON_SingleObject(t *testing.T) {
	path := writeTempFile(t, "client.json", `{"name": "Acme", "employee_count": 20}`)

	payloads, err := ReadJSON(path)
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.Equal(t, "Acme", payloads[0]["name"])
}

func TestReadJSON_Malformed(t *testing.T) {
	path := writeTempFile(t, "bad.json", `{"name": `)

	_, err := ReadJSON(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestReadXLSX_HeaderMapping(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Clients": {
			{"Name", "Revenue", "Employee Count", "Has MFA"},
			{"Acme", "5000000", "20", "yes"},
			{"Globex", "20000000", "100", "no"},
		},
	})

	payloads, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, payloads, 2)
	assert.Equal(t, "Acme", payloads[0]["name"])
	assert.Equal(t, "5000000", payloads[0]["revenue"])
	assert.Equal(t, "20", payloads[0]["employee_count"])
	assert.Equal(t, "yes", payloads[0]["has_mfa"])
}

func TestReadXLSX_SkipsBlankCells(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"name", "revenue"},
			{"Acme", ""},
			{"", ""},
		},
	})

	payloads, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	_, hasRevenue := payloads[0]["revenue"]
	assert.False(t, hasRevenue)
}

func TestReadXLSX_SheetName(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"First":  {{"name"}, {"A"}},
		"Second": {{"name"}, {"B"}},
	})

	payloads, err := ReadXLSX(path, XLSXOptions{SheetName: "Second"})
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.Equal(t, "B", payloads[0]["name"])

	_, err = ReadXLSX(path, XLSXOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadFile_Dispatch(t *testing.T) {
	jsonPath := writeTempFile(t, "a.json", `[{"name": "Acme"}]`)
	payloads, err := ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Len(t, payloads, 1)

	xlsxPath := createTestXLSX(t, map[string][][]string{
		"Sheet1": {{"name"}, {"Acme"}},
	})
	payloads, err = ReadFile(xlsxPath)
	require.NoError(t, err)
	assert.Len(t, payloads, 1)

	csvPath := writeTempFile(t, "a.csv", "name\nAcme\n")
	_, err = ReadFile(csvPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
