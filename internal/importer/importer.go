// Package importer reads deck input from files: stair flights and outline
// vertices from CSV or Excel, and deck outlines from DXF drawings. It
// supports automatic delimiter detection, flexible column mapping, and
// case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/DeckCalc/internal/model"
)

// StairImportResult holds the results of a stair import.
type StairImportResult struct {
	Stairs   []model.StairConfig
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	ID     int
	Width  int
	Steps  int
	Depth  int
	Height int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"id":     {"id", "name", "label", "stair", "flight", "description"},
	"width":  {"width", "w", "width mm", "width_mm", "stair width"},
	"steps":  {"steps", "step count", "step_count", "stepcount", "count", "qty", "n"},
	"depth":  {"depth", "step depth", "step_depth", "tread", "run", "going", "d"},
	"height": {"height", "step height", "step_height", "riser", "rise", "h"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		records, err := readCSV(bytes.NewReader(data), delim)
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// matchRole returns the canonical role for a header cell, or "".
func matchRole(cell string, aliases map[string][]string) string {
	normalized := strings.ToLower(strings.TrimSpace(cell))
	for role, names := range aliases {
		for _, alias := range names {
			if normalized == alias {
				return role
			}
		}
	}
	return ""
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or a default
// positional mapping (ID, Width, Steps, Depth, Height) and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{ID: -1, Width: -1, Steps: -1, Depth: -1, Height: -1}

	isHeader := false
	for i, cell := range row {
		var slot *int
		switch matchRole(cell, headerAliases) {
		case "id":
			slot = &mapping.ID
		case "width":
			slot = &mapping.Width
		case "steps":
			slot = &mapping.Steps
		case "depth":
			slot = &mapping.Depth
		case "height":
			slot = &mapping.Height
		default:
			continue
		}
		isHeader = true
		if *slot == -1 {
			*slot = i
		}
	}

	if !isHeader {
		return ColumnMapping{ID: 0, Width: 1, Steps: 2, Depth: 3, Height: 4}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNumber accepts a decimal comma as well as a decimal point.
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

// parseStairRow extracts a StairConfig from a row using the given column
// mapping. Returns the stair, any error message, and any warning message.
func parseStairRow(row []string, mapping ColumnMapping, rowLabel string) (model.StairConfig, string, string) {
	fields := []struct {
		name string
		idx  int
	}{
		{"width", mapping.Width},
		{"steps", mapping.Steps},
		{"depth", mapping.Depth},
		{"height", mapping.Height},
	}
	values := make([]float64, len(fields))
	for i, f := range fields {
		raw := getCell(row, f.idx)
		if raw == "" {
			return model.StairConfig{}, fmt.Sprintf("%s: Missing %s value", rowLabel, f.name), ""
		}
		v, err := parseNumber(raw)
		if err != nil {
			return model.StairConfig{}, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, f.name, raw), ""
		}
		if v < 0 {
			return model.StairConfig{}, fmt.Sprintf("%s: Negative %s value", rowLabel, f.name), ""
		}
		values[i] = v
	}

	steps := int(values[1])
	if float64(steps) != values[1] {
		return model.StairConfig{}, fmt.Sprintf("%s: Step count must be a whole number, got '%s'", rowLabel, getCell(row, mapping.Steps)), ""
	}

	stair := model.NewStairConfig(values[0], steps, values[2], values[3])
	if id := getCell(row, mapping.ID); id != "" {
		stair.ID = id
	}

	var warning string
	if !stair.Usable() {
		warning = fmt.Sprintf("%s: Stair %s has no steps or no width and will not be counted", rowLabel, stair.ID)
	}
	return stair, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// readCSVFile loads a CSV file, sniffing its delimiter. Problems are
// reported as messages so every importer can return them the same way.
func readCSVFile(path string) (records [][]string, warnings []string, errMsg string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Sprintf("Cannot open file: %v", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, "File is empty"
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err = readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		return nil, warnings, fmt.Sprintf("Cannot read CSV: %v", err)
	}
	if len(records) == 0 {
		return nil, warnings, "File is empty"
	}
	return records, warnings, ""
}

// readFirstSheet returns the rows of the first worksheet of an Excel file.
func readFirstSheet(path string) ([][]string, string) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Sprintf("Cannot open Excel file: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, "Excel file has no sheets"
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Sprintf("Cannot read Excel data: %v", err)
	}
	if len(rows) == 0 {
		return nil, "Sheet is empty"
	}
	return rows, ""
}

// ImportStairsCSV imports stair flights from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportStairsCSV(path string) StairImportResult {
	records, warnings, errMsg := readCSVFile(path)
	if errMsg != "" {
		return StairImportResult{Errors: []string{errMsg}, Warnings: warnings}
	}
	return stairsFromRows(records, "Line", warnings)
}

// ImportStairsCSVFromReader imports stair flights from a CSV reader with a
// known delimiter.
func ImportStairsCSVFromReader(reader io.Reader, delimiter rune) StairImportResult {
	records, err := readCSV(reader, delimiter)
	if err != nil {
		return StairImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	if len(records) == 0 {
		return StairImportResult{Errors: []string{"File is empty"}}
	}
	return stairsFromRows(records, "Line", nil)
}

// ImportStairsExcel imports stair flights from the first sheet of an Excel file.
func ImportStairsExcel(path string) StairImportResult {
	rows, errMsg := readFirstSheet(path)
	if errMsg != "" {
		return StairImportResult{Errors: []string{errMsg}}
	}
	return stairsFromRows(rows, "Row", nil)
}

// stairsFromRows is the shared import logic for both CSV and Excel data.
func stairsFromRows(rows [][]string, rowPrefix string, initialWarnings []string) StairImportResult {
	result := StairImportResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Steps == -1 {
			missing = append(missing, "Steps")
		}
		if mapping.Depth == -1 {
			missing = append(missing, "Depth")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// An unrecognized header still has a non-numeric width column
		if _, err := parseNumber(strings.TrimSpace(rows[0][1])); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		stair, errMsg, warning := parseStairRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Stairs = append(result.Stairs, stair)
	}

	return result
}
