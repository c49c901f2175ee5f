package importer

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/piwi3910/DeckCalc/internal/geometry"
	"github.com/piwi3910/DeckCalc/internal/model"
)

// PlanImportResult holds the deck polygon read from a file.
type PlanImportResult struct {
	Polygon  model.Polygon
	Errors   []string
	Warnings []string
}

// OK reports whether a usable outer ring was imported.
func (r PlanImportResult) OK() bool {
	return len(r.Errors) == 0 && len(r.Polygon.Outer) >= 3
}

// vertexAliases maps outline columns to accepted header names.
var vertexAliases = map[string][]string{
	"x":    {"x", "x mm", "x_mm", "east", "easting"},
	"y":    {"y", "y mm", "y_mm", "north", "northing"},
	"ring": {"ring", "shape", "polygon", "hole", "cutout"},
}

// ImportOutlineCSV imports deck vertices from a CSV file with x and y
// columns. An optional ring column groups vertices: ring 0 (or an empty
// cell) is the deck boundary, any other value starts a cutout.
func ImportOutlineCSV(path string) PlanImportResult {
	records, warnings, errMsg := readCSVFile(path)
	if errMsg != "" {
		return PlanImportResult{Errors: []string{errMsg}, Warnings: warnings}
	}
	return outlineFromRows(records, "Line", warnings)
}

// ImportOutlineCSVFromReader imports deck vertices from a CSV reader with a
// known delimiter.
func ImportOutlineCSVFromReader(reader io.Reader, delimiter rune) PlanImportResult {
	records, err := readCSV(reader, delimiter)
	if err != nil {
		return PlanImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	if len(records) == 0 {
		return PlanImportResult{Errors: []string{"File is empty"}}
	}
	return outlineFromRows(records, "Line", nil)
}

// ImportOutlineExcel imports deck vertices from the first sheet of an Excel file.
func ImportOutlineExcel(path string) PlanImportResult {
	rows, errMsg := readFirstSheet(path)
	if errMsg != "" {
		return PlanImportResult{Errors: []string{errMsg}}
	}
	return outlineFromRows(rows, "Row", nil)
}

func outlineFromRows(rows [][]string, rowPrefix string, initialWarnings []string) PlanImportResult {
	result := PlanImportResult{Warnings: initialWarnings}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	xCol, yCol, ringCol := 0, 1, 2
	startRow := 0
	header := map[string]int{}
	for i, cell := range rows[0] {
		if role := matchRole(cell, vertexAliases); role != "" {
			if _, seen := header[role]; !seen {
				header[role] = i
			}
		}
	}
	if len(header) > 0 {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
		x, okX := header["x"]
		y, okY := header["y"]
		if !okX || !okY {
			result.Errors = append(result.Errors, "Required columns not found in header: X, Y")
			return result
		}
		xCol, yCol, ringCol = x, y, -1
		if r, ok := header["ring"]; ok {
			ringCol = r
		}
	}

	// Ring keys keep first-seen order so output is stable.
	var order []string
	byRing := map[string]model.Outline{}
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)

		xs, ys := getCell(row, xCol), getCell(row, yCol)
		x, errX := parseNumber(xs)
		y, errY := parseNumber(ys)
		if errX != nil || errY != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Invalid coordinate '%s, %s'", rowLabel, xs, ys))
			continue
		}

		key := normalizeRingKey(getCell(row, ringCol))
		if _, ok := byRing[key]; !ok {
			order = append(order, key)
		}
		byRing[key] = append(byRing[key], model.Point2D{X: x, Y: y})
	}

	if len(order) == 0 {
		result.Errors = append(result.Errors, "No vertices found")
		return result
	}

	rings := make([]model.Outline, 0, len(order))
	for _, key := range order {
		ring := geometry.Clean(byRing[key])
		if len(ring) < 3 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped ring %s with fewer than 3 vertices", key))
			continue
		}
		rings = append(rings, ring)
	}

	poly, warnings := AssemblePolygon(rings)
	result.Polygon = poly
	result.Warnings = append(result.Warnings, warnings...)
	if len(poly.Outer) < 3 {
		result.Errors = append(result.Errors, "No closed deck outline found")
	}
	return result
}

func normalizeRingKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "0"
	}
	if n, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(n)
	}
	return s
}

// AssemblePolygon turns loose closed rings into a deck polygon: the ring
// with the largest area is the boundary and every ring lying inside it
// becomes a cutout. Rings outside the boundary are reported and dropped.
func AssemblePolygon(rings []model.Outline) (model.Polygon, []string) {
	if len(rings) == 0 {
		return model.Polygon{}, nil
	}

	sorted := make([]model.Outline, len(rings))
	copy(sorted, rings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(geometry.SignedArea(sorted[i])) > math.Abs(geometry.SignedArea(sorted[j]))
	})

	var warnings []string
	poly := model.Polygon{Outer: sorted[0]}
	for i, ring := range sorted[1:] {
		if !ringInside(ring, poly.Outer) {
			warnings = append(warnings, fmt.Sprintf("Shape %d lies outside the deck outline and was ignored", i+2))
			continue
		}
		poly.Holes = append(poly.Holes, ring)
	}
	return poly, warnings
}

func ringInside(ring, outer model.Outline) bool {
	return geometry.PointInPolygon(geometry.Centroid(ring), outer)
}
