// Package export writes deck estimates to files: a PDF report with the
// plan drawing, QR-coded cut labels, and an Excel workbook.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/DeckCalc/internal/engine"
	"github.com/piwi3910/DeckCalc/internal/geometry"
	"github.com/piwi3910/DeckCalc/internal/model"
)

// Report bundles everything the exporters render for one estimate.
type Report struct {
	Title      string
	Plan       model.Plan
	Product    model.Product
	Fastening  model.FasteningMode
	Quantities model.Quantities
	Rows       engine.Decomposition // Optional; drawn over the deck when present
}

// rowColor is an RGB fill for board rows.
type rowColor struct {
	R, G, B int
}

// rowColors alternate so neighbouring rows stay distinguishable.
var rowColors = []rowColor{
	{R: 181, G: 136, B: 99},
	{R: 160, G: 114, B: 80},
	{R: 196, G: 154, B: 118},
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	tableRowH    = 6.0
)

// ExportPDF generates a report with the deck drawing on the first page,
// the quantity summary on the second, and the cut plan (when present) on
// the pages after.
func ExportPDF(path string, r Report) error {
	if len(r.Plan.Polygon.Outer) < 3 {
		return fmt.Errorf("no deck outline to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderPlanPage(pdf, r)

	pdf.AddPage()
	renderSummaryPage(pdf, r)

	if cp := r.Quantities.CutPlan; cp != nil && len(cp.Rows) > 0 {
		renderCutPlanPages(pdf, *cp)
	}

	return pdf.OutputFileAndClose(path)
}

// planView maps plan millimeters onto the page, flipping y so the plan
// reads the way it was drawn.
type planView struct {
	minX, maxY float64
	scale      float64
	offsetX    float64
	offsetY    float64
}

func newPlanView(p model.Polygon, x, y, w, h float64) planView {
	min, max := p.Outer.BoundingBox()
	spanX := math.Max(max.X-min.X, 1)
	spanY := math.Max(max.Y-min.Y, 1)
	scale := math.Min(w/spanX, h/spanY)
	return planView{
		minX:    min.X,
		maxY:    max.Y,
		scale:   scale,
		offsetX: x + (w-spanX*scale)/2,
		offsetY: y,
	}
}

func (v planView) point(p model.Point2D) fpdf.PointType {
	return fpdf.PointType{
		X: v.offsetX + (p.X-v.minX)*v.scale,
		Y: v.offsetY + (v.maxY-p.Y)*v.scale,
	}
}

func (v planView) ring(r model.Outline) []fpdf.PointType {
	pts := make([]fpdf.PointType, len(r))
	for i, p := range r {
		pts[i] = v.point(p)
	}
	return pts
}

// renderPlanPage draws the deck outline, cutouts, board rows and edge lengths.
func renderPlanPage(pdf *fpdf.Fpdf, r Report) {
	title := r.Title
	if title == "" {
		title = "Deck Plan"
	}
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Deck area: %.2f m² | Boards: %d x %.0f mm | Direction: %.0f° | Mode: %s",
		r.Quantities.DeckAreaM2, r.Quantities.Boards.Qty, r.Product.StockLengthMm,
		r.Plan.DeckingDirectionDeg, r.Quantities.Mode)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	deck := geometry.CleanPolygon(r.Plan.DeckPolygon())
	drawW := pageWidth - marginLeft - marginRight - 20
	drawH := pageHeight - drawAreaTop - marginBottom - 10
	view := newPlanView(deck, marginLeft+10, drawAreaTop+5, drawW, drawH)

	// Deck surface
	pdf.SetFillColor(235, 225, 210)
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.5)
	pdf.Polygon(view.ring(deck.Outer), "FD")

	// Board rows
	pdf.SetLineWidth(0.1)
	pdf.SetDrawColor(90, 60, 40)
	for _, l := range r.Rows.Lengths {
		col := rowColors[l.Row%len(rowColors)]
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Polygon(view.ring(r.Rows.Footprint(l)), "FD")
	}

	// Cutouts on top of the rows
	pdf.SetFillColor(255, 255, 255)
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.3)
	for _, h := range deck.Holes {
		pdf.Polygon(view.ring(h), "FD")
	}

	// Outline again so it stays crisp
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.5)
	pdf.Polygon(view.ring(deck.Outer), "D")

	drawEdgeLengths(pdf, view, deck.Outer)
	pdf.SetTextColor(0, 0, 0)
}

// drawEdgeLengths writes each edge length just outside its edge.
func drawEdgeLengths(pdf *fpdf.Fpdf, view planView, ring model.Outline) {
	normals := geometry.EdgeNormals(ring)
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(80, 80, 80)
	for i, n := range normals {
		a, b := ring[i], ring[(i+1)%len(ring)]
		length := math.Hypot(b.X-a.X, b.Y-a.Y)
		if length*view.scale < 8 {
			continue
		}
		mid := view.point(model.Point2D{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2})
		// Page y runs down, so the normal's y flips.
		x := mid.X + n.X*4
		y := mid.Y - n.Y*4
		text := fmt.Sprintf("%.0f", length)
		w := pdf.GetStringWidth(text)
		pdf.SetXY(x-w/2, y-2)
		pdf.CellFormat(w, 4, text, "", 0, "C", false, 0, "")
	}
}

// renderSummaryPage lists every quantity, the stair areas and any warnings.
func renderSummaryPage(pdf *fpdf.Fpdf, r Report) {
	q := r.Quantities

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Material Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	y = drawKeyValues(pdf, y, "Quantities", SummaryLines(r))

	if q.Stairs != nil {
		y += 5
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(100, 7, "Stairs", "", 0, "L", false, 0, "")
		y += 9
		headers := []string{"Stair", "Steps", "Width", "Unit rise", "Unit run"}
		widths := []float64{40, 25, 35, 35, 35}
		var rows [][]string
		for _, it := range q.Stairs.Items {
			rows = append(rows, []string{
				it.ID,
				fmt.Sprintf("%d", it.StepCount),
				fmt.Sprintf("%.0f mm", it.WidthMm),
				fmt.Sprintf("%.1f mm", it.UnitRiseMm),
				fmt.Sprintf("%.0f mm", it.UnitRunMm),
			})
		}
		y = drawTable(pdf, y, headers, widths, rows)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetXY(marginLeft, y+2)
		pdf.CellFormat(200, 5, fmt.Sprintf("Treads %.2f m² | Risers %.2f m² | Total %.2f m²",
			q.Stairs.TreadAreaM2, q.Stairs.RiserAreaM2, q.Stairs.TotalAreaM2), "", 0, "L", false, 0, "")
		y += 8
	}

	if len(q.Warnings) > 0 {
		y += 6
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "Warnings", "", 0, "L", false, 0, "")
		y += 8
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, w := range q.Warnings {
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(250, 5, fmt.Sprintf("- %s", w.Message), "", 0, "L", false, 0, "")
			y += 5
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by DeckCalc", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// KeyValue is one labelled line of a summary.
type KeyValue struct {
	Label string
	Value string
}

// SummaryLines formats the headline quantities of a report. The PDF and
// XLSX exporters share it so both show the same figures.
func SummaryLines(r Report) []KeyValue {
	q := r.Quantities
	lines := []KeyValue{
		{"Product", r.Product.Name},
		{"Mode", string(q.Mode)},
		{"Deck area", fmt.Sprintf("%.2f m²", q.DeckAreaM2)},
		{"Boards", fmt.Sprintf("%d x %.0f mm", q.Boards.Qty, r.Product.StockLengthMm)},
		{"Board area", fmt.Sprintf("%.2f m²", q.Boards.AreaM2)},
		{"Loss rate", fmt.Sprintf("%.1f%%", q.Boards.LossRate*100)},
		{"Board rows", fmt.Sprintf("%d", q.Boards.RowCount)},
		{"Primary bearers", fmt.Sprintf("%.2f m", q.Substructure.PrimaryLenM)},
		{"Secondary joists", fmt.Sprintf("%.2f m", q.Substructure.SecondaryLenM)},
		{"Anchors", fmt.Sprintf("%d", q.Anchors.Qty)},
		{"Footings", fmt.Sprintf("%d", q.Footings.Qty)},
		{"Intersections", fmt.Sprintf("%d", q.Fasteners.Intersections)},
	}
	if q.Fasteners.Clips != nil {
		lines = append(lines, KeyValue{"Clips", fmt.Sprintf("%d", *q.Fasteners.Clips)})
	}
	if q.Fasteners.Screws != nil {
		lines = append(lines, KeyValue{"Screws", fmt.Sprintf("%d", *q.Fasteners.Screws)})
	}
	if cp := q.CutPlan; cp != nil {
		lines = append(lines,
			KeyValue{"Cut plan waste", fmt.Sprintf("%.2f m", cp.WasteM)},
			KeyValue{"Cut plan leftover", fmt.Sprintf("%.2f m", cp.LeftoverM)},
		)
	}
	return lines
}

func drawKeyValues(pdf *fpdf.Fpdf, y float64, heading string, items []KeyValue) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, heading, "", 0, "L", false, 0, "")
	y += 9

	for _, item := range items {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.Label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, item.Value, "", 0, "L", false, 0, "")
		y += 6
	}
	return y
}

// drawTable renders a bordered table with a shaded header and returns the
// y position below it.
func drawTable(pdf *fpdf.Fpdf, y float64, headers []string, widths []float64, rows [][]string) float64 {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	x := marginLeft
	for i, h := range headers {
		pdf.SetXY(x, y)
		pdf.CellFormat(widths[i], tableRowH, h, "1", 0, "C", true, 0, "")
		x += widths[i]
	}
	y += tableRowH

	pdf.SetFont("Helvetica", "", 9)
	for i, row := range rows {
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		x = marginLeft
		for j, cell := range row {
			pdf.SetXY(x, y)
			pdf.CellFormat(widths[j], tableRowH, cell, "1", 0, "C", true, 0, "")
			x += widths[j]
		}
		y += tableRowH
	}
	return y
}

// renderCutPlanPages lists every cut, continuing on new pages as needed.
func renderCutPlanPages(pdf *fpdf.Fpdf, cp model.CutPlan) {
	headers := []string{"Row", "Length", "Source", "From", "Stock board", "Remainder"}
	widths := []float64{30, 35, 30, 35, 35, 35}
	perPage := int((pageHeight - marginTop - 30 - marginBottom) / tableRowH)

	for start := 0; start < len(cp.Rows); start += perPage {
		end := min(start+perPage, len(cp.Rows))
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetXY(marginLeft, marginTop)
		title := fmt.Sprintf("Cut Plan (%d boards of %d mm, efficiency %.1f%%)", cp.StockPieces, cp.StockLengthMm, cp.Efficiency())
		pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

		rows := make([][]string, 0, end-start)
		for _, c := range cp.Rows[start:end] {
			rows = append(rows, []string{
				c.RowID,
				fmt.Sprintf("%d mm", c.RequiredLengthMm),
				string(c.SourceKind),
				c.SourceID,
				c.StockID,
				fmt.Sprintf("%d mm", c.RemainderMm),
			})
		}
		drawTable(pdf, marginTop+headerHeight+5, headers, widths, rows)
	}
}
