package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/DeckCalc/internal/model"
)

// LabelInfo holds the data encoded into each board label's QR code.
type LabelInfo struct {
	RowID       string           `json:"row"`
	LengthMm    int              `json:"length_mm"`
	SourceKind  model.SourceKind `json:"source"`
	SourceID    string           `json:"source_id"`
	StockID     string           `json:"stock_id"`
	RemainderMm int              `json:"remainder_mm"`
	Product     string           `json:"product,omitempty"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
const (
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// CollectLabelInfos returns one label per cut in plan order.
func CollectLabelInfos(cp model.CutPlan, product string) []LabelInfo {
	labels := make([]LabelInfo, 0, len(cp.Rows))
	for _, c := range cp.Rows {
		labels = append(labels, LabelInfo{
			RowID:       c.RowID,
			LengthMm:    c.RequiredLengthMm,
			SourceKind:  c.SourceKind,
			SourceID:    c.SourceID,
			StockID:     c.StockID,
			RemainderMm: c.RemainderMm,
			Product:     product,
		})
	}
	return labels
}

// ExportLabels generates a PDF of QR-coded labels, one per cut board, on a
// standard label sheet (Avery 5160 / 3 columns x 10 rows on US Letter).
func ExportLabels(path string, cp model.CutPlan, product string) error {
	labels := CollectLabelInfos(cp, product)
	if len(labels) == 0 {
		return fmt.Errorf("cut plan has no rows to label")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}
		pos := i % labelsPerPage
		x := labelMarginLeft + float64(pos%labelCols)*labelWidth
		y := labelMarginTop + float64(pos/labelCols)*labelHeight

		if err := renderLabel(pdf, x, y, i, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.RowID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, index int, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d", index)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(png))
	pdf.ImageOptions(imgName, x+labelWidth-qrSize-labelPadding, y+(labelHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, info.RowID, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("Cut to %d mm", info.LengthMm), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	source := fmt.Sprintf("Board %s", info.StockID)
	if info.SourceKind == model.SourceOffcut {
		source = fmt.Sprintf("Offcut of %s (board %s)", info.SourceID, info.StockID)
	}
	pdf.CellFormat(textW, 3, source, "", 1, "L", false, 0, "")

	if info.RemainderMm > 0 {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, fmt.Sprintf("Keep %d mm remainder", info.RemainderMm), "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}
