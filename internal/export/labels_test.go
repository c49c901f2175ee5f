package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/DeckCalc/internal/model"
)

func buildTestCutPlan() model.CutPlan {
	return model.CutPlan{
		StockLengthMm: 3600,
		StockPieces:   1,
		Rows: []model.CutRow{
			{RowID: "R1-1", RequiredLengthMm: 2000, SourceKind: model.SourceStock, SourceID: "S1", StockID: "S1", RemainderMm: 1600},
			{RowID: "R2-1", RequiredLengthMm: 1500, SourceKind: model.SourceOffcut, SourceID: "R1-1", StockID: "S1", RemainderMm: 0},
		},
	}
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildTestCutPlan(), "Composite 140")

	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	if labels[0].RowID != "R1-1" || labels[0].LengthMm != 2000 {
		t.Errorf("unexpected first label: %+v", labels[0])
	}
	if labels[1].SourceKind != model.SourceOffcut || labels[1].SourceID != "R1-1" {
		t.Errorf("expected second label cut from the R1-1 offcut, got %+v", labels[1])
	}
	if labels[1].Product != "Composite 140" {
		t.Errorf("expected product name on every label, got %q", labels[1].Product)
	}
}

func TestExportLabels_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.pdf")

	if err := ExportLabels(path, buildTestCutPlan(), "Composite 140"); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("labels file was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("labels file is empty")
	}
}

func TestExportLabels_MultiplePages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "many.pdf")

	cp := model.CutPlan{StockLengthMm: 3600}
	for i := 0; i < labelsPerPage+5; i++ {
		cp.Rows = append(cp.Rows, model.CutRow{RowID: "R1-1", RequiredLengthMm: 900, SourceKind: model.SourceStock, SourceID: "S1", StockID: "S1"})
	}

	if err := ExportLabels(path, cp, ""); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
}

func TestExportLabels_EmptyPlan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.pdf")

	if err := ExportLabels(path, model.CutPlan{}, ""); err == nil {
		t.Fatal("expected error for a cut plan without rows")
	}
}
