package importer

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yofu/dxf"

	"github.com/piwi3910/DeckCalc/internal/model"
)

// writeDeckDXF saves a drawing with a 4000 x 3000 polyline deck, a round
// cutout inside it and a loose-line square well outside it.
func writeDeckDXF(t *testing.T) string {
	t.Helper()
	d := dxf.NewDrawing()
	if _, err := d.LwPolyline(true,
		[]float64{1000, 500},
		[]float64{5000, 500},
		[]float64{5000, 3500},
		[]float64{1000, 3500},
	); err != nil {
		t.Fatalf("add polyline: %v", err)
	}
	if _, err := d.Circle(3000, 2000, 0, 300); err != nil {
		t.Fatalf("add circle: %v", err)
	}
	corners := [][2]float64{{10000, 0}, {10500, 0}, {10500, 500}, {10000, 500}}
	for i, a := range corners {
		b := corners[(i+1)%len(corners)]
		if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			t.Fatalf("add line: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "deck.dxf")
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("save drawing: %v", err)
	}
	return path
}

func TestImportPlanDXF_OutlineWithCutout(t *testing.T) {
	path := writeDeckDXF(t)

	result := ImportPlanDXF(path, DXFOptions{Normalize: true})

	if !result.OK() {
		t.Fatalf("expected usable import, got errors %v", result.Errors)
	}
	poly := result.Polygon
	want := model.Outline{{X: 0, Y: 0}, {X: 4000, Y: 0}, {X: 4000, Y: 3000}, {X: 0, Y: 3000}}
	if len(poly.Outer) != len(want) {
		t.Fatalf("expected polyline as the 4-point boundary, got %v", poly.Outer)
	}
	for i, p := range want {
		if math.Abs(poly.Outer[i].X-p.X) > 1e-6 || math.Abs(poly.Outer[i].Y-p.Y) > 1e-6 {
			t.Errorf("boundary point %d: expected %v, got %v", i, p, poly.Outer[i])
		}
	}

	if len(poly.Holes) != 1 {
		t.Fatalf("expected the circle as the only cutout, got %d holes", len(poly.Holes))
	}
	if len(poly.Holes[0]) != circleSegments {
		t.Errorf("expected %d points on the cutout, got %d", circleSegments, len(poly.Holes[0]))
	}
	for _, p := range poly.Holes[0] {
		if math.Abs(math.Hypot(p.X-2000, p.Y-1500)-300) > 1e-6 {
			t.Fatalf("cutout point %v is not on the moved circle", p)
		}
	}

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "outside the deck outline") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning for the outside square, got %v", result.Warnings)
	}
}

func TestImportPlanDXF_Scale(t *testing.T) {
	path := writeDeckDXF(t)

	result := ImportPlanDXF(path, DXFOptions{Scale: 0.5})

	if !result.OK() {
		t.Fatalf("expected usable import, got errors %v", result.Errors)
	}
	if got := result.Polygon.Outer[0]; math.Abs(got.X-500) > 1e-6 || math.Abs(got.Y-250) > 1e-6 {
		t.Errorf("expected first boundary point scaled to (500, 250), got %v", got)
	}
}

func TestImportPlanDXF_FileNotFound(t *testing.T) {
	result := ImportPlanDXF("/nonexistent/deck.dxf", DXFOptions{})

	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
	if result.OK() {
		t.Error("expected result not to be usable")
	}
}

func TestChainSegments_ClosesLoop(t *testing.T) {
	// Square drawn as four loose lines, two of them reversed.
	segs := []segment{
		{start: model.Point2D{X: 0, Y: 0}, end: model.Point2D{X: 1000, Y: 0}},
		{start: model.Point2D{X: 1000, Y: 1000}, end: model.Point2D{X: 1000, Y: 0}},
		{start: model.Point2D{X: 0, Y: 1000}, end: model.Point2D{X: 0, Y: 0}},
		{start: model.Point2D{X: 1000, Y: 1000}, end: model.Point2D{X: 0, Y: 1000}},
	}

	rings, open := chainSegments(segs, chainTolerance)

	if open != 0 {
		t.Errorf("expected no open chains, got %d", open)
	}
	if len(rings) != 1 {
		t.Fatalf("expected 1 ring, got %d", len(rings))
	}
	if len(rings[0]) != 4 {
		t.Errorf("expected 4 vertices, got %d", len(rings[0]))
	}
}

func TestChainSegments_OpenChain(t *testing.T) {
	segs := []segment{
		{start: model.Point2D{X: 0, Y: 0}, end: model.Point2D{X: 1000, Y: 0}},
		{start: model.Point2D{X: 1000, Y: 0}, end: model.Point2D{X: 1000, Y: 1000}},
	}

	rings, open := chainSegments(segs, chainTolerance)

	if len(rings) != 0 || open != 1 {
		t.Errorf("expected one open chain and no rings, got %d rings, %d open", len(rings), open)
	}
}

func TestBulgeArcPoints_Semicircle(t *testing.T) {
	p1 := model.Point2D{X: 0, Y: 0}
	p2 := model.Point2D{X: 2000, Y: 0}

	pts := bulgeArcPoints(p1, p2, 1, 4)

	if len(pts) != 5 {
		t.Fatalf("expected 5 points, got %d", len(pts))
	}
	if pts[0] != p1 || pts[4] != p2 {
		t.Errorf("expected arc to start and end on the chord, got %v .. %v", pts[0], pts[4])
	}
	// A positive bulge turns counter-clockwise, so the arc dips below the chord.
	mid := pts[2]
	if math.Abs(mid.X-1000) > 1e-6 || math.Abs(mid.Y+1000) > 1e-6 {
		t.Errorf("expected midpoint (1000, -1000), got %v", mid)
	}
}

func TestTransformPolygon(t *testing.T) {
	p := model.Polygon{Outer: square(10, 20, 5)}.WithHoles(square(11, 21, 1))

	out := transformPolygon(p, DXFOptions{Scale: 1000, Normalize: true})

	if out.Outer[0] != (model.Point2D{X: 0, Y: 0}) {
		t.Errorf("expected outline moved to origin, got %v", out.Outer[0])
	}
	if out.Outer[2] != (model.Point2D{X: 5000, Y: 5000}) {
		t.Errorf("expected meters scaled to millimeters, got %v", out.Outer[2])
	}
	if out.Holes[0][0] != (model.Point2D{X: 1000, Y: 1000}) {
		t.Errorf("expected hole transformed with the outline, got %v", out.Holes[0][0])
	}
}

func TestCircleToOutline(t *testing.T) {
	ring := circleToOutline(0, 0, 500, 64)

	if len(ring) != 64 {
		t.Fatalf("expected 64 points, got %d", len(ring))
	}
	for _, p := range ring {
		if math.Abs(math.Hypot(p.X, p.Y)-500) > 1e-9 {
			t.Fatalf("point %v is not on the circle", p)
		}
	}
}
