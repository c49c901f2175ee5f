package model

import (
	"encoding/json"
	"testing"
)

func TestOutlineBoundingBox(t *testing.T) {
	o := Outline{{X: 100, Y: -50}, {X: 400, Y: 20}, {X: -10, Y: 300}}

	min, max := o.BoundingBox()

	if min != (Point2D{X: -10, Y: -50}) {
		t.Errorf("unexpected min %v", min)
	}
	if max != (Point2D{X: 400, Y: 300}) {
		t.Errorf("unexpected max %v", max)
	}

	min, max = Outline{}.BoundingBox()
	if min != (Point2D{}) || max != (Point2D{}) {
		t.Errorf("expected zero box for empty outline, got %v %v", min, max)
	}
}

func TestOutlineTranslate(t *testing.T) {
	o := Outline{{X: 0, Y: 0}, {X: 10, Y: 5}}
	moved := o.Translate(100, -5)

	if moved[1] != (Point2D{X: 110, Y: 0}) {
		t.Errorf("unexpected translated point %v", moved[1])
	}
	if o[1] != (Point2D{X: 10, Y: 5}) {
		t.Error("Translate must not modify the receiver")
	}
}

func TestPolygonWithHolesDropsDegenerateRings(t *testing.T) {
	outer := Outline{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	hole := Outline{{X: 2, Y: 2}, {X: 4, Y: 2}, {X: 4, Y: 4}}
	p := Polygon{Outer: outer}

	got := p.WithHoles(hole, Outline{{X: 1, Y: 1}, {X: 2, Y: 2}})

	if len(got.Holes) != 1 {
		t.Fatalf("expected 1 hole, got %d", len(got.Holes))
	}
	if len(p.Holes) != 0 {
		t.Error("WithHoles must not modify the receiver")
	}
	if rings := got.Rings(); len(rings) != 2 {
		t.Errorf("expected outer plus one hole, got %d rings", len(rings))
	}
}

func TestPlanDeckPolygon(t *testing.T) {
	outer := Outline{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	footprint := Outline{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	plan := NewPlan(outer, 140, 0)

	if got := plan.DeckPolygon(); len(got.Holes) != 0 {
		t.Errorf("expected no holes without stairs, got %d", len(got.Holes))
	}

	plan.Stairs = &StairSettings{Enabled: false, Footprint: footprint}
	if got := plan.DeckPolygon(); len(got.Holes) != 0 {
		t.Error("disabled stairs must not cut the deck")
	}

	plan.Stairs.Enabled = true
	if got := plan.DeckPolygon(); len(got.Holes) != 1 {
		t.Errorf("expected stair footprint as a hole, got %d holes", len(got.Holes))
	}
}

func TestStairConfigUsable(t *testing.T) {
	tests := []struct {
		name string
		cfg  StairConfig
		want bool
	}{
		{"complete", StairConfig{WidthMm: 1000, StepCount: 3}, true},
		{"no steps", StairConfig{WidthMm: 1000}, false},
		{"no width", StairConfig{StepCount: 3}, false},
		{"negative width", StairConfig{WidthMm: -5, StepCount: 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Usable(); got != tt.want {
				t.Errorf("Usable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewStairConfigAssignsShortID(t *testing.T) {
	a := NewStairConfig(1000, 3, 300, 175)
	b := NewStairConfig(1000, 3, 300, 175)

	if len(a.ID) != 8 {
		t.Errorf("expected 8 character id, got %q", a.ID)
	}
	if a.ID == b.ID {
		t.Error("expected distinct ids")
	}
}

func TestProductSupportsFastening(t *testing.T) {
	p := NewProduct("Clip only", 3600, []float64{140}, 25, 5, FasteningClip)

	if !p.SupportsFastening(FasteningClip) {
		t.Error("expected clip supported")
	}
	if p.SupportsFastening(FasteningScrew) {
		t.Error("expected screw rejected")
	}
}

func TestProductOffersWidth(t *testing.T) {
	p := DefaultProduct()
	if !p.OffersWidth(145) {
		t.Error("expected 145 offered")
	}
	if p.OffersWidth(90) {
		t.Error("expected 90 not offered")
	}

	p.WidthOptionsMm = nil
	if !p.OffersWidth(90) {
		t.Error("a product without options accepts any width")
	}
}

func TestCutPlanEfficiency(t *testing.T) {
	cp := CutPlan{StockLengthMm: 3600, StockPieces: 2, TotalRequiredMm: 5400}

	if cp.DispensedMm() != 7200 {
		t.Errorf("expected 7200 dispensed, got %d", cp.DispensedMm())
	}
	if cp.Efficiency() != 75 {
		t.Errorf("expected 75%% efficiency, got %f", cp.Efficiency())
	}
	if (CutPlan{}).Efficiency() != 0 {
		t.Error("expected zero efficiency for an empty plan")
	}
}

func TestFastenerQuantitiesJSONOmitsUnusedKind(t *testing.T) {
	clips := 42
	data, err := json.Marshal(FastenerQuantities{Clips: &clips, Intersections: 42})
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["screws"]; ok {
		t.Errorf("expected screws omitted, got %s", data)
	}
	if raw["clips"] != float64(42) {
		t.Errorf("expected clips 42, got %v", raw["clips"])
	}
}

func TestQuantitiesHasWarning(t *testing.T) {
	q := Quantities{Warnings: []Warning{{Code: WarnEmptyDeck, Message: "empty"}}}

	if !q.HasWarning(WarnEmptyDeck) {
		t.Error("expected empty deck warning")
	}
	if q.HasWarning(WarnInvalidGeometry) {
		t.Error("did not expect invalid geometry warning")
	}
}
