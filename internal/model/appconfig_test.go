package model

import "testing"

func TestDefaultAppConfigMatchesDefaults(t *testing.T) {
	cfg := DefaultAppConfig()

	if cfg.DefaultRuleset != DefaultRuleset() {
		t.Errorf("ruleset mismatch: config=%+v defaults=%+v", cfg.DefaultRuleset, DefaultRuleset())
	}
	if cfg.DefaultProduct.Name != DefaultProduct().Name {
		t.Errorf("product mismatch: config=%s defaults=%s", cfg.DefaultProduct.Name, DefaultProduct().Name)
	}
	if cfg.DefaultBoardWidthMm != DefaultProduct().WidthOptionsMm[0] {
		t.Errorf("expected default width from the first product option, got %f", cfg.DefaultBoardWidthMm)
	}
	if cfg.DefaultFastening != FasteningClip {
		t.Errorf("expected clip fastening, got %s", cfg.DefaultFastening)
	}
	if cfg.RecentPlans == nil {
		t.Error("RecentPlans should not be nil")
	}
}

func TestApplyToPlan(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultBoardWidthMm = 145

	p := Plan{}
	cfg.ApplyToPlan(&p)

	if p.Unit != UnitMM {
		t.Errorf("expected unit mm, got %q", p.Unit)
	}
	if p.BoardWidthMm != 145 {
		t.Errorf("expected board width 145, got %f", p.BoardWidthMm)
	}

	p = Plan{Unit: UnitMM, BoardWidthMm: 90}
	cfg.ApplyToPlan(&p)
	if p.BoardWidthMm != 90 {
		t.Errorf("expected explicit width kept, got %f", p.BoardWidthMm)
	}
}

func TestAddRecentPlan(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentPlan("a.json")
	cfg.AddRecentPlan("b.json")
	cfg.AddRecentPlan("a.json")

	if len(cfg.RecentPlans) != 2 {
		t.Fatalf("expected 2 recent plans, got %v", cfg.RecentPlans)
	}
	if cfg.RecentPlans[0] != "a.json" || cfg.RecentPlans[1] != "b.json" {
		t.Errorf("expected [a.json b.json], got %v", cfg.RecentPlans)
	}

	for i := 0; i < 20; i++ {
		cfg.AddRecentPlan(string(rune('c'+i)) + ".json")
	}
	if len(cfg.RecentPlans) != maxRecentPlans {
		t.Errorf("expected list capped at %d, got %d", maxRecentPlans, len(cfg.RecentPlans))
	}
}

func TestResolveFillsDefaults(t *testing.T) {
	cfg := DefaultAppConfig()

	plan, product, rs, fastening := cfg.Resolve(EstimateRequest{})

	if plan.BoardWidthMm != cfg.DefaultBoardWidthMm {
		t.Errorf("expected default board width, got %f", plan.BoardWidthMm)
	}
	if product.ID != cfg.DefaultProduct.ID {
		t.Errorf("expected default product, got %s", product.ID)
	}
	if rs.Mode != ModeConsumer {
		t.Errorf("expected default consumer mode, got %s", rs.Mode)
	}
	if fastening != FasteningClip {
		t.Errorf("expected default clip fastening, got %s", fastening)
	}
}

func TestResolveKeepsRequestValues(t *testing.T) {
	cfg := DefaultAppConfig()
	custom := NewProduct("Hardwood 90", 4200, []float64{90}, 21, 6, FasteningScrew)
	rs := DefaultRuleset()
	rs.Mode = ModePro

	_, product, gotRS, fastening := cfg.Resolve(EstimateRequest{
		Product:   &custom,
		Ruleset:   &rs,
		Fastening: FasteningScrew,
	})

	if product.Name != "Hardwood 90" {
		t.Errorf("expected request product, got %s", product.Name)
	}
	if gotRS.Mode != ModePro {
		t.Errorf("expected request ruleset, got mode %s", gotRS.Mode)
	}
	if fastening != FasteningScrew {
		t.Errorf("expected screw fastening, got %s", fastening)
	}
}
