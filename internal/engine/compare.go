package engine

import (
	"fmt"
	"math"

	"github.com/piwi3910/DeckCalc/internal/model"
)

// ComparisonScenario defines a named decking direction and ruleset to compare.
type ComparisonScenario struct {
	Name         string        `json:"name"`
	DirectionDeg float64       `json:"direction_deg"`
	Ruleset      model.Ruleset `json:"ruleset"`
}

// ComparisonResult holds the quantities and headline figures for a single
// scenario. Err is set when the scenario could not be computed.
type ComparisonResult struct {
	Scenario   ComparisonScenario `json:"scenario"`
	Quantities model.Quantities   `json:"quantities"`
	Boards     int                `json:"boards"`
	LossRate   float64            `json:"loss_rate"`
	WasteM     float64            `json:"waste_m"`
	Err        error              `json:"-"`
}

// CompareScenarios runs the calculator for each scenario and returns the
// results in scenario order. A failing scenario does not stop the others.
func CompareScenarios(scenarios []ComparisonScenario, plan model.Plan, product model.Product, fastening model.FasteningMode) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		p := plan
		p.DeckingDirectionDeg = scenario.DirectionDeg
		q, err := New(product, scenario.Ruleset).Quantities(p, fastening)

		res := ComparisonResult{Scenario: scenario, Err: err}
		if err == nil {
			res.Quantities = q
			res.Boards = q.Boards.Qty
			res.LossRate = q.Boards.LossRate
			if q.CutPlan != nil {
				res.WasteM = q.CutPlan.WasteM
			}
		}
		results = append(results, res)
	}

	return results
}

// BuildDefaultScenarios generates what-if alternatives around the current
// plan: the plan direction, the perpendicular direction, the other
// computation mode and any extra directions. Directions equal modulo 180°
// are only listed once.
func BuildDefaultScenarios(plan model.Plan, base model.Ruleset, extraDirs ...float64) []ComparisonScenario {
	dir := normalizeDirection(plan.DeckingDirectionDeg)
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", DirectionDeg: dir, Ruleset: base},
	}
	seen := map[float64]bool{dir: true}

	addDirection := func(d float64) {
		d = normalizeDirection(d)
		if seen[d] {
			return
		}
		seen[d] = true
		scenarios = append(scenarios, ComparisonScenario{
			Name:         fmt.Sprintf("Direction %.0f°", d),
			DirectionDeg: d,
			Ruleset:      base,
		})
	}
	addDirection(dir + 90)

	// Scenario: the other computation mode at the current direction
	alt := base
	if base.Mode == model.ModePro {
		alt.Mode = model.ModeConsumer
		scenarios = append(scenarios, ComparisonScenario{Name: "Consumer Estimate", DirectionDeg: dir, Ruleset: alt})
	} else {
		alt.Mode = model.ModePro
		alt.EnableCutPlan = true
		scenarios = append(scenarios, ComparisonScenario{Name: "Pro Cut Plan", DirectionDeg: dir, Ruleset: alt})
	}

	for _, d := range extraDirs {
		addDirection(d)
	}
	return scenarios
}

// normalizeDirection folds an angle into [0, 180): boards laid at 0° and
// 180° are the same layout.
func normalizeDirection(deg float64) float64 {
	d := math.Mod(deg, 180)
	if d < 0 {
		d += 180
	}
	d = round(d, 6)
	if d >= 180 {
		d -= 180
	}
	return d
}
