package engine

import (
	"math"

	"github.com/piwi3910/DeckCalc/internal/model"
)

// CalculateStairs accumulates tread and riser areas over every usable
// flight. It returns nil when the plan has no active stairs. Flights with
// no steps or no width are skipped.
func CalculateStairs(plan model.Plan) *model.StairResult {
	if !plan.StairsEnabled() {
		return nil
	}

	result := &model.StairResult{
		Enabled: true,
		Items:   []model.StairItem{},
	}
	var tread, riser float64
	for _, s := range plan.Stairs.Items {
		if !s.Usable() {
			continue
		}
		steps := float64(s.StepCount)
		tread += steps * s.WidthMm * s.StepDepthMm / 1_000_000
		riser += steps * s.WidthMm * s.StepHeightMm / 1_000_000
		result.Items = append(result.Items, model.StairItem{
			ID:         s.ID,
			StepCount:  s.StepCount,
			UnitRiseMm: round(s.StepHeightMm, 1),
			UnitRunMm:  s.StepDepthMm,
			WidthMm:    s.WidthMm,
		})
	}

	// Each field is rounded on its own; the total is the sum of the rounded parts.
	result.TreadAreaM2 = round(tread, 2)
	result.RiserAreaM2 = round(riser, 2)
	result.TotalAreaM2 = round(result.TreadAreaM2+result.RiserAreaM2, 2)
	return result
}

// round rounds v to the given number of decimal places, half away from zero.
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
