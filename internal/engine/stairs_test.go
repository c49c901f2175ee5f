package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/DeckCalc/internal/model"
)

func planWithStairs(enabled bool, items ...model.StairConfig) model.Plan {
	p := model.NewPlan(rectOutline(0, 0, 2000, 1000), 140, 0)
	p.Stairs = &model.StairSettings{Enabled: enabled, Items: items}
	return p
}

func TestCalculateStairs_SingleFlight(t *testing.T) {
	s := model.NewStairConfig(1000, 3, 280, 180)

	res := CalculateStairs(planWithStairs(true, s))

	require.NotNil(t, res)
	assert.True(t, res.Enabled)
	assert.Equal(t, 0.84, res.TreadAreaM2)
	assert.Equal(t, 0.54, res.RiserAreaM2)
	assert.Equal(t, 1.38, res.TotalAreaM2)
	require.Len(t, res.Items, 1)
	assert.Equal(t, model.StairItem{
		ID:         s.ID,
		StepCount:  3,
		UnitRiseMm: 180,
		UnitRunMm:  280,
		WidthMm:    1000,
	}, res.Items[0])
}

func TestCalculateStairs_Disabled(t *testing.T) {
	assert.Nil(t, CalculateStairs(planWithStairs(false, model.NewStairConfig(1000, 3, 280, 180))))

	p := model.NewPlan(rectOutline(0, 0, 2000, 1000), 140, 0)
	assert.Nil(t, CalculateStairs(p))
}

func TestCalculateStairs_SkipsDegenerateFlights(t *testing.T) {
	res := CalculateStairs(planWithStairs(true,
		model.NewStairConfig(0, 3, 280, 180),
		model.NewStairConfig(1000, 0, 280, 180),
		model.NewStairConfig(1200, 4, 300, 175.25),
	))

	require.NotNil(t, res)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 175.3, res.Items[0].UnitRiseMm)
	assert.Equal(t, 1.44, res.TreadAreaM2)
	assert.Equal(t, 0.84, res.RiserAreaM2)
	assert.Equal(t, 2.28, res.TotalAreaM2)
}

func TestCalculateStairs_TotalIsSumOfRoundedParts(t *testing.T) {
	// 0.125 + 0.125: the raw sum rounds to 0.25, the rounded parts add to 0.26.
	res := CalculateStairs(planWithStairs(true,
		model.NewStairConfig(625, 1, 200, 200),
	))

	require.NotNil(t, res)
	assert.Equal(t, 0.13, res.TreadAreaM2)
	assert.Equal(t, 0.13, res.RiserAreaM2)
	assert.Equal(t, 0.26, res.TotalAreaM2)
}

func TestCalculateStairs_EnabledWithoutItems(t *testing.T) {
	res := CalculateStairs(planWithStairs(true))

	require.NotNil(t, res)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, 0.0, res.TotalAreaM2)
}
