package engine

import (
	"fmt"
	"math"

	"github.com/piwi3910/DeckCalc/internal/geometry"
	"github.com/piwi3910/DeckCalc/internal/model"
)

// RequiredLength is one board segment a row needs. Coordinates are in the
// rotated frame where rows run along x.
type RequiredLength struct {
	RowID    string  `json:"row_id"`
	Row      int     `json:"row"`     // 1-based index of the non-empty row
	Segment  int     `json:"segment"` // 1-based index within the row, left to right
	LengthMm int     `json:"length_mm"`
	X0       float64 `json:"x0"`
	X1       float64 `json:"x1"`
	BandY0   float64 `json:"band_y0"` // Lower edge of the board band
	BandY1   float64 `json:"band_y1"` // Upper edge of the board band
}

// Decomposition is the ordered result of sweeping a deck into board rows.
type Decomposition struct {
	Lengths      []RequiredLength `json:"lengths"`
	RowCount     int              `json:"row_count"`
	PitchMm      float64          `json:"pitch_mm"`
	DirectionDeg float64          `json:"direction_deg"`
}

// TotalMm returns the sum of all required lengths.
func (d Decomposition) TotalMm() int {
	total := 0
	for _, l := range d.Lengths {
		total += l.LengthMm
	}
	return total
}

// Requirements converts the decomposition into cut planner input,
// preserving sweep order.
func (d Decomposition) Requirements() []Requirement {
	reqs := make([]Requirement, len(d.Lengths))
	for i, l := range d.Lengths {
		reqs[i] = Requirement{RowID: l.RowID, LengthMm: l.LengthMm}
	}
	return reqs
}

// Footprint returns the board segment as a rectangle in plan coordinates.
func (d Decomposition) Footprint(l RequiredLength) model.Outline {
	rect := model.Outline{
		{X: l.X0, Y: l.BandY0},
		{X: l.X1, Y: l.BandY0},
		{X: l.X1, Y: l.BandY1},
		{X: l.X0, Y: l.BandY1},
	}
	return geometry.RotateOutline(rect, d.DirectionDeg)
}

// DecomposeRows sweeps the deck with board rows laid along directionDeg and
// returns every covered interval as a required length. Rows step by
// boardWidth+gap from the bottom of the rotated extent; each row is sampled
// at the middle of its board band. A row split by a cutout yields one entry
// per contiguous interval. Boards narrower than MinDimensionMm, or decks
// needing more than MaxSweepSteps rows, decompose to nothing.
func DecomposeRows(p model.Polygon, boardWidthMm, gapMm, directionDeg float64) Decomposition {
	d := Decomposition{DirectionDeg: directionDeg}
	if len(p.Outer) < 3 || !(boardWidthMm >= MinDimensionMm) {
		return d
	}
	if gapMm < 0 {
		gapMm = 0
	}
	pitch := boardWidthMm + gapMm
	d.PitchMm = pitch

	rotated := geometry.Rotate(p, -directionDeg)
	min, max := geometry.BoundingBox(rotated)
	if (max.Y-min.Y)/pitch > MaxSweepSteps {
		return d
	}

	for k := 0; ; k++ {
		start := min.Y + float64(k)*pitch
		if start >= max.Y-geometry.Epsilon {
			break
		}
		top := math.Min(start+boardWidthMm, max.Y)
		y := (start + top) / 2

		segment := 0
		for _, iv := range geometry.ScanLine(rotated, y) {
			length := int(math.Round(iv.Length()))
			if length <= 0 {
				continue
			}
			if segment == 0 {
				d.RowCount++
			}
			segment++
			d.Lengths = append(d.Lengths, RequiredLength{
				RowID:    fmt.Sprintf("R%d-%d", d.RowCount, segment),
				Row:      d.RowCount,
				Segment:  segment,
				LengthMm: length,
				X0:       iv.X0,
				X1:       iv.X1,
				BandY0:   start,
				BandY1:   start + boardWidthMm,
			})
		}
	}
	return d
}
