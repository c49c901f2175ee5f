package model

// WarningCode identifies a recoverable condition attached to a result.
type WarningCode string

const (
	WarnInvalidGeometry      WarningCode = "invalid_geometry"
	WarnBoardWidthNotOffered WarningCode = "board_width_not_offered"
	WarnEmptyDeck            WarningCode = "empty_deck"
)

// Warning flags a geometry-level anomaly. The accompanying quantities are
// an estimate (possibly zero) rather than a failure.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// BoardQuantities holds the decking board totals.
type BoardQuantities struct {
	Qty      int     `json:"qty"`
	AreaM2   float64 `json:"area_m2"`   // Board area purchased (qty x width x stock length)
	LossRate float64 `json:"loss_rate"` // Consumer formula or effective pro loss
	RowCount int     `json:"row_count"`
}

// SubstructureQuantities holds framing lengths in meters.
type SubstructureQuantities struct {
	PrimaryLenM   float64 `json:"primary_len_m"`
	SecondaryLenM float64 `json:"secondary_len_m"`
}

// CountQuantity is a plain piece count.
type CountQuantity struct {
	Qty int `json:"qty"`
}

// FastenerQuantities holds either a clip or a screw count, never both.
type FastenerQuantities struct {
	Clips         *int `json:"clips,omitempty"`
	Screws        *int `json:"screws,omitempty"`
	Intersections int  `json:"intersections"`
}

// StairItem is the per-flight record of a stair calculation.
type StairItem struct {
	ID         string  `json:"id"`
	StepCount  int     `json:"step_count"`
	UnitRiseMm float64 `json:"unit_rise_mm"`
	UnitRunMm  float64 `json:"unit_run_mm"`
	WidthMm    float64 `json:"width_mm"`
}

// StairResult aggregates every usable flight.
type StairResult struct {
	Enabled     bool        `json:"enabled"`
	Items       []StairItem `json:"items"`
	TreadAreaM2 float64     `json:"tread_area_m2"`
	RiserAreaM2 float64     `json:"riser_area_m2"`
	TotalAreaM2 float64     `json:"total_area_m2"`
}

// SourceKind tells where a cut came from.
type SourceKind string

const (
	SourceStock  SourceKind = "stock"
	SourceOffcut SourceKind = "offcut"
)

// CutRow is one assignment of a required length to a piece of material.
type CutRow struct {
	RowID            string     `json:"row_id"`
	RequiredLengthMm int        `json:"required_length_mm"`
	SourceKind       SourceKind `json:"source_kind"`
	SourceID         string     `json:"source_id"` // Stock piece id, or the row the offcut was left by
	StockID          string     `json:"stock_id"`  // Stock piece the material originally came from
	RemainderMm      int        `json:"remainder_mm"`
}

// Remnant is a reusable piece of board left over after a cut.
type Remnant struct {
	LengthMm    int    `json:"length_mm"`
	SourceRowID string `json:"source_row_id"`
	StockID     string `json:"stock_id"`
}

// CutPlan is the cutting-stock assignment for a deck.
type CutPlan struct {
	Rows            []CutRow  `json:"rows"`
	StockLengthMm   int       `json:"stock_length_mm"`
	StockPieces     int       `json:"stock_pieces"`
	TotalRequiredMm int       `json:"total_required_mm"`
	WasteMm         int       `json:"waste_mm"`
	LeftoverMm      int       `json:"leftover_mm"`
	Leftovers       []Remnant `json:"leftovers"`
	WasteM          float64   `json:"waste_m"`
	LeftoverM       float64   `json:"leftover_m"`
}

// DispensedMm returns the total stock length opened.
func (cp CutPlan) DispensedMm() int {
	return cp.StockPieces * cp.StockLengthMm
}

// Efficiency returns the share of dispensed stock that ended up on the deck, in percent.
func (cp CutPlan) Efficiency() float64 {
	d := cp.DispensedMm()
	if d == 0 {
		return 0
	}
	return float64(cp.TotalRequiredMm) / float64(d) * 100.0
}

// Quantities is the full estimate for one plan. It is built once per call
// and owned by the caller.
type Quantities struct {
	Mode         Mode                   `json:"mode"`
	DeckAreaM2   float64                `json:"deck_area_m2"`
	Boards       BoardQuantities        `json:"boards"`
	Substructure SubstructureQuantities `json:"substructure"`
	Anchors      CountQuantity          `json:"anchors"`
	Footings     CountQuantity          `json:"footings"`
	Fasteners    FastenerQuantities     `json:"fasteners"`
	Stairs       *StairResult           `json:"stairs,omitempty"`
	CutPlan      *CutPlan               `json:"cut_plan,omitempty"`
	Warnings     []Warning              `json:"warnings,omitempty"`
}

// HasWarning reports whether a warning with the given code is attached.
func (q Quantities) HasWarning(code WarningCode) bool {
	for _, w := range q.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
