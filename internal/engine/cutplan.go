package engine

import (
	"fmt"

	"github.com/piwi3910/DeckCalc/internal/model"
)

// Requirement is one length the cut planner has to supply.
type Requirement struct {
	RowID    string `json:"row_id"`
	LengthMm int    `json:"length_mm"`
}

// CutOptions tunes offcut handling.
type CutOptions struct {
	MinReusableOffcutMm int // Remainders shorter than this are waste; <= 0 keeps every remainder
	KerfMm              int // Material lost per cut when a piece is not used up exactly
}

// cutState is the accumulator folded over the requirements. Every step
// returns a new state and leaves the visible pool and rows of the old one
// unchanged. The pool is copied whenever an entry is removed. Rows are only
// appended, so successive states share one backing array and a state must
// not be applied twice.
type cutState struct {
	pool   []model.Remnant
	rows   []model.CutRow
	opened int
	waste  int
}

// PlanCuts assigns every requirement, in order, to a stock board or a
// reusable offcut. The smallest remnant that still fits is taken first
// (earliest on ties); otherwise a new stock board is opened. The result is
// fully determined by the input order.
func PlanCuts(reqs []Requirement, stockLengthMm int, opts CutOptions) (model.CutPlan, error) {
	if stockLengthMm <= 0 {
		return model.CutPlan{}, fmt.Errorf("%w: stock length must be positive, got %d mm", ErrInvalidInput, stockLengthMm)
	}
	total := 0
	for _, r := range reqs {
		if r.LengthMm <= 0 {
			return model.CutPlan{}, fmt.Errorf("%w: row %s has non-positive length %d mm", ErrInvalidInput, r.RowID, r.LengthMm)
		}
		if r.LengthMm > stockLengthMm {
			return model.CutPlan{}, &RowTooLongError{RowID: r.RowID, LengthMm: r.LengthMm, StockLengthMm: stockLengthMm}
		}
		total += r.LengthMm
	}

	state := cutState{rows: make([]model.CutRow, 0, len(reqs))}
	for _, r := range reqs {
		state = state.apply(r, stockLengthMm, opts)
	}

	leftover := 0
	for _, rem := range state.pool {
		leftover += rem.LengthMm
	}
	leftovers := state.pool
	if leftovers == nil {
		leftovers = []model.Remnant{}
	}

	return model.CutPlan{
		Rows:            state.rows,
		StockLengthMm:   stockLengthMm,
		StockPieces:     state.opened,
		TotalRequiredMm: total,
		WasteMm:         state.waste,
		LeftoverMm:      leftover,
		Leftovers:       leftovers,
		WasteM:          round(float64(state.waste)/1000, 2),
		LeftoverM:       round(float64(leftover)/1000, 2),
	}, nil
}

// apply cuts one requirement and returns the next state.
func (s cutState) apply(r Requirement, stockLengthMm int, opts CutOptions) cutState {
	next := s

	idx := bestRemnant(s.pool, r.LengthMm)
	var row model.CutRow
	var available int
	var stockID string
	if idx >= 0 {
		rem := s.pool[idx]
		available = rem.LengthMm
		stockID = rem.StockID
		row = model.CutRow{
			RowID:            r.RowID,
			RequiredLengthMm: r.LengthMm,
			SourceKind:       model.SourceOffcut,
			SourceID:         rem.SourceRowID,
			StockID:          stockID,
		}
		pool := make([]model.Remnant, 0, len(s.pool))
		pool = append(pool, s.pool[:idx]...)
		next.pool = append(pool, s.pool[idx+1:]...)
	} else {
		next.opened = s.opened + 1
		available = stockLengthMm
		stockID = fmt.Sprintf("S%d", next.opened)
		row = model.CutRow{
			RowID:            r.RowID,
			RequiredLengthMm: r.LengthMm,
			SourceKind:       model.SourceStock,
			SourceID:         stockID,
			StockID:          stockID,
		}
	}

	rest := available - r.LengthMm
	if rest > 0 && opts.KerfMm > 0 {
		kerf := min(opts.KerfMm, rest)
		next.waste += kerf
		rest -= kerf
	}
	row.RemainderMm = rest

	if rest > 0 {
		if rest >= opts.MinReusableOffcutMm {
			next.pool = append(next.pool[:len(next.pool):len(next.pool)], model.Remnant{
				LengthMm:    rest,
				SourceRowID: r.RowID,
				StockID:     stockID,
			})
		} else {
			next.waste += rest
		}
	}

	next.rows = append(s.rows, row)
	return next
}

// bestRemnant returns the index of the shortest remnant that can supply
// length, or -1.
func bestRemnant(pool []model.Remnant, length int) int {
	best := -1
	for i, rem := range pool {
		if rem.LengthMm < length {
			continue
		}
		if best < 0 || rem.LengthMm < pool[best].LengthMm {
			best = i
		}
	}
	return best
}
