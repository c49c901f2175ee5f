package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/piwi3910/DeckCalc/internal/model"
)

// ErrInvalidInput marks configuration problems the caller must fix before
// an estimate can be produced. Geometry problems are reported as result
// warnings instead.
var ErrInvalidInput = errors.New("invalid input")

// FasteningModeError is returned when the requested fastening mode is not
// offered by the product.
type FasteningModeError struct {
	Mode  model.FasteningMode
	Valid []model.FasteningMode
}

func (e *FasteningModeError) Error() string {
	valid := make([]string, len(e.Valid))
	for i, m := range e.Valid {
		valid[i] = string(m)
	}
	return fmt.Sprintf("fastening mode %q not supported by product (valid: %s)", e.Mode, strings.Join(valid, ", "))
}

func (e *FasteningModeError) Unwrap() error { return ErrInvalidInput }

// RowTooLongError is returned by the cut planner when a required length
// cannot be spanned by one stock board.
type RowTooLongError struct {
	RowID         string
	LengthMm      int
	StockLengthMm int
}

func (e *RowTooLongError) Error() string {
	return fmt.Sprintf("row %s needs %d mm but stock boards are %d mm", e.RowID, e.LengthMm, e.StockLengthMm)
}

func (e *RowTooLongError) Unwrap() error { return ErrInvalidInput }
