package engine

import (
	"fmt"
	"math"

	"github.com/piwi3910/DeckCalc/internal/geometry"
	"github.com/piwi3910/DeckCalc/internal/model"
)

// ceilSlack absorbs floating point noise before rounding counts up.
const ceilSlack = 1e-9

// memberInset keeps edge members off the polygon boundary so the scan line
// does not run along an edge.
const memberInset = 1.0

// MinDimensionMm is the smallest board width or member spacing accepted.
const MinDimensionMm = 1.0

// MaxSweepSteps bounds the number of board rows or framing members a single
// deck may produce.
const MaxSweepSteps = 100_000

// Calculator estimates deck material for one product under one ruleset.
// It holds no state between calls and is safe for concurrent use.
type Calculator struct {
	Product model.Product
	Ruleset model.Ruleset
}

func New(product model.Product, ruleset model.Ruleset) *Calculator {
	return &Calculator{Product: product, Ruleset: ruleset}
}

// CalculateQuantities is the single-call form of Calculator.Quantities.
func CalculateQuantities(plan model.Plan, product model.Product, ruleset model.Ruleset, mode model.FasteningMode) (model.Quantities, error) {
	return New(product, ruleset).Quantities(plan, mode)
}

// Mode returns the ruleset mode, defaulting to consumer.
func (c *Calculator) Mode() model.Mode {
	if c.Ruleset.Mode == model.ModePro {
		return model.ModePro
	}
	return model.ModeConsumer
}

// GapMm returns the board gap: the ruleset override when advanced
// overrides are on, otherwise the product gap.
func (c *Calculator) GapMm() float64 {
	if c.Ruleset.ShowAdvancedOverrides && c.Ruleset.GapMm > 0 {
		return c.Ruleset.GapMm
	}
	return c.Product.GapMm
}

// BoardWidthMm returns the plan board width, falling back to the first
// width the product offers.
func (c *Calculator) BoardWidthMm(plan model.Plan) float64 {
	if plan.BoardWidthMm > 0 {
		return plan.BoardWidthMm
	}
	if len(c.Product.WidthOptionsMm) > 0 {
		return c.Product.WidthOptionsMm[0]
	}
	return 0
}

// Stairs returns the stair areas of the plan, or nil when stairs are off.
func (c *Calculator) Stairs(plan model.Plan) *model.StairResult {
	return CalculateStairs(plan)
}

// Rows decomposes the walkable deck of the plan into board rows.
func (c *Calculator) Rows(plan model.Plan) Decomposition {
	poly := geometry.CleanPolygon(plan.DeckPolygon())
	return DecomposeRows(poly, c.BoardWidthMm(plan), c.GapMm(), plan.DeckingDirectionDeg)
}

// CutPlan runs the cut planner over the plan's rows.
func (c *Calculator) CutPlan(plan model.Plan) (model.CutPlan, error) {
	return PlanCuts(c.Rows(plan).Requirements(), int(math.Round(c.Product.StockLengthMm)), c.cutOptions())
}

func (c *Calculator) cutOptions() CutOptions {
	return CutOptions{
		MinReusableOffcutMm: c.Ruleset.MinReusableOffcutMm,
		KerfMm:              c.Ruleset.KerfMm,
	}
}

// Quantities estimates boards, substructure, anchors, footings, fasteners
// and stairs for the plan. Configuration problems (fastening mode, stock
// length, board width, member spacings, oversized decks, over-long rows)
// are returned as errors wrapping ErrInvalidInput. Geometry problems produce zero quantities and a warning.
func (c *Calculator) Quantities(plan model.Plan, fastening model.FasteningMode) (model.Quantities, error) {
	if !c.Product.SupportsFastening(fastening) {
		return model.Quantities{}, &FasteningModeError{Mode: fastening, Valid: c.Product.FasteningModes}
	}
	if c.Product.StockLengthMm <= 0 {
		return model.Quantities{}, fmt.Errorf("%w: product %q has no stock length", ErrInvalidInput, c.Product.Name)
	}
	width := c.BoardWidthMm(plan)
	if !(width >= MinDimensionMm) {
		return model.Quantities{}, fmt.Errorf("%w: board width must be at least %.0f mm", ErrInvalidInput, MinDimensionMm)
	}
	if err := c.checkSpacings(); err != nil {
		return model.Quantities{}, err
	}

	q := model.Quantities{
		Mode:   c.Mode(),
		Stairs: CalculateStairs(plan),
	}
	if !c.Product.OffersWidth(width) {
		q.Warnings = append(q.Warnings, model.Warning{
			Code:    model.WarnBoardWidthNotOffered,
			Message: fmt.Sprintf("board width %.0f mm is not offered by %s", width, c.Product.Name),
		})
	}

	poly := geometry.CleanPolygon(plan.DeckPolygon())
	if reason := geometry.Validate(poly); reason != "" {
		q.Warnings = append(q.Warnings, model.Warning{Code: model.WarnInvalidGeometry, Message: reason})
		q.Fasteners = fastenerCounts(0, fastening, c.Ruleset.ScrewPerIntersection)
		return q, nil
	}

	deckMm2 := geometry.AreaMm2(poly)
	q.DeckAreaM2 = round(deckMm2/1_000_000, 2)
	if deckMm2 <= 0 {
		q.Warnings = append(q.Warnings, model.Warning{Code: model.WarnEmptyDeck, Message: "cutouts cover the whole deck"})
		q.Fasteners = fastenerCounts(0, fastening, c.Ruleset.ScrewPerIntersection)
		return q, nil
	}

	gap := c.GapMm()
	if err := c.checkExtent(poly, plan.DeckingDirectionDeg, width+math.Max(gap, 0)); err != nil {
		return model.Quantities{}, err
	}
	frame := c.frame(poly, plan.DeckingDirectionDeg)
	stockMm := c.Product.StockLengthMm
	boardM2 := width / 1000 * stockMm / 1000

	var intersections int
	switch q.Mode {
	case model.ModePro:
		rows := DecomposeRows(poly, width, gap, plan.DeckingDirectionDeg)
		q.Boards.RowCount = rows.RowCount
		intersections = frame.crossings(rows)

		// The board count always comes from the planner; the plan itself
		// is only reported when asked for.
		cp, err := PlanCuts(rows.Requirements(), int(math.Round(stockMm)), c.cutOptions())
		if err != nil {
			return model.Quantities{}, err
		}
		q.Boards.Qty = cp.StockPieces
		if c.Ruleset.EnableCutPlan {
			q.CutPlan = &cp
		}
		q.Boards.LossRate = EffectiveLossRate(float64(q.Boards.Qty)*boardM2, deckMm2/1_000_000)

	default:
		loss := ConsumerLossRate(c.Ruleset.ConsumerLoss, len(poly.Outer), len(poly.Holes))
		q.Boards.LossRate = loss
		q.Boards.Qty = ceilCount(deckMm2 / 1_000_000 * (1 + loss) / boardM2)
		q.Boards.RowCount = ceilCount((frame.maxY - frame.minY) / (width + gap))
		intersections = frame.estimatedCrossings(width + gap)
	}
	q.Boards.AreaM2 = round(float64(q.Boards.Qty)*boardM2, 2)
	q.Boards.LossRate = round(q.Boards.LossRate, 4)

	q.Substructure = model.SubstructureQuantities{
		PrimaryLenM:   round(frame.primaryMm()/1000, 2),
		SecondaryLenM: round(frame.secondaryMm()/1000, 2),
	}
	if c.Ruleset.AnchorSpacingMm > 0 {
		q.Anchors.Qty = ceilCount(frame.primaryMm() / c.Ruleset.AnchorSpacingMm)
	}
	if c.Ruleset.FootingSpacingMm > 0 {
		cell := c.Ruleset.FootingSpacingMm * c.Ruleset.FootingSpacingMm / 1_000_000
		q.Footings.Qty = ceilCount(deckMm2 / 1_000_000 / cell)
	}
	q.Fasteners = fastenerCounts(intersections, fastening, c.Ruleset.ScrewPerIntersection)
	return q, nil
}

// checkSpacings rejects member spacings that are set but too small to lay
// out. A zero spacing leaves that member type out.
func (c *Calculator) checkSpacings() error {
	spacings := []struct {
		name string
		mm   float64
	}{
		{"secondary spacing", c.Ruleset.SecondarySpacingMm},
		{"primary spacing", c.Ruleset.PrimarySpacingMm},
		{"anchor spacing", c.Ruleset.AnchorSpacingMm},
		{"footing spacing", c.Ruleset.FootingSpacingMm},
	}
	for _, s := range spacings {
		if s.mm != 0 && !(s.mm >= MinDimensionMm) {
			return fmt.Errorf("%w: %s must be at least %.0f mm, got %g", ErrInvalidInput, s.name, MinDimensionMm, s.mm)
		}
	}
	return nil
}

// checkExtent rejects decks whose rotated extent needs more than
// MaxSweepSteps rows or framing members.
func (c *Calculator) checkExtent(poly model.Polygon, directionDeg, pitch float64) error {
	min, max := geometry.BoundingBox(geometry.Rotate(poly, -directionDeg))
	steps := []struct {
		what          string
		span, spacing float64
	}{
		{"board rows", max.Y - min.Y, pitch},
		{"joists", max.X - min.X, c.Ruleset.SecondarySpacingMm},
		{"bearers", max.Y - min.Y, c.Ruleset.PrimarySpacingMm},
	}
	for _, s := range steps {
		if s.spacing > 0 && s.span/s.spacing > MaxSweepSteps {
			return fmt.Errorf("%w: deck needs more than %d %s", ErrInvalidInput, MaxSweepSteps, s.what)
		}
	}
	return nil
}

// ConsumerLossRate applies the consumer loss formula, clamped to [0, cap].
func ConsumerLossRate(l model.ConsumerLoss, vertexCount, cutoutCount int) float64 {
	rate := l.Base + l.VertexFactor*float64(vertexCount) + l.CutoutFactor*float64(cutoutCount)
	return math.Max(0, math.Min(l.Cap, rate))
}

// EffectiveLossRate compares purchased board area with deck area. It never
// reports a negative loss.
func EffectiveLossRate(consumedM2, deckM2 float64) float64 {
	if deckM2 <= 0 {
		return 0
	}
	return math.Max(0, (consumedM2-deckM2)/deckM2)
}

func fastenerCounts(intersections int, mode model.FasteningMode, screwsPer int) model.FastenerQuantities {
	f := model.FastenerQuantities{Intersections: intersections}
	switch mode {
	case model.FasteningScrew:
		n := intersections * screwsPer
		f.Screws = &n
	default:
		n := intersections
		f.Clips = &n
	}
	return f
}

func ceilCount(v float64) int {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Ceil(v - ceilSlack))
}

// member is one framing run clipped to the deck.
type member struct {
	pos      float64 // Position across the run, in the rotated frame
	lengthMm float64
}

// frame is the substructure laid out in the rotated frame where boards run
// along x: joists (secondary) are vertical, bearers (primary) horizontal.
type frame struct {
	minX, maxX, minY, maxY float64
	joists                 []member
	bearers                []member
}

func (c *Calculator) frame(poly model.Polygon, directionDeg float64) frame {
	rotated := geometry.Rotate(poly, -directionDeg)
	min, max := geometry.BoundingBox(rotated)
	f := frame{minX: min.X, maxX: max.X, minY: min.Y, maxY: max.Y}

	swapped := geometry.Swap(rotated)
	for _, x := range memberPositions(min.X, max.X, c.Ruleset.SecondarySpacingMm) {
		f.joists = append(f.joists, member{pos: x, lengthMm: covered(swapped, x)})
	}
	for _, y := range memberPositions(min.Y, max.Y, c.Ruleset.PrimarySpacingMm) {
		f.bearers = append(f.bearers, member{pos: y, lengthMm: covered(rotated, y)})
	}
	return f
}

func (f frame) primaryMm() float64 {
	var total float64
	for _, m := range f.bearers {
		total += m.lengthMm
	}
	return total
}

func (f frame) secondaryMm() float64 {
	var total float64
	for _, m := range f.joists {
		total += m.lengthMm
	}
	return total
}

// crossings counts every joist lying under every board segment.
func (f frame) crossings(d Decomposition) int {
	n := 0
	for _, seg := range d.Lengths {
		for _, j := range f.joists {
			if j.lengthMm > 0 && j.pos >= seg.X0 && j.pos <= seg.X1 {
				n++
			}
		}
	}
	return n
}

// estimatedCrossings approximates crossings without decomposing rows: each
// joist carries one fastening point per board pitch along its length.
func (f frame) estimatedCrossings(pitch float64) int {
	if pitch <= 0 {
		return 0
	}
	n := 0
	for _, j := range f.joists {
		n += ceilCount(j.lengthMm / pitch)
	}
	return n
}

// memberPositions spaces members from lo at the given spacing and closes
// with one at hi. Edge members are pulled in by memberInset. Layouts over
// MaxSweepSteps members yield nothing.
func memberPositions(lo, hi, spacing float64) []float64 {
	span := hi - lo
	if spacing <= 0 || span <= geometry.Epsilon || span/spacing > MaxSweepSteps {
		return nil
	}
	inset := math.Min(memberInset, span/2)
	n := ceilCount(span / spacing)
	positions := make([]float64, 0, n+1)
	for k := 0; k < n; k++ {
		positions = append(positions, lo+float64(k)*spacing)
	}
	positions = append(positions, hi)
	for i, p := range positions {
		positions[i] = math.Max(lo+inset, math.Min(hi-inset, p))
	}
	return positions
}

// covered returns the deck length on the horizontal line at y.
func covered(p model.Polygon, y float64) float64 {
	var total float64
	for _, iv := range geometry.ScanLine(p, y) {
		total += iv.Length()
	}
	return total
}
