package model

import "github.com/google/uuid"

// Point2D represents a 2D coordinate in mm.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Outline represents a closed ring as a sequence of 2D points.
// The outline is implicitly closed: the last point connects back to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min = Point2D{X: o[0].X, Y: o[0].Y}
	max = Point2D{X: o[0].X, Y: o[0].Y}
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// Polygon is a deck boundary with optional cutouts. Holes are separate
// rings; nothing links a hole back to its outer ring.
type Polygon struct {
	Outer Outline   `json:"outer"`
	Holes []Outline `json:"holes,omitempty"`
}

// Rings returns the outer ring followed by every hole.
func (p Polygon) Rings() []Outline {
	rings := make([]Outline, 0, 1+len(p.Holes))
	rings = append(rings, p.Outer)
	return append(rings, p.Holes...)
}

// WithHoles returns a copy of p with extra holes appended.
func (p Polygon) WithHoles(holes ...Outline) Polygon {
	out := Polygon{Outer: p.Outer}
	out.Holes = make([]Outline, 0, len(p.Holes)+len(holes))
	out.Holes = append(out.Holes, p.Holes...)
	for _, h := range holes {
		if len(h) >= 3 {
			out.Holes = append(out.Holes, h)
		}
	}
	return out
}

// StairConfig describes one flight of stairs.
type StairConfig struct {
	ID           string  `json:"id"`
	WidthMm      float64 `json:"width_mm"`
	StepCount    int     `json:"step_count"`
	StepDepthMm  float64 `json:"step_depth_mm"`
	StepHeightMm float64 `json:"step_height_mm"`
}

func NewStairConfig(width float64, steps int, depth, height float64) StairConfig {
	return StairConfig{
		ID:           uuid.New().String()[:8],
		WidthMm:      width,
		StepCount:    steps,
		StepDepthMm:  depth,
		StepHeightMm: height,
	}
}

// Usable reports whether the flight contributes any area.
// Half-entered configurations are expected while editing and are skipped.
func (s StairConfig) Usable() bool {
	return s.StepCount > 0 && s.WidthMm > 0
}

// StairSettings groups the stair flights of a plan.
type StairSettings struct {
	Enabled   bool          `json:"enabled"`
	Footprint Outline       `json:"footprint,omitempty"` // Deck area occupied by the stairs; subtracted as a hole
	Items     []StairConfig `json:"items,omitempty"`
}

// UnitMM is the only supported plan unit.
const UnitMM = "mm"

// Plan is the geometry of one estimation request.
type Plan struct {
	Unit                string         `json:"unit"`
	Polygon             Polygon        `json:"polygon"`
	BoardWidthMm        float64        `json:"board_width_mm"`
	DeckingDirectionDeg float64        `json:"decking_direction_deg"`
	Stairs              *StairSettings `json:"stairs,omitempty"`
}

func NewPlan(outer Outline, boardWidth, directionDeg float64) Plan {
	return Plan{
		Unit:                UnitMM,
		Polygon:             Polygon{Outer: outer},
		BoardWidthMm:        boardWidth,
		DeckingDirectionDeg: directionDeg,
	}
}

// StairsEnabled reports whether the plan carries active stairs.
func (p Plan) StairsEnabled() bool {
	return p.Stairs != nil && p.Stairs.Enabled
}

// DeckPolygon returns the walkable polygon: the plan polygon with the
// stair footprint subtracted when stairs are active.
func (p Plan) DeckPolygon() Polygon {
	if p.StairsEnabled() && len(p.Stairs.Footprint) >= 3 {
		return p.Polygon.WithHoles(p.Stairs.Footprint)
	}
	return p.Polygon
}

// FasteningMode selects how boards are fixed to the substructure.
type FasteningMode string

const (
	FasteningClip  FasteningMode = "clip"
	FasteningScrew FasteningMode = "screw"
)

// Product is a decking board catalog entry supplied by the caller.
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	StockLengthMm  float64         `json:"stock_length_mm"`
	WidthOptionsMm []float64       `json:"width_options_mm"`
	ThicknessMm    float64         `json:"thickness_mm"`
	GapMm          float64         `json:"gap_mm"`
	FasteningModes []FasteningMode `json:"fastening_modes"`
}

func NewProduct(name string, stockLength float64, widths []float64, thickness, gap float64, modes ...FasteningMode) Product {
	return Product{
		ID:             uuid.New().String()[:8],
		Name:           name,
		StockLengthMm:  stockLength,
		WidthOptionsMm: widths,
		ThicknessMm:    thickness,
		GapMm:          gap,
		FasteningModes: modes,
	}
}

// SupportsFastening reports whether mode is one of the product's fastening modes.
func (p Product) SupportsFastening(mode FasteningMode) bool {
	for _, m := range p.FasteningModes {
		if m == mode {
			return true
		}
	}
	return false
}

// OffersWidth reports whether w matches one of the width options.
// A product without options accepts any width.
func (p Product) OffersWidth(w float64) bool {
	if len(p.WidthOptionsMm) == 0 {
		return true
	}
	for _, opt := range p.WidthOptionsMm {
		if opt == w {
			return true
		}
	}
	return false
}

// Mode selects the computation path.
type Mode string

const (
	ModeConsumer Mode = "consumer" // Area times loss rate (fast)
	ModePro      Mode = "pro"      // Exact row decomposition
)

// ConsumerLoss parameterizes the consumer loss-rate formula.
type ConsumerLoss struct {
	Base         float64 `json:"base"`
	VertexFactor float64 `json:"vertex_factor"`
	CutoutFactor float64 `json:"cutout_factor"`
	Cap          float64 `json:"cap"`
}

// Ruleset is the active computation policy.
type Ruleset struct {
	Mode Mode `json:"mode"`

	// Spacing (mm)
	GapMm              float64 `json:"gap_mm"` // Board gap override, used when ShowAdvancedOverrides is set
	SecondarySpacingMm float64 `json:"secondary_spacing_mm"`
	PrimarySpacingMm   float64 `json:"primary_spacing_mm"`
	AnchorSpacingMm    float64 `json:"anchor_spacing_mm"`
	FootingSpacingMm   float64 `json:"footing_spacing_mm"`

	ConsumerLoss         ConsumerLoss `json:"consumer_loss"`
	ScrewPerIntersection int          `json:"screw_per_intersection"`

	ShowAdvancedOverrides bool `json:"show_advanced_overrides"`
	EnableCutPlan         bool `json:"enable_cut_plan"`

	// Cut planning
	MinReusableOffcutMm int `json:"min_reusable_offcut_mm"` // Remainders shorter than this are waste
	KerfMm              int `json:"kerf_mm"`                // Saw blade width lost per cut
}

func DefaultRuleset() Ruleset {
	return Ruleset{
		Mode:               ModeConsumer,
		GapMm:              5,
		SecondarySpacingMm: 400,
		PrimarySpacingMm:   1200,
		AnchorSpacingMm:    600,
		FootingSpacingMm:   1200,
		ConsumerLoss: ConsumerLoss{
			Base:         0.05,
			VertexFactor: 0.005,
			CutoutFactor: 0.02,
			Cap:          0.15,
		},
		ScrewPerIntersection:  2,
		ShowAdvancedOverrides: false,
		EnableCutPlan:         false,
		MinReusableOffcutMm:   300,
		KerfMm:                0,
	}
}

// DefaultProduct returns a generic composite board used when no product is configured.
func DefaultProduct() Product {
	return Product{
		ID:             "default",
		Name:           "Composite 140",
		StockLengthMm:  3600,
		WidthOptionsMm: []float64{140, 145},
		ThicknessMm:    25,
		GapMm:          5,
		FasteningModes: []FasteningMode{FasteningClip, FasteningScrew},
	}
}
