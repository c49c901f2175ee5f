package importer

import (
	"fmt"
	"math"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/DeckCalc/internal/geometry"
	"github.com/piwi3910/DeckCalc/internal/model"
)

// DXFOptions controls how drawing units map onto plan millimeters.
type DXFOptions struct {
	Scale     float64 // Millimeters per drawing unit; 0 means 1
	Normalize bool    // Move the outline so its bounding box starts at the origin
}

// Arc and circle tessellation.
const (
	circleSegments = 64
	arcSegments    = 32
	chainTolerance = 0.01
)

// segment is a line between two points, used for chaining loose LINE and
// ARC entities into closed rings.
type segment struct {
	start model.Point2D
	end   model.Point2D
}

// ImportPlanDXF reads a deck outline from a DXF drawing. Every closed shape
// (LWPOLYLINE, CIRCLE, or chain of connected LINEs/ARCs) becomes a ring; the
// largest ring is the deck boundary and rings inside it are cutouts.
func ImportPlanDXF(path string, opts DXFOptions) PlanImportResult {
	result := PlanImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var rings []model.Outline
	var segments []segment
	skipped := 0
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			ring := lwPolylineToOutline(e)
			if len(ring) >= 3 {
				rings = append(rings, ring)
			} else {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
			}
		case *entity.Circle:
			rings = append(rings, circleToOutline(e.Center[0], e.Center[1], e.Radius, circleSegments))
		case *entity.Arc:
			pts := arcToPoints(e, arcSegments)
			segments = append(segments, pointsToSegments(pts)...)
		case *entity.Line:
			segments = append(segments, segment{
				start: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point2D{X: e.End[0], Y: e.End[1]},
			})
		default:
			skipped++
		}
	}
	if skipped > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Ignored %d unsupported entities", skipped))
	}

	chained, open := chainSegments(segments, chainTolerance)
	rings = append(rings, chained...)
	if open > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Ignored %d open line chains", open))
	}

	var usable []model.Outline
	for _, ring := range rings {
		ring = geometry.Clean(ring)
		if math.Abs(geometry.SignedArea(ring)) < chainTolerance {
			result.Warnings = append(result.Warnings, "Skipped degenerate shape with no area")
			continue
		}
		usable = append(usable, ring)
	}
	if len(usable) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	poly, warnings := AssemblePolygon(usable)
	result.Warnings = append(result.Warnings, warnings...)
	result.Polygon = transformPolygon(poly, opts)
	return result
}

// transformPolygon scales drawing units to millimeters and optionally moves
// the deck to the origin.
func transformPolygon(p model.Polygon, opts DXFOptions) model.Polygon {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	var dx, dy float64
	if opts.Normalize {
		min, _ := p.Outer.BoundingBox()
		dx, dy = -min.X, -min.Y
	}
	apply := func(r model.Outline) model.Outline {
		out := r.Translate(dx, dy)
		for i, pt := range out {
			out[i] = model.Point2D{X: pt.X * scale, Y: pt.Y * scale}
		}
		return out
	}
	out := model.Polygon{Outer: apply(p.Outer)}
	for _, h := range p.Holes {
		out.Holes = append(out.Holes, apply(h))
	}
	return out
}

// lwPolylineToOutline converts a LWPOLYLINE to a ring. Vertices carrying a
// bulge are expanded into arc points up to the next vertex.
func lwPolylineToOutline(lw *entity.LwPolyline) model.Outline {
	var ring model.Outline
	n := len(lw.Vertices)
	for i := 0; i < n; i++ {
		current := model.Point2D{X: lw.Vertices[i][0], Y: lw.Vertices[i][1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) <= 1e-9 {
			ring = append(ring, current)
			continue
		}
		next := model.Point2D{X: lw.Vertices[(i+1)%n][0], Y: lw.Vertices[(i+1)%n][1]}
		pts := bulgeArcPoints(current, next, bulge, arcSegments)
		ring = append(ring, pts[:len(pts)-1]...)
	}
	return ring
}

// bulgeArcPoints samples the arc between p1 and p2 described by a DXF bulge,
// the tangent of a quarter of the included angle. Positive bulges turn
// counter-clockwise.
func bulgeArcPoints(p1, p2 model.Point2D, bulge float64, numSegments int) model.Outline {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return model.Outline{p1, p2}
	}

	sweep := 4 * math.Atan(bulge)
	radius := chord / (2 * math.Abs(math.Sin(sweep/2)))

	// Center sits on the chord bisector, on the left for a CCW sweep.
	mx, my := (p1.X+p2.X)/2, (p1.Y+p2.Y)/2
	offset := radius * math.Cos(sweep/2)
	if bulge < 0 {
		offset = -offset
	}
	cx := mx - dy/chord*offset
	cy := my + dx/chord*offset

	start := math.Atan2(p1.Y-cy, p1.X-cx)
	pts := make(model.Outline, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		a := start + sweep*float64(i)/float64(numSegments)
		pts[i] = model.Point2D{X: cx + radius*math.Cos(a), Y: cy + radius*math.Sin(a)}
	}
	pts[0], pts[numSegments] = p1, p2
	return pts
}

// circleToOutline approximates a circle as a regular polygon.
func circleToOutline(cx, cy, r float64, numSegments int) model.Outline {
	ring := make(model.Outline, numSegments)
	for i := range ring {
		a := 2 * math.Pi * float64(i) / float64(numSegments)
		ring[i] = model.Point2D{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return ring
}

// arcToPoints samples an ARC entity counter-clockwise from its start to its
// end angle.
func arcToPoints(a *entity.Arc, numSegments int) []model.Point2D {
	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}
	return sampleArc(a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius, startRad, endRad, numSegments)
}

func sampleArc(cx, cy, r, startRad, endRad float64, numSegments int) []model.Point2D {
	pts := make([]model.Point2D, numSegments+1)
	for i := range pts {
		a := startRad + (endRad-startRad)*float64(i)/float64(numSegments)
		pts[i] = model.Point2D{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return pts
}

func pointsToSegments(pts []model.Point2D) []segment {
	if len(pts) < 2 {
		return nil
	}
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i+1 < len(pts); i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments joins segments whose endpoints lie within tolerance into
// closed rings. It also returns the number of chains that never closed.
func chainSegments(segs []segment, tolerance float64) ([]model.Outline, int) {
	used := make([]bool, len(segs))
	var rings []model.Outline
	open := 0

	for startIdx := range segs {
		if used[startIdx] {
			continue
		}
		used[startIdx] = true
		chain := []model.Point2D{segs[startIdx].start, segs[startIdx].end}

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				switch {
				case pointsClose(tail, seg.start, tolerance):
					chain = append(chain, seg.end)
				case pointsClose(tail, seg.end, tolerance):
					chain = append(chain, seg.start)
				default:
					continue
				}
				used[i] = true
				extended = true
				break
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			rings = append(rings, model.Outline(chain[:len(chain)-1]))
		} else {
			open++
		}
	}
	return rings, open
}

func pointsClose(a, b model.Point2D, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}
