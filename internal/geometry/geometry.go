// Package geometry provides the planar math behind deck estimation: ring
// areas, winding, containment, rotation and scan-line clipping of polygons
// with holes. All coordinates are millimeters; every function is pure.
package geometry

import (
	"math"
	"sort"

	"honnef.co/go/curve"

	"github.com/piwi3910/DeckCalc/internal/model"
)

// Epsilon merges coordinates closer than a micrometre.
const Epsilon = 1e-6

// mm2PerM2 converts square millimeters to square meters.
const mm2PerM2 = 1_000_000.0

// SignedArea returns the shoelace area of a ring. Positive means
// counter-clockwise in a y-up frame.
func SignedArea(ring model.Outline) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += ring[i].X * ring[j].Y
		area -= ring[j].X * ring[i].Y
	}
	return area / 2
}

// AreaMm2 returns the outer area minus every hole, in mm².
func AreaMm2(p model.Polygon) float64 {
	if len(p.Outer) < 3 {
		return 0
	}
	area := math.Abs(SignedArea(p.Outer))
	for _, h := range p.Holes {
		area -= math.Abs(SignedArea(h))
	}
	if area < 0 {
		return 0
	}
	return area
}

// AreaM2 returns the deck area in m². It fails closed: an outer ring with
// fewer than 3 points has no area.
func AreaM2(p model.Polygon) float64 {
	return AreaMm2(p) / mm2PerM2
}

// Centroid returns the arithmetic mean of the ring's vertices.
func Centroid(ring model.Outline) model.Point2D {
	if len(ring) == 0 {
		return model.Point2D{}
	}
	var c model.Point2D
	for _, p := range ring {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(ring))
	return model.Point2D{X: c.X / n, Y: c.Y / n}
}

// EdgeNormals returns one outward unit normal per edge; edge i runs from
// ring[i] to ring[i+1]. When the ring has no usable winding the normal is
// flipped to point away from the centroid.
func EdgeNormals(ring model.Outline) []model.Point2D {
	n := len(ring)
	if n < 2 {
		return nil
	}
	area := SignedArea(ring)
	center := Centroid(ring)
	normals := make([]model.Point2D, n)
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length < Epsilon {
			continue
		}
		// Right-hand normal is outward for a counter-clockwise ring.
		nx, ny := dy/length, -dx/length
		switch {
		case area < -Epsilon:
			nx, ny = -nx, -ny
		case math.Abs(area) <= Epsilon:
			mx, my := (a.X+b.X)/2-center.X, (a.Y+b.Y)/2-center.Y
			if nx*mx+ny*my < 0 {
				nx, ny = -nx, -ny
			}
		}
		normals[i] = model.Point2D{X: nx, Y: ny}
	}
	return normals
}

// PointInPolygon runs the even-odd ray test against a single ring. Points
// exactly on a boundary get a consistent but unspecified answer.
func PointInPolygon(pt model.Point2D, ring model.Outline) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := a.X + (pt.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if pt.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Contains reports whether pt lies on the deck: inside the outer ring and
// outside every hole.
func Contains(p model.Polygon, pt model.Point2D) bool {
	if len(p.Outer) < 3 || !PointInPolygon(pt, p.Outer) {
		return false
	}
	for _, h := range p.Holes {
		if PointInPolygon(pt, h) {
			return false
		}
	}
	return true
}

// RotateOutline rotates every vertex about the origin by deg degrees,
// counter-clockwise for positive angles.
func RotateOutline(ring model.Outline, deg float64) model.Outline {
	if ring == nil {
		return nil
	}
	aff := curve.Rotate(deg * math.Pi / 180)
	out := make(model.Outline, len(ring))
	for i, p := range ring {
		q := curve.Pt(p.X, p.Y).Transform(aff)
		out[i] = model.Point2D{X: q.X, Y: q.Y}
	}
	return out
}

// Rotate rotates the outer ring and all holes about the origin.
func Rotate(p model.Polygon, deg float64) model.Polygon {
	out := model.Polygon{Outer: RotateOutline(p.Outer, deg)}
	if len(p.Holes) > 0 {
		out.Holes = make([]model.Outline, len(p.Holes))
		for i, h := range p.Holes {
			out.Holes[i] = RotateOutline(h, deg)
		}
	}
	return out
}

// RotatePoint rotates a single point about the origin.
func RotatePoint(pt model.Point2D, deg float64) model.Point2D {
	q := curve.Pt(pt.X, pt.Y).Transform(curve.Rotate(deg * math.Pi / 180))
	return model.Point2D{X: q.X, Y: q.Y}
}

// Swap mirrors a polygon across the line y = x. Lengths along x become
// lengths along y, which lets the horizontal scan serve vertical members.
func Swap(p model.Polygon) model.Polygon {
	swap := func(r model.Outline) model.Outline {
		out := make(model.Outline, len(r))
		for i, pt := range r {
			out[i] = model.Point2D{X: pt.Y, Y: pt.X}
		}
		return out
	}
	out := model.Polygon{Outer: swap(p.Outer)}
	for _, h := range p.Holes {
		out.Holes = append(out.Holes, swap(h))
	}
	return out
}

// BoundingBox returns the extent of the outer ring.
func BoundingBox(p model.Polygon) (min, max model.Point2D) {
	return p.Outer.BoundingBox()
}

// Interval is a covered span [X0, X1] on a scan line.
type Interval struct {
	X0 float64
	X1 float64
}

// Length returns X1 - X0.
func (iv Interval) Length() float64 {
	return iv.X1 - iv.X0
}

// ScanLine intersects the horizontal line at y with every ring of p and
// returns the covered intervals, left to right, under the even-odd rule.
// Edges are treated as half-open in y so a line through a vertex is
// counted once.
func ScanLine(p model.Polygon, y float64) []Interval {
	if len(p.Outer) < 3 {
		return nil
	}
	var xs []float64
	for _, ring := range p.Rings() {
		n := len(ring)
		if n < 3 {
			continue
		}
		for i := 0; i < n; i++ {
			a := ring[i]
			b := ring[(i+1)%n]
			if (a.Y > y) == (b.Y > y) {
				continue
			}
			xs = append(xs, a.X+(y-a.Y)*(b.X-a.X)/(b.Y-a.Y))
		}
	}
	sort.Float64s(xs)

	var out []Interval
	for i := 0; i+1 < len(xs); i += 2 {
		if xs[i+1]-xs[i] > Epsilon {
			out = append(out, Interval{X0: xs[i], X1: xs[i+1]})
		}
	}
	return out
}

// IsSimple reports whether no two non-adjacent edges of the ring touch or
// cross. Rings with fewer than 3 points are not simple.
func IsSimple(ring model.Outline) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := ring[i], ring[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue // adjacent edges share a vertex
			}
			b1, b2 := ring[j], ring[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return false
			}
		}
	}
	return true
}

func cross(o, a, b model.Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func onSegment(p, a, b model.Point2D) bool {
	return math.Min(a.X, b.X)-Epsilon <= p.X && p.X <= math.Max(a.X, b.X)+Epsilon &&
		math.Min(a.Y, b.Y)-Epsilon <= p.Y && p.Y <= math.Max(a.Y, b.Y)+Epsilon
}

func sign(v float64) int {
	switch {
	case v > Epsilon:
		return 1
	case v < -Epsilon:
		return -1
	default:
		return 0
	}
}

// segmentsIntersect reports whether segments p1p2 and q1q2 share a point.
func segmentsIntersect(p1, p2, q1, q2 model.Point2D) bool {
	d1 := sign(cross(q1, q2, p1))
	d2 := sign(cross(q1, q2, p2))
	d3 := sign(cross(p1, p2, q1))
	d4 := sign(cross(p1, p2, q2))

	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}
	if d1 == 0 && onSegment(p1, q1, q2) {
		return true
	}
	if d2 == 0 && onSegment(p2, q1, q2) {
		return true
	}
	if d3 == 0 && onSegment(q1, p1, p2) {
		return true
	}
	if d4 == 0 && onSegment(q2, p1, p2) {
		return true
	}
	return false
}

// Clean drops consecutive duplicate vertices and an explicit closing
// point equal to the first vertex.
func Clean(ring model.Outline) model.Outline {
	if len(ring) == 0 {
		return ring
	}
	out := make(model.Outline, 0, len(ring))
	for _, p := range ring {
		if len(out) > 0 && samePoint(out[len(out)-1], p) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && samePoint(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

// CleanPolygon applies Clean to every ring and drops holes that collapse
// below 3 points.
func CleanPolygon(p model.Polygon) model.Polygon {
	out := model.Polygon{Outer: Clean(p.Outer)}
	for _, h := range p.Holes {
		if c := Clean(h); len(c) >= 3 {
			out.Holes = append(out.Holes, c)
		}
	}
	return out
}

func samePoint(a, b model.Point2D) bool {
	return math.Abs(a.X-b.X) <= Epsilon && math.Abs(a.Y-b.Y) <= Epsilon
}

// Validate checks the outer ring of a deck polygon and returns a short
// reason when it cannot be decomposed, or "" when it is usable.
func Validate(p model.Polygon) string {
	switch {
	case len(p.Outer) < 3:
		return "outer ring needs at least 3 points"
	case !IsSimple(p.Outer):
		return "outer ring intersects itself"
	case math.Abs(SignedArea(p.Outer)) <= Epsilon:
		return "outer ring has no area"
	}
	return ""
}
