package layout

import (
	"math"
	"math/rand/v2"
)

// Space dimensions. Positions live in a normalized percentage space so
// the renderer can scale them to any container.
const (
	SpaceSize   = 100.0
	SpaceCenter = SpaceSize / 2
)

// Default relaxation parameters. The iteration count is a fixed budget
// rather than a convergence criterion, which bounds cost and keeps the
// computation synchronous.
const (
	DefaultIterations   = 300
	DefaultPairMargin   = 2.0
	DefaultCenterMargin = 4.0
	DefaultPull         = 0.015
	DefaultJitter       = 15.0
	DefaultSeed         = uint64(42)
)

// Options configures a relaxation run. The zero value is not usable;
// call (*Options).setDefaults or use Place, which applies defaults.
type Options struct {
	// Iterations is the fixed relaxation budget.
	Iterations int

	// PairMargin is the extra spacing required between any two children
	// beyond the sum of their radii.
	PairMargin float64

	// CenterMargin is the extra spacing required between a child and the
	// center node's exclusion disk.
	CenterMargin float64

	// Pull is the fraction of a child's distance to the space center
	// applied as central attraction every iteration.
	Pull float64

	// Jitter is the half-range of the random offset used to seed
	// children without a cached position.
	Jitter float64

	// Sizing maps a display name to a radius. Nil falls back to
	// DefaultSizing. The renderer must use the same function so overlap
	// tests stay consistent with what is drawn.
	Sizing SizeFunc

	// Seed seeds the PRNG when Rand is nil. A fixed seed makes layouts
	// reproducible for identical inputs.
	Seed uint64

	// Rand overrides the PRNG, mainly for tests.
	Rand *rand.Rand
}

func (o *Options) setDefaults() {
	if o.Iterations <= 0 {
		o.Iterations = DefaultIterations
	}
	if o.PairMargin == 0 {
		o.PairMargin = DefaultPairMargin
	}
	if o.CenterMargin == 0 {
		o.CenterMargin = DefaultCenterMargin
	}
	if o.Pull == 0 {
		o.Pull = DefaultPull
	}
	if o.Jitter == 0 {
		o.Jitter = DefaultJitter
	}
	if o.Sizing == nil {
		o.Sizing = DefaultSizing
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(o.Seed, o.Seed^0xdeadbeef))
	}
}

// Item is one child to be placed around the center node.
type Item struct {
	ID   string // identity, passed through to the result
	Name string // display label, drives the radius
	Seed *Point // cached position from a previous run, nil for fresh items
}

// Point is a coordinate in the layout space.
type Point struct {
	X, Y float64
}

// Placed is an item annotated with its relaxed position and radius.
type Placed struct {
	ID     string
	Name   string
	X, Y   float64
	Radius float64
}

// Point returns the placed coordinate.
func (p Placed) Point() Point { return Point{X: p.X, Y: p.Y} }

// Place computes non-overlapping positions for items orbiting a center
// node named centerName. Items with a cached Seed start from it, so an
// already-settled constellation stays put; fresh items are jittered
// around the space center to break symmetry.
//
// Place never fails: pathological inputs (no items, identical names,
// coincident seeds) degrade to jittered or coincident output rather
// than an error. The result preserves input order.
func Place(centerName string, items []Item, opts Options) []Placed {
	opts.setDefaults()

	placed := make([]Placed, len(items))
	for i, it := range items {
		p := Placed{
			ID:     it.ID,
			Name:   it.Name,
			Radius: opts.Sizing(it.Name),
		}
		if it.Seed != nil {
			p.X, p.Y = it.Seed.X, it.Seed.Y
		} else {
			p.X = SpaceCenter + (opts.Rand.Float64()*2-1)*opts.Jitter
			p.Y = SpaceCenter + (opts.Rand.Float64()*2-1)*opts.Jitter
		}
		placed[i] = p
	}
	if len(placed) == 0 {
		return placed
	}

	exclusion := opts.Sizing(centerName)
	for iter := 0; iter < opts.Iterations; iter++ {
		separatePairs(placed, opts.PairMargin)
		for i := range placed {
			attract(&placed[i], opts.Pull)
			excludeCenter(&placed[i], exclusion, opts.CenterMargin)
		}
	}
	return placed
}

// separatePairs pushes overlapping children apart along the line
// connecting their centers, half the overlap each. Coincident pairs
// (distance exactly zero) are skipped for this iteration; jitter from
// other pairs or the initial seed is expected to break the tie.
func separatePairs(placed []Placed, margin float64) {
	for i := 0; i < len(placed); i++ {
		for j := i + 1; j < len(placed); j++ {
			dx := placed[j].X - placed[i].X
			dy := placed[j].Y - placed[i].Y
			dist := math.Hypot(dx, dy)
			minDist := placed[i].Radius + placed[j].Radius + margin
			if dist >= minDist || dist == 0 {
				continue
			}
			overlap := (minDist - dist) / 2
			ux, uy := dx/dist, dy/dist
			placed[i].X -= ux * overlap
			placed[i].Y -= uy * overlap
			placed[j].X += ux * overlap
			placed[j].Y += uy * overlap
		}
	}
}

// attract pulls a child toward the space center by a small fraction of
// its distance, keeping the cluster cohesive.
func attract(p *Placed, pull float64) {
	p.X += (SpaceCenter - p.X) * pull
	p.Y += (SpaceCenter - p.Y) * pull
}

// excludeCenter pushes a child directly away from the space center when
// it intrudes into the center node's exclusion disk.
func excludeCenter(p *Placed, exclusion, margin float64) {
	dx := p.X - SpaceCenter
	dy := p.Y - SpaceCenter
	dist := math.Hypot(dx, dy)
	minDist := exclusion + p.Radius + margin
	if dist >= minDist || dist == 0 {
		return
	}
	overlap := minDist - dist
	p.X += dx / dist * overlap
	p.Y += dy / dist * overlap
}
