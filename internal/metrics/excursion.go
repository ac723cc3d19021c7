package metrics

import (
	"math"

	"github.com/san-kum/cartsim/internal/dynamo"
)

// Excursion reports the fraction of samples where the cart stayed within a
// position bound, and remembers the largest displacement seen.
type Excursion struct {
	name       string
	bound      float64
	violations int
	samples    int
	maxAbs     float64
}

func NewExcursion(bound float64) *Excursion {
	return &Excursion{
		name:  "excursion",
		bound: bound,
	}
}

func (e *Excursion) Name() string { return e.name }

func (e *Excursion) Observe(x dynamo.State, u dynamo.Control, t float64) {
	e.samples++
	pos := math.Abs(x[0])
	e.maxAbs = math.Max(e.maxAbs, pos)
	if pos > e.bound {
		e.violations++
	}
}

func (e *Excursion) Value() float64 {
	if e.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(e.violations)/float64(e.samples)
}

func (e *Excursion) MaxAbs() float64 { return e.maxAbs }

func (e *Excursion) Reset() {
	e.violations = 0
	e.samples = 0
	e.maxAbs = 0
}
