package cartpole_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cartsim/internal/cartpole"
	"github.com/san-kum/cartsim/internal/dynamo"
	"github.com/san-kum/cartsim/internal/integrators"
)

var _ = Describe("Derive", func() {
	var m *cartpole.Model

	BeforeEach(func() {
		m = cartpole.New(nil)
	})

	It("matches the Lagrangian closed form when unforced", func() {
		M, mp, L := 1.2, 0.7, 0.9
		Expect(m.SetParameters(M, mp, L)).To(Succeed())

		theta, w := 0.3, 0.5
		x := dynamo.State{0.4, theta, -0.2, w}

		s, c := math.Sin(theta), math.Cos(theta)
		denom := M + mp*s*s
		wantXDD := (mp * s * (L*w*w + cartpole.Gravity*c)) / denom
		wantThDD := (-mp*L*w*w*s*c - (M+mp)*cartpole.Gravity*s) / (L * denom)

		dx := m.Derive(x, dynamo.Control{0}, 0)
		Expect(dx[cartpole.IdxPos]).To(Equal(x[cartpole.IdxVel]))
		Expect(dx[cartpole.IdxTheta]).To(Equal(x[cartpole.IdxOmega]))
		Expect(dx[cartpole.IdxVel]).To(BeNumerically("~", wantXDD, 1e-12))
		Expect(dx[cartpole.IdxOmega]).To(BeNumerically("~", wantThDD, 1e-12))
	})

	It("is invariant under cart translation", func() {
		a := m.Derive(dynamo.State{0, 0.8, 0.1, -0.4}, nil, 0)
		b := m.Derive(dynamo.State{37.5, 0.8, 0.1, -0.4}, nil, 0)
		Expect(a).To(Equal(b))
	})

	It("has no side effects on the model state", func() {
		Expect(m.SetState(dynamo.State{1, 2, 3, 4})).To(Succeed())
		m.Derive(dynamo.State{0, 0.5, 0, 0}, nil, 0)
		Expect(m.State()).To(Equal(dynamo.State{1, 2, 3, 4}))
	})

	It("accelerates the cart with an applied force", func() {
		M := 2.0
		Expect(m.SetParameters(M, 1.0, 1.0)).To(Succeed())

		// At the hanging rest state the mass matrix is diagonal in x,
		// so xDD reduces to F/M.
		dx := m.Derive(dynamo.State{0, 0, 0, 0}, dynamo.Control{3.0}, 0)
		Expect(dx[cartpole.IdxVel]).To(BeNumerically("~", 3.0/M, 1e-12))
		Expect(dx[cartpole.IdxOmega]).ToNot(BeZero())
	})
})

var _ = Describe("Equilibria", func() {
	It("keeps the hanging state fixed", func() {
		m := cartpole.New(integrators.NewRK4())
		for i := 0; i < 50; i++ {
			Expect(m.Advance(0.02)).To(Succeed())
		}
		Expect(m.State()).To(Equal(dynamo.State{0, 0, 0, 0}))
	})

	It("diverges from a perturbed upright state", func() {
		m := cartpole.New(integrators.NewRK4())
		eps := 1e-3
		Expect(m.SetState(dynamo.State{0, math.Pi - eps, 0, 0})).To(Succeed())

		for i := 0; i < 100; i++ {
			Expect(m.Advance(0.01)).To(Succeed())
		}

		Expect(math.Abs(m.State()[cartpole.IdxTheta] - math.Pi)).To(BeNumerically(">", 10*eps))
	})
})

var _ = Describe("Damping", func() {
	It("dissipates mechanical energy", func() {
		m := cartpole.New(integrators.NewRK4())
		Expect(m.SetViscosity(0.5)).To(Succeed())
		x0 := dynamo.State{0, 1.0, 0, 0}
		Expect(m.SetState(x0)).To(Succeed())

		e0 := m.Energy(x0)
		for i := 0; i < 500; i++ {
			Expect(m.Advance(0.01)).To(Succeed())
		}

		Expect(m.Energy(m.State())).To(BeNumerically("<", e0))
	})

	It("rejects negative viscosity", func() {
		m := cartpole.New(nil)
		Expect(m.SetViscosity(-0.1)).To(MatchError(dynamo.ErrInvalidParameter))
	})
})

var _ = Describe("Force input", func() {
	It("pushes the cart from rest", func() {
		m := cartpole.New(integrators.NewRK4())
		Expect(m.SetForce(1.0)).To(Succeed())

		for i := 0; i < 100; i++ {
			Expect(m.Advance(0.01)).To(Succeed())
		}

		Expect(m.State()[cartpole.IdxPos]).To(BeNumerically(">", 0))
		Expect(m.State()[cartpole.IdxVel]).To(BeNumerically(">", 0))
	})

	It("rejects non-finite forces", func() {
		m := cartpole.New(nil)
		Expect(m.SetForce(math.NaN())).To(MatchError(dynamo.ErrInvalidParameter))
		Expect(m.Force()).To(BeZero())
	})
})
