package dynamo_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/physics"
)

var _ = Describe("World", func() {
	var (
		world *dynamo.World
		start []dynamo.Particle
	)

	BeforeEach(func() {
		start = spreadParticles()
		var err error
		world, err = dynamo.NewWorld(newTestSimulator(1), start, 0.01)
		Expect(err).NotTo(HaveOccurred())
	})

	It("captures the starting energy", func() {
		want := dynamo.TotalEnergy(physics.NewCoulomb(1), start)
		Expect(world.TotalEnergy()).To(BeNumerically("~", want, 1e-12))
		Expect(world.Steps()).To(BeZero())
	})

	It("copies the particles it is given", func() {
		start[0].Position = dynamo.Vec2{X: -1, Y: -1}
		p, ok := world.Particle(0)
		Expect(ok).To(BeTrue())
		Expect(p.Position).To(Equal(dynamo.Vec2{X: 20, Y: 20}))
	})

	Context("when stepped", func() {
		It("holds the measured energy at the snapshot", func() {
			initial := world.TotalEnergy()
			for i := 0; i < 200; i++ {
				world.Step()
				Expect(world.MeasuredEnergy()).To(BeNumerically("~", initial, 1e-6*initial))
			}
			Expect(world.Steps()).To(Equal(200))
			Expect(world.Time()).To(BeNumerically("~", 2.0, 1e-9))
			Expect(world.LastReport().Step).To(Equal(200))
		})

		It("moves particles", func() {
			before := world.Snapshot()
			world.Step()
			after := world.Snapshot()
			Expect(after[0].Position).NotTo(Equal(before[0].Position))
		})
	})

	Context("with a pinned particle", func() {
		It("keeps it in place and re-captures the energy", func() {
			target := dynamo.Vec2{X: 50, Y: 50}
			Expect(world.Pin(0, target)).To(Succeed())
			Expect(world.TotalEnergy()).To(BeNumerically("~", world.MeasuredEnergy(), 1e-12))

			for i := 0; i < 50; i++ {
				world.Step()
			}
			p, _ := world.Particle(0)
			Expect(p.Position).To(Equal(target))
			Expect(p.Velocity).To(Equal(dynamo.Vec2{}))

			Expect(world.Release(0)).To(Succeed())
			p, _ = world.Particle(0)
			Expect(p.Fixed).To(BeFalse())
		})

		It("rejects unknown ids", func() {
			Expect(world.Pin(99, dynamo.Vec2{})).To(MatchError(dynamo.ErrUnknownParticle))
			Expect(world.Release(-1)).To(MatchError(dynamo.ErrUnknownParticle))
		})
	})

	It("restores the initial arena on Reset", func() {
		initial := world.TotalEnergy()
		for i := 0; i < 10; i++ {
			world.Step()
		}
		world.Reset()
		Expect(world.Steps()).To(BeZero())
		Expect(world.Snapshot()).To(Equal(start))
		Expect(world.TotalEnergy()).To(Equal(initial))
	})

	It("confines overlapping particles before capturing the energy", func() {
		w, err := dynamo.NewWorld(newTestSimulator(1), wallOverlapParticles(), 0.01)
		Expect(err).NotTo(HaveOccurred())

		p, _ := w.Particle(0)
		Expect(p.Position).To(Equal(dynamo.Vec2{X: 1, Y: 50}))
		Expect(w.TotalEnergy()).To(Equal(w.MeasuredEnergy()))

		initial := w.TotalEnergy()
		for i := 0; i < 100; i++ {
			w.Step()
			Expect(w.LastReport().Correction.Clamped).To(BeFalse())
			Expect(w.MeasuredEnergy()).To(BeNumerically("~", initial, 1e-6*initial))
		}

		w.Reset()
		p, _ = w.Particle(0)
		Expect(p.Position).To(Equal(dynamo.Vec2{X: 1, Y: 50}))
	})

	It("rejects a non-positive time step", func() {
		_, err := dynamo.NewWorld(newTestSimulator(1), start, 0)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("rejects particles with non-positive charge", func() {
		start[1].Charge = 0
		_, err := dynamo.NewWorld(newTestSimulator(1), start, 0.1)
		Expect(err).To(MatchError(dynamo.ErrNonPositiveCharge))
	})
})
