package sim

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/emitter"
	"github.com/san-kum/particlefx/internal/particle"
)

const frame = MaxDt

type countingMetric struct{ ticks int }

func (c *countingMetric) Name() string      { return "ticks" }
func (c *countingMetric) Observe(*StepInfo) { c.ticks++ }
func (c *countingMetric) Value() float64    { return float64(c.ticks) }
func (c *countingMetric) Reset()            { c.ticks = 0 }

var _ = Describe("Engine", func() {
	var eng *Engine

	BeforeEach(func() {
		var err error
		eng, err = New(dynamo.DefaultBounds(), WithSeed(42))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("rejects inverted bounds", func() {
			b := dynamo.DefaultBounds()
			b.Min[1], b.Max[1] = 1, -1
			_, err := New(b)
			Expect(errors.Is(err, dynamo.ErrInvalidBounds)).To(BeTrue())
		})

		It("rejects out of range params", func() {
			p := DefaultParams()
			p.Kinematic.Drag = 1.5
			_, err := New(dynamo.DefaultBounds(), WithParams(p))
			Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
		})

		It("starts idle", func() {
			Expect(eng.State()).To(Equal(Idle))
			Expect(eng.Advance(frame)).To(BeEmpty())
		})
	})

	Describe("Trigger", func() {
		It("spawns count x intensity particles", func() {
			Expect(eng.Trigger(emitter.Success, 1, emitter.AllInteractions)).To(Equal(35))
			Expect(eng.Len()).To(Equal(35))
			eng.Clear()
			Expect(eng.Trigger(emitter.Success, 2, emitter.AllInteractions)).To(Equal(70))
			Expect(eng.Len()).To(Equal(70))
			Expect(eng.State()).To(Equal(Active))
		})

		It("spawns nothing for non-positive intensity", func() {
			Expect(eng.Trigger(emitter.Click, 0, emitter.AllInteractions)).To(BeZero())
			Expect(eng.Trigger(emitter.Click, -2, emitter.AllInteractions)).To(BeZero())
			Expect(eng.Trigger(emitter.Click, math.NaN(), emitter.AllInteractions)).To(BeZero())
			Expect(eng.State()).To(Equal(Idle))
		})

		It("never changes existing particles", func() {
			eng.Trigger(emitter.Hover, 1, emitter.AllInteractions)
			before := eng.Particles()
			eng.TriggerAt(emitter.Error, 1, dynamo.Vec3{1, 1, 0}, emitter.AllInteractions)
			Expect(eng.Particles()[:len(before)]).To(Equal(before))
		})

		It("defers bursts requested during a tick", func() {
			fired := false
			eng.AddObserver(ObserverFunc(func(info *StepInfo, snap dynamo.Snapshot) {
				if !fired {
					fired = true
					Expect(eng.Trigger(emitter.Toggle, 1, emitter.AllInteractions)).To(Equal(18))
				}
			}))

			snap := eng.Advance(frame)
			Expect(snap).To(BeEmpty())
			Expect(eng.Len()).To(BeZero())
			Expect(eng.Pending()).To(Equal(1))
			Expect(eng.State()).To(Equal(Active))

			snap = eng.Advance(frame)
			Expect(snap).To(HaveLen(18))
			Expect(eng.Pending()).To(BeZero())
		})
	})

	Describe("Advance", func() {
		It("keeps every particle inside the volume", func() {
			eng.Trigger(emitter.Success, 2, emitter.AllInteractions)
			eng.TriggerAt(emitter.Navigation, 1, dynamo.Vec3{1.9, 1.9, 0}, emitter.AllInteractions)
			b := eng.Bounds()
			for i := 0; i < 600; i++ {
				eng.Advance(frame)
				for _, p := range eng.Particles() {
					Expect(b.Contains(p.Position, p.Radius, 1e-9)).To(BeTrue(), "particle %d at %v", p.ID, p.Position)
				}
			}
		})

		It("ages particles monotonically and removes them once", func() {
			eng.Trigger(emitter.Error, 1, emitter.Flags{})
			ages := map[uint64]float64{}
			removed := map[uint64]bool{}
			for i := 0; i < 400 && eng.State() == Active; i++ {
				eng.Advance(frame)
				alive := map[uint64]bool{}
				for _, p := range eng.Particles() {
					Expect(removed[p.ID]).To(BeFalse())
					Expect(p.Life).To(BeNumerically(">=", ages[p.ID]))
					Expect(p.Life).To(BeNumerically("<", p.MaxLife))
					ages[p.ID] = p.Life
					alive[p.ID] = true
				}
				for id := range ages {
					if !alive[id] {
						removed[id] = true
					}
				}
			}
			Expect(eng.State()).To(Equal(Idle))
			Expect(removed).To(HaveLen(15))
		})

		It("clamps long frames and ignores invalid ones", func() {
			eng.Trigger(emitter.Click, 1, emitter.Flags{})
			eng.Advance(10)
			Expect(eng.Time()).To(BeNumerically("~", MaxDt, 1e-12))
			eng.Advance(-1)
			eng.Advance(math.NaN())
			Expect(eng.Time()).To(BeNumerically("~", MaxDt, 1e-12))
			Expect(eng.Ticks()).To(Equal(3))
			for _, p := range eng.Particles() {
				Expect(p.Life).To(BeNumerically("~", MaxDt*TimeScale, 1e-12))
			}
		})

		It("reflects a static particle at the boundary", func() {
			b := eng.Bounds()
			id, err := eng.Add(particle.Particle{
				Position:   dynamo.Vec3{b.Max[0] - 0.01, 0, 0},
				Velocity:   dynamo.Vec3{1, 0, 0},
				Mass:       1,
				Radius:     0.05,
				MaxLife:    1000,
				Size:       10,
				Elasticity: 0.5,
				Static:     true,
			})
			Expect(err).NotTo(HaveOccurred())

			eng.Advance(frame)
			got := eng.Particles()[0]
			Expect(got.ID).To(Equal(id))
			Expect(got.Position[0]).To(BeNumerically("~", b.Max[0]-0.05, 1e-12))
			Expect(got.Velocity[0]).To(BeNumerically("<", 0))
			Expect(math.Abs(got.Velocity[0])).To(BeNumerically("<=", 0.5))
		})

		It("skips the interaction phases for inert particles", func() {
			eng.Trigger(emitter.Success, 1, emitter.Flags{})
			eng.Advance(frame)
			Expect(eng.LastStats().Pairs).To(BeZero())
		})

		It("feeds metrics and observers every tick", func() {
			m := &countingMetric{}
			eng.AddMetric(m)
			for i := 0; i < 5; i++ {
				eng.Advance(frame)
			}
			Expect(eng.Metrics()).To(HaveKeyWithValue("ticks", 5.0))
		})
	})

	Describe("Clear", func() {
		It("leaves an empty engine that still ticks", func() {
			eng.Trigger(emitter.Navigation, 1, emitter.AllInteractions)
			eng.Advance(frame)
			eng.Clear()
			Expect(eng.State()).To(Equal(Idle))
			Expect(eng.Advance(frame)).To(BeEmpty())
		})

		It("drops queued bursts", func() {
			eng.AddObserver(ObserverFunc(func(*StepInfo, dynamo.Snapshot) {
				eng.Trigger(emitter.Hover, 1, emitter.Flags{})
			}))
			eng.Advance(frame)
			Expect(eng.Pending()).To(Equal(1))
			eng.Clear()
			Expect(eng.Pending()).To(BeZero())
		})
	})

	Describe("replay", func() {
		It("produces identical frames for equal seeds", func() {
			run := func() []dynamo.Snapshot {
				e, err := New(dynamo.DefaultBounds(), WithSeed(7))
				Expect(err).NotTo(HaveOccurred())
				e.Trigger(emitter.Success, 1, emitter.AllInteractions)
				e.Trigger(emitter.Click, 1, emitter.AllInteractions)
				res, err := e.Run(context.Background(), RunConfig{Dt: frame, Duration: 1, KeepFrames: true})
				Expect(err).NotTo(HaveOccurred())
				return res.Frames
			}
			Expect(run()).To(Equal(run()))
		})
	})

	Describe("SetParam", func() {
		It("updates a known constant", func() {
			Expect(eng.SetParam("gravity", -0.01)).To(Succeed())
			Expect(eng.GetParams().Kinematic.Gravity).To(Equal(-0.01))
		})

		It("rejects unknown names and bad values", func() {
			Expect(errors.Is(eng.SetParam("warp", 1), dynamo.ErrUnknownParam)).To(BeTrue())
			err := eng.SetParam("drag", 0)
			Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
			var pe *dynamo.ParamError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.Name).To(Equal("drag"))
		})
	})
})

var _ = Describe("Run", func() {
	It("records one sample per tick", func() {
		eng, err := New(dynamo.DefaultBounds(), WithSeed(1))
		Expect(err).NotTo(HaveOccurred())
		eng.Trigger(emitter.Hover, 1, emitter.AllInteractions)
		res, err := eng.Run(context.Background(), RunConfig{Dt: frame, Duration: 30 * frame})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(30))
		Expect(res.Population).To(HaveLen(30))
		Expect(res.Peak).To(Equal(12))
		Expect(res.Interactions.Pairs).To(BeNumerically(">", 0))
		Expect(res.Interactions.Collisions).To(BeNumerically("<=", res.Interactions.Pairs))
	})

	It("validates its config", func() {
		eng, _ := New(dynamo.DefaultBounds())
		_, err := eng.Run(context.Background(), RunConfig{Dt: 0, Duration: 1})
		Expect(err).To(HaveOccurred())
		_, err = eng.Run(context.Background(), RunConfig{Dt: frame, Duration: -1})
		Expect(err).To(HaveOccurred())
	})

	It("refuses a step the engine would clamp", func() {
		eng, _ := New(dynamo.DefaultBounds())
		_, err := eng.Run(context.Background(), RunConfig{Dt: 0.05, Duration: 1})
		Expect(err).To(MatchError(ContainSubstring("max_dt")))
		Expect(eng.Ticks()).To(BeZero())

		Expect(eng.SetParam("max_dt", 0.05)).To(Succeed())
		res, err := eng.Run(context.Background(), RunConfig{Dt: 0.05, Duration: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(20))
		Expect(eng.Time()).To(BeNumerically("~", 1, 1e-9))
	})

	It("stops when max_dt drops below the step mid-run", func() {
		eng, _ := New(dynamo.DefaultBounds())
		eng.AddObserver(ObserverFunc(func(info *StepInfo, _ dynamo.Snapshot) {
			if info.Tick == 3 {
				Expect(eng.SetParam("max_dt", frame/2)).To(Succeed())
			}
		}))
		res, err := eng.Run(context.Background(), RunConfig{Dt: frame, Duration: 1})
		Expect(err).To(MatchError(ContainSubstring("max_dt")))
		Expect(res.StepsTaken).To(Equal(3))
	})

	It("stops on cancellation", func() {
		eng, _ := New(dynamo.DefaultBounds())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := eng.Run(ctx, RunConfig{Dt: frame, Duration: 1})
		Expect(err).To(MatchError(context.Canceled))
	})

	It("runs an ensemble with distinct seeds", func() {
		ens := NewEnsemble(func(seed int64) (*Engine, error) {
			e, err := New(dynamo.DefaultBounds(), WithSeed(seed))
			if err == nil {
				e.Trigger(emitter.Click, 1, emitter.AllInteractions)
			}
			return e, err
		}, 3, 10)
		results, err := ens.Run(context.Background(), RunConfig{Dt: frame, Duration: 15 * frame})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for _, r := range results {
			Expect(r.StepsTaken).To(Equal(15))
		}
	})
})
