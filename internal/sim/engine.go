// Package sim drives the particle simulation one tick at a time.
package sim

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/emitter"
	"github.com/san-kum/particlefx/internal/integrators"
	"github.com/san-kum/particlefx/internal/particle"
	"github.com/san-kum/particlefx/internal/physics"
	"github.com/san-kum/particlefx/internal/spatial"
)

const defaultCapacity = 512

type spawnRequest struct {
	effect    emitter.Effect
	intensity float64
	origin    dynamo.Vec3
	flags     emitter.Flags
}

// Engine owns every live particle and advances them together. It is not
// safe for concurrent use; hosts with several goroutines must serialise calls.
type Engine struct {
	bounds dynamo.Bounds
	params Params

	store    *particle.Store
	grid     *spatial.Grid
	resolver *physics.Resolver
	kin      *integrators.Kinematic
	emitter  *emitter.Emitter
	logger   *log.Logger

	metrics   []Metric
	observers []Observer

	pending []spawnRequest
	inTick  bool

	time      float64
	ticks     int
	lastStats physics.Stats
}

type options struct {
	params Params
	table  emitter.Table
	rng    *rand.Rand
	logger *log.Logger
}

type Option func(*options)

func WithParams(p Params) Option { return func(o *options) { o.params = p } }

func WithTable(t emitter.Table) Option { return func(o *options) { o.table = t } }

func WithRand(r *rand.Rand) Option { return func(o *options) { o.rng = r } }

func WithSeed(seed int64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewSource(seed)) }
}

// WithLogger routes engine diagnostics to l. The default discards them.
func WithLogger(l *log.Logger) Option { return func(o *options) { o.logger = l } }

func New(bounds dynamo.Bounds, opts ...Option) (*Engine, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	o := options{params: DefaultParams(), table: emitter.DefaultTable()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.params.Validate(); err != nil {
		return nil, fmt.Errorf("engine params: %w", err)
	}
	if err := o.table.Validate(); err != nil {
		return nil, fmt.Errorf("effect table: %w", err)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard, "", 0)
	}

	return &Engine{
		bounds:   bounds,
		params:   o.params,
		store:    particle.NewStore(defaultCapacity),
		grid:     spatial.NewGrid(o.params.CellSize),
		resolver: physics.NewResolver(o.params.Physics),
		kin:      integrators.NewKinematic(bounds, o.params.Kinematic),
		emitter:  emitter.New(o.table, o.rng),
		logger:   o.logger,
	}, nil
}

func (e *Engine) AddMetric(m Metric)     { e.metrics = append(e.metrics, m) }
func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// Trigger spawns a burst of effect at the centre of the volume.
func (e *Engine) Trigger(effect emitter.Effect, intensity float64, flags emitter.Flags) int {
	return e.TriggerAt(effect, intensity, e.bounds.Center(), flags)
}

// TriggerAt spawns a burst around origin and returns its size. Called from
// inside a tick, the burst is queued and inserted at the start of the next one.
func (e *Engine) TriggerAt(effect emitter.Effect, intensity float64, origin dynamo.Vec3, flags emitter.Flags) int {
	n := e.emitter.Count(effect, intensity)
	if n == 0 {
		return 0
	}
	if e.inTick {
		e.pending = append(e.pending, spawnRequest{effect, intensity, origin, flags})
		return n
	}
	e.spawn(spawnRequest{effect, intensity, origin, flags})
	return n
}

func (e *Engine) spawn(req spawnRequest) int {
	ps := e.emitter.Spawn(req.effect, req.intensity, req.origin, req.flags, e.store.NextID)
	e.store.Insert(ps...)
	e.logger.Printf("spawned %d %s particles (live %d)", len(ps), req.effect, e.store.Len())
	return len(ps)
}

// Add inserts a hand-built particle with a fresh id and returns that id.
func (e *Engine) Add(p particle.Particle) (uint64, error) {
	p.ID = e.store.NextID()
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if e.inTick {
		return 0, fmt.Errorf("particle %d: cannot add during a tick", p.ID)
	}
	e.store.Insert(p)
	return p.ID, nil
}

// Advance runs one tick of at most MaxDt seconds and returns the render
// snapshot. Negative or NaN durations advance by zero.
func (e *Engine) Advance(seconds float64) dynamo.Snapshot {
	if !(seconds > 0) {
		seconds = 0
	}
	if seconds > e.params.MaxDt {
		seconds = e.params.MaxDt
	}
	dt := seconds * e.params.TimeScale

	e.inTick = true
	defer func() { e.inTick = false }()

	spawned := 0
	for _, req := range e.pending {
		spawned += e.spawn(req)
	}
	e.pending = e.pending[:0]

	ps := e.store.Items()
	for i := range ps {
		ps[i].Acceleration = dynamo.Vec3{}
	}

	e.resolver.Collisions, e.resolver.Magnetism = interactions(ps)
	e.lastStats = physics.Stats{}
	if e.resolver.Collisions || e.resolver.Magnetism {
		e.grid.Rebuild(ps)
		e.lastStats = e.resolver.Resolve(ps, e.grid)
	}

	culled := e.kin.Step(e.store, dt)
	e.time += seconds
	e.ticks++

	snap := e.store.Snapshot()
	info := &StepInfo{
		Tick:      e.ticks,
		Time:      e.time,
		Dt:        dt,
		Particles: e.store.Items(),
		Stats:     e.lastStats,
		Spawned:   spawned,
		Culled:    culled,
	}
	for _, m := range e.metrics {
		m.Observe(info)
	}
	for _, o := range e.observers {
		o.OnStep(info, snap)
	}
	return snap
}

// interactions reports whether any live particle takes part in the
// collision or magnetism phase.
func interactions(ps []particle.Particle) (collide, magnet bool) {
	for i := range ps {
		collide = collide || ps[i].Collides
		magnet = magnet || ps[i].Magnetism != 0
		if collide && magnet {
			break
		}
	}
	return collide, magnet
}

// Clear drops every particle, queued burst and index entry.
func (e *Engine) Clear() {
	e.store.Clear()
	e.pending = e.pending[:0]
	e.grid.Reset()
	e.lastStats = physics.Stats{}
	e.logger.Printf("cleared at tick %d", e.ticks)
}

func (e *Engine) State() State {
	if e.store.Len() > 0 || len(e.pending) > 0 {
		return Active
	}
	return Idle
}

func (e *Engine) Len() int                  { return e.store.Len() }
func (e *Engine) Pending() int              { return len(e.pending) }
func (e *Engine) Time() float64             { return e.time }
func (e *Engine) Ticks() int                { return e.ticks }
func (e *Engine) LastStats() physics.Stats  { return e.lastStats }
func (e *Engine) Bounds() dynamo.Bounds     { return e.bounds }
func (e *Engine) Table() emitter.Table      { return e.emitter.Table() }
func (e *Engine) Snapshot() dynamo.Snapshot { return e.store.Snapshot() }

// Particles returns a copy of the live particles.
func (e *Engine) Particles() []particle.Particle {
	return append([]particle.Particle(nil), e.store.Items()...)
}

// Metrics reports the current value of every registered metric.
func (e *Engine) Metrics() map[string]float64 {
	out := make(map[string]float64, len(e.metrics))
	for _, m := range e.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (e *Engine) ResetMetrics() {
	for _, m := range e.metrics {
		m.Reset()
	}
}

func (e *Engine) GetParams() Params { return e.params }

// SetParam changes one named constant; it takes effect on the next tick.
func (e *Engine) SetParam(name string, v float64) error {
	if err := e.params.Set(name, v); err != nil {
		return err
	}
	e.resolver.Params = e.params.Physics
	e.kin.Params = e.params.Kinematic
	e.logger.Printf("param %s = %g", name, v)
	return nil
}
