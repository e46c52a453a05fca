package integrators

import (
	"math/rand"
	"testing"

	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/particle"
)

func benchStore(n int) *particle.Store {
	rng := rand.New(rand.NewSource(1))
	s := particle.NewStore(n)
	for i := 0; i < n; i++ {
		p := spark(uint64(i))
		p.MaxLife = 1e12
		p.Position = dynamo.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}
		p.Velocity = dynamo.Vec3{rng.Float64() - 0.5, rng.Float64() - 0.5, rng.Float64() - 0.5}
		s.Insert(p)
	}
	return s
}

// benchParams keeps every particle alive for the whole run.
func benchParams() Params {
	p := DefaultParams()
	p.MinVisibleSize = 0
	return p
}

func BenchmarkKinematic100(b *testing.B) {
	k := NewKinematic(dynamo.DefaultBounds(), benchParams())
	s := benchStore(100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k.Step(s, 0.96)
	}
}

func BenchmarkKinematic500(b *testing.B) {
	k := NewKinematic(dynamo.DefaultBounds(), benchParams())
	s := benchStore(500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k.Step(s, 0.96)
	}
}
