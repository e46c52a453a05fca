package spatial

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/particle"
)

func at(id uint64, x, y, z float64) particle.Particle {
	return particle.Particle{ID: id, Position: dynamo.Vec3{x, y, z}, Mass: 1, Radius: 0.05}
}

func TestCellOf(t *testing.T) {
	g := NewGrid(0.2)
	tests := []struct {
		pos  dynamo.Vec3
		want Cell
	}{
		{dynamo.Vec3{0, 0, 0}, Cell{0, 0, 0}},
		{dynamo.Vec3{0.19, 0.2, 0.41}, Cell{0, 1, 2}},
		{dynamo.Vec3{-0.01, -0.2, -0.21}, Cell{-1, -1, -2}},
	}
	for _, tt := range tests {
		if got := g.CellOf(tt.pos); got != tt.want {
			t.Errorf("CellOf(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestNeighborsExcludesSelfAndFarParticles(t *testing.T) {
	g := NewGrid(0.2)
	ps := []particle.Particle{
		at(0, 0.05, 0.05, 0.05),
		at(1, 0.25, 0.05, 0.05),  // adjacent cell
		at(2, -0.15, -0.15, 0.1), // diagonal neighbour cell
		at(3, 0.9, 0.9, 0.9),     // far away
		at(4, 0.06, 0.04, 0.05),  // same cell
	}
	g.Rebuild(ps)

	got := g.Neighbors(ps, 0, nil)
	sort.Ints(got)
	want := []int{1, 2, 4}
	if len(got) != len(want) {
		t.Fatalf("neighbors = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("neighbors = %v, want %v", got, want)
		}
	}
}

func TestRebuildClearsPreviousTick(t *testing.T) {
	g := NewGrid(0.2)
	ps := []particle.Particle{at(0, 0, 0, 0), at(1, 0.01, 0, 0)}
	g.Rebuild(ps)

	ps[1].Position = dynamo.Vec3{1.5, 1.5, 1.5}
	g.Rebuild(ps)

	if n := len(g.Neighbors(ps, 0, nil)); n != 0 {
		t.Errorf("expected no neighbours after move, got %d", n)
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
	if g.Cells() != 2 {
		t.Errorf("Cells() = %d, want 2", g.Cells())
	}
}

func TestReset(t *testing.T) {
	g := NewGrid(0)
	if g.CellSize() != DefaultCellSize {
		t.Errorf("expected default cell size, got %f", g.CellSize())
	}
	g.Rebuild([]particle.Particle{at(0, 0, 0, 0)})
	g.Reset()
	if g.Len() != 0 || g.Cells() != 0 {
		t.Errorf("reset left %d particles in %d cells", g.Len(), g.Cells())
	}
}

// Every pair closer than one cell must be reported by the grid.
func TestNeighborsMatchBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ps := make([]particle.Particle, 200)
	for i := range ps {
		ps[i] = at(uint64(i), rng.Float64()*2-1, rng.Float64()*2-1, rng.Float64()*2-1)
	}
	g := NewGrid(0.2)
	g.Rebuild(ps)

	var buf []int
	for i := range ps {
		buf = g.Neighbors(ps, i, buf[:0])
		seen := make(map[int]bool, len(buf))
		for _, j := range buf {
			seen[j] = true
		}
		for j := range ps {
			if j == i {
				continue
			}
			if ps[i].Position.Sub(ps[j].Position).Len() < g.CellSize() && !seen[j] {
				t.Fatalf("pair (%d,%d) within one cell was not reported", i, j)
			}
		}
	}
}

func BenchmarkRebuild(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	ps := make([]particle.Particle, 300)
	for i := range ps {
		ps[i] = at(uint64(i), rng.Float64()*4-2, rng.Float64()*4-2, rng.Float64()*4-2)
	}
	g := NewGrid(DefaultCellSize)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Rebuild(ps)
	}
}
