package particle

import (
	"testing"

	"github.com/san-kum/particlefx/internal/dynamo"
)

func newParticle(s *Store) Particle {
	return Particle{ID: s.NextID(), Mass: 1, Radius: 0.1, MaxLife: 10, Size: 5}
}

func TestStoreIDsNeverReused(t *testing.T) {
	s := NewStore(4)
	s.Insert(newParticle(s), newParticle(s))
	s.Clear()
	p := newParticle(s)
	if p.ID != 2 {
		t.Errorf("expected id 2 after clear, got %d", p.ID)
	}
}

func TestStoreRemove(t *testing.T) {
	s := NewStore(4)
	for i := 0; i < 3; i++ {
		s.Insert(newParticle(s))
	}

	if !s.Remove(1) {
		t.Fatal("expected remove to succeed")
	}
	if s.Remove(1) {
		t.Error("second remove of same id should fail")
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 particles, got %d", s.Len())
	}
	if s.Items()[0].ID != 0 || s.Items()[1].ID != 2 {
		t.Errorf("order not preserved: %d, %d", s.Items()[0].ID, s.Items()[1].ID)
	}
	if _, ok := s.Get(1); ok {
		t.Error("removed particle still retrievable")
	}
}

func TestStoreCompact(t *testing.T) {
	s := NewStore(8)
	for i := 0; i < 6; i++ {
		p := newParticle(s)
		p.Life = float64(i)
		s.Insert(p)
	}

	removed := s.Compact(func(p *Particle) bool { return int(p.Life)%2 == 0 })
	if removed != 3 {
		t.Errorf("expected 3 removed, got %d", removed)
	}
	want := []uint64{0, 2, 4}
	for i, p := range s.Items() {
		if p.ID != want[i] {
			t.Errorf("index %d: id %d, want %d", i, p.ID, want[i])
		}
	}
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	s := NewStore(1)
	p := newParticle(s)
	p.Position = dynamo.Vec3{1, 2, 3}
	p.Color = [4]float64{0.1, 0.2, 0.3, 0.4}
	s.Insert(p)

	snap := s.Snapshot()
	s.Items()[0].Position = dynamo.Vec3{9, 9, 9}

	if snap[0].Position != [3]float64{1, 2, 3} {
		t.Errorf("snapshot observed later mutation: %v", snap[0].Position)
	}
	if snap[0].Color != p.Color {
		t.Errorf("color = %v, want %v", snap[0].Color, p.Color)
	}
}

func TestParticleValidate(t *testing.T) {
	tests := []struct {
		name  string
		p     Particle
		valid bool
	}{
		{"ok", Particle{Mass: 1, Radius: 0.1, MaxLife: 1}, true},
		{"zero mass", Particle{Mass: 0, Radius: 0.1, MaxLife: 1}, false},
		{"negative radius", Particle{Mass: 1, Radius: -0.1, MaxLife: 1}, false},
		{"no life", Particle{Mass: 1, Radius: 0.1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err == nil) != tt.valid {
				t.Errorf("Validate() = %v, valid=%v", err, tt.valid)
			}
		})
	}
}

func TestParticleExpired(t *testing.T) {
	p := Particle{Life: 1, MaxLife: 2, Size: 1}
	if p.Expired(0.5) {
		t.Error("young particle should not be expired")
	}
	p.Life = 2
	if !p.Expired(0.5) {
		t.Error("life == maxLife should expire")
	}
	p.Life, p.Size = 0, 0.4
	if !p.Expired(0.5) {
		t.Error("undersized particle should expire")
	}
}
