package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3
		want Vec3
	}{
		{"zero", Vec3{}, Vec3{}},
		{"axis", Vec3{0, 3, 0}, Vec3{0, 1, 0}},
		{"diagonal", Vec3{3, 4, 0}, Vec3{0.6, 0.8, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
				}
			}
		})
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(Vec3{1, 2, 3}) {
		t.Error("expected finite vector")
	}
	if IsFinite(Vec3{1, math.NaN(), 3}) {
		t.Error("NaN component should not be finite")
	}
	if IsFinite(Vec3{math.Inf(-1), 0, 0}) {
		t.Error("Inf component should not be finite")
	}
}

func TestBoundsValidate(t *testing.T) {
	tests := []struct {
		name   string
		bounds Bounds
		axis   int
		valid  bool
	}{
		{"default", DefaultBounds(), 0, true},
		{"flat x", Bounds{Min: Vec3{1, 0, 0}, Max: Vec3{1, 1, 1}}, 0, false},
		{"inverted y", Bounds{Min: Vec3{0, 2, 0}, Max: Vec3{1, 1, 1}}, 1, false},
		{"nan z", Bounds{Min: Vec3{0, 0, math.NaN()}, Max: Vec3{1, 1, 1}}, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bounds.Validate()
			if tt.valid {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidBounds) {
				t.Fatalf("expected ErrInvalidBounds, got %v", err)
			}
			var be *BoundsError
			if !errors.As(err, &be) || be.Axis != tt.axis {
				t.Errorf("expected axis %d, got %+v", tt.axis, be)
			}
		})
	}
}

func TestBoundsContains(t *testing.T) {
	b := DefaultBounds()
	if !b.Contains(Vec3{0, 0, 0}, 0.1, 0) {
		t.Error("origin should be inside")
	}
	if b.Contains(Vec3{1.95, 0, 0}, 0.1, 0) {
		t.Error("sphere crossing +x face should be outside")
	}
	if !b.Contains(Vec3{1.9, 0, 0}, 0.1, 1e-9) {
		t.Error("sphere touching +x face should be inside")
	}
}

func TestSnapshotCentroid(t *testing.T) {
	var empty Snapshot
	if c := empty.Centroid(); c != (Vec3{}) {
		t.Errorf("empty centroid = %v", c)
	}

	s := Snapshot{{Position: [3]float64{1, 0, 0}}, {Position: [3]float64{-1, 2, 0}}}
	if c := s.Centroid(); c != (Vec3{0, 1, 0}) {
		t.Errorf("centroid = %v, want (0,1,0)", c)
	}
}
