package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Vec3 = mgl64.Vec3

// Normalize returns v scaled to unit length. A zero-length vector yields the
// zero vector instead of NaNs.
func Normalize(v Vec3) Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

// IsFinite reports whether every component of v is a real number.
func IsFinite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Bounds is an axis-aligned box defining the simulation volume.
type Bounds struct {
	Min Vec3 `yaml:"min,flow" json:"min"`
	Max Vec3 `yaml:"max,flow" json:"max"`
}

// DefaultBounds is the [-2, 2] cube the effects were tuned for.
func DefaultBounds() Bounds {
	return Bounds{Min: Vec3{-2, -2, -2}, Max: Vec3{2, 2, 2}}
}

// Validate reports a *BoundsError when min is not strictly below max on an axis.
func (b Bounds) Validate() error {
	for axis := 0; axis < 3; axis++ {
		if !(b.Min[axis] < b.Max[axis]) {
			return &BoundsError{Axis: axis, Min: b.Min[axis], Max: b.Max[axis]}
		}
	}
	return nil
}

func (b Bounds) Size() Vec3   { return b.Max.Sub(b.Min) }
func (b Bounds) Center() Vec3 { return b.Min.Add(b.Max).Mul(0.5) }

// Contains reports whether a sphere of the given radius lies inside b, with
// tol slack on every face.
func (b Bounds) Contains(p Vec3, radius, tol float64) bool {
	for axis := 0; axis < 3; axis++ {
		if p[axis] < b.Min[axis]+radius-tol || p[axis] > b.Max[axis]-radius+tol {
			return false
		}
	}
	return true
}

// Sprite is the render-facing view of one particle after a tick.
type Sprite struct {
	ID       uint64     `msgpack:"id" json:"id"`
	Position [3]float64 `msgpack:"p" json:"p"`
	Color    [4]float64 `msgpack:"c" json:"c"`
	Size     float64    `msgpack:"s" json:"s"`
	Rotation float64    `msgpack:"r" json:"r"`
}

// Snapshot is the post-tick particle list. Engines hand out a fresh slice per
// tick, so holders never alias engine state.
type Snapshot []Sprite

// Centroid returns the mean sprite position, or the zero vector when empty.
func (s Snapshot) Centroid() Vec3 {
	if len(s) == 0 {
		return Vec3{}
	}
	var sum Vec3
	for _, sp := range s {
		sum = sum.Add(Vec3(sp.Position))
	}
	return sum.Mul(1 / float64(len(s)))
}
