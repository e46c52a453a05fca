package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/particlefx/internal/dynamo"
)

// spriteScale converts sprite sizes, tuned as screen pixels, to world units.
const spriteScale = 0.005

func toVec(v dynamo.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v[0]), float32(v[1]), float32(v[2]))
}

func toColor(rgba [4]float64) rl.Color {
	c := func(v float64) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return rl.NewColor(c(rgba[0]), c(rgba[1]), c(rgba[2]), c(rgba[3]))
}

// RenderParticles draws each sprite as a glow billboard with a solid core.
func (a *App) RenderParticles() {
	for _, s := range a.Eng.Snapshot() {
		pos := toVec(dynamo.Vec3(s.Position))
		r := float32(s.Size * spriteScale)
		col := toColor(s.Color)
		rl.DrawBillboard(a.Camera, a.ParticleTex, pos, r*4, rl.ColorAlpha(col, 0.35))
		rl.DrawSphere(pos, r, col)
	}
}

func (a *App) RenderBounds() {
	b := a.Eng.Bounds()
	size := b.Size()
	rl.DrawCubeWires(toVec(b.Center()), float32(size[0]), float32(size[1]), float32(size[2]), rl.ColorAlpha(rl.Gray, 0.5))

	floor := float32(b.Min[1])
	c := b.Center()
	for i := -4; i <= 4; i++ {
		x := float32(c[0] + float64(i)*size[0]/8)
		z := float32(c[2] + float64(i)*size[2]/8)
		rl.DrawLine3D(rl.NewVector3(x, floor, float32(b.Min[2])), rl.NewVector3(x, floor, float32(b.Max[2])), ColGrid)
		rl.DrawLine3D(rl.NewVector3(float32(b.Min[0]), floor, z), rl.NewVector3(float32(b.Max[0]), floor, z), ColGrid)
	}
}
