package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/particlefx/internal/dynamo"
)

// Camera orbits the origin and projects world points onto the canvas.
type Camera struct {
	Distance         float64
	Near             float64
	RotX, RotY, RotZ float64
	Zoom             float64
	// Scale is how many world units fit across the shorter canvas side.
	Scale float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 8, Near: 0.1, Zoom: 1.0, Scale: 4.4}
}

// FitCamera frames b with a slight three-quarter view.
func FitCamera(b dynamo.Bounds) *Camera {
	size := b.Size()
	cam := NewCamera()
	cam.Scale = math.Max(size[0], size[1]) * 1.1
	cam.Distance = math.Max(size[2]*2, 1)
	cam.RotY, cam.RotX = 0.5, 0.3
	return cam
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }
func (c *Camera) Reset()            { c.RotX, c.RotY, c.RotZ, c.Zoom = 0, 0, 0, 1 }

// RotatePoint applies the X, then Y, then Z rotation.
func (c *Camera) RotatePoint(p dynamo.Vec3) dynamo.Vec3 {
	rot := mgl64.Rotate3DZ(c.RotZ).Mul3(mgl64.Rotate3DY(c.RotY)).Mul3(mgl64.Rotate3DX(c.RotX))
	return rot.Mul3x1(p)
}

// Project maps p to sub-pixel coordinates on a sw x sh dot canvas and
// returns the depth along the view axis and whether the point is on screen.
func (c *Camera) Project(p dynamo.Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.RotatePoint(p).Mul(c.Zoom)
	dist := c.Distance
	if rot[2] >= dist-c.Near {
		return 0, 0, 0, false
	}
	persp := dist / (dist - rot[2])
	pScale := math.Min(float64(sw), float64(sh)) / c.Scale
	sx := int(rot[0]*persp*pScale) + sw/2
	sy := int(-rot[1]*persp*pScale) + sh/2
	return sx, sy, rot[2], sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End dynamo.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe                { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e dynamo.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe far-to-near.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.DotsWide(), c.DotsHigh()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, cw, ch)
		x2, y2, d2, v2 := cam.Project(e.End, cw, ch)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		c.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
}

// BoxWireframe outlines the simulation volume, centred on the origin.
func BoxWireframe(b dynamo.Bounds) *Wireframe {
	w, h := NewWireframe(), b.Size().Mul(0.5)
	v := make([]dynamo.Vec3, 8)
	for i := range v {
		v[i] = dynamo.Vec3{h[0], h[1], h[2]}
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) == 0 {
				v[i][axis] = -h[axis]
			}
		}
	}
	for i := range v {
		for axis := 0; axis < 3; axis++ {
			if j := i | 1<<axis; j != i {
				w.AddEdge(v[i], v[j])
			}
		}
	}
	return w
}

// RenderSnapshot plots each sprite as a coloured disc, viewed from cam
// around center.
func RenderSnapshot(c *Canvas, cam *Camera, snap dynamo.Snapshot, center dynamo.Vec3) {
	cw, ch := c.DotsWide(), c.DotsHigh()
	for _, s := range snap {
		x, y, _, ok := cam.Project(dynamo.Vec3(s.Position).Sub(center), cw, ch)
		if !ok {
			continue
		}
		r := int(math.Round(s.Size / 6 * cam.Zoom))
		c.Disc(x, y, r, SpriteColor(s.Color))
	}
}
