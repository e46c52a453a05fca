package export

import (
	"strings"
	"testing"

	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/viz"
)

func TestSnapshotToSVG(t *testing.T) {
	snap := dynamo.Snapshot{
		{ID: 1, Position: [3]float64{0, 0, 1}, Color: [4]float64{1, 0, 0, 1}, Size: 10},
		{ID: 2, Position: [3]float64{-2, 2, -1}, Color: [4]float64{0, 1, 0, 0.5}, Size: 6},
	}
	svg := SnapshotToSVG(snap, dynamo.DefaultBounds(), 400, 400)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not a complete svg document")
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("got %d circles, want 2", n)
	}
	if !strings.Contains(svg, `cx="200.0" cy="200.0" r="5.0" fill="rgb(255,0,0)"`) {
		t.Error("centre sprite not at the image centre")
	}
	if !strings.Contains(svg, `cx="0.0" cy="0.0" r="3.0" fill="rgb(0,255,0)" fill-opacity="0.50"`) {
		t.Error("corner sprite misplaced")
	}
	if strings.Index(svg, "rgb(0,255,0)") > strings.Index(svg, "rgb(255,0,0)") {
		t.Error("sprites should be drawn back to front")
	}
}

func TestSnapshotToSVGEmpty(t *testing.T) {
	svg := SnapshotToSVG(nil, dynamo.DefaultBounds(), 100, 50)
	if strings.Contains(svg, "<circle") {
		t.Error("empty snapshot drew sprites")
	}
}

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 2) != "" {
		t.Error("nil canvas should render nothing")
	}
	c := viz.NewCanvas(2, 1)
	c.Plot(0, 0, "#ff00ff")
	c.Set(3, 3)
	svg := CanvasToSVG(c, 2)
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("got %d dots, want 2", n)
	}
	if !strings.Contains(svg, `fill="#ff00ff"`) {
		t.Error("cell colour missing")
	}
}

func TestSeriesToSVG(t *testing.T) {
	if SeriesToSVG([]float64{1}, []float64{1}, 10, 10, "#fff") != "" {
		t.Error("single point should render nothing")
	}
	svg := SeriesToSVG([]float64{0, 1, 2}, []float64{0, 5, 5}, 120, 60, "#00ffcc")
	if strings.Count(svg, " L") != 2 {
		t.Errorf("expected 2 line segments in %q", svg)
	}
	if !strings.Contains(svg, `stroke="#00ffcc"`) {
		t.Error("stroke colour missing")
	}
}
