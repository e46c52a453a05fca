// Package optim searches engine parameter grids for the best metric value.
package optim

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/particlefx/internal/sim"
)

// Axis is one tunable and the values to try for it.
type Axis struct {
	Name   string
	Values []float64
}

// ParseAxis reads "name=min:max:steps" into an evenly spaced axis.
func ParseAxis(s string) (Axis, error) {
	name, spec, ok := strings.Cut(s, "=")
	parts := strings.Split(spec, ":")
	if !ok || name == "" || len(parts) != 3 {
		return Axis{}, fmt.Errorf("axis %q: want name=min:max:steps", s)
	}
	lo, err1 := strconv.ParseFloat(parts[0], 64)
	hi, err2 := strconv.ParseFloat(parts[1], 64)
	n, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || n < 1 {
		return Axis{}, fmt.Errorf("axis %q: want name=min:max:steps", s)
	}
	return Linspace(name, lo, hi, n), nil
}

func Linspace(name string, lo, hi float64, n int) Axis {
	a := Axis{Name: name, Values: make([]float64, n)}
	for i := range a.Values {
		if n == 1 {
			a.Values[i] = lo
			continue
		}
		a.Values[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return a
}

type GridSearch struct {
	axes     []Axis
	metric   string
	maximize bool
}

// NewGridSearch minimises metric over the cartesian product of axes, or
// maximises it when maximize is set.
func NewGridSearch(metric string, maximize bool, axes ...Axis) *GridSearch {
	return &GridSearch{axes: axes, metric: metric, maximize: maximize}
}

// Outcome is the best point found and how many points were evaluated.
type Outcome struct {
	Params    map[string]float64
	Value     float64
	Evaluated int
}

// Search runs one simulation per grid point. build must return a fresh
// engine with the given params applied and its metrics attached.
func (g *GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (*sim.Engine, error),
	cfg sim.RunConfig,
) (*Outcome, error) {
	out := &Outcome{Value: math.Inf(1)}
	if g.maximize {
		out.Value = math.Inf(-1)
	}
	if err := g.searchRecursive(ctx, 0, map[string]float64{}, build, cfg, out); err != nil {
		return nil, err
	}
	if out.Params == nil {
		return nil, fmt.Errorf("metric %q was never reported", g.metric)
	}
	return out, nil
}

func (g *GridSearch) better(v, best float64) bool {
	if g.maximize {
		return v > best
	}
	return v < best
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build func(map[string]float64) (*sim.Engine, error),
	cfg sim.RunConfig,
	out *Outcome,
) error {
	if depth == len(g.axes) {
		eng, err := build(current)
		if err != nil {
			return err
		}
		result, err := eng.Run(ctx, cfg)
		if err != nil {
			return err
		}
		out.Evaluated++

		val, ok := result.Metrics[g.metric]
		if ok && !math.IsNaN(val) && (out.Params == nil || g.better(val, out.Value)) {
			out.Value = val
			out.Params = make(map[string]float64, len(current))
			for k, v := range current {
				out.Params[k] = v
			}
		}
		return nil
	}

	axis := g.axes[depth]
	for _, val := range axis.Values {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[axis.Name] = val

		if err := g.searchRecursive(ctx, depth+1, next, build, cfg, out); err != nil {
			return err
		}
	}
	return nil
}
