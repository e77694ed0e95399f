package flow

import "sort"

// ConversionFunc maps a Converter's inflow to outflow and back. Per
// spec §9's design note, conversion is a small closed set of concrete
// implementations rather than an arbitrary boxed closure: determinism
// and (future) serialization both want that. UserFunction is
// intentionally not implemented.
type ConversionFunc interface {
	OutFromIn(in Flow) Flow
	InFromOut(out Flow) Flow
}

// ConstantEfficiency is outflow = eta * inflow, eta in (0, 1].
type ConstantEfficiency struct {
	Eta float64
}

func (c ConstantEfficiency) OutFromIn(in Flow) Flow  { return in * Flow(c.Eta) }
func (c ConstantEfficiency) InFromOut(out Flow) Flow { return out / Flow(c.Eta) }

// Tabulated is a piecewise-linear (x=in, y=out) monotone table. The two
// directions must be mutual inverses up to Tolerance (spec §4.3.5); the
// caller is expected to have built the table that way.
type Tabulated struct {
	Points []struct{ X, Y Flow } // sorted by X ascending
}

// NewTabulated builds a Tabulated from (in, out) pairs, sorting by in.
func NewTabulated(pairs [][2]Flow) Tabulated {
	t := Tabulated{Points: make([]struct{ X, Y Flow }, len(pairs))}
	for i, p := range pairs {
		t.Points[i] = struct{ X, Y Flow }{X: p[0], Y: p[1]}
	}
	sort.Slice(t.Points, func(i, j int) bool { return t.Points[i].X < t.Points[j].X })
	return t
}

func (t Tabulated) OutFromIn(in Flow) Flow {
	return interp(t.Points, in, func(p struct{ X, Y Flow }) (Flow, Flow) { return p.X, p.Y })
}

func (t Tabulated) InFromOut(out Flow) Flow {
	return interp(t.Points, out, func(p struct{ X, Y Flow }) (Flow, Flow) { return p.Y, p.X })
}

func interp(points []struct{ X, Y Flow }, key Flow, axis func(struct{ X, Y Flow }) (Flow, Flow)) Flow {
	if len(points) == 0 {
		return 0
	}
	type kv struct{ k, v Flow }
	kvs := make([]kv, len(points))
	for i, p := range points {
		k, v := axis(p)
		kvs[i] = kv{k, v}
	}
	sort.Slice(kvs, func(i, j int) bool { return kvs[i].k < kvs[j].k })

	if key <= kvs[0].k {
		return kvs[0].v
	}
	last := kvs[len(kvs)-1]
	if key >= last.k {
		return last.v
	}
	for i := 1; i < len(kvs); i++ {
		if key <= kvs[i].k {
			lo, hi := kvs[i-1], kvs[i]
			if hi.k == lo.k {
				return lo.v
			}
			frac := float64((key - lo.k) / (hi.k - lo.k))
			return lo.v + Flow(frac)*(hi.v-lo.v)
		}
	}
	return last.v
}
