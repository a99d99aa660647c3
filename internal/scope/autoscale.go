package scope

// MarginPolicy controls how display headroom is added around the observed
// amplitude extrema. When the observed range exceeds RangeThreshold the
// margin is range/Divisor, otherwise the Fixed margin applies. The values
// are policy data rather than hard-coded logic so boundary behavior can be
// exercised in tests.
type MarginPolicy struct {
	RangeThreshold float64
	Divisor        float64
	Fixed          float64
}

// DefaultMarginPolicy adds 10% headroom for ranges above 10 units and one
// full unit for anything smaller.
var DefaultMarginPolicy = MarginPolicy{
	RangeThreshold: 10,
	Divisor:        10,
	Fixed:          1,
}

func (p MarginPolicy) margin(ymin, ymax float64) float64 {
	if ymax-ymin > p.RangeThreshold {
		return (ymax - ymin) / p.Divisor
	}
	return p.Fixed
}

// Bounds applies the margin to observed extrema, returning the display
// range.
func (p MarginPolicy) Bounds(ymin, ymax float64) (lo, hi float64) {
	m := p.margin(ymin, ymax)
	return ymin - m, ymax + m
}

// autoscale tracks running amplitude extrema and derives display bounds.
// While enabled the bounds only ever grow; freezing keeps the last bounds
// static regardless of new data.
type autoscale struct {
	enabled bool
	primed  bool
	ymin    float64
	ymax    float64
	policy  MarginPolicy
}

func newAutoscale(policy MarginPolicy) *autoscale {
	return &autoscale{
		enabled: true,
		ymin:    0,
		ymax:    1,
		policy:  policy,
	}
}

// observe feeds the extrema of one drained batch. The first batch after
// (re)configuration seeds the bounds; later batches extend them
// monotonically. Ignored while frozen.
func (a *autoscale) observe(lo, hi float64) {
	if !a.enabled {
		return
	}
	if !a.primed {
		a.ymin, a.ymax = lo, hi
		a.primed = true
		return
	}
	if hi > a.ymax {
		a.ymax = hi
	}
	if lo < a.ymin {
		a.ymin = lo
	}
}

// reset seeds the bounds directly, replacing whatever was tracked before.
// Used when autoscale is re-enabled and the extrema of the whole retained
// series are recomputed.
func (a *autoscale) reset(lo, hi float64) {
	a.ymin, a.ymax = lo, hi
	a.primed = true
}

// bounds returns the display range including the margin.
func (a *autoscale) bounds() (lo, hi float64) {
	return a.policy.Bounds(a.ymin, a.ymax)
}
