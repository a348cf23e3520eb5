package heightfield

import (
	"fmt"
)

// CurveKey is one control point of a Curve.
type CurveKey struct {
	T float64 `yaml:"t"`
	V float64 `yaml:"v"`
}

// Curve is a piecewise-linear remap applied to normalized heights.
// An empty curve is the identity.
type Curve struct {
	Keys []CurveKey `yaml:"keys"`
}

// Validate requires keys in strictly ascending T.
func (c Curve) Validate() error {
	for i := 1; i < len(c.Keys); i++ {
		if c.Keys[i].T <= c.Keys[i-1].T {
			return fmt.Errorf("%w: curve keys must ascend, key %d t=%v after t=%v",
				ErrInvalidSettings, i, c.Keys[i].T, c.Keys[i-1].T)
		}
	}
	return nil
}

// Evaluate returns the curve value at t, holding the end values outside the keyed range.
func (c Curve) Evaluate(t float64) float64 {
	keys := c.Keys
	switch len(keys) {
	case 0:
		return t
	case 1:
		return keys[0].V
	}
	if t <= keys[0].T {
		return keys[0].V
	}
	last := keys[len(keys)-1]
	if t >= last.T {
		return last.V
	}
	for i := 1; i < len(keys); i++ {
		if t <= keys[i].T {
			a, b := keys[i-1], keys[i]
			f := (t - a.T) / (b.T - a.T)
			return a.V + (b.V-a.V)*f
		}
	}
	return last.V
}
