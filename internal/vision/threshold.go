package vision

import (
	"errors"
	"fmt"
)

// ErrInvertedRange is returned by Validate when a channel minimum exceeds its maximum.
var ErrInvertedRange = errors.New("threshold min exceeds max")

// ColorThreshold is a box in CIE L*a*b* space: L in 0..100, a and b in -128..127.
// Thresholds for different classes may overlap; a pixel can match several.
type ColorThreshold struct {
	LMin, LMax int
	AMin, AMax int
	BMin, BMax int
}

// Threshold builds a ColorThreshold from the six-tuple (lmin, lmax, amin, amax, bmin, bmax).
func Threshold(lmin, lmax, amin, amax, bmin, bmax int) ColorThreshold {
	return ColorThreshold{LMin: lmin, LMax: lmax, AMin: amin, AMax: amax, BMin: bmin, BMax: bmax}
}

// Contains reports whether the L*a*b* value lies inside the threshold (bounds inclusive).
func (t ColorThreshold) Contains(l, a, b float64) bool {
	return l >= float64(t.LMin) && l <= float64(t.LMax) &&
		a >= float64(t.AMin) && a <= float64(t.AMax) &&
		b >= float64(t.BMin) && b <= float64(t.BMax)
}

// Validate checks min <= max on every channel.
func (t ColorThreshold) Validate() error {
	switch {
	case t.LMin > t.LMax:
		return fmt.Errorf("L channel %d > %d: %w", t.LMin, t.LMax, ErrInvertedRange)
	case t.AMin > t.AMax:
		return fmt.Errorf("A channel %d > %d: %w", t.AMin, t.AMax, ErrInvertedRange)
	case t.BMin > t.BMax:
		return fmt.Errorf("B channel %d > %d: %w", t.BMin, t.BMax, ErrInvertedRange)
	}
	return nil
}

func (t ColorThreshold) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d, %d, %d)", t.LMin, t.LMax, t.AMin, t.AMax, t.BMin, t.BMax)
}
