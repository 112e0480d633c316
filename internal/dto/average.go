package dto

import "math"

// Finite returns a pointer to v, or nil when v is NaN or infinite so that it
// serialises as JSON null.
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FinitePtr applies Finite to an optional value.
func FinitePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Finite(*v)
}

// Rounded returns the nearest whole percentage, or nil when v is missing or non-finite.
func Rounded(v *float64) *int {
	f := FinitePtr(v)
	if f == nil {
		return nil
	}
	r := int(math.Round(*f))
	return &r
}
