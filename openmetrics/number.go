package openmetrics

import "strconv"

// Number is a sample value: either a signed 64-bit integer or a
// double-precision float. The distinction is preserved so that integer
// statistics render without a decimal point.
type Number struct {
	isFloat bool
	intVal  int64
	fltVal  float64
}

// Int creates an integer Number
func Int(v int64) Number {
	return Number{intVal: v}
}

// Float creates a floating-point Number
func Float(v float64) Number {
	return Number{isFloat: true, fltVal: v}
}

// IsFloat reports whether the number carries a floating-point value
func (n Number) IsFloat() bool {
	return n.isFloat
}

// IntValue returns the integer value (0 for float numbers)
func (n Number) IntValue() int64 {
	return n.intVal
}

// FloatValue returns the value as a float64 (converting integers)
func (n Number) FloatValue() float64 {
	if n.isFloat {
		return n.fltVal
	}
	return float64(n.intVal)
}

// String renders the number in its minimal, locale-free textual form
// (the representation used on the OpenMetrics wire)
func (n Number) String() string {
	if n.isFloat {
		return strconv.FormatFloat(n.fltVal, 'g', -1, 64)
	}
	return strconv.FormatInt(n.intVal, 10)
}
