// Package checked provides overflow-reporting arithmetic for unsigned
// quantities such as money (cents) and stock counts. Callers must treat a
// false result as a hard failure; values are never wrapped or clamped.
package checked

// Add returns a+b and reports whether the sum fits in uint64.
func Add(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// Sub returns a-b and reports whether the subtraction underflows.
func Sub(a, b uint64) (uint64, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

// Mul returns a*b and reports whether the product fits in uint64.
func Mul(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	product := a * b
	if product/a != b {
		return 0, false
	}
	return product, true
}
