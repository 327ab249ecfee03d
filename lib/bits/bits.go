package bits

// References:
// https://graphics.stanford.edu/~seander/bithacks.html#RoundUpPowerOf2

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// RoundupPowOf2 returns the smallest power of two that is greater than
// or equal to x, by smearing the highest set bit rightwards.
func RoundupPowOf2[T integer](x T) T {
	if x <= 1 {
		return 1
	}
	n := uint64(x) - 1
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return T(n + 1)
}

// RoundupPowOf2ByCeil is the shift-by-log variant of RoundupPowOf2.
func RoundupPowOf2ByCeil[T integer](x T) T {
	return T(1) << CeilPowOf2(x)
}

// RoundupPowOf2ByLoop is the doubling-loop variant of RoundupPowOf2.
func RoundupPowOf2ByLoop[T integer](x T) T {
	p := T(1)
	for p < x {
		p <<= 1
	}
	return p
}

// CeilPowOf2 returns ceil(log2(x)), i.e. the exponent of the smallest
// power of two that is greater than or equal to x.
func CeilPowOf2[T integer](x T) uint8 {
	if x <= 1 {
		return 0
	}
	n := uint64(x) - 1
	c := uint8(0)
	for n > 0 {
		n >>= 1
		c++
	}
	return c
}
