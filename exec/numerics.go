package exec

import "math"

func I32DivS(i1, i2 int32) int32 {
	if i1 == math.MinInt32 && i2 == -1 {
		panic(TrapIntegerOverflow)
	}
	return i1 / i2
}

func I64DivS(i1, i2 int64) int64 {
	if i1 == math.MinInt64 && i2 == -1 {
		panic(TrapIntegerOverflow)
	}
	return i1 / i2
}

// I32RemS returns the signed remainder. MinInt32 % -1 is 0.
func I32RemS(i1, i2 int32) int32 {
	if i2 == -1 {
		return 0
	}
	return i1 % i2
}

// I64RemS returns the signed remainder. MinInt64 % -1 is 0.
func I64RemS(i1, i2 int64) int64 {
	if i2 == -1 {
		return 0
	}
	return i1 % i2
}
