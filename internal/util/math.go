package util

func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	return Max(lo, Min(n, hi))
}
