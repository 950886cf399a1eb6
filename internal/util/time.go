package util

import (
	"math"
	"time"
)

// FromUnixSeconds converts fractional epoch seconds, as Reddit reports them, to UTC.
func FromUnixSeconds(sec float64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}
