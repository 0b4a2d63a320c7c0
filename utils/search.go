package utils

import "math"

// FindClosestIndex returns the index of the item in a sorted slice that is
// closest to target. When two items are equally close the earlier index wins.
func FindClosestIndex(target float64, items []float64) int {
	if len(items) == 0 {
		return -1
	}
	best := 0
	bestDistance := math.Abs(items[0] - target)
	for i := 1; i < len(items); i++ {
		distance := math.Abs(items[i] - target)
		if distance < bestDistance {
			best = i
			bestDistance = distance
		}
	}
	return best
}

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
