package utils

import "strconv"

// FormatScore renders a score without trailing zeros ("7.5", "10").
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
