package gallery

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatBytes renders n with 1024-based units, rounded to two decimals with
// trailing zeros dropped: 0 -> "0 Bytes", 1536 -> "1.5 KB".
// Values of a terabyte and above stay in GB.
func FormatBytes(n int64) string {
	if n == 0 {
		return "0 Bytes"
	}

	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	v := float64(n)
	i := 0
	for v >= 1024 && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*100) / 100
	return sign + strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}

// FormatDate renders t as a short date, e.g. "Mar 9, 2024".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// FormatDimensions renders a size as "W×H".
func FormatDimensions(width, height int) string {
	return fmt.Sprintf("%d×%d", width, height)
}

// ReductionPercent is how much smaller converted is than original, in
// percent. It is negative when the output grew and 0 for an empty original.
func ReductionPercent(original, converted int) float64 {
	if original <= 0 {
		return 0
	}
	return (1 - float64(converted)/float64(original)) * 100
}
