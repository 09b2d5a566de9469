package tui

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

var suffixes = [...]string{"", "K", "M", "B", "T", "Qa", "Qi", "Sx", "Sp", "Oc", "No", "Dc"}

// FormatNumber renders n with a thousands suffix and five significant digits
// Below 1000 the value is floored; beyond the last suffix it falls back to exponent form
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 0):
		if n < 0 {
			return "-∞"
		}
		return "∞"
	case n < 0:
		return "-" + FormatNumber(-n)
	case n < 1000:
		return strconv.FormatFloat(math.Floor(n), 'f', 0, 64)
	}

	idx := int(math.Log10(n) / 3)
	short := roundSig(n/math.Pow(1000, float64(idx)), 5)
	if short >= 1000 {
		idx++
		short = roundSig(short/1000, 5)
	}
	if idx >= len(suffixes) {
		return strconv.FormatFloat(n, 'e', 3, 64)
	}
	if short == math.Trunc(short) {
		return strconv.FormatFloat(short, 'f', 0, 64) + suffixes[idx]
	}
	return strconv.FormatFloat(short, 'f', 3, 64) + suffixes[idx]
}

func roundSig(v float64, digits int) float64 {
	if v == 0 {
		return 0
	}
	scale := math.Pow(10, float64(digits-1-int(math.Floor(math.Log10(v)))))
	return math.Round(v*scale) / scale
}

// FormatDuration renders d as h:mm:ss, or m:ss under an hour
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int64(d / time.Second)
	h, m, sec := s/3600, s/60%60, s%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

func secondsDuration(s uint64) time.Duration {
	return time.Duration(s) * time.Second
}
