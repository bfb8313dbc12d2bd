package telemetry

import "sort"

// WindowStats summarizes tick durations (microseconds) over a window.
type WindowStats struct {
	Count  int     `csv:"count"`
	MeanUs float64 `csv:"mean_us"`
	P50Us  float64 `csv:"p50_us"`
	P90Us  float64 `csv:"p90_us"`
	MaxUs  float64 `csv:"max_us"`
}

// Percentile returns the p-th percentile (0..1) of a sorted slice using
// linear interpolation. An empty slice yields 0.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	pos := p * float64(n-1)
	lo := int(pos)
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// ComputeWindowStats builds summary statistics from raw duration samples.
func ComputeWindowStats(values []float64) WindowStats {
	if len(values) == 0 {
		return WindowStats{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	return WindowStats{
		Count:  len(sorted),
		MeanUs: sum / float64(len(sorted)),
		P50Us:  Percentile(sorted, 0.5),
		P90Us:  Percentile(sorted, 0.9),
		MaxUs:  sorted[len(sorted)-1],
	}
}
