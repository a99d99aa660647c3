package app

import "math"

const (
	defaultMinPower = -120.0 // dB
	defaultMaxPower = 0.0    // dB

	// Below this count the percentiles are too coarse to trust.
	minimumBinCount = 20

	// The displayed range never collapses below this span.
	minimumSpanDB = 30
)

// PowerBounds is the dB range mapped onto the color scale.
type PowerBounds struct {
	Min float64
	Max float64
}

func defaultPowerBounds() PowerBounds {
	return PowerBounds{Min: defaultMinPower, Max: defaultMaxPower}
}

// powerBounds derives the color scale range from the 5th and 95th
// percentiles of all finite grid magnitudes, accumulated in 1 dB histogram
// bins. Outliers such as a single strong carrier therefore do not wash out
// the rest of the image. Non-finite magnitudes (silent bins) are ignored.
func powerBounds(rows [][]float64) PowerBounds {
	bins := make(map[int]uint64)
	minBin, maxBin := math.MaxInt32, math.MinInt32
	var total uint64

	for _, row := range rows {
		for _, p := range row {
			if math.IsInf(p, 0) || math.IsNaN(p) {
				continue
			}
			bin := int(math.Floor(p))
			bins[bin]++
			total++
			if bin < minBin {
				minBin = bin
			}
			if bin > maxBin {
				maxBin = bin
			}
		}
	}

	if total < minimumBinCount {
		return defaultPowerBounds()
	}

	target := total * 5 / 100

	var count uint64
	lo := minBin
	for bin := minBin; bin <= maxBin; bin++ {
		count += bins[bin]
		if count >= target {
			lo = bin
			break
		}
	}

	count = 0
	hi := maxBin
	for bin := maxBin; bin >= minBin; bin-- {
		count += bins[bin]
		if count >= target {
			hi = bin
			break
		}
	}

	if hi-lo < minimumSpanDB {
		center := (hi + lo) / 2
		lo = center - minimumSpanDB/2
		hi = center + minimumSpanDB/2
	}

	margin := (hi - lo) / 10
	return PowerBounds{Min: float64(lo - margin), Max: float64(hi + margin)}
}
