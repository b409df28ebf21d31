// Package assets produces raster theme images: density variants of a base
// bitmap, PNG/JPEG encoding and 9-piece border slicing.
package assets

import (
	"fmt"
	"slices"

	"cn1css/config"
)

// Bucket describes a step of the density ladder.
type Bucket struct {
	Density config.Density
	// nominal screen density
	DPI int
	// screen width images are designed for
	ReferenceWidth int
	// runtime resource code of the density
	Code int
}

var ladder = [...]Bucket{
	{config.DensityVerylow, 60, 176, 10},
	{config.DensityLow, 120, 240, 20},
	{config.DensityMedium, 160, 320, 30},
	{config.DensityHigh, 240, 480, 40},
	{config.DensityVeryhigh, 320, 640, 50},
	{config.DensityHd, 480, 1080, 60},
	{config.Density560, 560, 1500, 65},
	{config.Density2hd, 640, 2000, 70},
	{config.Density4k, 1280, 2500, 80},
}

// BucketOf returns ladder step of the density.
func BucketOf(d config.Density) Bucket {
	if !d.IsValid() {
		panic(fmt.Sprintf("unexpected density %d", d))
	}
	return ladder[d]
}

// DensityForDPI returns the lowest bucket whose nominal DPI is not less than
// dpi, the highest bucket for anything above the ladder.
func DensityForDPI(dpi int) config.Density {
	for _, b := range ladder {
		if dpi <= b.DPI {
			return b.Density
		}
	}
	return ladder[len(ladder)-1].Density
}

// DensityForCode maps runtime resource code back to the bucket.
func DensityForCode(code int) (config.Density, bool) {
	for _, b := range ladder {
		if b.Code == code {
			return b.Density, true
		}
	}
	return 0, false
}

// InRange returns densities whose nominal DPI falls within [minDPI, maxDPI]
// in ascending order.
func InRange(minDPI, maxDPI int) []config.Density {
	var res []config.Density
	for _, b := range ladder {
		if b.DPI >= minDPI && b.DPI <= maxDPI {
			res = append(res, b.Density)
		}
	}
	return res
}

// Targets returns densities to generate: the ones in range plus the source
// density, sorted and without duplicates.
func Targets(minDPI, maxDPI int, source config.Density) []config.Density {
	res := InRange(minDPI, maxDPI)
	if !slices.Contains(res, source) {
		res = append(res, source)
		slices.Sort(res)
	}
	return res
}

// ScaleDim scales dimension designed for density from to density to.
func ScaleDim(dim int, from, to config.Density) int {
	if from == to {
		return dim
	}
	return max(1, dim*BucketOf(to).ReferenceWidth/BucketOf(from).ReferenceWidth)
}
