package imaging

import "presetforge/cmd/presetforge/cubelut"

// Bins is the number of histogram bins per channel.
const Bins = 256

// Mean returns the average color of buf in R, G, B order, each channel
// truncated toward zero. An empty buffer is black.
func Mean(buf *Buffer) cubelut.ColorTriplet {
	n := len(buf.Pix) / 3
	if n == 0 {
		return cubelut.ColorTriplet{}
	}
	var sum [3]uint64
	for i := 0; i+2 < len(buf.Pix); i += 3 {
		sum[Blue] += uint64(buf.Pix[i+Blue])
		sum[Green] += uint64(buf.Pix[i+Green])
		sum[Red] += uint64(buf.Pix[i+Red])
	}
	return cubelut.ColorTriplet{
		R: int(float64(sum[Red]) / float64(n)),
		G: int(float64(sum[Green]) / float64(n)),
		B: int(float64(sum[Blue]) / float64(n)),
	}
}

// Histogram holds per channel bin frequencies.
type Histogram struct {
	Red, Green, Blue [Bins]float64
}

// ComputeHistogram counts each 8-bit value per channel. Counts are divided
// by the total number of samples (Width*Height*3), so each channel sums to
// one third.
func ComputeHistogram(buf *Buffer) Histogram {
	var h Histogram
	total := len(buf.Pix)
	if total == 0 {
		return h
	}
	var counts [3][Bins]uint64
	for i := 0; i+2 < len(buf.Pix); i += 3 {
		counts[Blue][buf.Pix[i+Blue]]++
		counts[Green][buf.Pix[i+Green]]++
		counts[Red][buf.Pix[i+Red]]++
	}
	for bin := 0; bin < Bins; bin++ {
		h.Red[bin] = float64(counts[Red][bin]) / float64(total)
		h.Green[bin] = float64(counts[Green][bin]) / float64(total)
		h.Blue[bin] = float64(counts[Blue][bin]) / float64(total)
	}
	return h
}
