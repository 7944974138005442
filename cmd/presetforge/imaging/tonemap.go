package imaging

import (
	"math"

	"presetforge/cmd/presetforge/cubelut"
)

// ApplyToneShift multiplies every channel by its gain and clamps to
// [0,255]. The R, G, B gains land on the buffer's Red, Green and Blue
// samples. src is not modified; a trailing partial pixel is copied as is.
func ApplyToneShift(src *Buffer, shift cubelut.ToneShift) *Buffer {
	out := src.Clone()

	var gain [3]float32
	gain[Blue] = float32(shift.B)
	gain[Green] = float32(shift.G)
	gain[Red] = float32(shift.R)

	for i := 0; i+2 < len(src.Pix); i += 3 {
		out.Pix[i+Blue] = scale(src.Pix[i+Blue], gain[Blue])
		out.Pix[i+Green] = scale(src.Pix[i+Green], gain[Green])
		out.Pix[i+Red] = scale(src.Pix[i+Red], gain[Red])
	}
	return out
}

// scale clamps v*gain to [0,255] and truncates.
func scale(v uint8, gain float32) uint8 {
	x := float32(v) * gain
	switch {
	case math.IsNaN(float64(x)) || x <= 0:
		return 0
	case x >= 255:
		return 255
	}
	return uint8(x)
}
