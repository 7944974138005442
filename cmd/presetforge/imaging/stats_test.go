package imaging

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"presetforge/cmd/presetforge/cubelut"
)

func TestMean(t *testing.T) {
	buf := NewBuffer(2, 1)
	buf.Set(0, 0, 10, 20, 255)
	buf.Set(1, 0, 11, 21, 0)

	assert.Equal(t, cubelut.ColorTriplet{R: 127, G: 20, B: 10}, Mean(buf))
	assert.Equal(t, cubelut.ColorTriplet{}, Mean(NewBuffer(0, 0)))
}

func TestHistogram(t *testing.T) {
	buf := NewBuffer(2, 2)
	buf.Set(0, 0, 0, 5, 255)
	buf.Set(1, 0, 0, 5, 255)
	buf.Set(0, 1, 0, 6, 255)
	buf.Set(1, 1, 1, 6, 0)

	h := ComputeHistogram(buf)
	assert.InDelta(t, 3.0/12, h.Blue[0], 1e-12)
	assert.InDelta(t, 1.0/12, h.Blue[1], 1e-12)
	assert.InDelta(t, 2.0/12, h.Green[5], 1e-12)
	assert.InDelta(t, 2.0/12, h.Green[6], 1e-12)
	assert.InDelta(t, 3.0/12, h.Red[255], 1e-12)
	assert.InDelta(t, 1.0/12, h.Red[0], 1e-12)

	var sum float64
	for _, v := range h.Red {
		sum += v
	}
	assert.InDelta(t, 1.0/3, sum, 1e-12)
}
