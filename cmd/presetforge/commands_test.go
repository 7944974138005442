package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/jszwec/csvutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presetforge/cmd/presetforge/cubelut"
	"presetforge/cmd/presetforge/imaging"
)

func TestParseColor(t *testing.T) {
	c, err := parseColor("128, 0,255")
	require.NoError(t, err)
	assert.Equal(t, cubelut.ColorTriplet{R: 128, G: 0, B: 255}, c)

	for _, bad := range []string{"", "1,2", "1,2,3,4", "a,b,c", "256,0,0", "-1,0,0"} {
		_, err := parseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestRunGenerateStdout(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runGenerate(&out, "", "", 2, cubelut.ColorTriplet{R: 128, G: 0, B: 255}))
	expected, err := cubelut.Render("", 2, cubelut.ColorTriplet{R: 128, G: 0, B: 255})
	require.NoError(t, err)
	assert.Equal(t, expected, out.String())
}

func writeTestPNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestGenerateExtractApply(t *testing.T) {
	dir := t.TempDir()
	lut := filepath.Join(dir, "warm.cube")
	require.NoError(t, runGenerate(nil, lut, "", 2, cubelut.ColorTriplet{R: 255, G: 255, B: 255}))

	var out bytes.Buffer
	require.NoError(t, runExtract(&out, []string{lut}))
	var rows []shiftRow
	require.NoError(t, csvutil.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, lut, rows[0].File)
	assert.InDelta(t, 0.04, rows[0].RShift, 1e-9)

	in := filepath.Join(dir, "in.png")
	writeTestPNG(t, in, color.NRGBA{R: 100, G: 200, B: 250, A: 255})
	dst := filepath.Join(dir, "out.png")
	require.NoError(t, runApply(lut, in, dst))

	buf, err := decodeFile(dst)
	require.NoError(t, err)
	b, g, r := buf.At(1, 1)
	assert.Equal(t, uint8(10), b) // 250 * 0.04
	assert.Equal(t, uint8(8), g)  // 200 * 0.04
	assert.Equal(t, uint8(4), r)  // 100 * 0.04
}

func TestRunApplyErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writeTestPNG(t, in, color.NRGBA{A: 255})

	err := runApply(filepath.Join(dir, "none.cube"), in, filepath.Join(dir, "o.png"))
	assert.ErrorIs(t, err, cubelut.ErrNotFound)

	err = runApply(filepath.Join(dir, "none.cube"), in, filepath.Join(dir, "o.gif"))
	assert.Error(t, err)

	junk := filepath.Join(dir, "junk.png")
	require.NoError(t, os.WriteFile(junk, []byte("junk"), 0644))
	err = runApply(filepath.Join(dir, "none.cube"), junk, filepath.Join(dir, "o.png"))
	assert.ErrorIs(t, err, imaging.ErrInvalidImage)
}

func TestRunAnalyze(t *testing.T) {
	in := filepath.Join(t.TempDir(), "in.png")
	writeTestPNG(t, in, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	var out bytes.Buffer
	require.NoError(t, runAnalyze(&out, in))
	var rows []histogramRow
	require.NoError(t, csvutil.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, imaging.Bins)
	assert.InDelta(t, 1.0/3, rows[10].Red, 1e-12)
	assert.InDelta(t, 1.0/3, rows[20].Green, 1e-12)
	assert.InDelta(t, 1.0/3, rows[30].Blue, 1e-12)
	assert.Zero(t, rows[0].Red)
}

func TestGenerateSizeFlag(t *testing.T) {
	restoreLogging(t)
	dir := t.TempDir()
	lut := filepath.Join(dir, "small.cube")

	rootCmd.SetArgs([]string{"generate", "--env-file", "", "--lut-size", "9", "--color", "1,2,3", "--size", "2", "--out", lut})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())

	b, err := os.ReadFile(lut)
	require.NoError(t, err)
	assert.Contains(t, string(b), "LUT_3D_SIZE 2\n")
}
