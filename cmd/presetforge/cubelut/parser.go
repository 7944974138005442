package cubelut

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// SampleLimit is how many data rows contribute to a tone shift. The sums
// are always divided by SampleLimit, so LUTs with fewer rows produce an
// attenuated shift.
const SampleLimit = 100

// headerKeywords mark lines that are not grid samples.
var headerKeywords = []string{"TITLE", "LUT_3D_SIZE", "DOMAIN"}

// IsHeader reports whether the trimmed line starts with a header keyword.
// DOMAIN_MIN and DOMAIN_MAX are covered by DOMAIN.
func IsHeader(line string) bool {
	line = strings.TrimSpace(line)
	for _, kw := range headerKeywords {
		if strings.HasPrefix(line, kw) {
			return true
		}
	}
	return false
}

// Sample is one grid row in R, G, B order.
type Sample struct {
	R, G, B float64
}

// ReadSamples returns up to limit data rows from r. Blank and header lines
// are skipped; rows past the limit are not read.
func ReadSamples(r io.Reader, limit int) ([]Sample, error) {
	var samples []Sample
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for len(samples) < limit && scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || IsHeader(line) {
			continue
		}
		s, err := parseSample(line)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: line, Err: err}
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Line: lineNo + 1, Err: err}
	}
	return samples, nil
}

func parseSample(line string) (Sample, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Sample{}, fmt.Errorf("expect 3 values, got %d", len(fields))
	}
	var v [3]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Sample{}, err
		}
		v[i] = x
	}
	return Sample{R: v[0], G: v[1], B: v[2]}, nil
}

// ShiftFromSamples sums each channel and divides by SampleLimit. No samples
// gives IdentityShift.
func ShiftFromSamples(samples []Sample) ToneShift {
	if len(samples) == 0 {
		return IdentityShift
	}
	var sum Sample
	for _, s := range samples {
		sum.R += s.R
		sum.G += s.G
		sum.B += s.B
	}
	return ToneShift{
		R: sum.R / SampleLimit,
		G: sum.G / SampleLimit,
		B: sum.B / SampleLimit,
	}
}

// Extract reads .cube text and reduces it to a tone shift.
func Extract(r io.Reader) (ToneShift, error) {
	samples, err := ReadSamples(r, SampleLimit)
	if err != nil {
		return ToneShift{}, err
	}
	return ShiftFromSamples(samples), nil
}

// ExtractString is Extract over in-memory contents.
func ExtractString(contents string) (ToneShift, error) {
	return Extract(strings.NewReader(contents))
}

// ExtractFile opens path and extracts its tone shift. A missing file
// yields an error wrapping ErrNotFound.
func ExtractFile(path string) (ToneShift, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ToneShift{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return ToneShift{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return ToneShift{}, err
	}
	if info.IsDir() {
		return ToneShift{}, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	shift, err := Extract(file)
	if err != nil {
		return ToneShift{}, fmt.Errorf("%s: %w", path, err)
	}
	return shift, nil
}
