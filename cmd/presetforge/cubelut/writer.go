package cubelut

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Generate writes a complete .cube file for a size^3 grid toned toward
// dominant. Blue is the outer loop and red varies fastest.
func Generate(w io.Writer, title string, size int, dominant ColorTriplet) error {
	if size < 2 {
		return fmt.Errorf("%w: %d (must be at least 2)", ErrInvalidGridSize, size)
	}
	if err := ValidateTitle(title); err != nil {
		return err
	}
	if title == "" {
		title = DefaultTitle
	}
	dominant = dominant.Clamped()

	writer := bufio.NewWriter(w)

	// Write LUT header
	fmt.Fprintf(writer, "TITLE \"%s\"\n", title)
	fmt.Fprintf(writer, "LUT_3D_SIZE %d\n", size)
	writer.WriteString("DOMAIN_MIN 0.0 0.0 0.0\n")
	writer.WriteString("DOMAIN_MAX 1.0 1.0 1.0\n")

	// Per channel tone tables, indexed by grid position
	rTone := toneTable(size, dominant.R)
	gTone := toneTable(size, dominant.G)
	bTone := toneTable(size, dominant.B)

	line := make([]byte, 0, 32)
	for b := 0; b < size; b++ {
		for g := 0; g < size; g++ {
			for r := 0; r < size; r++ {
				line = appendSample(line[:0], rTone[r], gTone[g], bTone[b])
				if _, err := writer.Write(line); err != nil {
					return err
				}
			}
		}
	}

	return writer.Flush()
}

// Render returns the .cube contents as a string.
func Render(title string, size int, dominant ColorTriplet) (string, error) {
	var sb strings.Builder
	if err := Generate(&sb, title, size, dominant); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteFile generates a LUT into a new file at path. An existing file is
// never overwritten, and a partial file is removed on failure.
func WriteFile(path, title string, size int, dominant ColorTriplet) error {
	if size < 2 {
		return fmt.Errorf("%w: %d (must be at least 2)", ErrInvalidGridSize, size)
	}
	if err := ValidateTitle(title); err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if err := Generate(file, title, size, dominant); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}

// tone returns min(1, index/(size-1) * channel/255).
func tone(index, size, channel int) float64 {
	v := float64(index) / float64(size-1)
	return math.Min(1.0, v*(float64(channel)/255))
}

func toneTable(size, channel int) []float64 {
	table := make([]float64, size)
	for i := range table {
		table[i] = tone(i, size, channel)
	}
	return table
}

// appendSample formats one "r g b" row with six decimals.
func appendSample(dst []byte, r, g, b float64) []byte {
	dst = strconv.AppendFloat(dst, r, 'f', 6, 64)
	dst = append(dst, ' ')
	dst = strconv.AppendFloat(dst, g, 'f', 6, 64)
	dst = append(dst, ' ')
	dst = strconv.AppendFloat(dst, b, 'f', 6, 64)
	return append(dst, '\n')
}
