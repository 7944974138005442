package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/jszwec/csvutil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"presetforge/cmd/presetforge/cubelut"
	"presetforge/cmd/presetforge/imaging"
	"presetforge/cmd/presetforge/server"
	"presetforge/cmd/presetforge/store"
)

var (
	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Write a .cube LUT toned toward a dominant color",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dominant, err := parseColor(generateColor)
			if err != nil {
				return err
			}
			size := cfg.LUTSize
			if cmd.Flags().Changed("size") {
				size = generateSize
			}
			return runGenerate(cmd.OutOrStdout(), generateOut, cfg.LUTTitle, size, dominant)
		},
	}
	generateColor string
	generateOut   string
	generateSize  int

	extractCmd = &cobra.Command{
		Use:   "extract <file.cube>...",
		Short: "Print the tone shift of each LUT as CSV",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.OutOrStdout(), args)
		},
	}

	applyCmd = &cobra.Command{
		Use:   "apply",
		Short: "Apply a LUT's tone shift to an image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(applyLUT, applyIn, applyOut)
		},
	}
	applyLUT string
	applyIn  string
	applyOut string

	analyzeCmd = &cobra.Command{
		Use:   "analyze <image>",
		Short: "Print an image's dominant color and its histograms as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.OutOrStdout(), args[0])
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
)

func init() {
	generateCmd.Flags().StringVarP(&generateColor, "color", "c", "", "dominant color as R,G,B (0-255)")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "output file (default stdout)")
	generateCmd.Flags().IntVarP(&generateSize, "size", "s", 0, "grid size for this LUT (default --lut-size)")
	generateCmd.MarkFlagRequired("color")
	applyCmd.Flags().StringVarP(&applyLUT, "lut", "l", "", ".cube file")
	applyCmd.Flags().StringVarP(&applyIn, "in", "i", "", "input image")
	applyCmd.Flags().StringVarP(&applyOut, "out", "o", "", "output image (.jpg, .png, .bmp, .tif)")
	for _, f := range []string{"lut", "in", "out"} {
		applyCmd.MarkFlagRequired(f)
	}
	serveCmd.Flags().String("addr", ":8000", "listen address")
}

// parseColor reads "R,G,B".
func parseColor(s string) (cubelut.ColorTriplet, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return cubelut.ColorTriplet{}, fmt.Errorf("expect color as R,G,B, got %q", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 255 {
			return cubelut.ColorTriplet{}, fmt.Errorf("can't parse channel %q in %q", p, s)
		}
		v[i] = n
	}
	return cubelut.ColorTriplet{R: v[0], G: v[1], B: v[2]}, nil
}

func runGenerate(stdout io.Writer, out, title string, size int, dominant cubelut.ColorTriplet) error {
	if out == "" {
		return cubelut.Generate(stdout, title, size, dominant)
	}
	if err := cubelut.WriteFile(out, title, size, dominant); err != nil {
		return err
	}
	logrus.Infof("LUT written to %s", out)
	return nil
}

type shiftRow struct {
	File   string  `csv:"file"`
	RShift float64 `csv:"r_shift"`
	GShift float64 `csv:"g_shift"`
	BShift float64 `csv:"b_shift"`
}

func runExtract(w io.Writer, files []string) error {
	rows := make([]shiftRow, 0, len(files))
	for _, f := range files {
		shift, err := cubelut.ExtractFile(f)
		if err != nil {
			return err
		}
		logrus.WithField("file", f).Debugf("tone shift %v", shift)
		rows = append(rows, shiftRow{File: f, RShift: shift.R, GShift: shift.G, BShift: shift.B})
	}
	b, err := csvutil.Marshal(rows)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func decodeFile(path string) (*imaging.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf, _, err := imaging.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return buf, nil
}

func runApply(lutPath, in, out string) error {
	format, err := imaging.FormatFromExt(out)
	if err != nil {
		return err
	}
	buf, err := decodeFile(in)
	if err != nil {
		return err
	}
	shift, err := cubelut.ExtractFile(lutPath)
	if err != nil {
		return err
	}
	processed := imaging.ApplyToneShift(buf, shift)

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := imaging.Encode(f, processed, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"lut": lutPath, "shift": shift}).Infof("written %s", out)
	return nil
}

type histogramRow struct {
	Bin   int     `csv:"bin"`
	Red   float64 `csv:"red"`
	Green float64 `csv:"green"`
	Blue  float64 `csv:"blue"`
}

func runAnalyze(w io.Writer, path string) error {
	buf, err := decodeFile(path)
	if err != nil {
		return err
	}
	dominant := imaging.Mean(buf)
	h, s, l := dominant.HSL()
	logrus.Infof("dominant color: rgb%v %s hsl(%.1f, %.3f, %.3f)", dominant, dominant.Hex(), h, s, l)

	hist := imaging.ComputeHistogram(buf)
	rows := make([]histogramRow, imaging.Bins)
	for i := range rows {
		rows[i] = histogramRow{Bin: i, Red: hist.Red[i], Green: hist.Green[i], Blue: hist.Blue[i]}
	}
	b, err := csvutil.Marshal(rows)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func runServe(ctx context.Context, c Config) error {
	st, err := store.New(c.DataDir)
	if err != nil {
		return err
	}
	logrus.Infof("data root: %s", st.Root())
	srv, err := server.New(server.Options{
		ProjectName: c.ProjectName,
		LUTSize:     c.LUTSize,
		LUTTitle:    c.LUTTitle,
	}, st, logrus.WithField("env", c.Environment))
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, c.Addr)
}
