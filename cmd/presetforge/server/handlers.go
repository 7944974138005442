package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"presetforge/cmd/presetforge/cubelut"
	"presetforge/cmd/presetforge/imaging"
	"presetforge/cmd/presetforge/store"
)

// histogramPreview is how many bins per channel the upload response carries.
const histogramPreview = 5

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Welcome to %s API", s.opts.ProjectName),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "PresetForge backend is alive",
	})
}

type upload struct {
	filename    string
	contentType string
	data        []byte
}

// readImageUpload reads the multipart "file" field and checks it claims to
// be an image.
func readImageUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: missing file field: %v", errBadRequest, err)
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: content type %q", errNotImage, contentType)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %v", errBadRequest, err)
	}
	return &upload{filename: header.Filename, contentType: contentType, data: data}, nil
}

var errNotImage = fmt.Errorf("%w: not an image", errBadRequest)

type histogramPayload struct {
	Red   []float64 `json:"red"`
	Green []float64 `json:"green"`
	Blue  []float64 `json:"blue"`
}

type uploadResponse struct {
	OriginalFilename string           `json:"original_filename"`
	SavedAs          string           `json:"saved_as"`
	ProcessedAs      string           `json:"processed_as"`
	ContentType      string           `json:"content_type"`
	DominantColorRGB [3]int           `json:"dominant_color_rgb"`
	DominantColorHex string           `json:"dominant_color_hex"`
	Histogram        histogramPayload `json:"histogram"`
	GeneratedLUTFile string           `json:"generated_lut_file"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	up, err := readImageUpload(w, r)
	if err != nil {
		s.httpError(w, err, uploadDetail(err))
		return
	}

	token := store.NewToken()
	ext := filepath.Ext(up.filename)
	savedAs := token + ext
	if _, err := s.store.Save(store.Uploads, savedAs, up.data); err != nil {
		s.httpError(w, err, "Could not store upload.")
		return
	}

	buf, _, err := imaging.DecodeBytes(up.data)
	if err != nil {
		s.httpError(w, err, "Invalid image file.")
		return
	}

	// Grayscale preview, encoded like the upload when possible.
	processedAs := "gray_" + savedAs
	format, err := imaging.FormatFromExt(savedAs)
	if err != nil {
		format = imaging.PNG
		processedAs = "gray_" + token + ".png"
	}
	gray := buf.Gray()
	if _, err := s.store.Create(store.Processed, processedAs, func(dst io.Writer) error {
		return imaging.EncodeImage(dst, gray, format)
	}); err != nil {
		s.httpError(w, err, "Could not store preview.")
		return
	}

	dominant := imaging.Mean(buf)
	hist := imaging.ComputeHistogram(buf)

	lutName := store.LUTName(token)
	if _, err := s.store.WriteLUT(lutName, s.opts.LUTTitle, s.opts.LUTSize, dominant); err != nil {
		s.httpError(w, err, "Could not generate LUT.")
		return
	}

	s.log.WithFields(logrus.Fields{
		"upload":   up.filename,
		"token":    token,
		"dominant": dominant,
	}).Info("image processed")

	writeJSON(w, http.StatusOK, uploadResponse{
		OriginalFilename: up.filename,
		SavedAs:          savedAs,
		ProcessedAs:      processedAs,
		ContentType:      up.contentType,
		DominantColorRGB: [3]int{dominant.R, dominant.G, dominant.B},
		DominantColorHex: dominant.Hex(),
		Histogram: histogramPayload{
			Red:   hist.Red[:histogramPreview],
			Green: hist.Green[:histogramPreview],
			Blue:  hist.Blue[:histogramPreview],
		},
		GeneratedLUTFile: lutName,
	})
}

func uploadDetail(err error) string {
	if errors.Is(err, errNotImage) {
		return "Only image files are allowed."
	}
	return "Invalid upload."
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	file, err := s.store.OpenLUT(name)
	if err != nil {
		s.httpError(w, err, "LUT file not found.")
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := io.Copy(w, file); err != nil {
		s.log.WithError(err).WithField("file", name).Warn("download interrupted")
	}
}

type applyResponse struct {
	OutputImage string `json:"output_image"`
	Status      string `json:"status"`
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	up, err := readImageUpload(w, r)
	if err != nil {
		s.httpError(w, err, uploadDetail(err))
		return
	}
	lutName := r.URL.Query().Get("lut_name")
	if lutName == "" {
		lutName = r.FormValue("lut_name")
	}
	if lutName == "" {
		s.httpError(w, errBadRequest, "LUT filename is required.")
		return
	}

	buf, _, err := imaging.DecodeBytes(up.data)
	if err != nil {
		s.httpError(w, err, "Invalid image file.")
		return
	}

	shift, err := s.store.ExtractLUT(lutName)
	if err != nil {
		detail := "LUT not found."
		var pe *cubelut.ParseError
		if errors.As(err, &pe) {
			detail = "Malformed LUT file."
		} else if errors.Is(err, store.ErrInvalidName) {
			detail = "Invalid LUT filename."
		}
		s.httpError(w, err, detail)
		return
	}

	processed := imaging.ApplyToneShift(buf, shift)

	outputName := "output_" + store.NewToken() + ".jpg"
	if _, err := s.store.Create(store.Outputs, outputName, func(dst io.Writer) error {
		return imaging.Encode(dst, processed, imaging.JPEG)
	}); err != nil {
		s.httpError(w, err, "Could not store output.")
		return
	}

	s.log.WithFields(logrus.Fields{"lut": lutName, "shift": shift, "output": outputName}).Info("LUT applied")
	writeJSON(w, http.StatusOK, applyResponse{OutputImage: outputName, Status: "LUT applied successfully"})
}
