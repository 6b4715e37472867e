package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gorilla/mux"

	"github.com/msproteomics/mspp/hey"
)

type handler struct {
	*Global
}

// unsafeNameChars is stripped from uploaded filenames so a crafted name
// cannot traverse out of the upload directory.
var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

var allowedUploadExts = map[string]bool{
	".tsv": true,
	".txt": true,
	".gz":  true,
	".zip": true,
	".xz":  true,
}

func (h *handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(256 << 20); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		writeJSONError(w, http.StatusBadRequest, "No files provided")
		return
	}

	var saved []string
	for _, fh := range fileHeaders {
		name := secureFilename(fh.Filename)
		if name == "" || !allowedUploadExts[strings.ToLower(filepath.Ext(name))] {
			continue
		}

		src, err := fh.Open()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		dstPath := h.Global.UploadPathFor(name)
		dst, err := os.Create(dstPath)
		if err != nil {
			src.Close()
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		h.Global.AddUpload(name, dstPath)
		saved = append(saved, name)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("%d files uploaded successfully", len(saved)),
		"files":   saved,
	})
}

func (h *handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"files": h.Global.UploadNames()})
}

func (h *handler) ClearFiles(w http.ResponseWriter, r *http.Request) {
	h.Global.ClearUploads()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cleared"})
}

func (h *handler) Plot(w http.ResponseWriter, r *http.Request) {
	samples, ok := h.loadForRequest(w)
	if !ok {
		return
	}

	switch mux.Vars(r)["chart_type"] {
	case "bar-chart":
		png, err := countChartPNG(samples)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"image": base64.StdEncoding.EncodeToString(png),
		})

	case "sample-comparison":
		result, images, err := comparisonPNGs(samples)
		if err != nil {
			writeJSONError(w, comparisonStatus(err), err.Error())
			return
		}
		encoded := make(map[string]string, len(images))
		for organism, png := range images {
			encoded[string(organism)] = base64.StdEncoding.EncodeToString(png)
		}
		// An empty singlet list marshals as [], not null.
		singlets := result.Singlets
		if singlets == nil {
			singlets = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"images":   encoded,
			"singlets": singlets,
		})

	default:
		writeJSONError(w, http.StatusBadRequest, "Invalid plot type")
	}
}

func (h *handler) Export(w http.ResponseWriter, r *http.Request) {
	samples, ok := h.loadForRequest(w)
	if !ok {
		return
	}

	switch mux.Vars(r)["chart_type"] {
	case "bar-chart":
		png, err := countChartPNG(samples)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeAttachment(w, "protein_id_bar_chart.png", "image/png", png)

	case "sample-comparison":
		result, images, err := comparisonPNGs(samples)
		if err != nil {
			writeJSONError(w, comparisonStatus(err), err.Error())
			return
		}
		zipBytes, err := comparisonZip(result, images)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeAttachment(w, "intensity_ratio_comparison.zip", "application/zip", zipBytes)

	default:
		writeJSONError(w, http.StatusBadRequest, "Invalid plot type")
	}
}

func (h *handler) ExportBundle(w http.ResponseWriter, r *http.Request) {
	samples, ok := h.loadForRequest(w)
	if !ok {
		return
	}

	zipBytes, err := bundleZip(samples)
	if err != nil {
		writeJSONError(w, comparisonStatus(err), err.Error())
		return
	}
	writeAttachment(w, "mspp_qc_bundle.zip", "application/zip", zipBytes)
}

// loadForRequest runs the cached loader and maps the missing-input case to
// a 400 rather than computing anything.
func (h *handler) loadForRequest(w http.ResponseWriter) ([]*hey.Sample, bool) {
	paths := h.Global.UploadPaths()
	if len(paths) == 0 {
		writeJSONError(w, http.StatusBadRequest, "No files uploaded")
		return nil, false
	}

	samples, err := h.Global.Load()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}

	return samples, true
}

func comparisonStatus(err error) int {
	if errors.Is(err, hey.ErrNotEnoughSamples) || errors.Is(err, errNoPairData) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeAttachment(w http.ResponseWriter, name, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Write(body)
}

func secureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeNameChars.ReplaceAllString(name, "_")

	return strings.Trim(name, "._")
}
