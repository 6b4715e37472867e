package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	global := NewGlobal(log.New(io.Discard, "", 0), "", t.TempDir())
	srv := httptest.NewServer(router(global))
	t.Cleanup(srv.Close)
	t.Cleanup(global.ClearUploads)

	return srv
}

func uploadFiles(t *testing.T, srv *httptest.Server, files map[string]string) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Post(srv.URL+"/api/upload", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}

	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

const lowDoseTSV = "Protein.Names\t20240101_run1.raw\n" +
	"ALBU_HUMAN\t1000\n" +
	"LACB_ECOLI\t25\n"

const highDoseTSV = "Protein.Names\t20240101_run2.raw\n" +
	"ALBU_HUMAN\t1000\n" +
	"LACB_ECOLI\t100\n"

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	decodeJSON(t, resp, &body)
	if body["status"] != "ok" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestPlotWithoutUploads(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/plot/bar-chart", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body map[string]string
	decodeJSON(t, resp, &body)
	if body["error"] != "No files uploaded" {
		t.Fatalf("unexpected error message %q", body["error"])
	}
}

func TestUploadListAndClear(t *testing.T) {
	srv := newTestServer(t)

	resp := uploadFiles(t, srv, map[string]string{
		"report_E25_mix1.tsv":  lowDoseTSV,
		"report_E100_mix1.tsv": highDoseTSV,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload failed with %d", resp.StatusCode)
	}
	var uploaded struct {
		Files []string `json:"files"`
	}
	decodeJSON(t, resp, &uploaded)
	if len(uploaded.Files) != 2 {
		t.Fatalf("expected 2 saved files, got %v", uploaded.Files)
	}

	resp, err := http.Get(srv.URL + "/api/files")
	if err != nil {
		t.Fatal(err)
	}
	var listed struct {
		Files []string `json:"files"`
	}
	decodeJSON(t, resp, &listed)
	if len(listed.Files) != 2 || listed.Files[0] != "report_E100_mix1.tsv" {
		t.Fatalf("unexpected file list %v", listed.Files)
	}

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/files", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on clear, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/files")
	if err != nil {
		t.Fatal(err)
	}
	decodeJSON(t, resp, &listed)
	if len(listed.Files) != 0 {
		t.Fatalf("expected empty list after clear, got %v", listed.Files)
	}
}

func TestUploadSkipsDisallowedExtensions(t *testing.T) {
	srv := newTestServer(t)

	resp := uploadFiles(t, srv, map[string]string{"malware.exe": "nope"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var uploaded struct {
		Files []string `json:"files"`
	}
	decodeJSON(t, resp, &uploaded)
	if len(uploaded.Files) != 0 {
		t.Fatalf("expected no saved files, got %v", uploaded.Files)
	}
}

func TestPlotBarChart(t *testing.T) {
	srv := newTestServer(t)
	uploadFiles(t, srv, map[string]string{
		"report_E25_mix1.tsv":  lowDoseTSV,
		"report_E100_mix1.tsv": highDoseTSV,
	}).Body.Close()

	resp, err := http.Post(srv.URL+"/api/plot/bar-chart", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Image string `json:"image"`
	}
	decodeJSON(t, resp, &body)

	png, err := base64.StdEncoding.DecodeString(body.Image)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, []byte{0x89, 'P', 'N', 'G'}) {
		t.Fatal("expected a PNG image")
	}
}

func TestPlotSampleComparison(t *testing.T) {
	srv := newTestServer(t)
	uploadFiles(t, srv, map[string]string{
		"report_E25_mix1.tsv":  lowDoseTSV,
		"report_E100_mix1.tsv": highDoseTSV,
	}).Body.Close()

	resp, err := http.Post(srv.URL+"/api/plot/sample-comparison", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	// Clients expect an array even when every sample paired.
	if !strings.Contains(string(raw), `"singlets":[]`) {
		t.Fatalf("expected empty singlets array in body:\n%s", raw)
	}

	var body struct {
		Images   map[string]string `json:"images"`
		Singlets []string          `json:"singlets"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatal(err)
	}

	if _, ok := body.Images["E.coli"]; !ok {
		t.Fatalf("expected an E.coli chart, got organisms %v", imageKeys(body.Images))
	}
	if len(body.Singlets) != 0 {
		t.Fatalf("expected no singlets, got %v", body.Singlets)
	}
	for organism, encoded := range body.Images {
		png, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			t.Fatalf("%s: %v", organism, err)
		}
		if !bytes.HasPrefix(png, []byte{0x89, 'P', 'N', 'G'}) {
			t.Fatalf("%s: expected a PNG image", organism)
		}
	}
}

func TestPlotInvalidType(t *testing.T) {
	srv := newTestServer(t)
	uploadFiles(t, srv, map[string]string{
		"report_E25_mix1.tsv":  lowDoseTSV,
		"report_E100_mix1.tsv": highDoseTSV,
	}).Body.Close()

	resp, err := http.Post(srv.URL+"/api/plot/pie-chart", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestExportBarChartAttachment(t *testing.T) {
	srv := newTestServer(t)
	uploadFiles(t, srv, map[string]string{
		"report_E25_mix1.tsv":  lowDoseTSV,
		"report_E100_mix1.tsv": highDoseTSV,
	}).Body.Close()

	resp, err := http.Post(srv.URL+"/api/export/bar-chart", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "protein_id_bar_chart.png") {
		t.Fatalf("unexpected disposition %q", cd)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(body, []byte{0x89, 'P', 'N', 'G'}) {
		t.Fatal("expected a PNG attachment")
	}
}

func TestExportBundleIsZip(t *testing.T) {
	srv := newTestServer(t)
	uploadFiles(t, srv, map[string]string{
		"report_E25_mix1.tsv":  lowDoseTSV,
		"report_E100_mix1.tsv": highDoseTSV,
	}).Body.Close()

	resp, err := http.Post(srv.URL+"/api/export-bundle", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("unexpected content type %q", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(body, []byte("PK")) {
		t.Fatal("expected a zip archive")
	}
}

func TestSecureFilename(t *testing.T) {
	cases := map[string]string{
		"report.tsv":              "report.tsv",
		"../../etc/passwd":        "passwd",
		`..\..\windows\evil.tsv`:  "evil.tsv",
		"spaced name (final).tsv": "spaced_name__final_.tsv",
		"...":                     "",
	}
	for in, want := range cases {
		if got := secureFilename(in); got != want {
			t.Errorf("secureFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func imageKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
