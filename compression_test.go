package mspp

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectDataType(t *testing.T) {
	var gzipped bytes.Buffer
	zw := gzip.NewWriter(&gzipped)
	zw.Write([]byte("hello"))
	zw.Close()

	tests := []struct {
		name     string
		data     []byte
		expected DataType
	}{
		{"gzip", gzipped.Bytes(), DataTypeGzip},
		{"zip", []byte{0x50, 0x4b, 0x03, 0x04, 0x00, 0x00}, DataTypeZip},
		{"xz", []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}, DataTypeXZ},
		{"plain", []byte("Protein.Names\tintensity"), DataTypeNoCompression},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt, err := DetectDataType(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatal(err)
			}
			if dt != tt.expected {
				t.Fatalf("expected %v, got %v", tt.expected, dt)
			}
		})
	}
}

func TestMaybeDecompressReadCloserFromFile(t *testing.T) {
	dir := t.TempDir()
	const content = "Protein.Names\trun.raw\nALBU_HUMAN\t1\n"

	plain := filepath.Join(dir, "plain.tsv")
	if err := os.WriteFile(plain, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	gz := filepath.Join(dir, "table.tsv.gz")
	f, err := os.Create(gz)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	zw.Close()
	f.Close()

	for _, path := range []string{plain, gz} {
		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		rc, err := MaybeDecompressReadCloserFromFile(f)
		if err != nil {
			t.Fatal(err)
		}
		got, err := io.ReadAll(rc)
		if err != nil {
			t.Fatal(err)
		}
		rc.Close()
		f.Close()
		if string(got) != content {
			t.Fatalf("%s: unexpected content %q", path, got)
		}
	}
}

func TestDetermineDelimiter(t *testing.T) {
	tab := "a\tb\tc\n1\t2\t3\n4\t5\t6\n"
	if d := DetermineDelimiter(strings.NewReader(tab)); d != '\t' {
		t.Fatalf("expected tab, got %q", d)
	}

	comma := "a,b,c\n1,2,3\n4,5,6\n"
	if d := DetermineDelimiter(strings.NewReader(comma)); d != ',' {
		t.Fatalf("expected comma, got %q", d)
	}
}
