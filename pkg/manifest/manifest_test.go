package manifest

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/folio/pkg/errors"
)

func TestReadJSON(t *testing.T) {
	src := `{"label": "Book", "paged": true, "pages": [
		{"width": 100, "height": 50, "source": "a.jpg"},
		{"width": 120, "height": 60, "source": "b.jpg"}
	]}`

	m, err := Read(strings.NewReader(src), FormatJSON)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if m.Label != "Book" || !m.Paged {
		t.Errorf("header = %q paged=%v", m.Label, m.Paged)
	}
	want := []Page{
		{Width: 100, Height: 50, Source: "a.jpg"},
		{Width: 120, Height: 60, Source: "b.jpg"},
	}
	if diff := cmp.Diff(want, m.Pages); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
}

func TestReadTOML(t *testing.T) {
	src := `
label = "Atlas"
paged = false
layout = "two-page"

[[pages]]
id = "p1"
width = 800
height = 600

[[pages]]
id = "p2"
width = 400
height = 300
`
	m, err := Read(strings.NewReader(src), FormatTOML)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	if m.Layout != "two-page" || m.Paged {
		t.Errorf("layout=%q paged=%v", m.Layout, m.Paged)
	}
	if m.Pages[1].ID != "p2" || m.Pages[1].Width != 400 {
		t.Errorf("second page = %+v", m.Pages[1])
	}
}

func TestReadRejectsEmpty(t *testing.T) {
	_, err := Read(strings.NewReader(`{"pages": []}`), FormatJSON)
	if !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("expected INVALID_MANIFEST, got %v", err)
	}
}

func TestReadUnknownFormat(t *testing.T) {
	_, err := Read(strings.NewReader(`{}`), "yaml")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("expected INVALID_FORMAT, got %v", err)
	}
}

func TestWriteThenReadTOML(t *testing.T) {
	m := &Manifest{
		Label: "Scan",
		Paged: true,
		Pages: []Page{{ID: "a", Width: 10, Height: 20}},
	}
	var buf bytes.Buffer
	if err := Write(&buf, m, FormatTOML); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf, FormatTOML)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestClone(t *testing.T) {
	m := &Manifest{Pages: []Page{{Width: 1, Height: 2}}}
	c := m.Clone()
	c.Pages[0].Width = 99
	if m.Pages[0].Width != 1 {
		t.Error("Clone should not share the page slice")
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND, got %v", err)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "002.png"), 30, 40)
	writePNG(t, filepath.Join(dir, "001.png"), 10, 20)
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	m, skipped, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if diff := cmp.Diff([]string{"broken.png"}, skipped); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}
	want := []Page{
		{ID: "001", Label: "1", Width: 10, Height: 20, Source: "001.png"},
		{ID: "002", Label: "2", Width: 30, Height: 40, Source: "002.png"},
	}
	if diff := cmp.Diff(want, m.Pages); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
}

func TestScanDirEmpty(t *testing.T) {
	_, _, err := ScanDir(t.TempDir())
	if !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("expected INVALID_MANIFEST, got %v", err)
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}
