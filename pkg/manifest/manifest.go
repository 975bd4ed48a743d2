// Package manifest defines the page descriptors a viewer lays out and the
// document formats they are read from.
//
// A [Manifest] is an ordered list of [Page] values. Only width and height take
// part in layout; the remaining fields travel alongside so that callers can map
// a placed rect back to the image it stands for. Remote retrieval is not part of
// this package: manifests are read from local JSON or TOML files, or built by
// scanning a directory of images with [ScanDir].
//
// # File Formats
//
// JSON:
//
//	{"label": "Book", "paged": true, "pages": [{"width": 1200, "height": 1800, "source": "p1.jpg"}]}
//
// TOML:
//
//	label = "Book"
//	paged = true
//
//	[[pages]]
//	width = 1200
//	height = 1800
//	source = "p1.jpg"
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/folio/pkg/errors"
)

// Format names accepted by [Read] and [Write].
const (
	FormatJSON = "json"
	FormatTOML = "toml"
)

// Page describes one image in the collection.
//
// Width and Height are the page's native pixel dimensions. Layout may rescale
// them once to bring every page to a common row height; see
// layout.NormalizeHeights.
type Page struct {
	ID     string  `json:"id,omitempty" toml:"id,omitempty"`
	Label  string  `json:"label,omitempty" toml:"label,omitempty"`
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
	Source string  `json:"source,omitempty" toml:"source,omitempty"`
}

// Manifest is an ordered page collection.
type Manifest struct {
	ID    string `json:"id,omitempty" toml:"id,omitempty"`
	Label string `json:"label,omitempty" toml:"label,omitempty"`

	// Paged marks a collection whose pages pair into spreads. Unpaged
	// collections are always laid out one page at a time.
	Paged bool `json:"paged" toml:"paged"`

	// Layout optionally names a preferred layout mode ("one-page", "two-page").
	Layout string `json:"layout,omitempty" toml:"layout,omitempty"`

	Pages []Page `json:"pages" toml:"pages"`
}

// Len returns the number of pages.
func (m *Manifest) Len() int { return len(m.Pages) }

// Clone returns a deep copy so layout can normalize dimensions without
// touching the caller's manifest.
func (m *Manifest) Clone() *Manifest {
	out := *m
	out.Pages = make([]Page, len(m.Pages))
	copy(out.Pages, m.Pages)
	return &out
}

// Validate checks that the manifest can be laid out.
func (m *Manifest) Validate() error {
	if err := errors.ValidatePageCount(len(m.Pages)); err != nil {
		return err
	}
	for i, p := range m.Pages {
		if err := errors.ValidateDimensions(p.Width, p.Height); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidManifest, err, "page %d", i)
		}
	}
	return nil
}

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported manifest extension %q", filepath.Ext(path))
	}
}

// Read decodes a manifest in the given format and validates it.
func Read(r io.Reader, format string) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode json manifest")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode toml manifest")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported manifest format %q", format)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ReadFile reads a manifest file, picking the format from its extension.
func ReadFile(path string) (*Manifest, error) {
	if err := errors.ValidateManifestFilename(filepath.Base(path)); err != nil {
		return nil, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	return Read(f, format)
}

// Write encodes the manifest in the given format.
func Write(w io.Writer, m *Manifest, format string) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal manifest: %w", err)
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	case FormatTOML:
		return toml.NewEncoder(w).Encode(m)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported manifest format %q", format)
	}
}

// WriteFile writes the manifest to path, picking the format from its extension.
func WriteFile(m *Manifest, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Write(&buf, m, format); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
