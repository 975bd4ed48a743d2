package layout

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/folio/pkg/geom"
	"github.com/matzehuels/folio/pkg/manifest"
)

// =============================================================================
// Document - Serialized Layout
// =============================================================================

// Document is the serialized result of a layout pass. It is what the CLI
// writes to disk, the cache stores, and the HTTP API returns.
type Document struct {
	Mode   Mode    `json:"mode"`
	Paged  bool    `json:"paged"`
	Margin float64 `json:"margin"`

	// Bounds covers every placed page.
	Bounds geom.Rect `json:"bounds"`

	MaxWidth  float64 `json:"max_width"`
	MaxHeight float64 `json:"max_height"`

	Pages []Placement `json:"pages"`
}

// Placement is one page's rect plus the identifiers needed to map it back to
// its source image.
type Placement struct {
	Index  int       `json:"index"`
	ID     string    `json:"id,omitempty"`
	Label  string    `json:"label,omitempty"`
	Source string    `json:"source,omitempty"`
	Rect   geom.Rect `json:"rect"`
}

// NewDocument pairs a filled registry with the pages it was built from.
func NewDocument(reg *Registry, pages []manifest.Page, s Strategy, paged bool, margin float64) Document {
	doc := Document{
		Mode:      s.Mode(),
		Paged:     paged,
		Margin:    margin,
		Bounds:    reg.Bounds(),
		MaxWidth:  reg.MaxWidth(),
		MaxHeight: reg.MaxHeight(),
		Pages:     make([]Placement, reg.Len()),
	}
	for i := range doc.Pages {
		pl := Placement{Index: i, Rect: reg.Get(i)}
		if i < len(pages) {
			pl.ID = pages[i].ID
			pl.Label = pages[i].Label
			pl.Source = pages[i].Source
		}
		doc.Pages[i] = pl
	}
	return doc
}

// Registry rebuilds a registry from the document's placements.
func (d Document) Registry() *Registry {
	reg := NewRegistry(len(d.Pages))
	for _, p := range d.Pages {
		reg.Add(p.Rect)
	}
	return reg
}

// Marshal serializes a Document to pretty-printed JSON bytes.
func Marshal(d Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Unmarshal deserializes JSON bytes into a Document.
func Unmarshal(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if len(d.Pages) == 0 {
		return Document{}, fmt.Errorf("layout must contain pages")
	}
	return d, nil
}

// WriteFile writes a Document to a JSON file.
func WriteFile(d Document, path string) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a Document from a JSON file.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	return Unmarshal(data)
}
