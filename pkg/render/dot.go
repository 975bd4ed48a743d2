package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/folio/pkg/errors"
	"github.com/matzehuels/folio/pkg/layout"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatDOT = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
	FormatDOT: true,
}

// ValidateFormat returns an INVALID_FORMAT error for unsupported formats.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want svg, png or dot)", format)
	}
	return nil
}

const pointsPerInch = 72.0

// Options configures rendering.
type Options struct {
	// Scale converts layout units to points. Zero picks a scale that draws
	// the widest page 144 points wide.
	Scale float64

	// Labels draws each page's label, or its ID, or its index.
	Labels bool

	// Highlight marks one page index, usually the current page. Negative
	// values mark nothing.
	Highlight int
}

func (o Options) scale(doc layout.Document) float64 {
	if o.Scale > 0 {
		return o.Scale
	}
	if doc.MaxWidth <= 0 {
		return 1
	}
	return 2 * pointsPerInch / doc.MaxWidth
}

// ToDOT converts a layout to an undirected Graphviz graph with every page
// pinned at its placed centre.
func ToDOT(doc layout.Document, opts Options) string {
	scale := opts.scale(doc)

	var buf bytes.Buffer
	buf.WriteString("graph folio {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  node [shape=box, style=filled, fillcolor=white, fixedsize=true, fontsize=10];\n")
	buf.WriteString("\n")

	for _, p := range doc.Pages {
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(p), strings.Join(pageAttrs(p, scale, opts), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(p layout.Placement) string {
	return fmt.Sprintf("page%d", p.Index)
}

func pageAttrs(p layout.Placement, scale float64, opts Options) []string {
	c := p.Rect.Center()
	attrs := []string{
		fmt.Sprintf("pos=\"%.2f,%.2f!\"", c.X*scale, 0-c.Y*scale),
		fmt.Sprintf("width=%.4f", p.Rect.Width*scale/pointsPerInch),
		fmt.Sprintf("height=%.4f", p.Rect.Height*scale/pointsPerInch),
		fmt.Sprintf("label=%q", pageLabel(p, opts.Labels)),
	}
	if opts.Highlight >= 0 && p.Index == opts.Highlight {
		attrs = append(attrs, "fillcolor=\"#ffe9a8\"", "penwidth=2")
	}
	return attrs
}

func pageLabel(p layout.Placement, labels bool) string {
	switch {
	case !labels:
		return ""
	case p.Label != "":
		return p.Label
	case p.ID != "":
		return p.ID
	default:
		return fmt.Sprintf("%d", p.Index+1)
	}
}
