// Package render draws a computed layout for inspection.
//
// # Overview
//
// [ToDOT] turns a layout.Document into a Graphviz graph with one box per
// page, pinned at its placed position. [Render] runs Graphviz's neato engine
// on that graph and returns SVG or PNG bytes; [FormatDOT] returns the graph
// source itself.
//
//	doc, _ := layout.ReadFile("book.layout.json")
//	svg, err := render.Render(ctx, doc, render.FormatSVG, render.Options{Labels: true})
//
// # Coordinates
//
// Layout coordinates grow rightwards and downwards with the origin at the
// centre of the first page. Graphviz points grow upwards, so y is negated.
// [Options.Scale] converts layout units to points; the default maps the
// widest page to about two inches.
package render
