// Package layout places page images edge-to-edge in the viewer's world plane.
//
// # Overview
//
// A layout pass turns an ordered list of page descriptors into an ordered list
// of rects. Placement is sequential: every rect after the first is computed
// from the rect placed just before it, so strategies are plain functions of
// (index, page, previous rect).
//
//  1. [NormalizeHeights] scales every page to the first page's height.
//  2. [NewStrategy] picks a [Strategy] from the layout [Mode] and the paged flag.
//  3. [Build] applies the strategy page by page and fills a [Registry].
//
// # Strategies
//
// [OnePageStrategy] centers the first page on x = 0 and lines the rest up to its
// right, separated by a fixed margin. [TwoPageStrategy] starts at x = 0 and groups
// pages into spreads: odd indices open a new spread after a margin, even
// indices butt against the page before them. Both strategies center pages
// vertically on y = 0.
//
// # Lookups
//
// The [Registry] answers the geometric questions navigation asks on every
// gesture: which rect is nearest to a point ([Registry.FindClosestIndex]),
// which page the viewport center is over ([Registry.IndexAtCenter]), which page
// contains a click ([Registry.Hit]), and the largest page dimensions.
//
// # Example
//
//	strategy, err := layout.NewStrategy(layout.TwoPage, true, 20)
//	if err != nil {
//	    return err // unknown mode is a configuration error
//	}
//	reg := layout.Build(m.Pages, strategy)
//	first := reg.Get(0)
package layout
