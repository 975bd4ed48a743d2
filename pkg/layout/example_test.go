package layout_test

import (
	"fmt"

	"github.com/matzehuels/folio/pkg/geom"
	"github.com/matzehuels/folio/pkg/layout"
	"github.com/matzehuels/folio/pkg/manifest"
)

func Example() {
	pages := []manifest.Page{
		{ID: "cover", Width: 100, Height: 50},
		{ID: "p1", Width: 100, Height: 50},
		{ID: "p2", Width: 100, Height: 50},
	}

	strategy, err := layout.NewStrategy(layout.OnePage, true, 10)
	if err != nil {
		fmt.Println(err)
		return
	}
	reg := layout.Build(pages, strategy)

	for i, r := range reg.All() {
		fmt.Printf("%d: x=%g y=%g\n", i, r.X, r.Y)
	}
	// Output:
	// 0: x=-50 y=-25
	// 1: x=60 y=-25
	// 2: x=170 y=-25
}

func ExampleRegistry_IndexAtCenter() {
	pages := []manifest.Page{
		{Width: 100, Height: 50},
		{Width: 100, Height: 50},
	}
	reg := layout.Build(pages, layout.OnePageStrategy{Margin: 10})

	// The gap between the pages spans x = 50..60, so its midpoint is 55.
	fmt.Println(reg.IndexAtCenter(geom.Rect{X: 45, Width: 20}))
	fmt.Println(reg.IndexAtCenter(geom.Rect{X: 46, Width: 20}))
	// Output:
	// 0
	// 1
}

func ExampleNewStrategy_unpaged() {
	s, _ := layout.NewStrategy(layout.TwoPage, false, 10)
	fmt.Println(s.Mode())
	// Output: one-page
}
