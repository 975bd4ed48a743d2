package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/folio/pkg/errors"
	"github.com/matzehuels/folio/pkg/geom"
	"github.com/matzehuels/folio/pkg/manifest"
)

func pagesOf(dims ...[2]float64) []manifest.Page {
	out := make([]manifest.Page, len(dims))
	for i, d := range dims {
		out[i] = manifest.Page{Width: d[0], Height: d[1]}
	}
	return out
}

func TestOnePageScenario(t *testing.T) {
	pages := pagesOf([2]float64{100, 50}, [2]float64{100, 50}, [2]float64{100, 50})

	reg := Build(pages, OnePageStrategy{Margin: 10})

	want := []geom.Rect{
		{X: -50, Y: -25, Width: 100, Height: 50},
		{X: 60, Y: -25, Width: 100, Height: 50},
		{X: 170, Y: -25, Width: 100, Height: 50},
	}
	if diff := cmp.Diff(want, reg.All()); diff != "" {
		t.Errorf("rects mismatch (-want +got):\n%s", diff)
	}
}

func TestOnePageCentersIncreaseWithMarginGaps(t *testing.T) {
	const margin = 12.5
	pages := pagesOf(
		[2]float64{80, 120}, [2]float64{200, 40}, [2]float64{1, 1},
		[2]float64{0, 10}, [2]float64{55.5, 300},
	)

	reg := Build(pages, OnePageStrategy{Margin: margin})

	for i := 1; i < reg.Len(); i++ {
		prev, cur := reg.Get(i-1), reg.Get(i)
		if cur.CenterX() <= prev.CenterX() {
			t.Errorf("page %d centerX %v not after page %d centerX %v", i, cur.CenterX(), i-1, prev.CenterX())
		}
		if gap := cur.X - prev.Right(); gap < margin {
			t.Errorf("gap before page %d = %v, want >= %v", i, gap, margin)
		}
	}
	for i, r := range reg.All() {
		if r.Y != -pages[i].Height/2 {
			t.Errorf("page %d y = %v, want %v", i, r.Y, -pages[i].Height/2)
		}
	}
}

func TestTwoPageSpreads(t *testing.T) {
	const margin = 10
	pages := pagesOf(
		[2]float64{100, 50}, [2]float64{90, 50}, [2]float64{110, 50},
		[2]float64{100, 50}, [2]float64{100, 50}, [2]float64{70, 50},
	)

	reg := Build(pages, TwoPageStrategy{Margin: margin})

	if first := reg.Get(0); first.X != 0 {
		t.Errorf("page 0 x = %v, want 0", first.X)
	}
	for i := 1; i < reg.Len(); i++ {
		gap := reg.Get(i).X - reg.Get(i-1).Right()
		if i%2 == 1 {
			if gap < margin {
				t.Errorf("odd page %d gap = %v, want >= %v", i, gap, margin)
			}
		} else if gap != 0 {
			t.Errorf("even page %d gap = %v, want 0", i, gap)
		}
	}
}

func TestTwoPageScenario(t *testing.T) {
	pages := pagesOf([2]float64{100, 40}, [2]float64{100, 40}, [2]float64{100, 40})

	reg := Build(pages, TwoPageStrategy{Margin: 20})

	want := []geom.Rect{
		{X: 0, Y: -20, Width: 100, Height: 40},
		{X: 120, Y: -20, Width: 100, Height: 40},
		{X: 220, Y: -20, Width: 100, Height: 40},
	}
	if diff := cmp.Diff(want, reg.All()); diff != "" {
		t.Errorf("rects mismatch (-want +got):\n%s", diff)
	}
}

func TestStrategiesAcceptDegenerateSizes(t *testing.T) {
	pages := pagesOf([2]float64{0, 0}, [2]float64{-10, 20})

	reg := Build(pages, OnePageStrategy{Margin: 5})

	want := []geom.Rect{
		{X: 0, Y: 0, Width: 0, Height: 0},
		{X: 5, Y: -10, Width: -10, Height: 20},
	}
	if diff := cmp.Diff(want, reg.All()); diff != "" {
		t.Errorf("rects mismatch (-want +got):\n%s", diff)
	}
}

func TestNewStrategy(t *testing.T) {
	tests := []struct {
		name     string
		mode     Mode
		paged    bool
		wantMode Mode
		wantErr  bool
	}{
		{"one page paged", OnePage, true, OnePage, false},
		{"two page paged", TwoPage, true, TwoPage, false},
		{"two page unpaged forces one page", TwoPage, false, OnePage, false},
		{"unknown unpaged still one page", Mode(0), false, OnePage, false},
		{"unknown paged", Mode(0), true, 0, true},
		{"out of range paged", Mode(7), true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStrategy(tt.mode, tt.paged, 10)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, errors.ErrCodeInvalidLayout) {
					t.Errorf("expected INVALID_LAYOUT, got %v", err)
				}
				if s != nil {
					t.Errorf("expected no strategy, got %T", s)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewStrategy: %v", err)
			}
			if s.Mode() != tt.wantMode {
				t.Errorf("Mode() = %v, want %v", s.Mode(), tt.wantMode)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"one-page", OnePage, false},
		{"TWO-PAGE", TwoPage, false},
		{" two ", TwoPage, false},
		{"three-page", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeHeights(t *testing.T) {
	pages := pagesOf([2]float64{100, 200}, [2]float64{50, 100}, [2]float64{300, 200}, [2]float64{10, 0})

	NormalizeHeights(pages)

	want := pagesOf([2]float64{100, 200}, [2]float64{100, 200}, [2]float64{300, 200}, [2]float64{10, 0})
	if diff := cmp.Diff(want, pages); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
}
