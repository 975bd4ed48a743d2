package manifest

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/folio/pkg/errors"
)

// imageExts lists the extensions ScanDir considers. Each has a decoder
// registered with the image package above.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// ScanDir builds a manifest from the images in dir, ordered by file name.
// Only image headers are read; pixel data is never decoded. Files that do not
// decode are skipped and reported in the returned list.
func ScanDir(dir string) (*Manifest, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	m := &Manifest{
		Label: filepath.Base(dir),
		Paged: true,
	}
	var skipped []string
	for _, name := range names {
		w, h, err := imageSize(filepath.Join(dir, name))
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		m.Pages = append(m.Pages, Page{
			ID:     strings.TrimSuffix(name, filepath.Ext(name)),
			Label:  fmt.Sprintf("%d", len(m.Pages)+1),
			Width:  float64(w),
			Height: float64(h),
			Source: name,
		})
	}

	if len(m.Pages) == 0 {
		return nil, skipped, errors.New(errors.ErrCodeInvalidManifest, "no readable images in %s", dir)
	}
	return m, skipped, nil
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
