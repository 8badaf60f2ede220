package render

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// OpenSource opens a local path directly and anything with a scheme through
// the fyne storage repositories.
func OpenSource(src string) (io.ReadCloser, error) {
	if !strings.Contains(src, "://") {
		return os.Open(src)
	}
	uri, err := storage.ParseURI(src)
	if err != nil {
		return nil, err
	}
	return storage.Reader(uri)
}

// sourceURI is the URI canvas images load from.
func sourceURI(src string) (fyne.URI, error) {
	if strings.Contains(src, "://") {
		return storage.ParseURI(src)
	}
	return storage.NewFileURI(src), nil
}

// ImageAspect returns height divided by width of the image at src, reading
// only its header.
func ImageAspect(src string) (float64, error) {
	r, err := OpenSource(src)
	if err != nil {
		return 0, fmt.Errorf("image %s: %w", src, err)
	}
	defer r.Close()
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, fmt.Errorf("image %s: %w", src, err)
	}
	if cfg.Width == 0 {
		return 1, nil
	}
	return float64(cfg.Height) / float64(cfg.Width), nil
}
