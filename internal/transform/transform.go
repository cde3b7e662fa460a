package transform

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Options controls the re-encode step.
type Options struct {
	// MaxWidth scales down any photo wider than this many pixels. Narrower
	// photos keep their dimensions.
	MaxWidth int
	// Quality is the JPEG encode quality, 1-100.
	Quality int
}

// Reencode decodes data, scales it to fit MaxWidth, and re-encodes it as JPEG
// at the configured quality. The output depends only on the input bytes and
// options, so repeating it for the same photo produces the same asset.
func Reencode(data []byte, opts Options) ([]byte, error) {
	if opts.MaxWidth <= 0 {
		return nil, fmt.Errorf("max width %d must be positive", opts.MaxWidth)
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		return nil, fmt.Errorf("quality %d must be between 1 and 100", opts.Quality)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if img.Bounds().Dx() > opts.MaxWidth {
		img = imaging.Resize(img, opts.MaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(opts.Quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
