// Package imaging validates and normalizes uploaded product images.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nfnt/resize"
)

// MaxDimension bounds the longest side of a stored still image.
const MaxDimension = 1600

// ErrUnsupportedType is returned for payloads that are not PNG, JPEG or GIF.
var ErrUnsupportedType = errors.New("image must be PNG, JPEG or GIF")

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
}

// Result is a processed image ready to be written to storage.
type Result struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// Process sniffs data, rejects anything other than PNG/JPEG/GIF, and downsizes
// still images whose longest side exceeds MaxDimension. GIFs are kept as uploaded
// so animations survive.
func Process(data []byte) (*Result, error) {
	mt := mimetype.Detect(data)
	ext, ok := extensions[mt.String()]
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedType, mt.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	res := &Result{Data: data, ContentType: mt.String(), Ext: ext, Width: cfg.Width, Height: cfg.Height}
	if mt.Is("image/gif") || (cfg.Width <= MaxDimension && cfg.Height <= MaxDimension) {
		return res, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	m := resize.Thumbnail(MaxDimension, MaxDimension, img, resize.Lanczos3)

	var out bytes.Buffer
	if err := encode(&out, mt.String(), m); err != nil {
		return nil, err
	}
	b := m.Bounds()
	res.Data = out.Bytes()
	res.Width, res.Height = b.Dx(), b.Dy()
	return res, nil
}

func encode(w io.Writer, contentType string, m image.Image) error {
	var err error
	switch contentType {
	case "image/png":
		err = png.Encode(w, m)
	case "image/jpeg":
		err = jpeg.Encode(w, m, &jpeg.Options{Quality: 85})
	case "image/gif":
		err = gif.Encode(w, m, nil)
	default:
		return ErrUnsupportedType
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", contentType, err)
	}
	return nil
}
