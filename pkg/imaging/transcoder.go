package imaging

import (
	"bytes"
	"context"
	"image"
	"runtime"

	// Registered decoders for the formats clients upload.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/HugoSmits86/nativewebp"
)

// MaxDimension is the upper bound on either side of an uploaded image.
const MaxDimension = 5000

// Extension is the file extension of transcoded renditions.
const Extension = "webp"

// Transcoder converts uploaded images to WebP. At most `workers`
// conversions run at once; further calls wait or fail with the context.
type Transcoder struct {
	gate chan struct{}
}

// NewTranscoder creates a transcoder. workers <= 0 defaults to GOMAXPROCS.
func NewTranscoder(workers int) *Transcoder {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Transcoder{gate: make(chan struct{}, workers)}
}

// Transcode decodes data, enforces the dimension bound and re-encodes the
// image as WebP. The caller's context cancels both the wait for a worker
// slot and nothing else: once conversion starts it runs to completion.
func (t *Transcoder) Transcode(ctx context.Context, data []byte) ([]byte, error) {
	select {
	case t.gate <- struct{}{}:
		defer func() { <-t.gate }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUndecodable
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		return nil, ErrTooLarge
	}

	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Dimensions decodes only the image header and reports its size.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, ErrUndecodable
	}
	return cfg.Width, cfg.Height, nil
}
