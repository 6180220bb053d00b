package classifier

import (
	"bytes"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// MaxClassifyDimension bounds the longest side of an uploaded image.
	MaxClassifyDimension = 1024
	classifyWebPQuality  = 80
)

// PrepareImage shrinks images whose longest side exceeds MaxClassifyDimension
// and re-encodes them as WebP. Anything that cannot be decoded, or does not
// need shrinking, is returned unchanged.
func PrepareImage(raw []byte) []byte {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return raw
	}
	if cfg.Width <= MaxClassifyDimension && cfg.Height <= MaxClassifyDimension {
		return raw
	}

	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return raw
	}
	resized := resizeToFit(decoded, MaxClassifyDimension)

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, resized, &webp.Options{Quality: classifyWebPQuality}); err != nil {
		return raw
	}
	return buf.Bytes()
}

func resizeToFit(src image.Image, maxSide int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxSide && h <= maxSide) {
		return src
	}

	scale := float64(maxSide) / float64(max(w, h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
