// Package imaging prepares capture images for the extraction service.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"

	_ "image/gif" // register decoder
)

// Downscale shrinks an encoded image so its longest edge is at most
// maxEdge pixels, preserving aspect ratio. Images already within bounds
// are returned unchanged, as is anything the standard decoders cannot
// read — the extraction service gets the original bytes in that case.
// The returned MIME type reflects the (re-)encoded format.
func Downscale(data []byte, maxEdge int) ([]byte, string, error) {
	if maxEdge <= 0 {
		return data, "", nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, "", nil
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxEdge && h <= maxEdge {
		return data, mimeForFormat(format), nil
	}

	scale := float64(maxEdge) / float64(w)
	if h > w {
		scale = float64(maxEdge) / float64(h)
	}
	dstW := int(float64(w) * scale)
	dstH := int(float64(h) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, dst); err != nil {
			return nil, "", fmt.Errorf("encoding resized png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	default:
		// Everything else is flattened to JPEG, which every consumer accepts.
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
			return nil, "", fmt.Errorf("encoding resized jpeg: %w", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	}
}

func mimeForFormat(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "jpeg":
		return "image/jpeg"
	default:
		return ""
	}
}
