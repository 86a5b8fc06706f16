package frame

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// maxSSIMEdge is the largest edge, in pixels, of the downsampled luma sample
// used for SSIM comparison.
const maxSSIMEdge = 96

// Compute converts img to 8-bit luma and derives its Signature: a 256-bin
// histogram over the full-resolution image, and a downsampled grayscale
// sample (triangle-filter resized so the longer edge is <= maxSSIMEdge,
// preserving aspect ratio) used as the SSIM comparison surface.
func Compute(img image.Image) Signature {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var sig Signature
	gray := toGray(img)

	for _, v := range gray.Pix {
		sig.Histogram[v]++
	}

	if w <= maxSSIMEdge && h <= maxSSIMEdge {
		sig.Sample = append([]byte(nil), gray.Pix...)
		sig.Width, sig.Height = w, h
		return sig
	}

	resized := imaging.Resize(gray, targetWidth(w, h), targetHeight(w, h), imaging.Linear)
	rb := resized.Bounds()
	sig.Width, sig.Height = rb.Dx(), rb.Dy()
	sig.Sample = make([]byte, 0, sig.Width*sig.Height)
	for y := rb.Min.Y; y < rb.Max.Y; y++ {
		for x := rb.Min.X; x < rb.Max.X; x++ {
			r, _, _, _ := resized.At(x, y).RGBA()
			sig.Sample = append(sig.Sample, byte(r>>8))
		}
	}
	return sig
}

// targetWidth/targetHeight scale w,h down so the larger edge is maxSSIMEdge,
// preserving aspect ratio. imaging.Resize treats a 0 dimension as "compute
// from aspect ratio", so we only need to pin the larger edge.
func targetWidth(w, h int) int {
	if w >= h {
		return maxSSIMEdge
	}
	return 0
}

func targetHeight(w, h int) int {
	if h > w {
		return maxSSIMEdge
	}
	return 0
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}
