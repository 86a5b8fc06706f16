// Package frame holds the in-memory frame representation and the change
// detector that decides whether a captured monitor image is worth
// processing further.
package frame

import (
	"image"
	"time"
)

// Frame is a single monitor capture, ephemeral and owned by one loop
// iteration.
type Frame struct {
	MonitorID int
	CapturedAt time.Time
	Image      *image.RGBA
}

// Signature is the compressed fingerprint of a frame: a 256-bin luma
// histogram plus a small downsampled grayscale sample used for SSIM.
type Signature struct {
	Histogram [256]uint32
	Sample    []byte
	Width     int
	Height    int
}
