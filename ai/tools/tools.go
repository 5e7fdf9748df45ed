// Package tools wraps the local ML executables (whisper, object detector)
// behind small interfaces so agents stay testable without the binaries.
package tools

import "context"

// Transcriber produces a text transcript for a local video file.
type Transcriber interface {
	Transcribe(ctx context.Context, videoPath string) (string, error)
}

// Detection is one detected object class aggregated across sampled frames.
type Detection struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Confidence float64 `json:"confidence"`
}

// Detector runs object detection over a local video file.
type Detector interface {
	Detect(ctx context.Context, videoPath string) ([]Detection, error)
}
