package tools

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"sort"

	"github.com/pkg/errors"
)

// ExecDetector shells out to a local object-detection binary.
// The binary samples frames from the video and prints a JSON array of
// per-class aggregates on stdout.
type ExecDetector struct {
	binPath string
}

// NewExecDetector creates a detector backed by a local executable.
func NewExecDetector(binPath string) *ExecDetector {
	return &ExecDetector{binPath: binPath}
}

// Available reports whether the detector binary is configured and present.
func (d *ExecDetector) Available() bool {
	if d.binPath == "" {
		return false
	}
	_, err := exec.LookPath(d.binPath)
	return err == nil
}

// Detect runs the detector and parses its JSON output.
// Results are sorted by count descending so the most prominent objects
// come first.
func (d *ExecDetector) Detect(ctx context.Context, videoPath string) ([]Detection, error) {
	if d.binPath == "" {
		return nil, errors.New("detector binary not configured")
	}
	if _, err := os.Stat(videoPath); err != nil {
		return nil, errors.Wrapf(err, "video file %s", videoPath)
	}

	cmd := exec.CommandContext(ctx, d.binPath, "--json", videoPath)
	output, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrap(err, "detector failed")
	}

	var detections []Detection
	if err := json.Unmarshal(output, &detections); err != nil {
		return nil, errors.Wrap(err, "parse detector output")
	}

	sort.Slice(detections, func(i, j int) bool {
		if detections[i].Count != detections[j].Count {
			return detections[i].Count > detections[j].Count
		}
		return detections[i].Label < detections[j].Label
	})
	return detections, nil
}
