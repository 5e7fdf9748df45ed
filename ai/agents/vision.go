package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/videoscope/videoscope/ai/metrics"
	"github.com/videoscope/videoscope/ai/routing"
	"github.com/videoscope/videoscope/ai/tools"
)

// VisionAgent runs object detection over a video's frames.
type VisionAgent struct {
	detector tools.Detector
	metrics  *metrics.Exporter
}

// NewVisionAgent creates the vision agent. exporter may be nil.
func NewVisionAgent(detector tools.Detector, exporter *metrics.Exporter) *VisionAgent {
	return &VisionAgent{detector: detector, metrics: exporter}
}

func (a *VisionAgent) Name() string {
	return VisionAgentName
}

func (a *VisionAgent) Capability() *routing.AgentCapability {
	return &routing.AgentCapability{
		Capabilities: []string{
			"Object detection in videos",
			"Visual content analysis",
			"People and animal detection",
			"Vehicle and object tracking",
			"Scene understanding",
		},
		IntentKeywords: []string{
			"detect", "detection", "identify", "find",
			"locate", "search", "spot",
			"object", "objects", "person", "people",
			"car", "vehicle", "animal", "thing",
			"what see", "what's in", "show me",
			"track", "follow", "movement",
			"analyze video", "video analysis",
			"visual", "vision", "image", "frame",
			"appear", "visible", "scene",
			"summarize video", "main themes", "what happens",
			"describe video", "explain video",
		},
		Categories: []routing.Category{routing.CategoryVision, routing.CategoryAnalysis},
		ExampleTasks: []string{
			"Detect objects in the video",
			"Find all people in the video",
			"What cars appear in the video?",
			"Analyze what's happening in the video",
		},
		RoutingPriority: 9,
	}
}

// Ready reports whether the detector binary is reachable.
func (a *VisionAgent) Ready() bool {
	if probe, ok := a.detector.(interface{ Available() bool }); ok {
		return probe.Available()
	}
	return a.detector != nil
}

func (a *VisionAgent) CanHandle(task *VideoTask) bool {
	switch task.TaskType {
	case "vision", "object_detection", "video":
		return true
	}
	return false
}

func (a *VisionAgent) Execute(ctx context.Context, task *VideoTask, emit EmitFunc) (*Result, error) {
	if task.FilePath == "" {
		return nil, errors.New("no video file registered; please register a video first")
	}

	if err := emit(&Chunk{Type: ChunkProgress, Content: "Sampling frames and detecting objects...", AgentName: a.Name()}); err != nil {
		return nil, err
	}

	start := time.Now()
	detections, err := a.detector.Detect(ctx, task.FilePath)
	if a.metrics != nil {
		a.metrics.RecordToolCall("detector", time.Since(start), err == nil)
	}
	if err != nil {
		return nil, errors.Wrap(err, "object detection failed")
	}

	slog.Info("object detection complete",
		"video_id", task.VideoID,
		"classes", len(detections),
		"duration", time.Since(start),
	)

	return &Result{
		Content: describeDetections(detections),
		Data: map[string]any{
			"detections": detections,
			"video_id":   task.VideoID,
		},
	}, nil
}

// describeDetections renders detection aggregates into one readable sentence.
func describeDetections(detections []tools.Detection) string {
	if len(detections) == 0 {
		return "No objects were detected in the video."
	}
	parts := make([]string, 0, len(detections))
	for _, d := range detections {
		parts = append(parts, fmt.Sprintf("%d %s", d.Count, d.Label))
	}
	return fmt.Sprintf("Detected %d object types in the video: %s.", len(detections), strings.Join(parts, ", "))
}
