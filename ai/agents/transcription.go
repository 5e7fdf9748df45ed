package agents

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/videoscope/videoscope/ai/metrics"
	"github.com/videoscope/videoscope/ai/routing"
	"github.com/videoscope/videoscope/ai/tools"
)

// TranscriptionAgent converts a video's audio track to text.
type TranscriptionAgent struct {
	transcriber tools.Transcriber
	metrics     *metrics.Exporter
}

// NewTranscriptionAgent creates the transcription agent. exporter may be nil.
func NewTranscriptionAgent(transcriber tools.Transcriber, exporter *metrics.Exporter) *TranscriptionAgent {
	return &TranscriptionAgent{transcriber: transcriber, metrics: exporter}
}

func (a *TranscriptionAgent) Name() string {
	return TranscriptionAgentName
}

func (a *TranscriptionAgent) Capability() *routing.AgentCapability {
	return &routing.AgentCapability{
		Capabilities: []string{
			"Audio transcription from video",
			"Speech-to-text conversion",
			"Subtitle generation",
			"Spoken word extraction",
		},
		IntentKeywords: []string{
			"transcribe", "transcript", "transcription",
			"speech", "spoken", "audio",
			"subtitle", "subtitles", "captions",
			"what said", "what was said", "what they said",
			"convert to text", "extract audio",
			"get transcript", "generate transcript",
			"voice", "talk", "speaking", "words",
			"dialogue", "conversation",
		},
		Categories: []routing.Category{routing.CategoryAudio, routing.CategoryText},
		ExampleTasks: []string{
			"Transcribe the video",
			"Generate a transcript for this video",
			"What was said in the video?",
			"Convert the audio to text",
		},
		RoutingPriority: 8,
	}
}

// Ready reports whether the whisper binary is reachable.
func (a *TranscriptionAgent) Ready() bool {
	if probe, ok := a.transcriber.(interface{ Available() bool }); ok {
		return probe.Available()
	}
	return a.transcriber != nil
}

func (a *TranscriptionAgent) CanHandle(task *VideoTask) bool {
	switch task.TaskType {
	case "transcription", "speech_to_text", "audio":
		return true
	}
	return false
}

func (a *TranscriptionAgent) Execute(ctx context.Context, task *VideoTask, emit EmitFunc) (*Result, error) {
	if task.FilePath == "" {
		return nil, errors.New("no video file registered; please register a video first")
	}

	if err := emit(&Chunk{Type: ChunkProgress, Content: "Extracting and transcribing audio...", AgentName: a.Name()}); err != nil {
		return nil, err
	}

	start := time.Now()
	transcript, err := a.transcriber.Transcribe(ctx, task.FilePath)
	if a.metrics != nil {
		a.metrics.RecordToolCall("whisper", time.Since(start), err == nil)
	}
	if err != nil {
		return nil, errors.Wrap(err, "transcription failed")
	}

	slog.Info("transcription complete",
		"video_id", task.VideoID,
		"chars", len(transcript),
		"duration", time.Since(start),
	)

	return &Result{
		Content: "Transcript:\n\n" + transcript,
		Data: map[string]any{
			"transcript": transcript,
			"video_id":   task.VideoID,
		},
	}, nil
}
