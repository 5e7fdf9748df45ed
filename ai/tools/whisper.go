package tools

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// WhisperTranscriber shells out to whisper.cpp via a local binary.
// Audio is extracted with ffmpeg first because whisper only accepts wav input.
type WhisperTranscriber struct {
	binPath    string
	modelPath  string
	ffmpegPath string
}

// NewWhisperTranscriber creates a transcriber backed by local executables.
func NewWhisperTranscriber(binPath, modelPath, ffmpegPath string) *WhisperTranscriber {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &WhisperTranscriber{
		binPath:    binPath,
		modelPath:  modelPath,
		ffmpegPath: ffmpegPath,
	}
}

// Available reports whether the whisper binary is configured and present.
func (w *WhisperTranscriber) Available() bool {
	if w.binPath == "" {
		return false
	}
	_, err := exec.LookPath(w.binPath)
	return err == nil
}

// Transcribe extracts the audio track and runs whisper over it.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, videoPath string) (string, error) {
	if w.binPath == "" {
		return "", errors.New("whisper binary not configured")
	}
	if _, err := os.Stat(videoPath); err != nil {
		return "", errors.Wrapf(err, "video file %s", videoPath)
	}

	wavPath, err := w.extractAudio(ctx, videoPath)
	if err != nil {
		return "", err
	}
	defer os.Remove(wavPath)

	args := []string{"-f", wavPath, "--no-timestamps", "--output-txt", "false"}
	if w.modelPath != "" {
		args = append(args, "-m", w.modelPath)
	}
	cmd := exec.CommandContext(ctx, w.binPath, args...)
	output, err := cmd.Output()
	if err != nil {
		return "", errors.Wrap(err, "whisper failed")
	}

	transcript := strings.TrimSpace(string(output))
	if transcript == "" {
		return "", errors.New("whisper produced empty transcript")
	}
	return transcript, nil
}

// extractAudio converts the video's audio track to 16kHz mono wav.
func (w *WhisperTranscriber) extractAudio(ctx context.Context, videoPath string) (string, error) {
	tmpFile, err := os.CreateTemp("", "videoscope_audio_*.wav")
	if err != nil {
		return "", errors.Wrap(err, "create temp wav")
	}
	tmpFile.Close()

	cmd := exec.CommandContext(ctx, w.ffmpegPath,
		"-y", "-i", videoPath,
		"-vn", "-ar", "16000", "-ac", "1", "-f", "wav",
		tmpFile.Name(),
	)
	if err := cmd.Run(); err != nil {
		os.Remove(tmpFile.Name())
		return "", errors.Wrapf(err, "ffmpeg audio extraction for %s", filepath.Base(videoPath))
	}
	return tmpFile.Name(), nil
}
