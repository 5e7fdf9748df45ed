package agents

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/videoscope/videoscope/ai/llm"
	"github.com/videoscope/videoscope/ai/routing"
)

const reportSystemPrompt = `You are a report writer for a desktop video-analysis application.
Write a concise, well-structured Markdown report of the analysis session.
Use headings, bullet lists and short paragraphs. Do not invent findings
that are not present in the provided context.`

// ReportAgent generates a session report as Markdown and exports it as HTML.
type ReportAgent struct {
	llm       llm.Service
	markdown  goldmark.Markdown
	outputDir string
}

// NewReportAgent creates the report agent. llmService may be nil, in which
// case reports are assembled from the session context without rewriting.
func NewReportAgent(llmService llm.Service, outputDir string) *ReportAgent {
	return &ReportAgent{
		llm:       llmService,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		outputDir: outputDir,
	}
}

func (a *ReportAgent) Name() string {
	return ReportAgentName
}

func (a *ReportAgent) Capability() *routing.AgentCapability {
	return &routing.AgentCapability{
		Capabilities: []string{
			"Report generation",
			"Session summary documents",
			"Structured narrative reports",
		},
		IntentKeywords: []string{
			"report", "pdf", "summary report", "document",
			"export report", "generate report", "create report",
		},
		Categories: []routing.Category{routing.CategoryGeneration, routing.CategoryText},
		ExampleTasks: []string{
			"Generate a report of this analysis",
			"Create a summary document for the video",
			"Export a report with detected entities and themes",
		},
		RoutingPriority: 7,
	}
}

func (a *ReportAgent) CanHandle(task *VideoTask) bool {
	switch task.TaskType {
	case "report", "pdf":
		return true
	}
	return false
}

func (a *ReportAgent) Execute(ctx context.Context, task *VideoTask, emit EmitFunc) (*Result, error) {
	if err := emit(&Chunk{Type: ChunkProgress, Content: "Assembling session report...", AgentName: a.Name()}); err != nil {
		return nil, err
	}

	md, err := a.composeMarkdown(ctx, task)
	if err != nil {
		return nil, err
	}

	htmlPath, err := a.exportHTML(task.VideoID, md)
	if err != nil {
		// The report text is still useful without the exported file.
		slog.Warn("report HTML export failed", "error", err)
		htmlPath = ""
	}

	data := map[string]any{
		"report_markdown": md,
		"video_id":        task.VideoID,
	}
	if htmlPath != "" {
		data["report_html_path"] = htmlPath
	}
	return &Result{Content: md, Data: data}, nil
}

// composeMarkdown asks the LLM to write the report, or assembles a plain
// one from the session context when no LLM is configured.
func (a *ReportAgent) composeMarkdown(ctx context.Context, task *VideoTask) (string, error) {
	if a.llm == nil {
		return a.plainReport(task), nil
	}

	prompt := fmt.Sprintf("Request: %s\n\nSession context:\n%s", task.Description, task.Context)
	content, _, err := a.llm.Chat(ctx, []llm.Message{
		llm.SystemPrompt(reportSystemPrompt),
		llm.UserMessage(prompt),
	})
	if err != nil {
		slog.Warn("report LLM call failed, using plain report", "error", err)
		return a.plainReport(task), nil
	}
	return content, nil
}

func (a *ReportAgent) plainReport(task *VideoTask) string {
	var b bytes.Buffer
	b.WriteString("# Video Analysis Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04"))
	if task.VideoID != "" {
		fmt.Fprintf(&b, "Video: %s\n\n", task.VideoID)
	}
	fmt.Fprintf(&b, "## Request\n\n%s\n", task.Description)
	if task.Context != "" {
		fmt.Fprintf(&b, "\n## Session\n\n%s\n", task.Context)
	}
	return b.String()
}

// exportHTML renders the Markdown report and writes it under the output dir.
func (a *ReportAgent) exportHTML(videoID, md string) (string, error) {
	if a.outputDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create report dir")
	}

	var html bytes.Buffer
	if err := a.markdown.Convert([]byte(md), &html); err != nil {
		return "", errors.Wrap(err, "render report html")
	}

	name := fmt.Sprintf("report_%s_%d.html", videoID, time.Now().Unix())
	if videoID == "" {
		name = fmt.Sprintf("report_%d.html", time.Now().Unix())
	}
	path := filepath.Join(a.outputDir, name)
	if err := os.WriteFile(path, html.Bytes(), 0o644); err != nil {
		return "", errors.Wrap(err, "write report html")
	}
	return path, nil
}
