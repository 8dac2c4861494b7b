package renderer

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/caomingyu/soulqun/bus"
	"github.com/caomingyu/soulqun/message"
	"github.com/caomingyu/soulqun/session"
)

const markdownTemplate = `+++
title = {{ .Title }}
date = {{ .Date }}
tags = {{ .Tags }}
+++

{{ .Body }}
`

func NewMarkdownRenderer(outputDir string) *MarkdownRenderer {
	slug := time.Now().Format("20060102-150405")
	return &MarkdownRenderer{
		outputDir: outputDir,
		filePath:  filepath.Join(outputDir, slug+".md"),
	}
}

// MarkdownRenderer collects the whole session and writes one transcript
// file with front matter when the bus closes, then appends the soul
// report in Finalize.
type MarkdownRenderer struct {
	outputDir string
	filePath  string
}

func (r *MarkdownRenderer) Render(b bus.Bus, wg *sync.WaitGroup) error {
	ch := b.Subscribe()
	var inbox []*message.Message

	wg.Add(1)
	go func() {
		defer wg.Done()
		for m := range ch {
			inbox = append(inbox, m)
		}
		if len(inbox) < 2 {
			return
		}
		if err := r.render(inbox); err != nil {
			slog.Error("failed to render markdown", "error", err)
		}
	}()

	return nil
}

func (r *MarkdownRenderer) render(inbox []*message.Message) error {
	title := "群聊记录"
	var systemAnnounce string
	participants := make(map[string]string)
	var conversationLog strings.Builder

	for _, m := range inbox {
		switch m.Kind {
		case message.KindSystem:
			if systemAnnounce == "" {
				systemAnnounce = fmt.Sprintf("> %s\n", m.Text)
			}
		case message.KindUser:
			conversationLog.WriteString(fmt.Sprintf("**你**: %s\n\n", m.Text))
		case message.KindPersona:
			if m.From == nil {
				continue
			}
			participants[m.From.PersonaId] = m.From.DisplayName
			prefix := ""
			if m.Breakdown {
				prefix = "💔 "
			} else if m.Betrayal {
				prefix = "⚡ "
			}
			conversationLog.WriteString(fmt.Sprintf("**%s**: %s%s\n\n", m.From.DisplayName, prefix, m.Text))
		}
	}

	var body strings.Builder
	if systemAnnounce != "" {
		body.WriteString(systemAnnounce)
		body.WriteString("\n---\n\n")
	}

	names := make([]string, 0, len(participants))
	for _, n := range participants {
		names = append(names, n)
	}
	sort.Strings(names)

	body.WriteString("## 群成员\n\n")
	for _, n := range names {
		body.WriteString(fmt.Sprintf("- **%s**\n", n))
	}
	body.WriteString("\n---\n\n## 聊天记录\n\n")
	body.WriteString(conversationLog.String())

	tags := make([]string, 0, len(names))
	for _, n := range names {
		tags = append(tags, fmt.Sprintf("%q", n))
	}

	tmpl, err := template.New("markdown").Parse(markdownTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse markdown template: %w", err)
	}

	data := struct {
		Date  string
		Title string
		Tags  string
		Body  string
	}{
		Date:  fmt.Sprintf("%q", time.Now().Format("2006-01-02T15:04:05-07:00")),
		Title: fmt.Sprintf("%q", title),
		Tags:  fmt.Sprintf("[%s]", strings.Join(tags, ", ")),
		Body:  body.String(),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.WriteFile(r.filePath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write markdown file: %w", err)
	}

	slog.Info("transcript written", "path", r.filePath)
	return nil
}

// Finalize appends the soul purity report to the transcript file.
func (r *MarkdownRenderer) Finalize(sum *session.Summary) error {
	if sum == nil || r.filePath == "" {
		return nil
	}

	var epilogue strings.Builder
	epilogue.WriteString("\n---\n\n## 灵魂纯度检测报告\n\n")
	epilogue.WriteString(fmt.Sprintf("**灵魂类型:** %s\n\n", sum.Soul.SoulType))
	for _, comp := range sum.Soul.Components {
		epilogue.WriteString(fmt.Sprintf("- **%s:** `%.1f%%` %s\n", comp.Name, comp.Percentage, comp.Description))
	}
	if len(sum.Soul.SpecialTraits) > 0 {
		epilogue.WriteString("\n**特质:** " + strings.Join(sum.Soul.SpecialTraits, " / ") + "\n")
	}
	epilogue.WriteString("\n**毒舌点评:** " + sum.Soul.Roast + "\n")
	epilogue.WriteString("\n**建议:** " + sum.Soul.Advice + "\n")
	if sum.BetrayalSummary != "" {
		epilogue.WriteString("\n" + sum.BetrayalSummary + "\n")
	}

	f, err := os.OpenFile(r.filePath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("transcript file does not exist, skipping epilogue", "path", r.filePath)
			return nil
		}
		return fmt.Errorf("failed to open markdown file for appending: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(epilogue.String()); err != nil {
		return fmt.Errorf("failed to append epilogue: %w", err)
	}

	slog.Info("soul report appended", "path", r.filePath)
	return nil
}
