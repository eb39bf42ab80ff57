// Package drafting asks a text-generation model for a roadmap skeleton and
// turns its untrusted output into a Draft a human can review and edit.
package drafting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/roadmaphub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/roadmaphub/internal/app/system/inputval"
	"github.com/dalemusser/roadmaphub/internal/app/system/normalize"
	"github.com/dalemusser/roadmaphub/internal/domain/models"
)

// Generator sends a prompt to a model and returns its raw text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Request describes the roadmap to draft.
type Request struct {
	Topic string
	Level string // optional, e.g. "beginner"
}

// Draft is a proposed roadmap. It is never stored.
type Draft struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Tags        []string      `json:"tags"`
	Steps       []models.Step `json:"steps"`
}

// ErrParseFailed matches any *ParseError.
var ErrParseFailed = errors.New("model output is not a roadmap")

// ParseError carries the raw model output that could not be parsed so the
// caller can fall back to manual editing.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string { return "parse draft: " + e.Reason }

func (e *ParseError) Is(target error) bool { return target == ErrParseFailed }

// BuildPrompt renders the instruction sent to the model.
func BuildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Generate a learning roadmap as a single JSON object and nothing else.\n")
	b.WriteString("Schema:\n")
	b.WriteString(`{
  "title": "string",
  "description": "string",
  "category": "string",
  "tags": ["string"],
  "steps": [
    {
      "title": "string",
      "description": "string",
      "resources": ["absolute https URL"]
    }
  ]
}
`)
	b.WriteString("Order the steps from first to last. Use only real, publicly reachable links in resources.\n")
	if lvl := strings.TrimSpace(req.Level); lvl != "" {
		fmt.Fprintf(&b, "Audience level: %s\n", lvl)
	}
	fmt.Fprintf(&b, "Topic: %s\n", strings.TrimSpace(req.Topic))
	return b.String()
}

// StripFences removes a surrounding Markdown code fence (``` or ```json).
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the info string ("json", "JSON", ...) up to the first newline.
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "json"), "JSON")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractJSON returns the first balanced {...} object in s. Braces inside
// JSON strings are ignored.
func ExtractJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// ParseDraft decodes model output into a Draft. Markup is stripped, tags
// are normalized, resources that are not absolute http(s) URLs are dropped,
// and steps without a title are skipped. A result with no title or no steps
// is a *ParseError.
func ParseDraft(raw string) (Draft, error) {
	obj, ok := ExtractJSON(StripFences(raw))
	if !ok {
		return Draft{}, &ParseError{Raw: raw, Reason: "no JSON object found"}
	}

	var d Draft
	if err := json.Unmarshal([]byte(obj), &d); err != nil {
		return Draft{}, &ParseError{Raw: raw, Reason: err.Error()}
	}

	d.Title = htmlsanitize.PlainText(d.Title)
	d.Description = htmlsanitize.PlainText(d.Description)
	d.Category = normalize.Category(htmlsanitize.PlainText(d.Category))
	d.Tags = normalize.Tags(htmlsanitize.PlainTexts(d.Tags))
	if d.Tags == nil {
		d.Tags = []string{}
	}

	steps := make([]models.Step, 0, len(d.Steps))
	for _, st := range d.Steps {
		title := htmlsanitize.PlainText(st.Title)
		if title == "" {
			continue
		}
		links := []string{}
		for _, u := range normalize.Resources(st.Resources) {
			if inputval.IsHTTPURL(u) {
				links = append(links, u)
			}
		}
		steps = append(steps, models.Step{
			Title:       title,
			Description: htmlsanitize.PlainText(st.Description),
			Resources:   links,
		})
	}
	d.Steps = steps

	if d.Title == "" {
		return Draft{}, &ParseError{Raw: raw, Reason: "title is missing"}
	}
	if len(d.Steps) == 0 {
		return Draft{}, &ParseError{Raw: raw, Reason: "no steps"}
	}
	return d, nil
}

// Generate drafts a roadmap for req with gen.
func Generate(ctx context.Context, gen Generator, req Request) (Draft, error) {
	raw, err := gen.Generate(ctx, BuildPrompt(req))
	if err != nil {
		return Draft{}, fmt.Errorf("generate draft: %w", err)
	}
	return ParseDraft(raw)
}
