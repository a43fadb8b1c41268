// Package report renders an aggregated result as Markdown, JSON, YAML or
// HTML.
package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/example/codoc/internal/fields"
	"github.com/example/codoc/internal/model"
	"github.com/example/codoc/internal/tags"
)

// CodePlaceholder brackets every code excerpt.
const CodePlaceholder = "// ...existing code..."

// Links holds tracker URL templates. {id} is replaced by the identifier.
type Links struct {
	Requirement string
	Defect      string
}

// DefaultLinks point at the Aliyun DevOps tracker.
var DefaultLinks = Links{
	Requirement: "https://devops.aliyun.com/projex/req/{id}",
	Defect:      "https://devops.aliyun.com/projex/bug/{id}",
}

func (l Links) requirement(id string) string {
	return strings.ReplaceAll(l.Requirement, "{id}", id)
}

func (l Links) defect(id string) string {
	return strings.ReplaceAll(l.Defect, "{id}", id)
}

// prioritySections are rendered first, in this order, when present.
var prioritySections = []string{"summary", "testFocus", "decision", "feature"}

// priorityFields are rendered first, in this order, when present.
var priorityFields = []string{"context", "why", "how", "risk", "usecase", "businessrule", "checkmethod"}

var fieldNames = map[string]string{
	"context":      "Context",
	"why":          "Why",
	"how":          "How",
	"risk":         "Risk",
	"usecase":      "Usecase",
	"businessrule": "BusinessRule",
	"checkmethod":  "CheckMethod",
	"notice":       "Notice",
}

// FieldName returns the display name of a field key.
func FieldName(key string) string {
	if name, ok := fieldNames[key]; ok {
		return name
	}
	return key
}

// Markdown renders result in its requirement order. Item sequence numbers
// are assigned per section as a side effect.
func Markdown(result *model.Result, links Links) string {
	var lines []string
	for _, req := range result.Requirements() {
		lines = appendRequirement(lines, req, links)
	}
	return strings.Join(lines, "\n")
}

func appendRequirement(lines []string, req *model.Requirement, links Links) []string {
	if fields.IsTrackerID(req.ID) && req.Section("fix") != nil {
		lines = append(lines, fmt.Sprintf("## Defect Fix [%s](%s)\n", req.ID, links.defect(req.ID)))
	} else {
		lines = append(lines, fmt.Sprintf("## Requirement [%s](%s)\n", req.ID, links.requirement(req.ID)))
	}

	for _, t := range prioritySections {
		if sec := req.Section(t); sec != nil {
			lines = appendSection(lines, sec, req.ID, links)
		}
	}
	for _, sec := range req.Sections {
		if slices.Contains(prioritySections, sec.Type) {
			continue
		}
		lines = appendSection(lines, sec, req.ID, links)
	}
	return lines
}

func appendSection(lines []string, sec *model.Section, reqID string, links Links) []string {
	if len(sec.Items) == 0 {
		return lines
	}
	lines = append(lines, fmt.Sprintf("### %s\n", tags.Title(sec.Type)))
	for i, item := range sec.Items {
		item.SN = i + 1
		lines = appendItem(lines, item, reqID, links)
	}
	return lines
}

func appendItem(lines []string, item *model.Item, reqID string, links Links) []string {
	if item.Title != "" {
		if item.SN > 0 {
			lines = append(lines, fmt.Sprintf("#### %d. %s\n", item.SN, item.Title))
		} else {
			lines = append(lines, fmt.Sprintf("#### %s\n", item.Title))
		}
	}

	lines = append(lines,
		"> `Related`: "+strings.Join(relatedLinks(item.Req, reqID, links), ", "),
		"",
		"> `Domain`: "+strings.Join(item.Domain, ", "),
		"\n",
	)

	lines = appendFields(lines, fields.Extract(item.Content))
	lines = append(lines, fmt.Sprintf("- **Location**: `%s:%d`\n", item.File, item.Line))

	if item.CheckCode != "" {
		lines = appendCode(lines, item.CheckCode, item.CheckCodeLanguage)
	}
	return append(lines, "---\n")
}

// relatedLinks links every ID except the section's own. IDs that do not look
// like tracker IDs stay plain text.
func relatedLinks(ids []string, current string, links Links) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		switch {
		case id == current:
			continue
		case !fields.IsTrackerID(id):
			out = append(out, id)
		case strings.Contains(id, "BUG-"):
			out = append(out, fmt.Sprintf("[%s](%s)", id, links.defect(id)))
		default:
			out = append(out, fmt.Sprintf("[%s](%s)", id, links.requirement(id)))
		}
	}
	return out
}

func appendFields(lines []string, f fields.Fields) []string {
	for _, key := range priorityFields {
		if v, ok := f.Get(key); ok {
			lines = appendField(lines, key, v)
		}
	}
	for _, key := range f.Keys() {
		if slices.Contains(priorityFields, key) || key == "req" || key == "domain" {
			continue
		}
		v, _ := f.Get(key)
		lines = appendField(lines, key, v)
	}
	return lines
}

// appendField keeps the first value line on the bullet and indents the rest
// by two spaces so nested list markers stay nested.
func appendField(lines []string, key, value string) []string {
	first, rest, _ := strings.Cut(value, "\n")
	lines = append(lines, fmt.Sprintf("- **%s**: %s", FieldName(key), first))
	if rest == "" {
		return lines
	}
	for _, line := range strings.Split(rest, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, "  "+line)
		}
	}
	return lines
}

func appendCode(lines []string, code, language string) []string {
	if language == "" {
		language = "text"
	}
	lines = append(lines, "**Code**:\n", "```"+language)
	if language == "php" {
		lines = append(lines, "<?php")
	}
	lines = append(lines, CodePlaceholder)
	lines = append(lines, StripCommonIndent(strings.Split(code, "\n"))...)
	return append(lines, "", CodePlaceholder, "```\n")
}

// StripCommonIndent removes the leading whitespace shared by every non-blank
// line. Blank lines come back empty.
func StripCommonIndent(lines []string) []string {
	indent := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		if n := len(line) - len(trimmed); indent < 0 || n < indent {
			indent = n
		}
	}
	if indent < 0 {
		indent = 0
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out[i] = line[indent:]
	}
	return out
}
