package blocks

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/example/codoc/internal/fields"
	"github.com/example/codoc/internal/lang"
	"github.com/example/codoc/internal/model"
	"github.com/example/codoc/internal/tags"
)

// MaxExcerptLines caps the code lines captured after an end tag.
const MaxExcerptLines = 15

var linePrefix = regexp.MustCompile(`^` + commentPrefix)

// Parser turns file text into a partial result using every registered
// recognizer.
type Parser struct {
	root        string
	recognizers []Recognizer
}

// NewParser returns a parser that records file paths relative to root.
func NewParser(root string) *Parser {
	return &Parser{root: root, recognizers: Recognizers()}
}

// Parse extracts every block of text. Recognizers run in registry order and
// each one reports matches left to right.
func (p *Parser) Parse(path, text string) *model.Result {
	result := model.New()
	if text == "" {
		return result
	}

	file := p.relative(path)
	var lines []string

	for _, r := range p.recognizers {
		for m := range r.Matches(text) {
			if lines == nil {
				lines = splitLines(text)
			}
			reqID, item := r.build(m, text, file, path, lines)
			result.Add(reqID, r.Tag, item)
		}
	}
	return result
}

func (r Recognizer) build(m Match, text, file, path string, lines []string) (string, *model.Item) {
	content := Decomment(m.Body)

	defaultID := fields.Unassigned
	title := m.Title
	if r.Grammar == tags.Identifiable {
		if m.ID != "" {
			defaultID = m.ID
		}
		if title == "" {
			title = firstLine(content)
		}
	}

	reqID, ids := fields.ParseReqIDs(content, defaultID)
	if len(ids) == 0 {
		ids = []string{reqID}
	}

	item := &model.Item{
		File:    file,
		Line:    lineAt(text, m.Start),
		Title:   title,
		Content: content,
		Req:     model.IDList(ids),
		Domain:  model.IDList(fields.ParseDomains(content)),
	}

	if trailing := TrailingCode(lines, lineAt(text, m.End), MaxExcerptLines); len(trailing) > 0 {
		code := strings.Join(trailing, "\n")
		item.CheckCode = strings.Join(splitLines(m.Text(text)), "\n") + "\n" + code
		item.CheckCodeLanguage = lang.Detect(path, code)
	}
	return reqID, item
}

// Decomment strips the leading comment token from every line of body and
// trims the result.
func Decomment(body string) string {
	if body == "" {
		return ""
	}
	lines := splitLines(body)
	for i, l := range lines {
		lines[i] = linePrefix.ReplaceAllString(l, "")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// TrailingCode returns up to limit non-blank lines following the 1-based
// line endLine. Blank lines are skipped without using the budget.
func TrailingCode(lines []string, endLine, limit int) []string {
	var out []string
	for i := endLine; i < len(lines) && len(out) < limit; i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		out = append(out, strings.TrimRight(lines[i], " \t\r"))
	}
	return out
}

func (p *Parser) relative(path string) string {
	if p.root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(p.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// lineAt returns the 1-based line containing offset.
func lineAt(text string, offset int) int {
	return strings.Count(text[:offset], "\n") + 1
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func firstLine(content string) string {
	for _, l := range strings.Split(content, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}
