// Package blocks locates tagged documentation blocks in comment text and
// turns them into model items.
package blocks

import (
	"iter"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/example/codoc/internal/tags"
)

// commentPrefix is the leading comment token of a physical line.
const commentPrefix = `[ \t]*(?://|\*)[ \t]*`

// Match is one start/end tag pair found in a text.
type Match struct {
	// Start is the offset of the start-tag line; End is just past the end tag.
	Start, End int
	// ID is the parenthetical text of an identifiable tag.
	ID    string
	Title string
	// Body is the raw text between the tag lines, comment prefixes intact.
	Body string
}

// Text returns the matched span of src.
func (m Match) Text(src string) string {
	return src[m.Start:m.End]
}

// Recognizer finds blocks of one type. It holds no iteration state and is
// safe for concurrent use.
type Recognizer struct {
	Tag     string
	Grammar tags.Grammar
	start   *regexp.Regexp
	end     *regexp.Regexp
}

// NewRecognizer compiles the start and end patterns for e.
func NewRecognizer(e tags.Entry) Recognizer {
	tag := regexp.QuoteMeta(e.Type)

	var start string
	switch e.Grammar {
	case tags.Identifiable:
		start = `(?m)^` + commentPrefix + `@` + tag + `\(([^)\r\n]*)\)(?:[ \t]+([^\r\n]*))?\r?$`
	default:
		start = `(?m)^` + commentPrefix + `@` + tag + `(?:[ \t]+([^\r\n]*))?\r?$`
	}
	end := `(?m)^` + commentPrefix + `@end(?:` + tag + `|` + regexp.QuoteMeta(capitalize(e.Type)) + `)\b`

	return Recognizer{
		Tag:     e.Type,
		Grammar: e.Grammar,
		start:   regexp.MustCompile(start),
		end:     regexp.MustCompile(end),
	}
}

var defaultRecognizers = sync.OnceValue(func() []Recognizer {
	entries := tags.Entries()
	out := make([]Recognizer, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewRecognizer(e))
	}
	return out
})

// Recognizers returns one recognizer per registered block type, identifiable
// types first.
func Recognizers() []Recognizer {
	return defaultRecognizers()
}

// Matches yields every block in text, left to right. The first end tag after
// a start tag closes the block; a start tag with no end tag yields nothing.
// Each call starts a fresh scan.
func (r Recognizer) Matches(text string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		pos := 0
		for pos < len(text) {
			loc := r.start.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				return
			}

			m := Match{Start: pos + loc[0]}
			titleGroup := 2
			if r.Grammar == tags.Identifiable {
				m.ID = strings.TrimSpace(text[pos+loc[2] : pos+loc[3]])
				titleGroup = 4
			}
			if loc[titleGroup] >= 0 {
				m.Title = strings.TrimSpace(text[pos+loc[titleGroup] : pos+loc[titleGroup+1]])
			}

			bodyStart := nextLine(text, pos+loc[1])
			if bodyStart >= len(text) {
				return
			}
			endLoc := r.end.FindStringIndex(text[bodyStart:])
			if endLoc == nil {
				return
			}
			m.Body = strings.TrimRight(text[bodyStart:bodyStart+endLoc[0]], "\r\n")
			m.End = bodyStart + endLoc[1]

			if !yield(m) {
				return
			}
			pos = nextLine(text, m.End)
		}
	}
}

// nextLine returns the offset just past the newline at or after i.
func nextLine(text string, i int) int {
	if j := strings.IndexByte(text[i:], '\n'); j >= 0 {
		return i + j + 1
	}
	return len(text)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
