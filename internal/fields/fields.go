// Package fields parses the `- key: value` lines of a documentation block
// body and the two reserved list-valued keys, req and domain.
package fields

import (
	"regexp"
	"strings"
)

// Unassigned is the requirement ID of blocks that name none.
const Unassigned = "???"

var (
	// A field line is `- key: value`; the colon may be ASCII or full-width.
	fieldLine = regexp.MustCompile(`^[ \t]*(?:(?://|\*)[ \t]*)?-[ \t]+(\w+)[:：][ \t]*(.*)$`)
	// Continuation lines may still carry a comment prefix when content was
	// not de-commented by the caller.
	commentPrefix = regexp.MustCompile(`^[ \t]*(?://|\*(?:[ \t]|$))[ \t]*`)
	idPattern     = regexp.MustCompile(`(?i)[A-Z]+-\d+`)
	trackerID     = regexp.MustCompile(`(?i)^[A-Z]+-\d+$`)
	listSeparator = regexp.MustCompile(`[,，]`)
)

// Fields is an ordered key/value set. Keys keep the position of their first
// occurrence; a later duplicate overwrites the value.
type Fields struct {
	keys   []string
	values map[string]string
}

// Get returns the value stored for key.
func (f Fields) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Keys returns the field keys in extraction order.
func (f Fields) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Len reports the number of fields.
func (f Fields) Len() int {
	return len(f.keys)
}

func (f *Fields) set(key, value string) {
	if f.values == nil {
		f.values = map[string]string{}
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Extract scans content for field lines. A value runs until the next field
// line, an @end marker, a comment close or the end of content. Keys are
// lower-cased and empty values are dropped.
func Extract(content string) Fields {
	var (
		f    Fields
		key  string
		buf  []string
		open bool
	)

	flush := func() {
		if !open {
			return
		}
		open = false
		if v := normalize(buf); v != "" {
			f.set(key, v)
		}
		buf = nil
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if m := fieldLine.FindStringSubmatch(line); m != nil {
			flush()
			key, open = strings.ToLower(m[1]), true
			line = m[2]
		} else if !open {
			continue
		} else if isEndMarker(line) {
			flush()
			continue
		}

		if before, _, closed := strings.Cut(line, "*/"); closed {
			buf = append(buf, before)
			flush()
			continue
		}
		buf = append(buf, line)
	}
	flush()

	return f
}

func isEndMarker(line string) bool {
	trimmed := commentPrefix.ReplaceAllString(line, "")
	return strings.HasPrefix(strings.TrimSpace(trimmed), "@end")
}

// normalize trims the value, then trims every line of a multi-line value
// while keeping the line structure so nested list markers survive.
func normalize(lines []string) string {
	for i := 1; i < len(lines); i++ {
		lines[i] = commentPrefix.ReplaceAllString(lines[i], "")
	}
	value := strings.TrimSpace(strings.Join(lines, "\n"))
	if !strings.Contains(value, "\n") {
		return value
	}

	parts := strings.Split(value, "\n")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, "\n")
}

// ParseReqIDs reads the req field. IDs shaped like LETTERS-DIGITS win; without
// any, the raw value is split on commas. With no req field the primary ID is
// defaultID. A primary ID other than Unassigned is always present in ids.
// Only the field's own line is read.
func ParseReqIDs(content, defaultID string) (primary string, ids []string) {
	primary = defaultID

	if v, ok := listField(content, "req"); ok {
		if matches := idPattern.FindAllString(v, -1); len(matches) > 0 {
			ids = matches
			primary = matches[0]
		} else if parts := splitList(v); len(parts) > 0 {
			ids = parts
			primary = parts[0]
		}
	}

	if len(ids) == 0 && primary != "" && primary != Unassigned {
		ids = append(ids, primary)
	}
	return primary, ids
}

// ParseDomains reads the domain field as a comma separated list. Only the
// field's own line is read.
func ParseDomains(content string) []string {
	v, ok := listField(content, "domain")
	if !ok {
		return []string{}
	}
	return splitList(v)
}

// listField returns the first line of the key's value.
func listField(content, key string) (string, bool) {
	v, ok := Extract(content).Get(key)
	if !ok {
		return "", false
	}
	first, _, _ := strings.Cut(v, "\n")
	return first, true
}

// IsTrackerID reports whether id has the LETTERS-DIGITS tracker shape.
func IsTrackerID(id string) bool {
	return trackerID.MatchString(id)
}

func splitList(v string) []string {
	out := []string{}
	for _, p := range listSeparator.Split(v, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
