// Package ignore decides which candidate files are excluded from a scan,
// using glob patterns and gitignore-style files.
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultPatterns are always excluded.
var DefaultPatterns = []string{
	"**/node_modules/**",
	"**/vendor/**",
	"**/dist/**",
	"**/out/**",
	"**/.git/**",
}

// DefaultIgnoreFiles are read from the project root when present.
var DefaultIgnoreFiles = []string{".gitignore", ".codocignore"}

// Matcher tests project files against compiled exclusion globs.
type Matcher struct {
	root     string
	patterns []string
	globs    []glob.Glob
}

// New compiles patterns for files under root.
func New(root string, patterns []string) (*Matcher, error) {
	m := &Matcher{root: root}
	for _, p := range deduplicate(patterns) {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compile exclude pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, p)
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Load builds a matcher from the defaults, the given extra patterns and the
// ignore files found in root.
func Load(root string, extra, ignoreFiles []string) (*Matcher, error) {
	patterns := append([]string{}, DefaultPatterns...)
	for _, p := range extra {
		if p = toGlobPattern(strings.TrimSpace(p)); p != "" {
			patterns = append(patterns, p)
		}
	}

	for _, name := range ignoreFiles {
		filePatterns, err := parseFile(filepath.Join(root, name))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read ignore file %s: %w", name, err)
		}
		patterns = append(patterns, filePatterns...)
	}

	return New(root, patterns)
}

// Patterns returns the compiled patterns in order.
func (m *Matcher) Patterns() []string {
	return append([]string(nil), m.patterns...)
}

// Excluded reports whether path matches any pattern. Absolute paths under
// the root are matched in root-relative form, so patterns never see the
// directories above the root.
func (m *Matcher) Excluded(path string) bool {
	if m == nil || len(m.globs) == 0 {
		return false
	}
	return m.match(m.candidates(path), "")
}

// ExcludedDir reports whether everything below dir is excluded, so a walk
// can skip it.
func (m *Matcher) ExcludedDir(dir string) bool {
	if m == nil || len(m.globs) == 0 {
		return false
	}
	return m.match(m.candidates(dir), "/")
}

func (m *Matcher) candidates(path string) []string {
	if m.root == "" || !filepath.IsAbs(path) {
		return []string{filepath.ToSlash(path)}
	}
	rel, err := filepath.Rel(m.root, path)
	switch {
	case err != nil || strings.HasPrefix(rel, ".."):
		return []string{filepath.ToSlash(path)}
	case rel == ".":
		return nil
	}
	rel = filepath.ToSlash(rel)
	return []string{rel, "/" + rel}
}

func (m *Matcher) match(candidates []string, suffix string) bool {
	for _, g := range m.globs {
		for _, c := range candidates {
			if g.Match(c + suffix) {
				return true
			}
		}
	}
	return false
}

// Filter returns the paths that are not excluded, keeping order.
func (m *Matcher) Filter(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !m.Excluded(p) {
			out = append(out, p)
		}
	}
	return out
}

func parseFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if pattern := parseLine(scanner.Text()); pattern != "" {
			patterns = append(patterns, pattern)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// parseLine converts one gitignore line into a glob. Comments, blank lines
// and negations yield "".
func parseLine(line string) string {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
		return ""
	}
	return toGlobPattern(line)
}

// toGlobPattern maps gitignore semantics onto globs. Patterns without a
// slash match at any depth; directory-like patterns match everything below.
func toGlobPattern(pattern string) string {
	if pattern == "" {
		return ""
	}

	dir := strings.HasSuffix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")
	if !strings.Contains(pattern, "/") {
		pattern = "**/" + pattern
	}

	last := pattern[strings.LastIndex(pattern, "/")+1:]
	switch {
	case dir:
		return pattern + "/**"
	case strings.ContainsAny(last, ".*?[{"):
		return pattern
	default:
		// Could name a file or a directory.
		return "{" + pattern + "," + pattern + "/**}"
	}
}

func deduplicate(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
