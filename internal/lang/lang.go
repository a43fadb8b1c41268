// Package lang maps source files to the language label used on code fences.
package lang

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Default is the label used when nothing identifies the language.
const Default = "text"

// sampleLimit bounds how much of a code sample the heuristics inspect.
const sampleLimit = 100

var extensions = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".jsx":  "javascript",
	".tsx":  "typescript",
	".vue":  "javascript",
	".php":  "php",
	".go":   "go",
	".java": "java",
	".lua":  "lua",
	".rb":   "ruby",
	".c":    "c",
	".cpp":  "cpp",
	".h":    "c",
	".hpp":  "cpp",
	".cs":   "csharp",
	".html": "html",
	".css":  "css",
	".scss": "scss",
	".sql":  "sql",
	".sh":   "bash",
	".json": "json",
	".xml":  "xml",
	".md":   "markdown",
}

// codeExtensions is the set of files worth scanning. It includes languages
// with no entry in extensions, such as Rust and Swift.
var codeExtensions = map[string]struct{}{
	".js": {}, ".ts": {}, ".jsx": {}, ".tsx": {}, ".vue": {},
	".py": {}, ".pyw": {},
	".java": {}, ".class": {}, ".kt": {},
	".c": {}, ".cpp": {}, ".h": {}, ".hpp": {},
	".cs":    {},
	".go":    {},
	".php":   {},
	".rb":    {},
	".swift": {},
	".rs":    {},
	".lua":   {},
	".sh":    {}, ".bash": {},
	".sql": {},
}

type heuristic struct {
	label string
	match func(sample string) bool
}

// Evaluated in order; the first hit wins.
var heuristics = []heuristic{
	{"javascript", func(s string) bool {
		return strings.Contains(s, "function") && (strings.Contains(s, "{") || strings.Contains(s, "=>"))
	}},
	{"python", func(s string) bool { return strings.Contains(s, "def ") && strings.Contains(s, ":") }},
	{"vue", func(s string) bool { return strings.Contains(s, "<template>") || strings.Contains(s, "<script>") }},
	{"go", func(s string) bool { return strings.Contains(s, "package ") && strings.Contains(s, "func ") }},
	{"java", func(s string) bool { return strings.Contains(s, "public class") || strings.Contains(s, "private class") }},
	{"lua", func(s string) bool { return strings.Contains(s, "local ") && strings.Contains(s, "end") }},
	{"php", func(s string) bool { return strings.Contains(s, "<?php") }},
}

// Detect returns the language label for filePath. The extension table takes
// priority; otherwise the first 100 characters of codeSample are inspected.
func Detect(filePath, codeSample string) string {
	if label, ok := extensions[strings.ToLower(filepath.Ext(filePath))]; ok {
		return label
	}

	if utf8.RuneCountInString(codeSample) > sampleLimit {
		codeSample = string([]rune(codeSample)[:sampleLimit])
	}
	sample := strings.ToLower(codeSample)
	for _, h := range heuristics {
		if h.match(sample) {
			return h.label
		}
	}
	return Default
}

// IsCode reports whether filePath has a scannable source extension.
func IsCode(filePath string) bool {
	_, ok := codeExtensions[strings.ToLower(filepath.Ext(filePath))]
	return ok
}
