package lang

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		sample string
		want   string
	}{
		{"extension wins over content", "a/b.go", "<?php echo 1;", "go"},
		{"upper-case extension", "MAIN.PY", "", "python"},
		{"vue maps to javascript", "App.vue", "<template></template>", "javascript"},
		{"javascript heuristic", "x.unknown", "function foo() { return 1 }", "javascript"},
		{"arrow function", "x", "const f = function => 1", "javascript"},
		{"python heuristic", "x", "def run(self):\n    pass", "python"},
		{"template heuristic", "x", "<template><div/></template>", "vue"},
		{"go heuristic", "x", "package main\nfunc main() {}", "go"},
		{"java heuristic", "x", "Public Class Foo", "java"},
		{"lua heuristic", "x", "local x = 1\nif x then return end", "lua"},
		{"php heuristic", "x", "<?php\n$a = 1;", "php"},
		{"nothing matches", "x.rs", "fn main() -> u8", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.path, tt.sample))
		})
	}
}

func TestDetectOnlyInspectsSamplePrefix(t *testing.T) {
	sample := strings.Repeat(" ", 100) + "<?php"
	assert.Equal(t, Default, Detect("noext", sample))
}

func TestDetectCountsCharactersNotBytes(t *testing.T) {
	sample := strings.Repeat("é", 95) + "<?php"
	assert.Equal(t, "php", Detect("noext", sample))

	sample = strings.Repeat("é", 99) + "<?php"
	assert.Equal(t, Default, Detect("noext", sample))
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode("/src/lib.rs"))
	assert.True(t, IsCode("/src/View.SWIFT"))
	assert.True(t, IsCode("/src/main.go"))
	assert.False(t, IsCode("/src/readme.md"))
	assert.False(t, IsCode("/src/Makefile"))
}
