package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected string
	}{
		{"empty line", "", ""},
		{"whitespace only", "   ", ""},
		{"comment", "# this is a comment", ""},
		{"negation skipped", "!important.txt", ""},
		{"file glob", "*.log", "**/*.log"},
		{"bare name", "node_modules", "{**/node_modules,**/node_modules/**}"},
		{"directory with slash", "node_modules/", "**/node_modules/**"},
		{"nested path", "vendor/cache", "{vendor/cache,vendor/cache/**}"},
		{"rooted directory", "/dist/", "/dist/**"},
		{"double star", "**/build/", "**/build/**"},
		{"file with extension", "file.txt", "**/file.txt"},
		{"explicit glob", "src/**/*.gen.go", "src/**/*.gen.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLine(tt.line))
		})
	}
}

func TestExcluded(t *testing.T) {
	root := filepath.FromSlash("/work/project")
	m, err := Load(root, []string{"*.gen.go", "/legacy/", "internal/tmp"}, nil)
	require.NoError(t, err)

	abs := func(rel string) string { return filepath.Join(root, filepath.FromSlash(rel)) }

	tests := []struct {
		path string
		want bool
	}{
		{abs("main.go"), false},
		{abs("node_modules/pkg/index.js"), true},
		{abs("web/node_modules/pkg/index.js"), true},
		{abs(".git/hooks/pre-commit.sh"), true},
		{abs("api/types.gen.go"), true},
		{abs("legacy/old.go"), true},
		{abs("src/legacy/old.go"), false},
		{abs("internal/tmp/x.go"), true},
		{abs("internal/tmpfile.go"), false},
		{abs("vendored.go"), false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Excluded(tt.path))
		})
	}
}

func TestLoadReadsIgnoreFiles(t *testing.T) {
	root := t.TempDir()
	gitignore := "# build outputs\nbuild/\n*.min.js\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte(gitignore), 0o644))

	m, err := Load(root, nil, DefaultIgnoreFiles)
	require.NoError(t, err)

	assert.Contains(t, m.Patterns(), "**/build/**")
	assert.Contains(t, m.Patterns(), "**/*.min.js")
	assert.True(t, m.Excluded(filepath.Join(root, "build", "a.go")))
	assert.True(t, m.Excluded(filepath.Join(root, "web", "app.min.js")))
	assert.False(t, m.Excluded(filepath.Join(root, "web", "app.js")))
}

func TestFilter(t *testing.T) {
	m, err := New("/p", []string{"**/skip/**"})
	require.NoError(t, err)

	got := m.Filter([]string{"/p/a.go", "/p/skip/b.go", "/p/c.go"})

	assert.Equal(t, []string{"/p/a.go", "/p/c.go"}, got)
}

func TestNilMatcherExcludesNothing(t *testing.T) {
	var m *Matcher
	assert.False(t, m.Excluded("/anything"))
}

func TestExcludedDir(t *testing.T) {
	root := filepath.FromSlash("/work/project")
	m, err := Load(root, []string{"/generated/"}, nil)
	require.NoError(t, err)

	assert.True(t, m.ExcludedDir(filepath.Join(root, "node_modules")))
	assert.True(t, m.ExcludedDir(filepath.Join(root, "web", "node_modules")))
	assert.True(t, m.ExcludedDir(filepath.Join(root, "generated")))
	assert.False(t, m.ExcludedDir(filepath.Join(root, "src")))
	assert.False(t, m.ExcludedDir(root))
}

func TestDirectoriesAboveRootAreIgnored(t *testing.T) {
	root := filepath.FromSlash("/home/out/project")
	m, err := Load(root, nil, nil)
	require.NoError(t, err)

	assert.False(t, m.Excluded(filepath.Join(root, "main.go")))
	assert.True(t, m.Excluded(filepath.Join(root, "out", "main.go")))
}
