// Package tags holds the fixed table of documentation block types recognised
// inside source comments.
package tags

// Grammar selects the start-tag syntax of a block type.
type Grammar int

const (
	// Standard blocks carry no identifier: `@decision <title>`.
	Standard Grammar = iota
	// Identifiable blocks embed a requirement ID: `@summary(<id>) <title>`.
	Identifiable
)

func (g Grammar) String() string {
	if g == Identifiable {
		return "identifiable"
	}
	return "standard"
}

// Entry describes one registered block type.
type Entry struct {
	Type    string
	Title   string
	Grammar Grammar
}

// registry is ordered: identifiable types first, then standard types.
var registry = []Entry{
	{Type: "summary", Title: "📝 Summary", Grammar: Identifiable},
	{Type: "fix", Title: "🐛 Bug Fix", Grammar: Identifiable},
	{Type: "decision", Title: "🔍 Decision", Grammar: Standard},
	{Type: "testFocus", Title: "🧪 Test Focus", Grammar: Standard},
	{Type: "feature", Title: "✨ Feature", Grammar: Standard},
	{Type: "notice", Title: "❕ Notice", Grammar: Standard},
	{Type: "comment", Title: "💬 Comment", Grammar: Standard},
	{Type: "deployment", Title: "🚀 Deployment", Grammar: Standard},
	{Type: "performance", Title: "⚡ Performance", Grammar: Standard},
	{Type: "security", Title: "🔒 Security", Grammar: Standard},
	{Type: "deprecated", Title: "⚠️ Deprecated", Grammar: Standard},
}

var byType = func() map[string]Entry {
	m := make(map[string]Entry, len(registry))
	for _, e := range registry {
		m[e.Type] = e
	}
	return m
}()

// Entries returns a copy of the registry in recognizer order.
func Entries() []Entry {
	out := make([]Entry, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the entry registered for blockType.
func Lookup(blockType string) (Entry, bool) {
	e, ok := byType[blockType]
	return e, ok
}

// Title returns the display title of blockType, or blockType itself when it
// is not registered.
func Title(blockType string) string {
	if e, ok := byType[blockType]; ok {
		return e.Title
	}
	return blockType
}

// IdentifiableTypes lists the block types using the identifiable grammar.
func IdentifiableTypes() []string {
	return typesWith(Identifiable)
}

// StandardTypes lists the block types using the standard grammar.
func StandardTypes() []string {
	return typesWith(Standard)
}

func typesWith(g Grammar) []string {
	var out []string
	for _, e := range registry {
		if e.Grammar == g {
			out = append(out, e.Type)
		}
	}
	return out
}
