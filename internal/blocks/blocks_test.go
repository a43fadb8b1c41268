package blocks

import (
	"strings"
	"testing"

	"github.com/example/codoc/internal/model"
	"github.com/example/codoc/internal/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recognizer(t *testing.T, blockType string) Recognizer {
	t.Helper()
	e, ok := tags.Lookup(blockType)
	require.True(t, ok)
	return NewRecognizer(e)
}

func only(t *testing.T, r *model.Result, reqID, blockType string) *model.Item {
	t.Helper()
	req, ok := r.Get(reqID)
	require.True(t, ok, "missing requirement %q in %v", reqID, r.IDs())
	sec := req.Section(blockType)
	require.NotNil(t, sec, "missing section %q", blockType)
	require.Len(t, sec.Items, 1)
	return sec.Items[0]
}

func TestParseIdentifiableBlock(t *testing.T) {
	src := "// @summary(CLOUD-123) Cart cache\n" +
		"//  - why: offline access\n" +
		"//  - domain: cart,storage\n" +
		"// @endSummary\n"

	r := NewParser("/repo").Parse("/repo/src/cart.ts", src)

	assert.Equal(t, []string{"CLOUD-123"}, r.IDs())
	item := only(t, r, "CLOUD-123", "summary")
	assert.Equal(t, "src/cart.ts", item.File)
	assert.Equal(t, 1, item.Line)
	assert.Equal(t, "Cart cache", item.Title)
	assert.Equal(t, "- why: offline access\n- domain: cart,storage", item.Content)
	assert.Equal(t, model.IDList{"CLOUD-123"}, item.Req)
	assert.Equal(t, model.IDList{"cart", "storage"}, item.Domain)
	assert.Empty(t, item.CheckCode)
	assert.Empty(t, item.CheckCodeLanguage)
}

func TestParseStandardBlockWithoutReq(t *testing.T) {
	src := "package cart\n" +
		"\n" +
		"  // @decision Use LRU\n" +
		"  //   - why: bounded memory\n" +
		"  // @endDecision\n" +
		"  func evict() {\n" +
		"\n" +
		"  }\n"

	r := NewParser("/repo").Parse("/repo/cart.go", src)

	item := only(t, r, "???", "decision")
	assert.Equal(t, 3, item.Line)
	assert.Equal(t, "Use LRU", item.Title)
	assert.Equal(t, model.IDList{"???"}, item.Req)
	assert.Equal(t, model.IDList{}, item.Domain)
	assert.Equal(t, "go", item.CheckCodeLanguage)
	assert.Equal(t, "  // @decision Use LRU\n"+
		"  //   - why: bounded memory\n"+
		"  // @endDecision\n"+
		"  func evict() {\n"+
		"  }", item.CheckCode)
}

func TestParseStarCommentBlockWithReqField(t *testing.T) {
	src := "/**\n" +
		" * @fix(BUG-7) Null guard\n" +
		" * - req: BUG-7, REQ-3\n" +
		" * @endFix\n" +
		" */\n" +
		"function guard() {}\n"

	r := NewParser("/repo").Parse("/repo/guard.js", src)

	item := only(t, r, "BUG-7", "fix")
	assert.Equal(t, 2, item.Line)
	assert.Equal(t, model.IDList{"BUG-7", "REQ-3"}, item.Req)
	assert.Equal(t, "javascript", item.CheckCodeLanguage)
	assert.True(t, strings.HasSuffix(item.CheckCode, "@endFix\n */\nfunction guard() {}"))
}

func TestReqFieldOverridesParenthetical(t *testing.T) {
	src := "// @summary(CLOUD-1) Title\n// - req: REQ-2\n// @endSummary\n"

	r := NewParser("").Parse("a.go", src)

	assert.Equal(t, []string{"REQ-2"}, r.IDs())
}

func TestIdentifiableTitleFallsBackToFirstContentLine(t *testing.T) {
	src := "// @summary(A-1)\n//   First line title\n// - why: x\n// @endSummary\n"

	item := only(t, NewParser("").Parse("a.go", src), "A-1", "summary")

	assert.Equal(t, "First line title", item.Title)
}

func TestEmptyParentheticalIsUnassigned(t *testing.T) {
	src := "// @fix() Broken\n// @endFix\n"

	item := only(t, NewParser("").Parse("a.go", src), "???", "fix")

	assert.Equal(t, model.IDList{"???"}, item.Req)
	assert.Equal(t, "", item.Content)
}

func TestStandardTitleMayBeEmpty(t *testing.T) {
	src := "// @comment\n// just text\n// @endComment\n"

	item := only(t, NewParser("").Parse("a.go", src), "???", "comment")

	assert.Equal(t, "", item.Title)
	assert.Equal(t, "just text", item.Content)
}

func TestUnterminatedBlockDoesNotHideOthers(t *testing.T) {
	src := "// @feature Dangling\n" +
		"// - why: never closed\n" +
		"// @decision Kept\n" +
		"// - req: A-1\n" +
		"// @endDecision\n"

	r := NewParser("").Parse("a.go", src)

	item := only(t, r, "A-1", "decision")
	assert.Equal(t, "Kept", item.Title)
	req, _ := r.Get("A-1")
	assert.Nil(t, req.Section("feature"))
	_, ok := r.Get("???")
	assert.False(t, ok)
}

func TestLowerCaseEndTagAlias(t *testing.T) {
	src := "// @testFocus Edge cases\n// - checkmethod: fuzz\n// @endtestFocus\n"

	item := only(t, NewParser("").Parse("a.go", src), "???", "testFocus")

	assert.Equal(t, "Edge cases", item.Title)
}

func TestStartTagMustBeginALine(t *testing.T) {
	src := "x := 1 // @decision Inline\n// @endDecision\n"

	assert.Equal(t, 0, NewParser("").Parse("a.go", src).Len())
}

func TestCRLFInput(t *testing.T) {
	src := "// @decision T\r\n// - why: w\r\n// @endDecision\r\nreturn nil\r\n"

	item := only(t, NewParser("").Parse("a.go", src), "???", "decision")

	assert.Equal(t, "T", item.Title)
	assert.Equal(t, "- why: w", item.Content)
	assert.True(t, strings.HasSuffix(item.CheckCode, "\nreturn nil"))
	assert.NotContains(t, item.CheckCode, "\r")
}

func TestRecognizerOrderAndMatchOrder(t *testing.T) {
	src := "// @decision Second\n// - req: A-1\n// @endDecision\n" +
		"// @summary(A-1) First\n// @endSummary\n" +
		"// @decision Third\n// - req: A-1\n// @endDecision\n"

	r := NewParser("").Parse("a.go", src)

	req, ok := r.Get("A-1")
	require.True(t, ok)
	require.Len(t, req.Sections, 2)
	assert.Equal(t, "summary", req.Sections[0].Type)
	decisions := req.Section("decision").Items
	require.Len(t, decisions, 2)
	assert.Equal(t, "Second", decisions[0].Title)
	assert.Equal(t, "Third", decisions[1].Title)
}

func TestNestedSameTypeClosesAtFirstEnd(t *testing.T) {
	src := "// @decision Outer\n// @decision Inner\n// @endDecision\n// @endDecision\n"

	var got []Match
	for m := range recognizer(t, "decision").Matches(src) {
		got = append(got, m)
	}

	require.Len(t, got, 1)
	assert.Equal(t, "Outer", got[0].Title)
	assert.Equal(t, "// @decision Inner", got[0].Body)
}

func TestMatchesIsRestartable(t *testing.T) {
	src := "// @notice A\n// @endNotice\n// @notice B\n// @endNotice\n"
	seq := recognizer(t, "notice").Matches(src)

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	assert.Equal(t, 2, count())
	assert.Equal(t, 2, count())

	for m := range seq {
		assert.Equal(t, "A", m.Title)
		break
	}
}

func TestSimilarTagNamesDoNotCollide(t *testing.T) {
	src := "// @decisions Not a block\n// @endDecision\n"

	assert.Equal(t, 0, NewParser("").Parse("a.go", src).Len())
}

func TestReqAndDomainReadOnlyTheirOwnLine(t *testing.T) {
	src := "// @decision D\n" +
		"// - req: CLOUD-1\n" +
		"// Handles UTF-8 and ISO-8859 input\n" +
		"// - domain: cart\n" +
		"// see notes below\n" +
		"// @endDecision\n"

	item := only(t, NewParser("").Parse("a.go", src), "CLOUD-1", "decision")

	assert.Equal(t, model.IDList{"CLOUD-1"}, item.Req)
	assert.Equal(t, model.IDList{"cart"}, item.Domain)
}

func TestLongerEndTagDoesNotClose(t *testing.T) {
	src := "// @feature Export\n// @endFeatures\n// @endFeature\n"

	var got []Match
	for m := range recognizer(t, "feature").Matches(src) {
		got = append(got, m)
	}

	require.Len(t, got, 1)
	assert.Equal(t, "// @endFeatures", got[0].Body)
}

func TestTrailingCodeSkipsBlankLines(t *testing.T) {
	lines := []string{"// @endX", "", "a", "   ", "b", "c"}

	assert.Equal(t, []string{"a", "b"}, TrailingCode(lines, 1, 2))
	assert.Nil(t, TrailingCode(lines, 6, 15))
}

func TestTrailingCodeLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("// @performance Hot loop\n// @endPerformance\n")
	for i := 0; i < 30; i++ {
		b.WriteString("x++\n\n")
	}

	item := only(t, NewParser("").Parse("a.go", b.String()), "???", "performance")

	assert.Equal(t, 2+MaxExcerptLines, strings.Count(item.CheckCode, "\n")+1)
}

func TestDecomment(t *testing.T) {
	assert.Equal(t, "a\nb\nplain", Decomment("// a\n  *  b\nplain\n"))
	assert.Equal(t, "", Decomment(""))
}
