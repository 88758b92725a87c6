package lsp

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"lox/internal/diag"
)

func TestAnalyzeAndConvert(t *testing.T) {
	text := "print 1;\nprint \"é\" +;"
	ds := Analyze(text)
	if len(ds) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(ds))
	}
	if ds[0].Message != "Expect expression." || ds[0].Code != diag.CodeSyntax {
		t.Fatalf("unexpected diagnostic %+v", ds[0])
	}

	pds := ToLspDiagnostics(text, ds)
	// "é" is two bytes but one UTF-16 unit, so ';' sits at character 11.
	r := pds[0].Range
	if r.Start.Line != 1 || r.Start.Character != 11 || r.End.Character != 12 {
		t.Fatalf("unexpected range %+v", r)
	}
	if *pds[0].Severity != protocol.DiagnosticSeverityError || *pds[0].Source != "lox-lsp" {
		t.Fatalf("unexpected diagnostic %+v", pds[0])
	}
	if pds[0].Code.Value != diag.CodeSyntax {
		t.Fatalf("expected code %s, got %v", diag.CodeSyntax, pds[0].Code.Value)
	}

	if len(Analyze("print 1 + 2;")) != 0 {
		t.Fatal("expected no diagnostics for valid source")
	}
}

func TestDiagnosticAtEndOfInput(t *testing.T) {
	text := "print 1"
	pds := ToLspDiagnostics(text, Analyze(text))
	if len(pds) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(pds))
	}
	r := pds[0].Range
	if r.Start.Character != 7 || r.End.Character != 8 {
		t.Fatalf("unexpected range %+v", r)
	}
}

func TestSemanticTokens(t *testing.T) {
	text := "print 1 >= x;\n\"a\nbc\";"
	toks := SemanticTokensForText(text)

	expected := []SemTok{
		{Line: 1, Col: 1, Length: 5, Type: ttKeyword},
		{Line: 1, Col: 7, Length: 1, Type: ttNumber},
		{Line: 1, Col: 9, Length: 2, Type: ttOperator},
		{Line: 1, Col: 12, Length: 1, Type: ttVariable},
		{Line: 2, Col: 1, Length: 2, Type: ttString},
		{Line: 3, Col: 1, Length: 3, Type: ttString},
	}
	if len(toks) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(expected), len(toks), toks)
	}
	for i, want := range expected {
		if toks[i] != want {
			t.Fatalf("token %d: expected=%+v got=%+v", i, want, toks[i])
		}
	}
}

func TestEncodeSemanticTokens(t *testing.T) {
	toks := []SemTok{
		{Line: 2, Col: 3, Length: 1, Type: ttNumber},
		{Line: 1, Col: 1, Length: 5, Type: ttKeyword},
		{Line: 1, Col: 7, Length: 1, Type: ttNumber},
		{Line: 2, Col: 5, Length: 0, Type: ttNumber},
	}
	got := EncodeSemanticTokens(toks)
	expected := []uint32{
		0, 0, 5, ttKeyword, 0,
		0, 6, 1, ttNumber, 0,
		1, 2, 1, ttNumber, 0,
	}
	if len(got) != len(expected) {
		t.Fatalf("expected=%v got=%v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected=%v got=%v", expected, got)
		}
	}
}

func TestHoverAt(t *testing.T) {
	text := "print 1.50 + \"hi\";"
	tests := []struct {
		char     uint32
		expected string
		ok       bool
	}{
		{0, "keyword `print`", true},
		{7, "number `1.5`", true},
		{11, "`+`", true},
		{14, "string, 2 byte(s)", true},
		{5, "", false},
	}
	for _, tt := range tests {
		h, ok := HoverAt(text, protocol.Position{Line: 0, Character: tt.char})
		if ok != tt.ok {
			t.Fatalf("char %d: expected ok=%v got=%v", tt.char, tt.ok, ok)
		}
		if !ok {
			continue
		}
		content := h.Contents.(protocol.MarkupContent).Value
		if !strings.HasPrefix(content, tt.expected) {
			t.Fatalf("char %d: expected=%q got=%q", tt.char, tt.expected, content)
		}
	}
}

func TestStoreIgnoresStaleVersions(t *testing.T) {
	s := NewStore()
	if !s.Set("file:///a.lox", "v2", 2) {
		t.Fatal("first set should be stored")
	}
	if s.Set("file:///a.lox", "v1", 1) {
		t.Fatal("older version should be ignored")
	}
	doc, ok := s.Get("file:///a.lox")
	if !ok || doc.Text != "v2" || doc.Version != 2 {
		t.Fatalf("unexpected document %+v", doc)
	}
	s.Delete("file:///a.lox")
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}

func TestUriToPath(t *testing.T) {
	if got := UriToPath("file:///tmp/a%20b.lox"); got != "/tmp/a b.lox" {
		t.Fatalf("expected=%q got=%q", "/tmp/a b.lox", got)
	}
	if got := UriToPath("untitled:1"); got != "" {
		t.Fatalf("expected empty path, got %q", got)
	}
	if got := displayName("file:///tmp/x.lox"); got != "x.lox" {
		t.Fatalf("expected=%q got=%q", "x.lox", got)
	}
}

func TestExtractFullText(t *testing.T) {
	if text, ok := extractFullText(protocol.TextDocumentContentChangeEventWhole{Text: "x"}); !ok || text != "x" {
		t.Fatalf("whole change not accepted")
	}
	partial := protocol.TextDocumentContentChangeEvent{Range: &protocol.Range{}, Text: "y"}
	if _, ok := extractFullText(partial); ok {
		t.Fatal("ranged change should be rejected")
	}
}

func TestFormatEdits(t *testing.T) {
	text := "print 1+2;\nprint \"é\" ;"
	edits := FormatEdits(text, protocol.FormattingOptions{})
	if len(edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(edits))
	}
	if edits[0].NewText != "print 1 + 2;\nprint \"é\";\n" {
		t.Fatalf("unexpected text %q", edits[0].NewText)
	}
	end := edits[0].Range.End
	if end.Line != 1 || end.Character != 11 {
		t.Fatalf("unexpected end %+v", end)
	}

	if got := FormatEdits("print 1;\n", protocol.FormattingOptions{}); len(got) != 0 {
		t.Fatalf("formatted text should produce no edits, got %v", got)
	}
	if got := FormatEdits("print \"open", protocol.FormattingOptions{}); len(got) != 0 {
		t.Fatalf("unlexable text should produce no edits, got %v", got)
	}
}

func TestIndentFromOptions(t *testing.T) {
	if got := indentFromOptions(protocol.FormattingOptions{protocol.FormattingOptionTabSize: float64(4)}); got != "    " {
		t.Fatalf("expected four spaces, got %q", got)
	}
	if got := indentFromOptions(protocol.FormattingOptions{protocol.FormattingOptionInsertSpaces: false}); got != "\t" {
		t.Fatalf("expected tab, got %q", got)
	}
}
