package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"lox/internal/compiler"
	"lox/internal/diag"
	"lox/internal/heap"
)

// Analyze compiles text against a throwaway heap and returns what the
// compiler reported.
func Analyze(text string) []diag.Diagnostic {
	c := compiler.New(text, heap.New(nil), compiler.Options{})
	c.Compile()
	return c.Diagnostics()
}

func ToLspDiagnostics(text string, ds []diag.Diagnostic) []protocol.Diagnostic {
	ls := splitLines(text)
	out := make([]protocol.Diagnostic, 0, len(ds))
	for _, d := range ds {
		length := d.Range.Length
		if length <= 0 {
			length = 1
		}

		severity := protocol.DiagnosticSeverityError
		switch d.Severity {
		case diag.SeverityWarning:
			severity = protocol.DiagnosticSeverityWarning
		case diag.SeverityInfo:
			severity = protocol.DiagnosticSeverityInformation
		}

		pd := protocol.Diagnostic{
			Range:    ls.span(d.Range.Line, d.Range.Col, length),
			Severity: &severity,
			Source:   ptrString(lsName),
			Message:  d.Message,
		}
		if d.Code != "" {
			code := protocol.IntegerOrString{Value: d.Code}
			pd.Code = &code
		}
		out = append(out, pd)
	}
	return out
}

func ptrString(s string) *string { return &s }
