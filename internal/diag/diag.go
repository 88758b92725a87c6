package diag

import "fmt"

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

type Range struct {
	Line   int // 1-based
	Col    int // 1-based
	Length int // best-effort; can be 1 if unknown
}

const (
	CodeSyntax        = "LX0001"
	CodeLexical       = "LX0002"
	CodeTooManyConsts = "LX0003"
	CodeMemory        = "LX0004"
)

type Diagnostic struct {
	Code     string
	Message  string
	Severity Severity
	Range    Range
	// Where locates the error in the report line: " at 'x'", " at end", or
	// empty for lexer errors.
	Where string
}

// Report renders the diagnostic the way the compiler prints it.
func (d Diagnostic) Report() string {
	return fmt.Sprintf("[line %d] Error%s: %s", d.Range.Line, d.Where, d.Message)
}

func (d Diagnostic) Format(path string) string {
	if d.Code != "" {
		return fmt.Sprintf("%s:%d:%d: %s %s: %s", path, d.Range.Line, d.Range.Col, d.Severity.String(), d.Code, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", path, d.Range.Line, d.Range.Col, d.Severity.String(), d.Message)
}
