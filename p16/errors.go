package p16

import (
	"fmt"
	"strings"
)

// ErrorKind classifies assembler diagnostics.
type ErrorKind int

const (
	UnknownOpcode ErrorKind = iota
	UnknownDirective
	UnknownCondition
	BadOperandCount
	BadInteger
	BadRegister
	BadOctalAddress
	MissingPageDirective
	DuplicatePage
	DuplicateLabel
	UnresolvedLabel
	CrossPageLocalJump
	RamOverlap
	RamOutOfRange
)

var errorKindNames = [...]string{
	UnknownOpcode:        "unknown opcode",
	UnknownDirective:     "unknown directive",
	UnknownCondition:     "unknown condition",
	BadOperandCount:      "bad operand count",
	BadInteger:           "bad integer",
	BadRegister:          "bad register",
	BadOctalAddress:      "bad octal address",
	MissingPageDirective: "missing page directive",
	DuplicatePage:        "duplicate page",
	DuplicateLabel:       "duplicate label",
	UnresolvedLabel:      "unresolved label",
	CrossPageLocalJump:   "cross-page local jump",
	RamOverlap:           "ram overlap",
	RamOutOfRange:        "ram out of range",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// SyntaxError is the single error type surfaced by the assembler. Every
// failure aborts the compilation; there is no recovery or partial output.
type SyntaxError struct {
	Kind    ErrorKind
	Line    string // offending source line, if any
	Page    string // page id, when resolvable
	Symbol  string // label or mnemonic involved, when resolvable
	Message string
}

func (e *SyntaxError) Error() string {
	var sb strings.Builder
	sb.WriteString("p16: ")
	sb.WriteString(e.Message)
	if e.Page != "" {
		fmt.Fprintf(&sb, " (%s)", e.Page)
	}
	if e.Line != "" {
		fmt.Fprintf(&sb, " in line %q", strings.TrimSpace(e.Line))
	}
	return sb.String()
}

func errf(kind ErrorKind, line, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
}
