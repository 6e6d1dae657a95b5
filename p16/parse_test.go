package p16

import (
	"errors"
	"testing"
)

func wantKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("got no error, wanted %s", kind)
	}
	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("got %T (%v), wanted *SyntaxError", err, err)
	}
	if serr.Kind != kind {
		t.Errorf("got error kind %s (%v), wanted %s", serr.Kind, serr, kind)
	}
}

func TestClassifyLines(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"", "blank"},
		{"   \t ", "blank"},
		{"# just a comment", "blank"},
		{".PROM 0", "directive"},
		{".LABEL start # trailing comment", "directive"},
		{"PASS", "operation"},
		{"VALUE 12 # push twelve", "operation"},
	}
	for _, c := range cases {
		ln, err := ParseLine(c.text)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", c.text, err)
		}
		var got string
		switch ln.(type) {
		case *Blank:
			got = "blank"
		case *Directive:
			got = "directive"
		case *Operation:
			got = "operation"
		}
		if got != c.want {
			t.Errorf("ParseLine(%q) = %s, wanted %s", c.text, got, c.want)
		}
	}
}

func TestWhitespaceTolerance(t *testing.T) {
	ln, err := ParseLine("\tBRANCH   !Z\t\tloop  ")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	op := ln.(*Operation)
	if op.Opcode != Branch || op.Condition != 3 || op.Target != "loop" {
		t.Errorf("got %s cond=%d target=%q, wanted BRANCH cond=3 target=loop", op.Opcode, op.Condition, op.Target)
	}
}

func TestOperandValidation(t *testing.T) {
	cases := []struct {
		src  string
		kind ErrorKind
	}{
		{"FROB", UnknownOpcode},
		{".FROB", UnknownDirective},
		{".", UnknownDirective},
		{"BRANCH Q start", UnknownCondition},
		{"PASS r1", BadOperandCount},
		{"VALUE", BadOperandCount},
		{"VALUE 1 2", BadOperandCount},
		{"ROTATE 3", BadOperandCount},
		{"ALU not r1 r2", BadOperandCount},
		{".PROM", BadOperandCount},
		{".WAITFLAG 3", BadOperandCount},
		{"VALUE twelve", BadInteger},
		{".PROM 16", BadInteger},
		{".PROM x", BadInteger},
		{".PRAM 4096", BadInteger},
		{"PUSH 5", BadRegister},
		{"PUSH rx", BadRegister},
		{"POP r16", BadRegister},
		{"ADD r-1", BadRegister},
		{"OUTPUT 1.8", BadOctalAddress},
		{"OUTPUT 1..2", BadOctalAddress},
		{"OUTPUT x", BadOctalAddress},
		{"ALU frob", UnknownOpcode},
		{"ALU frob r1", UnknownOpcode},
		{"RAM write", UnknownOpcode},
		{"RAM read r1", UnknownOpcode},
	}
	for _, c := range cases {
		_, err := ParseLine(c.src)
		if err == nil {
			t.Errorf("ParseLine(%q) succeeded, wanted %s", c.src, c.kind)
			continue
		}
		wantKind(t, err, c.kind)
	}
}

func TestRegisterRange(t *testing.T) {
	for _, src := range []string{"PUSH r0", "PUSH r15"} {
		if _, err := ParseLine(src); err != nil {
			t.Errorf("ParseLine(%q): %v", src, err)
		}
	}
}

func TestValueReduction(t *testing.T) {
	cases := []struct {
		src  string
		want int
	}{
		{"VALUE 0", 0},
		{"VALUE 65535", 65535},
		{"VALUE 65537", 1},
		{"VALUE -1", 65535},
	}
	for _, c := range cases {
		ln, err := ParseLine(c.src)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", c.src, err)
		}
		if got := ln.(*Operation).Value; got != c.want {
			t.Errorf("ParseLine(%q).Value = %d, wanted %d", c.src, got, c.want)
		}
	}
}

func TestRotateReduction(t *testing.T) {
	cases := []struct {
		src  string
		want int
	}{
		{"ROTATE 0 r1", 0},
		{"ROTATE 17 r1", 1},
		{"ROTATE -1 r1", 15},
	}
	for _, c := range cases {
		ln, err := ParseLine(c.src)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", c.src, err)
		}
		if got := ln.(*Operation).RotNum; got != c.want {
			t.Errorf("ParseLine(%q).RotNum = %d, wanted %d", c.src, got, c.want)
		}
	}
}

func TestBranchConditionTable(t *testing.T) {
	if got := len(dialect.BranchConditions); got != 28 {
		t.Errorf("dialect holds %d branch aliases, wanted 28", got)
	}
	cases := map[string]int{
		"I":      0,
		"Z":      2,
		"==":     2,
		"!=":     3,
		"!C":     9,
		"!Z&C":   10,
		"Z|!C":   11,
		"V=N":    12,
		"!Z&V=N": 14,
		"Z|V!=N": 15,
	}
	for alias, want := range cases {
		if got := dialect.BranchConditions[alias]; got != want {
			t.Errorf("condition %q = %d, wanted %d", alias, got, want)
		}
	}
}

func TestALURAMSubTables(t *testing.T) {
	cases := []struct {
		src     string
		typ     int
		subop   int
		register int
	}{
		{"ALU not", 1, 0, 0},
		{"ALU nop", 1, 8, 0},
		{"ALU dup", 1, 9, 0},
		{"ALU rsha", 1, 15, 0},
		{"RAM read_dec", 1, 3, 0},
		{"ALU sub r3", 2, 0, 3},
		{"ALU sub_cin r15", 2, 15, 15},
		{"RAM write_inc r2", 2, 2, 2},
	}
	for _, c := range cases {
		ln, err := ParseLine(c.src)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", c.src, err)
		}
		op := ln.(*Operation)
		if op.ALURAMType != c.typ || op.Subop != c.subop || op.Register != c.register {
			t.Errorf("ParseLine(%q) = type %d subop %d r%d, wanted type %d subop %d r%d",
				c.src, op.ALURAMType, op.Subop, op.Register, c.typ, c.subop, c.register)
		}
	}
}

func TestOutputOctalParsing(t *testing.T) {
	ln, err := ParseLine("OUTPUT 1.0.7")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	op := ln.(*Operation)
	want := []int{1, 0, 7}
	if len(op.Octal) != len(want) {
		t.Fatalf("got %v, wanted %v", op.Octal, want)
	}
	for i := range want {
		if op.Octal[i] != want[i] {
			t.Fatalf("got %v, wanted %v", op.Octal, want)
		}
	}
	if got := op.Length(); got != 4 {
		t.Errorf("OUTPUT 1.0.7 length = %d, wanted 4", got)
	}
}
