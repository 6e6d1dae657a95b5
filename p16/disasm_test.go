package p16

import (
	"strings"
	"testing"
)

func TestDecodeTexts(t *testing.T) {
	cases := []struct {
		stream string
		want   []string
	}{
		{"0 7", []string{"PASS", "RETURN"}},
		{"1 1234", []string{"VALUE 4660"}},
		{"212", []string{"JUMP &12"}},
		{"3304", []string{"BRANCH !Z &04"}},
		{"43 5C", []string{"PUSH r3", "POP r12"}},
		{"600", []string{"CALL &00"}},
		{"81", []string{"ADD r1"}},
		{"9E2", []string{"ROTATE 14 r2"}},
		{"A0 A1 A9", []string{"ALU not", "RAM read", "ALU dup"}},
		{"B85 B10", []string{"ALU xor r5", "RAM write r0"}},
		{"C 5 00", []string{"CALL ROM 5 &00"}},
		{"1 0064 D 00", []string{"VALUE 100", "CALL RAM &00"}},
		{"E", []string{"INPUT"}},
		{"F10F", []string{"OUTPUT 1.0.7"}},
		{"F8", []string{"OUTPUT 0"}},
	}
	for _, c := range cases {
		decoded, err := Decode(c.stream)
		if err != nil {
			t.Fatalf("Decode(%q): %v", c.stream, err)
		}
		if len(decoded) != len(c.want) {
			t.Fatalf("Decode(%q) yields %d instructions, wanted %d", c.stream, len(decoded), len(c.want))
		}
		for i, d := range decoded {
			if d.Text != c.want[i] {
				t.Errorf("Decode(%q)[%d] = %q, wanted %q", c.stream, i, d.Text, c.want[i])
			}
		}
	}
}

func TestDecodeOffsetsAndNibbles(t *testing.T) {
	decoded, err := Decode("0 3200 7")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	wantOffsets := []int{0, 1, 5}
	wantNibbles := []string{"0", "3200", "7"}
	for i, d := range decoded {
		if d.Offset != wantOffsets[i] || d.Nibbles != wantNibbles[i] {
			t.Errorf("instruction %d = %q at &%02X, wanted %q at &%02X",
				i, d.Nibbles, d.Offset, wantNibbles[i], wantOffsets[i])
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, stream := range []string{"2", "31", "1 00", "F", "F12", "G", "0z"} {
		if _, err := Decode(stream); err == nil {
			t.Errorf("Decode(%q) succeeded, wanted an error", stream)
		}
	}
}

// Decoding any assembler output and concatenating the recovered nibble
// groups reproduces the stripped stream.
func TestDecodeRoundTrip(t *testing.T) {
	source := `.PROM 0
.LABEL start
VALUE 300
PUSH r1
ALU not
.WAITFLAG
ALU sub r2
ROTATE 3 r2
BRANCH !Z start
CALL fn
CALL rammed
OUTPUT 1.2.3
INPUT
RETURN
.PROM 7
.LABEL fn
POP r9
ADD r9
RETURN
.PRAM 40
.LABEL rammed
RAM read
RAM write_dec r4
RETURN
`
	prog := assemble(t, source)
	streams := make([]string, 0, len(prog.Rom)+len(prog.Ram))
	for _, s := range prog.Rom {
		streams = append(streams, s)
	}
	for _, s := range prog.Ram {
		streams = append(streams, s)
	}
	for _, stream := range streams {
		decoded, err := Decode(stream)
		if err != nil {
			t.Fatalf("Decode(%q): %v", stream, err)
		}
		var sb strings.Builder
		for _, d := range decoded {
			sb.WriteString(d.Nibbles)
		}
		if got, want := sb.String(), Strip(stream); got != want {
			t.Errorf("round trip of %q lost nibbles: got %q", stream, got)
		}
	}
}

func TestListing(t *testing.T) {
	out, err := Listing("0 3200 7")
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	want := "&00  0         PASS\n&01  3200      BRANCH Z &00\n&05  7         RETURN\n"
	if out != want {
		t.Errorf("Listing = %q, wanted %q", out, want)
	}
}
