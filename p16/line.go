package p16

// Line is one physical source line after classification. The three
// implementations are Blank, Directive and Operation; all carry the
// original text for diagnostics.
type Line interface {
	// Text returns the original source line.
	Text() string
	// Length is the number of nibbles the line contributes to its page.
	Length() int
}

// Blank is a line holding nothing but whitespace or a comment.
type Blank struct {
	Src string
}

func (b *Blank) Text() string { return b.Src }
func (b *Blank) Length() int  { return 0 }

// DirKind enumerates the directive commands.
type DirKind int

const (
	DirProm DirKind = iota
	DirPram
	DirLabel
	DirWaitflag
)

// Directive is a dot-prefixed layout command. Page and waitflag directives
// are consumed before address resolution; labels survive until their local
// offsets have been recorded.
type Directive struct {
	Src  string
	Kind DirKind
	Page int    // DirProm: ROM page 0-15
	Addr int    // DirPram: RAM start address 0-4095
	Name string // DirLabel
}

func (d *Directive) Text() string { return d.Src }
func (d *Directive) Length() int  { return 0 }

// Opcode enumerates the P16 mnemonics.
type Opcode int

const (
	Pass Opcode = iota
	Value
	Jump
	Branch
	Push
	Pop
	Call
	Return
	Add
	Rotate
	ALU
	RAM
	Input
	Output
)

var opcodeNames = [...]string{
	Pass:   "PASS",
	Value:  "VALUE",
	Jump:   "JUMP",
	Branch: "BRANCH",
	Push:   "PUSH",
	Pop:    "POP",
	Call:   "CALL",
	Return: "RETURN",
	Add:    "ADD",
	Rotate: "ROTATE",
	ALU:    "ALU",
	RAM:    "RAM",
	Input:  "INPUT",
	Output: "OUTPUT",
}

func (o Opcode) String() string { return opcodeNames[o] }

// CallKind is the binding state of a CALL target page. The encoding form,
// and with it the instruction length, depends on it.
type CallKind int

const (
	CallUnbound CallKind = iota
	CallInternal
	CallRom
	CallRam
)

// Operation is a single instruction. Fields beyond Opcode are populated
// per mnemonic by the operand parser; Target* and Call* are filled in by
// the address resolver.
type Operation struct {
	Src    string
	Opcode Opcode

	Register   int   // PUSH, POP, ADD, ROTATE, ALU/RAM type 2
	Value      int   // VALUE, reduced mod 2^16
	Condition  int   // BRANCH, 0-15
	RotNum     int   // ROTATE, reduced mod 16
	ALURAMType int   // ALU/RAM: 1 or 2
	Subop      int   // ALU/RAM sub-operation code
	Octal      []int // OUTPUT address digits, each 0-7

	Target      string   // JUMP, BRANCH, CALL: label operand
	TargetLocal int      // resolved 8-bit local offset, -1 until pass C
	CallKind    CallKind // CALL only
	CallPage    int      // CallRom: target ROM page
	CallAddr    int      // CallRam: target RAM start address
}

func (o *Operation) Text() string { return o.Src }

// Length in nibbles. A CALL is costed at its longest form until the
// resolver has bound its target page, so waitflag padding computed early
// can never come up short.
func (o *Operation) Length() int {
	switch o.Opcode {
	case Pass, Return, Input:
		return 1
	case Push, Pop, Add:
		return 2
	case ALU, RAM:
		return 1 + o.ALURAMType
	case Value:
		return 5
	case Jump:
		return 3
	case Branch:
		return 4
	case Rotate:
		return 3
	case Output:
		return 1 + len(o.Octal)
	case Call:
		switch o.CallKind {
		case CallInternal:
			return 3
		case CallRom:
			return 4
		default:
			return 8
		}
	}
	return 0
}

// setsFlags reports whether the operation restarts the flag pipeline
// that .WAITFLAG pads against.
func (o *Operation) setsFlags() bool {
	return o.Opcode == ALU
}
