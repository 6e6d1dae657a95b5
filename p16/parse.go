package p16

import (
	"strconv"
	"strings"
)

// stripComment removes everything from the first '#' and trims the rest.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// ParseSource lexes and classifies every physical line of a program.
func ParseSource(src string) ([]Line, error) {
	rows := strings.Split(src, "\n")
	lines := make([]Line, 0, len(rows))
	for _, text := range rows {
		ln, err := ParseLine(text)
		if err != nil {
			return nil, err
		}
		lines = append(lines, ln)
	}
	return lines, nil
}

// ParseLine classifies a single source line as blank, directive or
// operation and validates its operands.
func ParseLine(text string) (Line, error) {
	bare := stripComment(text)
	if bare == "" {
		return &Blank{Src: text}, nil
	}
	if bare[0] == '.' {
		d, err := parseDirective(text, bare)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	op, err := parseOperation(text, bare)
	if err != nil {
		return nil, err
	}
	return op, nil
}

func parseDirective(src, bare string) (*Directive, error) {
	tokens := strings.Fields(bare[1:])
	if len(tokens) == 0 {
		return nil, errf(UnknownDirective, src, "empty directive")
	}
	cmd, args := tokens[0], tokens[1:]

	wantArgs := func(n int) *SyntaxError {
		if len(args) != n {
			return errf(BadOperandCount, src, "directive .%s takes %d operand(s), got %d", cmd, n, len(args))
		}
		return nil
	}

	d := &Directive{Src: src}
	switch cmd {
	case "PROM":
		if err := wantArgs(1); err != nil {
			return nil, err
		}
		page, err := parseInt(args[0], src)
		if err != nil {
			return nil, err
		}
		if page < 0 || page > 15 {
			return nil, errf(BadInteger, src, "ROM pages range from 0-15, %d is out of this range", page)
		}
		d.Kind, d.Page = DirProm, page
	case "PRAM":
		if err := wantArgs(1); err != nil {
			return nil, err
		}
		addr, err := parseInt(args[0], src)
		if err != nil {
			return nil, err
		}
		if addr < 0 || addr >= ramNibbles {
			return nil, errf(BadInteger, src, "RAM addresses range from 0-%d, %d is out of this range", ramNibbles-1, addr)
		}
		d.Kind, d.Addr = DirPram, addr
	case "LABEL":
		if err := wantArgs(1); err != nil {
			return nil, err
		}
		d.Kind, d.Name = DirLabel, args[0]
	case "WAITFLAG":
		if err := wantArgs(0); err != nil {
			return nil, err
		}
		d.Kind = DirWaitflag
	default:
		e := errf(UnknownDirective, src, "unknown directive command .%s", cmd)
		e.Symbol = cmd
		return nil, e
	}
	return d, nil
}

func parseOperation(src, bare string) (*Operation, error) {
	tokens := strings.Fields(bare)
	mnemonic, args := tokens[0], tokens[1:]

	wantArgs := func(n int) *SyntaxError {
		if len(args) != n {
			return errf(BadOperandCount, src, "opcode %s takes %d operand(s), got %d", mnemonic, n, len(args))
		}
		return nil
	}

	op := &Operation{Src: src, TargetLocal: -1}
	switch mnemonic {
	case "PASS", "RETURN", "INPUT":
		if err := wantArgs(0); err != nil {
			return nil, err
		}
		op.Opcode = map[string]Opcode{"PASS": Pass, "RETURN": Return, "INPUT": Input}[mnemonic]
	case "VALUE":
		if err := wantArgs(1); err != nil {
			return nil, err
		}
		v, err := parseInt(args[0], src)
		if err != nil {
			return nil, err
		}
		op.Opcode = Value
		op.Value = ((v % 0x10000) + 0x10000) % 0x10000
	case "JUMP":
		if err := wantArgs(1); err != nil {
			return nil, err
		}
		op.Opcode, op.Target = Jump, args[0]
	case "BRANCH":
		if err := wantArgs(2); err != nil {
			return nil, err
		}
		cond, ok := dialect.BranchConditions[args[0]]
		if !ok {
			e := errf(UnknownCondition, src, "unknown branch condition %s", args[0])
			e.Symbol = args[0]
			return nil, e
		}
		op.Opcode, op.Condition, op.Target = Branch, cond, args[1]
	case "PUSH", "POP", "ADD":
		if err := wantArgs(1); err != nil {
			return nil, err
		}
		reg, err := parseRegister(args[0], src)
		if err != nil {
			return nil, err
		}
		op.Opcode = map[string]Opcode{"PUSH": Push, "POP": Pop, "ADD": Add}[mnemonic]
		op.Register = reg
	case "CALL":
		if err := wantArgs(1); err != nil {
			return nil, err
		}
		op.Opcode, op.Target = Call, args[0]
	case "ROTATE":
		if err := wantArgs(2); err != nil {
			return nil, err
		}
		rot, err := parseInt(args[0], src)
		if err != nil {
			return nil, err
		}
		reg, err := parseRegister(args[1], src)
		if err != nil {
			return nil, err
		}
		op.Opcode = Rotate
		op.RotNum = ((rot % 16) + 16) % 16
		op.Register = reg
	case "ALU", "RAM":
		op.Opcode = ALU
		if mnemonic == "RAM" {
			op.Opcode = RAM
		}
		switch len(args) {
		case 1:
			sub, ok := dialect.ALM1[mnemonic][args[0]]
			if !ok {
				e := errf(UnknownOpcode, src, "%s is not a valid %s operation with 1 operand", args[0], mnemonic)
				e.Symbol = args[0]
				return nil, e
			}
			op.ALURAMType, op.Subop = 1, sub
		case 2:
			sub, ok := dialect.ALM2[mnemonic][args[0]]
			if !ok {
				e := errf(UnknownOpcode, src, "%s is not a valid %s operation with 2 operands", args[0], mnemonic)
				e.Symbol = args[0]
				return nil, e
			}
			reg, err := parseRegister(args[1], src)
			if err != nil {
				return nil, err
			}
			op.ALURAMType, op.Subop, op.Register = 2, sub, reg
		default:
			return nil, errf(BadOperandCount, src, "opcode %s takes 1 or 2 operands, got %d", mnemonic, len(args))
		}
	case "OUTPUT":
		if err := wantArgs(1); err != nil {
			return nil, err
		}
		octal, err := parseOctalAddress(args[0], src)
		if err != nil {
			return nil, err
		}
		op.Opcode, op.Octal = Output, octal
	default:
		e := errf(UnknownOpcode, src, "unknown opcode %s", mnemonic)
		e.Symbol = mnemonic
		return nil, e
	}
	return op, nil
}

// parseRegister accepts the rN form, N in 0-15.
func parseRegister(tok, src string) (int, error) {
	if !strings.HasPrefix(tok, "r") {
		return 0, errf(BadRegister, src, "registers must begin with an \"r\", for example \"r5\"")
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil {
		return 0, errf(BadRegister, src, "%s is not a register", tok)
	}
	if n < 0 || n > 15 {
		return 0, errf(BadRegister, src, "registers range from r0-r15, r%d is out of this range", n)
	}
	return n, nil
}

func parseInt(tok, src string) (int, error) {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, errf(BadInteger, src, "%s is not an integer", tok)
	}
	return n, nil
}

// parseOctalAddress parses the dot-separated OUTPUT operand, one digit
// 0-7 per element.
func parseOctalAddress(tok, src string) ([]int, error) {
	parts := strings.Split(tok, ".")
	digits := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 7 {
			return nil, errf(BadOctalAddress, src,
				"octal output address values must range from 0-7 separated by dots, %s is not of this form", tok)
		}
		digits = append(digits, n)
	}
	return digits, nil
}
