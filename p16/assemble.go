package p16

import (
	"fmt"
	"sort"
	"strings"
)

// Label is one entry of the program's label/address map.
type Label struct {
	Page  PageID
	Local int
}

// Program is the assembled output: per-page nibble streams plus the
// label map and any non-fatal warnings. Nibble groups within a page are
// joined by single spaces for readability; the semantic stream is the
// concatenation with spaces removed.
type Program struct {
	Rom      map[int]string // ROM page number -> nibble stream
	Ram      map[int]string // RAM start address -> nibble stream
	Labels   map[string]Label
	Warnings []string
}

// Assemble compiles a P16 source text. It either succeeds completely or
// fails with a *SyntaxError at the first detected problem.
func Assemble(source string) (*Program, error) {
	lines, err := ParseSource(source)
	if err != nil {
		return nil, err
	}
	pages, err := partition(lines)
	if err != nil {
		return nil, err
	}
	labelPage, err := buildLabelPages(pages)
	if err != nil {
		return nil, err
	}
	if err := bindCalls(pages, labelPage); err != nil {
		return nil, err
	}
	for _, p := range pages {
		expandWaitflags(p)
	}
	labelLocal, err := resolveLocals(pages, labelPage)
	if err != nil {
		return nil, err
	}

	prog := &Program{
		Rom:    make(map[int]string),
		Ram:    make(map[int]string),
		Labels: make(map[string]Label, len(labelPage)),
	}
	for _, p := range pages {
		stream, nibbles := p.compile()
		if p.id.Kind == RomPage {
			prog.Rom[p.id.Num] = stream
			if nibbles > romPageNibbles {
				prog.Warnings = append(prog.Warnings,
					fmt.Sprintf("%s holds %d nibbles, more than the %d it can encode", p.id, nibbles, romPageNibbles))
			}
		} else {
			prog.Ram[p.id.Num] = stream
		}
	}
	if err := checkRamOccupancy(prog.Ram); err != nil {
		return nil, err
	}
	for name, pg := range labelPage {
		prog.Labels[name] = Label{Page: pg, Local: labelLocal[name]}
	}
	return prog, nil
}

// compile encodes the page and returns the spaced stream plus its nibble
// count.
func (p *page) compile() (string, int) {
	var groups []string
	nibbles := 0
	for _, ln := range p.lines {
		op, ok := ln.(*Operation)
		if !ok {
			continue
		}
		groups = append(groups, op.encode()...)
		nibbles += op.Length()
	}
	return strings.Join(groups, " "), nibbles
}

// encode renders the instruction as one or more nibble groups. Immediate
// words and the parts of a paged call are kept as separate groups; the
// grouping is cosmetic and disappears under Strip.
func (o *Operation) encode() []string {
	switch o.Opcode {
	case Pass:
		return []string{"0"}
	case Value:
		return []string{"1", hex4(o.Value)}
	case Jump:
		return []string{"2" + hex2(o.TargetLocal)}
	case Branch:
		return []string{"3" + string(nib(o.Condition)) + hex2(o.TargetLocal)}
	case Push:
		return []string{"4" + string(nib(o.Register))}
	case Pop:
		return []string{"5" + string(nib(o.Register))}
	case Call:
		switch o.CallKind {
		case CallRom:
			return []string{"C", string(nib(o.CallPage)), hex2(o.TargetLocal)}
		case CallRam:
			return []string{"1", hex4(o.CallAddr), "D", hex2(o.TargetLocal)}
		default:
			return []string{"6" + hex2(o.TargetLocal)}
		}
	case Return:
		return []string{"7"}
	case Add:
		return []string{"8" + string(nib(o.Register))}
	case Rotate:
		return []string{"9" + string(nib(o.RotNum)) + string(nib(o.Register))}
	case ALU, RAM:
		if o.ALURAMType == 1 {
			return []string{"A" + string(nib(o.Subop))}
		}
		return []string{"B" + string(nib(o.Subop)) + string(nib(o.Register))}
	case Input:
		return []string{"E"}
	case Output:
		var sb strings.Builder
		sb.WriteByte('F')
		for _, d := range o.Octal[:len(o.Octal)-1] {
			sb.WriteByte(nib(d))
		}
		sb.WriteByte("89ABCDEF"[o.Octal[len(o.Octal)-1]])
		return []string{sb.String()}
	}
	return nil
}

// Strip removes the cosmetic spacing from a nibble stream.
func Strip(stream string) string {
	return strings.ReplaceAll(stream, " ", "")
}

// checkRamOccupancy asserts that RAM pages neither overlap nor run past
// the end of the 4096-nibble RAM space.
func checkRamOccupancy(ram map[int]string) error {
	addrs := make([]int, 0, len(ram))
	for addr := range ram {
		addrs = append(addrs, addr)
	}
	sort.Ints(addrs)

	owner := make(map[int]int)
	for _, addr := range addrs {
		id := PageID{Kind: RamPage, Num: addr}
		k := len(Strip(ram[addr]))
		for i := 0; i < k; i++ {
			idx := addr + i
			if idx >= ramNibbles {
				e := errf(RamOutOfRange, "", "%s spills past the end of RAM at nibble %d", id, idx)
				e.Page = id.String()
				return e
			}
			if prev, taken := owner[idx]; taken {
				e := errf(RamOverlap, "", "%s overlaps RAM page %d at nibble %d", id, prev, idx)
				e.Page = id.String()
				return e
			}
			owner[idx] = addr
		}
	}
	return nil
}
