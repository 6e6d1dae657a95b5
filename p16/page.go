package p16

import "fmt"

const (
	romPages       = 16
	romPageNibbles = 256
	ramNibbles     = 4096
	flagDelay      = 6
)

// PageKind distinguishes the two instruction banks.
type PageKind int

const (
	RomPage PageKind = iota
	RamPage
)

// PageID names a page: a ROM bank number 0-15 or the start address of a
// RAM page in the 4096-nibble RAM space.
type PageID struct {
	Kind PageKind
	Num  int
}

func (p PageID) String() string {
	if p.Kind == RomPage {
		return fmt.Sprintf("ROM page %d", p.Num)
	}
	return fmt.Sprintf("RAM page %d", p.Num)
}

// page holds the line stream of one ROM or RAM page in source order.
type page struct {
	id    PageID
	lines []Line
}

// partition walks the lexed lines, opening a new page on each .PROM and
// .PRAM directive. A repeated page id is an error, as is any non-blank
// line before the first page directive.
func partition(lines []Line) ([]*page, error) {
	var pages []*page
	seen := make(map[PageID]bool)
	var cur *page
	for _, ln := range lines {
		if d, ok := ln.(*Directive); ok && (d.Kind == DirProm || d.Kind == DirPram) {
			id := PageID{Kind: RomPage, Num: d.Page}
			if d.Kind == DirPram {
				id = PageID{Kind: RamPage, Num: d.Addr}
			}
			if seen[id] {
				e := errf(DuplicatePage, d.Src, "%s is populated more than once", id)
				e.Page = id.String()
				return nil, e
			}
			seen[id] = true
			cur = &page{id: id}
			pages = append(pages, cur)
			continue
		}
		if cur == nil {
			if _, blank := ln.(*Blank); blank {
				continue
			}
			return nil, errf(MissingPageDirective, ln.Text(),
				"a page must be specified before any other commands, add \".PROM 0\" as the first line")
		}
		cur.lines = append(cur.lines, ln)
	}
	if len(pages) == 0 {
		return nil, errf(MissingPageDirective, "", "the program contains no .PROM or .PRAM directive")
	}
	return pages, nil
}

// expandWaitflags replaces each .WAITFLAG with enough PASS instructions
// that at least flagDelay nibbles separate it from the most recent
// flag-setting operation. Runs after CALL binding so every length is
// exact.
func expandWaitflags(p *page) {
	out := make([]Line, 0, len(p.lines))
	since := 0
	for _, ln := range p.lines {
		if d, ok := ln.(*Directive); ok && d.Kind == DirWaitflag {
			for since < flagDelay {
				out = append(out, &Operation{Src: "PASS", Opcode: Pass, TargetLocal: -1})
				since++
			}
			continue
		}
		if op, ok := ln.(*Operation); ok && op.setsFlags() {
			since = 0
		}
		out = append(out, ln)
		since += ln.Length()
	}
	p.lines = out
}
