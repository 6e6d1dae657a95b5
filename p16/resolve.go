package p16

// The resolver runs in three passes because CALL width depends on the
// target page: first the global label to page map, then CALL binding
// (after which every length is known), then per-page local offsets and
// target fill-in.

// buildLabelPages records which page declares each label. Labels share a
// single global namespace; a name bound twice anywhere is an error.
func buildLabelPages(pages []*page) (map[string]PageID, error) {
	labelPage := make(map[string]PageID)
	for _, p := range pages {
		for _, ln := range p.lines {
			d, ok := ln.(*Directive)
			if !ok || d.Kind != DirLabel {
				continue
			}
			if prev, dup := labelPage[d.Name]; dup {
				e := errf(DuplicateLabel, d.Src, "label %q is already bound in %s", d.Name, prev)
				e.Page = p.id.String()
				e.Symbol = d.Name
				return nil, e
			}
			labelPage[d.Name] = p.id
		}
	}
	return labelPage, nil
}

// bindCalls decides the encoding form of every CALL from its target page.
func bindCalls(pages []*page, labelPage map[string]PageID) error {
	for _, p := range pages {
		for _, ln := range p.lines {
			op, ok := ln.(*Operation)
			if !ok || op.Opcode != Call {
				continue
			}
			target, ok := labelPage[op.Target]
			if !ok {
				e := errf(UnresolvedLabel, op.Src, "label %q has not been assigned", op.Target)
				e.Page = p.id.String()
				e.Symbol = op.Target
				return e
			}
			switch {
			case target == p.id:
				op.CallKind = CallInternal
			case target.Kind == RomPage:
				op.CallKind, op.CallPage = CallRom, target.Num
			default:
				op.CallKind, op.CallAddr = CallRam, target.Num
			}
		}
	}
	return nil
}

// resolveLocals computes each label's nibble offset within its page, then
// fills every jump, branch and call target. JUMP and BRANCH must stay
// within their own page; CALL may land anywhere.
func resolveLocals(pages []*page, labelPage map[string]PageID) (map[string]int, error) {
	labelLocal := make(map[string]int)
	for _, p := range pages {
		offset := 0
		for _, ln := range p.lines {
			if d, ok := ln.(*Directive); ok && d.Kind == DirLabel {
				labelLocal[d.Name] = offset
			}
			offset += ln.Length()
		}
	}

	for _, p := range pages {
		for _, ln := range p.lines {
			op, ok := ln.(*Operation)
			if !ok {
				continue
			}
			switch op.Opcode {
			case Jump, Branch:
				target, ok := labelPage[op.Target]
				if !ok {
					e := errf(UnresolvedLabel, op.Src, "label %q has not been assigned", op.Target)
					e.Page = p.id.String()
					e.Symbol = op.Target
					return nil, e
				}
				if target != p.id {
					e := errf(CrossPageLocalJump, op.Src,
						"%s targets label %q in %s, jumps and branches cannot leave their page",
						op.Opcode, op.Target, target)
					e.Page = p.id.String()
					e.Symbol = op.Target
					return nil, e
				}
				op.TargetLocal = labelLocal[op.Target]
			case Call:
				// Existence was checked when the call was bound.
				op.TargetLocal = labelLocal[op.Target]
			}
		}
	}
	return labelLocal, nil
}
