package p16

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Decoded is one instruction recovered from a nibble stream.
type Decoded struct {
	Offset  int    // local offset of the first nibble
	Nibbles string // the raw nibbles of the instruction
	Text    string // mnemonic rendering; labels are lost, targets print as offsets
}

// widths maps a leading nibble to the instruction length. OUTPUT ('F')
// is variable and handled separately; 'D' is the ram-call tail that
// follows an address push.
var widths = map[byte]int{
	'0': 1, '1': 5, '2': 3, '3': 4, '4': 2, '5': 2, '6': 3, '7': 1,
	'8': 2, '9': 3, 'A': 2, 'B': 3, 'C': 4, 'D': 3, 'E': 1,
}

// Decode walks a nibble stream and recovers one Decoded per instruction.
// The stream may carry the cosmetic spacing produced by Assemble. The
// concatenated Nibbles of the result always reproduce the stripped input.
func Decode(stream string) ([]Decoded, error) {
	s := Strip(stream)
	var out []Decoded
	for cursor := 0; cursor < len(s); {
		lead := s[cursor]
		if strings.IndexByte(hexDigits, lead) < 0 {
			return nil, errors.Errorf("p16: %q at nibble %d is not a hex digit", lead, cursor)
		}

		var width int
		if lead == 'F' {
			// OUTPUT runs until its terminating re-coded digit.
			width = 1
			for cursor+width < len(s) && s[cursor+width] < '8' {
				width++
			}
			width++
		} else {
			width = widths[lead]
		}
		if cursor+width > len(s) {
			return nil, errors.Errorf("p16: truncated instruction at nibble %d", cursor)
		}

		nibbles := s[cursor : cursor+width]
		text, err := decodeText(nibbles)
		if err != nil {
			return nil, errors.Wrapf(err, "p16: at nibble %d", cursor)
		}
		out = append(out, Decoded{Offset: cursor, Nibbles: nibbles, Text: text})
		cursor += width
	}
	return out, nil
}

func decodeText(nibbles string) (string, error) {
	val := func(i int) int { return strings.IndexByte(hexDigits, nibbles[i]) }
	for i := range nibbles {
		if val(i) < 0 {
			return "", errors.Errorf("%q is not a hex digit", nibbles[i])
		}
	}

	switch nibbles[0] {
	case '0':
		return "PASS", nil
	case '1':
		return fmt.Sprintf("VALUE %d", val(1)<<12|val(2)<<8|val(3)<<4|val(4)), nil
	case '2':
		return fmt.Sprintf("JUMP &%s", nibbles[1:3]), nil
	case '3':
		return fmt.Sprintf("BRANCH %s &%s", conditionNames[val(1)], nibbles[2:4]), nil
	case '4':
		return fmt.Sprintf("PUSH r%d", val(1)), nil
	case '5':
		return fmt.Sprintf("POP r%d", val(1)), nil
	case '6':
		return fmt.Sprintf("CALL &%s", nibbles[1:3]), nil
	case '7':
		return "RETURN", nil
	case '8':
		return fmt.Sprintf("ADD r%d", val(1)), nil
	case '9':
		return fmt.Sprintf("ROTATE %d r%d", val(1), val(2)), nil
	case 'A':
		// The ALU and RAM sub-tables occupy disjoint code ranges, so the
		// class can be recovered from the sub-operation alone.
		if name, ok := alm1Names["RAM"][val(1)]; ok {
			return fmt.Sprintf("RAM %s", name), nil
		}
		name, ok := alm1Names["ALU"][val(1)]
		if !ok {
			return "", errors.Errorf("no 1-operand ALU or RAM operation has code %d", val(1))
		}
		return fmt.Sprintf("ALU %s", name), nil
	case 'B':
		if name, ok := alm2Names["RAM"][val(1)]; ok {
			return fmt.Sprintf("RAM %s r%d", name, val(2)), nil
		}
		name, ok := alm2Names["ALU"][val(1)]
		if !ok {
			return "", errors.Errorf("no 2-operand ALU or RAM operation has code %d", val(1))
		}
		return fmt.Sprintf("ALU %s r%d", name, val(2)), nil
	case 'C':
		return fmt.Sprintf("CALL ROM %d &%s", val(1), nibbles[2:4]), nil
	case 'D':
		return fmt.Sprintf("CALL RAM &%s", nibbles[1:3]), nil
	case 'E':
		return "INPUT", nil
	case 'F':
		digits := make([]string, 0, len(nibbles)-1)
		for i := 1; i < len(nibbles)-1; i++ {
			if val(i) > 7 {
				return "", errors.Errorf("octal digit %q out of range", nibbles[i])
			}
			digits = append(digits, fmt.Sprintf("%d", val(i)))
		}
		last := val(len(nibbles) - 1)
		if last < 8 {
			return "", errors.New("OUTPUT is missing its terminating digit")
		}
		digits = append(digits, fmt.Sprintf("%d", last-8))
		return fmt.Sprintf("OUTPUT %s", strings.Join(digits, ".")), nil
	}
	return "", errors.Errorf("unknown leading nibble %q", nibbles[0])
}

// Listing renders a page's nibble stream as a human-readable listing,
// one instruction per line.
func Listing(stream string) (string, error) {
	decoded, err := Decode(stream)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, d := range decoded {
		fmt.Fprintf(&sb, "&%02X  %-8s  %s\n", d.Offset, d.Nibbles, d.Text)
	}
	return sb.String(), nil
}
