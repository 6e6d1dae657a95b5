// Package layout places an assembled P16 program as redstone signal
// sources in world coordinates, ready for the schematic writer.
package layout

import (
	"sort"

	"github.com/pishleback/schematicgen/p16"
	"github.com/pishleback/schematicgen/schem"
)

const pageNibbles = 256

// DefaultActive is every ROM page except page 0: the lever bank is
// normally toggled by hand rather than pasted.
func DefaultActive() map[int]bool {
	active := make(map[int]bool, 15)
	for page := 1; page < 16; page++ {
		active[page] = true
	}
	return active
}

// Blocks lays out the program's ROM pages and RAM image. Each active ROM
// page materializes all 256 nibble cells, padding past the encoded
// stream with zeros: page 0 as per-bit levers, pages 1-3 as per-bit
// redstone wall torches on glass, pages 4-15 as comparator-readable
// barrels with glass for zero nibbles. Occupied RAM nibbles get the same
// barrel treatment in their own wall.
func Blocks(prog *p16.Program, active map[int]bool) []schem.Block {
	var blocks []schem.Block
	for page := 0; page < 16; page++ {
		if !active[page] {
			continue
		}
		nibbles := p16.Strip(prog.Rom[page])
		for i := 0; i < pageNibbles; i++ {
			n := 0
			if i < len(nibbles) {
				n = hexVal(nibbles[i])
			}
			blocks = append(blocks, romNibbleBlocks(page, i, n)...)
		}
	}
	blocks = append(blocks, ramBlocks(prog.Ram)...)
	return blocks
}

func romNibbleBlocks(page, i, n int) []schem.Block {
	switch {
	case page == 0:
		out := make([]schem.Block, 0, 4)
		for b := 0; b < 4; b++ {
			x := -5 - 2*(3-b) - 8*(i/32)
			z := -5 - 2*(i%32)
			props := "[facing=east,face=floor,powered=false]"
			if n&(1<<b) != 0 {
				props = "[facing=east,face=floor,powered=true]"
			}
			out = append(out, schem.Block{X: x, Y: 0, Z: z, ID: "minecraft:lever", Props: props})
		}
		return out
	case page <= 3:
		out := make([]schem.Block, 0, 4)
		for b := 0; b < 4; b++ {
			x := -5 - 2*(3-b) - 8*(i/32)
			y := -5 - 5*page
			z := -5 - 2*(i%32)
			if n&(1<<b) != 0 {
				out = append(out, schem.Block{X: x, Y: y, Z: z,
					ID: "minecraft:redstone_wall_torch", Props: "[facing=north,lit=false]"})
			} else {
				out = append(out, schem.Block{X: x, Y: y, Z: z, ID: "minecraft:glass"})
			}
		}
		return out
	default:
		p := page - 4
		x := -13 - 2*(i%32)
		y := -27 + (p%2)*16 - 2*(i/32)
		z := 13 + 4*(p/2)
		if n == 0 {
			return []schem.Block{{X: x, Y: y, Z: z, ID: "minecraft:glass"}}
		}
		return []schem.Block{schem.Signal(x, y, z, n)}
	}
}

// ramBlocks places each occupied RAM nibble in a 64-wide wall of its
// own, in front of the ROM data pages and clear of their columns.
func ramBlocks(ram map[int]string) []schem.Block {
	addrs := make([]int, 0, len(ram))
	for addr := range ram {
		addrs = append(addrs, addr)
	}
	sort.Ints(addrs)

	var blocks []schem.Block
	for _, addr := range addrs {
		nibbles := p16.Strip(ram[addr])
		for i := 0; i < len(nibbles); i++ {
			j := addr + i
			x := -13 - 2*(j%64)
			y := -51 - 2*(j/64)
			z := 9
			if n := hexVal(nibbles[i]); n == 0 {
				blocks = append(blocks, schem.Block{X: x, Y: y, Z: z, ID: "minecraft:glass"})
			} else {
				blocks = append(blocks, schem.Signal(x, y, z, n))
			}
		}
	}
	return blocks
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}
