package schem

import (
	"compress/gzip"
	"io"
	"sort"
	"strings"

	"github.com/Tnze/go-mc/nbt"
	"github.com/pkg/errors"
)

// Sponge v2 schematic payload. BlockData holds one palette index per
// cell, x fastest then z then y.
type schematic struct {
	Version       int32            `nbt:"Version"`
	DataVersion   int32            `nbt:"DataVersion"`
	PaletteMax    int32            `nbt:"PaletteMax"`
	Palette       map[string]int32 `nbt:"Palette"`
	Width         int16            `nbt:"Width"`
	Height        int16            `nbt:"Height"`
	Length        int16            `nbt:"Length"`
	BlockData     []byte           `nbt:"BlockData"`
	BlockEntities []blockEntity    `nbt:"BlockEntities"`
	Metadata      metadata         `nbt:"Metadata"`
	Offset        []byte           `nbt:"Offset"`
}

type rootTag struct {
	Schematic schematic `nbt:"Schematic"`
}

type blockEntity struct {
	ID    string       `nbt:"Id"`
	Pos   []int32      `nbt:"Pos"`
	Items []entityItem `nbt:"Items"`
}

type entityItem struct {
	Slot  int8   `nbt:"Slot"`
	ID    string `nbt:"id"`
	Count int8   `nbt:"Count"`
}

type metadata struct {
	WEOffsetX int32 `nbt:"WEOffsetX"`
	WEOffsetY int32 `nbt:"WEOffsetY"`
	WEOffsetZ int32 `nbt:"WEOffsetZ"`
}

const (
	dataVersion = 2584 // 1.16.5
	air         = "minecraft:air"
)

// Write assembles the blocks into a schematic and writes it as gzipped
// NBT. When several blocks land on the same position the last one wins;
// unoccupied cells inside the bounding box are filled with air. The
// origin (ox, oy, oz) becomes the worldedit paste origin.
func Write(w io.Writer, blocks []Block, ox, oy, oz int) error {
	if len(blocks) == 0 {
		return errors.New("schem: no blocks to place")
	}

	byPos := make(map[[3]int]Block, len(blocks))
	for _, b := range blocks {
		byPos[[3]int{b.X, b.Y, b.Z}] = b
	}

	first := true
	var minX, minY, minZ, maxX, maxY, maxZ int
	for pos := range byPos {
		if first {
			minX, minY, minZ = pos[0], pos[1], pos[2]
			maxX, maxY, maxZ = pos[0], pos[1], pos[2]
			first = false
			continue
		}
		minX, maxX = minInt(minX, pos[0]), maxInt(maxX, pos[0])
		minY, maxY = minInt(minY, pos[1]), maxInt(maxY, pos[1])
		minZ, maxZ = minInt(minZ, pos[2]), maxInt(maxZ, pos[2])
	}
	width := maxX - minX + 1
	height := maxY - minY + 1
	length := maxZ - minZ + 1

	// Deterministic palette: sorted keys, air always present for fill.
	keys := map[string]bool{air: true}
	for _, b := range byPos {
		keys[b.key()] = true
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)
	if len(names) > 256 {
		return errors.Errorf("schem: palette holds %d block states, more than BlockData can index", len(names))
	}
	palette := make(map[string]int32, len(names))
	for i, k := range names {
		palette[k] = int32(i)
	}

	data := make([]byte, width*height*length)
	for i := range data {
		data[i] = byte(palette[air])
	}
	var entities []blockEntity
	for pos, b := range byPos {
		x, y, z := pos[0]-minX, pos[1]-minY, pos[2]-minZ
		data[x+z*width+y*width*length] = byte(palette[b.key()])
		if len(b.Items) == 0 {
			continue
		}
		ent := blockEntity{ID: b.ID, Pos: []int32{int32(x), int32(y), int32(z)}}
		for _, it := range b.Items {
			ent.Items = append(ent.Items, entityItem{Slot: int8(it.Slot), ID: it.ID, Count: int8(it.Count)})
		}
		entities = append(entities, ent)
	}
	sort.Slice(entities, func(i, j int) bool {
		a, b := entities[i].Pos, entities[j].Pos
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		if a[2] != b[2] {
			return a[2] < b[2]
		}
		return a[0] < b[0]
	})
	if entities == nil {
		entities = []blockEntity{}
	}

	root := rootTag{Schematic: schematic{
		Version:       2,
		DataVersion:   dataVersion,
		PaletteMax:    int32(len(palette)),
		Palette:       palette,
		Width:         int16(width),
		Height:        int16(height),
		Length:        int16(length),
		BlockData:     data,
		BlockEntities: entities,
		Metadata: metadata{
			WEOffsetX: int32(minX - ox),
			WEOffsetY: int32(minY - oy),
			WEOffsetZ: int32(minZ - oz),
		},
		Offset: []byte{0, 0, 0},
	}}

	gz := gzip.NewWriter(w)
	if err := nbt.NewEncoder(gz).Encode(root, ""); err != nil {
		gz.Close()
		return errors.Wrap(err, "schem: encoding nbt")
	}
	return errors.Wrap(gz.Close(), "schem: flushing gzip stream")
}

// Read is the inverse of Write. It returns every cell of the schematic,
// air included, with container items reattached and positions shifted
// back by the stored worldedit offset.
func Read(r io.Reader) ([]Block, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "schem: opening gzip stream")
	}
	defer gz.Close()

	var root rootTag
	if _, err := nbt.NewDecoder(gz).Decode(&root); err != nil {
		return nil, errors.Wrap(err, "schem: decoding nbt")
	}
	s := root.Schematic

	inv := make(map[byte]string, len(s.Palette))
	for k, v := range s.Palette {
		inv[byte(v)] = k
	}
	items := make(map[[3]int][]Item, len(s.BlockEntities))
	for _, ent := range s.BlockEntities {
		var out []Item
		for _, it := range ent.Items {
			out = append(out, Item{Slot: int(it.Slot), ID: it.ID, Count: int(it.Count)})
		}
		items[[3]int{int(ent.Pos[0]), int(ent.Pos[1]), int(ent.Pos[2])}] = out
	}

	width, height, length := int(s.Width), int(s.Height), int(s.Length)
	if len(s.BlockData) != width*height*length {
		return nil, errors.Errorf("schem: %d block data cells for a %dx%dx%d region",
			len(s.BlockData), width, height, length)
	}
	blocks := make([]Block, 0, len(s.BlockData))
	for idx, pi := range s.BlockData {
		key, ok := inv[pi]
		if !ok {
			return nil, errors.Errorf("schem: block data index %d is not in the palette", pi)
		}
		x := idx % width
		z := (idx / width) % length
		y := idx / (width * length)

		id, props := key, ""
		if k := strings.IndexByte(key, '['); k >= 0 {
			id, props = key[:k], key[k:]
		}
		blocks = append(blocks, Block{
			X:     x + int(s.Metadata.WEOffsetX),
			Y:     y + int(s.Metadata.WEOffsetY),
			Z:     z + int(s.Metadata.WEOffsetZ),
			ID:    id,
			Props: props,
			Items: items[[3]int{x, y, z}],
		})
	}
	return blocks, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
