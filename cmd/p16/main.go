package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	cli "github.com/urfave/cli/v2"

	"github.com/pishleback/schematicgen/layout"
	"github.com/pishleback/schematicgen/p16"
	"github.com/pishleback/schematicgen/schem"
)

func assembleFile(file string) (*p16.Program, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", file)
	}
	prog, err := p16.Assemble(string(data))
	if err != nil {
		return nil, err
	}
	for _, w := range prog.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	return prog, nil
}

func sortedKeys(m map[int]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func compileSource(file string) error {
	prog, err := assembleFile(file)
	if err != nil {
		return err
	}
	for _, page := range sortedKeys(prog.Rom) {
		fmt.Printf("Rom %d: %s\n", page, prog.Rom[page])
	}
	for _, addr := range sortedKeys(prog.Ram) {
		fmt.Printf("Ram %d: %s\n", addr, prog.Ram[addr])
	}
	return nil
}

func listLabels(file string) error {
	prog, err := assembleFile(file)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(prog.Labels))
	for name := range prog.Labels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		l := prog.Labels[name]
		fmt.Printf("%-16s %s +&%02X\n", name, l.Page, l.Local)
	}
	return nil
}

func listing(file string) error {
	prog, err := assembleFile(file)
	if err != nil {
		return err
	}
	for _, page := range sortedKeys(prog.Rom) {
		out, err := p16.Listing(prog.Rom[page])
		if err != nil {
			return err
		}
		fmt.Printf("; ROM page %d\n%s", page, out)
	}
	for _, addr := range sortedKeys(prog.Ram) {
		out, err := p16.Listing(prog.Ram[addr])
		if err != nil {
			return err
		}
		fmt.Printf("; RAM page %d\n%s", addr, out)
	}
	return nil
}

// parsePages accepts a comma-separated list of page numbers and a-b
// ranges, e.g. "1-3,7,12-15".
func parsePages(spec string) (map[int]bool, error) {
	active := make(map[int]bool)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi := part, part
		if i := strings.IndexByte(part, '-'); i > 0 {
			lo, hi = part[:i], part[i+1:]
		}
		a, err := strconv.Atoi(lo)
		if err != nil {
			return nil, errors.Errorf("bad page %q", part)
		}
		b, err := strconv.Atoi(hi)
		if err != nil {
			return nil, errors.Errorf("bad page %q", part)
		}
		if a > b || a < 0 || b > 15 {
			return nil, errors.Errorf("bad page range %q", part)
		}
		for p := a; p <= b; p++ {
			active[p] = true
		}
	}
	return active, nil
}

func parseOrigin(spec string) (int, int, int, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 3 {
		return 0, 0, 0, errors.Errorf("origin must be x,y,z, got %q", spec)
	}
	var xyz [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0, 0, 0, errors.Errorf("origin must be x,y,z, got %q", spec)
		}
		xyz[i] = n
	}
	return xyz[0], xyz[1], xyz[2], nil
}

func writeSchem(file, out, pages, origin string) error {
	prog, err := assembleFile(file)
	if err != nil {
		return err
	}
	active, err := parsePages(pages)
	if err != nil {
		return err
	}
	ox, oy, oz, err := parseOrigin(origin)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return errors.Wrapf(err, "creating %s", out)
	}
	if err := schem.Write(f, layout.Blocks(prog, active), ox, oy, oz); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", out)
	}
	fmt.Printf("Schematic saved to %s\n", out)
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "p16"
	app.Usage = "Assemble P16 programs and emit Minecraft .schem schematics"
	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}
	app.Commands = []*cli.Command{
		{
			Name:      "compile",
			Aliases:   []string{"c"},
			Usage:     "Assemble a source file and print the page nibble streams",
			ArgsUsage: "source",
			Action: func(c *cli.Context) error {
				if c.Args().Len() < 1 {
					return cli.Exit("Insufficient arguments", 1)
				}
				return compileSource(c.Args().First())
			},
		},
		{
			Name:      "labels",
			Aliases:   []string{"l"},
			Usage:     "Assemble a source file and print the label address map",
			ArgsUsage: "source",
			Action: func(c *cli.Context) error {
				if c.Args().Len() < 1 {
					return cli.Exit("Insufficient arguments", 1)
				}
				return listLabels(c.Args().First())
			},
		},
		{
			Name:      "disasm",
			Aliases:   []string{"d"},
			Usage:     "Assemble a source file and print a per-page listing",
			ArgsUsage: "source",
			Action: func(c *cli.Context) error {
				if c.Args().Len() < 1 {
					return cli.Exit("Insufficient arguments", 1)
				}
				return listing(c.Args().First())
			},
		},
		{
			Name:      "schem",
			Aliases:   []string{"s"},
			Usage:     "Assemble a source file and write a .schem schematic",
			ArgsUsage: "source",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Value:   "P16_output.schem",
					Usage:   "schematic file to write",
				},
				&cli.StringFlag{
					Name:  "pages",
					Value: "1-15",
					Usage: "ROM pages to place, e.g. \"1-3,7,12-15\"",
				},
				&cli.StringFlag{
					Name:  "origin",
					Value: "0,0,0",
					Usage: "worldedit paste origin as x,y,z",
				},
			},
			Action: func(c *cli.Context) error {
				if c.Args().Len() < 1 {
					return cli.Exit("Insufficient arguments", 1)
				}
				return writeSchem(c.Args().First(), c.String("output"), c.String("pages"), c.String("origin"))
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
