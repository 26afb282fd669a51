// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Command gpulayout prints the std430 and std140 layouts of struct
// declarations in GLSL source files.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/zap"

	"honnef.co/go/gpulayout"
	"honnef.co/go/gpulayout/internal/glslstruct"
	"honnef.co/go/gpulayout/internal/preprocess"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB")).
			Padding(0, 1)
	cellStyle = lipgloss.NewStyle().Padding(0, 1)
	padStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Padding(0, 1)
	totalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type defines map[string]struct{}

func (d defines) String() string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func (d defines) Set(name string) error {
	if name == "" {
		return fmt.Errorf("empty define")
	}
	d[name] = struct{}{}
	return nil
}

func parseConventions(s string) ([]gpulayout.Convention, error) {
	switch s {
	case "std430":
		return []gpulayout.Convention{gpulayout.Std430}, nil
	case "std140":
		return []gpulayout.Convention{gpulayout.Std140}, nil
	case "both":
		return []gpulayout.Convention{gpulayout.Std430, gpulayout.Std140}, nil
	default:
		return nil, fmt.Errorf("unknown convention %q", s)
	}
}

func main() {
	var (
		conv      string
		only      string
		importDir string
		verbose   bool
	)
	defs := defines{}
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-v] [-conv std430|std140|both] [-struct name] [-I dir] [-D name]... file...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.StringVar(&conv, "conv", "both", "Layout `convention`: std430, std140 or both")
	flag.StringVar(&only, "struct", "", "Only print the struct with this `name`")
	flag.StringVar(&importDir, "I", "", "Resolve #import relative to `directory` (default: directory of each file)")
	flag.Var(defs, "D", "Define `name` for #ifdef (repeatable)")
	flag.BoolVar(&verbose, "v", false, "Be verbose")
	flag.Parse()

	if len(flag.Args()) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Couldn't create logger: %s\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	convs, err := parseConventions(conv)
	if err != nil {
		logger.Error("invalid flag", zap.String("flag", "conv"), zap.Error(err))
		os.Exit(2)
	}

	found := false
	for _, path := range flag.Args() {
		log := logger.With(zap.String("file", path))
		src, err := os.ReadFile(path)
		if err != nil {
			log.Error("couldn't read file", zap.Error(err))
			os.Exit(1)
		}

		dir := importDir
		if dir == "" {
			dir = filepath.Dir(path)
		}
		p := preprocess.Preprocessor{
			ImportDir: dir,
			Ext:       filepath.Ext(path),
			Defines:   defs,
			Logger:    log,
		}
		src, err = p.Preprocess(src, path)
		if err != nil {
			log.Error("couldn't preprocess file", zap.Error(err))
			os.Exit(1)
		}

		structs, err := glslstruct.Parse(src, path)
		if err != nil {
			log.Error("couldn't parse file", zap.Error(err))
			os.Exit(1)
		}
		log.Debug("parsed file", zap.Int("structs", len(structs)))

		for _, st := range structs {
			if only != "" && st.Type.Name != only {
				continue
			}
			found = true
			for _, c := range convs {
				if err := render(os.Stdout, st.Type, c); err != nil {
					log.Error("invalid struct",
						zap.String("struct", st.Type.Name),
						zap.Stringer("convention", c),
						zap.Stringer("pos", st.Pos),
						zap.Error(err))
					os.Exit(1)
				}
			}
		}
	}

	if only != "" && !found {
		logger.Error("struct not found", zap.String("struct", only))
		os.Exit(1)
	}
}

// render prints one table for st under convention c: a row per member, with
// the padding inserted before it.
func render(w io.Writer, st gpulayout.StructType, c gpulayout.Convention) error {
	l, err := gpulayout.Describe(st, c)
	if err != nil {
		return err
	}
	offsets, err := gpulayout.StructOffsets(st, c)
	if err != nil {
		return err
	}

	rows := make([][]string, len(st.Fields))
	padded := make([]bool, len(st.Fields))
	end := 0
	for i, f := range st.Fields {
		// Fields have been validated by Describe.
		fl := gpulayout.MustDescribe(f.Type, c)
		pad := offsets[i] - end
		padded[i] = pad > 0
		rows[i] = []string{
			f.Name,
			f.Type.String(),
			strconv.Itoa(offsets[i]),
			strconv.Itoa(fl.Align),
			strconv.Itoa(fl.Size),
			strconv.Itoa(pad),
		}
		end = offsets[i] + fl.Size
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("member", "type", "offset", "align", "size", "pad").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 5 && padded[row]:
				return padStyle
			default:
				return cellStyle
			}
		})

	total := fmt.Sprintf("align %d, size %d, tail padding %d", l.Align, l.Size, l.Size-end)
	_, err = fmt.Fprintf(w, "%s\n%s\n%s\n\n",
		titleStyle.Render(fmt.Sprintf("%s (%s)", st.Name, c)),
		t.String(),
		totalStyle.Render(total))
	return err
}
