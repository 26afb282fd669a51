// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package preprocess

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"honnef.co/go/gpulayout/internal/glslstruct"
)

func TestConditionals(t *testing.T) {
	src := strings.Join([]string{
		"#version 450",
		"#ifdef FULL",
		"struct A { float a; };",
		"#else",
		"struct B { float b; };",
		"#endif",
		"#ifndef FULL // comment",
		"struct C { float c; };",
		"#endif",
	}, "\n")

	tests := []struct {
		defines []string
		want    []string
	}{
		{nil, []string{"#version 450", "", "", "", "struct B { float b; };", "", "", "struct C { float c; };", ""}},
		{[]string{"FULL"}, []string{"#version 450", "", "struct A { float a; };", "", "", "", "", "", ""}},
	}
	for _, tc := range tests {
		p := &Preprocessor{Defines: make(map[string]struct{})}
		for _, d := range tc.defines {
			p.Defines[d] = struct{}{}
		}
		out, err := p.Preprocess([]byte(src), "test.glsl")
		if err != nil {
			t.Fatal(err)
		}
		got := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
		if len(got) != len(tc.want) {
			t.Fatalf("%v: got %d lines, want %d", tc.defines, len(got), len(tc.want))
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("%v: line %d: got %q, want %q", tc.defines, i+1, got[i], tc.want[i])
			}
		}
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("light.glsl", "struct Light {\n    vec4 color;\n};\n")
	write("cycle.glsl", "#import cycle\n")

	p := &Preprocessor{ImportDir: dir, Ext: ".glsl"}
	out, err := p.Preprocess([]byte("#import light\nstruct S { Light l; };\n"), "main.glsl")
	if err != nil {
		t.Fatal(err)
	}
	want := "struct Light {     vec4 color; };\nstruct S { Light l; };\n"
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}

	write("shared.glsl", "// shared light types\nstruct Shared { // trailing\n    vec4 color;\n};\n")
	out, err = p.Preprocess([]byte("#import shared\nstruct S { Shared s; };\n"), "main.glsl")
	if err != nil {
		t.Fatal(err)
	}
	want = " struct Shared {" + strings.Repeat(" ", 6) + "vec4 color; };\nstruct S { Shared s; };\n"
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
	structs, err := glslstruct.Parse(out, "main.glsl")
	if err != nil {
		t.Fatal(err)
	}
	if len(structs) != 2 || structs[1].Pos.Line != 2 {
		t.Errorf("got %d structs, want Shared and S with S on line 2", len(structs))
	}

	if _, err := p.Preprocess([]byte("#import cycle\n"), "main.glsl"); err == nil {
		t.Error("import cycle: got nil error")
	}
	if _, err := p.Preprocess([]byte("#import missing\n"), "main.glsl"); err == nil {
		t.Error("missing import: got nil error")
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"else without ifdef", "#else\n"},
		{"second else", "#ifdef X\n#else\n#else\n#endif\n"},
		{"mismatched endif", "#endif\n"},
		{"unterminated", "#ifdef X\n"},
		{"ifdef without argument", "#ifdef\n#endif\n"},
		{"endif with argument", "#ifdef X\n#endif X\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := &Preprocessor{}
			if _, err := p.Preprocess([]byte(tc.src), "test.glsl"); err == nil {
				t.Error("got nil error")
			}
		})
	}
}
