// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package glslstruct parses struct declarations out of GLSL source, for
// inspecting their buffer layout. Everything other than struct declarations
// is skipped.
package glslstruct

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"honnef.co/go/gpulayout"
)

type Struct struct {
	Pos  scanner.Position
	Type gpulayout.StructType
}

type Error struct {
	Pos scanner.Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

type parser struct {
	s     scanner.Scanner
	tok   rune
	lit   string
	pos   scanner.Position
	err   error
	types map[string]gpulayout.Type
}

// Parse returns the struct declarations in src, in order. Struct members may
// refer to structs declared earlier in the same source.
func Parse(src []byte, filename string) ([]Struct, error) {
	p := &parser{types: make(map[string]gpulayout.Type)}
	p.s.Init(bytes.NewReader(src))
	p.s.Filename = filename
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanComments | scanner.SkipComments
	p.s.Error = func(s *scanner.Scanner, msg string) {
		if p.err == nil {
			p.err = &Error{Pos: s.Position, Msg: msg}
		}
	}
	p.next()

	var out []Struct
	for p.tok != scanner.EOF {
		if p.tok == scanner.Ident && p.lit == "struct" {
			st, err := p.parseStruct()
			if err != nil {
				return nil, err
			}
			out = append(out, st)
			continue
		}
		p.next()
	}
	if p.err != nil {
		return nil, p.err
	}
	return out, nil
}

func (p *parser) next() {
	p.tok = p.s.Scan()
	p.lit = p.s.TokenText()
	p.pos = p.s.Position
}

func (p *parser) errorf(f string, v ...any) error {
	if p.err != nil {
		return p.err
	}
	return &Error{Pos: p.pos, Msg: fmt.Sprintf(f, v...)}
}

func (p *parser) expect(tok rune) error {
	if p.tok != tok {
		return p.errorf("expected %s, found %q", scanner.TokenString(tok), p.lit)
	}
	p.next()
	return nil
}

func (p *parser) ident() (string, error) {
	if p.tok != scanner.Ident {
		return "", p.errorf("expected identifier, found %q", p.lit)
	}
	lit := p.lit
	p.next()
	return lit, nil
}

func (p *parser) parseStruct() (Struct, error) {
	pos := p.pos
	p.next()
	name, err := p.ident()
	if err != nil {
		return Struct{}, err
	}
	if _, ok := p.lookup(name); ok {
		return Struct{}, p.errorf("%s redeclared", name)
	}
	if err := p.expect('{'); err != nil {
		return Struct{}, err
	}
	var fields []gpulayout.Field
	for p.tok != '}' {
		if p.tok == scanner.EOF {
			return Struct{}, p.errorf("unterminated struct %s", name)
		}
		fs, err := p.parseMember()
		if err != nil {
			return Struct{}, err
		}
		fields = append(fields, fs...)
	}
	p.next()
	if p.tok == ';' {
		p.next()
	}
	if len(fields) == 0 {
		return Struct{}, &Error{Pos: pos, Msg: fmt.Sprintf("struct %s has no members", name)}
	}

	typ := gpulayout.StructType{Name: name, Fields: fields}
	p.types[name] = typ
	return Struct{Pos: pos, Type: typ}, nil
}

var qualifiers = map[string]bool{
	"highp":   true,
	"mediump": true,
	"lowp":    true,
	"precise": true,
}

func (p *parser) parseMember() ([]gpulayout.Field, error) {
	for p.tok == scanner.Ident && qualifiers[p.lit] {
		p.next()
	}
	typeName, err := p.ident()
	if err != nil {
		return nil, err
	}
	typ, ok := p.lookup(typeName)
	if !ok {
		return nil, p.errorf("unknown type %s", typeName)
	}
	typ, err = p.parseDims(typ)
	if err != nil {
		return nil, err
	}

	var fields []gpulayout.Field
	for {
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		ft, err := p.parseDims(typ)
		if err != nil {
			return nil, err
		}
		fields = append(fields, gpulayout.Field{Name: name, Type: ft})
		if p.tok != ',' {
			break
		}
		p.next()
	}
	return fields, p.expect(';')
}

// parseDims parses any number of array dimensions following a type or member
// name. In float a[2][3], a is an array of 2 arrays of 3 floats.
func (p *parser) parseDims(elem gpulayout.Type) (gpulayout.Type, error) {
	var dims []int
	for p.tok == '[' {
		p.next()
		if p.tok != scanner.Int {
			return nil, p.errorf("array size must be an integer constant, found %q", p.lit)
		}
		n, err := strconv.Atoi(p.lit)
		if err != nil || n < 1 {
			return nil, p.errorf("invalid array size %s", p.lit)
		}
		dims = append(dims, n)
		p.next()
		if err := p.expect(']'); err != nil {
			return nil, err
		}
	}
	for i := len(dims) - 1; i >= 0; i-- {
		elem = gpulayout.ArrayType{Elem: elem, Len: dims[i]}
	}
	return elem, nil
}

func (p *parser) lookup(name string) (gpulayout.Type, bool) {
	if t, ok := Builtin(name); ok {
		return t, true
	}
	t, ok := p.types[name]
	return t, ok
}

// Builtin returns the type of a GLSL built-in scalar, vector or matrix type
// name.
func Builtin(name string) (gpulayout.Type, bool) {
	switch name {
	case "float":
		return gpulayout.ScalarType{Kind: gpulayout.KindFloat}, true
	case "int":
		return gpulayout.ScalarType{Kind: gpulayout.KindInt}, true
	case "uint":
		return gpulayout.ScalarType{Kind: gpulayout.KindUint}, true
	case "bool":
		return gpulayout.ScalarType{Kind: gpulayout.KindBool}, true
	}

	for prefix, kind := range map[string]gpulayout.Kind{
		"vec":  gpulayout.KindFloat,
		"ivec": gpulayout.KindInt,
		"uvec": gpulayout.KindUint,
		"bvec": gpulayout.KindBool,
	} {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			n, ok := dim(rest)
			return gpulayout.VectorType{Kind: kind, N: n}, ok
		}
	}

	if rest, ok := strings.CutPrefix(name, "mat"); ok {
		cols, rows, hasRows := strings.Cut(rest, "x")
		c, ok := dim(cols)
		if !ok {
			return nil, false
		}
		if !hasRows {
			return gpulayout.MatrixType{Cols: c, Rows: c}, true
		}
		r, ok := dim(rows)
		return gpulayout.MatrixType{Cols: c, Rows: r}, ok
	}
	return nil, false
}

func dim(s string) (int, bool) {
	if len(s) != 1 || s[0] < '2' || s[0] > '4' {
		return 0, false
	}
	return int(s[0] - '0'), true
}
