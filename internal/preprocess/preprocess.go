// Copyright 2023 the Vello Authors
// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package preprocess resolves the #import, #ifdef, #ifndef, #else and #endif
// directives used by shared shader sources, so that struct declarations can be
// extracted from the shaders that actually use them.
package preprocess

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

type Preprocessor struct {
	// ImportDir is the directory that #import NAME looks for NAME+Ext in.
	ImportDir string
	// Ext is the file extension of imported files, such as ".glsl".
	Ext     string
	Defines map[string]struct{}
	Logger  *zap.Logger

	imports map[string][]byte
}

func (p *Preprocessor) debug(msg string, fields ...zap.Field) {
	if p.Logger != nil {
		p.Logger.Debug(msg, fields...)
	}
}

func (p *Preprocessor) getImport(name string) ([]byte, error) {
	if src, ok := p.imports[name]; ok {
		p.debug("substituting cached import", zap.String("import", name))
		return src, nil
	}
	path := filepath.Join(p.ImportDir, name+p.Ext)
	p.debug("loading import", zap.String("import", name), zap.String("path", path))
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if p.imports == nil {
		p.imports = make(map[string][]byte)
	}
	p.imports[name] = src
	return src, nil
}

type branch struct {
	active     bool
	elsePassed bool
}

func allActive(stack []branch) bool {
	for _, item := range stack {
		if !item.active {
			return false
		}
	}
	return true
}

// Preprocess returns source with all directives resolved. Directives that
// aren't handled by the preprocessor, such as #version, are kept verbatim.
// Lines in inactive branches are replaced by empty lines so that line numbers
// in the output match those in source.
func (p *Preprocessor) Preprocess(source []byte, name string) ([]byte, error) {
	return p.preprocess(source, name, nil)
}

func (p *Preprocessor) preprocess(source []byte, name string, importing []string) ([]byte, error) {
	for _, imp := range importing {
		if imp == name {
			return nil, fmt.Errorf("import cycle: %q imports itself", name)
		}
	}
	importing = append(importing, name)

	var out []byte
	nl := []byte("\n")
	commentMarker := []byte("//")
	var stack []branch
	lineNo := 0
	errorf := func(f string, v ...any) error {
		v = append(v[:len(v):len(v)], name, lineNo)
		return fmt.Errorf(f+" (at %s:%d)", v...)
	}

	for len(source) > 0 {
		lineNo++
		var line []byte
		line, source, _ = bytes.Cut(source, nl)

		trimmed := bytes.TrimSpace(line)
		if !bytes.HasPrefix(trimmed, []byte("#")) {
			if allActive(stack) {
				out = append(out, line...)
			}
			out = append(out, '\n')
			continue
		}

		directive, arg, _ := bytes.Cut(trimmed[1:], []byte(" "))
		arg = bytes.TrimSpace(arg)
		if i := bytes.Index(arg, commentMarker); i != -1 {
			arg = bytes.TrimSpace(arg[:i])
		}
		p.debug("processing directive", zap.ByteString("directive", directive), zap.String("file", name), zap.Int("line", lineNo))

		switch string(directive) {
		case "ifdef", "ifndef":
			if len(arg) == 0 {
				return nil, errorf("#%s needs an argument", directive)
			}
			_, exists := p.Defines[string(arg)]
			stack = append(stack, branch{active: (string(directive) == "ifdef") == exists})

		case "else":
			if len(stack) == 0 {
				return nil, errorf("#else without #ifdef")
			}
			item := &stack[len(stack)-1]
			if item.elsePassed {
				return nil, errorf("second #else for same #ifdef")
			}
			item.elsePassed = true
			item.active = !item.active
			if len(arg) != 0 {
				return nil, errorf("#else doesn't accept arguments")
			}

		case "endif":
			if len(stack) == 0 {
				return nil, errorf("mismatched #endif")
			}
			stack = stack[:len(stack)-1]
			if len(arg) != 0 {
				return nil, errorf("#endif doesn't accept arguments")
			}

		case "import":
			if len(arg) == 0 {
				return nil, errorf("#import needs an argument")
			}
			if !allActive(stack) {
				break
			}
			importName, _, _ := bytes.Cut(arg, []byte(" "))
			importSrc, err := p.getImport(string(importName))
			if err != nil {
				return nil, errorf("couldn't import %q: %w", importName, err)
			}
			imported, err := p.preprocess(importSrc, string(importName), importing)
			if err != nil {
				return nil, err
			}
			// Imported code shares the importing line, keeping line numbers
			// of the importing file stable. Line comments have to go, or they
			// would swallow the rest of the import.
			for i, l := range bytes.Split(bytes.TrimRight(imported, "\n"), nl) {
				if j := bytes.Index(l, commentMarker); j != -1 {
					l = l[:j]
				}
				if i > 0 {
					out = append(out, ' ')
				}
				out = append(out, l...)
			}

		default:
			if allActive(stack) {
				out = append(out, line...)
			}
		}
		out = append(out, '\n')
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("unterminated #ifdef in %s", name)
	}

	return out, nil
}
