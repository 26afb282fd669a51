// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gpulayout

import (
	"fmt"
	"strconv"
	"strings"

	"honnef.co/go/gpulayout/jmath"
)

// Convention selects the buffer layout rules of the shading language.
type Convention uint8

const (
	// Std430 is the layout of shader storage blocks (and of WGSL storage
	// buffers).
	Std430 Convention = iota + 1
	// Std140 is the layout of uniform blocks. It differs from Std430 in that
	// arrays, matrix columns and structs are aligned to 16 bytes and vec3
	// occupies a full 16-byte slot.
	Std140
)

func (c Convention) String() string {
	switch c {
	case Std430:
		return "std430"
	case Std140:
		return "std140"
	default:
		return "Convention(" + strconv.Itoa(int(c)) + ")"
	}
}

func (c Convention) valid() bool {
	return c == Std430 || c == Std140
}

// Layout describes how a type is placed in a buffer. Align is the power of two
// the offset of the type's first byte must be a multiple of. Size is the
// number of bytes the type occupies, including any padding mandated by the
// convention inside of it.
type Layout struct {
	Align int
	Size  int
}

// Kind is the component type of scalars and vectors. All kinds are 32 bits
// wide.
type Kind uint8

const (
	KindFloat Kind = iota
	KindInt
	KindUint
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindBool:
		return "bool"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

func (k Kind) vectorPrefix() string {
	switch k {
	case KindInt:
		return "i"
	case KindUint:
		return "u"
	case KindBool:
		return "b"
	default:
		return ""
	}
}

// Type is the shape of a value as seen by a shader. The set of types is
// closed: ScalarType, VectorType, MatrixType, ArrayType, StructType and
// OpaqueType.
type Type interface {
	// String returns the type in GLSL syntax.
	String() string
	isType()
}

type ScalarType struct {
	Kind Kind
}

// VectorType is a vector of N components, with N in [2, 4].
type VectorType struct {
	Kind Kind
	N    int
}

// MatrixType is a column-major float matrix with Cols columns of Rows
// components each. It is laid out like an array of Cols column vectors.
type MatrixType struct {
	Cols int
	Rows int
}

// ArrayType is a fixed-size array.
type ArrayType struct {
	Elem Type
	Len  int
}

type Field struct {
	Name string
	Type Type
}

type StructType struct {
	Name   string
	Fields []Field
}

// OpaqueType is a type whose layout was computed elsewhere, for example a Go
// struct that mirrors a shader struct field for field. Its layout is the same
// under all conventions.
type OpaqueType struct {
	Name  string
	Align int
	Size  int
}

func (ScalarType) isType() {}
func (VectorType) isType() {}
func (MatrixType) isType() {}
func (ArrayType) isType()  {}
func (StructType) isType() {}
func (OpaqueType) isType() {}

func (t ScalarType) String() string { return t.Kind.String() }

func (t VectorType) String() string {
	return t.Kind.vectorPrefix() + "vec" + strconv.Itoa(t.N)
}

func (t MatrixType) String() string {
	if t.Cols == t.Rows {
		return "mat" + strconv.Itoa(t.Cols)
	}
	return "mat" + strconv.Itoa(t.Cols) + "x" + strconv.Itoa(t.Rows)
}

func (t ArrayType) String() string {
	return typeName(t.Elem) + "[" + strconv.Itoa(t.Len) + "]"
}

func (t StructType) String() string {
	if t.Name != "" {
		return t.Name
	}
	var sb strings.Builder
	sb.WriteString("struct {")
	for i, f := range t.Fields {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteByte(' ')
		sb.WriteString(typeName(f.Type))
		if f.Name != "" {
			sb.WriteByte(' ')
			sb.WriteString(f.Name)
		}
	}
	sb.WriteString(" }")
	return sb.String()
}

func (t OpaqueType) String() string {
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("opaque(align=%d, size=%d)", t.Align, t.Size)
}

func typeName(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// Describe computes the layout of t under convention c. It returns a
// *ShapeError if t isn't a well-formed type.
func Describe(t Type, c Convention) (Layout, error) {
	if !c.valid() {
		return Layout{}, &ShapeError{Type: t, Reason: "unknown convention " + c.String()}
	}
	return describe(t, c)
}

func describe(t Type, c Convention) (Layout, error) {
	switch t := t.(type) {
	case ScalarType:
		if t.Kind > KindBool {
			return Layout{}, &ShapeError{Type: t, Reason: "unknown scalar kind"}
		}
		return Layout{Align: 4, Size: 4}, nil

	case VectorType:
		if t.Kind > KindBool {
			return Layout{}, &ShapeError{Type: t, Reason: "unknown scalar kind"}
		}
		switch t.N {
		case 2:
			return Layout{Align: 8, Size: 8}, nil
		case 3:
			if c == Std140 {
				return Layout{Align: 16, Size: 16}, nil
			}
			return Layout{Align: 16, Size: 12}, nil
		case 4:
			return Layout{Align: 16, Size: 16}, nil
		default:
			return Layout{}, &ShapeError{Type: t, Reason: "vectors must have 2, 3 or 4 components"}
		}

	case MatrixType:
		if t.Cols < 2 || t.Cols > 4 || t.Rows < 2 || t.Rows > 4 {
			return Layout{}, &ShapeError{Type: t, Reason: "matrices must have 2 to 4 columns and rows"}
		}
		col, _ := describe(VectorType{Kind: KindFloat, N: t.Rows}, c)
		return arrayLayout(col, t.Cols, c), nil

	case ArrayType:
		if t.Len < 1 {
			return Layout{}, &ShapeError{Type: t, Reason: "arrays must have at least one element"}
		}
		elem, err := describe(t.Elem, c)
		if err != nil {
			return Layout{}, err
		}
		return arrayLayout(elem, t.Len, c), nil

	case StructType:
		l, _, err := structLayout(t, c)
		return l, err

	case OpaqueType:
		if !jmath.IsPowerOfTwo(t.Align) {
			return Layout{}, &ShapeError{Type: t, Reason: "alignment must be a power of two"}
		}
		if t.Size < 0 || t.Size%t.Align != 0 {
			return Layout{}, &ShapeError{Type: t, Reason: "size must be a multiple of the alignment"}
		}
		return Layout{Align: t.Align, Size: t.Size}, nil

	case nil:
		return Layout{}, &ShapeError{Reason: "missing type"}

	default:
		return Layout{}, &ShapeError{Type: t, Reason: fmt.Sprintf("unsupported type %T", t)}
	}
}

// arrayAlign returns the alignment of an array of elem, which is also the
// granularity of its stride. Under std140 every element starts on a 16-byte
// boundary.
func arrayAlign(elem Layout, c Convention) int {
	if c == Std140 {
		return max(elem.Align, 16)
	}
	return elem.Align
}

func arrayLayout(elem Layout, n int, c Convention) Layout {
	align := arrayAlign(elem, c)
	return Layout{
		Align: align,
		Size:  jmath.AlignUp(elem.Size, align) * n,
	}
}

func structLayout(t StructType, c Convention) (Layout, []int, error) {
	if len(t.Fields) == 0 {
		return Layout{}, nil, &ShapeError{Type: t, Reason: "structs must have at least one field"}
	}
	offsets := make([]int, len(t.Fields))
	align := 1
	offset := 0
	for i, f := range t.Fields {
		l, err := describe(f.Type, c)
		if err != nil {
			return Layout{}, nil, wrapField(err, t, i)
		}
		offset = jmath.AlignUp(offset, l.Align)
		offsets[i] = offset
		offset += l.Size
		align = max(align, l.Align)
	}
	if c == Std140 {
		align = max(align, 16)
	}
	return Layout{Align: align, Size: jmath.AlignUp(offset, align)}, offsets, nil
}

// MustDescribe is like Describe but panics if t isn't well-formed.
func MustDescribe(t Type, c Convention) Layout {
	l, err := Describe(t, c)
	if err != nil {
		panic(err)
	}
	return l
}

// AlignmentOf returns the alignment of t under c. It panics if t isn't
// well-formed.
func AlignmentOf(t Type, c Convention) int {
	return MustDescribe(t, c).Align
}

// SizeOf returns the size of t under c, including the padding the convention
// requires inside of t. It panics if t isn't well-formed.
func SizeOf(t Type, c Convention) int {
	return MustDescribe(t, c).Size
}

// StrideOf returns the distance between consecutive elements of an array of
// elem.
func StrideOf(elem Type, c Convention) (int, error) {
	l, err := Describe(ArrayType{Elem: elem, Len: 1}, c)
	return l.Size, err
}

// StructOffsets returns the offset of each field of t, relative to the start
// of the struct.
func StructOffsets(t StructType, c Convention) ([]int, error) {
	if !c.valid() {
		return nil, &ShapeError{Type: t, Reason: "unknown convention " + c.String()}
	}
	_, offsets, err := structLayout(t, c)
	return offsets, err
}

// PaddingNeeded returns the number of zero bytes that have to follow offset
// for the next value to start at a multiple of align. align must be a power of
// two.
func PaddingNeeded(offset, align int) int {
	return jmath.PaddingNeeded(offset, align)
}
