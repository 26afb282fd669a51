// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gpulayout

import (
	"fmt"
	"reflect"
	"unsafe"

	"honnef.co/go/safeish"
)

// Value is a value that can be written to a GPU buffer.
//
// AppendGPU must append exactly SizeOf(GPUType(), c) bytes: the value's
// memory image under convention c, including any padding inside the value.
// Padding between values is the Writer's job.
type Value interface {
	GPUType() Type
	AppendGPU(dst []byte, c Convention) []byte
}

type (
	Float float32
	Int   int32
	Uint  uint32
	// Bool is stored as a 32-bit integer that is either 0 or 1.
	Bool bool
)

type (
	Vec2 [2]float32
	Vec3 [3]float32
	Vec4 [4]float32

	IVec2 [2]int32
	IVec3 [3]int32
	IVec4 [4]int32

	UVec2 [2]uint32
	UVec3 [3]uint32
	UVec4 [4]uint32

	BVec2 [2]bool
	BVec3 [3]bool
	BVec4 [4]bool
)

// Matrices are stored column-major: MatCxR is C columns of R rows, so that
// m[col][row] is the element in the given column and row.
type (
	Mat2 [2][2]float32
	Mat3 [3][3]float32
	Mat4 [4][4]float32

	Mat2x3 [2][3]float32
	Mat2x4 [2][4]float32
	Mat3x2 [3][2]float32
	Mat3x4 [3][4]float32
	Mat4x2 [4][2]float32
	Mat4x3 [4][3]float32
)

var zeros [64]byte

func appendZeros(dst []byte, n int) []byte {
	for n > len(zeros) {
		dst = append(dst, zeros[:]...)
		n -= len(zeros)
	}
	return append(dst, zeros[:n]...)
}

// appendPadded appends the memory image of *v, followed by zeros up to a total
// of size bytes.
func appendPadded[T any](dst []byte, v *T, size int) []byte {
	b := safeish.AsBytes(v)
	return appendZeros(append(dst, b...), size-len(b))
}

func appendVector[T any](dst []byte, v *T, t VectorType, c Convention) []byte {
	return appendPadded(dst, v, MustDescribe(t, c).Size)
}

func appendBools(dst []byte, bs []bool, t VectorType, c Convention) []byte {
	var u [4]uint32
	for i, b := range bs {
		if b {
			u[i] = 1
		}
	}
	b := safeish.SliceCast[[]byte](u[:len(bs)])
	return appendZeros(append(dst, b...), MustDescribe(t, c).Size-len(b))
}

func appendMatrix[Col any](dst []byte, cols []Col, t MatrixType, c Convention) []byte {
	stride := MustDescribe(t, c).Size / t.Cols
	for i := range cols {
		dst = appendPadded(dst, &cols[i], stride)
	}
	return dst
}

func (Float) GPUType() Type { return ScalarType{Kind: KindFloat} }
func (Int) GPUType() Type   { return ScalarType{Kind: KindInt} }
func (Uint) GPUType() Type  { return ScalarType{Kind: KindUint} }
func (Bool) GPUType() Type  { return ScalarType{Kind: KindBool} }

func (v Float) AppendGPU(dst []byte, c Convention) []byte { return append(dst, safeish.AsBytes(&v)...) }
func (v Int) AppendGPU(dst []byte, c Convention) []byte   { return append(dst, safeish.AsBytes(&v)...) }
func (v Uint) AppendGPU(dst []byte, c Convention) []byte  { return append(dst, safeish.AsBytes(&v)...) }

func (v Bool) AppendGPU(dst []byte, c Convention) []byte {
	var u uint32
	if v {
		u = 1
	}
	return append(dst, safeish.AsBytes(&u)...)
}

func (Vec2) GPUType() Type  { return VectorType{Kind: KindFloat, N: 2} }
func (Vec3) GPUType() Type  { return VectorType{Kind: KindFloat, N: 3} }
func (Vec4) GPUType() Type  { return VectorType{Kind: KindFloat, N: 4} }
func (IVec2) GPUType() Type { return VectorType{Kind: KindInt, N: 2} }
func (IVec3) GPUType() Type { return VectorType{Kind: KindInt, N: 3} }
func (IVec4) GPUType() Type { return VectorType{Kind: KindInt, N: 4} }
func (UVec2) GPUType() Type { return VectorType{Kind: KindUint, N: 2} }
func (UVec3) GPUType() Type { return VectorType{Kind: KindUint, N: 3} }
func (UVec4) GPUType() Type { return VectorType{Kind: KindUint, N: 4} }
func (BVec2) GPUType() Type { return VectorType{Kind: KindBool, N: 2} }
func (BVec3) GPUType() Type { return VectorType{Kind: KindBool, N: 3} }
func (BVec4) GPUType() Type { return VectorType{Kind: KindBool, N: 4} }

func (v Vec2) AppendGPU(dst []byte, c Convention) []byte  { return appendVector(dst, &v, v.GPUType().(VectorType), c) }
func (v Vec3) AppendGPU(dst []byte, c Convention) []byte  { return appendVector(dst, &v, v.GPUType().(VectorType), c) }
func (v Vec4) AppendGPU(dst []byte, c Convention) []byte  { return appendVector(dst, &v, v.GPUType().(VectorType), c) }
func (v IVec2) AppendGPU(dst []byte, c Convention) []byte { return appendVector(dst, &v, v.GPUType().(VectorType), c) }
func (v IVec3) AppendGPU(dst []byte, c Convention) []byte { return appendVector(dst, &v, v.GPUType().(VectorType), c) }
func (v IVec4) AppendGPU(dst []byte, c Convention) []byte { return appendVector(dst, &v, v.GPUType().(VectorType), c) }
func (v UVec2) AppendGPU(dst []byte, c Convention) []byte { return appendVector(dst, &v, v.GPUType().(VectorType), c) }
func (v UVec3) AppendGPU(dst []byte, c Convention) []byte { return appendVector(dst, &v, v.GPUType().(VectorType), c) }
func (v UVec4) AppendGPU(dst []byte, c Convention) []byte { return appendVector(dst, &v, v.GPUType().(VectorType), c) }
func (v BVec2) AppendGPU(dst []byte, c Convention) []byte { return appendBools(dst, v[:], v.GPUType().(VectorType), c) }
func (v BVec3) AppendGPU(dst []byte, c Convention) []byte { return appendBools(dst, v[:], v.GPUType().(VectorType), c) }
func (v BVec4) AppendGPU(dst []byte, c Convention) []byte { return appendBools(dst, v[:], v.GPUType().(VectorType), c) }

func (Mat2) GPUType() Type   { return MatrixType{Cols: 2, Rows: 2} }
func (Mat3) GPUType() Type   { return MatrixType{Cols: 3, Rows: 3} }
func (Mat4) GPUType() Type   { return MatrixType{Cols: 4, Rows: 4} }
func (Mat2x3) GPUType() Type { return MatrixType{Cols: 2, Rows: 3} }
func (Mat2x4) GPUType() Type { return MatrixType{Cols: 2, Rows: 4} }
func (Mat3x2) GPUType() Type { return MatrixType{Cols: 3, Rows: 2} }
func (Mat3x4) GPUType() Type { return MatrixType{Cols: 3, Rows: 4} }
func (Mat4x2) GPUType() Type { return MatrixType{Cols: 4, Rows: 2} }
func (Mat4x3) GPUType() Type { return MatrixType{Cols: 4, Rows: 3} }

func (m Mat2) AppendGPU(dst []byte, c Convention) []byte   { return appendMatrix(dst, m[:], m.GPUType().(MatrixType), c) }
func (m Mat3) AppendGPU(dst []byte, c Convention) []byte   { return appendMatrix(dst, m[:], m.GPUType().(MatrixType), c) }
func (m Mat4) AppendGPU(dst []byte, c Convention) []byte   { return appendMatrix(dst, m[:], m.GPUType().(MatrixType), c) }
func (m Mat2x3) AppendGPU(dst []byte, c Convention) []byte { return appendMatrix(dst, m[:], m.GPUType().(MatrixType), c) }
func (m Mat2x4) AppendGPU(dst []byte, c Convention) []byte { return appendMatrix(dst, m[:], m.GPUType().(MatrixType), c) }
func (m Mat3x2) AppendGPU(dst []byte, c Convention) []byte { return appendMatrix(dst, m[:], m.GPUType().(MatrixType), c) }
func (m Mat3x4) AppendGPU(dst []byte, c Convention) []byte { return appendMatrix(dst, m[:], m.GPUType().(MatrixType), c) }
func (m Mat4x2) AppendGPU(dst []byte, c Convention) []byte { return appendMatrix(dst, m[:], m.GPUType().(MatrixType), c) }
func (m Mat4x3) AppendGPU(dst []byte, c Convention) []byte { return appendMatrix(dst, m[:], m.GPUType().(MatrixType), c) }

// Array is a fixed-size shader array. Its length is part of its type, and an
// Array must not be empty. All elements must have the same type.
//
// Dynamically sized arrays at the end of a storage buffer are written with
// WriteIter or WriteSlice instead.
type Array[T Value] []T

func (a Array[T]) elemType() Type {
	if len(a) > 0 {
		return a[0].GPUType()
	}
	var zero T
	return zero.GPUType()
}

func (a Array[T]) GPUType() Type {
	return ArrayType{Elem: a.elemType(), Len: len(a)}
}

func (a Array[T]) AppendGPU(dst []byte, c Convention) []byte {
	elem := a.elemType()
	name := typeName(elem)
	size := MustDescribe(elem, c).Size
	stride := MustDescribe(a.GPUType(), c).Size / len(a)
	for i, v := range a {
		if got := typeName(v.GPUType()); got != name {
			panic(fmt.Sprintf("gpulayout: element %d of %s array has type %s", i, name, got))
		}
		start := len(dst)
		dst = v.AppendGPU(dst, c)
		if n := len(dst) - start; n != size {
			panic(fmt.Sprintf("gpulayout: representation of %s array element %d is %d bytes, want %d", name, i, n, size))
		}
		dst = appendZeros(dst, stride-size)
	}
	return dst
}

// Struct is a shader struct whose fields are laid out in order, each at the
// next offset that satisfies its alignment. Go types that mirror shader
// structs can implement Value by building a Struct from their fields.
type Struct []Value

func (s Struct) GPUType() Type {
	fields := make([]Field, len(s))
	for i, v := range s {
		fields[i].Type = v.GPUType()
	}
	return StructType{Fields: fields}
}

func (s Struct) AppendGPU(dst []byte, c Convention) []byte {
	l, offsets, err := structLayout(s.GPUType().(StructType), c)
	if err != nil {
		panic(err)
	}
	base := len(dst)
	for i, v := range s {
		dst = appendZeros(dst, base+offsets[i]-len(dst))
		dst = v.AppendGPU(dst, c)
	}
	return appendZeros(dst, base+l.Size-len(dst))
}

// HostValue is a Go value whose memory image already is its GPU
// representation, typically a struct with a [structs.HostLayout] field and
// explicit padding fields. The image is copied verbatim under every
// convention.
type HostValue[T any] struct {
	V     *T
	Align int
}

// Host returns a HostValue for *v, which has to be aligned to align bytes in
// the buffer. v must not be nil.
func Host[T any](v *T, align int) HostValue[T] {
	return HostValue[T]{V: v, Align: align}
}

func (h HostValue[T]) GPUType() Type {
	return OpaqueType{
		Name:  reflect.TypeFor[T]().String(),
		Align: h.Align,
		Size:  int(unsafe.Sizeof(*new(T))),
	}
}

func (h HostValue[T]) AppendGPU(dst []byte, c Convention) []byte {
	if h.V == nil {
		panic("gpulayout: HostValue of " + reflect.TypeFor[T]().String() + " has nil V")
	}
	return append(dst, safeish.AsBytes(h.V)...)
}
