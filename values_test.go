// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gpulayout

import (
	"bytes"
	"strings"
	"structs"
	"testing"
)

// Every built-in value has to produce exactly as many bytes as its layout
// says, under both conventions.
func TestRepresentationSizes(t *testing.T) {
	values := []Value{
		Float(1), Int(-2), Uint(3), Bool(true),
		Vec2{}, Vec3{}, Vec4{},
		IVec2{}, IVec3{}, IVec4{},
		UVec2{}, UVec3{}, UVec4{},
		BVec2{}, BVec3{}, BVec4{},
		Mat2{}, Mat3{}, Mat4{},
		Mat2x3{}, Mat2x4{}, Mat3x2{}, Mat3x4{}, Mat4x2{}, Mat4x3{},
		Array[Float]{1, 2},
		Array[Vec3]{{}, {}, {}},
		Array[Mat3x2]{{}, {}},
		Struct{Float(1), Vec3{}, Array[Float]{1, 2, 3}, Mat2{}},
		Array[Struct]{{Vec2{}, Float(0)}, {Vec2{}, Float(0)}},
		testLights[0],
	}
	for _, c := range []Convention{Std430, Std140} {
		for _, v := range values {
			want := SizeOf(v.GPUType(), c)
			if got := len(v.AppendGPU(nil, c)); got != want {
				t.Errorf("%s: %s: got %d bytes, want %d", c, v.GPUType(), got, want)
			}
		}
	}
}

func TestVec3Std140(t *testing.T) {
	got := Vec3{1, 2, 3}.AppendGPU(nil, Std140)
	want := zeroes(f32s(nil, 1, 2, 3), 4)
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	got = Vec3{1, 2, 3}.AppendGPU(nil, Std430)
	if !bytes.Equal(got, want[:12]) {
		t.Errorf("got %v, want %v", got, want[:12])
	}
}

func TestBoolRepresentation(t *testing.T) {
	if got, want := Bool(true).AppendGPU(nil, Std430), u32s(nil, 1); !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := Bool(false).AppendGPU(nil, Std430), u32s(nil, 0); !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	got := BVec3{true, false, true}.AppendGPU(nil, Std140)
	want := u32s(nil, 1, 0, 1, 0)
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMatrixRepresentation(t *testing.T) {
	m := Mat3{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	var want []byte
	for _, col := range m {
		want = f32s(want, col[:]...)
		want = zeroes(want, 4)
	}
	for _, c := range []Convention{Std430, Std140} {
		if got := m.AppendGPU(nil, c); !bytes.Equal(got, want) {
			t.Errorf("%s: got %v, want %v", c, got, want)
		}
	}

	m2 := Mat2{{1, 2}, {3, 4}}
	if got, want := m2.AppendGPU(nil, Std430), f32s(nil, 1, 2, 3, 4); !bytes.Equal(got, want) {
		t.Errorf("std430: got %v, want %v", got, want)
	}
	want = nil
	want = zeroes(f32s(want, 1, 2), 8)
	want = zeroes(f32s(want, 3, 4), 8)
	if got := m2.AppendGPU(nil, Std140); !bytes.Equal(got, want) {
		t.Errorf("std140: got %v, want %v", got, want)
	}
}

func TestStructRepresentation(t *testing.T) {
	s := Struct{Float(1), Array[Float]{2, 3}, Float(4)}

	want := f32s(nil, 1, 2, 3, 4)
	if got := s.AppendGPU(nil, Std430); !bytes.Equal(got, want) {
		t.Errorf("std430: got %v, want %v", got, want)
	}

	want = nil
	want = zeroes(f32s(want, 1), 12)
	want = zeroes(f32s(want, 2), 12)
	want = zeroes(f32s(want, 3), 12)
	want = zeroes(f32s(want, 4), 12)
	if got := s.AppendGPU(nil, Std140); !bytes.Equal(got, want) {
		t.Errorf("std140: got %v, want %v", got, want)
	}
}

func TestStructAppendsAfterExistingData(t *testing.T) {
	prefix := []byte{0xff, 0xff, 0xff}
	got := Struct{Float(1), Vec2{2, 3}}.AppendGPU(prefix, Std430)
	want := append([]byte{0xff, 0xff, 0xff}, f32s(zeroes(f32s(nil, 1), 4), 2, 3)...)
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

type hostLight struct {
	_ structs.HostLayout

	Position  [3]float32
	LightType uint32
	Color     [3]float32
	Intensity float32
}

func TestHostValue(t *testing.T) {
	l := hostLight{Position: [3]float32{1, 2, 3}, LightType: 2, Color: [3]float32{4, 5, 6}, Intensity: 7}
	h := Host(&l, 16)
	if got := MustDescribe(h.GPUType(), Std140); got != (Layout{Align: 16, Size: 32}) {
		t.Errorf("got %+v, want {16 32}", got)
	}

	var buf bytes.Buffer
	w := NewWriter(&buf, Std430)
	w.Write(Float(0))
	off, err := w.Write(h)
	if err != nil {
		t.Fatal(err)
	}
	if off != 16 {
		t.Errorf("got offset %d, want 16", off)
	}
	want := zeroes(f32s(nil, 0), 12)
	want = f32s(want, 1, 2, 3)
	want = u32s(want, 2)
	want = f32s(want, 4, 5, 6, 7)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got %v, want %v", buf.Bytes(), want)
	}
}

func TestHostValueNilPanics(t *testing.T) {
	defer func() {
		msg, ok := recover().(string)
		if !ok || !strings.HasPrefix(msg, "gpulayout: ") {
			t.Errorf("got panic %v, want gpulayout error", msg)
		}
	}()
	var h HostValue[hostLight]
	h.AppendGPU(nil, Std430)
}

func TestArrayElementMismatch(t *testing.T) {
	tests := []struct {
		name string
		arr  Array[Value]
	}{
		{"smaller type", Array[Value]{Vec4{1, 2, 3, 4}, Float(9)}},
		{"same size other type", Array[Value]{Vec4{1, 2, 3, 4}, IVec4{1, 2, 3, 4}}},
		{"short representation", Array[Value]{lyingValue{}, lyingValue{}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf, Std430)
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
				if buf.Len() != 0 {
					t.Errorf("sink received %d bytes", buf.Len())
				}
			}()
			w.Write(tc.arr)
		})
	}
}
