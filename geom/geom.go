// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package geom converts geometry from package curve into GPU values.
package geom

import (
	"honnef.co/go/curve"
	"honnef.co/go/gpulayout"
)

func Vec2(v curve.Vec2) gpulayout.Vec2 {
	return gpulayout.Vec2{float32(v.X), float32(v.Y)}
}

func Point(p curve.Point) gpulayout.Vec2 {
	return Vec2(curve.Vec2(p))
}

// Points converts a list of points, for use with [gpulayout.WriteSlice].
func Points(ps []curve.Point) []gpulayout.Vec2 {
	out := make([]gpulayout.Vec2, len(ps))
	for i, p := range ps {
		out[i] = Point(p)
	}
	return out
}

// Mat3 returns the affine transformation as a 3×3 matrix that operates on
// homogeneous coordinates.
func Mat3(a curve.Affine) gpulayout.Mat3 {
	return mat3FromCoefficients(a.Coefficients())
}

// Mat3x2 returns the affine transformation as a 3×2 matrix: the two columns of
// the linear part followed by the translation.
func Mat3x2(a curve.Affine) gpulayout.Mat3x2 {
	return mat3x2FromCoefficients(a.Coefficients())
}

func mat3FromCoefficients(c [6]float64) gpulayout.Mat3 {
	return gpulayout.Mat3{
		{float32(c[0]), float32(c[1]), 0},
		{float32(c[2]), float32(c[3]), 0},
		{float32(c[4]), float32(c[5]), 1},
	}
}

func mat3x2FromCoefficients(c [6]float64) gpulayout.Mat3x2 {
	return gpulayout.Mat3x2{
		{float32(c[0]), float32(c[1])},
		{float32(c[2]), float32(c[3])},
		{float32(c[4]), float32(c[5])},
	}
}

// Transform is a 2D affine transformation in the form shaders typically
// declare it:
//
//	struct Transform {
//	    vec4 matrix;
//	    vec2 translation;
//	};
type Transform struct {
	Matrix      gpulayout.Vec4
	Translation gpulayout.Vec2
}

var Identity = Transform{
	Matrix: gpulayout.Vec4{1, 0, 0, 1},
}

func TransformFromAffine(a curve.Affine) Transform {
	return transformFromCoefficients(a.Coefficients())
}

func transformFromCoefficients(c [6]float64) Transform {
	return Transform{
		Matrix:      gpulayout.Vec4{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])},
		Translation: gpulayout.Vec2{float32(c[4]), float32(c[5])},
	}
}

func (t Transform) Mul(other Transform) Transform {
	return Transform{
		Matrix: gpulayout.Vec4{
			t.Matrix[0]*other.Matrix[0] + t.Matrix[2]*other.Matrix[1],
			t.Matrix[1]*other.Matrix[0] + t.Matrix[3]*other.Matrix[1],
			t.Matrix[0]*other.Matrix[2] + t.Matrix[2]*other.Matrix[3],
			t.Matrix[1]*other.Matrix[2] + t.Matrix[3]*other.Matrix[3],
		},
		Translation: gpulayout.Vec2{
			t.Matrix[0]*other.Translation[0] +
				t.Matrix[2]*other.Translation[1] +
				t.Translation[0],
			t.Matrix[1]*other.Translation[0] +
				t.Matrix[3]*other.Translation[1] +
				t.Translation[1],
		},
	}
}

func (t Transform) gpu() gpulayout.Struct {
	return gpulayout.Struct{t.Matrix, t.Translation}
}

func (t Transform) GPUType() gpulayout.Type {
	typ := t.gpu().GPUType().(gpulayout.StructType)
	typ.Name = "Transform"
	typ.Fields[0].Name = "matrix"
	typ.Fields[1].Name = "translation"
	return typ
}

func (t Transform) AppendGPU(dst []byte, c gpulayout.Convention) []byte {
	return t.gpu().AppendGPU(dst, c)
}
