// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package gfx converts colors into the vectors shaders consume. All
// conversions produce linear sRGB.
package gfx

import (
	"math"

	"honnef.co/go/color"
	"honnef.co/go/gpulayout"
)

// Straight returns c as an RGBA vector with straight alpha.
func Straight(c *color.Color) gpulayout.Vec4 {
	cc := c.Convert(color.LinearSRGB)
	return straight(cc.Values[0], cc.Values[1], cc.Values[2], cc.Alpha)
}

// Premul returns c as an RGBA vector with premultiplied alpha.
func Premul(c *color.Color) gpulayout.Vec4 {
	cc := c.Convert(color.LinearSRGB)
	return premul(cc.Values[0], cc.Values[1], cc.Values[2], cc.Alpha)
}

// RGB returns the color channels of c, ignoring alpha.
func RGB(c *color.Color) gpulayout.Vec3 {
	cc := c.Convert(color.LinearSRGB)
	return gpulayout.Vec3{
		float32(cc.Values[0]),
		float32(cc.Values[1]),
		float32(cc.Values[2]),
	}
}

// PremulPacked returns c with premultiplied alpha, packed into 8 bits per
// channel with red in the least significant byte, matching WGSL's
// unpack4x8unorm.
func PremulPacked(c *color.Color) gpulayout.Uint {
	return pack4x8unorm(Premul(c))
}

func straight(r, g, b, a float64) gpulayout.Vec4 {
	return gpulayout.Vec4{float32(r), float32(g), float32(b), float32(a)}
}

func premul(r, g, b, a float64) gpulayout.Vec4 {
	return gpulayout.Vec4{
		float32(r * a),
		float32(g * a),
		float32(b * a),
		float32(a),
	}
}

func pack4x8unorm(v gpulayout.Vec4) gpulayout.Uint {
	var out uint32
	for i, f := range v {
		f = min(max(f, 0), 1)
		out |= uint32(math.Round(float64(f)*255)) << (8 * i)
	}
	return gpulayout.Uint(out)
}
