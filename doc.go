// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package gpulayout lays out data for GPU buffers according to the std430 and
// std140 rules used by GLSL, SPIR-V and (for storage buffers) WGSL.
//
// Getting alignment and padding right by hand is error-prone, and mistakes
// don't fail loudly: the shader silently reads garbage. This package computes
// the layout of shader types (see [Describe]) and writes values with the
// correct padding between them (see [Writer]).
//
// Values implement [Value]. The package provides scalars ([Float], [Int],
// [Uint], [Bool]), vectors ([Vec3], [IVec2], …), column-major matrices
// ([Mat4], [Mat3x2], …), fixed arrays ([Array]) and structs ([Struct]).
// Go structs that already mirror a shader struct byte for byte can be written
// with [Host].
//
// Consider a storage buffer holding a length-prefixed list of lights:
//
//	struct PointLight {
//	    vec3 position;
//	    vec3 color;
//	    float brightness;
//	};
//
//	buffer PointLights {
//	    uint len;
//	    PointLight lights[];
//	};
//
// The Go side implements Value for its light type and writes the count and the
// lights:
//
//	w := gpulayout.NewWriter(buf, gpulayout.Std430)
//	w.Write(gpulayout.Uint(len(lights)))
//	gpulayout.WriteSlice(w, lights)
//
// The writer inserts 12 bytes of padding after the count, because PointLight
// is aligned to 16 bytes.
package gpulayout
