// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gpulayout

import "io"

// FixedBuffer is an io.Writer that fills a fixed-size byte slice, such as the
// mapped range of a GPU buffer. Writes that don't fit copy as much as fits and
// fail with io.ErrShortBuffer.
type FixedBuffer struct {
	buf []byte
	n   int
}

func NewFixedBuffer(buf []byte) *FixedBuffer {
	return &FixedBuffer{buf: buf}
}

func (b *FixedBuffer) Write(p []byte) (int, error) {
	n := copy(b.buf[b.n:], p)
	b.n += n
	if n < len(p) {
		return n, io.ErrShortBuffer
	}
	return n, nil
}

// Bytes returns the written part of the buffer.
func (b *FixedBuffer) Bytes() []byte { return b.buf[:b.n] }

func (b *FixedBuffer) Len() int { return b.n }

// Available returns how many more bytes fit into the buffer.
func (b *FixedBuffer) Available() int { return len(b.buf) - b.n }
