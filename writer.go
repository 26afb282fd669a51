// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gpulayout

import (
	"fmt"
	"io"
	"iter"
	"slices"
)

// Writer writes a sequence of values to an io.Writer, inserting the zero
// padding that the convention requires between them.
//
// Writer is useful when many values need to be laid out in a row that can't be
// expressed as a single struct, such as a length-prefixed list of structs at
// the end of a storage buffer.
//
// A Writer must not be used concurrently, and no other writer may write to its
// sink while it is in use. If the sink returns an error, the Writer stops
// working: the error is returned from every subsequent call and the sink isn't
// written to again.
type Writer struct {
	w       io.Writer
	conv    Convention
	offset  int
	err     error
	scratch []byte
}

// NewWriter returns a Writer that writes to w using the layout rules of c.
func NewWriter(w io.Writer, c Convention) *Writer {
	if !c.valid() {
		panic("gpulayout: invalid convention " + c.String())
	}
	return &Writer{w: w, conv: c}
}

// Write writes v, preceded by as many zero bytes as are needed to align it.
// It returns the offset of v's first byte.
//
// Write panics if v's type has no layout, or if v's representation isn't as
// large as its layout says.
func (w *Writer) Write(v Value) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	t := v.GPUType()
	l := MustDescribe(t, w.conv)

	pad := PaddingNeeded(w.offset, l.Align)
	buf := appendZeros(w.scratch[:0], pad)
	buf = v.AppendGPU(buf, w.conv)
	if n := len(buf) - pad; n != l.Size {
		panic(fmt.Sprintf("gpulayout: representation of %s is %d bytes, want %d", typeName(t), n, l.Size))
	}
	w.scratch = buf

	n, err := w.w.Write(buf)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		w.offset += n
		w.err = &WriteError{Offset: w.offset, Err: err}
		return 0, w.err
	}

	at := w.offset + pad
	w.offset += len(buf)
	return at, nil
}

// WriteIter writes all values of seq back to back. It returns the offset of
// the first value, or Len if seq was empty.
func WriteIter[V Value](w *Writer, seq iter.Seq[V]) (int, error) {
	first := w.offset
	wrote := false
	for v := range seq {
		off, err := w.Write(v)
		if err != nil {
			return 0, err
		}
		if !wrote {
			first = off
			wrote = true
		}
	}
	return first, nil
}

// WriteSlice is like WriteIter but writes the elements of a slice.
func WriteSlice[S ~[]V, V Value](w *Writer, vs S) (int, error) {
	return WriteIter(w, slices.Values(vs))
}

// Len returns the number of bytes written so far, including padding.
func (w *Writer) Len() int {
	return w.offset
}

func (w *Writer) Convention() Convention {
	return w.conv
}

// Err returns the error that stopped the Writer, or nil.
func (w *Writer) Err() error {
	return w.err
}
