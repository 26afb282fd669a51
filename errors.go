// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gpulayout

import (
	"errors"
	"strconv"
	"strings"
)

// ErrFailed matches every error returned by a Writer whose sink rejected a
// write.
var ErrFailed = errors.New("gpulayout: writer failed")

// ShapeError reports a type that has no layout, such as a vector with five
// components. It is a programming error, detected when a type's layout is
// first computed.
type ShapeError struct {
	// Type is the malformed type. It is nil if the type was missing.
	Type Type
	// Path is the chain of struct fields leading from the outermost type to
	// Type.
	Path   []string
	Reason string
}

func (e *ShapeError) Error() string {
	var sb strings.Builder
	sb.WriteString("gpulayout: invalid type ")
	sb.WriteString(typeName(e.Type))
	if len(e.Path) > 0 {
		sb.WriteString(" at ")
		sb.WriteString(strings.Join(e.Path, "."))
	}
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	return sb.String()
}

func wrapField(err error, parent StructType, field int) error {
	var serr *ShapeError
	if !errors.As(err, &serr) {
		return err
	}
	name := parent.Fields[field].Name
	if name == "" {
		name = "#" + strconv.Itoa(field)
	}
	serr.Path = append([]string{name}, serr.Path...)
	return serr
}

// WriteError is returned by a Writer when its sink fails. The writer doesn't
// attempt to recover; once a WriteError has been returned, all further writes
// return the same error.
type WriteError struct {
	// Offset is the number of bytes the sink accepted before failing.
	Offset int
	Err    error
}

func (e *WriteError) Error() string {
	return "gpulayout: write at offset " + strconv.Itoa(e.Offset) + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrFailed }
