// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Errors returned by the core engine. Each one corresponds to a fatal
// condition named in the compiler specification.
var (
	// ErrNoRootSection is returned when a DAT stream contains zero root
	// sections at EOF.
	ErrNoRootSection = xerrors.New("adm: no root section found")

	// ErrUnclosedSection is returned when a DAT stream ends with one or
	// more sections still open.
	ErrUnclosedSection = xerrors.New("adm: section not closed at end of file")

	// ErrMultipleRootSections is returned when a second root-level
	// section is opened.
	ErrMultipleRootSections = xerrors.New("adm: second root section found")

	// ErrRootLevelAttribute is returned when an attribute line appears
	// before any section has been opened.
	ErrRootLevelAttribute = xerrors.New("adm: root-level attribute found")

	// ErrWrongNodeClosed is returned when a `[/NAME]` line disagrees with
	// the currently open section and leniency has not been requested.
	ErrWrongNodeClosed = xerrors.New("adm: wrong node closed")

	// ErrUnknownAttributeType is returned for an attribute type tag the
	// text grammar does not recognize.
	ErrUnknownAttributeType = xerrors.New("adm: unknown attribute type")

	// ErrMalformedAttribute is returned when an attribute line is missing
	// its '>' or ':' delimiter, or its value fails to parse.
	ErrMalformedAttribute = xerrors.New("adm: malformed attribute")

	// ErrTruncatedBinary is returned when the binary stream ends before
	// the declared structure is fully read.
	ErrTruncatedBinary = xerrors.New("adm: truncated binary stream")

	// ErrUnknownBinaryAttributeType is returned for a type tag in a
	// binary stream that is not one of the eight known tags.
	ErrUnknownBinaryAttributeType = xerrors.New("adm: unknown attribute type in binary stream")

	// ErrBaseFileNotFound is returned when a unit's BASEFILE attribute
	// cannot be resolved through the virtual directory.
	ErrBaseFileNotFound = xerrors.New("adm: cannot find BASEFILE")

	// ErrOriginalDataDirFailed is returned when the original game data
	// directory cannot be opened.
	ErrOriginalDataDirFailed = xerrors.New("adm: could not load original game data")

	// ErrOutputDirFailed is returned when the output directory cannot be
	// created for a reason other than it already existing.
	ErrOutputDirFailed = xerrors.New("adm: cannot create output directory")

	// ErrConfirmationDeclined is returned when the operator declined to
	// continue past load warnings.
	ErrConfirmationDeclined = xerrors.New("adm: compilation aborted by operator")
)

// ParseError is returned by the text codec for any error that should
// propagate with a source line number attached, matching the "single
// typed error carrying a line number and message" propagation policy.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(line int, err error) *ParseError {
	return &ParseError{Line: line, Err: err}
}

// WrongNodeClosedError carries the open/closed section names for
// ErrWrongNodeClosed, exposed so callers that want the detail (rather than
// just the sentinel) can type-assert for it.
type WrongNodeClosedError struct {
	OpenNode   string
	ClosedNode string
}

func (e *WrongNodeClosedError) Error() string {
	return fmt.Sprintf("node %q is open, but node %q is being closed", e.OpenNode, e.ClosedNode)
}

func (e *WrongNodeClosedError) Unwrap() error { return ErrWrongNodeClosed }

// WarningList accumulates non-fatal diagnostics produced while loading or
// compiling. It plays the role the teacher's File.Anomalies field plays for
// PE anomalies: a plain, observable slice rather than something that must
// be scraped from logs.
type WarningList struct {
	items []string
}

// Add appends a formatted warning.
func (w *WarningList) Add(format string, args ...interface{}) {
	w.items = append(w.items, fmt.Sprintf(format, args...))
}

// Items returns the accumulated warnings, in the order they were added.
func (w *WarningList) Items() []string { return w.items }

// HadWarnings reports whether any warning was recorded.
func (w *WarningList) HadWarnings() bool { return len(w.items) > 0 }
