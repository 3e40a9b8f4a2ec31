// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// ErrorKind classifies failures and warnings for reporting.
type ErrorKind string

const (
	KindMalformedInput  ErrorKind = "malformed_input"
	KindSectionNotFound ErrorKind = "section_not_found"
	KindShapeMismatch   ErrorKind = "shape_mismatch"
	KindTemplateSyntax  ErrorKind = "template_syntax"
	KindNamingCollision ErrorKind = "naming_collision"
	KindIO              ErrorKind = "io"
	KindCanceled        ErrorKind = "canceled"
	KindInternal        ErrorKind = "internal"
)

// Sentinel errors matched by errors.Is on the typed errors below.
var (
	ErrMalformedInput = errors.New("malformed input")
	ErrTemplateSyntax = errors.New("template syntax error")
)

// MalformedInputError reports a source document that cannot be parsed as a
// structured document. It is fatal for the job that hit it.
type MalformedInputError struct {
	Source string
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	msg := "malformed input"
	if e.Source != "" {
		msg += " " + e.Source
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }

// TemplateSyntaxError reports unbalanced or unrecognised control markup in
// a template. It is detected when the template is parsed, before any
// document is rendered.
type TemplateSyntaxError struct {
	// Part is the package part holding the marker (e.g. "word/document.xml").
	Part string

	// Marker is the offending markup as written, when known.
	Marker string

	Reason string
}

func (e *TemplateSyntaxError) Error() string {
	if e.Marker == "" {
		return fmt.Sprintf("template syntax error in %s: %s", e.Part, e.Reason)
	}
	return fmt.Sprintf("template syntax error in %s: %s: %q", e.Part, e.Reason, e.Marker)
}

func (e *TemplateSyntaxError) Is(target error) bool { return target == ErrTemplateSyntax }

// Warning is a non-fatal condition recorded during extraction.
type Warning struct {
	Kind    ErrorKind  `json:"kind" yaml:"kind"`
	Section SectionKey `json:"section,omitempty" yaml:"section,omitempty"`
	Message string     `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	if w.Section == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Kind, w.Section, w.Message)
}

// KindOf classifies an error returned by any stage.
func KindOf(err error) ErrorKind {
	var (
		mi *MalformedInputError
		ts *TemplateSyntaxError
		pe *fs.PathError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &mi):
		return KindMalformedInput
	case errors.As(err, &ts):
		return KindTemplateSyntax
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.As(err, &pe), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrExist):
		return KindIO
	}
	return KindInternal
}
