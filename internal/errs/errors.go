// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package errs implements a closed structured error taxonomy, plus a
// UserError presentation type for any driver (CLI, server) sitting on
// top of the core.
package errs

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Kind is the closed error taxonomy threaded through every layer. A
// file's own classification outcome (parsed, failed, binary, ...) is
// deliberately absent here — it never surfaces as a Go error, only as a
// model.FileStatus.
type Kind int

const (
	// KindConfig: bad store URI, missing root.
	KindConfig Kind = iota
	// KindIO: file unreadable, directory creation failed.
	KindIO
	// KindParse: extractor-level, file-scoped; becomes coverage status
	// "failed" with the message; ingestion continues.
	KindParse
	// KindExtraction: malformed query capture or placeholder key; file-
	// scoped, logged, the file's edges are dropped.
	KindExtraction
	// KindStore: schema creation, chunk write, backup; run-fatal.
	KindStore
	// KindKeyFormat: always a program bug.
	KindKeyFormat
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindExtraction:
		return "extraction"
	case KindStore:
		return "store"
	case KindKeyFormat:
		return "key_format"
	default:
		return "unknown"
	}
}

// Error is the structured error type threaded through every layer. For
// KindStore it additionally carries the relation name and, when
// applicable, the chunk index, so a caller can identify exactly which
// batch write failed.
type Error struct {
	Kind      Kind
	Op        string // component/operation that produced the error, e.g. "store.insert_entities_batch"
	Relation  string // populated for KindStore chunk/schema errors
	ChunkIdx  int    // -1 when not applicable
	Message   string
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Message)
	if e.Relation != "" {
		msg = fmt.Sprintf("%s (relation=%s", msg, e.Relation)
		if e.ChunkIdx >= 0 {
			msg = fmt.Sprintf("%s chunk=%d", msg, e.ChunkIdx)
		}
		msg += ")"
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs a plain structured error without relation/chunk context.
func New(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, ChunkIdx: -1, Message: message, Err: err}
}

// NewStoreChunkError constructs a run-fatal store error naming the
// relation and chunk index that failed to write.
func NewStoreChunkError(op, relation string, chunkIdx int, err error) *Error {
	return &Error{
		Kind:     KindStore,
		Op:       op,
		Relation: relation,
		ChunkIdx: chunkIdx,
		Message:  "chunk write failed",
		Err:      err,
	}
}

// NewKeyFormatError marks a program bug in key construction/parsing.
func NewKeyFormatError(op, message string, err error) *Error {
	return &Error{Kind: KindKeyFormat, Op: op, ChunkIdx: -1, Message: message, Err: err}
}

// --- user-facing presentation ---

// Exit codes. KindParse and KindExtraction have no entry here because
// they never abort a run — they degrade to a per-file coverage status
// instead.
const (
	ExitSuccess  = 0
	ExitConfig   = 1
	ExitDatabase = 2
	ExitInput    = 4
	ExitInternal = 10
)

// UserError carries What/Why/Fix plus an exit code, for display at a CLI or
// server boundary. It is distinct from Error above: Error is the internal
// taxonomy threaded through the core; UserError is what a driver shows a
// human.
type UserError struct {
	Message  string
	Cause    string
	Fix      string
	ExitCode int
	Err      error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error { return e.Err }

// FromKind maps an internal Error to a UserError with a sensible exit code.
func FromKind(err *Error) *UserError {
	code := ExitInternal
	switch err.Kind {
	case KindConfig:
		code = ExitConfig
	case KindIO:
		code = ExitInput
	case KindStore:
		code = ExitDatabase
	case KindKeyFormat:
		code = ExitInternal
	}
	return &UserError{Message: err.Message, Cause: err.Error(), ExitCode: code, Err: err}
}

var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format renders a colored, human-readable rendition of the error.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()
	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	out := colorError.Sprint("Error: ") + e.Message + "\n"
	if e.Cause != "" {
		out += colorCause.Sprint("Cause: ") + e.Cause + "\n"
	}
	if e.Fix != "" {
		out += colorFix.Sprint("Fix:   ") + e.Fix + "\n"
	}
	return out
}

// ErrorJSON is the machine-readable rendition used by --json CLI output.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{Error: e.Message, Cause: e.Cause, Fix: e.Fix, ExitCode: e.ExitCode}
}

// Fatal prints the error (colored or JSON) and exits with its code.
func Fatal(err error, jsonOutput bool) {
	if err == nil {
		return
	}
	if ue, ok := err.(*UserError); ok {
		if jsonOutput {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		os.Exit(ue.ExitCode)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitInternal)
}
